package entity

import (
	"context"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/nk-nigeria/vip-module/constant"
)

type Wallet struct {
	UserId string
	Chips  int64 `json:"chips"`
}

func WalletMetadata(action constant.WalletAction, userID string, extra map[string]interface{}) map[string]interface{} {
	metadata := make(map[string]interface{}, len(extra)+3)
	for k, v := range extra {
		metadata[k] = v
	}
	metadata["action"] = action.String()
	metadata["sender"] = constant.UUID_USER_SYSTEM
	metadata["recv"] = userID
	return metadata
}

func AddChipWalletUser(ctx context.Context, nk runtime.NakamaModule, logger runtime.Logger, userID string, wallet Wallet, metadata map[string]interface{}) error {
	changeset := map[string]int64{}
	if wallet.Chips != 0 {
		changeset["chips"] = wallet.Chips
	}
	if len(changeset) == 0 {
		return nil
	}
	_, _, err := nk.WalletUpdate(ctx, userID, changeset, metadata, true)
	if err != nil {
		logger.WithField("err", err).Error("Wallet update error.")
	}
	return err
}
