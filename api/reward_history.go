package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofrs/uuid"
	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/nk-nigeria/vip-module/api/presenter"
	"github.com/nk-nigeria/vip-module/cgbdb"
	"github.com/nk-nigeria/vip-module/constant"
	"github.com/nk-nigeria/vip-module/entity"
)

var vipWalletActions = []constant.WalletAction{
	constant.WalletActionVipCashback,
	constant.WalletActionVipMonthlyBonus,
}

// rewardActions returns the ledger actions to list, all vip actions when
// action is empty.
func rewardActions(action string) ([]string, error) {
	if action == "" {
		actions := make([]string, 0, len(vipWalletActions))
		for _, a := range vipWalletActions {
			actions = append(actions, a.String())
		}
		return actions, nil
	}
	for _, a := range vipWalletActions {
		if a.String() == action {
			return []string{action}, nil
		}
	}
	return nil, presenter.ErrInvalidInput
}

func monthStart(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// RpcRewardHistory lists the wallet credits made by the VIP module.
func RpcRewardHistory() func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
		if !ok {
			return "", presenter.ErrNoUserIdFound
		}
		req := &entity.RewardHistoryRequest{}
		if payload != "" {
			if err := json.Unmarshal([]byte(payload), req); err != nil {
				logger.Error("Error when unmarshal payload %s", err.Error())
				return "", presenter.ErrUnmarshal
			}
		}
		actions, err := rewardActions(req.Action)
		if err != nil {
			return "", err
		}
		items, next, prev, err := cgbdb.ListWalletLedger(ctx, logger, db, uuid.FromStringOrNil(userID), actions, req.Limit, req.Cursor)
		if err != nil {
			if errors.Is(err, cgbdb.ErrWalletLedgerInvalidCursor) {
				return "", presenter.ErrInvalidCursor
			}
			return "", presenter.ErrInternalError
		}
		res := &entity.RewardHistory{
			Items:       items,
			NextCursor:  next,
			PrevCursor:  prev,
			MonthTotals: make(map[string]int64, len(vipWalletActions)),
		}
		from := monthStart(time.Now())
		for _, a := range vipWalletActions {
			total, err := cgbdb.SumWalletCredit(ctx, db, userID, a.String(), from)
			if err != nil {
				logger.Warn("Sum wallet credit %s user %s error %s", a, userID, err.Error())
				continue
			}
			res.MonthTotals[a.String()] = total
		}
		return marshalResponse(logger, res)
	}
}
