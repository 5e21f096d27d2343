package api

import (
	"context"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/nk-nigeria/vip-module/constant"
	"github.com/nk-nigeria/vip-module/entity"
)

// NakamaProgressStore keeps VIP records as per-user storage objects.
// Clients may read their own record but never write it.
type NakamaProgressStore struct {
	nk runtime.NakamaModule
}

func NewNakamaProgressStore(nk runtime.NakamaModule) *NakamaProgressStore {
	return &NakamaProgressStore{nk: nk}
}

func (s *NakamaProgressStore) ReadVip(ctx context.Context, userID string) (string, string, error) {
	objects, err := s.nk.StorageRead(ctx, []*runtime.StorageRead{{
		Collection: constant.VipCollection,
		Key:        constant.VipDataKey,
		UserID:     userID,
	}})
	if err != nil {
		return "", "", err
	}
	if len(objects) == 0 {
		return "", "", nil
	}
	return objects[0].GetValue(), objects[0].GetVersion(), nil
}

func (s *NakamaProgressStore) WriteVip(ctx context.Context, userID, value, version string) (string, error) {
	acks, err := s.nk.StorageWrite(ctx, []*runtime.StorageWrite{{
		Collection:      constant.VipCollection,
		Key:             constant.VipDataKey,
		UserID:          userID,
		Value:           value,
		Version:         version,
		PermissionRead:  1,
		PermissionWrite: 0, // No client write.
	}})
	if err != nil {
		return "", err
	}
	if len(acks) == 0 {
		return "", nil
	}
	return acks[0].GetVersion(), nil
}

// NakamaPusher sends a stored notification to the recipient's live sessions.
// It is not persisted by Nakama since the notification table already holds it.
type NakamaPusher struct {
	nk runtime.NakamaModule
}

func NewNakamaPusher(nk runtime.NakamaModule) *NakamaPusher {
	return &NakamaPusher{nk: nk}
}

func (p *NakamaPusher) Push(ctx context.Context, n *entity.Notification) error {
	return p.nk.NotificationSend(ctx, n.RecipientId, n.Title, n.Content(), n.Category.Code(), n.SenderId, false)
}

func creditWallet(ctx context.Context, nk runtime.NakamaModule, logger runtime.Logger, userID string, amount int64, action constant.WalletAction, extra map[string]interface{}) error {
	if amount <= 0 {
		return nil
	}
	wallet := entity.Wallet{
		UserId: userID,
		Chips:  amount,
	}
	metadata := entity.WalletMetadata(action, userID, extra)
	return entity.AddChipWalletUser(ctx, nk, logger, userID, wallet, metadata)
}
