package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/nk-nigeria/vip-module/api/presenter"
	"github.com/nk-nigeria/vip-module/cgbdb"
	"github.com/nk-nigeria/vip-module/constant"
	"github.com/nk-nigeria/vip-module/entity"
	objectstorage "github.com/nk-nigeria/vip-module/object-storage"
	"github.com/nk-nigeria/vip-module/service"
)

// LoadTierTable replaces the default tier table with the one stored in
// bucket/object when it exists and is valid.
func LoadTierTable(logger runtime.Logger, storage objectstorage.ObjStorage, bucket, object string) {
	data, err := storage.GetObject(bucket, object)
	if err != nil {
		if errors.Is(err, objectstorage.ErrObjectNotFound) {
			logger.Info("No tier table at %s/%s, use default", bucket, object)
		} else {
			logger.Error("Read tier table %s/%s error %s, use default", bucket, object, err.Error())
		}
		return
	}
	table := &entity.TierTable{}
	if err := json.Unmarshal(data, table); err != nil {
		logger.Error("Unmarshal tier table %s/%s error %s, use default", bucket, object, err.Error())
		return
	}
	if err := entity.SetTiers(table.Tiers); err != nil {
		logger.Error("Tier table %s/%s rejected: %s, use default", bucket, object, err.Error())
		return
	}
	logger.Info("Loaded %d tiers from %s/%s", len(table.Tiers), bucket, object)
}

// InitVipTierTable publishes the active tier table as a public storage object.
func InitVipTierTable(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule) {
	data, err := json.Marshal(&entity.TierTable{Tiers: entity.Tiers()})
	if err != nil {
		logger.Error("Marshal tier table error %s", err.Error())
		return
	}
	_, err = nk.StorageWrite(ctx, []*runtime.StorageWrite{
		{
			Collection:      constant.VipCollection,
			Key:             constant.VipTierTemplateKey,
			Value:           string(data),
			PermissionRead:  2,
			PermissionWrite: 0,
		},
	})
	if err != nil {
		logger.WithField("err", err).Error("Write tier table collection failed")
	}
}

func RpcVipTierTable() func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		if _, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string); !ok {
			return "", presenter.ErrNoUserIdFound
		}
		data, err := json.Marshal(&entity.TierTable{Tiers: entity.Tiers()})
		if err != nil {
			return "", presenter.ErrMarshal
		}
		return string(data), nil
	}
}

func RpcVipInfo(vip *service.VipService) func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
		if !ok {
			return "", presenter.ErrNoUserIdFound
		}
		info, err := vip.Info(ctx, userID)
		if err != nil {
			logger.Error("Vip info user %s error %s", userID, err.Error())
			return "", toRpcError(err)
		}
		return marshalResponse(logger, info)
	}
}

// BonusLedger records credited monthly bonuses, unique per user and month.
type BonusLedger interface {
	AddBonusClaim(ctx context.Context, claim *entity.BonusClaim) error
	DeleteBonusClaim(ctx context.Context, userID, monthKey string) error
	ListBonusClaim(ctx context.Context, userID string, limit int64) ([]*entity.BonusClaim, error)
}

// RpcClaimMonthlyBonus reserves the month in the claim ledger, credits the
// wallet, then marks the VIP record and notifies. A failed credit releases
// the ledger row so the month stays claimable. A ledger row without a marked
// record means an earlier call was paid, so the record is marked without a
// second credit.
func RpcClaimMonthlyBonus(vip *service.VipService, ledger BonusLedger) func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
		if !ok {
			return "", presenter.ErrNoUserIdFound
		}
		if _, err := vip.Refresh(ctx, userID); err != nil {
			logger.Error("Refresh vip user %s error %s", userID, err.Error())
			return "", toRpcError(err)
		}
		due, err := vip.MonthlyBonusDue(ctx, userID)
		if err != nil {
			return "", toRpcError(err)
		}
		claim := &entity.BonusClaim{
			UserId:   userID,
			MonthKey: due.MonthKey,
			Tier:     due.Tier,
			Amount:   due.Amount,
		}
		err = ledger.AddBonusClaim(ctx, claim)
		switch {
		case errors.Is(err, cgbdb.ErrBonusClaimDuplicate):
			logger.Warn("Bonus %s of user %s already credited, mark vip record", due.MonthKey, userID)
			if _, err := vip.ClaimMonth(ctx, userID, due.MonthKey); err != nil && !errors.Is(err, entity.ErrBonusAlreadyClaimed) {
				logger.Error("Mark bonus %s user %s error %s", due.MonthKey, userID, err.Error())
			}
			return "", presenter.ErrBonusAlreadyClaimed
		case err != nil:
			return "", presenter.ErrInternalError
		}

		extra := map[string]interface{}{"month_key": due.MonthKey, "tier": due.Tier}
		if err := creditWallet(ctx, nk, logger, userID, due.Amount, constant.WalletActionVipMonthlyBonus, extra); err != nil {
			if err := ledger.DeleteBonusClaim(ctx, userID, due.MonthKey); err != nil {
				logger.Error("Release bonus %s user %s error %s", due.MonthKey, userID, err.Error())
			}
			return "", presenter.ErrInternalError
		}

		res, err := vip.ClaimMonth(ctx, userID, due.MonthKey)
		switch {
		case errors.Is(err, entity.ErrBonusAlreadyClaimed):
			res = due
		case err != nil:
			// paid; the ledger row lets the next call mark the record
			logger.Error("Mark bonus %s user %s error %s", due.MonthKey, userID, err.Error())
			res = due
		}
		return marshalResponse(logger, res)
	}
}

type BonusHistoryRequest struct {
	Limit int64 `json:"limit"`
}

type BonusHistoryResponse struct {
	Claims []*entity.BonusClaim `json:"claims"`
}

func RpcBonusHistory(ledger BonusLedger) func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
		if !ok {
			return "", presenter.ErrNoUserIdFound
		}
		req := &BonusHistoryRequest{}
		if payload != "" {
			if err := json.Unmarshal([]byte(payload), req); err != nil {
				logger.Error("Error when unmarshal payload %s", err.Error())
				return "", presenter.ErrUnmarshal
			}
		}
		claims, err := ledger.ListBonusClaim(ctx, userID, req.Limit)
		if err != nil {
			return "", presenter.ErrInternalError
		}
		return marshalResponse(logger, &BonusHistoryResponse{Claims: claims})
	}
}

type WagerLister interface {
	ListWager(ctx context.Context, userID string, limit, offset int) ([]entity.Wager, int64, error)
}

type WagerHistoryRequest struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type WagerHistoryResponse struct {
	Wagers []entity.Wager `json:"wagers"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

func RpcWagerHistory(wagers WagerLister) func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
		if !ok {
			return "", presenter.ErrNoUserIdFound
		}
		req := &WagerHistoryRequest{}
		if payload != "" {
			if err := json.Unmarshal([]byte(payload), req); err != nil {
				logger.Error("Error when unmarshal payload %s", err.Error())
				return "", presenter.ErrUnmarshal
			}
		}
		if req.Limit <= 0 || req.Limit > 100 {
			req.Limit = 50
		}
		if req.Offset < 0 {
			req.Offset = 0
		}
		ml, total, err := wagers.ListWager(ctx, userID, req.Limit, req.Offset)
		if err != nil {
			logger.Error("List wager user %s error %s", userID, err.Error())
			return "", presenter.ErrInternalError
		}
		return marshalResponse(logger, &WagerHistoryResponse{
			Wagers: ml,
			Total:  total,
			Limit:  req.Limit,
			Offset: req.Offset,
		})
	}
}

func marshalResponse(logger runtime.Logger, v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Error("Marshal response error %s", err.Error())
		return "", presenter.ErrMarshal
	}
	return string(data), nil
}

// toRpcError maps domain errors to the presenter catalogue.
func toRpcError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, service.ErrMissingUser):
		return presenter.ErrNoUserIdFound
	case errors.Is(err, entity.ErrBonusAlreadyClaimed):
		return presenter.ErrBonusAlreadyClaimed
	case errors.Is(err, entity.ErrNoMonthlyBonus):
		return presenter.ErrNoMonthlyBonus
	case errors.Is(err, entity.ErrNotificationNotFound):
		return presenter.ErrNotificationNotFound
	case errors.Is(err, service.ErrInvalidNotification):
		return presenter.ErrInvalidNotification
	case errors.Is(err, cgbdb.ErrNotificationInvalidCursor):
		return presenter.ErrInvalidCursor
	case errors.Is(err, cgbdb.ErrInvalidWager):
		return presenter.ErrInvalidWager
	}
	return presenter.ErrInternalError
}
