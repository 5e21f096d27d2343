package api

import (
	"context"
	"fmt"
	"strconv"

	nkapi "github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/nk-nigeria/vip-module/cgbdb"
	"github.com/nk-nigeria/vip-module/constant"
	"github.com/nk-nigeria/vip-module/entity"
	"github.com/nk-nigeria/vip-module/service"
)

type WagerRecorder interface {
	RecordWager(ctx context.Context, wager *entity.Wager) error
}

// WagerHandler ingests completed wagers from game modules. Each wager is
// recorded, the VIP record refreshed, and cashback on the loss credited.
type WagerHandler struct {
	wagers WagerRecorder
	vip    *service.VipService
	nk     runtime.NakamaModule
}

func NewWagerHandler(wagers WagerRecorder, vip *service.VipService, nk runtime.NakamaModule) *WagerHandler {
	return &WagerHandler{wagers: wagers, vip: vip, nk: nk}
}

func CustomEventHandler(h *WagerHandler) func(ctx context.Context, logger runtime.Logger, evt *nkapi.Event) {
	return func(ctx context.Context, logger runtime.Logger, evt *nkapi.Event) {
		if evt == nil {
			return
		}
		switch evt.GetName() {
		case constant.NakEventVipWager:
			if err := h.Handle(ctx, logger, evt); err != nil {
				logger.Error("Handle event %s error %s", evt.GetName(), err.Error())
			}
		default:
			return
		}
	}
}

// WagerFromEvent reads user_id, game_code, amount and loss. A missing loss
// is zero.
func WagerFromEvent(evt *nkapi.Event) (*entity.Wager, error) {
	props := evt.GetProperties()
	amount, err := strconv.ParseInt(props["amount"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: amount %q", cgbdb.ErrInvalidWager, props["amount"])
	}
	loss := int64(0)
	if s := props["loss"]; s != "" {
		if loss, err = strconv.ParseInt(s, 10, 64); err != nil {
			return nil, fmt.Errorf("%w: loss %q", cgbdb.ErrInvalidWager, s)
		}
	}
	wager := &entity.Wager{
		UserId:   props["user_id"],
		GameCode: props["game_code"],
		Amount:   amount,
		Loss:     loss,
	}
	if err := cgbdb.ValidateWager(wager); err != nil {
		return nil, fmt.Errorf("%w: user %q", err, wager.UserId)
	}
	return wager, nil
}

// Handle records the wager, refreshes the VIP record and credits cashback on
// the loss. A failed refresh does not block cashback, which then uses the
// stored tier. The cashback notification goes out only after the credit.
func (h *WagerHandler) Handle(ctx context.Context, logger runtime.Logger, evt *nkapi.Event) error {
	wager, err := WagerFromEvent(evt)
	if err != nil {
		return err
	}
	if err := h.wagers.RecordWager(ctx, wager); err != nil {
		return err
	}
	if _, err := h.vip.Refresh(ctx, wager.UserId); err != nil {
		logger.Warn("Refresh vip user %s after wager %d error %s, cashback at stored tier", wager.UserId, wager.Id, err.Error())
	}
	if wager.Loss <= 0 {
		return nil
	}
	res, err := h.vip.CalcCashback(ctx, wager.UserId, wager.Loss)
	if err != nil {
		return err
	}
	if res.Cashback <= 0 {
		return nil
	}
	extra := map[string]interface{}{
		"game_code": wager.GameCode,
		"wager_id":  wager.Id,
		"tier":      res.Tier,
	}
	if err := creditWallet(ctx, h.nk, logger, wager.UserId, res.Cashback, constant.WalletActionVipCashback, extra); err != nil {
		return err
	}
	h.vip.NotifyCashback(ctx, wager.UserId, res)
	return nil
}
