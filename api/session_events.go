package api

import (
	"context"
	"time"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/nk-nigeria/vip-module/service"
)

func RegisterSessionEvents(vip *service.VipService, initializer runtime.Initializer) error {
	return initializer.RegisterEventSessionStart(eventSessionStartFunc(vip))
}

// Recompute the user's VIP record whenever a session opens, so wagers that
// arrived while offline are reflected before the first RPC.
func eventSessionStartFunc(vip *service.VipService) func(context.Context, runtime.Logger, *api.Event) {
	return func(ctx context.Context, logger runtime.Logger, evt *api.Event) {
		userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
		if !ok {
			logger.Error("context did not contain user ID.")
			return
		}
		// Restrict the time allowed with the DB operation so we can fail fast in a stampeding herd scenario.
		ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if _, err := vip.Refresh(ctx2, userID); err != nil {
			logger.WithField("err", err).Error("vip refresh on session start error.")
		}
	}
}
