package api

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/nk-nigeria/vip-module/api/presenter"
	"github.com/nk-nigeria/vip-module/entity"
	"github.com/nk-nigeria/vip-module/service"
)

// RpcAddNotification is server to server only: calls carrying a user session
// are refused.
func RpcAddNotification(notifications *service.NotificationService) func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		if userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string); userID != "" {
			return "", presenter.ErrUnauth
		}
		request := &entity.Notification{}
		if err := json.Unmarshal([]byte(payload), request); err != nil {
			logger.Error("unmarshal notification error %v", err)
			return "", presenter.ErrUnmarshal
		}
		request.Id = 0
		request.SenderId = ""
		if err := notifications.Notify(ctx, request); err != nil {
			logger.Error("Add notification user %s, error: %s", request.RecipientId, err.Error())
			return "", toRpcError(err)
		}
		return marshalResponse(logger, request)
	}
}
