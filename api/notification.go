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

type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}

func parseNotificationRequest(logger runtime.Logger, payload string) (*entity.NotificationRequest, error) {
	request := &entity.NotificationRequest{}
	if payload == "" {
		return request, nil
	}
	if err := json.Unmarshal([]byte(payload), request); err != nil {
		logger.Error("unmarshal notification error %v", err)
		return nil, presenter.ErrUnmarshal
	}
	return request, nil
}

func successResponse() (string, error) {
	out, _ := json.Marshal(entity.NewSuccessResponse())
	return string(out), nil
}

func RpcListNotification(notifications *service.NotificationService) func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		userId, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
		if !ok {
			return "", presenter.ErrNoUserIdFound
		}
		request, err := parseNotificationRequest(logger, payload)
		if err != nil {
			return "", err
		}
		list, err := notifications.List(ctx, userId, request)
		if err != nil {
			logger.Error("List notification user %s error %s", userId, err.Error())
			return "", toRpcError(err)
		}
		return marshalResponse(logger, list)
	}
}

func RpcReadNotification(notifications *service.NotificationService) func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		userId, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
		if !ok {
			return "", presenter.ErrNoUserIdFound
		}
		request, err := parseNotificationRequest(logger, payload)
		if err != nil {
			return "", err
		}
		if err := notifications.MarkRead(ctx, userId, request.Id); err != nil {
			logger.Warn("ReadNotification %d user %s error %s", request.Id, userId, err.Error())
			return "", toRpcError(err)
		}
		return successResponse()
	}
}

func RpcReadAllNotification(notifications *service.NotificationService) func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		userId, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
		if !ok {
			return "", presenter.ErrNoUserIdFound
		}
		if err := notifications.MarkAllRead(ctx, userId); err != nil {
			logger.Error("RpcReadAllNotification error %s", err.Error())
			return "", toRpcError(err)
		}
		return successResponse()
	}
}

func RpcDeleteNotification(notifications *service.NotificationService) func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		userId, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
		if !ok {
			return "", presenter.ErrNoUserIdFound
		}
		request, err := parseNotificationRequest(logger, payload)
		if err != nil {
			return "", err
		}
		if err := notifications.Delete(ctx, userId, request.Id); err != nil {
			logger.Warn("DeleteNotification %d user %s error %s", request.Id, userId, err.Error())
			return "", toRpcError(err)
		}
		return successResponse()
	}
}

func RpcDeleteAllNotification(notifications *service.NotificationService) func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		userId, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
		if !ok {
			return "", presenter.ErrNoUserIdFound
		}
		if err := notifications.DeleteAll(ctx, userId); err != nil {
			logger.Error("RpcDeleteAllNotification error %s", err.Error())
			return "", toRpcError(err)
		}
		return successResponse()
	}
}

func RpcUnreadNotificationCount(notifications *service.NotificationService) func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		userId, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
		if !ok {
			return "", presenter.ErrNoUserIdFound
		}
		unread, err := notifications.UnreadCount(ctx, userId)
		if err != nil {
			return "", toRpcError(err)
		}
		return marshalResponse(logger, &UnreadCountResponse{Unread: unread})
	}
}
