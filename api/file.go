package api

import (
	"context"
	"database/sql"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/nk-nigeria/vip-module/api/presenter"
	objectstorage "github.com/nk-nigeria/vip-module/object-storage"
)

type PreSignPutResponse struct {
	Url    string `json:"url"`
	Bucket string `json:"bucket"`
	Object string `json:"object"`
}

// RpcTierTablePreSignPut hands an operator a short lived upload url for the
// tier table object. The new table takes effect on the next module start.
func RpcTierTablePreSignPut(wrapper objectstorage.ObjStorage, bucket, object string) func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		if userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string); userID != "" {
			return "", presenter.ErrUnauth
		}
		if err := wrapper.MakeBucket(bucket); err != nil {
			logger.Error("Error make bucket %s: %s", bucket, err.Error())
			return "", presenter.ErrInternalError
		}
		u, err := wrapper.PresigPutObject(bucket, object, 60*time.Second, nil)
		if err != nil {
			logger.Error("Error create PresigPutObject %s", err.Error())
			return "", presenter.ErrInternalError
		}
		return marshalResponse(logger, &PreSignPutResponse{
			Url:    u,
			Bucket: bucket,
			Object: object,
		})
	}
}
