package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-co-op/gocron"
	nkapi "github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
	"go.uber.org/zap"

	"github.com/nk-nigeria/vip-module/api"
	"github.com/nk-nigeria/vip-module/cgbdb"
	"github.com/nk-nigeria/vip-module/conf"
	"github.com/nk-nigeria/vip-module/constant"
	"github.com/nk-nigeria/vip-module/message_queue"
	objectstorage "github.com/nk-nigeria/vip-module/object-storage"
	"github.com/nk-nigeria/vip-module/service"
)

const (
	rpcIdVipInfo            = "vip_info"
	rpcIdVipTierTable       = "vip_tier_table"
	rpcIdVipClaimBonus      = "vip_claim_monthly_bonus"
	rpcIdVipBonusHistory    = "vip_bonus_history"
	rpcIdVipLeaderboard     = "vip_leaderboard"
	rpcIdVipTierTableUpload = "vip_tier_table_upload_url"
	rpcIdVipRewardHistory   = "vip_reward_history"
	rpcIdVipWagerHistory    = "vip_wager_history"

	rpcIdListNotification      = "list_notification"
	rpcIdReadNotification      = "read_notification"
	rpcIdReadAllNotification   = "read_all_notification"
	rpcIdDeleteNotification    = "delete_notification"
	rpcIdDeleteAllNotification = "delete_all_notification"
	rpcIdUnreadNotification    = "unread_notification_count"
	rpcIdAddNotification       = "add_notification"
)

//noinspection GoUnusedExportedFunction
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	initStart := time.Now()

	conf.Init()
	if zapLogger, err := zap.NewProduction(); err == nil {
		zap.ReplaceGlobals(zapLogger.With(zap.String("module", "vip")))
	}
	cgbdb.RunMigrations(ctx, logger, db)

	objStorage := initObjectStorage(logger)
	api.LoadTierTable(logger, objStorage, conf.Cfg.TierBucket, conf.Cfg.TierObject)
	api.InitVipTierTable(ctx, logger, nk)
	api.InitLeaderBoard(ctx, logger, nk)

	notificationService := service.NewNotificationService(
		cgbdb.NewNotificationStore(db, logger),
		api.NewNakamaPusher(nk),
		conf.Cfg.NotificationCap,
		logger,
	)
	wagerStore := cgbdb.NewWagerStore(db, conf.SnowlakeNode, logger)
	bonusLedger := cgbdb.NewBonusClaimStore(db, logger)

	opts := []service.Option{service.WithPointsBoard(api.NewLeaderBoard(nk, logger))}
	var bus *message_queue.NatsService
	if conf.Cfg.NatsUrl != "" {
		bus = message_queue.InitNatsService(conf.Cfg.NatsUrl)
		if bus.Connected() {
			opts = append(opts, service.WithPublisher(bus))
		} else {
			logger.Warn("Nats %s unreachable, bus disabled", conf.Cfg.NatsUrl)
		}
	}
	vipService := service.NewVipService(api.NewNakamaProgressStore(nk), wagerStore, notificationService, logger, opts...)
	wagerHandler := api.NewWagerHandler(wagerStore, vipService, nk)

	if bus.Connected() {
		bus.Handle(constant.NatsSubjectWagerCompleted, func(ctx context.Context, evt *nkapi.Event) error {
			defer api.Recovery(logger)
			return wagerHandler.Handle(ctx, logger, evt)
		})
		if err := bus.RegisterAllSubject(); err != nil {
			logger.Error("Subscribe nats subjects error %s", err.Error())
		}
	}

	rpcs := map[string]func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error){
		rpcIdVipInfo:            api.RpcVipInfo(vipService),
		rpcIdVipTierTable:       api.RpcVipTierTable(),
		rpcIdVipClaimBonus:      api.RpcClaimMonthlyBonus(vipService, bonusLedger),
		rpcIdVipBonusHistory:    api.RpcBonusHistory(bonusLedger),
		rpcIdVipLeaderboard:     api.RpcLeaderboardVip(),
		rpcIdVipTierTableUpload: api.RpcTierTablePreSignPut(objStorage, conf.Cfg.TierBucket, conf.Cfg.TierObject),
		rpcIdVipRewardHistory:   api.RpcRewardHistory(),
		rpcIdVipWagerHistory:    api.RpcWagerHistory(wagerStore),

		rpcIdListNotification:      api.RpcListNotification(notificationService),
		rpcIdReadNotification:      api.RpcReadNotification(notificationService),
		rpcIdReadAllNotification:   api.RpcReadAllNotification(notificationService),
		rpcIdDeleteNotification:    api.RpcDeleteNotification(notificationService),
		rpcIdDeleteAllNotification: api.RpcDeleteAllNotification(notificationService),
		rpcIdUnreadNotification:    api.RpcUnreadNotificationCount(notificationService),
		rpcIdAddNotification:       api.RpcAddNotification(notificationService),
	}
	for id, fn := range rpcs {
		if err := initializer.RegisterRpc(id, fn); err != nil {
			return err
		}
	}

	if err := initializer.RegisterEvent(api.CustomEventHandler(wagerHandler)); err != nil {
		return err
	}
	if err := api.RegisterSessionEvents(vipService, initializer); err != nil {
		return err
	}

	if err := scheduleNotificationPrune(logger, notificationService, conf.Cfg.PruneCron, conf.Cfg.NotificationRetention); err != nil {
		logger.Error("Schedule notification prune error %s", err.Error())
	}

	logger.Info("Plugin loaded in '%d' msec.", time.Since(initStart).Milliseconds())
	return nil
}

func initObjectStorage(logger runtime.Logger) objectstorage.ObjStorage {
	if conf.Cfg.MinioEndpoint == "" {
		return &objectstorage.EmptyStorage{}
	}
	w, err := objectstorage.NewMinioWrapper(conf.Cfg.MinioEndpoint, conf.Cfg.MinioAccessKey, conf.Cfg.MinioSecretKey, conf.Cfg.MinioUseSSL)
	if err != nil {
		logger.Error("Init minio %s error %s", conf.Cfg.MinioEndpoint, err.Error())
		return &objectstorage.EmptyStorage{}
	}
	return w
}

func scheduleNotificationPrune(logger runtime.Logger, notifications *service.NotificationService, cron string, retention time.Duration) error {
	s := gocron.NewScheduler(time.UTC)
	_, err := s.Cron(cron).Do(func() {
		defer api.Recovery(logger)
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		deleted, err := notifications.Prune(ctx, time.Now(), retention)
		if err != nil {
			zap.L().Error("Prune notification error", zap.Error(err))
			return
		}
		zap.L().Info("Pruned read notifications", zap.Int64("deleted", deleted), zap.Duration("retention", retention))
	})
	if err != nil {
		return err
	}
	s.StartAsync()
	return nil
}
