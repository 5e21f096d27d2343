package cgbdb

import (
	"context"
	"database/sql"

	"github.com/heroiclabs/nakama-common/runtime"
)

func RunMigrations(ctx context.Context, logger runtime.Logger, db *sql.DB) {
	_, err := db.ExecContext(ctx, `
		CREATE SEQUENCE IF NOT EXISTS vip_notification_id_seq;
		CREATE TABLE IF NOT EXISTS public.vip_notification (
			id bigint NOT NULL DEFAULT nextval('vip_notification_id_seq'),
			recipient_id character varying(128) NOT NULL,
			sender_id character varying(128) NOT NULL,
			title character varying(256) NOT NULL,
			message text NOT NULL,
			category character varying(32) NOT NULL,
			duration_ms bigint NOT NULL DEFAULT 0,
			action jsonb NULL,
			read boolean NOT NULL DEFAULT false,
			create_time timestamp with time zone NOT NULL DEFAULT now(),
			update_time timestamp with time zone NOT NULL DEFAULT now(),
			constraint vip_notification_pk primary key (id)
		);
		ALTER SEQUENCE vip_notification_id_seq OWNED BY public.vip_notification.id;
		CREATE INDEX IF NOT EXISTS vip_notification_recipient_idx ON public.vip_notification (recipient_id, id DESC);
	`)
	if err != nil {
		logger.Error("Error: %s", err.Error())
		return
	}

	_, err = db.ExecContext(ctx, `
		CREATE SEQUENCE IF NOT EXISTS vip_bonus_claim_id_seq;
		CREATE TABLE IF NOT EXISTS public.vip_bonus_claim (
			id bigint NOT NULL DEFAULT nextval('vip_bonus_claim_id_seq'),
			user_id character varying(128) NOT NULL,
			month_key character varying(7) NOT NULL,
			tier character varying(64) NOT NULL,
			amount bigint NOT NULL,
			create_time timestamp with time zone NOT NULL DEFAULT now(),
			constraint vip_bonus_claim_pk primary key (id),
			UNIQUE (user_id, month_key)
		);
		ALTER SEQUENCE vip_bonus_claim_id_seq OWNED BY public.vip_bonus_claim.id;
	`)
	if err != nil {
		logger.Error("Error: %s", err.Error())
		return
	}

	AutoMigrate(ctx, logger, db)
	logger.Info("Done run migration")
}
