package cgbdb

import (
	"context"
	"database/sql"

	"github.com/bwmarrin/snowflake"
	"github.com/gofrs/uuid"
	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/nk-nigeria/vip-module/entity"
)

// CREATE TABLE public.vip_wager (created by gorm AutoMigrate)
//
//	id bigint NOT NULL,
//	user_id text NOT NULL,
//	game_code text NOT NULL,
//	amount bigint NOT NULL,
//	loss bigint NOT NULL,
//	create_time timestamp with time zone
// );

func ValidateWager(wager *entity.Wager) error {
	if wager == nil || wager.Amount < 0 || wager.Loss < 0 {
		return ErrInvalidWager
	}
	if wager.Loss > wager.Amount {
		return ErrInvalidWager
	}
	if _, err := uuid.FromString(wager.UserId); err != nil {
		return ErrInvalidWager
	}
	return nil
}

func AddWager(ctx context.Context, db *sql.DB, node *snowflake.Node, wager *entity.Wager) error {
	if err := ValidateWager(wager); err != nil {
		return err
	}
	gDB, err := NewGormContext(ctx, db)
	if err != nil {
		return err
	}
	if wager.Id == 0 {
		wager.Id = node.Generate().Int64()
	}
	return gDB.Model(wager).Create(wager).Error
}

func SumWagerByUserId(ctx context.Context, db *sql.DB, userId string) (int64, error) {
	gDB, err := NewGormContext(ctx, db)
	if err != nil {
		return 0, err
	}
	var total sql.NullInt64
	err = gDB.Model(new(entity.Wager)).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ?", userId).
		Row().Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Int64, nil
}

func QueryWager(ctx context.Context, db *sql.DB, userId string, limit, offset int) ([]entity.Wager, int64, error) {
	gDB, err := NewGormContext(ctx, db)
	if err != nil {
		return nil, 0, err
	}
	ml := make([]entity.Wager, 0)
	tx := gDB.Model(new(entity.Wager)).Where("user_id = ?", userId)
	total := int64(0)
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return ml, total, nil
	}
	if limit <= 0 {
		limit = 50
	}
	err = tx.Order("id desc").Limit(limit).Offset(offset).Find(&ml).Error
	return ml, total, err
}

// WagerStore is the wagered-total source of the VIP service.
type WagerStore struct {
	db     *sql.DB
	node   *snowflake.Node
	logger runtime.Logger
}

func NewWagerStore(db *sql.DB, node *snowflake.Node, logger runtime.Logger) *WagerStore {
	return &WagerStore{db: db, node: node, logger: logger}
}

func (s *WagerStore) RecordWager(ctx context.Context, wager *entity.Wager) error {
	if err := AddWager(ctx, s.db, s.node, wager); err != nil {
		s.logger.Error("Add wager user %s game %s error %v", wager.UserId, wager.GameCode, err)
		return err
	}
	return nil
}

func (s *WagerStore) WageredTotal(ctx context.Context, userID string) (int64, error) {
	total, err := SumWagerByUserId(ctx, s.db, userID)
	if err != nil {
		s.logger.WithField("err", err).Error("Sum wager user %s error", userID)
		return 0, err
	}
	return total, nil
}

func (s *WagerStore) ListWager(ctx context.Context, userID string, limit, offset int) ([]entity.Wager, int64, error) {
	return QueryWager(ctx, s.db, userID, limit, offset)
}
