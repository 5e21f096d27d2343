package cgbdb

import (
	"context"
	"database/sql"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/jackc/pgtype"
	"github.com/nk-nigeria/vip-module/entity"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const BonusClaimTableName = "vip_bonus_claim"

// AddBonusClaim returns ErrBonusClaimDuplicate when the month was already
// recorded for the user.
func AddBonusClaim(ctx context.Context, logger runtime.Logger, db *sql.DB, claim *entity.BonusClaim) error {
	if claim == nil || claim.UserId == "" || claim.MonthKey == "" || claim.Amount <= 0 {
		return status.Error(codes.InvalidArgument, "Invalid bonus claim")
	}
	query := "INSERT INTO " + BonusClaimTableName + " (user_id, month_key, tier, amount, create_time) VALUES ($1, $2, $3, $4, now()) RETURNING id, create_time"
	var dbCreateTime pgtype.Timestamptz
	err := db.QueryRowContext(ctx, query, claim.UserId, claim.MonthKey, claim.Tier, claim.Amount).
		Scan(&claim.Id, &dbCreateTime)
	if err != nil {
		if IsUniqueViolation(err) {
			return ErrBonusClaimDuplicate
		}
		logger.Error("Add bonus claim user %s month %s, error %s", claim.UserId, claim.MonthKey, err.Error())
		return status.Error(codes.Internal, "Add bonus claim error")
	}
	claim.CreateTimeUnix = dbCreateTime.Time.Unix()
	return nil
}

// DeleteBonusClaim releases a month whose credit did not go through, so the
// user can claim it again.
func DeleteBonusClaim(ctx context.Context, logger runtime.Logger, db *sql.DB, userId, monthKey string) error {
	query := "DELETE FROM " + BonusClaimTableName + " WHERE user_id=$1 AND month_key=$2"
	if _, err := db.ExecContext(ctx, query, userId, monthKey); err != nil {
		logger.Error("Delete bonus claim user %s month %s, error %s", userId, monthKey, err.Error())
		return status.Error(codes.Internal, "Delete bonus claim error")
	}
	return nil
}

func ListBonusClaim(ctx context.Context, logger runtime.Logger, db *sql.DB, userId string, limit int64) ([]*entity.BonusClaim, error) {
	if limit <= 0 {
		limit = 12
	}
	query := "SELECT id, user_id, month_key, tier, amount, create_time FROM " + BonusClaimTableName +
		" WHERE user_id=$1 ORDER BY id DESC LIMIT $2"
	rows, err := db.QueryContext(ctx, query, userId, limit)
	if err != nil {
		logger.Error("Query bonus claim user %s, error %s", userId, err.Error())
		return nil, status.Error(codes.Internal, "Query bonus claim error")
	}
	defer rows.Close()
	ml := make([]*entity.BonusClaim, 0)
	var dbCreateTime pgtype.Timestamptz
	for rows.Next() {
		claim := &entity.BonusClaim{}
		if err := rows.Scan(&claim.Id, &claim.UserId, &claim.MonthKey, &claim.Tier, &claim.Amount, &dbCreateTime); err != nil {
			logger.Error("Scan bonus claim user %s, error %s", userId, err.Error())
			return nil, status.Error(codes.Internal, "Query bonus claim error")
		}
		claim.CreateTimeUnix = dbCreateTime.Time.Unix()
		ml = append(ml, claim)
	}
	return ml, nil
}

type BonusClaimStore struct {
	db     *sql.DB
	logger runtime.Logger
}

func NewBonusClaimStore(db *sql.DB, logger runtime.Logger) *BonusClaimStore {
	return &BonusClaimStore{db: db, logger: logger}
}

func (s *BonusClaimStore) AddBonusClaim(ctx context.Context, claim *entity.BonusClaim) error {
	return AddBonusClaim(ctx, s.logger, s.db, claim)
}

func (s *BonusClaimStore) DeleteBonusClaim(ctx context.Context, userID, monthKey string) error {
	return DeleteBonusClaim(ctx, s.logger, s.db, userID, monthKey)
}

func (s *BonusClaimStore) ListBonusClaim(ctx context.Context, userID string, limit int64) ([]*entity.BonusClaim, error) {
	return ListBonusClaim(ctx, s.logger, s.db, userID, limit)
}
