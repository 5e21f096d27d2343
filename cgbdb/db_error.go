package cgbdb

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
)

const (
	DbErrorUniqueViolation = pgerrcode.UniqueViolation
)

var (
	ErrBonusClaimDuplicate       = errors.New("bonus claim already recorded")
	ErrNotificationInvalidCursor = errors.New("notification cursor invalid")
	ErrInvalidWager              = errors.New("invalid wager")
)

// IsUniqueViolation works for lib/pq and for the pgx driver Nakama runs
// with, which exposes SQLState().
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == DbErrorUniqueViolation
	}
	var stateErr interface{ SQLState() string }
	if errors.As(err, &stateErr) {
		return stateErr.SQLState() == DbErrorUniqueViolation
	}
	return false
}
