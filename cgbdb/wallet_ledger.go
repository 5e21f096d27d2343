package cgbdb

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/jackc/pgtype"
	"github.com/lib/pq"
	"github.com/nk-nigeria/vip-module/entity"
)

var ErrWalletLedgerInvalidCursor = errors.New("wallet ledger cursor invalid")

// ListWalletLedger pages the user's wallet_ledger rows whose metadata action
// is one of actions, newest first. Paging is keyed on (create_time, id).
func ListWalletLedger(ctx context.Context, logger runtime.Logger, db *sql.DB, userID uuid.UUID, actions []string, limit int, cursor string) ([]*entity.WalletLedger, string, string, error) {
	var incomingCursor *entity.WalletLedgerListCursor
	if cursor != "" {
		c, err := decodeWalletLedgerCursor(cursor)
		if err != nil {
			return nil, "", "", err
		}
		// Cursor and filter mismatch. Perhaps the caller has sent an old cursor with a changed filter.
		if userID.String() != c.UserId {
			return nil, "", "", ErrWalletLedgerInvalidCursor
		}
		incomingCursor = c
		actions = c.Actions
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	params := []interface{}{userID, time.Now().UTC(), uuid.UUID{}, pq.Array(actions)}
	if incomingCursor != nil {
		params[1] = incomingCursor.CreateTime
		params[2], _ = uuid.FromString(incomingCursor.Id)
	}

	query := `SELECT id, changeset, metadata, create_time, update_time
	FROM wallet_ledger
	WHERE user_id = $1::UUID
	AND (user_id, create_time, id) < ($1::UUID, $2, $3::UUID)
	AND metadata ->> 'action' = ANY($4::text[])
	ORDER BY create_time DESC, id DESC`
	if incomingCursor != nil && !incomingCursor.IsNext {
		query = `SELECT id, changeset, metadata, create_time, update_time
		FROM wallet_ledger
		WHERE user_id = $1::UUID
		AND (user_id, create_time, id) > ($1::UUID, $2, $3::UUID)
		AND metadata ->> 'action' = ANY($4::text[])
		ORDER BY create_time ASC, id ASC`
	}
	query = fmt.Sprintf(`%s LIMIT %d`, query, limit+1)

	rows, err := db.QueryContext(ctx, query, params...)
	if err != nil {
		logger.WithField("err", err).Error("Error retrieving user wallet ledger, user %s", userID.String())
		return nil, "", "", err
	}
	defer rows.Close()

	results := make([]*entity.WalletLedger, 0, limit)
	var id string
	var changeset sql.NullString
	var metadata sql.NullString
	var createTime pgtype.Timestamptz
	var updateTime pgtype.Timestamptz
	var nextCursor *entity.WalletLedgerListCursor
	var prevCursor *entity.WalletLedgerListCursor
	for rows.Next() {
		if len(results) >= limit {
			nextCursor = &entity.WalletLedgerListCursor{
				UserId:     userID.String(),
				Id:         id,
				CreateTime: createTime.Time,
				IsNext:     true,
				Actions:    actions,
			}
			break
		}
		if err := rows.Scan(&id, &changeset, &metadata, &createTime, &updateTime); err != nil {
			logger.WithField("err", err).Error("Error converting user wallet ledger, user %s", userID.String())
			return nil, "", "", err
		}
		item := &entity.WalletLedger{
			ID:         id,
			UserId:     userID.String(),
			CreateTime: createTime.Time.Unix(),
			UpdateTime: updateTime.Time.Unix(),
		}
		if err := json.Unmarshal([]byte(changeset.String), &item.Changeset); err != nil {
			logger.WithField("err", err).Error("Error converting user wallet ledger changeset, user %s", userID.String())
			return nil, "", "", err
		}
		if err := json.Unmarshal([]byte(metadata.String), &item.Metadata); err != nil {
			logger.WithField("err", err).Error("Error converting user wallet ledger metadata, user %s", userID.String())
			return nil, "", "", err
		}
		results = append(results, item)

		if incomingCursor != nil && prevCursor == nil {
			prevCursor = &entity.WalletLedgerListCursor{
				UserId:     userID.String(),
				Id:         id,
				CreateTime: createTime.Time,
				IsNext:     false,
				Actions:    actions,
			}
		}
	}

	if incomingCursor != nil && !incomingCursor.IsNext {
		nextCursor, prevCursor = flipLedgerCursors(nextCursor, prevCursor)
		for i, j := 0, len(results)-1; i < j; i, j = i+1, j-1 {
			results[i], results[j] = results[j], results[i]
		}
	}

	var nextCursorStr, prevCursorStr string
	if nextCursor != nil {
		if nextCursorStr, err = encodeWalletLedgerCursor(nextCursor); err != nil {
			logger.WithField("err", err).Error("Error creating wallet ledger list cursor")
			return nil, "", "", err
		}
	}
	if prevCursor != nil {
		if prevCursorStr, err = encodeWalletLedgerCursor(prevCursor); err != nil {
			logger.WithField("err", err).Error("Error creating wallet ledger list cursor")
			return nil, "", "", err
		}
	}
	return results, nextCursorStr, prevCursorStr, nil
}

// flipLedgerCursors swaps the cursors of a page read backwards so that next
// keeps pointing at older rows.
func flipLedgerCursors(next, prev *entity.WalletLedgerListCursor) (*entity.WalletLedgerListCursor, *entity.WalletLedgerListCursor) {
	switch {
	case next != nil && prev != nil:
		next, prev = prev, next
		next.IsNext, prev.IsNext = true, false
	case next != nil:
		next, prev = nil, next
		prev.IsNext = false
	case prev != nil:
		next, prev = prev, nil
		next.IsNext = true
	}
	return next, prev
}

func encodeWalletLedgerCursor(c *entity.WalletLedgerListCursor) (string, error) {
	cursorBuf := new(bytes.Buffer)
	if err := gob.NewEncoder(cursorBuf).Encode(c); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(cursorBuf.Bytes()), nil
}

func decodeWalletLedgerCursor(cursor string) (*entity.WalletLedgerListCursor, error) {
	cb, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, ErrWalletLedgerInvalidCursor
	}
	c := &entity.WalletLedgerListCursor{}
	if err := gob.NewDecoder(bytes.NewReader(cb)).Decode(c); err != nil {
		return nil, ErrWalletLedgerInvalidCursor
	}
	return c, nil
}

// SumWalletCredit is the chips credited to the user with action since from.
func SumWalletCredit(ctx context.Context, db *sql.DB, userID string, action string, from time.Time) (int64, error) {
	query := `SELECT coalesce(sum(cast(changeset->>'chips' as bigint)),0)
	FROM public.wallet_ledger WHERE user_id = $1::UUID AND metadata->>'action' = $2 AND create_time >= $3`
	var chips int64
	if err := db.QueryRowContext(ctx, query, userID, action, from).Scan(&chips); err != nil {
		return 0, err
	}
	return chips, nil
}
