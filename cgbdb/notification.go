package cgbdb

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/gob"
	"encoding/json"
	"sort"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/jackc/pgtype"
	"github.com/nk-nigeria/vip-module/constant"
	"github.com/nk-nigeria/vip-module/entity"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// CREATE TABLE public.vip_notification (
//
//	id bigint NOT NULL DEFAULT nextval('vip_notification_id_seq'),
//	recipient_id character varying(128) NOT NULL,
//	sender_id character varying(128) NOT NULL,
//	title character varying(256) NOT NULL,
//	message text NOT NULL,
//	category character varying(32) NOT NULL,
//	duration_ms bigint NOT NULL DEFAULT 0,
//	action jsonb NULL,
//	read boolean NOT NULL DEFAULT false,
//	create_time timestamp with time zone NOT NULL DEFAULT now(),
//	update_time timestamp with time zone NOT NULL DEFAULT now(),
//	constraint vip_notification_pk primary key (id)
// );

const NotificationTableName = "vip_notification"

const notificationColumns = "id, recipient_id, sender_id, title, message, category, duration_ms, action, read, create_time"

func AddNotification(ctx context.Context, logger runtime.Logger, db *sql.DB, notification *entity.Notification, capacity int) error {
	if notification == nil || notification.Title == "" || notification.Message == "" || notification.RecipientId == "" {
		return status.Error(codes.InvalidArgument, "Error add notification.")
	}
	var action sql.NullString
	if notification.Action != nil {
		data, err := json.Marshal(notification.Action)
		if err != nil {
			return status.Error(codes.InvalidArgument, "Error add notification.")
		}
		action = sql.NullString{String: string(data), Valid: true}
	}
	query := "INSERT INTO " + NotificationTableName +
		" (recipient_id, sender_id, title, message, category, duration_ms, action, read, create_time, update_time)" +
		" VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, false, now(), now()) RETURNING id, create_time"
	var dbCreateTime pgtype.Timestamptz
	err := db.QueryRowContext(ctx, query,
		notification.RecipientId, notification.SenderId, notification.Title, notification.Message,
		string(notification.Category), notification.DurationMs, action).
		Scan(&notification.Id, &dbCreateTime)
	if err != nil {
		logger.Error("Add notification, category: %s, title: %s, error %s",
			notification.Category, notification.Title, err.Error())
		return status.Error(codes.Internal, "Error add notification.")
	}
	notification.CreateTimeUnix = dbCreateTime.Time.Unix()
	if capacity > 0 {
		if err := TrimNotification(ctx, logger, db, notification.RecipientId, capacity); err != nil {
			return err
		}
	}
	return nil
}

// TrimNotification keeps only the newest capacity notifications of a user.
func TrimNotification(ctx context.Context, logger runtime.Logger, db *sql.DB, userId string, capacity int) error {
	query := "DELETE FROM " + NotificationTableName + " WHERE recipient_id=$1 AND id NOT IN " +
		"(SELECT id FROM " + NotificationTableName + " WHERE recipient_id=$1 ORDER BY id DESC LIMIT $2)"
	if _, err := db.ExecContext(ctx, query, userId, capacity); err != nil {
		logger.Error("Trim notification user %s, error %s", userId, err.Error())
		return status.Error(codes.Internal, "Trim notification error")
	}
	return nil
}

func scanNotification(rows *sql.Rows) (*entity.Notification, error) {
	var dbID, dbDurationMs int64
	var dbRecipientId, dbSenderId, dbTitle, dbMessage, dbCategory string
	var dbAction sql.NullString
	var dbRead bool
	var dbCreateTime pgtype.Timestamptz
	err := rows.Scan(&dbID, &dbRecipientId, &dbSenderId, &dbTitle, &dbMessage,
		&dbCategory, &dbDurationMs, &dbAction, &dbRead, &dbCreateTime)
	if err != nil {
		return nil, err
	}
	n := &entity.Notification{
		Id:             dbID,
		RecipientId:    dbRecipientId,
		SenderId:       dbSenderId,
		Title:          dbTitle,
		Message:        dbMessage,
		Category:       constant.NotificationCategory(dbCategory),
		DurationMs:     dbDurationMs,
		Read:           dbRead,
		CreateTimeUnix: dbCreateTime.Time.Unix(),
	}
	if dbAction.Valid && dbAction.String != "" {
		action := &entity.NotificationAction{}
		if json.Unmarshal([]byte(dbAction.String), action) == nil {
			n.Action = action
		}
	}
	return n, nil
}

func ReadNotification(ctx context.Context, logger runtime.Logger, db *sql.DB, id int64, userId string) error {
	query := "UPDATE " + NotificationTableName + " SET read=true, update_time=now() WHERE id=$1 and recipient_id=$2"
	result, err := db.ExecContext(ctx, query, id, userId)
	if err != nil {
		logger.Error("Read notification id %d, user %s, error %s", id, userId, err.Error())
		return status.Error(codes.Internal, "Read notification error")
	}
	if rowsAffectedCount, _ := result.RowsAffected(); rowsAffectedCount == 0 {
		return entity.ErrNotificationNotFound
	}
	return nil
}

func ReadAllNotification(ctx context.Context, logger runtime.Logger, db *sql.DB, userId string) error {
	query := "UPDATE " + NotificationTableName + " SET read=true, update_time=now() WHERE recipient_id=$1 and read=false"
	if _, err := db.ExecContext(ctx, query, userId); err != nil {
		logger.Error("Read all notification, user %s, error %s", userId, err.Error())
		return status.Error(codes.Internal, "Read all notification error")
	}
	return nil
}

func DeleteNotification(ctx context.Context, logger runtime.Logger, db *sql.DB, id int64, userId string) error {
	query := "DELETE FROM " + NotificationTableName + " WHERE id=$1 and recipient_id=$2"
	result, err := db.ExecContext(ctx, query, id, userId)
	if err != nil {
		logger.Error("Delete notification by id %d, error %s", id, err.Error())
		return status.Error(codes.Internal, "Delete notification error")
	}
	if rowsAffectedCount, _ := result.RowsAffected(); rowsAffectedCount == 0 {
		return entity.ErrNotificationNotFound
	}
	return nil
}

func DeleteAllNotification(ctx context.Context, logger runtime.Logger, db *sql.DB, userId string) error {
	query := "DELETE FROM " + NotificationTableName + " WHERE recipient_id=$1"
	if _, err := db.ExecContext(ctx, query, userId); err != nil {
		logger.Error("Delete all notification, user %s, error %s", userId, err.Error())
		return status.Error(codes.Internal, "Delete notification error")
	}
	return nil
}

func CountUnreadNotification(ctx context.Context, logger runtime.Logger, db *sql.DB, userId string) (int64, error) {
	query := "SELECT count(*) FROM " + NotificationTableName + " WHERE recipient_id=$1 and read=false"
	var total int64
	if err := db.QueryRowContext(ctx, query, userId).Scan(&total); err != nil {
		logger.Error("Count unread notification user %s, error %s", userId, err.Error())
		return 0, status.Error(codes.Internal, "Count notification error")
	}
	return total, nil
}

// PruneNotification deletes read notifications created before readBefore.
func PruneNotification(ctx context.Context, logger runtime.Logger, db *sql.DB, readBefore time.Time) (int64, error) {
	query := "DELETE FROM " + NotificationTableName + " WHERE read=true and create_time < $1"
	result, err := db.ExecContext(ctx, query, readBefore)
	if err != nil {
		logger.Error("Prune notification before %s, error %s", readBefore.String(), err.Error())
		return 0, status.Error(codes.Internal, "Prune notification error")
	}
	deleted, _ := result.RowsAffected()
	return deleted, nil
}

func GetListNotification(ctx context.Context, logger runtime.Logger, db *sql.DB, limit int64, cursor string, userId string, unreadOnly bool) (*entity.ListNotification, error) {
	var incomingCursor = &entity.NotificationListCursor{}
	if cursor != "" {
		c, err := DecodeNotificationCursor(cursor)
		if err != nil || c.UserId != userId {
			return nil, ErrNotificationInvalidCursor
		}
		incomingCursor = c
		unreadOnly = c.UnreadOnly
		logger.Debug("GetListNotification with cursor %d, offset %d", incomingCursor.Id, incomingCursor.Offset)
	}
	if limit <= 0 {
		limit = 100
	}

	where := " WHERE recipient_id=$1"
	if unreadOnly {
		where += " and read=false"
	}
	params := []interface{}{userId}
	query := where
	if incomingCursor.Id > 0 {
		params = append(params, incomingCursor.Id, limit)
		if incomingCursor.IsNext {
			query += " and id < $2 order by id desc limit $3"
		} else {
			query += " and id > $2 order by id asc limit $3"
		}
	} else {
		params = append(params, limit)
		query += " order by id desc limit $2"
	}
	rows, err := db.QueryContext(ctx, "SELECT "+notificationColumns+" FROM "+NotificationTableName+query, params...)
	if err != nil {
		logger.Error("Query lists notification, error %s", err.Error())
		return nil, status.Error(codes.Internal, "Query lists notification")
	}
	defer rows.Close()
	ml := make([]*entity.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			logger.Error("Scan notification, error %s", err.Error())
			return nil, status.Error(codes.Internal, "Query lists notification")
		}
		ml = append(ml, n)
	}
	sort.Slice(ml, func(i, j int) bool {
		return ml[i].Id > ml[j].Id
	})

	total := incomingCursor.Total
	if total <= 0 {
		if err := db.QueryRowContext(ctx, "SELECT count(*) FROM "+NotificationTableName+where, userId).Scan(&total); err != nil {
			logger.Error("Count notification, error %s", err.Error())
		}
	}
	nextCursor, prevCursor := pageCursors(incomingCursor, ml, limit, total, userId, unreadOnly)

	var nextCursorStr, prevCursorStr string
	if nextCursor != nil {
		if nextCursorStr, err = EncodeNotificationCursor(nextCursor); err != nil {
			logger.WithField("err", err).Error("Error creating list cursor")
			return nil, err
		}
	}
	if prevCursor != nil {
		if prevCursorStr, err = EncodeNotificationCursor(prevCursor); err != nil {
			logger.WithField("err", err).Error("Error creating list cursor")
			return nil, err
		}
	}
	return &entity.ListNotification{
		Notifications: ml,
		NextCursor:    nextCursorStr,
		PrevCursor:    prevCursorStr,
		Total:         total,
		Offset:        incomingCursor.Offset,
		Limit:         limit,
	}, nil
}

// pageCursors builds cursors around a page sorted by id desc. A cursor's
// Offset is the offset of the page it leads to.
func pageCursors(in *entity.NotificationListCursor, ml []*entity.Notification, limit, total int64, userId string, unreadOnly bool) (next, prev *entity.NotificationListCursor) {
	if len(ml) == 0 {
		return nil, nil
	}
	if in.Offset+int64(len(ml)) < total {
		next = &entity.NotificationListCursor{
			Id:         ml[len(ml)-1].Id,
			UserId:     userId,
			Offset:     in.Offset + int64(len(ml)),
			IsNext:     true,
			Total:      total,
			UnreadOnly: unreadOnly,
		}
	}
	if in.Offset > 0 {
		prevOffset := in.Offset - limit
		if prevOffset < 0 {
			prevOffset = 0
		}
		prev = &entity.NotificationListCursor{
			Id:         ml[0].Id,
			UserId:     userId,
			Offset:     prevOffset,
			IsNext:     false,
			Total:      total,
			UnreadOnly: unreadOnly,
		}
	}
	return next, prev
}

func EncodeNotificationCursor(c *entity.NotificationListCursor) (string, error) {
	cursorBuf := new(bytes.Buffer)
	if err := gob.NewEncoder(cursorBuf).Encode(c); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(cursorBuf.Bytes()), nil
}

func DecodeNotificationCursor(cursor string) (*entity.NotificationListCursor, error) {
	cb, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, ErrNotificationInvalidCursor
	}
	c := &entity.NotificationListCursor{}
	if err := gob.NewDecoder(bytes.NewReader(cb)).Decode(c); err != nil {
		return nil, ErrNotificationInvalidCursor
	}
	return c, nil
}

// NotificationStore adapts the functions above to service.NotificationRepository.
type NotificationStore struct {
	db     *sql.DB
	logger runtime.Logger
}

func NewNotificationStore(db *sql.DB, logger runtime.Logger) *NotificationStore {
	return &NotificationStore{db: db, logger: logger}
}

func (s *NotificationStore) AddNotification(ctx context.Context, n *entity.Notification, capacity int) error {
	return AddNotification(ctx, s.logger, s.db, n, capacity)
}

func (s *NotificationStore) ListNotification(ctx context.Context, userID string, limit int64, cursor string, unreadOnly bool) (*entity.ListNotification, error) {
	return GetListNotification(ctx, s.logger, s.db, limit, cursor, userID, unreadOnly)
}

func (s *NotificationStore) ReadNotification(ctx context.Context, id int64, userID string) error {
	return ReadNotification(ctx, s.logger, s.db, id, userID)
}

func (s *NotificationStore) ReadAllNotification(ctx context.Context, userID string) error {
	return ReadAllNotification(ctx, s.logger, s.db, userID)
}

func (s *NotificationStore) DeleteNotification(ctx context.Context, id int64, userID string) error {
	return DeleteNotification(ctx, s.logger, s.db, id, userID)
}

func (s *NotificationStore) DeleteAllNotification(ctx context.Context, userID string) error {
	return DeleteAllNotification(ctx, s.logger, s.db, userID)
}

func (s *NotificationStore) CountUnreadNotification(ctx context.Context, userID string) (int64, error) {
	return CountUnreadNotification(ctx, s.logger, s.db, userID)
}

func (s *NotificationStore) PruneNotification(ctx context.Context, readBefore time.Time) (int64, error) {
	return PruneNotification(ctx, s.logger, s.db, readBefore)
}
