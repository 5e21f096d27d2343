// Package service holds the VIP and notification services. They are built
// once in InitModule and handed to the RPC and event handlers.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/nk-nigeria/vip-module/entity"
)

var (
	ErrMissingUser          = errors.New("missing user id")
	ErrInvalidNotification  = errors.New("invalid notification")
	ErrNotificationNotFound = entity.ErrNotificationNotFound
)

// ProgressStore keeps one serialized VipProgress per user. An empty value
// means no record. WriteVip fails when version no longer matches.
type ProgressStore interface {
	ReadVip(ctx context.Context, userID string) (value string, version string, err error)
	WriteVip(ctx context.Context, userID, value, version string) (newVersion string, err error)
}

type WagerStats interface {
	WageredTotal(ctx context.Context, userID string) (int64, error)
}

type Notifier interface {
	Notify(ctx context.Context, n *entity.Notification) error
}

type EventPublisher interface {
	PublishEvent(subject, name string, properties map[string]string)
}

type PointsBoard interface {
	WriteLifetimePoints(ctx context.Context, userID string, points int64) error
}

type NotificationRepository interface {
	AddNotification(ctx context.Context, n *entity.Notification, capacity int) error
	ListNotification(ctx context.Context, userID string, limit int64, cursor string, unreadOnly bool) (*entity.ListNotification, error)
	ReadNotification(ctx context.Context, id int64, userID string) error
	ReadAllNotification(ctx context.Context, userID string) error
	DeleteNotification(ctx context.Context, id int64, userID string) error
	DeleteAllNotification(ctx context.Context, userID string) error
	CountUnreadNotification(ctx context.Context, userID string) (int64, error)
	PruneNotification(ctx context.Context, readBefore time.Time) (int64, error)
}

// Pusher delivers a stored notification to connected clients.
type Pusher interface {
	Push(ctx context.Context, n *entity.Notification) error
}
