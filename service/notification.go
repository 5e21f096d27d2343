package service

import (
	"context"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/nk-nigeria/vip-module/constant"
	"github.com/nk-nigeria/vip-module/entity"
)

const DefaultNotificationCap = 50

type NotificationService struct {
	repo     NotificationRepository
	pusher   Pusher
	capacity int
	logger   runtime.Logger
}

func NewNotificationService(repo NotificationRepository, pusher Pusher, capacity int, logger runtime.Logger) *NotificationService {
	if capacity <= 0 {
		capacity = DefaultNotificationCap
	}
	if logger == nil {
		logger = &entity.EmptyLogger{}
	}
	return &NotificationService{
		repo:     repo,
		pusher:   pusher,
		capacity: capacity,
		logger:   logger,
	}
}

// Notify stores n, trimming the recipient's oldest notifications beyond the
// cap, then pushes it to online sessions. Push failures are only logged.
func (s *NotificationService) Notify(ctx context.Context, n *entity.Notification) error {
	if n == nil || n.RecipientId == "" || n.Title == "" || n.Message == "" {
		return ErrInvalidNotification
	}
	if n.Category == "" {
		n.Category = constant.NotificationCategory_Info
	}
	if !n.Category.Valid() || n.DurationMs < 0 {
		return ErrInvalidNotification
	}
	if n.SenderId == "" {
		n.SenderId = constant.UUID_USER_SYSTEM
	}
	n.Read = false
	if err := s.repo.AddNotification(ctx, n, s.capacity); err != nil {
		return err
	}
	if s.pusher != nil {
		if err := s.pusher.Push(ctx, n); err != nil {
			s.logger.Warn("Push notification %d to %s error %s", n.Id, n.RecipientId, err.Error())
		}
	}
	return nil
}

func (s *NotificationService) List(ctx context.Context, userID string, req *entity.NotificationRequest) (*entity.ListNotification, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	if req == nil {
		req = &entity.NotificationRequest{}
	}
	limit := req.Limit
	if limit <= 0 || limit > int64(s.capacity) {
		limit = int64(s.capacity)
	}
	list, err := s.repo.ListNotification(ctx, userID, limit, req.Cursor, req.UnreadOnly)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.CountUnreadNotification(ctx, userID)
	if err != nil {
		s.logger.Warn("Count unread notification user %s error %s", userID, err.Error())
	}
	list.Unread = unread
	return list, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID string, id int64) error {
	if userID == "" {
		return ErrMissingUser
	}
	if id <= 0 {
		return ErrNotificationNotFound
	}
	return s.repo.ReadNotification(ctx, id, userID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrMissingUser
	}
	return s.repo.ReadAllNotification(ctx, userID)
}

func (s *NotificationService) Delete(ctx context.Context, userID string, id int64) error {
	if userID == "" {
		return ErrMissingUser
	}
	if id <= 0 {
		return ErrNotificationNotFound
	}
	return s.repo.DeleteNotification(ctx, id, userID)
}

func (s *NotificationService) DeleteAll(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrMissingUser
	}
	return s.repo.DeleteAllNotification(ctx, userID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, ErrMissingUser
	}
	return s.repo.CountUnreadNotification(ctx, userID)
}

// Prune deletes read notifications older than retention.
func (s *NotificationService) Prune(ctx context.Context, now time.Time, retention time.Duration) (int64, error) {
	return s.repo.PruneNotification(ctx, now.Add(-retention))
}
