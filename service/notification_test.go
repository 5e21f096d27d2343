package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/nk-nigeria/vip-module/constant"
	"github.com/nk-nigeria/vip-module/entity"
	"github.com/stretchr/testify/assert"
)

func newNotification(userID string, i int) *entity.Notification {
	return &entity.Notification{
		RecipientId: userID,
		Title:       fmt.Sprintf("title %d", i),
		Message:     fmt.Sprintf("message %d", i),
		Category:    constant.NotificationCategory_Info,
	}
}

func TestNotifyValidation(t *testing.T) {
	svc := NewNotificationService(newMemNotificationRepo(), nil, 10, nil)
	tests := []struct {
		name    string
		n       *entity.Notification
		wantErr bool
	}{
		{name: "nil", n: nil, wantErr: true},
		{name: "no_recipient", n: &entity.Notification{Title: "a", Message: "b"}, wantErr: true},
		{name: "no_title", n: &entity.Notification{RecipientId: testUser, Message: "b"}, wantErr: true},
		{name: "bad_category", n: &entity.Notification{RecipientId: testUser, Title: "a", Message: "b", Category: "spam"}, wantErr: true},
		{name: "negative_duration", n: &entity.Notification{RecipientId: testUser, Title: "a", Message: "b", DurationMs: -1}, wantErr: true},
		{name: "default_category", n: &entity.Notification{RecipientId: testUser, Title: "a", Message: "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Notify(context.Background(), tt.n)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidNotification)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, constant.NotificationCategory_Info, tt.n.Category)
			assert.Equal(t, constant.UUID_USER_SYSTEM, tt.n.SenderId)
			assert.Greater(t, tt.n.Id, int64(0))
		})
	}
}

func TestNotifyCap(t *testing.T) {
	ctx := context.Background()
	repo := newMemNotificationRepo()
	pusher := &fakePusher{}
	svc := NewNotificationService(repo, pusher, 5, nil)
	for i := 0; i < 8; i++ {
		assert.NoError(t, svc.Notify(ctx, newNotification(testUser, i)))
	}
	assert.NoError(t, svc.Notify(ctx, newNotification("other-user", 0)))

	list, err := svc.List(ctx, testUser, nil)
	assert.NoError(t, err)
	assert.Len(t, list.Notifications, 5)
	assert.Equal(t, "title 7", list.Notifications[0].Title)
	assert.Equal(t, "title 3", list.Notifications[4].Title)
	assert.Equal(t, int64(5), list.Unread)
	assert.Len(t, pusher.pushed, 9)

	other, err := svc.List(ctx, "other-user", nil)
	assert.NoError(t, err)
	assert.Len(t, other.Notifications, 1)
}

func TestNotifyPushErrorIgnored(t *testing.T) {
	svc := NewNotificationService(newMemNotificationRepo(), &fakePusher{err: errors.New("offline")}, 5, nil)
	assert.NoError(t, svc.Notify(context.Background(), newNotification(testUser, 1)))
}

func TestNotificationReadDelete(t *testing.T) {
	ctx := context.Background()
	repo := newMemNotificationRepo()
	svc := NewNotificationService(repo, nil, 10, nil)
	for i := 0; i < 3; i++ {
		assert.NoError(t, svc.Notify(ctx, newNotification(testUser, i)))
	}
	list, _ := svc.List(ctx, testUser, nil)
	first := list.Notifications[0]

	assert.NoError(t, svc.MarkRead(ctx, testUser, first.Id))
	count, err := svc.UnreadCount(ctx, testUser)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), count)

	unread, err := svc.List(ctx, testUser, &entity.NotificationRequest{UnreadOnly: true})
	assert.NoError(t, err)
	assert.Len(t, unread.Notifications, 2)

	assert.ErrorIs(t, svc.MarkRead(ctx, "other-user", first.Id), ErrNotificationNotFound)
	assert.ErrorIs(t, svc.MarkRead(ctx, testUser, 0), ErrNotificationNotFound)

	assert.NoError(t, svc.MarkAllRead(ctx, testUser))
	count, _ = svc.UnreadCount(ctx, testUser)
	assert.Equal(t, int64(0), count)

	assert.NoError(t, svc.Delete(ctx, testUser, first.Id))
	list, _ = svc.List(ctx, testUser, nil)
	assert.Len(t, list.Notifications, 2)

	assert.NoError(t, svc.DeleteAll(ctx, testUser))
	list, _ = svc.List(ctx, testUser, nil)
	assert.Empty(t, list.Notifications)
}

func TestNotificationPrune(t *testing.T) {
	ctx := context.Background()
	repo := newMemNotificationRepo()
	now := time.Now()
	repo.now = func() time.Time { return now.Add(-60 * 24 * time.Hour) }
	svc := NewNotificationService(repo, nil, 10, nil)
	assert.NoError(t, svc.Notify(ctx, newNotification(testUser, 1)))
	assert.NoError(t, svc.Notify(ctx, newNotification(testUser, 2)))
	assert.NoError(t, svc.MarkRead(ctx, testUser, 1))

	deleted, err := svc.Prune(ctx, now, 30*24*time.Hour)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	list, _ := svc.List(ctx, testUser, nil)
	assert.Len(t, list.Notifications, 1)
	assert.False(t, list.Notifications[0].Read)
}

func TestNotificationMissingUser(t *testing.T) {
	svc := NewNotificationService(newMemNotificationRepo(), nil, 10, nil)
	ctx := context.Background()
	_, err := svc.List(ctx, "", nil)
	assert.ErrorIs(t, err, ErrMissingUser)
	assert.ErrorIs(t, svc.MarkAllRead(ctx, ""), ErrMissingUser)
	assert.ErrorIs(t, svc.DeleteAll(ctx, ""), ErrMissingUser)
}
