package entity

import (
	"errors"
	"time"

	"github.com/nk-nigeria/vip-module/constant"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationAction struct {
	Label string `json:"label"`
	Route string `json:"route"`
}

type Notification struct {
	Id             int64                         `json:"id"`
	RecipientId    string                        `json:"recipientId"`
	SenderId       string                        `json:"senderId,omitempty"`
	Title          string                        `json:"title"`
	Message        string                        `json:"message"`
	Category       constant.NotificationCategory `json:"category"`
	DurationMs     int64                         `json:"durationMs,omitempty"`
	Action         *NotificationAction           `json:"action,omitempty"`
	Read           bool                          `json:"read"`
	CreateTimeUnix int64                         `json:"createTimeUnix"`
}

// Content is the payload of the realtime Nakama notification.
func (n *Notification) Content() map[string]interface{} {
	content := map[string]interface{}{
		"id":       n.Id,
		"message":  n.Message,
		"category": string(n.Category),
	}
	if n.DurationMs > 0 {
		content["durationMs"] = n.DurationMs
	}
	if n.Action != nil {
		content["action"] = map[string]interface{}{
			"label": n.Action.Label,
			"route": n.Action.Route,
		}
	}
	return content
}

type NotificationRequest struct {
	Id         int64  `json:"id"`
	Limit      int64  `json:"limit"`
	Cursor     string `json:"cursor"`
	UnreadOnly bool   `json:"unreadOnly"`
}

type ListNotification struct {
	Notifications []*Notification `json:"notifications"`
	NextCursor    string          `json:"nextCursor"`
	PrevCursor    string          `json:"prevCursor"`
	Total         int64           `json:"total"`
	Offset        int64           `json:"offset"`
	Limit         int64           `json:"limit"`
	Unread        int64           `json:"unread"`
}

type NotificationListCursor struct {
	Id         int64
	UserId     string
	Offset     int64
	CreateTime time.Time
	IsNext     bool
	Total      int64
	UnreadOnly bool
}
