package dto

import "github.com/yigit/campusdesk/internal/pkg/notifications"

// NotificationListResponse is the caller's notification store
type NotificationListResponse struct {
	Items       []notifications.Notification `json:"items"`
	UnreadCount int                          `json:"unreadCount"`
	Connected   bool                         `json:"connected"`
}

// RealtimeStatus is pushed when the change stream goes down or comes back
type RealtimeStatus struct {
	Connected bool `json:"connected"`
}
