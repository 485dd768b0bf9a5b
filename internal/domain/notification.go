package domain

import "time"

// NotificationType drives how the dashboard renders a notification.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationAlert   NotificationType = "alert"
)

// Notification is an in-app message for the surrounding application.
type Notification struct {
	ID          string
	ComplaintID string
	Message     string
	Type        NotificationType
	Read        bool
	CreatedAt   time.Time
}
