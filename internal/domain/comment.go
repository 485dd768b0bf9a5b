package domain

import "time"

// Comment captures a message in a complaint thread.
type Comment struct {
	ID          string
	ComplaintID string
	UserID      string
	UserName    string
	Content     string
	Internal    bool
	CreatedAt   time.Time
}
