package model

import (
	"time"
)

// NotifyAll addresses a notification to every user
const NotifyAll = "all"

// Notification is a message shown in a user's notification centre
type Notification struct {
	ID        string     `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID    string     `json:"user_id" gorm:"type:varchar(255);index;not null"`
	Type      string     `json:"type" gorm:"type:varchar(50)"`
	Title     string     `json:"title" gorm:"type:varchar(255);not null"`
	Message   string     `json:"message" gorm:"type:text"`
	Read      bool       `json:"read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// EntityID returns the primary key
func (n *Notification) EntityID() string { return n.ID }

// Clone returns a copy of n
func (n *Notification) Clone() *Notification {
	c := *n
	if n.ReadAt != nil {
		t := *n.ReadAt
		c.ReadAt = &t
	}
	return &c
}

// For reports whether userID should see the notification
func (n *Notification) For(userID string) bool {
	return n.UserID == NotifyAll || n.UserID == userID
}
