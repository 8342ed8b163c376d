package model

import (
	"time"
)

// WaitlistStatus is the state of a waiting party
type WaitlistStatus string

const (
	WaitlistWaiting   WaitlistStatus = "waiting"
	WaitlistSeated    WaitlistStatus = "seated"
	WaitlistCancelled WaitlistStatus = "cancelled"
)

// WaitlistEntry represents a party waiting for a table
type WaitlistEntry struct {
	ID                   string         `json:"id" gorm:"type:varchar(36);primaryKey"`
	PartyName            string         `json:"party_name" gorm:"type:varchar(255);not null"`
	PartySize            int            `json:"party_size" gorm:"not null"`
	Phone                string         `json:"phone,omitempty" gorm:"type:varchar(50)"`
	EstimatedWaitMinutes int            `json:"estimated_wait_minutes"`
	Status               WaitlistStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	TableID              string         `json:"table_id,omitempty" gorm:"type:varchar(36)"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// EntityID returns the primary key
func (w *WaitlistEntry) EntityID() string { return w.ID }

// Clone returns a copy of w
func (w *WaitlistEntry) Clone() *WaitlistEntry {
	c := *w
	return &c
}
