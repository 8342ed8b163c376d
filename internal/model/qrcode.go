package model

import (
	"time"
)

// QRCode links a printed table code to a table for customer ordering
type QRCode struct {
	Code        string    `json:"code" gorm:"type:varchar(64);primaryKey"`
	TableID     string    `json:"table_id" gorm:"type:varchar(36);index;not null"`
	TableNumber int       `json:"table_number"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// EntityID returns the primary key
func (q *QRCode) EntityID() string { return q.Code }

// Clone returns a copy of q
func (q *QRCode) Clone() *QRCode {
	c := *q
	return &c
}

// All lists every persisted model, for migrations
func All() []interface{} {
	return []interface{}{
		&MenuItem{}, &Modifier{}, &Table{}, &WaitlistEntry{}, &Reservation{},
		&Order{}, &Bill{}, &QRCode{}, &Notification{},
	}
}
