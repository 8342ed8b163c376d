package model

import (
	"time"
)

// ReservationStatus is the state of a booking
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationSeated    ReservationStatus = "seated"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationNoShow    ReservationStatus = "no_show"
)

// Valid reports whether s is a known reservation status
func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationSeated, ReservationCancelled, ReservationNoShow:
		return true
	}
	return false
}

// Final reports whether no further change is allowed
func (s ReservationStatus) Final() bool {
	return s == ReservationSeated || s == ReservationCancelled || s == ReservationNoShow
}

// Reservation is a booking for a party at a future time
type Reservation struct {
	ID            string            `json:"id" gorm:"type:varchar(36);primaryKey"`
	CustomerID    string            `json:"customer_id" gorm:"type:varchar(255);index"`
	CustomerName  string            `json:"customer_name" gorm:"type:varchar(255);not null"`
	CustomerPhone string            `json:"customer_phone,omitempty" gorm:"type:varchar(50)"`
	PartySize     int               `json:"party_size" gorm:"not null"`
	DateTime      time.Time         `json:"date_time" gorm:"index;not null"`
	TableID       string            `json:"table_id,omitempty" gorm:"type:varchar(36)"`
	Status        ReservationStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	Notes         string            `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// EntityID returns the primary key
func (r *Reservation) EntityID() string { return r.ID }

// Clone returns a copy of r
func (r *Reservation) Clone() *Reservation {
	c := *r
	return &c
}
