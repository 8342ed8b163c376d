package model

import (
	"time"
)

// PaymentMethod is how a bill was settled
type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "cash"
	PaymentCard    PaymentMethod = "card"
	PaymentDigital PaymentMethod = "digital"
)

// Valid reports whether m is a known payment method
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentDigital:
		return true
	}
	return false
}

// Bill aggregates the completed orders of a table. TotalAmount is fixed
// when the bill is generated.
type Bill struct {
	ID            string        `json:"id" gorm:"type:varchar(36);primaryKey"`
	TableID       string        `json:"table_id" gorm:"type:varchar(36);index;not null"`
	OrderIDs      []string      `json:"order_ids" gorm:"serializer:json"`
	TotalAmount   float64       `json:"total_amount" gorm:"type:decimal(10,2)"`
	IsPaid        bool          `json:"is_paid" gorm:"default:false"`
	PaymentMethod PaymentMethod `json:"payment_method,omitempty" gorm:"type:varchar(20)"`
	ProcessorRef  string        `json:"processor_ref,omitempty" gorm:"type:varchar(255)"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// EntityID returns the primary key
func (b *Bill) EntityID() string { return b.ID }

// Clone returns a copy that shares no memory with b
func (b *Bill) Clone() *Bill {
	c := *b
	c.OrderIDs = append([]string(nil), b.OrderIDs...)
	if b.PaidAt != nil {
		t := *b.PaidAt
		c.PaidAt = &t
	}
	return &c
}
