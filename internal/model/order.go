package model

import (
	"time"
)

// OrderStatus is the kitchen/payment state of an order
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderCompleted OrderStatus = "completed"
	OrderPaid      OrderStatus = "paid"
)

// OrderSequence is the only order in which an order may move
var OrderSequence = []OrderStatus{OrderPending, OrderPreparing, OrderReady, OrderCompleted, OrderPaid}

// Index returns the position of s in OrderSequence, or -1
func (s OrderStatus) Index() int {
	for i, v := range OrderSequence {
		if v == s {
			return i
		}
	}
	return -1
}

// Open reports whether the kitchen still has work to do on the order
func (s OrderStatus) Open() bool {
	return s == OrderPending || s == OrderPreparing || s == OrderReady
}

// OrderLine is one menu item on an order, priced at order time. UnitPrice
// includes the chosen modifiers.
type OrderLine struct {
	MenuItemID      string         `json:"menu_item_id"`
	Name            string         `json:"name"`
	Quantity        int            `json:"quantity"`
	UnitPrice       float64        `json:"unit_price"`
	SpecialRequests string         `json:"special_requests,omitempty"`
	Modifiers       []LineModifier `json:"modifiers,omitempty"`
}

// Order represents a table's order
type Order struct {
	ID           string      `json:"id" gorm:"type:varchar(36);primaryKey"`
	TableID      string      `json:"table_id" gorm:"type:varchar(36);index;not null"`
	Lines        []OrderLine `json:"lines" gorm:"serializer:json"`
	Subtotal     float64     `json:"subtotal" gorm:"type:decimal(10,2)"`
	Tax          float64     `json:"tax" gorm:"type:decimal(10,2)"`
	Total        float64     `json:"total" gorm:"type:decimal(10,2)"`
	Status       OrderStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	CustomerName string      `json:"customer_name,omitempty" gorm:"type:varchar(255)"`
	CreatedBy    string      `json:"created_by,omitempty" gorm:"type:varchar(255)"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	CompletedAt  *time.Time  `json:"completed_at,omitempty"`
}

// EntityID returns the primary key
func (o *Order) EntityID() string { return o.ID }

// Clone returns a copy that shares no memory with o
func (o *Order) Clone() *Order {
	c := *o
	c.Lines = append([]OrderLine(nil), o.Lines...)
	for i := range c.Lines {
		c.Lines[i].Modifiers = append([]LineModifier(nil), o.Lines[i].Modifiers...)
	}
	if o.CompletedAt != nil {
		t := *o.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}
