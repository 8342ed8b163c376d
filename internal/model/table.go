package model

import (
	"time"
)

// TableStatus is the host-facing state of a table
type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableOccupied  TableStatus = "occupied"
	TableReserved  TableStatus = "reserved"
	TableCleaning  TableStatus = "cleaning"
)

// Valid reports whether s is a known table status
func (s TableStatus) Valid() bool {
	switch s {
	case TableAvailable, TableOccupied, TableReserved, TableCleaning:
		return true
	}
	return false
}

// Occupant is the party seated at, or holding, a table
type Occupant struct {
	PartyName string    `json:"party_name"`
	PartySize int       `json:"party_size"`
	SeatedAt  time.Time `json:"seated_at"`
}

// Position is the floor plan location of a table, for display only
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Table represents a table on the floor
type Table struct {
	ID        string      `json:"id" gorm:"type:varchar(36);primaryKey"`
	Number    int         `json:"number" gorm:"uniqueIndex;not null"`
	Capacity  int         `json:"capacity" gorm:"not null"`
	Status    TableStatus `json:"status" gorm:"type:varchar(20);not null;default:'available'"`
	Occupant  *Occupant   `json:"occupant,omitempty" gorm:"serializer:json"`
	Position  Position    `json:"position" gorm:"serializer:json"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// EntityID returns the primary key
func (t *Table) EntityID() string { return t.ID }

// Clone returns a copy that shares no memory with t
func (t *Table) Clone() *Table {
	c := *t
	if t.Occupant != nil {
		o := *t.Occupant
		c.Occupant = &o
	}
	return &c
}
