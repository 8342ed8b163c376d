package model

import (
	"time"

	"gorm.io/gorm"
)

// MenuItemStatus is the kitchen availability of a menu item
type MenuItemStatus string

const (
	MenuItemAvailable   MenuItemStatus = "available"
	MenuItemLimited     MenuItemStatus = "limited"
	MenuItemUnavailable MenuItemStatus = "unavailable"
)

// Valid reports whether s is a known menu item status
func (s MenuItemStatus) Valid() bool {
	switch s {
	case MenuItemAvailable, MenuItemLimited, MenuItemUnavailable:
		return true
	}
	return false
}

// MenuItem represents a dish on the menu
type MenuItem struct {
	ID              string         `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name            string         `json:"name" gorm:"type:varchar(255);not null"`
	Description     string         `json:"description" gorm:"type:text"`
	Price           float64        `json:"price" gorm:"type:decimal(10,2);not null"`
	Category        string         `json:"category" gorm:"type:varchar(100);index"`
	Status          MenuItemStatus `json:"status" gorm:"type:varchar(20);not null;default:'available'"`
	PrepTimeMinutes int            `json:"prep_time_minutes" gorm:"not null"`
	Popularity      int            `json:"popularity" gorm:"default:0"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
}

// EntityID returns the primary key
func (m *MenuItem) EntityID() string { return m.ID }

// Clone returns a copy of m
func (m *MenuItem) Clone() *MenuItem {
	c := *m
	return &c
}
