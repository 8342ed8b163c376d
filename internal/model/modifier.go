package model

import (
	"time"
)

// ModifierType says how many options of a modifier a line may pick
type ModifierType string

const (
	ModifierSingle   ModifierType = "single"
	ModifierMultiple ModifierType = "multiple"
)

// Valid reports whether t is a known modifier type
func (t ModifierType) Valid() bool {
	return t == ModifierSingle || t == ModifierMultiple
}

// ModifierOption is one choice of a modifier and what it adds to the price
type ModifierOption struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Modifier is a group of options offered with a menu item, such as a size
// or extra toppings
type Modifier struct {
	ID         string           `json:"id" gorm:"type:varchar(36);primaryKey"`
	MenuItemID string           `json:"menu_item_id" gorm:"type:varchar(36);index;not null"`
	Name       string           `json:"name" gorm:"type:varchar(255);not null"`
	Type       ModifierType     `json:"type" gorm:"type:varchar(20);not null"`
	Options    []ModifierOption `json:"options" gorm:"serializer:json"`
	Required   bool             `json:"required"`
	CreatedAt  time.Time        `json:"created_at"`
}

// EntityID returns the primary key
func (m *Modifier) EntityID() string { return m.ID }

// Clone returns a copy that shares no memory with m
func (m *Modifier) Clone() *Modifier {
	c := *m
	c.Options = append([]ModifierOption(nil), m.Options...)
	return &c
}

// ModifierChoice picks one option of a modifier for an order line
type ModifierChoice struct {
	ModifierID string `json:"modifier_id"`
	OptionID   string `json:"option_id"`
}

// LineModifier is a chosen option, priced at order time
type LineModifier struct {
	ModifierID string  `json:"modifier_id"`
	OptionID   string  `json:"option_id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
}
