// Package cart holds the lines a single customer or staff member is about to
// order. A Cart lives for one checkout and is never stored.
package cart

import (
	"strconv"
	"strings"

	"github.com/juju/errors"

	"restaurant-service/internal/model"
)

// Line is one item in the cart, priced when it was added. UnitPrice is the
// item price plus its modifiers.
type Line struct {
	ID              string               `json:"id"`
	MenuItemID      string               `json:"menu_item_id"`
	Name            string               `json:"name"`
	Quantity        int                  `json:"quantity"`
	UnitPrice       float64              `json:"unit_price"`
	SpecialRequests string               `json:"special_requests,omitempty"`
	Modifiers       []model.LineModifier `json:"modifiers,omitempty"`
}

// Cart is not safe for concurrent use.
type Cart struct {
	lines  []Line
	nextID int
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// FromOrderLines seeds a cart with the lines of an existing order.
func FromOrderLines(lines []model.OrderLine) *Cart {
	c := New()
	for _, l := range lines {
		c.add(l.MenuItemID, l.Name, l.UnitPrice, l.Quantity, l.SpecialRequests, l.Modifiers)
	}
	return c
}

// Add puts one of item in the cart, merging with a line for the same item,
// special requests and modifiers. Modifiers are expected in a stable order.
// It returns the line id.
func (c *Cart) Add(item *model.MenuItem, specialRequests string, modifiers ...model.LineModifier) string {
	return c.add(item.ID, item.Name, unitPrice(item, modifiers), 1, specialRequests, modifiers)
}

// AddQuantity is Add for quantity units.
func (c *Cart) AddQuantity(item *model.MenuItem, quantity int, specialRequests string, modifiers ...model.LineModifier) (string, error) {
	if quantity <= 0 {
		return "", errors.NotValidf("quantity %d for %q", quantity, item.Name)
	}
	return c.add(item.ID, item.Name, unitPrice(item, modifiers), quantity, specialRequests, modifiers), nil
}

func unitPrice(item *model.MenuItem, modifiers []model.LineModifier) float64 {
	price := item.Price
	for _, m := range modifiers {
		price += m.Price
	}
	return model.RoundCents(price)
}

func (c *Cart) add(menuItemID, name string, price float64, quantity int, requests string, modifiers []model.LineModifier) string {
	if i := c.find(menuItemID, requests, modifierKey(modifiers), ""); i >= 0 {
		c.lines[i].Quantity += quantity
		return c.lines[i].ID
	}
	c.nextID++
	line := Line{
		ID:              "line-" + strconv.Itoa(c.nextID),
		MenuItemID:      menuItemID,
		Name:            name,
		Quantity:        quantity,
		UnitPrice:       price,
		SpecialRequests: requests,
		Modifiers:       append([]model.LineModifier(nil), modifiers...),
	}
	c.lines = append(c.lines, line)
	return line.ID
}

// SetQuantity changes a line's quantity. Zero or less removes the line.
func (c *Cart) SetQuantity(lineID string, quantity int) error {
	i := c.index(lineID)
	if i < 0 {
		return errors.NotFoundf("cart line %q", lineID)
	}
	if quantity <= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
		return nil
	}
	c.lines[i].Quantity = quantity
	return nil
}

// SetRequests changes a line's special requests. A line that ends up
// matching another is folded into it.
func (c *Cart) SetRequests(lineID, specialRequests string) error {
	i := c.index(lineID)
	if i < 0 {
		return errors.NotFoundf("cart line %q", lineID)
	}
	if j := c.find(c.lines[i].MenuItemID, specialRequests, modifierKey(c.lines[i].Modifiers), lineID); j >= 0 {
		c.lines[j].Quantity += c.lines[i].Quantity
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
		return nil
	}
	c.lines[i].SpecialRequests = specialRequests
	return nil
}

// Remove drops a line. Unknown ids are ignored.
func (c *Cart) Remove(lineID string) {
	if i := c.index(lineID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
}

// Total is the sum of unit price times quantity, in cents precision.
func (c *Cart) Total() float64 {
	total := 0.0
	for _, l := range c.lines {
		total += l.UnitPrice * float64(l.Quantity)
	}
	return model.RoundCents(total)
}

// ItemCount is the number of units across all lines.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Lines returns a copy of the cart lines in the order they were added.
func (c *Cart) Lines() []Line {
	out := append([]Line(nil), c.lines...)
	for i := range out {
		out[i].Modifiers = append([]model.LineModifier(nil), out[i].Modifiers...)
	}
	return out
}

// OrderLines converts the cart into order lines.
func (c *Cart) OrderLines() []model.OrderLine {
	out := make([]model.OrderLine, 0, len(c.lines))
	for _, l := range c.lines {
		out = append(out, model.OrderLine{
			MenuItemID:      l.MenuItemID,
			Name:            l.Name,
			Quantity:        l.Quantity,
			UnitPrice:       l.UnitPrice,
			SpecialRequests: l.SpecialRequests,
			Modifiers:       append([]model.LineModifier(nil), l.Modifiers...),
		})
	}
	return out
}

func (c *Cart) index(lineID string) int {
	for i, l := range c.lines {
		if l.ID == lineID {
			return i
		}
	}
	return -1
}

func (c *Cart) find(menuItemID, requests, modifiers, exceptID string) int {
	for i, l := range c.lines {
		if l.MenuItemID == menuItemID && l.SpecialRequests == requests &&
			modifierKey(l.Modifiers) == modifiers && l.ID != exceptID {
			return i
		}
	}
	return -1
}

func modifierKey(modifiers []model.LineModifier) string {
	parts := make([]string, 0, len(modifiers))
	for _, m := range modifiers {
		parts = append(parts, m.ModifierID+"/"+m.OptionID)
	}
	return strings.Join(parts, ",")
}
