package ledger

import (
	"context"
	"time"

	"github.com/juju/errors"

	"restaurant-service/internal/model"
)

// ReceiptLine is a priced order line.
type ReceiptLine struct {
	Name            string               `json:"name"`
	Quantity        int                  `json:"quantity"`
	UnitPrice       float64              `json:"unit_price"`
	LineTotal       float64              `json:"line_total"`
	SpecialRequests string               `json:"special_requests,omitempty"`
	Modifiers       []model.LineModifier `json:"modifiers,omitempty"`
}

// Receipt is the customer copy of an order.
type Receipt struct {
	Restaurant   string        `json:"restaurant"`
	Currency     string        `json:"currency"`
	OrderID      string        `json:"order_id"`
	TableNumber  int           `json:"table_number"`
	CustomerName string        `json:"customer_name,omitempty"`
	Lines        []ReceiptLine `json:"lines"`
	Subtotal     float64       `json:"subtotal"`
	TaxRate      float64       `json:"tax_rate"`
	Tax          float64       `json:"tax"`
	Total        float64       `json:"total"`
	Status       string        `json:"status"`
	IssuedAt     time.Time     `json:"issued_at"`
}

// TicketLine is one line on the kitchen ticket.
type TicketLine struct {
	Name            string   `json:"name"`
	Quantity        int      `json:"quantity"`
	SpecialRequests string   `json:"special_requests,omitempty"`
	Modifiers       []string `json:"modifiers,omitempty"`
}

// KitchenTicket is the kitchen copy of an order, without prices.
type KitchenTicket struct {
	OrderID         string       `json:"order_id"`
	TableNumber     int          `json:"table_number"`
	Status          string       `json:"status"`
	Lines           []TicketLine `json:"lines"`
	PrepTimeMinutes int          `json:"prep_time_minutes"`
	PlacedAt        time.Time    `json:"placed_at"`
}

// Receipt builds the receipt for an order.
func (s *Service) Receipt(ctx context.Context, orderID string) (*Receipt, error) {
	order, err := s.cfg.Orders.Get(ctx, orderID)
	if err != nil {
		return nil, errors.Trace(err)
	}
	number, err := s.tableNumber(ctx, order.TableID)
	if err != nil {
		return nil, errors.Trace(err)
	}
	r := &Receipt{
		Restaurant:   s.cfg.RestaurantName,
		Currency:     s.cfg.Currency,
		OrderID:      order.ID,
		TableNumber:  number,
		CustomerName: order.CustomerName,
		Subtotal:     order.Subtotal,
		TaxRate:      s.cfg.TaxRate,
		Tax:          order.Tax,
		Total:        order.Total,
		Status:       string(order.Status),
		IssuedAt:     s.cfg.Clock.Now(),
	}
	for _, l := range order.Lines {
		r.Lines = append(r.Lines, ReceiptLine{
			Name:            l.Name,
			Quantity:        l.Quantity,
			UnitPrice:       l.UnitPrice,
			LineTotal:       model.RoundCents(l.UnitPrice * float64(l.Quantity)),
			SpecialRequests: l.SpecialRequests,
			Modifiers:       l.Modifiers,
		})
	}
	return r, nil
}

// KitchenTicket builds the kitchen ticket for an order. The prep time is
// that of the slowest dish still on the menu.
func (s *Service) KitchenTicket(ctx context.Context, orderID string) (*KitchenTicket, error) {
	order, err := s.cfg.Orders.Get(ctx, orderID)
	if err != nil {
		return nil, errors.Trace(err)
	}
	number, err := s.tableNumber(ctx, order.TableID)
	if err != nil {
		return nil, errors.Trace(err)
	}
	t := &KitchenTicket{
		OrderID:     order.ID,
		TableNumber: number,
		Status:      string(order.Status),
		PlacedAt:    order.CreatedAt,
	}
	for _, l := range order.Lines {
		line := TicketLine{
			Name:            l.Name,
			Quantity:        l.Quantity,
			SpecialRequests: l.SpecialRequests,
		}
		for _, m := range l.Modifiers {
			line.Modifiers = append(line.Modifiers, m.Name)
		}
		t.Lines = append(t.Lines, line)
		item, err := s.cfg.Catalog.Get(ctx, l.MenuItemID)
		if errors.Is(err, errors.NotFound) {
			continue
		} else if err != nil {
			return nil, errors.Trace(err)
		}
		if item.PrepTimeMinutes > t.PrepTimeMinutes {
			t.PrepTimeMinutes = item.PrepTimeMinutes
		}
	}
	return t, nil
}

// tableNumber returns 0 for tables removed from the floor plan.
func (s *Service) tableNumber(ctx context.Context, tableID string) (int, error) {
	table, err := s.cfg.Floor.Get(ctx, tableID)
	if errors.Is(err, errors.NotFound) {
		return 0, nil
	} else if err != nil {
		return 0, errors.Trace(err)
	}
	return table.Number, nil
}
