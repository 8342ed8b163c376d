// Package stats derives floor and sales figures from the other services.
// Nothing is cached; every call reads current state.
package stats

import (
	"context"
	"sort"

	"github.com/juju/errors"

	"restaurant-service/internal/catalog"
	"restaurant-service/internal/ledger"
	"restaurant-service/internal/model"
	"restaurant-service/prometheus"
)

// TopDishesLimit caps Summary.TopDishes.
const TopDishesLimit = 5

// Floor lists tables.
type Floor interface {
	List(ctx context.Context) ([]*model.Table, error)
}

// Waitlist reports the queue.
type Waitlist interface {
	List(ctx context.Context) ([]*model.WaitlistEntry, error)
	EstimateWait(ctx context.Context) (int, error)
	AverageWait(ctx context.Context) (float64, error)
}

// Ledger lists orders.
type Ledger interface {
	List(ctx context.Context, filter ledger.Filter) ([]*model.Order, error)
}

// Catalog lists menu items.
type Catalog interface {
	List(ctx context.Context, filter catalog.Filter) ([]*model.MenuItem, error)
}

// Snapshot is the live state of the floor.
type Snapshot struct {
	TotalTables          int     `json:"total_tables"`
	OccupiedTables       int     `json:"occupied_tables"`
	AvailableTables      int     `json:"available_tables"`
	OccupancyRate        float64 `json:"occupancy_rate"`
	TotalSeats           int     `json:"total_seats"`
	OccupiedSeats        int     `json:"occupied_seats"`
	WaitingParties       int     `json:"waiting_parties"`
	EstimatedWaitMinutes int     `json:"estimated_wait_minutes"`
	AverageWaitMinutes   float64 `json:"average_wait_minutes"`
	ActiveOrders         int     `json:"active_orders"`
	Revenue              float64 `json:"revenue"`
}

// DishStat is one entry of the popular dishes ranking.
type DishStat struct {
	MenuItemID string  `json:"menu_item_id"`
	Name       string  `json:"name"`
	Category   string  `json:"category,omitempty"`
	Quantity   int     `json:"quantity"`
	Revenue    float64 `json:"revenue"`
}

// Summary is the owner's sales overview over completed and paid orders.
type Summary struct {
	TotalRevenue      float64    `json:"total_revenue"`
	TotalOrders       int        `json:"total_orders"`
	AverageOrderValue float64    `json:"average_order_value"`
	TopDishes         []DishStat `json:"top_dishes"`
}

// Service computes stats.
type Service struct {
	floor    Floor
	waitlist Waitlist
	ledger   Ledger
	catalog  Catalog
}

// NewService returns a Stats service.
func NewService(fl Floor, wl Waitlist, ld Ledger, cat Catalog) *Service {
	return &Service{
		floor:    fl,
		waitlist: wl,
		ledger:   ld,
		catalog:  cat,
	}
}

// Snapshot computes the live floor figures. Occupied tables without an
// occupant count their full capacity as occupied seats.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	tables, err := s.floor.List(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	snap := &Snapshot{TotalTables: len(tables)}
	for _, t := range tables {
		snap.TotalSeats += t.Capacity
		switch t.Status {
		case model.TableAvailable:
			snap.AvailableTables++
		case model.TableOccupied:
			snap.OccupiedTables++
			if t.Occupant != nil {
				snap.OccupiedSeats += t.Occupant.PartySize
			} else {
				snap.OccupiedSeats += t.Capacity
			}
		}
	}
	if snap.TotalTables > 0 {
		snap.OccupancyRate = float64(snap.OccupiedTables) / float64(snap.TotalTables)
	}

	waiting, err := s.waitlist.List(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	snap.WaitingParties = len(waiting)
	if snap.EstimatedWaitMinutes, err = s.waitlist.EstimateWait(ctx); err != nil {
		return nil, errors.Trace(err)
	}
	if snap.AverageWaitMinutes, err = s.waitlist.AverageWait(ctx); err != nil {
		return nil, errors.Trace(err)
	}

	orders, err := s.ledger.List(ctx, ledger.Filter{})
	if err != nil {
		return nil, errors.Trace(err)
	}
	revenue := 0.0
	for _, o := range orders {
		if o.Status.Open() {
			snap.ActiveOrders++
		}
		if o.Status == model.OrderPaid {
			revenue += o.Total
		}
	}
	snap.Revenue = model.RoundCents(revenue)

	prometheus.UpdateWaitingParties(snap.WaitingParties)
	return snap, nil
}

// Summary computes the owner's sales overview.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	orders, err := s.ledger.List(ctx, ledger.Filter{})
	if err != nil {
		return nil, errors.Trace(err)
	}
	items, err := s.catalog.List(ctx, catalog.Filter{})
	if err != nil {
		return nil, errors.Trace(err)
	}
	categories := make(map[string]string, len(items))
	for _, item := range items {
		categories[item.ID] = item.Category
	}

	sum := &Summary{TopDishes: []DishStat{}}
	revenue := 0.0
	dishes := make(map[string]*DishStat)
	for _, o := range orders {
		if o.Status != model.OrderCompleted && o.Status != model.OrderPaid {
			continue
		}
		sum.TotalOrders++
		revenue += o.Total
		for _, l := range o.Lines {
			d, ok := dishes[l.MenuItemID]
			if !ok {
				d = &DishStat{MenuItemID: l.MenuItemID, Name: l.Name, Category: categories[l.MenuItemID]}
				dishes[l.MenuItemID] = d
			}
			d.Quantity += l.Quantity
			d.Revenue = model.RoundCents(d.Revenue + l.UnitPrice*float64(l.Quantity))
		}
	}
	sum.TotalRevenue = model.RoundCents(revenue)
	if sum.TotalOrders > 0 {
		sum.AverageOrderValue = model.RoundCents(revenue / float64(sum.TotalOrders))
	}

	for _, d := range dishes {
		sum.TopDishes = append(sum.TopDishes, *d)
	}
	sort.Slice(sum.TopDishes, func(i, j int) bool {
		a, b := sum.TopDishes[i], sum.TopDishes[j]
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		return a.Name < b.Name
	})
	if len(sum.TopDishes) > TopDishesLimit {
		sum.TopDishes = sum.TopDishes[:TopDishesLimit]
	}
	return sum, nil
}
