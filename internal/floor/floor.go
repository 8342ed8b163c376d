// Package floor manages the restaurant's tables and who is sitting at them.
package floor

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"go.uber.org/zap"

	"restaurant-service/internal/apperror"
	"restaurant-service/internal/model"
	"restaurant-service/internal/repository"
	"restaurant-service/prometheus"
)

// Config holds the Floor dependencies.
type Config struct {
	Tables repository.Repository[*model.Table]
	Clock  clock.Clock
	Logger *zap.Logger

	// GuardReoccupy rejects setting an occupied table to occupied again.
	GuardReoccupy bool

	// InUse reports whether a table still has orders that are not paid.
	// Such tables cannot be deleted.
	InUse func(ctx context.Context, tableID string) (bool, error)
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Tables == nil {
		return errors.NotValidf("nil Tables")
	}
	if c.Clock == nil {
		return errors.NotValidf("nil Clock")
	}
	if c.Logger == nil {
		return errors.NotValidf("nil Logger")
	}
	return nil
}

// Service owns table state.
type Service struct {
	cfg Config
}

// NewService returns a Floor service.
func NewService(cfg Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &Service{cfg: cfg}, nil
}

// NewTable describes a table added to the floor plan.
type NewTable struct {
	Number   int
	Capacity int
	Position model.Position
}

// TableUpdate lists the fields staff may edit on a table. Nil fields are
// left unchanged.
type TableUpdate struct {
	Number   *int
	Capacity *int
	Position *model.Position
	Status   *model.TableStatus
}

// Create adds a table. Numbers are unique.
func (s *Service) Create(ctx context.Context, args NewTable) (*model.Table, error) {
	if args.Number <= 0 {
		return nil, errors.NotValidf("table number %d", args.Number)
	}
	if args.Capacity <= 0 {
		return nil, errors.NotValidf("capacity %d", args.Capacity)
	}
	if err := s.ensureNumberFree(ctx, args.Number, ""); err != nil {
		return nil, errors.Trace(err)
	}

	now := s.cfg.Clock.Now()
	table := &model.Table{
		ID:        uuid.NewString(),
		Number:    args.Number,
		Capacity:  args.Capacity,
		Status:    model.TableAvailable,
		Position:  args.Position,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.cfg.Tables.Save(ctx, table); err != nil {
		return nil, errors.Trace(err)
	}
	s.cfg.Logger.Info("Table created",
		zap.String("table_id", table.ID),
		zap.Int("number", table.Number),
		zap.Int("capacity", table.Capacity))
	return table, nil
}

// Get returns a table.
func (s *Service) Get(ctx context.Context, tableID string) (*model.Table, error) {
	table, err := s.cfg.Tables.Get(ctx, tableID)
	return table, errors.Trace(err)
}

// List returns all tables ordered by number.
func (s *Service) List(ctx context.Context) ([]*model.Table, error) {
	tables, err := s.cfg.Tables.List(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].Number < tables[j].Number })
	return tables, nil
}

// Update applies a TableUpdate. Every field is checked before anything is
// saved, so a rejected update leaves the table untouched. Capacity changes
// do not evict a seated party that no longer fits.
func (s *Service) Update(ctx context.Context, tableID string, update TableUpdate) (*model.Table, error) {
	if update.Number != nil && *update.Number <= 0 {
		return nil, errors.NotValidf("table number %d", *update.Number)
	}
	if update.Capacity != nil && *update.Capacity <= 0 {
		return nil, errors.NotValidf("capacity %d", *update.Capacity)
	}
	if update.Status != nil && !update.Status.Valid() {
		return nil, errors.NotValidf("table status %q", *update.Status)
	}
	table, err := s.cfg.Tables.Get(ctx, tableID)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if update.Number != nil && *update.Number != table.Number {
		if err := s.ensureNumberFree(ctx, *update.Number, table.ID); err != nil {
			return nil, errors.Trace(err)
		}
	}
	if update.Status != nil {
		if err := s.checkStatus(table, *update.Status); err != nil {
			return nil, errors.Trace(err)
		}
	}

	previous := table.Status
	if update.Number != nil {
		table.Number = *update.Number
	}
	if update.Capacity != nil {
		table.Capacity = *update.Capacity
	}
	if update.Position != nil {
		table.Position = *update.Position
	}
	if update.Status != nil {
		applyStatus(table, *update.Status)
	}
	if err := s.save(ctx, table); err != nil {
		return nil, errors.Trace(err)
	}
	if table.Status != previous {
		s.cfg.Logger.Info("Table status changed",
			zap.String("table_id", table.ID),
			zap.Int("number", table.Number),
			zap.String("from", string(previous)),
			zap.String("to", string(table.Status)))
	}
	return table, nil
}

// Delete removes a table from the floor plan. Only free tables with no
// unpaid orders can go.
func (s *Service) Delete(ctx context.Context, tableID string) error {
	table, err := s.cfg.Tables.Get(ctx, tableID)
	if errors.Is(err, errors.NotFound) {
		return nil
	} else if err != nil {
		return errors.Trace(err)
	}
	if table.Status != model.TableAvailable {
		return errors.Annotatef(apperror.InvalidTransition, "deleting table %d while %s", table.Number, table.Status)
	}
	if s.cfg.InUse != nil {
		used, err := s.cfg.InUse(ctx, tableID)
		if err != nil {
			return errors.Trace(err)
		}
		if used {
			return errors.Annotatef(apperror.InUse, "table %d has unpaid orders", table.Number)
		}
	}
	return errors.Trace(s.cfg.Tables.Delete(ctx, tableID))
}

// SetStatus overwrites a table's status. Staff may move between any two
// statuses; entering available or cleaning clears the occupant, while
// occupied and reserved keep whatever occupant is already set.
func (s *Service) SetStatus(ctx context.Context, tableID string, status model.TableStatus) (*model.Table, error) {
	table, err := s.Update(ctx, tableID, TableUpdate{Status: &status})
	return table, errors.Trace(err)
}

// Allocate seats a party at an available table. Capacity is checked before
// availability.
func (s *Service) Allocate(ctx context.Context, tableID, partyName string, partySize int) (*model.Table, error) {
	table, err := s.seatable(ctx, tableID, partySize)
	if err != nil {
		return nil, errors.Trace(err)
	}
	table.Status = model.TableOccupied
	table.Occupant = &model.Occupant{
		PartyName: partyName,
		PartySize: partySize,
		SeatedAt:  s.cfg.Clock.Now(),
	}
	if err := s.save(ctx, table); err != nil {
		return nil, errors.Trace(err)
	}
	s.cfg.Logger.Info("Party seated",
		zap.String("table_id", table.ID),
		zap.Int("number", table.Number),
		zap.String("party_name", partyName),
		zap.Int("party_size", partySize))
	return table, nil
}

// Reserve holds an available table for a named party.
func (s *Service) Reserve(ctx context.Context, tableID, partyName string, partySize int) (*model.Table, error) {
	table, err := s.seatable(ctx, tableID, partySize)
	if err != nil {
		return nil, errors.Trace(err)
	}
	table.Status = model.TableReserved
	table.Occupant = &model.Occupant{
		PartyName: partyName,
		PartySize: partySize,
		SeatedAt:  s.cfg.Clock.Now(),
	}
	if err := s.save(ctx, table); err != nil {
		return nil, errors.Trace(err)
	}
	s.cfg.Logger.Info("Table reserved",
		zap.String("table_id", table.ID),
		zap.Int("number", table.Number),
		zap.String("party_name", partyName))
	return table, nil
}

// Release frees a table. It does not check for unpaid bills.
func (s *Service) Release(ctx context.Context, tableID string) (*model.Table, error) {
	table, err := s.SetStatus(ctx, tableID, model.TableAvailable)
	return table, errors.Trace(err)
}

// AvailableCount returns the number of tables that are free right now.
func (s *Service) AvailableCount(ctx context.Context) (int, error) {
	tables, err := s.cfg.Tables.List(ctx)
	if err != nil {
		return 0, errors.Trace(err)
	}
	n := 0
	for _, t := range tables {
		if t.Status == model.TableAvailable {
			n++
		}
	}
	return n, nil
}

func (s *Service) seatable(ctx context.Context, tableID string, partySize int) (*model.Table, error) {
	if partySize <= 0 {
		return nil, errors.NotValidf("party size %d", partySize)
	}
	table, err := s.cfg.Tables.Get(ctx, tableID)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if partySize > table.Capacity {
		return nil, errors.Annotatef(apperror.CapacityExceeded,
			"party of %d at table %d seating %d", partySize, table.Number, table.Capacity)
	}
	if table.Status != model.TableAvailable {
		return nil, errors.Annotatef(apperror.TableUnavailable, "table %d is %s", table.Number, table.Status)
	}
	return table, nil
}

func (s *Service) checkStatus(table *model.Table, status model.TableStatus) error {
	if s.cfg.GuardReoccupy && table.Status == model.TableOccupied && status == model.TableOccupied {
		return errors.Annotatef(apperror.InvalidTransition, "table %d is already occupied", table.Number)
	}
	return nil
}

func applyStatus(table *model.Table, status model.TableStatus) {
	table.Status = status
	if status == model.TableAvailable || status == model.TableCleaning {
		table.Occupant = nil
	}
}

func (s *Service) ensureNumberFree(ctx context.Context, number int, exceptID string) error {
	tables, err := s.cfg.Tables.List(ctx)
	if err != nil {
		return errors.Trace(err)
	}
	for _, t := range tables {
		if t.Number == number && t.ID != exceptID {
			return errors.AlreadyExistsf("table number %d", number)
		}
	}
	return nil
}

func (s *Service) save(ctx context.Context, table *model.Table) error {
	table.UpdatedAt = s.cfg.Clock.Now()
	if err := s.cfg.Tables.Save(ctx, table); err != nil {
		return errors.Trace(err)
	}
	s.publishGauge(ctx)
	return nil
}

func (s *Service) publishGauge(ctx context.Context) {
	tables, err := s.cfg.Tables.List(ctx)
	if err != nil {
		return
	}
	counts := map[string]int{
		string(model.TableAvailable): 0,
		string(model.TableOccupied):  0,
		string(model.TableReserved):  0,
		string(model.TableCleaning):  0,
	}
	for _, t := range tables {
		counts[string(t.Status)]++
	}
	prometheus.UpdateTableStatus(counts)
}
