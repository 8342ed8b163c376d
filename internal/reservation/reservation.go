// Package reservation books tables for parties arriving later.
package reservation

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"go.uber.org/zap"

	"restaurant-service/internal/apperror"
	"restaurant-service/internal/model"
	"restaurant-service/internal/repository"
	"restaurant-service/internal/waitlist"
)

// DefaultSlot is how long a booking holds its table.
const DefaultSlot = 2 * time.Hour

// Floor is the part of the floor reservations need.
type Floor interface {
	Get(ctx context.Context, tableID string) (*model.Table, error)
	Allocate(ctx context.Context, tableID, partyName string, partySize int) (*model.Table, error)
}

// Config holds the Reservation dependencies.
type Config struct {
	Reservations repository.Repository[*model.Reservation]
	Floor        Floor
	Clock        clock.Clock
	Logger       *zap.Logger

	// Slot is how long a booking holds its table. Two active bookings for
	// the same table must start at least Slot apart. Zero means DefaultSlot.
	Slot time.Duration
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Reservations == nil {
		return errors.NotValidf("nil Reservations")
	}
	if c.Floor == nil {
		return errors.NotValidf("nil Floor")
	}
	if c.Clock == nil {
		return errors.NotValidf("nil Clock")
	}
	if c.Logger == nil {
		return errors.NotValidf("nil Logger")
	}
	if c.Slot < 0 {
		return errors.NotValidf("slot %v", c.Slot)
	}
	return nil
}

// Service owns reservations.
type Service struct {
	cfg Config
}

// NewService returns a Reservation service.
func NewService(cfg Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	if cfg.Slot == 0 {
		cfg.Slot = DefaultSlot
	}
	return &Service{cfg: cfg}, nil
}

// NewReservation describes a booking request.
type NewReservation struct {
	CustomerID    string
	CustomerName  string
	CustomerPhone string
	PartySize     int
	DateTime      time.Time
	TableID       string
	Notes         string
}

// Update lists the fields staff may change. Nil fields are left unchanged.
// An empty TableID clears the table.
type Update struct {
	CustomerName  *string
	CustomerPhone *string
	PartySize     *int
	DateTime      *time.Time
	TableID       *string
	Notes         *string
	Status        *model.ReservationStatus
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	CustomerID string
	// Day matches bookings on the same calendar day in Day's location.
	Day    time.Time
	Status model.ReservationStatus
}

// next lists the status changes Update may make. Seating goes through Seat.
var next = map[model.ReservationStatus][]model.ReservationStatus{
	model.ReservationPending:   {model.ReservationConfirmed, model.ReservationCancelled, model.ReservationNoShow},
	model.ReservationConfirmed: {model.ReservationCancelled, model.ReservationNoShow},
}

// Create books a table for later. The time must be in the future.
func (s *Service) Create(ctx context.Context, args NewReservation) (*model.Reservation, error) {
	now := s.cfg.Clock.Now()
	r := &model.Reservation{
		ID:            uuid.NewString(),
		CustomerID:    args.CustomerID,
		CustomerName:  strings.TrimSpace(args.CustomerName),
		CustomerPhone: strings.TrimSpace(args.CustomerPhone),
		PartySize:     args.PartySize,
		DateTime:      args.DateTime,
		TableID:       args.TableID,
		Status:        model.ReservationPending,
		Notes:         args.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.check(ctx, r); err != nil {
		return nil, errors.Trace(err)
	}
	if err := s.cfg.Reservations.Save(ctx, r); err != nil {
		return nil, errors.Trace(err)
	}
	s.cfg.Logger.Info("Reservation created",
		zap.String("reservation_id", r.ID),
		zap.String("customer_name", r.CustomerName),
		zap.Int("party_size", r.PartySize),
		zap.Time("date_time", r.DateTime))
	return r, nil
}

// Get returns a reservation.
func (s *Service) Get(ctx context.Context, id string) (*model.Reservation, error) {
	r, err := s.cfg.Reservations.Get(ctx, id)
	return r, errors.Trace(err)
}

// List returns the matching reservations, soonest first.
func (s *Service) List(ctx context.Context, filter Filter) ([]*model.Reservation, error) {
	all, err := s.cfg.Reservations.List(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	out := all[:0]
	for _, r := range all {
		if filter.CustomerID != "" && r.CustomerID != filter.CustomerID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if !filter.Day.IsZero() && !sameDay(r.DateTime, filter.Day) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DateTime.Before(out[j].DateTime) })
	return out, nil
}

// Update applies staff changes. Seated, cancelled and no-show bookings
// cannot change.
func (s *Service) Update(ctx context.Context, id string, update Update) (*model.Reservation, error) {
	r, err := s.cfg.Reservations.Get(ctx, id)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if r.Status.Final() {
		return nil, errors.Annotatef(apperror.InvalidTransition, "reservation %q is %s", id, r.Status)
	}
	if update.Status != nil && *update.Status != r.Status {
		if !update.Status.Valid() {
			return nil, errors.NotValidf("reservation status %q", *update.Status)
		}
		if !allowed(r.Status, *update.Status) {
			return nil, errors.Annotatef(apperror.InvalidTransition, "reservation %q from %s to %s", id, r.Status, *update.Status)
		}
		r.Status = *update.Status
	}
	if update.CustomerName != nil {
		r.CustomerName = strings.TrimSpace(*update.CustomerName)
	}
	if update.CustomerPhone != nil {
		r.CustomerPhone = strings.TrimSpace(*update.CustomerPhone)
	}
	if update.PartySize != nil {
		r.PartySize = *update.PartySize
	}
	if update.DateTime != nil {
		r.DateTime = *update.DateTime
	}
	if update.TableID != nil {
		r.TableID = *update.TableID
	}
	if update.Notes != nil {
		r.Notes = *update.Notes
	}
	if !r.Status.Final() {
		if err := s.check(ctx, r); err != nil {
			return nil, errors.Trace(err)
		}
	}
	r.UpdatedAt = s.cfg.Clock.Now()
	if err := s.cfg.Reservations.Save(ctx, r); err != nil {
		return nil, errors.Trace(err)
	}
	s.cfg.Logger.Info("Reservation updated",
		zap.String("reservation_id", r.ID),
		zap.String("status", string(r.Status)))
	return r, nil
}

// Cancel withdraws a booking. A non-empty customerID must own it.
// Cancelling twice is a no-op.
func (s *Service) Cancel(ctx context.Context, id, customerID string) (*model.Reservation, error) {
	r, err := s.cfg.Reservations.Get(ctx, id)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if customerID != "" && r.CustomerID != customerID {
		return nil, errors.NotFoundf("reservation %q", id)
	}
	if r.Status == model.ReservationCancelled {
		return r, nil
	}
	status := model.ReservationCancelled
	r, err = s.Update(ctx, id, Update{Status: &status})
	return r, errors.Trace(err)
}

// Seat puts the party at a table. An empty tableID uses the booked table.
func (s *Service) Seat(ctx context.Context, id, tableID string) (*model.Reservation, error) {
	r, err := s.cfg.Reservations.Get(ctx, id)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if r.Status.Final() {
		return nil, errors.Annotatef(apperror.InvalidTransition, "reservation %q is %s", id, r.Status)
	}
	if tableID == "" {
		tableID = r.TableID
	}
	if tableID == "" {
		return nil, errors.NotValidf("seating reservation %q without a table", id)
	}
	if _, err := s.cfg.Floor.Allocate(ctx, tableID, r.CustomerName, r.PartySize); err != nil {
		return nil, errors.Trace(err)
	}
	r.Status = model.ReservationSeated
	r.TableID = tableID
	r.UpdatedAt = s.cfg.Clock.Now()
	if err := s.cfg.Reservations.Save(ctx, r); err != nil {
		return nil, errors.Trace(err)
	}
	s.cfg.Logger.Info("Reservation seated",
		zap.String("reservation_id", r.ID),
		zap.String("table_id", tableID))
	return r, nil
}

func (s *Service) check(ctx context.Context, r *model.Reservation) error {
	if r.CustomerName == "" {
		return errors.NotValidf("empty customer name")
	}
	if r.PartySize < waitlist.MinPartySize || r.PartySize > waitlist.MaxPartySize {
		return errors.Annotatef(apperror.InvalidPartySize, "%d not in [%d, %d]",
			r.PartySize, waitlist.MinPartySize, waitlist.MaxPartySize)
	}
	if !r.DateTime.After(s.cfg.Clock.Now()) {
		return errors.NotValidf("reservation time %s in the past", r.DateTime.Format(time.RFC3339))
	}
	if r.TableID == "" {
		return nil
	}
	table, err := s.cfg.Floor.Get(ctx, r.TableID)
	if err != nil {
		return errors.Trace(err)
	}
	if r.PartySize > table.Capacity {
		return errors.Annotatef(apperror.CapacityExceeded,
			"party of %d at table %d seating %d", r.PartySize, table.Number, table.Capacity)
	}
	return errors.Trace(s.ensureSlotFree(ctx, r, table.Number))
}

func (s *Service) ensureSlotFree(ctx context.Context, r *model.Reservation, number int) error {
	all, err := s.cfg.Reservations.List(ctx)
	if err != nil {
		return errors.Trace(err)
	}
	for _, other := range all {
		if other.ID == r.ID || other.TableID != r.TableID || other.Status.Final() {
			continue
		}
		gap := other.DateTime.Sub(r.DateTime)
		if gap < 0 {
			gap = -gap
		}
		if gap < s.cfg.Slot {
			return errors.AlreadyExistsf("reservation for table %d at %s", number, other.DateTime.Format(time.RFC3339))
		}
	}
	return nil
}

func allowed(from, to model.ReservationStatus) bool {
	for _, s := range next[from] {
		if s == to {
			return true
		}
	}
	return false
}

func sameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
