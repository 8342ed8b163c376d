// Package waitlist keeps the parties waiting for a table.
package waitlist

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"go.uber.org/zap"

	"restaurant-service/internal/apperror"
	"restaurant-service/internal/model"
	"restaurant-service/internal/repository"
	"restaurant-service/prometheus"
)

const (
	// MinutesPerParty is the wait added by each party ahead in the queue.
	MinutesPerParty = 15

	MinPartySize = 1
	MaxPartySize = 20
)

// Floor is the part of the floor the waitlist needs.
type Floor interface {
	AvailableCount(ctx context.Context) (int, error)
	Allocate(ctx context.Context, tableID, partyName string, partySize int) (*model.Table, error)
}

// Config holds the Waitlist dependencies.
type Config struct {
	Entries repository.Repository[*model.WaitlistEntry]
	Floor   Floor
	Clock   clock.Clock
	Logger  *zap.Logger
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Entries == nil {
		return errors.NotValidf("nil Entries")
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
	return nil
}

// Service owns the waitlist.
type Service struct {
	cfg Config
}

// NewService returns a Waitlist service.
func NewService(cfg Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &Service{cfg: cfg}, nil
}

// EstimateMinutes is ceil(parties*15 / max(1, availableTables)).
func EstimateMinutes(parties, availableTables int) int {
	if availableTables < 1 {
		availableTables = 1
	}
	total := parties * MinutesPerParty
	return (total + availableTables - 1) / availableTables
}

// Add puts a party at the back of the queue.
func (s *Service) Add(ctx context.Context, partyName string, partySize int, phone string) (*model.WaitlistEntry, error) {
	if partySize < MinPartySize || partySize > MaxPartySize {
		return nil, errors.Annotatef(apperror.InvalidPartySize, "%d not in [%d, %d]", partySize, MinPartySize, MaxPartySize)
	}
	partyName = strings.TrimSpace(partyName)
	if partyName == "" {
		return nil, errors.NotValidf("empty party name")
	}

	waiting, err := s.waiting(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	available, err := s.cfg.Floor.AvailableCount(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}

	now := s.cfg.Clock.Now()
	entry := &model.WaitlistEntry{
		ID:                   uuid.NewString(),
		PartyName:            partyName,
		PartySize:            partySize,
		Phone:                strings.TrimSpace(phone),
		EstimatedWaitMinutes: EstimateMinutes(len(waiting)+1, available),
		Status:               model.WaitlistWaiting,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.cfg.Entries.Save(ctx, entry); err != nil {
		return nil, errors.Trace(err)
	}
	prometheus.UpdateWaitingParties(len(waiting) + 1)
	s.cfg.Logger.Info("Party added to waitlist",
		zap.String("entry_id", entry.ID),
		zap.String("party_name", entry.PartyName),
		zap.Int("party_size", entry.PartySize),
		zap.Int("estimated_wait_minutes", entry.EstimatedWaitMinutes))
	return entry, nil
}

// Remove cancels a waiting party. Unknown or already closed entries are
// left alone.
func (s *Service) Remove(ctx context.Context, entryID string) error {
	entry, err := s.cfg.Entries.Get(ctx, entryID)
	if errors.Is(err, errors.NotFound) {
		return nil
	} else if err != nil {
		return errors.Trace(err)
	}
	if entry.Status != model.WaitlistWaiting {
		return nil
	}
	entry.Status = model.WaitlistCancelled
	entry.UpdatedAt = s.cfg.Clock.Now()
	if err := s.cfg.Entries.Save(ctx, entry); err != nil {
		return errors.Trace(err)
	}
	s.refreshGauge(ctx)
	s.cfg.Logger.Info("Party removed from waitlist", zap.String("entry_id", entryID))
	return nil
}

// Seat allocates a table to a waiting party.
func (s *Service) Seat(ctx context.Context, entryID, tableID string) (*model.WaitlistEntry, error) {
	entry, err := s.cfg.Entries.Get(ctx, entryID)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if entry.Status != model.WaitlistWaiting {
		return nil, errors.Annotatef(apperror.InvalidTransition, "waitlist entry %q is %s", entryID, entry.Status)
	}
	if _, err := s.cfg.Floor.Allocate(ctx, tableID, entry.PartyName, entry.PartySize); err != nil {
		return nil, errors.Trace(err)
	}
	entry.Status = model.WaitlistSeated
	entry.TableID = tableID
	entry.UpdatedAt = s.cfg.Clock.Now()
	if err := s.cfg.Entries.Save(ctx, entry); err != nil {
		return nil, errors.Trace(err)
	}
	s.refreshGauge(ctx)
	s.cfg.Logger.Info("Waiting party seated",
		zap.String("entry_id", entry.ID),
		zap.String("table_id", tableID))
	return entry, nil
}

// Get returns an entry in any status.
func (s *Service) Get(ctx context.Context, entryID string) (*model.WaitlistEntry, error) {
	entry, err := s.cfg.Entries.Get(ctx, entryID)
	return entry, errors.Trace(err)
}

// List returns the waiting parties in arrival order.
func (s *Service) List(ctx context.Context) ([]*model.WaitlistEntry, error) {
	waiting, err := s.waiting(ctx)
	return waiting, errors.Trace(err)
}

// EstimateWait applies EstimateMinutes to the parties waiting now.
func (s *Service) EstimateWait(ctx context.Context) (int, error) {
	waiting, err := s.waiting(ctx)
	if err != nil {
		return 0, errors.Trace(err)
	}
	available, err := s.cfg.Floor.AvailableCount(ctx)
	if err != nil {
		return 0, errors.Trace(err)
	}
	return EstimateMinutes(len(waiting), available), nil
}

// AverageWait is the mean quoted wait of the parties still waiting.
func (s *Service) AverageWait(ctx context.Context) (float64, error) {
	waiting, err := s.waiting(ctx)
	if err != nil {
		return 0, errors.Trace(err)
	}
	if len(waiting) == 0 {
		return 0, nil
	}
	total := 0
	for _, e := range waiting {
		total += e.EstimatedWaitMinutes
	}
	return float64(total) / float64(len(waiting)), nil
}

func (s *Service) waiting(ctx context.Context) ([]*model.WaitlistEntry, error) {
	entries, err := s.cfg.Entries.List(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	out := entries[:0]
	for _, e := range entries {
		if e.Status == model.WaitlistWaiting {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Service) refreshGauge(ctx context.Context) {
	if waiting, err := s.waiting(ctx); err == nil {
		prometheus.UpdateWaitingParties(len(waiting))
	}
}
