package waitlist_test

import (
	"context"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/juju/errors"
	jc "github.com/juju/testing/checkers"
	"go.uber.org/zap"
	gc "gopkg.in/check.v1"

	"restaurant-service/internal/apperror"
	"restaurant-service/internal/floor"
	"restaurant-service/internal/model"
	"restaurant-service/internal/repository"
	"restaurant-service/internal/waitlist"
)

func Test(t *testing.T) {
	gc.TestingT(t)
}

type waitlistSuite struct {
	ctx   context.Context
	floor *floor.Service
	svc   *waitlist.Service
}

var _ = gc.Suite(&waitlistSuite{})

func (s *waitlistSuite) SetUpTest(c *gc.C) {
	s.ctx = context.Background()
	clk := testclock.NewClock(time.Date(2024, 5, 1, 18, 30, 0, 0, time.UTC))

	var err error
	s.floor, err = floor.NewService(floor.Config{
		Tables: repository.NewMemory[*model.Table]("table"),
		Clock:  clk,
		Logger: zap.NewNop(),
	})
	c.Assert(err, jc.ErrorIsNil)
	s.svc, err = waitlist.NewService(waitlist.Config{
		Entries: repository.NewMemory[*model.WaitlistEntry]("waitlist entry"),
		Floor:   s.floor,
		Clock:   clk,
		Logger:  zap.NewNop(),
	})
	c.Assert(err, jc.ErrorIsNil)
}

func (s *waitlistSuite) TestEstimateMinutes(c *gc.C) {
	for _, t := range []struct {
		parties, tables, want int
	}{
		{0, 3, 0},
		{1, 0, 15},
		{3, 1, 45},
		{3, 2, 23},
		{4, 4, 15},
		{5, 3, 25},
	} {
		c.Check(waitlist.EstimateMinutes(t.parties, t.tables), gc.Equals, t.want,
			gc.Commentf("%d parties, %d tables", t.parties, t.tables))
	}
}

func (s *waitlistSuite) TestThreePartiesOneTable(c *gc.C) {
	_, err := s.floor.Create(s.ctx, floor.NewTable{Number: 1, Capacity: 4})
	c.Assert(err, jc.ErrorIsNil)

	var last *model.WaitlistEntry
	for i, name := range []string{"Diaz", "Lee", "Okafor"} {
		last, err = s.svc.Add(s.ctx, name, 2, "")
		c.Assert(err, jc.ErrorIsNil)
		c.Check(last.EstimatedWaitMinutes, gc.Equals, (i+1)*15)
	}
	c.Check(last.EstimatedWaitMinutes, gc.Equals, 45)

	wait, err := s.svc.EstimateWait(s.ctx)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(wait, gc.Equals, 45)

	avg, err := s.svc.AverageWait(s.ctx)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(avg, gc.Equals, 30.0)
}

func (s *waitlistSuite) TestAddPartySizeBounds(c *gc.C) {
	for _, size := range []int{0, -1, 21} {
		_, err := s.svc.Add(s.ctx, "Diaz", size, "")
		c.Check(err, jc.ErrorIs, apperror.InvalidPartySize, gc.Commentf("size %d", size))
	}
	for _, size := range []int{1, 20} {
		_, err := s.svc.Add(s.ctx, "Diaz", size, "")
		c.Check(err, jc.ErrorIsNil, gc.Commentf("size %d", size))
	}
	_, err := s.svc.Add(s.ctx, "  ", 2, "")
	c.Check(err, jc.ErrorIs, errors.NotValid)
}

func (s *waitlistSuite) TestRemoveIsIdempotent(c *gc.C) {
	entry, err := s.svc.Add(s.ctx, "Diaz", 2, "555-0100")
	c.Assert(err, jc.ErrorIsNil)

	c.Assert(s.svc.Remove(s.ctx, entry.ID), jc.ErrorIsNil)
	c.Assert(s.svc.Remove(s.ctx, entry.ID), jc.ErrorIsNil)
	c.Assert(s.svc.Remove(s.ctx, "missing"), jc.ErrorIsNil)

	got, err := s.svc.Get(s.ctx, entry.ID)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(got.Status, gc.Equals, model.WaitlistCancelled)

	waiting, err := s.svc.List(s.ctx)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(waiting, gc.HasLen, 0)
}

func (s *waitlistSuite) TestSeat(c *gc.C) {
	table, err := s.floor.Create(s.ctx, floor.NewTable{Number: 3, Capacity: 4})
	c.Assert(err, jc.ErrorIsNil)
	first, err := s.svc.Add(s.ctx, "Diaz", 3, "")
	c.Assert(err, jc.ErrorIsNil)
	second, err := s.svc.Add(s.ctx, "Lee", 6, "")
	c.Assert(err, jc.ErrorIsNil)

	_, err = s.svc.Seat(s.ctx, second.ID, table.ID)
	c.Assert(err, jc.ErrorIs, apperror.CapacityExceeded)

	seated, err := s.svc.Seat(s.ctx, first.ID, table.ID)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(seated.Status, gc.Equals, model.WaitlistSeated)
	c.Check(seated.TableID, gc.Equals, table.ID)

	got, err := s.floor.Get(s.ctx, table.ID)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(got.Status, gc.Equals, model.TableOccupied)
	c.Check(got.Occupant.PartyName, gc.Equals, "Diaz")

	_, err = s.svc.Seat(s.ctx, first.ID, table.ID)
	c.Assert(err, jc.ErrorIs, apperror.InvalidTransition)

	// Removing a seated party does nothing.
	c.Assert(s.svc.Remove(s.ctx, first.ID), jc.ErrorIsNil)
	got2, err := s.svc.Get(s.ctx, first.ID)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(got2.Status, gc.Equals, model.WaitlistSeated)

	waiting, err := s.svc.List(s.ctx)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(waiting, gc.HasLen, 1)
	c.Check(waiting[0].ID, gc.Equals, second.ID)
}
