package repository_test

import (
	"context"
	"testing"

	"github.com/juju/errors"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"restaurant-service/internal/model"
	"restaurant-service/internal/repository"
)

func Test(t *testing.T) {
	gc.TestingT(t)
}

type memorySuite struct {
	repo *repository.Memory[*model.Order]
}

var _ = gc.Suite(&memorySuite{})

func (s *memorySuite) SetUpTest(c *gc.C) {
	s.repo = repository.NewMemory[*model.Order]("order")
}

func (s *memorySuite) TestGetMissing(c *gc.C) {
	_, err := s.repo.Get(context.Background(), "nope")
	c.Assert(err, jc.ErrorIs, errors.NotFound)
	c.Assert(err, gc.ErrorMatches, `order "nope" not found`)
}

func (s *memorySuite) TestSaveRequiresID(c *gc.C) {
	err := s.repo.Save(context.Background(), &model.Order{})
	c.Assert(err, jc.ErrorIs, errors.NotValid)
}

func (s *memorySuite) TestListKeepsInsertionOrder(c *gc.C) {
	ctx := context.Background()
	for _, id := range []string{"c", "a", "b"} {
		c.Assert(s.repo.Save(ctx, &model.Order{ID: id}), jc.ErrorIsNil)
	}
	// Replacing an entity keeps its position.
	c.Assert(s.repo.Save(ctx, &model.Order{ID: "c", Status: model.OrderReady}), jc.ErrorIsNil)

	orders, err := s.repo.List(ctx)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(orders, gc.HasLen, 3)
	c.Check(orders[0].ID, gc.Equals, "c")
	c.Check(orders[0].Status, gc.Equals, model.OrderReady)
	c.Check(orders[1].ID, gc.Equals, "a")
	c.Check(orders[2].ID, gc.Equals, "b")
}

func (s *memorySuite) TestValuesAreIsolated(c *gc.C) {
	ctx := context.Background()
	order := &model.Order{ID: "o1", Lines: []model.OrderLine{{MenuItemID: "m1", Quantity: 1}}}
	c.Assert(s.repo.Save(ctx, order), jc.ErrorIsNil)

	order.Lines[0].Quantity = 99

	got, err := s.repo.Get(ctx, "o1")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(got.Lines[0].Quantity, gc.Equals, 1)

	got.Lines[0].Quantity = 42
	again, err := s.repo.Get(ctx, "o1")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(again.Lines[0].Quantity, gc.Equals, 1)
}

func (s *memorySuite) TestDeleteIsIdempotent(c *gc.C) {
	ctx := context.Background()
	c.Assert(s.repo.Save(ctx, &model.Order{ID: "a"}), jc.ErrorIsNil)
	c.Assert(s.repo.Save(ctx, &model.Order{ID: "b"}), jc.ErrorIsNil)

	c.Assert(s.repo.Delete(ctx, "a"), jc.ErrorIsNil)
	c.Assert(s.repo.Delete(ctx, "a"), jc.ErrorIsNil)

	orders, err := s.repo.List(ctx)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(orders, gc.HasLen, 1)
	c.Check(orders[0].ID, gc.Equals, "b")
}
