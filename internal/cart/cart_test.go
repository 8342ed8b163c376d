package cart_test

import (
	"testing"

	"github.com/juju/errors"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"restaurant-service/internal/cart"
	"restaurant-service/internal/model"
)

func Test(t *testing.T) {
	gc.TestingT(t)
}

type cartSuite struct {
	soup  *model.MenuItem
	curry *model.MenuItem
}

var _ = gc.Suite(&cartSuite{})

func (s *cartSuite) SetUpTest(c *gc.C) {
	s.soup = &model.MenuItem{ID: "soup", Name: "Soup", Price: 6.25}
	s.curry = &model.MenuItem{ID: "curry", Name: "Curry", Price: 13.9}
}

func (s *cartSuite) TestAddMergesSameRequests(c *gc.C) {
	ct := cart.New()
	first := ct.Add(s.soup, "")
	second := ct.Add(s.soup, "")
	spicy := ct.Add(s.soup, "extra chili")

	c.Check(first, gc.Equals, second)
	c.Check(spicy, gc.Not(gc.Equals), first)

	lines := ct.Lines()
	c.Assert(lines, gc.HasLen, 2)
	c.Check(lines[0].Quantity, gc.Equals, 2)
	c.Check(lines[1].Quantity, gc.Equals, 1)
	c.Check(ct.ItemCount(), gc.Equals, 3)
	c.Check(ct.Total(), gc.Equals, 18.75)
}

func (s *cartSuite) TestAddQuantityRejectsNonPositive(c *gc.C) {
	ct := cart.New()
	_, err := ct.AddQuantity(s.curry, 0, "")
	c.Assert(err, jc.ErrorIs, errors.NotValid)
	c.Check(ct.Lines(), gc.HasLen, 0)
}

func (s *cartSuite) TestSetQuantity(c *gc.C) {
	ct := cart.New()
	id := ct.Add(s.curry, "")

	c.Assert(ct.SetQuantity(id, 3), jc.ErrorIsNil)
	c.Check(ct.Total(), gc.Equals, 41.7)

	c.Assert(ct.SetQuantity(id, 0), jc.ErrorIsNil)
	c.Check(ct.Lines(), gc.HasLen, 0)

	c.Assert(ct.SetQuantity(id, 1), jc.ErrorIs, errors.NotFound)
}

func (s *cartSuite) TestSetRequestsFoldsDuplicates(c *gc.C) {
	ct := cart.New()
	plain := ct.Add(s.soup, "")
	_, err := ct.AddQuantity(s.soup, 2, "no onion")
	c.Assert(err, jc.ErrorIsNil)

	c.Assert(ct.SetRequests(plain, "no onion"), jc.ErrorIsNil)
	lines := ct.Lines()
	c.Assert(lines, gc.HasLen, 1)
	c.Check(lines[0].Quantity, gc.Equals, 3)
	c.Check(lines[0].SpecialRequests, gc.Equals, "no onion")
}

func (s *cartSuite) TestRemoveAndClear(c *gc.C) {
	ct := cart.New()
	id := ct.Add(s.soup, "")
	ct.Add(s.curry, "")

	ct.Remove(id)
	ct.Remove("unknown")
	c.Check(ct.Lines(), gc.HasLen, 1)

	ct.Clear()
	c.Check(ct.ItemCount(), gc.Equals, 0)
	c.Check(ct.Total(), gc.Equals, 0.0)
}

func (s *cartSuite) TestFromOrderLinesMerges(c *gc.C) {
	ct := cart.FromOrderLines([]model.OrderLine{
		{MenuItemID: "soup", Name: "Soup", Quantity: 1, UnitPrice: 6.25},
		{MenuItemID: "soup", Name: "Soup", Quantity: 2, UnitPrice: 6.25},
	})
	lines := ct.OrderLines()
	c.Assert(lines, gc.HasLen, 1)
	c.Check(lines[0].Quantity, gc.Equals, 3)
	c.Check(lines[0].UnitPrice, gc.Equals, 6.25)
}

func (s *cartSuite) TestModifiersPriceAndSplitLines(c *gc.C) {
	large := model.LineModifier{ModifierID: "size", OptionID: "large", Name: "Size: Large", Price: 3.5}
	olives := model.LineModifier{ModifierID: "top", OptionID: "olives", Name: "Toppings: Olives", Price: 1.25}

	ct := cart.New()
	plain := ct.Add(s.soup, "")
	big, err := ct.AddQuantity(s.soup, 2, "", large, olives)
	c.Assert(err, jc.ErrorIsNil)
	again := ct.Add(s.soup, "", large, olives)
	c.Check(big, gc.Not(gc.Equals), plain)
	c.Check(again, gc.Equals, big)

	lines := ct.Lines()
	c.Assert(lines, gc.HasLen, 2)
	c.Check(lines[1].UnitPrice, gc.Equals, 11.0)
	c.Check(lines[1].Quantity, gc.Equals, 3)
	c.Check(ct.Total(), gc.Equals, 39.25)

	orderLines := ct.OrderLines()
	c.Check(orderLines[1].Modifiers, jc.DeepEquals, []model.LineModifier{large, olives})
	c.Check(orderLines[0].Modifiers, gc.HasLen, 0)
}

func (s *cartSuite) TestFromOrderLinesKeepsModifierPrice(c *gc.C) {
	large := model.LineModifier{ModifierID: "size", OptionID: "large", Price: 3.5}
	ct := cart.FromOrderLines([]model.OrderLine{
		{MenuItemID: "soup", Name: "Soup", Quantity: 1, UnitPrice: 9.75, Modifiers: []model.LineModifier{large}},
	})
	ct.Add(s.soup, "", large)
	ct.Add(s.soup, "")

	lines := ct.OrderLines()
	c.Assert(lines, gc.HasLen, 2)
	c.Check(lines[0].Quantity, gc.Equals, 2)
	c.Check(lines[0].UnitPrice, gc.Equals, 9.75)
	c.Check(lines[1].UnitPrice, gc.Equals, 6.25)
}
