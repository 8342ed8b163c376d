package catalog_test

import (
	"time"

	"github.com/juju/errors"
	jc "github.com/juju/testing/checkers"
	"go.uber.org/zap"
	gc "gopkg.in/check.v1"

	"restaurant-service/internal/catalog"
	"restaurant-service/internal/model"
	"restaurant-service/internal/repository"
)

func (s *catalogSuite) addSize(c *gc.C, item *model.MenuItem, required bool) *model.Modifier {
	mod, err := s.svc.CreateModifier(s.ctx, catalog.NewModifier{
		MenuItemID: item.ID,
		Name:       "Size",
		Required:   required,
		Options: []catalog.NewModifierOption{
			{Name: "Regular", Price: 0},
			{Name: "Large", Price: 3.5},
		},
	})
	c.Assert(err, jc.ErrorIsNil)
	return mod
}

func (s *catalogSuite) TestCreateModifier(c *gc.C) {
	item := s.create(c, "Pizza", "mains", model.MenuItemAvailable)
	mod := s.addSize(c, item, true)
	c.Check(mod.Type, gc.Equals, model.ModifierSingle)
	c.Assert(mod.Options, gc.HasLen, 2)
	c.Check(mod.Options[1].Price, gc.Equals, 3.5)
	c.Check(mod.Options[0].ID, gc.Not(gc.Equals), mod.Options[1].ID)

	s.clock.Advance(time.Second)
	_, err := s.svc.CreateModifier(s.ctx, catalog.NewModifier{
		MenuItemID: item.ID,
		Name:       "Toppings",
		Type:       model.ModifierMultiple,
		Options:    []catalog.NewModifierOption{{Name: "Olives", Price: 1}},
	})
	c.Assert(err, jc.ErrorIsNil)

	mods, err := s.svc.Modifiers(s.ctx, item.ID)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(mods, gc.HasLen, 2)
	c.Check(mods[0].Name, gc.Equals, "Size")
	c.Check(mods[1].Name, gc.Equals, "Toppings")
}

func (s *catalogSuite) TestCreateModifierValidates(c *gc.C) {
	item := s.create(c, "Pizza", "mains", model.MenuItemAvailable)
	for i, args := range []catalog.NewModifier{
		{MenuItemID: item.ID, Name: "", Options: []catalog.NewModifierOption{{Name: "A"}}},
		{MenuItemID: item.ID, Name: "Size"},
		{MenuItemID: item.ID, Name: "Size", Type: "any", Options: []catalog.NewModifierOption{{Name: "A"}}},
		{MenuItemID: item.ID, Name: "Size", Options: []catalog.NewModifierOption{{Name: "A", Price: -1}}},
		{MenuItemID: item.ID, Name: "Size", Options: []catalog.NewModifierOption{{Name: " "}}},
	} {
		_, err := s.svc.CreateModifier(s.ctx, args)
		c.Check(err, jc.ErrorIs, errors.NotValid, gc.Commentf("case %d", i))
	}
	_, err := s.svc.CreateModifier(s.ctx, catalog.NewModifier{
		MenuItemID: "missing",
		Name:       "Size",
		Options:    []catalog.NewModifierOption{{Name: "A"}},
	})
	c.Check(err, jc.ErrorIs, errors.NotFound)
}

func (s *catalogSuite) TestResolveModifiers(c *gc.C) {
	item := s.create(c, "Pizza", "mains", model.MenuItemAvailable)
	size := s.addSize(c, item, true)
	toppings, err := s.svc.CreateModifier(s.ctx, catalog.NewModifier{
		MenuItemID: item.ID,
		Name:       "Toppings",
		Type:       model.ModifierMultiple,
		Options: []catalog.NewModifierOption{
			{Name: "Olives", Price: 1},
			{Name: "Basil", Price: 0.5},
		},
	})
	c.Assert(err, jc.ErrorIsNil)

	large := model.ModifierChoice{ModifierID: size.ID, OptionID: size.Options[1].ID}
	regular := model.ModifierChoice{ModifierID: size.ID, OptionID: size.Options[0].ID}
	olives := model.ModifierChoice{ModifierID: toppings.ID, OptionID: toppings.Options[0].ID}
	basil := model.ModifierChoice{ModifierID: toppings.ID, OptionID: toppings.Options[1].ID}

	got, err := s.svc.ResolveModifiers(s.ctx, item, []model.ModifierChoice{olives, large, basil, olives})
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(got, gc.HasLen, 3)
	total := 0.0
	for _, m := range got {
		total += m.Price
	}
	c.Check(total, gc.Equals, 5.0)

	again, err := s.svc.ResolveModifiers(s.ctx, item, []model.ModifierChoice{basil, large, olives})
	c.Assert(err, jc.ErrorIsNil)
	c.Check(again, jc.DeepEquals, got)

	_, err = s.svc.ResolveModifiers(s.ctx, item, []model.ModifierChoice{olives})
	c.Check(err, jc.ErrorIs, errors.NotValid)
	_, err = s.svc.ResolveModifiers(s.ctx, item, []model.ModifierChoice{large, regular})
	c.Check(err, jc.ErrorIs, errors.NotValid)
	_, err = s.svc.ResolveModifiers(s.ctx, item, []model.ModifierChoice{{ModifierID: size.ID, OptionID: "xl"}})
	c.Check(err, jc.ErrorIs, errors.NotValid)
	_, err = s.svc.ResolveModifiers(s.ctx, item, []model.ModifierChoice{{ModifierID: "other", OptionID: "x"}})
	c.Check(err, jc.ErrorIs, errors.NotValid)
}

func (s *catalogSuite) TestDeleteModifier(c *gc.C) {
	item := s.create(c, "Pizza", "mains", model.MenuItemAvailable)
	other := s.create(c, "Pasta", "mains", model.MenuItemAvailable)
	mod := s.addSize(c, item, false)

	err := s.svc.DeleteModifier(s.ctx, other.ID, mod.ID)
	c.Assert(err, jc.ErrorIs, errors.NotFound)
	c.Assert(s.svc.DeleteModifier(s.ctx, item.ID, mod.ID), jc.ErrorIsNil)

	mods, err := s.svc.Modifiers(s.ctx, item.ID)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(mods, gc.HasLen, 0)
}

func (s *catalogSuite) TestDeleteItemDropsModifiers(c *gc.C) {
	item := s.create(c, "Pizza", "mains", model.MenuItemAvailable)
	mod := s.addSize(c, item, false)

	c.Assert(s.svc.Delete(s.ctx, item.ID), jc.ErrorIsNil)
	err := s.svc.DeleteModifier(s.ctx, item.ID, mod.ID)
	c.Assert(err, jc.ErrorIs, errors.NotFound)
}

func (s *catalogSuite) TestNoModifierStore(c *gc.C) {
	svc, err := catalog.NewService(catalog.Config{
		Items:  repository.NewMemory[*model.MenuItem]("menu item"),
		Clock:  s.clock,
		Logger: zap.NewNop(),
	})
	c.Assert(err, jc.ErrorIsNil)
	item, err := svc.Create(s.ctx, catalog.NewMenuItem{Name: "Tea", Price: 3, PrepTimeMinutes: 2})
	c.Assert(err, jc.ErrorIsNil)

	_, err = svc.CreateModifier(s.ctx, catalog.NewModifier{MenuItemID: item.ID, Name: "Milk"})
	c.Check(err, jc.ErrorIs, errors.NotSupported)

	got, err := svc.ResolveModifiers(s.ctx, item, nil)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(got, gc.HasLen, 0)
	_, err = svc.ResolveModifiers(s.ctx, item, []model.ModifierChoice{{ModifierID: "m", OptionID: "o"}})
	c.Check(err, jc.ErrorIs, errors.NotValid)
}
