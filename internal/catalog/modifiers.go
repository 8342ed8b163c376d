package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/juju/errors"
	"go.uber.org/zap"

	"restaurant-service/internal/model"
)

// NewModifier describes an option group added to a menu item.
type NewModifier struct {
	MenuItemID string
	Name       string
	Type       model.ModifierType
	Required   bool
	Options    []NewModifierOption
}

// NewModifierOption is one option of a NewModifier.
type NewModifierOption struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// CreateModifier adds an option group to a menu item. Type defaults to
// single.
func (s *Service) CreateModifier(ctx context.Context, args NewModifier) (*model.Modifier, error) {
	if s.cfg.Modifiers == nil {
		return nil, errors.NotSupportedf("modifiers")
	}
	if _, err := s.cfg.Items.Get(ctx, args.MenuItemID); err != nil {
		return nil, errors.Trace(err)
	}
	if args.Type == "" {
		args.Type = model.ModifierSingle
	}
	mod := &model.Modifier{
		ID:         uuid.NewString(),
		MenuItemID: args.MenuItemID,
		Name:       strings.TrimSpace(args.Name),
		Type:       args.Type,
		Required:   args.Required,
		CreatedAt:  s.cfg.Clock.Now(),
	}
	if mod.Name == "" {
		return nil, errors.NotValidf("empty modifier name")
	}
	if !mod.Type.Valid() {
		return nil, errors.NotValidf("modifier type %q", mod.Type)
	}
	if len(args.Options) == 0 {
		return nil, errors.NotValidf("modifier %q without options", mod.Name)
	}
	for _, o := range args.Options {
		name := strings.TrimSpace(o.Name)
		if name == "" {
			return nil, errors.NotValidf("empty option name on %q", mod.Name)
		}
		if o.Price < 0 {
			return nil, errors.NotValidf("option %q price %v", name, o.Price)
		}
		mod.Options = append(mod.Options, model.ModifierOption{
			ID:    uuid.NewString(),
			Name:  name,
			Price: model.RoundCents(o.Price),
		})
	}
	if err := s.cfg.Modifiers.Save(ctx, mod); err != nil {
		return nil, errors.Trace(err)
	}
	s.cfg.Logger.Info("Modifier created",
		zap.String("modifier_id", mod.ID),
		zap.String("menu_item_id", mod.MenuItemID),
		zap.Int("options", len(mod.Options)))
	return mod, nil
}

// Modifiers returns the option groups of a menu item, oldest first.
func (s *Service) Modifiers(ctx context.Context, itemID string) ([]*model.Modifier, error) {
	if s.cfg.Modifiers == nil {
		return nil, nil
	}
	all, err := s.cfg.Modifiers.List(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var out []*model.Modifier
	for _, m := range all {
		if m.MenuItemID == itemID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// DeleteModifier removes an option group. Orders keep the options they
// were priced with.
func (s *Service) DeleteModifier(ctx context.Context, itemID, modifierID string) error {
	if s.cfg.Modifiers == nil {
		return errors.NotFoundf("modifier %q", modifierID)
	}
	mod, err := s.cfg.Modifiers.Get(ctx, modifierID)
	if err != nil {
		return errors.Trace(err)
	}
	if mod.MenuItemID != itemID {
		return errors.NotFoundf("modifier %q on menu item %q", modifierID, itemID)
	}
	if err := s.cfg.Modifiers.Delete(ctx, modifierID); err != nil {
		return errors.Trace(err)
	}
	s.cfg.Logger.Info("Modifier deleted",
		zap.String("modifier_id", modifierID),
		zap.String("menu_item_id", itemID))
	return nil
}

// ResolveModifiers prices the options chosen for an item. Single modifiers
// take at most one option and required modifiers need one. The result is
// sorted so equal choices compare equal.
func (s *Service) ResolveModifiers(ctx context.Context, item *model.MenuItem, choices []model.ModifierChoice) ([]model.LineModifier, error) {
	mods, err := s.Modifiers(ctx, item.ID)
	if err != nil {
		return nil, errors.Trace(err)
	}
	byID := make(map[string]*model.Modifier, len(mods))
	for _, m := range mods {
		byID[m.ID] = m
	}

	picked := make(map[string]int)
	seen := make(map[model.ModifierChoice]bool)
	var out []model.LineModifier
	for _, choice := range choices {
		mod, ok := byID[choice.ModifierID]
		if !ok {
			return nil, errors.NotValidf("modifier %q for %q", choice.ModifierID, item.Name)
		}
		option, ok := findOption(mod, choice.OptionID)
		if !ok {
			return nil, errors.NotValidf("option %q of %q", choice.OptionID, mod.Name)
		}
		if seen[choice] {
			continue
		}
		seen[choice] = true
		picked[mod.ID]++
		if mod.Type == model.ModifierSingle && picked[mod.ID] > 1 {
			return nil, errors.NotValidf("more than one %q", mod.Name)
		}
		out = append(out, model.LineModifier{
			ModifierID: mod.ID,
			OptionID:   option.ID,
			Name:       mod.Name + ": " + option.Name,
			Price:      option.Price,
		})
	}
	for _, m := range mods {
		if m.Required && picked[m.ID] == 0 {
			return nil, errors.NotValidf("missing %q for %q", m.Name, item.Name)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ModifierID != out[j].ModifierID {
			return out[i].ModifierID < out[j].ModifierID
		}
		return out[i].OptionID < out[j].OptionID
	})
	return out, nil
}

func findOption(mod *model.Modifier, optionID string) (model.ModifierOption, bool) {
	for _, o := range mod.Options {
		if o.ID == optionID {
			return o, true
		}
	}
	return model.ModifierOption{}, false
}

func (s *Service) dropModifiers(ctx context.Context, itemID string) error {
	mods, err := s.Modifiers(ctx, itemID)
	if err != nil {
		return errors.Trace(err)
	}
	for _, m := range mods {
		if err := s.cfg.Modifiers.Delete(ctx, m.ID); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}
