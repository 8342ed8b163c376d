package repository

import (
	"context"
	"time"

	"github.com/juju/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"restaurant-service/internal/apperror"
	"restaurant-service/prometheus"
)

// Gorm stores entities in a relational database, one row per entity.
type Gorm[T Entity[T]] struct {
	name    string
	db      *gorm.DB
	newT    func() T
	keyName string
}

// NewGorm returns a store over db. newT must return a fresh, non-nil model
// pointer; key is the primary key column.
func NewGorm[T Entity[T]](db *gorm.DB, name, key string, newT func() T) *Gorm[T] {
	return &Gorm[T]{
		name:    name,
		db:      db,
		newT:    newT,
		keyName: key,
	}
}

// Get implements Repository.
func (g *Gorm[T]) Get(ctx context.Context, id string) (T, error) {
	defer prometheus.TrackStoreOperation(g.name, "get")(time.Now())

	entity := g.newT()
	err := g.db.WithContext(ctx).Where(g.keyName+" = ?", id).First(entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		var zero T
		return zero, errors.NotFoundf("%s %q", g.name, id)
	}
	if err != nil {
		var zero T
		return zero, g.unavailable(err, "getting")
	}
	return entity, nil
}

// List implements Repository.
func (g *Gorm[T]) List(ctx context.Context) ([]T, error) {
	defer prometheus.TrackStoreOperation(g.name, "list")(time.Now())

	var out []T
	if err := g.db.WithContext(ctx).Order("created_at").Find(&out).Error; err != nil {
		return nil, g.unavailable(err, "listing")
	}
	return out, nil
}

// Save implements Repository.
func (g *Gorm[T]) Save(ctx context.Context, entity T) error {
	defer prometheus.TrackStoreOperation(g.name, "save")(time.Now())

	if entity.EntityID() == "" {
		return errors.NotValidf("%s without id", g.name)
	}
	err := g.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(entity).Error
	if err != nil {
		return g.unavailable(err, "saving")
	}
	return nil
}

// Delete implements Repository.
func (g *Gorm[T]) Delete(ctx context.Context, id string) error {
	defer prometheus.TrackStoreOperation(g.name, "delete")(time.Now())

	err := g.db.WithContext(ctx).Where(g.keyName+" = ?", id).Delete(g.newT()).Error
	if err != nil {
		return g.unavailable(err, "deleting")
	}
	return nil
}

func (g *Gorm[T]) unavailable(err error, op string) error {
	return errors.Annotatef(apperror.Unavailable, "%s %s: %v", op, g.name, err)
}
