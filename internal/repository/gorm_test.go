package repository_test

import (
	"context"
	"os"
	"time"

	"github.com/juju/errors"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"restaurant-service/internal/apperror"
	"restaurant-service/internal/model"
	"restaurant-service/internal/repository"
)

// testDSNEnv names a scratch PostgreSQL database. The round trip tests are
// skipped without it.
const testDSNEnv = "RESTAURANT_TEST_DSN"

type gormSuite struct {
	db *gorm.DB
}

var _ = gc.Suite(&gormSuite{})

func (s *gormSuite) SetUpSuite(c *gc.C) {
	dsn := os.Getenv(testDSNEnv)
	if dsn == "" {
		c.Skip(testDSNEnv + " not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(db.Migrator().DropTable(model.All()...), jc.ErrorIsNil)
	c.Assert(db.AutoMigrate(model.All()...), jc.ErrorIsNil)
	s.db = db
}

func (s *gormSuite) TearDownSuite(c *gc.C) {
	if s.db == nil {
		return
	}
	sqlDB, err := s.db.DB()
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(sqlDB.Close(), jc.ErrorIsNil)
}

func (s *gormSuite) SetUpTest(c *gc.C) {
	c.Assert(s.db.Exec("DELETE FROM orders").Error, jc.ErrorIsNil)
	c.Assert(s.db.Exec("DELETE FROM qr_codes").Error, jc.ErrorIsNil)
}

func (s *gormSuite) TestOrderRoundTrip(c *gc.C) {
	ctx := context.Background()
	stores := repository.NewGormStores(s.db)
	at := time.Date(2024, 5, 1, 19, 0, 0, 0, time.UTC)

	order := &model.Order{
		ID:      "o-1",
		TableID: "t-1",
		Lines: []model.OrderLine{{
			MenuItemID: "pizza",
			Name:       "Pizza",
			Quantity:   2,
			UnitPrice:  15,
			Modifiers:  []model.LineModifier{{ModifierID: "size", OptionID: "large", Name: "Size: Large", Price: 3}},
		}},
		Subtotal:  30,
		Tax:       2.4,
		Total:     32.4,
		Status:    model.OrderPending,
		CreatedAt: at,
		UpdatedAt: at,
	}
	c.Assert(stores.Orders.Save(ctx, order), jc.ErrorIsNil)

	got, err := stores.Orders.Get(ctx, "o-1")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(got.Lines, jc.DeepEquals, order.Lines)
	c.Check(got.Total, gc.Equals, 32.4)

	order.Status = model.OrderReady
	c.Assert(stores.Orders.Save(ctx, order), jc.ErrorIsNil)
	list, err := stores.Orders.List(ctx)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(list, gc.HasLen, 1)
	c.Check(list[0].Status, gc.Equals, model.OrderReady)

	c.Assert(stores.Orders.Delete(ctx, "o-1"), jc.ErrorIsNil)
	_, err = stores.Orders.Get(ctx, "o-1")
	c.Assert(err, jc.ErrorIs, errors.NotFound)
}

func (s *gormSuite) TestCustomKeyColumn(c *gc.C) {
	ctx := context.Background()
	stores := repository.NewGormStores(s.db)
	at := time.Date(2024, 5, 1, 19, 0, 0, 0, time.UTC)

	qr := &model.QRCode{Code: "abc", TableID: "t-1", TableNumber: 4, ExpiresAt: at.Add(time.Hour), CreatedAt: at}
	c.Assert(stores.QRCodes.Save(ctx, qr), jc.ErrorIsNil)
	got, err := stores.QRCodes.Get(ctx, "abc")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(got.TableNumber, gc.Equals, 4)
}

type gormOfflineSuite struct{}

var _ = gc.Suite(&gormOfflineSuite{})

func (s *gormOfflineSuite) TestSaveRequiresID(c *gc.C) {
	repo := repository.NewGorm(nil, "order", "id", func() *model.Order { return &model.Order{} })
	err := repo.Save(context.Background(), &model.Order{})
	c.Assert(err, jc.ErrorIs, errors.NotValid)
}

func (s *gormOfflineSuite) TestUnreachableDatabase(c *gc.C) {
	db, err := gorm.Open(postgres.Open("host=127.0.0.1 port=1 user=x dbname=x sslmode=disable connect_timeout=1"), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	c.Assert(err, jc.ErrorIsNil)
	repo := repository.NewGorm(db, "order", "id", func() *model.Order { return &model.Order{} })

	_, err = repo.Get(context.Background(), "o-1")
	c.Assert(err, jc.ErrorIs, apperror.Unavailable)
	_, err = repo.List(context.Background())
	c.Assert(err, jc.ErrorIs, apperror.Unavailable)
}
