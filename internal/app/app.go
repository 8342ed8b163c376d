// Package app wires the restaurant services together over one set of
// stores.
package app

import (
	"context"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"go.uber.org/zap"

	"restaurant-service/internal/billing"
	"restaurant-service/internal/catalog"
	"restaurant-service/internal/floor"
	"restaurant-service/internal/ledger"
	"restaurant-service/internal/notification"
	"restaurant-service/internal/notify"
	"restaurant-service/internal/payment"
	"restaurant-service/internal/qrcode"
	"restaurant-service/internal/repository"
	"restaurant-service/internal/reservation"
	"restaurant-service/internal/stats"
	"restaurant-service/internal/waitlist"
	"restaurant-service/pkg/config"
)

// Deps are the collaborators shared by every service.
type Deps struct {
	Config    *config.Config
	Stores    *repository.Stores
	Publisher notify.Publisher
	Processor payment.Processor
	Clock     clock.Clock
	Logger    *zap.Logger
}

// Services is the constructed service graph.
type Services struct {
	Catalog       *catalog.Service
	Floor         *floor.Service
	Ledger        *ledger.Service
	Billing       *billing.Service
	Waitlist      *waitlist.Service
	Reservations  *reservation.Service
	Notifications *notification.Service
	Stats         *stats.Service
	QRCodes       *qrcode.Service
}

// New builds the services. A nil Processor records card payments without
// capture and a nil Publisher only feeds the notification centre.
func New(deps Deps) (*Services, error) {
	if deps.Config == nil || deps.Stores == nil {
		return nil, errors.NotValidf("nil Config or Stores")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clk := deps.Clock
	if clk == nil {
		clk = clock.WallClock
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = notify.Nop{}
	}

	var (
		svc Services
		err error
	)
	svc.Notifications, err = notification.NewService(notification.Config{
		Notifications: deps.Stores.Notifications,
		Clock:         clk,
		Logger:        logger.Named("notification"),
	})
	if err != nil {
		return nil, errors.Annotate(err, "notifications")
	}
	publisher = notify.Multi{publisher, svc.Notifications}

	svc.Floor, err = floor.NewService(floor.Config{
		Tables:        deps.Stores.Tables,
		Clock:         clk,
		Logger:        logger.Named("floor"),
		GuardReoccupy: cfg.Floor.GuardReoccupy,
		InUse: func(ctx context.Context, tableID string) (bool, error) {
			return svc.Ledger.HasUnpaidOrders(ctx, tableID)
		},
	})
	if err != nil {
		return nil, errors.Annotate(err, "floor")
	}

	// The ledger is built after floor and catalog; deletes consult it late.
	svc.Catalog, err = catalog.NewService(catalog.Config{
		Items:     deps.Stores.MenuItems,
		Modifiers: deps.Stores.Modifiers,
		Clock:     clk,
		Logger:    logger.Named("catalog"),
		InUse: func(ctx context.Context, itemID string) (bool, error) {
			return svc.Ledger.ReferencesMenuItem(ctx, itemID)
		},
	})
	if err != nil {
		return nil, errors.Annotate(err, "catalog")
	}

	svc.Ledger, err = ledger.NewService(ledger.Config{
		Orders:         deps.Stores.Orders,
		Catalog:        svc.Catalog,
		Floor:          svc.Floor,
		Publisher:      publisher,
		Clock:          clk,
		Logger:         logger.Named("ledger"),
		TaxRate:        cfg.Restaurant.TaxRate,
		RestaurantName: cfg.Restaurant.Name,
		Currency:       cfg.Restaurant.Currency,
	})
	if err != nil {
		return nil, errors.Annotate(err, "ledger")
	}

	svc.Billing, err = billing.NewService(billing.Config{
		Bills:     deps.Stores.Bills,
		Ledger:    svc.Ledger,
		Floor:     svc.Floor,
		Publisher: publisher,
		Clock:     clk,
		Logger:    logger.Named("billing"),
		Processor: deps.Processor,
		Currency:  cfg.Restaurant.Currency,
	})
	if err != nil {
		return nil, errors.Annotate(err, "billing")
	}

	svc.Waitlist, err = waitlist.NewService(waitlist.Config{
		Entries: deps.Stores.Waitlist,
		Floor:   svc.Floor,
		Clock:   clk,
		Logger:  logger.Named("waitlist"),
	})
	if err != nil {
		return nil, errors.Annotate(err, "waitlist")
	}

	svc.Reservations, err = reservation.NewService(reservation.Config{
		Reservations: deps.Stores.Reservations,
		Floor:        svc.Floor,
		Clock:        clk,
		Logger:       logger.Named("reservation"),
		Slot:         cfg.Floor.ReservationSlot,
	})
	if err != nil {
		return nil, errors.Annotate(err, "reservations")
	}

	ttl := cfg.QR.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	svc.QRCodes, err = qrcode.NewService(qrcode.Config{
		Codes:         deps.Stores.QRCodes,
		Floor:         svc.Floor,
		Clock:         clk,
		Logger:        logger.Named("qrcode"),
		TTL:           ttl,
		PublicBaseURL: cfg.QR.PublicBaseURL,
		ImageBaseURL:  cfg.QR.ImageBaseURL,
	})
	if err != nil {
		return nil, errors.Annotate(err, "qr codes")
	}

	svc.Stats = stats.NewService(svc.Floor, svc.Waitlist, svc.Ledger, svc.Catalog)
	return &svc, nil
}
