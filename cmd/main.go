package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/ratelimit"
	"github.com/juju/retry"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"restaurant-service/internal/app"
	"restaurant-service/internal/handler"
	"restaurant-service/internal/middleware"
	"restaurant-service/internal/model"
	"restaurant-service/internal/notify"
	"restaurant-service/internal/payment"
	"restaurant-service/internal/repository"
	"restaurant-service/pkg/config"
	"restaurant-service/pkg/database"
	"restaurant-service/pkg/jwtutil"
	"restaurant-service/pkg/logger"
	"restaurant-service/prometheus"
)

const serviceName = "restaurant-service"

// dial retries connect until it succeeds or attempts run out
func dial(log *zap.Logger, what string, connect func() error) error {
	return retry.Call(retry.CallArgs{
		Func:        connect,
		Attempts:    5,
		Delay:       time.Second,
		MaxDelay:    15 * time.Second,
		BackoffFunc: retry.DoubleDelay,
		Clock:       clock.WallClock,
		NotifyFunc: func(err error, attempt int) {
			log.Warn("Connection attempt failed",
				zap.String("target", what),
				zap.Int("attempt", attempt),
				zap.Error(err))
		},
	})
}

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load(serviceName)
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: serviceName,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer func() { _ = log.Sync() }()
	log.Info("Starting restaurant service...", cfg.LogConfig()...)

	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized")

	var (
		stores *repository.Stores
		db     *gorm.DB
		pinger handler.Pinger
	)
	switch cfg.Store.Driver {
	case config.StorePostgres:
		err := dial(log, "database", func() error {
			var err error
			db, err = database.InitDB(&cfg.DB, log, model.All()...)
			return err
		})
		if err != nil {
			log.Fatal("Failed to initialize database", zap.Error(retry.LastError(err)))
		}
		defer func() {
			if err := database.Close(db); err != nil {
				log.Error("Failed to close database", zap.Error(err))
			}
		}()
		sqlDB, err := db.DB()
		if err != nil {
			log.Fatal("Failed to get database object", zap.Error(err))
		}
		stores = repository.NewGormStores(db)
		pinger = sqlDB
		log.Info("Database connection established")
	default:
		stores = repository.NewMemoryStores()
		log.Info("Using in-memory store")
	}

	var publisher notify.Publisher = notify.Nop{}
	if cfg.AMQP.URL != "" {
		var broker *notify.AMQP
		err := dial(log, "broker", func() error {
			var err error
			broker, err = notify.DialAMQP(cfg.AMQP.URL, cfg.AMQP.Exchange, log.Named("notify"))
			return err
		})
		if err != nil {
			log.Fatal("Failed to connect to message broker", zap.Error(retry.LastError(err)))
		}
		defer func() {
			if err := broker.Close(); err != nil {
				log.Error("Failed to close message broker", zap.Error(err))
			}
		}()
		publisher = broker
	}

	var processor payment.Processor
	if cfg.Payment.ProcessorURL != "" {
		processor = payment.NewClient(cfg.Payment.ProcessorURL, cfg.Payment.APIKey, cfg.Payment.Timeout, log.Named("payment"))
		log.Info("Payment processor configured", zap.String("url", cfg.Payment.ProcessorURL))
	}

	services, err := app.New(app.Deps{
		Config:    cfg,
		Stores:    stores,
		Publisher: publisher,
		Processor: processor,
		Clock:     clock.WallClock,
		Logger:    log,
	})
	if err != nil {
		log.Fatal("Failed to build services", zap.Error(err))
	}

	var publicLimit *ratelimit.Bucket
	if cfg.RateLimit.Burst > 0 {
		publicLimit = ratelimit.NewBucket(cfg.RateLimit.FillInterval, int64(cfg.RateLimit.Burst))
	}

	h, err := handler.New(handler.Config{
		Catalog:       services.Catalog,
		Floor:         services.Floor,
		Ledger:        services.Ledger,
		Billing:       services.Billing,
		Waitlist:      services.Waitlist,
		Reservations:  services.Reservations,
		Notifications: services.Notifications,
		Stats:         services.Stats,
		QRCodes:       services.QRCodes,
		Tokens: jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
			SigningKey: cfg.JWT.SigningKey,
			Issuer:     cfg.JWT.Issuer,
		}, clock.WallClock),
		Pinger:      pinger,
		PublicLimit: publicLimit,
	})
	if err != nil {
		log.Fatal("Failed to build handlers", zap.Error(err))
	}

	// Initialize Echo framework
	e := echo.New()
	e.HideBanner = true

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	h.Register(e)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shut down server", zap.Error(err))
	}
}
