package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// Store drivers
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// DBConfig holds database configuration
type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// GetDSN returns the PostgreSQL connection string
func (c *DBConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// JWTConfig holds the identity provider token settings
type JWTConfig struct {
	SigningKey string
	Issuer     string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Prefix string
}

// StoreConfig selects the repository backend
type StoreConfig struct {
	Driver string
}

// RestaurantConfig holds house settings used by the order ledger
type RestaurantConfig struct {
	Name     string
	TaxRate  float64
	Currency string
}

// FloorConfig holds floor behaviour switches
type FloorConfig struct {
	GuardReoccupy bool
	// ReservationSlot is how long a booking holds its table
	ReservationSlot time.Duration
}

// PaymentConfig holds the external payment processor settings.
// An empty URL records card and digital payments without capture.
type PaymentConfig struct {
	ProcessorURL string
	APIKey       string
	Timeout      time.Duration
}

// QRConfig holds QR code settings
type QRConfig struct {
	PublicBaseURL string
	ImageBaseURL  string
	TTL           time.Duration
}

// AMQPConfig holds the kitchen event broker settings.
// An empty URL disables publishing.
type AMQPConfig struct {
	URL      string
	Exchange string
}

// RateLimitConfig throttles public endpoints with a token bucket.
// A zero burst disables it.
type RateLimitConfig struct {
	Burst        int
	FillInterval time.Duration
}

// Config holds all configuration
type Config struct {
	ServiceName string
	DB          DBConfig
	Server      ServerConfig
	JWT         JWTConfig
	Log         LogConfig
	Metrics     MetricsConfig
	Store       StoreConfig
	Restaurant  RestaurantConfig
	Floor       FloorConfig
	Payment     PaymentConfig
	QR          QRConfig
	AMQP        AMQPConfig
	RateLimit   RateLimitConfig
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Not returning error as .env file is optional
		fmt.Printf("Warning: .env file not found, using environment variables\n")
	}

	config := &Config{
		ServiceName: serviceName,
		DB: DBConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "password"),
			DBName:          getEnv("DB_NAME", "restaurant"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 1*time.Hour),
			LogLevel:        getEnvAsLogLevel("DB_LOG_LEVEL", logger.Warn),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("APP_ENV", "development"),
		},
		JWT: JWTConfig{
			SigningKey: getEnv("JWT_SIGNING_KEY", "defaultsecretkey"),
			Issuer:     getEnv("JWT_ISSUER", ""),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Prefix: getEnv("METRICS_PREFIX", "restaurant"),
		},
		Store: StoreConfig{
			Driver: getEnv("STORE_DRIVER", StoreMemory),
		},
		Restaurant: RestaurantConfig{
			Name:     getEnv("RESTAURANT_NAME", "RestaurantOS"),
			TaxRate:  getEnvAsFloat("TAX_RATE", 0.08),
			Currency: getEnv("CURRENCY", "USD"),
		},
		Floor: FloorConfig{
			GuardReoccupy:   getEnvAsBool("FLOOR_GUARD_REOCCUPY", false),
			ReservationSlot: getEnvAsDuration("RESERVATION_SLOT", 2*time.Hour),
		},
		Payment: PaymentConfig{
			ProcessorURL: getEnv("PAYMENT_PROCESSOR_URL", ""),
			APIKey:       getEnv("PAYMENT_API_KEY", ""),
			Timeout:      getEnvAsDuration("PAYMENT_TIMEOUT", 10*time.Second),
		},
		QR: QRConfig{
			PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:5173"),
			ImageBaseURL:  getEnv("QR_IMAGE_BASE_URL", "https://api.qrserver.com/v1/create-qr-code/"),
			TTL:           getEnvAsDuration("QR_TTL", 24*time.Hour),
		},
		AMQP: AMQPConfig{
			URL:      getEnv("AMQP_URL", ""),
			Exchange: getEnv("AMQP_EXCHANGE", "orders_topic"),
		},
		RateLimit: RateLimitConfig{
			Burst:        getEnvAsInt("PUBLIC_RATE_BURST", 60),
			FillInterval: getEnvAsDuration("PUBLIC_RATE_INTERVAL", time.Second),
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case StoreMemory, StorePostgres:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	if c.RateLimit.Burst > 0 && c.RateLimit.FillInterval <= 0 {
		return fmt.Errorf("PUBLIC_RATE_INTERVAL must be positive, got %v", c.RateLimit.FillInterval)
	}
	if c.Floor.ReservationSlot <= 0 {
		return fmt.Errorf("RESERVATION_SLOT must be positive, got %v", c.Floor.ReservationSlot)
	}
	if c.Restaurant.TaxRate < 0 || c.Restaurant.TaxRate >= 1 {
		return fmt.Errorf("TAX_RATE must be in [0, 1), got %v", c.Restaurant.TaxRate)
	}
	return nil
}

// LogConfig returns the configuration as a zap logger-friendly format
func (c *Config) LogConfig() []zap.Field {
	fields := []zap.Field{
		zap.String("service", c.ServiceName),
		zap.String("environment", c.Server.Env),
		zap.String("server_port", c.Server.Port),
		zap.String("store_driver", c.Store.Driver),
		zap.Float64("tax_rate", c.Restaurant.TaxRate),
		zap.Bool("payment_processor", c.Payment.ProcessorURL != ""),
		zap.Bool("amqp", c.AMQP.URL != ""),
	}
	if c.Store.Driver == StorePostgres {
		fields = append(fields,
			zap.String("db_host", c.DB.Host),
			zap.String("db_port", c.DB.Port),
			zap.String("db_user", c.DB.User),
			zap.String("db_name", c.DB.DBName))
	}
	return fields
}

// Helper function to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as integers
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as durations
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as log levels
func getEnvAsLogLevel(key string, defaultValue logger.LogLevel) logger.LogLevel {
	valueStr := getEnv(key, "")
	switch valueStr {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return defaultValue
	}
}
