package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	defaultShipmentFee = "85"
	defaultKafkaTopic  = "cadre.orders"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	AppPort    string
	AppEnv     string

	// StorageDriver selects the order/listing backend: postgres or memory.
	StorageDriver string
	ShipmentFee   decimal.Decimal
	JWTSecret     string

	// InternalServiceKey unlocks the internal rate tier via X-Service-Auth.
	InternalServiceKey string

	// Optional collaborators. Empty values disable them.
	RedisAddr    string
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:             os.Getenv("DB_HOST"),
		DBUser:             os.Getenv("DB_USER"),
		DBPassword:         os.Getenv("DB_PASSWORD"),
		DBName:             os.Getenv("DB_NAME"),
		DBPort:             getenv("DB_PORT", "5432"),
		AppPort:            getenv("APP_PORT", "8080"),
		AppEnv:             getenv("APP_ENV", "development"),
		StorageDriver:      getenv("STORAGE_DRIVER", StorageDriverPostgres),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		InternalServiceKey: os.Getenv("INTERNAL_SERVICE_KEY"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		KafkaBrokers:       splitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:         getenv("KAFKA_TOPIC", defaultKafkaTopic),
	}

	fee, err := decimal.NewFromString(getenv("SHIPMENT_FEE", defaultShipmentFee))
	if err != nil {
		return nil, fmt.Errorf("invalid SHIPMENT_FEE: %w", err)
	}
	if fee.IsNegative() {
		return nil, errors.New("SHIPMENT_FEE must not be negative")
	}
	cfg.ShipmentFee = fee

	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		if cfg.DBHost == "" {
			return nil, errors.New("DB_HOST is required for the postgres storage driver")
		}
	case StorageDriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	return cfg, nil
}

// LoadConfig is Load for binaries: a bad environment is fatal.
func LoadConfig() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Environment variables not loaded properly: %v", err)
	}
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
