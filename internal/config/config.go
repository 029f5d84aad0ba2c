package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env      string
	Server   ServerConfig
	Store    StoreConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Auth     AuthConfig
	Features FeatureFlags
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// StoreConfig describes the remote table store and the four logical tables.
// Each table lives in its own base, mirroring how the store partitions data.
type StoreConfig struct {
	Backend    string // "airtable" or "postgres"
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	Users      TableConfig
	Products   TableConfig
	Orders     TableConfig
	MyProducts TableConfig
}

type TableConfig struct {
	BaseID string
	Name   string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string

	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

func (d DatabaseConfig) ConnectionString() string {
	return "host=" + d.Host +
		" port=" + strconv.Itoa(d.Port) +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.Name +
		" sslmode=" + d.SSLMode
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

type KafkaConfig struct {
	Brokers     []string
	OrdersTopic string
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type FeatureFlags struct {
	// EnableRecordCache turns on the Redis read-through cache for product
	// lookups. Off by default: every read hits the store.
	EnableRecordCache bool
	// EnableOrderEvents publishes order lifecycle events to Kafka.
	EnableOrderEvents bool
	// EnforceStatusFlow rejects order status updates that skip the
	// Pending -> Processing -> Completed progression. Off by default to
	// match the historical permissive behavior.
	EnforceStatusFlow bool
}

// IsDevelopment reports whether the service runs in development mode, in
// which store error details are echoed to API callers.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func Load() *Config {
	return &Config{
		Env: getEnvString("APP_ENV", "development"),
		Server: ServerConfig{
			Port:         getEnvInt("SERVER_PORT", 5000),
			ReadTimeout:  time.Duration(getEnvInt("SERVER_READ_TIMEOUT", 30)) * time.Second,
			WriteTimeout: time.Duration(getEnvInt("SERVER_WRITE_TIMEOUT", 30)) * time.Second,
		},
		Store: StoreConfig{
			Backend:    getEnvString("STORE_BACKEND", "airtable"),
			BaseURL:    getEnvString("AIRTABLE_API_URL", "https://api.airtable.com/v0"),
			APIKey:     getEnvString("AIRTABLE_API_KEY", ""),
			Timeout:    time.Duration(getEnvInt("STORE_TIMEOUT", 30)) * time.Second,
			Users:      TableConfig{BaseID: getEnvString("AIRTABLE_BASE_ID_USERS", ""), Name: "Users"},
			Products:   TableConfig{BaseID: getEnvString("AIRTABLE_BASE_ID_PRODUCTS", ""), Name: "Products"},
			Orders:     TableConfig{BaseID: getEnvString("AIRTABLE_BASE_ID_ORDERS", ""), Name: "Orders"},
			MyProducts: TableConfig{BaseID: getEnvString("AIRTABLE_BASE_ID_MY_PRODUCTS", ""), Name: "MyProducts"},
		},
		Database: DatabaseConfig{
			Host:         getEnvString("DB_HOST", "localhost"),
			Port:         getEnvInt("DB_PORT", 5432),
			User:         getEnvString("DB_USER", "marketplace"),
			Password:     getEnvString("DB_PASSWORD", "marketplace"),
			Name:         getEnvString("DB_NAME", "marketplace"),
			SSLMode:      getEnvString("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  time.Duration(getEnvInt("DB_MAX_LIFETIME", 300)) * time.Second,
		},
		Redis: RedisConfig{
			Host:     getEnvString("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnvString("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      time.Duration(getEnvInt("REDIS_TTL", 300)) * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:     getEnvStringSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			OrdersTopic: getEnvString("KAFKA_ORDERS_TOPIC", "marketplace.orders"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnvString("JWT_SECRET", ""),
			TokenTTL:  time.Duration(getEnvInt("JWT_TTL_HOURS", 24)) * time.Hour,
		},
		Features: FeatureFlags{
			EnableRecordCache: getEnvBool("ENABLE_RECORD_CACHE", false),
			EnableOrderEvents: getEnvBool("ENABLE_ORDER_EVENTS", false),
			EnforceStatusFlow: getEnvBool("ENFORCE_STATUS_FLOW", false),
		},
	}
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
