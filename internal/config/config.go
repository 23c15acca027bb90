package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"propertychat/internal/repository"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Chat       ChatConfig
	Catalog    CatalogConfig
	Store      StoreConfig
	PostgreSQL PostgreSQLConfig
	Redis      RedisConfig
	SQLite     SQLiteConfig
	Logging    LoggingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            int
	Host            string
	GinMode         string
	AllowedOrigins  string
	AllowedMethods  string
	AllowedHeaders  string
	ShutdownTimeout time.Duration
}

// ChatConfig holds conversation timing and reply size
type ChatConfig struct {
	ReplyDelay time.Duration
	NudgeDelay time.Duration
	TopK       int
}

// CatalogConfig points at the listings and area files; empty means the
// embedded data
type CatalogConfig struct {
	ListingsFile string
	AreasFile    string
}

// StoreConfig selects the conversation store backend
type StoreConfig struct {
	Backend   string // memory, redis, postgres or sqlite
	KeyPrefix string
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string // full connection string, preferred when set
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

// SQLiteConfig holds the SQLite database path
type SQLiteConfig struct {
	Path string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:         getEnv("GIN_MODE", "release"),
			AllowedOrigins:  getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods:  getEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS"),
			AllowedHeaders:  getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization"),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Chat: ChatConfig{
			ReplyDelay: getEnvAsDuration("CHAT_REPLY_DELAY", time.Second),
			NudgeDelay: getEnvAsDuration("CHAT_NUDGE_DELAY", 10*time.Second),
			TopK:       getEnvAsInt("CHAT_TOP_K", 3),
		},
		Catalog: CatalogConfig{
			ListingsFile: getEnv("CATALOG_LISTINGS_FILE", ""),
			AreasFile:    getEnv("CATALOG_AREAS_FILE", ""),
		},
		Store: StoreConfig{
			Backend:   strings.ToLower(getEnv("STORE_BACKEND", "memory")),
			KeyPrefix: getEnv("STORE_KEY_PREFIX", "propertychat:"),
		},
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("POSTGRESQL_URI", getEnv("PG_DSN", ""))),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "propertychat"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 2),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			PoolSize: getEnvAsInt("REDIS_POOL_SIZE", 10),
		},
		SQLite: SQLiteConfig{
			Path: getEnv("SQLITE_PATH", "propertychat.db"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "memory", "redis", "postgres", "sqlite":
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}
	if c.Chat.ReplyDelay < 0 || c.Chat.NudgeDelay < 0 {
		return fmt.Errorf("chat delays must not be negative")
	}
	if c.Chat.TopK <= 0 {
		return fmt.Errorf("CHAT_TOP_K must be positive, got %d", c.Chat.TopK)
	}
	return nil
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// StoreSettings assembles the repository settings for the selected backend
func (c *Config) StoreSettings() repository.StoreConfig {
	return repository.StoreConfig{
		Backend:              c.Store.Backend,
		KeyPrefix:            c.Store.KeyPrefix,
		PostgresDSN:          c.GetPostgreSQLDSN(),
		PostgresMaxConns:     c.PostgreSQL.MaxConnections,
		PostgresMaxIdleConns: c.PostgreSQL.MaxIdleConnections,
		RedisAddr:            c.Redis.Addr,
		RedisPassword:        c.Redis.Password,
		RedisDB:              c.Redis.DB,
		RedisPoolSize:        c.Redis.PoolSize,
		SQLitePath:           c.SQLite.Path,
	}
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Int("default", defaultValue).Msg("invalid integer value, using default")
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go durations ("750ms", "10s") or a bare number
// of milliseconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if ms, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Dur("default", defaultValue).Msg("invalid duration value, using default")
		return defaultValue
	}
	return value
}
