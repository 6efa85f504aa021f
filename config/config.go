package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Search   SearchConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `mapstructure:"SERVER_HOST"`
	Port         int           `mapstructure:"SERVER_PORT"`
	ReadTimeout  time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
	IdleTimeout  time.Duration `mapstructure:"SERVER_IDLE_TIMEOUT"`
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host        string `mapstructure:"POSTGRES_HOST"`
	Port        int    `mapstructure:"POSTGRES_PORT"`
	User        string `mapstructure:"POSTGRES_USER"`
	Password    string `mapstructure:"POSTGRES_PASSWORD"`
	DBName      string `mapstructure:"POSTGRES_DB"`
	SSLMode     string `mapstructure:"POSTGRES_SSLMODE"`
	MaxConns    int32  `mapstructure:"POSTGRES_MAX_CONNS"`
	MinConns    int32  `mapstructure:"POSTGRES_MIN_CONNS"`
	AutoMigrate bool   `mapstructure:"POSTGRES_AUTO_MIGRATE"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     int    `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
	PoolSize int    `mapstructure:"REDIS_POOL_SIZE"`
}

// SearchConfig bounds the nearby-spot search and the availability cache.
// Ranking weights are fixed in package ranking and are not configurable.
type SearchConfig struct {
	DefaultRadiusM int           `mapstructure:"SEARCH_DEFAULT_RADIUS_M"`
	MaxRadiusM     int           `mapstructure:"SEARCH_MAX_RADIUS_M"`
	DefaultLimit   int           `mapstructure:"SEARCH_DEFAULT_LIMIT"`
	MaxLimit       int           `mapstructure:"SEARCH_MAX_LIMIT"`
	CacheTTL       time.Duration `mapstructure:"SEARCH_AVAILABILITY_CACHE_TTL"`
}

// DSN returns the PostgreSQL connection string.
func (p *PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode,
	)
}

// Addr returns the Redis address in host:port format.
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// ServerAddr returns the HTTP listen address in host:port format.
func (s *ServerConfig) ServerAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Validate rejects search bounds that would make every query invalid.
func (s *SearchConfig) Validate() error {
	if s.DefaultRadiusM <= 0 || s.MaxRadiusM <= 0 {
		return fmt.Errorf("config: search radii must be positive (default=%d, max=%d)",
			s.DefaultRadiusM, s.MaxRadiusM)
	}
	if s.DefaultRadiusM > s.MaxRadiusM {
		return fmt.Errorf("config: SEARCH_DEFAULT_RADIUS_M (%d) exceeds SEARCH_MAX_RADIUS_M (%d)",
			s.DefaultRadiusM, s.MaxRadiusM)
	}
	if s.DefaultLimit <= 0 || s.MaxLimit <= 0 || s.DefaultLimit > s.MaxLimit {
		return fmt.Errorf("config: invalid search limits (default=%d, max=%d)",
			s.DefaultLimit, s.MaxLimit)
	}
	if s.CacheTTL < 0 {
		return fmt.Errorf("config: SEARCH_AVAILABILITY_CACHE_TTL must not be negative")
	}
	return nil
}

// DefaultSearchConfig returns the built-in search bounds.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		DefaultRadiusM: 2000,
		MaxRadiusM:     10000,
		DefaultLimit:   50,
		MaxLimit:       200,
		CacheTTL:       30 * time.Second,
	}
}

// Load reads configuration from environment variables and .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	// ── Defaults ────────────────────────────────────────
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_READ_TIMEOUT", "5s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "10s")
	v.SetDefault("SERVER_IDLE_TIMEOUT", "120s")

	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", 5432)
	v.SetDefault("POSTGRES_USER", "spotfinder")
	v.SetDefault("POSTGRES_PASSWORD", "spotfinder_secret")
	v.SetDefault("POSTGRES_DB", "spotfinder_db")
	v.SetDefault("POSTGRES_SSLMODE", "disable")
	v.SetDefault("POSTGRES_MAX_CONNS", 20)
	v.SetDefault("POSTGRES_MIN_CONNS", 2)
	v.SetDefault("POSTGRES_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 50)

	def := DefaultSearchConfig()
	v.SetDefault("SEARCH_DEFAULT_RADIUS_M", def.DefaultRadiusM)
	v.SetDefault("SEARCH_MAX_RADIUS_M", def.MaxRadiusM)
	v.SetDefault("SEARCH_DEFAULT_LIMIT", def.DefaultLimit)
	v.SetDefault("SEARCH_MAX_LIMIT", def.MaxLimit)
	v.SetDefault("SEARCH_AVAILABILITY_CACHE_TTL", def.CacheTTL.String())

	// A missing .env is fine; container deployments inject plain env vars.
	_ = v.ReadInConfig()

	cfg := &Config{}

	// ── Server ──────────────────────────────────────────
	cfg.Server = ServerConfig{
		Host:         v.GetString("SERVER_HOST"),
		Port:         v.GetInt("SERVER_PORT"),
		ReadTimeout:  v.GetDuration("SERVER_READ_TIMEOUT"),
		WriteTimeout: v.GetDuration("SERVER_WRITE_TIMEOUT"),
		IdleTimeout:  v.GetDuration("SERVER_IDLE_TIMEOUT"),
	}

	// ── Postgres ────────────────────────────────────────
	cfg.Postgres = PostgresConfig{
		Host:        v.GetString("POSTGRES_HOST"),
		Port:        v.GetInt("POSTGRES_PORT"),
		User:        v.GetString("POSTGRES_USER"),
		Password:    v.GetString("POSTGRES_PASSWORD"),
		DBName:      v.GetString("POSTGRES_DB"),
		SSLMode:     v.GetString("POSTGRES_SSLMODE"),
		MaxConns:    v.GetInt32("POSTGRES_MAX_CONNS"),
		MinConns:    v.GetInt32("POSTGRES_MIN_CONNS"),
		AutoMigrate: v.GetBool("POSTGRES_AUTO_MIGRATE"),
	}

	// ── Redis ───────────────────────────────────────────
	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
		PoolSize: v.GetInt("REDIS_POOL_SIZE"),
	}

	// ── Search ──────────────────────────────────────────
	cfg.Search = SearchConfig{
		DefaultRadiusM: v.GetInt("SEARCH_DEFAULT_RADIUS_M"),
		MaxRadiusM:     v.GetInt("SEARCH_MAX_RADIUS_M"),
		DefaultLimit:   v.GetInt("SEARCH_DEFAULT_LIMIT"),
		MaxLimit:       v.GetInt("SEARCH_MAX_LIMIT"),
		CacheTTL:       v.GetDuration("SEARCH_AVAILABILITY_CACHE_TTL"),
	}
	if err := cfg.Search.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
