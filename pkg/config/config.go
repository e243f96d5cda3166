// Package config provides application configuration management using environment variables.
// It uses github.com/kelseyhightower/envconfig for loading configuration from environment
// variables with support for validation and default values.
//
// # Basic Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatalf("Failed to load configuration: %v", err)
//	}
//
//	if err := cfg.Validate(); err != nil {
//		log.Fatalf("Invalid configuration: %v", err)
//	}
//
// All environment variables use the "WAVEBREAKER" prefix, e.g.
// WAVEBREAKER_SERVER_PORT, WAVEBREAKER_DATABASE_NAME.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "WAVEBREAKER"

// Config represents the application configuration loaded from environment variables.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Logging     LoggingConfig
	Redis       RedisConfig
	Steam       SteamConfig
	OpenID      OpenIDConfig
	Session     SessionConfig
	MusicBrainz MusicBrainzConfig
	Radio       RadioConfig

	Environment     string        `envconfig:"ENVIRONMENT" default:"local"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// ServerConfig represents the legacy and admin HTTP server configuration.
type ServerConfig struct {
	Port int    `envconfig:"SERVER_PORT" default:"8080"`
	Host string `envconfig:"SERVER_HOST" default:"0.0.0.0"`

	AdminPort int `envconfig:"ADMIN_SERVER_PORT" default:"8081"`

	ReadHeaderTimeout time.Duration `envconfig:"SERVER_READ_HEADER_TIMEOUT" default:"5s"`
	ReadTimeout       time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	HandlerTimeout    time.Duration `envconfig:"SERVER_HANDLER_TIMEOUT" default:"15s"`
	IdleTimeout       time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"60s"`

	AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:9000"`
}

// DatabaseConfig represents database-specific configuration.
type DatabaseConfig struct {
	Host     string `envconfig:"DATABASE_HOST" default:"localhost"`
	Port     int    `envconfig:"DATABASE_PORT" default:"5432"`
	Name     string `envconfig:"DATABASE_NAME" required:"true"`
	User     string `envconfig:"DATABASE_USER" required:"true"`
	Password string `envconfig:"DATABASE_PASSWORD" required:"true"`
	SSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	MaxOpenConns    int `envconfig:"DATABASE_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int `envconfig:"DATABASE_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime int `envconfig:"DATABASE_CONN_MAX_LIFETIME" default:"300"`
}

// LoggingConfig represents logging-specific configuration.
type LoggingConfig struct {
	Level  string `envconfig:"LOGGING_LEVEL" default:"info"`
	Format string `envconfig:"LOGGING_FORMAT" default:"json"`
}

// RedisConfig represents the cache store (ticket cache, session store,
// leaderboard, submit lock) connection.
type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// SteamConfig holds the Steam Web API key used for ticket authentication and
// player summaries (§4.2, §4.7).
type SteamConfig struct {
	WebAPIKey string `envconfig:"STEAM_WEB_API_KEY" required:"true"`
}

// OpenIDConfig holds the fixed realm/return-to pair for the Steam OpenID web
// login flow (§4.9).
type OpenIDConfig struct {
	Realm    string `envconfig:"OPENID_REALM" default:"http://localhost:8081"`
	ReturnTo string `envconfig:"OPENID_RETURN_TO" default:"http://localhost:8081/auth/return"`
}

// SessionConfig configures bearer-token session cookies issued after OpenID
// web login (§4.8).
type SessionConfig struct {
	CookieName string `envconfig:"SESSION_COOKIE_NAME" default:"wavebreaker_session"`
}

// MusicBrainzConfig holds tuning for the external metadata enricher (§4.4).
type MusicBrainzConfig struct {
	RequestTimeout time.Duration `envconfig:"MUSICBRAINZ_REQUEST_TIMEOUT" default:"8s"`
}

// RadioSong is one entry served by get_radio_list (§4.7).
type RadioSong struct {
	Artist string
	Title  string
	CGRURL string
	BuyURL string
}

// RadioConfig holds the static radio playlist served to game clients and the
// directory backing the /asradio/* static file mount.
type RadioConfig struct {
	Songs     []RadioSong
	StaticDir string `envconfig:"RADIO_STATIC_DIR" default:"./asradio"`
}

// Load loads configuration from environment variables prefixed with
// WAVEBREAKER.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks invariants envconfig's struct tags cannot express.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	validEnvironments := []string{"local", "development", "staging", "production"}
	if !contains(validEnvironments, c.Environment) {
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	validLogFormats := []string{"json", "text"}
	if !contains(validLogFormats, c.Logging.Format) {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	return nil
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

// GetDSN returns the database connection string.
func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// IsDevelopment returns true if the environment is "development".
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if the environment is "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsLocal returns true if the environment is "local".
func (c *Config) IsLocal() bool {
	return c.Environment == "local"
}
