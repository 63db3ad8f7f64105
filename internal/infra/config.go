package infra

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Data store backends.
const (
	StorePostgres  = "postgres"
	StorePostgREST = "postgrest"
	StoreMemory    = "memory"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	// Data store
	DataStore     string `env:"DATA_STORE" envDefault:"postgres"`
	DatabaseURL   string `env:"DATABASE_URL"`
	PGHost        string `env:"PGHOST" envDefault:"localhost"`
	PGPort        int    `env:"PGPORT" envDefault:"5432"`
	PGUser        string `env:"PGUSER" envDefault:"rosterdesk"`
	PGPassword    string `env:"PGPASSWORD" envDefault:"rosterdesk"`
	PGDatabase    string `env:"PGDATABASE" envDefault:"rosterdesk"`
	PGMaxConns    int    `env:"PG_MAX_CONNS" envDefault:"10"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"true"`

	// Hosted backend (PostgREST)
	SupabaseURL        string        `env:"SUPABASE_URL"`
	SupabaseServiceKey string        `env:"SUPABASE_SERVICE_KEY"`
	SupabaseTimeout    time.Duration `env:"SUPABASE_TIMEOUT" envDefault:"10s"`

	// JWT
	JWTSecret string        `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	JWTExpiry time.Duration `env:"JWT_EXPIRY" envDefault:"1h"`

	// Server
	APIPort  int    `env:"API_PORT" envDefault:"3100"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Kafka
	KafkaBrokers string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaEnabled bool   `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaTopic   string `env:"KAFKA_TOPIC" envDefault:"rosterdesk.events"`
	KafkaGroupID string `env:"KAFKA_GROUP_ID" envDefault:"rosterdesk-notifier"`

	// Email
	ResendAPIKey string `env:"RESEND_API_KEY"`
	EmailFrom    string `env:"EMAIL_FROM" envDefault:"RosterDesk <no-reply@rosterdesk.io>"`
	AppBaseURL   string `env:"APP_BASE_URL" envDefault:"http://localhost:5173"`

	// Invitations
	InviteTTL           time.Duration `env:"INVITE_TTL" envDefault:"168h"`
	InvitePurgeSchedule string        `env:"INVITE_PURGE_SCHEDULE" envDefault:"@hourly"`
	InviteRateLimit     int           `env:"INVITE_RATE_LIMIT" envDefault:"20"`

	// Membership cache
	OrgCacheSize int           `env:"ORG_CACHE_SIZE" envDefault:"1024"`
	OrgCacheTTL  time.Duration `env:"ORG_CACHE_TTL" envDefault:"30s"`

	// CORS
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	// Dev
	AllowInsecureDefaults bool `env:"ALLOW_INSECURE_DEFAULTS" envDefault:"false"`
}

// LoadConfig parses environment variables into a Config struct.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate rejects inconsistent settings and insecure configuration that
// must not run in production. Set ALLOW_INSECURE_DEFAULTS=true to bypass the
// security checks (local dev only).
func (c *Config) Validate() error {
	switch c.DataStore {
	case StorePostgres, StoreMemory:
	case StorePostgREST:
		if c.SupabaseURL == "" || c.SupabaseServiceKey == "" {
			return fmt.Errorf("DATA_STORE=postgrest requires SUPABASE_URL and SUPABASE_SERVICE_KEY")
		}
	default:
		return fmt.Errorf("DATA_STORE %q is not one of postgres, postgrest, memory", c.DataStore)
	}
	if c.InviteTTL <= 0 {
		return fmt.Errorf("INVITE_TTL must be positive")
	}

	if c.AllowInsecureDefaults {
		return nil
	}
	if c.DataStore == StoreMemory {
		return fmt.Errorf("DATA_STORE=memory loses all data on restart; set ALLOW_INSECURE_DEFAULTS=true for local dev")
	}
	if c.JWTSecret == "change-me-in-production" {
		return fmt.Errorf("JWT_SECRET is set to the insecure default; set a strong secret or set ALLOW_INSECURE_DEFAULTS=true for local dev")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET is too short (%d chars); minimum 32 characters required", len(c.JWTSecret))
	}
	return nil
}

// DSN returns the PostgreSQL connection string, preferring DATABASE_URL if set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}

// CORSOrigins splits CORS_ALLOWED_ORIGINS on commas.
func (c *Config) CORSOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
