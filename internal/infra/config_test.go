package infra

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterdesk/platform/internal/datastore"
	"github.com/rosterdesk/platform/internal/domain"
)

func validConfig() *Config {
	return &Config{
		DataStore: StorePostgres,
		JWTSecret: "0123456789abcdef0123456789abcdef",
		InviteTTL: 168 * time.Hour,
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, StorePostgres, cfg.DataStore)
	assert.Equal(t, 168*time.Hour, cfg.InviteTTL)
	assert.Equal(t, "rosterdesk.events", cfg.KafkaTopic)
	assert.Equal(t, 30*time.Second, cfg.OrgCacheTTL)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("DATA_STORE", "memory")
	t.Setenv("INVITE_TTL", "48h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.DataStore)
	assert.Equal(t, 48*time.Hour, cfg.InviteTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"unknown store", func(c *Config) { c.DataStore = "sqlite" }, "DATA_STORE"},
		{"postgrest missing url", func(c *Config) { c.DataStore = StorePostgREST }, "SUPABASE_URL"},
		{"zero ttl", func(c *Config) { c.InviteTTL = 0 }, "INVITE_TTL"},
		{"default secret", func(c *Config) { c.JWTSecret = "change-me-in-production" }, "insecure default"},
		{"short secret", func(c *Config) { c.JWTSecret = "short" }, "too short"},
		{"memory needs insecure", func(c *Config) { c.DataStore = StoreMemory }, "ALLOW_INSECURE_DEFAULTS"},
		{"insecure bypass", func(c *Config) {
			c.DataStore = StoreMemory
			c.JWTSecret = "x"
			c.AllowInsecureDefaults = true
		}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigDSN(t *testing.T) {
	cfg := &Config{PGUser: "u", PGPassword: "p", PGHost: "db", PGPort: 5433, PGDatabase: "rd"}
	assert.Equal(t, "postgres://u:p@db:5433/rd?sslmode=disable", cfg.DSN())

	cfg.DatabaseURL = "postgres://override"
	assert.Equal(t, "postgres://override", cfg.DSN())
}

func TestConfigSlogLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"bogus": slog.LevelInfo,
	} {
		assert.Equal(t, want, (&Config{LogLevel: in}).SlogLevel(), in)
	}
}

func TestOpenStore_Memory(t *testing.T) {
	cfg := validConfig()
	cfg.DataStore = StoreMemory
	store, err := OpenStore(context.Background(), cfg, slog.Default())
	require.NoError(t, err)
	defer store.Close()

	// Memory store comes with the schema's unique constraints installed.
	row := datastore.Row{"id": "o1", "name": "A", "slug": "a"}
	require.NoError(t, store.Insert(context.Background(), "organizations", row, nil))
	err = store.Insert(context.Background(), "organizations", datastore.Row{"id": "o2", "name": "B", "slug": "a"}, nil)
	assert.True(t, datastore.IsConflict(err))
}

func TestEncodeEvents(t *testing.T) {
	second := uuid.New()
	events := []domain.EventEnvelope{
		{EventID: uuid.New(), EventName: domain.EventInvitationCreated, PartitionKey: "org-1"},
		{EventID: second, EventName: domain.EventContractCreated, PartitionKey: "org-2"},
	}
	msgs, err := encodeEvents("topic", events)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "org-1", string(msgs[0].Key))
	assert.Equal(t, string(domain.EventInvitationCreated), string(msgs[0].Headers[0].Value))
	assert.Contains(t, string(msgs[1].Value), second.String())
}

func TestScheduler_RunsJob(t *testing.T) {
	s := NewScheduler(slog.Default())
	var runs atomic.Int32
	require.NoError(t, s.Add("tick", "@every 10ms", time.Second, func(context.Context) error {
		runs.Add(1)
		return nil
	}))
	s.Start()
	assert.Eventually(t, func() bool { return runs.Load() > 0 }, 3*time.Second, 10*time.Millisecond)
	s.Shutdown()
}

func TestScheduler_RejectsBadSpec(t *testing.T) {
	s := NewScheduler(slog.Default())
	assert.Error(t, s.Add("bad", "not a schedule", time.Second, func(context.Context) error { return nil }))
}
