package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 600*time.Second, cfg.ReferenceTTL)
	assert.Equal(t, 3, cfg.SuggestionLimit)
	assert.Equal(t, "scaled", cfg.CoordinateSanitizer)
	assert.InDelta(t, -8.7911, cfg.Hub.Lat, 1e-3)
	assert.Equal(t, "America/Porto_Velho", cfg.Location.String())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/hub")
	t.Setenv("HUB_LAT", "-3.1")
	t.Setenv("HUB_LON", "-60.02")
	t.Setenv("HUB_TIMEZONE", "UTC")
	t.Setenv("REFERENCE_TTL", "30s")
	t.Setenv("SUGGESTION_LIMIT", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, -3.1, cfg.Hub.Lat)
	assert.Equal(t, 30*time.Second, cfg.ReferenceTTL)
	assert.Equal(t, 5, cfg.SuggestionLimit)
	assert.Equal(t, time.UTC, cfg.Location)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"postgres without url", map[string]string{"STORE": "postgres", "DATABASE_URL": ""}},
		{"unknown store", map[string]string{"STORE": "sqlite"}},
		{"bad limit", map[string]string{"STORE": "memory", "SUGGESTION_LIMIT": "0"}},
		{"bad ttl", map[string]string{"STORE": "memory", "REFERENCE_TTL": "ten"}},
		{"bad hub", map[string]string{"STORE": "memory", "HUB_LAT": "-879.1"}},
		{"bad zone", map[string]string{"STORE": "memory", "HUB_TIMEZONE": "Mars/Olympus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadWithStoreIgnoresDatabaseSettings(t *testing.T) {
	t.Setenv("STORE", "")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err, "default postgres store needs DATABASE_URL")

	cfg, err := LoadWithStore(StoreMemory)
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.Store)
}
