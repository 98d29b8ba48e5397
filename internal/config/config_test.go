package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.False(t, cfg.TrustProxy)
	assert.False(t, cfg.Auth.Enabled)
	assert.True(t, cfg.EOP.FetchEnabled)
	assert.Empty(t, cfg.EOP.SourceURL)
	assert.Equal(t, "/tmp/stardome/eop", cfg.EOP.CacheDir)
	assert.Equal(t, 3, cfg.EOP.MaxFiles)
	assert.Equal(t, 24*time.Hour, cfg.EOP.MaxAge)
	assert.Equal(t, 0, cfg.Transform.Workers)
	assert.Equal(t, 100000, cfg.Transform.MaxPositions)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"STARDOME_HTTP_ADDR":               "127.0.0.1:9090",
		"STARDOME_LOG_LEVEL":               "debug",
		"STARDOME_TRUST_PROXY":             "true",
		"STARDOME_AUTH_ENABLED":            "1",
		"STARDOME_AUTH_TOKEN":              "s3cret",
		"STARDOME_EOP_FETCH_ENABLED":       "false",
		"STARDOME_EOP_SOURCE_URL":          "https://example.test/EOP-All.txt",
		"STARDOME_EOP_CACHE_DIR":           "/var/cache/eop",
		"STARDOME_EOP_MAX_FILES":           "7",
		"STARDOME_EOP_MAX_AGE":             "6h",
		"STARDOME_TRANSFORM_WORKERS":       "4",
		"STARDOME_TRANSFORM_MAX_POSITIONS": "500",
	})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.HTTPAddr)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.True(t, cfg.TrustProxy)
	assert.Equal(t, Auth{Enabled: true, Token: "s3cret"}, cfg.Auth)
	assert.Equal(t, EOP{
		FetchEnabled: false,
		SourceURL:    "https://example.test/EOP-All.txt",
		CacheDir:     "/var/cache/eop",
		MaxFiles:     7,
		MaxAge:       6 * time.Hour,
	}, cfg.EOP)
	assert.Equal(t, Transform{Workers: 4, MaxPositions: 500}, cfg.Transform)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		environ map[string]string
		wantMsg string
	}{
		{
			name:    "auth without token",
			environ: map[string]string{"STARDOME_AUTH_ENABLED": "true"},
			wantMsg: "AUTH_TOKEN is required",
		},
		{
			name:    "bad bool",
			environ: map[string]string{"STARDOME_AUTH_ENABLED": "yes please"},
			wantMsg: "parse env",
		},
		{
			name:    "bad duration",
			environ: map[string]string{"STARDOME_EOP_MAX_AGE": "tomorrow"},
			wantMsg: "parse env",
		},
		{
			name:    "zero max files",
			environ: map[string]string{"STARDOME_EOP_MAX_FILES": "0"},
			wantMsg: "EOP_MAX_FILES must be at least 1",
		},
		{
			name:    "negative max age",
			environ: map[string]string{"STARDOME_EOP_MAX_AGE": "-1h"},
			wantMsg: "EOP_MAX_AGE must be positive",
		},
		{
			name:    "negative workers",
			environ: map[string]string{"STARDOME_TRANSFORM_WORKERS": "-2"},
			wantMsg: "TRANSFORM_WORKERS must not be negative",
		},
		{
			name:    "zero max positions",
			environ: map[string]string{"STARDOME_TRANSFORM_MAX_POSITIONS": "0"},
			wantMsg: "TRANSFORM_MAX_POSITIONS must be at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(tt.environ)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	err := Config{
		Auth:      Auth{Enabled: true},
		EOP:       EOP{MaxFiles: 0, MaxAge: time.Hour},
		Transform: Transform{MaxPositions: 1},
	}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP_ADDR")
	assert.Contains(t, err.Error(), "AUTH_TOKEN")
	assert.Contains(t, err.Error(), "EOP_MAX_FILES")
}

func TestLogValueHidesToken(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"STARDOME_AUTH_ENABLED": "true",
		"STARDOME_AUTH_TOKEN":   "s3cret",
	})
	require.NoError(t, err)

	assert.NotContains(t, cfg.LogValue().String(), "s3cret")
}
