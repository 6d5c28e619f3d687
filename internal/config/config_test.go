package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/pagegraph/pkg/errors"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[cache]
backend = "redis"
ttl = "90m"
redis_db = 2

[read]
merge_frames = false
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendRedis, cfg.Cache.Backend)
	assert.Equal(t, 90*time.Minute, cfg.Cache.TTL.Duration)
	assert.Equal(t, 2, cfg.Cache.RedisDB)
	assert.Equal(t, "localhost:6379", cfg.Cache.RedisAddr)
	assert.False(t, cfg.Read.MergeFrames)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"invalid toml", "[cache"},
		{"bad duration", "[cache]\nttl = \"soon\""},
		{"bad backend", "[cache]\nbackend = \"memcached\""},
		{"unknown key", "[cache]\nsize = 3"},
		{"negative ttl", "[cache]\nttl = \"-1h\""},
		{"zero upload", "[server]\nmax_upload_mb = 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			assert.Error(t, Decode(tt.text, &cfg))
		})
	}
}

func TestLoadInvalidIsInvalidInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[cache]\nttl = 5"), 0o644))

	_, err := Load(path)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "got %v", err)
}
