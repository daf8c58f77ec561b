// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML and TOML loading, env var expansion, defaults, duration parsing, validation

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/lehmate/internal/store"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
server:
  http_addr: "0.0.0.0:9090"
  shutdown_timeout: "3s"

store:
  platform: "web"
  path: "/tmp/lehmate-test.db"
  driver: "sqlite3"

assistant:
  reply_delay: "250ms"

dedupe:
  ttl: "1m"
  max_size: 50

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(path, "/data")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Server.HTTPAddr)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "web", cfg.Store.Platform)
	assert.Equal(t, "/tmp/lehmate-test.db", cfg.Store.Path)
	assert.Equal(t, store.DriverCGO, cfg.Store.Driver)
	assert.Equal(t, 250*time.Millisecond, cfg.Assistant.ReplyDelay)
	assert.Equal(t, time.Minute, cfg.Dedupe.TTL)
	assert.Equal(t, 50, cfg.Dedupe.MaxSize)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "config.toml", `
[server]
http_addr = "127.0.0.1:7070"

[store]
platform = "native"

[assistant]
reply_delay = "2s"
`)

	cfg, err := Load(path, "/data")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:7070", cfg.Server.HTTPAddr)
	assert.Equal(t, "native", cfg.Store.Platform)
	assert.Equal(t, 2*time.Second, cfg.Assistant.ReplyDelay)
	// untouched sections keep defaults
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("LEHMATE_TEST_DB", "/var/lib/lehmate/kv.db")
	path := writeFile(t, "config.yaml", `
store:
  path: "${LEHMATE_TEST_DB}"
`)

	cfg, err := Load(path, "/data")
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/lehmate/kv.db", cfg.Store.Path)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), "/data")
	assert.Error(t, err)
}

func TestParse_EmptyUsesDefaults(t *testing.T) {
	cfg, err := Parse(nil, FormatYAML, "/srv/lehmate")
	require.NoError(t, err)

	assert.Equal(t, Default("/srv/lehmate"), cfg)
	assert.Equal(t, "/srv/lehmate/lehmate.db", cfg.Store.Path)
	assert.Equal(t, time.Second, cfg.Assistant.ReplyDelay)
}

func TestParse_InvalidDuration(t *testing.T) {
	_, err := Parse([]byte("assistant:\n  reply_delay: \"soon\"\n"), FormatYAML, "/data")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assistant.reply_delay")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing addr", func(c *Config) { c.Server.HTTPAddr = "" }, "server.http_addr"},
		{"bad platform", func(c *Config) { c.Store.Platform = "ios" }, "store.platform"},
		{"web without path", func(c *Config) { c.Store.Path = "" }, "store.path"},
		{"bad driver", func(c *Config) { c.Store.Driver = "pg" }, "store.driver"},
		{"zero delay", func(c *Config) { c.Assistant.ReplyDelay = 0 }, "assistant.reply_delay"},
		{"zero ttl", func(c *Config) { c.Dedupe.TTL = 0 }, "dedupe.ttl"},
		{"zero size", func(c *Config) { c.Dedupe.MaxSize = 0 }, "dedupe.max_size"},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default("/data")
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	assert.NoError(t, Default("/data").Validate())
}

func TestValidate_NativeNeedsNoPath(t *testing.T) {
	cfg := Default("/data")
	cfg.Store.Platform = "native"
	cfg.Store.Path = ""
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, store.PlatformNative, cfg.StoreOptions().Platform)
}

func TestEncode_RoundTrip(t *testing.T) {
	for _, format := range []Format{FormatYAML, FormatTOML} {
		t.Run(string(format), func(t *testing.T) {
			want := Default("/data")
			data, err := Encode(want, format)
			require.NoError(t, err)

			got, err := Parse(data, format, "/elsewhere")
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatTOML, FormatFor("/etc/lehmate/config.TOML"))
	assert.Equal(t, FormatYAML, FormatFor("config.yaml"))
	assert.Equal(t, FormatYAML, FormatFor("config"))
}
