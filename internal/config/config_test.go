package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	t.Run("Defaults fill an empty file", func(t *testing.T) {
		// Given: an empty config file
		path := writeConfig(t, "{}\n")

		// When: it is loaded
		conf, err := Load(path)

		// Then: defaults apply
		require.NoError(t, err)
		assert.Equal(t, "info", conf.LogLevel)
		assert.Equal(t, "9090", conf.HTTPPort)
		assert.False(t, conf.Rules.OptionalCapture)
		assert.Equal(t, BrokerNone, conf.Events.Broker)
		assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
		assert.False(t, conf.Events.UsesRedis())
		assert.False(t, conf.Events.UsesNATS())
	})

	t.Run("File values override defaults", func(t *testing.T) {
		// Given: a file that picks both brokers and optional captures
		path := writeConfig(t, `
log-level: debug
http-port: "8080"
rules:
  optional-capture: true
events:
  broker: both
  channel: games
redis:
  host: cache
  port: "6380"
nats:
  url: nats://broker:4222
`)

		// When: it is loaded
		conf, err := Load(path)

		// Then: every value is read
		require.NoError(t, err)
		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, "8080", conf.HTTPPort)
		assert.True(t, conf.Rules.OptionalCapture)
		assert.Equal(t, "games", conf.Events.Channel)
		assert.Equal(t, "cache:6380", conf.Redis.GetRedisAddr())
		assert.Equal(t, "nats://broker:4222", conf.NATS.URL)
		assert.True(t, conf.Events.UsesRedis())
		assert.True(t, conf.Events.UsesNATS())
	})

	t.Run("Unknown broker is rejected", func(t *testing.T) {
		path := writeConfig(t, "events:\n  broker: kafka\n")

		_, err := Load(path)

		require.Error(t, err)
	})

	t.Run("Missing file panics in MustLoad", func(t *testing.T) {
		assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "missing.yml")) })
	})
}
