package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestParse_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	opts, err := Parse(nil)
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", opts.Address)
	assert.Equal(t, "localhost:6379", opts.RedisAddr)
	assert.Equal(t, "info", opts.LogLevel)
	assert.Equal(t, "json", opts.LogFormat)
	assert.Equal(t, "certs", opts.CertDir)
	assert.Equal(t, 24*time.Hour, opts.TokenTTL)
	assert.Zero(t, opts.ShareSweepInterval)
	assert.Equal(t, 1.0, opts.SharedRateLimit)
	assert.Equal(t, 10, opts.SharedRateBurst)
	assert.Equal(t, "config.json", opts.Config)
}

func TestParse_Precedence(t *testing.T) {
	path := writeConfig(t, `{
		"address": "file:1",
		"database_dsn": "postgres://file",
		"log_level": "debug",
		"token_ttl": "2h",
		"shared_rate_burst": 3
	}`)
	t.Setenv("HEALTHMATE_DATABASE_DSN", "postgres://env")
	t.Setenv("HEALTHMATE_SHARE_SWEEP_INTERVAL", "15m")

	opts, err := Parse([]string{"-c", path, "-a", "flag:9"})
	require.NoError(t, err)

	assert.Equal(t, "flag:9", opts.Address, "flag beats file")
	assert.Equal(t, "postgres://env", opts.DatabaseDSN, "env beats file")
	assert.Equal(t, "debug", opts.LogLevel, "file beats default")
	assert.Equal(t, 2*time.Hour, opts.TokenTTL)
	assert.Equal(t, 15*time.Minute, opts.ShareSweepInterval)
	assert.Equal(t, 3, opts.SharedRateBurst)
	assert.Equal(t, path, opts.Config)
}

func TestParse_CompatEnv(t *testing.T) {
	path := writeConfig(t, `{"redis_addr": "redis:6380"}`)
	t.Setenv("CONFIG", path)
	t.Setenv("SERVER_ADDRESS", "0.0.0.0:443")

	opts, err := Parse(nil)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:443", opts.Address)
	assert.Equal(t, "redis:6380", opts.RedisAddr)
	assert.Equal(t, path, opts.Config)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]string{"-c", filepath.Join(t.TempDir(), "missing.json")})
	assert.Error(t, err, "explicit missing config file")

	_, err = Parse([]string{"-c", writeConfig(t, `{not json`)})
	assert.ErrorContains(t, err, "parsing config file")

	_, err = Parse([]string{"--no-such-flag"})
	assert.Error(t, err)
}

func TestOptions_Location(t *testing.T) {
	loc, err := (&Options{}).Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	loc, err = (&Options{Timezone: "America/New_York"}).Location()
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", loc.String())

	_, err = (&Options{Timezone: "Mars/Olympus"}).Location()
	assert.Error(t, err)
}
