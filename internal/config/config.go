// Package config loads server options from defaults, an optional JSON
// config file, HEALTHMATE_* environment variables and command-line flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"strings"
	"time"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Parse.
const EnvPrefix = "HEALTHMATE"

// Options holds the configuration values for the server.
type Options struct {
	// Address is the server's listening address (ip:port).
	Address string `mapstructure:"address"`
	// DatabaseDSN is the PostgreSQL connection string.
	DatabaseDSN string `mapstructure:"database_dsn"`

	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// CertDir holds ca.crt, ca.key, server.crt and server.key.
	CertDir string `mapstructure:"cert_dir"`

	// TokenSecret enables bearer-token auth when non-empty.
	TokenSecret string        `mapstructure:"token_secret"`
	TokenIssuer string        `mapstructure:"token_issuer"`
	TokenTTL    time.Duration `mapstructure:"token_ttl"`

	ShareBaseURL string `mapstructure:"share_base_url"`
	// ShareSweepInterval of zero leaves expired shares to lazy expiry.
	ShareSweepInterval time.Duration `mapstructure:"share_sweep_interval"`

	// Timezone is the IANA zone used to derive the calendar date of records.
	Timezone string `mapstructure:"timezone"`

	SharedRateLimit float64 `mapstructure:"shared_rate_limit"`
	SharedRateBurst int     `mapstructure:"shared_rate_burst"`

	// Config is the path to the config file.
	Config string `mapstructure:"-"`
}

// Location resolves Timezone.
func (o *Options) Location() (*time.Location, error) {
	if o.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(o.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", o.Timezone, err)
	}
	return loc, nil
}

var defaults = map[string]any{
	"address":              "localhost:8080",
	"database_dsn":         "",
	"redis_addr":           "localhost:6379",
	"redis_password":       "",
	"redis_db":             0,
	"log_level":            "info",
	"log_format":           "json",
	"cert_dir":             "certs",
	"token_secret":         "",
	"token_issuer":         "healthmate",
	"token_ttl":            24 * time.Hour,
	"share_base_url":       "https://localhost:8080",
	"share_sweep_interval": time.Duration(0),
	"timezone":             "UTC",
	"shared_rate_limit":    1.0,
	"shared_rate_burst":    10,
}

// Parse builds Options from args (without the program name) and the
// process environment.
func Parse(args []string) (*Options, error) {
	flags := flag.NewFlagSet("healthmate", flag.ContinueOnError)
	flags.StringP("address", "a", "localhost:8080", "run on ip:port server")
	flags.StringP("database_dsn", "d", "", "db address")
	flags.StringP("config", "c", "config.json", "path to config file")
	flags.String("redis_addr", "localhost:6379", "redis address for the activity feed")
	flags.String("log_level", "info", "log level (debug, info, warn, error)")
	flags.String("log_format", "json", "log format (json or console)")
	flags.String("cert_dir", "certs", "directory of the CA and server certificates")
	flags.String("share_base_url", "https://localhost:8080", "base URL of shared report links")
	flags.Duration("share_sweep_interval", 0, "expired share sweep period (0 disables)")
	flags.String("timezone", "UTC", "timezone used for record dates")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("address", EnvPrefix+"_ADDRESS", "SERVER_ADDRESS"); err != nil {
		return nil, err
	}

	path, err := configPath(flags)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("json")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("error while parsing config file: %w", err)
			}
		} else if !errors.Is(err, iofs.ErrNotExist) || flags.Changed("config") {
			return nil, fmt.Errorf("error while reading config file: %w", err)
		}
	}

	flags.VisitAll(func(f *flag.Flag) {
		if f.Name != "config" {
			_ = v.BindPFlag(f.Name, f)
		}
	})

	opts := &Options{}
	if err := v.Unmarshal(opts); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	opts.Config = path
	return opts, nil
}

// configPath prefers an explicit flag, then the CONFIG env variable.
func configPath(f *flag.FlagSet) (string, error) {
	path, err := f.GetString("config")
	if err != nil {
		return "", err
	}
	if !f.Changed("config") {
		if env := os.Getenv("CONFIG"); env != "" {
			path = env
		}
	}
	return path, nil
}
