// Package config loads appointctl settings from flags, the environment and an
// optional appointctl.yaml using Viper.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/example/salon-admin/internal/logging"
)

// DefaultAPIPath is the REST prefix of the booking plugin.
const DefaultAPIPath = "/wp-json/valcode-appoint/v1"

// Config captures the resolved client configuration.
type Config struct {
	StateDSN          string
	APIPath           string
	HTTPTimeout       time.Duration
	Location          *time.Location
	LogLevel          slog.Level
	LogFormat         string
	DeleteFailClosed  bool
	UpcomingDays      int
	LookupConcurrency int
	Demo              bool
	Ephemeral         bool
}

// raw mirrors the Viper keys before validation.
type raw struct {
	StateDSN          string `mapstructure:"state_dsn"`
	APIPath           string `mapstructure:"api_path"`
	HTTPTimeout       string `mapstructure:"http_timeout"`
	Timezone          string `mapstructure:"timezone"`
	LogLevel          string `mapstructure:"log_level"`
	LogFormat         string `mapstructure:"log_format"`
	DeleteFailClosed  string `mapstructure:"delete_fail_closed"`
	UpcomingDays      string `mapstructure:"upcoming_days"`
	LookupConcurrency string `mapstructure:"lookup_concurrency"`
	Demo              bool   `mapstructure:"demo"`
	Ephemeral         bool   `mapstructure:"ephemeral"`
}

// RegisterFlags adds the command line flags that Load understands.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("state", "", "path of the local state database")
	flags.Duration("timeout", 0, "per-request HTTP timeout")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.Bool("demo", false, "run against an in-process demo server")
	flags.Bool("ephemeral", false, "keep state in memory only")
}

// Load reads configuration from the environment and appointctl.yaml.
func Load() (Config, error) {
	return LoadWithFlags(nil)
}

// LoadWithFlags is Load with command line overrides bound on top. Flags win
// over environment variables, which win over the config file.
func LoadWithFlags(flags *pflag.FlagSet) (Config, error) {
	v := viper.New()

	v.SetConfigName("appointctl")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "appointctl"))
	}

	v.SetEnvPrefix("APPOINT")
	v.AutomaticEnv()

	v.SetDefault("state_dsn", defaultStatePath())
	v.SetDefault("api_path", DefaultAPIPath)
	v.SetDefault("http_timeout", "15s")
	v.SetDefault("timezone", "Local")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("delete_fail_closed", "true")
	v.SetDefault("upcoming_days", "30")
	v.SetDefault("lookup_concurrency", "4")
	v.SetDefault("demo", false)
	v.SetDefault("ephemeral", false)

	invalid := make([]string, 0, 2)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			invalid = append(invalid, "appointctl.yaml")
		}
	}

	if flags != nil {
		bindings := map[string]string{
			"state_dsn":    "state",
			"http_timeout": "timeout",
			"log_level":    "log-level",
			"demo":         "demo",
			"ephemeral":    "ephemeral",
		}
		for key, name := range bindings {
			if flag := flags.Lookup(name); flag != nil && flag.Changed {
				if err := v.BindPFlag(key, flag); err != nil {
					return Config{}, fmt.Errorf("config: bind flag %s: %w", name, err)
				}
			}
		}
	}

	var r raw
	if err := v.Unmarshal(&r); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	cfg := Config{
		StateDSN:  strings.TrimSpace(r.StateDSN),
		APIPath:   "/" + strings.Trim(strings.TrimSpace(r.APIPath), "/"),
		LogFormat: strings.ToLower(strings.TrimSpace(r.LogFormat)),
		Demo:      r.Demo,
		Ephemeral: r.Ephemeral,
	}

	if cfg.StateDSN == "" {
		invalid = append(invalid, "APPOINT_STATE_DSN")
	}
	if cfg.APIPath == "/" {
		invalid = append(invalid, "APPOINT_API_PATH")
	}

	if timeout, err := time.ParseDuration(strings.TrimSpace(r.HTTPTimeout)); err != nil || timeout <= 0 {
		invalid = append(invalid, "APPOINT_HTTP_TIMEOUT")
	} else {
		cfg.HTTPTimeout = timeout
	}

	if loc, err := time.LoadLocation(strings.TrimSpace(r.Timezone)); err != nil {
		invalid = append(invalid, "APPOINT_TIMEZONE")
	} else {
		cfg.Location = loc
	}

	if level, err := logging.ParseLevel(r.LogLevel); err != nil {
		invalid = append(invalid, "APPOINT_LOG_LEVEL")
	} else {
		cfg.LogLevel = level
	}

	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		invalid = append(invalid, "APPOINT_LOG_FORMAT")
	}

	if failClosed, err := strconv.ParseBool(strings.TrimSpace(r.DeleteFailClosed)); err != nil {
		invalid = append(invalid, "APPOINT_DELETE_FAIL_CLOSED")
	} else {
		cfg.DeleteFailClosed = failClosed
	}

	if days, err := strconv.Atoi(strings.TrimSpace(r.UpcomingDays)); err != nil || days <= 0 {
		invalid = append(invalid, "APPOINT_UPCOMING_DAYS")
	} else {
		cfg.UpcomingDays = days
	}

	if n, err := strconv.Atoi(strings.TrimSpace(r.LookupConcurrency)); err != nil || n <= 0 {
		invalid = append(invalid, "APPOINT_LOOKUP_CONCURRENCY")
	} else {
		cfg.LookupConcurrency = n
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("config: invalid values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return "appointctl.db"
	}
	return filepath.Join(dir, "appointctl", "state.db")
}
