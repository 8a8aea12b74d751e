// Package config loads server settings from flags, environment and an optional file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type DBConfig struct {
	URL            string
	Host           string
	Port           int
	Username       string
	Password       string
	Database       string
	SSLMode        string
	Synchronize    bool
	ConnectTimeout time.Duration
}

// DSN prefers the explicit URL and otherwise assembles one from the parts.
func (c DBConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Username, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Database,
		RawQuery: url.Values{"sslmode": []string{c.SSLMode}}.Encode(),
	}
	return u.String()
}

type IdempotencyConfig struct {
	Backend       string
	TTL           time.Duration
	// PurgeInterval is how often expired records are swept; zero disables the sweep.
	PurgeInterval time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type Config struct {
	Port        int
	APIPrefix   string
	Store       string
	MCPEnabled  bool
	DB          DBConfig
	Idempotency IdempotencyConfig
	Log         LogConfig
}

// envBindings maps viper keys to the environment variable names operators use.
var envBindings = map[string]string{
	"port":                       "PORT",
	"api_prefix":                 "API_PREFIX",
	"store":                      "STORE",
	"mcp.enabled":                "MCP_ENABLED",
	"db.url":                     "DATABASE_URL",
	"db.host":                    "DB_HOST",
	"db.port":                    "DB_PORT",
	"db.username":                "DB_USERNAME",
	"db.password":                "DB_PASSWORD",
	"db.database":                "DB_DATABASE",
	"db.sslmode":                 "DB_SSLMODE",
	"db.synchronize":             "DB_SYNCHRONIZE",
	"db.connect_timeout":         "DB_CONNECT_TIMEOUT",
	"idempotency.backend":        "IDEMPOTENCY_BACKEND",
	"idempotency.ttl":            "IDEMPOTENCY_TTL",
	"idempotency.purge_interval": "IDEMPOTENCY_PURGE_INTERVAL",
	"log.level":                  "LOG_LEVEL",
	"log.format":                 "LOG_FORMAT",
}

// SetDefaults installs defaults and environment bindings on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", 3000)
	v.SetDefault("api_prefix", "api/v1")
	v.SetDefault("store", StorePostgres)
	v.SetDefault("mcp.enabled", true)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.username", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.database", "products_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.synchronize", false)
	v.SetDefault("db.connect_timeout", 30*time.Second)
	v.SetDefault("idempotency.backend", StoreMemory)
	v.SetDefault("idempotency.ttl", 24*time.Hour)
	v.SetDefault("idempotency.purge_interval", time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}
}

// Load reads the optional config file named by the "config" key and returns a
// validated Config.
func Load(v *viper.Viper) (Config, error) {
	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file %s: %w", file, err)
		}
	}

	cfg := Config{
		Port:       v.GetInt("port"),
		APIPrefix:  strings.Trim(v.GetString("api_prefix"), "/"),
		Store:      strings.ToLower(v.GetString("store")),
		MCPEnabled: v.GetBool("mcp.enabled"),
		DB: DBConfig{
			URL:            v.GetString("db.url"),
			Host:           v.GetString("db.host"),
			Port:           v.GetInt("db.port"),
			Username:       v.GetString("db.username"),
			Password:       v.GetString("db.password"),
			Database:       v.GetString("db.database"),
			SSLMode:        v.GetString("db.sslmode"),
			Synchronize:    v.GetBool("db.synchronize"),
			ConnectTimeout: v.GetDuration("db.connect_timeout"),
		},
		Idempotency: IdempotencyConfig{
			Backend:       strings.ToLower(v.GetString("idempotency.backend")),
			TTL:           v.GetDuration("idempotency.ttl"),
			PurgeInterval: v.GetDuration("idempotency.purge_interval"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("log.level")),
			Format: strings.ToLower(v.GetString("log.format")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.Store != StoreMemory && c.Store != StorePostgres {
		errs = append(errs, fmt.Errorf("store must be %q or %q, got %q", StoreMemory, StorePostgres, c.Store))
	}
	if c.Idempotency.Backend != StoreMemory && c.Idempotency.Backend != StorePostgres {
		errs = append(errs, fmt.Errorf("idempotency backend must be %q or %q, got %q", StoreMemory, StorePostgres, c.Idempotency.Backend))
	}
	if c.Idempotency.Backend == StorePostgres && c.Store != StorePostgres {
		errs = append(errs, errors.New("postgres idempotency backend requires the postgres store"))
	}
	if c.Idempotency.TTL <= 0 {
		errs = append(errs, errors.New("idempotency ttl must be positive"))
	}
	if c.Idempotency.PurgeInterval < 0 {
		errs = append(errs, errors.New("idempotency purge interval cannot be negative"))
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		errs = append(errs, fmt.Errorf("log format must be json or text, got %q", c.Log.Format))
	}
	if c.Store == StorePostgres && c.DB.URL == "" && (c.DB.Host == "" || c.DB.Database == "") {
		errs = append(errs, errors.New("database host and name are required without DATABASE_URL"))
	}
	return errors.Join(errs...)
}

// SlogLevel maps the configured level name; unknown names fall back to info.
func (c LogConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
