package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// Proxy modes select which header, if any, carries the client address.
const (
	ProxyNone       = "none"
	ProxyXForwarded = "xforwarded"
	ProxyCloudflare = "cloudflare"
)

// EnvProduction hides internal error detail from API responses.
const EnvProduction = "production"

var defaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:5173",
}

// Config holds application configuration
type Config struct {
	Environment   string
	DatabaseURL   string
	StoreDriver   string
	MongoURI      string
	MongoDatabase string
	Port          string
	DataDir       string

	JWTSecret string
	JWTTTL    time.Duration

	Timezone      string
	DefaultPeriod int

	CORSOrigins     []string
	RateLimitMax    int
	RateLimitWindow time.Duration
	GeoIPDownload   bool
	ProxyMode       string
}

// Overrides are values supplied as command flags. Empty fields are ignored.
type Overrides struct {
	DatabaseURL string
	Port        string
	DataDir     string
	StoreDriver string
}

// Load loads configuration from multiple sources with priority:
// 1. Command flags (see LoadWithOverrides)
// 2. Config file (./jogo.toml or $XDG_CONFIG_HOME/jogo/jogo.toml)
// 3. Environment variables
// 4. Defaults
func Load() (*Config, error) {
	return LoadWithOverrides(Overrides{})
}

// LoadWithOverrides loads config and applies flag overrides
func LoadWithOverrides(o Overrides) (*Config, error) {
	v := newBaseViper()
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return buildConfig(v, o)
}

func newBaseViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("jogo")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	// XDG lookup is done by hand so tests can point HOME elsewhere.
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			configHome = filepath.Join(home, ".config")
		}
	}
	if configHome != "" {
		v.AddConfigPath(filepath.Join(configHome, "jogo"))
	}

	return v
}

// lookup returns the config file value for key, else the first non-empty
// environment variable among envs.
func lookup(v *viper.Viper, key string, envs ...string) (string, bool) {
	if v.IsSet(key) {
		return v.GetString(key), true
	}
	for _, env := range envs {
		if val := os.Getenv(env); val != "" {
			return val, true
		}
	}
	return "", false
}

func buildConfig(v *viper.Viper, o Overrides) (*Config, error) {
	cfg := &Config{
		Environment:     "development",
		StoreDriver:     DriverPostgres,
		MongoURI:        "mongodb://localhost:27017",
		MongoDatabase:   "jogo",
		Port:            "5000",
		DataDir:         "./data",
		JWTTTL:          7 * 24 * time.Hour,
		Timezone:        "UTC",
		DefaultPeriod:   30,
		CORSOrigins:     append([]string(nil), defaultCORSOrigins...),
		RateLimitMax:    100,
		RateLimitWindow: 15 * time.Minute,
		GeoIPDownload:   true,
		ProxyMode:       ProxyNone,
	}

	strs := []struct {
		dst  *string
		key  string
		envs []string
	}{
		{&cfg.Environment, "environment", []string{"APP_ENV", "GO_ENV"}},
		{&cfg.DatabaseURL, "database_url", []string{"DATABASE_URL"}},
		{&cfg.StoreDriver, "store_driver", []string{"STORE_DRIVER"}},
		{&cfg.MongoURI, "mongodb_uri", []string{"MONGODB_URI"}},
		{&cfg.MongoDatabase, "mongodb_database", []string{"MONGODB_DATABASE"}},
		{&cfg.Port, "port", []string{"PORT"}},
		{&cfg.DataDir, "data_dir", []string{"DATA_DIR"}},
		{&cfg.JWTSecret, "jwt_secret", []string{"JWT_SECRET"}},
		{&cfg.Timezone, "timezone", []string{"TIMEZONE"}},
		{&cfg.ProxyMode, "proxy_mode", []string{"PROXY_MODE"}},
	}
	for _, s := range strs {
		if val, ok := lookup(v, s.key, s.envs...); ok {
			*s.dst = strings.TrimSpace(val)
		}
	}
	cfg.StoreDriver = strings.ToLower(cfg.StoreDriver)
	cfg.ProxyMode = strings.ToLower(cfg.ProxyMode)

	if val, ok := lookup(v, "cors_origins", "CORS_ORIGINS"); ok {
		cfg.CORSOrigins = parseOrigins(val)
	}
	if client := os.Getenv("CLIENT_URL"); client != "" {
		if origin, err := SanitizeOrigin(client); err == nil {
			cfg.CORSOrigins = appendUnique(cfg.CORSOrigins, origin)
		}
	}

	var err error
	if cfg.JWTTTL, err = durationValue(v, "jwt_ttl", "JWT_TTL", cfg.JWTTTL); err != nil {
		return nil, err
	}
	if cfg.RateLimitWindow, err = durationValue(v, "rate_limit_window", "RATE_LIMIT_WINDOW", cfg.RateLimitWindow); err != nil {
		return nil, err
	}
	if cfg.DefaultPeriod, err = intValue(v, "default_period", "DEFAULT_PERIOD", cfg.DefaultPeriod); err != nil {
		return nil, err
	}
	if cfg.RateLimitMax, err = intValue(v, "rate_limit_max", "RATE_LIMIT_MAX", cfg.RateLimitMax); err != nil {
		return nil, err
	}
	if val, ok := lookup(v, "geoip_download", "GEOIP_DOWNLOAD"); ok {
		cfg.GeoIPDownload = val == "true" || val == "1"
	}

	// Apply overrides (flags) last
	if o.DatabaseURL != "" {
		cfg.DatabaseURL = o.DatabaseURL
	}
	if o.Port != "" {
		cfg.Port = o.Port
	}
	if o.DataDir != "" {
		cfg.DataDir = o.DataDir
	}
	if o.StoreDriver != "" {
		cfg.StoreDriver = strings.ToLower(o.StoreDriver)
	}

	return cfg, nil
}

func durationValue(v *viper.Viper, key, env string, def time.Duration) (time.Duration, error) {
	raw, ok := lookup(v, key, env)
	if !ok || raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, raw)
	}
	return d, nil
}

func intValue(v *viper.Viper, key, env string, def int) (int, error) {
	raw, ok := lookup(v, key, env)
	if !ok || raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, raw)
	}
	return n, nil
}

// Validate checks the settings needed to serve requests.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL environment variable not set")
		}
	case DriverMongo:
		if c.MongoURI == "" {
			return errors.New("MONGODB_URI environment variable not set")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q (want postgres, mongo or memory)", c.StoreDriver)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable not set")
	}
	if c.DefaultPeriod < 1 || c.DefaultPeriod > 365 {
		return fmt.Errorf("default_period must be between 1 and 365, got %d", c.DefaultPeriod)
	}
	if c.RateLimitMax < 1 || c.RateLimitWindow <= 0 {
		return errors.New("rate limit must allow at least one request per window")
	}
	switch c.ProxyMode {
	case "", ProxyNone, ProxyXForwarded, ProxyCloudflare:
	default:
		return fmt.Errorf("unknown proxy_mode %q (want none, xforwarded or cloudflare)", c.ProxyMode)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	return nil
}

// IsProduction reports whether error details must be withheld from clients.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, EnvProduction)
}

// parseOrigins parses a comma-separated string into a slice of normalised origins
func parseOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "*" {
		return []string{"*"}
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin, err := SanitizeOrigin(part)
		if err != nil {
			continue
		}
		origins = appendUnique(origins, origin)
	}
	return origins
}

func appendUnique(list []string, item string) []string {
	for _, existing := range list {
		if existing == item {
			return list
		}
	}
	return append(list, item)
}
