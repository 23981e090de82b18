package config

import (
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// DefaultURLNames are the dashboard routes the follow-up screens redirect to.
var DefaultURLNames = map[string]string{
	"subject_listboard_url":    "/subject/listboard/{subject_identifier}/",
	"subject_dashboard_url":    "/subject/dashboard/{subject_identifier}/",
	"navigation_listboard_url": "/listboard/navigation/",
}

type Config struct {
	Port            string            `mapstructure:"PORT"`
	Env             string            `mapstructure:"ENV"`
	AuthMode        string            `mapstructure:"AUTH_MODE"`
	StoreDriver     string            `mapstructure:"STORE_DRIVER"`
	DatabaseURL     string            `mapstructure:"DATABASE_URL"`
	SQLitePath      string            `mapstructure:"SQLITE_PATH"`
	DBMaxConns      int32             `mapstructure:"DB_MAX_CONNS"`
	DBMinConns      int32             `mapstructure:"DB_MIN_CONNS"`
	MigrationsDir   string            `mapstructure:"MIGRATIONS_DIR"`
	AuthIssuer      string            `mapstructure:"AUTH_ISSUER"`
	AuthJWKSURL     string            `mapstructure:"AUTH_JWKS_URL"`
	AuthAudience    string            `mapstructure:"AUTH_AUDIENCE"`
	AuthSigningKey  string            `mapstructure:"AUTH_SIGNING_KEY"`
	DefaultSite     string            `mapstructure:"DEFAULT_SITE"`
	CORSOrigins     []string          `mapstructure:"CORS_ORIGINS"`
	RequestTimeout  time.Duration     `mapstructure:"REQUEST_TIMEOUT"`
	Institution     string            `mapstructure:"INSTITUTION"`
	Revision        string            `mapstructure:"APP_REVISION"`
	DashboardURLs   map[string]string `mapstructure:"-"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("AUTH_MODE", "")
	v.SetDefault("STORE_DRIVER", StorePostgres)
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("MIGRATIONS_DIR", "")
	v.SetDefault("DEFAULT_SITE", "default")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("INSTITUTION", "Botswana Harvard AIDS Institute Partnership")
	v.SetDefault("APP_REVISION", "dev")

	for _, key := range []string{
		"PORT", "ENV", "AUTH_MODE", "STORE_DRIVER", "DATABASE_URL", "SQLITE_PATH",
		"DB_MAX_CONNS", "DB_MIN_CONNS", "MIGRATIONS_DIR",
		"AUTH_ISSUER", "AUTH_JWKS_URL", "AUTH_AUDIENCE", "AUTH_SIGNING_KEY",
		"DEFAULT_SITE", "CORS_ORIGINS", "REQUEST_TIMEOUT", "INSTITUTION",
		"APP_REVISION", "DASHBOARD_URL_NAMES",
	} {
		v.BindEnv(key)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	urls, err := ParseURLNames(v.GetString("DASHBOARD_URL_NAMES"))
	if err != nil {
		return nil, err
	}
	cfg.DashboardURLs = urls

	switch cfg.StoreDriver {
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	case StoreSQLite:
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("SQLITE_PATH is required when STORE_DRIVER is %q", StoreSQLite)
		}
	default:
		return nil, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StorePostgres, StoreSQLite, cfg.StoreDriver)
	}

	if cfg.IsDev() {
		log.Println("WARNING: running in DEVELOPMENT mode (ENV=development); every request is treated as an admin user.")
	}

	return cfg, nil
}

// ParseURLNames overlays "name=/path/{kwarg}/" pairs (comma separated) on top
// of DefaultURLNames.
func ParseURLNames(raw string) (map[string]string, error) {
	urls := make(map[string]string, len(DefaultURLNames))
	for k, v := range DefaultURLNames {
		urls[k] = v
	}
	if strings.TrimSpace(raw) == "" {
		return urls, nil
	}
	for _, pair := range strings.Split(raw, ",") {
		name, path, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || name == "" || path == "" {
			return nil, fmt.Errorf("DASHBOARD_URL_NAMES: malformed entry %q", pair)
		}
		urls[strings.TrimSpace(name)] = strings.TrimSpace(path)
	}
	return urls, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ResolvedAuthMode returns the effective auth mode. If AUTH_MODE is explicitly
// set, it is returned. Otherwise:
//   - ENV=development → "development" (no auth, all requests get admin)
//   - AUTH_ISSUER set → "external" (JWKS-validated tokens)
//   - Otherwise       → "shared-key" (HS256 tokens signed with AUTH_SIGNING_KEY)
func (c *Config) ResolvedAuthMode() string {
	if c.AuthMode != "" {
		return c.AuthMode
	}
	if c.IsDev() {
		return "development"
	}
	if c.AuthIssuer != "" {
		return "external"
	}
	return "shared-key"
}

// SigningKey decodes AUTH_SIGNING_KEY. It returns nil when no key is set.
func (c *Config) SigningKey() ([]byte, error) {
	if c.AuthSigningKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(c.AuthSigningKey)
	if err != nil {
		return nil, fmt.Errorf("AUTH_SIGNING_KEY is not valid hex: %w", err)
	}
	return key, nil
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	mode := c.ResolvedAuthMode()
	switch mode {
	case "development":
		if c.IsProduction() {
			return fmt.Errorf("AUTH_MODE \"development\" is not allowed when ENV=production")
		}
	case "external":
		if c.AuthIssuer == "" && c.AuthJWKSURL == "" {
			return fmt.Errorf("AUTH_ISSUER or AUTH_JWKS_URL must be set when AUTH_MODE is \"external\"")
		}
	case "shared-key":
		key, err := c.SigningKey()
		if err != nil {
			return err
		}
		if len(key) < 32 {
			return fmt.Errorf("AUTH_SIGNING_KEY must be at least 32 bytes (64 hex chars), got %d bytes", len(key))
		}
	default:
		return fmt.Errorf("AUTH_MODE must be \"development\", \"shared-key\", or \"external\", got %q", mode)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if _, ok := c.DashboardURLs["subject_listboard_url"]; !ok {
		return fmt.Errorf("DASHBOARD_URL_NAMES must define subject_listboard_url")
	}
	return nil
}
