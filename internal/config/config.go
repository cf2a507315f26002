package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "STOREFRONT_"

// Driver names accepted by database.driver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DatabaseConfig selects and locates the record store.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"` // sqlite file
	URL    string `yaml:"url"`  // postgres connection string
}

// AdminConfig is the single admin login.
type AdminConfig struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
	// Password is hashed at startup. Development only.
	Password   string        `yaml:"password"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

// SecurityConfig holds request protection settings.
type SecurityConfig struct {
	CSRFKey            string   `yaml:"csrf_key"` // 64 hex chars
	TrustedOrigins     []string `yaml:"trusted_origins"`
	RateLimitPerSecond int      `yaml:"rate_limit_per_second"`
}

// EmailConfig configures outgoing mail.
type EmailConfig struct {
	ResendAPIKey string `yaml:"resend_api_key"`
	From         string `yaml:"from"`
	ReplyTo      string `yaml:"reply_to"`
	Inbox        string `yaml:"inbox"`
	StoreName    string `yaml:"store_name"`
}

// TelemetryConfig configures trace export. Empty endpoint disables it.
type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	Insecure     bool   `yaml:"insecure"`
	ServiceName  string `yaml:"service_name"`
}

// JobsConfig holds cron specs for background jobs.
type JobsConfig struct {
	SessionSweep string `yaml:"session_sweep"`
	Outbox       string `yaml:"outbox"`
}

// SeedConfig controls loading of the bundled content.
type SeedConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Config is the top-level server configuration.
type Config struct {
	Env       string `yaml:"env"`
	Addr      string `yaml:"addr"`
	LogLevel  string `yaml:"log_level"`
	TimeZone  string `yaml:"timezone"`
	StaticDir string `yaml:"static_dir"`
	// SSMPrefix, when set, pulls secrets from AWS SSM Parameter Store.
	SSMPrefix string `yaml:"ssm_prefix"`

	Database  DatabaseConfig  `yaml:"database"`
	Admin     AdminConfig     `yaml:"admin"`
	Security  SecurityConfig  `yaml:"security"`
	Email     EmailConfig     `yaml:"email"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Jobs      JobsConfig      `yaml:"jobs"`
	Seed      SeedConfig      `yaml:"seed"`
}

// Default returns the development configuration.
func Default() *Config {
	return &Config{
		Env:       "development",
		Addr:      ":8080",
		LogLevel:  "info",
		TimeZone:  "America/New_York",
		StaticDir: "static",
		Database:  DatabaseConfig{Driver: DriverSQLite, Path: "storefront.db"},
		Admin:     AdminConfig{Username: "admin", SessionTTL: time.Hour},
		Security:  SecurityConfig{RateLimitPerSecond: 10},
		Email: EmailConfig{
			From:      "Adams Shore Market <noreply@adamsshoremarket.com>",
			Inbox:     "info@adamsshoremarket.com",
			StoreName: "Adams Shore Market",
		},
		Telemetry: TelemetryConfig{ServiceName: "storefront"},
		Jobs:      JobsConfig{SessionSweep: "@every 5m", Outbox: "@every 1m"},
		Seed:      SeedConfig{Enabled: true},
	}
}

// Normalize fills zero values with defaults and canonicalises enums.
func (c *Config) Normalize() {
	d := Default()
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	if c.Env == "" {
		c.Env = d.Env
	}
	if c.Addr == "" {
		c.Addr = d.Addr
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.TimeZone == "" {
		c.TimeZone = d.TimeZone
	}
	if c.StaticDir == "" {
		c.StaticDir = d.StaticDir
	}
	c.SSMPrefix = strings.TrimRight(c.SSMPrefix, "/")

	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if c.Database.Driver == "" {
		c.Database.Driver = d.Database.Driver
	}
	if c.Database.Driver == DriverSQLite && c.Database.Path == "" {
		c.Database.Path = d.Database.Path
	}
	if c.Admin.Username == "" {
		c.Admin.Username = d.Admin.Username
	}
	if c.Admin.SessionTTL == 0 {
		c.Admin.SessionTTL = d.Admin.SessionTTL
	}
	if c.Security.RateLimitPerSecond <= 0 {
		c.Security.RateLimitPerSecond = d.Security.RateLimitPerSecond
	}
	if c.Email.From == "" {
		c.Email.From = d.Email.From
	}
	if c.Email.Inbox == "" {
		c.Email.Inbox = d.Email.Inbox
	}
	if c.Email.StoreName == "" {
		c.Email.StoreName = d.Email.StoreName
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = d.Telemetry.ServiceName
	}
	if c.Jobs.SessionSweep == "" {
		c.Jobs.SessionSweep = d.Jobs.SessionSweep
	}
	if c.Jobs.Outbox == "" {
		c.Jobs.Outbox = d.Jobs.Outbox
	}
}

// Load builds the configuration from defaults, the YAML file at path, a local .env file
// and STOREFRONT_* environment variables, in increasing precedence.
// A missing YAML or .env file is not an error. SSM secrets are applied separately by ApplySSM.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			slog.Debug("config_file_missing", "path", path)
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return cfg, nil
}

// applyEnv overlays STOREFRONT_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	var errs []error
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = b
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = d
		}
	}

	str("ENV", &c.Env)
	str("ADDR", &c.Addr)
	str("LOG_LEVEL", &c.LogLevel)
	str("TIMEZONE", &c.TimeZone)
	str("STATIC_DIR", &c.StaticDir)
	str("SSM_PREFIX", &c.SSMPrefix)
	str("DB_DRIVER", &c.Database.Driver)
	str("DB_PATH", &c.Database.Path)
	str("DB_URL", &c.Database.URL)
	str("ADMIN_USERNAME", &c.Admin.Username)
	str("ADMIN_PASSWORD", &c.Admin.Password)
	str("ADMIN_PASSWORD_HASH", &c.Admin.PasswordHash)
	duration("SESSION_TTL", &c.Admin.SessionTTL)
	str("CSRF_KEY", &c.Security.CSRFKey)
	if v, ok := lookup(EnvPrefix + "TRUSTED_ORIGINS"); ok && v != "" {
		c.Security.TrustedOrigins = splitList(v)
	}
	integer("RATE_LIMIT", &c.Security.RateLimitPerSecond)
	str("RESEND_API_KEY", &c.Email.ResendAPIKey)
	str("EMAIL_FROM", &c.Email.From)
	str("REPLY_TO", &c.Email.ReplyTo)
	str("EMAIL_INBOX", &c.Email.Inbox)
	str("STORE_NAME", &c.Email.StoreName)
	str("OTLP_ENDPOINT", &c.Telemetry.OTLPEndpoint)
	boolean("OTLP_INSECURE", &c.Telemetry.Insecure)
	str("SESSION_SWEEP", &c.Jobs.SessionSweep)
	str("OUTBOX_SCHEDULE", &c.Jobs.Outbox)
	boolean("SEED", &c.Seed.Enabled)
	return errors.Join(errs...)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// IsProduction reports whether env is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			errs = append(errs, errors.New("database.path is required for sqlite"))
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			errs = append(errs, errors.New("database.url is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown database.driver %q", c.Database.Driver))
	}

	if c.Admin.Username == "" {
		errs = append(errs, errors.New("admin.username is required"))
	}
	if c.Admin.PasswordHash == "" && c.Admin.Password == "" {
		errs = append(errs, errors.New("admin.password_hash or admin.password is required"))
	}
	if c.IsProduction() && c.Admin.PasswordHash == "" {
		errs = append(errs, errors.New("admin.password_hash is required in production"))
	}
	if c.Admin.SessionTTL <= 0 {
		errs = append(errs, errors.New("admin.session_ttl must be positive"))
	}

	if c.Security.CSRFKey != "" {
		if _, err := c.CSRFKeyBytes(); err != nil {
			errs = append(errs, err)
		}
	} else if c.IsProduction() {
		errs = append(errs, errors.New("security.csrf_key is required in production"))
	}

	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		errs = append(errs, fmt.Errorf("timezone %q: %w", c.TimeZone, err))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log_level %q", c.LogLevel))
	}
	return errors.Join(errs...)
}

// CSRFKeyBytes decodes security.csrf_key.
func (c *Config) CSRFKeyBytes() ([]byte, error) {
	key, err := hex.DecodeString(c.Security.CSRFKey)
	if err != nil || len(key) != 32 {
		return nil, errors.New("security.csrf_key must be 64 hex characters")
	}
	return key, nil
}

// AdminPasswordHash returns the configured bcrypt hash, hashing the plaintext password if
// only that was given.
func (c *Config) AdminPasswordHash() ([]byte, error) {
	if c.Admin.PasswordHash != "" {
		if _, err := bcrypt.Cost([]byte(c.Admin.PasswordHash)); err != nil {
			return nil, fmt.Errorf("admin.password_hash: %w", err)
		}
		return []byte(c.Admin.PasswordHash), nil
	}
	return bcrypt.GenerateFromPassword([]byte(c.Admin.Password), bcrypt.DefaultCost)
}

// Location loads the store time zone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.TimeZone)
}

// SlogLevel maps log_level onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
