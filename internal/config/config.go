// Package config loads service configuration from an optional YAML file,
// the environment and .env (loaded by the CLI before Load is called).
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/jasonbahil/portfolio/internal/blob"
	"github.com/jasonbahil/portfolio/internal/server/ratelimit"
)

// Config keys. Each key is also read from the upper-cased environment
// variable of the same name (database_url -> DATABASE_URL).
const (
	KeyPort               = "port"
	KeyDatabaseURL        = "database_url"
	KeySiteURL            = "site_url"
	KeyCookieSecure       = "cookie_secure"
	KeyUploadMaxBytes     = "upload_max_bytes"
	KeyLogLevel           = "log_level"
	KeyAdminUser          = "admin_user"
	KeyAdminPass          = "admin_pass"
	KeyAdminPasswordHash  = "admin_password_hash"
	KeyJWTSecret          = "jwt_secret"
	KeyJWTExpirationHours = "jwt_expiration_hours"
	KeyBcryptCost         = "bcrypt_cost"
	KeyPasswordPepper     = "password_pepper"
	KeyBlobDriver         = "blob_driver"
	KeyBlobDir            = "blob_dir"
	KeyBlobS3Bucket       = "blob_s3_bucket"
	KeyBlobS3Region       = "blob_s3_region"
	KeyBlobS3Endpoint     = "blob_s3_endpoint"
	KeyBlobS3PathStyle    = "blob_s3_path_style"

	KeyRateLimitEnabled         = "rate_limit_enabled"
	KeyRateLimitDefaultLimit    = "rate_limit_default_limit"
	KeyRateLimitDefaultWindow   = "rate_limit_default_window"
	KeyRateLimitCleanupInterval = "rate_limit_cleanup_interval"
	KeyRateLimitWhitelist       = "rate_limit_whitelist"
	KeyRateLimitBlacklist       = "rate_limit_blacklist"
)

const (
	configFileName = "portfolio"
	configFileType = "yaml"

	// DefaultUploadMaxBytes caps image uploads at 10MB
	DefaultUploadMaxBytes = 10 << 20
)

// Config is the resolved service configuration
type Config struct {
	Port           int
	DatabaseURL    string
	SiteURL        string
	CookieSecure   bool
	UploadMaxBytes int64
	LogLevel       string

	Admin    AdminConfig
	JWT      JWTConfig
	Password PasswordConfig
	Blob     blob.Config

	RateLimit ratelimit.Settings
}

// AdminConfig holds the single admin account. Exactly one of Password and
// PasswordHash is expected.
type AdminConfig struct {
	Username     string
	Password     string
	PasswordHash string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyPort, 8080)
	v.SetDefault(KeySiteURL, "http://localhost:8080")
	v.SetDefault(KeyCookieSecure, false)
	v.SetDefault(KeyUploadMaxBytes, DefaultUploadMaxBytes)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyJWTExpirationHours, 168)
	v.SetDefault(KeyBcryptCost, 12)
	v.SetDefault(KeyBlobDriver, string(blob.DriverFilesystem))
	v.SetDefault(KeyBlobDir, "./public")
	v.SetDefault(KeyBlobS3Region, "us-east-1")

	rl := ratelimit.DefaultSettings()
	v.SetDefault(KeyRateLimitEnabled, rl.Enabled)
	v.SetDefault(KeyRateLimitDefaultLimit, rl.DefaultLimit)
	v.SetDefault(KeyRateLimitDefaultWindow, rl.DefaultWindow)
	v.SetDefault(KeyRateLimitCleanupInterval, rl.CleanupInterval)
}

// Load reads configuration. An explicit path must exist; without one,
// portfolio.yaml is looked up in the working directory and is optional.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:           v.GetInt(KeyPort),
		DatabaseURL:    v.GetString(KeyDatabaseURL),
		SiteURL:        strings.TrimRight(v.GetString(KeySiteURL), "/"),
		CookieSecure:   v.GetBool(KeyCookieSecure),
		UploadMaxBytes: v.GetInt64(KeyUploadMaxBytes),
		LogLevel:       v.GetString(KeyLogLevel),
		Admin: AdminConfig{
			Username:     v.GetString(KeyAdminUser),
			Password:     v.GetString(KeyAdminPass),
			PasswordHash: v.GetString(KeyAdminPasswordHash),
		},
		JWT: JWTConfig{
			Secret:          v.GetString(KeyJWTSecret),
			ExpirationHours: v.GetInt(KeyJWTExpirationHours),
		},
		Password: PasswordConfig{
			BcryptCost: v.GetInt(KeyBcryptCost),
			Pepper:     v.GetString(KeyPasswordPepper),
		},
		Blob: blob.Config{
			Driver: blob.Driver(v.GetString(KeyBlobDriver)),
			Dir:    v.GetString(KeyBlobDir),
			S3: blob.S3Config{
				Bucket:    v.GetString(KeyBlobS3Bucket),
				Region:    v.GetString(KeyBlobS3Region),
				Endpoint:  v.GetString(KeyBlobS3Endpoint),
				PathStyle: v.GetBool(KeyBlobS3PathStyle),
			},
		},
		RateLimit: ratelimit.Settings{
			Enabled:         v.GetBool(KeyRateLimitEnabled),
			DefaultLimit:    v.GetInt(KeyRateLimitDefaultLimit),
			DefaultWindow:   v.GetDuration(KeyRateLimitDefaultWindow),
			CleanupInterval: v.GetDuration(KeyRateLimitCleanupInterval),
			Whitelist:       v.GetString(KeyRateLimitWhitelist),
			Blacklist:       v.GetString(KeyRateLimitBlacklist),
		},
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("config error: 'port' out of range: %d", cfg.Port)
	}
	if cfg.UploadMaxBytes <= 0 {
		return nil, fmt.Errorf("config error: 'upload_max_bytes' must be positive")
	}
	if cfg.RateLimit.Enabled && (cfg.RateLimit.DefaultLimit < 1 || cfg.RateLimit.DefaultWindow <= 0) {
		return nil, fmt.Errorf("config error: rate limit default limit and window must be positive")
	}
	if err := cfg.Password.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RequireDatabase checks that a database URL is configured.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required but not set")
	}
	return nil
}

// ValidateServe checks everything the HTTP server needs on top of Load.
func (c *Config) ValidateServe() error {
	if err := c.RequireDatabase(); err != nil {
		return err
	}
	if c.Admin.Username == "" {
		return fmt.Errorf("ADMIN_USER is required but not set")
	}
	if c.Admin.Password == "" && c.Admin.PasswordHash == "" {
		return fmt.Errorf("one of ADMIN_PASS or ADMIN_PASSWORD_HASH is required")
	}
	if err := c.JWT.normalize(); err != nil {
		return err
	}
	if c.Blob.Driver == blob.DriverS3 && c.Blob.S3.Bucket == "" {
		return fmt.Errorf("BLOB_S3_BUCKET is required for the s3 blob driver")
	}
	return nil
}

// AdminPasswordHash returns the configured hash, hashing a plain password
// when only that was given.
func (c *Config) AdminPasswordHash() (string, error) {
	if c.Admin.PasswordHash != "" {
		return c.Admin.PasswordHash, nil
	}
	if c.Admin.Password == "" {
		return "", fmt.Errorf("no admin password configured")
	}
	return c.Password.HashPassword(c.Admin.Password)
}
