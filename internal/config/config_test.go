package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasonbahil/portfolio/internal/blob"
	"github.com/jasonbahil/portfolio/internal/server/ratelimit"
)

// clearEnv blanks every config variable; viper ignores empty values.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "DATABASE_URL", "SITE_URL", "COOKIE_SECURE", "UPLOAD_MAX_BYTES", "LOG_LEVEL",
		"ADMIN_USER", "ADMIN_PASS", "ADMIN_PASSWORD_HASH", "JWT_SECRET", "JWT_EXPIRATION_HOURS",
		"BCRYPT_COST", "PASSWORD_PEPPER", "BLOB_DRIVER", "BLOB_DIR", "BLOB_S3_BUCKET",
		"BLOB_S3_REGION", "BLOB_S3_ENDPOINT", "BLOB_S3_PATH_STYLE",
		"RATE_LIMIT_ENABLED", "RATE_LIMIT_DEFAULT_LIMIT", "RATE_LIMIT_DEFAULT_WINDOW",
		"RATE_LIMIT_CLEANUP_INTERVAL", "RATE_LIMIT_WHITELIST", "RATE_LIMIT_BLACKLIST",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "http://localhost:8080", cfg.SiteURL)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, int64(10*1024*1024), cfg.UploadMaxBytes)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 168, cfg.JWT.ExpirationHours)
	assert.Equal(t, 12, cfg.Password.BcryptCost)
	assert.Equal(t, blob.DriverFilesystem, cfg.Blob.Driver)
	assert.Equal(t, "./public", cfg.Blob.Dir)
	assert.Equal(t, ratelimit.DefaultSettings(), cfg.RateLimit)
}

func TestLoad_RateLimit(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "50")
	t.Setenv("RATE_LIMIT_DEFAULT_WINDOW", "30s")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1,10.0.0.2")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 50, cfg.RateLimit.DefaultLimit)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.DefaultWindow)
	assert.Equal(t, "10.0.0.1,10.0.0.2", cfg.RateLimit.Whitelist)

	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "0")
	_, err = Load("")
	assert.Error(t, err)

	t.Setenv("RATE_LIMIT_ENABLED", "false")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://localhost/portfolio")
	t.Setenv("SITE_URL", "https://example.com/")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("ADMIN_USER", "admin")
	t.Setenv("BLOB_DRIVER", "s3")
	t.Setenv("BLOB_S3_BUCKET", "images")
	t.Setenv("BLOB_S3_PATH_STYLE", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "postgres://localhost/portfolio", cfg.DatabaseURL)
	assert.Equal(t, "https://example.com", cfg.SiteURL, "trailing slash trimmed")
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, "admin", cfg.Admin.Username)
	assert.Equal(t, blob.DriverS3, cfg.Blob.Driver)
	assert.Equal(t, "images", cfg.Blob.S3.Bucket)
	assert.True(t, cfg.Blob.S3.PathStyle)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7070")

	path := filepath.Join(t.TempDir(), "portfolio.yaml")
	content := "port: 3000\nadmin_user: owner\nlog_level: debug\nblob_dir: /srv/images\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Port, "environment wins over the file")
	assert.Equal(t, "owner", cfg.Admin.Username)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/srv/images", cfg.Blob.Dir)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing explicit file", func(t *testing.T) {
		clearEnv(t)
		_, err := Load("/nonexistent/portfolio.yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})

	t.Run("invalid bcrypt cost", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("BCRYPT_COST", "9")
		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bcrypt cost out of range")
	})

	t.Run("invalid port", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PORT", "70000")
		_, err := Load("")
		require.Error(t, err)
	})
}

func TestValidateServe(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DatabaseURL: "postgres://localhost/portfolio",
			Admin:       AdminConfig{Username: "admin", Password: "secret"},
			JWT:         JWTConfig{Secret: "0123456789abcdef", ExpirationHours: 168},
			Password:    PasswordConfig{BcryptCost: 10},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "hash only", mutate: func(c *Config) { c.Admin.Password = ""; c.Admin.PasswordHash = "$2a$10$x" }},
		{name: "no database", mutate: func(c *Config) { c.DatabaseURL = "" }, wantErr: "DATABASE_URL"},
		{name: "no admin user", mutate: func(c *Config) { c.Admin.Username = "" }, wantErr: "ADMIN_USER"},
		{name: "no admin password", mutate: func(c *Config) { c.Admin.Password = "" }, wantErr: "ADMIN_PASS"},
		{name: "no jwt secret", mutate: func(c *Config) { c.JWT.Secret = "" }, wantErr: "JWT_SECRET"},
		{name: "short jwt secret", mutate: func(c *Config) { c.JWT.Secret = "short" }, wantErr: "at least 16"},
		{name: "zero expiration", mutate: func(c *Config) { c.JWT.ExpirationHours = 0 }, wantErr: "JWT_EXPIRATION_HOURS"},
		{name: "s3 without bucket", mutate: func(c *Config) { c.Blob.Driver = blob.DriverS3 }, wantErr: "BLOB_S3_BUCKET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.ValidateServe()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAdminPasswordHash(t *testing.T) {
	cfg := &Config{
		Admin:    AdminConfig{Username: "admin", Password: "hunter2"},
		Password: PasswordConfig{BcryptCost: 10},
	}
	hash, err := cfg.AdminPasswordHash()
	require.NoError(t, err)
	assert.True(t, cfg.Password.VerifyPassword("hunter2", hash))

	cfg.Admin.PasswordHash = "$2a$10$precomputed"
	hash, err = cfg.AdminPasswordHash()
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$precomputed", hash)

	_, err = (&Config{}).AdminPasswordHash()
	assert.Error(t, err)
}
