package ratelimit

import (
	"net/http"
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (a trailing "/" matches by prefix)
	Method string        // HTTP method, empty matches any
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Settings are the tunable values read from configuration (RATE_LIMIT_*).
type Settings struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       string // comma separated client IPs
	Blacklist       string
}

// DefaultSettings mirrors the defaults applied by the config package.
func DefaultSettings() Settings {
	return Settings{
		Enabled:         true,
		DefaultLimit:    600,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

// NewConfig builds a limiter configuration from settings and the default
// endpoint tiers.
func NewConfig(s Settings) *Config {
	if !s.Enabled {
		return &Config{Enabled: false}
	}
	return &Config{
		Enabled:         true,
		DefaultLimit:    s.DefaultLimit,
		DefaultWindow:   s.DefaultWindow,
		CleanupInterval: s.CleanupInterval,
		Whitelist:       parseIPList(s.Whitelist),
		Blacklist:       parseIPList(s.Blacklist),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the endpoint tiers. More specific prefixes
// come first because prefix matching takes the first hit.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Tier 1: credential guessing and heavy admin work
		{Path: "/api/auth/login", Method: http.MethodPost, Limit: 10, Window: 15 * time.Minute, Burst: 5},
		{Path: "/api/admin/repair/", Method: http.MethodPost, Limit: 10, Window: time.Hour, Burst: 2},
		{Path: "/api/admin/upload", Method: http.MethodPost, Limit: 60, Window: time.Hour, Burst: 10},

		// Tier 2: anonymous beacon, one per page view
		{Path: "/api/visitor", Method: http.MethodPost, Limit: 30, Window: time.Minute, Burst: 10},

		// Tier 3: admin writes
		{Path: "/api/admin/", Method: http.MethodPost, Limit: 100, Window: time.Minute, Burst: 20},
		{Path: "/api/admin/", Method: http.MethodPut, Limit: 100, Window: time.Minute, Burst: 20},
		{Path: "/api/admin/", Method: http.MethodPatch, Limit: 100, Window: time.Minute, Burst: 20},
		{Path: "/api/admin/", Method: http.MethodDelete, Limit: 100, Window: time.Minute, Burst: 20},

		// Reads use the default limit; /health and /metrics are unlimited (matcher)
	}
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
