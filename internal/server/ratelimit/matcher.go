package ratelimit

import (
	"net/http"
	"strings"
)

// unlimited marks probes scraped by infrastructure
var unlimited = EndpointConfig{}

// MatchEndpoint matches a request path and method to an endpoint configuration.
// Returns the matching EndpointConfig or nil if no match is found.
// An exact path match wins over a prefix match ("/api/admin/" matches
// "/api/admin/projects/{id}").
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if method == http.MethodGet && (path == "/health" || path == "/metrics") {
		return &unlimited
	}

	for i := range configs {
		config := &configs[i]
		if config.Path == path && methodMatches(config.Method, method) {
			return config
		}
	}

	for i := range configs {
		config := &configs[i]
		if strings.HasSuffix(config.Path, "/") && strings.HasPrefix(path, config.Path) &&
			methodMatches(config.Method, method) {
			return config
		}
	}

	return nil
}

func methodMatches(want, got string) bool {
	return want == "" || want == got
}
