// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the dimensions-gateway service:
// configuration for the HTTP server, the Dimensions client, and the query history
// store, plus the wire shapes of the dashboard endpoints.
package types

import (
	"fmt"
	"time"
)

// ServerConfig holds settings for the caller-facing HTTP server.
type ServerConfig struct {
	// Host is the listen address (default "127.0.0.1").
	Host string `json:"host" yaml:"host"`

	// Port is the listen port (default 8080).
	Port int `json:"port" yaml:"port"`

	// DashboardDir is the directory dashboard.html is served from
	// (default: the working directory).
	DashboardDir string `json:"dashboard_dir" yaml:"dashboard_dir"`

	// ReadTimeout bounds reading an inbound request (default 15s).
	ReadTimeout time.Duration `json:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout bounds writing a response. It must exceed the upstream
	// query timeout or proxied responses are cut off (default 60s).
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`

	// Debug lowers the log level to debug.
	Debug bool `json:"debug" yaml:"debug"`
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	host := c.Host
	if host == "" {
		host = "127.0.0.1"
	}
	port := c.Port
	if port == 0 {
		port = 8080
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// DimensionsConfig holds settings for the upstream Dimensions API client.
type DimensionsConfig struct {
	// AuthURL is the authentication endpoint (default: the production URL).
	AuthURL string `json:"auth_url" yaml:"auth_url"`

	// DSLURL is the query endpoint (default: the production URL).
	DSLURL string `json:"dsl_url" yaml:"dsl_url"`

	// APIKey authenticates against AuthURL. Required for real queries; comes
	// from the environment or a secrets file, never from source.
	APIKey string `json:"-" yaml:"-"`

	// QueryTimeout bounds a single DSL query call (default 30s).
	QueryTimeout time.Duration `json:"query_timeout" yaml:"query_timeout"`

	// AuthTimeout bounds a single authentication call (default 30s).
	AuthTimeout time.Duration `json:"auth_timeout" yaml:"auth_timeout"`

	// TokenTTL is the token lifetime assumed when the auth response carries
	// no expires_in field (default 1h).
	TokenTTL time.Duration `json:"token_ttl" yaml:"token_ttl"`

	// TokenBuffer is subtracted from the token lifetime so a token is
	// refreshed before the server-side expiry (default 1m).
	TokenBuffer time.Duration `json:"token_buffer" yaml:"token_buffer"`
}

// HistoryConfig holds settings for the query history store.
type HistoryConfig struct {
	// Path is the SQLite database file. Empty disables history.
	Path string `json:"path" yaml:"path"`

	// DefaultLimit is the number of entries /api/history returns when the
	// caller does not pass a limit (default 50).
	DefaultLimit int `json:"default_limit" yaml:"default_limit"`
}

// Config groups all gateway configuration.
type Config struct {
	Server     ServerConfig     `json:"server" yaml:"server"`
	Dimensions DimensionsConfig `json:"dimensions" yaml:"dimensions"`
	History    HistoryConfig    `json:"history" yaml:"history"`
}
