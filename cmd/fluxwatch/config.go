// ABOUTME: Client configuration loaded from FLUXWATCH_* environment variables.
// ABOUTME: Enforces security constraint: remote servers require an auth token.
package main

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrRemoteWithoutToken = errors.New(
		"FLUXWATCH_SERVER_URL points at a remote host but FLUXWATCH_TOKEN is not set; refusing to connect without authentication",
	)
	ErrBadServerURL = errors.New("FLUXWATCH_SERVER_URL must be a ws:// or wss:// URL")
)

// clientConfig holds connection settings loaded from environment variables.
type clientConfig struct {
	ServerURL string // WebSocket endpoint (FLUXWATCH_SERVER_URL, default: ws://127.0.0.1:8000/ws)
	APIURL    string // REST base URL (FLUXWATCH_API_URL, default: derived from ServerURL)
	Token     string // Bearer token (FLUXWATCH_TOKEN, optional for loopback)
	CachePath string // Run cache database (FLUXWATCH_DB, default: ~/.fluxwatch/cache.db)
	Profile   string // Named watch profile (FLUXWATCH_PROFILE, optional)
}

// configFromEnv loads configuration from FLUXWATCH_* environment variables
// with loopback defaults.
func configFromEnv() (*clientConfig, error) {
	cfg := &clientConfig{
		ServerURL: envOrDefault("FLUXWATCH_SERVER_URL", "ws://127.0.0.1:8000/ws"),
		APIURL:    os.Getenv("FLUXWATCH_API_URL"),
		Token:     os.Getenv("FLUXWATCH_TOKEN"),
		CachePath: os.Getenv("FLUXWATCH_DB"),
		Profile:   os.Getenv("FLUXWATCH_PROFILE"),
	}

	u, err := url.Parse(cfg.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadServerURL, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("%w: got %q", ErrBadServerURL, u.Scheme)
	}

	if cfg.APIURL == "" {
		cfg.APIURL = deriveAPIURL(u)
	}

	if cfg.CachePath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = "/tmp"
		}
		cfg.CachePath = filepath.Join(homeDir, ".fluxwatch", "cache.db")
	}

	// Loopback servers may run without auth; anything else needs a token.
	if !isLoopbackHost(u.Hostname()) && cfg.Token == "" {
		return nil, fmt.Errorf("%w: FLUXWATCH_SERVER_URL=%s", ErrRemoteWithoutToken, cfg.ServerURL)
	}

	return cfg, nil
}

// deriveAPIURL maps the WebSocket endpoint to its REST origin: ws becomes
// http, wss becomes https, and the /ws path is dropped.
func deriveAPIURL(ws *url.URL) string {
	scheme := "http"
	if ws.Scheme == "wss" {
		scheme = "https"
	}
	return scheme + "://" + ws.Host
}

// isLoopbackHost reports whether the host is 127.0.0.0/8, ::1, or localhost.
func isLoopbackHost(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
