// ABOUTME: Named watch profiles loaded from a YAML file in the fluxwatch home directory.
// ABOUTME: A profile bundles a server endpoint with default run parameters.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/signalflux/fluxwatch/api"
)

// profile is one named entry in profiles.yaml.
type profile struct {
	ServerURL   string   `yaml:"server_url,omitempty"`
	APIURL      string   `yaml:"api_url,omitempty"`
	TokenEnv    string   `yaml:"token_env,omitempty"`
	Sources     []string `yaml:"sources,omitempty"`
	Wide        int      `yaml:"wide,omitempty"`
	Depth       string   `yaml:"depth,omitempty"`
	Concurrency int      `yaml:"concurrency,omitempty"`
}

// profilesFile is the on-disk document shape.
type profilesFile struct {
	Profiles map[string]profile `yaml:"profiles"`
}

// defaultProfilesPath returns ~/.fluxwatch/profiles.yaml.
func defaultProfilesPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "/tmp"
	}
	return filepath.Join(homeDir, ".fluxwatch", "profiles.yaml")
}

// loadProfile reads the named profile. A missing file is an error only when a
// profile was explicitly requested.
func loadProfile(path, name string) (*profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}

	var doc profilesFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse profiles: %w", err)
	}

	p, ok := doc.Profiles[name]
	if !ok {
		return nil, fmt.Errorf("profile %q not found in %s", name, path)
	}
	return &p, nil
}

// applyProfile overlays profile settings onto the environment-derived config.
// Explicit environment variables win over profile values.
func applyProfile(cfg *clientConfig, p *profile) {
	if p.ServerURL != "" && os.Getenv("FLUXWATCH_SERVER_URL") == "" {
		cfg.ServerURL = p.ServerURL
	}
	if p.APIURL != "" && os.Getenv("FLUXWATCH_API_URL") == "" {
		cfg.APIURL = p.APIURL
	}
	if p.TokenEnv != "" && cfg.Token == "" {
		cfg.Token = os.Getenv(p.TokenEnv)
	}
}

// runRequestFromProfile builds run parameters starting from the defaults and
// overriding with any profile-specified values.
func runRequestFromProfile(p *profile) api.RunRequest {
	req := api.DefaultRunRequest()
	if p == nil {
		return req
	}
	if len(p.Sources) > 0 {
		req.Sources = p.Sources
	}
	if p.Wide > 0 {
		req.Wide = p.Wide
	}
	if p.Depth != "" {
		req.Depth = p.Depth
	}
	if p.Concurrency > 0 {
		req.Concurrency = p.Concurrency
	}
	return req
}
