// ABOUTME: Tests for YAML watch profile loading and config overlay precedence.
// ABOUTME: Environment variables always win over profile values.
package main

import (
	"os"
	"path/filepath"
	"testing"
)

const testProfiles = `
profiles:
  prod:
    server_url: wss://flux.example.com/ws
    token_env: PROD_FLUX_TOKEN
    sources: [financial, news]
    wide: 20
    depth: deep
    concurrency: 4
  minimal:
    server_url: ws://127.0.0.1:9000/ws
`

func writeProfiles(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	if err := os.WriteFile(path, []byte(testProfiles), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadProfile(t *testing.T) {
	path := writeProfiles(t)

	p, err := loadProfile(path, "prod")
	if err != nil {
		t.Fatalf("loadProfile: %v", err)
	}
	if p.ServerURL != "wss://flux.example.com/ws" || p.Wide != 20 || p.Depth != "deep" {
		t.Errorf("profile = %+v", p)
	}
	if len(p.Sources) != 2 || p.Sources[1] != "news" {
		t.Errorf("sources = %v", p.Sources)
	}
}

func TestLoadProfileUnknownName(t *testing.T) {
	path := writeProfiles(t)
	if _, err := loadProfile(path, "staging"); err == nil {
		t.Error("expected error for unknown profile")
	}
}

func TestLoadProfileMissingFile(t *testing.T) {
	if _, err := loadProfile(filepath.Join(t.TempDir(), "none.yaml"), "prod"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestApplyProfilePrecedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("PROD_FLUX_TOKEN", "from-profile-env")

	cfg := &clientConfig{ServerURL: "ws://127.0.0.1:8000/ws"}
	p := &profile{ServerURL: "wss://flux.example.com/ws", TokenEnv: "PROD_FLUX_TOKEN"}

	applyProfile(cfg, p)
	if cfg.ServerURL != "wss://flux.example.com/ws" {
		t.Errorf("ServerURL = %q, want profile value", cfg.ServerURL)
	}
	if cfg.Token != "from-profile-env" {
		t.Errorf("Token = %q", cfg.Token)
	}

	// An explicit environment variable beats the profile.
	t.Setenv("FLUXWATCH_SERVER_URL", "ws://10.1.1.1:8000/ws")
	cfg = &clientConfig{ServerURL: "ws://10.1.1.1:8000/ws", Token: "explicit"}
	applyProfile(cfg, p)
	if cfg.ServerURL != "ws://10.1.1.1:8000/ws" {
		t.Errorf("ServerURL = %q, env must win", cfg.ServerURL)
	}
	if cfg.Token != "explicit" {
		t.Errorf("Token = %q, explicit must win", cfg.Token)
	}
}

func TestRunRequestFromProfile(t *testing.T) {
	req := runRequestFromProfile(nil)
	if req.Wide != 10 || req.Depth != "auto" {
		t.Errorf("defaults = %+v", req)
	}

	req = runRequestFromProfile(&profile{Sources: []string{"news"}, Concurrency: 3})
	if len(req.Sources) != 1 || req.Sources[0] != "news" {
		t.Errorf("sources = %v", req.Sources)
	}
	if req.Concurrency != 3 || req.Wide != 10 {
		t.Errorf("req = %+v", req)
	}
}
