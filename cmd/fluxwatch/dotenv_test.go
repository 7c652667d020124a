// ABOUTME: Tests for .env loading: parsing, quoting, and no-clobber semantics.
// ABOUTME: Missing files must be silently ignored.
package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := `# comment
FLUXTEST_PLAIN=value
FLUXTEST_QUOTED="quoted value"
FLUXTEST_SINGLE='single'
export FLUXTEST_EXPORTED=yes
FLUXTEST_EQUALS=a=b=c
not-a-pair
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{
		"FLUXTEST_PLAIN", "FLUXTEST_QUOTED", "FLUXTEST_SINGLE",
		"FLUXTEST_EXPORTED", "FLUXTEST_EQUALS", "FLUXTEST_EXISTING",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv("FLUXTEST_EXISTING", "original")

	loadDotEnv(path)

	tests := map[string]string{
		"FLUXTEST_PLAIN":    "value",
		"FLUXTEST_QUOTED":   "quoted value",
		"FLUXTEST_SINGLE":   "single",
		"FLUXTEST_EXPORTED": "yes",
		"FLUXTEST_EQUALS":   "a=b=c",
		"FLUXTEST_EXISTING": "original",
	}
	for key, want := range tests {
		if got := os.Getenv(key); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	// Must not panic or error.
	loadDotEnv(filepath.Join(t.TempDir(), "nope.env"))
}
