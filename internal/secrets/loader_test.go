package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "key")
	if err := os.WriteFile(path, []byte("  s3cret\n"), 0o600); err != nil {
		t.Fatalf("writing key file: %v", err)
	}

	got, err := Load(Source{Name: "api key", File: path, Value: "ignored"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "s3cret" {
		t.Fatalf("expected trimmed file secret, got %q", got)
	}
}

func TestLoadFilePrecedenceErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	empty := filepath.Join(dir, "empty")
	if err := os.WriteFile(empty, []byte("   \n"), 0o600); err != nil {
		t.Fatalf("writing empty file: %v", err)
	}

	if _, err := Load(Source{Name: "api key", File: empty, Value: "fallback"}); err == nil {
		t.Fatal("expected error for empty secret file")
	}

	if _, err := Load(Source{Name: "api key", File: filepath.Join(dir, "missing")}); err == nil {
		t.Fatal("expected error for missing secret file")
	}
}

func TestLoadFromValue(t *testing.T) {
	got, err := Load(Source{Name: "api key", Value: " inline "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "inline" {
		t.Fatalf("expected inline secret, got %q", got)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SCHOLARSCOUT_TEST_KEY", "  from-env ")

	got, err := Load(Source{Name: "api key", Env: "SCHOLARSCOUT_TEST_KEY"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from-env" {
		t.Fatalf("expected env secret, got %q", got)
	}
}

func TestLoadNotConfigured(t *testing.T) {
	t.Setenv("SCHOLARSCOUT_UNSET_KEY", "")

	_, err := Load(Source{Name: "gemini api key", Env: "SCHOLARSCOUT_UNSET_KEY"})
	if err == nil {
		t.Fatal("expected error for unset env secret")
	}
	if !strings.Contains(err.Error(), "SCHOLARSCOUT_UNSET_KEY") {
		t.Fatalf("expected env name in error, got %q", err.Error())
	}

	_, err = Load(Source{})
	if err == nil {
		t.Fatal("expected error for empty source")
	}
	if !strings.Contains(err.Error(), "secret is not configured") {
		t.Fatalf("expected generic name in error, got %q", err.Error())
	}
}
