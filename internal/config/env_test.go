package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTypedGetters(t *testing.T) {
	t.Setenv("MARBLES_TEST_FLOAT", "2.5")
	t.Setenv("MARBLES_TEST_INT", "42")
	t.Setenv("MARBLES_TEST_BOOL", "true")
	t.Setenv("MARBLES_TEST_BAD", "nope")

	if got := GetEnvFloat("MARBLES_TEST_FLOAT", 1); got != 2.5 {
		t.Fatalf("GetEnvFloat = %v", got)
	}
	if got := GetEnvInt("MARBLES_TEST_INT", 1); got != 42 {
		t.Fatalf("GetEnvInt = %v", got)
	}
	if got := GetEnvBool("MARBLES_TEST_BOOL", false); !got {
		t.Fatalf("GetEnvBool = %v", got)
	}
	if got := GetEnvFloat("MARBLES_TEST_BAD", 7); got != 7 {
		t.Fatalf("malformed float should fall back, got %v", got)
	}
	if got := GetEnvInt("MARBLES_TEST_UNSET", 9); got != 9 {
		t.Fatalf("unset int should fall back, got %v", got)
	}
	if got := GetEnv("MARBLES_TEST_UNSET", "x"); got != "x" {
		t.Fatalf("GetEnv fallback = %q", got)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("MARBLES_DOTENV_KEY=from-file\nMARBLES_DOTENV_SET=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("MARBLES_DOTENV_SET", "from-env")
	t.Cleanup(func() { os.Unsetenv("MARBLES_DOTENV_KEY") })

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("MARBLES_DOTENV_KEY"); got != "from-file" {
		t.Fatalf("key from file = %q", got)
	}
	if got := os.Getenv("MARBLES_DOTENV_SET"); got != "from-env" {
		t.Fatalf("existing env should win, got %q", got)
	}
}
