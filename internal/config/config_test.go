package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 0},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_NegativeRate(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{Port: 8080},
		RateLimit: RateLimitConfig{RequestsPerSecond: -1},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for negative requests_per_second")
	}
}

func TestValidate_PageSizeOrdering(t *testing.T) {
	cfg := Config{
		HTTP:   HTTPConfig{Port: 8080},
		Paging: PagingConfig{DefaultPageSize: 50, MaxPageSize: 10},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error when max_page_size < default_page_size")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.RateLimit.Burst != 3 {
		t.Errorf("expected Burst=3, got %d", cfg.RateLimit.Burst)
	}
	if cfg.RateLimit.WindowSec != 60 {
		t.Errorf("expected WindowSec=60, got %d", cfg.RateLimit.WindowSec)
	}
	if cfg.Paging.DefaultPageSize != 20 {
		t.Errorf("expected DefaultPageSize=20, got %d", cfg.Paging.DefaultPageSize)
	}
	if cfg.Paging.MaxPageSize != 100 {
		t.Errorf("expected MaxPageSize=100, got %d", cfg.Paging.MaxPageSize)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		RateLimit: RateLimitConfig{Burst: 10, WindowSec: 30},
		Paging:    PagingConfig{DefaultPageSize: 50, MaxPageSize: 500},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.RateLimit.Burst != 10 {
		t.Errorf("expected Burst=10, got %d", cfg.RateLimit.Burst)
	}
	if cfg.Paging.DefaultPageSize != 50 {
		t.Errorf("expected DefaultPageSize=50, got %d", cfg.Paging.DefaultPageSize)
	}
}

func TestExpandEnvVars(t *testing.T) {
	os.Setenv("QUILL_TEST_PORT", "9090")
	defer os.Unsetenv("QUILL_TEST_PORT")

	in := []byte("port: ${QUILL_TEST_PORT}\nburst: ${QUILL_TEST_MISSING:-7}\n")
	out := string(expandEnvVars(in))

	want := "port: 9090\nburst: 7\n"
	if out != want {
		t.Errorf("unexpected expansion:\ngot:  %q\nwant: %q", out, want)
	}
}

func TestLoad_FromConfigDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	yaml := `
http:
  port: 8088
rate_limit:
  requests_per_second: 5
paging:
  default_page_size: 10
`
	if err := os.WriteFile(filepath.Join(dir, "config", "test.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 8088 {
		t.Errorf("expected port 8088, got %d", cfg.HTTP.Port)
	}
	if cfg.RateLimit.RequestsPerSecond != 5 {
		t.Errorf("expected rps 5, got %f", cfg.RateLimit.RequestsPerSecond)
	}
	// defaults applied on top of the loaded values
	if cfg.Paging.MaxPageSize != 100 {
		t.Errorf("expected MaxPageSize=100, got %d", cfg.Paging.MaxPageSize)
	}
}
