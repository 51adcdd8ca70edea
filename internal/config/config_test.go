package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{HTTP: HTTPConfig{Port: 0}}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_BadPattern(t *testing.T) {
	cfg := Config{
		HTTP:  HTTPConfig{Port: 8080},
		Store: StoreConfig{Pattern: "data/[.parquet"},
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for malformed glob")
	}
}

func TestValidate_PageSizeTooLarge(t *testing.T) {
	cfg := Config{
		HTTP:   HTTPConfig{Port: 8080},
		Browse: BrowseConfig{PageSize: 5000},
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for oversized page")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Store.Pattern != "data/*.parquet" {
		t.Errorf("expected Pattern='data/*.parquet', got %q", cfg.Store.Pattern)
	}
	if cfg.Store.ScanConcurrency != 4 {
		t.Errorf("expected ScanConcurrency=4, got %d", cfg.Store.ScanConcurrency)
	}
	if cfg.Browse.PageSize != 50 {
		t.Errorf("expected PageSize=50, got %d", cfg.Browse.PageSize)
	}
	if cfg.Browse.IndexTTL() != time.Hour {
		t.Errorf("expected IndexTTL=1h, got %v", cfg.Browse.IndexTTL())
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:   HTTPConfig{ReadTimeoutSec: 30},
		Store:  StoreConfig{Pattern: "/srv/narou/*.parquet", ScanConcurrency: 1},
		Browse: BrowseConfig{PageSize: 20, IndexTTLSec: 60},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Store.Pattern != "/srv/narou/*.parquet" || cfg.Store.ScanConcurrency != 1 {
		t.Errorf("store overridden: %+v", cfg.Store)
	}
	if cfg.Browse.PageSize != 20 || cfg.Browse.IndexTTL() != time.Minute {
		t.Errorf("browse overridden: %+v", cfg.Browse)
	}
}

func TestLoadFile_ExpandsEnv(t *testing.T) {
	t.Setenv("NOVELDEX_TEST_PORT", "9090")
	path := filepath.Join(t.TempDir(), "test.yaml")
	yml := `
http:
  port: ${NOVELDEX_TEST_PORT}
store:
  pattern: ${NOVELDEX_TEST_UNSET:-corpus/*.parquet}
browse:
  page_size: 25
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
	}
	if cfg.Store.Pattern != "corpus/*.parquet" {
		t.Errorf("expected default pattern expansion, got %q", cfg.Store.Pattern)
	}
	if cfg.Browse.PageSize != 25 || cfg.Browse.IndexTTLSec != 3600 {
		t.Errorf("unexpected browse config %+v", cfg.Browse)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
