package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
storage:
  database_path: "test.db"
kinds:
  rack:
    - name
    - site
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Storage.DatabasePath == "" {
		t.Error("database_path should be set")
	}
	if len(cfg.Kinds["rack"]) != 2 {
		t.Errorf("unexpected kinds: %v", cfg.Kinds)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)

	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8080 {
		t.Errorf("unexpected server defaults: %+v", cfg.Server)
	}
	if cfg.Search.MaxWindow != 10000 {
		t.Errorf("MaxWindow default = %d", cfg.Search.MaxWindow)
	}
	if cfg.Search.ReindexBatchSize == 0 || cfg.Search.ReindexLogEvery == 0 {
		t.Error("reindex defaults should be set")
	}
	if len(cfg.Kinds) == 0 {
		t.Error("default kinds should be registered")
	}
	if _, ok := cfg.Kinds["device"]; !ok {
		t.Error("device kind should be a default")
	}
	if len(cfg.Import.Extensions) == 0 {
		t.Error("import extensions should default")
	}
}

func TestApplyDefaults_keepsExplicitKinds(t *testing.T) {
	cfg := Config{Kinds: map[string][]string{"rack": {"name"}}}
	ApplyDefaults(&cfg)
	if _, ok := cfg.Kinds["device"]; ok {
		t.Error("explicit kinds should not be merged with defaults")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
storage:
  database_path: "./data/records.db"
  index_path: "./data/bleve"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, "data/records.db")
	if cfg.Storage.DatabasePath != want {
		t.Errorf("DatabasePath = %s, want %s", cfg.Storage.DatabasePath, want)
	}
	if cfg.Storage.IndexPath != filepath.Join(dir, "data/bleve") {
		t.Errorf("IndexPath = %s", cfg.Storage.IndexPath)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	cfg := &Config{Debug: true}
	ApplyDefaults(cfg)
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !loaded.Debug || loaded.Server.Port != cfg.Server.Port {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}
