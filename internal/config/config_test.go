package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pinyinpal.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Addr != ":8090" {
		t.Errorf("unexpected default addr: %q", cfg.Server.Addr)
	}
	if cfg.Store.Backend != "sqlite" {
		t.Errorf("unexpected default store backend: %q", cfg.Store.Backend)
	}
	if cfg.Source.Provider != "edge" {
		t.Errorf("unexpected default source provider: %q", cfg.Source.Provider)
	}
	if cfg.Client.MinPlayMs != 500 {
		t.Errorf("unexpected default min_play_ms: %d", cfg.Client.MinPlayMs)
	}
	if cfg.Client.Playback != "auto" {
		t.Errorf("unexpected default playback: %q", cfg.Client.Playback)
	}
}

func TestLoad_Values(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  addr: ":9000"
store:
  backend: blob
  blob_dir: /tmp/audio
source:
  provider: proxy
  base_url: https://example.com/audio
client:
  min_play_ms: 800
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("addr not loaded: %q", cfg.Server.Addr)
	}
	if cfg.Store.Backend != "blob" || cfg.Store.BlobDir != "/tmp/audio" {
		t.Errorf("store not loaded: %+v", cfg.Store)
	}
	if cfg.Source.Provider != "proxy" || cfg.Source.BaseURL != "https://example.com/audio" {
		t.Errorf("source not loaded: %+v", cfg.Source)
	}
	if cfg.Client.MinPlayMs != 800 {
		t.Errorf("min_play_ms not loaded: %d", cfg.Client.MinPlayMs)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("PINYINPAL_TEST_SECRET", "sk-123")
	cfg, err := Load(writeConfig(t, `
source:
  tencent:
    secret_key: ${PINYINPAL_TEST_SECRET}
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Source.Tencent.SecretKey != "sk-123" {
		t.Errorf("env var not expanded: %q", cfg.Source.Tencent.SecretKey)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
