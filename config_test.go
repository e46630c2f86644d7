package retitle

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestReadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := ReadConfig("")
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if cfg.Parser != "pdfcpu" {
		t.Errorf("Parser = %q", cfg.Parser)
	}
	if cfg.Web.Addr != ":8080" || cfg.Web.DownloadTTL != time.Hour || cfg.Web.MaxUploadBytes != 64<<20 {
		t.Errorf("Web = %+v", cfg.Web)
	}
	if cfg.Watch.Settle != 500*time.Millisecond {
		t.Errorf("Watch = %+v", cfg.Watch)
	}
	if cfg.Dropbox.Enabled() || cfg.Notion.Enabled() {
		t.Errorf("integrations enabled by default: %+v %+v", cfg.Dropbox, cfg.Notion)
	}
}

func TestReadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "retitle.yaml")
	content := `config:
  parser: glyphs
  log:
    level: debug
  web:
    addr: ":9090"
    downloadTTL: 5m
  dropbox:
    token: dbx-token
    rootFolder: /Papers
    outFolder: /Papers/Renamed
    appSecret: app-secret
  notion:
    token: secret
    databaseID: abc123
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RETITLE_WEB_ADDR", ":7070")

	cfg, err := ReadConfig(path)
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if cfg.Parser != "glyphs" || cfg.Log.Level != "debug" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Web.Addr != ":7070" {
		t.Errorf("env override ignored: addr = %q", cfg.Web.Addr)
	}
	if cfg.Web.DownloadTTL != 5*time.Minute {
		t.Errorf("DownloadTTL = %v", cfg.Web.DownloadTTL)
	}
	if !cfg.Dropbox.Enabled() || cfg.Dropbox.OutFolder != "/Papers/Renamed" || cfg.Dropbox.AppSecret != "app-secret" {
		t.Errorf("Dropbox = %+v", cfg.Dropbox)
	}
	if !cfg.Notion.Enabled() || cfg.Notion.DatabaseID != "abc123" {
		t.Errorf("Notion = %+v", cfg.Notion)
	}
}

func TestReadConfigBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("config: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadConfig(path); err == nil {
		t.Error("expected error for malformed config")
	}
}
