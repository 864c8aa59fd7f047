package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	wantDB, err := expandPath(defaultDatabase)
	if err != nil {
		t.Fatalf("expandPath(defaultDatabase) returned error: %v", err)
	}
	if cfg.Database != wantDB {
		t.Fatalf("Database = %q, want %q", cfg.Database, wantDB)
	}
	if !strings.HasPrefix(cfg.LogFile, home) {
		t.Fatalf("LogFile = %q, want it under HOME %q", cfg.LogFile, home)
	}
	if cfg.LogLevel != defaultLogLevel {
		t.Fatalf("LogLevel = %q, want %q", cfg.LogLevel, defaultLogLevel)
	}
	if cfg.PollEvery != defaultPollSeconds*time.Second {
		t.Fatalf("PollEvery = %v, want %v", cfg.PollEvery, defaultPollSeconds*time.Second)
	}
	if cfg.Images.Workers != defaultWorkers {
		t.Fatalf("Images.Workers = %d, want %d", cfg.Images.Workers, defaultWorkers)
	}
	if !strings.HasPrefix(cfg.Images.DiskCacheDir, home) {
		t.Fatalf("Images.DiskCacheDir = %q, want it under HOME %q", cfg.Images.DiskCacheDir, home)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
database = "  ~/people.db  "
log_level = " DEBUG "
alphabet = "ABC"
two_pane_min_width = 120
poll_seconds = 3

[images]
workers = 2
thumbnail_size = 24
memory_budget_bytes = 1048576
disk_cache_dir = "~/thumbs"
miss_ttl_seconds = 5
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Database != filepath.Join(home, "people.db") {
		t.Fatalf("Database = %q, want %q", cfg.Database, filepath.Join(home, "people.db"))
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.Alphabet != "ABC" || cfg.TwoPaneMinWidth != 120 || cfg.PollEvery != 3*time.Second {
		t.Fatalf("cfg = %+v, want alphabet ABC, width 120, poll 3s", cfg)
	}
	want := Images{
		Workers:           2,
		ThumbnailSize:     24,
		MemoryBudgetBytes: 1 << 20,
		DiskCacheDir:      filepath.Join(home, "thumbs"),
		MissTTL:           5 * time.Second,
	}
	if cfg.Images != want {
		t.Fatalf("Images = %+v, want %+v", cfg.Images, want)
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
database = "   "
log_level = ""
poll_seconds = 0
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	def := Default()
	if cfg.Database != def.Database {
		t.Fatalf("Database = %q, want %q", cfg.Database, def.Database)
	}
	if cfg.LogLevel != defaultLogLevel || cfg.PollEvery != def.PollEvery {
		t.Fatalf("LogLevel, PollEvery = %q, %v, want defaults", cfg.LogLevel, cfg.PollEvery)
	}
	if cfg.Images.DiskCacheDir != def.Images.DiskCacheDir {
		t.Fatalf("Images.DiskCacheDir = %q, want default %q", cfg.Images.DiskCacheDir, def.Images.DiskCacheDir)
	}
}

func TestLoad_ExplicitEmptyDiskCacheDisablesIt(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[images]\ndisk_cache_dir = \"\"\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Images.DiskCacheDir != "" {
		t.Fatalf("Images.DiskCacheDir = %q, want empty", cfg.Images.DiskCacheDir)
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`database = [`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestLoad_UnknownLogLevelFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`log_level = "chatty"`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "log_level") {
		t.Fatalf("Load error = %v, want log_level error", err)
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}
