package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/five82/rolodex/internal/contacts"
)

func writeConfig(t *testing.T, dir string) (configPath, dbPath string) {
	t.Helper()
	dbPath = filepath.Join(dir, "data", "contacts.db")
	configPath = filepath.Join(dir, "config.toml")
	body := fmt.Sprintf("database = %q\nlog_file = %q\n\n[images]\ndisk_cache_dir = \"\"\n",
		dbPath, filepath.Join(dir, "rolodex.log"))
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath, dbPath
}

func TestRun_MissingDatabaseIsFatal(t *testing.T) {
	dir := t.TempDir()
	configPath, _ := writeConfig(t, dir)

	err := Run(context.Background(), Options{
		ConfigPath: configPath,
		PrefsPath:  filepath.Join(dir, "prefs.toml"),
	})
	if !errors.Is(err, contacts.ErrUnavailable) {
		t.Fatalf("Run error = %v, want ErrUnavailable", err)
	}
}

func TestRun_BadConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(configPath, []byte("database = ["), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := Run(context.Background(), Options{ConfigPath: configPath}); err == nil {
		t.Fatal("Run with malformed config returned nil error")
	}
}

func TestImport(t *testing.T) {
	dir := t.TempDir()
	configPath, dbPath := writeConfig(t, dir)

	doc := filepath.Join(dir, "people.yaml")
	yaml := "contacts:\n  - name: Carla Diaz\n  - name: Ana Lima\n    phone: \"555-0100\"\n"
	if err := os.WriteFile(doc, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	ctx := context.Background()
	n, err := Import(ctx, configPath, doc)
	if err != nil {
		t.Fatalf("Import returned error: %v", err)
	}
	if n != 2 {
		t.Fatalf("Import = %d, want 2", n)
	}

	store, err := contacts.Open(ctx, contacts.Config{Path: dbPath})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer store.Close()
	records, err := store.Query(ctx, "")
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(records) != 2 || records[0].DisplayName != "Ana Lima" {
		t.Fatalf("records = %+v, want Ana Lima first of 2", records)
	}
}

func TestImport_MissingFile(t *testing.T) {
	dir := t.TempDir()
	configPath, _ := writeConfig(t, dir)
	if _, err := Import(context.Background(), configPath, filepath.Join(dir, "nope.yaml")); err == nil {
		t.Fatal("Import of a missing file returned nil error")
	}
}
