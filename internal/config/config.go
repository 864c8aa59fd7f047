package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures rolodex runtime settings.
type Config struct {
	Database        string
	LogFile         string
	LogLevel        string
	Alphabet        string
	TwoPaneMinWidth int
	PollEvery       time.Duration
	Images          Images
}

// Images configures thumbnail loading and caching.
type Images struct {
	Workers           int
	ThumbnailSize     int
	MemoryBudgetBytes int
	DiskCacheDir      string // empty disables the disk level
	MissTTL           time.Duration
}

const (
	defaultConfigPath        = "~/.config/rolodex/config.toml"
	defaultDatabase          = "~/.local/share/rolodex/contacts.db"
	defaultLogFile           = "~/.local/state/rolodex/rolodex.log"
	defaultLogLevel          = "info"
	defaultAlphabet          = " ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	defaultTwoPaneMinWidth   = 100
	defaultPollSeconds       = 10
	defaultWorkers           = 3
	defaultThumbnailSize     = 16
	defaultMemoryBudgetBytes = 4 << 20
	defaultDiskCacheDir      = "~/.cache/rolodex/thumbs"
	defaultMissTTLSeconds    = 30
)

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return defaultConfigPath
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Database:        mustExpand(defaultDatabase),
		LogFile:         mustExpand(defaultLogFile),
		LogLevel:        defaultLogLevel,
		Alphabet:        defaultAlphabet,
		TwoPaneMinWidth: defaultTwoPaneMinWidth,
		PollEvery:       defaultPollSeconds * time.Second,
		Images: Images{
			Workers:           defaultWorkers,
			ThumbnailSize:     defaultThumbnailSize,
			MemoryBudgetBytes: defaultMemoryBudgetBytes,
			DiskCacheDir:      mustExpand(defaultDiskCacheDir),
			MissTTL:           defaultMissTTLSeconds * time.Second,
		},
	}
}

// Load locates and parses the rolodex config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		Database        string `toml:"database"`
		LogFile         string `toml:"log_file"`
		LogLevel        string `toml:"log_level"`
		Alphabet        string `toml:"alphabet"`
		TwoPaneMinWidth int    `toml:"two_pane_min_width"`
		PollSeconds     int    `toml:"poll_seconds"`
		Images          struct {
			Workers           int     `toml:"workers"`
			ThumbnailSize     int     `toml:"thumbnail_size"`
			MemoryBudgetBytes int     `toml:"memory_budget_bytes"`
			DiskCacheDir      *string `toml:"disk_cache_dir"`
			MissTTLSeconds    int     `toml:"miss_ttl_seconds"`
		} `toml:"images"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.Database); v != "" {
		cfg.Database = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.ToLower(strings.TrimSpace(raw.LogLevel)); v != "" {
		switch v {
		case "debug", "info", "warn", "error":
			cfg.LogLevel = v
		default:
			return Config{}, fmt.Errorf("parse config: unknown log_level %q", raw.LogLevel)
		}
	}
	if raw.Alphabet != "" {
		cfg.Alphabet = raw.Alphabet
	}
	if raw.TwoPaneMinWidth > 0 {
		cfg.TwoPaneMinWidth = raw.TwoPaneMinWidth
	}
	if raw.PollSeconds > 0 {
		cfg.PollEvery = time.Duration(raw.PollSeconds) * time.Second
	}

	img := raw.Images
	if img.Workers > 0 {
		cfg.Images.Workers = img.Workers
	}
	if img.ThumbnailSize > 0 {
		cfg.Images.ThumbnailSize = img.ThumbnailSize
	}
	if img.MemoryBudgetBytes > 0 {
		cfg.Images.MemoryBudgetBytes = img.MemoryBudgetBytes
	}
	if img.DiskCacheDir != nil {
		// An explicit empty string turns the disk level off.
		if v := strings.TrimSpace(*img.DiskCacheDir); v != "" {
			cfg.Images.DiskCacheDir = mustExpand(v)
		} else {
			cfg.Images.DiskCacheDir = ""
		}
	}
	if img.MissTTLSeconds > 0 {
		cfg.Images.MissTTL = time.Duration(img.MissTTLSeconds) * time.Second
	}

	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
