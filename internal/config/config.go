package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Storage selects the persistence backend.
type Storage string

const (
	StorageFile   Storage = "file"
	StorageSQLite Storage = "sqlite"
	StorageMemory Storage = "memory"
)

func (s Storage) valid() bool {
	switch s {
	case StorageFile, StorageSQLite, StorageMemory:
		return true
	}
	return false
}

// ParseStorage normalizes a backend name the way the config file does,
// ignoring case and surrounding space.
func ParseStorage(name string) (Storage, error) {
	s := Storage(strings.ToLower(strings.TrimSpace(name)))
	if !s.valid() {
		return "", fmt.Errorf("unknown storage backend %q", name)
	}
	return s, nil
}

// Config captures everything flatmatch reads at startup.
type Config struct {
	DataDir     string
	Storage     Storage
	SeedURL     string
	ReviewsURL  string
	ManifestDir string
	ManifestURL string
	// ManifestRate caps manifest requests per second; zero means unpaced.
	ManifestRate float64
	FlushDelay   time.Duration
	LogLevel     slog.Level
}

const (
	defaultConfigPath   = "~/.config/flatmatch/config.toml"
	defaultDataDir      = "~/.local/share/flatmatch"
	defaultEnvFile      = ".env"
	defaultFlushDelay   = 200 * time.Millisecond
	defaultManifestRate = 4
	envPrefix           = "FLATMATCH_"
)

// Default returns the configuration used when nothing is configured.
func Default() Config {
	return Config{
		DataDir:      mustExpand(defaultDataDir),
		Storage:      StorageFile,
		ManifestRate: defaultManifestRate,
		FlushDelay:   defaultFlushDelay,
		LogLevel:     slog.LevelInfo,
	}
}

type fileConfig struct {
	DataDir      string   `toml:"data_dir"`
	Storage      string   `toml:"storage"`
	SeedURL      string   `toml:"seed_url"`
	ReviewsURL   string   `toml:"reviews_url"`
	ManifestDir  string   `toml:"manifest_dir"`
	ManifestURL  string   `toml:"manifest_url"`
	ManifestRate *float64 `toml:"manifest_rate"`
	FlushDelayMS *int     `toml:"flush_delay_ms"`
	LogLevel     string   `toml:"log_level"`
}

// Load reads the TOML config at path (or the default location), then
// applies overrides from envFiles (default ".env") and finally from
// FLATMATCH_* environment variables. A missing config or env file is not
// an error; unparsable TOML is.
func Load(path string, envFiles ...string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	var raw fileConfig
	file, err := os.Open(resolved)
	switch {
	case err == nil:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	dotenv, err := readEnvFiles(envFiles)
	if err != nil {
		return Config{}, err
	}
	lookup := func(name string) (string, bool) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			return v, true
		}
		v, ok := dotenv[envPrefix+name]
		return v, ok
	}
	overlay(&raw, lookup)

	return raw.resolve(), nil
}

// readEnvFiles merges the given dotenv files; earlier files win, matching
// godotenv.Load.
func readEnvFiles(files []string) (map[string]string, error) {
	if len(files) == 0 {
		files = []string{defaultEnvFile}
	}
	out := make(map[string]string)
	for _, f := range files {
		vals, err := godotenv.Read(f)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read env file %s: %w", f, err)
		}
		for k, v := range vals {
			if _, seen := out[k]; !seen {
				out[k] = v
			}
		}
	}
	return out, nil
}

func overlay(raw *fileConfig, lookup func(string) (string, bool)) {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}
	str("DATA_DIR", &raw.DataDir)
	str("STORAGE", &raw.Storage)
	str("SEED_URL", &raw.SeedURL)
	str("REVIEWS_URL", &raw.ReviewsURL)
	str("MANIFEST_DIR", &raw.ManifestDir)
	str("MANIFEST_URL", &raw.ManifestURL)
	str("LOG_LEVEL", &raw.LogLevel)
	if v, ok := lookup("FLUSH_DELAY_MS"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			raw.FlushDelayMS = &n
		}
	}
	if v, ok := lookup("MANIFEST_RATE"); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			raw.ManifestRate = &f
		}
	}
}

func (raw fileConfig) resolve() Config {
	cfg := Default()

	if dir := strings.TrimSpace(raw.DataDir); dir != "" {
		cfg.DataDir = mustExpand(dir)
	}
	if s, err := ParseStorage(raw.Storage); err == nil {
		cfg.Storage = s
	}
	cfg.SeedURL = strings.TrimSpace(raw.SeedURL)
	cfg.ReviewsURL = strings.TrimSpace(raw.ReviewsURL)
	cfg.ManifestURL = strings.TrimSpace(raw.ManifestURL)
	if dir := strings.TrimSpace(raw.ManifestDir); dir != "" {
		cfg.ManifestDir = mustExpand(dir)
	}
	if raw.ManifestRate != nil && *raw.ManifestRate >= 0 {
		cfg.ManifestRate = *raw.ManifestRate
	}
	if raw.FlushDelayMS != nil && *raw.FlushDelayMS > 0 {
		cfg.FlushDelay = time.Duration(*raw.FlushDelayMS) * time.Millisecond
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw.LogLevel))); err == nil {
		cfg.LogLevel = level
	}
	return cfg
}

// LogPath is the diagnostics log written while the TUI owns the terminal.
func (c Config) LogPath() string {
	return filepath.Join(c.dataDir(), "flatmatch.log")
}

// DatabasePath is the sqlite file used when Storage is sqlite.
func (c Config) DatabasePath() string {
	return filepath.Join(c.dataDir(), "flatmatch.db")
}

// SlotDir holds one JSON file per slot when Storage is file.
func (c Config) SlotDir() string {
	return filepath.Join(c.dataDir(), "slots")
}

func (c Config) dataDir() string {
	if strings.TrimSpace(c.DataDir) == "" {
		return mustExpand(defaultDataDir)
	}
	return c.DataDir
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
