// Package config provides configuration loading and structs for the meishi server and CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hyperjump/meishi/internal/parser"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Parser  ParserConfig  `yaml:"parser"`
	OCR     OCRConfig     `yaml:"ocr"`
	Watch   WatchConfig   `yaml:"watch"`
	Export  ExportConfig  `yaml:"export"`
}

// WatchConfig holds inbox directory watch settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the contacts database and search index.
type StorageConfig struct {
	DatabasePath   string `yaml:"database_path"`
	BleveIndexPath string `yaml:"bleve_index_path"`
}

// ParserConfig holds business card parser settings.
type ParserConfig struct {
	MaxInputBytes     int            `yaml:"max_input_bytes"`
	AddressPrecedence string         `yaml:"address_precedence"`
	EntitiesPath      string         `yaml:"entities_path"`
	Weights           parser.Weights `yaml:"weights"`
}

// OCRConfig holds Tesseract settings.
type OCRConfig struct {
	Languages      []string `yaml:"languages"`
	TessdataPrefix string   `yaml:"tessdata_prefix"`
}

// ExportConfig holds export settings.
type ExportConfig struct {
	DateFormat string `yaml:"date_format"`
}

// Load reads and parses the config file at path, expands paths, applies defaults,
// then overlays MEISHI_* environment variables (a .env file next to the config is
// loaded first when present). Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	configDir := filepath.Dir(path)
	if err := loadDotEnv(filepath.Join(configDir, ".env")); err != nil {
		return nil, err
	}
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	ApplyDefaults(&cfg)

	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.BleveIndexPath = expandPath(cfg.Storage.BleveIndexPath, configDir)
	if cfg.Parser.EntitiesPath != "" {
		cfg.Parser.EntitiesPath = expandPath(cfg.Parser.EntitiesPath, configDir)
	}
	if cfg.OCR.TessdataPrefix != "" {
		cfg.OCR.TessdataPrefix = expandPath(cfg.OCR.TessdataPrefix, configDir)
	}
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	return &cfg, nil
}

// Save writes the config to path. Used for persisting watch directory add/remove.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// SaveWatchDirectories rewrites the watch directory list in the config file
// at path. The rest of the file is kept as written: environment and .env
// overrides, defaults and path expansion are never persisted. A missing file
// is created.
func SaveWatchDirectories(path string, dirs []string) error {
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("failed to read config: %w", err)
	}
	cfg.Watch.Directories = append([]string(nil), dirs...)
	return Save(path, &cfg)
}

// loadDotEnv loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides file values with MEISHI_* environment variables.
func applyEnv(cfg *Config) error {
	if v := os.Getenv("MEISHI_DEBUG"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid MEISHI_DEBUG %q: %w", v, err)
		}
		cfg.Debug = b
	}
	if v := os.Getenv("MEISHI_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("MEISHI_SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MEISHI_SERVER_PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("MEISHI_DATABASE_PATH"); v != "" {
		cfg.Storage.DatabasePath = v
	}
	if v := os.Getenv("MEISHI_BLEVE_INDEX_PATH"); v != "" {
		cfg.Storage.BleveIndexPath = v
	}
	if v := os.Getenv("MEISHI_TESSDATA_PREFIX"); v != "" {
		cfg.OCR.TessdataPrefix = v
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
