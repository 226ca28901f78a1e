package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultDBFileName   = ".taskdeck.db"
	DefaultBlobDirName  = ".taskdeck-blobs"
	DefaultBlobBaseURL  = "taskdeck://blobs"
	DefaultLogLevel     = "warn"
	configFileName      = ".taskdeck.toml"
	configDirEnvKey     = "TASKDECK_CONFIG_DIR"
	dbPathEnvKey        = "TASKDECK_DB"
	blobRootEnvKey      = "TASKDECK_BLOB_ROOT"
	blobBaseURLEnvKey   = "TASKDECK_BLOB_BASE_URL"

	DefaultMaxImageBytes int64 = 5 * 1024 * 1024
	DefaultMaxFileBytes  int64 = 25 * 1024 * 1024
	DefaultMaxBatchBytes int64 = 100 * 1024 * 1024
)

// AttachmentConfig defines upload size ceilings.
type AttachmentConfig struct {
	MaxImageBytes int64 `toml:"max_image_bytes"`
	MaxFileBytes  int64 `toml:"max_file_bytes"`
	MaxBatchBytes int64 `toml:"max_batch_bytes"`
}

// Config defines runtime configuration for taskdeck.
type Config struct {
	DBPath      string           `toml:"db_path"`
	BlobRoot    string           `toml:"blob_root"`
	BlobBaseURL string           `toml:"blob_base_url"`
	LogLevel    string           `toml:"log_level"`
	Attachments AttachmentConfig `toml:"attachments"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		BlobBaseURL: DefaultBlobBaseURL,
		LogLevel:    DefaultLogLevel,
		Attachments: AttachmentConfig{
			MaxImageBytes: DefaultMaxImageBytes,
			MaxFileBytes:  DefaultMaxFileBytes,
			MaxBatchBytes: DefaultMaxBatchBytes,
		},
	}
}

// Load reads config from the global file and applies env overrides.
func Load() (*Config, error) {
	cfg := Default()

	path, err := GlobalPath()
	if err != nil {
		return nil, err
	}
	if err := loadFileIfExists(path, &cfg); err != nil {
		return nil, err
	}

	if dbPath := os.Getenv(dbPathEnvKey); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if blobRoot := os.Getenv(blobRootEnvKey); blobRoot != "" {
		cfg.BlobRoot = blobRoot
	}
	if baseURL := os.Getenv(blobBaseURLEnvKey); baseURL != "" {
		cfg.BlobBaseURL = baseURL
	}

	if cfg.DBPath == "" || cfg.BlobRoot == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		if cfg.DBPath == "" {
			cfg.DBPath = filepath.Join(home, DefaultDBFileName)
		}
		if cfg.BlobRoot == "" {
			cfg.BlobRoot = filepath.Join(home, DefaultBlobDirName)
		}
	}

	cfg.normalizeDefaults()
	return &cfg, nil
}

// GlobalPath returns the path to the config file, honoring the
// directory override env var.
func GlobalPath() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(configDirEnvKey)); dir != "" {
		return filepath.Join(dir, configFileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configFileName), nil
}

var allowedKeys = []string{
	"db_path",
	"blob_root",
	"blob_base_url",
	"log_level",
	"attachments.max_image_bytes",
	"attachments.max_file_bytes",
	"attachments.max_batch_bytes",
}

// AllowedKeys returns the set of valid config keys.
func AllowedKeys() []string {
	return allowedKeys
}

// IsAllowedKey checks if a key is a valid config key.
func IsAllowedKey(key string) bool {
	for _, k := range allowedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "db_path":
		return c.DBPath, nil
	case "blob_root":
		return c.BlobRoot, nil
	case "blob_base_url":
		return c.BlobBaseURL, nil
	case "log_level":
		return c.LogLevel, nil
	case "attachments.max_image_bytes":
		return strconv.FormatInt(c.Attachments.MaxImageBytes, 10), nil
	case "attachments.max_file_bytes":
		return strconv.FormatInt(c.Attachments.MaxFileBytes, 10), nil
	case "attachments.max_batch_bytes":
		return strconv.FormatInt(c.Attachments.MaxBatchBytes, 10), nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// SetKey reads the TOML file at path, sets key=value, and writes it
// back.
func SetKey(path, key, value string) error {
	if !IsAllowedKey(key) {
		return fmt.Errorf("unknown key: %s", key)
	}

	data := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	parsedValue, err := parseSetValue(key, value)
	if err != nil {
		return err
	}
	if err := setNestedKey(data, strings.Split(key, "."), parsedValue); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(data)
}

func loadFileIfExists(path string, cfg *Config) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func parseSetValue(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "attachments.max_image_bytes", "attachments.max_file_bytes", "attachments.max_batch_bytes":
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer", key)
		}
		return parsed, nil
	default:
		return value, nil
	}
}

func setNestedKey(data map[string]any, parts []string, value any) error {
	if len(parts) == 0 {
		return fmt.Errorf("invalid config key")
	}
	if len(parts) == 1 {
		data[parts[0]] = value
		return nil
	}
	childRaw, ok := data[parts[0]]
	if !ok {
		child := map[string]any{}
		data[parts[0]] = child
		return setNestedKey(child, parts[1:], value)
	}
	child, ok := childRaw.(map[string]any)
	if !ok {
		return fmt.Errorf("cannot set nested key %q", strings.Join(parts, "."))
	}
	return setNestedKey(child, parts[1:], value)
}

func (c *Config) normalizeDefaults() {
	if c.Attachments.MaxImageBytes <= 0 {
		c.Attachments.MaxImageBytes = DefaultMaxImageBytes
	}
	if c.Attachments.MaxFileBytes <= 0 {
		c.Attachments.MaxFileBytes = DefaultMaxFileBytes
	}
	if c.Attachments.MaxBatchBytes <= 0 {
		c.Attachments.MaxBatchBytes = DefaultMaxBatchBytes
	}
	if strings.TrimSpace(c.BlobBaseURL) == "" {
		c.BlobBaseURL = DefaultBlobBaseURL
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = DefaultLogLevel
	}
}
