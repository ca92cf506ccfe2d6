// Package config loads the shipyard configuration file.
//
// The format follows the extension: .toml and .json are decoded as such and
// anything else as YAML. Values absent from the file keep their defaults.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/aretw0/shipyard/internal/logging"
	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultAddr           = ":8080"
	DefaultLogLevel       = "info"
	DefaultManifest       = "es_stable_data_paths.txt"
	DefaultConcurrency    = 8
	DefaultTimeout        = "30s"
	DefaultRedisPrefix    = "shipyard:uploads:"
	DefaultGeneratorsFile = "generators.yaml"
	DefaultOutputDir      = "."
	DefaultMaxUploadBytes = 16 << 20
)

// Config is the complete runtime configuration.
type Config struct {
	Addr           string         `yaml:"addr" json:"addr" toml:"addr"`
	LogLevel       string         `yaml:"log_level" json:"log_level" toml:"log_level"`
	LogFormat      string         `yaml:"log_format" json:"log_format" toml:"log_format"`
	MaxUploadBytes int64          `yaml:"max_upload_bytes" json:"max_upload_bytes" toml:"max_upload_bytes"`
	Baseline       BaselineConfig `yaml:"baseline" json:"baseline" toml:"baseline"`
	Redis          RedisConfig    `yaml:"redis" json:"redis" toml:"redis"`
	UploadsDir     string         `yaml:"uploads_dir" json:"uploads_dir" toml:"uploads_dir"`
	GeneratorsFile string         `yaml:"generators_file" json:"generators_file" toml:"generators_file"`
	OutputDir      string         `yaml:"output_dir" json:"output_dir" toml:"output_dir"`
}

// BaselineConfig locates the baseline dataset. URL wins over Dir.
type BaselineConfig struct {
	URL         string `yaml:"url" json:"url" toml:"url"`
	Dir         string `yaml:"dir" json:"dir" toml:"dir"`
	Manifest    string `yaml:"manifest" json:"manifest" toml:"manifest"`
	Concurrency int    `yaml:"concurrency" json:"concurrency" toml:"concurrency"`
	Timeout     string `yaml:"timeout" json:"timeout" toml:"timeout"`
}

// RedisConfig enables the Redis upload store when Addr is set. It takes
// precedence over Config.UploadsDir.
type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr" toml:"addr"`
	Password string `yaml:"password" json:"password" toml:"password"`
	DB       int    `yaml:"db" json:"db" toml:"db"`
	Prefix   string `yaml:"prefix" json:"prefix" toml:"prefix"`
	TTL      string `yaml:"ttl" json:"ttl" toml:"ttl"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Addr:           DefaultAddr,
		LogLevel:       DefaultLogLevel,
		MaxUploadBytes: DefaultMaxUploadBytes,
		Baseline: BaselineConfig{
			Manifest:    DefaultManifest,
			Concurrency: DefaultConcurrency,
			Timeout:     DefaultTimeout,
		},
		Redis: RedisConfig{
			Prefix: DefaultRedisPrefix,
		},
		GeneratorsFile: DefaultGeneratorsFile,
		OutputDir:      DefaultOutputDir,
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid value at once.
func (c Config) Validate() error {
	var errs []error
	if _, _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if _, err := logging.ParseFormat(c.LogFormat); err != nil {
		errs = append(errs, fmt.Errorf("log_format: %w", err))
	}
	if c.MaxUploadBytes < 1 {
		errs = append(errs, fmt.Errorf("max_upload_bytes must be positive, got %d", c.MaxUploadBytes))
	}
	if c.Baseline.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("baseline.concurrency must be positive, got %d", c.Baseline.Concurrency))
	}
	if _, err := c.Baseline.TimeoutDuration(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Redis.TTLDuration(); err != nil {
		errs = append(errs, err)
	}
	if c.Redis.DB < 0 {
		errs = append(errs, fmt.Errorf("redis.db must not be negative, got %d", c.Redis.DB))
	}
	return errors.Join(errs...)
}

// TimeoutDuration parses Timeout. Empty means no timeout.
func (b BaselineConfig) TimeoutDuration() (time.Duration, error) {
	return parseDuration("baseline.timeout", b.Timeout)
}

// TTLDuration parses TTL. Empty means uploads never expire.
func (r RedisConfig) TTLDuration() (time.Duration, error) {
	return parseDuration("redis.ttl", r.TTL)
}

func parseDuration(key, raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}
