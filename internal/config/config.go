package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/RowanDark/classic/internal/cipher"
)

// DefaultFile is the configuration file looked up in the working directory
// when no explicit path is given.
const DefaultFile = "classic.yml"

// Config captures the classic configuration resolved from defaults, an
// optional YAML file and environment overrides.
type Config struct {
	ListenAddr string         `yaml:"listen_addr"`
	LogLevel   string         `yaml:"log_level"`
	AuditLog   string         `yaml:"audit_log"`
	Analysis   AnalysisConfig `yaml:"analysis"`
}

// AnalysisConfig bounds the ciphertext-only analysers.
type AnalysisConfig struct {
	Language       string `yaml:"language"`
	MaxBlockLength int    `yaml:"max_block_length"`
	MaxKeyLength   int    `yaml:"max_key_length"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ListenAddr: "127.0.0.1:8713",
		LogLevel:   "info",
		AuditLog:   "",
		Analysis: AnalysisConfig{
			Language:       "en",
			MaxBlockLength: cipher.DefaultMaxBlockLength,
			MaxKeyLength:   cipher.DefaultMaxKeyLength,
		},
	}
}

// Load resolves the configuration using defaults, a YAML file and
// environment overrides. When path is empty ./classic.yml is used if it
// exists; an explicit path must exist.
//
// Environment variables prefixed with CLASSIC_ have the highest precedence.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := applyFileConfig(&cfg, data); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings that cannot be used.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ListenAddr) == "" {
		return errors.New("listen_addr must not be empty")
	}
	if c.Analysis.MaxBlockLength < 3 {
		return fmt.Errorf("analysis.max_block_length must be at least 3, got %d", c.Analysis.MaxBlockLength)
	}
	if c.Analysis.MaxKeyLength < 1 {
		return fmt.Errorf("analysis.max_key_length must be positive, got %d", c.Analysis.MaxKeyLength)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// AnalyseOptions converts the analysis section into analyser options.
func (a AnalysisConfig) AnalyseOptions() []cipher.AnalyseOption {
	return []cipher.AnalyseOption{
		cipher.WithProfile(cipher.ProfileFor(a.Language)),
		cipher.WithMaxBlockLength(a.MaxBlockLength),
		cipher.WithMaxKeyLength(a.MaxKeyLength),
	}
}

// ParseLevel maps a level name onto a slog level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q: %w", name, err)
	}
	return level, nil
}

type fileConfig struct {
	ListenAddr *string             `yaml:"listen_addr"`
	LogLevel   *string             `yaml:"log_level"`
	AuditLog   *string             `yaml:"audit_log"`
	Analysis   *fileAnalysisConfig `yaml:"analysis"`
}

type fileAnalysisConfig struct {
	Language       *string `yaml:"language"`
	MaxBlockLength *int    `yaml:"max_block_length"`
	MaxKeyLength   *int    `yaml:"max_key_length"`
}

func applyFileConfig(cfg *Config, data []byte) error {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return err
	}

	if fc.ListenAddr != nil {
		cfg.ListenAddr = strings.TrimSpace(*fc.ListenAddr)
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = strings.TrimSpace(*fc.LogLevel)
	}
	if fc.AuditLog != nil {
		cfg.AuditLog = strings.TrimSpace(*fc.AuditLog)
	}
	if fc.Analysis != nil {
		if fc.Analysis.Language != nil {
			cfg.Analysis.Language = strings.TrimSpace(*fc.Analysis.Language)
		}
		if fc.Analysis.MaxBlockLength != nil {
			cfg.Analysis.MaxBlockLength = *fc.Analysis.MaxBlockLength
		}
		if fc.Analysis.MaxKeyLength != nil {
			cfg.Analysis.MaxKeyLength = *fc.Analysis.MaxKeyLength
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if val := strings.TrimSpace(os.Getenv("CLASSIC_LISTEN")); val != "" {
		cfg.ListenAddr = val
	}
	if val := strings.TrimSpace(os.Getenv("CLASSIC_LOG_LEVEL")); val != "" {
		cfg.LogLevel = val
	}
	if val := strings.TrimSpace(os.Getenv("CLASSIC_AUDIT_LOG")); val != "" {
		cfg.AuditLog = val
	}
	if val := strings.TrimSpace(os.Getenv("CLASSIC_LANGUAGE")); val != "" {
		cfg.Analysis.Language = val
	}
	if val := strings.TrimSpace(os.Getenv("CLASSIC_MAX_BLOCK_LENGTH")); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			cfg.Analysis.MaxBlockLength = parsed
		}
	}
	if val := strings.TrimSpace(os.Getenv("CLASSIC_MAX_KEY_LENGTH")); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			cfg.Analysis.MaxKeyLength = parsed
		}
	}
}
