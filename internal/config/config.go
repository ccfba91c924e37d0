// Package config assembles runtime settings from defaults, an optional YAML
// file, HEXSIM_* environment variables and command-line flags, in that order
// of precedence.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const envPrefix = "HEXSIM_"

type Config struct {
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level"`
	DataDir     string `koanf:"data_dir"`
	PlayerID    string `koanf:"player_id"`
	SessionID   string `koanf:"session_id"`
	Seed        int64  `koanf:"seed"`
	Starvation  bool   `koanf:"starvation"`
	RulesFile   string `koanf:"rules_file"`
	Rating      string `koanf:"rating"`

	LLM     LLMConfig     `koanf:"llm"`
	Redis   RedisConfig   `koanf:"redis"`
	Journal JournalConfig `koanf:"journal"`
	HTTP    HTTPConfig    `koanf:"http"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// LLMConfig points at an OpenAI-compatible chat completions endpoint used
// to translate free text into commands.
type LLMConfig struct {
	Endpoint  string `koanf:"endpoint"`
	Model     string `koanf:"model"`
	APIKey    string `koanf:"api_key"`
	MaxTokens int    `koanf:"max_tokens"`
}

type RedisConfig struct {
	URL string `koanf:"url"`
}

type JournalConfig struct {
	Path string `koanf:"path"`
}

type HTTPConfig struct {
	Port string `koanf:"port"`
}

type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
}

var defaults = map[string]any{
	"environment":     "development",
	"log_level":       "info",
	"data_dir":        "data",
	"player_id":       "hero",
	"session_id":      "",
	"seed":            int64(0),
	"starvation":      false,
	"rules_file":      "",
	"rating":          "",
	"llm.endpoint":    "",
	"llm.model":       "gpt-4o-mini",
	"llm.api_key":     "",
	"llm.max_tokens":  256,
	"redis.url":       "",
	"journal.path":    "",
	"http.port":       "8080",
	"metrics.enabled": true,
}

// Load builds a Config. path names an optional YAML file; a missing file
// is an error only when path is non-empty. flags may be nil; only flags the
// user actually set override earlier layers. Flag names may use dashes in
// place of underscores ("data-dir" sets data_dir).
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")
	for key, val := range defaults {
		if err := k.Set(key, val); err != nil {
			return nil, fmt.Errorf("failed to set default %s: %w", key, err)
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	for key := range defaults {
		if v := getEnv(envKey(key), ""); v != "" {
			if err := k.Set(key, v); err != nil {
				return nil, fmt.Errorf("failed to set %s from environment: %w", key, err)
			}
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key := flagKey(f.Name)
			if _, ok := defaults[key]; !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: false}); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values the decoder cannot.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.LLM.MaxTokens < 0 {
		return fmt.Errorf("llm.max_tokens must not be negative")
	}
	if c.HTTP.Port != "" {
		if _, err := strconv.Atoi(c.HTTP.Port); err != nil {
			return fmt.Errorf("http.port must be numeric: %q", c.HTTP.Port)
		}
	}
	return nil
}

// SlogLevel maps the configured level name onto slog.
func (c *Config) SlogLevel() slog.Level {
	return parseLogLevel(c.LogLevel)
}

// TranslatorEnabled reports whether free-text translation is configured.
func (c *Config) TranslatorEnabled() bool {
	return c.LLM.Endpoint != ""
}

func envKey(key string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func flagKey(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
