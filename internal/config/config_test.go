package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "hero", cfg.PlayerID)
	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, 256, cfg.LLM.MaxTokens)
	assert.True(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.TranslatorEnabled())
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoad_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hexsim.yaml")
	yaml := "log_level: debug\ndata_dir: from-file\nllm:\n  model: file-model\nhttp:\n  port: \"9000\"\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv("HEXSIM_DATA_DIR", "from-env")
	t.Setenv("HEXSIM_LLM_ENDPOINT", "http://localhost:11434/v1/chat/completions")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("data-dir", "", "")
	flags.String("player-id", "", "")
	flags.Bool("starvation", false, "")
	require.NoError(t, flags.Parse([]string{"--data-dir=from-flag", "--starvation"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel(), "file overrides default")
	assert.Equal(t, "file-model", cfg.LLM.Model)
	assert.Equal(t, "9000", cfg.HTTP.Port)
	assert.True(t, cfg.TranslatorEnabled(), "env overrides default")
	assert.Equal(t, "from-flag", cfg.DataDir, "flag overrides env")
	assert.True(t, cfg.Starvation)
	assert.Equal(t, "hero", cfg.PlayerID, "unset flag keeps earlier value")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{DataDir: "data", HTTP: HTTPConfig{Port: "http"}}
	assert.Error(t, cfg.Validate())

	cfg.HTTP.Port = "8080"
	cfg.LLM.MaxTokens = -1
	assert.Error(t, cfg.Validate())

	cfg.LLM.MaxTokens = 0
	assert.NoError(t, cfg.Validate())

	assert.Error(t, (&Config{}).Validate())
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLogLevel(in), in)
	}
}
