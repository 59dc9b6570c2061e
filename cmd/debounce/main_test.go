package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/MasterOfBinary/debounce/batch"
)

func execute(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewRootCmd(strings.NewReader(input), &out)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmd(t *testing.T) {
	t.Run("lines", func(t *testing.T) {
		out, err := execute(t, "a\nb\nc\n", "--delay", "50ms")
		require.NoError(t, err)
		assert.Equal(t, `["a","b","c"]`+"\n", out)
	})

	t.Run("flatten", func(t *testing.T) {
		out, err := execute(t, "a b\n\nc\n", "--flatten")
		require.NoError(t, err)
		assert.Equal(t, `["a","b","c"]`+"\n", out)
	})

	t.Run("empty input", func(t *testing.T) {
		out, err := execute(t, "")
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("invalid delay", func(t *testing.T) {
		_, err := execute(t, "a\n", "--delay", "0s")
		assert.Error(t, err)
	})

	t.Run("arguments rejected", func(t *testing.T) {
		_, err := execute(t, "a\n", "extra")
		assert.Error(t, err)
	})
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "debounce.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func parseFlags(t *testing.T, args ...string) (*Flags, *pflag.FlagSet) {
	t.Helper()
	var f Flags
	fl := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.register(fl)
	require.NoError(t, fl.Parse(args))
	return &f, fl
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := loadConfig(parseFlags(t))
		require.NoError(t, err)
		assert.Equal(t, Config{
			Delay:    batch.DefaultDelay,
			LogLevel: zapcore.InfoLevel,
		}, cfg)
	})

	t.Run("file", func(t *testing.T) {
		path := writeConfig(t, `
delay = "250ms"
flatten = true
log_level = "debug"
metrics_addr = ":9090"
`)
		cfg, err := loadConfig(parseFlags(t, "--config", path))
		require.NoError(t, err)
		assert.Equal(t, Config{
			Delay:       250 * time.Millisecond,
			Flatten:     true,
			LogLevel:    zapcore.DebugLevel,
			MetricsAddr: ":9090",
		}, cfg)
	})

	t.Run("flags override file", func(t *testing.T) {
		path := writeConfig(t, `
delay = "250ms"
flatten = true
log_level = "debug"
`)
		cfg, err := loadConfig(parseFlags(t, "--config", path, "--delay", "1s", "--flatten=false", "--log-level", "warn"))
		require.NoError(t, err)
		assert.Equal(t, time.Second, cfg.Delay)
		assert.False(t, cfg.Flatten)
		assert.Equal(t, zapcore.WarnLevel, cfg.LogLevel)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadConfig(parseFlags(t, "--config", filepath.Join(t.TempDir(), "missing.toml")))
		assert.Error(t, err)
	})

	t.Run("bad delay", func(t *testing.T) {
		path := writeConfig(t, `delay = "soon"`)
		_, err := loadConfig(parseFlags(t, "--config", path))
		assert.ErrorContains(t, err, "invalid delay")
	})

	t.Run("bad log level", func(t *testing.T) {
		_, err := loadConfig(parseFlags(t, "--log-level", "loud"))
		assert.ErrorContains(t, err, "invalid log level")
	})

	t.Run("negative delay", func(t *testing.T) {
		_, err := loadConfig(parseFlags(t, "--delay", "-1s"))
		assert.ErrorContains(t, err, "invalid config")
	})
}
