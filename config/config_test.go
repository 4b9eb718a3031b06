package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)

	assert.Equal(t, SourceSynthetic, cfg.Source)
	assert.Equal(t, "USDT", cfg.QuoteCurrency)
	assert.Equal(t, 100.0, cfg.Base)
	assert.Equal(t, 20.0, cfg.Amplitude)
	assert.Equal(t, 0.1, cfg.Frequency)
	assert.Equal(t, 100, cfg.HistoryLimit)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 2, cfg.FetchRetries)
	assert.Equal(t, "./tradecli_state.json", cfg.StateFile)
	assert.Equal(t, "./wal/trades", cfg.JournalDir)
	assert.Equal(t, zapcore.WarnLevel, cfg.LogLevel)
	assert.False(t, cfg.Setup)
}

func TestParse_Flags(t *testing.T) {
	cfg, err := Parse([]string{"-source", "Binance", "-quote", "usdc", "-timeout", "1s", "-retries", "0", "-loglevel", "debug", "-setup"})
	require.NoError(t, err)

	assert.Equal(t, SourceBinance, cfg.Source)
	assert.Equal(t, "USDC", cfg.QuoteCurrency)
	assert.Equal(t, time.Second, cfg.FetchTimeout)
	assert.Equal(t, 0, cfg.FetchRetries)
	assert.Equal(t, zapcore.DebugLevel, cfg.LogLevel)
	assert.True(t, cfg.Setup)
}

func TestParse_UnknownSource(t *testing.T) {
	_, err := Parse([]string{"-source", "nyse"})
	require.Error(t, err)
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
source: bybit
quote_currency: usdt
synthetic:
  base: "200"
  amplitude: "10"
history_limit: "50"
fetch_timeout: 5s
state_file: /tmp/state.json
log_level: info
`), 0o644))

	cfg, err := Parse([]string{"-config", path, "-source", "binance"})
	require.NoError(t, err)

	assert.Equal(t, SourceBybit, cfg.Source, "yaml wins over flags")
	assert.Equal(t, "USDT", cfg.QuoteCurrency)
	assert.Equal(t, 200.0, cfg.Base)
	assert.Equal(t, 10.0, cfg.Amplitude)
	assert.Equal(t, 0.1, cfg.Frequency)
	assert.Equal(t, 50, cfg.HistoryLimit)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, "/tmp/state.json", cfg.StateFile)
	assert.Equal(t, zapcore.InfoLevel, cfg.LogLevel)
}

func TestWriteThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), GeneratedFile)
	require.NoError(t, Write(path, ConfigTmp{
		Source:       SourceHyperliquid,
		FetchTimeout: 2 * time.Second,
		FetchRetries: "4",
	}))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, SourceHyperliquid, cfg.Source)
	assert.Equal(t, 2*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 4, cfg.FetchRetries)
	assert.Equal(t, defaultHyperliquidURL, cfg.HyperliquidURL)
}

func TestFromTmp_Invalid(t *testing.T) {
	tests := []struct {
		name string
		tmp  ConfigTmp
	}{
		{name: "bad base", tmp: ConfigTmp{Synthetic: SyntheticTmp{Base: "abc"}}},
		{name: "amplitude reaches base", tmp: ConfigTmp{Synthetic: SyntheticTmp{Base: "10", Amplitude: "10"}}},
		{name: "negative base", tmp: ConfigTmp{Synthetic: SyntheticTmp{Base: "-100", Amplitude: "-120"}}},
		{name: "zero amplitude", tmp: ConfigTmp{Synthetic: SyntheticTmp{Amplitude: "0"}}},
		{name: "negative amplitude", tmp: ConfigTmp{Synthetic: SyntheticTmp{Amplitude: "-5"}}},
		{name: "zero frequency", tmp: ConfigTmp{Synthetic: SyntheticTmp{Frequency: "0"}}},
		{name: "negative frequency", tmp: ConfigTmp{Synthetic: SyntheticTmp{Frequency: "-0.1"}}},
		{name: "bad history", tmp: ConfigTmp{HistoryLimit: "many"}},
		{name: "zero history", tmp: ConfigTmp{HistoryLimit: "0"}},
		{name: "negative retries", tmp: ConfigTmp{FetchRetries: "-1"}},
		{name: "bad log level", tmp: ConfigTmp{LogLevel: "loud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromTmp(tt.tmp)
			require.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
