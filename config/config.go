// Package config loads tradecli settings from a YAML file or command-line flags.
package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Price sources.
const (
	SourceSynthetic   = "synthetic"
	SourceBinance     = "binance"
	SourceBybit       = "bybit"
	SourceHyperliquid = "hyperliquid"
)

// GeneratedFile file written by the setup wizard.
const GeneratedFile = "config.gen.yaml"

const (
	defaultQuoteCurrency  = "USDT"
	defaultBase           = 100.0
	defaultAmplitude      = 20.0
	defaultFrequency      = 0.1
	defaultHistoryLimit   = 100
	defaultFetchTimeout   = 3 * time.Second
	defaultFetchRetries   = 2
	defaultStateFile      = "./tradecli_state.json"
	defaultJournalDir     = "./wal/trades"
	defaultHyperliquidURL = "https://api.hyperliquid.xyz"
)

// Config typed settings of one run.
type Config struct {
	Source        string
	QuoteCurrency string
	// Synthetic wave parameters.
	Base      float64
	Amplitude float64
	Frequency float64

	HistoryLimit int
	FetchTimeout time.Duration
	FetchRetries int

	StateFile  string
	JournalDir string

	HyperliquidURL string
	// HyperliquidKey optional signing key, read from HYPERLIQUID_PRIVATE_KEY.
	HyperliquidKey string

	LogLevel zapcore.Level
	// Setup asks for the configuration wizard before starting.
	Setup bool
}

// ConfigTmp raw YAML shape. Numbers are kept as strings so that missing keys
// fall back to defaults and bad values produce readable errors.
type ConfigTmp struct {
	Source         string        `yaml:"source"`
	QuoteCurrency  string        `yaml:"quote_currency,omitempty"`
	Synthetic      SyntheticTmp  `yaml:"synthetic,omitempty"`
	HistoryLimit   string        `yaml:"history_limit,omitempty"`
	FetchTimeout   time.Duration `yaml:"fetch_timeout,omitempty"`
	FetchRetries   string        `yaml:"fetch_retries,omitempty"`
	StateFile      string        `yaml:"state_file,omitempty"`
	JournalDir     string        `yaml:"journal_dir,omitempty"`
	HyperliquidURL string        `yaml:"hyperliquid_url,omitempty"`
	LogLevel       string        `yaml:"log_level,omitempty"`
}

// SyntheticTmp raw synthetic wave section.
type SyntheticTmp struct {
	Base      string `yaml:"base,omitempty"`
	Amplitude string `yaml:"amplitude,omitempty"`
	Frequency string `yaml:"frequency,omitempty"`
}

// Get reads the configuration from os.Args.
func Get() (Config, error) {
	return Parse(os.Args[1:])
}

// Parse reads the configuration from args. With --config the YAML file wins and
// the remaining flags except --setup are ignored.
func Parse(args []string) (Config, error) {
	fs := flag.NewFlagSet("tradecli", flag.ContinueOnError)
	path := fs.String("config", "", "path to yaml config")
	setup := fs.Bool("setup", false, "run the configuration wizard")
	source := fs.String("source", SourceSynthetic, "price source: synthetic, binance, bybit or hyperliquid")
	quote := fs.String("quote", defaultQuoteCurrency, "quote currency used to build exchange symbols")
	history := fs.Int("history", defaultHistoryLimit, "prices kept per ticker")
	timeout := fs.Duration("timeout", defaultFetchTimeout, "remote price fetch timeout")
	retries := fs.Int("retries", defaultFetchRetries, "remote price fetch retries")
	state := fs.String("state", defaultStateFile, "state file for save/load")
	journal := fs.String("journal", defaultJournalDir, "trade journal directory")
	logLevel := fs.String("loglevel", zapcore.WarnLevel.String(), "log level")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *path != "" {
		cfg, err := Load(*path)
		if err != nil {
			return Config{}, err
		}
		cfg.Setup = *setup
		return cfg, nil
	}

	cfg, err := FromTmp(ConfigTmp{
		Source:        *source,
		QuoteCurrency: *quote,
		HistoryLimit:  strconv.Itoa(*history),
		FetchTimeout:  *timeout,
		FetchRetries:  strconv.Itoa(*retries),
		StateFile:     *state,
		JournalDir:    *journal,
		LogLevel:      *logLevel,
	})
	if err != nil {
		return Config{}, err
	}
	cfg.Setup = *setup
	return cfg, nil
}

// Load reads a YAML config file.
func Load(path string) (Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var tmp ConfigTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return Config{}, errors.Wrapf(err, "parse %s", path)
	}
	return FromTmp(tmp)
}

// Write stores tmp as YAML at path.
func Write(path string, tmp ConfigTmp) error {
	data, err := yaml.Marshal(tmp)
	if err != nil {
		return errors.Wrap(err, "failed to generate yaml")
	}
	return os.WriteFile(path, data, 0o644)
}

// FromTmp validates raw values and fills defaults.
func FromTmp(c ConfigTmp) (Config, error) {
	cfg := Config{
		Source:         strings.ToLower(strings.TrimSpace(c.Source)),
		QuoteCurrency:  strings.ToUpper(strings.TrimSpace(c.QuoteCurrency)),
		FetchTimeout:   c.FetchTimeout,
		StateFile:      c.StateFile,
		JournalDir:     c.JournalDir,
		HyperliquidURL: c.HyperliquidURL,
		HyperliquidKey: os.Getenv("HYPERLIQUID_PRIVATE_KEY"),
	}

	switch cfg.Source {
	case "":
		cfg.Source = SourceSynthetic
	case SourceSynthetic, SourceBinance, SourceBybit, SourceHyperliquid:
	default:
		return Config{}, errors.Errorf("unsupported 'source' param: %q", c.Source)
	}

	if cfg.QuoteCurrency == "" {
		cfg.QuoteCurrency = defaultQuoteCurrency
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
	if cfg.StateFile == "" {
		cfg.StateFile = defaultStateFile
	}
	if cfg.JournalDir == "" {
		cfg.JournalDir = defaultJournalDir
	}
	if cfg.HyperliquidURL == "" {
		cfg.HyperliquidURL = defaultHyperliquidURL
	}

	var err error
	if cfg.Base, err = parseFloat("synthetic.base", c.Synthetic.Base, defaultBase); err != nil {
		return Config{}, err
	}
	if cfg.Amplitude, err = parseFloat("synthetic.amplitude", c.Synthetic.Amplitude, defaultAmplitude); err != nil {
		return Config{}, err
	}
	if cfg.Frequency, err = parseFloat("synthetic.frequency", c.Synthetic.Frequency, defaultFrequency); err != nil {
		return Config{}, err
	}
	for _, p := range []struct {
		key string
		v   float64
	}{
		{"synthetic.base", cfg.Base},
		{"synthetic.amplitude", cfg.Amplitude},
		{"synthetic.frequency", cfg.Frequency},
	} {
		if p.v <= 0 {
			return Config{}, errors.Errorf("%s must be positive, got %v", p.key, p.v)
		}
	}
	if cfg.Amplitude >= cfg.Base {
		return Config{}, errors.Errorf("synthetic.amplitude (%v) must be below synthetic.base (%v) to keep prices positive", cfg.Amplitude, cfg.Base)
	}

	if cfg.HistoryLimit, err = parseInt("history_limit", c.HistoryLimit, defaultHistoryLimit); err != nil {
		return Config{}, err
	}
	if cfg.HistoryLimit <= 0 {
		return Config{}, errors.Errorf("history_limit must be positive, got %d", cfg.HistoryLimit)
	}
	if cfg.FetchRetries, err = parseInt("fetch_retries", c.FetchRetries, defaultFetchRetries); err != nil {
		return Config{}, err
	}
	if cfg.FetchRetries < 0 {
		return Config{}, errors.Errorf("fetch_retries must not be negative, got %d", cfg.FetchRetries)
	}

	cfg.LogLevel = zapcore.WarnLevel
	if c.LogLevel != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(c.LogLevel)); err != nil {
			return Config{}, errors.Wrapf(err, "incorrect 'log_level' param: %q", c.LogLevel)
		}
	}

	return cfg, nil
}

func parseFloat(key, raw string, def float64) (float64, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "incorrect '%s' param (must be a number)", key)
	}
	return v, nil
}

func parseInt(key, raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Wrapf(err, "incorrect '%s' param (must be an integer)", key)
	}
	return v, nil
}
