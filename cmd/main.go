// Command tradecli runs an interactive paper-trading shell.
//
// Usage:
//
//	tradecli                      synthetic prices, defaults
//	tradecli --source binance     live public prices, simulated fills
//	tradecli --config config.yaml
//	tradecli --setup              run the configuration wizard first
//
// For Hyperliquid an optional HYPERLIQUID_PRIVATE_KEY is used to build the
// SDK client; without it a throwaway key is generated.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/tradecli/config"
	"github.com/vadiminshakov/tradecli/internal/cli"
	"github.com/vadiminshakov/tradecli/internal/clients"
	"github.com/vadiminshakov/tradecli/internal/services/pricer"
	"github.com/vadiminshakov/tradecli/internal/session"
	"github.com/vadiminshakov/tradecli/internal/setup"
	"github.com/vadiminshakov/tradecli/internal/storage/journal"
	"github.com/vadiminshakov/tradecli/internal/storage/simstate"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	if cfg.Setup {
		if err := setup.RunTUI(config.GeneratedFile); err != nil {
			log.Fatal(err)
		}
		if cfg, err = config.Load(config.GeneratedFile); err != nil {
			log.Fatal(err)
		}
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("tradecli stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	oracle, err := newOracle(cfg, logger)
	if err != nil {
		return err
	}

	trades, err := journal.NewWALStore(cfg.JournalDir)
	if err != nil {
		return errors.Wrap(err, "open trade journal")
	}
	defer func() {
		if err := trades.Close(); err != nil {
			logger.Warn("failed to close trade journal", zap.Error(err))
		}
	}()

	store, err := simstate.NewStore(cfg.StateFile)
	if err != nil {
		return errors.Wrap(err, "open state store")
	}

	sess, err := session.New(oracle, logger, session.WithJournal(trades))
	if err != nil {
		return err
	}

	app, err := cli.New(sess, os.Stdout, logger,
		cli.WithStateStore(store),
		cli.WithTradeLog(trades),
		cli.WithGlamour(""),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// unblock the pending read so the shell can say goodbye
	go func() {
		<-ctx.Done()
		_ = os.Stdin.Close()
	}()

	logger.Info("tradecli started",
		zap.String("source", cfg.Source),
		zap.String("state_file", store.Path()),
		zap.String("journal_dir", cfg.JournalDir))

	return app.Run(ctx, os.Stdin)
}

func newOracle(cfg config.Config, logger *zap.Logger) (pricer.Oracle, error) {
	var source pricer.QuoteSource
	switch cfg.Source {
	case config.SourceSynthetic:
		wave := pricer.Wave{Base: cfg.Base, Amplitude: cfg.Amplitude, Frequency: cfg.Frequency}
		return pricer.NewSyntheticPricer(wave, cfg.HistoryLimit), nil
	case config.SourceBinance:
		source = pricer.NewBinanceSource(clients.NewBinanceClient(), cfg.QuoteCurrency)
	case config.SourceBybit:
		source = pricer.NewBybitSource(clients.NewBybitClient(), cfg.QuoteCurrency)
	case config.SourceHyperliquid:
		client, err := clients.NewHyperliquidClient(cfg.HyperliquidKey, cfg.HyperliquidURL)
		if err != nil {
			return nil, errors.Wrap(err, "create hyperliquid client")
		}
		source = pricer.NewHyperliquidSource(client.Info())
	default:
		return nil, errors.Errorf("unsupported price source %q", cfg.Source)
	}

	return pricer.NewRemotePricer(source, cfg.HistoryLimit, logger,
		pricer.WithTimeout(cfg.FetchTimeout),
		pricer.WithRetries(cfg.FetchRetries),
	)
}

func newLogger(level zapcore.Level) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.Encoding = "console"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zcfg.Build()
}
