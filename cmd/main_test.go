package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/tradecli/config"
	"github.com/vadiminshakov/tradecli/internal/domain"
	"github.com/vadiminshakov/tradecli/internal/services/pricer"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewOracle(t *testing.T) {
	tests := []struct {
		source string
		want   any
	}{
		{source: config.SourceSynthetic, want: &pricer.SyntheticPricer{}},
		{source: config.SourceBinance, want: &pricer.RemotePricer{}},
		{source: config.SourceBybit, want: &pricer.RemotePricer{}},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			cfg, err := config.FromTmp(config.ConfigTmp{Source: tt.source})
			require.NoError(t, err)

			oracle, err := newOracle(cfg, zap.NewNop())
			require.NoError(t, err)
			assert.IsType(t, tt.want, oracle)
		})
	}
}

func TestNewOracle_SyntheticUsesConfiguredWave(t *testing.T) {
	cfg, err := config.FromTmp(config.ConfigTmp{Synthetic: config.SyntheticTmp{Base: "50", Amplitude: "5", Frequency: "0.2"}})
	require.NoError(t, err)

	oracle, err := newOracle(cfg, zap.NewNop())
	require.NoError(t, err)

	ref := pricer.NewSyntheticPricer(pricer.Wave{Base: 50, Amplitude: 5, Frequency: 0.2}, 1)
	got := oracle.Price(context.Background(), domain.Ticker("WAVE"))
	assert.True(t, ref.At("WAVE", 1).Equal(got), "got %s", got)
}

func TestNewOracle_Unsupported(t *testing.T) {
	_, err := newOracle(config.Config{Source: "nyse"}, zap.NewNop())
	require.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger(zapcore.ErrorLevel)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.WarnLevel))
	assert.True(t, logger.Core().Enabled(zapcore.ErrorLevel))
}
