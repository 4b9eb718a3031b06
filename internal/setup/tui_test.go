package setup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/tradecli/config"
)

func TestAnswers_DefaultsProduceValidConfig(t *testing.T) {
	tmp, err := defaultAnswers().toTmp()
	require.NoError(t, err)

	cfg, err := config.FromTmp(tmp)
	require.NoError(t, err)
	assert.Equal(t, config.SourceSynthetic, cfg.Source)
	assert.Equal(t, 100.0, cfg.Base)
	assert.Equal(t, 20.0, cfg.Amplitude)
}

func TestAnswers_RemoteSource(t *testing.T) {
	a := defaultAnswers()
	a.source = config.SourceBybit
	a.quote = " usdc "
	a.timeout = "5s"
	a.retries = "1"

	tmp, err := a.toTmp()
	require.NoError(t, err)
	assert.Equal(t, "USDC", tmp.QuoteCurrency)
	assert.Equal(t, 5*time.Second, tmp.FetchTimeout)
	assert.Equal(t, config.SyntheticTmp{}, tmp.Synthetic)

	cfg, err := config.FromTmp(tmp)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.FetchRetries)
}

func TestAnswers_BadTimeout(t *testing.T) {
	a := defaultAnswers()
	a.source = config.SourceBinance
	a.timeout = "soon"

	_, err := a.toTmp()
	require.Error(t, err)
}

func TestValidators(t *testing.T) {
	assert.NoError(t, validatePositiveNumber("0.5"))
	assert.Error(t, validatePositiveNumber("0"))
	assert.Error(t, validatePositiveNumber("x"))

	assert.NoError(t, validateNonNegativeInt("0"))
	assert.Error(t, validateNonNegativeInt("-1"))
	assert.Error(t, validateNonNegativeInt("1.5"))
}

func TestValidatePositiveInt(t *testing.T) {
	assert.NoError(t, validatePositiveInt("1"))
	assert.Error(t, validatePositiveInt("0"))
	assert.Error(t, validatePositiveInt("-3"))
	assert.Error(t, validatePositiveInt("ten"))
}

func TestHistoryValidatorMatchesConfig(t *testing.T) {
	for _, history := range []string{"0", "1", "100"} {
		a := defaultAnswers()
		a.historyLimit = history

		tmp, err := a.toTmp()
		require.NoError(t, err)
		_, cfgErr := config.FromTmp(tmp)

		assert.Equal(t, validatePositiveInt(history) == nil, cfgErr == nil, "history %s", history)
	}
}
