// Package setup runs the interactive configuration wizard.
package setup

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/tradecli/config"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// answers collected by the wizard forms.
type answers struct {
	source       string
	quote        string
	base         string
	amplitude    string
	frequency    string
	historyLimit string
	timeout      string
	retries      string
	stateFile    string
	journalDir   string
}

func defaultAnswers() answers {
	return answers{
		source:       config.SourceSynthetic,
		quote:        "USDT",
		base:         "100",
		amplitude:    "20",
		frequency:    "0.1",
		historyLimit: "100",
		timeout:      "3s",
		retries:      "2",
		stateFile:    "./tradecli_state.json",
		journalDir:   "./wal/trades",
	}
}

// RunTUI launches the terminal configuration wizard and writes the result to path.
func RunTUI(path string) error {
	a := defaultAnswers()
	var confirm bool

	screen("STEP 1: PRICE SOURCE")
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Paper trading only, no keys needed.\n"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Where do prices come from?").
				Options(
					huh.NewOption("Synthetic wave (offline)", config.SourceSynthetic),
					huh.NewOption("Binance public API", config.SourceBinance),
					huh.NewOption("Bybit public API", config.SourceBybit),
					huh.NewOption("Hyperliquid public API", config.SourceHyperliquid),
				).
				Value(&a.source),
		),
	).Run()
	if err != nil {
		return err
	}

	if a.source == config.SourceSynthetic {
		screen("STEP 2: WAVE")
		err = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Base price").
					Value(&a.base).
					Validate(validatePositiveNumber),
				huh.NewInput().
					Title("Amplitude").
					Description("Must stay below the base price").
					Value(&a.amplitude).
					Validate(validatePositiveNumber),
				huh.NewInput().
					Title("Frequency").
					Description("Radians per tick (e.g. 0.1)").
					Value(&a.frequency).
					Validate(validatePositiveNumber),
			),
		).Run()
	} else {
		screen("STEP 2: EXCHANGE")
		err = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Quote currency").
					Description("Appended to bare tickers (BTC becomes BTCUSDT)").
					Value(&a.quote).
					Validate(func(s string) error {
						if strings.TrimSpace(s) == "" {
							return errors.New("quote currency cannot be empty")
						}
						return nil
					}),
				huh.NewInput().
					Title("Fetch timeout").
					Description("Duration string (e.g. 3s)").
					Value(&a.timeout).
					Validate(func(s string) error {
						_, err := time.ParseDuration(s)
						return err
					}),
				huh.NewInput().
					Title("Retries").
					Value(&a.retries).
					Validate(validateNonNegativeInt),
			),
		).Run()
	}
	if err != nil {
		return err
	}

	screen("STEP 3: STORAGE")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("History per ticker").
				Value(&a.historyLimit).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("State file").
				Description("Used by save and load").
				Value(&a.stateFile),
			huh.NewInput().
				Title("Trade journal directory").
				Value(&a.journalDir),
		),
	).Run()
	if err != nil {
		return err
	}

	screen("FINAL CONFIRMATION")
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(a.summary()))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save and start").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}
	if !confirm {
		return errors.New("setup cancelled by user")
	}

	tmp, err := a.toTmp()
	if err != nil {
		return err
	}
	// validate before writing so a broken file is never left behind
	if _, err := config.FromTmp(tmp); err != nil {
		return err
	}
	if err := config.Write(path, tmp); err != nil {
		return errors.Wrap(err, "failed to save config file")
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(fmt.Sprintf("\n✓ Configuration saved to %s", path)))
	return nil
}

func screen(step string) {
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("TRADECLI CONFIG WIZARD"))
	fmt.Println(stepStyle.Render(step))
}

func (a answers) summary() string {
	return fmt.Sprintf(
		"Source: %s\nQuote: %s\nHistory: %s\nState: %s\nJournal: %s\n",
		a.source, a.quote, a.historyLimit, a.stateFile, a.journalDir,
	)
}

func (a answers) toTmp() (config.ConfigTmp, error) {
	tmp := config.ConfigTmp{
		Source:       a.source,
		HistoryLimit: a.historyLimit,
		StateFile:    a.stateFile,
		JournalDir:   a.journalDir,
	}

	if a.source == config.SourceSynthetic {
		tmp.Synthetic = config.SyntheticTmp{
			Base:      a.base,
			Amplitude: a.amplitude,
			Frequency: a.frequency,
		}
		return tmp, nil
	}

	timeout, err := time.ParseDuration(a.timeout)
	if err != nil {
		return config.ConfigTmp{}, errors.Wrap(err, "fetch timeout")
	}
	tmp.QuoteCurrency = strings.ToUpper(strings.TrimSpace(a.quote))
	tmp.FetchTimeout = timeout
	tmp.FetchRetries = a.retries
	return tmp, nil
}

func validatePositiveNumber(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return errors.New("must be a valid number")
	}
	if v <= 0 {
		return errors.New("must be positive")
	}
	return nil
}

func validatePositiveInt(s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return errors.New("must be an integer")
	}
	if v <= 0 {
		return errors.New("must be positive")
	}
	return nil
}

func validateNonNegativeInt(s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return errors.New("must be an integer")
	}
	if v < 0 {
		return errors.New("must not be negative")
	}
	return nil
}
