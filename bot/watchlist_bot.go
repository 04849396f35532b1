package bot

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	str2duration "github.com/xhit/go-str2duration/v2"
	"gitlab.com/aoterocom/PennyWatchBot/database"
	"gitlab.com/aoterocom/PennyWatchBot/helpers"
	"gitlab.com/aoterocom/PennyWatchBot/interfaces"
	"gitlab.com/aoterocom/PennyWatchBot/models"
	"gitlab.com/aoterocom/PennyWatchBot/notifications"
	"gitlab.com/aoterocom/PennyWatchBot/providers/paper"
	"gitlab.com/aoterocom/PennyWatchBot/services"
)

type Bot struct {
}

func init() {
	cwd, _ := os.Getwd()
	_ = godotenv.Load(cwd + "/conf.env")
}

// RunTrader wires the full stack from the environment and starts the
// polling loop.
func (b *Bot) RunTrader(c *cli.Context) error {
	trader, err := b.buildTrader(c)
	if err != nil {
		return err
	}
	trader.Start()
	return nil
}

// RunScore performs a single scoring pass over the ticker set and exits.
func (b *Bot) RunScore(c *cli.Context) error {
	trader, err := b.buildTrader(c)
	if err != nil {
		return err
	}
	trader.RunCycle()
	return nil
}

func (b *Bot) buildTrader(c *cli.Context) (*services.WatchlistTraderService, error) {
	tickersString := c.String("tickers")
	if tickersString == "" {
		tickersString = os.Getenv("tickers")
	}
	tickers := strings.Split(tickersString, ",")
	if tickers[0] == "" {
		return nil, fmt.Errorf("error: couldn't initialize bot. No tickers set")
	}

	dbPath := os.Getenv("databasePath")
	if dbPath == "" {
		dbPath = "trades.db"
	}
	databaseService, err := database.NewDBService(dbPath)
	if err != nil {
		return nil, err
	}

	pollInterval := 30 * time.Second
	if raw := os.Getenv("pollInterval"); raw != "" {
		parsed, err := str2duration.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("error: invalid pollInterval %q: %w", raw, err)
		}
		pollInterval = parsed
	}

	fees, err := feeScheduleFromEnv()
	if err != nil {
		return nil, err
	}

	orderQuantity := 1
	if raw := os.Getenv("orderQuantity"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			orderQuantity = v
		}
	}

	indicatorProvider := paper.NewPaperService()
	limits, err := services.LimitsFromEnv()
	if err != nil {
		return nil, err
	}
	riskGateService := services.NewRiskGateService(databaseService, limits)
	decisionEngine, err := services.NewDecisionEngineService(indicatorProvider, riskGateService, fees, orderQuantity)
	if err != nil {
		return nil, err
	}

	var notifier interfaces.Notifier
	telegramOutput, _ := strconv.ParseBool(os.Getenv("telegramOutput"))
	if telegramOutput {
		notifier = notifications.NewTelegramService(os.Getenv("telegramToken"), os.Getenv("telegramChatId"))
	}

	simulated, _ := strconv.ParseBool(os.Getenv("simulatedTrading"))

	helpers.Logger.Infoln(fmt.Sprintf("Watchlist: %s", strings.Join(tickers, ", ")))
	return services.NewWatchlistTraderService(decisionEngine, databaseService, indicatorProvider,
		indicatorProvider, notifier, tickers, pollInterval, simulated), nil
}

func feeScheduleFromEnv() (models.FeeSchedule, error) {
	fees := models.FeeSchedule{
		CommissionPerShare:  0.0049,
		CommissionMin:       0.99,
		PlatformFeePerShare: 0.005,
		PlatformFeeMin:      1.0,
		PlatformMaxRatio:    0.01,
	}

	assign := func(envVar string, target *float64) error {
		raw := os.Getenv(envVar)
		if raw == "" {
			return nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("error: invalid %s %q: %w", envVar, raw, err)
		}
		*target = v
		return nil
	}

	for envVar, target := range map[string]*float64{
		"commissionPerShare":  &fees.CommissionPerShare,
		"commissionMin":       &fees.CommissionMin,
		"platformFeePerShare": &fees.PlatformFeePerShare,
		"platformFeeMin":      &fees.PlatformFeeMin,
		"platformMaxRatio":    &fees.PlatformMaxRatio,
	} {
		if err := assign(envVar, target); err != nil {
			return fees, err
		}
	}

	if err := fees.Validate(); err != nil {
		return fees, err
	}
	return fees, nil
}
