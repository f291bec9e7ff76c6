package arbitrage

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"gitlab.com/dsuarezf/crzybot/database"
	"gitlab.com/dsuarezf/crzybot/helpers"
	"gitlab.com/dsuarezf/crzybot/models"
	"gitlab.com/dsuarezf/crzybot/providers/rit"
	"gitlab.com/dsuarezf/crzybot/services"
)

type Bot struct {
}

func init() {
	cwd, _ := os.Getwd()
	_ = godotenv.Load(cwd + "/conf.env")
}

func (b *Bot) Run(c *cli.Context) error {
	discipline := c.String("discipline")
	if discipline == "" {
		discipline = helpers.GetEnvString("discipline", "burst")
	}
	depthMode := c.String("depth")
	if depthMode == "" {
		depthMode = helpers.GetEnvString("depthMode", services.DepthModeTop)
	}

	tickerMain := helpers.GetEnvString("tickerMain", "CRZY_M")
	tickerAlt := helpers.GetEnvString("tickerAlt", "CRZY_A")
	orderLimit := helpers.GetEnvFloat("orderLimit", 10)
	maxOrderSize := helpers.GetEnvFloat("maxOrderSize", 10000)
	positionLimit := helpers.GetEnvFloat("positionLimit", 25000)
	minSpread := helpers.GetEnvFloat("minSpread", 0)
	minProfit := helpers.GetEnvFloat("minProfit", 0)
	bookDepth := helpers.GetEnvInt("bookDepth", 20)
	pollInterval := helpers.GetEnvDuration("pollInterval", 20*time.Millisecond)
	inactiveSleep := helpers.GetEnvDuration("inactiveSleep", 500*time.Millisecond)

	strategy, err := services.NewExecutionStrategy(discipline)
	if err != nil {
		return err
	}

	venue := rit.NewRITService()
	throttle := services.NewRateThrottle(orderLimit)
	stats := models.NewSessionStats()
	detector := services.NewDetector(maxOrderSize, minSpread, minProfit)
	engine := services.NewExecutionEngine(venue, throttle, strategy, &stats)
	market := services.NewMarketService()
	arbitrageService := services.NewArbitrageService(venue, detector, engine, market, &stats,
		tickerMain, tickerAlt, depthMode, bookDepth)
	session := services.NewSession(venue, throttle, arbitrageService, &stats, pollInterval, inactiveSleep)

	if helpers.GetEnvBool("enableDatabaseRecording", false) {
		databaseService, err := database.NewDBService(os.Getenv("databaseHost"), os.Getenv("databasePort"),
			os.Getenv("databaseName"), os.Getenv("databaseUser"), os.Getenv("databasePassword"))
		if err != nil {
			return err
		}
		arbitrageService.SetTradeRecorder(databaseService)
		session.SetPeriodRecorder(databaseService)
	}

	helpers.Logger.Infoln("======================================================================")
	helpers.Logger.Infoln("🖖🏻 Arbitrage bot started")
	helpers.Logger.Infoln(fmt.Sprintf("Tickers: %s / %s", tickerMain, tickerAlt))
	helpers.Logger.Infoln(fmt.Sprintf("Position limit: ±%.0f shares (gross/net)", positionLimit))
	helpers.Logger.Infoln(fmt.Sprintf("Max order size: %.0f shares", maxOrderSize))
	helpers.Logger.Infoln(fmt.Sprintf("Rate limit: %.0f orders/second", orderLimit))
	helpers.Logger.Infoln(fmt.Sprintf("Execution discipline: %s | Depth mode: %s", strategy.Name(), depthMode))
	helpers.Logger.Infoln("======================================================================")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return session.Run(ctx)
}
