package marketmaker

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
	ticker := c.String("ticker")
	if ticker == "" {
		ticker = helpers.GetEnvString("mmTicker", "ALGO")
	}

	orderLimit := helpers.GetEnvFloat("orderLimit", 10)
	pollInterval := helpers.GetEnvDuration("pollInterval", 100*time.Millisecond)
	inactiveSleep := helpers.GetEnvDuration("inactiveSleep", 500*time.Millisecond)

	config := services.QuoteMaintainerConfig{
		Ticker:               ticker,
		TargetSpread:         helpers.GetEnvFloat("mmTargetSpread", 0.02),
		MaxOrderSize:         helpers.GetEnvFloat("mmMaxOrderSize", 5000),
		PairsPerSide:         helpers.GetEnvInt("mmPairsPerSide", 5),
		RepriceCooldownTicks: helpers.GetEnvInt("mmRepriceCooldownTicks", 3),
		ForceRepriceTicks:    helpers.GetEnvInt("mmForceRepriceTicks", 6),
		SlippageBuffer:       helpers.GetEnvFloat("mmSlippageBuffer", 0.01),
		MinEdge:              helpers.GetEnvFloat("mmMinEdge", 0.01),
		TickIncrement:        helpers.GetEnvFloat("mmTickIncrement", 0.01),
		WarmupTicks:          helpers.GetEnvInt("mmWarmupTicks", 5),
		WinddownTick:         helpers.GetEnvInt("mmWinddownTick", 295),
		CancelOnFlush:        helpers.GetEnvBool("mmCancelOnFlush", false),
	}

	venue := rit.NewRITService()
	throttle := services.NewRateThrottle(orderLimit)
	stats := models.NewSessionStats()
	quoteMaintainer := services.NewQuoteMaintainer(venue, throttle, &stats, config)
	session := services.NewSession(venue, throttle, quoteMaintainer, &stats, pollInterval, inactiveSleep)

	if helpers.GetEnvBool("enableDatabaseRecording", false) {
		databaseService, err := database.NewDBService(os.Getenv("databaseHost"), os.Getenv("databasePort"),
			os.Getenv("databaseName"), os.Getenv("databaseUser"), os.Getenv("databasePassword"))
		if err != nil {
			return err
		}
		session.SetPeriodRecorder(databaseService)
	}

	helpers.Logger.Infoln("======================================================================")
	helpers.Logger.Infoln("🖖🏻 Market making bot started")
	helpers.Logger.Infoln(fmt.Sprintf("Ticker: %s", ticker))
	helpers.Logger.Infoln(fmt.Sprintf("Max order size: %.0f shares | Pairs per side: %d", config.MaxOrderSize, config.PairsPerSide))
	helpers.Logger.Infoln(fmt.Sprintf("Spread target: $%.2f per side ($%.2f total)", config.TargetSpread, config.TargetSpread*2))
	helpers.Logger.Infoln(fmt.Sprintf("Rate limit: %.0f orders/second", orderLimit))
	helpers.Logger.Infoln("======================================================================")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return session.Run(ctx)
}
