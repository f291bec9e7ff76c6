package database

import (
	"os"

	"github.com/joho/godotenv"
	database "gitlab.com/dsuarezf/crzybot/database/models"
	"gitlab.com/dsuarezf/crzybot/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// DBService optionally records trades and period summaries for later
// inspection. It is write-only observability: nothing in the trading path
// reads it back.
type DBService struct {
	DB *gorm.DB
}

func NewDBService(dbHost string, dbPort string, dbName string, dbUser string, dbPass string) (*DBService, error) {
	dsn := dbUser + ":" + dbPass + "@tcp(" + dbHost + ":" + dbPort + ")/" + dbName + "?charset=utf8mb4&parseTime=True&loc=Local"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	dbs := &DBService{
		DB: db,
	}

	err = dbs.DB.AutoMigrate(&database.Trade{}, &database.PeriodSummary{})
	if err != nil {
		return nil, err
	}

	return dbs, nil
}

func init() {
	cwd, _ := os.Getwd()
	_ = godotenv.Load(cwd + "/conf.env")
}

func (dbs *DBService) RecordTrade(period int, tick int, opportunity models.Opportunity, outcome string, filledQuantity float64, actualProfit float64) {
	dbs.DB.Create(&database.Trade{
		Period:         period,
		Tick:           tick,
		BuyTicker:      opportunity.BuyTicker,
		SellTicker:     opportunity.SellTicker,
		Quantity:       opportunity.Quantity,
		BuyPrice:       opportunity.BuyPrice,
		SellPrice:      opportunity.SellPrice,
		ExpectedProfit: opportunity.ExpectedProfit(),
		FilledQuantity: filledQuantity,
		ActualProfit:   actualProfit,
		Outcome:        outcome,
	})
}

func (dbs *DBService) RecordPeriodSummary(period int, stats models.SessionStats, ordersSubmitted int) {
	dbs.DB.Create(&database.PeriodSummary{
		Period:               period,
		Evaluations:          stats.Evaluations,
		OpportunitiesFound:   stats.OpportunitiesFound,
		OpportunitiesSkipped: stats.OpportunitiesSkipped,
		TradesExecuted:       stats.TradesExecuted,
		PairsSubmitted:       stats.PairsSubmitted,
		LegRiskEvents:        stats.LegRiskEvents,
		OrdersSubmitted:      ordersSubmitted,
		ExpectedProfit:       stats.ExpectedProfit.Float(),
		ActualProfit:         stats.ActualProfit.Float(),
		RealizedProfit:       stats.Realized,
	})
}
