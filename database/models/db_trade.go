package database

import "gorm.io/gorm"

// Trade is one executed (or attempted) two-legged arbitrage trade.
type Trade struct {
	gorm.Model
	Period         int
	Tick           int
	BuyTicker      string
	SellTicker     string
	Quantity       float64
	BuyPrice       float64
	SellPrice      float64
	ExpectedProfit float64
	FilledQuantity float64
	ActualProfit   float64
	Outcome        string
}
