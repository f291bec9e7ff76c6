package services

import (
	"time"

	"github.com/sdcoffey/big"
	"github.com/sdcoffey/techan"
	"gitlab.com/dsuarezf/crzybot/helpers"
	"gitlab.com/dsuarezf/crzybot/models"
)

var logger = helpers.Logger

// MarketService keeps a per-ticker time series of observed center prices,
// one candle per polling cycle. Only used for status reporting.
type MarketService struct {
	series map[string]*techan.TimeSeries
}

func NewMarketService() *MarketService {
	return &MarketService{
		series: make(map[string]*techan.TimeSeries),
	}
}

func (marketService *MarketService) RecordQuote(security models.Security) {
	if !security.HasValidQuote() {
		return
	}
	marketService.RecordPrice(security.Ticker, security.CenterPrice())
}

func (marketService *MarketService) RecordPrice(ticker string, price float64) {
	series := marketService.seriesFor(ticker)

	candle := techan.NewCandle(techan.NewTimePeriod(time.Now(), time.Second))
	decimalPrice := big.NewDecimal(price)
	candle.OpenPrice = decimalPrice
	candle.ClosePrice = decimalPrice
	candle.MaxPrice = decimalPrice
	candle.MinPrice = decimalPrice
	series.AddCandle(candle)
}

func (marketService *MarketService) LastPrice(ticker string) float64 {
	series := marketService.seriesFor(ticker)
	if len(series.Candles) == 0 {
		return 0
	}
	return series.LastCandle().ClosePrice.Float()
}

// PctVariation of the recorded price over the last s observations.
func (marketService *MarketService) PctVariation(ticker string, s int) float64 {
	series := marketService.seriesFor(ticker)
	if len(series.Candles) < 2 {
		return 0
	}
	if s >= len(series.Candles) {
		s = len(series.Candles) - 1
	}

	oldPrice := series.Candles[len(series.Candles)-1-s].ClosePrice.Float()
	newPrice := series.LastCandle().ClosePrice.Float()
	if newPrice == 0 {
		return 0
	}

	return 100 - (oldPrice * 100 / newPrice)
}

func (marketService *MarketService) seriesFor(ticker string) *techan.TimeSeries {
	series, ok := marketService.series[ticker]
	if !ok {
		series = techan.NewTimeSeries()
		marketService.series[ticker] = series
	}
	return series
}
