package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVWAPForQuantityWalksLevels(t *testing.T) {
	asks := BookSide{
		{Price: 10.00, Quantity: 5},
		{Price: 10.50, Quantity: 10},
	}

	vwap, filled, totalCost := asks.VWAPForQuantity(8)

	assert.Equal(t, 8.0, filled)
	assert.InDelta(t, 81.5, totalCost, 1e-9)
	assert.InDelta(t, 81.5/8, vwap, 1e-9)
}

func TestVWAPForQuantityCostMatchesFill(t *testing.T) {
	bids := BookSide{
		{Price: 20.10, Quantity: 300, QuantityFilled: 50},
		{Price: 20.05, Quantity: 200},
		{Price: 19.90, Quantity: 1000, QuantityFilled: 400},
	}

	vwap, filled, totalCost := bids.VWAPForQuantity(700)

	assert.Equal(t, 700.0, filled)
	assert.InDelta(t, filled*vwap, totalCost, 1e-6)
}

func TestVWAPForQuantityExhaustsThinBook(t *testing.T) {
	asks := BookSide{
		{Price: 10.00, Quantity: 5},
		{Price: 10.50, Quantity: 10},
	}

	vwap, filled, totalCost := asks.VWAPForQuantity(100)

	assert.Equal(t, 15.0, filled)
	assert.InDelta(t, 5*10.00+10*10.50, totalCost, 1e-9)
	assert.InDelta(t, totalCost/15, vwap, 1e-9)
}

func TestVWAPForQuantityNoLiquidity(t *testing.T) {
	vwap, filled, totalCost := BookSide{}.VWAPForQuantity(100)
	assert.Equal(t, 0.0, vwap)
	assert.Equal(t, 0.0, filled)
	assert.Equal(t, 0.0, totalCost)

	exhausted := BookSide{{Price: 10, Quantity: 100, QuantityFilled: 100}}
	vwap, filled, totalCost = exhausted.VWAPForQuantity(50)
	assert.Equal(t, 0.0, vwap)
	assert.Equal(t, 0.0, filled)
	assert.Equal(t, 0.0, totalCost)
}

func TestVWAPForQuantitySkipsOverfilledLevels(t *testing.T) {
	asks := BookSide{
		{Price: 10.00, Quantity: 100, QuantityFilled: 120},
		{Price: 10.10, Quantity: 50},
	}

	vwap, filled, _ := asks.VWAPForQuantity(30)

	assert.Equal(t, 30.0, filled)
	assert.InDelta(t, 10.10, vwap, 1e-9)
}

func TestAvailableNeverNegative(t *testing.T) {
	level := PriceLevel{Price: 10, Quantity: 100, QuantityFilled: 150}
	assert.Equal(t, 0.0, level.Available())
}

func TestBestLevel(t *testing.T) {
	bids := BookSide{
		{Price: 9.95, Quantity: 200, QuantityFilled: 50},
		{Price: 9.90, Quantity: 500},
	}

	price, available, ok := bids.BestLevel()
	assert.True(t, ok)
	assert.Equal(t, 9.95, price)
	assert.Equal(t, 150.0, available)

	_, _, ok = BookSide{}.BestLevel()
	assert.False(t, ok)
}

func TestRemainingCapacity(t *testing.T) {
	limits := LimitState{Gross: 20000, Net: -15000, GrossLimit: 25000, NetLimit: 25000}
	assert.Equal(t, 5000.0, limits.RemainingCapacity())

	breached := LimitState{Gross: 26000, Net: 0, GrossLimit: 25000, NetLimit: 25000}
	assert.Equal(t, 0.0, breached.RemainingCapacity())
}
