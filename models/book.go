package models

import (
	"math"
)

type PriceLevel struct {
	Price          float64 `json:"price"`
	Quantity       float64 `json:"quantity"`
	QuantityFilled float64 `json:"quantity_filled"`
}

// Available is the unfilled quantity resting at the level, never negative.
func (l *PriceLevel) Available() float64 {
	available := l.Quantity - l.QuantityFilled
	if available < 0 {
		return 0
	}
	return available
}

// BookSide is ordered best-to-worst: bids descending, asks ascending.
type BookSide []PriceLevel

type OrderBook struct {
	Bids BookSide `json:"bids"`
	Asks BookSide `json:"asks"`
}

func (b *OrderBook) HasBothSides() bool {
	return len(b.Bids) > 0 && len(b.Asks) > 0
}

// VWAPForQuantity walks the side top-down, taking min(available, remaining)
// from each level until desiredQuantity is accumulated or the side is
// exhausted. filledQuantity == 0 means no liquidity.
func (side BookSide) VWAPForQuantity(desiredQuantity float64) (vwap float64, filledQuantity float64, totalCost float64) {
	if desiredQuantity <= 0 {
		return 0, 0, 0
	}

	for _, level := range side {
		available := level.Available()
		if available <= 0 {
			continue
		}

		quantityFromLevel := math.Min(available, desiredQuantity-filledQuantity)
		filledQuantity += quantityFromLevel
		totalCost += quantityFromLevel * level.Price

		if filledQuantity >= desiredQuantity {
			break
		}
	}

	if filledQuantity == 0 {
		return 0, 0, 0
	}

	return totalCost / filledQuantity, filledQuantity, totalCost
}

// BestLevel is the top-of-book shortcut: first level's price and available
// quantity. Cheaper than a full walk, less exact on thin books.
func (side BookSide) BestLevel() (price float64, available float64, ok bool) {
	if len(side) == 0 {
		return 0, 0, false
	}
	return side[0].Price, side[0].Available(), true
}
