package services

import (
	"math"

	"gitlab.com/dsuarezf/crzybot/models"
)

// Detector evaluates two venues' prices against the limits and produces at
// most one actionable opportunity per call.
type Detector struct {
	MaxOrderSize float64

	// MinSpread gates the quote-based evaluation, MinProfit the book-based
	// one. Zero disables the gate. A gated candidate is reported as skipped,
	// which is not the same as no opportunity.
	MinSpread float64
	MinProfit float64
}

// Evaluation is the outcome of one detector call.
type Evaluation struct {
	Opportunity *models.Opportunity
	Skipped     bool
}

func NewDetector(maxOrderSize float64, minSpread float64, minProfit float64) *Detector {
	return &Detector{
		MaxOrderSize: maxOrderSize,
		MinSpread:    minSpread,
		MinProfit:    minProfit,
	}
}

// EvaluateQuotes checks both crossing directions on top-of-book quotes.
// The two conditions cannot hold at once while each venue quotes bid <= ask,
// so there is no tie to break.
func (d *Detector) EvaluateQuotes(a models.Security, b models.Security, remainingCapacity float64) (Evaluation, error) {
	if !a.HasValidQuote() || !b.HasValidQuote() {
		return Evaluation{}, models.ErrStaleQuote
	}

	if a.Ask < b.Bid {
		return d.sizeQuoteOpportunity(a, b, remainingCapacity), nil
	}
	if b.Ask < a.Bid {
		return d.sizeQuoteOpportunity(b, a, remainingCapacity), nil
	}

	return Evaluation{}, nil
}

func (d *Detector) sizeQuoteOpportunity(buy models.Security, sell models.Security, remainingCapacity float64) Evaluation {
	quantity := math.Min(
		math.Min(buy.AskSize, sell.BidSize),
		math.Min(d.MaxOrderSize, remainingCapacity),
	)
	if quantity <= 0 {
		return Evaluation{}
	}

	if d.MinSpread > 0 && sell.Bid-buy.Ask < d.MinSpread {
		return Evaluation{Skipped: true}
	}

	return Evaluation{
		Opportunity: &models.Opportunity{
			BuyTicker:  buy.Ticker,
			SellTicker: sell.Ticker,
			Quantity:   quantity,
			BuyPrice:   buy.Ask,
			SellPrice:  sell.Bid,
		},
	}
}

// EvaluateBooks sizes both directions by walking the books' depth and keeps
// the direction with the strictly greater expected profit. Opportunity
// prices are the walk's VWAPs, not the best quotes.
func (d *Detector) EvaluateBooks(tickerA string, tickerB string, bookA models.OrderBook, bookB models.OrderBook, remainingCapacity float64) (Evaluation, error) {
	if !bookA.HasBothSides() || !bookB.HasBothSides() {
		return Evaluation{}, models.ErrStaleQuote
	}

	maxQuantity := math.Min(d.MaxOrderSize, remainingCapacity)
	if maxQuantity <= 0 {
		return Evaluation{}, nil
	}

	var best *models.Opportunity
	bestProfit := 0.0

	if opportunity := sizeBookDirection(tickerA, tickerB, bookA.Asks, bookB.Bids, maxQuantity); opportunity != nil {
		if profit := opportunity.ExpectedProfit(); profit > bestProfit {
			best = opportunity
			bestProfit = profit
		}
	}
	if opportunity := sizeBookDirection(tickerB, tickerA, bookB.Asks, bookA.Bids, maxQuantity); opportunity != nil {
		if profit := opportunity.ExpectedProfit(); profit > bestProfit {
			best = opportunity
			bestProfit = profit
		}
	}

	if best == nil {
		return Evaluation{}, nil
	}
	if bestProfit < d.MinProfit {
		return Evaluation{Skipped: true}, nil
	}

	return Evaluation{Opportunity: best}, nil
}

func sizeBookDirection(buyTicker string, sellTicker string, buySide models.BookSide, sellSide models.BookSide, maxQuantity float64) *models.Opportunity {
	buyVwap, buyQuantity, _ := buySide.VWAPForQuantity(maxQuantity)
	sellVwap, sellQuantity, _ := sellSide.VWAPForQuantity(maxQuantity)
	if buyQuantity == 0 || sellQuantity == 0 {
		return nil
	}

	quantity := math.Min(math.Min(buyQuantity, sellQuantity), maxQuantity)
	if quantity <= 0 || sellVwap <= buyVwap {
		return nil
	}

	return &models.Opportunity{
		BuyTicker:  buyTicker,
		SellTicker: sellTicker,
		Quantity:   quantity,
		BuyPrice:   buyVwap,
		SellPrice:  sellVwap,
	}
}
