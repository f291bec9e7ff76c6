package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gitlab.com/dsuarezf/crzybot/interfaces"
	"gitlab.com/dsuarezf/crzybot/models"
)

type QuoteState int

const (
	QuoteStateNoOrders QuoteState = iota
	QuoteStateBothOpen
	QuoteStateOneSideFilled
)

// QuoteMaintainerConfig holds the quoting parameters, all in venue units
// (prices in dollars, cooldowns in ticks).
type QuoteMaintainerConfig struct {
	Ticker               string
	TargetSpread         float64
	MaxOrderSize         float64
	PairsPerSide         int
	RepriceCooldownTicks int
	ForceRepriceTicks    int
	SlippageBuffer       float64
	MinEdge              float64
	TickIncrement        float64
	WarmupTicks          int
	WinddownTick         int
	CancelOnFlush        bool
}

// QuoteMaintainer keeps a symmetric pair of resting limit orders working a
// single instrument. When one side fills it waits out a cooldown, then
// chases the remaining side one tick at a time: after RepriceCooldownTicks
// only if the improved price still clears the slippage buffer, after
// ForceRepriceTicks unconditionally.
type QuoteMaintainer struct {
	venue    interfaces.VenueService
	throttle *RateThrottle
	stats    *models.SessionStats
	config   QuoteMaintainerConfig

	state             QuoteState
	oneSideFilledTick int
}

func NewQuoteMaintainer(venue interfaces.VenueService, throttle *RateThrottle, stats *models.SessionStats, config QuoteMaintainerConfig) *QuoteMaintainer {
	if config.PairsPerSide <= 0 {
		config.PairsPerSide = 1
	}
	if config.ForceRepriceTicks <= config.RepriceCooldownTicks {
		config.ForceRepriceTicks = config.RepriceCooldownTicks * 2
	}
	if config.TickIncrement <= 0 {
		config.TickIncrement = 0.01
	}
	return &QuoteMaintainer{
		venue:    venue,
		throttle: throttle,
		stats:    stats,
		config:   config,
	}
}

func (qm *QuoteMaintainer) State() QuoteState {
	return qm.state
}

func (qm *QuoteMaintainer) Cycle(ctx context.Context, currentCase models.Case) error {
	// Leave the open and the close alone.
	if currentCase.Tick <= qm.config.WarmupTicks ||
		(qm.config.WinddownTick > 0 && currentCase.Tick >= qm.config.WinddownTick) {
		sleepWithContext(ctx, 100*time.Millisecond)
		return nil
	}

	security, err := qm.venue.GetSecurity(ctx, qm.config.Ticker)
	if err != nil {
		return err
	}
	if !security.HasValidQuote() {
		sleepWithContext(ctx, 100*time.Millisecond)
		return nil
	}

	qm.stats.Realized = security.Realized
	qm.stats.Unrealized = security.Unrealized

	openOrders, err := qm.venue.GetOpenOrders(ctx, qm.config.Ticker)
	if err != nil {
		return err
	}

	buyVolume := openOrders.BuyVolume()
	sellVolume := openOrders.SellVolume()

	switch {
	case buyVolume == 0 && sellVolume == 0:
		qm.state = QuoteStateNoOrders
		return qm.maybeSubmitPairs(ctx, currentCase, security)

	case buyVolume == 0 || sellVolume == 0:
		if qm.state != QuoteStateOneSideFilled {
			qm.state = QuoteStateOneSideFilled
			qm.oneSideFilledTick = currentCase.Tick
			logger.Infoln(fmt.Sprintf("[Tick %3d] One side filled! Buys remaining: %.0f | Sells remaining: %.0f",
				currentCase.Tick, buyVolume, sellVolume))
		}
		return qm.maybeReprice(ctx, currentCase, security, openOrders)

	default:
		qm.state = QuoteStateBothOpen
		if currentCase.Tick%30 == 0 {
			logger.Infoln(fmt.Sprintf("[Tick %3d] Orders active | Pos: %.0f | P&L: $%.2f",
				currentCase.Tick, security.Position, security.Realized+security.Unrealized))
		}
		return nil
	}
}

// maybeSubmitPairs quotes both sides at the current best prices when the
// spread pays for the round trip.
func (qm *QuoteMaintainer) maybeSubmitPairs(ctx context.Context, currentCase models.Case, security models.Security) error {
	spread := security.Spread()
	if spread < qm.config.TargetSpread*2 {
		if currentCase.Tick%20 == 0 {
			logger.Infoln(fmt.Sprintf("[Tick %3d] Spread too tight: $%.2f < $%.2f",
				currentCase.Tick, spread, qm.config.TargetSpread*2))
		}
		return nil
	}

	logger.Infoln(fmt.Sprintf("[Tick %3d] Submitting market-making orders | Pos: %.0f | Spread: $%.2f",
		currentCase.Tick, security.Position, spread))

	legs := 0
	start := time.Now()
	for i := 0; i < qm.config.PairsPerSide; i++ {
		if _, err := qm.submitLimit(ctx, models.SideTypeSell, qm.config.MaxOrderSize, security.Ask); err != nil {
			return err
		}
		legs++
		if _, err := qm.submitLimit(ctx, models.SideTypeBuy, qm.config.MaxOrderSize, security.Bid); err != nil {
			return err
		}
		legs++
	}
	elapsed := time.Since(start)

	// The batch went out unthrottled; pay the debt for every leg now.
	qm.throttle.ChargeBatch(ctx, elapsed, legs)

	qm.stats.PairsSubmitted += qm.config.PairsPerSide
	qm.state = QuoteStateBothOpen
	logger.Infoln(fmt.Sprintf("✅ Submitted %d pairs: BUY @ $%.2f | SELL @ $%.2f",
		qm.config.PairsPerSide, security.Bid, security.Ask))

	return nil
}

func (qm *QuoteMaintainer) maybeReprice(ctx context.Context, currentCase models.Case, security models.Security, openOrders models.OpenOrders) error {
	ticksSinceFill := currentCase.Tick - qm.oneSideFilledTick

	if openOrders.SellVolume() == 0 && openOrders.BuyVolume() > 0 {
		// Asks are gone, bids remain: consider improving the bid.
		if len(openOrders.Buys) > 0 && openOrders.Buys[0].Price == security.Bid {
			return nil
		}
		if ticksSinceFill < qm.config.RepriceCooldownTicks {
			return nil
		}

		improvedPrice := security.Bid + qm.config.TickIncrement
		edge := security.Ask - improvedPrice - qm.config.SlippageBuffer
		if edge >= qm.config.MinEdge || ticksSinceFill >= qm.config.ForceRepriceTicks {
			logger.Infoln(fmt.Sprintf("[Tick %3d] Re-ordering BUY side at $%.2f", currentCase.Tick, improvedPrice))
			return qm.reprice(ctx, openOrders.Buys, improvedPrice, models.SideTypeBuy)
		}
		return nil
	}

	if openOrders.BuyVolume() == 0 && openOrders.SellVolume() > 0 {
		if len(openOrders.Sells) > 0 && openOrders.Sells[0].Price == security.Ask {
			return nil
		}
		if ticksSinceFill < qm.config.RepriceCooldownTicks {
			return nil
		}

		improvedPrice := security.Ask - qm.config.TickIncrement
		edge := improvedPrice - security.Bid - qm.config.SlippageBuffer
		if edge >= qm.config.MinEdge || ticksSinceFill >= qm.config.ForceRepriceTicks {
			logger.Infoln(fmt.Sprintf("[Tick %3d] Re-ordering SELL side at $%.2f", currentCase.Tick, improvedPrice))
			return qm.reprice(ctx, openOrders.Sells, improvedPrice, models.SideTypeSell)
		}
		return nil
	}

	return nil
}

// reprice cancels and resubmits the remaining orders at the improved price.
// Partial fills are resized to what is still open. Every cancel and every
// resubmission is charged like a new order.
func (qm *QuoteMaintainer) reprice(ctx context.Context, orders []models.RestingOrder, price float64, action models.SideType) error {
	legs := 0
	start := time.Now()
	for _, order := range orders {
		quantity := order.Quantity
		if order.QuantityFilled != 0 {
			quantity = order.Remaining()
		}
		if quantity <= 0 {
			continue
		}

		if err := qm.venue.CancelOrder(ctx, order.OrderID); err != nil {
			if errors.Is(err, models.ErrAuthFault) {
				return err
			}
			logger.Warnln(fmt.Sprintf("⚠️ Cancel of order %d failed: %s", order.OrderID, err.Error()))
			continue
		}
		legs++

		submitted, err := qm.submitLimit(ctx, action, quantity, price)
		if err != nil {
			return err
		}
		legs++
		if !submitted {
			// The cancel already went through: this volume is off the book
			// until a later cycle re-quotes it.
			logger.Warnln(fmt.Sprintf("⚠️ Replacement %s for %.0f shares not accepted, side left unquoted", action, quantity))
		}
	}
	elapsed := time.Since(start)

	qm.throttle.ChargeBatch(ctx, elapsed, legs)
	return nil
}

// submitLimit sends one limit order and reports whether the venue accepted
// it. Only an auth fault is returned as an error.
func (qm *QuoteMaintainer) submitLimit(ctx context.Context, action models.SideType, quantity float64, price float64) (bool, error) {
	request := models.OrderRequest{
		Ticker:   qm.config.Ticker,
		Type:     models.OrderTypeLimit,
		Quantity: quantity,
		Action:   action,
		Price:    price,
	}

	_, err := qm.venue.SubmitOrder(ctx, request)
	if err != nil {
		if errors.Is(err, models.ErrAuthFault) {
			return false, err
		}
		var rateLimit *models.RateLimitError
		if errors.As(err, &rateLimit) {
			logger.Warnln(fmt.Sprintf("⚠️ Rate limited! Waiting %.2fs...", rateLimit.Wait))
			sleepWithContext(ctx, rateLimit.WaitDuration())
			return false, nil
		}
		logger.Warnln(fmt.Sprintf("⚠️ %s limit order failed: %s", action, err.Error()))
		return false, nil
	}
	return true, nil
}

// Flush reports the final position and P&L for the period. Resting orders
// survive on the venue unless CancelOnFlush says otherwise.
func (qm *QuoteMaintainer) Flush(ctx context.Context, period int) {
	if qm.config.CancelOnFlush {
		if err := qm.venue.CancelAllOrders(ctx); err != nil {
			logger.Warnln(fmt.Sprintf("⚠️ Cancel-all on flush failed: %s", err.Error()))
		}
	}

	security, err := qm.venue.GetSecurity(ctx, qm.config.Ticker)
	if err != nil {
		logger.Warnln(fmt.Sprintf("⚠️ Could not fetch final position: %s", err.Error()))
	} else {
		logger.Infoln("======================================================================")
		logger.Infoln(fmt.Sprintf("   PERIOD %d QUOTING REPORT", period))
		logger.Infoln(fmt.Sprintf("   Pairs submitted: %d", qm.stats.PairsSubmitted))
		logger.Infoln(fmt.Sprintf("   Final position: %.0f", security.Position))
		logger.Infoln(fmt.Sprintf("   Realized P&L: $%.2f", security.Realized))
		logger.Infoln(fmt.Sprintf("   Unrealized P&L: $%.2f", security.Unrealized))
		logger.Infoln(fmt.Sprintf("   Total P&L: $%.2f", security.Realized+security.Unrealized))
		logger.Infoln("======================================================================")
	}

	qm.state = QuoteStateNoOrders
	qm.oneSideFilledTick = 0
}
