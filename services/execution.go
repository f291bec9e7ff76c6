package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gitlab.com/dsuarezf/crzybot/interfaces"
	"gitlab.com/dsuarezf/crzybot/models"
)

type TradeOutcome int

const (
	// TradeNoFill: neither leg confirmed, no exposure.
	TradeNoFill TradeOutcome = iota
	// TradeBothFilled: both legs confirmed, the trade counts as executed.
	TradeBothFilled
	// TradeBuyLegExposed: the BUY filled but the SELL failed, leaving an
	// open long position.
	TradeBuyLegExposed
	// TradeSellLegExposed: the SELL filled but the BUY failed, leaving an
	// open short position.
	TradeSellLegExposed
)

func (o TradeOutcome) String() string {
	switch o {
	case TradeBothFilled:
		return "BOTH_FILLED"
	case TradeBuyLegExposed:
		return "BUY_LEG_EXPOSED"
	case TradeSellLegExposed:
		return "SELL_LEG_EXPOSED"
	default:
		return "NO_FILL"
	}
}

type TradeResult struct {
	Outcome          TradeOutcome
	BuyConfirmation  *models.OrderConfirmation
	SellConfirmation *models.OrderConfirmation
}

// FilledQuantity is the matched quantity across both legs. Partial fills
// leave the difference exposed; only the overlap counts.
func (r *TradeResult) FilledQuantity() float64 {
	if r.BuyConfirmation == nil || r.SellConfirmation == nil {
		return 0
	}
	return math.Min(r.BuyConfirmation.QuantityFilled, r.SellConfirmation.QuantityFilled)
}

// ActualProfit is computed from the confirmations' VWAPs after the fact.
// Slippage against the expected profit is expected and observable here.
func (r *TradeResult) ActualProfit() float64 {
	if r.Outcome != TradeBothFilled {
		return 0
	}
	return (r.SellConfirmation.VWAP - r.BuyConfirmation.VWAP) * r.FilledQuantity()
}

// ExecutionStrategy is the leg submission discipline. The three disciplines
// trade rate-limit slack against the market-exposure window between legs.
type ExecutionStrategy interface {
	Name() string
	Execute(ctx context.Context, venue interfaces.VenueService, throttle *RateThrottle, opportunity models.Opportunity) (TradeResult, error)
}

// submitLeg sends one market order and measures its round trip. An auth
// fault is returned as-is so the session can abort; a rate-limited leg
// sleeps the server-specified wait and fails without retrying.
func submitLeg(ctx context.Context, venue interfaces.VenueService, ticker string, action models.SideType, quantity float64) (*models.OrderConfirmation, time.Duration, error) {
	request := models.OrderRequest{
		Ticker:   ticker,
		Type:     models.OrderTypeMarket,
		Quantity: quantity,
		Action:   action,
	}

	start := time.Now()
	confirmation, err := venue.SubmitOrder(ctx, request)
	elapsed := time.Since(start)
	if err != nil {
		return nil, elapsed, err
	}

	return &confirmation, elapsed, nil
}

func handleLegFailure(ctx context.Context, ticker string, action models.SideType, err error) error {
	if errors.Is(err, models.ErrAuthFault) {
		return err
	}

	var rateLimit *models.RateLimitError
	if errors.As(err, &rateLimit) {
		logger.Warnln(fmt.Sprintf("⚠️ %s %s rate limited, waiting %.2fs", action, ticker, rateLimit.Wait))
		sleepWithContext(ctx, rateLimit.WaitDuration())
		return nil
	}

	logger.Warnln(fmt.Sprintf("⚠️ %s %s failed: %s", action, ticker, err.Error()))
	return nil
}

// SequentialExecution submits the BUY, settles its throttle debt, then does
// the same for the SELL. Simplest discipline, widest window between legs.
type SequentialExecution struct{}

func (s *SequentialExecution) Name() string {
	return "sequential"
}

func (s *SequentialExecution) Execute(ctx context.Context, venue interfaces.VenueService, throttle *RateThrottle, opportunity models.Opportunity) (TradeResult, error) {
	buyConfirmation, buyElapsed, err := submitLeg(ctx, venue, opportunity.BuyTicker, models.SideTypeBuy, opportunity.Quantity)
	if err != nil {
		return TradeResult{}, handleLegFailure(ctx, opportunity.BuyTicker, models.SideTypeBuy, err)
	}
	throttle.Charge(ctx, buyElapsed)

	sellConfirmation, sellElapsed, err := submitLeg(ctx, venue, opportunity.SellTicker, models.SideTypeSell, opportunity.Quantity)
	if err != nil {
		result := TradeResult{Outcome: TradeBuyLegExposed, BuyConfirmation: buyConfirmation}
		return result, handleLegFailure(ctx, opportunity.SellTicker, models.SideTypeSell, err)
	}
	throttle.Charge(ctx, sellElapsed)

	return TradeResult{
		Outcome:          TradeBothFilled,
		BuyConfirmation:  buyConfirmation,
		SellConfirmation: sellConfirmation,
	}, nil
}

// BurstExecution sends the SELL right behind the BUY and pays the whole
// throttle debt only after both legs are out. The deferred sleep narrows the
// exposure window at the cost of momentary rate-limit slack.
type BurstExecution struct{}

func (s *BurstExecution) Name() string {
	return "burst"
}

func (s *BurstExecution) Execute(ctx context.Context, venue interfaces.VenueService, throttle *RateThrottle, opportunity models.Opportunity) (TradeResult, error) {
	buyConfirmation, buyElapsed, err := submitLeg(ctx, venue, opportunity.BuyTicker, models.SideTypeBuy, opportunity.Quantity)
	if err != nil {
		return TradeResult{}, handleLegFailure(ctx, opportunity.BuyTicker, models.SideTypeBuy, err)
	}

	// No throttle between the legs.
	sellConfirmation, sellElapsed, err := submitLeg(ctx, venue, opportunity.SellTicker, models.SideTypeSell, opportunity.Quantity)
	if err != nil {
		// The buy went through, its debt still has to be paid.
		throttle.Charge(ctx, buyElapsed)
		result := TradeResult{Outcome: TradeBuyLegExposed, BuyConfirmation: buyConfirmation}
		return result, handleLegFailure(ctx, opportunity.SellTicker, models.SideTypeSell, err)
	}

	slower := buyElapsed
	if sellElapsed > slower {
		slower = sellElapsed
	}
	throttle.ChargeBatch(ctx, slower, 2)

	return TradeResult{
		Outcome:          TradeBothFilled,
		BuyConfirmation:  buyConfirmation,
		SellConfirmation: sellConfirmation,
	}, nil
}

// ParallelExecution fans both legs out concurrently and awaits both before
// anything else happens. The batch is charged once with its wall-clock time
// and once with zero, applied sequentially after both legs resolve.
type ParallelExecution struct{}

func (s *ParallelExecution) Name() string {
	return "parallel"
}

type legOutcome struct {
	confirmation *models.OrderConfirmation
	err          error
}

func (s *ParallelExecution) Execute(ctx context.Context, venue interfaces.VenueService, throttle *RateThrottle, opportunity models.Opportunity) (TradeResult, error) {
	buyCh := make(chan legOutcome, 1)
	sellCh := make(chan legOutcome, 1)

	start := time.Now()
	go func() {
		confirmation, _, err := submitLeg(ctx, venue, opportunity.BuyTicker, models.SideTypeBuy, opportunity.Quantity)
		buyCh <- legOutcome{confirmation: confirmation, err: err}
	}()
	go func() {
		confirmation, _, err := submitLeg(ctx, venue, opportunity.SellTicker, models.SideTypeSell, opportunity.Quantity)
		sellCh <- legOutcome{confirmation: confirmation, err: err}
	}()

	buy := <-buyCh
	sell := <-sellCh
	elapsed := time.Since(start)

	if errors.Is(buy.err, models.ErrAuthFault) {
		return TradeResult{}, buy.err
	}
	if errors.Is(sell.err, models.ErrAuthFault) {
		return TradeResult{}, sell.err
	}

	// Both requests went out, both get charged.
	throttle.ChargeBatch(ctx, elapsed, 2)

	if buy.err != nil {
		_ = handleLegFailure(ctx, opportunity.BuyTicker, models.SideTypeBuy, buy.err)
	}
	if sell.err != nil {
		_ = handleLegFailure(ctx, opportunity.SellTicker, models.SideTypeSell, sell.err)
	}

	result := TradeResult{BuyConfirmation: buy.confirmation, SellConfirmation: sell.confirmation}
	switch {
	case buy.err == nil && sell.err == nil:
		result.Outcome = TradeBothFilled
	case buy.err == nil:
		result.Outcome = TradeBuyLegExposed
	case sell.err == nil:
		result.Outcome = TradeSellLegExposed
	default:
		result.Outcome = TradeNoFill
	}

	return result, nil
}

func NewExecutionStrategy(name string) (ExecutionStrategy, error) {
	switch name {
	case "sequential":
		return &SequentialExecution{}, nil
	case "burst":
		return &BurstExecution{}, nil
	case "parallel":
		return &ParallelExecution{}, nil
	default:
		return nil, fmt.Errorf("unknown execution discipline '%s'", name)
	}
}

// ExecutionEngine orchestrates a two-legged trade through the configured
// discipline and keeps the session's trade accounting.
type ExecutionEngine struct {
	venue    interfaces.VenueService
	throttle *RateThrottle
	strategy ExecutionStrategy
	stats    *models.SessionStats
}

func NewExecutionEngine(venue interfaces.VenueService, throttle *RateThrottle, strategy ExecutionStrategy, stats *models.SessionStats) *ExecutionEngine {
	return &ExecutionEngine{
		venue:    venue,
		throttle: throttle,
		strategy: strategy,
		stats:    stats,
	}
}

func (engine *ExecutionEngine) Strategy() ExecutionStrategy {
	return engine.strategy
}

// ExecuteOpportunity submits both legs. Expected profit is accumulated on
// dispatch; actual profit is post-hoc reporting and never feeds back into
// the executed/failed outcome. The returned error is fatal (auth fault).
func (engine *ExecutionEngine) ExecuteOpportunity(ctx context.Context, opportunity models.Opportunity) (TradeResult, error) {
	logger.Infoln(fmt.Sprintf("💡 Arbitrage opportunity: buy %.0f %s @ $%.2f, sell %s @ $%.2f, expected profit $%.2f",
		opportunity.Quantity, opportunity.BuyTicker, opportunity.BuyPrice,
		opportunity.SellTicker, opportunity.SellPrice, opportunity.ExpectedProfit()))

	engine.stats.AddExpectedProfit(opportunity.ExpectedProfit())

	result, err := engine.strategy.Execute(ctx, engine.venue, engine.throttle, opportunity)
	if err != nil {
		return result, err
	}

	switch result.Outcome {
	case TradeBothFilled:
		engine.stats.TradesExecuted++
		engine.stats.AddActualProfit(result.ActualProfit())
		logger.Infoln(fmt.Sprintf("✅ BUY  filled %.0f @ $%.2f on %s",
			result.BuyConfirmation.QuantityFilled, result.BuyConfirmation.VWAP, opportunity.BuyTicker))
		logger.Infoln(fmt.Sprintf("✅ SELL filled %.0f @ $%.2f on %s",
			result.SellConfirmation.QuantityFilled, result.SellConfirmation.VWAP, opportunity.SellTicker))
		logger.Infoln(fmt.Sprintf("Actual profit: $%.2f on %.0f matched shares", result.ActualProfit(), result.FilledQuantity()))
	case TradeBuyLegExposed:
		engine.stats.LegRiskEvents++
		logger.Warnln(fmt.Sprintf("❌ SELL leg failed: long %.0f %s exposed",
			result.BuyConfirmation.QuantityFilled, opportunity.BuyTicker))
	case TradeSellLegExposed:
		engine.stats.LegRiskEvents++
		logger.Warnln(fmt.Sprintf("❌ BUY leg failed: short %.0f %s exposed",
			result.SellConfirmation.QuantityFilled, opportunity.SellTicker))
	default:
		logger.Warnln("❌ Trade failed, no leg filled")
	}

	return result, nil
}
