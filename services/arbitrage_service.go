package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gitlab.com/dsuarezf/crzybot/interfaces"
	"gitlab.com/dsuarezf/crzybot/models"
)

const (
	// DepthModeTop evaluates top-of-book quotes from /securities: one call,
	// less exact pricing. DepthModeVWAP walks the books instead; slower but
	// sized against real depth.
	DepthModeTop  = "top"
	DepthModeVWAP = "vwap"
)

// TradeRecorder persists executed trades.
type TradeRecorder interface {
	RecordTrade(period int, tick int, opportunity models.Opportunity, outcome string, filledQuantity float64, actualProfit float64)
}

// ArbitrageService runs one detection/execution cycle per poll between two
// listings of the same instrument.
type ArbitrageService struct {
	venue    interfaces.VenueService
	detector *Detector
	engine   *ExecutionEngine
	market   *MarketService
	stats    *models.SessionStats
	recorder TradeRecorder

	tickerMain string
	tickerAlt  string
	depthMode  string
	bookDepth  int
}

func NewArbitrageService(venue interfaces.VenueService, detector *Detector, engine *ExecutionEngine, market *MarketService, stats *models.SessionStats, tickerMain string, tickerAlt string, depthMode string, bookDepth int) *ArbitrageService {
	if bookDepth <= 0 {
		bookDepth = 20
	}
	return &ArbitrageService{
		venue:      venue,
		detector:   detector,
		engine:     engine,
		market:     market,
		stats:      stats,
		tickerMain: tickerMain,
		tickerAlt:  tickerAlt,
		depthMode:  depthMode,
		bookDepth:  bookDepth,
	}
}

func (s *ArbitrageService) SetTradeRecorder(recorder TradeRecorder) {
	s.recorder = recorder
}

func (s *ArbitrageService) Cycle(ctx context.Context, currentCase models.Case) error {
	limitState, err := s.venue.GetLimits(ctx)
	if err != nil {
		return err
	}

	remainingCapacity := limitState.RemainingCapacity()
	if remainingCapacity <= 0 {
		logger.Warnln(fmt.Sprintf("⚠️ Position limit reached (Tick %d). Waiting...", currentCase.Tick))
		sleepWithContext(ctx, time.Second)
		return nil
	}

	var evaluation Evaluation
	if s.depthMode == DepthModeVWAP {
		evaluation, err = s.evaluateBooks(ctx, remainingCapacity)
	} else {
		evaluation, err = s.evaluateQuotes(ctx, remainingCapacity)
	}
	if errors.Is(err, models.ErrStaleQuote) {
		// Not scored as an evaluation.
		sleepWithContext(ctx, 100*time.Millisecond)
		return nil
	}
	if err != nil {
		return err
	}

	s.stats.Evaluations++

	if evaluation.Skipped {
		s.stats.OpportunitiesSkipped++
		logger.Debugln(fmt.Sprintf("⏭️ [Tick %3d] Evaluation #%d: opportunity below threshold (skipped)",
			currentCase.Tick, s.stats.Evaluations))
		return nil
	}

	if evaluation.Opportunity == nil {
		if s.stats.Evaluations%20 == 0 {
			logger.Infoln(fmt.Sprintf("[Tick %3d] Evaluation #%d: no arbitrage (%s %+.2f%%, %s %+.2f%%)",
				currentCase.Tick, s.stats.Evaluations,
				s.tickerMain, s.market.PctVariation(s.tickerMain, 20),
				s.tickerAlt, s.market.PctVariation(s.tickerAlt, 20)))
		}
		return nil
	}

	s.stats.OpportunitiesFound++

	result, err := s.engine.ExecuteOpportunity(ctx, *evaluation.Opportunity)
	if err != nil {
		return err
	}

	if s.recorder != nil {
		s.recorder.RecordTrade(currentCase.Period, currentCase.Tick, *evaluation.Opportunity,
			result.Outcome.String(), result.FilledQuantity(), result.ActualProfit())
	}

	return nil
}

// Flush has nothing of its own to report; the session prints the period
// statistics.
func (s *ArbitrageService) Flush(ctx context.Context, period int) {
}

// evaluateQuotes feeds the detector from /securities: a single call covers
// both tickers and the realized P&L.
func (s *ArbitrageService) evaluateQuotes(ctx context.Context, remainingCapacity float64) (Evaluation, error) {
	securities, err := s.venue.GetSecurities(ctx)
	if err != nil {
		return Evaluation{}, err
	}

	var main, alt *models.Security
	realized := 0.0
	for i := range securities {
		switch securities[i].Ticker {
		case s.tickerMain:
			main = &securities[i]
			realized += securities[i].Realized
		case s.tickerAlt:
			alt = &securities[i]
			realized += securities[i].Realized
		}
	}

	if main == nil || alt == nil {
		return Evaluation{}, models.ErrStaleQuote
	}

	// Realized P&L summed over both listings, as the venue reports it.
	s.stats.Realized = realized

	s.market.RecordQuote(*main)
	s.market.RecordQuote(*alt)

	return s.detector.EvaluateQuotes(*main, *alt, remainingCapacity)
}

func (s *ArbitrageService) evaluateBooks(ctx context.Context, remainingCapacity float64) (Evaluation, error) {
	bookMain, err := s.venue.GetOrderBook(ctx, s.tickerMain, s.bookDepth)
	if err != nil {
		return Evaluation{}, err
	}
	bookAlt, err := s.venue.GetOrderBook(ctx, s.tickerAlt, s.bookDepth)
	if err != nil {
		return Evaluation{}, err
	}

	if bidPrice, _, ok := bookMain.Bids.BestLevel(); ok {
		if askPrice, _, askOk := bookMain.Asks.BestLevel(); askOk {
			s.market.RecordPrice(s.tickerMain, askPrice-(askPrice-bidPrice)/2)
		}
	}
	if bidPrice, _, ok := bookAlt.Bids.BestLevel(); ok {
		if askPrice, _, askOk := bookAlt.Asks.BestLevel(); askOk {
			s.market.RecordPrice(s.tickerAlt, askPrice-(askPrice-bidPrice)/2)
		}
	}

	return s.detector.EvaluateBooks(s.tickerMain, s.tickerAlt, bookMain, bookAlt, remainingCapacity)
}
