package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gitlab.com/dsuarezf/crzybot/interfaces"
	"gitlab.com/dsuarezf/crzybot/models"
)

// CycleHandler is the trading logic the session drives while the case is
// active: the arbitrage cycle or the quote maintainer.
type CycleHandler interface {
	Cycle(ctx context.Context, currentCase models.Case) error
	// Flush reports and resets handler-owned state. Called once per period
	// end and once on shutdown.
	Flush(ctx context.Context, period int)
}

// PeriodRecorder persists a finished period's statistics.
type PeriodRecorder interface {
	RecordPeriodSummary(period int, stats models.SessionStats, ordersSubmitted int)
}

// Session owns the period/status state machine around the polling loop.
// Statistics and throttle state live exactly one period; the session is the
// only component that resets them.
type Session struct {
	venue    interfaces.VenueService
	throttle *RateThrottle
	handler  CycleHandler
	stats    *models.SessionStats
	recorder PeriodRecorder

	pollInterval  time.Duration
	inactiveSleep time.Duration

	lastPeriod        int
	waitingForRestart bool
}

func NewSession(venue interfaces.VenueService, throttle *RateThrottle, handler CycleHandler, stats *models.SessionStats, pollInterval time.Duration, inactiveSleep time.Duration) *Session {
	if inactiveSleep <= 0 {
		inactiveSleep = 500 * time.Millisecond
	}
	return &Session{
		venue:         venue,
		throttle:      throttle,
		handler:       handler,
		stats:         stats,
		pollInterval:  pollInterval,
		inactiveSleep: inactiveSleep,
	}
}

func (session *Session) SetPeriodRecorder(recorder PeriodRecorder) {
	session.recorder = recorder
}

// Run polls the case until shutdown or an auth fault. Either way the last
// period's statistics are reported exactly once before returning.
func (session *Session) Run(ctx context.Context) error {
	started, err := session.waitForCaseStart(ctx)
	if err != nil {
		return err
	}
	if !started {
		logger.Infoln("Shutdown before case started")
		return nil
	}

	logger.Infoln("Bot started")

	var runErr error
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		default:
		}

		currentCase, err := session.venue.GetCase(ctx)
		if err != nil {
			if errors.Is(err, models.ErrAuthFault) {
				runErr = err
				break loop
			}
			logger.Errorln(fmt.Sprintf("❌ Error polling case: %s", err.Error()))
			sleepWithContext(ctx, session.inactiveSleep)
			continue
		}

		if currentCase.Period != session.lastPeriod {
			if session.lastPeriod > 0 && !session.waitingForRestart {
				session.endPeriod(ctx, session.lastPeriod)
				// The new period has not run a cycle yet; it only becomes
				// reportable once it goes ACTIVE.
				session.waitingForRestart = true
			}
			session.lastPeriod = currentCase.Period
			logger.Infoln(fmt.Sprintf("Starting new period %d", currentCase.Period))
		}

		if !currentCase.IsActive() {
			if !session.waitingForRestart {
				// Status just left ACTIVE: the period is over.
				session.endPeriod(ctx, currentCase.Period)
				session.waitingForRestart = true
				logger.Infoln(fmt.Sprintf("Case is %s. Waiting for next period.", currentCase.Status))
			}
			sleepWithContext(ctx, session.inactiveSleep)
			continue
		}

		if session.waitingForRestart {
			session.waitingForRestart = false
			session.stats.Reset()
			session.throttle.Reset()
		}

		if err := session.handler.Cycle(ctx, currentCase); err != nil {
			if errors.Is(err, models.ErrAuthFault) {
				runErr = err
				break loop
			}
			logger.Errorln(fmt.Sprintf("❌ Cycle error: %s", err.Error()))
			sleepWithContext(ctx, session.inactiveSleep)
			continue
		}

		if session.pollInterval > 0 {
			sleepWithContext(ctx, session.pollInterval)
		}
	}

	// Final report, exactly once, even on manual shutdown.
	session.handler.Flush(ctx, session.lastPeriod)
	session.reportStats(session.lastPeriod, "FINAL")
	if runErr != nil {
		logger.Errorln(fmt.Sprintf("Session aborted: %s", runErr.Error()))
		return runErr
	}

	logger.Infoln("Bot manually stopped.")
	return nil
}

// waitForCaseStart polls until the case is ACTIVE with a moving (or just
// restarted) tick. Returns false on shutdown.
func (session *Session) waitForCaseStart(ctx context.Context) (bool, error) {
	logger.Infoln("⏳ Waiting for case to start...")

	lastTick := -1
	for {
		select {
		case <-ctx.Done():
			return false, nil
		default:
		}

		currentCase, err := session.venue.GetCase(ctx)
		if err != nil {
			if errors.Is(err, models.ErrAuthFault) {
				return false, err
			}
			logger.Errorln(fmt.Sprintf("Error checking case status: %s", err.Error()))
			sleepWithContext(ctx, 2*time.Second)
			continue
		}

		if currentCase.IsActive() {
			if currentCase.Tick > lastTick || currentCase.Tick == 0 {
				logger.Infoln(fmt.Sprintf("✅ Case is ACTIVE! Period %d, Tick %d", currentCase.Period, currentCase.Tick))
				session.lastPeriod = currentCase.Period
				return true, nil
			}
			logger.Infoln(fmt.Sprintf("Case ACTIVE but ticks not moving... Tick: %d", currentCase.Tick))
		} else {
			logger.Infoln(fmt.Sprintf("Case status: %s, waiting...", currentCase.Status))
		}

		lastTick = currentCase.Tick
		sleepWithContext(ctx, 500*time.Millisecond)
	}
}

func (session *Session) endPeriod(ctx context.Context, period int) {
	session.handler.Flush(ctx, period)
	session.reportStats(period, "COMPLETED")
	session.stats.Reset()
	session.throttle.Reset()
}

func (session *Session) reportStats(period int, label string) {
	logger.Infoln("======================================================================")
	logger.Infoln(fmt.Sprintf("   PERIOD %d %s - Statistics:", period, label))
	logger.Infoln(fmt.Sprintf("   Evaluations: %d", session.stats.Evaluations))
	logger.Infoln(fmt.Sprintf("   Opportunities found: %d", session.stats.OpportunitiesFound))
	logger.Infoln(fmt.Sprintf("   Opportunities skipped: %d", session.stats.OpportunitiesSkipped))
	logger.Infoln(fmt.Sprintf("   Trades executed: %d", session.stats.TradesExecuted))
	logger.Infoln(fmt.Sprintf("   Leg-risk events: %d", session.stats.LegRiskEvents))
	logger.Infoln(fmt.Sprintf("   Total orders submitted: %d", session.throttle.OrdersSubmitted()))
	logger.Infoln(fmt.Sprintf("   Expected total profit: $%.2f", session.stats.ExpectedProfit.Float()))
	logger.Infoln(fmt.Sprintf("   Actual trade profit: $%.2f", session.stats.ActualProfit.Float()))
	logger.Infoln(fmt.Sprintf("   Realized profit (venue): $%.2f", session.stats.Realized))
	logger.Infoln("======================================================================")

	if session.recorder != nil {
		session.recorder.RecordPeriodSummary(period, *session.stats, session.throttle.OrdersSubmitted())
	}
}
