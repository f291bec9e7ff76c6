package services

import (
	"context"
	"time"
)

// RateThrottle keeps the long-run order submission rate under the venue's
// orders-per-second cap. Each submitted order is charged with the time its
// round trip consumed; a slow call earns credit that offsets faster ones, so
// bursts are amortized against the budget instead of flat-delaying every
// order. The throttle never fails, it only sleeps.
type RateThrottle struct {
	ordersPerSecond float64
	ordersSubmitted int
	totalDebt       float64
	sleep           func(ctx context.Context, d time.Duration)
}

func NewRateThrottle(ordersPerSecond float64) *RateThrottle {
	if ordersPerSecond <= 0 {
		ordersPerSecond = 1
	}
	return &RateThrottle{
		ordersPerSecond: ordersPerSecond,
		sleep:           sleepWithContext,
	}
}

// Charge records one submitted order that took elapsed on the wire, then
// sleeps off the average accumulated debt if it is positive. Cancels are
// charged exactly like submissions.
func (t *RateThrottle) Charge(ctx context.Context, elapsed time.Duration) {
	debt := 1/t.ordersPerSecond - elapsed.Seconds()
	t.totalDebt += debt
	t.ordersSubmitted++

	avgDebt := t.totalDebt / float64(t.ordersSubmitted)
	if avgDebt > 0 {
		t.sleep(ctx, time.Duration(avgDebt*float64(time.Second)))
	}
}

// ChargeBatch accounts for legs orders sent within one concurrent batch:
// one charge carries the batch's wall-clock time, every further leg is
// charged with zero elapsed. Charges are applied sequentially, after the
// whole batch has resolved.
func (t *RateThrottle) ChargeBatch(ctx context.Context, elapsed time.Duration, legs int) {
	if legs <= 0 {
		return
	}
	t.Charge(ctx, elapsed)
	for i := 1; i < legs; i++ {
		t.Charge(ctx, 0)
	}
}

func (t *RateThrottle) OrdersSubmitted() int {
	return t.ordersSubmitted
}

// AccumulatedDebt is the total seconds still owed, for reporting.
func (t *RateThrottle) AccumulatedDebt() float64 {
	return t.totalDebt
}

// Reset clears the counters. Only the session lifecycle calls this, at
// period rollover.
func (t *RateThrottle) Reset() {
	t.ordersSubmitted = 0
	t.totalDebt = 0
}

func sleepWithContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
