package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestChargePaysAverageDebt(t *testing.T) {
	throttle, slept := newRecordedThrottle(10)
	ctx := context.Background()

	// 20 instantaneous orders at 10/s owe 100ms each.
	for i := 0; i < 20; i++ {
		throttle.Charge(ctx, 0)
	}

	assert.Equal(t, 20, throttle.OrdersSubmitted())
	assert.InDelta(t, 2.0, slept.Seconds(), 1e-9)
}

func TestSlowCallEarnsCredit(t *testing.T) {
	throttle, slept := newRecordedThrottle(10)
	ctx := context.Background()

	// A 500ms round trip prepays four fast orders.
	throttle.Charge(ctx, 500*time.Millisecond)
	for i := 0; i < 4; i++ {
		throttle.Charge(ctx, 0)
	}

	assert.Equal(t, 5, throttle.OrdersSubmitted())
	assert.Equal(t, time.Duration(0), *slept)
	assert.InDelta(t, 0.0, throttle.AccumulatedDebt(), 1e-9)
}

func TestChargeBatchCountsEveryLeg(t *testing.T) {
	throttle, slept := newRecordedThrottle(10)
	ctx := context.Background()

	// Two legs in a 200ms batch: the wall clock covers both budgets.
	throttle.ChargeBatch(ctx, 200*time.Millisecond, 2)

	assert.Equal(t, 2, throttle.OrdersSubmitted())
	assert.Equal(t, time.Duration(0), *slept)
	assert.InDelta(t, 0.0, throttle.AccumulatedDebt(), 1e-9)
}

func TestChargeBatchFastBatchStillSleeps(t *testing.T) {
	throttle, slept := newRecordedThrottle(10)
	ctx := context.Background()

	throttle.ChargeBatch(ctx, 0, 2)

	// Both legs owe their full 100ms budget.
	assert.Equal(t, 2, throttle.OrdersSubmitted())
	assert.InDelta(t, 0.2, slept.Seconds(), 1e-9)
}

func TestReset(t *testing.T) {
	throttle, _ := newRecordedThrottle(10)
	ctx := context.Background()

	throttle.Charge(ctx, 0)
	throttle.Charge(ctx, 0)
	throttle.Reset()

	assert.Equal(t, 0, throttle.OrdersSubmitted())
	assert.Equal(t, 0.0, throttle.AccumulatedDebt())
}

func TestSleepWithContextHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	sleepWithContext(ctx, time.Second)

	assert.Less(t, time.Since(start), 500*time.Millisecond)
}
