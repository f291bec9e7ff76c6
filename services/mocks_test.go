package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gitlab.com/dsuarezf/crzybot/models"
)

// mockVenue is a scripted venue. GetCase walks the cases slice and then
// keeps returning the last entry (or caseErr, when set).
type mockVenue struct {
	mu sync.Mutex

	cases     []models.Case
	caseErr   error
	caseIndex int

	limits     models.LimitState
	securities []models.Security
	books      map[string]models.OrderBook
	openOrders models.OpenOrders

	submitFn func(request models.OrderRequest) (models.OrderConfirmation, error)

	submitted     []models.OrderRequest
	cancelled     []int64
	cancelAlls    int
	securityCalls int
}

func (v *mockVenue) GetCase(ctx context.Context) (models.Case, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.caseIndex < len(v.cases) {
		currentCase := v.cases[v.caseIndex]
		v.caseIndex++
		return currentCase, nil
	}
	if v.caseErr != nil {
		return models.Case{}, v.caseErr
	}
	if len(v.cases) > 0 {
		return v.cases[len(v.cases)-1], nil
	}
	return models.Case{}, nil
}

func (v *mockVenue) GetLimits(ctx context.Context) (models.LimitState, error) {
	return v.limits, nil
}

func (v *mockVenue) GetSecurities(ctx context.Context) ([]models.Security, error) {
	return v.securities, nil
}

func (v *mockVenue) GetSecurity(ctx context.Context, ticker string) (models.Security, error) {
	v.mu.Lock()
	v.securityCalls++
	v.mu.Unlock()

	for _, security := range v.securities {
		if security.Ticker == ticker {
			return security, nil
		}
	}
	return models.Security{}, fmt.Errorf("security %s not found", ticker)
}

func (v *mockVenue) GetOrderBook(ctx context.Context, ticker string, depth int) (models.OrderBook, error) {
	return v.books[ticker], nil
}

func (v *mockVenue) GetOpenOrders(ctx context.Context, ticker string) (models.OpenOrders, error) {
	return v.openOrders, nil
}

func (v *mockVenue) SubmitOrder(ctx context.Context, request models.OrderRequest) (models.OrderConfirmation, error) {
	v.mu.Lock()
	v.submitted = append(v.submitted, request)
	orderID := int64(len(v.submitted))
	v.mu.Unlock()

	if v.submitFn != nil {
		return v.submitFn(request)
	}

	return models.OrderConfirmation{
		OrderID:        orderID,
		Ticker:         request.Ticker,
		Type:           request.Type,
		Action:         request.Action,
		Quantity:       request.Quantity,
		QuantityFilled: request.Quantity,
		VWAP:           request.Price,
		Price:          request.Price,
		Status:         models.OrderStatusTypeTransacted,
	}, nil
}

func (v *mockVenue) CancelOrder(ctx context.Context, orderID int64) error {
	v.mu.Lock()
	v.cancelled = append(v.cancelled, orderID)
	v.mu.Unlock()
	return nil
}

func (v *mockVenue) CancelAllOrders(ctx context.Context) error {
	v.mu.Lock()
	v.cancelAlls++
	v.mu.Unlock()
	return nil
}

func (v *mockVenue) submittedOrders() []models.OrderRequest {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]models.OrderRequest(nil), v.submitted...)
}

// newRecordedThrottle swaps the throttle's sleep for a recorder so tests
// observe the debt being paid without actually waiting it out.
func newRecordedThrottle(ordersPerSecond float64) (*RateThrottle, *time.Duration) {
	slept := new(time.Duration)
	throttle := NewRateThrottle(ordersPerSecond)
	throttle.sleep = func(ctx context.Context, d time.Duration) {
		*slept += d
	}
	return throttle, slept
}
