package rit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.com/dsuarezf/crzybot/models"
)

func newTestService(handler http.HandlerFunc) (*RITService, *httptest.Server) {
	server := httptest.NewServer(handler)
	return NewRITServiceWithConfig(server.URL+"/v1", "test-key", 25000), server
}

func TestGetCaseSendsAPIKey(t *testing.T) {
	service, server := newTestService(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))
		assert.Equal(t, "/v1/case", r.URL.Path)
		w.Write([]byte(`{"name":"CRZY Case","period":2,"tick":34,"status":"ACTIVE"}`))
	})
	defer server.Close()

	currentCase, err := service.GetCase(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 2, currentCase.Period)
	assert.Equal(t, 34, currentCase.Tick)
	assert.True(t, currentCase.IsActive())
}

func TestGetCaseAuthFault(t *testing.T) {
	service, server := newTestService(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	defer server.Close()

	_, err := service.GetCase(context.Background())

	assert.ErrorIs(t, err, models.ErrAuthFault)
}

func TestGetLimitsPicksStockEntry(t *testing.T) {
	service, server := newTestService(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"name":"LIMIT-OTHER","gross":1,"net":1,"gross_limit":10,"net_limit":10},
			{"name":"LIMIT-STOCK","gross":20000,"net":-15000,"gross_limit":25000,"net_limit":25000}
		]`))
	})
	defer server.Close()

	limits, err := service.GetLimits(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, "LIMIT-STOCK", limits.Name)
	assert.Equal(t, 5000.0, limits.RemainingCapacity())
}

func TestGetLimitsFallsBackToConfiguredLimit(t *testing.T) {
	service, server := newTestService(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	defer server.Close()

	limits, err := service.GetLimits(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 25000.0, limits.GrossLimit)
	assert.Equal(t, 25000.0, limits.RemainingCapacity())
}

func TestSubmitOrderPostsQueryParameters(t *testing.T) {
	service, server := newTestService(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)
		query := r.URL.Query()
		assert.Equal(t, "CRZY_M", query.Get("ticker"))
		assert.Equal(t, "MARKET", query.Get("type"))
		assert.Equal(t, "500", query.Get("quantity"))
		assert.Equal(t, "BUY", query.Get("action"))
		assert.Empty(t, query.Get("price"))
		w.Write([]byte(`{"order_id":1234,"ticker":"CRZY_M","quantity":500,"quantity_filled":500,"vwap":9.98,"status":"TRANSACTED"}`))
	})
	defer server.Close()

	confirmation, err := service.SubmitOrder(context.Background(), models.OrderRequest{
		Ticker:   "CRZY_M",
		Type:     models.OrderTypeMarket,
		Quantity: 500,
		Action:   models.SideTypeBuy,
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(1234), confirmation.OrderID)
	assert.Equal(t, 500.0, confirmation.QuantityFilled)
	assert.InDelta(t, 9.98, confirmation.VWAP, 1e-9)
}

func TestSubmitLimitOrderCarriesPrice(t *testing.T) {
	service, server := newTestService(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "LIMIT", r.URL.Query().Get("type"))
		assert.Equal(t, "10.01", r.URL.Query().Get("price"))
		w.Write([]byte(`{"order_id":1,"status":"OPEN"}`))
	})
	defer server.Close()

	_, err := service.SubmitOrder(context.Background(), models.OrderRequest{
		Ticker:   "ALGO",
		Type:     models.OrderTypeLimit,
		Quantity: 100,
		Action:   models.SideTypeSell,
		Price:    10.01,
	})

	assert.NoError(t, err)
}

func TestSubmitOrderRateLimited(t *testing.T) {
	service, server := newTestService(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"wait":1.5}`))
	})
	defer server.Close()

	_, err := service.SubmitOrder(context.Background(), models.OrderRequest{
		Ticker:   "CRZY_M",
		Type:     models.OrderTypeMarket,
		Quantity: 500,
		Action:   models.SideTypeBuy,
	})

	var rateLimit *models.RateLimitError
	assert.ErrorAs(t, err, &rateLimit)
	assert.Equal(t, 1.5, rateLimit.Wait)
}

func TestSubmitOrderRejected(t *testing.T) {
	service, server := newTestService(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":"INSUFFICIENT","message":"not enough shares"}`))
	})
	defer server.Close()

	_, err := service.SubmitOrder(context.Background(), models.OrderRequest{
		Ticker:   "CRZY_M",
		Type:     models.OrderTypeMarket,
		Quantity: 500,
		Action:   models.SideTypeSell,
	})

	var rejected *models.OrderRejectedError
	assert.ErrorAs(t, err, &rejected)
	assert.Equal(t, http.StatusBadRequest, rejected.StatusCode)
	assert.Equal(t, "not enough shares", rejected.Message)
}

func TestGetOpenOrdersFiltersAndSplits(t *testing.T) {
	service, server := newTestService(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "OPEN", r.URL.Query().Get("status"))
		w.Write([]byte(`[
			{"order_id":1,"ticker":"ALGO","action":"BUY","price":9.95,"quantity":1000,"quantity_filled":400},
			{"order_id":2,"ticker":"ALGO","action":"SELL","price":10.05,"quantity":1000,"quantity_filled":0},
			{"order_id":3,"ticker":"OTHER","action":"BUY","price":5.00,"quantity":100,"quantity_filled":0}
		]`))
	})
	defer server.Close()

	open, err := service.GetOpenOrders(context.Background(), "ALGO")

	assert.NoError(t, err)
	assert.Len(t, open.Buys, 1)
	assert.Len(t, open.Sells, 1)
	assert.Equal(t, int64(1), open.Buys[0].OrderID)
	assert.Equal(t, 600.0, open.Buys[0].Remaining())
	assert.Equal(t, 600.0, open.BuyVolume())
	assert.Equal(t, 1000.0, open.SellVolume())
}

func TestGetOrderBook(t *testing.T) {
	service, server := newTestService(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/securities/book", r.URL.Path)
		assert.Equal(t, "CRZY_M", r.URL.Query().Get("ticker"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		w.Write([]byte(`{
			"bids":[{"price":9.95,"quantity":500,"quantity_filled":100}],
			"asks":[{"price":10.05,"quantity":300,"quantity_filled":0}]
		}`))
	})
	defer server.Close()

	book, err := service.GetOrderBook(context.Background(), "CRZY_M", 20)

	assert.NoError(t, err)
	assert.True(t, book.HasBothSides())
	price, available, ok := book.Bids.BestLevel()
	assert.True(t, ok)
	assert.Equal(t, 9.95, price)
	assert.Equal(t, 400.0, available)
}

func TestCancelOrder(t *testing.T) {
	service, server := newTestService(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/v1/orders/42", r.URL.Path)
		w.Write([]byte(`{"success":true}`))
	})
	defer server.Close()

	assert.NoError(t, service.CancelOrder(context.Background(), 42))
}

func TestCancelAllOrders(t *testing.T) {
	service, server := newTestService(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/commands/cancel", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("all"))
		w.Write([]byte(`{"cancelled_order_ids":[]}`))
	})
	defer server.Close()

	assert.NoError(t, service.CancelAllOrders(context.Background()))
}
