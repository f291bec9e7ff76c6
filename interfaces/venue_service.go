package interfaces

import (
	"context"

	"gitlab.com/dsuarezf/crzybot/models"
)

// VenueService is the polled trading-simulator API. There is one
// authenticated session behind an implementation; it is safe for the two
// concurrent leg submissions of a parallel trade, which only read shared
// credentials.
type VenueService interface {
	GetCase(ctx context.Context) (models.Case, error)
	GetLimits(ctx context.Context) (models.LimitState, error)
	GetSecurities(ctx context.Context) ([]models.Security, error)
	GetSecurity(ctx context.Context, ticker string) (models.Security, error)
	GetOrderBook(ctx context.Context, ticker string, depth int) (models.OrderBook, error)
	GetOpenOrders(ctx context.Context, ticker string) (models.OpenOrders, error)
	SubmitOrder(ctx context.Context, request models.OrderRequest) (models.OrderConfirmation, error)
	CancelOrder(ctx context.Context, orderID int64) error
	CancelAllOrders(ctx context.Context) error
}
