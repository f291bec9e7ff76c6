package models

type SideType string

type OrderType string

type OrderStatusType string

const (
	SideTypeBuy  SideType = "BUY"
	SideTypeSell SideType = "SELL"

	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"

	OrderStatusTypeOpen       OrderStatusType = "OPEN"
	OrderStatusTypeTransacted OrderStatusType = "TRANSACTED"
	OrderStatusTypeCancelled  OrderStatusType = "CANCELLED"
)

// OrderRequest is what gets posted to /orders. Price is only meaningful for
// limit orders.
type OrderRequest struct {
	Ticker   string
	Type     OrderType
	Quantity float64
	Action   SideType
	Price    float64
}

// OrderConfirmation is the venue's response to an accepted order.
type OrderConfirmation struct {
	OrderID        int64           `json:"order_id"`
	Ticker         string          `json:"ticker"`
	Type           OrderType       `json:"type"`
	Action         SideType        `json:"action"`
	Quantity       float64         `json:"quantity"`
	QuantityFilled float64         `json:"quantity_filled"`
	VWAP           float64         `json:"vwap"`
	Price          float64         `json:"price"`
	Status         OrderStatusType `json:"status"`
	Tick           int             `json:"tick"`
}

// RestingOrder is an open limit order owned by the quote maintainer.
type RestingOrder struct {
	OrderID        int64
	Action         SideType
	Price          float64
	Quantity       float64
	QuantityFilled float64
}

// Remaining is the still-open volume of the order.
func (r *RestingOrder) Remaining() float64 {
	remaining := r.Quantity - r.QuantityFilled
	if remaining < 0 {
		return 0
	}
	return remaining
}

// OpenOrders splits the open orders on a ticker by side, best price first.
type OpenOrders struct {
	Buys  []RestingOrder
	Sells []RestingOrder
}

func (o *OpenOrders) BuyVolume() float64 {
	volume := 0.0
	for _, order := range o.Buys {
		volume += order.Remaining()
	}
	return volume
}

func (o *OpenOrders) SellVolume() float64 {
	volume := 0.0
	for _, order := range o.Sells {
		volume += order.Remaining()
	}
	return volume
}
