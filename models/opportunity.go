package models

// Opportunity is a sized two-legged trade: buy on one ticker, sell the same
// quantity on the other. It only exists while BuyPrice < SellPrice.
type Opportunity struct {
	BuyTicker  string
	SellTicker string
	Quantity   float64
	BuyPrice   float64
	SellPrice  float64
}

func (o *Opportunity) ExpectedProfit() float64 {
	return (o.SellPrice - o.BuyPrice) * o.Quantity
}
