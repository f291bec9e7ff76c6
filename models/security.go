package models

// Security is one row of the /securities response: current quote plus the
// account's position and P&L on the ticker.
type Security struct {
	Ticker     string  `json:"ticker"`
	Position   float64 `json:"position"`
	Last       float64 `json:"last"`
	Bid        float64 `json:"bid"`
	BidSize    float64 `json:"bid_size"`
	Ask        float64 `json:"ask"`
	AskSize    float64 `json:"ask_size"`
	Realized   float64 `json:"realized"`
	Unrealized float64 `json:"unrealized"`
}

// HasValidQuote reports whether both sides are quoted. A zero bid or ask
// marks the quote stale: the evaluation cycle is skipped, not scored.
func (s *Security) HasValidQuote() bool {
	return s.Bid > 0 && s.Ask > 0
}

func (s *Security) Spread() float64 {
	return s.Ask - s.Bid
}

func (s *Security) CenterPrice() float64 {
	return s.Ask - s.Spread()/2
}
