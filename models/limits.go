package models

import (
	"math"
)

// LimitState is the venue-enforced gross/net position limit named LIMIT-STOCK.
type LimitState struct {
	Name       string  `json:"name"`
	Gross      float64 `json:"gross"`
	Net        float64 `json:"net"`
	GrossLimit float64 `json:"gross_limit"`
	NetLimit   float64 `json:"net_limit"`
}

// RemainingCapacity is how many more shares can be traded before either
// limit binds, clamped at zero.
func (l *LimitState) RemainingCapacity() float64 {
	remaining := math.Min(l.GrossLimit-l.Gross, l.NetLimit-math.Abs(l.Net))
	if remaining < 0 {
		return 0
	}
	return remaining
}
