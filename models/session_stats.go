package models

import (
	"github.com/sdcoffey/big"
)

// SessionStats is the per-period bookkeeping. It is owned by the session
// lifecycle and reset exactly once per period rollover.
type SessionStats struct {
	Evaluations          int
	OpportunitiesFound   int
	OpportunitiesSkipped int
	TradesExecuted       int
	PairsSubmitted       int
	LegRiskEvents        int
	ExpectedProfit       big.Decimal
	ActualProfit         big.Decimal
	Realized             float64
	Unrealized           float64
}

func NewSessionStats() SessionStats {
	return SessionStats{
		ExpectedProfit: big.ZERO,
		ActualProfit:   big.ZERO,
	}
}

func (s *SessionStats) AddExpectedProfit(profit float64) {
	s.ExpectedProfit = s.ExpectedProfit.Add(big.NewDecimal(profit))
}

func (s *SessionStats) AddActualProfit(profit float64) {
	s.ActualProfit = s.ActualProfit.Add(big.NewDecimal(profit))
}

func (s *SessionStats) Reset() {
	*s = NewSessionStats()
}
