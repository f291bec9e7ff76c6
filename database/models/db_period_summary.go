package database

import "gorm.io/gorm"

// PeriodSummary is the end-of-period statistics snapshot.
type PeriodSummary struct {
	gorm.Model
	Period               int
	Evaluations          int
	OpportunitiesFound   int
	OpportunitiesSkipped int
	TradesExecuted       int
	PairsSubmitted       int
	LegRiskEvents        int
	OrdersSubmitted      int
	ExpectedProfit       float64
	ActualProfit         float64
	RealizedProfit       float64
}
