package models

type CaseStatus string

const (
	CaseStatusActive  CaseStatus = "ACTIVE"
	CaseStatusPaused  CaseStatus = "PAUSED"
	CaseStatusStopped CaseStatus = "STOPPED"
)

// Case is the venue clock: one period runs from tick 0 until the case stops.
type Case struct {
	Name   string     `json:"name"`
	Period int        `json:"period"`
	Tick   int        `json:"tick"`
	Status CaseStatus `json:"status"`
}

func (c *Case) IsActive() bool {
	return c.Status == CaseStatusActive
}
