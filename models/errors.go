package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrAuthFault is an API key mismatch (HTTP 401). Unrecoverable: the session
// reports final statistics and aborts.
var ErrAuthFault = errors.New("API key mismatch")

// ErrStaleQuote marks a zero or missing bid/ask. The cycle is skipped, not
// counted as an evaluation.
var ErrStaleQuote = errors.New("stale or missing quote")

// RateLimitError is an HTTP 429 on order submission. The caller must sleep
// the server-specified wait; the order is not retried automatically.
type RateLimitError struct {
	Wait float64 `json:"wait"`
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, wait %.2fs", e.Wait)
}

func (e *RateLimitError) WaitDuration() time.Duration {
	return time.Duration(e.Wait * float64(time.Second))
}

// OrderRejectedError is any other non-200 on order submission or cancel.
// The leg failed; it may leave an exposed position on the opposite leg.
type OrderRejectedError struct {
	StatusCode int
	Message    string
}

func (e *OrderRejectedError) Error() string {
	return fmt.Sprintf("order rejected (%d): %s", e.StatusCode, e.Message)
}
