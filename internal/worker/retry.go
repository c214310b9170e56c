package worker

import (
	"time"

	"github.com/auctionlab/bidworker/internal/core/domain"
)

// FailureKind partitions processing failures for the retry decision.
type FailureKind int

const (
	// FailureValidation is terminal: the job is rejected and never retried.
	FailureValidation FailureKind = iota
	// FailureTransient is retryable: connectivity loss, lock contention,
	// or an unexpected panic.
	FailureTransient
)

// Classify determines how a processing failure is handled.
func Classify(err error) FailureKind {
	if domain.IsValidation(err) {
		return FailureValidation
	}
	return FailureTransient
}

// RetryPolicy bounds transient-failure requeues.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// DefaultRetryPolicy provides sensible defaults.
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries: 5,
	BaseDelay:  500 * time.Millisecond,
}

// Delay returns the linear backoff before the given retry attempt.
// No jitter: correlated outages retry in lockstep. Tunable via BaseDelay.
func (p RetryPolicy) Delay(retryCount int) time.Duration {
	if retryCount < 1 {
		return 0
	}
	return p.BaseDelay * time.Duration(retryCount)
}

// Exhausted reports whether the job has used up its retry budget.
func (p RetryPolicy) Exhausted(retryCount int) bool {
	return retryCount >= p.MaxRetries
}
