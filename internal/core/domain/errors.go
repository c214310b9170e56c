package domain

import (
	"errors"
	"fmt"
)

// Rejection reason codes carried on validation errors and surfaced in
// result events.
const (
	ReasonProductNotFound = "product_not_found"
	ReasonNotAvailable    = "auction_not_available"
	ReasonInactive        = "auction_inactive"
	ReasonEnded           = "auction_ended"
	ReasonBidTooLow       = "bid_too_low"
	ReasonAlreadySold     = "already_sold"
)

// ValidationError is a terminal rejection. It is never retried: re-running
// the same job against the same ledger state yields the same rejection.
// Every other processing error is treated as transient.
type ValidationError struct {
	Reason string
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

// Rejectf builds a ValidationError with a formatted detail message.
func Rejectf(reason, format string, args ...any) *ValidationError {
	return &ValidationError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a terminal rejection.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
