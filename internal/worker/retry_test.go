package worker

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/auctionlab/bidworker/internal/core/domain"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, FailureValidation, Classify(domain.Rejectf(domain.ReasonBidTooLow, "minimum bid is 550.00")))
	assert.Equal(t, FailureValidation, Classify(fmt.Errorf("job x: %w", domain.Rejectf(domain.ReasonEnded, "over"))))
	assert.Equal(t, FailureTransient, Classify(errors.New("connection reset by peer")))
	assert.Equal(t, FailureTransient, Classify(fmt.Errorf("job x: panic: boom")))
}

func TestRetryPolicyDelayIsLinear(t *testing.T) {
	p := RetryPolicy{MaxRetries: 5, BaseDelay: 100 * time.Millisecond}

	assert.Equal(t, time.Duration(0), p.Delay(0))
	assert.Equal(t, 100*time.Millisecond, p.Delay(1))
	assert.Equal(t, 300*time.Millisecond, p.Delay(3))
}

func TestRetryPolicyExhausted(t *testing.T) {
	p := RetryPolicy{MaxRetries: 3, BaseDelay: time.Millisecond}

	assert.False(t, p.Exhausted(2))
	assert.True(t, p.Exhausted(3))
	assert.True(t, p.Exhausted(4))
}
