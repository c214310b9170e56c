package domain

import (
	"encoding/json"
	"fmt"
)

// JobType discriminates the two operations multiplexed on the bid queue.
type JobType string

const (
	JobTypeBid       JobType = "bid"
	JobTypeAcceptBid JobType = "accept_bid"
)

// BidJob is a single queue message produced by the web API. JobID is the
// idempotency key; the worker assigns one if the producer omitted it.
type BidJob struct {
	JobID      string  `json:"jobId,omitempty"`
	Type       JobType `json:"type,omitempty"`
	ProductID  int64   `json:"productId"`
	BidderID   int64   `json:"bidderId"`
	SellerID   int64   `json:"sellerId,omitempty"`
	Amount     float64 `json:"amount"`
	Timestamp  int64   `json:"timestamp"`
	CensorName bool    `json:"censorName,omitempty"`
	RetryCount int     `json:"retryCount,omitempty"`
}

// DecodeJob parses and validates a raw queue payload. This is the only place
// job payloads are validated; processors downstream see a fully-typed job.
func DecodeJob(data []byte) (*BidJob, error) {
	var job BidJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to decode job payload: %w", err)
	}
	if err := job.Validate(); err != nil {
		return nil, err
	}
	return &job, nil
}

// Validate checks required fields and normalizes the type discriminant.
// Messages without a type predate the accept-bid operation and are bids.
func (j *BidJob) Validate() error {
	switch j.Type {
	case JobTypeBid, JobTypeAcceptBid:
	case "":
		j.Type = JobTypeBid
	default:
		j.Type = JobTypeBid
	}

	if j.ProductID <= 0 {
		return fmt.Errorf("job %s: missing productId", j.JobID)
	}
	if j.BidderID <= 0 {
		return fmt.Errorf("job %s: missing bidderId", j.JobID)
	}
	if j.Amount <= 0 {
		return fmt.Errorf("job %s: amount must be positive, got %v", j.JobID, j.Amount)
	}
	if j.Type == JobTypeAcceptBid && j.SellerID <= 0 {
		return fmt.Errorf("job %s: accept_bid requires sellerId", j.JobID)
	}
	return nil
}

// Encode serializes the job for the queue.
func (j *BidJob) Encode() ([]byte, error) {
	data, err := json.Marshal(j)
	if err != nil {
		return nil, fmt.Errorf("failed to encode job: %w", err)
	}
	return data, nil
}
