package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/auctionlab/bidworker/internal/core/domain"
	"github.com/auctionlab/bidworker/internal/infra/storage"
)

// BidProcessor applies a single bid to an auction inside one ledger
// transaction. The auction row lock serializes concurrent bids for the
// same auction across worker processes.
type BidProcessor struct {
	ledger storage.Ledger
	users  storage.UserRepository
	now    func() time.Time
	log    *slog.Logger
}

// NewBidProcessor creates a bid processor.
func NewBidProcessor(ledger storage.Ledger, users storage.UserRepository, log *slog.Logger) *BidProcessor {
	return &BidProcessor{
		ledger: ledger,
		users:  users,
		now:    time.Now,
		log:    log,
	}
}

// Process validates and persists one bid. Validation failures return a
// *domain.ValidationError; anything else is transient and the transaction
// is rolled back without ledger mutation.
func (p *BidProcessor) Process(ctx context.Context, job *domain.BidJob) (*domain.BidResult, error) {
	tx, err := p.ledger.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", job.JobID, err)
	}
	defer func() { _ = tx.Rollback() }()

	auction, err := tx.LockAuction(ctx, job.ProductID)
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", job.JobID, err)
	}

	now := p.now()
	switch {
	case auction == nil:
		return nil, domain.Rejectf(domain.ReasonProductNotFound, "product %d does not exist", job.ProductID)
	case auction.Status != domain.AuctionAvailable:
		return nil, domain.Rejectf(domain.ReasonNotAvailable, "auction is %s", auction.Status)
	case !auction.Active:
		return nil, domain.Rejectf(domain.ReasonInactive, "listing is not visible")
	case !now.Before(auction.AuctionEndDate):
		return nil, domain.Rejectf(domain.ReasonEnded, "auction ended at %s", auction.AuctionEndDate.Format(time.RFC3339))
	}

	minimum := auction.MinimumBid()
	if job.Amount < minimum {
		return nil, domain.Rejectf(domain.ReasonBidTooLow, "minimum bid is %.2f", minimum)
	}

	bidTime := now
	if job.Timestamp > 0 {
		bidTime = time.UnixMilli(job.Timestamp)
	}
	bid := &domain.Bid{
		AuctionID:  job.ProductID,
		BidderID:   job.BidderID,
		Amount:     job.Amount,
		BidTime:    bidTime,
		CensorName: job.CensorName,
	}

	bidID, err := tx.InsertBid(ctx, bid)
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", job.JobID, err)
	}
	if err := tx.UpdateCurrentBid(ctx, job.ProductID, job.Amount); err != nil {
		return nil, fmt.Errorf("job %s: %w", job.JobID, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("job %s: commit failed: %w", job.JobID, err)
	}

	return &domain.BidResult{
		Type:       "bid",
		Success:    true,
		BidID:      bidID,
		Amount:     job.Amount,
		BidderID:   job.BidderID,
		BidderName: p.bidderName(ctx, job),
		BidTime:    bidTime.UnixMilli(),
		Timestamp:  now.UnixMilli(),
	}, nil
}

// bidderName resolves the display name after commit; the sale outcome no
// longer depends on it, so lookup failures degrade to a placeholder.
func (p *BidProcessor) bidderName(ctx context.Context, job *domain.BidJob) string {
	name, err := p.users.GetName(ctx, job.BidderID)
	if err != nil {
		p.log.Warn("failed to resolve bidder name", "jobId", job.JobID, "bidderId", job.BidderID, "error", err)
		name = ""
	}
	if name == "" {
		name = fmt.Sprintf("bidder-%d", job.BidderID)
	}
	if job.CensorName {
		return domain.CensorName(name)
	}
	return name
}
