package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/auctionlab/bidworker/internal/core/domain"
	"github.com/auctionlab/bidworker/internal/infra/storage"
)

// AcceptProcessor closes an auction: it marks the listing sold and creates
// the settlement artifacts (seller-to-buyer message plus transaction
// record) in one ledger transaction.
type AcceptProcessor struct {
	ledger storage.Ledger
	now    func() time.Time
	log    *slog.Logger
}

// NewAcceptProcessor creates an accept-bid processor.
func NewAcceptProcessor(ledger storage.Ledger, log *slog.Logger) *AcceptProcessor {
	return &AcceptProcessor{
		ledger: ledger,
		now:    time.Now,
		log:    log,
	}
}

// Process accepts the winning bid. The row lock guarantees that of two
// concurrent accepts, the second observes status != available and is
// rejected deterministically. The returned notification is published
// best-effort after the commit; it never rolls back the sale.
func (p *AcceptProcessor) Process(ctx context.Context, job *domain.BidJob) (*domain.AcceptResult, *domain.Notification, error) {
	tx, err := p.ledger.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("job %s: %w", job.JobID, err)
	}
	defer func() { _ = tx.Rollback() }()

	auction, err := tx.LockAuction(ctx, job.ProductID)
	if err != nil {
		return nil, nil, fmt.Errorf("job %s: %w", job.JobID, err)
	}
	if auction == nil {
		return nil, nil, domain.Rejectf(domain.ReasonProductNotFound, "product %d does not exist", job.ProductID)
	}
	if auction.Status != domain.AuctionAvailable {
		return nil, nil, domain.Rejectf(domain.ReasonAlreadySold, "auction is %s", auction.Status)
	}

	if err := tx.MarkSold(ctx, job.ProductID); err != nil {
		return nil, nil, fmt.Errorf("job %s: %w", job.JobID, err)
	}

	body := fmt.Sprintf("Congratulations! Your bid of %.2f was accepted. The seller will be in touch to arrange the sale.", job.Amount)
	msgID, err := tx.InsertMessage(ctx, &domain.Message{
		AuctionID:  job.ProductID,
		SenderID:   job.SellerID,
		ReceiverID: job.BidderID,
		Body:       body,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("job %s: %w", job.JobID, err)
	}

	if _, err := tx.InsertTransaction(ctx, &domain.Transaction{
		AuctionID: job.ProductID,
		SellerID:  job.SellerID,
		BuyerID:   job.BidderID,
		Amount:    job.Amount,
		Status:    domain.TransactionPending,
	}); err != nil {
		return nil, nil, fmt.Errorf("job %s: %w", job.JobID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("job %s: commit failed: %w", job.JobID, err)
	}

	now := p.now()
	result := &domain.AcceptResult{
		Type:      "accepted",
		Status:    string(domain.AuctionSold),
		Success:   true,
		WinnerID:  job.BidderID,
		Amount:    job.Amount,
		Timestamp: now.UnixMilli(),
	}
	notification := &domain.Notification{
		Type:      "new_message",
		MessageID: msgID,
		ProductID: job.ProductID,
		SenderID:  job.SellerID,
		Preview:   body,
		Timestamp: now.UnixMilli(),
	}
	return result, notification, nil
}
