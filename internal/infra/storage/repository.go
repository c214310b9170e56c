package storage

import (
	"context"

	"github.com/auctionlab/bidworker/internal/core/domain"
)

// Ledger opens transactional units of work against the auction ledger.
// Concurrent bids on the same auction serialize on the row lock taken by
// LedgerTx.LockAuction, not on queue exclusivity.
type Ledger interface {
	Begin(ctx context.Context) (LedgerTx, error)
}

// LedgerTx is a single ACID transaction. Implementations must hold the
// auction row lock from LockAuction until Commit or Rollback.
type LedgerTx interface {
	// LockAuction loads the auction row under an exclusive row lock.
	// Returns (nil, nil) when the auction does not exist.
	LockAuction(ctx context.Context, productID int64) (*domain.Auction, error)

	// InsertBid persists an accepted bid and returns its id.
	InsertBid(ctx context.Context, bid *domain.Bid) (int64, error)

	// UpdateCurrentBid mirrors the newly accepted amount onto the auction.
	UpdateCurrentBid(ctx context.Context, productID int64, amount float64) error

	// MarkSold transitions the auction to sold.
	MarkSold(ctx context.Context, productID int64) error

	// InsertMessage persists the settlement message and returns its id.
	InsertMessage(ctx context.Context, m *domain.Message) (int64, error)

	// InsertTransaction persists the settlement transaction and returns its id.
	InsertTransaction(ctx context.Context, t *domain.Transaction) (int64, error)

	// Commit commits the transaction and releases the row lock.
	Commit() error

	// Rollback aborts the transaction. Safe to call after Commit.
	Rollback() error
}

// UserRepository resolves display names for result events. Identity rows
// are read-only during processing and looked up outside the ledger tx.
type UserRepository interface {
	// GetName returns the user's display name, or "" when unknown.
	GetName(ctx context.Context, userID int64) (string, error)
}

// PendingJobRepository is the durable recovery store mirroring in-flight
// jobs. Rows exist only between dequeue and terminal resolution.
type PendingJobRepository interface {
	// EnsureTable creates the backing table if it does not exist.
	EnsureTable(ctx context.Context) error

	// Put records an in-flight job. A no-op when the jobId is already
	// present, which makes crash recovery idempotent.
	Put(ctx context.Context, job *domain.BidJob) error

	// Delete removes a terminally resolved job.
	Delete(ctx context.Context, jobID string) error

	// List returns all in-flight jobs, oldest first.
	List(ctx context.Context) ([]*domain.BidJob, error)

	// Count returns the number of in-flight jobs.
	Count(ctx context.Context) (int, error)
}
