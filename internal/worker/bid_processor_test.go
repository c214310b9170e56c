package worker

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auctionlab/bidworker/internal/core/domain"
	"github.com/auctionlab/bidworker/internal/infra/storage/memory"
)

func newTestStore() *memory.MemoryStorage {
	store := memory.NewMemoryStorage()
	store.PutUser(2, "Bob Bidder")
	store.PutAuction(&domain.Auction{
		ID:             1,
		StartingPrice:  500,
		BidIncrement:   50,
		Status:         domain.AuctionAvailable,
		AuctionEndDate: time.Now().Add(time.Hour),
		Active:         true,
	})
	return store
}

func newBidProcessor(store *memory.MemoryStorage) *BidProcessor {
	return NewBidProcessor(memory.NewLedger(store), memory.NewUserRepo(store), slog.Default())
}

func bidJob(id string, amount float64) *domain.BidJob {
	return &domain.BidJob{
		JobID:     id,
		Type:      domain.JobTypeBid,
		ProductID: 1,
		BidderID:  2,
		Amount:    amount,
		Timestamp: time.Now().UnixMilli(),
	}
}

func TestBidProcessorAcceptsOpeningBid(t *testing.T) {
	store := newTestStore()
	p := newBidProcessor(store)

	res, err := p.Process(context.Background(), bidJob("j-1", 500))
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.NotZero(t, res.BidID)
	assert.Equal(t, 500.0, res.Amount)
	assert.Equal(t, "Bob Bidder", res.BidderName)

	assert.Equal(t, 500.0, store.GetAuction(1).CurrentBid)
	assert.Len(t, store.Bids(1), 1)
}

func TestBidProcessorRejectsBelowMinimum(t *testing.T) {
	store := newTestStore()
	p := newBidProcessor(store)

	_, err := p.Process(context.Background(), bidJob("j-1", 500))
	require.NoError(t, err)

	_, err = p.Process(context.Background(), bidJob("j-2", 520))
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Contains(t, err.Error(), domain.ReasonBidTooLow)
	assert.Contains(t, err.Error(), "550.00")

	// Rejection left no ledger mutation behind.
	assert.Equal(t, 500.0, store.GetAuction(1).CurrentBid)
	assert.Len(t, store.Bids(1), 1)
}

func TestBidProcessorValidationRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(a *domain.Auction)
		job    *domain.BidJob
		reason string
	}{
		{
			name:   "product not found",
			mutate: func(a *domain.Auction) {},
			job: &domain.BidJob{
				JobID: "j-1", Type: domain.JobTypeBid, ProductID: 99, BidderID: 2, Amount: 500,
			},
			reason: domain.ReasonProductNotFound,
		},
		{
			name:   "already sold",
			mutate: func(a *domain.Auction) { a.Status = domain.AuctionSold },
			job:    bidJob("j-1", 500),
			reason: domain.ReasonNotAvailable,
		},
		{
			name:   "cancelled",
			mutate: func(a *domain.Auction) { a.Status = domain.AuctionCancelled },
			job:    bidJob("j-1", 500),
			reason: domain.ReasonNotAvailable,
		},
		{
			name:   "hidden listing",
			mutate: func(a *domain.Auction) { a.Active = false },
			job:    bidJob("j-1", 500),
			reason: domain.ReasonInactive,
		},
		{
			name:   "auction window closed",
			mutate: func(a *domain.Auction) { a.AuctionEndDate = time.Now().Add(-time.Minute) },
			job:    bidJob("j-1", 500),
			reason: domain.ReasonEnded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore()
			a := store.GetAuction(1)
			tt.mutate(a)
			store.PutAuction(a)

			p := newBidProcessor(store)
			_, err := p.Process(context.Background(), tt.job)
			require.Error(t, err)
			assert.True(t, domain.IsValidation(err))
			assert.Contains(t, err.Error(), tt.reason)
			assert.Empty(t, store.Bids(1))
		})
	}
}

func TestBidProcessorCensorsName(t *testing.T) {
	store := newTestStore()
	p := newBidProcessor(store)

	job := bidJob("j-1", 500)
	job.CensorName = true

	res, err := p.Process(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, "B***", res.BidderName)
}

func TestBidProcessorUnknownBidderGetsPlaceholder(t *testing.T) {
	store := newTestStore()
	p := newBidProcessor(store)

	job := bidJob("j-1", 500)
	job.BidderID = 42

	res, err := p.Process(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, "bidder-42", res.BidderName)
}

func TestBidProcessorUsesJobTimestampAsBidTime(t *testing.T) {
	store := newTestStore()
	p := newBidProcessor(store)

	job := bidJob("j-1", 500)
	job.Timestamp = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).UnixMilli()

	res, err := p.Process(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, job.Timestamp, res.BidTime)

	bids := store.Bids(1)
	require.Len(t, bids, 1)
	assert.Equal(t, job.Timestamp, bids[0].BidTime.UnixMilli())
}

func TestBidProcessorRisingSequence(t *testing.T) {
	store := newTestStore()
	p := newBidProcessor(store)
	ctx := context.Background()

	const n = 6
	for i := 0; i < n; i++ {
		amount := 500.0 + float64(i)*50
		_, err := p.Process(ctx, bidJob(fmt.Sprintf("job-%d", i), amount))
		require.NoError(t, err)
	}

	assert.Equal(t, 500.0+float64(n-1)*50, store.GetAuction(1).CurrentBid)
	assert.Len(t, store.Bids(1), n)
}
