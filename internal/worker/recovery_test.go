package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auctionlab/bidworker/internal/core/domain"
)

// TestRecoverPendingRequeuesInFlightJobs simulates a restart with jobs left
// in the recovery store. They go back onto the queue with retryCount intact
// and resolve normally on replay.
func TestRecoverPendingRequeuesInFlightJobs(t *testing.T) {
	rig := newTestRig(t, 0, DefaultRetryPolicy)
	ctx := context.Background()

	crashed := bidJob("j-crashed", 500)
	crashed.RetryCount = 2
	require.NoError(t, rig.pending.Put(ctx, crashed))
	require.NoError(t, rig.pending.Put(ctx, acceptJob("j-crashed-accept")))

	require.NoError(t, rig.worker.recoverPending(ctx))

	// Requeued, and the rows stay until each job resolves terminally.
	assert.Equal(t, 2, rig.queue.depth())
	assert.Equal(t, 2, rig.pendingCount(t))

	payload, err := rig.queue.Pop(ctx, time.Millisecond)
	require.NoError(t, err)
	job, err := domain.DecodeJob(payload)
	require.NoError(t, err)
	assert.Equal(t, "j-crashed", job.JobID)
	assert.Equal(t, 2, job.RetryCount)

	// Replaying through the worker drains the recovery store. The bid needs
	// the remaining payload plus the one we popped for inspection.
	rig.worker.handle(ctx, payload)
	rig.drain(t)

	assert.Equal(t, 0, rig.pendingCount(t))
	assert.Len(t, rig.store.Bids(1), 1)
	assert.Equal(t, domain.AuctionSold, rig.store.GetAuction(1).Status)
}

func TestRecoverPendingEmptyStore(t *testing.T) {
	rig := newTestRig(t, 0, DefaultRetryPolicy)

	require.NoError(t, rig.worker.recoverPending(context.Background()))
	assert.Equal(t, 0, rig.queue.depth())
}
