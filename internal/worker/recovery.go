package worker

import (
	"context"
	"fmt"
)

// recoverPending re-drives jobs that were in flight when a previous process
// died. Each row goes back onto the queue with its retryCount preserved and
// flows through the normal processors; the recovery-log insert on redelivery
// is a no-op, so replaying an already-committed job cannot duplicate rows.
func (w *Worker) recoverPending(ctx context.Context) error {
	if err := w.pending.EnsureTable(ctx); err != nil {
		return fmt.Errorf("failed to prepare recovery store: %w", err)
	}

	jobs, err := w.pending.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list recovery store: %w", err)
	}
	if len(jobs) == 0 {
		return nil
	}

	requeued := 0
	for _, job := range jobs {
		if err := w.queue.Push(ctx, job); err != nil {
			// Leave the row in place; the next startup tries again.
			w.log.Error("failed to re-enqueue recovered job", "jobId", job.JobID, "error", err)
			continue
		}
		requeued++
	}

	w.log.Info("recovered in-flight jobs", "found", len(jobs), "requeued", requeued)
	return nil
}
