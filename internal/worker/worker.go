package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/auctionlab/bidworker/internal/core/domain"
	"github.com/auctionlab/bidworker/internal/infra/storage"
	"github.com/auctionlab/bidworker/internal/metrics"
)

// Queue is the durable, at-least-once work queue.
type Queue interface {
	// Pop blocks up to timeout for the next payload; (nil, nil) on timeout.
	Pop(ctx context.Context, timeout time.Duration) ([]byte, error)
	Push(ctx context.Context, job *domain.BidJob) error
	PushDead(ctx context.Context, job *domain.BidJob) error
	PushDeadRaw(ctx context.Context, payload []byte) error
}

// Publisher fans terminal outcomes out to the notification channels.
// Best-effort: publish failures are logged, never propagated.
type Publisher interface {
	PublishBidResult(ctx context.Context, productID int64, res *domain.BidResult) error
	PublishAcceptResult(ctx context.Context, productID int64, res *domain.AcceptResult) error
	PublishNotification(ctx context.Context, userID int64, n *domain.Notification) error
}

// Worker ties the queue, processors, recovery store and publisher together.
// One sequential loop per process; running multiple processes is safe
// because correctness comes from the database row lock, not from queue
// exclusivity.
type Worker struct {
	queue      Queue
	pub        Publisher
	bids       *BidProcessor
	accepts    *AcceptProcessor
	pending    storage.PendingJobRepository
	retry      RetryPolicy
	popTimeout time.Duration
	sleep      func(ctx context.Context, d time.Duration)
	newJobID   func() string
	log        *slog.Logger
}

// Config holds worker dependencies and tuning.
type Config struct {
	Queue      Queue
	Publisher  Publisher
	Bids       *BidProcessor
	Accepts    *AcceptProcessor
	Pending    storage.PendingJobRepository
	Retry      RetryPolicy
	PopTimeout time.Duration
	Logger     *slog.Logger
}

// New creates a worker.
func New(cfg Config) *Worker {
	if cfg.PopTimeout <= 0 {
		cfg.PopTimeout = 5 * time.Second
	}
	if cfg.Retry.MaxRetries <= 0 {
		cfg.Retry = DefaultRetryPolicy
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Worker{
		queue:      cfg.Queue,
		pub:        cfg.Publisher,
		bids:       cfg.Bids,
		accepts:    cfg.Accepts,
		pending:    cfg.Pending,
		retry:      cfg.Retry,
		popTimeout: cfg.PopTimeout,
		sleep:      sleepCtx,
		newJobID:   uuid.NewString,
		log:        cfg.Logger,
	}
}

// Run drains the recovery store and then consumes jobs until ctx is
// cancelled. Every dequeued job reaches exactly one of: terminal result,
// bounded requeue, or dead-letter.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.recoverPending(ctx); err != nil {
		// Processing can proceed; anything left behind is picked up on
		// the next restart.
		w.log.Error("recovery drain failed", "error", err)
	}

	w.log.Info("worker started", "popTimeout", w.popTimeout, "maxRetries", w.retry.MaxRetries)
	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker stopped")
			return nil
		default:
		}

		payload, err := w.queue.Pop(ctx, w.popTimeout)
		if err != nil {
			if ctx.Err() != nil {
				w.log.Info("worker stopped")
				return nil
			}
			w.log.Warn("queue pop failed", "error", err)
			w.sleep(ctx, w.popTimeout)
			continue
		}
		if payload == nil {
			continue
		}

		w.handle(ctx, payload)
	}
}

// handle takes one payload through decode, pending log, dispatch,
// classification and publication.
func (w *Worker) handle(ctx context.Context, payload []byte) {
	job, err := domain.DecodeJob(payload)
	if err != nil {
		// Malformed payloads cannot be retried into validity.
		w.log.Error("dropping undecodable job to dead letter", "error", err)
		if dlErr := w.queue.PushDeadRaw(ctx, payload); dlErr != nil {
			w.log.Error("dead-letter write failed", "error", dlErr)
		}
		metrics.DeadLetters.Inc()
		return
	}

	if job.JobID == "" {
		// Producers predating the idempotency key omit it.
		job.JobID = w.newJobID()
	}

	if err := w.pending.Put(ctx, job); err != nil {
		// Non-fatal: the transactional outcome does not depend on the
		// recovery log, only crash redelivery does.
		w.log.Warn("failed to record pending job", "jobId", job.JobID, "error", err)
	}

	start := time.Now()
	switch job.Type {
	case domain.JobTypeAcceptBid:
		w.handleAccept(ctx, job)
	default:
		w.handleBid(ctx, job)
	}
	metrics.JobDuration.WithLabelValues(string(job.Type)).Observe(time.Since(start).Seconds())
}

func (w *Worker) handleBid(ctx context.Context, job *domain.BidJob) {
	result, err := w.processBid(ctx, job)
	switch {
	case err == nil:
		w.log.Info("bid accepted", "jobId", job.JobID, "productId", job.ProductID, "amount", job.Amount)
		w.publishBid(ctx, job, result)
		w.resolve(ctx, job, "accepted")

	case Classify(err) == FailureValidation:
		w.log.Info("bid rejected", "jobId", job.JobID, "productId", job.ProductID, "reason", err)
		w.publishBid(ctx, job, &domain.BidResult{
			Type:      "bid",
			Success:   false,
			Error:     err.Error(),
			Timestamp: time.Now().UnixMilli(),
		})
		w.resolve(ctx, job, "rejected")

	default:
		w.requeueOrDeadLetter(ctx, job, err)
	}
}

func (w *Worker) handleAccept(ctx context.Context, job *domain.BidJob) {
	result, notification, err := w.processAccept(ctx, job)
	switch {
	case err == nil:
		w.log.Info("auction sold", "jobId", job.JobID, "productId", job.ProductID, "winnerId", job.BidderID)
		w.publishAccept(ctx, job, result)
		if pubErr := w.pub.PublishNotification(ctx, job.BidderID, notification); pubErr != nil {
			// The sale is already committed; the buyer finds the message
			// by polling if this signal is lost.
			w.log.Warn("failed to publish notification", "jobId", job.JobID, "error", pubErr)
		}
		w.resolve(ctx, job, "accepted")

	case Classify(err) == FailureValidation:
		w.log.Info("accept rejected", "jobId", job.JobID, "productId", job.ProductID, "reason", err)
		w.publishAccept(ctx, job, &domain.AcceptResult{
			Type:      "accepted",
			Status:    string(domain.AuctionSold),
			Success:   false,
			Error:     err.Error(),
			Timestamp: time.Now().UnixMilli(),
		})
		w.resolve(ctx, job, "rejected")

	default:
		w.requeueOrDeadLetter(ctx, job, err)
	}
}

// processBid wraps the processor so an unexpected panic surfaces as a
// transient error instead of crashing the loop.
func (w *Worker) processBid(ctx context.Context, job *domain.BidJob) (result *domain.BidResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s: panic: %v", job.JobID, r)
		}
	}()
	return w.bids.Process(ctx, job)
}

func (w *Worker) processAccept(ctx context.Context, job *domain.BidJob) (result *domain.AcceptResult, n *domain.Notification, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s: panic: %v", job.JobID, r)
		}
	}()
	return w.accepts.Process(ctx, job)
}

// requeueOrDeadLetter handles a transient failure: bounded linear backoff
// and requeue, or dead-letter once the budget is spent.
func (w *Worker) requeueOrDeadLetter(ctx context.Context, job *domain.BidJob, cause error) {
	job.RetryCount++

	if w.retry.Exhausted(job.RetryCount) {
		w.log.Error("job exhausted retries, dead-lettering",
			"jobId", job.JobID, "retryCount", job.RetryCount, "error", cause)
		if err := w.queue.PushDead(ctx, job); err != nil {
			w.log.Error("dead-letter write failed", "jobId", job.JobID, "error", err)
		}
		w.publishFailure(ctx, job)
		w.resolve(ctx, job, "dead_letter")
		metrics.DeadLetters.Inc()
		return
	}

	w.log.Warn("transient failure, requeueing",
		"jobId", job.JobID, "retryCount", job.RetryCount, "error", cause)
	metrics.Retries.Inc()
	w.sleep(ctx, w.retry.Delay(job.RetryCount))
	if err := w.queue.Push(ctx, job); err != nil {
		// The pending-log row is still there, so a restart re-drives it.
		w.log.Error("requeue failed, job remains in recovery store", "jobId", job.JobID, "error", err)
	}
	// Pending entry is kept on purpose until a terminal outcome.
}

// resolve removes the recovery-log entry and records the outcome. Called
// only on terminal outcomes.
func (w *Worker) resolve(ctx context.Context, job *domain.BidJob, outcome string) {
	if err := w.pending.Delete(ctx, job.JobID); err != nil {
		w.log.Warn("failed to clear pending job", "jobId", job.JobID, "error", err)
	}
	metrics.JobsProcessed.WithLabelValues(string(job.Type), outcome).Inc()
}

func (w *Worker) publishBid(ctx context.Context, job *domain.BidJob, res *domain.BidResult) {
	if err := w.pub.PublishBidResult(ctx, job.ProductID, res); err != nil {
		w.log.Warn("failed to publish bid result", "jobId", job.JobID, "error", err)
	}
}

func (w *Worker) publishAccept(ctx context.Context, job *domain.BidJob, res *domain.AcceptResult) {
	if err := w.pub.PublishAcceptResult(ctx, job.ProductID, res); err != nil {
		w.log.Warn("failed to publish accept result", "jobId", job.JobID, "error", err)
	}
}

// publishFailure emits the generic event observers get for a dead-lettered
// job; the underlying cause stays in the logs and the dead-letter payload.
func (w *Worker) publishFailure(ctx context.Context, job *domain.BidJob) {
	now := time.Now().UnixMilli()
	if job.Type == domain.JobTypeAcceptBid {
		w.publishAccept(ctx, job, &domain.AcceptResult{
			Type:      "accepted",
			Status:    string(domain.AuctionSold),
			Success:   false,
			Error:     "processing failed",
			Timestamp: now,
		})
		return
	}
	w.publishBid(ctx, job, &domain.BidResult{
		Type:      "bid",
		Success:   false,
		Error:     "processing failed",
		Timestamp: now,
	})
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
