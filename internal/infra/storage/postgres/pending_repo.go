package postgres

import (
	"context"
	"fmt"

	"github.com/auctionlab/bidworker/internal/core/domain"
)

// PendingJobRepo is the durable recovery store. Rows mirror in-flight queue
// jobs and survive worker crashes.
type PendingJobRepo struct {
	db    *DB
	table string
}

// NewPendingJobRepo creates the recovery store over the given table name.
func NewPendingJobRepo(db *DB, table string) *PendingJobRepo {
	if table == "" {
		table = "pending_bids"
	}
	return &PendingJobRepo{db: db, table: table}
}

// EnsureTable creates the recovery table if it does not exist. Migrations
// normally create it; this keeps startup safe on a pre-migration database.
func (r *PendingJobRepo) EnsureTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			job_id TEXT PRIMARY KEY,
			job_type TEXT NOT NULL DEFAULT 'bid',
			product_id BIGINT NOT NULL,
			bidder_id BIGINT NOT NULL,
			seller_id BIGINT,
			amount NUMERIC(12, 2) NOT NULL,
			job_timestamp BIGINT NOT NULL,
			censor_name BOOLEAN NOT NULL DEFAULT FALSE,
			retry_count INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`, r.table)
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure %s table: %w", r.table, err)
	}
	return nil
}

// Put records an in-flight job. Conflicting jobIds are ignored so replays
// after a crash are no-ops.
func (r *PendingJobRepo) Put(ctx context.Context, job *domain.BidJob) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (job_id, job_type, product_id, bidder_id, seller_id, amount, job_timestamp, censor_name, retry_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (job_id) DO NOTHING
	`, r.table)
	_, err := r.db.ExecContext(ctx, query,
		job.JobID, string(job.Type), job.ProductID, job.BidderID, job.SellerID,
		job.Amount, job.Timestamp, job.CensorName, job.RetryCount,
	)
	if err != nil {
		return fmt.Errorf("failed to record pending job %s: %w", job.JobID, err)
	}
	return nil
}

// Delete removes a terminally resolved job.
func (r *PendingJobRepo) Delete(ctx context.Context, jobID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE job_id = $1`, r.table)
	if _, err := r.db.ExecContext(ctx, query, jobID); err != nil {
		return fmt.Errorf("failed to delete pending job %s: %w", jobID, err)
	}
	return nil
}

type pendingRow struct {
	JobID      string  `db:"job_id"`
	JobType    string  `db:"job_type"`
	ProductID  int64   `db:"product_id"`
	BidderID   int64   `db:"bidder_id"`
	SellerID   int64   `db:"seller_id"`
	Amount     float64 `db:"amount"`
	Timestamp  int64   `db:"job_timestamp"`
	CensorName bool    `db:"censor_name"`
	RetryCount int     `db:"retry_count"`
}

// List returns all in-flight jobs, oldest first.
func (r *PendingJobRepo) List(ctx context.Context) ([]*domain.BidJob, error) {
	query := fmt.Sprintf(`
		SELECT job_id, job_type, product_id, bidder_id, COALESCE(seller_id, 0) AS seller_id,
		       amount, job_timestamp, censor_name, retry_count
		FROM %s
		ORDER BY created_at ASC
	`, r.table)

	var rows []pendingRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list pending jobs: %w", err)
	}

	jobs := make([]*domain.BidJob, 0, len(rows))
	for _, row := range rows {
		jobs = append(jobs, &domain.BidJob{
			JobID:      row.JobID,
			Type:       domain.JobType(row.JobType),
			ProductID:  row.ProductID,
			BidderID:   row.BidderID,
			SellerID:   row.SellerID,
			Amount:     row.Amount,
			Timestamp:  row.Timestamp,
			CensorName: row.CensorName,
			RetryCount: row.RetryCount,
		})
	}
	return jobs, nil
}

// Count returns the number of in-flight jobs.
func (r *PendingJobRepo) Count(ctx context.Context) (int, error) {
	var count int
	query := fmt.Sprintf(`SELECT count(*) FROM %s`, r.table)
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("failed to count pending jobs: %w", err)
	}
	return count, nil
}
