package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/auctionlab/bidworker/internal/core/domain"
	"github.com/auctionlab/bidworker/internal/infra/storage"
)

// Ledger opens transactional units of work against the auction tables.
type Ledger struct {
	db *DB
}

// NewLedger creates a PostgreSQL-backed ledger.
func NewLedger(db *DB) *Ledger {
	return &Ledger{db: db}
}

// Begin starts a new transaction.
func (l *Ledger) Begin(ctx context.Context) (storage.LedgerTx, error) {
	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &ledgerTx{tx: tx}, nil
}

// ledgerTx bundles all ledger writes for one job into a single database
// transaction, ensuring atomicity (all succeed or all fail).
type ledgerTx struct {
	tx *sqlx.Tx
}

type auctionRow struct {
	ID             int64           `db:"id"`
	CurrentBid     sql.NullFloat64 `db:"current_bid"`
	StartingPrice  float64         `db:"starting_price"`
	BidIncrement   float64         `db:"bid_increment"`
	Status         string          `db:"status"`
	AuctionEndDate sql.NullTime    `db:"auction_end_date"`
	Active         bool            `db:"active"`
}

// LockAuction takes the row lock that serializes concurrent jobs for the
// same auction across worker processes.
func (t *ledgerTx) LockAuction(ctx context.Context, productID int64) (*domain.Auction, error) {
	query := `
		SELECT id, current_bid, starting_price, bid_increment, status, auction_end_date, active
		FROM products
		WHERE id = $1
		FOR UPDATE
	`
	var row auctionRow
	if err := t.tx.GetContext(ctx, &row, query, productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock auction %d: %w", productID, err)
	}

	a := &domain.Auction{
		ID:            row.ID,
		StartingPrice: row.StartingPrice,
		BidIncrement:  row.BidIncrement,
		Status:        domain.AuctionStatus(row.Status),
		Active:        row.Active,
	}
	if row.CurrentBid.Valid {
		a.CurrentBid = row.CurrentBid.Float64
	}
	if row.AuctionEndDate.Valid {
		a.AuctionEndDate = row.AuctionEndDate.Time
	}
	return a, nil
}

func (t *ledgerTx) InsertBid(ctx context.Context, bid *domain.Bid) (int64, error) {
	query := `
		INSERT INTO bids (product_id, bidder_id, amount, bid_time, censor_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	var id int64
	err := t.tx.QueryRowxContext(ctx, query,
		bid.AuctionID, bid.BidderID, bid.Amount, bid.BidTime, bid.CensorName,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert bid: %w", err)
	}
	return id, nil
}

func (t *ledgerTx) UpdateCurrentBid(ctx context.Context, productID int64, amount float64) error {
	query := `UPDATE products SET current_bid = $2, updated_at = now() WHERE id = $1`
	if _, err := t.tx.ExecContext(ctx, query, productID, amount); err != nil {
		return fmt.Errorf("failed to update current bid: %w", err)
	}
	return nil
}

func (t *ledgerTx) MarkSold(ctx context.Context, productID int64) error {
	query := `UPDATE products SET status = $2, updated_at = now() WHERE id = $1`
	if _, err := t.tx.ExecContext(ctx, query, productID, string(domain.AuctionSold)); err != nil {
		return fmt.Errorf("failed to mark auction sold: %w", err)
	}
	return nil
}

func (t *ledgerTx) InsertMessage(ctx context.Context, m *domain.Message) (int64, error) {
	query := `
		INSERT INTO messages (product_id, sender_id, receiver_id, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	var id int64
	err := t.tx.QueryRowxContext(ctx, query,
		m.AuctionID, m.SenderID, m.ReceiverID, m.Body,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert message: %w", err)
	}
	return id, nil
}

func (t *ledgerTx) InsertTransaction(ctx context.Context, tr *domain.Transaction) (int64, error) {
	query := `
		INSERT INTO transactions (product_id, seller_id, buyer_id, amount, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	var id int64
	err := t.tx.QueryRowxContext(ctx, query,
		tr.AuctionID, tr.SellerID, tr.BuyerID, tr.Amount, tr.Status,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert transaction: %w", err)
	}
	return id, nil
}

// Commit commits the transaction.
func (t *ledgerTx) Commit() error {
	if t.tx == nil {
		return fmt.Errorf("transaction already completed")
	}
	err := t.tx.Commit()
	t.tx = nil
	return err
}

// Rollback rolls back the transaction. Safe to call multiple times.
func (t *ledgerTx) Rollback() error {
	if t.tx == nil {
		return nil // Already committed or rolled back
	}
	err := t.tx.Rollback()
	t.tx = nil
	return err
}
