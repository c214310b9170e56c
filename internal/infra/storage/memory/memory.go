package memory

import (
	"context"
	"sync"

	"github.com/auctionlab/bidworker/internal/core/domain"
	"github.com/auctionlab/bidworker/internal/infra/storage"
)

// MemoryStorage is an in-memory ledger used when no database is configured
// and as the substrate for tests. Row-lock semantics are emulated with one
// mutex per auction, held from LockAuction until Commit or Rollback.
type MemoryStorage struct {
	mu           sync.Mutex
	auctions     map[int64]*domain.Auction
	users        map[int64]string
	bids         []*domain.Bid
	messages     []*domain.Message
	transactions []*domain.Transaction
	pending      []*domain.BidJob
	rowLocks     map[int64]*sync.Mutex
	nextID       int64
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		auctions: make(map[int64]*domain.Auction),
		users:    make(map[int64]string),
		rowLocks: make(map[int64]*sync.Mutex),
	}
}

// PutAuction seeds or replaces an auction.
func (s *MemoryStorage) PutAuction(a *domain.Auction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *a
	s.auctions[a.ID] = &copied
}

// GetAuction returns a copy of an auction, or nil.
func (s *MemoryStorage) GetAuction(id int64) *domain.Auction {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.auctions[id]
	if !ok {
		return nil
	}
	copied := *a
	return &copied
}

// PutUser seeds a user display name.
func (s *MemoryStorage) PutUser(id int64, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id] = name
}

// Bids returns the accepted bids for an auction, in acceptance order.
func (s *MemoryStorage) Bids(productID int64) []*domain.Bid {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Bid
	for _, b := range s.bids {
		if b.AuctionID == productID {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out
}

// Messages returns the settlement messages for an auction.
func (s *MemoryStorage) Messages(productID int64) []*domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Message
	for _, m := range s.messages {
		if m.AuctionID == productID {
			copied := *m
			out = append(out, &copied)
		}
	}
	return out
}

// Transactions returns the settlement transactions for an auction.
func (s *MemoryStorage) Transactions(productID int64) []*domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Transaction
	for _, t := range s.transactions {
		if t.AuctionID == productID {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out
}

func (s *MemoryStorage) allocID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	return s.nextID
}

func (s *MemoryStorage) rowLock(productID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.rowLocks[productID]
	if !ok {
		l = &sync.Mutex{}
		s.rowLocks[productID] = l
	}
	return l
}

// -----------------------------------------------------------------------------
// Ledger
// -----------------------------------------------------------------------------

type Ledger struct {
	store *MemoryStorage
}

func NewLedger(store *MemoryStorage) *Ledger {
	return &Ledger{store: store}
}

func (l *Ledger) Begin(ctx context.Context) (storage.LedgerTx, error) {
	return &ledgerTx{store: l.store}, nil
}

// ledgerTx stages writes and applies them atomically on Commit, holding the
// per-auction lock in between, mirroring SELECT ... FOR UPDATE.
type ledgerTx struct {
	store   *MemoryStorage
	locked  *sync.Mutex
	done    bool
	updates []func()
}

func (t *ledgerTx) LockAuction(ctx context.Context, productID int64) (*domain.Auction, error) {
	if t.locked == nil {
		l := t.store.rowLock(productID)
		l.Lock()
		t.locked = l
	}

	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	a, ok := t.store.auctions[productID]
	if !ok {
		return nil, nil
	}
	copied := *a
	return &copied, nil
}

func (t *ledgerTx) InsertBid(ctx context.Context, bid *domain.Bid) (int64, error) {
	copied := *bid
	copied.ID = t.store.allocID()
	t.updates = append(t.updates, func() {
		t.store.bids = append(t.store.bids, &copied)
	})
	return copied.ID, nil
}

func (t *ledgerTx) UpdateCurrentBid(ctx context.Context, productID int64, amount float64) error {
	t.updates = append(t.updates, func() {
		if a, ok := t.store.auctions[productID]; ok {
			a.CurrentBid = amount
		}
	})
	return nil
}

func (t *ledgerTx) MarkSold(ctx context.Context, productID int64) error {
	t.updates = append(t.updates, func() {
		if a, ok := t.store.auctions[productID]; ok {
			a.Status = domain.AuctionSold
		}
	})
	return nil
}

func (t *ledgerTx) InsertMessage(ctx context.Context, m *domain.Message) (int64, error) {
	copied := *m
	copied.ID = t.store.allocID()
	t.updates = append(t.updates, func() {
		t.store.messages = append(t.store.messages, &copied)
	})
	return copied.ID, nil
}

func (t *ledgerTx) InsertTransaction(ctx context.Context, tr *domain.Transaction) (int64, error) {
	copied := *tr
	copied.ID = t.store.allocID()
	t.updates = append(t.updates, func() {
		t.store.transactions = append(t.store.transactions, &copied)
	})
	return copied.ID, nil
}

func (t *ledgerTx) Commit() error {
	if t.done {
		return nil
	}
	t.store.mu.Lock()
	for _, apply := range t.updates {
		apply()
	}
	t.store.mu.Unlock()
	t.finish()
	return nil
}

func (t *ledgerTx) Rollback() error {
	if t.done {
		return nil
	}
	t.updates = nil
	t.finish()
	return nil
}

func (t *ledgerTx) finish() {
	t.done = true
	if t.locked != nil {
		t.locked.Unlock()
		t.locked = nil
	}
}

// -----------------------------------------------------------------------------
// User Repository
// -----------------------------------------------------------------------------

type UserRepo struct {
	store *MemoryStorage
}

func NewUserRepo(store *MemoryStorage) *UserRepo {
	return &UserRepo{store: store}
}

func (r *UserRepo) GetName(ctx context.Context, userID int64) (string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.users[userID], nil
}

// -----------------------------------------------------------------------------
// Pending Job Repository
// -----------------------------------------------------------------------------

type PendingJobRepo struct {
	store *MemoryStorage
}

func NewPendingJobRepo(store *MemoryStorage) *PendingJobRepo {
	return &PendingJobRepo{store: store}
}

func (r *PendingJobRepo) EnsureTable(ctx context.Context) error { return nil }

func (r *PendingJobRepo) Put(ctx context.Context, job *domain.BidJob) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, p := range r.store.pending {
		if p.JobID == job.JobID {
			return nil
		}
	}
	copied := *job
	r.store.pending = append(r.store.pending, &copied)
	return nil
}

func (r *PendingJobRepo) Delete(ctx context.Context, jobID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i, p := range r.store.pending {
		if p.JobID == jobID {
			r.store.pending = append(r.store.pending[:i], r.store.pending[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *PendingJobRepo) List(ctx context.Context) ([]*domain.BidJob, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*domain.BidJob, 0, len(r.store.pending))
	for _, p := range r.store.pending {
		copied := *p
		out = append(out, &copied)
	}
	return out, nil
}

func (r *PendingJobRepo) Count(ctx context.Context) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return len(r.store.pending), nil
}
