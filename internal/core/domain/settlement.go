package domain

import "time"

// TransactionPending is the status every settlement transaction starts in.
// The platform holds no payments, so nothing in this worker advances it.
const TransactionPending = "pending"

// Message is the seller-to-buyer message created when a sale closes.
type Message struct {
	ID         int64
	AuctionID  int64
	SenderID   int64
	ReceiverID int64
	Body       string
	CreatedAt  time.Time
}

// Transaction is the settlement record created when a sale closes.
type Transaction struct {
	ID        int64
	AuctionID int64
	SellerID  int64
	BuyerID   int64
	Amount    float64
	Status    string
	CreatedAt time.Time
}
