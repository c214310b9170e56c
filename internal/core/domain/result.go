package domain

// Result events are best-effort JSON signals published to per-product and
// per-user channels. The real-time delivery service consuming them tolerates
// missed events and falls back to polling.

// BidResult reports the terminal outcome of a bid job.
type BidResult struct {
	Type       string  `json:"type"` // always "bid"
	Success    bool    `json:"success"`
	BidID      int64   `json:"bidId,omitempty"`
	Amount     float64 `json:"amount,omitempty"`
	BidderID   int64   `json:"bidderId,omitempty"`
	BidderName string  `json:"bidderName,omitempty"`
	BidTime    int64   `json:"bidTime,omitempty"` // epoch ms
	Error      string  `json:"error,omitempty"`
	Timestamp  int64   `json:"timestamp"` // epoch ms
}

// AcceptResult reports the terminal outcome of an accept_bid job.
type AcceptResult struct {
	Type      string  `json:"type"`   // always "accepted"
	Status    string  `json:"status"` // always "sold"
	Success   bool    `json:"success"`
	WinnerID  int64   `json:"winnerId,omitempty"`
	Amount    float64 `json:"amount,omitempty"`
	Error     string  `json:"error,omitempty"`
	Timestamp int64   `json:"timestamp"` // epoch ms
}

// Notification tells the winning buyer about the settlement message.
type Notification struct {
	Type      string `json:"type"` // always "new_message"
	MessageID int64  `json:"messageId"`
	ProductID int64  `json:"productId"`
	SenderID  int64  `json:"senderId"`
	Preview   string `json:"preview"`
	Timestamp int64  `json:"timestamp"` // epoch ms
}
