package domain

import "time"

// Bid is a persisted row for an accepted bid.
type Bid struct {
	ID         int64
	AuctionID  int64
	BidderID   int64
	Amount     float64
	BidTime    time.Time
	CensorName bool
}

// User is a read-only identity row, looked up for display names.
type User struct {
	ID   int64
	Name string
}

// CensorName masks a display name down to its first rune.
func CensorName(name string) string {
	if name == "" {
		return ""
	}
	runes := []rune(name)
	return string(runes[0]) + "***"
}
