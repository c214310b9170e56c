package domain

import "time"

// AuctionStatus is the lifecycle state of an auction listing.
type AuctionStatus string

const (
	AuctionAvailable AuctionStatus = "available"
	AuctionSold      AuctionStatus = "sold"
	AuctionEnded     AuctionStatus = "ended"
	AuctionCancelled AuctionStatus = "cancelled"
)

// Auction is the listing being bid on. CurrentBid is 0 until the first bid
// is accepted, after which it mirrors the most recently accepted amount.
type Auction struct {
	ID             int64
	CurrentBid     float64
	StartingPrice  float64
	BidIncrement   float64
	Status         AuctionStatus
	AuctionEndDate time.Time
	Active         bool
}

// MinimumBid returns the smallest amount the next bid must reach: the
// starting price while no bid is held, otherwise current bid plus increment.
func (a *Auction) MinimumBid() float64 {
	if a.CurrentBid > 0 {
		return a.CurrentBid + a.BidIncrement
	}
	return a.StartingPrice
}
