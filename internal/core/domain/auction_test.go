package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinimumBid(t *testing.T) {
	tests := []struct {
		name    string
		auction Auction
		want    float64
	}{
		{"no bids yet", Auction{StartingPrice: 500, BidIncrement: 50}, 500},
		{"one bid held", Auction{CurrentBid: 500, StartingPrice: 500, BidIncrement: 50}, 550},
		{"zero increment", Auction{CurrentBid: 100, StartingPrice: 50}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.auction.MinimumBid())
		})
	}
}

func TestCensorName(t *testing.T) {
	assert.Equal(t, "B***", CensorName("Bob Bidder"))
	assert.Equal(t, "Ü***", CensorName("Über"))
	assert.Equal(t, "", CensorName(""))
}

func TestIsValidation(t *testing.T) {
	err := Rejectf(ReasonBidTooLow, "minimum bid is %.2f", 550.0)
	assert.True(t, IsValidation(err))
	assert.Equal(t, "bid_too_low: minimum bid is 550.00", err.Error())

	assert.False(t, IsValidation(assert.AnError))
	assert.False(t, IsValidation(nil))
}
