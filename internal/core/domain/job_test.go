package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJobDefaultsToBid(t *testing.T) {
	payload := []byte(`{"productId":1,"bidderId":2,"amount":500,"timestamp":1700000000000}`)

	job, err := DecodeJob(payload)
	require.NoError(t, err)

	assert.Equal(t, JobTypeBid, job.Type)
	assert.Equal(t, int64(1), job.ProductID)
	assert.Equal(t, int64(2), job.BidderID)
	assert.Equal(t, 500.0, job.Amount)
	assert.Empty(t, job.JobID)
	assert.Zero(t, job.RetryCount)
}

func TestDecodeJobUnknownTypeIsBid(t *testing.T) {
	payload := []byte(`{"type":"mystery","productId":1,"bidderId":2,"amount":10,"timestamp":1}`)

	job, err := DecodeJob(payload)
	require.NoError(t, err)
	assert.Equal(t, JobTypeBid, job.Type)
}

func TestDecodeJobAcceptBid(t *testing.T) {
	payload := []byte(`{"type":"accept_bid","jobId":"j-1","productId":1,"bidderId":2,"sellerId":3,"amount":550,"timestamp":1,"retryCount":2}`)

	job, err := DecodeJob(payload)
	require.NoError(t, err)

	assert.Equal(t, JobTypeAcceptBid, job.Type)
	assert.Equal(t, "j-1", job.JobID)
	assert.Equal(t, int64(3), job.SellerID)
	assert.Equal(t, 2, job.RetryCount)
}

func TestDecodeJobErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"malformed json", `{"productId":`},
		{"missing productId", `{"bidderId":2,"amount":10}`},
		{"missing bidderId", `{"productId":1,"amount":10}`},
		{"non-positive amount", `{"productId":1,"bidderId":2,"amount":0}`},
		{"accept without sellerId", `{"type":"accept_bid","productId":1,"bidderId":2,"amount":10}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeJob([]byte(tt.payload))
			assert.Error(t, err)
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	job := &BidJob{
		JobID:      "j-9",
		Type:       JobTypeBid,
		ProductID:  7,
		BidderID:   8,
		Amount:     123.45,
		Timestamp:  1700000000000,
		CensorName: true,
		RetryCount: 1,
	}

	data, err := job.Encode()
	require.NoError(t, err)

	decoded, err := DecodeJob(data)
	require.NoError(t, err)
	assert.Equal(t, job, decoded)
}
