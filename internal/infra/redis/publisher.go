package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/auctionlab/bidworker/internal/core/domain"
)

// Result events go out over pub/sub channels the real-time delivery service
// is subscribed to. Delivery is at-most-once; subscribers that miss an
// event fall back to polling state.

func productChannel(productID int64) string {
	return fmt.Sprintf("sse:product:%d", productID)
}

func userChannel(userID int64) string {
	return fmt.Sprintf("sse:user:%d", userID)
}

// PublishBidResult publishes a bid outcome on the auction's channel.
func (c *Client) PublishBidResult(ctx context.Context, productID int64, res *domain.BidResult) error {
	return c.publish(ctx, productChannel(productID), res)
}

// PublishAcceptResult publishes a sale outcome on the auction's channel.
func (c *Client) PublishAcceptResult(ctx context.Context, productID int64, res *domain.AcceptResult) error {
	return c.publish(ctx, productChannel(productID), res)
}

// PublishNotification publishes a settlement notification on the buyer's channel.
func (c *Client) PublishNotification(ctx context.Context, userID int64, n *domain.Notification) error {
	return c.publish(ctx, userChannel(userID), n)
}

func (c *Client) publish(ctx context.Context, channel string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := c.rdb.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish to %s failed: %w", channel, err)
	}
	return nil
}
