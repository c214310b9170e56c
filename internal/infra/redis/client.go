package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/auctionlab/bidworker/internal/core/domain"
)

// Client wraps Redis operations for the bid queue: the durable work list,
// the dead-letter list, and the result pub/sub channels.
type Client struct {
	rdb   *redis.Client
	queue string
	dead  string
}

// Config holds Redis connection configuration.
type Config struct {
	URL           string `yaml:"url"`
	Password      string `yaml:"password"`
	QueueKey      string `yaml:"queue_key"`
	DeadLetterKey string `yaml:"dead_letter_key"`
}

// NewClient creates a new Redis client.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	queue := cfg.QueueKey
	if queue == "" {
		queue = "bid_queue"
	}
	dead := cfg.DeadLetterKey
	if dead == "" {
		dead = queue + ":dead"
	}

	return &Client{rdb: rdb, queue: queue, dead: dead}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Health checks if Redis is reachable.
func (c *Client) Health(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Pop blocks for up to timeout waiting for the next job payload. The short
// timeout exists so the loop can observe cancellation and connection state,
// not to bound job processing time. Returns (nil, nil) when nothing arrived.
func (c *Client) Pop(ctx context.Context, timeout time.Duration) ([]byte, error) {
	res, err := c.rdb.BRPop(ctx, timeout, c.queue).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("brpop failed: %w", err)
	}
	// BRPOP returns [key, value]
	if len(res) != 2 {
		return nil, fmt.Errorf("brpop returned %d elements", len(res))
	}
	return []byte(res[1]), nil
}

// Push enqueues a job, used both for requeues and recovery re-drives.
func (c *Client) Push(ctx context.Context, job *domain.BidJob) error {
	data, err := job.Encode()
	if err != nil {
		return err
	}
	if err := c.rdb.LPush(ctx, c.queue, data).Err(); err != nil {
		return fmt.Errorf("lpush failed: %w", err)
	}
	return nil
}

// PushDead moves a job that exhausted its retries to the dead-letter list.
func (c *Client) PushDead(ctx context.Context, job *domain.BidJob) error {
	data, err := job.Encode()
	if err != nil {
		return err
	}
	return c.pushDeadRaw(ctx, data)
}

// PushDeadRaw dead-letters a payload that could not be decoded.
func (c *Client) PushDeadRaw(ctx context.Context, payload []byte) error {
	return c.pushDeadRaw(ctx, payload)
}

func (c *Client) pushDeadRaw(ctx context.Context, payload []byte) error {
	if err := c.rdb.LPush(ctx, c.dead, payload).Err(); err != nil {
		return fmt.Errorf("dead-letter lpush failed: %w", err)
	}
	return nil
}

// Depth returns the number of jobs waiting in the queue.
func (c *Client) Depth(ctx context.Context) (int64, error) {
	n, err := c.rdb.LLen(ctx, c.queue).Result()
	if err != nil {
		return 0, fmt.Errorf("llen failed: %w", err)
	}
	return n, nil
}

// DeadDepth returns the number of dead-lettered jobs.
func (c *Client) DeadDepth(ctx context.Context) (int64, error) {
	n, err := c.rdb.LLen(ctx, c.dead).Result()
	if err != nil {
		return 0, fmt.Errorf("llen failed: %w", err)
	}
	return n, nil
}

// RequeueDead moves every dead-lettered payload back onto the work queue
// and returns how many were moved.
func (c *Client) RequeueDead(ctx context.Context) (int, error) {
	moved := 0
	for {
		err := c.rdb.LMove(ctx, c.dead, c.queue, "RIGHT", "LEFT").Err()
		if errors.Is(err, redis.Nil) {
			return moved, nil
		}
		if err != nil {
			return moved, fmt.Errorf("lmove failed: %w", err)
		}
		moved++
	}
}
