package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrSessionNotFound means the token has no live session (never issued,
// expired, or logged out).
var ErrSessionNotFound = errors.New("session not found")

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// SetSession stores a session token bound to a user ID with a TTL
func (c *Client) SetSession(ctx context.Context, token string, userID int64, ttl time.Duration) error {
	return c.rdb.Set(ctx, fmt.Sprintf("session:%s", token), userID, ttl).Err()
}

// GetSession resolves a session token to the user ID it was issued for.
// Returns ErrSessionNotFound for unknown or expired tokens.
func (c *Client) GetSession(ctx context.Context, token string) (int64, error) {
	userID, err := c.rdb.Get(ctx, fmt.Sprintf("session:%s", token)).Int64()
	if err == redis.Nil {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, err
	}
	return userID, nil
}

// RefreshSession extends a live session's TTL (sliding expiration)
func (c *Client) RefreshSession(ctx context.Context, token string, ttl time.Duration) error {
	return c.rdb.Expire(ctx, fmt.Sprintf("session:%s", token), ttl).Err()
}

// DeleteSession removes a session token
func (c *Client) DeleteSession(ctx context.Context, token string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("session:%s", token)).Err()
}

// RecordLoginFailure bumps the failed-login counter for a username and
// returns the new count. The window opens on the first failure.
func (c *Client) RecordLoginFailure(ctx context.Context, username string, window time.Duration) (int64, error) {
	key := fmt.Sprintf("login_failures:%s", username)

	count, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := c.rdb.Expire(ctx, key, window).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}

// LoginFailures returns the current failed-login count for a username
func (c *Client) LoginFailures(ctx context.Context, username string) (int64, error) {
	count, err := c.rdb.Get(ctx, fmt.Sprintf("login_failures:%s", username)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return count, err
}

// ClearLoginFailures resets the failed-login counter after a successful login
func (c *Client) ClearLoginFailures(ctx context.Context, username string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("login_failures:%s", username)).Err()
}
