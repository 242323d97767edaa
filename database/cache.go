package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"splitledger-backend/models"
)

const balanceCacheTTL = 5 * time.Minute

// BalanceCache caches computed group balance summaries in Redis. All methods
// are safe on a nil receiver or nil client, so code paths never branch on
// whether caching is configured.
type BalanceCache struct {
	client *redis.Client
}

func NewBalanceCache(client *redis.Client) *BalanceCache {
	return &BalanceCache{client: client}
}

func balanceKey(groupID uuid.UUID) string {
	return fmt.Sprintf("balances:%s", groupID)
}

// Get returns the cached summary for a group, or (nil, nil) on a miss.
func (c *BalanceCache) Get(ctx context.Context, groupID uuid.UUID) (*models.GroupBalanceSummary, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}

	raw, err := c.client.Get(ctx, balanceKey(groupID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var summary models.GroupBalanceSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Set stores a summary for the group with a short TTL.
func (c *BalanceCache) Set(ctx context.Context, groupID uuid.UUID, summary *models.GroupBalanceSummary) error {
	if c == nil || c.client == nil {
		return nil
	}

	raw, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, balanceKey(groupID), raw, balanceCacheTTL).Err()
}

// Invalidate drops the cached summary for a group. Called after every
// committed event that moves balances.
func (c *BalanceCache) Invalidate(ctx context.Context, groupID uuid.UUID) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, balanceKey(groupID)).Err()
}
