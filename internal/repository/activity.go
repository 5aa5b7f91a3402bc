package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/atinyakov/healthmate/internal/models"
)

// ActivityFeedCap is the number of entries retained per owner.
const ActivityFeedCap = 50

// RedisActivityRepository keeps each owner's activity feed as a capped Redis
// list, newest entry first.
type RedisActivityRepository struct {
	c *redis.Client
}

// NewRedisActivityRepository wraps an existing Redis client.
func NewRedisActivityRepository(c *redis.Client) *RedisActivityRepository {
	return &RedisActivityRepository{c: c}
}

func activityKey(owner string) string {
	return "healthmate:activity:" + owner
}

// PushActivity prepends a to its owner's feed and trims the feed to ActivityFeedCap.
func (r *RedisActivityRepository) PushActivity(ctx context.Context, a models.Activity) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode activity: %w", err)
	}
	key := activityKey(a.Owner)
	_, err = r.c.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LPush(ctx, key, payload)
		p.LTrim(ctx, key, 0, ActivityFeedCap-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("push activity: %w", err)
	}
	return nil
}

// RecentActivity returns up to limit of owner's newest entries.
func (r *RedisActivityRepository) RecentActivity(ctx context.Context, owner string, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		return []models.Activity{}, nil
	}
	vals, err := r.c.LRange(ctx, activityKey(owner), 0, int64(limit-1)).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}
	out := make([]models.Activity, 0, len(vals))
	for _, v := range vals {
		var a models.Activity
		if err := json.Unmarshal([]byte(v), &a); err != nil {
			return nil, fmt.Errorf("decode activity: %w", err)
		}
		out = append(out, a)
	}
	return out, nil
}
