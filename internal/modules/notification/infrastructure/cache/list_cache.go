package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/saransh1220/taskpulse/internal/modules/notification/domain"
)

const (
	keyPrefix  = "user:notifications:"
	defaultTTL = 5 * time.Minute
)

// ListCache is a read-through cache of a user's recent notification list.
// Entries expire on their own after the TTL and are deleted outright on
// every mutation touching that user's notifications.
type ListCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewListCache(client *redis.Client) *ListCache {
	return &ListCache{client: client, ttl: defaultTTL}
}

func NewListCacheWithTTL(client *redis.Client, ttl time.Duration) *ListCache {
	return &ListCache{client: client, ttl: ttl}
}

func key(userID uuid.UUID) string {
	return keyPrefix + userID.String()
}

// Get returns the cached snapshot and true on a hit. A redis error is
// treated as a miss so a flaky cache degrades to extra database reads, not
// failures.
func (c *ListCache) Get(ctx context.Context, userID uuid.UUID) (domain.ListSnapshot, bool) {
	val, err := c.client.Get(ctx, key(userID)).Result()
	if err == redis.Nil {
		return domain.ListSnapshot{}, false
	}
	if err != nil {
		log.Printf("[Notification Cache] get failed for %s: %v", userID, err)
		return domain.ListSnapshot{}, false
	}

	var snap domain.ListSnapshot
	if err := json.Unmarshal([]byte(val), &snap); err != nil {
		log.Printf("[Notification Cache] corrupt entry for %s, dropping: %v", userID, err)
		c.client.Del(ctx, key(userID))
		return domain.ListSnapshot{}, false
	}
	return snap, true
}

func (c *ListCache) Set(ctx context.Context, userID uuid.UUID, snap domain.ListSnapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key(userID), data, c.ttl).Err(); err != nil {
		log.Printf("[Notification Cache] set failed for %s: %v", userID, err)
	}
}

func (c *ListCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	if err := c.client.Del(ctx, key(userID)).Err(); err != nil {
		log.Printf("[Notification Cache] invalidate failed for %s: %v", userID, err)
	}
}
