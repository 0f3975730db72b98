package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dentalops/clinic-api/internal/schedule"
)

// SlotCache keeps computed slot lists in redis so repeated availability
// lookups for the same doctor, date and service skip the template and
// appointment reads. Entries are invalidated whenever a booking commits or
// a doctor saves a new schedule; the TTL is a backstop, not the mechanism.
type SlotCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSlotCache(url string, ttl time.Duration) (*SlotCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &SlotCache{client: client, ttl: ttl}, nil
}

func slotKey(doctorID uuid.UUID, date string, serviceID uuid.UUID) string {
	return fmt.Sprintf("slots:%s:%s:%s", doctorID, date, serviceID)
}

// GetSlots returns the cached slot list, or ok=false on miss or any redis
// failure. A broken cache must never break slot computation.
func (c *SlotCache) GetSlots(ctx context.Context, doctorID uuid.UUID, date string, serviceID uuid.UUID) ([]schedule.TimePoint, bool) {
	raw, err := c.client.Get(ctx, slotKey(doctorID, date, serviceID)).Bytes()
	if err != nil {
		return nil, false
	}

	var slots []schedule.TimePoint
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, false
	}
	return slots, true
}

func (c *SlotCache) StoreSlots(ctx context.Context, doctorID uuid.UUID, date string, serviceID uuid.UUID, slots []schedule.TimePoint) {
	raw, err := json.Marshal(slots)
	if err != nil {
		return
	}
	c.client.Set(ctx, slotKey(doctorID, date, serviceID), raw, c.ttl)
}

// InvalidateDay drops every cached slot list for the doctor and date,
// regardless of service. Called after a booking commits.
func (c *SlotCache) InvalidateDay(ctx context.Context, doctorID uuid.UUID, date string) {
	c.deletePattern(ctx, fmt.Sprintf("slots:%s:%s:*", doctorID, date))
}

// InvalidateDoctor drops every cached slot list for the doctor. Called after
// a schedule save replaces the weekly template.
func (c *SlotCache) InvalidateDoctor(ctx context.Context, doctorID uuid.UUID) {
	c.deletePattern(ctx, fmt.Sprintf("slots:%s:*", doctorID))
}

func (c *SlotCache) deletePattern(ctx context.Context, pattern string) {
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		c.client.Del(ctx, iter.Val())
	}
}

func (c *SlotCache) Close() error {
	return c.client.Close()
}
