package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const snapshotPrefix = "snapshot:"

// Snapshot keys for the read paths.
const (
	SnapshotRoutes     = "cache_routes"
	SnapshotSchedules  = "cache_schedules"
	SnapshotMyBookings = "cache_mybookings"
)

func SnapshotReserved(scheduleID int) string {
	return fmt.Sprintf("cache_reserved:%d", scheduleID)
}

// SnapshotService keeps the last successful response of each read path so it
// can be shown while the API is unreachable.
type SnapshotService struct {
	Redis redis.Cmdable
	TTL   time.Duration
}

func NewSnapshotService(redisClient redis.Cmdable, ttl time.Duration) *SnapshotService {
	return &SnapshotService{Redis: redisClient, TTL: ttl}
}

func (s *SnapshotService) Save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", key, err)
	}
	if err := s.Redis.Set(ctx, snapshotPrefix+key, string(data), s.TTL).Err(); err != nil {
		return fmt.Errorf("save snapshot %s: %w", key, err)
	}
	return nil
}

// Load decodes the snapshot into dst. It reports false when none exists.
func (s *SnapshotService) Load(ctx context.Context, key string, dst any) (bool, error) {
	data, err := s.Redis.Get(ctx, snapshotPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load snapshot %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	return true, nil
}
