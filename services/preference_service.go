package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"bus-booking/models"

	"github.com/redis/go-redis/v9"
)

const (
	prefAPIURL        = "pref:api_url"
	prefAuthToken     = "pref:auth_token"
	prefHasBookedOnce = "pref:has_booked_once"
	prefRatings       = "pref:ratings"
)

// PreferenceService persists small per-user settings across sessions.
type PreferenceService struct {
	Redis redis.Cmdable
}

func NewPreferenceService(redisClient redis.Cmdable) *PreferenceService {
	return &PreferenceService{Redis: redisClient}
}

func (s *PreferenceService) get(ctx context.Context, key string) (string, error) {
	v, err := s.Redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	return v, nil
}

func (s *PreferenceService) APIURL(ctx context.Context) (string, error) {
	return s.get(ctx, prefAPIURL)
}

func (s *PreferenceService) SetAPIURL(ctx context.Context, url string) error {
	return s.Redis.Set(ctx, prefAPIURL, url, 0).Err()
}

func (s *PreferenceService) AuthToken(ctx context.Context) (string, error) {
	return s.get(ctx, prefAuthToken)
}

func (s *PreferenceService) SetAuthToken(ctx context.Context, token string) error {
	if token == "" {
		return s.Redis.Del(ctx, prefAuthToken).Err()
	}
	return s.Redis.Set(ctx, prefAuthToken, token, 0).Err()
}

func (s *PreferenceService) HasBookedOnce(ctx context.Context) (bool, error) {
	v, err := s.get(ctx, prefHasBookedOnce)
	if err != nil {
		return false, err
	}
	return v == "true", nil
}

func (s *PreferenceService) MarkBooked(ctx context.Context) error {
	return s.Redis.Set(ctx, prefHasBookedOnce, "true", 0).Err()
}

// Ratings returns locally remembered ratings by booking id. Entries that fail
// to decode are skipped.
func (s *PreferenceService) Ratings(ctx context.Context) (map[int]models.LocalRating, error) {
	raw, err := s.Redis.HGetAll(ctx, prefRatings).Result()
	if err != nil {
		return nil, fmt.Errorf("get ratings: %w", err)
	}
	out := make(map[int]models.LocalRating, len(raw))
	for field, value := range raw {
		id, err := strconv.Atoi(field)
		if err != nil {
			continue
		}
		var r models.LocalRating
		if err := json.Unmarshal([]byte(value), &r); err != nil {
			continue
		}
		out[id] = r
	}
	return out, nil
}

func (s *PreferenceService) SaveRating(ctx context.Context, bookingID int, r models.LocalRating) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.Redis.HSet(ctx, prefRatings, strconv.Itoa(bookingID), string(data)).Err()
}
