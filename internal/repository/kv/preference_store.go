package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gdugdh24/roomly-backend/internal/domain"
	"github.com/gdugdh24/roomly-backend/internal/repository"
)

const keyPrefix = "roomly:discovery:"

type preferenceStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewPreferenceStore keeps discovery preferences in redis. A zero ttl keeps
// them forever.
func NewPreferenceStore(client redis.Cmdable, ttl time.Duration) repository.PreferenceStore {
	return &preferenceStore{client: client, ttl: ttl}
}

func preferenceKey(viewerID int) string {
	return fmt.Sprintf("%s%d", keyPrefix, viewerID)
}

func (s *preferenceStore) Load(ctx context.Context, viewerID int) (*domain.DiscoveryPreferences, error) {
	data, err := s.client.Get(ctx, preferenceKey(viewerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrPreferencesNotFound
		}
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	var prefs domain.DiscoveryPreferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return nil, fmt.Errorf("failed to decode preferences: %w", err)
	}
	return &prefs, nil
}

func (s *preferenceStore) Save(ctx context.Context, viewerID int, prefs *domain.DiscoveryPreferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	if err := s.client.Set(ctx, preferenceKey(viewerID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}
