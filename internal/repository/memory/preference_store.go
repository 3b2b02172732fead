package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gdugdh24/roomly-backend/internal/domain"
	"github.com/gdugdh24/roomly-backend/internal/repository"
)

// PreferenceStore keeps discovery preferences as encoded blobs, the same
// shape the redis store writes.
type PreferenceStore struct {
	mu    sync.RWMutex
	blobs map[int][]byte
}

func NewPreferenceStore() *PreferenceStore {
	return &PreferenceStore{blobs: make(map[int][]byte)}
}

var _ repository.PreferenceStore = (*PreferenceStore)(nil)

func (s *PreferenceStore) Load(ctx context.Context, viewerID int) (*domain.DiscoveryPreferences, error) {
	s.mu.RLock()
	blob, ok := s.blobs[viewerID]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrPreferencesNotFound
	}

	var prefs domain.DiscoveryPreferences
	if err := json.Unmarshal(blob, &prefs); err != nil {
		return nil, fmt.Errorf("failed to decode preferences: %w", err)
	}
	return &prefs, nil
}

func (s *PreferenceStore) Save(ctx context.Context, viewerID int, prefs *domain.DiscoveryPreferences) error {
	blob, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	s.mu.Lock()
	s.blobs[viewerID] = blob
	s.mu.Unlock()
	return nil
}
