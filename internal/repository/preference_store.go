package repository

import (
	"context"

	"github.com/gdugdh24/roomly-backend/internal/domain"
)

// PreferenceStore keeps the discovery filters and search query of a viewer
// under a single key. Load returns domain.ErrPreferencesNotFound when nothing
// was saved yet.
type PreferenceStore interface {
	Load(ctx context.Context, viewerID int) (*domain.DiscoveryPreferences, error)
	Save(ctx context.Context, viewerID int, prefs *domain.DiscoveryPreferences) error
}
