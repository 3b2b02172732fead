package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gdugdh24/roomly-backend/internal/domain"
	"github.com/gdugdh24/roomly-backend/internal/repository"
)

type seedFile struct {
	Profiles []map[string]interface{} `yaml:"profiles"`
}

// LoadSeed reads profiles from a YAML file. Keys follow the JSON field names
// of domain.UserProfile; dates must be quoted RFC 3339 strings.
func LoadSeed(path string) ([]*domain.UserProfile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeed(raw)
}

func ParseSeed(raw []byte) ([]*domain.UserProfile, error) {
	var file seedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	profiles := make([]*domain.UserProfile, 0, len(file.Profiles))
	for i, entry := range file.Profiles {
		encoded, err := json.Marshal(entry)
		if err != nil {
			return nil, fmt.Errorf("seed profile %d: %w", i, err)
		}
		var p domain.UserProfile
		if err := json.Unmarshal(encoded, &p); err != nil {
			return nil, fmt.Errorf("seed profile %d: %w", i, err)
		}
		if p.UserID == 0 {
			return nil, fmt.Errorf("seed profile %d: user_id is required", i)
		}
		profiles = append(profiles, &p)
	}
	return profiles, nil
}

// Seed creates every profile that does not exist yet and returns how many
// were added.
func Seed(ctx context.Context, repo repository.ProfileRepository, profiles []*domain.UserProfile) (int, error) {
	added := 0
	for _, p := range profiles {
		err := repo.Create(ctx, p)
		if errors.Is(err, domain.ErrProfileAlreadyExists) {
			continue
		}
		if err != nil {
			return added, fmt.Errorf("failed to seed user %d: %w", p.UserID, err)
		}
		added++
	}
	return added, nil
}
