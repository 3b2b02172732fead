package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	t.Run("same point", func(t *testing.T) {
		assert.InDelta(t, 0, DistanceKm(55.75, 37.61, 55.75, 37.61), 1e-9)
	})

	t.Run("moscow to saint petersburg", func(t *testing.T) {
		d := DistanceKm(55.7558, 37.6173, 59.9343, 30.3351)
		assert.InDelta(t, 634, d, 5)
	})

	t.Run("symmetric", func(t *testing.T) {
		assert.InDelta(t, DistanceKm(40.7, -74.0, 34.0, -118.2), DistanceKm(34.0, -118.2, 40.7, -74.0), 1e-9)
	})
}
