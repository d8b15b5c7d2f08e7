package geo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/staynest/reservation-engine/pkg/models"
	"github.com/staynest/reservation-engine/pkg/storage"
)

var (
	newYork    = models.Coordinate{Latitude: 40.7128, Longitude: -74.0060}
	losAngeles = models.Coordinate{Latitude: 34.0522, Longitude: -118.2437}
)

func TestDistanceKm(t *testing.T) {
	t.Run("Zero For Identical Points", func(t *testing.T) {
		assert.Equal(t, 0.0, DistanceKm(newYork, newYork))
	})

	t.Run("Known Distance", func(t *testing.T) {
		// Great-circle distance New York -> Los Angeles is roughly 3936 km.
		d := DistanceKm(newYork, losAngeles)
		assert.InDelta(t, 3936, d, 10)
	})

	t.Run("Symmetric", func(t *testing.T) {
		assert.InDelta(t, DistanceKm(newYork, losAngeles), DistanceKm(losAngeles, newYork), 1e-6)
	})

	t.Run("Deterministic", func(t *testing.T) {
		assert.Equal(t, DistanceKm(newYork, losAngeles), DistanceKm(newYork, losAngeles))
	})
}

func TestValidate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, Validate(newYork))
		assert.NoError(t, Validate(models.Coordinate{Latitude: 90, Longitude: -180}))
	})

	t.Run("Latitude Out Of Range", func(t *testing.T) {
		err := Validate(models.Coordinate{Latitude: 90.1, Longitude: 0})
		assert.True(t, errors.Is(err, storage.ErrInvalidArgument))
	})

	t.Run("Longitude Out Of Range", func(t *testing.T) {
		err := Validate(models.Coordinate{Latitude: 0, Longitude: -180.1})
		assert.True(t, errors.Is(err, storage.ErrInvalidArgument))
	})
}

func TestFindNearby(t *testing.T) {
	listings := []models.Listing{
		{Id: "far", Location: losAngeles},
		{Id: "close", Location: models.Coordinate{Latitude: 40.7306, Longitude: -73.9352}}, // ~7 km from center
		{Id: "exact", Location: newYork},
	}

	t.Run("Filters And Sorts By Distance", func(t *testing.T) {
		matches, err := FindNearby(newYork, 50, listings)

		assert.NoError(t, err)
		assert.Len(t, matches, 2)
		assert.Equal(t, "exact", matches[0].Listing.Id)
		assert.Equal(t, "close", matches[1].Listing.Id)
		assert.Less(t, matches[1].DistanceKm, 50.0)
	})

	t.Run("Radius Boundary Is Exclusive", func(t *testing.T) {
		d := DistanceKm(newYork, losAngeles)

		matches, err := FindNearby(newYork, d, listings)

		assert.NoError(t, err)
		for _, m := range matches {
			assert.NotEqual(t, "far", m.Listing.Id)
		}
	})

	t.Run("Ties Broken By Listing Id", func(t *testing.T) {
		tied := []models.Listing{
			{Id: "b", Location: newYork},
			{Id: "a", Location: newYork},
		}

		matches, err := FindNearby(newYork, 1, tied)

		assert.NoError(t, err)
		assert.Len(t, matches, 2)
		assert.Equal(t, "a", matches[0].Listing.Id)
		assert.Equal(t, "b", matches[1].Listing.Id)
	})

	t.Run("Invalid Center", func(t *testing.T) {
		_, err := FindNearby(models.Coordinate{Latitude: 200}, 50, listings)
		assert.True(t, errors.Is(err, storage.ErrInvalidArgument))
	})

	t.Run("Non-Positive Radius", func(t *testing.T) {
		_, err := FindNearby(newYork, 0, listings)
		assert.True(t, errors.Is(err, storage.ErrInvalidArgument))
	})

	t.Run("No Candidates", func(t *testing.T) {
		matches, err := FindNearby(newYork, 50, nil)
		assert.NoError(t, err)
		assert.Empty(t, matches)
	})
}
