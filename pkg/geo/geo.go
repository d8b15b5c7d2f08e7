package geo

import (
	"fmt"
	"math"
	"sort"

	"github.com/staynest/reservation-engine/pkg/models"
	"github.com/staynest/reservation-engine/pkg/storage"
)

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371

// Validate checks that the coordinate is within latitude/longitude bounds.
func Validate(c models.Coordinate) error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("%w: latitude %f out of range [-90, 90]", storage.ErrInvalidArgument, c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: longitude %f out of range [-180, 180]", storage.ErrInvalidArgument, c.Longitude)
	}
	return nil
}

// DistanceKm returns the great-circle distance between two coordinates in
// kilometers using the haversine formula. It is symmetric in its arguments.
func DistanceKm(a, b models.Coordinate) float64 {
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Latitude*math.Pi/180)*math.Cos(b.Latitude*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// Match is a listing paired with its distance from a search center.
type Match struct {
	Listing    models.Listing
	DistanceKm float64
}

// FindNearby filters candidates to those strictly closer than radiusKm from
// center, sorted ascending by distance with ties broken by listing id so the
// ordering is deterministic for identical inputs.
func FindNearby(center models.Coordinate, radiusKm float64, candidates []models.Listing) ([]Match, error) {
	if err := Validate(center); err != nil {
		return nil, err
	}
	if radiusKm <= 0 {
		return nil, fmt.Errorf("%w: radius must be positive, got %f", storage.ErrInvalidArgument, radiusKm)
	}

	matches := make([]Match, 0, len(candidates))
	for _, listing := range candidates {
		d := DistanceKm(center, listing.Location)
		if d < radiusKm {
			matches = append(matches, Match{Listing: listing, DistanceKm: d})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].DistanceKm != matches[j].DistanceKm {
			return matches[i].DistanceKm < matches[j].DistanceKm
		}
		return matches[i].Listing.Id < matches[j].Listing.Id
	})

	return matches, nil
}
