package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/shiva/spotfinder/internal/repository"
)

// ErrSpotNotFound is returned when the spot id does not exist.
var ErrSpotNotFound = errors.New("parking spot not found")

// SpotWriter flips a spot's availability and reports its street.
type SpotWriter interface {
	SetAvailability(ctx context.Context, id int64, available bool) (string, error)
}

// StreetInvalidator drops a street's cached aggregate.
type StreetInvalidator interface {
	InvalidateStreet(ctx context.Context, street string)
}

// AvailabilityService handles spot occupy/release updates.
type AvailabilityService struct {
	writer SpotWriter
	cache  StreetInvalidator
}

// NewAvailabilityService creates an availability service.
func NewAvailabilityService(writer SpotWriter, cache StreetInvalidator) *AvailabilityService {
	return &AvailabilityService{writer: writer, cache: cache}
}

// SetSpotAvailability marks a spot free or taken and invalidates the cached
// aggregate of its street so the next search sees fresh counts.
func (s *AvailabilityService) SetSpotAvailability(ctx context.Context, id int64, available bool) (string, error) {
	street, err := s.writer.SetAvailability(ctx, id, available)
	if errors.Is(err, repository.ErrSpotNotFound) {
		return "", ErrSpotNotFound
	}
	if err != nil {
		return "", fmt.Errorf("set availability: %w", err)
	}

	s.cache.InvalidateStreet(ctx, street)
	log.Printf("[availability] spot #%d on %q available=%v (cache invalidated)", id, street, available)
	return street, nil
}
