package service

import (
	"context"

	"dispatch/internal/domain"
	"dispatch/internal/logger"
	redisstore "dispatch/internal/redis"
	"dispatch/internal/repository"
)

// LocationResolver is the injected geocoding capability. Implementations
// resolve a city name to coordinates and coordinates to place details; the
// dispatch core never talks to a geocoding provider directly.
type LocationResolver interface {
	CityCoordinates(ctx context.Context, city string) (*domain.Coordinate, error)
	PlaceInfo(ctx context.Context, lat, lon float64) (map[string]string, error)
}

// DefaultMaxDistanceKm is the radius within which a point is considered to be
// inside a city.
const DefaultMaxDistanceKm = 20.0

// LocationService validates passenger locations against city geometry. The
// resolver is consulted through a Redis cache; the city table provides a
// fallback for cities with stored coordinates.
type LocationService struct {
	resolver LocationResolver
	cache    *redisstore.CacheStore
	cityRepo repository.CityRepository
	log      logger.Logger
}

// NewLocationService creates a new LocationService. cache may be nil, in
// which case every lookup goes to the resolver.
func NewLocationService(
	resolver LocationResolver,
	cache *redisstore.CacheStore,
	cityRepo repository.CityRepository,
	log logger.Logger,
) *LocationService {
	return &LocationService{
		resolver: resolver,
		cache:    cache,
		cityRepo: cityRepo,
		log:      log,
	}
}

// ValidateCityLocationRequest contains the parameters for a location check.
// A zero MaxDistanceKm uses DefaultMaxDistanceKm.
type ValidateCityLocationRequest struct {
	City          string
	Latitude      float64
	Longitude     float64
	MaxDistanceKm float64
}

// CityValidationResult is the outcome of a location check.
type CityValidationResult struct {
	Valid         bool
	DistanceKm    float64
	MaxDistanceKm float64
	CityLatitude  float64
	CityLongitude float64
	Message       string
}

// ValidateCityLocation checks that a point lies within the given city's
// radius. An unresolvable city yields an invalid result, not an error.
func (s *LocationService) ValidateCityLocation(ctx context.Context, req ValidateCityLocationRequest) (*CityValidationResult, error) {
	if req.City == "" || !validLatitude(req.Latitude) || !validLongitude(req.Longitude) {
		return nil, ErrInvalidLocation
	}

	maxKm := req.MaxDistanceKm
	if maxKm <= 0 {
		maxKm = DefaultMaxDistanceKm
	}

	coords := s.cityCoordinates(ctx, req.City)
	if coords == nil {
		return &CityValidationResult{
			Valid:         false,
			MaxDistanceKm: maxKm,
			Message:       "city coordinates not found",
		}, nil
	}

	dist := domain.Distance(req.Latitude, req.Longitude, coords.Latitude, coords.Longitude)

	result := &CityValidationResult{
		Valid:         dist <= maxKm,
		DistanceKm:    dist,
		MaxDistanceKm: maxKm,
		CityLatitude:  coords.Latitude,
		CityLongitude: coords.Longitude,
	}
	if !result.Valid {
		result.Message = "location is outside the city radius"
	}

	return result, nil
}

// NearestAllowedCity returns the closest dispatchable city within maxKm of
// the point, along with the distance to it.
func (s *LocationService) NearestAllowedCity(ctx context.Context, lat, lon, maxKm float64) (*domain.City, float64, error) {
	if !validLatitude(lat) || !validLongitude(lon) {
		return nil, 0, ErrInvalidLocation
	}

	if maxKm <= 0 {
		maxKm = DefaultMaxDistanceKm
	}

	cities, err := s.cityRepo.ListAllowed(ctx)
	if err != nil {
		return nil, 0, err
	}

	var (
		best     *domain.City
		bestDist float64
	)
	for _, city := range cities {
		if city.Latitude == 0 && city.Longitude == 0 {
			continue
		}
		dist := domain.Distance(lat, lon, city.Latitude, city.Longitude)
		if dist > maxKm {
			continue
		}
		if best == nil || dist < bestDist {
			best = city
			bestDist = dist
		}
	}

	if best == nil {
		return nil, 0, ErrCityNotFound
	}

	return best, bestDist, nil
}

// PlaceInfo resolves a coordinate to place details through the cache.
func (s *LocationService) PlaceInfo(ctx context.Context, lat, lon float64) (map[string]string, error) {
	if !validLatitude(lat) || !validLongitude(lon) {
		return nil, ErrInvalidLocation
	}

	if s.cache != nil {
		info, err := s.cache.GetPlaceInfo(ctx, lat, lon)
		if err != nil {
			s.log.Error("place cache read", logger.Error(err))
		}
		if info != nil {
			return info, nil
		}
	}

	info, err := s.resolver.PlaceInfo(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && info != nil {
		if err := s.cache.SetPlaceInfo(ctx, lat, lon, info); err != nil {
			s.log.Error("place cache write", logger.Error(err))
		}
	}

	return info, nil
}

// cityCoordinates resolves a city through the cache, the resolver, and the
// city table, in that order. A nil result means the city is unknown.
func (s *LocationService) cityCoordinates(ctx context.Context, city string) *domain.Coordinate {
	if s.cache != nil {
		cached, err := s.cache.GetCityCoordinates(ctx, city)
		if err != nil {
			s.log.Error("city cache read", logger.String("city", city), logger.Error(err))
		}
		if cached != nil {
			return &domain.Coordinate{Latitude: cached.Latitude, Longitude: cached.Longitude}
		}
	}

	coords, err := s.resolver.CityCoordinates(ctx, city)
	if err != nil {
		s.log.Error("resolve city", logger.String("city", city), logger.Error(err))
	}

	if coords == nil {
		stored, err := s.cityRepo.GetByTitle(ctx, city)
		if err == nil && (stored.Latitude != 0 || stored.Longitude != 0) {
			coords = &domain.Coordinate{Latitude: stored.Latitude, Longitude: stored.Longitude}
		}
	}

	if coords != nil && s.cache != nil {
		cached := &redisstore.CachedCoordinates{Latitude: coords.Latitude, Longitude: coords.Longitude}
		if err := s.cache.SetCityCoordinates(ctx, city, cached); err != nil {
			s.log.Error("city cache write", logger.String("city", city), logger.Error(err))
		}
	}

	return coords
}

func validLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

func validLongitude(lon float64) bool {
	return lon >= -180 && lon <= 180
}
