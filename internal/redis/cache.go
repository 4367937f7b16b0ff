package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore caches resolved geocoding data in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// Cache TTL constants
const (
	CoordinatesCacheTTL = time.Hour        // City coordinates rarely move
	PlaceCacheTTL       = 30 * time.Minute // Reverse-geocoded place info
)

// Key prefixes
const (
	cityCoordsPrefix = "cache:citycoords:"
	placeInfoPrefix  = "cache:place:"
)

// CachedCoordinates is a cached geocoding result.
type CachedCoordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// GetCityCoordinates retrieves cached coordinates for a city name.
// Returns (nil, nil) on cache miss.
func (s *CacheStore) GetCityCoordinates(ctx context.Context, city string) (*CachedCoordinates, error) {
	key := cityCoordsPrefix + strings.ToLower(city)
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var coords CachedCoordinates
	if err := json.Unmarshal(data, &coords); err != nil {
		return nil, err
	}
	return &coords, nil
}

// SetCityCoordinates caches coordinates for a city name.
func (s *CacheStore) SetCityCoordinates(ctx context.Context, city string, coords *CachedCoordinates) error {
	key := cityCoordsPrefix + strings.ToLower(city)
	data, err := json.Marshal(coords)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, CoordinatesCacheTTL).Err()
}

// GetPlaceInfo retrieves cached reverse-geocode info for a coordinate.
// Returns (nil, nil) on cache miss.
func (s *CacheStore) GetPlaceInfo(ctx context.Context, lat, lon float64) (map[string]string, error) {
	key := placeKey(lat, lon)
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var info map[string]string
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return info, nil
}

// SetPlaceInfo caches reverse-geocode info for a coordinate.
func (s *CacheStore) SetPlaceInfo(ctx context.Context, lat, lon float64, info map[string]string) error {
	data, err := json.Marshal(info)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, placeKey(lat, lon), data, PlaceCacheTTL).Err()
}

func placeKey(lat, lon float64) string {
	return fmt.Sprintf("%s%.4f_%.4f", placeInfoPrefix, lat, lon)
}
