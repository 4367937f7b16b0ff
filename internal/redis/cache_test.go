package redis_test

import (
	"context"
	"testing"

	redisstore "dispatch/internal/redis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheStore_CityCoordinatesRoundTrip(t *testing.T) {
	cache := redisstore.NewCacheStore(newTestClient(t))
	ctx := context.Background()

	miss, err := cache.GetCityCoordinates(ctx, "Tashkent")
	require.NoError(t, err)
	assert.Nil(t, miss)

	want := &redisstore.CachedCoordinates{Latitude: 41.3111, Longitude: 69.2797}
	require.NoError(t, cache.SetCityCoordinates(ctx, "Tashkent", want))

	got, err := cache.GetCityCoordinates(ctx, "Tashkent")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.Latitude, got.Latitude)
	assert.Equal(t, want.Longitude, got.Longitude)

	// Lookups are case-insensitive on the city name.
	got, err = cache.GetCityCoordinates(ctx, "tashkent")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestCacheStore_PlaceInfoRoundTrip(t *testing.T) {
	cache := redisstore.NewCacheStore(newTestClient(t))
	ctx := context.Background()

	miss, err := cache.GetPlaceInfo(ctx, 41.3111, 69.2797)
	require.NoError(t, err)
	assert.Nil(t, miss)

	info := map[string]string{"city": "Tashkent", "road": "Amir Temur Avenue"}
	require.NoError(t, cache.SetPlaceInfo(ctx, 41.3111, 69.2797, info))

	got, err := cache.GetPlaceInfo(ctx, 41.3111, 69.2797)
	require.NoError(t, err)
	assert.Equal(t, info, got)

	// A coordinate a few kilometres away hits a different key.
	other, err := cache.GetPlaceInfo(ctx, 41.35, 69.30)
	require.NoError(t, err)
	assert.Nil(t, other)
}
