// Package geocode provides a Nominatim-backed location resolver.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"dispatch/internal/domain"
)

// DefaultBaseURL is the public Nominatim endpoint.
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// Resolver resolves city names and coordinates against a Nominatim server.
type Resolver struct {
	baseURL    string
	httpClient *http.Client
}

// NewResolver creates a new Resolver. An empty baseURL falls back to
// DefaultBaseURL.
func NewResolver(baseURL string, timeout time.Duration) *Resolver {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Resolver{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// CityCoordinates resolves a city name to coordinates. An unknown city
// returns (nil, nil).
func (r *Resolver) CityCoordinates(ctx context.Context, city string) (*domain.Coordinate, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("format", "json")
	q.Set("limit", "1")

	var results []searchResult
	if err := r.get(ctx, "/search", q, &results); err != nil {
		return nil, err
	}

	if len(results) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parse latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parse longitude %q: %w", results[0].Lon, err)
	}

	return &domain.Coordinate{Latitude: lat, Longitude: lon}, nil
}

type reverseResult struct {
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
}

// PlaceInfo resolves a coordinate to address details.
func (r *Resolver) PlaceInfo(ctx context.Context, lat, lon float64) (map[string]string, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', 6, 64))
	q.Set("format", "json")

	var result reverseResult
	if err := r.get(ctx, "/reverse", q, &result); err != nil {
		return nil, err
	}

	info := make(map[string]string, len(result.Address)+1)
	for k, v := range result.Address {
		info[k] = v
	}
	if result.DisplayName != "" {
		info["display_name"] = result.DisplayName
	}

	return info, nil
}

func (r *Resolver) get(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "dispatch-core")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
