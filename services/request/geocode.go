package request

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"helpr/config"
	"helpr/models"
)

// Geocoder resolves a street address to coordinates. Failures are ordinary
// errors; callers never block a write on them.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*models.GeoPoint, error)
}

// GoogleGeocoder resolves addresses through the Google geocoding API.
type GoogleGeocoder struct{}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

func (GoogleGeocoder) Geocode(ctx context.Context, address string) (*models.GeoPoint, error) {
	apiKey := config.AppConfig.GoogleAPIKey
	if apiKey == "" {
		return nil, fmt.Errorf("google api key is not configured")
	}

	reqURL := fmt.Sprintf(
		"https://maps.googleapis.com/maps/api/geocode/json?address=%s&key=%s",
		url.QueryEscape(address), apiKey,
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	var data geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode geocoding response: %w", err)
	}
	if data.Status != "OK" || len(data.Results) == 0 {
		return nil, fmt.Errorf("no geocoding result for %q (status %s)", address, data.Status)
	}

	loc := data.Results[0].Geometry.Location
	return models.NewGeoPoint(loc.Lng, loc.Lat), nil
}
