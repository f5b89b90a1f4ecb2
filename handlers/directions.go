package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"helpr/config"

	"github.com/gin-gonic/gin"
)

// DirectionsResponse represents the structure of the response from Google Directions API.
type DirectionsResponse struct {
	Routes []struct {
		OverviewPolyline struct {
			Points string `json:"points"`
		} `json:"overview_polyline"`
	} `json:"routes"`
}

// GetDirections fetches directions from Google and returns the polyline for
// the provider's route to the job.
func GetDirections(c *gin.Context) {
	originLat := c.Query("originLat")
	originLng := c.Query("originLng")
	destLat := c.Query("destLat")
	destLng := c.Query("destLng")

	if originLat == "" || originLng == "" || destLat == "" || destLng == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required query parameters: originLat, originLng, destLat, destLng"})
		return
	}

	apiKey := config.AppConfig.GoogleAPIKey
	if apiKey == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "API authentication error"})
		return
	}

	reqURL := fmt.Sprintf(
		"https://maps.googleapis.com/maps/api/directions/json?origin=%s,%s&destination=%s,%s&key=%s",
		originLat, originLng, destLat, destLng, apiKey,
	)

	resp, err := http.Get(reqURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Please try again later"})
		return
	}
	defer resp.Body.Close()

	var directions DirectionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&directions); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Please try again later"})
		return
	}

	if len(directions.Routes) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No route found"})
		return
	}

	polyline := directions.Routes[0].OverviewPolyline.Points
	c.JSON(http.StatusOK, gin.H{"polyline": polyline})
}

// GeocodeAddress resolves a typed address to coordinates for the apps.
func GeocodeAddress(c *gin.Context) {
	address := c.Query("address")
	if address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required query parameter: address"})
		return
	}

	apiKey := config.AppConfig.GoogleAPIKey
	if apiKey == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "API authentication error"})
		return
	}

	reqURL := fmt.Sprintf(
		"https://maps.googleapis.com/maps/api/geocode/json?address=%s&key=%s",
		url.QueryEscape(address), apiKey,
	)

	resp, err := http.Get(reqURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Geocoding request failed"})
		return
	}
	defer resp.Body.Close()

	var data map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode geocoding response"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": data["results"]})
}

// ReverseGeocode resolves coordinates back to an address.
func ReverseGeocode(c *gin.Context) {
	latitude := c.Query("latitude")
	longitude := c.Query("longitude")

	if latitude == "" || longitude == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required query parameters: latitude, longitude"})
		return
	}

	apiKey := config.AppConfig.GoogleAPIKey
	if apiKey == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "API authentication error"})
		return
	}

	reqURL := fmt.Sprintf(
		"https://maps.googleapis.com/maps/api/geocode/json?latlng=%s,%s&key=%s",
		latitude, longitude, apiKey,
	)

	resp, err := http.Get(reqURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Reverse geocoding request failed"})
		return
	}
	defer resp.Body.Close()

	var data map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode reverse geocoding response"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": data["results"]})
}
