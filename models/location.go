package models

// GeoPoint represents a GeoJSON Point.
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`               // Always "Point"
	Coordinates []float64 `bson:"coordinates" json:"coordinates"` // [longitude, latitude]
}

// NewGeoPoint builds a GeoJSON point from a longitude/latitude pair.
func NewGeoPoint(lng, lat float64) *GeoPoint {
	return &GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

// Location is a free-text address with an optional geocoded coordinate. The
// coordinate is resolved by the geocoding collaborator at creation time and
// may be absent when resolution failed; nothing in the lifecycle depends on it.
type Location struct {
	Address string    `bson:"address" json:"address"`
	Geo     *GeoPoint `bson:"geo,omitempty" json:"geo,omitempty"`
}
