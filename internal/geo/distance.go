package geo

import (
	"fmt"
	"math"
	"net/url"
)

const (
	// EarthRadiusKm is Earth's mean radius in kilometres for the Haversine formula.
	EarthRadiusKm = 6371.0088
	// MaxRadiusKm bounds proximity searches.
	MaxRadiusKm = 500.0
)

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// Valid reports whether p lies within the latitude/longitude ranges.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// HaversineKm calculates the great-circle distance between two points in kilometres.
func HaversineKm(a, b Point) float64 {
	const degToRad = math.Pi / 180
	dLat := (b.Lat - a.Lat) * degToRad
	dLon := (b.Lon - a.Lon) * degToRad
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(a.Lat*degToRad)*math.Cos(b.Lat*degToRad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// IsWithinRadius checks if two coordinates are within radiusKm of each other.
func IsWithinRadius(a, b Point, radiusKm float64) bool {
	return HaversineKm(a, b) <= radiusKm
}

// MapsURL links to a pin at the given coordinates.
func MapsURL(lat, lon float64) string {
	return fmt.Sprintf("https://maps.google.com?q=%g,%g", lat, lon)
}

// CitySearchURL links to a map search for a place name.
func CitySearchURL(name string) string {
	return "https://maps.google.com/search/" + url.PathEscape(name)
}
