// Package geo provides great-circle distance math for location-radius
// filtering of search results.
package geo

import "math"

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// Distance returns the haversine distance in kilometers between two
// coordinate pairs given in decimal degrees.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// MilesToKm converts a distance in statute miles to kilometers.
func MilesToKm(miles float64) float64 {
	return miles * 1.60934
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
