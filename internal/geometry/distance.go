package geometry

import "math"

// Mean Earth radius in meters. The model is a plain sphere with no
// ellipsoidal correction, adequate for short-range "nearby" comparisons
// but not for authoritative geodesy.
const earthRadiusMeters = 6371000.0

// HaversineMeters returns the great-circle distance in meters between two
// (lat, lon) pairs given in WGS84-style degrees.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}
