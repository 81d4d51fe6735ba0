package geo

import "math"

const earthRadiusKm = 6371

// Distance returns the great-circle distance in kilometres between two
// latitude/longitude pairs given in degrees, using the haversine formula.
func Distance(lat1 float64, lon1 float64, lat2 float64, lon2 float64) float64 {
	deltaLat := degreesToRadians(lat2 - lat1)
	deltaLon := degreesToRadians(lon2 - lon1)

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(degreesToRadians(lat1))*math.Cos(degreesToRadians(lat2))*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// Bearing returns the initial bearing in degrees [0, 360) from the first
// point towards the second.
func Bearing(lat1 float64, lon1 float64, lat2 float64, lon2 float64) float64 {
	phi1 := degreesToRadians(lat1)
	phi2 := degreesToRadians(lat2)
	deltaLon := degreesToRadians(lon2 - lon1)

	y := math.Sin(deltaLon) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(deltaLon)

	bearing := radiansToDegrees(math.Atan2(y, x))

	return math.Mod(bearing+360, 360)
}

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

func radiansToDegrees(radians float64) float64 {
	return radians * 180 / math.Pi
}
