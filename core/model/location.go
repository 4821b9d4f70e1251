package model

import "math"

const earthRadiusKm = 6371.0

// Location is a geographic point in decimal degrees.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DistanceKm returns the great-circle distance in kilometres between l and o.
func (l Location) DistanceKm(o Location) float64 {
	dLat := radians(o.Lat - l.Lat)
	dLng := radians(o.Lng - l.Lng)

	rLat1 := radians(l.Lat)
	rLat2 := radians(o.Lat)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
