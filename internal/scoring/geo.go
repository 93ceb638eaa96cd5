package scoring

import "math"

// earthRadiusKm is the Earth radius used by every geo computation in
// the engine. Repositories and the kernel must share this formula so
// radius filters and distance terms agree.
const earthRadiusKm = 6371.0

// Haversine returns the great-circle distance in kilometers between
// two coordinates.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1 := lat1 * math.Pi / 180
	rlon1 := lon1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	rlon2 := lon2 * math.Pi / 180

	dlat := rlat2 - rlat1
	dlon := rlon2 - rlon1

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// WithinRadius reports whether the two points are at most radiusKm
// apart. The boundary is inclusive: a point exactly at the radius is in.
func WithinRadius(lat1, lon1, lat2, lon2, radiusKm float64) bool {
	return Haversine(lat1, lon1, lat2, lon2) <= radiusKm
}
