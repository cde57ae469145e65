// Package geo has the spherical geometry helpers used for simulation and
// route progress.
package geo

import (
	"math"

	"github.com/Kilat-Pet-Delivery/service-navigation/internal/engine"
)

const earthRadiusM = 6371000.0

// Distance calculates the great-circle distance between two coordinates in meters.
func Distance(a, b engine.GeographicCoordinate) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	lat1Rad := degreesToRadians(a.Lat)
	lat2Rad := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLng/2)*math.Sin(dLng/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusM * c
}

// Bearing returns the initial course from a to b in whole degrees, 0..359.
func Bearing(a, b engine.GeographicCoordinate) uint16 {
	lat1 := degreesToRadians(a.Lat)
	lat2 := degreesToRadians(b.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	y := math.Sin(dLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)
	deg := math.Mod(radiansToDegrees(math.Atan2(y, x))+360, 360)
	return uint16(deg) % 360
}

// Interpolate returns the point at fraction f of the straight segment a→b.
func Interpolate(a, b engine.GeographicCoordinate, f float64) engine.GeographicCoordinate {
	return engine.GeographicCoordinate{
		Lat: a.Lat + (b.Lat-a.Lat)*f,
		Lng: a.Lng + (b.Lng-a.Lng)*f,
	}
}

// ValidCoordinate reports whether c is a real point on the globe.
func ValidCoordinate(c engine.GeographicCoordinate) bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Nearest returns the point on line closest to p and the index of the
// segment it lies on. Segments are treated as planar, which is accurate
// enough at street scale. An empty line returns p and -1.
func Nearest(line []engine.GeographicCoordinate, p engine.GeographicCoordinate) (engine.GeographicCoordinate, int) {
	switch len(line) {
	case 0:
		return p, -1
	case 1:
		return line[0], 0
	}

	best, bestIdx, bestDist := line[0], 0, math.Inf(1)
	for i := 0; i < len(line)-1; i++ {
		q := projectOnSegment(line[i], line[i+1], p)
		if d := Distance(p, q); d < bestDist {
			best, bestIdx, bestDist = q, i, d
		}
	}
	return best, bestIdx
}

// LengthFrom returns the length in meters of line from p, which lies on
// segment seg, to the last point.
func LengthFrom(line []engine.GeographicCoordinate, seg int, p engine.GeographicCoordinate) float64 {
	if seg < 0 || seg >= len(line)-1 {
		if len(line) == 0 {
			return 0
		}
		return Distance(p, line[len(line)-1])
	}
	total := Distance(p, line[seg+1])
	for i := seg + 1; i < len(line)-1; i++ {
		total += Distance(line[i], line[i+1])
	}
	return total
}

func projectOnSegment(a, b, p engine.GeographicCoordinate) engine.GeographicCoordinate {
	scale := math.Cos(degreesToRadians((a.Lat + b.Lat) / 2))
	ax, ay := a.Lng*scale, a.Lat
	bx, by := b.Lng*scale, b.Lat
	px, py := p.Lng*scale, p.Lat

	dx, dy := bx-ax, by-ay
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return a
	}
	t := ((px-ax)*dx + (py-ay)*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return Interpolate(a, b, t)
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func radiansToDegrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}
