package geo

import (
	"errors"
	"math"

	"github.com/Kilat-Pet-Delivery/service-navigation/internal/engine"
)

// ErrMalformedPolyline is returned for encoded polylines that end mid-value.
var ErrMalformedPolyline = errors.New("malformed encoded polyline")

// DecodePolyline decodes an encoded polyline with the given precision, 5 for
// the Google format and 6 for the OSRM/Valhalla format.
func DecodePolyline(encoded string, precision int) ([]engine.GeographicCoordinate, error) {
	factor := math.Pow10(precision)
	points := make([]engine.GeographicCoordinate, 0, len(encoded)/4)

	index, lat, lng := 0, 0, 0
	for index < len(encoded) {
		dLat, next, err := decodeValue(encoded, index)
		if err != nil {
			return nil, err
		}
		dLng, next, err := decodeValue(encoded, next)
		if err != nil {
			return nil, err
		}
		index = next
		lat += dLat
		lng += dLng
		points = append(points, engine.GeographicCoordinate{
			Lat: float64(lat) / factor,
			Lng: float64(lng) / factor,
		})
	}
	return points, nil
}

func decodeValue(encoded string, index int) (int, int, error) {
	shift, result := 0, 0
	for {
		if index >= len(encoded) {
			return 0, index, ErrMalformedPolyline
		}
		b := int(encoded[index]) - 63
		index++
		if b < 0 || shift > 60 {
			return 0, index, ErrMalformedPolyline
		}
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}
	if result&1 != 0 {
		return ^(result >> 1), index, nil
	}
	return result >> 1, index, nil
}

// Bounds returns the bounding box of line. An empty line yields a zero box.
func Bounds(line []engine.GeographicCoordinate) engine.BoundingBox {
	if len(line) == 0 {
		return engine.BoundingBox{}
	}
	box := engine.BoundingBox{SW: line[0], NE: line[0]}
	for _, p := range line[1:] {
		box.SW.Lat = math.Min(box.SW.Lat, p.Lat)
		box.SW.Lng = math.Min(box.SW.Lng, p.Lng)
		box.NE.Lat = math.Max(box.NE.Lat, p.Lat)
		box.NE.Lng = math.Max(box.NE.Lng, p.Lng)
	}
	return box
}
