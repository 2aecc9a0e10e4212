package sphere

import "github.com/go-gl/mathgl/mgl64"

// Zone is a named region of the planet surface.
type Zone string

const (
	ZoneTown     Zone = "town"
	ZoneForest   Zone = "forest"
	ZoneMountain Zone = "mountain"
	ZoneHarbor   Zone = "harbor"
	ZoneBeach    Zone = "beach"
)

// zoneBand is an inclusive latitude/longitude rectangle.
type zoneBand struct {
	zone           Zone
	minLat, maxLat float64
	minLon, maxLon float64
}

func (b zoneBand) contains(ll LatLon) bool {
	return ll.Lat >= b.minLat && ll.Lat <= b.maxLat &&
		ll.Lon >= b.minLon && ll.Lon <= b.maxLon
}

// zoneBands is checked in order; the first band containing a point wins and
// anything left over is beach.
var zoneBands = []zoneBand{
	{zone: ZoneMountain, minLat: 55, maxLat: 90, minLon: -180, maxLon: 180},
	{zone: ZoneHarbor, minLat: -90, maxLat: -55, minLon: -180, maxLon: 180},
	{zone: ZoneTown, minLat: -20, maxLat: 20, minLon: -40, maxLon: 40},
	{zone: ZoneForest, minLat: -55, maxLat: 55, minLon: 40, maxLon: 160},
	{zone: ZoneForest, minLat: -55, maxLat: 55, minLon: -160, maxLon: -40},
}

// ZoneAt classifies the surface point beneath p.
func (w *World) ZoneAt(p mgl64.Vec3) Zone {
	return ZoneOf(w.PositionToLatLon(p))
}

// ZoneOf classifies a latitude/longitude.
func ZoneOf(ll LatLon) Zone {
	for _, b := range zoneBands {
		if b.contains(ll) {
			return b.zone
		}
	}
	return ZoneBeach
}
