// Package sphere models the small planet the game takes place on. Every
// method is a pure function of its inputs; a World only carries its radius
// and center.
package sphere

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultRadius = 50.0

	// epsilon is the length below which a vector is treated as zero.
	epsilon = 1e-9
)

var (
	// WorldUp is the reference "up" of an object before it is placed on the
	// surface. Latitude 90 maps onto it.
	WorldUp = mgl64.Vec3{0, 1, 0}

	// referenceForward is the facing of an unrotated object.
	referenceForward = mgl64.Vec3{0, 0, -1}
)

// LatLon is a surface coordinate in degrees.
type LatLon struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Axes is an orthonormal frame anchored at a surface point.
type Axes struct {
	Forward mgl64.Vec3
	Right   mgl64.Vec3
	Up      mgl64.Vec3
}

// World is a sphere of a fixed radius centered on the origin.
type World struct {
	radius float64
	center mgl64.Vec3
}

// NewWorld creates a world of the given radius. Non-positive radii fall back
// to DefaultRadius.
func NewWorld(radius float64) *World {
	if radius <= 0 {
		radius = DefaultRadius
	}
	return &World{radius: radius}
}

func (w *World) Radius() float64 {
	return w.radius
}

func (w *World) Center() mgl64.Vec3 {
	return w.center
}

// LatLonToPosition maps a latitude/longitude onto the sphere surface.
// Latitude is clamped to [-90, 90] and longitude is wrapped mod 360.
// Latitude 0, longitude 0 lies on +X.
func (w *World) LatLonToPosition(lat, lon float64) mgl64.Vec3 {
	lat = mgl64.Clamp(lat, -90, 90)
	phi := mgl64.DegToRad(90 - lat)
	theta := mgl64.DegToRad(WrapLongitude(lon) + 180)

	return w.center.Add(mgl64.Vec3{
		-w.radius * math.Sin(phi) * math.Cos(theta),
		w.radius * math.Cos(phi),
		w.radius * math.Sin(phi) * math.Sin(theta),
	})
}

// PositionToLatLon is the inverse of LatLonToPosition. Points off the surface
// are classified by their direction from the center.
func (w *World) PositionToLatLon(p mgl64.Vec3) LatLon {
	d := p.Sub(w.center)
	r := d.Len()
	if r < epsilon {
		return LatLon{Lat: 90}
	}

	lat := 90 - mgl64.RadToDeg(math.Acos(mgl64.Clamp(d.Y()/r, -1, 1)))
	theta := math.Atan2(d.Z(), -d.X())

	return LatLon{
		Lat: lat,
		Lon: WrapLongitude(mgl64.RadToDeg(theta) - 180),
	}
}

// ProjectToSurface moves p along its direction from the center so that it
// lies exactly on the surface. The center itself has no direction and
// projects onto the north pole.
func (w *World) ProjectToSurface(p mgl64.Vec3) mgl64.Vec3 {
	return w.ProjectToSurfaceWithHeight(p, 0)
}

// ProjectToSurfaceWithHeight is ProjectToSurface at radius+h.
func (w *World) ProjectToSurfaceWithHeight(p mgl64.Vec3, h float64) mgl64.Vec3 {
	return w.center.Add(w.UpVector(p).Mul(w.radius + h))
}

// UpVector returns the unit direction from the center to p.
func (w *World) UpVector(p mgl64.Vec3) mgl64.Vec3 {
	d := p.Sub(w.center)
	if d.Len() < epsilon {
		return WorldUp
	}
	return d.Normalize()
}

// SurfaceOrientation aligns WorldUp with the local up vector at p, then spins
// the result by heading radians about that up vector.
func (w *World) SurfaceOrientation(p mgl64.Vec3, heading float64) mgl64.Quat {
	up := w.UpVector(p)
	align := mgl64.QuatBetweenVectors(WorldUp, up)
	spin := mgl64.QuatRotate(heading, up)
	return spin.Mul(align).Normalize()
}

// LocalAxes returns the movement frame at p for the given heading.
func (w *World) LocalAxes(p mgl64.Vec3, heading float64) Axes {
	up := w.UpVector(p)
	forward := w.SurfaceOrientation(p, heading).Rotate(referenceForward)

	// Strip any drift off the tangent plane before building the frame.
	forward = forward.Sub(up.Mul(forward.Dot(up))).Normalize()

	return Axes{
		Forward: forward,
		Right:   forward.Cross(up).Normalize(),
		Up:      up,
	}
}

// MoveOnSurface displaces p by distance along the component of dir tangent to
// the sphere at p, then re-projects onto the surface. A zero distance, or a
// direction with no tangent component, leaves p unchanged.
func (w *World) MoveOnSurface(p mgl64.Vec3, dir mgl64.Vec3, distance float64) mgl64.Vec3 {
	if distance == 0 {
		return p
	}

	up := w.UpVector(p)
	tangent := dir.Sub(up.Mul(dir.Dot(up)))
	if tangent.Len() < epsilon {
		return p
	}

	return w.ProjectToSurface(p.Add(tangent.Normalize().Mul(distance)))
}

// Distance is the straight-line distance between two points.
func Distance(a, b mgl64.Vec3) float64 {
	return a.Sub(b).Len()
}

// WrapLongitude wraps lon into [-180, 180).
func WrapLongitude(lon float64) float64 {
	l := math.Mod(lon+180, 360)
	if l < 0 {
		l += 360
	}
	return l - 180
}
