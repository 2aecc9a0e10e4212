package sphere

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-testutil"
)

const tolerance = 1e-3

func approx(a, b float64) bool {
	return math.Abs(a-b) < tolerance
}

// vecApprox compares by absolute distance. mgl64's ApproxEqual helpers are
// relative, which fails on components that should be zero.
func vecApprox(a, b mgl64.Vec3) bool {
	return a.Sub(b).Len() < tolerance
}

// lonDiff returns the smallest angular difference between two longitudes.
func lonDiff(a, b float64) float64 {
	return math.Abs(WrapLongitude(a - b))
}

func TestNewWorld_DefaultRadius(t *testing.T) {
	testutil.AssertEqual(t, "radius", NewWorld(0).Radius(), DefaultRadius)
	testutil.AssertEqual(t, "radius", NewWorld(-3).Radius(), DefaultRadius)
	testutil.AssertEqual(t, "radius", NewWorld(12).Radius(), 12.0)
}

func TestLatLonToPosition_Conventions(t *testing.T) {
	w := NewWorld(10)

	tests := map[string]struct {
		lat, lon float64
		exp      mgl64.Vec3
	}{
		"north pole":       {lat: 90, lon: 0, exp: mgl64.Vec3{0, 10, 0}},
		"south pole":       {lat: -90, lon: 45, exp: mgl64.Vec3{0, -10, 0}},
		"reference":        {lat: 0, lon: 0, exp: mgl64.Vec3{10, 0, 0}},
		"wrapped lon":      {lat: 0, lon: 360, exp: mgl64.Vec3{10, 0, 0}},
		"clamped lat":      {lat: 120, lon: 0, exp: mgl64.Vec3{0, 10, 0}},
		"antimeridian":     {lat: 0, lon: 180, exp: mgl64.Vec3{-10, 0, 0}},
		"quarter turn":     {lat: 0, lon: 90, exp: mgl64.Vec3{0, 0, -10}},
		"negative quarter": {lat: 0, lon: -90, exp: mgl64.Vec3{0, 0, 10}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := w.LatLonToPosition(tt.lat, tt.lon)
			if !vecApprox(got, tt.exp) {
				t.Errorf("LatLonToPosition(%v, %v) = %v, expected %v", tt.lat, tt.lon, got, tt.exp)
			}
		})
	}
}

func TestPositionToLatLon_RoundTrip(t *testing.T) {
	w := NewWorld(DefaultRadius)

	for lat := -89.0; lat < 90; lat += 7.5 {
		for lon := -180.0; lon < 180; lon += 11.25 {
			ll := w.PositionToLatLon(w.LatLonToPosition(lat, lon))
			if math.Abs(ll.Lat-lat) > 0.1 {
				t.Errorf("lat round trip (%v, %v): got %v", lat, lon, ll.Lat)
			}
			if lonDiff(ll.Lon, lon) > 0.1 {
				t.Errorf("lon round trip (%v, %v): got %v", lat, lon, ll.Lon)
			}
		}
	}
}

func TestProjectToSurface(t *testing.T) {
	w := NewWorld(25)

	points := []mgl64.Vec3{
		{1, 0, 0},
		{100, -3, 7},
		{0.001, 0.002, -0.003},
		{-40, 40, 40},
		{0, 0, -25},
	}

	for _, p := range points {
		got := w.ProjectToSurface(p)
		if !approx(Distance(got, w.Center()), w.Radius()) {
			t.Errorf("ProjectToSurface(%v) distance = %v, expected %v", p, Distance(got, w.Center()), w.Radius())
		}
		if got.Normalize().Dot(p.Normalize()) < 1-tolerance {
			t.Errorf("ProjectToSurface(%v) changed direction: %v", p, got)
		}
	}
}

func TestProjectToSurface_Center(t *testing.T) {
	w := NewWorld(5)
	got := w.ProjectToSurface(mgl64.Vec3{})
	if !vecApprox(got, mgl64.Vec3{0, 5, 0}) {
		t.Errorf("center projected to %v, expected north pole", got)
	}
}

func TestProjectToSurfaceWithHeight(t *testing.T) {
	w := NewWorld(10)
	got := w.ProjectToSurfaceWithHeight(mgl64.Vec3{3, 4, 0}, 2.5)
	testutil.AssertEqual(t, "height", approx(got.Len(), 12.5), true)
}

func TestUpVector(t *testing.T) {
	w := NewWorld(10)
	up := w.UpVector(mgl64.Vec3{0, 0, 30})
	if !vecApprox(up, mgl64.Vec3{0, 0, 1}) {
		t.Errorf("UpVector = %v", up)
	}
	testutil.AssertEqual(t, "unit length", approx(w.UpVector(mgl64.Vec3{3, -8, 1}).Len(), 1), true)
}

func TestSurfaceOrientation_AlignsUp(t *testing.T) {
	w := NewWorld(10)

	tests := map[string]struct {
		lat, lon, heading float64
	}{
		"equator":       {lat: 0, lon: 0, heading: 0},
		"north pole":    {lat: 90, lon: 0, heading: 1.2},
		"south pole":    {lat: -90, lon: 0, heading: 0},
		"mid latitudes": {lat: 37, lon: -122, heading: math.Pi / 3},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			p := w.LatLonToPosition(tt.lat, tt.lon)
			q := w.SurfaceOrientation(p, tt.heading)
			got := q.Rotate(WorldUp)
			if !vecApprox(got, w.UpVector(p)) {
				t.Errorf("rotated up = %v, expected %v", got, w.UpVector(p))
			}
		})
	}
}

func TestLocalAxes_Orthonormal(t *testing.T) {
	w := NewWorld(10)

	for _, heading := range []float64{0, 0.5, math.Pi, -2} {
		p := w.LatLonToPosition(20, 75)
		axes := w.LocalAxes(p, heading)

		testutil.AssertEqual(t, "forward unit", approx(axes.Forward.Len(), 1), true)
		testutil.AssertEqual(t, "right unit", approx(axes.Right.Len(), 1), true)
		testutil.AssertEqual(t, "up unit", approx(axes.Up.Len(), 1), true)
		testutil.AssertEqual(t, "forward.up", approx(axes.Forward.Dot(axes.Up), 0), true)
		testutil.AssertEqual(t, "right.up", approx(axes.Right.Dot(axes.Up), 0), true)
		testutil.AssertEqual(t, "forward.right", approx(axes.Forward.Dot(axes.Right), 0), true)
	}
}

func TestLocalAxes_HeadingTurnsForward(t *testing.T) {
	w := NewWorld(10)
	p := w.LatLonToPosition(10, 10)

	a := w.LocalAxes(p, 0)
	b := w.LocalAxes(p, math.Pi/2)
	testutil.AssertEqual(t, "quarter turn perpendicular", approx(a.Forward.Dot(b.Forward), 0), true)
}

func TestMoveOnSurface(t *testing.T) {
	w := NewWorld(10)
	p := w.LatLonToPosition(15, 30)
	axes := w.LocalAxes(p, 0)

	t.Run("zero distance is identity", func(t *testing.T) {
		testutil.AssertEqual(t, "position", w.MoveOnSurface(p, axes.Forward, 0), p)
	})

	t.Run("positive distance stays on surface", func(t *testing.T) {
		for _, d := range []float64{0.01, 1, 5, 30} {
			got := w.MoveOnSurface(p, axes.Forward, d)
			if !approx(Distance(got, w.Center()), w.Radius()) {
				t.Errorf("distance %v: off surface by %v", d, Distance(got, w.Center())-w.Radius())
			}
			if vecApprox(got, p) {
				t.Errorf("distance %v: did not move", d)
			}
			// A tangent step of d re-projected subtends atan(d/r) at the center.
			chord := 2 * w.Radius() * math.Sin(math.Atan(d/w.Radius())/2)
			if !approx(Distance(got, p), chord) {
				t.Errorf("distance %v: moved %v, expected chord %v", d, Distance(got, p), chord)
			}
		}
	})

	t.Run("non tangent direction uses tangent component", func(t *testing.T) {
		dir := axes.Right.Add(axes.Up.Mul(3))
		got := w.MoveOnSurface(p, dir, 1)
		moved := got.Sub(p).Normalize()
		if moved.Dot(axes.Right) < 0.9 {
			t.Errorf("moved along %v, expected roughly %v", moved, axes.Right)
		}
	})

	t.Run("radial direction does not move", func(t *testing.T) {
		testutil.AssertEqual(t, "position", w.MoveOnSurface(p, axes.Up, 3), p)
	})
}

func TestWrapLongitude(t *testing.T) {
	tests := map[string]struct {
		in, exp float64
	}{
		"in range":  {in: 45, exp: 45},
		"positive":  {in: 370, exp: 10},
		"negative":  {in: -190, exp: 170},
		"edge":      {in: 180, exp: -180},
		"many laps": {in: -725, exp: -5},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "wrapped", approx(WrapLongitude(tt.in), tt.exp), true)
		})
	}
}

func TestZoneAt(t *testing.T) {
	w := NewWorld(10)

	tests := map[string]struct {
		lat, lon float64
		exp      Zone
	}{
		"town square":   {lat: 0, lon: 0, exp: ZoneTown},
		"north peaks":   {lat: 70, lon: 100, exp: ZoneMountain},
		"south docks":   {lat: -80, lon: -10, exp: ZoneHarbor},
		"east woods":    {lat: 10, lon: 90, exp: ZoneForest},
		"west woods":    {lat: -30, lon: -100, exp: ZoneForest},
		"far shore":     {lat: 0, lon: 175, exp: ZoneBeach},
		"between bands": {lat: 30, lon: 0, exp: ZoneBeach},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "zone", w.ZoneAt(w.LatLonToPosition(tt.lat, tt.lon)), tt.exp)
		})
	}
}
