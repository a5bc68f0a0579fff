package picking

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/md5kit/pkg/math"
)

const (
	// parallelEpsilon is the determinant below which a ray is treated as
	// parallel to the triangle plane.
	parallelEpsilon = 1e-8

	// EdgeTolerance is how close a ray must pass to the edges of a
	// zero-area triangle to count as a hit.
	EdgeTolerance = 1e-3
)

// IntersectTriangle returns the point where the ray crosses triangle abc.
// Both faces are hit; intersections behind the origin are rejected.
//
// Triangles with zero area, or rays lying in the triangle plane, fall back to
// testing the ray against the triangle's edges within EdgeTolerance, so
// collapsed geometry stays selectable.
func (r Ray) IntersectTriangle(a, b, c math.Vec3) (math.Vec3, bool) {
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := r.Direction.Cross(e2)
	det := e1.Dot(p)

	if math32.Abs(det) < parallelEpsilon {
		return r.intersectEdges(a, b, c)
	}
	inv := 1 / det

	s := r.Origin.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return math.Vec3{}, false
	}

	q := s.Cross(e1)
	v := r.Direction.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return math.Vec3{}, false
	}

	t := e2.Dot(q) * inv
	if t < 0 {
		return math.Vec3{}, false
	}
	return r.At(t), true
}

// intersectEdges returns the nearest point along the ray that passes within
// EdgeTolerance of one of the three edges.
func (r Ray) intersectEdges(a, b, c math.Vec3) (math.Vec3, bool) {
	var (
		best  math.Vec3
		bestT float32
		found bool
	)
	for _, edge := range [3][2]math.Vec3{{a, b}, {b, c}, {c, a}} {
		t, point, dist2 := r.closestToSegment(edge[0], edge[1])
		if dist2 > EdgeTolerance*EdgeTolerance {
			continue
		}
		if !found || t < bestT {
			best, bestT, found = point, t, true
		}
	}
	return best, found
}

// closestToSegment finds the closest approach between the ray and segment
// p0-p1. It returns the ray parameter, the closest point on the segment and
// the squared distance between the two closest points.
func (r Ray) closestToSegment(p0, p1 math.Vec3) (float32, math.Vec3, float32) {
	d := r.Direction
	seg := p1.Sub(p0)
	w := r.Origin.Sub(p0)

	a := d.Dot(d)
	e := seg.Dot(seg)
	c := d.Dot(w)

	var s, t float32
	if e <= parallelEpsilon {
		// Segment is a point
		s = math32.Max(0, -c/a)
	} else {
		b := d.Dot(seg)
		f := seg.Dot(w)
		if denom := a*e - b*b; denom != 0 {
			s = math32.Max(0, (b*f-c*e)/denom)
		}
		t = (b*s + f) / e
		switch {
		case t < 0:
			t = 0
			s = math32.Max(0, -c/a)
		case t > 1:
			t = 1
			s = math32.Max(0, (b-c)/a)
		}
	}

	onRay := r.At(s)
	onSeg := p0.Add(seg.Scale(t))
	return s, onSeg, onRay.Sub(onSeg).LengthSquared()
}
