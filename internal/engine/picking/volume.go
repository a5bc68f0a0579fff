package picking

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/md5kit/pkg/math"
)

// Intersection classifies a box against a selection volume.
type Intersection int

const (
	Outside Intersection = iota
	Inside
	Partial
)

func (i Intersection) String() string {
	switch i {
	case Outside:
		return "outside"
	case Inside:
		return "inside"
	case Partial:
		return "partial"
	default:
		return "unknown"
	}
}

// Volume is a world-space selection region.
type Volume interface {
	// TestAABB classifies a local-space box placed in the world by localToWorld.
	TestAABB(box AABB, localToWorld math.Mat4) Intersection
}

// BoxVolume selects everything within a world-space box.
type BoxVolume struct {
	Box AABB
}

// TestAABB implements Volume.
func (v BoxVolume) TestAABB(box AABB, localToWorld math.Mat4) Intersection {
	if box.IsEmpty() {
		return Outside
	}
	w := box.Transform(localToWorld)
	if w.Max.X < v.Box.Min.X || w.Min.X > v.Box.Max.X ||
		w.Max.Y < v.Box.Min.Y || w.Min.Y > v.Box.Max.Y ||
		w.Max.Z < v.Box.Min.Z || w.Min.Z > v.Box.Max.Z {
		return Outside
	}
	if w.Min.X >= v.Box.Min.X && w.Max.X <= v.Box.Max.X &&
		w.Min.Y >= v.Box.Min.Y && w.Max.Y <= v.Box.Max.Y &&
		w.Min.Z >= v.Box.Min.Z && w.Max.Z <= v.Box.Max.Z {
		return Inside
	}
	return Partial
}

// Plane is the set of points p with Normal.Dot(p) + D == 0. Points with a
// positive distance are on the inner side.
type Plane struct {
	Normal math.Vec3
	D      float32
}

// Distance returns the signed distance from the plane to p.
func (p Plane) Distance(point math.Vec3) float32 {
	return p.Normal.Dot(point) + p.D
}

func planeFromRow(r math.Vec4) Plane {
	n := math.Vec3{X: r[0], Y: r[1], Z: r[2]}
	length := n.Length()
	if length == 0 {
		return Plane{}
	}
	return Plane{Normal: n.Scale(1 / length), D: r[3] / length}
}

// Frustum is a convex volume bounded by six inward-facing planes.
type Frustum struct {
	Planes [6]Plane // left, right, bottom, top, near, far
}

// NewFrustum extracts the clip planes of a view-projection matrix.
func NewFrustum(viewProj math.Mat4) Frustum {
	r0, r1, r2, r3 := viewProj.Row(0), viewProj.Row(1), viewProj.Row(2), viewProj.Row(3)

	add := func(a, b math.Vec4) math.Vec4 {
		return math.Vec4{a[0] + b[0], a[1] + b[1], a[2] + b[2], a[3] + b[3]}
	}
	sub := func(a, b math.Vec4) math.Vec4 {
		return math.Vec4{a[0] - b[0], a[1] - b[1], a[2] - b[2], a[3] - b[3]}
	}

	return Frustum{Planes: [6]Plane{
		planeFromRow(add(r3, r0)),
		planeFromRow(sub(r3, r0)),
		planeFromRow(add(r3, r1)),
		planeFromRow(sub(r3, r1)),
		planeFromRow(add(r3, r2)),
		planeFromRow(sub(r3, r2)),
	}}
}

// ContainsPoint reports whether p is inside or on every plane.
func (f Frustum) ContainsPoint(p math.Vec3) bool {
	for _, pl := range f.Planes {
		if pl.Distance(p) < 0 {
			return false
		}
	}
	return true
}

// TestAABB implements Volume. For each plane the box corner furthest along
// the normal decides Outside, the nearest one decides Partial.
func (f Frustum) TestAABB(box AABB, localToWorld math.Mat4) Intersection {
	if box.IsEmpty() {
		return Outside
	}
	w := box.Transform(localToWorld)

	result := Inside
	for _, pl := range f.Planes {
		var pos, neg math.Vec3
		pos.X, neg.X = pick(pl.Normal.X, w.Min.X, w.Max.X)
		pos.Y, neg.Y = pick(pl.Normal.Y, w.Min.Y, w.Max.Y)
		pos.Z, neg.Z = pick(pl.Normal.Z, w.Min.Z, w.Max.Z)

		if pl.Distance(pos) < 0 {
			return Outside
		}
		if pl.Distance(neg) < 0 {
			result = Partial
		}
	}
	return result
}

// pick returns the extreme furthest along sign and the opposite one.
func pick(sign, lo, hi float32) (far, near float32) {
	if math32.Signbit(sign) {
		return lo, hi
	}
	return hi, lo
}
