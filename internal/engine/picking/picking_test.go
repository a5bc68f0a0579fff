package picking

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/md5kit/pkg/math"
)

func vec(x, y, z float32) math.Vec3 {
	return math.Vec3{X: x, Y: y, Z: z}
}

func TestIntersectTriangle(t *testing.T) {
	a, b, c := vec(-1, -1, 0), vec(1, -1, 0), vec(0, 1, 0)

	tests := []struct {
		name string
		ray  Ray
		hit  bool
		want math.Vec3
	}{
		{"front face", NewRay(vec(0, 0, 5), vec(0, 0, 0)), true, vec(0, 0, 0)},
		{"back face", NewRay(vec(0, 0, -5), vec(0, 0, 0)), true, vec(0, 0, 0)},
		{"behind origin", Ray{Origin: vec(0, 0, 5), Direction: vec(0, 0, 1)}, false, math.Vec3{}},
		{"outside edge", NewRay(vec(2, 2, 5), vec(2, 2, 0)), false, math.Vec3{}},
		{"parallel off plane", Ray{Origin: vec(0, 0, 1), Direction: vec(1, 0, 0)}, false, math.Vec3{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.ray.IntersectTriangle(a, b, c)
			require.Equal(t, tt.hit, ok)
			if ok {
				assert.InDelta(t, tt.want.X, got.X, 1e-5)
				assert.InDelta(t, tt.want.Y, got.Y, 1e-5)
				assert.InDelta(t, tt.want.Z, got.Z, 1e-5)
			}
		})
	}
}

func TestIntersectTriangle_Collapsed(t *testing.T) {
	p := vec(0, 0, 10)

	hit, ok := NewRay(vec(0, 0, 20), p).IntersectTriangle(p, p, p)
	require.True(t, ok)
	assert.InDelta(t, 10, hit.Z, 1e-4)

	_, ok = NewRay(vec(0, 0, 20), vec(5, 5, 20)).IntersectTriangle(p, p, p)
	assert.False(t, ok)

	// Segment-shaped triangle crossed side-on
	hit, ok = NewRay(vec(0, 5, 0), vec(0, 0, 0)).IntersectTriangle(vec(-1, 0, 0), vec(1, 0, 0), vec(0, 0, 0))
	require.True(t, ok)
	assert.InDelta(t, 0, hit.Y, 1e-4)
}

func TestIntersectAABB(t *testing.T) {
	box := NewAABB(vec(1, 1, 1), vec(-1, -1, -1))
	assert.Equal(t, vec(-1, -1, -1), box.Min)

	d, ok := NewRay(vec(0, 0, 5), vec(0, 0, 0)).IntersectAABB(box)
	require.True(t, ok)
	assert.InDelta(t, 4, d, 1e-5)

	// Starting inside returns the exit distance
	d, ok = Ray{Origin: vec(0, 0, 0), Direction: vec(1, 0, 0)}.IntersectAABB(box)
	require.True(t, ok)
	assert.InDelta(t, 1, d, 1e-5)

	_, ok = Ray{Origin: vec(0, 5, 0), Direction: vec(1, 0, 0)}.IntersectAABB(box)
	assert.False(t, ok)
}

func TestAABBTransform(t *testing.T) {
	box := NewAABB(vec(0, 0, 0), vec(2, 1, 1))
	moved := box.Transform(math.Translate(10, 0, 0))
	assert.Equal(t, vec(10, 0, 0), moved.Min)
	assert.Equal(t, vec(12, 1, 1), moved.Max)

	rotated := box.Transform(math.RotateZ(math32.Pi / 2))
	assert.InDelta(t, -1, rotated.Min.X, 1e-5)
	assert.InDelta(t, 2, rotated.Max.Y, 1e-5)

	assert.True(t, EmptyAABB().IsEmpty())
	assert.Equal(t, box, EmptyAABB().Union(box))
}

func TestBoxVolume(t *testing.T) {
	v := BoxVolume{Box: NewAABB(vec(-5, -5, -5), vec(5, 5, 5))}
	unit := NewAABB(vec(-1, -1, -1), vec(1, 1, 1))

	assert.Equal(t, Inside, v.TestAABB(unit, math.Identity()))
	assert.Equal(t, Partial, v.TestAABB(unit, math.Translate(5, 0, 0)))
	assert.Equal(t, Outside, v.TestAABB(unit, math.Translate(10, 0, 0)))
	assert.Equal(t, Outside, v.TestAABB(EmptyAABB(), math.Identity()))
}

func TestFrustum(t *testing.T) {
	proj := math.Perspective(math32.Pi/2, 1, 1, 100)
	view := math.LookAt(vec(0, 0, 10), vec(0, 0, 0), vec(0, 1, 0))
	f := NewFrustum(proj.Mul(view))

	unit := NewAABB(vec(-1, -1, -1), vec(1, 1, 1))
	assert.Equal(t, Inside, f.TestAABB(unit, math.Identity()))
	assert.Equal(t, Outside, f.TestAABB(unit, math.Translate(0, 0, 20)), "behind the camera")
	assert.Equal(t, Partial, f.TestAABB(NewAABB(vec(-500, -500, -500), vec(500, 500, 500)), math.Identity()))

	assert.True(t, f.ContainsPoint(vec(0, 0, 0)))
	assert.False(t, f.ContainsPoint(vec(0, 0, 11)))
}

func TestScreenToRay(t *testing.T) {
	proj := math.Perspective(math32.Pi/2, 1, 1, 100)
	view := math.LookAt(vec(0, 0, 10), vec(0, 0, 0), vec(0, 1, 0))
	inv := proj.Mul(view).Inverse()

	// Center of the screen looks straight down -Z
	r := ScreenToRay(50, 50, 100, 100, inv)
	assert.InDelta(t, 0, r.Direction.X, 1e-4)
	assert.InDelta(t, 0, r.Direction.Y, 1e-4)
	assert.InDelta(t, -1, r.Direction.Z, 1e-4)
	assert.InDelta(t, 9, r.Origin.Z, 1e-3)
}
