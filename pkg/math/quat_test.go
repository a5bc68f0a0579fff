package math

import (
	"math"
	"testing"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
}

func TestQuatNormalize(t *testing.T) {
	n := Quat{X: 1, Y: 2, Z: 3, W: 4}.Normalize()

	length := math.Sqrt(float64(n.LengthSquared()))
	if math.Abs(length-1.0) > 0.0001 {
		t.Errorf("Normalized quaternion length should be 1, got %v", length)
	}
}

func TestQuatFromRawRotation(t *testing.T) {
	tests := []struct {
		name  string
		raw   Vec3
		wantW float32
	}{
		{"identity", Vec3{0, 0, 0}, -1},
		{"half turn about x", Vec3{1, 0, 0}, 0},
		{"overshoot clamps to zero", Vec3{0.8, 0.8, 0}, 0},
		{"slight overshoot", Vec3{1.0001, 0, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := QuatFromRawRotation(tt.raw)
			if q.W != tt.wantW {
				t.Errorf("W = %v, want %v", q.W, tt.wantW)
			}
			if q.X != tt.raw.X || q.Y != tt.raw.Y || q.Z != tt.raw.Z {
				t.Errorf("xyz changed: got (%v,%v,%v), want %v", q.X, q.Y, q.Z, tt.raw)
			}
		})
	}
}

func TestQuatFromRawRotationUnitNorm(t *testing.T) {
	raws := []Vec3{
		{0.1, 0.2, 0.3},
		{-0.5, 0.5, -0.5},
		{0.70710677, 0, 0.70710677},
		{0, 0, 0.9999},
	}
	for _, raw := range raws {
		q := QuatFromRawRotation(raw)
		if d := math.Abs(float64(q.LengthSquared()) - 1); d > 1e-5 {
			t.Errorf("QuatFromRawRotation(%v) norm^2 off by %v", raw, d)
		}
		if q.W > 0 {
			t.Errorf("QuatFromRawRotation(%v) W should be non-positive, got %v", raw, q.W)
		}
	}
}

func TestQuatTransformPoint(t *testing.T) {
	// 90 degrees around Z maps X onto Y
	q := QuatFromAxisAngle(Vec3{0, 0, 1}, float32(math.Pi/2))
	got := q.TransformPoint(Vec3{1, 0, 0})
	if got.Distance(Vec3{0, 1, 0}) > 0.0001 {
		t.Errorf("TransformPoint: got %v, want (0, 1, 0)", got)
	}

	// Must agree with the matrix form
	m := q.ToMat4()
	p := Vec3{3, -2, 7}
	if d := q.TransformPoint(p).Distance(m.TransformPoint(p)); d > 0.0001 {
		t.Errorf("TransformPoint differs from ToMat4 by %v", d)
	}
}

func TestQuatMulComposes(t *testing.T) {
	a := QuatFromAxisAngle(Vec3{0, 0, 1}, float32(math.Pi/2))
	b := QuatFromAxisAngle(Vec3{1, 0, 0}, float32(math.Pi/2))
	p := Vec3{0, 1, 0}

	// a.Mul(b) applies b first
	want := a.TransformPoint(b.TransformPoint(p))
	got := a.Mul(b).TransformPoint(p)
	if got.Distance(want) > 0.0001 {
		t.Errorf("Mul composition: got %v, want %v", got, want)
	}
}

func TestQuatConjugateInverts(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{0, 1, 0}, 1.1)
	p := Vec3{1, 2, 3}
	back := q.Conjugate().TransformPoint(q.TransformPoint(p))
	if back.Distance(p) > 0.0001 {
		t.Errorf("Conjugate round trip: got %v, want %v", back, p)
	}
}

func TestQuatSlerp(t *testing.T) {
	q1 := QuatIdentity()
	q2 := QuatFromAxisAngle(Vec3{X: 0, Y: 1, Z: 0}, float32(math.Pi/2))

	result0 := q1.Slerp(q2, 0)
	if math.Abs(float64(result0.W-q1.W)) > 0.001 {
		t.Errorf("Slerp at t=0 should equal q1")
	}

	result1 := q1.Slerp(q2, 1)
	if math.Abs(float64(result1.W-q2.W)) > 0.001 {
		t.Errorf("Slerp at t=1 should equal q2")
	}

	// For a 90 degree rotation, halfway is 45 degrees
	result5 := q1.Slerp(q2, 0.5)
	expectedW := float32(math.Cos(math.Pi / 8))
	if math.Abs(float64(result5.W-expectedW)) > 0.01 {
		t.Errorf("Slerp at t=0.5: expected W ~%v, got %v", expectedW, result5.W)
	}
}

func TestQuatToMat4(t *testing.T) {
	m := QuatIdentity().ToMat4()

	identity := Identity()
	for i := 0; i < 16; i++ {
		if math.Abs(float64(m[i]-identity[i])) > 0.0001 {
			t.Errorf("Identity quat should produce identity matrix, element %d: got %v, want %v", i, m[i], identity[i])
		}
	}
}
