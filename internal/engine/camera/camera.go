// Package camera provides the viewer camera used to aim selection rays.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/md5kit/internal/engine/picking"
	"github.com/Faultbox/md5kit/pkg/math"
)

// OrbitCamera orbits around a center point. Z is up, matching MD5 model space.
type OrbitCamera struct {
	// Center point to orbit around
	Center math.Vec3

	// Spherical coordinates
	Distance float32 // Distance from center
	Pitch    float32 // Elevation above the XY plane (radians)
	Yaw      float32 // Angle around Z, 0 looks along +Y (radians)

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Projection
	FovY   float32 // Vertical field of view (radians)
	Aspect float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbitCamera creates a new orbit camera with default settings.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        200.0,
		Pitch:           0.3,
		Yaw:             0.0,
		MinDistance:     1.0,
		MaxDistance:     10000.0,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		FovY:            math32.Pi / 2,
		Aspect:          1.0,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	sp, cp := math32.Sincos(c.Pitch)
	sy, cy := math32.Sincos(c.Yaw)

	return math.Vec3{
		X: c.Center.X - c.Distance*cp*sy,
		Y: c.Center.Y - c.Distance*cp*cy,
		Z: c.Center.Z + c.Distance*sp,
	}
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Center, math.Vec3{Z: 1})
}

// ProjectionMatrix returns a perspective projection whose clip planes scale
// with the orbit distance.
func (c *OrbitCamera) ProjectionMatrix() math.Mat4 {
	return math.Perspective(c.FovY, c.Aspect, c.Distance*0.01, c.Distance*100)
}

// ViewProjection returns ProjectionMatrix * ViewMatrix.
func (c *OrbitCamera) ViewProjection() math.Mat4 {
	return c.ProjectionMatrix().Mul(c.ViewMatrix())
}

// Frustum returns the camera's view volume.
func (c *OrbitCamera) Frustum() picking.Frustum {
	return picking.NewFrustum(c.ViewProjection())
}

// Ray returns the world-space ray through a viewport position, where (0, 0)
// is the top left corner and (1, 1) the bottom right.
func (c *OrbitCamera) Ray(u, v float32) picking.Ray {
	return picking.ScreenToRay(u, v, 1, 1, c.ViewProjection().Inverse())
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.DragSensitivity
	c.Pitch += deltaY * c.DragSensitivity

	// Clamp pitch
	if c.Pitch < c.MinPitch {
		c.Pitch = c.MinPitch
	}
	if c.Pitch > c.MaxPitch {
		c.Pitch = c.MaxPitch
	}
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	if c.Distance < c.MinDistance {
		c.Distance = c.MinDistance
	}
	if c.Distance > c.MaxDistance {
		c.Distance = c.MaxDistance
	}
}

// FitToBounds centers the camera on box and backs off until the whole box
// fits in the vertical field of view. Rotation is left unchanged.
func (c *OrbitCamera) FitToBounds(box picking.AABB) {
	if box.IsEmpty() {
		return
	}
	c.Center = box.Center()

	radius := box.Max.Sub(box.Min).Length() / 2
	c.Distance = radius / math32.Sin(c.FovY/2)
	if c.Distance < c.MinDistance {
		c.Distance = c.MinDistance
	}
	if c.Distance > c.MaxDistance {
		c.Distance = c.MaxDistance
	}
}
