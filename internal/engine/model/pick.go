package model

import (
	"github.com/Faultbox/md5kit/internal/engine/picking"
	"github.com/Faultbox/md5kit/pkg/math"
)

// Selection is a surface hit by a selection test.
type Selection struct {
	Surface int       // Index of the surface in the model
	Point   math.Vec3 // World-space intersection
	Dist2   float32   // Squared distance from the ray origin
}

// TestRay intersects ray with the skinned triangles placed in the world by
// localToWorld and returns the hit closest to the ray origin. On equal
// distances the first triangle found wins.
func (s *Surface) TestRay(ray picking.Ray, localToWorld math.Mat4) (math.Vec3, bool) {
	var (
		best      math.Vec3
		bestDist2 float32
		found     bool
	)

	verts := s.skinned.Vertices
	idx := s.skinned.Indices
	for i := 0; i+2 < len(idx); i += 3 {
		a := localToWorld.TransformPoint(verts[idx[i]].Position)
		b := localToWorld.TransformPoint(verts[idx[i+1]].Position)
		c := localToWorld.TransformPoint(verts[idx[i+2]].Position)

		hit, ok := ray.IntersectTriangle(a, b, c)
		if !ok {
			continue
		}
		if d := hit.Sub(ray.Origin).LengthSquared(); !found || d < bestDist2 {
			best, bestDist2, found = hit, d, true
		}
	}
	return best, found
}

// TestVolume classifies the surface bounds against volume.
func (s *Surface) TestVolume(volume picking.Volume, localToWorld math.Mat4) picking.Intersection {
	return volume.TestAABB(s.skinned.Bounds, localToWorld)
}

// TestRay returns the closest hit over all surfaces.
func (m *Model) TestRay(ray picking.Ray, localToWorld math.Mat4) (math.Vec3, bool) {
	var (
		best      math.Vec3
		bestDist2 float32
		found     bool
	)
	for _, s := range m.surfaces {
		hit, ok := s.TestRay(ray, localToWorld)
		if !ok {
			continue
		}
		if d := hit.Sub(ray.Origin).LengthSquared(); !found || d < bestDist2 {
			best, bestDist2, found = hit, d, true
		}
	}
	return best, found
}

// TestSelect returns one Selection per surface hit by ray. Surfaces whose
// bounds lie outside volume are skipped without testing their triangles.
func (m *Model) TestSelect(volume picking.Volume, ray picking.Ray, localToWorld math.Mat4) []Selection {
	var hits []Selection
	for i, s := range m.surfaces {
		if s.TestVolume(volume, localToWorld) == picking.Outside {
			continue
		}
		if p, ok := s.TestRay(ray, localToWorld); ok {
			hits = append(hits, Selection{
				Surface: i,
				Point:   p,
				Dist2:   p.Sub(ray.Origin).LengthSquared(),
			})
		}
	}
	return hits
}
