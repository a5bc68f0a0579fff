// Package debug generates line geometry for visualizing models and skeletons.
package debug

import (
	"github.com/Faultbox/md5kit/internal/engine/picking"
	"github.com/Faultbox/md5kit/pkg/math"
)

// BBoxWireframeVertexCount is the number of vertices for a bbox wireframe (12 edges × 2).
const BBoxWireframeVertexCount = 24

// DefaultBBoxPadding is the default padding for selection boxes.
const DefaultBBoxPadding = 1.0

// GenerateBBoxWireframeVertices creates line vertices for a wireframe box.
// Returns 24 vertices (12 edges × 2 endpoints), format: [x, y, z] per vertex.
func GenerateBBoxWireframeVertices(lo, hi math.Vec3) []float32 {
	minX, minY, minZ := lo.X, lo.Y, lo.Z
	maxX, maxY, maxZ := hi.X, hi.Y, hi.Z

	return []float32{
		// Bottom face (4 edges)
		minX, minY, minZ, maxX, minY, minZ,
		maxX, minY, minZ, maxX, maxY, minZ,
		maxX, maxY, minZ, minX, maxY, minZ,
		minX, maxY, minZ, minX, minY, minZ,
		// Top face (4 edges)
		minX, minY, maxZ, maxX, minY, maxZ,
		maxX, minY, maxZ, maxX, maxY, maxZ,
		maxX, maxY, maxZ, minX, maxY, maxZ,
		minX, maxY, maxZ, minX, minY, maxZ,
		// Vertical edges (4 edges)
		minX, minY, minZ, minX, minY, maxZ,
		maxX, minY, minZ, maxX, minY, maxZ,
		maxX, maxY, minZ, maxX, maxY, maxZ,
		minX, maxY, minZ, minX, maxY, maxZ,
	}
}

// BoundsWireframe creates wireframe vertices for a local box placed in the
// world by localToWorld. padding expands the world box on all sides.
// An empty box yields no vertices.
func BoundsWireframe(box picking.AABB, localToWorld math.Mat4, padding float32) []float32 {
	if box.IsEmpty() {
		return nil
	}

	w := box.Transform(localToWorld)
	pad := math.Vec3{X: padding, Y: padding, Z: padding}
	return GenerateBBoxWireframeVertices(w.Min.Sub(pad), w.Max.Add(pad))
}
