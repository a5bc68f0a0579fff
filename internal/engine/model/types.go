// Package model provides MD5 surface skinning, model instances and mesh
// building utilities.
package model

import (
	"github.com/Faultbox/md5kit/internal/engine/picking"
	"github.com/Faultbox/md5kit/pkg/math"
)

// Vertex represents a skinned mesh vertex.
type Vertex struct {
	Position  math.Vec3
	Normal    math.Vec3
	TexCoord  math.Vec2
	Tangent   math.Vec3
	Bitangent math.Vec3
}

// Polygon is one triangle of a surface with its vertices resolved.
type Polygon struct {
	A, B, C Vertex
}

// MaterialGroup groups indices by material for batched rendering.
type MaterialGroup struct {
	Material   string
	StartIndex int32
	IndexCount int32
}

// Mesh holds the flattened model mesh data ready for GPU upload.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Groups   []MaterialGroup
	Bounds   picking.AABB
}

// BuildOptions contains options for mesh building.
type BuildOptions struct {
	// SmoothSeams averages normals of vertices that share a position across
	// surface boundaries.
	SmoothSeams bool
}

// Skin remaps default material names to replacement materials. Materials
// without an entry use their default.
type Skin map[string]string

// Remap returns the replacement for material, or "" when there is none.
func (s Skin) Remap(material string) string {
	return s[material]
}
