package model

import (
	"github.com/Faultbox/md5kit/internal/engine/picking"
	"github.com/Faultbox/md5kit/internal/engine/skeleton"
	"github.com/Faultbox/md5kit/pkg/formats"
)

// Surface is one renderable mesh of a model. The static mesh description is
// shared between copies; the skinned buffer belongs to this surface alone.
type Surface struct {
	mesh           *formats.MD5MeshData
	skinned        SkinnedSurface
	activeMaterial string
}

// NewSurface creates a surface over mesh. It has no geometry until it is
// posed with UpdateToDefaultPose or UpdateToSkeleton.
func NewSurface(mesh *formats.MD5MeshData) *Surface {
	return &Surface{mesh: mesh}
}

// Clone returns a surface sharing the mesh description with its own skinned
// buffer. The active material reverts to the default.
func (s *Surface) Clone() *Surface {
	return &Surface{mesh: s.mesh}
}

// Mesh returns the shared static mesh description.
func (s *Surface) Mesh() *formats.MD5MeshData {
	return s.mesh
}

// Skinned returns the current deformed buffer.
func (s *Surface) Skinned() *SkinnedSurface {
	return &s.skinned
}

// UpdateToDefaultPose skins the surface with the object-space bind pose.
func (s *Surface) UpdateToDefaultPose(bindPose []formats.MD5Key) {
	s.skinned.Update(s.mesh, KeysOf(bindPose))
}

// UpdateToSkeleton skins the surface with an evaluated skeleton.
func (s *Surface) UpdateToSkeleton(skel *skeleton.Skeleton) {
	s.skinned.Update(s.mesh, skel.Key)
}

// NumVertices returns the number of skinned vertices.
func (s *Surface) NumVertices() int {
	return len(s.skinned.Vertices)
}

// NumTriangles returns the number of triangles.
func (s *Surface) NumTriangles() int {
	return len(s.skinned.Indices) / 3
}

// Vertex returns skinned vertex i.
func (s *Surface) Vertex(i int) Vertex {
	return s.skinned.Vertices[i]
}

// Polygon returns triangle i with its skinned vertices.
func (s *Surface) Polygon(i int) Polygon {
	idx := s.skinned.Indices[i*3 : i*3+3]
	return Polygon{
		A: s.skinned.Vertices[idx[0]],
		B: s.skinned.Vertices[idx[1]],
		C: s.skinned.Vertices[idx[2]],
	}
}

// Bounds returns the local bounds of the skinned vertices.
func (s *Surface) Bounds() picking.AABB {
	return s.skinned.Bounds
}

// DefaultMaterial returns the shader named in the mesh file.
func (s *Surface) DefaultMaterial() string {
	return s.mesh.Shader
}

// ActiveMaterial returns the material in use: the skin remap if one is
// set, the default otherwise.
func (s *Surface) ActiveMaterial() string {
	if s.activeMaterial != "" {
		return s.activeMaterial
	}
	return s.mesh.Shader
}

// SetActiveMaterial overrides the material. An empty name restores the default.
func (s *Surface) SetActiveMaterial(name string) {
	s.activeMaterial = name
}
