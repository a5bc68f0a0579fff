package model

import (
	"github.com/Faultbox/md5kit/internal/engine/picking"
	"github.com/Faultbox/md5kit/pkg/formats"
	"github.com/Faultbox/md5kit/pkg/math"
)

// JointKeyFunc returns the object-space key of a joint.
type JointKeyFunc func(joint int) formats.MD5Key

// KeysOf adapts a key slice to a JointKeyFunc.
func KeysOf(keys []formats.MD5Key) JointKeyFunc {
	return func(joint int) formats.MD5Key {
		return keys[joint]
	}
}

// SkinnedSurface is the deformed vertex buffer of one mesh.
type SkinnedSurface struct {
	Vertices []Vertex
	Indices  []uint32 // Built once from the static triangle list
	Bounds   picking.AABB
}

// SkinMesh deforms mesh by the given joint keys into a new buffer.
func SkinMesh(mesh *formats.MD5MeshData, jointKey JointKeyFunc) *SkinnedSurface {
	s := &SkinnedSurface{}
	s.Update(mesh, jointKey)
	return s
}

// Update re-skins mesh into s in place. Positions are a plain affine blend of
// the weighted joint transforms; normals, tangents and bounds are then
// rebuilt from scratch.
func (s *SkinnedSurface) Update(mesh *formats.MD5MeshData, jointKey JointKeyFunc) {
	if len(s.Vertices) != len(mesh.Vertices) {
		s.Vertices = make([]Vertex, len(mesh.Vertices))
	}
	if len(s.Indices) == 0 {
		s.Indices = buildIndices(mesh)
	}

	for i := range mesh.Vertices {
		vert := &mesh.Vertices[i]

		var skinned math.Vec3
		for _, w := range mesh.Weights[vert.WeightIndex : vert.WeightIndex+vert.WeightCount] {
			key := jointKey(w.Joint)
			p := key.Orientation.TransformPoint(w.Offset).Add(key.Origin)
			skinned = skinned.Add(p.Scale(w.Bias))
		}

		s.Vertices[i] = Vertex{Position: skinned, TexCoord: vert.UV}
	}

	s.buildNormals()
	s.updateGeometry()
}

// buildIndices flattens the triangle list in file winding order.
func buildIndices(mesh *formats.MD5MeshData) []uint32 {
	indices := make([]uint32, 0, len(mesh.Triangles)*3)
	for _, tri := range mesh.Triangles {
		indices = append(indices, tri[0], tri[1], tri[2])
	}
	return indices
}

// buildNormals accumulates the unnormalized face normal (c-a)x(b-a) of every
// triangle into its three vertices, then normalizes.
func (s *SkinnedSurface) buildNormals() {
	for i := 0; i+2 < len(s.Indices); i += 3 {
		a := &s.Vertices[s.Indices[i]]
		b := &s.Vertices[s.Indices[i+1]]
		c := &s.Vertices[s.Indices[i+2]]

		n := c.Position.Sub(a.Position).Cross(b.Position.Sub(a.Position))
		a.Normal = a.Normal.Add(n)
		b.Normal = b.Normal.Add(n)
		c.Normal = c.Normal.Add(n)
	}

	for i := range s.Vertices {
		s.Vertices[i].Normal = s.Vertices[i].Normal.Normalize()
	}
}

// updateGeometry recomputes the local bounds and the UV-derived tangent frame.
func (s *SkinnedSurface) updateGeometry() {
	s.Bounds = picking.EmptyAABB()
	for i := range s.Vertices {
		s.Bounds = s.Bounds.Extend(s.Vertices[i].Position)
	}

	for i := 0; i+2 < len(s.Indices); i += 3 {
		sumTangents(&s.Vertices[s.Indices[i]], &s.Vertices[s.Indices[i+1]], &s.Vertices[s.Indices[i+2]])
	}

	for i := range s.Vertices {
		s.Vertices[i].Tangent = s.Vertices[i].Tangent.Normalize()
		s.Vertices[i].Bitangent = s.Vertices[i].Bitangent.Normalize()
	}
}

// sumTangents adds the tangent and bitangent of triangle abc to its vertices.
// Triangles with degenerate UVs contribute nothing.
func sumTangents(a, b, c *Vertex) {
	e1 := b.Position.Sub(a.Position)
	e2 := c.Position.Sub(a.Position)
	d1 := b.TexCoord.Sub(a.TexCoord)
	d2 := c.TexCoord.Sub(a.TexCoord)

	r := d1.X*d2.Y - d2.X*d1.Y
	if r == 0 {
		return
	}
	inv := 1 / r

	tangent := e1.Scale(d2.Y).Sub(e2.Scale(d1.Y)).Scale(inv)
	bitangent := e2.Scale(d1.X).Sub(e1.Scale(d2.X)).Scale(inv)

	for _, v := range []*Vertex{a, b, c} {
		v.Tangent = v.Tangent.Add(tangent)
		v.Bitangent = v.Bitangent.Add(bitangent)
	}
}
