package model

import (
	"github.com/Faultbox/md5kit/internal/engine/picking"
	"github.com/Faultbox/md5kit/pkg/math"
)

// BuildMesh flattens the current skinned surfaces of m into one vertex and
// index buffer. Surfaces sharing an active material are batched into a single
// group; groups appear in order of first use.
func BuildMesh(m *Model, opts BuildOptions) *Mesh {
	if m.SurfaceCount() == 0 {
		return nil
	}

	var vertices []Vertex
	matGroups := make(map[string][]uint32)
	var order []string

	// Track bounding box
	bounds := picking.EmptyAABB()

	for _, s := range m.surfaces {
		skinned := s.Skinned()
		if len(skinned.Indices) == 0 {
			continue
		}

		base := uint32(len(vertices))
		vertices = append(vertices, skinned.Vertices...)
		bounds = bounds.Union(skinned.Bounds)

		mat := s.ActiveMaterial()
		if _, ok := matGroups[mat]; !ok {
			order = append(order, mat)
		}
		for _, idx := range skinned.Indices {
			matGroups[mat] = append(matGroups[mat], base+idx)
		}
	}

	if len(vertices) == 0 {
		return nil
	}

	// Build material groups and final index buffer
	var indices []uint32
	groups := make([]MaterialGroup, 0, len(order))
	for _, mat := range order {
		idxs := matGroups[mat]
		groups = append(groups, MaterialGroup{
			Material:   mat,
			StartIndex: int32(len(indices)),
			IndexCount: int32(len(idxs)),
		})
		indices = append(indices, idxs...)
	}

	if opts.SmoothSeams {
		SmoothNormals(vertices)
	}

	return &Mesh{
		Vertices: vertices,
		Indices:  indices,
		Groups:   groups,
		Bounds:   bounds,
	}
}

// SmoothNormals averages normals at shared vertex positions.
// This hides seams where separate surfaces meet.
func SmoothNormals(vertices []Vertex) {
	const epsilon float32 = 0.001

	// Group vertices by quantized position for O(n) lookup
	posMap := make(map[[3]int32][]int)
	for i := range vertices {
		p := vertices[i].Position
		key := [3]int32{
			int32(p.X / epsilon),
			int32(p.Y / epsilon),
			int32(p.Z / epsilon),
		}
		posMap[key] = append(posMap[key], i)
	}

	// Average normals for vertices at same position
	for _, idxs := range posMap {
		if len(idxs) < 2 {
			continue
		}

		var sum math.Vec3
		for _, idx := range idxs {
			sum = sum.Add(vertices[idx].Normal)
		}

		avg := sum.Normalize()
		for _, idx := range idxs {
			vertices[idx].Normal = avg
		}
	}
}
