package model

import (
	"bufio"
	"fmt"
	"io"
)

// Winding selects the triangle vertex order written by exporters.
type Winding int

const (
	// WindingAsStored keeps the order of the mesh file.
	WindingAsStored Winding = iota
	// WindingReversed swaps the second and third index of every triangle.
	WindingReversed
)

// ExportOptions configures WriteOBJ.
type ExportOptions struct {
	Winding     Winding
	Name        string // Object name, defaults to the model file name
	MaterialLib string // Optional mtllib reference
}

// WriteOBJ writes the current skinned geometry of m as a Wavefront OBJ. Each
// surface becomes a group using its active material.
func WriteOBJ(w io.Writer, m *Model, opts ExportOptions) error {
	bw := bufio.NewWriter(w)

	name := opts.Name
	if name == "" {
		name = m.Filename()
	}
	if name != "" {
		fmt.Fprintf(bw, "o %s\n", name)
	}
	if opts.MaterialLib != "" {
		fmt.Fprintf(bw, "mtllib %s\n", opts.MaterialLib)
	}

	// OBJ indices are 1-based and global across the file
	base := 1
	for i, s := range m.surfaces {
		skinned := s.Skinned()

		fmt.Fprintf(bw, "\ng surface%d\nusemtl %s\n", i, s.ActiveMaterial())
		for _, v := range skinned.Vertices {
			fmt.Fprintf(bw, "v %g %g %g\n", v.Position.X, v.Position.Y, v.Position.Z)
		}
		for _, v := range skinned.Vertices {
			// OBJ puts the texture origin at the bottom left
			fmt.Fprintf(bw, "vt %g %g\n", v.TexCoord.X, 1-v.TexCoord.Y)
		}
		for _, v := range skinned.Vertices {
			fmt.Fprintf(bw, "vn %g %g %g\n", v.Normal.X, v.Normal.Y, v.Normal.Z)
		}

		idx := skinned.Indices
		for t := 0; t+2 < len(idx); t += 3 {
			a, b, c := int(idx[t])+base, int(idx[t+1])+base, int(idx[t+2])+base
			if opts.Winding == WindingReversed {
				b, c = c, b
			}
			fmt.Fprintf(bw, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, b, b, b, c, c, c)
		}

		base += len(skinned.Vertices)
	}

	return bw.Flush()
}
