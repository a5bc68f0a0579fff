package formats

import (
	"fmt"
	"os"

	"github.com/Faultbox/md5kit/pkg/math"
	"github.com/Faultbox/md5kit/pkg/parser"
)

// MD5Vertex is a mesh vertex before skinning. Its position is defined entirely
// by WeightCount consecutive weights starting at WeightIndex.
type MD5Vertex struct {
	UV          math.Vec2
	WeightIndex int
	WeightCount int
}

// MD5Weight attaches a vertex to a joint.
type MD5Weight struct {
	Joint  int       // Joint index
	Bias   float32   // Contribution, biases of one vertex sum to ~1
	Offset math.Vec3 // Position in the joint's local frame
}

// MD5Triangle holds three vertex indices in file winding order.
type MD5Triangle [3]uint32

// MD5MeshData is the static description of one mesh block. It is never
// modified after parsing and may be shared by any number of model instances.
type MD5MeshData struct {
	Shader    string
	Vertices  []MD5Vertex
	Triangles []MD5Triangle
	Weights   []MD5Weight
}

// WeightSum returns the sum of the biases of vertex v.
func (m *MD5MeshData) WeightSum(v int) float32 {
	vert := m.Vertices[v]
	var sum float32
	for _, w := range m.Weights[vert.WeightIndex : vert.WeightIndex+vert.WeightCount] {
		sum += w.Bias
	}
	return sum
}

// MD5Mesh represents a parsed .md5mesh file.
type MD5Mesh struct {
	CommandLine string
	Joints      Hierarchy
	BindPose    []MD5Key // One per joint, object space
	Meshes      []*MD5MeshData
}

// VertexCount returns the total number of vertices across all meshes.
func (m *MD5Mesh) VertexCount() int {
	total := 0
	for _, mesh := range m.Meshes {
		total += len(mesh.Vertices)
	}
	return total
}

// PolyCount returns the total number of triangles across all meshes.
func (m *MD5Mesh) PolyCount() int {
	total := 0
	for _, mesh := range m.Meshes {
		total += len(mesh.Triangles)
	}
	return total
}

// ParseMD5Mesh parses .md5mesh text.
func ParseMD5Mesh(data []byte) (*MD5Mesh, error) {
	return ReadMD5Mesh(parser.NewDefTokenizer(data))
}

// ParseMD5MeshFile parses an .md5mesh file from disk.
func ParseMD5MeshFile(path string) (*MD5Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading MD5 mesh file: %w", err)
	}
	return ParseMD5Mesh(data)
}

// ReadMD5Mesh consumes exactly one .md5mesh definition from tok. On failure no
// partial mesh is returned.
func ReadMD5Mesh(tok *parser.DefTokenizer) (*MD5Mesh, error) {
	commandLine, err := readHeader(tok)
	if err != nil {
		return nil, err
	}

	numJoints, err := readCount(tok, "numJoints", meshJointTokens)
	if err != nil {
		return nil, err
	}
	numMeshes, err := readCount(tok, "numMeshes", meshBlockTokens)
	if err != nil {
		return nil, err
	}

	md5 := &MD5Mesh{
		CommandLine: commandLine,
		BindPose:    make([]MD5Key, numJoints),
		Meshes:      make([]*MD5MeshData, 0, numMeshes),
	}

	// Joints
	if err := tok.AssertNextToken("joints"); err != nil {
		return nil, err
	}
	if err := tok.AssertNextToken("{"); err != nil {
		return nil, err
	}

	joints := make([]MD5Joint, numJoints)
	for i := range joints {
		if joints[i].Name, err = tok.NextToken(); err != nil {
			return nil, err
		}
		if joints[i].Parent, err = tok.NextInt(); err != nil {
			return nil, err
		}
		if err := checkParent(tok, i, joints[i].Parent); err != nil {
			return nil, err
		}
		if md5.BindPose[i], err = readKey(tok); err != nil {
			return nil, err
		}
	}

	if err := tok.AssertNextToken("}"); err != nil {
		return nil, err
	}
	md5.Joints = BuildHierarchy(joints)

	// Meshes
	for i := 0; i < numMeshes; i++ {
		mesh, err := readMeshBlock(tok)
		if err != nil {
			return nil, fmt.Errorf("parsing mesh %d: %w", i, err)
		}
		if err := mesh.validate(numJoints); err != nil {
			return nil, fmt.Errorf("mesh %d: %w", i, err)
		}
		md5.Meshes = append(md5.Meshes, mesh)
	}

	return md5, nil
}

// readMeshBlock parses one "mesh { ... }" block.
func readMeshBlock(tok *parser.DefTokenizer) (*MD5MeshData, error) {
	if err := tok.AssertNextToken("mesh"); err != nil {
		return nil, err
	}
	if err := tok.AssertNextToken("{"); err != nil {
		return nil, err
	}

	mesh := &MD5MeshData{}

	if err := tok.AssertNextToken("shader"); err != nil {
		return nil, err
	}
	shader, err := tok.NextToken()
	if err != nil {
		return nil, err
	}
	mesh.Shader = shader

	// Vertices: vert <index> ( u v ) <weightIndex> <weightCount>
	numVerts, err := readCount(tok, "numverts", vertTokens)
	if err != nil {
		return nil, err
	}
	mesh.Vertices = make([]MD5Vertex, numVerts)
	for i := range mesh.Vertices {
		vt := &mesh.Vertices[i]
		if err := tok.AssertNextToken("vert"); err != nil {
			return nil, err
		}
		if _, err := tok.NextSize(); err != nil {
			return nil, err
		}
		if err := tok.AssertNextToken("("); err != nil {
			return nil, err
		}
		if vt.UV.X, err = tok.NextFloat(); err != nil {
			return nil, err
		}
		if vt.UV.Y, err = tok.NextFloat(); err != nil {
			return nil, err
		}
		if err := tok.AssertNextToken(")"); err != nil {
			return nil, err
		}
		if vt.WeightIndex, err = tok.NextSize(); err != nil {
			return nil, err
		}
		if vt.WeightCount, err = tok.NextSize(); err != nil {
			return nil, err
		}
	}

	// Triangles: tri <index> <a> <b> <c>
	numTris, err := readCount(tok, "numtris", triTokens)
	if err != nil {
		return nil, err
	}
	mesh.Triangles = make([]MD5Triangle, numTris)
	for i := range mesh.Triangles {
		if err := tok.AssertNextToken("tri"); err != nil {
			return nil, err
		}
		if _, err := tok.NextSize(); err != nil {
			return nil, err
		}
		for k := 0; k < 3; k++ {
			idx, err := tok.NextUint()
			if err != nil {
				return nil, err
			}
			mesh.Triangles[i][k] = idx
		}
	}

	// Weights: weight <index> <joint> <bias> ( x y z )
	numWeights, err := readCount(tok, "numweights", weightTokens)
	if err != nil {
		return nil, err
	}
	mesh.Weights = make([]MD5Weight, numWeights)
	for i := range mesh.Weights {
		w := &mesh.Weights[i]
		if err := tok.AssertNextToken("weight"); err != nil {
			return nil, err
		}
		if _, err := tok.NextSize(); err != nil {
			return nil, err
		}
		if w.Joint, err = tok.NextSize(); err != nil {
			return nil, err
		}
		if w.Bias, err = tok.NextFloat(); err != nil {
			return nil, err
		}
		if w.Offset, err = readVector3(tok); err != nil {
			return nil, err
		}
	}

	if err := tok.AssertNextToken("}"); err != nil {
		return nil, err
	}
	return mesh, nil
}

// validate checks every index against the arrays it addresses so that
// skinning can index without bounds checks failing at runtime.
func (m *MD5MeshData) validate(numJoints int) error {
	for i, v := range m.Vertices {
		if v.WeightIndex+v.WeightCount > len(m.Weights) {
			return fmt.Errorf("%w: vertex %d uses weights %d..%d of %d",
				ErrCorruptMesh, i, v.WeightIndex, v.WeightIndex+v.WeightCount, len(m.Weights))
		}
	}
	for i, tri := range m.Triangles {
		for _, idx := range tri {
			if int(idx) >= len(m.Vertices) {
				return fmt.Errorf("%w: triangle %d references vertex %d of %d",
					ErrCorruptMesh, i, idx, len(m.Vertices))
			}
		}
	}
	for i, w := range m.Weights {
		if w.Joint >= numJoints {
			return fmt.Errorf("%w: weight %d references joint %d of %d",
				ErrCorruptMesh, i, w.Joint, numJoints)
		}
	}
	return nil
}
