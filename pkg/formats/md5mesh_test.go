package formats

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/Faultbox/md5kit/pkg/parser"
)

const triMesh = `MD5Version 10
commandline ""
numJoints 2
numMeshes 1
joints {
	"origin" -1 ( 0 0 0 ) ( 0 0 0 )
	"head" 0 ( 0 0 10 ) ( 0 0 0 )
}
mesh {
	shader "tri"
	numverts 3
	vert 0 ( 0 0 ) 0 1
	vert 1 ( 1 0 ) 1 1
	vert 2 ( 0 1 ) 2 1
	numtris 1
	tri 0 0 1 2
	numweights 3
	weight 0 1 1 ( 0 0 0 )
	weight 1 1 1 ( 0 0 0 )
	weight 2 1 1 ( 0 0 0 )
}
`

func TestParseMD5MeshFile(t *testing.T) {
	md5, err := ParseMD5MeshFile("testdata/twojoint.md5mesh")
	if err != nil {
		t.Fatalf("ParseMD5MeshFile: %v", err)
	}

	if len(md5.Joints) != 2 {
		t.Fatalf("expected 2 joints, got %d", len(md5.Joints))
	}
	if len(md5.BindPose) != len(md5.Joints) {
		t.Errorf("bind pose has %d keys for %d joints", len(md5.BindPose), len(md5.Joints))
	}
	if md5.Joints[1].Name != "head" || md5.Joints[1].Parent != 0 {
		t.Errorf("joint 1 = %+v, want head with parent 0", md5.Joints[1])
	}
	if !strings.HasPrefix(md5.CommandLine, "mesh models/test") {
		t.Errorf("unexpected command line %q", md5.CommandLine)
	}

	// Declared counts are honoured
	tests := []struct {
		shader            string
		verts, tris, wgts int
	}{
		{"models/test/tri", 3, 1, 3},
		{"models/test/quad", 4, 2, 8},
	}
	if len(md5.Meshes) != len(tests) {
		t.Fatalf("expected %d meshes, got %d", len(tests), len(md5.Meshes))
	}
	for i, tt := range tests {
		m := md5.Meshes[i]
		if m.Shader != tt.shader {
			t.Errorf("mesh %d shader = %q, want %q", i, m.Shader, tt.shader)
		}
		if len(m.Vertices) != tt.verts || len(m.Triangles) != tt.tris || len(m.Weights) != tt.wgts {
			t.Errorf("mesh %d counts = %d/%d/%d, want %d/%d/%d", i,
				len(m.Vertices), len(m.Triangles), len(m.Weights), tt.verts, tt.tris, tt.wgts)
		}
		// Fixtures are well formed: biases sum to one
		for v := range m.Vertices {
			if sum := m.WeightSum(v); math.Abs(float64(sum)-1) > 1e-4 {
				t.Errorf("mesh %d vertex %d weight sum = %v", i, v, sum)
			}
		}
	}

	if md5.VertexCount() != 7 {
		t.Errorf("VertexCount() = %d, want 7", md5.VertexCount())
	}
	if md5.PolyCount() != 3 {
		t.Errorf("PolyCount() = %d, want 3", md5.PolyCount())
	}
}

func TestParseMD5Mesh_Values(t *testing.T) {
	md5, err := ParseMD5Mesh([]byte(triMesh))
	if err != nil {
		t.Fatalf("ParseMD5Mesh: %v", err)
	}

	head := md5.BindPose[1]
	if head.Origin.Z != 10 {
		t.Errorf("head origin = %v, want z=10", head.Origin)
	}
	if head.Orientation.W != -1 {
		t.Errorf("head W = %v, want -1 for zero rotation", head.Orientation.W)
	}

	mesh := md5.Meshes[0]
	if mesh.Vertices[1].UV.X != 1 || mesh.Vertices[2].UV.Y != 1 {
		t.Errorf("unexpected UVs: %+v", mesh.Vertices)
	}
	if mesh.Triangles[0] != (MD5Triangle{0, 1, 2}) {
		t.Errorf("triangle winding changed: %v", mesh.Triangles[0])
	}
	if mesh.Weights[2].Joint != 1 || mesh.Weights[2].Bias != 1 {
		t.Errorf("weight 2 = %+v", mesh.Weights[2])
	}
	if got := md5.Joints.ChildrenOf(0); len(got) != 1 || got[0] != 1 {
		t.Errorf("ChildrenOf(0) = %v, want [1]", got)
	}
}

func TestParseMD5Mesh_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{
			name:    "truncated joints block",
			data:    strings.Replace(triMesh, "}\nmesh {", "mesh {", 1),
			wantErr: nil,
		},
		{
			name:    "empty data",
			data:    "",
			wantErr: parser.ErrUnexpectedEOF,
		},
		{
			name:    "wrong version",
			data:    strings.Replace(triMesh, "MD5Version 10", "MD5Version 11", 1),
			wantErr: ErrUnsupportedMD5Version,
		},
		{
			name:    "forward parent reference",
			data:    strings.Replace(triMesh, `"origin" -1`, `"origin" 1`, 1),
			wantErr: ErrInvalidParent,
		},
		{
			name:    "missing vertex",
			data:    strings.Replace(triMesh, "numverts 3", "numverts 4", 1),
			wantErr: nil,
		},
		{
			name:    "malformed float",
			data:    strings.Replace(triMesh, "( 1 0 ) 1 1", "( 1x 0 ) 1 1", 1),
			wantErr: nil,
		},
		{
			name:    "triangle out of range",
			data:    strings.Replace(triMesh, "tri 0 0 1 2", "tri 0 0 1 3", 1),
			wantErr: ErrCorruptMesh,
		},
		{
			name:    "weight range out of range",
			data:    strings.Replace(triMesh, "vert 2 ( 0 1 ) 2 1", "vert 2 ( 0 1 ) 2 2", 1),
			wantErr: ErrCorruptMesh,
		},
		{
			name:    "unknown joint",
			data:    strings.Replace(triMesh, "weight 2 1 1", "weight 2 2 1", 1),
			wantErr: ErrCorruptMesh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md5, err := ParseMD5Mesh([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if md5 != nil {
				t.Error("a failed parse must not return a partial mesh")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParseMD5Mesh_OversizedCounts(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"joints", strings.Replace(triMesh, "numJoints 2", "numJoints 2000000000", 1)},
		{"meshes", strings.Replace(triMesh, "numMeshes 1", "numMeshes 2000000000", 1)},
		{"vertices", strings.Replace(triMesh, "numverts 3", "numverts 2000000000", 1)},
		{"triangles", strings.Replace(triMesh, "numtris 1", "numtris 2000000000", 1)},
		{"weights", strings.Replace(triMesh, "numweights 3", "numweights 2000000000", 1)},
		{"header only", "MD5Version 10\ncommandline \"\"\nnumJoints 2000000000\nnumMeshes 0\njoints {\n}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md5, err := ParseMD5Mesh([]byte(tt.data))
			if md5 != nil {
				t.Error("a failed parse must not return a partial mesh")
			}
			var perr *parser.ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *parser.ParseError, got %T: %v", err, err)
			}
			if !errors.Is(err, ErrCountTooLarge) {
				t.Errorf("expected ErrCountTooLarge, got %v", err)
			}
			if perr.Token != "2000000000" {
				t.Errorf("offending token = %q", perr.Token)
			}
		})
	}
}

func TestParseMD5Mesh_TruncatedJointsIsParseError(t *testing.T) {
	data := strings.Replace(triMesh, "}\nmesh {", "mesh {", 1)
	_, err := ParseMD5Mesh([]byte(data))

	var perr *parser.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *parser.ParseError, got %T: %v", err, err)
	}
	if perr.Token != "mesh" {
		t.Errorf("offending token = %q, want %q", perr.Token, "mesh")
	}
}
