package models

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quadOBJ = `# unit quad
o quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3 4
`

func TestParseOBJQuadFan(t *testing.T) {
	mesh, err := ParseOBJ(strings.NewReader(quadOBJ), "quad")
	require.NoError(t, err)

	assert.Equal(t, 4, mesh.VertexCount())
	require.Equal(t, 2, mesh.TriangleCount())
	assert.Equal(t, [3]int{0, 1, 2}, mesh.GetFace(0))
	assert.Equal(t, [3]int{0, 2, 3}, mesh.GetFace(1))
}

func TestParseOBJSmoothNormalsWhenMissing(t *testing.T) {
	mesh, err := ParseOBJ(strings.NewReader(quadOBJ), "quad")
	require.NoError(t, err)

	for i, v := range mesh.Vertices {
		assert.InDelta(t, 1.0, v.Normal.Z, 1e-9, "vertex %d", i)
		assert.InDelta(t, 1.0, v.Normal.Len(), 1e-9, "vertex %d", i)
	}
}

func TestParseOBJRelativeIndices(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
f -3 -2 -1
v 5 5 5
v 6 5 5
v 5 6 5
f -3 -2 -1
`
	mesh, err := ParseOBJ(strings.NewReader(src), "rel")
	require.NoError(t, err)
	require.Equal(t, 2, mesh.TriangleCount())

	f := mesh.GetFace(1)
	pos, _, _ := mesh.GetVertex(f[0])
	assert.Equal(t, 5.0, pos.X)
	assert.Equal(t, 5.0, pos.Y)
}

func TestParseOBJFaceFormats(t *testing.T) {
	tests := []struct {
		name string
		face string
	}{
		{"position only", "f 1 2 3"},
		{"position and uv", "f 1/1 2/2 3/3"},
		{"position and normal", "f 1//1 2//1 3//1"},
		{"all three", "f 1/1/1 2/2/1 3/3/1"},
	}

	header := "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0\nvt 1 0\nvt 0 1\nvn 0 0 1\n"
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mesh, err := ParseOBJ(strings.NewReader(header+tt.face+"\n"), tt.name)
			require.NoError(t, err)
			require.Equal(t, 1, mesh.TriangleCount())
			for _, v := range mesh.Vertices {
				assert.InDelta(t, 1.0, v.Normal.Z, 1e-9)
			}
		})
	}
}

func TestParseOBJUVs(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0.25 0.75\nf 1/1 2/1 3/1\n"
	mesh, err := ParseOBJ(strings.NewReader(src), "uv")
	require.NoError(t, err)

	_, _, uv := mesh.GetVertex(0)
	assert.Equal(t, 0.25, uv.X)
	assert.Equal(t, 0.75, uv.Y)
}

func TestParseOBJSharedCornersShareVertices(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nf 1 2 3\nf 1 3 4\n"
	mesh, err := ParseOBJ(strings.NewReader(src), "shared")
	require.NoError(t, err)
	assert.Equal(t, 4, mesh.VertexCount())
}

func TestParseOBJErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"bad number", "v 0 0 0\nv 1 x 0\n", 2},
		{"short vertex", "v 0 0\n", 1},
		{"index out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n", 4},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n", 4},
		{"two corners", "v 0 0 0\nv 1 0 0\n\nf 1 2\n", 4},
		{"normal out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1//1 2//1 3//1\n", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOBJ(strings.NewReader(tt.src), "bad")
			require.Error(t, err)

			var objErr *OBJError
			require.True(t, errors.As(err, &objErr), "want *OBJError, got %T", err)
			assert.Equal(t, tt.line, objErr.Line)
			assert.Contains(t, err.Error(), "bad:")
		})
	}
}

func TestParseOBJNoFaces(t *testing.T) {
	_, err := ParseOBJ(strings.NewReader("v 0 0 0\n"), "empty")
	assert.Error(t, err)
}

func TestParseOBJIgnoresUnknownRecords(t *testing.T) {
	src := "mtllib x.mtl\ng teapot\ns 1\nusemtl red\nv 0 0 0\nv 1 0 0\nv 0 1 0 # trailing\nf 1 2 3\n"
	mesh, err := ParseOBJ(strings.NewReader(src), "extra")
	require.NoError(t, err)
	assert.Equal(t, 1, mesh.TriangleCount())
}

func TestLoadOBJFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.obj")
	require.NoError(t, os.WriteFile(path, []byte(quadOBJ), 0o644))

	mesh, err := LoadOBJ(path)
	require.NoError(t, err)
	assert.Equal(t, "quad.obj", mesh.Name)
	assert.Equal(t, 1.0, mesh.BoundsMax.X)
	assert.Equal(t, 1.0, mesh.BoundsMax.Y)
}

func TestLoadOBJMissing(t *testing.T) {
	_, err := LoadOBJ(filepath.Join(t.TempDir(), "nope.obj"))
	assert.Error(t, err)
}

func TestParseOBJMixedNormals(t *testing.T) {
	const mixed = `v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 1
f 1//1 2//1 3//1
f 1 3 4
`
	mesh, err := ParseOBJ(strings.NewReader(mixed), "mixed")
	require.NoError(t, err)
	require.Equal(t, 2, mesh.TriangleCount())

	for i, v := range mesh.Vertices {
		assert.InDelta(t, 1, v.Normal.Len(), 1e-9, "vertex %d normal %v", i, v.Normal)
		assert.InDelta(t, 1, v.Normal.Z, 1e-9, "vertex %d should face +Z", i)
	}
}

func TestParseOBJMixedNormalsKeepsExplicit(t *testing.T) {
	const mixed = `v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 1 0 0
f 1//1 2//1 3//1
f 1 3 4
`
	mesh, err := ParseOBJ(strings.NewReader(mixed), "mixed")
	require.NoError(t, err)

	face := mesh.GetFace(0)
	_, n, _ := mesh.GetVertex(face[0])
	assert.Equal(t, 1.0, n.X, "explicit normal must survive")

	face = mesh.GetFace(1)
	_, n, _ = mesh.GetVertex(face[2])
	assert.InDelta(t, 1, n.Z, 1e-9, "corner without vn gets a smooth normal")
}
