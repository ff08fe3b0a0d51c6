package models

import (
	"testing"

	"github.com/taigrr/teapot/pkg/math3d"
)

func triangleMesh() *Mesh {
	m := NewMesh("tri")
	m.Vertices = []MeshVertex{
		{Position: math3d.V3(0, 0, 0)},
		{Position: math3d.V3(2, 0, 0)},
		{Position: math3d.V3(0, 4, -2)},
	}
	m.Faces = []Face{{V: [3]int{0, 1, 2}}}
	m.CalculateBounds()
	return m
}

func TestMeshBounds(t *testing.T) {
	m := triangleMesh()

	if m.BoundsMin != math3d.V3(0, 0, -2) {
		t.Errorf("BoundsMin = %v", m.BoundsMin)
	}
	if m.BoundsMax != math3d.V3(2, 4, 0) {
		t.Errorf("BoundsMax = %v", m.BoundsMax)
	}
	if c := m.Center(); c != math3d.V3(1, 2, -1) {
		t.Errorf("Center = %v", c)
	}
	if s := m.Size(); s != math3d.V3(2, 4, 2) {
		t.Errorf("Size = %v", s)
	}
}

func TestMeshBoundsEmpty(t *testing.T) {
	m := NewMesh("empty")
	m.CalculateBounds()
	if m.BoundsMin != math3d.Zero3() || m.BoundsMax != math3d.Zero3() {
		t.Errorf("empty mesh bounds = %v..%v", m.BoundsMin, m.BoundsMax)
	}
}

func TestCalculateSmoothNormalsAreaWeighted(t *testing.T) {
	// Two faces share vertex 0: a large one facing +Z and a small one facing +X.
	m := NewMesh("weighted")
	m.Vertices = []MeshVertex{
		{Position: math3d.V3(0, 0, 0)},
		{Position: math3d.V3(10, 0, 0)},
		{Position: math3d.V3(0, 10, 0)},
		{Position: math3d.V3(0, 1, 0)},
		{Position: math3d.V3(0, 0, 1)},
	}
	m.Faces = []Face{
		{V: [3]int{0, 1, 2}},
		{V: [3]int{0, 3, 4}},
	}
	m.CalculateSmoothNormals()

	n := m.Vertices[0].Normal
	if n.Z <= n.X {
		t.Errorf("larger face should dominate, got %v", n)
	}
	if d := n.Len() - 1; d > 1e-9 || d < -1e-9 {
		t.Errorf("normal not unit length: %v", n)
	}
}

func TestMeshNormalize(t *testing.T) {
	m := triangleMesh()
	m.Normalize(1)

	size := m.Size()
	if d := size.Y - 1; d > 1e-9 || d < -1e-9 {
		t.Errorf("largest dimension = %v, want 1", size.Y)
	}
	if c := m.Center(); c.Len() > 1e-9 {
		t.Errorf("center = %v, want origin", c)
	}
}

func TestMeshClone(t *testing.T) {
	m := triangleMesh()
	c := m.Clone()
	c.Vertices[0].Position = math3d.V3(9, 9, 9)
	c.Faces[0].V[0] = 2

	if m.Vertices[0].Position == c.Vertices[0].Position {
		t.Error("clone shares vertex storage")
	}
	if m.Faces[0].V[0] != 0 {
		t.Error("clone shares face storage")
	}
}

func TestMeshTransformKeepsNormalsPerpendicular(t *testing.T) {
	m := triangleMesh()
	m.CalculateSmoothNormals()
	m.Transform(math3d.Scale(math3d.V3(1, 3, 1)))

	e1 := m.Vertices[1].Position.Sub(m.Vertices[0].Position)
	e2 := m.Vertices[2].Position.Sub(m.Vertices[0].Position)
	n := m.Vertices[0].Normal
	if d := n.Dot(e1); d > 1e-9 || d < -1e-9 {
		t.Errorf("normal not perpendicular to edge 1: %v", d)
	}
	if d := n.Dot(e2); d > 1e-9 || d < -1e-9 {
		t.Errorf("normal not perpendicular to edge 2: %v", d)
	}
}
