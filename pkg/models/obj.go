package models

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/teapot/pkg/math3d"
)

// OBJError reports a malformed line in a Wavefront OBJ stream.
type OBJError struct {
	Name string
	Line int
	Err  error
}

func (e *OBJError) Error() string {
	return fmt.Sprintf("obj %s:%d: %v", e.Name, e.Line, e.Err)
}

func (e *OBJError) Unwrap() error { return e.Err }

// objRef is one corner of a face: 0-based indices into the position, UV
// and normal lists, -1 when absent.
type objRef struct {
	v, vt, vn int
}

// LoadOBJ loads a Wavefront OBJ file from disk.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	return ParseOBJ(f, filepath.Base(path))
}

// ParseOBJ reads the v, vt, vn and f records of a Wavefront OBJ stream.
// Faces with more than three corners are fan-triangulated. Corners that
// share the same v/vt/vn triple share a vertex, so a file without normals
// gets smooth normals across shared positions.
func ParseOBJ(r io.Reader, name string) (*Mesh, error) {
	var (
		positions []math3d.Vec3
		uvs       []math3d.Vec2
		normals   []math3d.Vec3
	)

	mesh := NewMesh(name)
	index := make(map[objRef]int)
	withNormal := 0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		lineErr := func(err error) error {
			return &OBJError{Name: name, Line: lineNo, Err: err}
		}

		switch fields[0] {
		case "v":
			p, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, lineErr(err)
			}
			positions = append(positions, math3d.V3(p[0], p[1], p[2]))

		case "vt":
			p, err := parseFloats(fields[1:], 1)
			if err != nil {
				return nil, lineErr(err)
			}
			uv := math3d.V2(p[0], 0)
			if len(p) > 1 {
				uv.Y = p[1]
			}
			uvs = append(uvs, uv)

		case "vn":
			p, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, lineErr(err)
			}
			normals = append(normals, math3d.V3(p[0], p[1], p[2]))

		case "f":
			if len(fields) < 4 {
				return nil, lineErr(fmt.Errorf("face needs at least 3 vertices, got %d", len(fields)-1))
			}
			corners := make([]int, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				ref, err := parseFaceRef(tok, len(positions), len(uvs), len(normals))
				if err != nil {
					return nil, lineErr(err)
				}
				idx, ok := index[ref]
				if !ok {
					v := MeshVertex{Position: positions[ref.v]}
					if ref.vt >= 0 {
						v.UV = uvs[ref.vt]
					}
					if ref.vn >= 0 {
						v.Normal = normals[ref.vn]
						withNormal++
					}
					idx = len(mesh.Vertices)
					mesh.Vertices = append(mesh.Vertices, v)
					index[ref] = idx
				}
				corners = append(corners, idx)
			}
			for i := 1; i+1 < len(corners); i++ {
				mesh.Faces = append(mesh.Faces, Face{V: [3]int{corners[0], corners[i], corners[i+1]}})
			}

		default:
			// o, g, s, usemtl, mtllib and friends carry nothing we draw.
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read obj %s: %w", name, err)
	}
	if len(mesh.Faces) == 0 {
		return nil, fmt.Errorf("obj %s: no faces", name)
	}

	switch {
	case withNormal == 0:
		mesh.CalculateSmoothNormals()
	case withNormal < len(mesh.Vertices):
		fillMissingNormals(mesh)
	}
	mesh.CalculateBounds()

	return mesh, nil
}

// fillMissingNormals gives smooth normals to the vertices of a file that
// only carried normals for some corners. Explicit normals are kept.
func fillMissingNormals(mesh *Mesh) {
	explicit := make([]math3d.Vec3, len(mesh.Vertices))
	for i, v := range mesh.Vertices {
		explicit[i] = v.Normal
	}
	mesh.CalculateSmoothNormals()
	for i, n := range explicit {
		if n != math3d.Zero3() {
			mesh.Vertices[i].Normal = n
		}
	}
}

func parseFloats(fields []string, minCount int) ([]float64, error) {
	if len(fields) < minCount {
		return nil, fmt.Errorf("expected at least %d values, got %d", minCount, len(fields))
	}
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", f)
		}
		out[i] = v
	}
	return out, nil
}

// parseFaceRef parses v, v/vt, v//vn or v/vt/vn.
func parseFaceRef(tok string, nv, nvt, nvn int) (objRef, error) {
	parts := strings.Split(tok, "/")
	if len(parts) > 3 {
		return objRef{}, fmt.Errorf("bad face vertex %q", tok)
	}

	ref := objRef{v: -1, vt: -1, vn: -1}
	var err error
	if ref.v, err = resolveIndex(parts[0], nv); err != nil {
		return objRef{}, fmt.Errorf("face vertex %q: %w", tok, err)
	}
	if len(parts) > 1 && parts[1] != "" {
		if ref.vt, err = resolveIndex(parts[1], nvt); err != nil {
			return objRef{}, fmt.Errorf("face texcoord %q: %w", tok, err)
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if ref.vn, err = resolveIndex(parts[2], nvn); err != nil {
			return objRef{}, fmt.Errorf("face normal %q: %w", tok, err)
		}
	}
	return ref, nil
}

// resolveIndex turns a 1-based or negative (relative) OBJ index into a
// 0-based one.
func resolveIndex(s string, count int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad index %q", s)
	}
	switch {
	case i > 0:
		i--
	case i < 0:
		i += count
	default:
		return 0, fmt.Errorf("index 0 is invalid")
	}
	if i < 0 || i >= count {
		return 0, fmt.Errorf("index %s out of range (%d defined)", s, count)
	}
	return i, nil
}
