// Package skybox loads the six cube faces of a skybox set into a
// render.Cubemap, asynchronously and with optional hot reload.
package skybox

import (
	"path/filepath"

	"github.com/taigrr/teapot/pkg/render"
)

// faceFiles are the file names of each face, indexed by render.CubeFace.
var faceFiles = [6]string{
	render.FacePosX: "pos-x.png",
	render.FaceNegX: "neg-x.png",
	render.FacePosY: "pos-y.png",
	render.FaceNegY: "neg-y.png",
	render.FacePosZ: "pos-z.png",
	render.FaceNegZ: "neg-z.png",
}

// Set names a directory of face images and the size they are drawn at.
type Set struct {
	Name     string `yaml:"name"`
	Dir      string `yaml:"dir"`
	FaceSize int    `yaml:"face_size"`
}

// DefaultSets returns the two stock skybox sets.
func DefaultSets() []Set {
	return []Set{
		{Name: "default", Dir: ".", FaceSize: 512},
		{Name: "alternate", Dir: "Skybox", FaceSize: 128},
	}
}

// FaceFile returns the file name of face f.
func FaceFile(f render.CubeFace) string {
	return faceFiles[f]
}

// FacePath returns the path of face f within the set directory.
func (s Set) FacePath(f render.CubeFace) string {
	return filepath.Join(s.Dir, faceFiles[f])
}

// faceForFile maps a file name back to its face.
func faceForFile(name string) (render.CubeFace, bool) {
	base := filepath.Base(name)
	for _, f := range render.CubeFaces {
		if faceFiles[f] == base {
			return f, true
		}
	}
	return 0, false
}
