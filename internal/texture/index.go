package texture

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// imageExts ranks the image extensions an Index accepts. Lossless formats
// win when two files share a stem.
var imageExts = map[string]int{
	".png":  5,
	".tga":  4,
	".bmp":  3,
	".webp": 2,
	".jpg":  1,
	".jpeg": 1,
	".gif":  0,
}

// Index maps lowercase image stems in a directory to file paths.
type Index struct {
	entries map[string]string
}

// BuildIndex scans dir (not recursively) for image files.
func BuildIndex(dir string) (*Index, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("texture: %w", err)
	}
	idx := &Index{entries: make(map[string]string)}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		rank, ok := imageExts[ext]
		if !ok {
			continue
		}
		stem := strings.ToLower(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
		path := filepath.Join(dir, e.Name())
		if existing, exists := idx.entries[stem]; !exists || rank > imageExts[strings.ToLower(filepath.Ext(existing))] {
			idx.entries[stem] = path
		}
	}
	return idx, nil
}

// ResolvePath returns the file for an image name, ignoring any directory
// prefix, extension and case.
func (idx *Index) ResolvePath(name string) (string, bool) {
	name = strings.ReplaceAll(name, "\\", "/")
	base := filepath.Base(name)
	stem := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
	path, ok := idx.entries[stem]
	return path, ok
}

// Len returns the number of indexed images.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// faceNames lists the accepted stems per cube face, in +X, -X, +Y, -Y, +Z,
// -Z order.
var faceNames = [6][]string{
	{"px", "posx", "right", "positive_x"},
	{"nx", "negx", "left", "negative_x"},
	{"py", "posy", "top", "up", "positive_y"},
	{"ny", "negy", "bottom", "down", "negative_y"},
	{"pz", "posz", "front", "positive_z"},
	{"nz", "negz", "back", "negative_z"},
}

// CubemapFaces finds the six face images of a cube map in dir by file stem
// (px/nx/py/ny/pz/nz, posx/negx/..., or right/left/top/bottom/front/back).
func CubemapFaces(dir string) ([6]string, error) {
	var faces [6]string
	idx, err := BuildIndex(dir)
	if err != nil {
		return faces, err
	}
	for i, names := range faceNames {
		for _, n := range names {
			if p, ok := idx.ResolvePath(n); ok {
				faces[i] = p
				break
			}
		}
		if faces[i] == "" {
			return faces, fmt.Errorf("texture: %s: no image for cube face %s", dir, names[0])
		}
	}
	return faces, nil
}
