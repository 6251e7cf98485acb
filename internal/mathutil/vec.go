package mathutil

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Flatten packs vectors into an interleaved x,y,z slice for GPU upload.
func Flatten(vs []mgl32.Vec3) []float32 {
	out := make([]float32, 0, len(vs)*3)
	for _, v := range vs {
		out = append(out, v[0], v[1], v[2])
	}
	return out
}

// IsFinite reports whether every component is a real number.
func IsFinite(v mgl32.Vec3) bool {
	for _, c := range v {
		f := float64(c)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// ApproxEqual compares two vectors component-wise within eps.
func ApproxEqual(a, b mgl32.Vec3, eps float32) bool {
	for k := 0; k < 3; k++ {
		d := a[k] - b[k]
		if d > eps || d < -eps {
			return false
		}
	}
	return true
}
