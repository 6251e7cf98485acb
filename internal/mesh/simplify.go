package mesh

import (
	"github.com/fogleman/simplify"
	"github.com/go-gl/mathgl/mgl32"
)

// Simplify returns a decimated copy of m keeping roughly factor of its
// faces. factor >= 1 or a mesh without faces returns an unshared copy.
// Vertices are welded by exact position in the result; degenerate faces
// are dropped.
func (m *Mesh) Simplify(factor float64) *Mesh {
	if factor >= 1 || len(m.Faces) == 0 {
		positions := append([]mgl32.Vec3(nil), m.Positions...)
		faces := append([]Face(nil), m.Faces...)
		return New(m.Name, positions, faces)
	}
	if factor <= 0 {
		factor = 0.01
	}

	tris := make([]*simplify.Triangle, 0, len(m.Faces))
	for _, f := range m.Faces {
		tris = append(tris, simplify.NewTriangle(
			toVector(m.Positions[f[0]]),
			toVector(m.Positions[f[1]]),
			toVector(m.Positions[f[2]]),
		))
	}
	out := simplify.NewMesh(tris).Simplify(factor)

	index := make(map[simplify.Vector]uint32)
	var positions []mgl32.Vec3
	weld := func(v simplify.Vector) uint32 {
		if i, ok := index[v]; ok {
			return i
		}
		i := uint32(len(positions))
		index[v] = i
		positions = append(positions, mgl32.Vec3{float32(v.X), float32(v.Y), float32(v.Z)})
		return i
	}

	faces := make([]Face, 0, len(out.Triangles))
	for _, t := range out.Triangles {
		f := Face{weld(t.V1), weld(t.V2), weld(t.V3)}
		if f[0] == f[1] || f[1] == f[2] || f[0] == f[2] {
			continue
		}
		faces = append(faces, f)
	}
	return New(m.Name, positions, faces)
}

func toVector(p mgl32.Vec3) simplify.Vector {
	return simplify.Vector{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}
}
