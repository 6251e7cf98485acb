package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Generated meshes wind counter-clockwise seen from outside, so the
// accumulated normals point outward.

// quad appends the two triangles of a, b, c, d where a→b runs along the
// first parametric direction and a→d along the second.
func quad(faces []Face, a, b, c, d uint32) []Face {
	return append(faces, Face{a, c, b}, Face{a, d, c})
}

// Cube returns an axis-aligned cube of edge size centered at the origin.
// Each side has its own four vertices so the normals stay flat.
func Cube(size float32) *Mesh {
	h := size / 2
	sides := []struct{ n, u, v mgl32.Vec3 }{
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}},
	}

	positions := make([]mgl32.Vec3, 0, 24)
	faces := make([]Face, 0, 12)
	for _, s := range sides {
		// u × v = n, so p0 → p1 → p2 is counter-clockwise from outside.
		c, u, v := s.n.Mul(h), s.u.Mul(h), s.v.Mul(h)
		base := uint32(len(positions))
		positions = append(positions,
			c.Sub(u).Sub(v),
			c.Add(u).Sub(v),
			c.Add(u).Add(v),
			c.Sub(u).Add(v),
		)
		faces = append(faces, Face{base, base + 1, base + 2}, Face{base, base + 2, base + 3})
	}
	return New("cube", positions, faces)
}

// Plane returns a width×depth rectangle in the XZ plane facing +Y, split
// into segments×segments quads.
func Plane(width, depth float32, segments int) *Mesh {
	if segments < 1 {
		segments = 1
	}
	n := segments + 1
	positions := make([]mgl32.Vec3, 0, n*n)
	for i := 0; i < n; i++ {
		x := -width/2 + width*float32(i)/float32(segments)
		for j := 0; j < n; j++ {
			z := -depth/2 + depth*float32(j)/float32(segments)
			positions = append(positions, mgl32.Vec3{x, 0, z})
		}
	}
	idx := func(i, j int) uint32 { return uint32(i*n + j) }

	faces := make([]Face, 0, segments*segments*2)
	for i := 0; i < segments; i++ {
		for j := 0; j < segments; j++ {
			// +X then +Z keeps the triangles facing +Y.
			faces = quad(faces, idx(i, j), idx(i+1, j), idx(i+1, j+1), idx(i, j+1))
		}
	}
	return New("plane", positions, faces)
}

// Sphere returns a UV sphere with one vertex per pole and slices vertices
// per ring. rings counts latitude bands (at least 2), slices longitude
// segments (at least 3).
func Sphere(radius float32, rings, slices int) *Mesh {
	if rings < 2 {
		rings = 2
	}
	if slices < 3 {
		slices = 3
	}

	positions := make([]mgl32.Vec3, 0, 2+(rings-1)*slices)
	positions = append(positions, mgl32.Vec3{0, radius, 0})
	for r := 1; r < rings; r++ {
		theta := math.Pi * float64(r) / float64(rings)
		st, ct := math.Sincos(theta)
		for s := 0; s < slices; s++ {
			phi := 2 * math.Pi * float64(s) / float64(slices)
			sp, cp := math.Sincos(phi)
			positions = append(positions, mgl32.Vec3{
				radius * float32(st*cp),
				radius * float32(ct),
				radius * float32(st*sp),
			})
		}
	}
	south := uint32(len(positions))
	positions = append(positions, mgl32.Vec3{0, -radius, 0})

	vert := func(r, s int) uint32 {
		switch r {
		case 0:
			return 0
		case rings:
			return south
		}
		return uint32(1 + (r-1)*slices + s%slices)
	}

	faces := make([]Face, 0, 2*rings*slices)
	for r := 0; r < rings; r++ {
		for s := 0; s < slices; s++ {
			a, b, c, d := vert(r, s), vert(r+1, s), vert(r+1, s+1), vert(r, s+1)
			switch r {
			case 0:
				faces = append(faces, Face{a, c, b})
			case rings - 1:
				faces = append(faces, Face{a, d, c})
			default:
				faces = quad(faces, a, b, c, d)
			}
		}
	}
	return New("sphere", positions, faces)
}

// Torus returns a ring around the Y axis with the given major (center to
// tube center) and minor (tube) radii.
func Torus(major, minor float32, rings, sides int) *Mesh {
	if rings < 3 {
		rings = 3
	}
	if sides < 3 {
		sides = 3
	}

	positions := make([]mgl32.Vec3, 0, rings*sides)
	for i := 0; i < rings; i++ {
		su, cu := math.Sincos(2 * math.Pi * float64(i) / float64(rings))
		for j := 0; j < sides; j++ {
			sv, cv := math.Sincos(2 * math.Pi * float64(j) / float64(sides))
			w := float64(major) + float64(minor)*cv
			positions = append(positions, mgl32.Vec3{
				float32(w * cu),
				minor * float32(sv),
				float32(w * su),
			})
		}
	}
	idx := func(i, j int) uint32 { return uint32((i%rings)*sides + j%sides) }

	faces := make([]Face, 0, rings*sides*2)
	for i := 0; i < rings; i++ {
		for j := 0; j < sides; j++ {
			faces = quad(faces, idx(i, j), idx(i+1, j), idx(i+1, j+1), idx(i, j+1))
		}
	}
	return New("torus", positions, faces)
}

// primitives maps names to default proportions.
var primitives = map[string]func() *Mesh{
	"cube":   func() *Mesh { return Cube(1) },
	"plane":  func() *Mesh { return Plane(2, 2, 4) },
	"sphere": func() *Mesh { return Sphere(0.5, 16, 32) },
	"torus":  func() *Mesh { return Torus(0.5, 0.2, 32, 16) },
}

// Generate builds a named primitive with default proportions: "cube",
// "plane", "sphere" or "torus".
func Generate(name string) (*Mesh, bool) {
	build, ok := primitives[name]
	if !ok {
		return nil, false
	}
	return build(), true
}

// IsPrimitive reports whether Generate knows name.
func IsPrimitive(name string) bool {
	_, ok := primitives[name]
	return ok
}
