// Package mesh holds indexed triangle meshes: loading, procedural
// generation, bounds, per-vertex normals and GPU upload.
package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"obj-gl-renderer/internal/mathutil"
)

// Face holds three 0-based indices into Positions.
type Face [3]uint32

// Mesh is an indexed triangle list. Normals has one entry per position once
// ComputeNormals has run.
type Mesh struct {
	Name      string
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	Faces     []Face
	Bounds    mathutil.AABB

	buffers *buffers
}

// New builds a mesh and computes its bounds and normals.
func New(name string, positions []mgl32.Vec3, faces []Face) *Mesh {
	m := &Mesh{Name: name, Positions: positions, Faces: faces}
	m.ComputeBounds()
	m.ComputeNormals()
	return m
}

// ComputeBounds sets Bounds to the coordinate-wise min/max of Positions.
func (m *Mesh) ComputeBounds() {
	m.Bounds = mathutil.BoundsOf(m.Positions)
}

// FaceNormal returns the unnormalized normal (p1-p0) × (p2-p0) of f. Its
// length is twice the triangle area.
func (m *Mesh) FaceNormal(f Face) mgl32.Vec3 {
	p0 := m.Positions[f[0]]
	e1 := m.Positions[f[1]].Sub(p0)
	e2 := m.Positions[f[2]].Sub(p0)
	return e1.Cross(e2)
}

// ComputeNormals sets Normals from VertexNormals.
func (m *Mesh) ComputeNormals() {
	m.Normals = m.VertexNormals()
}

// VertexNormals accumulates every face normal, unnormalized so larger
// faces weigh more, into its three vertices and returns the normalized
// sums. Vertices whose sum is zero (unreferenced, or only touched by
// zero-area faces) get a zero normal. The mesh is not modified.
func (m *Mesh) VertexNormals() []mgl32.Vec3 {
	normals := make([]mgl32.Vec3, len(m.Positions))
	for _, f := range m.Faces {
		n := m.FaceNormal(f)
		normals[f[0]] = normals[f[0]].Add(n)
		normals[f[1]] = normals[f[1]].Add(n)
		normals[f[2]] = normals[f[2]].Add(n)
	}
	for i, n := range normals {
		if l := n.Len(); l > 0 {
			normals[i] = n.Mul(1 / l)
		}
	}
	return normals
}

// Stats summarizes a mesh for inspection tools.
type Stats struct {
	Vertices   int
	Faces      int
	Degenerate int // faces with zero area
	Unused     int // vertices referenced by no face
	Area       float64
	Bounds     mathutil.AABB
}

// Stats counts vertices, faces and degenerate faces, and sums the surface
// area.
func (m *Mesh) Stats() Stats {
	s := Stats{Vertices: len(m.Positions), Faces: len(m.Faces), Bounds: m.Bounds}
	used := make([]bool, len(m.Positions))
	for _, f := range m.Faces {
		a := float64(m.FaceNormal(f).Len()) / 2
		if a == 0 {
			s.Degenerate++
		}
		s.Area += a
		used[f[0]], used[f[1]], used[f[2]] = true, true, true
	}
	for _, u := range used {
		if !u {
			s.Unused++
		}
	}
	return s
}

// Indices flattens Faces for an index buffer.
func (m *Mesh) Indices() []uint32 {
	out := make([]uint32, 0, len(m.Faces)*3)
	for _, f := range m.Faces {
		out = append(out, f[0], f[1], f[2])
	}
	return out
}
