package mesh

import (
	"fmt"

	"obj-gl-renderer/internal/gpu"
	"obj-gl-renderer/internal/logging"
	"obj-gl-renderer/internal/mathutil"
	"obj-gl-renderer/internal/shader"
)

// Attribute names Draw feeds when the program declares them.
var (
	PositionAttribute = "aPosition"
	NormalAttribute   = "aNormal"
)

type buffers struct {
	dev       gpu.Device
	positions gpu.Buffer
	normals   gpu.Buffer
	indices   gpu.Buffer
	count     int
}

// Upload creates the position, normal and index buffers on dev. Buffers are
// created once per mesh and device; later calls do nothing. Edits to the
// mesh after the first upload are not seen by the GPU. When any buffer
// fails, the ones already created are deleted before returning.
func (m *Mesh) Upload(dev gpu.Device) error {
	if m.buffers != nil && m.buffers.dev == dev {
		return nil
	}
	if len(m.Normals) != len(m.Positions) {
		m.ComputeNormals()
	}

	pos, err := dev.CreateVertexBuffer(mathutil.Flatten(m.Positions))
	if err != nil {
		return fmt.Errorf("mesh %s: position buffer: %w", m.Name, err)
	}
	nrm, err := dev.CreateVertexBuffer(mathutil.Flatten(m.Normals))
	if err != nil {
		dev.DeleteBuffer(pos)
		return fmt.Errorf("mesh %s: normal buffer: %w", m.Name, err)
	}
	idx, err := dev.CreateIndexBuffer(m.Indices())
	if err != nil {
		dev.DeleteBuffer(pos)
		dev.DeleteBuffer(nrm)
		return fmt.Errorf("mesh %s: index buffer: %w", m.Name, err)
	}
	m.buffers = &buffers{dev: dev, positions: pos, normals: nrm, indices: idx, count: len(m.Faces) * 3}
	logging.Logger().Debug("mesh uploaded", "mesh", m.Name, "indices", m.buffers.count)
	return nil
}

// Uploaded reports whether GPU buffers exist for the mesh.
func (m *Mesh) Uploaded() bool {
	return m.buffers != nil
}

// Draw uploads the mesh if needed, binds its positions and normals to the
// program's aPosition and aNormal attributes and issues one indexed draw.
// The program must already be in use. An attribute the program does not
// declare is left unbound.
func (m *Mesh) Draw(dev gpu.Device, prog *shader.Program) error {
	if err := m.Upload(dev); err != nil {
		return err
	}
	b := m.buffers
	if _, ok := prog.Attribute(PositionAttribute); ok {
		if err := prog.BindAttribute(PositionAttribute, b.positions, 3); err != nil {
			return err
		}
	}
	if _, ok := prog.Attribute(NormalAttribute); ok {
		if err := prog.BindAttribute(NormalAttribute, b.normals, 3); err != nil {
			return err
		}
	}
	if b.count > 0 {
		dev.DrawIndexed(b.indices, b.count)
	}
	return nil
}
