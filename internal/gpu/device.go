// Package gpu describes the host graphics API the toolkit draws through.
//
// Handles are opaque numbers owned by the Device that issued them. A Device
// is not safe for concurrent use: drive it from the goroutine (and, for the
// OpenGL backend, the locked OS thread) that owns the context.
package gpu

import (
	"fmt"
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

type (
	Buffer  uint32
	Shader  uint32
	Program uint32
	Texture uint32
)

// Stage selects the programmable pipeline stage of a shader.
type Stage int

const (
	VertexStage Stage = iota
	FragmentStage
)

func (s Stage) String() string {
	switch s {
	case VertexStage:
		return "vertex"
	case FragmentStage:
		return "fragment"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// TextureTarget is the binding point of a texture.
type TextureTarget int

const (
	Texture2D TextureTarget = iota
	TextureCubeMap
)

// CubeFaces is the number of images in a cube map, ordered
// +X, -X, +Y, -Y, +Z, -Z.
const CubeFaces = 6

// Variable is an active uniform or attribute reported after linking.
// Size is the array length (1 for scalars). Location is -1 when the
// driver did not assign one.
type Variable struct {
	Name     string
	Type     Type
	Size     int
	Location int32
}

// Device is the set of host graphics API calls the toolkit relies on.
type Device interface {
	CreateVertexBuffer(data []float32) (Buffer, error)
	CreateIndexBuffer(data []uint32) (Buffer, error)
	DeleteBuffer(b Buffer)

	// CompileShader returns a *CompileError carrying the driver log when
	// compilation fails.
	CompileShader(stage Stage, src string) (Shader, error)
	DeleteShader(s Shader)
	// LinkProgram returns a *LinkError carrying the driver log when
	// linking fails.
	LinkProgram(vs, fs Shader) (Program, error)
	ActiveUniforms(p Program) []Variable
	ActiveAttributes(p Program) []Variable
	UseProgram(p Program)

	// SetUniformFloats uploads len(v)/t.Components() elements of type t.
	SetUniformFloats(location int32, t Type, v []float32)
	SetUniformInt(location int32, v int32)

	BindAttribute(location int32, buf Buffer, components int)
	DrawIndexed(indices Buffer, count int)

	CreateTexture2D(img *image.NRGBA, mipmaps bool) (Texture, error)
	CreateCubemap(faces [CubeFaces]*image.NRGBA) (Texture, error)
	BindTexture(unit int, target TextureTarget, t Texture)

	Viewport(width, height int)
	Clear(color mgl32.Vec4)
	SetDepthTest(enabled bool)
}

// CompileError is returned by Device.CompileShader.
type CompileError struct {
	Stage Stage
	Log   string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("gpu: compile %s shader: %s", e.Stage, e.Log)
}

// LinkError is returned by Device.LinkProgram.
type LinkError struct {
	Log string
}

func (e *LinkError) Error() string {
	return "gpu: link program: " + e.Log
}
