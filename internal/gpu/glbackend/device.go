// Package glbackend implements gpu.Device on an OpenGL 3.3 core context.
//
// New must be called after a context has been made current on the calling
// OS thread; every method must be called from that same thread.
package glbackend

import (
	"fmt"
	"image"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"obj-gl-renderer/internal/gpu"
	"obj-gl-renderer/internal/logging"
)

// Device drives the current OpenGL context.
type Device struct {
	vao uint32
}

var _ gpu.Device = (*Device)(nil)

// New loads the GL entry points and binds the single vertex array object a
// core profile requires before any attribute setup.
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("glbackend: init: %w", err)
	}
	logging.Logger().Info("opengl context",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)))

	d := &Device{}
	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)
	return d, nil
}

func (d *Device) CreateVertexBuffer(data []float32) (gpu.Buffer, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("glbackend: empty vertex buffer")
	}
	var id uint32
	gl.GenBuffers(1, &id)
	gl.BindBuffer(gl.ARRAY_BUFFER, id)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
	return gpu.Buffer(id), nil
}

func (d *Device) CreateIndexBuffer(data []uint32) (gpu.Buffer, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("glbackend: empty index buffer")
	}
	var id uint32
	gl.GenBuffers(1, &id)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, id)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
	return gpu.Buffer(id), nil
}

func (d *Device) DeleteBuffer(b gpu.Buffer) {
	id := uint32(b)
	gl.DeleteBuffers(1, &id)
}

func (d *Device) CompileShader(stage gpu.Stage, src string) (gpu.Shader, error) {
	kind := uint32(gl.VERTEX_SHADER)
	if stage == gpu.FragmentStage {
		kind = gl.FRAGMENT_SHADER
	}
	id := gl.CreateShader(kind)
	csrc, free := gl.Strs(src + "\x00")
	gl.ShaderSource(id, 1, csrc, nil)
	free()
	gl.CompileShader(id)

	var status int32
	gl.GetShaderiv(id, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var n int32
		gl.GetShaderiv(id, gl.INFO_LOG_LENGTH, &n)
		log := strings.Repeat("\x00", int(n+1))
		gl.GetShaderInfoLog(id, n, nil, gl.Str(log))
		gl.DeleteShader(id)
		return 0, &gpu.CompileError{Stage: stage, Log: strings.TrimRight(log, "\x00\n")}
	}
	return gpu.Shader(id), nil
}

func (d *Device) DeleteShader(s gpu.Shader) {
	gl.DeleteShader(uint32(s))
}

func (d *Device) LinkProgram(vs, fs gpu.Shader) (gpu.Program, error) {
	id := gl.CreateProgram()
	gl.AttachShader(id, uint32(vs))
	gl.AttachShader(id, uint32(fs))
	gl.LinkProgram(id)

	var status int32
	gl.GetProgramiv(id, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var n int32
		gl.GetProgramiv(id, gl.INFO_LOG_LENGTH, &n)
		log := strings.Repeat("\x00", int(n+1))
		gl.GetProgramInfoLog(id, n, nil, gl.Str(log))
		gl.DeleteProgram(id)
		return 0, &gpu.LinkError{Log: strings.TrimRight(log, "\x00\n")}
	}
	gl.DetachShader(id, uint32(vs))
	gl.DetachShader(id, uint32(fs))
	return gpu.Program(id), nil
}

func (d *Device) ActiveUniforms(p gpu.Program) []gpu.Variable {
	return d.active(uint32(p), gl.ACTIVE_UNIFORMS, gl.ACTIVE_UNIFORM_MAX_LENGTH, gl.GetActiveUniform, gl.GetUniformLocation)
}

func (d *Device) ActiveAttributes(p gpu.Program) []gpu.Variable {
	return d.active(uint32(p), gl.ACTIVE_ATTRIBUTES, gl.ACTIVE_ATTRIBUTE_MAX_LENGTH, gl.GetActiveAttrib, gl.GetAttribLocation)
}

type activeFunc func(program, index uint32, bufSize int32, length, size *int32, xtype *uint32, name *uint8)

type locationFunc func(program uint32, name *uint8) int32

func (d *Device) active(p, countParam, lenParam uint32, query activeFunc, locate locationFunc) []gpu.Variable {
	var count, maxLen int32
	gl.GetProgramiv(p, countParam, &count)
	gl.GetProgramiv(p, lenParam, &maxLen)
	if count == 0 {
		return nil
	}

	vars := make([]gpu.Variable, 0, count)
	buf := make([]uint8, maxLen+1)
	for i := int32(0); i < count; i++ {
		var length, size int32
		var xtype uint32
		query(p, uint32(i), maxLen+1, &length, &size, &xtype, &buf[0])
		name := string(buf[:length])
		// Arrays report their first element.
		name = strings.TrimSuffix(name, "[0]")
		vars = append(vars, gpu.Variable{
			Name:     name,
			Type:     glType(xtype),
			Size:     int(size),
			Location: locate(p, gl.Str(name+"\x00")),
		})
	}
	return vars
}

func glType(xtype uint32) gpu.Type {
	switch xtype {
	case gl.FLOAT:
		return gpu.Float
	case gl.FLOAT_VEC2:
		return gpu.Vec2
	case gl.FLOAT_VEC3:
		return gpu.Vec3
	case gl.FLOAT_VEC4:
		return gpu.Vec4
	case gl.INT:
		return gpu.Int
	case gl.BOOL:
		return gpu.Bool
	case gl.FLOAT_MAT3:
		return gpu.Mat3
	case gl.FLOAT_MAT4:
		return gpu.Mat4
	case gl.SAMPLER_2D:
		return gpu.Sampler2D
	case gl.SAMPLER_CUBE:
		return gpu.SamplerCube
	}
	return gpu.TypeUnknown
}

func (d *Device) UseProgram(p gpu.Program) {
	gl.UseProgram(uint32(p))
}

func (d *Device) SetUniformFloats(location int32, t gpu.Type, v []float32) {
	n := t.Components()
	if n == 0 || len(v) < n {
		return
	}
	count := int32(len(v) / n)
	switch t {
	case gpu.Float:
		gl.Uniform1fv(location, count, &v[0])
	case gpu.Vec2:
		gl.Uniform2fv(location, count, &v[0])
	case gpu.Vec3:
		gl.Uniform3fv(location, count, &v[0])
	case gpu.Vec4:
		gl.Uniform4fv(location, count, &v[0])
	case gpu.Mat3:
		gl.UniformMatrix3fv(location, count, false, &v[0])
	case gpu.Mat4:
		gl.UniformMatrix4fv(location, count, false, &v[0])
	}
}

func (d *Device) SetUniformInt(location int32, v int32) {
	gl.Uniform1i(location, v)
}

func (d *Device) BindAttribute(location int32, buf gpu.Buffer, components int) {
	if location < 0 {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(buf))
	gl.EnableVertexAttribArray(uint32(location))
	gl.VertexAttribPointer(uint32(location), int32(components), gl.FLOAT, false, 0, gl.PtrOffset(0))
}

func (d *Device) DrawIndexed(indices gpu.Buffer, count int) {
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, uint32(indices))
	gl.DrawElements(gl.TRIANGLES, int32(count), gl.UNSIGNED_INT, gl.PtrOffset(0))
}

func (d *Device) CreateTexture2D(img *image.NRGBA, mipmaps bool) (gpu.Texture, error) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w == 0 || h == 0 {
		return 0, fmt.Errorf("glbackend: empty texture")
	}
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	if mipmaps {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	} else {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	}
	pix := tightPix(img)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pix))
	if mipmaps {
		gl.GenerateMipmap(gl.TEXTURE_2D)
	}
	return gpu.Texture(id), nil
}

func (d *Device) CreateCubemap(faces [gpu.CubeFaces]*image.NRGBA) (gpu.Texture, error) {
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, id)
	for i, f := range faces {
		w, h := f.Rect.Dx(), f.Rect.Dy()
		pix := tightPix(f)
		gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(i), 0, gl.RGBA8, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pix))
	}
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	return gpu.Texture(id), nil
}

// tightPix returns the pixel rows without stride padding, as TexImage2D
// expects with the default unpack alignment for RGBA.
func tightPix(img *image.NRGBA) []uint8 {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if img.Stride == w*4 && len(img.Pix) == w*h*4 {
		return img.Pix
	}
	out := make([]uint8, w*h*4)
	for y := 0; y < h; y++ {
		off := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
		copy(out[y*w*4:], img.Pix[off:off+w*4])
	}
	return out
}

func (d *Device) BindTexture(unit int, target gpu.TextureTarget, t gpu.Texture) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	if target == gpu.TextureCubeMap {
		gl.BindTexture(gl.TEXTURE_CUBE_MAP, uint32(t))
		return
	}
	gl.BindTexture(gl.TEXTURE_2D, uint32(t))
}

func (d *Device) Viewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (d *Device) Clear(color mgl32.Vec4) {
	gl.ClearColor(color[0], color[1], color[2], color[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (d *Device) SetDepthTest(enabled bool) {
	if enabled {
		gl.Enable(gl.DEPTH_TEST)
		return
	}
	gl.Disable(gl.DEPTH_TEST)
}
