package shader

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"obj-gl-renderer/internal/gpu"
)

// Uniform is an active uniform of a linked program. Setters check the
// reflected type and upload through the owning program's device; the
// program should be current (Program.Use) when they are called.
type Uniform struct {
	Name     string
	Type     gpu.Type
	Size     int
	Location int32

	prog *Program
}

func (u *Uniform) mismatch(got gpu.Type) error {
	return fmt.Errorf("%w: %q is %s, got %s", ErrTypeMismatch, u.Name, u.Type, got)
}

func (u *Uniform) floats(t gpu.Type, v []float32) error {
	if u.Type != t {
		return u.mismatch(t)
	}
	if n := len(v) / t.Components(); n > u.Size {
		return fmt.Errorf("shader: %q holds %d elements, got %d", u.Name, u.Size, n)
	}
	u.prog.dev.SetUniformFloats(u.Location, t, v)
	return nil
}

func (u *Uniform) SetFloat(v float32) error {
	return u.floats(gpu.Float, []float32{v})
}

func (u *Uniform) SetVec2(v mgl32.Vec2) error {
	return u.floats(gpu.Vec2, v[:])
}

func (u *Uniform) SetVec3(v mgl32.Vec3) error {
	return u.floats(gpu.Vec3, v[:])
}

func (u *Uniform) SetVec4(v mgl32.Vec4) error {
	return u.floats(gpu.Vec4, v[:])
}

func (u *Uniform) SetMat3(m mgl32.Mat3) error {
	return u.floats(gpu.Mat3, m[:])
}

// SetMat4 uploads m. mgl32 matrices are column-major, as GL expects.
func (u *Uniform) SetMat4(m mgl32.Mat4) error {
	return u.floats(gpu.Mat4, m[:])
}

// SetVec3Array uploads consecutive elements of a vec3 array uniform.
func (u *Uniform) SetVec3Array(vs []mgl32.Vec3) error {
	flat := make([]float32, 0, len(vs)*3)
	for _, v := range vs {
		flat = append(flat, v[:]...)
	}
	return u.floats(gpu.Vec3, flat)
}

// SetInt sets an int, bool or sampler uniform.
func (u *Uniform) SetInt(v int32) error {
	if !u.Type.IsIntegral() {
		return u.mismatch(gpu.Int)
	}
	u.prog.dev.SetUniformInt(u.Location, v)
	return nil
}

func (u *Uniform) SetBool(v bool) error {
	if u.Type != gpu.Bool {
		return u.mismatch(gpu.Bool)
	}
	var i int32
	if v {
		i = 1
	}
	u.prog.dev.SetUniformInt(u.Location, i)
	return nil
}

// SetSampler points a sampler uniform at texture unit.
func (u *Uniform) SetSampler(unit int) error {
	if !u.Type.IsSampler() {
		return u.mismatch(gpu.Sampler2D)
	}
	u.prog.dev.SetUniformInt(u.Location, int32(unit))
	return nil
}

// Set dispatches on the Go type of value: float32, float64, int, int32,
// bool, mgl32.Vec2/Vec3/Vec4, mgl32.Mat3/Mat4 and []mgl32.Vec3. Ints go to
// int, bool or sampler uniforms, and to float uniforms as a convenience.
func (u *Uniform) Set(value any) error {
	switch v := value.(type) {
	case float32:
		return u.SetFloat(v)
	case float64:
		return u.SetFloat(float32(v))
	case int:
		return u.setInt(int32(v))
	case int32:
		return u.setInt(v)
	case bool:
		return u.SetBool(v)
	case mgl32.Vec2:
		return u.SetVec2(v)
	case mgl32.Vec3:
		return u.SetVec3(v)
	case mgl32.Vec4:
		return u.SetVec4(v)
	case mgl32.Mat3:
		return u.SetMat3(v)
	case mgl32.Mat4:
		return u.SetMat4(v)
	case []mgl32.Vec3:
		return u.SetVec3Array(v)
	}
	return fmt.Errorf("%w: %q cannot take %T", ErrTypeMismatch, u.Name, value)
}

func (u *Uniform) setInt(v int32) error {
	if u.Type == gpu.Float {
		return u.SetFloat(float32(v))
	}
	return u.SetInt(v)
}
