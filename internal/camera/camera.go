// Package camera computes view and projection transforms.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"obj-gl-renderer/internal/mathutil"
)

// Defaults applied by New.
const (
	DefaultFovY = 45
	DefaultNear = 0.1
	DefaultFar  = 100
)

// Camera holds a look-at basis plus a translation and a rotation applied on
// top of it. The rotation pivots around Target so that rotating orbits the
// point being looked at.
type Camera struct {
	Eye    mgl32.Vec3
	Target mgl32.Vec3
	Up     mgl32.Vec3

	Translation mgl32.Vec3
	Rotation    mgl32.Quat

	// FovY is the vertical field of view in degrees.
	FovY   float32
	Aspect float32
	Near   float32
	Far    float32
}

// New returns a camera at eye looking at target with identity rotation and
// zero translation.
func New(eye, target, up mgl32.Vec3) *Camera {
	return &Camera{
		Eye:      eye,
		Target:   target,
		Up:       up,
		Rotation: mgl32.QuatIdent(),
		FovY:     DefaultFovY,
		Aspect:   1,
		Near:     DefaultNear,
		Far:      DefaultFar,
	}
}

// LookAt is the view matrix of the bare basis, ignoring translation and
// rotation.
func (c *Camera) LookAt() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye, c.Target, c.Up)
}

// ViewMatrix is LookAt · T(Translation) · T(Target) · R(Rotation) · T(-Target).
// With identity rotation and zero translation it equals LookAt exactly.
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	view := c.LookAt()
	if c.Translation != (mgl32.Vec3{}) {
		view = view.Mul4(mgl32.Translate3D(c.Translation[0], c.Translation[1], c.Translation[2]))
	}
	if c.Rotation != mgl32.QuatIdent() {
		t := c.Target
		pivot := mgl32.Translate3D(t[0], t[1], t[2]).
			Mul4(c.Rotation.Normalize().Mat4()).
			Mul4(mgl32.Translate3D(-t[0], -t[1], -t[2]))
		view = view.Mul4(pivot)
	}
	return view
}

// ProjectionMatrix is a perspective projection from FovY (degrees), Aspect,
// Near and Far.
func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), c.Aspect, c.Near, c.Far)
}

// ViewProjection is ProjectionMatrix · ViewMatrix.
func (c *Camera) ViewProjection() mgl32.Mat4 {
	return c.ProjectionMatrix().Mul4(c.ViewMatrix())
}

// Position is the world-space eye position implied by ViewMatrix.
func (c *Camera) Position() mgl32.Vec3 {
	inv := c.ViewMatrix().Inv()
	return inv.Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
}

// SetTranslation replaces the translation applied after the look-at view.
func (c *Camera) SetTranslation(t mgl32.Vec3) {
	c.Translation = t
}

// Translate adds delta to the current translation.
func (c *Camera) Translate(delta mgl32.Vec3) {
	c.Translation = c.Translation.Add(delta)
}

// SetRotation replaces the rotation about Target. q is normalized.
func (c *Camera) SetRotation(q mgl32.Quat) {
	c.Rotation = q.Normalize()
}

// Rotate applies a rotation of angle radians about axis after the current one.
func (c *Camera) Rotate(angle float32, axis mgl32.Vec3) {
	if axis.Len() == 0 {
		return
	}
	q := mgl32.QuatRotate(angle, axis.Normalize())
	c.Rotation = q.Mul(c.Rotation).Normalize()
}

// RotateEuler applies yaw (about Y), then pitch (about X), in radians.
func (c *Camera) RotateEuler(yaw, pitch float32) {
	c.Rotate(yaw, mgl32.Vec3{0, 1, 0})
	c.Rotate(pitch, mgl32.Vec3{1, 0, 0})
}

// SetAspect sets the aspect ratio from a viewport size.
func (c *Camera) SetAspect(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Aspect = float32(width) / float32(height)
}

// Reset drops translation and rotation, keeping the look-at basis.
func (c *Camera) Reset() {
	c.Translation = mgl32.Vec3{}
	c.Rotation = mgl32.QuatIdent()
}

// Frame moves Target to the center of box and slides Eye along the current
// viewing direction until a sphere around the box fills the vertical field
// of view. Near and Far are refit to the new distance.
func (c *Camera) Frame(box mathutil.AABB) {
	if box.IsEmpty() {
		return
	}
	dir := c.Eye.Sub(c.Target)
	if dir.Len() < 1e-6 {
		dir = mgl32.Vec3{0, 0, 1}
	}
	dir = dir.Normalize()

	radius := box.Radius()
	if radius < 1e-4 {
		radius = 1e-4
	}
	half := mgl32.DegToRad(c.FovY) / 2
	dist := radius / float32(math.Sin(float64(half)))

	c.Target = box.Center()
	c.Eye = c.Target.Add(dir.Mul(dist))
	c.Near = dist - radius*1.5
	if c.Near < dist*0.01 {
		c.Near = dist * 0.01
	}
	c.Far = dist + radius*1.5
}
