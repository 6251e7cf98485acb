// Package render draws meshes without a GPU: a z-buffered software
// rasterizer with smooth shading, ACES tone mapping and supersampling.
package render

import (
	"image"
	"image/color"

	"obj-gl-renderer/internal/camera"
	"obj-gl-renderer/internal/mesh"
)

// DefaultColor is the base color of untextured surfaces.
var DefaultColor = color.NRGBA{160, 160, 170, 255}

// Options control a software render.
type Options struct {
	Size        int // output edge in pixels; images are square
	Supersample int // render at Size*Supersample, then downsample
	Color       color.NRGBA
	// Matcap, when set, replaces Color with a texel looked up by the
	// view-space normal.
	Matcap *image.NRGBA
	Light  LightConfig
}

// DefaultOptions renders 512px images at 2x supersampling.
func DefaultOptions() Options {
	return Options{
		Size:        512,
		Supersample: 2,
		Color:       DefaultColor,
		Light:       DefaultLightConfig(),
	}
}

// Mesh renders m seen through cam.
func Mesh(m *mesh.Mesh, cam *camera.Camera, opts Options) *image.NRGBA {
	return Meshes([]*mesh.Mesh{m}, cam, opts)
}

// Meshes renders several meshes into one depth buffer. Neither the meshes
// nor the camera are modified; the camera's aspect ratio is overridden to 1
// for the square target. Meshes without matching Normals are shaded with
// normals computed for this call. The background is transparent.
func Meshes(ms []*mesh.Mesh, cam *camera.Camera, opts Options) *image.NRGBA {
	if opts.Size <= 0 {
		opts.Size = 512
	}
	if opts.Supersample < 1 {
		opts.Supersample = 1
	}
	if opts.Light == (LightConfig{}) {
		opts.Light = DefaultLightConfig()
	}
	renderSize := opts.Size * opts.Supersample

	c := *cam
	c.Aspect = 1
	view := c.ViewMatrix()
	vp := c.ProjectionMatrix().Mul4(view)
	normalMat := view.Mat3()

	fb := NewFrameBuffer(renderSize, renderSize)
	s := &surface{
		r: opts.Color.R, g: opts.Color.G, b: opts.Color.B, a: opts.Color.A,
		matcap: opts.Matcap,
		lc:     &opts.Light,
	}
	if s.a == 0 {
		s.a = 255
	}

	var verts []vertex
	for _, m := range ms {
		normals := m.Normals
		if len(normals) != len(m.Positions) {
			normals = m.VertexNormals()
		}
		verts = verts[:0]
		for i, p := range m.Positions {
			clip := vp.Mul4x1(p.Vec4(1))
			v := vertex{ok: clip[3] > 1e-6}
			if v.ok {
				invW := 1 / float64(clip[3])
				v.x = (float64(clip[0])*invW + 1) * 0.5 * float64(renderSize)
				v.y = (1 - float64(clip[1])*invW) * 0.5 * float64(renderSize)
				v.z = float32(float64(clip[2]) * invW)
				v.invW = invW
				n := normalMat.Mul3x1(normals[i])
				if l := n.Len(); l > 0 {
					n = n.Mul(1 / l)
				}
				v.normal = n
			}
			verts = append(verts, v)
		}
		for _, f := range m.Faces {
			rasterizeTriangle(fb, &verts[f[0]], &verts[f[1]], &verts[f[2]], s)
		}
	}

	return fb.Resolve(opts.Supersample)
}
