package render

import (
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// vertex is a projected mesh vertex.
type vertex struct {
	x, y   float64    // pixel coordinates, y down
	z      float32    // NDC depth
	invW   float64    // 1/w for perspective-correct interpolation
	normal mgl32.Vec3 // view-space unit normal
	ok     bool       // in front of the camera
}

// surface is the per-draw material state shared by all triangles.
type surface struct {
	r, g, b, a uint8
	matcap     *image.NRGBA
	lc         *LightConfig
}

// rasterizeTriangle fills one triangle with depth testing and smooth
// shading. Normals are interpolated perspective-correctly and renormalized
// per pixel; depth is interpolated linearly in screen space.
func rasterizeTriangle(fb *FrameBuffer, v0, v1, v2 *vertex, s *surface) {
	if !v0.ok || !v1.ok || !v2.ok {
		return
	}
	x0, y0 := v0.x, v0.y
	x1, y1 := v1.x, v1.y
	x2, y2 := v2.x, v2.y

	minX := int(math.Floor(math.Min(math.Min(x0, x1), x2)))
	maxX := int(math.Ceil(math.Max(math.Max(x0, x1), x2)))
	minY := int(math.Floor(math.Min(math.Min(y0, y1), y2)))
	maxY := int(math.Ceil(math.Max(math.Max(y0, y1), y2)))

	if minX < 0 {
		minX = 0
	}
	if maxX >= fb.Width {
		maxX = fb.Width - 1
	}
	if minY < 0 {
		minY = 0
	}
	if maxY >= fb.Height {
		maxY = fb.Height - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-12 && det < 1e-12 {
		return
	}
	invDet := 1.0 / det

	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) + 0.5 - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1

			if w0 < -1e-6 || w1 < -1e-6 || w2 < -1e-6 {
				continue
			}

			z := float32(w0)*v0.z + float32(w1)*v1.z + float32(w2)*v2.z
			if z < -1 || z > 1 {
				continue
			}
			zIdx := rowOff + sx
			if z >= fb.Depth[zIdx] {
				continue
			}

			// Perspective-correct weights
			p0, p1, p2 := w0*v0.invW, w1*v1.invW, w2*v2.invW
			sum := p0 + p1 + p2
			n := v0.normal.Mul(float32(p0 / sum)).
				Add(v1.normal.Mul(float32(p1 / sum))).
				Add(v2.normal.Mul(float32(p2 / sum)))
			if l := n.Len(); l > 0 {
				n = n.Mul(1 / l)
			}

			cr, cg, cb, ca := s.r, s.g, s.b, s.a
			if s.matcap != nil {
				cr, cg, cb, _ = sampleMatcap(s.matcap, n)
			}
			fb.Depth[zIdx] = z

			shade := s.lc.ComputeShade(n)
			pxIdx := zIdx * 4
			fb.Color[pxIdx] = s.lc.shadeChannel(cr, shade)
			fb.Color[pxIdx+1] = s.lc.shadeChannel(cg, shade)
			fb.Color[pxIdx+2] = s.lc.shadeChannel(cb, shade)
			fb.Color[pxIdx+3] = ca
		}
	}
}
