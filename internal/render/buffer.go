package render

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// FrameBuffer holds the rendering target as flat slices for cache locality.
type FrameBuffer struct {
	Width  int
	Height int
	Color  []uint8   // RGBA interleaved, len = W*H*4
	Depth  []float32 // NDC depth per pixel, len = W*H, initialized to +inf
}

// NewFrameBuffer allocates a transparent color buffer and a +inf depth
// buffer. Smaller depth is nearer.
func NewFrameBuffer(w, h int) *FrameBuffer {
	n := w * h
	depth := make([]float32, n)
	inf := float32(math.Inf(1))
	for i := range depth {
		depth[i] = inf
	}
	return &FrameBuffer{
		Width:  w,
		Height: h,
		Color:  make([]uint8, n*4),
		Depth:  depth,
	}
}

// Image copies the color buffer into a new image.
func (fb *FrameBuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	copy(img.Pix, fb.Color)
	return img
}

// Resolve shrinks the buffer by factor on each axis with CatmullRom
// filtering and returns straight-alpha pixels. Filtering runs on 16-bit
// premultiplied color so silhouette pixels keep their hue instead of
// blending toward the transparent background. A factor of 1 or less copies
// the buffer unscaled.
func (fb *FrameBuffer) Resolve(factor int) *image.NRGBA {
	if factor <= 1 {
		return fb.Image()
	}
	w, h := max(fb.Width/factor, 1), max(fb.Height/factor, 1)

	src := image.NewRGBA64(image.Rect(0, 0, fb.Width, fb.Height))
	for i := 0; i < fb.Width*fb.Height; i++ {
		c := fb.Color[i*4 : i*4+4]
		a := uint32(c[3]) * 0x101
		p := src.Pix[i*8 : i*8+8]
		for ch := 0; ch < 3; ch++ {
			v := uint32(c[ch]) * 0x101 * a / 0xffff
			p[ch*2], p[ch*2+1] = uint8(v>>8), uint8(v)
		}
		p[6], p[7] = uint8(a>>8), uint8(a)
	}

	dst := image.NewRGBA64(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Rect, src, src.Rect, draw.Src, nil)

	out := image.NewNRGBA(dst.Rect)
	for i := 0; i < w*h; i++ {
		p := dst.Pix[i*8 : i*8+8]
		a := uint32(p[6])<<8 | uint32(p[7])
		c := out.Pix[i*4 : i*4+4]
		c[3] = uint8(a >> 8)
		if a == 0 {
			continue
		}
		for ch := 0; ch < 3; ch++ {
			v := uint32(p[ch*2])<<8 | uint32(p[ch*2+1])
			c[ch] = uint8(min(v*0xffff/a, 0xffff) >> 8)
		}
	}
	return out
}
