package texture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "github.com/ftrvxmtrx/tga"
	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"obj-gl-renderer/internal/fetch"
	"obj-gl-renderer/internal/logging"
)

// Decode reads an image at location (path or http(s) URL) and returns it as
// NRGBA. The format is sniffed: png, jpeg, gif, bmp, webp and tga are
// registered.
func Decode(ctx context.Context, location string) (*image.NRGBA, error) {
	raw, err := fetch.ReadAll(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("texture: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("texture: decode %s: %w", location, err)
	}
	return toNRGBA(img), nil
}

// toNRGBA converts any image to NRGBA with its origin at (0, 0).
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, src, b.Min, draw.Src)
	return dst
}

// flipY returns a vertically mirrored copy. Image rows run top to bottom
// while texture coordinates start at the bottom.
func flipY(src *image.NRGBA) *image.NRGBA {
	h := src.Rect.Dy()
	dst := image.NewNRGBA(src.Rect)
	row := src.Rect.Dx() * 4
	for y := 0; y < h; y++ {
		s := src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y+y)
		d := dst.PixOffset(dst.Rect.Min.X, dst.Rect.Max.Y-1-y)
		copy(dst.Pix[d:d+row], src.Pix[s:s+row])
	}
	return dst
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// toPowerOfTwo scales src up to the next power-of-two size on each axis.
func toPowerOfTwo(src *image.NRGBA) *image.NRGBA {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if isPowerOfTwo(w) && isPowerOfTwo(h) {
		return src
	}
	pw, ph := nextPowerOfTwo(w), nextPowerOfTwo(h)
	logging.Logger().Warn("texture resized to power of two", "from", fmt.Sprintf("%dx%d", w, h), "to", fmt.Sprintf("%dx%d", pw, ph))
	scaled := resize.Resize(uint(pw), uint(ph), src, resize.Bilinear)
	return toNRGBA(scaled)
}

// prepare applies opts to a decoded image. The input is never modified, so
// cached images can be shared.
func prepare(img *image.NRGBA, opts Options) *image.NRGBA {
	if opts.FlipY {
		img = flipY(img)
	}
	if opts.PowerOfTwo {
		img = toPowerOfTwo(img)
	}
	return img
}
