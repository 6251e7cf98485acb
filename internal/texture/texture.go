// Package texture loads images into GPU textures and cube maps.
package texture

import (
	"context"
	"errors"
	"fmt"
	"image"

	"golang.org/x/sync/errgroup"

	"obj-gl-renderer/internal/gpu"
	"obj-gl-renderer/internal/logging"
)

// ErrNotSquare is returned for cube map faces that are not square or not
// all the same size.
var ErrNotSquare = errors.New("cube map faces must be square and equal size")

// Options control how decoded images are prepared for upload.
type Options struct {
	// FlipY mirrors rows so the first image row lands at t = 1.
	FlipY bool
	// PowerOfTwo scales images up to power-of-two dimensions.
	PowerOfTwo bool
	// Mipmaps generates a mip chain for 2D textures.
	Mipmaps bool
}

// DefaultOptions flips rows and builds mipmaps.
var DefaultOptions = Options{FlipY: true, Mipmaps: true}

// Texture is an uploaded 2D texture or cube map.
type Texture struct {
	Handle gpu.Texture
	Target gpu.TextureTarget
	Width  int
	Height int

	dev gpu.Device
}

// Bind makes the texture current on the given unit.
func (t *Texture) Bind(unit int) {
	t.dev.BindTexture(unit, t.Target, t.Handle)
}

// Loader uploads images to one device. A nil Resolver decodes every request
// afresh; set it to a *Cache to share decoded images.
type Loader struct {
	Device   gpu.Device
	Resolver Resolver
	Options  Options
}

// NewLoader returns a loader for dev backed by a fresh cache.
func NewLoader(dev gpu.Device, opts Options) *Loader {
	return &Loader{Device: dev, Resolver: NewCache(), Options: opts}
}

func (l *Loader) resolver() Resolver {
	if l.Resolver == nil {
		return decoder{}
	}
	return l.Resolver
}

// Load fetches, decodes and uploads a 2D texture.
func (l *Loader) Load(ctx context.Context, location string) (*Texture, error) {
	img, err := l.resolver().Resolve(ctx, location)
	if err != nil {
		return nil, err
	}
	img = prepare(img, l.Options)
	h, err := l.Device.CreateTexture2D(img, l.Options.Mipmaps)
	if err != nil {
		return nil, fmt.Errorf("texture: upload %s: %w", location, err)
	}
	logging.Logger().Debug("texture uploaded", "location", location,
		"width", img.Rect.Dx(), "height", img.Rect.Dy())
	return &Texture{Handle: h, Target: gpu.Texture2D, Width: img.Rect.Dx(), Height: img.Rect.Dy(), dev: l.Device}, nil
}

// LoadCubemap loads the six faces (+X, -X, +Y, -Y, +Z, -Z) concurrently
// and uploads them once all have arrived. Face i always comes from
// faces[i], whatever order the requests finish in. Any failed face fails
// the whole cube map.
func (l *Loader) LoadCubemap(ctx context.Context, faces [gpu.CubeFaces]string) (*Texture, error) {
	var imgs [gpu.CubeFaces]*image.NRGBA
	g, gctx := errgroup.WithContext(ctx)
	res := l.resolver()
	for i, loc := range faces {
		g.Go(func() error {
			img, err := res.Resolve(gctx, loc)
			if err != nil {
				return fmt.Errorf("cube face %d: %w", i, err)
			}
			imgs[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("texture: %w", err)
	}

	// Mip generation does not apply to cube maps; only FlipY and PowerOfTwo.
	size := 0
	for i, img := range imgs {
		img = prepare(img, l.Options)
		w, h := img.Rect.Dx(), img.Rect.Dy()
		if w != h || (i > 0 && w != size) {
			return nil, fmt.Errorf("texture: %s is %dx%d: %w", faces[i], w, h, ErrNotSquare)
		}
		size = w
		imgs[i] = img
	}

	handle, err := l.Device.CreateCubemap(imgs)
	if err != nil {
		return nil, fmt.Errorf("texture: upload cube map: %w", err)
	}
	logging.Logger().Debug("cube map uploaded", "size", size)
	return &Texture{Handle: handle, Target: gpu.TextureCubeMap, Width: size, Height: size, dev: l.Device}, nil
}

// Load uploads the image at location as a 2D texture without caching.
func Load(ctx context.Context, dev gpu.Device, location string, opts Options) (*Texture, error) {
	return (&Loader{Device: dev, Options: opts}).Load(ctx, location)
}

// LoadCubemap uploads six face images as a cube map without caching.
func LoadCubemap(ctx context.Context, dev gpu.Device, faces [gpu.CubeFaces]string, opts Options) (*Texture, error) {
	return (&Loader{Device: dev, Options: opts}).LoadCubemap(ctx, faces)
}
