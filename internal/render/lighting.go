package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// LightConfig holds precomputed lighting parameters. Directions are in view
// space (camera at the origin looking down -Z) and point toward the light.
type LightConfig struct {
	LightDir mgl32.Vec3
	RimDir   mgl32.Vec3
	HalfMain mgl32.Vec3 // precomputed half-vector for Blinn-Phong
	Ambient  float64
	Hemi     float64
	Direct   float64
	Rim      float64
	SpecInt  float64
	SpecPow  float64
	Exposure float64
	InvGamma float64
}

// DefaultLightConfig returns the standard rig: a key light above and to the
// right of the camera plus a rim light from behind.
func DefaultLightConfig() LightConfig {
	lightDir := mgl32.Vec3{0.45, 0.65, 0.6}.Normalize()
	rimDir := mgl32.Vec3{-0.4, 0.3, -0.55}.Normalize()
	toViewer := mgl32.Vec3{0, 0, 1}

	return LightConfig{
		LightDir: lightDir,
		RimDir:   rimDir,
		HalfMain: lightDir.Add(toViewer).Normalize(),
		Ambient:  0.55,
		Hemi:     0.50,
		Direct:   1.50,
		Rim:      0.60,
		SpecInt:  0.45,
		SpecPow:  12.0,
		Exposure: 1.05,
		InvGamma: 1.0 / 2.2,
	}
}

// ComputeShade returns the combined lighting scalar for a unit normal.
// Diffuse terms use |n·l| so back faces are lit like front faces.
func (lc *LightConfig) ComputeShade(n mgl32.Vec3) float64 {
	ndlMain := math.Abs(float64(n.Dot(lc.LightDir)))
	ndlRim := math.Abs(float64(n.Dot(lc.RimDir)))

	hemi := (1.0-math.Abs(float64(n[1])))*0.5 + 0.5
	hemiLight := hemi * lc.Hemi

	ndh := float64(n.Dot(lc.HalfMain))
	if ndh < 0 {
		ndh = 0
	}
	spec := math.Pow(ndh, lc.SpecPow) * lc.SpecInt

	return lc.Ambient + hemiLight + ndlMain*lc.Direct + ndlRim*lc.Rim + spec
}

// Precomputed sRGB-to-linear lookup table (256 entries).
var srgbToLinear [256]float64

func init() {
	for i := 0; i < 256; i++ {
		srgbToLinear[i] = math.Pow(float64(i)/255.0, 2.2)
	}
}

// ACESTonemap applies ACES Filmic tone mapping to a linear value.
func ACESTonemap(x float64) float64 {
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}

// shadeChannel lights an sRGB channel value, tone maps it and encodes it
// back to sRGB.
func (lc *LightConfig) shadeChannel(c uint8, shade float64) uint8 {
	l := srgbToLinear[c] * shade * lc.Exposure
	return clamp255(math.Pow(ACESTonemap(l), lc.InvGamma) * 255)
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
