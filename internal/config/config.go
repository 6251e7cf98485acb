package config

import (
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"obj-gl-renderer/internal/mesh"
)

// Config holds all configurable paths and render settings.
type Config struct {
	// Paths. Relative paths are resolved against BaseDir; URLs and
	// primitive model names are kept.
	BaseDir    string `json:"base_dir"`
	InputDir   string `json:"input_dir"`
	OutputDir  string `json:"output_dir"`
	Model      string `json:"model"`
	ShaderHTML string `json:"shader_html"`
	VertexID   string `json:"vertex_id"`
	FragmentID string `json:"fragment_id"`
	Matcap     string `json:"matcap"`
	CubemapDir string `json:"cubemap_dir"`

	// Render settings
	RenderSize  int     `json:"render_size"`
	Supersample int     `json:"supersample"`
	Workers     int     `json:"workers"`
	FovY        float32 `json:"fov_y"`
	Yaw         float32 `json:"yaw"`
	Pitch       float32 `json:"pitch"`
	Color       string  `json:"color"`
	Simplify    float64 `json:"simplify"`

	// Viewer window
	WindowWidth  int `json:"window_width"`
	WindowHeight int `json:"window_height"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values, except BaseDir which
// defaults to the directory holding the file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.BaseDir == "" {
		cfg.BaseDir = filepath.Dir(path)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	InputDir   string
	OutputDir  string
	Model      string
	Matcap     string
	CubemapDir string
	Size       int
	Workers    int
	Color      string
	Simplify   float64
}

// Resolve applies CLI overrides, resolves relative paths and fills in
// defaults. Flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.InputDir != "" {
		c.InputDir = flags.InputDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Model != "" {
		c.Model = flags.Model
	}
	if flags.Matcap != "" {
		c.Matcap = flags.Matcap
	}
	if flags.CubemapDir != "" {
		c.CubemapDir = flags.CubemapDir
	}
	if flags.Size > 0 {
		c.RenderSize = flags.Size
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Color != "" {
		c.Color = flags.Color
	}
	if flags.Simplify > 0 {
		c.Simplify = flags.Simplify
	}

	if c.BaseDir != "" {
		for _, p := range []*string{&c.InputDir, &c.OutputDir, &c.ShaderHTML, &c.Matcap, &c.CubemapDir} {
			*p = c.resolvePath(*p)
		}
		// Primitive names are not files.
		if !mesh.IsPrimitive(c.Model) {
			c.Model = c.resolvePath(c.Model)
		}
	}
	if c.OutputDir == "" {
		c.OutputDir = "renders"
		if c.InputDir != "" {
			c.OutputDir = filepath.Join(c.InputDir, "renders")
		}
	}

	// Defaults for render settings
	if c.RenderSize <= 0 {
		c.RenderSize = 512
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.FovY <= 0 || c.FovY >= 180 {
		c.FovY = 45
	}
	if c.Color == "" {
		c.Color = "#a0a0aa"
	}
	if c.VertexID == "" {
		c.VertexID = "vertex-shader"
	}
	if c.FragmentID == "" {
		c.FragmentID = "fragment-shader"
	}
	if c.WindowWidth <= 0 {
		c.WindowWidth = 1024
	}
	if c.WindowHeight <= 0 {
		c.WindowHeight = 768
	}
}

func (c *Config) resolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) || strings.Contains(p, "://") {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

// BaseColor parses Color.
func (c *Config) BaseColor() (color.NRGBA, error) {
	return ParseColor(c.Color)
}

// ParseColor parses "#rgb", "#rrggbb" or "#rrggbbaa" (the '#' is optional).
func ParseColor(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return color.NRGBA{}, fmt.Errorf("config: color %q: want #rgb, #rrggbb or #rrggbbaa", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("config: color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
