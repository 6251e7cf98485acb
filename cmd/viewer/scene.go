package main

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"obj-gl-renderer/internal/camera"
	"obj-gl-renderer/internal/config"
	"obj-gl-renderer/internal/fetch"
	"obj-gl-renderer/internal/gpu"
	"obj-gl-renderer/internal/mesh"
	"obj-gl-renderer/internal/shader"
	"obj-gl-renderer/internal/texture"
)

//go:embed shaders.html
var defaultShaders string

// Texture units used by the default shaders.
const (
	matcapUnit = 0
	envMapUnit = 1
)

// scene is everything drawn each frame.
type scene struct {
	dev    gpu.Device
	prog   *shader.Program
	mesh   *mesh.Mesh
	cam    *camera.Camera
	color  mgl32.Vec3
	light  mgl32.Vec3
	matcap *texture.Texture
	envMap *texture.Texture
}

// loadMesh accepts a primitive name (cube, plane, sphere, torus) or an OBJ
// location.
func loadMesh(ctx context.Context, model string) (*mesh.Mesh, error) {
	if m, ok := mesh.Generate(model); ok {
		return m, nil
	}
	return mesh.LoadOBJ(ctx, model)
}

func loadProgram(ctx context.Context, dev gpu.Device, cfg config.Config) (*shader.Program, error) {
	var r io.Reader = strings.NewReader(defaultShaders)
	if cfg.ShaderHTML != "" {
		rc, err := fetch.Open(ctx, cfg.ShaderHTML)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		r = rc
	}
	return shader.NewFromHTML(dev, r, cfg.VertexID, cfg.FragmentID)
}

func newScene(ctx context.Context, dev gpu.Device, cfg config.Config) (*scene, error) {
	model := cfg.Model
	if model == "" {
		model = "torus"
	}
	m, err := loadMesh(ctx, model)
	if err != nil {
		return nil, err
	}
	if cfg.Simplify > 0 && cfg.Simplify < 1 {
		m = m.Simplify(cfg.Simplify)
	}

	prog, err := loadProgram(ctx, dev, cfg)
	if err != nil {
		return nil, err
	}

	c, err := cfg.BaseColor()
	if err != nil {
		return nil, err
	}

	cam := camera.New(mgl32.Vec3{0, 0.6, 2}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	cam.FovY = cfg.FovY
	cam.Frame(m.Bounds)
	cam.SetAspect(cfg.WindowWidth, cfg.WindowHeight)

	s := &scene{
		dev:   dev,
		prog:  prog,
		mesh:  m,
		cam:   cam,
		color: mgl32.Vec3{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255},
		light: mgl32.Vec3{0.5, 0.8, 0.6}.Normalize(),
	}

	loader := texture.NewLoader(dev, texture.DefaultOptions)
	if cfg.Matcap != "" {
		if s.matcap, err = loader.Load(ctx, cfg.Matcap); err != nil {
			return nil, err
		}
	}
	if cfg.CubemapDir != "" {
		faces, err := texture.CubemapFaces(cfg.CubemapDir)
		if err != nil {
			return nil, err
		}
		// Cube map faces are addressed top-down; no flip.
		cube := &texture.Loader{Device: dev, Resolver: loader.Resolver}
		if s.envMap, err = cube.LoadCubemap(ctx, faces); err != nil {
			return nil, err
		}
	}

	if err := m.Upload(dev); err != nil {
		return nil, err
	}
	return s, nil
}

// draw renders one frame into a width×height framebuffer.
func (s *scene) draw(width, height int) error {
	s.cam.SetAspect(width, height)
	s.dev.Viewport(width, height)
	s.dev.SetDepthTest(true)
	s.dev.Clear(mgl32.Vec4{0.12, 0.12, 0.14, 1})

	s.prog.Use()
	uniforms := []struct {
		name  string
		value any
	}{
		{"uModel", mgl32.Ident4()},
		{"uView", s.cam.ViewMatrix()},
		{"uProjection", s.cam.ProjectionMatrix()},
		{"uCameraPos", s.cam.Position()},
		{"uBaseColor", s.color},
		{"uLightDir", s.light},
		{"uUseMatcap", s.matcap != nil},
		{"uUseEnvMap", s.envMap != nil},
		{"uMatcap", matcapUnit},
		{"uEnvMap", envMapUnit},
	}
	for _, u := range uniforms {
		if err := s.prog.SetIfPresent(u.name, u.value); err != nil {
			return fmt.Errorf("uniform %s: %w", u.name, err)
		}
	}
	if s.matcap != nil {
		s.matcap.Bind(matcapUnit)
	}
	if s.envMap != nil {
		s.envMap.Bind(envMapUnit)
	}
	return s.mesh.Draw(s.dev, s.prog)
}
