package main

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"obj-gl-renderer/internal/config"
	"obj-gl-renderer/internal/gpu"
	"obj-gl-renderer/internal/gpu/gputest"
)

func writeFace(t *testing.T, path string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{255, 255, 255, 255})
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestDefaultShadersReflect(t *testing.T) {
	cfg := config.Config{}
	cfg.Resolve(config.Flags{})
	prog, err := loadProgram(context.Background(), gputest.New(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"uModel", "uView", "uProjection", "uBaseColor", "uMatcap", "uEnvMap"} {
		if _, ok := prog.Uniform(name); !ok {
			t.Errorf("uniform %s missing", name)
		}
	}
	if u, _ := prog.Uniform("uEnvMap"); u == nil || u.Type != gpu.SamplerCube {
		t.Errorf("uEnvMap = %+v", u)
	}
	if _, ok := prog.Attribute("aNormal"); !ok {
		t.Error("aNormal missing")
	}
}

func TestSceneDraw(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{"px", "nx", "py", "ny", "pz", "nz", "matcap"} {
		writeFace(t, filepath.Join(dir, f+".png"))
	}

	cfg := config.Config{Model: "sphere", Matcap: filepath.Join(dir, "matcap.png"), CubemapDir: dir}
	cfg.Resolve(config.Flags{})
	dev := gputest.New()
	s, err := newScene(context.Background(), dev, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.draw(800, 600); err != nil {
		t.Fatal(err)
	}
	s.cam.RotateEuler(0.3, 0.1)
	if err := s.draw(800, 600); err != nil {
		t.Fatal(err)
	}

	if len(dev.Draws) != 2 || dev.Draws[0].Count != len(s.mesh.Faces)*3 {
		t.Fatalf("draws = %d", len(dev.Draws))
	}
	if dev.Width != 800 || !dev.DepthTest || dev.Clears != 2 {
		t.Errorf("viewport %dx%d depth %v clears %d", dev.Width, dev.Height, dev.DepthTest, dev.Clears)
	}
	if tex := dev.Textures[dev.Units[envMapUnit]]; tex == nil || tex.Target != gpu.TextureCubeMap {
		t.Errorf("env map unit holds %+v", tex)
	}
	if v, _ := dev.Uniform(s.prog.Handle(), "uUseMatcap"); len(v) != 1 || v[0] != 1 {
		t.Errorf("uUseMatcap = %v", v)
	}
	if v, _ := dev.Uniform(s.prog.Handle(), "uEnvMap"); len(v) != 1 || v[0] != envMapUnit {
		t.Errorf("uEnvMap = %v", v)
	}
}

func TestSceneBadModel(t *testing.T) {
	cfg := config.Config{Model: filepath.Join(t.TempDir(), "missing.obj")}
	cfg.Resolve(config.Flags{})
	if _, err := newScene(context.Background(), gputest.New(), cfg); err == nil {
		t.Error("expected error")
	}
}
