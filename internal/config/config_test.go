package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAndResolve(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{
  "input_dir": "models",
  "matcap": "https://example.com/clay.png",
  "render_size": 256,
  "workers": 3,
  "color": "#ff8000"
}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Resolve(Flags{Workers: 5})

	if cfg.InputDir != filepath.Join(dir, "models") {
		t.Errorf("InputDir = %s", cfg.InputDir)
	}
	if cfg.OutputDir != filepath.Join(dir, "models", "renders") {
		t.Errorf("OutputDir = %s", cfg.OutputDir)
	}
	if cfg.Matcap != "https://example.com/clay.png" {
		t.Errorf("URL was rewritten: %s", cfg.Matcap)
	}
	if cfg.RenderSize != 256 || cfg.Workers != 5 || cfg.Supersample != 2 || cfg.FovY != 45 {
		t.Errorf("settings = %+v", cfg)
	}
	c, err := cfg.BaseColor()
	if err != nil || c != (color.NRGBA{255, 128, 0, 255}) {
		t.Errorf("BaseColor = %v, %v", c, err)
	}
}

func TestResolveKeepsPrimitiveModel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"model": "torus"}`), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		flags Flags
		want  string
	}{
		{"from file", Flags{}, "torus"},
		{"from flag", Flags{Model: "sphere"}, "sphere"},
		{"obj file", Flags{Model: "bunny.obj"}, filepath.Join(dir, "bunny.obj")},
		{"bare file name", Flags{Model: "teapot"}, filepath.Join(dir, "teapot")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(path)
			if err != nil {
				t.Fatal(err)
			}
			cfg.Resolve(tt.flags)
			if cfg.Model != tt.want {
				t.Errorf("Model = %q, want %q", cfg.Model, tt.want)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("missing file: expected error")
	}
	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte("{"), 0644)
	if _, err := Load(bad); err == nil {
		t.Error("bad json: expected error")
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
		ok   bool
	}{
		{"#fff", color.NRGBA{255, 255, 255, 255}, true},
		{"102030", color.NRGBA{0x10, 0x20, 0x30, 255}, true},
		{"#10203040", color.NRGBA{0x10, 0x20, 0x30, 0x40}, true},
		{"#12345", color.NRGBA{}, false},
		{"#gggggg", color.NRGBA{}, false},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseColor(%q) = %v, %v", tt.in, got, err)
		}
	}
}
