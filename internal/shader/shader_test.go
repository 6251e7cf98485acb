package shader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"obj-gl-renderer/internal/gpu"
	"obj-gl-renderer/internal/gpu/gputest"
)

const testPage = `<!DOCTYPE html>
<html><head>
<script id="mesh-vs" type="x-shader/x-vertex">
attribute vec3 aPosition;
attribute vec3 aNormal;
uniform mat4 uModelView;
uniform mat4 uProjection;
varying vec3 vNormal;
void main() {
	vNormal = aNormal;
	gl_Position = uProjection * uModelView * vec4(aPosition, 1.0);
}
</script>
<script id="mesh-fs" type="x-shader/x-fragment">
precision mediump float;
uniform vec3 uColor;
uniform float uShininess;
uniform bool uLit;
uniform samplerCube uEnvMap;
uniform vec3 uLights[3];
varying vec3 vNormal;
void main() {
	gl_FragColor = vec4(uColor * max(vNormal.z, 0.0), 1.0);
}
</script>
<script id="broken-fs" type="x-shader/x-fragment">
void main() {
#error missing precision
}
</script>
<script src="app.js"></script>
</head><body></body></html>`

func newTestProgram(t *testing.T) (*gputest.Device, *Program) {
	t.Helper()
	dev := gputest.New()
	p, err := NewFromHTML(dev, strings.NewReader(testPage), "mesh-vs", "mesh-fs")
	if err != nil {
		t.Fatalf("NewFromHTML: %v", err)
	}
	p.Use()
	return dev, p
}

func TestScripts(t *testing.T) {
	scripts, err := Scripts(strings.NewReader(testPage))
	if err != nil {
		t.Fatal(err)
	}
	if len(scripts) != 3 {
		t.Fatalf("got %d scripts, want 3 (scripts without id are skipped)", len(scripts))
	}
	vs := scripts["mesh-vs"]
	if stage, ok := ParseStage(vs.Type); !ok || stage != gpu.VertexStage {
		t.Errorf("mesh-vs stage = %v, %v", stage, ok)
	}
	if !strings.Contains(vs.Source, "attribute vec3 aPosition;") {
		t.Errorf("mesh-vs source = %q", vs.Source)
	}

	src, err := SourceFromHTML(strings.NewReader(testPage), "mesh-fs")
	if err != nil || !strings.Contains(src, "uniform samplerCube uEnvMap;") {
		t.Errorf("SourceFromHTML(mesh-fs) = %q, %v", src, err)
	}
	if _, err := SourceFromHTML(strings.NewReader(testPage), "nope"); err == nil {
		t.Error("missing id: expected error")
	}
}

func TestProgramReflection(t *testing.T) {
	_, p := newTestProgram(t)

	var names []string
	for _, a := range p.Attributes() {
		names = append(names, a.Name)
	}
	if got := strings.Join(names, ","); got != "aNormal,aPosition" {
		t.Errorf("attributes = %s", got)
	}

	names = names[:0]
	for _, u := range p.Uniforms() {
		names = append(names, u.Name+":"+u.Type.String())
	}
	want := "uColor:vec3,uEnvMap:samplerCube,uLights:vec3,uLit:bool,uModelView:mat4,uProjection:mat4,uShininess:float"
	if got := strings.Join(names, ","); got != want {
		t.Errorf("uniforms = %s\nwant       %s", got, want)
	}
}

func TestTypedSetters(t *testing.T) {
	dev, p := newTestProgram(t)

	m := mgl32.Translate3D(1, 2, 3)
	steps := []struct {
		name  string
		value any
		want  []float32
	}{
		{"uColor", mgl32.Vec3{0.1, 0.2, 0.3}, []float32{0.1, 0.2, 0.3}},
		{"uShininess", 32.0, []float32{32}},
		{"uShininess", 8, []float32{8}},
		{"uLit", true, []float32{1}},
		{"uEnvMap", 2, []float32{2}},
		{"uModelView", m, m[:]},
		{"uLights", []mgl32.Vec3{{1, 0, 0}, {0, 1, 0}}, []float32{1, 0, 0, 0, 1, 0}},
	}
	for _, s := range steps {
		if err := p.Set(s.name, s.value); err != nil {
			t.Fatalf("Set(%s, %v): %v", s.name, s.value, err)
		}
		got, ok := dev.Uniform(p.Handle(), s.name)
		if !ok {
			t.Fatalf("%s not uploaded", s.name)
		}
		if len(got) != len(s.want) {
			t.Fatalf("%s = %v, want %v", s.name, got, s.want)
		}
		for i := range got {
			if got[i] != s.want[i] {
				t.Fatalf("%s = %v, want %v", s.name, got, s.want)
			}
		}
	}
}

func TestSetterErrors(t *testing.T) {
	_, p := newTestProgram(t)

	tests := []struct {
		name  string
		value any
		want  error
	}{
		{"uMissing", 1.0, ErrUnknownUniform},
		{"uColor", float32(1), ErrTypeMismatch},
		{"uProjection", mgl32.Vec4{}, ErrTypeMismatch},
		{"uLit", 1.5, ErrTypeMismatch},
		{"uEnvMap", mgl32.Vec3{}, ErrTypeMismatch},
		{"uColor", "red", ErrTypeMismatch},
	}
	for _, tt := range tests {
		if err := p.Set(tt.name, tt.value); !errors.Is(err, tt.want) {
			t.Errorf("Set(%s, %v) = %v, want %v", tt.name, tt.value, err, tt.want)
		}
	}

	u, _ := p.Uniform("uLights")
	if err := u.SetVec3Array(make([]mgl32.Vec3, 4)); err == nil {
		t.Error("overflowing array upload: expected error")
	}
	if err := p.SetIfPresent("uMissing", 1.0); err != nil {
		t.Errorf("SetIfPresent on missing uniform: %v", err)
	}
	if err := p.BindAttribute("aTangent", 1, 3); !errors.Is(err, ErrUnknownAttribute) {
		t.Errorf("BindAttribute(aTangent) = %v", err)
	}
}

func TestCompileFailureIsReturned(t *testing.T) {
	dev := gputest.New()
	p, err := NewFromHTML(dev, strings.NewReader(testPage), "mesh-vs", "broken-fs")
	if p != nil {
		t.Fatal("got a program from a broken fragment shader")
	}
	var ce *gpu.CompileError
	if !errors.As(err, &ce) || ce.Stage != gpu.FragmentStage {
		t.Fatalf("err = %v, want fragment *gpu.CompileError", err)
	}
	if !strings.Contains(ce.Log, "missing precision") {
		t.Errorf("log = %q", ce.Log)
	}
	if len(dev.Programs) != 0 {
		t.Errorf("%d programs linked after compile failure", len(dev.Programs))
	}
}

func TestStageMismatch(t *testing.T) {
	_, err := NewFromHTML(gputest.New(), strings.NewReader(testPage), "mesh-fs", "mesh-vs")
	if err == nil || !strings.Contains(err.Error(), "want vertex") {
		t.Errorf("swapped stages error = %v", err)
	}
}

func TestLoadSourceStripsBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flat.frag")
	if err := os.WriteFile(path, []byte("\xef\xbb\xbfvoid main() {}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	src, err := LoadSource(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if src != "void main() {}\n" {
		t.Errorf("LoadSource = %q", src)
	}
}
