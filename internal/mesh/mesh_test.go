package mesh

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"obj-gl-renderer/internal/gpu/gputest"
	"obj-gl-renderer/internal/logging"
	"obj-gl-renderer/internal/mathutil"
	"obj-gl-renderer/internal/shader"
)

const tetraOBJ = `# tetrahedron
o tetra
v 0 0 0
v 1 0 0
v 0 1 0
v 0 0 1
vn 0 0 1
f 1 3 2
f 1 2/1 4//1
f 1 4 3
f 2 3 4 1
`

func TestParseOBJ(t *testing.T) {
	m, err := ParseOBJ(strings.NewReader(tetraOBJ))
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Positions) != 4 || len(m.Faces) != 4 {
		t.Fatalf("got %d vertices %d faces", len(m.Positions), len(m.Faces))
	}
	if m.Faces[0] != (Face{0, 2, 1}) || m.Faces[1] != (Face{0, 1, 3}) || m.Faces[3] != (Face{1, 2, 3}) {
		t.Errorf("faces = %v", m.Faces)
	}
	if m.Bounds.Min != (mgl32.Vec3{}) || m.Bounds.Max != (mgl32.Vec3{1, 1, 1}) {
		t.Errorf("bounds = %v", m.Bounds)
	}
	if len(m.Normals) != 4 {
		t.Fatalf("%d normals", len(m.Normals))
	}
	for i, n := range m.Normals {
		if math.Abs(float64(n.Len())-1) > 1e-5 {
			t.Errorf("normal %d = %v not unit length", i, n)
		}
	}
}

func TestParseOBJForwardReference(t *testing.T) {
	m, err := ParseOBJ(strings.NewReader("f 1 2 3\nv 0 0 0\nv 1 0 0\nv 0 1 0\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Faces) != 1 {
		t.Errorf("faces = %v", m.Faces)
	}
}

func TestParseOBJErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"bad float", "v 0 0 0\nv 1 x 0\n", 2},
		{"short vertex", "v 1 2\n", 1},
		{"short face", "v 0 0 0\nf 1 1\n", 2},
		{"bad index", "v 0 0 0\nf 1 a 1\n", 2},
		{"zero index", "v 0 0 0\nf 0 1 1\n", 2},
		{"negative index", "v 0 0 0\nf -1 1 1\n", 2},
		{"out of range", "v 0 0 0\nv 1 0 0\n\nf 1 2 3\n", 4},
		{"nan", "v nan 0 0\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOBJ(strings.NewReader(tt.src))
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("err = %v, want *ParseError", err)
			}
			if pe.Line != tt.line {
				t.Errorf("line = %d, want %d", pe.Line, tt.line)
			}
		})
	}
}

func TestSingleTriangleNormal(t *testing.T) {
	m := New("tri", []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, []Face{{0, 1, 2}})
	for i, n := range m.Normals {
		if n != (mgl32.Vec3{0, 0, 1}) {
			t.Errorf("normal %d = %v, want +Z", i, n)
		}
	}
}

func TestUnusedVertexKeepsZeroNormal(t *testing.T) {
	m := New("tri", []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {5, 5, 5}}, []Face{{0, 1, 2}})
	if m.Normals[3] != (mgl32.Vec3{}) {
		t.Errorf("unused normal = %v", m.Normals[3])
	}
	s := m.Stats()
	if s.Unused != 1 || s.Degenerate != 0 || math.Abs(s.Area-0.5) > 1e-6 {
		t.Errorf("stats = %+v", s)
	}
}

func TestGeneratorsFaceOutward(t *testing.T) {
	for _, name := range []string{"cube", "sphere", "torus"} {
		t.Run(name, func(t *testing.T) {
			m, ok := Generate(name)
			if !ok {
				t.Fatal("unknown primitive")
			}
			center := m.Bounds.Center()
			for i, f := range m.Faces {
				n := m.FaceNormal(f)
				if n.Len() == 0 {
					t.Fatalf("face %d degenerate", i)
				}
				c := m.Positions[f[0]].Add(m.Positions[f[1]]).Add(m.Positions[f[2]]).Mul(1.0 / 3)
				out := c.Sub(center)
				if name == "torus" {
					// Outward from the tube's center line.
					ring := mgl32.Vec3{c[0], 0, c[2]}.Normalize().Mul(0.5)
					out = c.Sub(ring)
				}
				if n.Dot(out) <= 0 {
					t.Fatalf("face %d normal %v points inward", i, n)
				}
			}
		})
	}
}

func TestSphereNormalsAreRadial(t *testing.T) {
	m := Sphere(2, 12, 24)
	for i, p := range m.Positions {
		if d := m.Normals[i].Dot(p.Normalize()); d < 0.95 {
			t.Errorf("vertex %d normal·radial = %v", i, d)
		}
	}
	if !m.Bounds.Contains(mgl32.Vec3{0, 2, 0}) || m.Bounds.Max[1] != 2 {
		t.Errorf("bounds = %v", m.Bounds)
	}
}

func TestPlaneFacesUp(t *testing.T) {
	m := Plane(4, 2, 3)
	if len(m.Faces) != 18 {
		t.Fatalf("%d faces", len(m.Faces))
	}
	for i, n := range m.Normals {
		if !mathutil.ApproxEqual(n, mgl32.Vec3{0, 1, 0}, 1e-6) {
			t.Fatalf("normal %d = %v", i, n)
		}
	}
	if m.Bounds.Size() != (mgl32.Vec3{4, 0, 2}) {
		t.Errorf("size = %v", m.Bounds.Size())
	}
}

func TestWriteOBJRoundTrip(t *testing.T) {
	src := Cube(2)
	var buf bytes.Buffer
	if err := WriteOBJ(&buf, src); err != nil {
		t.Fatal(err)
	}
	got, err := ParseOBJ(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Faces) != len(src.Faces) || got.Bounds != src.Bounds {
		t.Errorf("round trip: %d faces bounds %v", len(got.Faces), got.Bounds)
	}
}

func TestLoadOBJOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/tetra.obj" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(tetraOBJ))
	}))
	defer srv.Close()

	m, err := LoadOBJ(context.Background(), srv.URL+"/models/tetra.obj")
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "tetra" || len(m.Faces) != 4 {
		t.Errorf("got %q with %d faces", m.Name, len(m.Faces))
	}
	if _, err := LoadOBJ(context.Background(), srv.URL+"/missing.obj"); err == nil {
		t.Error("404: expected error")
	}
}

const drawVS = `attribute vec3 aPosition;
attribute vec3 aNormal;
uniform mat4 uMVP;
void main() { gl_Position = uMVP * vec4(aPosition + aNormal * 0.0, 1.0); }
`

const flatFS = `uniform vec3 uColor;
void main() { gl_FragColor = vec4(uColor, 1.0); }
`

func TestUploadOnceAndDraw(t *testing.T) {
	dev := gputest.New()
	prog, err := shader.New(dev, drawVS, flatFS)
	if err != nil {
		t.Fatal(err)
	}
	prog.Use()

	m := Cube(1)
	if err := m.Upload(dev); err != nil {
		t.Fatal(err)
	}
	if err := m.Upload(dev); err != nil {
		t.Fatal(err)
	}
	if len(dev.Buffers) != 3 {
		t.Fatalf("%d buffers after two uploads, want 3", len(dev.Buffers))
	}

	for i := 0; i < 2; i++ {
		if err := m.Draw(dev, prog); err != nil {
			t.Fatal(err)
		}
	}
	if len(dev.Buffers) != 3 || len(dev.Draws) != 2 {
		t.Fatalf("buffers %d draws %d", len(dev.Buffers), len(dev.Draws))
	}
	d := dev.Draws[0]
	if d.Count != 36 || d.Program != prog.Handle() {
		t.Errorf("draw = %+v", d)
	}
	if got := dev.Buffers[d.Indices].Indices; len(got) != 36 {
		t.Errorf("index buffer has %d entries", len(got))
	}
	pos, _ := prog.Attribute("aPosition")
	nrm, _ := prog.Attribute("aNormal")
	pb, nb := d.Attributes[pos.Location], d.Attributes[nrm.Location]
	if pb.Components != 3 || len(dev.Buffers[pb.Buffer].Floats) != 72 {
		t.Errorf("position binding = %+v", pb)
	}
	if nb.Components != 3 || nb.Buffer == pb.Buffer {
		t.Errorf("normal binding = %+v", nb)
	}
}

func TestDrawWithoutNormalAttribute(t *testing.T) {
	dev := gputest.New()
	prog, err := shader.New(dev,
		"attribute vec3 aPosition;\nvoid main() { gl_Position = vec4(aPosition, 1.0); }\n", flatFS)
	if err != nil {
		t.Fatal(err)
	}
	prog.Use()
	if err := Sphere(1, 4, 6).Draw(dev, prog); err != nil {
		t.Fatal(err)
	}
	if len(dev.Draws) != 1 || len(dev.Draws[0].Attributes) != 1 {
		t.Errorf("draws = %+v", dev.Draws)
	}
}

func TestSimplify(t *testing.T) {
	m := Sphere(1, 24, 48)
	s := m.Simplify(0.25)
	if len(s.Faces) == 0 || len(s.Faces) >= len(m.Faces) {
		t.Fatalf("simplified %d -> %d faces", len(m.Faces), len(s.Faces))
	}
	for _, f := range s.Faces {
		for _, i := range f {
			if int(i) >= len(s.Positions) {
				t.Fatalf("face %v out of range", f)
			}
		}
	}
	if c := m.Simplify(1); len(c.Faces) != len(m.Faces) || &c.Positions[0] == &m.Positions[0] {
		t.Error("factor 1 should return an unshared copy")
	}
}

func TestFailedUploadReleasesBuffers(t *testing.T) {
	dev := gputest.New()
	m := New("points", []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}}, nil)
	if err := m.Upload(dev); err == nil {
		t.Fatal("expected error for a mesh without faces")
	}
	if len(dev.Buffers) != 0 {
		t.Errorf("%d buffers left after failed upload", len(dev.Buffers))
	}
	if m.Uploaded() {
		t.Error("failed upload marked the mesh uploaded")
	}
}

func TestVertexNormalsLeavesMeshAlone(t *testing.T) {
	m := &Mesh{
		Positions: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Faces:     []Face{{0, 1, 2}},
	}
	n := m.VertexNormals()
	if m.Normals != nil {
		t.Error("VertexNormals set Normals")
	}
	if len(n) != 3 || !n[0].ApproxEqual(mgl32.Vec3{0, 0, 1}) {
		t.Errorf("normals = %v", n)
	}
}

func TestLoadOBJWarnsOnDegenerateFaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flat.obj")
	body := "v 0 0 0\nv 1 0 0\nv 2 0 0\nv 0 1 0\nf 1 2 3\nf 1 2 4\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	logging.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	defer logging.SetLogger(nil)

	if _, err := LoadOBJ(context.Background(), path); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "count=1") {
		t.Errorf("log = %q", out)
	}
}
