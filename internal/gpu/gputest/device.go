// Package gputest provides an in-memory gpu.Device for tests and headless
// tools. It keeps every uploaded buffer, texture and uniform so callers can
// inspect what a real driver would have received.
//
// Shader "compilation" scans GLSL declarations instead of generating code:
// it strips comments, reports #error directives, unbalanced braces, unknown
// declaration types and a missing main function, and reflects uniform and
// attribute declarations the way a driver reports active variables.
package gputest

import (
	"fmt"
	"image"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"obj-gl-renderer/internal/gpu"
)

// BufferData is the content of a vertex or index buffer.
type BufferData struct {
	Floats  []float32
	Indices []uint32
}

// TextureData is an uploaded texture. Faces has one image for 2D textures
// and six for cube maps, in upload order.
type TextureData struct {
	Target  gpu.TextureTarget
	Faces   []*image.NRGBA
	Mipmaps bool
}

// Binding is a vertex buffer attached to an attribute location.
type Binding struct {
	Buffer     gpu.Buffer
	Components int
}

// Draw records one DrawIndexed call.
type Draw struct {
	Program gpu.Program
	Indices gpu.Buffer
	Count   int
	// Attributes snapshots the bindings active at draw time.
	Attributes map[int32]Binding
}

// Program is a linked program.
type Program struct {
	Uniforms   []gpu.Variable
	Attributes []gpu.Variable
	// Values holds the last value uploaded per uniform location.
	Values map[int32][]float32
}

type shader struct {
	stage      gpu.Stage
	uniforms   []gpu.Variable
	attributes []gpu.Variable
}

// Device implements gpu.Device in memory. The zero value is not usable;
// call New.
type Device struct {
	Buffers  map[gpu.Buffer]*BufferData
	Textures map[gpu.Texture]*TextureData
	Programs map[gpu.Program]*Program
	// Units maps texture unit to the texture bound there.
	Units      map[int]gpu.Texture
	Attributes map[int32]Binding
	Draws      []Draw

	Current       gpu.Program
	ClearColor    mgl32.Vec4
	Clears        int
	Width, Height int
	DepthTest     bool

	shaders map[gpu.Shader]*shader
	next    uint32
}

var _ gpu.Device = (*Device)(nil)

// New returns an empty device with no programs, buffers or textures.
func New() *Device {
	return &Device{
		Buffers:    make(map[gpu.Buffer]*BufferData),
		Textures:   make(map[gpu.Texture]*TextureData),
		Programs:   make(map[gpu.Program]*Program),
		Units:      make(map[int]gpu.Texture),
		Attributes: make(map[int32]Binding),
		shaders:    make(map[gpu.Shader]*shader),
	}
}

func (d *Device) handle() uint32 {
	d.next++
	return d.next
}

func (d *Device) CreateVertexBuffer(data []float32) (gpu.Buffer, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("gputest: empty vertex buffer")
	}
	b := gpu.Buffer(d.handle())
	d.Buffers[b] = &BufferData{Floats: append([]float32(nil), data...)}
	return b, nil
}

func (d *Device) CreateIndexBuffer(data []uint32) (gpu.Buffer, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("gputest: empty index buffer")
	}
	b := gpu.Buffer(d.handle())
	d.Buffers[b] = &BufferData{Indices: append([]uint32(nil), data...)}
	return b, nil
}

func (d *Device) DeleteBuffer(b gpu.Buffer) {
	delete(d.Buffers, b)
}

func (d *Device) CompileShader(stage gpu.Stage, src string) (gpu.Shader, error) {
	sh, log := compile(stage, src)
	if log != "" {
		return 0, &gpu.CompileError{Stage: stage, Log: log}
	}
	h := gpu.Shader(d.handle())
	d.shaders[h] = sh
	return h, nil
}

func (d *Device) DeleteShader(s gpu.Shader) {
	delete(d.shaders, s)
}

func (d *Device) LinkProgram(vs, fs gpu.Shader) (gpu.Program, error) {
	v, ok := d.shaders[vs]
	if !ok || v.stage != gpu.VertexStage {
		return 0, &gpu.LinkError{Log: "missing vertex shader"}
	}
	f, ok := d.shaders[fs]
	if !ok || f.stage != gpu.FragmentStage {
		return 0, &gpu.LinkError{Log: "missing fragment shader"}
	}

	byName := make(map[string]gpu.Variable)
	for _, u := range append(append([]gpu.Variable(nil), v.uniforms...), f.uniforms...) {
		if prev, dup := byName[u.Name]; dup && (prev.Type != u.Type || prev.Size != u.Size) {
			return 0, &gpu.LinkError{Log: fmt.Sprintf("uniform %q declared as %s and %s", u.Name, prev.Type, u.Type)}
		}
		byName[u.Name] = u
	}
	uniforms := make([]gpu.Variable, 0, len(byName))
	for _, u := range byName {
		uniforms = append(uniforms, u)
	}
	sort.Slice(uniforms, func(i, j int) bool { return uniforms[i].Name < uniforms[j].Name })
	var loc int32
	for i := range uniforms {
		uniforms[i].Location = loc
		loc += int32(uniforms[i].Size)
	}

	attributes := append([]gpu.Variable(nil), v.attributes...)
	sort.Slice(attributes, func(i, j int) bool { return attributes[i].Name < attributes[j].Name })
	for i := range attributes {
		attributes[i].Location = int32(i)
	}

	p := gpu.Program(d.handle())
	d.Programs[p] = &Program{
		Uniforms:   uniforms,
		Attributes: attributes,
		Values:     make(map[int32][]float32),
	}
	return p, nil
}

func (d *Device) ActiveUniforms(p gpu.Program) []gpu.Variable {
	if prog, ok := d.Programs[p]; ok {
		return append([]gpu.Variable(nil), prog.Uniforms...)
	}
	return nil
}

func (d *Device) ActiveAttributes(p gpu.Program) []gpu.Variable {
	if prog, ok := d.Programs[p]; ok {
		return append([]gpu.Variable(nil), prog.Attributes...)
	}
	return nil
}

func (d *Device) UseProgram(p gpu.Program) {
	d.Current = p
}

func (d *Device) SetUniformFloats(location int32, t gpu.Type, v []float32) {
	if prog, ok := d.Programs[d.Current]; ok {
		prog.Values[location] = append([]float32(nil), v...)
	}
}

func (d *Device) SetUniformInt(location int32, v int32) {
	if prog, ok := d.Programs[d.Current]; ok {
		prog.Values[location] = []float32{float32(v)}
	}
}

func (d *Device) BindAttribute(location int32, buf gpu.Buffer, components int) {
	d.Attributes[location] = Binding{Buffer: buf, Components: components}
}

func (d *Device) DrawIndexed(indices gpu.Buffer, count int) {
	attrs := make(map[int32]Binding, len(d.Attributes))
	for k, v := range d.Attributes {
		attrs[k] = v
	}
	d.Draws = append(d.Draws, Draw{Program: d.Current, Indices: indices, Count: count, Attributes: attrs})
}

func (d *Device) CreateTexture2D(img *image.NRGBA, mipmaps bool) (gpu.Texture, error) {
	if img == nil || img.Rect.Empty() {
		return 0, fmt.Errorf("gputest: empty texture")
	}
	t := gpu.Texture(d.handle())
	d.Textures[t] = &TextureData{Target: gpu.Texture2D, Faces: []*image.NRGBA{img}, Mipmaps: mipmaps}
	return t, nil
}

func (d *Device) CreateCubemap(faces [gpu.CubeFaces]*image.NRGBA) (gpu.Texture, error) {
	for i, f := range faces {
		if f == nil || f.Rect.Empty() {
			return 0, fmt.Errorf("gputest: empty cubemap face %d", i)
		}
	}
	t := gpu.Texture(d.handle())
	d.Textures[t] = &TextureData{Target: gpu.TextureCubeMap, Faces: faces[:]}
	return t, nil
}

func (d *Device) BindTexture(unit int, target gpu.TextureTarget, t gpu.Texture) {
	d.Units[unit] = t
}

func (d *Device) Viewport(width, height int) {
	d.Width, d.Height = width, height
}

func (d *Device) Clear(color mgl32.Vec4) {
	d.ClearColor = color
	d.Clears++
}

func (d *Device) SetDepthTest(enabled bool) {
	d.DepthTest = enabled
}

// Uniform returns the last value uploaded to the named uniform of p.
func (d *Device) Uniform(p gpu.Program, name string) ([]float32, bool) {
	prog, ok := d.Programs[p]
	if !ok {
		return nil, false
	}
	for _, u := range prog.Uniforms {
		if u.Name == name {
			v, ok := prog.Values[u.Location]
			return v, ok
		}
	}
	return nil, false
}

var (
	lineComment  = regexp.MustCompile(`//[^\n]*`)
	blockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
	errorDir     = regexp.MustCompile(`(?m)^\s*#\s*error\b(.*)$`)
	declaration  = regexp.MustCompile(`(?m)^\s*(?:layout\s*\([^)]*\)\s*)?(uniform|attribute|in)\s+(?:(?:lowp|mediump|highp)\s+)?(\w+)\s+(\w+)\s*(?:\[\s*(\d+)\s*\])?\s*;`)
	mainFunc     = regexp.MustCompile(`\bvoid\s+main\s*\(\s*(?:void)?\s*\)`)
)

// compile returns the reflected shader, or a non-empty info log.
func compile(stage gpu.Stage, src string) (*shader, string) {
	// Comments are blanked line-preserving so reported line numbers hold.
	src = blockComment.ReplaceAllStringFunc(src, func(c string) string {
		return strings.Repeat("\n", strings.Count(c, "\n"))
	})
	src = lineComment.ReplaceAllString(src, "")

	if m := errorDir.FindStringSubmatchIndex(src); m != nil {
		line := strings.Count(src[:m[0]], "\n") + 1
		return nil, fmt.Sprintf("ERROR: 0:%d: '#error' : %s", line, strings.TrimSpace(src[m[2]:m[3]]))
	}
	if strings.Count(src, "{") != strings.Count(src, "}") {
		return nil, "ERROR: 0:0: syntax error: unbalanced braces"
	}
	if !mainFunc.MatchString(src) {
		return nil, "ERROR: 0:0: 'main' : function not defined"
	}

	sh := &shader{stage: stage}
	for _, m := range declaration.FindAllStringSubmatch(src, -1) {
		qual, typ, name := m[1], m[2], m[3]
		t := gpu.ParseType(typ)
		if t == gpu.TypeUnknown {
			return nil, fmt.Sprintf("ERROR: 0:0: '%s' : unknown type for %q", typ, name)
		}
		size := 1
		if m[4] != "" {
			size, _ = strconv.Atoi(m[4])
		}
		v := gpu.Variable{Name: name, Type: t, Size: size, Location: -1}
		switch {
		case qual == "uniform":
			sh.uniforms = append(sh.uniforms, v)
		case stage == gpu.VertexStage:
			sh.attributes = append(sh.attributes, v)
		}
	}
	return sh, ""
}
