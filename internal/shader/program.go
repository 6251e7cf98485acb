// Package shader compiles, links and binds GPU programs and exposes their
// uniforms and attributes through typed accessors built at link time.
package shader

import (
	"errors"
	"fmt"
	"sort"

	"obj-gl-renderer/internal/gpu"
	"obj-gl-renderer/internal/logging"
)

var (
	ErrUnknownUniform   = errors.New("shader: unknown uniform")
	ErrUnknownAttribute = errors.New("shader: unknown attribute")
	ErrTypeMismatch     = errors.New("shader: uniform type mismatch")
)

// Attribute is an active per-vertex input of a linked program.
type Attribute struct {
	Name     string
	Type     gpu.Type
	Location int32
}

// Program is a linked GPU program.
type Program struct {
	dev        gpu.Device
	handle     gpu.Program
	uniforms   map[string]*Uniform
	attributes map[string]Attribute
}

// Compile compiles one stage. Failures are logged with the driver log and
// returned.
func Compile(dev gpu.Device, stage gpu.Stage, src string) (gpu.Shader, error) {
	s, err := dev.CompileShader(stage, src)
	if err != nil {
		logging.Logger().Error("shader compile failed", "stage", stage.String(), "err", err)
		return 0, fmt.Errorf("shader: %w", err)
	}
	return s, nil
}

// New compiles both stages, links them and reflects the active uniforms and
// attributes. Any failure is logged and returned; no partial program is
// handed back.
func New(dev gpu.Device, vertexSrc, fragmentSrc string) (*Program, error) {
	vs, err := Compile(dev, gpu.VertexStage, vertexSrc)
	if err != nil {
		return nil, err
	}
	defer dev.DeleteShader(vs)

	fs, err := Compile(dev, gpu.FragmentStage, fragmentSrc)
	if err != nil {
		return nil, err
	}
	defer dev.DeleteShader(fs)

	handle, err := dev.LinkProgram(vs, fs)
	if err != nil {
		logging.Logger().Error("shader link failed", "err", err)
		return nil, fmt.Errorf("shader: %w", err)
	}

	p := &Program{
		dev:        dev,
		handle:     handle,
		uniforms:   make(map[string]*Uniform),
		attributes: make(map[string]Attribute),
	}
	for _, v := range dev.ActiveUniforms(handle) {
		p.uniforms[v.Name] = &Uniform{
			Name:     v.Name,
			Type:     v.Type,
			Size:     v.Size,
			Location: v.Location,
			prog:     p,
		}
	}
	for _, v := range dev.ActiveAttributes(handle) {
		p.attributes[v.Name] = Attribute{Name: v.Name, Type: v.Type, Location: v.Location}
	}
	logging.Logger().Debug("shader linked", "program", handle,
		"uniforms", len(p.uniforms), "attributes", len(p.attributes))
	return p, nil
}

// Handle is the device program handle.
func (p *Program) Handle() gpu.Program {
	return p.handle
}

// Use makes p the current program.
func (p *Program) Use() {
	p.dev.UseProgram(p.handle)
}

// Uniform returns the named uniform. Array uniforms are looked up by their
// bare name ("lights", not "lights[0]").
func (p *Program) Uniform(name string) (*Uniform, bool) {
	u, ok := p.uniforms[name]
	return u, ok
}

// Uniforms lists the active uniforms sorted by name.
func (p *Program) Uniforms() []*Uniform {
	out := make([]*Uniform, 0, len(p.uniforms))
	for _, u := range p.uniforms {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Attribute returns the named attribute.
func (p *Program) Attribute(name string) (Attribute, bool) {
	a, ok := p.attributes[name]
	return a, ok
}

// Attributes lists the active attributes sorted by name.
func (p *Program) Attributes() []Attribute {
	out := make([]Attribute, 0, len(p.attributes))
	for _, a := range p.attributes {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Set uploads value to the named uniform, dispatching on the Go type of
// value. See Uniform.Set for the accepted types.
func (p *Program) Set(name string, value any) error {
	u, ok := p.uniforms[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownUniform, name)
	}
	return u.Set(value)
}

// SetIfPresent is Set for optional uniforms: a name the program does not
// use is not an error.
func (p *Program) SetIfPresent(name string, value any) error {
	if _, ok := p.uniforms[name]; !ok {
		return nil
	}
	return p.Set(name, value)
}

// BindAttribute feeds buf to the named attribute.
func (p *Program) BindAttribute(name string, buf gpu.Buffer, components int) error {
	a, ok := p.attributes[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAttribute, name)
	}
	p.dev.BindAttribute(a.Location, buf, components)
	return nil
}
