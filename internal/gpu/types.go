package gpu

// Type is the shading-language type of a uniform or attribute.
type Type int

const (
	TypeUnknown Type = iota
	Float
	Vec2
	Vec3
	Vec4
	Int
	Bool
	Mat3
	Mat4
	Sampler2D
	SamplerCube
)

var typeNames = map[Type]string{
	Float:       "float",
	Vec2:        "vec2",
	Vec3:        "vec3",
	Vec4:        "vec4",
	Int:         "int",
	Bool:        "bool",
	Mat3:        "mat3",
	Mat4:        "mat4",
	Sampler2D:   "sampler2D",
	SamplerCube: "samplerCube",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "unknown"
}

// ParseType maps a GLSL type keyword to a Type.
func ParseType(glsl string) Type {
	for t, s := range typeNames {
		if s == glsl {
			return t
		}
	}
	return TypeUnknown
}

// Components is the number of float (or int) slots one element occupies.
func (t Type) Components() int {
	switch t {
	case Float, Int, Bool, Sampler2D, SamplerCube:
		return 1
	case Vec2:
		return 2
	case Vec3:
		return 3
	case Vec4:
		return 4
	case Mat3:
		return 9
	case Mat4:
		return 16
	}
	return 0
}

// IsSampler reports whether t is a texture sampler type.
func (t Type) IsSampler() bool {
	return t == Sampler2D || t == SamplerCube
}

// IsIntegral reports whether values of t are uploaded with SetUniformInt.
func (t Type) IsIntegral() bool {
	return t == Int || t == Bool || t.IsSampler()
}
