package metadata

import (
	m "math"

	"github.com/spaghettifunk/prism/engine/math"
)

/** @brief The device-level type of a uniform write. */
type UniformType uint8

const (
	UniformTypeInt UniformType = iota
	UniformTypeUint
	UniformTypeFloat
	UniformTypeVec3
	UniformTypeMat3
	UniformTypeMat4
)

func (t UniformType) String() string {
	switch t {
	case UniformTypeInt:
		return "int"
	case UniformTypeUint:
		return "uint"
	case UniformTypeFloat:
		return "float"
	case UniformTypeVec3:
		return "vec3"
	case UniformTypeMat3:
		return "mat3"
	case UniformTypeMat4:
		return "mat4"
	}
	return "unknown"
}

// Words returns how many 32-bit words a value of this type carries.
func (t UniformType) Words() int {
	switch t {
	case UniformTypeVec3:
		return 3
	case UniformTypeMat3:
		return 9
	case UniformTypeMat4:
		return 16
	}
	return 1
}

/**
 * @brief The payload of one uniform write. Floats are held as their raw
 * IEEE-754 bits so that == is a bit-exact comparison: 0.0 and -0.0 differ,
 * and a NaN equals the same NaN pattern.
 */
type UniformValue struct {
	Type  UniformType
	Words [16]uint32
}

func IntUniform(v int32) UniformValue {
	u := UniformValue{Type: UniformTypeInt}
	u.Words[0] = uint32(v)
	return u
}

func UintUniform(v uint32) UniformValue {
	u := UniformValue{Type: UniformTypeUint}
	u.Words[0] = v
	return u
}

func FloatUniform(v float32) UniformValue {
	u := UniformValue{Type: UniformTypeFloat}
	u.Words[0] = m.Float32bits(v)
	return u
}

func Vec3Uniform(v [3]float32) UniformValue {
	u := UniformValue{Type: UniformTypeVec3}
	for i := range v {
		u.Words[i] = m.Float32bits(v[i])
	}
	return u
}

func Mat3Uniform(mat math.Mat3) UniformValue {
	u := UniformValue{Type: UniformTypeMat3}
	for i := range mat.Data {
		u.Words[i] = m.Float32bits(mat.Data[i])
	}
	return u
}

func Mat4Uniform(mat math.Mat4) UniformValue {
	u := UniformValue{Type: UniformTypeMat4}
	for i := range mat.Data {
		u.Words[i] = m.Float32bits(mat.Data[i])
	}
	return u
}

func (u UniformValue) Int() int32 {
	return int32(u.Words[0])
}

func (u UniformValue) Uint() uint32 {
	return u.Words[0]
}

func (u UniformValue) Float() float32 {
	return m.Float32frombits(u.Words[0])
}

// Floats returns the value's words reinterpreted as float32, sized to its type.
func (u UniformValue) Floats() []float32 {
	n := u.Type.Words()
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = m.Float32frombits(u.Words[i])
	}
	return out
}
