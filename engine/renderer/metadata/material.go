package metadata

import (
	"fmt"
	m "math"
	"sort"

	"github.com/spaghettifunk/prism/engine/math"
)

/** @brief The name of the default material. */
const DefaultMaterialName string = "default"

/** @brief The tag of a material property value. */
type PropertyKind uint8

const (
	PropertyKindBool PropertyKind = iota
	PropertyKindInt
	PropertyKindUInt
	PropertyKindFloat
	PropertyKindVec3
	PropertyKindColor
	PropertyKindTexture
)

func (k PropertyKind) String() string {
	switch k {
	case PropertyKindBool:
		return "bool"
	case PropertyKindInt:
		return "int"
	case PropertyKindUInt:
		return "uint"
	case PropertyKindFloat:
		return "float"
	case PropertyKindVec3:
		return "vec3"
	case PropertyKindColor:
		return "color"
	case PropertyKindTexture:
		return "texture"
	}
	return "unknown"
}

/**
 * @brief An immutable, tagged material property value. Two values are equal
 * when they have the same kind and bit-identical payload; texture values
 * compare by texture identity.
 */
type PropertyValue struct {
	kind    PropertyKind
	words   [3]uint32
	texture *Texture
}

func BoolProperty(v bool) PropertyValue {
	p := PropertyValue{kind: PropertyKindBool}
	if v {
		p.words[0] = 1
	}
	return p
}

func IntProperty(v int32) PropertyValue {
	p := PropertyValue{kind: PropertyKindInt}
	p.words[0] = uint32(v)
	return p
}

func UIntProperty(v uint32) PropertyValue {
	p := PropertyValue{kind: PropertyKindUInt}
	p.words[0] = v
	return p
}

func FloatProperty(v float32) PropertyValue {
	p := PropertyValue{kind: PropertyKindFloat}
	p.words[0] = m.Float32bits(v)
	return p
}

func Vec3Property(v math.Vec3) PropertyValue {
	return PropertyValue{kind: PropertyKindVec3, words: floatWords(v.X, v.Y, v.Z)}
}

func ColorProperty(r, g, b float32) PropertyValue {
	return PropertyValue{kind: PropertyKindColor, words: floatWords(r, g, b)}
}

func TextureProperty(t *Texture) PropertyValue {
	return PropertyValue{kind: PropertyKindTexture, texture: t}
}

func floatWords(a, b, c float32) [3]uint32 {
	return [3]uint32{m.Float32bits(a), m.Float32bits(b), m.Float32bits(c)}
}

func (p PropertyValue) Kind() PropertyKind {
	return p.kind
}

func (p PropertyValue) Equal(other PropertyValue) bool {
	return p == other
}

func (p PropertyValue) Bool() bool {
	return p.words[0] != 0
}

func (p PropertyValue) Int() int32 {
	return int32(p.words[0])
}

func (p PropertyValue) UInt() uint32 {
	return p.words[0]
}

func (p PropertyValue) Float() float32 {
	return m.Float32frombits(p.words[0])
}

// Vec3 returns the payload of a vec3 or color value.
func (p PropertyValue) Vec3() [3]float32 {
	return [3]float32{
		m.Float32frombits(p.words[0]),
		m.Float32frombits(p.words[1]),
		m.Float32frombits(p.words[2]),
	}
}

func (p PropertyValue) Texture() *Texture {
	return p.texture
}

/**
 * @brief Converts a non-texture value into the uniform write it stands for.
 * Bools are written as int 0/1 and colors as vec3. Texture values return
 * false: they become an int slot only once a slot is assigned.
 */
func (p PropertyValue) Uniform() (UniformValue, bool) {
	switch p.kind {
	case PropertyKindBool, PropertyKindInt:
		return IntUniform(int32(p.words[0])), true
	case PropertyKindUInt:
		return UintUniform(p.words[0]), true
	case PropertyKindFloat:
		return FloatUniform(p.Float()), true
	case PropertyKindVec3, PropertyKindColor:
		return Vec3Uniform(p.Vec3()), true
	}
	return UniformValue{}, false
}

func (p PropertyValue) String() string {
	switch p.kind {
	case PropertyKindBool:
		return fmt.Sprintf("bool(%t)", p.Bool())
	case PropertyKindInt:
		return fmt.Sprintf("int(%d)", p.Int())
	case PropertyKindUInt:
		return fmt.Sprintf("uint(%d)", p.UInt())
	case PropertyKindFloat:
		return fmt.Sprintf("float(%g)", p.Float())
	case PropertyKindVec3, PropertyKindColor:
		return fmt.Sprintf("%s(%v)", p.kind, p.Vec3())
	case PropertyKindTexture:
		if p.texture == nil {
			return "texture(nil)"
		}
		return fmt.Sprintf("texture(%s)", p.texture.Name)
	}
	return "unknown"
}

/**
 * @brief A mapping from property name to value. A nil *PropertySet reads as
 * an empty set, so callers can pass nil for "no overrides".
 */
type PropertySet struct {
	values map[string]PropertyValue
}

func NewPropertySet() *PropertySet {
	return &PropertySet{values: make(map[string]PropertyValue)}
}

// Set inserts or replaces the value stored under name.
func (s *PropertySet) Set(name string, v PropertyValue) {
	if s.values == nil {
		s.values = make(map[string]PropertyValue)
	}
	s.values[name] = v
}

func (s *PropertySet) SetBool(name string, v bool) { s.Set(name, BoolProperty(v)) }
func (s *PropertySet) SetInt(name string, v int32) { s.Set(name, IntProperty(v)) }
func (s *PropertySet) SetUInt(name string, v uint32) { s.Set(name, UIntProperty(v)) }
func (s *PropertySet) SetFloat(name string, v float32) { s.Set(name, FloatProperty(v)) }
func (s *PropertySet) SetVec3(name string, v math.Vec3) { s.Set(name, Vec3Property(v)) }
func (s *PropertySet) SetColor(name string, r, g, b float32) {
	s.Set(name, ColorProperty(r, g, b))
}
func (s *PropertySet) SetTexture(name string, t *Texture) { s.Set(name, TextureProperty(t)) }

func (s *PropertySet) Get(name string) (PropertyValue, bool) {
	if s == nil {
		return PropertyValue{}, false
	}
	v, ok := s.values[name]
	return v, ok
}

func (s *PropertySet) Delete(name string) {
	if s == nil {
		return
	}
	delete(s.values, name)
}

func (s *PropertySet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.values)
}

// Names returns the property names in ascending order.
func (s *PropertySet) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.values))
	for n := range s.values {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Range visits every property in name order until fn returns false.
func (s *PropertySet) Range(fn func(name string, v PropertyValue) bool) {
	for _, n := range s.Names() {
		if !fn(n, s.values[n]) {
			return
		}
	}
}

func (s *PropertySet) Clone() *PropertySet {
	out := NewPropertySet()
	if s == nil {
		return out
	}
	for n, v := range s.values {
		out.values[n] = v
	}
	return out
}

// Compose returns a read-only view in which override shadows s by name.
// Neither set is modified.
func (s *PropertySet) Compose(override *PropertySet) PropertyView {
	return PropertyView{base: s, override: override}
}

/**
 * @brief A read-only composition of a base set and an override set. The view
 * holds references to both sets and reflects their current contents.
 */
type PropertyView struct {
	base     *PropertySet
	override *PropertySet
}

func (v PropertyView) Get(name string) (PropertyValue, bool) {
	if p, ok := v.override.Get(name); ok {
		return p, true
	}
	return v.base.Get(name)
}

// Names merges both sorted name lists, each name appearing once.
func (v PropertyView) Names() []string {
	a := v.base.Names()
	b := v.override.Names()
	out := make([]string, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case j >= len(b) || (i < len(a) && a[i] < b[j]):
			out = append(out, a[i])
			i++
		case i >= len(a) || b[j] < a[i]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, b[j])
			i++
			j++
		}
	}
	return out
}

func (v PropertyView) Len() int {
	return len(v.Names())
}

// Range visits every name of base ∪ override exactly once, in name order,
// with the override value where both define it.
func (v PropertyView) Range(fn func(name string, p PropertyValue) bool) {
	for _, n := range v.Names() {
		p, _ := v.Get(n)
		if !fn(n, p) {
			return
		}
	}
}

// Textures returns the distinct textures the view references, in name order.
func (v PropertyView) Textures() []*Texture {
	var out []*Texture
	seen := make(map[*Texture]struct{})
	v.Range(func(_ string, p PropertyValue) bool {
		if p.kind != PropertyKindTexture || p.texture == nil {
			return true
		}
		if _, ok := seen[p.texture]; !ok {
			seen[p.texture] = struct{}{}
			out = append(out, p.texture)
		}
		return true
	})
	return out
}

/**
 * @brief One property entry of a material file. Exactly one field is set;
 * the field name is the property kind, e.g. shininess = { int = 32 }.
 */
type MaterialPropertyConfig struct {
	Bool    *bool       `toml:"bool"`
	Int     *int32      `toml:"int"`
	UInt    *uint32     `toml:"uint"`
	Float   *float32    `toml:"float"`
	Vec3    *[3]float32 `toml:"vec3"`
	Color   *[3]float32 `toml:"color"`
	Texture *string     `toml:"texture"`
}

/**
 * @brief Material configuration typically loaded from
 * a file or created in code to load a material from.
 */
type MaterialConfig struct {
	/** @brief The name of the material. */
	Name string `toml:"name"`
	/** @brief The shader the material draws with. */
	ShaderName string `toml:"shader"`
	/** @brief The base properties of the material. */
	Properties map[string]MaterialPropertyConfig `toml:"properties"`
	/** @brief The file the config was read from, if any. */
	Path string `toml:"-"`
}
