package metadata

import (
	m "math"
	"testing"

	"github.com/google/uuid"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeOverrideWins(t *testing.T) {
	base := NewPropertySet()
	base.SetInt("x", 1)
	override := NewPropertySet()
	override.SetInt("x", 2)

	v, ok := base.Compose(override).Get("x")
	require.True(t, ok)
	assert.Equal(t, int32(2), v.Int())

	v, ok = base.Compose(NewPropertySet()).Get("x")
	require.True(t, ok)
	assert.Equal(t, int32(1), v.Int())

	v, ok = base.Compose(nil).Get("x")
	require.True(t, ok)
	assert.Equal(t, int32(1), v.Int())
}

func TestComposeDoesNotMutate(t *testing.T) {
	base := NewPropertySet()
	base.SetInt("x", 1)
	base.SetFloat("y", 0.5)
	override := NewPropertySet()
	override.SetInt("x", 2)
	override.SetBool("z", true)

	view := base.Compose(override)
	view.Range(func(string, PropertyValue) bool { return true })

	assert.Equal(t, 2, base.Len())
	assert.Equal(t, 2, override.Len())
	v, _ := base.Get("x")
	assert.Equal(t, int32(1), v.Int())
	_, ok := base.Get("z")
	assert.False(t, ok)
}

func TestComposeRangeVisitsEachNameOnce(t *testing.T) {
	base := NewPropertySet()
	base.SetInt("a", 1)
	base.SetInt("c", 3)
	base.SetInt("shared", 10)
	override := NewPropertySet()
	override.SetInt("b", 2)
	override.SetInt("shared", 20)
	override.SetInt("d", 4)

	var names []string
	var shared int32
	base.Compose(override).Range(func(name string, p PropertyValue) bool {
		names = append(names, name)
		if name == "shared" {
			shared = p.Int()
		}
		return true
	})

	assert.Equal(t, []string{"a", "b", "c", "d", "shared"}, names)
	assert.Equal(t, int32(20), shared)
	assert.Equal(t, 5, base.Compose(override).Len())
}

func TestViewTextures(t *testing.T) {
	a := &Texture{ID: uuid.New(), Name: "a"}
	b := &Texture{ID: uuid.New(), Name: "b"}

	base := NewPropertySet()
	base.SetTexture("diffuse", a)
	base.SetTexture("specular", a)
	base.SetFloat("shininess", 32)
	override := NewPropertySet()
	override.SetTexture("specular", b)

	assert.Equal(t, []*Texture{a}, base.Compose(nil).Textures())
	assert.Equal(t, []*Texture{a, b}, base.Compose(override).Textures())
}

func TestPropertyValueEquality(t *testing.T) {
	tex := &Texture{ID: uuid.New()}
	same := *tex

	assert.True(t, IntProperty(3).Equal(IntProperty(3)))
	assert.False(t, IntProperty(3).Equal(UIntProperty(3)))
	assert.False(t, FloatProperty(0).Equal(FloatProperty(float32(m.Copysign(0, -1)))))
	assert.True(t, ColorProperty(1, 0.5, 0).Equal(ColorProperty(1, 0.5, 0)))
	assert.False(t, ColorProperty(1, 0.5, 0).Equal(ColorProperty(1, 0.5, 0.0000001)))
	assert.True(t, TextureProperty(tex).Equal(TextureProperty(tex)))
	assert.False(t, TextureProperty(tex).Equal(TextureProperty(&same)))
}

func TestPropertyUniform(t *testing.T) {
	u, ok := BoolProperty(true).Uniform()
	require.True(t, ok)
	assert.Equal(t, IntUniform(1), u)

	u, ok = ColorProperty(1, 2, 3).Uniform()
	require.True(t, ok)
	assert.Equal(t, Vec3Uniform([3]float32{1, 2, 3}), u)

	u, ok = FloatProperty(1.5).Uniform()
	require.True(t, ok)
	assert.Equal(t, float32(1.5), u.Float())

	_, ok = TextureProperty(&Texture{}).Uniform()
	assert.False(t, ok)
}

func TestPropertyUniformMatchesConstructors(t *testing.T) {
	cases := []struct {
		prop PropertyValue
		want UniformValue
	}{
		{BoolProperty(false), IntUniform(0)},
		{IntProperty(-7), IntUniform(-7)},
		{UIntProperty(9), UintUniform(9)},
		{FloatProperty(-0.25), FloatUniform(-0.25)},
		{Vec3Property(math.NewVec3(0.5, -1, 2)), Vec3Uniform([3]float32{0.5, -1, 2})},
		{ColorProperty(0.1, 0.2, 0.3), Vec3Uniform([3]float32{0.1, 0.2, 0.3})},
	}
	for _, c := range cases {
		u, ok := c.prop.Uniform()
		require.True(t, ok, c.prop.String())
		assert.Equal(t, c.want, u, c.prop.String())
	}
}

func TestPropertySetCloneAndDelete(t *testing.T) {
	s := NewPropertySet()
	s.SetInt("a", 1)
	c := s.Clone()
	c.SetInt("a", 2)
	c.Delete("missing")

	v, _ := s.Get("a")
	assert.Equal(t, int32(1), v.Int())

	s.Delete("a")
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 1, c.Len())

	var nilSet *PropertySet
	assert.Equal(t, 0, nilSet.Len())
	_, ok := nilSet.Get("a")
	assert.False(t, ok)
}
