package systems

import (
	"errors"
	m "math"
	"testing"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniformLocationTable(t *testing.T) {
	table := NewUniformLocationTable("phong", []metadata.ActiveUniform{
		{Name: "model", Location: 0},
		{Name: "pointLights[0]", Location: 3, Size: 4},
		{Name: "shininess", Location: 7},
	})

	loc, err := table.Resolve("shininess")
	require.NoError(t, err)
	assert.Equal(t, int32(7), loc)

	loc, err = table.Resolve("pointLights")
	require.NoError(t, err)
	assert.Equal(t, int32(3), loc)
	assert.True(t, table.Contains("pointLights[0]"))

	_, err = table.Resolve("roughness")
	assert.ErrorIs(t, err, core.ErrUniformNotFound)
	assert.True(t, core.IsFatal(err))
	assert.Contains(t, err.Error(), "roughness")
	assert.Contains(t, err.Error(), "phong")

	assert.False(t, table.Contains("normal_matrix"))
	assert.Equal(t, []string{"model", "pointLights", "pointLights[0]", "shininess"}, table.Names())
}

func TestUniformValueCacheSkipsIdenticalWrites(t *testing.T) {
	cache := NewUniformValueCache()
	calls := 0
	apply := func() error { calls++; return nil }

	wrote, err := cache.Set("shininess", metadata.IntUniform(32), apply)
	require.NoError(t, err)
	assert.True(t, wrote)

	wrote, err = cache.Set("shininess", metadata.IntUniform(32), apply)
	require.NoError(t, err)
	assert.False(t, wrote)

	wrote, _ = cache.Set("shininess", metadata.IntUniform(64), apply)
	assert.True(t, wrote)
	assert.Equal(t, 2, calls)

	v, ok := cache.Get("shininess")
	require.True(t, ok)
	assert.Equal(t, int32(64), v.Int())

	stats := cache.TakeStats()
	assert.Equal(t, uint64(2), stats.UniformWrites)
	assert.Equal(t, uint64(1), stats.UniformSkips)
	assert.Equal(t, core.BindingStats{}, cache.TakeStats())
}

func TestUniformValueCacheComparesBits(t *testing.T) {
	cache := NewUniformValueCache()
	calls := 0
	apply := func() error { calls++; return nil }

	cache.Set("f", metadata.FloatUniform(0), apply)
	wrote, _ := cache.Set("f", metadata.FloatUniform(float32(m.Copysign(0, -1))), apply)
	assert.True(t, wrote, "-0 is a different bit pattern than 0")

	nan := float32(m.NaN())
	cache.Set("n", metadata.FloatUniform(nan), apply)
	wrote, _ = cache.Set("n", metadata.FloatUniform(nan), apply)
	assert.False(t, wrote, "the same NaN pattern is not rewritten")

	// Same bits, different type.
	cache.Set("t", metadata.IntUniform(1), apply)
	wrote, _ = cache.Set("t", metadata.UintUniform(1), apply)
	assert.True(t, wrote)
	assert.Equal(t, 5, calls)
}

func TestUniformValueCacheUpdatesBeforeApply(t *testing.T) {
	cache := NewUniformValueCache()
	var seen metadata.UniformValue
	_, err := cache.Set("tint", metadata.Vec3Uniform([3]float32{1, 2, 3}), func() error {
		seen, _ = cache.Get("tint")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, seen.Floats())
}

func TestUniformValueCacheRetriesFailedWrite(t *testing.T) {
	cache := NewUniformValueCache()
	deviceLost := errors.New("device lost")

	wrote, err := cache.Set("model", metadata.IntUniform(1), func() error { return deviceLost })
	assert.True(t, wrote)
	assert.ErrorIs(t, err, deviceLost)
	_, ok := cache.Get("model")
	assert.False(t, ok)

	calls := 0
	wrote, err = cache.Set("model", metadata.IntUniform(1), func() error { calls++; return nil })
	require.NoError(t, err)
	assert.True(t, wrote)
	assert.Equal(t, 1, calls)
}

func TestUniformValueCacheInvalidateAndReset(t *testing.T) {
	cache := NewUniformValueCache()
	calls := 0
	apply := func() error { calls++; return nil }

	cache.Set("a", metadata.IntUniform(1), apply)
	cache.Set("b", metadata.IntUniform(2), apply)
	assert.Equal(t, 2, cache.Len())

	cache.Invalidate("a")
	wrote, _ := cache.Set("a", metadata.IntUniform(1), apply)
	assert.True(t, wrote)
	wrote, _ = cache.Set("b", metadata.IntUniform(2), apply)
	assert.False(t, wrote)

	cache.Reset()
	assert.Equal(t, 0, cache.Len())
	wrote, _ = cache.Set("b", metadata.IntUniform(2), apply)
	assert.True(t, wrote)
	assert.Equal(t, 4, calls)
}
