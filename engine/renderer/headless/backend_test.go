package headless

import (
	"testing"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShaderCreateEnumeratesDeclaredUniforms(t *testing.T) {
	h := New()
	shader, uniforms, err := h.ShaderCreate(&metadata.ShaderConfig{
		Name: "phong",
		Uniforms: []*metadata.ShaderUniformConfig{
			{Name: "model", Type: "mat4"},
			{Name: "weights", Type: "float", Count: 4},
			{Name: "diffuse", Type: "sampler"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "phong", shader.Name)
	require.Len(t, uniforms, 3)
	assert.Equal(t, "weights[0]", uniforms[1].Name)
	assert.Equal(t, int32(4), uniforms[1].Size)
	assert.Equal(t, int32(5), uniforms[2].Location)
	assert.Equal(t, metadata.ShaderUniformTypeSampler, uniforms[2].Type)
}

func TestShaderCreateRejectsEmptyOrBadConfig(t *testing.T) {
	h := New()
	_, _, err := h.ShaderCreate(&metadata.ShaderConfig{Name: "empty"})
	assert.ErrorIs(t, err, core.ErrShaderLink)

	_, _, err = h.ShaderCreate(&metadata.ShaderConfig{
		Name:     "bad",
		Uniforms: []*metadata.ShaderUniformConfig{{Name: "x", Type: "quaternion"}},
	})
	assert.ErrorIs(t, err, core.ErrShaderLink)
}

func TestMapUnmap(t *testing.T) {
	h := New()
	b, err := h.RenderBufferCreate(0, 64)
	require.NoError(t, err)

	view, err := h.RenderBufferMapMemory(b, 16, 32)
	require.NoError(t, err)
	assert.Len(t, view, 32)
	assert.True(t, h.IsMapped(b))
	view[0] = 0xAB

	_, err = h.RenderBufferMapMemory(b, 0, 8)
	assert.ErrorIs(t, err, core.ErrBufferMap)

	require.NoError(t, h.RenderBufferUnmapMemory(b))
	assert.False(t, h.IsMapped(b))
	assert.Equal(t, byte(0xAB), h.BufferData(b)[16])

	assert.ErrorIs(t, h.RenderBufferUnmapMemory(b), core.ErrBufferUnmap)

	_, err = h.RenderBufferMapMemory(b, 60, 8)
	assert.ErrorIs(t, err, core.ErrBufferMap)
}

func TestFailureInjection(t *testing.T) {
	h := New()
	b, _ := h.RenderBufferCreate(1, 16)

	h.FailMap = true
	_, err := h.RenderBufferMapMemory(b, 0, 16)
	assert.ErrorIs(t, err, core.ErrBufferMap)
	assert.False(t, h.IsMapped(b))

	h.FailMap = false
	h.FailUnmap = true
	_, err = h.RenderBufferMapMemory(b, 0, 16)
	require.NoError(t, err)
	assert.ErrorIs(t, h.RenderBufferUnmapMemory(b), core.ErrBufferUnmap)
	assert.False(t, h.IsMapped(b))
}

func TestBindBlock(t *testing.T) {
	h := New()
	shader, _, err := h.ShaderCreate(&metadata.ShaderConfig{
		Name:     "phong",
		Uniforms: []*metadata.ShaderUniformConfig{{Name: "model", Type: "mat4"}},
		Blocks:   []string{"Lights"},
	})
	require.NoError(t, err)
	b, _ := h.RenderBufferCreate(0, 16)

	require.NoError(t, h.RenderBufferBindBlock(shader, "Lights", b))
	assert.ErrorIs(t, h.RenderBufferBindBlock(shader, "Camera", b), core.ErrUniformNotFound)
	assert.Equal(t, 1, h.Count(OpBindBlock))
}

func TestTextureCreateChecksPixelCount(t *testing.T) {
	h := New()
	tex := &metadata.Texture{Name: "t", Width: 2, Height: 2}
	assert.Error(t, h.TextureCreate(tex, make([]uint8, 4)))
	require.NoError(t, h.TextureCreate(tex, make([]uint8, 16)))
	assert.NotNil(t, tex.InternalData)
}

func TestShaderBlockSize(t *testing.T) {
	h := New()
	shader, _, err := h.ShaderCreate(&metadata.ShaderConfig{
		Name:       "phong",
		Uniforms:   []*metadata.ShaderUniformConfig{{Name: "model", Type: "mat4"}},
		Blocks:     []string{"Lights", "Camera"},
		BlockSizes: map[string]uint64{"Lights": 1328},
	})
	require.NoError(t, err)

	size, err := h.ShaderBlockSize(shader, "Lights")
	require.NoError(t, err)
	assert.Equal(t, uint64(1328), size)

	size, err = h.ShaderBlockSize(shader, "Camera")
	require.NoError(t, err)
	assert.Zero(t, size, "no declared size means unknown")

	_, err = h.ShaderBlockSize(shader, "Shadows")
	assert.ErrorIs(t, err, core.ErrUniformNotFound)
	_, err = h.ShaderBlockSize(&metadata.Shader{Name: "ghost"}, "Lights")
	assert.ErrorIs(t, err, core.ErrInvalidHandle)
}

func TestTextureCreateFailureLeavesTextureUnset(t *testing.T) {
	h := New()
	h.FailTextureCreate = true
	tex := &metadata.Texture{Name: "t", Width: 1, Height: 1}
	assert.Error(t, h.TextureCreate(tex, make([]uint8, 4)))
	assert.Nil(t, tex.InternalData)
	assert.Zero(t, h.Count(OpTextureCreate))
}
