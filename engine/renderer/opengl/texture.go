package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

func glFilter(f metadata.TextureFilter) (int32, int32) {
	if f == metadata.TextureFilterModeNearest {
		return gl.NEAREST_MIPMAP_NEAREST, gl.NEAREST
	}
	return gl.LINEAR_MIPMAP_LINEAR, gl.LINEAR
}

func glRepeat(r metadata.TextureRepeat) int32 {
	switch r {
	case metadata.TextureRepeatMirroredRepeat:
		return gl.MIRRORED_REPEAT
	case metadata.TextureRepeatClampToEdge:
		return gl.CLAMP_TO_EDGE
	}
	return gl.REPEAT
}

// TextureCreate uploads tightly packed RGBA8 pixels and builds mipmaps.
func (r *OpenGLRenderer) TextureCreate(texture *metadata.Texture, pixels []uint8) error {
	expected := int(texture.Width) * int(texture.Height) * 4
	if len(pixels) != expected {
		return fmt.Errorf("texture %s: expected %d bytes of RGBA8, got %d", texture.Name, expected, len(pixels))
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)

	wrap := glRepeat(texture.Repeat)
	minFilter, magFilter := glFilter(texture.Filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrap)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrap)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, minFilter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, magFilter)

	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(texture.Width), int32(texture.Height), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	texture.InternalData = id
	return nil
}

func (r *OpenGLRenderer) TextureDestroy(texture *metadata.Texture) {
	if id, ok := texture.InternalData.(uint32); ok {
		gl.DeleteTextures(1, &id)
	}
	texture.InternalData = nil
}

func (r *OpenGLRenderer) TextureBind(texture *metadata.Texture, unit uint32) error {
	id, ok := texture.InternalData.(uint32)
	if !ok {
		return fmt.Errorf("%w: texture %s has no device handle", core.ErrInvalidHandle, texture.Name)
	}
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, id)
	return nil
}
