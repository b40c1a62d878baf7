package opengl

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

/**
 * @brief Creates a uniform buffer of size bytes and attaches it to the
 * given binding point.
 */
func (r *OpenGLRenderer) RenderBufferCreate(binding uint32, size uint64) (*metadata.RenderBuffer, error) {
	// std140 blocks are sized in vec4 units.
	size = metadata.GetAligned(size, 16)
	var id uint32
	gl.GenBuffers(1, &id)
	gl.BindBuffer(gl.UNIFORM_BUFFER, id)
	gl.BufferData(gl.UNIFORM_BUFFER, int(size), nil, gl.DYNAMIC_DRAW)
	gl.BindBufferBase(gl.UNIFORM_BUFFER, binding, id)
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)

	return &metadata.RenderBuffer{
		RenderBufferType: metadata.RENDERBUFFER_TYPE_UNIFORM,
		Binding:          binding,
		TotalSize:        size,
		InternalData:     id,
	}, nil
}

func (r *OpenGLRenderer) RenderBufferDestroy(buffer *metadata.RenderBuffer) {
	if id, ok := buffer.InternalData.(uint32); ok {
		gl.DeleteBuffers(1, &id)
	}
	buffer.InternalData = nil
}

func (r *OpenGLRenderer) RenderBufferBindBlock(shader *metadata.Shader, blockName string, buffer *metadata.RenderBuffer) error {
	program, ok := shader.InternalData.(uint32)
	if !ok {
		return fmt.Errorf("%w: shader %s is not created", core.ErrInvalidHandle, shader.Name)
	}
	index := gl.GetUniformBlockIndex(program, gl.Str(blockName+"\x00"))
	if index == gl.INVALID_INDEX {
		return fmt.Errorf("%w: block %s in shader %s", core.ErrUniformNotFound, blockName, shader.Name)
	}
	gl.UniformBlockBinding(program, index, buffer.Binding)
	return nil
}

func (r *OpenGLRenderer) ShaderBlockSize(shader *metadata.Shader, blockName string) (uint64, error) {
	program, ok := shader.InternalData.(uint32)
	if !ok {
		return 0, fmt.Errorf("%w: shader %s is not created", core.ErrInvalidHandle, shader.Name)
	}
	index := gl.GetUniformBlockIndex(program, gl.Str(blockName+"\x00"))
	if index == gl.INVALID_INDEX {
		return 0, fmt.Errorf("%w: block %s in shader %s", core.ErrUniformNotFound, blockName, shader.Name)
	}
	var size int32
	gl.GetActiveUniformBlockiv(program, index, gl.UNIFORM_BLOCK_DATA_SIZE, &size)
	return uint64(size), nil
}

// RenderBufferMapMemory maps the range write-only; previous contents of the
// range are discarded.
func (r *OpenGLRenderer) RenderBufferMapMemory(buffer *metadata.RenderBuffer, offset, size uint64) ([]byte, error) {
	id, ok := buffer.InternalData.(uint32)
	if !ok {
		return nil, fmt.Errorf("%w: buffer %d has no device handle", core.ErrBufferMap, buffer.Binding)
	}
	if offset+size > buffer.TotalSize {
		return nil, fmt.Errorf("%w: range [%d, %d) exceeds buffer size %d", core.ErrBufferMap, offset, offset+size, buffer.TotalSize)
	}
	gl.BindBuffer(gl.UNIFORM_BUFFER, id)
	ptr := gl.MapBufferRange(gl.UNIFORM_BUFFER, int(offset), int(size), gl.MAP_WRITE_BIT|gl.MAP_INVALIDATE_RANGE_BIT)
	if ptr == nil {
		gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
		return nil, fmt.Errorf("%w: glMapBufferRange returned null (error 0x%x)", core.ErrBufferMap, gl.GetError())
	}
	return unsafe.Slice((*byte)(ptr), size), nil
}

func (r *OpenGLRenderer) RenderBufferUnmapMemory(buffer *metadata.RenderBuffer) error {
	id, ok := buffer.InternalData.(uint32)
	if !ok {
		return fmt.Errorf("%w: buffer %d has no device handle", core.ErrBufferUnmap, buffer.Binding)
	}
	gl.BindBuffer(gl.UNIFORM_BUFFER, id)
	defer gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
	if !gl.UnmapBuffer(gl.UNIFORM_BUFFER) {
		return fmt.Errorf("%w: buffer %d contents were lost while mapped", core.ErrBufferUnmap, buffer.Binding)
	}
	return nil
}
