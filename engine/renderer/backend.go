package renderer

import (
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

/**
 * @brief The graphics device. Every call must be issued from the render
 * thread that owns the context, in the order the frame needs them.
 */
type RendererBackend interface {
	Initialize(config *metadata.RendererBackendConfig) error
	Shutdown() error
	Resized(width, height uint32) error
	BeginFrame(deltaTime float64) error
	EndFrame(deltaTime float64) error

	/**
	 * @brief Compiles and links the program described by config and
	 * enumerates the uniforms the linked program actually declares.
	 */
	ShaderCreate(config *metadata.ShaderConfig) (*metadata.Shader, []metadata.ActiveUniform, error)
	ShaderDestroy(shader *metadata.Shader)
	ShaderUse(shader *metadata.Shader) error
	SetUniform(shader *metadata.Shader, location int32, value metadata.UniformValue) error

	TextureCreate(texture *metadata.Texture, pixels []uint8) error
	TextureDestroy(texture *metadata.Texture)
	/** @brief Makes texture current on the given texture unit. */
	TextureBind(texture *metadata.Texture, unit uint32) error

	RenderBufferCreate(binding uint32, size uint64) (*metadata.RenderBuffer, error)
	RenderBufferDestroy(buffer *metadata.RenderBuffer)
	/** @brief Attaches the program's uniform block blockName to buffer's binding point. */
	RenderBufferBindBlock(shader *metadata.Shader, blockName string, buffer *metadata.RenderBuffer) error
	/**
	 * @brief Returns the byte size the linked program declares for its
	 * uniform block blockName, or 0 when the device cannot tell.
	 */
	ShaderBlockSize(shader *metadata.Shader, blockName string) (uint64, error)
	/**
	 * @brief Maps size bytes of buffer starting at offset for writing. The
	 * returned slice is only valid until RenderBufferUnmapMemory.
	 */
	RenderBufferMapMemory(buffer *metadata.RenderBuffer, offset, size uint64) ([]byte, error)
	RenderBufferUnmapMemory(buffer *metadata.RenderBuffer) error

	CreateGeometry(config *metadata.GeometryConfig) (*metadata.Geometry, error)
	DestroyGeometry(geometry *metadata.Geometry)
	DrawGeometry(geometry *metadata.Geometry) error

	SetWireframe(enabled bool)
	SetClearColour(colour math.Vec4)
}
