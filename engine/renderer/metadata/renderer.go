package metadata

import (
	"github.com/spaghettifunk/prism/engine/containers"
	"github.com/spaghettifunk/prism/engine/math"
)

/** @brief The device implementations the renderer can run on. */
type RendererBackendType string

const (
	RendererBackendOpenGL   RendererBackendType = "opengl"
	RendererBackendHeadless RendererBackendType = "headless"
)

type RendererBackendConfig struct {
	/** @brief The name of the application */
	ApplicationName string
	/** @brief Initial framebuffer size. */
	Width  uint32
	Height uint32
	/** @brief The colour the framebuffer is cleared to each frame. */
	ClearColour math.Vec4
	VSync       bool
}

type RenderBufferType int

const (
	/** @brief Buffer is use is unknown. Default, but usually invalid. */
	RENDERBUFFER_TYPE_UNKNOWN RenderBufferType = iota
	/** @brief Buffer is used for vertex data. */
	RENDERBUFFER_TYPE_VERTEX
	/** @brief Buffer is used for index data. */
	RENDERBUFFER_TYPE_INDEX
	/** @brief Buffer is used for uniform data. */
	RENDERBUFFER_TYPE_UNIFORM
)

/**
 * @brief A fixed-size device buffer. Uniform buffers are attached to a
 * binding point shared by every program that declares the matching block.
 */
type RenderBuffer struct {
	/** @brief The type of buffer, which typically determines its use. */
	RenderBufferType RenderBufferType
	/** @brief The uniform-block binding point. */
	Binding uint32
	/** @brief The total size of the buffer in bytes. */
	TotalSize uint64
	/** @brief Contains internal data for the renderer-API-specific buffer. */
	InternalData interface{}
}

/** @brief Stable address of a material owned by the material system. */
type MaterialHandle = containers.Handle

/**
 * @brief One draw: a mesh, the material it uses and the per-object
 * property overrides.
 */
type RenderObject struct {
	Name      string
	Geometry  *Geometry
	Material  MaterialHandle
	Overrides *PropertySet
	Model     math.Mat4
}

/** @brief The camera state of a frame. */
type CameraState struct {
	View       math.Mat4
	Projection math.Mat4
	Position   math.Vec3
}

/**
 * @brief A structure which is generated by the application and sent once
 * to the renderer to render a given frame.
 */
type RenderPacket struct {
	DeltaTime float64
	Camera    CameraState
	Lights    []Light
	Ambient   AmbientLight
	Objects   []RenderObject
}
