package opengl

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/platform"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type OpenGLRenderer struct {
	platform    *platform.Platform
	FrameNumber uint64

	framebufferWidth  uint32
	framebufferHeight uint32
	clearColour       math.Vec4
}

func New(p *platform.Platform) *OpenGLRenderer {
	return &OpenGLRenderer{
		platform:    p,
		FrameNumber: 0,
		clearColour: math.NewVec4(0.1, 0.1, 0.1, 1.0),
	}
}

/**
 * @brief Loads the GL entry points for the context the platform made
 * current, and sets the fixed pipeline state the renderer relies on.
 */
func (r *OpenGLRenderer) Initialize(config *metadata.RendererBackendConfig) error {
	if err := gl.Init(); err != nil {
		core.LogError("failed to initialize OpenGL: %s", err)
		return err
	}
	core.LogInfo("OpenGL %s (%s)", gl.GoStr(gl.GetString(gl.VERSION)), gl.GoStr(gl.GetString(gl.RENDERER)))

	var units int32
	gl.GetIntegerv(gl.MAX_COMBINED_TEXTURE_IMAGE_UNITS, &units)
	core.LogDebug("device exposes %d texture image units", units)

	r.clearColour = config.ClearColour
	r.framebufferWidth = config.Width
	r.framebufferHeight = config.Height
	if r.platform != nil && r.platform.Window != nil {
		r.framebufferWidth, r.framebufferHeight = r.platform.FramebufferSize()
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Viewport(0, 0, int32(r.framebufferWidth), int32(r.framebufferHeight))

	core.LogInfo("OpenGL renderer initialized successfully")
	return nil
}

func (r *OpenGLRenderer) Shutdown() error {
	core.LogDebug("OpenGL renderer shut down after %d frames", r.FrameNumber)
	return nil
}

func (r *OpenGLRenderer) Resized(width, height uint32) error {
	r.framebufferWidth = width
	r.framebufferHeight = height
	gl.Viewport(0, 0, int32(width), int32(height))
	return nil
}

func (r *OpenGLRenderer) BeginFrame(deltaTime float64) error {
	gl.ClearColor(r.clearColour.X, r.clearColour.Y, r.clearColour.Z, r.clearColour.W)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	return nil
}

func (r *OpenGLRenderer) EndFrame(deltaTime float64) error {
	if errCode := gl.GetError(); errCode != gl.NO_ERROR {
		core.LogWarn("OpenGL error 0x%x during frame %d", errCode, r.FrameNumber)
	}
	if r.platform != nil && r.platform.Window != nil {
		r.platform.SwapBuffers()
	}
	r.FrameNumber++
	return nil
}

func (r *OpenGLRenderer) SetWireframe(enabled bool) {
	if enabled {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		return
	}
	gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
}

func (r *OpenGLRenderer) SetClearColour(colour math.Vec4) {
	r.clearColour = colour
}
