package platform

import (
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/prism/engine/core"
)

func init() {
	// GLFW event handling and the GL context must stay on the main OS thread
	runtime.LockOSThread()
}

type Platform struct {
	Window    *glfw.Window
	startTime float64
}

func New() (*Platform, error) {
	return &Platform{
		Window: nil,
	}, nil
}

/**
 * @brief Creates the window and makes an OpenGL 4.1 core context current
 * on the calling thread.
 */
func (p *Platform) Startup(applicationName string, x, y, width, height uint32, vsync bool) error {
	if err := glfw.Init(); err != nil {
		core.LogError("failed to initialize glfw: %s", err)
		return err
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		core.LogError("failed to create window: %s", err)
		glfw.Terminate()
		return err
	}
	window.MakeContextCurrent()
	if vsync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	p.Window = window

	p.Window.SetKeyCallback(keyCallback)
	p.Window.SetFramebufferSizeCallback(framebufferSizeCallback)
	p.Window.SetCloseCallback(closeCallback)
	p.Window.SetPos(int(x), int(y))
	p.Window.Show()

	p.startTime = glfw.GetTime()

	return nil
}

func (p *Platform) Shutdown() error {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
	return nil
}

// PumpMessages dispatches pending window events to the registered callbacks.
func (p *Platform) PumpMessages() {
	glfw.PollEvents()
}

func (p *Platform) SwapBuffers() {
	p.Window.SwapBuffers()
}

// FramebufferSize returns the drawable size in pixels.
func (p *Platform) FramebufferSize() (uint32, uint32) {
	w, h := p.Window.GetFramebufferSize()
	return uint32(w), uint32(h)
}

// GetAbsoluteTime returns seconds since Startup.
func (p *Platform) GetAbsoluteTime() float64 {
	return glfw.GetTime() - p.startTime
}

func translateKey(key glfw.Key) core.KeyCode {
	switch key {
	case glfw.KeyEscape:
		return core.KEY_ESCAPE
	case glfw.KeyL:
		return core.KEY_L
	}
	return core.KeyCode(key)
}

func keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	var code core.SystemEventCode
	switch action {
	case glfw.Press:
		code = core.EVENT_CODE_KEY_PRESSED
	case glfw.Release:
		code = core.EVENT_CODE_KEY_RELEASED
	default:
		return
	}
	ctx := core.EventContext{}
	ctx.Data.U16[0] = uint16(translateKey(key))
	core.EventFire(code, nil, ctx)
}

func framebufferSizeCallback(w *glfw.Window, width, height int) {
	ctx := core.EventContext{}
	ctx.Data.U16[0] = uint16(width)
	ctx.Data.U16[1] = uint16(height)
	core.EventFire(core.EVENT_CODE_RESIZED, nil, ctx)
}

func closeCallback(w *glfw.Window) {
	core.EventFire(core.EVENT_CODE_APPLICATION_QUIT, nil, core.EventContext{})
}
