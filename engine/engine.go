package engine

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spaghettifunk/prism/engine/assets"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/platform"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/headless"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/renderer/opengl"
	"github.com/spaghettifunk/prism/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	isRunning     bool
	isSuspended   bool
	platform      *platform.Platform
	assetManager  *assets.AssetManager
	assetsStarted bool
	systemManager *systems.SystemManager
	width         uint32
	height        uint32
	clock         *core.Clock
	lastTime      float64
	frameCount    uint64

	// Quit requests from other goroutines, drained by the frame loop.
	quitRequests chan struct{}
}

// NewRendererBackend builds the device for backendType. The OpenGL backend
// needs a platform whose window owns a current context.
func NewRendererBackend(backendType metadata.RendererBackendType, p *platform.Platform) (renderer.RendererBackend, error) {
	switch backendType {
	case metadata.RendererBackendOpenGL:
		if p == nil || p.Window == nil {
			return nil, fmt.Errorf("the %s backend needs a window", backendType)
		}
		return opengl.New(p), nil
	case metadata.RendererBackendHeadless:
		return headless.New(), nil
	}
	return nil, fmt.Errorf("unknown renderer backend %q", backendType)
}

func New(g *Game) (*Engine, error) {
	if g.ApplicationConfig == nil {
		g.ApplicationConfig = DefaultApplicationConfig()
	}
	if err := g.ApplicationConfig.Validate(); err != nil {
		return nil, err
	}
	if err := core.SetLogLevel(g.ApplicationConfig.Application.LogLevel); err != nil {
		return nil, err
	}

	am, err := assets.NewAssetManager()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	e := &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		clock:        core.NewClock(),
		assetManager: am,
		isRunning:    true,
		isSuspended:  false,
		quitRequests: make(chan struct{}, 1),
		width:        g.ApplicationConfig.Application.StartWidth,
		height:       g.ApplicationConfig.Application.StartHeight,
	}
	if g.ApplicationConfig.Renderer.Backend == metadata.RendererBackendOpenGL {
		if e.platform, err = platform.New(); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing
	config := e.gameInstance.ApplicationConfig

	if !core.EventSystemInitialize() {
		return fmt.Errorf("failed to initialize the event system")
	}
	if err := core.MetricsInitialize(); err != nil {
		return err
	}

	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	core.EventRegister(core.EVENT_CODE_KEY_PRESSED, e, e.onKey)
	core.EventRegister(core.EVENT_CODE_RESIZED, e, e.onResized)

	if e.platform != nil {
		app := config.Application
		if err := e.platform.Startup(app.Name, app.StartPosX, app.StartPosY, app.StartWidth, app.StartHeight, config.Renderer.VSync); err != nil {
			return err
		}
		// The framebuffer may be larger than the window on high-DPI displays.
		e.width, e.height = e.platform.FramebufferSize()
	}

	backend, err := NewRendererBackend(config.Renderer.Backend, e.platform)
	if err != nil {
		core.LogError(err.Error())
		return err
	}

	assetsDir, err := filepath.Abs(config.Application.AssetsDir)
	if err != nil {
		return err
	}
	if err := e.assetManager.Initialize(assetsDir); err != nil {
		return err
	}
	e.assetsStarted = true

	smConfig := config.SystemManagerConfig()
	smConfig.Backend.Width = e.width
	smConfig.Backend.Height = e.height
	sm, err := systems.NewSystemManager(smConfig, backend, e.assetManager)
	if err != nil {
		return err
	}
	e.systemManager = sm
	e.gameInstance.SystemManager = sm
	if config.Renderer.Wireframe {
		sm.RendererSystem.SetWireframe(true)
	}

	if err := e.gameInstance.FnInitialize(); err != nil {
		return err
	}
	if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
		return err
	}
	e.currentStage = EngineStageInitialized
	return nil
}

/**
 * @brief Runs the frame loop until the application quits or the configured
 * frame count is reached. A frame whose buffers could not be mapped is
 * dropped. Any other failure stops the loop and is returned; content and
 * configuration errors are labelled as such.
 */
func (e *Engine) Run() error {
	e.currentStage = EngineStageRunning
	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	frames := e.gameInstance.ApplicationConfig.Application.Frames

	for e.isRunning {
		if e.platform != nil {
			e.platform.PumpMessages()
		}
		e.applyQuitRequest()
		if !e.isRunning {
			break
		}
		e.applyAssetChanges()

		if e.isSuspended {
			time.Sleep(10 * time.Millisecond)
			continue
		}

		// Update clock and get delta time.
		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime
		frameStart := time.Now()

		if err := e.gameInstance.FnUpdate(delta); err != nil {
			core.LogError("game update failed: %s", err.Error())
			return err
		}

		packet := &metadata.RenderPacket{DeltaTime: delta}
		if err := e.gameInstance.FnRender(packet, delta); err != nil {
			core.LogError("game render failed: %s", err.Error())
			return err
		}

		if err := e.systemManager.DrawFrame(packet); err != nil {
			switch {
			case core.IsRecoverable(err):
				core.LogWarn("frame %d dropped: %s", e.frameCount, err.Error())
			case core.IsFatal(err):
				return fmt.Errorf("frame %d: content or configuration error: %w", e.frameCount, err)
			default:
				return fmt.Errorf("frame %d: %w", e.frameCount, err)
			}
		}

		core.MetricsRecordBinding(e.systemManager.RendererSystem.LastStats())
		if core.MetricsUpdate(time.Since(frameStart).Seconds()) {
			fps, ms := core.MetricsFrame()
			b := core.MetricsBinding()
			core.LogDebug("fps: %.0f frame: %.2fms uniform writes: %d skipped: %d texture binds: %d",
				fps, ms, b.UniformWrites, b.UniformSkips, b.TextureBinds)
		}

		e.frameCount++
		if frames > 0 && e.frameCount >= frames {
			core.LogInfo("rendered %d frames, stopping", e.frameCount)
			e.isRunning = false
		}
		e.lastTime = currentTime
	}
	return nil
}

/**
 * @brief Asks the frame loop to stop. Safe to call from any goroutine; the
 * quit event itself is fired on the render thread at the top of the next
 * frame.
 */
func (e *Engine) RequestQuit() {
	select {
	case e.quitRequests <- struct{}{}:
	default:
		// One pending request is enough.
	}
}

func (e *Engine) applyQuitRequest() {
	select {
	case <-e.quitRequests:
		core.EventFire(core.EVENT_CODE_APPLICATION_QUIT, e, core.EventContext{})
	default:
	}
}

// applyAssetChanges reloads every asset the watcher reported since the last frame.
func (e *Engine) applyAssetChanges() {
	for _, path := range e.assetManager.Changed() {
		if err := e.systemManager.OnAssetChanged(path); err != nil {
			core.LogError("reloading %s failed, keeping the previous version: %s", path, err.Error())
			continue
		}
		ctx := core.EventContext{}
		ctx.Data.C[0] = path
		core.EventFire(core.EVENT_CODE_ASSET_CHANGED, e, ctx)
	}
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			core.LogError("game shutdown failed: %s", err.Error())
		}
	}
	if e.assetsStarted {
		if err := e.assetManager.Shutdown(); err != nil {
			return err
		}
	}
	if e.systemManager != nil {
		if err := e.systemManager.Shutdown(); err != nil {
			return err
		}
	}
	if e.platform != nil {
		if err := e.platform.Shutdown(); err != nil {
			return err
		}
	}
	return core.EventSystemShutdown()
}

// GetFramebufferSize returns the width and height (in this order) of the
// application framebuffer.
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

// FrameCount returns the number of frames drawn so far.
func (e *Engine) FrameCount() uint64 {
	return e.frameCount
}

func (e *Engine) onEvent(code core.SystemEventCode, sender interface{}, listenerInst interface{}, data core.EventContext) bool {
	if code == core.EVENT_CODE_APPLICATION_QUIT {
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning = false
		return true
	}
	return false
}

func (e *Engine) onKey(code core.SystemEventCode, sender interface{}, listenerInst interface{}, data core.EventContext) bool {
	switch core.KeyCode(data.Data.U16[0]) {
	case core.KEY_ESCAPE:
		// NOTE: Technically firing an event to itself, but there may be other listeners.
		core.EventFire(core.EVENT_CODE_APPLICATION_QUIT, e, core.EventContext{})
		// Block anything else from processing this.
		return true
	case core.KEY_L:
		enabled := e.systemManager.RendererSystem.ToggleWireframe()
		core.LogInfo("wireframe: %t", enabled)
		return true
	}
	return false
}

func (e *Engine) onResized(code core.SystemEventCode, sender interface{}, listenerInst interface{}, data core.EventContext) bool {
	width := uint32(data.Data.U16[0])
	height := uint32(data.Data.U16[1])

	// Check if different. If so, trigger a resize event.
	if width == e.width && height == e.height {
		return false
	}
	e.width = width
	e.height = height
	core.LogDebug("Window resize: %d, %d", width, height)

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return true
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	if err := e.systemManager.OnResize(width, height); err != nil {
		core.LogError(err.Error())
	}
	if err := e.gameInstance.FnOnResize(width, height); err != nil {
		core.LogError(err.Error())
	}
	return false
}
