package engine

import (
	"testing"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/headless"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/systems"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRendererBackend(t *testing.T) {
	b, err := NewRendererBackend(metadata.RendererBackendHeadless, nil)
	require.NoError(t, err)
	assert.IsType(t, &headless.HeadlessRenderer{}, b)

	_, err = NewRendererBackend(metadata.RendererBackendOpenGL, nil)
	assert.Error(t, err)

	_, err = NewRendererBackend("vulkan", nil)
	assert.Error(t, err)
}

type testGame struct {
	material metadata.MaterialHandle
	updates  int
	resizes  [][2]uint32
}

func newHeadlessEngine(t *testing.T, frames uint64) (*Engine, *Game, *testGame) {
	t.Helper()
	config := DefaultApplicationConfig()
	config.Application.AssetsDir = t.TempDir()
	config.Application.Frames = frames
	config.Renderer.Backend = metadata.RendererBackendHeadless

	state := &testGame{}
	g := &Game{ApplicationConfig: config, State: state}
	g.FnInitialize = func() error {
		_, err := g.SystemManager.ShaderSystem.Create(&metadata.ShaderConfig{
			Name: "flat",
			Uniforms: []*metadata.ShaderUniformConfig{
				{Name: "model", Type: "mat4"},
				{Name: "tint", Type: "vec3"},
			},
			Blocks: []string{"Camera"},
		})
		if err != nil {
			return err
		}
		props := metadata.NewPropertySet()
		props.SetColor("tint", 1, 0, 0)
		state.material, err = g.SystemManager.MaterialSystem.Create("flat", "flat", props)
		return err
	}
	g.FnUpdate = func(deltaTime float64) error {
		state.updates++
		return nil
	}
	g.FnRender = func(packet *metadata.RenderPacket, deltaTime float64) error {
		packet.Camera = g.SystemManager.CameraSystem.State()
		packet.Ambient = metadata.NewAmbientLight()
		packet.Objects = append(packet.Objects, metadata.RenderObject{
			Name:     "cube",
			Geometry: g.SystemManager.GeometrySystem.GetDefault(),
			Material: state.material,
			Model:    math.NewMat4Identity(),
		})
		return nil
	}
	g.FnOnResize = func(width, height uint32) error {
		state.resizes = append(state.resizes, [2]uint32{width, height})
		return nil
	}

	e, err := New(g)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	t.Cleanup(func() { _ = e.Shutdown() })
	return e, g, state
}

func device(g *Game) *headless.HeadlessRenderer {
	return g.SystemManager.RendererSystem.Backend().(*headless.HeadlessRenderer)
}

func TestEngineRunsHeadlessFrames(t *testing.T) {
	e, g, state := newHeadlessEngine(t, 3)
	require.NoError(t, e.Run())

	assert.Equal(t, uint64(3), e.FrameCount())
	assert.Equal(t, 3, state.updates)
	d := device(g)
	assert.Equal(t, uint64(3), d.FrameNumber)
	assert.Equal(t, 3, d.Count(headless.OpDraw))
	assert.Equal(t, 1, d.Count(headless.OpShaderUse))
	assert.Equal(t, [][2]uint32{{1280, 720}}, state.resizes)
}

func TestEngineFrameErrorStopsRun(t *testing.T) {
	e, g, state := newHeadlessEngine(t, 5)
	require.NoError(t, g.SystemManager.MaterialSystem.Destroy(state.material))

	err := e.Run()
	assert.ErrorIs(t, err, core.ErrInvalidHandle)
	assert.Equal(t, uint64(0), e.FrameCount())
}

func TestEngineDropsFramesWhenBuffersFailToMap(t *testing.T) {
	e, g, _ := newHeadlessEngine(t, 2)
	d := device(g)
	d.FailMap = true

	require.NoError(t, e.Run())
	assert.Equal(t, uint64(2), e.FrameCount())
	assert.Equal(t, 0, d.Count(headless.OpDraw))
	assert.Equal(t, 0, d.Count(headless.OpEndFrame))
}

func TestEngineKeyAndResizeEvents(t *testing.T) {
	e, g, state := newHeadlessEngine(t, 1)
	d := device(g)

	key := core.EventContext{}
	key.Data.U16[0] = uint16(core.KEY_L)
	assert.True(t, core.EventFire(core.EVENT_CODE_KEY_PRESSED, nil, key))
	assert.True(t, d.Wireframe)

	resize := core.EventContext{}
	resize.Data.U16[0] = 640
	resize.Data.U16[1] = 480
	core.EventFire(core.EVENT_CODE_RESIZED, nil, resize)
	w, h := e.GetFramebufferSize()
	assert.Equal(t, uint32(640), w)
	assert.Equal(t, uint32(480), h)
	assert.Equal(t, uint32(640), d.Width)
	assert.Equal(t, [2]uint32{640, 480}, state.resizes[len(state.resizes)-1])

	resize.Data.U16[0] = 0
	core.EventFire(core.EVENT_CODE_RESIZED, nil, resize)
	assert.True(t, e.isSuspended)
	resize.Data.U16[0] = 640
	core.EventFire(core.EVENT_CODE_RESIZED, nil, resize)
	assert.False(t, e.isSuspended)

	key.Data.U16[0] = uint16(core.KEY_ESCAPE)
	assert.True(t, core.EventFire(core.EVENT_CODE_KEY_PRESSED, nil, key))
	assert.False(t, e.isRunning)
}

func TestEngineQuitRequestedBeforeRun(t *testing.T) {
	e, g, _ := newHeadlessEngine(t, 1000)
	e.RequestQuit()
	e.RequestQuit()

	require.NoError(t, e.Run())
	assert.Equal(t, uint64(0), e.FrameCount())
	assert.Zero(t, device(g).Count(headless.OpBeginFrame))
}

func TestEngineQuitRequestedFromAnotherGoroutine(t *testing.T) {
	const frames = 1 << 40
	e, g, _ := newHeadlessEngine(t, frames)

	done := make(chan struct{})
	go func() {
		defer close(done)
		e.RequestQuit()
	}()

	require.NoError(t, e.Run())
	<-done
	assert.Less(t, e.FrameCount(), uint64(frames))
	assert.Equal(t, device(g).FrameNumber, e.FrameCount())
}

func TestEngineLabelsFatalFrameErrors(t *testing.T) {
	e, g, _ := newHeadlessEngine(t, 5)
	render := g.FnRender
	g.FnRender = func(packet *metadata.RenderPacket, deltaTime float64) error {
		if err := render(packet, deltaTime); err != nil {
			return err
		}
		for i := 0; i <= systems.DefaultLightLimits().Point; i++ {
			packet.Lights = append(packet.Lights, metadata.NewPointLight(math.NewVec3(float32(i), 0, 0)))
		}
		return nil
	}

	err := e.Run()
	require.Error(t, err)
	assert.True(t, core.IsFatal(err))
	assert.ErrorIs(t, err, core.ErrLightCapacity)
	assert.Contains(t, err.Error(), "content or configuration error")
	assert.Equal(t, uint64(0), e.FrameCount())
}
