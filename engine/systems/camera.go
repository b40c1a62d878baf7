package systems

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/components"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// CameraBlockSize is the byte length of the Camera uniform block.
const CameraBlockSize = 144

/**
 * @brief The per-frame camera data shared by every program through the
 * Camera uniform block: view, projection and the eye position (w = 1).
 */
type PackedCameraBlock struct {
	View       math.Mat4
	Projection math.Mat4
	Eye        math.Vec4
}

func PackCamera(view, projection math.Mat4, eye math.Vec3) PackedCameraBlock {
	return PackedCameraBlock{
		View:       view,
		Projection: projection,
		Eye:        math.NewVec4(eye.X, eye.Y, eye.Z, 1.0),
	}
}

func (b PackedCameraBlock) Size() int {
	return CameraBlockSize
}

func (b PackedCameraBlock) Encode(dst []byte) error {
	if len(dst) < CameraBlockSize {
		return fmt.Errorf("%w: camera block needs %d bytes, have %d", core.ErrBufferMap, CameraBlockSize, len(dst))
	}
	w := blockWriter{buf: dst[:CameraBlockSize]}
	w.mat4(0, b.View)
	w.mat4(64, b.Projection)
	w.vec4(128, b.Eye)
	return nil
}

func DecodeCameraBlock(src []byte) (PackedCameraBlock, error) {
	if len(src) < CameraBlockSize {
		return PackedCameraBlock{}, fmt.Errorf("camera block needs %d bytes, have %d", CameraBlockSize, len(src))
	}
	r := blockReader{buf: src}
	return PackedCameraBlock{
		View:       r.mat4(0),
		Projection: r.mat4(64),
		Eye:        r.vec4(128),
	}, nil
}

/**
 * @brief Maps buffer, writes block and unmaps. The buffer is unmapped on
 * every path once the map succeeded.
 */
func UploadCamera(backend renderer.RendererBackend, buffer *metadata.RenderBuffer, block PackedCameraBlock) (err error) {
	view, err := backend.RenderBufferMapMemory(buffer, 0, CameraBlockSize)
	if err != nil {
		return err
	}
	defer func() {
		if uerr := backend.RenderBufferUnmapMemory(buffer); uerr != nil && err == nil {
			err = uerr
		}
	}()
	return block.Encode(view)
}

/** @brief The name of the default camera. */
const DEFAULT_CAMERA_NAME string = "default"

/** @brief The camera system configuration. */
type CameraSystemConfig struct {
	/** @brief The maximum number of cameras that can be managed by the system. */
	MaxCameraCount uint16
	/** @brief Vertical field of view in degrees. */
	FOV      float32
	NearClip float32
	FarClip  float32
	/** @brief Distance from the origin of the orbiting default camera. */
	OrbitRadius float32
}

func DefaultCameraSystemConfig() *CameraSystemConfig {
	return &CameraSystemConfig{
		MaxCameraCount: 61,
		FOV:            45.0,
		NearClip:       0.1,
		FarClip:        100.0,
		OrbitRadius:    10.0,
	}
}

type CameraSystem struct {
	Config *CameraSystemConfig
	// Registered cameras by name.
	Cameras map[string]*components.Camera
	// A default, non-registered camera that always exists as a fallback.
	DefaultCamera *components.Camera
	// When set, Update moves the default camera around the origin.
	Orbit bool

	projection math.Mat4
	orbitTime  float32
}

func NewCameraSystem(config *CameraSystemConfig, width, height uint32) (*CameraSystem, error) {
	if config.MaxCameraCount == 0 {
		err := fmt.Errorf("func NewCameraSystem - config.MaxCameraCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	if config.NearClip <= 0 || config.FarClip <= config.NearClip {
		err := fmt.Errorf("func NewCameraSystem - invalid clip range [%g, %g]", config.NearClip, config.FarClip)
		core.LogError(err.Error())
		return nil, err
	}
	cs := &CameraSystem{
		Config:        config,
		Cameras:       make(map[string]*components.Camera, config.MaxCameraCount),
		DefaultCamera: components.NewCamera(),
	}
	cs.DefaultCamera.SetPosition(math.NewVec3(0, 0, config.OrbitRadius))
	cs.Resize(width, height)
	return cs, nil
}

/**
 * @brief Returns the camera registered under name, creating it on first use.
 * The default camera name returns the default camera.
 */
func (cs *CameraSystem) Acquire(name string) (*components.Camera, error) {
	if name == DEFAULT_CAMERA_NAME {
		return cs.DefaultCamera, nil
	}
	if c, ok := cs.Cameras[name]; ok {
		return c, nil
	}
	if len(cs.Cameras) >= int(cs.Config.MaxCameraCount) {
		err := fmt.Errorf("func Acquire - no free slot for camera '%s'", name)
		core.LogError(err.Error())
		return nil, err
	}
	c := components.NewCamera()
	cs.Cameras[name] = c
	return c, nil
}

func (cs *CameraSystem) Release(name string) {
	if name == DEFAULT_CAMERA_NAME {
		core.LogWarn("Cannot release default camera. Nothing was done.")
		return
	}
	delete(cs.Cameras, name)
}

// Resize rebuilds the projection for the new framebuffer size.
func (cs *CameraSystem) Resize(width, height uint32) {
	if width == 0 || height == 0 {
		// Minimized; keep the last projection.
		return
	}
	aspect := float32(width) / float32(height)
	cs.projection = math.NewMat4Perspective(math.DegToRad(cs.Config.FOV), aspect, cs.Config.NearClip, cs.Config.FarClip)
}

func (cs *CameraSystem) Projection() math.Mat4 {
	return cs.projection
}

// Update advances the orbit of the default camera, when enabled.
func (cs *CameraSystem) Update(deltaTime float64) {
	if !cs.Orbit {
		return
	}
	cs.orbitTime += float32(deltaTime)
	r := cs.Config.OrbitRadius
	cs.DefaultCamera.SetPosition(math.NewVec3(math.Sin(cs.orbitTime)*r, 0, math.Cos(cs.orbitTime)*r))
	cs.DefaultCamera.LookAt(math.NewVec3Zero())
}

// State returns the frame camera state of the default camera.
func (cs *CameraSystem) State() metadata.CameraState {
	return metadata.CameraState{
		View:       cs.DefaultCamera.View(),
		Projection: cs.projection,
		Position:   cs.DefaultCamera.Position(),
	}
}
