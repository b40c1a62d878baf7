package systems

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// Uniform blocks shared by every program, and the binding points their
// buffers are attached to.
const (
	LightsBlockName         = "Lights"
	LightsBlockBinding      = 0
	CameraBlockName         = "Camera"
	CameraBlockBinding      = 1
	ModelUniformName        = "model"
	NormalMatrixUniformName = "normal_matrix"
)

/**
 * @brief Drives one frame on the device: it uploads the camera and light
 * blocks, then activates each object's material and draws it.
 */
type RendererSystem struct {
	backend   renderer.RendererBackend
	config    *metadata.RendererBackendConfig
	shaders   *ShaderSystem
	materials *MaterialSystem
	lights    *LightPacker

	lightBuffer  *metadata.RenderBuffer
	cameraBuffer *metadata.RenderBuffer
	// Programs whose shared blocks are attached, keyed by the device program.
	boundBlocks map[*metadata.Shader]struct{}

	wireframe bool
	// Binding counters of the last completed frame.
	lastStats core.BindingStats

	// The current window framebuffer size.
	FramebufferWidth  uint32
	FramebufferHeight uint32
}

func NewRendererSystem(config *metadata.RendererBackendConfig, backend renderer.RendererBackend, ss *ShaderSystem, ms *MaterialSystem, lights *LightPacker) (*RendererSystem, error) {
	if backend == nil {
		err := fmt.Errorf("func NewRendererSystem - a backend is required")
		core.LogError(err.Error())
		return nil, err
	}
	return &RendererSystem{
		backend:           backend,
		config:            config,
		shaders:           ss,
		materials:         ms,
		lights:            lights,
		boundBlocks:       make(map[*metadata.Shader]struct{}),
		FramebufferWidth:  config.Width,
		FramebufferHeight: config.Height,
	}, nil
}

/**
 * @brief Creates the light and camera uniform buffers. The backend must
 * already be initialized.
 */
func (r *RendererSystem) Initialize() error {
	var err error
	r.lightBuffer, err = r.backend.RenderBufferCreate(LightsBlockBinding, uint64(r.lights.Size()))
	if err != nil {
		core.LogError("func Initialize - failed to create light buffer: %s", err.Error())
		return err
	}
	r.cameraBuffer, err = r.backend.RenderBufferCreate(CameraBlockBinding, CameraBlockSize)
	if err != nil {
		core.LogError("func Initialize - failed to create camera buffer: %s", err.Error())
		return err
	}
	core.LogDebug("light block %d bytes at binding %d, camera block %d bytes at binding %d",
		r.lights.Size(), LightsBlockBinding, CameraBlockSize, CameraBlockBinding)
	return nil
}

func (r *RendererSystem) Shutdown() error {
	if r.lightBuffer != nil {
		r.backend.RenderBufferDestroy(r.lightBuffer)
		r.lightBuffer = nil
	}
	if r.cameraBuffer != nil {
		r.backend.RenderBufferDestroy(r.cameraBuffer)
		r.cameraBuffer = nil
	}
	clear(r.boundBlocks)
	return nil
}

func (r *RendererSystem) Backend() renderer.RendererBackend {
	return r.backend
}

func (r *RendererSystem) OnResized(width, height uint32) error {
	r.FramebufferWidth = width
	r.FramebufferHeight = height
	return r.backend.Resized(width, height)
}

func (r *RendererSystem) SetWireframe(enabled bool) {
	r.wireframe = enabled
	r.backend.SetWireframe(enabled)
}

func (r *RendererSystem) ToggleWireframe() bool {
	r.SetWireframe(!r.wireframe)
	return r.wireframe
}

// LastStats returns the binding counters of the last drawn frame.
func (r *RendererSystem) LastStats() core.BindingStats {
	return r.lastStats
}

/**
 * @brief Draws packet. Camera then lights are uploaded, then for each
 * object in order its material is activated, its model (and, when the
 * program declares one, normal) matrix written and its geometry drawn.
 * Any error aborts the frame.
 */
func (r *RendererSystem) DrawFrame(packet *metadata.RenderPacket) error {
	if err := r.backend.BeginFrame(packet.DeltaTime); err != nil {
		return err
	}

	var stats core.BindingStats
	cam := PackCamera(packet.Camera.View, packet.Camera.Projection, packet.Camera.Position)
	if err := UploadCamera(r.backend, r.cameraBuffer, cam); err != nil {
		core.LogError("func DrawFrame - camera upload failed: %s", err.Error())
		return err
	}
	stats.BlockBytes += CameraBlockSize

	if err := r.lights.Upload(r.backend, r.lightBuffer, packet.Lights, packet.Ambient); err != nil {
		core.LogError("func DrawFrame - light upload failed: %s", err.Error())
		return err
	}
	stats.BlockBytes += uint64(r.lights.Size())

	for i := range packet.Objects {
		if err := r.drawObject(&packet.Objects[i]); err != nil {
			core.LogError("func DrawFrame - object '%s': %s", packet.Objects[i].Name, err.Error())
			return err
		}
	}

	if err := r.backend.EndFrame(packet.DeltaTime); err != nil {
		return err
	}

	stats.Add(r.shaders.TakeStats())
	stats.Add(r.materials.TakeStats())
	r.lastStats = stats
	return nil
}

func (r *RendererSystem) drawObject(obj *metadata.RenderObject) error {
	material, err := r.materials.Get(obj.Material)
	if err != nil {
		return err
	}
	program := material.Program()
	if err := r.bindBlocks(program); err != nil {
		return err
	}
	if err := material.Activate(obj.Overrides); err != nil {
		return err
	}
	if _, err := r.shaders.SetUniform(program, ModelUniformName, metadata.Mat4Uniform(obj.Model)); err != nil {
		return err
	}
	if program.Uniforms.Contains(NormalMatrixUniformName) {
		if _, err := r.shaders.SetUniform(program, NormalMatrixUniformName, metadata.Mat3Uniform(obj.Model.NormalMatrix())); err != nil {
			return err
		}
	}
	return r.backend.DrawGeometry(obj.Geometry)
}

// bindBlocks attaches the shared buffers to the blocks program declares,
// once per linked program.
func (r *RendererSystem) bindBlocks(program *Program) error {
	if _, ok := r.boundBlocks[program.Shader]; ok {
		return nil
	}
	var blocks []string
	if program.Shader.Config != nil {
		blocks = program.Shader.Config.Blocks
	}
	for _, name := range blocks {
		var buffer *metadata.RenderBuffer
		var size uint64
		switch name {
		case LightsBlockName:
			buffer, size = r.lightBuffer, uint64(r.lights.Size())
		case CameraBlockName:
			buffer, size = r.cameraBuffer, CameraBlockSize
		default:
			continue
		}
		if err := r.checkBlockSize(program, name, size); err != nil {
			return err
		}
		if err := r.shaders.BindBlock(program, name, buffer); err != nil {
			return err
		}
	}
	r.boundBlocks[program.Shader] = struct{}{}
	return nil
}

/**
 * @brief Fails when program declares blockName with a different size than
 * the packer writes, e.g. array lengths in the shader that disagree with
 * the configured light maxima. Sizes are compared in whole vec4 rows since
 * drivers may or may not round the tail of a block.
 */
func (r *RendererSystem) checkBlockSize(program *Program, blockName string, packed uint64) error {
	declared, err := r.shaders.BlockSize(program, blockName)
	if err != nil {
		return err
	}
	if declared == 0 || metadata.GetAligned(declared, 16) == metadata.GetAligned(packed, 16) {
		return nil
	}
	err = fmt.Errorf("%w: shader %s declares block %s as %d bytes, the renderer writes %d",
		core.ErrBlockLayout, program.Shader.Name, blockName, declared, packed)
	core.LogError("func bindBlocks - %s", err.Error())
	return err
}
