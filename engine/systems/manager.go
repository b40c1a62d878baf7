package systems

import (
	"path/filepath"

	"github.com/spaghettifunk/prism/engine/assets"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

/** @brief Capacities and settings of every system the manager creates. */
type SystemManagerConfig struct {
	Backend          *metadata.RendererBackendConfig
	MaxShaderCount   uint16
	MaxTextureCount  uint32
	MaxMaterialCount uint32
	MaxGeometryCount uint32
	MaxTextureUnits  uint32
	Lights           LightLimits
	Camera           *CameraSystemConfig
}

func DefaultSystemManagerConfig() *SystemManagerConfig {
	return &SystemManagerConfig{
		Backend: &metadata.RendererBackendConfig{
			ApplicationName: "prism",
			Width:           1280,
			Height:          720,
		},
		MaxShaderCount:   64,
		MaxTextureCount:  1024,
		MaxMaterialCount: 1024,
		MaxGeometryCount: 1024,
		MaxTextureUnits:  DefaultMaxTextureUnits,
		Lights:           DefaultLightLimits(),
		Camera:           DefaultCameraSystemConfig(),
	}
}

type SystemManager struct {
	CameraSystem   *CameraSystem
	GeometrySystem *GeometrySystem
	MaterialSystem *MaterialSystem
	ShaderSystem   *ShaderSystem
	TextureSystem  *TextureSystem
	RendererSystem *RendererSystem
	LightPacker    *LightPacker

	backend      renderer.RendererBackend
	assetManager *assets.AssetManager
}

/**
 * @brief Initializes backend and builds every system on top of it. am may
 * be nil, in which case nothing can be loaded from disk.
 */
func NewSystemManager(config *SystemManagerConfig, backend renderer.RendererBackend, am *assets.AssetManager) (*SystemManager, error) {
	if err := backend.Initialize(config.Backend); err != nil {
		core.LogError("func NewSystemManager - backend initialization failed: %s", err.Error())
		return nil, err
	}
	backend.SetClearColour(config.Backend.ClearColour)

	ts, err := NewTextureSystem(&TextureSystemConfig{
		MaxTextureCount: config.MaxTextureCount,
	}, backend, am)
	if err != nil {
		return nil, err
	}
	ss, err := NewShaderSystem(&ShaderSystemConfig{
		MaxShaderCount: config.MaxShaderCount,
	}, backend, am)
	if err != nil {
		return nil, err
	}
	ms, err := NewMaterialSystem(&MaterialSystemConfig{
		MaxMaterialCount: config.MaxMaterialCount,
		MaxTextureUnits:  config.MaxTextureUnits,
	}, ss, ts, am, backend)
	if err != nil {
		return nil, err
	}
	gs, err := NewGeometrySystem(&GeometrySystemConfig{
		MaxGeometryCount: config.MaxGeometryCount,
	}, backend)
	if err != nil {
		return nil, err
	}
	cs, err := NewCameraSystem(config.Camera, config.Backend.Width, config.Backend.Height)
	if err != nil {
		return nil, err
	}
	lp := NewLightPacker(config.Lights)
	rs, err := NewRendererSystem(config.Backend, backend, ss, ms, lp)
	if err != nil {
		return nil, err
	}
	if err := rs.Initialize(); err != nil {
		return nil, err
	}

	return &SystemManager{
		CameraSystem:   cs,
		GeometrySystem: gs,
		MaterialSystem: ms,
		ShaderSystem:   ss,
		TextureSystem:  ts,
		RendererSystem: rs,
		LightPacker:    lp,
		backend:        backend,
		assetManager:   am,
	}, nil
}

func (sm *SystemManager) Shutdown() error {
	if err := sm.RendererSystem.Shutdown(); err != nil {
		return err
	}
	sm.GeometrySystem.Shutdown()
	if err := sm.MaterialSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.ShaderSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.TextureSystem.Shutdown(); err != nil {
		return err
	}
	return sm.backend.Shutdown()
}

func (sm *SystemManager) OnResize(width, height uint32) error {
	sm.CameraSystem.Resize(width, height)
	return sm.RendererSystem.OnResized(width, height)
}

func (sm *SystemManager) DrawFrame(packet *metadata.RenderPacket) error {
	return sm.RendererSystem.DrawFrame(packet)
}

/**
 * @brief Reloads whatever the changed file backs: a shader config or stage
 * source relinks its program, a material file replaces the material's
 * properties and an image re-uploads its texture. Files nothing has
 * loaded are ignored. Must be called from the render thread.
 */
func (sm *SystemManager) OnAssetChanged(path string) error {
	name := assets.AssetName(path)
	switch assets.DetermineAssetType(path) {
	case metadata.ResourceTypeShader:
		if _, ok := sm.ShaderSystem.Programs[name]; ok {
			_, err := sm.ShaderSystem.Reload(name)
			return err
		}
	case metadata.ResourceTypeShaderSource:
		return sm.reloadShadersUsing(path)
	case metadata.ResourceTypeMaterial:
		if _, ok := sm.MaterialSystem.Lookup(name); ok {
			return sm.MaterialSystem.ReloadFile(path)
		}
	case metadata.ResourceTypeImage:
		if _, ok := sm.TextureSystem.Get(name); ok {
			_, err := sm.TextureSystem.Reload(name)
			return err
		}
	}
	return nil
}

// reloadShadersUsing relinks every program that has path as a stage source.
func (sm *SystemManager) reloadShadersUsing(path string) error {
	for _, name := range sm.ShaderSystem.names() {
		p := sm.ShaderSystem.Programs[name]
		if p.Shader.Config == nil {
			continue
		}
		for _, f := range p.Shader.Config.StageFilenames {
			if filepath.Base(f) == filepath.Base(path) {
				if _, err := sm.ShaderSystem.Reload(name); err != nil {
					return err
				}
				break
			}
		}
	}
	return nil
}
