package systems

import (
	"fmt"
	"sort"

	"github.com/spaghettifunk/prism/engine/assets"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

/** @brief Configuration for the shader system. */
type ShaderSystemConfig struct {
	/** @brief The maximum number of shaders held in the system. */
	MaxShaderCount uint16
}

/**
 * @brief A linked program together with the bookkeeping the binding layer
 * keeps for it: the uniform locations it declares and the values last
 * written to them.
 */
type Program struct {
	Shader   *metadata.Shader
	Uniforms *UniformLocationTable
	Cache    *UniformValueCache
}

type ShaderSystem struct {
	// This system's configuration.
	Config *ShaderSystemConfig
	// A lookup table for shader name->program
	Programs map[string]*Program
	// The program currently in use on the device.
	current *Program
	nextID  uint32
	// sub systems
	backend      renderer.RendererBackend
	assetManager *assets.AssetManager
}

func NewShaderSystem(config *ShaderSystemConfig, backend renderer.RendererBackend, am *assets.AssetManager) (*ShaderSystem, error) {
	if config.MaxShaderCount == 0 {
		err := fmt.Errorf("func NewShaderSystem - config.MaxShaderCount must be greater than 0")
		core.LogError(err.Error())
		return nil, err
	}
	return &ShaderSystem{
		Config:       config,
		Programs:     make(map[string]*Program),
		backend:      backend,
		assetManager: am,
	}, nil
}

/**
 * @brief Shuts down the shader system, destroying every program.
 */
func (ss *ShaderSystem) Shutdown() error {
	for _, name := range ss.names() {
		ss.backend.ShaderDestroy(ss.Programs[name].Shader)
		delete(ss.Programs, name)
	}
	ss.current = nil
	return nil
}

/**
 * @brief Creates a new program with the given config and builds its
 * uniform location table from what the device reports after link.
 */
func (ss *ShaderSystem) Create(config *metadata.ShaderConfig) (*Program, error) {
	if _, exists := ss.Programs[config.Name]; exists {
		err := fmt.Errorf("func Create - shader '%s' already exists", config.Name)
		core.LogError(err.Error())
		return nil, err
	}
	if len(ss.Programs) >= int(ss.Config.MaxShaderCount) {
		err := fmt.Errorf("func Create - unable to create shader '%s', %d shaders already loaded", config.Name, ss.Config.MaxShaderCount)
		core.LogError(err.Error())
		return nil, err
	}

	shader, uniforms, err := ss.backend.ShaderCreate(config)
	if err != nil {
		core.LogError("func Create - failed to create shader '%s': %s", config.Name, err.Error())
		return nil, err
	}
	shader.ID = ss.nextID
	ss.nextID++

	p := &Program{
		Shader:   shader,
		Uniforms: NewUniformLocationTable(config.Name, uniforms),
		Cache:    NewUniformValueCache(),
	}
	ss.Programs[config.Name] = p
	core.LogDebug("shader '%s' created with %d active uniforms", config.Name, len(uniforms))
	return p, nil
}

// Load reads shaders/<name>.shadercfg through the asset manager and creates it.
func (ss *ShaderSystem) Load(name string) (*Program, error) {
	if p, ok := ss.Programs[name]; ok {
		return p, nil
	}
	config, err := ss.loadConfig(name)
	if err != nil {
		return nil, err
	}
	return ss.Create(config)
}

func (ss *ShaderSystem) loadConfig(name string) (*metadata.ShaderConfig, error) {
	if ss.assetManager == nil {
		return nil, fmt.Errorf("func loadConfig - no asset manager to load shader '%s' from", name)
	}
	res, err := ss.assetManager.LoadAsset(name, metadata.ResourceTypeShader, nil)
	if err != nil {
		core.LogError("func loadConfig - failed to load shader resource '%s': %s", name, err.Error())
		return nil, err
	}
	config, ok := res.Data.(*metadata.ShaderConfig)
	if !ok {
		err := fmt.Errorf("func loadConfig - resource '%s' is not a shader config", name)
		core.LogError(err.Error())
		return nil, err
	}
	return config, nil
}

func (ss *ShaderSystem) Get(name string) (*Program, error) {
	p, ok := ss.Programs[name]
	if !ok {
		return nil, fmt.Errorf("func Get - no shader named '%s'", name)
	}
	return p, nil
}

/**
 * @brief Makes p the current program. The device is only called when a
 * different program was current.
 */
func (ss *ShaderSystem) Use(p *Program) error {
	if ss.current == p {
		return nil
	}
	if err := ss.backend.ShaderUse(p.Shader); err != nil {
		return err
	}
	ss.current = p
	return nil
}

func (ss *ShaderSystem) Current() *Program {
	return ss.current
}

/**
 * @brief Writes value to the uniform name of p through its value cache.
 * p must be the current program.
 * @return true when a device write was issued.
 */
func (ss *ShaderSystem) SetUniform(p *Program, name string, value metadata.UniformValue) (bool, error) {
	loc, err := p.Uniforms.Resolve(name)
	if err != nil {
		return false, err
	}
	return p.Cache.Set(name, value, func() error {
		return ss.backend.SetUniform(p.Shader, loc, value)
	})
}

// BlockSize returns the size p declares for blockName, 0 if unknown.
func (ss *ShaderSystem) BlockSize(p *Program, blockName string) (uint64, error) {
	return ss.backend.ShaderBlockSize(p.Shader, blockName)
}

// BindBlock attaches the uniform block blockName of p to buffer.
func (ss *ShaderSystem) BindBlock(p *Program, blockName string, buffer *metadata.RenderBuffer) error {
	return ss.backend.RenderBufferBindBlock(p.Shader, blockName, buffer)
}

/**
 * @brief Rebuilds the named program from its shader config on disk. The
 * Program value is kept so materials holding it see the new program; its
 * location table is rebuilt and its value cache emptied. If the new
 * version fails to compile the old program stays in place.
 */
func (ss *ShaderSystem) Reload(name string) (*Program, error) {
	p, ok := ss.Programs[name]
	if !ok {
		return nil, fmt.Errorf("func Reload - no shader named '%s'", name)
	}
	config, err := ss.loadConfig(name)
	if err != nil {
		return nil, err
	}
	shader, uniforms, err := ss.backend.ShaderCreate(config)
	if err != nil {
		core.LogError("func Reload - shader '%s' kept at previous version: %s", name, err.Error())
		return nil, err
	}
	shader.ID = p.Shader.ID
	ss.backend.ShaderDestroy(p.Shader)

	p.Shader = shader
	p.Uniforms = NewUniformLocationTable(name, uniforms)
	p.Cache.Reset()
	if ss.current == p {
		// The device no longer has the old program bound.
		ss.current = nil
	}
	core.LogInfo("shader '%s' reloaded", name)
	return p, nil
}

// TakeStats drains the uniform counters of every program.
func (ss *ShaderSystem) TakeStats() core.BindingStats {
	var stats core.BindingStats
	for _, p := range ss.Programs {
		stats.Add(p.Cache.TakeStats())
	}
	return stats
}

func (ss *ShaderSystem) names() []string {
	names := make([]string, 0, len(ss.Programs))
	for n := range ss.Programs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
