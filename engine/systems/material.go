package systems

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/prism/engine/assets"
	"github.com/spaghettifunk/prism/engine/containers"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

/**
 * @brief A shader program plus the property values it draws with. Several
 * materials may share one program; each owns its texture slot mapping.
 */
type Material struct {
	Name string

	program    *Program
	properties *metadata.PropertySet
	slots      *TextureSlotAllocator
	binds      uint64

	shaders *ShaderSystem
	backend renderer.RendererBackend
}

func (m *Material) Program() *Program {
	return m.program
}

// Properties returns a read-only view of the material's base properties.
func (m *Material) Properties() metadata.PropertyView {
	return m.properties.Compose(nil)
}

func (m *Material) SetProperty(name string, v metadata.PropertyValue) {
	m.properties.Set(name, v)
}

func (m *Material) DeleteProperty(name string) {
	m.properties.Delete(name)
}

// Slots exposes the texture unit mapping of the last activation.
func (m *Material) Slots() []TextureBinding {
	return m.slots.Bindings()
}

/**
 * @brief Makes the material current on the device.
 *
 * The program is made current, the base properties are composed with
 * overrides (which may be nil), textures are assigned units, every
 * property is written in name order through the program's value cache
 * (a texture is written as its unit index) and finally every assigned
 * texture is bound to its unit. Texture binds are always issued since
 * another material may have bound the same unit in between.
 */
func (m *Material) Activate(overrides *metadata.PropertySet) error {
	if err := m.shaders.Use(m.program); err != nil {
		return err
	}

	view := m.properties.Compose(overrides)
	if err := m.slots.Update(view.Textures()); err != nil {
		core.LogError("material '%s': %s", m.Name, err.Error())
		return err
	}

	var err error
	view.Range(func(name string, p metadata.PropertyValue) bool {
		value, ok := p.Uniform()
		if !ok {
			t := p.Texture()
			if t == nil {
				return true
			}
			slot, found := m.slots.Slot(t)
			if !found {
				err = fmt.Errorf("material '%s': texture '%s' has no unit", m.Name, t.Name)
				return false
			}
			value = metadata.IntUniform(int32(slot))
		}
		_, err = m.shaders.SetUniform(m.program, name, value)
		return err == nil
	})
	if err != nil {
		return err
	}

	for _, b := range m.slots.Bindings() {
		if err := m.backend.TextureBind(b.Texture, b.Slot); err != nil {
			return err
		}
		m.binds++
	}
	return nil
}

// Clone returns a copy of m under name with its own properties and slots.
func (m *Material) Clone(name string) *Material {
	return &Material{
		Name:       name,
		program:    m.program,
		properties: m.properties.Clone(),
		slots:      NewTextureSlotAllocator(m.slots.Capacity()),
		shaders:    m.shaders,
		backend:    m.backend,
	}
}

// CloneWithOverrides clones m and writes overrides into the clone's base set.
func (m *Material) CloneWithOverrides(name string, overrides *metadata.PropertySet) *Material {
	c := m.Clone(name)
	overrides.Range(func(n string, v metadata.PropertyValue) bool {
		c.properties.Set(n, v)
		return true
	})
	return c
}

type MaterialSystemConfig struct {
	/** @brief The maximum number of loaded materials. */
	MaxMaterialCount uint32
	/** @brief Texture units available to a single material. */
	MaxTextureUnits uint32
}

/**
 * @brief Owns every material. Materials are addressed by handle so render
 * objects do not hold pointers that a destroy would leave dangling.
 */
type MaterialSystem struct {
	Config    *MaterialSystemConfig
	materials *containers.Arena[*Material]
	lookup    map[string]metadata.MaterialHandle
	// sub systems
	shaders      *ShaderSystem
	textures     *TextureSystem
	assetManager *assets.AssetManager
	backend      renderer.RendererBackend
}

func NewMaterialSystem(config *MaterialSystemConfig, ss *ShaderSystem, ts *TextureSystem, am *assets.AssetManager, backend renderer.RendererBackend) (*MaterialSystem, error) {
	if config.MaxMaterialCount == 0 {
		err := fmt.Errorf("func NewMaterialSystem - config.MaxMaterialCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	if config.MaxTextureUnits == 0 {
		config.MaxTextureUnits = DefaultMaxTextureUnits
	}
	return &MaterialSystem{
		Config:       config,
		materials:    containers.NewArena[*Material](int(config.MaxMaterialCount)),
		lookup:       make(map[string]metadata.MaterialHandle),
		shaders:      ss,
		textures:     ts,
		assetManager: am,
		backend:      backend,
	}, nil
}

func (ms *MaterialSystem) Shutdown() error {
	ms.materials.Range(func(h metadata.MaterialHandle, m *Material) bool {
		m.slots.Clear()
		return true
	})
	ms.materials = containers.NewArena[*Material](int(ms.Config.MaxMaterialCount))
	clear(ms.lookup)
	return nil
}

/**
 * @brief Creates a material named name drawing with the shader shaderName.
 * props becomes the material's base set and must not be reused by the caller.
 */
func (ms *MaterialSystem) Create(name, shaderName string, props *metadata.PropertySet) (metadata.MaterialHandle, error) {
	program, err := ms.shaders.Get(shaderName)
	if err != nil {
		if program, err = ms.shaders.Load(shaderName); err != nil {
			return metadata.MaterialHandle{}, err
		}
	}
	if props == nil {
		props = metadata.NewPropertySet()
	}
	return ms.register(&Material{
		Name:       name,
		program:    program,
		properties: props,
		slots:      NewTextureSlotAllocator(ms.Config.MaxTextureUnits),
		shaders:    ms.shaders,
		backend:    ms.backend,
	})
}

func (ms *MaterialSystem) register(m *Material) (metadata.MaterialHandle, error) {
	if _, exists := ms.lookup[m.Name]; exists {
		err := fmt.Errorf("func register - material '%s' already exists", m.Name)
		core.LogError(err.Error())
		return metadata.MaterialHandle{}, err
	}
	if uint32(ms.materials.Len()) >= ms.Config.MaxMaterialCount {
		err := fmt.Errorf("func register - material limit of %d reached, cannot create '%s'", ms.Config.MaxMaterialCount, m.Name)
		core.LogError(err.Error())
		return metadata.MaterialHandle{}, err
	}
	h := ms.materials.Insert(m)
	ms.lookup[m.Name] = h
	return h, nil
}

// Load creates a material from a decoded .amt config.
func (ms *MaterialSystem) Load(config *metadata.MaterialConfig) (metadata.MaterialHandle, error) {
	props, err := ms.buildProperties(config)
	if err != nil {
		return metadata.MaterialHandle{}, err
	}
	return ms.Create(config.Name, config.ShaderName, props)
}

/**
 * @brief Returns the handle of the material called name, loading
 * materials/<name>.amt on first use.
 */
func (ms *MaterialSystem) Acquire(name string) (metadata.MaterialHandle, error) {
	if h, ok := ms.lookup[name]; ok {
		return h, nil
	}
	if ms.assetManager == nil {
		return metadata.MaterialHandle{}, fmt.Errorf("func Acquire - no asset manager to load material '%s' from", name)
	}
	res, err := ms.assetManager.LoadAsset(name, metadata.ResourceTypeMaterial, nil)
	if err != nil {
		core.LogError("func Acquire - failed to load material '%s': %s", name, err.Error())
		return metadata.MaterialHandle{}, err
	}
	config, ok := res.Data.(*metadata.MaterialConfig)
	if !ok {
		return metadata.MaterialHandle{}, fmt.Errorf("func Acquire - resource '%s' is not a material config", name)
	}
	return ms.Load(config)
}

func (ms *MaterialSystem) Get(h metadata.MaterialHandle) (*Material, error) {
	m, err := ms.materials.Get(h)
	if err != nil {
		return nil, fmt.Errorf("%w: material %d", core.ErrInvalidHandle, h.Index())
	}
	return m, nil
}

func (ms *MaterialSystem) Lookup(name string) (metadata.MaterialHandle, bool) {
	h, ok := ms.lookup[name]
	return h, ok
}

// Clone registers a copy of the material behind h under name.
func (ms *MaterialSystem) Clone(h metadata.MaterialHandle, name string, overrides *metadata.PropertySet) (metadata.MaterialHandle, error) {
	m, err := ms.Get(h)
	if err != nil {
		return metadata.MaterialHandle{}, err
	}
	return ms.register(m.CloneWithOverrides(name, overrides))
}

/**
 * @brief Replaces the base properties (and shader, if it changed) of the
 * material named by config. The handle stays valid.
 */
func (ms *MaterialSystem) Reload(config *metadata.MaterialConfig) error {
	h, ok := ms.lookup[config.Name]
	if !ok {
		return fmt.Errorf("func Reload - no material named '%s'", config.Name)
	}
	m, err := ms.Get(h)
	if err != nil {
		return err
	}
	props, err := ms.buildProperties(config)
	if err != nil {
		return err
	}
	if config.ShaderName != m.program.Shader.Name {
		program, err := ms.shaders.Load(config.ShaderName)
		if err != nil {
			return err
		}
		m.program = program
	}
	m.properties = props
	core.LogInfo("material '%s' reloaded", config.Name)
	return nil
}

// ReloadFile re-reads a .amt file and reloads the material it describes.
func (ms *MaterialSystem) ReloadFile(path string) error {
	res, err := ms.assetManager.LoadPath(path, nil)
	if err != nil {
		return err
	}
	config, ok := res.Data.(*metadata.MaterialConfig)
	if !ok {
		return fmt.Errorf("func ReloadFile - %s is not a material config", path)
	}
	return ms.Reload(config)
}

func (ms *MaterialSystem) Destroy(h metadata.MaterialHandle) error {
	m, err := ms.materials.Remove(h)
	if err != nil {
		if errors.Is(err, containers.ErrStaleHandle) {
			return fmt.Errorf("%w: material %d", core.ErrInvalidHandle, h.Index())
		}
		return err
	}
	m.slots.Clear()
	delete(ms.lookup, m.Name)
	return nil
}

func (ms *MaterialSystem) Len() int {
	return ms.materials.Len()
}

// TakeStats drains the texture bind counters of every material.
func (ms *MaterialSystem) TakeStats() core.BindingStats {
	var stats core.BindingStats
	ms.materials.Range(func(_ metadata.MaterialHandle, m *Material) bool {
		stats.TextureBinds += m.binds
		m.binds = 0
		return true
	})
	return stats
}

func (ms *MaterialSystem) buildProperties(config *metadata.MaterialConfig) (*metadata.PropertySet, error) {
	props := metadata.NewPropertySet()
	for name, p := range config.Properties {
		switch {
		case p.Bool != nil:
			props.SetBool(name, *p.Bool)
		case p.Int != nil:
			props.SetInt(name, *p.Int)
		case p.UInt != nil:
			props.SetUInt(name, *p.UInt)
		case p.Float != nil:
			props.SetFloat(name, *p.Float)
		case p.Vec3 != nil:
			props.Set(name, metadata.Vec3Property(math.NewVec3(p.Vec3[0], p.Vec3[1], p.Vec3[2])))
		case p.Color != nil:
			props.SetColor(name, p.Color[0], p.Color[1], p.Color[2])
		case p.Texture != nil:
			t, err := ms.textures.Acquire(*p.Texture)
			if err != nil {
				core.LogWarn("material '%s': texture '%s' unavailable, using default", config.Name, *p.Texture)
				t = ms.textures.GetDefaultTexture()
			}
			props.SetTexture(name, t)
		default:
			return nil, fmt.Errorf("%w: %s in material %s", core.ErrInvalidProperty, name, config.Name)
		}
	}
	return props, nil
}
