package headless

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

/** @brief The device operations the recorder distinguishes. */
type Op string

const (
	OpBeginFrame    Op = "BeginFrame"
	OpEndFrame      Op = "EndFrame"
	OpShaderCreate  Op = "ShaderCreate"
	OpShaderDestroy Op = "ShaderDestroy"
	OpShaderUse     Op = "ShaderUse"
	OpSetUniform    Op = "SetUniform"
	OpTextureCreate Op = "TextureCreate"
	OpTextureBind   Op = "TextureBind"
	OpBufferCreate  Op = "BufferCreate"
	OpBindBlock     Op = "BindBlock"
	OpMap           Op = "Map"
	OpUnmap         Op = "Unmap"
	OpDraw          Op = "Draw"
	OpWireframe     Op = "Wireframe"
)

/** @brief One recorded device call. Only the fields the op uses are set. */
type Call struct {
	Op       Op
	Shader   string
	Location int32
	Value    metadata.UniformValue
	Texture  *metadata.Texture
	Unit     uint32
	Binding  uint32
	Name     string
}

type program struct {
	id       uint32
	uniforms []metadata.ActiveUniform
	blocks   map[string]uint32
}

type buffer struct {
	data   []byte
	mapped bool
}

/**
 * @brief A device that draws nothing and records every call in order.
 * Programs "link" against the uniforms their config declares.
 */
type HeadlessRenderer struct {
	Calls       []Call
	FrameNumber uint64
	Width       uint32
	Height      uint32
	Wireframe   bool

	// Failure injection for the map/unmap and texture upload paths.
	FailMap           bool
	FailUnmap         bool
	FailTextureCreate bool

	nextID uint32
}

func New() *HeadlessRenderer {
	return &HeadlessRenderer{}
}

func (h *HeadlessRenderer) record(c Call) {
	h.Calls = append(h.Calls, c)
}

// Reset forgets every recorded call.
func (h *HeadlessRenderer) Reset() {
	h.Calls = h.Calls[:0]
}

// Count returns how many calls of op were recorded.
func (h *HeadlessRenderer) Count(op Op) int {
	n := 0
	for _, c := range h.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// CallsOf returns the recorded calls of op, in issue order.
func (h *HeadlessRenderer) CallsOf(op Op) []Call {
	var out []Call
	for _, c := range h.Calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Ops returns the op of every recorded call, in issue order.
func (h *HeadlessRenderer) Ops() []Op {
	out := make([]Op, len(h.Calls))
	for i, c := range h.Calls {
		out[i] = c.Op
	}
	return out
}

// BufferData returns the current contents of a buffer created by this device.
func (h *HeadlessRenderer) BufferData(b *metadata.RenderBuffer) []byte {
	return b.InternalData.(*buffer).data
}

// IsMapped reports whether b is currently mapped.
func (h *HeadlessRenderer) IsMapped(b *metadata.RenderBuffer) bool {
	return b.InternalData.(*buffer).mapped
}

func (h *HeadlessRenderer) Initialize(config *metadata.RendererBackendConfig) error {
	h.Width = config.Width
	h.Height = config.Height
	core.LogInfo("headless renderer initialized (%dx%d)", h.Width, h.Height)
	return nil
}

func (h *HeadlessRenderer) Shutdown() error {
	core.LogDebug("headless renderer recorded %d calls over %d frames", len(h.Calls), h.FrameNumber)
	return nil
}

func (h *HeadlessRenderer) Resized(width, height uint32) error {
	h.Width = width
	h.Height = height
	return nil
}

func (h *HeadlessRenderer) BeginFrame(deltaTime float64) error {
	h.record(Call{Op: OpBeginFrame})
	return nil
}

func (h *HeadlessRenderer) EndFrame(deltaTime float64) error {
	h.record(Call{Op: OpEndFrame})
	h.FrameNumber++
	return nil
}

func (h *HeadlessRenderer) ShaderCreate(config *metadata.ShaderConfig) (*metadata.Shader, []metadata.ActiveUniform, error) {
	if len(config.Uniforms) == 0 {
		return nil, nil, fmt.Errorf("%w: shader %s declares no uniforms", core.ErrShaderLink, config.Name)
	}
	h.nextID++
	p := &program{
		id:     h.nextID,
		blocks: make(map[string]uint32),
	}
	var location int32
	for _, u := range config.Uniforms {
		t, err := metadata.ShaderUniformTypeFromString(u.Type)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: shader %s uniform %s: %s", core.ErrShaderLink, config.Name, u.Name, err)
		}
		name := u.Name
		size := int32(1)
		if u.Count > 1 {
			// Arrays are reported under their first element, as GL does.
			name += "[0]"
			size = int32(u.Count)
		}
		p.uniforms = append(p.uniforms, metadata.ActiveUniform{
			Name:     name,
			Location: location,
			Type:     t,
			Size:     size,
		})
		location += size
	}
	for i, b := range config.Blocks {
		p.blocks[b] = uint32(i)
	}

	shader := &metadata.Shader{
		ID:           p.id,
		Name:         config.Name,
		State:        metadata.SHADER_STATE_UNINITIALIZED,
		Config:       config,
		InternalData: p,
	}
	h.record(Call{Op: OpShaderCreate, Shader: config.Name})

	uniforms := make([]metadata.ActiveUniform, len(p.uniforms))
	copy(uniforms, p.uniforms)
	return shader, uniforms, nil
}

func (h *HeadlessRenderer) ShaderDestroy(shader *metadata.Shader) {
	h.record(Call{Op: OpShaderDestroy, Shader: shader.Name})
	shader.InternalData = nil
	shader.State = metadata.SHADER_STATE_NOT_CREATED
}

func (h *HeadlessRenderer) ShaderUse(shader *metadata.Shader) error {
	if shader.InternalData == nil {
		return fmt.Errorf("%w: shader %s is not created", core.ErrInvalidHandle, shader.Name)
	}
	h.record(Call{Op: OpShaderUse, Shader: shader.Name})
	return nil
}

func (h *HeadlessRenderer) SetUniform(shader *metadata.Shader, location int32, value metadata.UniformValue) error {
	h.record(Call{Op: OpSetUniform, Shader: shader.Name, Location: location, Value: value})
	return nil
}

func (h *HeadlessRenderer) TextureCreate(texture *metadata.Texture, pixels []uint8) error {
	expected := int(texture.Width) * int(texture.Height) * 4
	if len(pixels) != expected {
		return fmt.Errorf("texture %s: expected %d bytes of RGBA8, got %d", texture.Name, expected, len(pixels))
	}
	if h.FailTextureCreate {
		return fmt.Errorf("texture %s: upload failed", texture.Name)
	}
	h.nextID++
	texture.InternalData = h.nextID
	h.record(Call{Op: OpTextureCreate, Texture: texture, Name: texture.Name})
	return nil
}

func (h *HeadlessRenderer) TextureDestroy(texture *metadata.Texture) {
	texture.InternalData = nil
}

func (h *HeadlessRenderer) TextureBind(texture *metadata.Texture, unit uint32) error {
	h.record(Call{Op: OpTextureBind, Texture: texture, Unit: unit, Name: texture.Name})
	return nil
}

func (h *HeadlessRenderer) RenderBufferCreate(binding uint32, size uint64) (*metadata.RenderBuffer, error) {
	h.record(Call{Op: OpBufferCreate, Binding: binding})
	return &metadata.RenderBuffer{
		RenderBufferType: metadata.RENDERBUFFER_TYPE_UNIFORM,
		Binding:          binding,
		TotalSize:        size,
		InternalData:     &buffer{data: make([]byte, size)},
	}, nil
}

func (h *HeadlessRenderer) RenderBufferDestroy(b *metadata.RenderBuffer) {
	b.InternalData = &buffer{}
}

func (h *HeadlessRenderer) RenderBufferBindBlock(shader *metadata.Shader, blockName string, b *metadata.RenderBuffer) error {
	p, ok := shader.InternalData.(*program)
	if !ok {
		return fmt.Errorf("%w: shader %s is not created", core.ErrInvalidHandle, shader.Name)
	}
	if _, ok := p.blocks[blockName]; !ok {
		return fmt.Errorf("%w: block %s in shader %s", core.ErrUniformNotFound, blockName, shader.Name)
	}
	h.record(Call{Op: OpBindBlock, Shader: shader.Name, Binding: b.Binding, Name: blockName})
	return nil
}

func (h *HeadlessRenderer) ShaderBlockSize(shader *metadata.Shader, blockName string) (uint64, error) {
	p, ok := shader.InternalData.(*program)
	if !ok {
		return 0, fmt.Errorf("%w: shader %s is not created", core.ErrInvalidHandle, shader.Name)
	}
	if _, ok := p.blocks[blockName]; !ok {
		return 0, fmt.Errorf("%w: block %s in shader %s", core.ErrUniformNotFound, blockName, shader.Name)
	}
	return shader.Config.BlockSizes[blockName], nil
}

func (h *HeadlessRenderer) RenderBufferMapMemory(b *metadata.RenderBuffer, offset, size uint64) ([]byte, error) {
	buf := b.InternalData.(*buffer)
	if h.FailMap {
		return nil, fmt.Errorf("%w: injected failure", core.ErrBufferMap)
	}
	if buf.mapped {
		return nil, fmt.Errorf("%w: buffer %d is already mapped", core.ErrBufferMap, b.Binding)
	}
	if offset+size > uint64(len(buf.data)) {
		return nil, fmt.Errorf("%w: range [%d, %d) exceeds buffer size %d", core.ErrBufferMap, offset, offset+size, len(buf.data))
	}
	buf.mapped = true
	h.record(Call{Op: OpMap, Binding: b.Binding})
	return buf.data[offset : offset+size : offset+size], nil
}

func (h *HeadlessRenderer) RenderBufferUnmapMemory(b *metadata.RenderBuffer) error {
	buf := b.InternalData.(*buffer)
	if !buf.mapped {
		return fmt.Errorf("%w: buffer %d is not mapped", core.ErrBufferUnmap, b.Binding)
	}
	buf.mapped = false
	h.record(Call{Op: OpUnmap, Binding: b.Binding})
	if h.FailUnmap {
		return fmt.Errorf("%w: injected failure", core.ErrBufferUnmap)
	}
	return nil
}

func (h *HeadlessRenderer) CreateGeometry(config *metadata.GeometryConfig) (*metadata.Geometry, error) {
	h.nextID++
	return &metadata.Geometry{
		ID:          h.nextID,
		Name:        config.Name,
		VertexCount: uint32(len(config.Vertices)),
		IndexCount:  uint32(len(config.Indices)),
	}, nil
}

func (h *HeadlessRenderer) DestroyGeometry(geometry *metadata.Geometry) {}

func (h *HeadlessRenderer) DrawGeometry(geometry *metadata.Geometry) error {
	h.record(Call{Op: OpDraw, Name: geometry.Name})
	return nil
}

func (h *HeadlessRenderer) SetWireframe(enabled bool) {
	h.Wireframe = enabled
	h.record(Call{Op: OpWireframe})
}

func (h *HeadlessRenderer) SetClearColour(colour math.Vec4) {}
