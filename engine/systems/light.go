package systems

import (
	"encoding/binary"
	"fmt"
	m "math"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// Sizes of the std140 records making up the light block.
const (
	ambientRecordSize     = 32
	directionalRecordSize = 48
	pointRecordSize       = 64
	spotRecordSize        = 80
	countsRecordSize      = 16
)

/** @brief The number of lights of each kind the light block holds. */
type LightLimits struct {
	Directional int `toml:"directional"`
	Point       int `toml:"point"`
	Spot        int `toml:"spot"`
}

func DefaultLightLimits() LightLimits {
	return LightLimits{Directional: 5, Point: 10, Spot: 5}
}

// Size is the byte length of a light block with these limits.
func (l LightLimits) Size() int {
	return ambientRecordSize +
		l.Directional*directionalRecordSize +
		l.Point*pointRecordSize +
		l.Spot*spotRecordSize +
		countsRecordSize
}

type PackedDirectionalLight struct {
	Direction math.Vec3
	Color     math.Vec3
	Intensity float32
}

type PackedPointLight struct {
	Position    math.Vec3
	Color       math.Vec3
	Attenuation math.Vec3
	Intensity   float32
}

/** @brief A spot light with its cone stored as the cosines the shader compares against. */
type PackedSpotLight struct {
	Position    math.Vec3
	Direction   math.Vec3
	Color       math.Vec3
	Attenuation math.Vec3
	Intensity   float32
	CosInner    float32
	CosOuter    float32
}

/**
 * @brief The lights of one frame sorted by kind, ready to be encoded into
 * the shader's Lights uniform block.
 */
type PackedLightBlock struct {
	Limits      LightLimits
	Ambient     metadata.AmbientLight
	Directional []PackedDirectionalLight
	Point       []PackedPointLight
	Spot        []PackedSpotLight
}

type LightPacker struct {
	limits LightLimits
}

func NewLightPacker(limits LightLimits) *LightPacker {
	return &LightPacker{limits: limits}
}

func (lp *LightPacker) Limits() LightLimits {
	return lp.limits
}

func (lp *LightPacker) Size() int {
	return lp.limits.Size()
}

/**
 * @brief Sorts lights into per-kind arrays in input order. A kind with more
 * lights than its limit fails the whole pack with a *core.CapacityError.
 */
func (lp *LightPacker) Pack(lights []metadata.Light, ambient metadata.AmbientLight) (*PackedLightBlock, error) {
	block := &PackedLightBlock{
		Limits:  lp.limits,
		Ambient: ambient,
	}
	for _, l := range lights {
		switch l.Kind {
		case metadata.LightKindDirectional:
			block.Directional = append(block.Directional, PackedDirectionalLight{
				Direction: l.Directional.Direction,
				Color:     l.Color,
				Intensity: l.Intensity,
			})
		case metadata.LightKindPoint:
			block.Point = append(block.Point, PackedPointLight{
				Position:    l.Position,
				Color:       l.Color,
				Attenuation: l.Point.Attenuation,
				Intensity:   l.Intensity,
			})
		case metadata.LightKindSpot:
			block.Spot = append(block.Spot, PackedSpotLight{
				Position:    l.Position,
				Direction:   l.Spot.Direction,
				Color:       l.Color,
				Attenuation: l.Spot.Attenuation,
				Intensity:   l.Intensity,
				CosInner:    math.Cos(math.DegToRad(l.Spot.InnerCutoff)),
				CosOuter:    math.Cos(math.DegToRad(l.Spot.OuterCutoff)),
			})
		default:
			return nil, fmt.Errorf("%w: unknown light kind %d", core.ErrUnknown, l.Kind)
		}
	}

	if err := checkLightCapacity(metadata.LightKindDirectional, len(block.Directional), lp.limits.Directional); err != nil {
		return nil, err
	}
	if err := checkLightCapacity(metadata.LightKindPoint, len(block.Point), lp.limits.Point); err != nil {
		return nil, err
	}
	if err := checkLightCapacity(metadata.LightKindSpot, len(block.Spot), lp.limits.Spot); err != nil {
		return nil, err
	}
	return block, nil
}

func checkLightCapacity(kind metadata.LightKind, count, max int) error {
	if count <= max {
		return nil
	}
	return &core.CapacityError{
		Resource:  "light",
		Kind:      kind.String(),
		Max:       max,
		Requested: count,
	}
}

func (b *PackedLightBlock) Size() int {
	return b.Limits.Size()
}

/**
 * @brief Writes the block into dst in the std140 layout the shaders
 * declare. Unused array entries are zeroed.
 */
func (b *PackedLightBlock) Encode(dst []byte) error {
	size := b.Size()
	if len(dst) < size {
		return fmt.Errorf("%w: light block needs %d bytes, have %d", core.ErrBufferMap, size, len(dst))
	}
	w := blockWriter{buf: dst[:size]}
	clear(w.buf)

	w.vec3(0, b.Ambient.Color)
	w.float(16, b.Ambient.Intensity)
	off := ambientRecordSize

	for i := 0; i < b.Limits.Directional; i++ {
		if i < len(b.Directional) {
			l := b.Directional[i]
			w.vec3(off, l.Direction)
			w.vec3(off+16, l.Color)
			w.float(off+32, l.Intensity)
		}
		off += directionalRecordSize
	}
	for i := 0; i < b.Limits.Point; i++ {
		if i < len(b.Point) {
			l := b.Point[i]
			w.vec3(off, l.Position)
			w.vec3(off+16, l.Color)
			w.vec3(off+32, l.Attenuation)
			w.float(off+48, l.Intensity)
		}
		off += pointRecordSize
	}
	for i := 0; i < b.Limits.Spot; i++ {
		if i < len(b.Spot) {
			l := b.Spot[i]
			w.vec3(off, l.Position)
			w.vec3(off+16, l.Direction)
			w.vec3(off+32, l.Color)
			w.vec3(off+48, l.Attenuation)
			w.float(off+64, l.Intensity)
			w.float(off+68, l.CosInner)
			w.float(off+72, l.CosOuter)
		}
		off += spotRecordSize
	}

	w.int(off, int32(len(b.Directional)))
	w.int(off+4, int32(len(b.Point)))
	w.int(off+8, int32(len(b.Spot)))
	return nil
}

// DecodeLightBlock reads back a block written by Encode with the same limits.
func DecodeLightBlock(src []byte, limits LightLimits) (*PackedLightBlock, error) {
	size := limits.Size()
	if len(src) < size {
		return nil, fmt.Errorf("light block needs %d bytes, have %d", size, len(src))
	}
	r := blockReader{buf: src[:size]}
	b := &PackedLightBlock{Limits: limits}
	b.Ambient.Color = r.vec3(0)
	b.Ambient.Intensity = r.float(16)

	countsOff := size - countsRecordSize
	nd := int(r.int(countsOff))
	np := int(r.int(countsOff + 4))
	ns := int(r.int(countsOff + 8))
	if nd > limits.Directional || np > limits.Point || ns > limits.Spot || nd < 0 || np < 0 || ns < 0 {
		return nil, fmt.Errorf("light block counts (%d, %d, %d) exceed limits %+v", nd, np, ns, limits)
	}

	off := ambientRecordSize
	for i := 0; i < limits.Directional; i++ {
		if i < nd {
			b.Directional = append(b.Directional, PackedDirectionalLight{
				Direction: r.vec3(off),
				Color:     r.vec3(off + 16),
				Intensity: r.float(off + 32),
			})
		}
		off += directionalRecordSize
	}
	for i := 0; i < limits.Point; i++ {
		if i < np {
			b.Point = append(b.Point, PackedPointLight{
				Position:    r.vec3(off),
				Color:       r.vec3(off + 16),
				Attenuation: r.vec3(off + 32),
				Intensity:   r.float(off + 48),
			})
		}
		off += pointRecordSize
	}
	for i := 0; i < limits.Spot; i++ {
		if i < ns {
			b.Spot = append(b.Spot, PackedSpotLight{
				Position:    r.vec3(off),
				Direction:   r.vec3(off + 16),
				Color:       r.vec3(off + 32),
				Attenuation: r.vec3(off + 48),
				Intensity:   r.float(off + 64),
				CosInner:    r.float(off + 68),
				CosOuter:    r.float(off + 72),
			})
		}
		off += spotRecordSize
	}
	return b, nil
}

/**
 * @brief Maps buffer, packs lights into it and unmaps it. The buffer is
 * unmapped on every path once the map succeeded, including a failed pack.
 */
func (lp *LightPacker) Upload(backend renderer.RendererBackend, buffer *metadata.RenderBuffer, lights []metadata.Light, ambient metadata.AmbientLight) (err error) {
	view, err := backend.RenderBufferMapMemory(buffer, 0, uint64(lp.Size()))
	if err != nil {
		return err
	}
	defer func() {
		if uerr := backend.RenderBufferUnmapMemory(buffer); uerr != nil && err == nil {
			err = uerr
		}
	}()

	block, err := lp.Pack(lights, ambient)
	if err != nil {
		return err
	}
	return block.Encode(view)
}

type blockWriter struct {
	buf []byte
}

func (w blockWriter) float(off int, v float32) {
	binary.LittleEndian.PutUint32(w.buf[off:], m.Float32bits(v))
}

func (w blockWriter) int(off int, v int32) {
	binary.LittleEndian.PutUint32(w.buf[off:], uint32(v))
}

func (w blockWriter) vec3(off int, v math.Vec3) {
	w.float(off, v.X)
	w.float(off+4, v.Y)
	w.float(off+8, v.Z)
}

func (w blockWriter) vec4(off int, v math.Vec4) {
	w.float(off, v.X)
	w.float(off+4, v.Y)
	w.float(off+8, v.Z)
	w.float(off+12, v.W)
}

func (w blockWriter) mat4(off int, v math.Mat4) {
	for i, f := range v.Data {
		w.float(off+i*4, f)
	}
}

type blockReader struct {
	buf []byte
}

func (r blockReader) float(off int) float32 {
	return m.Float32frombits(binary.LittleEndian.Uint32(r.buf[off:]))
}

func (r blockReader) int(off int) int32 {
	return int32(binary.LittleEndian.Uint32(r.buf[off:]))
}

func (r blockReader) vec3(off int) math.Vec3 {
	return math.NewVec3(r.float(off), r.float(off+4), r.float(off+8))
}

func (r blockReader) vec4(off int) math.Vec4 {
	return math.NewVec4(r.float(off), r.float(off+4), r.float(off+8), r.float(off+12))
}

func (r blockReader) mat4(off int) math.Mat4 {
	var out math.Mat4
	for i := range out.Data {
		out.Data[i] = r.float(off + i*4)
	}
	return out
}
