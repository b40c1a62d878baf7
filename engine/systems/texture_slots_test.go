package systems

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTex(name string) *metadata.Texture {
	return &metadata.Texture{ID: uuid.New(), Name: name}
}

func slotOf(t *testing.T, a *TextureSlotAllocator, tex *metadata.Texture) uint32 {
	t.Helper()
	s, ok := a.Slot(tex)
	require.True(t, ok, "texture %s has no slot", tex.Name)
	return s
}

func TestSlotsAssignLowestFreeInNameOrder(t *testing.T) {
	a := NewTextureSlotAllocator(4)
	wood, brick, metal := newTex("wood"), newTex("brick"), newTex("metal")

	require.NoError(t, a.Update([]*metadata.Texture{wood, brick, metal}))
	assert.Equal(t, uint32(0), slotOf(t, a, brick))
	assert.Equal(t, uint32(1), slotOf(t, a, metal))
	assert.Equal(t, uint32(2), slotOf(t, a, wood))
	assert.Equal(t, 3, a.Len())
}

func TestSlotsAreStableAndReused(t *testing.T) {
	a := NewTextureSlotAllocator(4)
	wood, brick, metal, glass := newTex("wood"), newTex("brick"), newTex("metal"), newTex("glass")

	require.NoError(t, a.Update([]*metadata.Texture{wood, brick, metal}))
	// brick=0 metal=1 wood=2. Dropping metal frees 1, which glass takes.
	require.NoError(t, a.Update([]*metadata.Texture{wood, glass, brick}))
	assert.Equal(t, uint32(0), slotOf(t, a, brick))
	assert.Equal(t, uint32(1), slotOf(t, a, glass))
	assert.Equal(t, uint32(2), slotOf(t, a, wood))
	_, ok := a.Slot(metal)
	assert.False(t, ok)

	bindings := a.Bindings()
	require.Len(t, bindings, 3)
	for i, b := range bindings {
		assert.Equal(t, uint32(i), b.Slot)
	}
	assert.Same(t, glass, bindings[1].Texture)
}

func TestSlotsReuseFreedUnitWhenOthersAreFull(t *testing.T) {
	names := []string{"a", "b", "c", "d"}
	a := NewTextureSlotAllocator(uint32(len(names)))
	var full []*metadata.Texture
	for _, n := range names {
		full = append(full, newTex(n))
	}
	require.NoError(t, a.Update(full))
	for i, tex := range full {
		assert.Equal(t, uint32(i), slotOf(t, a, tex))
	}

	// Swap c for e: every other unit stays occupied, so e lands on 2.
	e := newTex("e")
	next := []*metadata.Texture{full[0], full[1], e, full[3]}
	require.NoError(t, a.Update(next))
	assert.Equal(t, uint32(0), slotOf(t, a, full[0]))
	assert.Equal(t, uint32(1), slotOf(t, a, full[1]))
	assert.Equal(t, uint32(2), slotOf(t, a, e))
	assert.Equal(t, uint32(3), slotOf(t, a, full[3]))
	_, ok := a.Slot(full[2])
	assert.False(t, ok)
	assert.Equal(t, len(names), a.Len())

	// A fifth texture still does not fit.
	err := a.Update(append(next, newTex("f")))
	assert.ErrorIs(t, err, core.ErrTextureCapacity)
	assert.Equal(t, uint32(2), slotOf(t, a, e))
}

func TestSlotsSameNameOrderedByID(t *testing.T) {
	a := NewTextureSlotAllocator(2)
	x := &metadata.Texture{ID: uuid.MustParse("00000000-0000-0000-0000-000000000002"), Name: "dup"}
	y := &metadata.Texture{ID: uuid.MustParse("00000000-0000-0000-0000-000000000001"), Name: "dup"}

	require.NoError(t, a.Update([]*metadata.Texture{x, y}))
	assert.Equal(t, uint32(0), slotOf(t, a, y))
	assert.Equal(t, uint32(1), slotOf(t, a, x))
}

func TestSlotsDuplicatesCountOnce(t *testing.T) {
	a := NewTextureSlotAllocator(1)
	wood := newTex("wood")
	require.NoError(t, a.Update([]*metadata.Texture{wood, wood, nil}))
	assert.Equal(t, 1, a.Len())
}

func TestSlotsCapacityLeavesMappingUntouched(t *testing.T) {
	a := NewTextureSlotAllocator(2)
	wood, brick, metal := newTex("wood"), newTex("brick"), newTex("metal")
	require.NoError(t, a.Update([]*metadata.Texture{wood}))
	before := a.Bindings()

	err := a.Update([]*metadata.Texture{wood, brick, metal})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrTextureCapacity)
	var ce *core.CapacityError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "texture", ce.Resource)
	assert.Equal(t, "units", ce.Kind)
	assert.Equal(t, 2, ce.Max)
	assert.Equal(t, 3, ce.Requested)

	assert.Equal(t, before, a.Bindings())
}

func TestSlotsResolveRediffs(t *testing.T) {
	a := NewTextureSlotAllocator(2)
	wood, brick := newTex("wood"), newTex("brick")
	require.NoError(t, a.Update([]*metadata.Texture{wood}))

	slot, err := a.Resolve(brick, []*metadata.Texture{wood})
	require.NoError(t, err)
	assert.Equal(t, uint32(1), slot)

	slot, err = a.Resolve(wood, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), slot)

	_, err = a.Resolve(newTex("metal"), []*metadata.Texture{wood, brick})
	assert.ErrorIs(t, err, core.ErrTextureCapacity)
}

func TestSlotsFollowReloadedTexture(t *testing.T) {
	a := NewTextureSlotAllocator(2)
	wood := newTex("wood")
	require.NoError(t, a.Update([]*metadata.Texture{wood}))

	reloaded := &metadata.Texture{ID: wood.ID, Name: "wood", Generation: 1}
	require.NoError(t, a.Update([]*metadata.Texture{reloaded}))
	b := a.Bindings()
	require.Len(t, b, 1)
	assert.Equal(t, uint32(0), b[0].Slot)
	assert.Same(t, reloaded, b[0].Texture)

	a.Clear()
	assert.Equal(t, 0, a.Len())
	assert.Empty(t, a.Bindings())
}
