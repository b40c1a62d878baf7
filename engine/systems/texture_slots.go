package systems

import (
	"sort"

	"github.com/google/uuid"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

const DefaultMaxTextureUnits uint32 = 16

// TextureBinding pairs a texture unit with the texture assigned to it.
type TextureBinding struct {
	Slot    uint32
	Texture *metadata.Texture
}

/**
 * @brief Assigns the textures a material uses to a fixed number of texture
 * units. Slots are kept stable between updates for textures that stay in
 * use, so re-activating the same material binds the same units.
 */
type TextureSlotAllocator struct {
	slots []*metadata.Texture
	byID  map[uuid.UUID]uint32
}

func NewTextureSlotAllocator(maxUnits uint32) *TextureSlotAllocator {
	if maxUnits == 0 {
		maxUnits = DefaultMaxTextureUnits
	}
	return &TextureSlotAllocator{
		slots: make([]*metadata.Texture, maxUnits),
		byID:  make(map[uuid.UUID]uint32, maxUnits),
	}
}

func (a *TextureSlotAllocator) Capacity() uint32 {
	return uint32(len(a.slots))
}

// Len returns the number of occupied slots.
func (a *TextureSlotAllocator) Len() int {
	return len(a.byID)
}

/**
 * @brief Makes the slot mapping match used. Textures no longer used are
 * released first, then each newly used texture takes the lowest free slot,
 * in order of name and then ID. If used holds more distinct textures than
 * there are slots a *core.CapacityError is returned and nothing changes.
 */
func (a *TextureSlotAllocator) Update(used []*metadata.Texture) error {
	wanted := make(map[uuid.UUID]*metadata.Texture, len(used))
	for _, t := range used {
		if t != nil {
			wanted[t.ID] = t
		}
	}
	if len(wanted) > len(a.slots) {
		return &core.CapacityError{
			Resource:  "texture",
			Kind:      "units",
			Max:       len(a.slots),
			Requested: len(wanted),
		}
	}

	for id, slot := range a.byID {
		if t, ok := wanted[id]; ok {
			// A reloaded texture keeps its ID; track the newest instance.
			a.slots[slot] = t
			continue
		}
		a.slots[slot] = nil
		delete(a.byID, id)
	}

	fresh := make([]*metadata.Texture, 0, len(wanted))
	for id, t := range wanted {
		if _, ok := a.byID[id]; !ok {
			fresh = append(fresh, t)
		}
	}
	sort.Slice(fresh, func(i, j int) bool {
		if fresh[i].Name != fresh[j].Name {
			return fresh[i].Name < fresh[j].Name
		}
		return fresh[i].ID.String() < fresh[j].ID.String()
	})

	next := 0
	for _, t := range fresh {
		for a.slots[next] != nil {
			next++
		}
		a.slots[next] = t
		a.byID[t.ID] = uint32(next)
	}
	return nil
}

/**
 * @brief Returns the slot of texture. When the texture has no slot yet the
 * mapping is first brought in line with used (plus texture itself).
 */
func (a *TextureSlotAllocator) Resolve(texture *metadata.Texture, used []*metadata.Texture) (uint32, error) {
	if slot, ok := a.byID[texture.ID]; ok {
		return slot, nil
	}
	all := make([]*metadata.Texture, 0, len(used)+1)
	all = append(all, used...)
	all = append(all, texture)
	if err := a.Update(all); err != nil {
		return 0, err
	}
	return a.byID[texture.ID], nil
}

// Slot reports the unit of texture without changing the mapping.
func (a *TextureSlotAllocator) Slot(texture *metadata.Texture) (uint32, bool) {
	slot, ok := a.byID[texture.ID]
	return slot, ok
}

// Bindings lists the occupied slots in ascending order.
func (a *TextureSlotAllocator) Bindings() []TextureBinding {
	out := make([]TextureBinding, 0, len(a.byID))
	for i, t := range a.slots {
		if t != nil {
			out = append(out, TextureBinding{Slot: uint32(i), Texture: t})
		}
	}
	return out
}

// Clear releases every slot.
func (a *TextureSlotAllocator) Clear() {
	for i := range a.slots {
		a.slots[i] = nil
	}
	clear(a.byID)
}
