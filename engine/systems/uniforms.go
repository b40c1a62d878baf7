package systems

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

/**
 * @brief Maps uniform names to the locations the linked program assigned
 * them. Built once after link from the device's enumeration and never
 * mutated afterwards.
 */
type UniformLocationTable struct {
	shaderName string
	locations  map[string]int32
}

func NewUniformLocationTable(shaderName string, uniforms []metadata.ActiveUniform) *UniformLocationTable {
	t := &UniformLocationTable{
		shaderName: shaderName,
		locations:  make(map[string]int32, len(uniforms)),
	}
	for _, u := range uniforms {
		t.locations[u.Name] = u.Location
		// Arrays are reported as name[0]; the base name addresses element 0.
		if base, ok := strings.CutSuffix(u.Name, "[0]"); ok {
			if _, exists := t.locations[base]; !exists {
				t.locations[base] = u.Location
			}
		}
	}
	return t
}

// Resolve returns the location of name or an ErrUniformNotFound error.
func (t *UniformLocationTable) Resolve(name string) (int32, error) {
	loc, ok := t.locations[name]
	if !ok {
		return -1, fmt.Errorf("%w: %q in shader %q", core.ErrUniformNotFound, name, t.shaderName)
	}
	return loc, nil
}

func (t *UniformLocationTable) Contains(name string) bool {
	_, ok := t.locations[name]
	return ok
}

func (t *UniformLocationTable) Len() int {
	return len(t.locations)
}

func (t *UniformLocationTable) Names() []string {
	names := make([]string, 0, len(t.locations))
	for n := range t.locations {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

/**
 * @brief Remembers the last value written to each uniform of one program
 * and suppresses writes of a bit-identical value.
 */
type UniformValueCache struct {
	values map[string]metadata.UniformValue
	writes uint64
	skips  uint64
}

func NewUniformValueCache() *UniformValueCache {
	return &UniformValueCache{
		values: make(map[string]metadata.UniformValue),
	}
}

/**
 * @brief Records value for name and calls apply unless the cached value is
 * identical. The cache is updated before apply runs; if apply fails the
 * entry is dropped so the next Set issues the write again.
 * @return true when apply was called.
 */
func (c *UniformValueCache) Set(name string, value metadata.UniformValue, apply func() error) (bool, error) {
	if cur, ok := c.values[name]; ok && cur == value {
		c.skips++
		return false, nil
	}
	c.values[name] = value
	c.writes++
	if err := apply(); err != nil {
		delete(c.values, name)
		return true, err
	}
	return true, nil
}

func (c *UniformValueCache) Get(name string) (metadata.UniformValue, bool) {
	v, ok := c.values[name]
	return v, ok
}

// Invalidate forgets name so the next Set always writes.
func (c *UniformValueCache) Invalidate(name string) {
	delete(c.values, name)
}

// Reset forgets every entry. Called when the program is relinked.
func (c *UniformValueCache) Reset() {
	clear(c.values)
}

func (c *UniformValueCache) Len() int {
	return len(c.values)
}

// TakeStats returns the write/skip counters and zeroes them.
func (c *UniformValueCache) TakeStats() core.BindingStats {
	s := core.BindingStats{UniformWrites: c.writes, UniformSkips: c.skips}
	c.writes, c.skips = 0, 0
	return s
}
