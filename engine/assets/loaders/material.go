package loaders

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type MaterialLoader struct{}

func (ml *MaterialLoader) Load(path string, params interface{}) (*metadata.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	mCfg, err := ParseMaterialConfig(data)
	if err != nil {
		return nil, err
	}
	mCfg.Path = path
	return &metadata.Resource{
		Name:     mCfg.Name,
		FullPath: path,
		DataSize: uint64(unsafe.Sizeof(metadata.MaterialConfig{})),
		Data:     mCfg,
	}, nil
}

/**
 * @brief Decodes an .amt material file:
 *
 *	name = "phong"
 *	shader = "phong"
 *	[properties]
 *	shininess = { int = 32 }
 *	diffuse = { texture = "container" }
 */
func ParseMaterialConfig(data []byte) (*metadata.MaterialConfig, error) {
	materialConfig := &metadata.MaterialConfig{}
	if err := toml.Unmarshal(data, materialConfig); err != nil {
		return nil, err
	}
	// Perform validation
	if err := validateMaterial(materialConfig); err != nil {
		return nil, err
	}
	return materialConfig, nil
}

func validateMaterial(material *metadata.MaterialConfig) error {
	if material.Name == "" {
		return fmt.Errorf("material name is required")
	}

	if material.ShaderName == "" {
		return fmt.Errorf("shader name is required")
	}

	for name, p := range material.Properties {
		if n := countSet(p); n != 1 {
			return fmt.Errorf("property %s must set exactly one of bool, int, uint, float, vec3, color or texture; found %d", name, n)
		}
		if p.Texture != nil && *p.Texture == "" {
			return fmt.Errorf("property %s: texture name is empty", name)
		}
	}
	return nil
}

func countSet(p metadata.MaterialPropertyConfig) int {
	n := 0
	if p.Bool != nil {
		n++
	}
	if p.Int != nil {
		n++
	}
	if p.UInt != nil {
		n++
	}
	if p.Float != nil {
		n++
	}
	if p.Vec3 != nil {
		n++
	}
	if p.Color != nil {
		n++
	}
	if p.Texture != nil {
		n++
	}
	return n
}

func (ml *MaterialLoader) Unload(*metadata.Resource) error {
	return nil
}
