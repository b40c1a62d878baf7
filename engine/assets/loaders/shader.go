package loaders

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

/**
 * @brief Loads a .shadercfg file and the stage sources it references.
 * Stage files are resolved relative to the config's directory.
 */
type ShaderLoader struct{}

func (sl *ShaderLoader) Load(path string, params interface{}) (*metadata.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	config, err := ParseShaderConfig(data)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	size := uint64(len(data))
	config.StageSources = make([]string, len(config.StageFilenames))
	for i, f := range config.StageFilenames {
		src, err := os.ReadFile(filepath.Join(dir, f))
		if err != nil {
			return nil, fmt.Errorf("shader %s stage %s: %w", config.Name, config.StageNames[i], err)
		}
		config.StageSources[i] = string(src)
		size += uint64(len(src))
	}

	return &metadata.Resource{
		Name:     config.Name,
		FullPath: path,
		DataSize: size,
		Data:     config,
	}, nil
}

// ParseShaderConfig decodes and validates a shader config without touching
// the stage files.
func ParseShaderConfig(data []byte) (*metadata.ShaderConfig, error) {
	config := &metadata.ShaderConfig{}
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, err
	}
	if config.Name == "" {
		return nil, fmt.Errorf("shader name is required")
	}
	if len(config.StageNames) == 0 {
		return nil, fmt.Errorf("shader %s declares no stages", config.Name)
	}
	if len(config.StageNames) != len(config.StageFilenames) {
		return nil, fmt.Errorf("shader %s: %d stages but %d stage files", config.Name, len(config.StageNames), len(config.StageFilenames))
	}
	config.Stages = make([]metadata.ShaderStage, len(config.StageNames))
	for i, s := range config.StageNames {
		stage, err := metadata.ShaderStageFromString(s)
		if err != nil {
			return nil, err
		}
		config.Stages[i] = stage
	}
	for _, u := range config.Uniforms {
		if u.Name == "" {
			return nil, fmt.Errorf("shader %s has a uniform without a name", config.Name)
		}
		if _, err := metadata.ShaderUniformTypeFromString(u.Type); err != nil {
			return nil, fmt.Errorf("shader %s uniform %s: %w", config.Name, u.Name, err)
		}
	}
	for block := range config.BlockSizes {
		if !slices.Contains(config.Blocks, block) {
			return nil, fmt.Errorf("shader %s gives a size for undeclared block %s", config.Name, block)
		}
	}
	return config, nil
}

func (sl *ShaderLoader) Unload(*metadata.Resource) error {
	return nil
}
