package metadata

import "fmt"

/**
 * @brief Represents the current state of a given shader.
 */
type ShaderState int

const (
	/** @brief The shader has not yet gone through the creation process, and is unusable.*/
	SHADER_STATE_NOT_CREATED ShaderState = iota
	/** @brief The shader program is compiled and linked, but its uniform table is not built yet. */
	SHADER_STATE_UNINITIALIZED
	/** @brief The shader is linked and its uniform table built. Ready for use. */
	SHADER_STATE_INITIALIZED
)

/** @brief Shader stages available in the system. */
type ShaderStage int

const (
	ShaderStageVertex   ShaderStage = 0x00000001
	ShaderStageGeometry ShaderStage = 0x00000002
	ShaderStageFragment ShaderStage = 0x00000004
	ShaderStageCompute  ShaderStage = 0x0000008
)

func ShaderStageFromString(s string) (ShaderStage, error) {
	switch s {
	case "vertex", "vert":
		return ShaderStageVertex, nil
	case "geometry", "geom":
		return ShaderStageGeometry, nil
	case "fragment", "frag":
		return ShaderStageFragment, nil
	case "compute", "comp":
		return ShaderStageCompute, nil
	}
	return 0, fmt.Errorf("string %s is not a valid ShaderStage", s)
}

/** @brief Available uniform types. */
type ShaderUniformType uint

const (
	ShaderUniformTypeInt32   ShaderUniformType = 0
	ShaderUniformTypeUint32  ShaderUniformType = 1
	ShaderUniformTypeFloat32 ShaderUniformType = 2
	ShaderUniformTypeVec3    ShaderUniformType = 3
	ShaderUniformTypeMatrix3 ShaderUniformType = 4
	ShaderUniformTypeMatrix4 ShaderUniformType = 5
	ShaderUniformTypeSampler ShaderUniformType = 6
	ShaderUniformTypeBool    ShaderUniformType = 7
)

func ShaderUniformTypeFromString(s string) (ShaderUniformType, error) {
	switch s {
	case "int", "i32":
		return ShaderUniformTypeInt32, nil
	case "uint", "u32":
		return ShaderUniformTypeUint32, nil
	case "float", "f32":
		return ShaderUniformTypeFloat32, nil
	case "vec3":
		return ShaderUniformTypeVec3, nil
	case "mat3":
		return ShaderUniformTypeMatrix3, nil
	case "mat4":
		return ShaderUniformTypeMatrix4, nil
	case "sampler", "samp":
		return ShaderUniformTypeSampler, nil
	case "bool":
		return ShaderUniformTypeBool, nil
	}
	return 0, fmt.Errorf("string %s is not a valid ShaderUniformType", s)
}

/** @brief Configuration for a uniform. */
type ShaderUniformConfig struct {
	/** @brief The name of the uniform. */
	Name string `toml:"name"`
	/** @brief The type of the uniform, as written in the config file. */
	Type string `toml:"type"`
	/** @brief Array length. 0 or 1 for a plain uniform. */
	Count int `toml:"count"`
}

/**
 * @brief Configuration for a shader. Typically created by the shader
 * loader from a .shadercfg file and handed to the backend.
 */
type ShaderConfig struct {
	/** @brief The name of the shader to be created. */
	Name string `toml:"name"`
	/** @brief The collection of stage names. Must align with StageFilenames. */
	StageNames []string `toml:"stages"`
	/** @brief The collection of stage file names to be loaded (one per stage). */
	StageFilenames []string `toml:"stagefiles"`
	/**
	 * @brief Uniforms the program declares. A device that can enumerate a linked
	 * program ignores this; a device that can't (headless) links against it.
	 */
	Uniforms []*ShaderUniformConfig `toml:"uniforms"`
	/** @brief Uniform block names the program declares. */
	Blocks []string `toml:"blocks"`
	/**
	 * @brief Byte sizes of Blocks as the stage sources declare them. Only the
	 * headless device reads this; a GL device queries the linked program.
	 */
	BlockSizes map[string]uint64 `toml:"block_sizes"`

	/** @brief The stage types parsed from StageNames. Filled in by the loader. */
	Stages []ShaderStage `toml:"-"`
	/** @brief Stage sources loaded from StageFilenames. Filled in by the loader. */
	StageSources []string `toml:"-"`
}

/**
 * @brief One entry of the device's enumeration of a linked program's
 * active uniforms.
 */
type ActiveUniform struct {
	Name     string
	Location int32
	Type     ShaderUniformType
	/** @brief Array length, 1 for a plain uniform. */
	Size int32
}

/**
 * @brief Represents a shader program on the frontend.
 */
type Shader struct {
	/** @brief The shader identifier, assigned by the shader system. */
	ID uint32
	Name string
	/** @brief The internal State of the shader. */
	State ShaderState
	/** @brief The config the program was built from. Kept for relinking on reload. */
	Config *ShaderConfig
	/** @brief An opaque pointer to hold renderer API specific data. Renderer is responsible for creation and destruction of this.  */
	InternalData interface{}
}
