package metadata

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	/** @brief Files the asset manager does not track. */
	ResourceTypeNone ResourceType = iota
	/** @brief Image resource type. */
	ResourceTypeImage
	/** @brief Material resource type (.amt). */
	ResourceTypeMaterial
	/** @brief Shader resource type (or more accurately shader config). */
	ResourceTypeShader
	/** @brief GLSL stage source referenced by a shader config. */
	ResourceTypeShaderSource
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeImage:
		return "image"
	case ResourceTypeMaterial:
		return "material"
	case ResourceTypeShader:
		return "shader"
	case ResourceTypeShaderSource:
		return "shader source"
	}
	return "none"
}

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief The resource data. */
	Data interface{}
}
