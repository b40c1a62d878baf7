package metadata

import (
	"github.com/spaghettifunk/prism/engine/math"
)

/**
 * @brief Represents the configuration for a geometry.
 */
type GeometryConfig struct {
	/** @brief The Name of the geometry. */
	Name string
	/** @brief An array of Vertices. */
	Vertices []math.Vertex3D
	/** @brief An array of Indices. */
	Indices []uint32
}

/**
 * @brief A mesh uploaded to the device. Drawn with whatever material was
 * activated last.
 */
type Geometry struct {
	/** @brief The geometry identifier. */
	ID   uint32
	Name string
	/** @brief The number of vertices. */
	VertexCount uint32
	/** @brief The number of indices. 0 for non-indexed draws. */
	IndexCount uint32
	/** @brief The device vertex array / buffer handles. */
	InternalData interface{}
}
