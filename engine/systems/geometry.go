package systems

import (
	"fmt"
	"sort"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

/** @brief The name of the default geometry, a unit cube. */
const DefaultGeometryName string = "default"

type GeometrySystemConfig struct {
	/** @brief The maximum number of geometries that can be loaded at once. */
	MaxGeometryCount uint32
}

type GeometrySystem struct {
	Config     *GeometrySystemConfig
	geometries map[string]*metadata.Geometry
	backend    renderer.RendererBackend
}

func NewGeometrySystem(config *GeometrySystemConfig, backend renderer.RendererBackend) (*GeometrySystem, error) {
	if config.MaxGeometryCount == 0 {
		err := fmt.Errorf("func NewGeometrySystem - config.MaxGeometryCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	gs := &GeometrySystem{
		Config:     config,
		geometries: make(map[string]*metadata.Geometry),
		backend:    backend,
	}
	if _, err := gs.Create(GenerateCubeConfig(1, 1, 1, 1, 1, DefaultGeometryName)); err != nil {
		core.LogError("func NewGeometrySystem - failed to create default geometry: %s", err.Error())
		return nil, err
	}
	return gs, nil
}

func (gs *GeometrySystem) Shutdown() {
	names := make([]string, 0, len(gs.geometries))
	for n := range gs.geometries {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		gs.backend.DestroyGeometry(gs.geometries[n])
		delete(gs.geometries, n)
	}
}

// Create uploads config and registers the result under config.Name.
func (gs *GeometrySystem) Create(config *metadata.GeometryConfig) (*metadata.Geometry, error) {
	if _, exists := gs.geometries[config.Name]; exists {
		return nil, fmt.Errorf("func Create - geometry '%s' already exists", config.Name)
	}
	if uint32(len(gs.geometries)) >= gs.Config.MaxGeometryCount {
		return nil, fmt.Errorf("func Create - geometry limit of %d reached, cannot create '%s'", gs.Config.MaxGeometryCount, config.Name)
	}
	g, err := gs.backend.CreateGeometry(config)
	if err != nil {
		return nil, err
	}
	gs.geometries[config.Name] = g
	return g, nil
}

func (gs *GeometrySystem) Get(name string) (*metadata.Geometry, bool) {
	g, ok := gs.geometries[name]
	return g, ok
}

func (gs *GeometrySystem) GetDefault() *metadata.Geometry {
	return gs.geometries[DefaultGeometryName]
}

// Corners of each cube face, listed so that (0, 1, 2) and (0, 3, 1) wind
// counter-clockwise seen from outside. Components are -1/+1 half extents.
var cubeFaces = [6][4][3]float32{
	{{-1, -1, 1}, {1, 1, 1}, {-1, 1, 1}, {1, -1, 1}},     // front
	{{1, -1, -1}, {-1, 1, -1}, {1, 1, -1}, {-1, -1, -1}}, // back
	{{-1, -1, -1}, {-1, 1, 1}, {-1, 1, -1}, {-1, -1, 1}}, // left
	{{1, -1, 1}, {1, 1, -1}, {1, 1, 1}, {1, -1, -1}},     // right
	{{1, -1, 1}, {-1, -1, -1}, {1, -1, -1}, {-1, -1, 1}}, // bottom
	{{-1, 1, 1}, {1, 1, -1}, {-1, 1, -1}, {1, 1, 1}},     // top
}

/**
 * @brief Builds a box of the given size centred on the origin, 4 vertices
 * and 6 indices per face, with flat normals and texture coordinates tiled
 * tileX by tileY times per face. Zero sizes default to one.
 */
func GenerateCubeConfig(width, height, depth, tileX, tileY float32, name string) *metadata.GeometryConfig {
	if width == 0 {
		core.LogWarn("Width must be nonzero. Defaulting to one.")
		width = 1.0
	}
	if height == 0 {
		core.LogWarn("Height must be nonzero. Defaulting to one.")
		height = 1.0
	}
	if depth == 0 {
		core.LogWarn("Depth must be nonzero. Defaulting to one.")
		depth = 1.0
	}
	if tileX == 0 {
		tileX = 1.0
	}
	if tileY == 0 {
		tileY = 1.0
	}
	if name == "" {
		name = DefaultGeometryName
	}

	half := math.NewVec3(width*0.5, height*0.5, depth*0.5)
	uvs := [4]math.Vec2{
		math.NewVec2(0, 0),
		math.NewVec2(tileX, tileY),
		math.NewVec2(0, tileY),
		math.NewVec2(tileX, 0),
	}

	config := &metadata.GeometryConfig{
		Name:     name,
		Vertices: make([]math.Vertex3D, 0, 4*6),
		Indices:  make([]uint32, 0, 6*6),
	}
	for f, face := range cubeFaces {
		for c, corner := range face {
			config.Vertices = append(config.Vertices, math.Vertex3D{
				Position: math.NewVec3(corner[0]*half.X, corner[1]*half.Y, corner[2]*half.Z),
				Texcoord: uvs[c],
			})
		}
		base := uint32(f * 4)
		config.Indices = append(config.Indices, base+0, base+1, base+2, base+0, base+3, base+1)
	}
	math.GeometryGenerateNormals(config.Vertices, config.Indices)
	return config
}
