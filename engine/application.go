package engine

import (
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/systems"
)

type ApplicationSection struct {
	// The application name used in windowing, if applicable.
	Name string `toml:"name"`
	// Window starting position x axis, if applicable.
	StartPosX uint32 `toml:"start_x"`
	// Window starting position y axis, if applicable.
	StartPosY uint32 `toml:"start_y"`
	// Window starting width, if applicable.
	StartWidth uint32 `toml:"width"`
	// Window starting height, if applicable.
	StartHeight uint32 `toml:"height"`
	LogLevel    string `toml:"log_level"`
	AssetsDir   string `toml:"assets_dir"`
	// Stop after this many frames. 0 runs until the application quits.
	Frames uint64 `toml:"frames"`
}

type LightsSection struct {
	MaxDirectional int `toml:"max_directional"`
	MaxPoint       int `toml:"max_point"`
	MaxSpot        int `toml:"max_spot"`
}

type RendererSection struct {
	Backend         metadata.RendererBackendType `toml:"backend"`
	MaxTextureUnits uint32                       `toml:"max_texture_units"`
	ClearColor      [4]float32                   `toml:"clear_color"`
	VSync           bool                         `toml:"vsync"`
	Wireframe       bool                         `toml:"wireframe"`
	Lights          LightsSection                `toml:"lights"`
}

/** @brief The contents of prism.toml. */
type ApplicationConfig struct {
	Application ApplicationSection `toml:"application"`
	Renderer    RendererSection    `toml:"renderer"`
}

func DefaultApplicationConfig() *ApplicationConfig {
	limits := systems.DefaultLightLimits()
	return &ApplicationConfig{
		Application: ApplicationSection{
			Name:        "Prism Testbed",
			StartPosX:   100,
			StartPosY:   100,
			StartWidth:  1280,
			StartHeight: 720,
			LogLevel:    "info",
			AssetsDir:   "assets",
		},
		Renderer: RendererSection{
			Backend:         metadata.RendererBackendOpenGL,
			MaxTextureUnits: systems.DefaultMaxTextureUnits,
			ClearColor:      [4]float32{0.1, 0.1, 0.1, 1.0},
			VSync:           true,
			Lights: LightsSection{
				MaxDirectional: limits.Directional,
				MaxPoint:       limits.Point,
				MaxSpot:        limits.Spot,
			},
		},
	}
}

// SystemManagerConfig derives the capacities of every engine system.
func (c *ApplicationConfig) SystemManagerConfig() *systems.SystemManagerConfig {
	sm := systems.DefaultSystemManagerConfig()
	cc := c.Renderer.ClearColor
	sm.Backend = &metadata.RendererBackendConfig{
		ApplicationName: c.Application.Name,
		Width:           c.Application.StartWidth,
		Height:          c.Application.StartHeight,
		ClearColour:     math.NewVec4(cc[0], cc[1], cc[2], cc[3]),
		VSync:           c.Renderer.VSync,
	}
	sm.MaxTextureUnits = c.Renderer.MaxTextureUnits
	sm.Lights = systems.LightLimits{
		Directional: c.Renderer.Lights.MaxDirectional,
		Point:       c.Renderer.Lights.MaxPoint,
		Spot:        c.Renderer.Lights.MaxSpot,
	}
	return sm
}
