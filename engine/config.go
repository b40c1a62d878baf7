package engine

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

/**
 * @brief Reads the TOML file at path over the defaults. Keys the file does
 * not set keep their default; unknown keys are an error.
 */
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseApplicationConfig(data)
}

func ParseApplicationConfig(data []byte) (*ApplicationConfig, error) {
	config := DefaultApplicationConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(config); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("config: %s", strict.String())
		}
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects settings no engine could start with.
func (c *ApplicationConfig) Validate() error {
	var errs []error
	if c.Application.StartWidth == 0 || c.Application.StartHeight == 0 {
		errs = append(errs, fmt.Errorf("application size %dx%d must be non-zero", c.Application.StartWidth, c.Application.StartHeight))
	}
	if _, err := log.ParseLevel(c.Application.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("application log_level: %w", err))
	}
	if c.Application.AssetsDir == "" {
		errs = append(errs, errors.New("application assets_dir is required"))
	}
	switch c.Renderer.Backend {
	case metadata.RendererBackendOpenGL:
	case metadata.RendererBackendHeadless:
		if c.Application.Frames == 0 {
			errs = append(errs, errors.New("the headless backend needs a frame count"))
		}
	default:
		errs = append(errs, fmt.Errorf("renderer backend %q is not one of opengl, headless", c.Renderer.Backend))
	}
	if c.Renderer.MaxTextureUnits == 0 {
		errs = append(errs, errors.New("renderer max_texture_units must be > 0"))
	}
	l := c.Renderer.Lights
	if l.MaxDirectional <= 0 || l.MaxPoint <= 0 || l.MaxSpot <= 0 {
		errs = append(errs, fmt.Errorf("renderer lights maxima (%d, %d, %d) must be > 0", l.MaxDirectional, l.MaxPoint, l.MaxSpot))
	}
	if err := errors.Join(errs...); err != nil {
		core.LogError("invalid configuration: %s", err.Error())
		return err
	}
	return nil
}
