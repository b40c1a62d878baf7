package systems

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/spaghettifunk/prism/engine/assets"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type TextureSystemConfig struct {
	/** @brief The maximum number of textures that can be loaded at once. */
	MaxTextureCount uint32
}

type TextureSystem struct {
	Config *TextureSystemConfig
	// Hashtable for texture lookups by name.
	RegisteredTextures map[string]*metadata.Texture

	defaultTexture         *metadata.Texture
	defaultDiffuseTexture  *metadata.Texture
	defaultSpecularTexture *metadata.Texture
	// sub systems
	assetManager *assets.AssetManager
	backend      renderer.RendererBackend
}

func NewTextureSystem(config *TextureSystemConfig, backend renderer.RendererBackend, am *assets.AssetManager) (*TextureSystem, error) {
	if config.MaxTextureCount == 0 {
		err := fmt.Errorf("func NewTextureSystem - config.MaxTextureCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}

	ts := &TextureSystem{
		Config:             config,
		RegisteredTextures: make(map[string]*metadata.Texture),
		assetManager:       am,
		backend:            backend,
	}

	// Create default textures for use in the system.
	if err := ts.createDefaultTextures(); err != nil {
		return nil, err
	}
	return ts, nil
}

func (ts *TextureSystem) Shutdown() error {
	for _, name := range ts.names() {
		ts.backend.TextureDestroy(ts.RegisteredTextures[name])
		delete(ts.RegisteredTextures, name)
	}
	return nil
}

/**
 * @brief Uploads data as a new texture registered under name.
 */
func (ts *TextureSystem) Create(name string, data *metadata.ImageResourceData, flags metadata.TextureFlagBits) (*metadata.Texture, error) {
	if _, exists := ts.RegisteredTextures[name]; exists {
		err := fmt.Errorf("func Create - texture '%s' already exists", name)
		core.LogError(err.Error())
		return nil, err
	}
	if uint32(len(ts.RegisteredTextures)) >= ts.Config.MaxTextureCount {
		err := fmt.Errorf("func Create - texture limit of %d reached, cannot create '%s'", ts.Config.MaxTextureCount, name)
		core.LogError(err.Error())
		return nil, err
	}

	texture := &metadata.Texture{
		ID:           uuid.New(),
		Name:         name,
		Width:        data.Width,
		Height:       data.Height,
		ChannelCount: data.ChannelCount,
		Flags:        flags,
		Filter:       metadata.TextureFilterModeLinear,
		Repeat:       metadata.TextureRepeatRepeat,
	}
	if hasTransparency(data.Pixels) {
		texture.Flags |= metadata.TextureFlagBits(metadata.TextureFlagHasTransparency)
	}
	if err := ts.backend.TextureCreate(texture, data.Pixels); err != nil {
		core.LogError("func Create - failed to upload texture '%s': %s", name, err.Error())
		return nil, err
	}
	ts.RegisteredTextures[name] = texture
	return texture, nil
}

/**
 * @brief Returns the texture registered under name, loading it from
 * textures/<name>.<ext> on first use.
 */
func (ts *TextureSystem) Acquire(name string) (*metadata.Texture, error) {
	if t, ok := ts.RegisteredTextures[name]; ok {
		return t, nil
	}
	data, err := ts.loadImage(name)
	if err != nil {
		return nil, err
	}
	return ts.Create(name, data, 0)
}

func (ts *TextureSystem) Get(name string) (*metadata.Texture, bool) {
	t, ok := ts.RegisteredTextures[name]
	return t, ok
}

/**
 * @brief Re-reads the image behind name and re-uploads it into the same
 * Texture value. ID and pointer are kept, so materials referencing it pick
 * up the new pixels on their next bind; Generation is incremented. The new
 * pixels go to a staging texture first: if the upload fails the previous
 * device texture stays in place untouched.
 */
func (ts *TextureSystem) Reload(name string) (*metadata.Texture, error) {
	texture, ok := ts.RegisteredTextures[name]
	if !ok {
		return nil, fmt.Errorf("func Reload - no texture named '%s'", name)
	}
	if texture.Flags&metadata.TextureFlagBits(metadata.TextureFlagIsGenerated) != 0 {
		return texture, nil
	}
	data, err := ts.loadImage(name)
	if err != nil {
		return nil, err
	}

	staged := *texture
	staged.Width = data.Width
	staged.Height = data.Height
	staged.ChannelCount = data.ChannelCount
	staged.InternalData = nil
	if err := ts.backend.TextureCreate(&staged, data.Pixels); err != nil {
		core.LogError("func Reload - failed to upload texture '%s', keeping generation %d: %s", name, texture.Generation, err.Error())
		return nil, err
	}

	ts.backend.TextureDestroy(texture)
	texture.Width = staged.Width
	texture.Height = staged.Height
	texture.ChannelCount = staged.ChannelCount
	texture.InternalData = staged.InternalData
	texture.Generation++
	core.LogInfo("texture '%s' reloaded (generation %d)", name, texture.Generation)
	return texture, nil
}

func (ts *TextureSystem) loadImage(name string) (*metadata.ImageResourceData, error) {
	if ts.assetManager == nil {
		return nil, fmt.Errorf("func loadImage - no asset manager to load texture '%s' from", name)
	}
	res, err := ts.assetManager.LoadAsset(name, metadata.ResourceTypeImage, &metadata.ImageResourceParams{FlipY: true})
	if err != nil {
		core.LogError("func loadImage - failed to load image resource for texture '%s': %s", name, err.Error())
		return nil, err
	}
	data, ok := res.Data.(*metadata.ImageResourceData)
	if !ok {
		return nil, fmt.Errorf("func loadImage - resource '%s' is not an image", name)
	}
	return data, nil
}

func (ts *TextureSystem) GetDefaultTexture() *metadata.Texture {
	return ts.defaultTexture
}

func (ts *TextureSystem) GetDefaultDiffuseTexture() *metadata.Texture {
	return ts.defaultDiffuseTexture
}

func (ts *TextureSystem) GetDefaultSpecularTexture() *metadata.Texture {
	return ts.defaultSpecularTexture
}

func (ts *TextureSystem) createDefaultTextures() error {
	// NOTE: Create default texture, a 256x256 blue/white checkerboard pattern.
	// This is done in code to eliminate asset dependencies.
	const texDimension = 256
	pixels := make([]uint8, texDimension*texDimension*4)
	for i := range pixels {
		pixels[i] = 255
	}
	for row := 0; row < texDimension; row++ {
		for col := 0; col < texDimension; col++ {
			if (row%2 == 0) == (col%2 == 0) {
				idx := (row*texDimension + col) * 4
				pixels[idx+0] = 0
				pixels[idx+1] = 0
			}
		}
	}

	var err error
	generated := metadata.TextureFlagBits(metadata.TextureFlagIsGenerated)
	ts.defaultTexture, err = ts.Create(metadata.DEFAULT_TEXTURE_NAME, &metadata.ImageResourceData{
		ChannelCount: 4, Width: texDimension, Height: texDimension, Pixels: pixels,
	}, generated)
	if err != nil {
		return err
	}

	// Default diffuse map is all white.
	ts.defaultDiffuseTexture, err = ts.Create(metadata.DEFAULT_DIFFUSE_TEXTURE_NAME, solidImage(16, 255), generated)
	if err != nil {
		return err
	}

	// Default specular map is black (no specular)
	ts.defaultSpecularTexture, err = ts.Create(metadata.DEFAULT_SPECULAR_TEXTURE_NAME, solidImage(16, 0), generated)
	return err
}

// solidImage returns a square RGBA image with every colour channel set to v.
func solidImage(dim uint32, v uint8) *metadata.ImageResourceData {
	pixels := make([]uint8, dim*dim*4)
	for i := 0; i < len(pixels); i += 4 {
		pixels[i+0] = v
		pixels[i+1] = v
		pixels[i+2] = v
		pixels[i+3] = 255
	}
	return &metadata.ImageResourceData{ChannelCount: 4, Width: dim, Height: dim, Pixels: pixels}
}

func hasTransparency(pixels []uint8) bool {
	for i := 3; i < len(pixels); i += 4 {
		if pixels[i] < 255 {
			return true
		}
	}
	return false
}

func (ts *TextureSystem) names() []string {
	names := make([]string, 0, len(ts.RegisteredTextures))
	for n := range ts.RegisteredTextures {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
