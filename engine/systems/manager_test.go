package systems

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/prism/engine/assets"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/headless"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testShaderConfig = `
name = "phong"
stages = ["vertex", "fragment"]
stagefiles = ["phong.vert", "phong.frag"]
blocks = ["Lights", "Camera"]

[[uniforms]]
name = "model"
type = "mat4"

[[uniforms]]
name = "diffuse"
type = "sampler"

[[uniforms]]
name = "shininess"
type = "int"
`

const testMaterial = `
name = "crate"
shader = "phong"
[properties]
diffuse = { texture = "container" }
shininess = { int = 32 }
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func writePNG(t *testing.T, path string, size int, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

type managerRig struct {
	sm     *SystemManager
	device *headless.HeadlessRenderer
	dir    string
}

func newManagerRig(t *testing.T) *managerRig {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "shaders", "phong.shadercfg"), testShaderConfig)
	writeFile(t, filepath.Join(dir, "shaders", "phong.vert"), "#version 410 core\nvoid main() {}\n")
	writeFile(t, filepath.Join(dir, "shaders", "phong.frag"), "#version 410 core\nvoid main() {}\n")
	writeFile(t, filepath.Join(dir, "materials", "crate.amt"), testMaterial)
	writePNG(t, filepath.Join(dir, "textures", "container.png"), 4, color.RGBA{R: 200, G: 120, B: 40, A: 255})

	am, err := assets.NewAssetManager()
	require.NoError(t, err)
	require.NoError(t, am.Initialize(dir))
	t.Cleanup(func() { _ = am.Shutdown() })

	device := headless.New()
	config := DefaultSystemManagerConfig()
	config.Backend.Width = 800
	config.Backend.Height = 600
	sm, err := NewSystemManager(config, device, am)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sm.Shutdown() })
	return &managerRig{sm: sm, device: device, dir: am.BaseDir()}
}

func (r *managerRig) frame(h metadata.MaterialHandle) *metadata.RenderPacket {
	return &metadata.RenderPacket{
		DeltaTime: 0.016,
		Camera:    r.sm.CameraSystem.State(),
		Lights:    []metadata.Light{metadata.NewPointLight(math.NewVec3(1, 1, 1))},
		Ambient:   metadata.NewAmbientLight(),
		Objects: []metadata.RenderObject{{
			Name:     "crate",
			Geometry: r.sm.GeometrySystem.GetDefault(),
			Material: h,
			Model:    math.NewMat4Identity(),
		}},
	}
}

func TestSystemManagerLoadsFromDisk(t *testing.T) {
	rig := newManagerRig(t)

	h, err := rig.sm.MaterialSystem.Acquire("crate")
	require.NoError(t, err)
	again, err := rig.sm.MaterialSystem.Acquire("crate")
	require.NoError(t, err)
	assert.Equal(t, h, again)

	mat, err := rig.sm.MaterialSystem.Get(h)
	require.NoError(t, err)
	assert.Equal(t, "phong", mat.Program().Shader.Name)
	diffuse, _ := mat.Properties().Get("diffuse")
	require.NotNil(t, diffuse.Texture())
	assert.Equal(t, "container", diffuse.Texture().Name)
	assert.Equal(t, uint32(4), diffuse.Texture().Width)

	require.NoError(t, rig.sm.DrawFrame(rig.frame(h)))
	assert.Equal(t, 1, rig.device.Count(headless.OpDraw))
	assert.Equal(t, uint64(3), rig.sm.RendererSystem.LastStats().UniformWrites)

	_, err = rig.sm.MaterialSystem.Acquire("missing")
	assert.Error(t, err)
}

func TestSystemManagerReloadsMaterial(t *testing.T) {
	rig := newManagerRig(t)
	h, err := rig.sm.MaterialSystem.Acquire("crate")
	require.NoError(t, err)
	require.NoError(t, rig.sm.DrawFrame(rig.frame(h)))

	path := filepath.Join(rig.dir, "materials", "crate.amt")
	writeFile(t, path, `
name = "crate"
shader = "phong"
[properties]
diffuse = { texture = "container" }
shininess = { int = 64 }
`)
	require.NoError(t, rig.sm.OnAssetChanged(path))

	rig.device.Reset()
	require.NoError(t, rig.sm.DrawFrame(rig.frame(h)))
	var shininess []int32
	for _, c := range rig.device.CallsOf(headless.OpSetUniform) {
		if c.Location == 2 {
			shininess = append(shininess, c.Value.Int())
		}
	}
	assert.Equal(t, []int32{64}, shininess)
	assert.Equal(t, uint64(1), rig.sm.RendererSystem.LastStats().UniformWrites)
}

func TestSystemManagerReloadsShader(t *testing.T) {
	rig := newManagerRig(t)
	h, err := rig.sm.MaterialSystem.Acquire("crate")
	require.NoError(t, err)
	require.NoError(t, rig.sm.DrawFrame(rig.frame(h)))
	program := rig.sm.ShaderSystem.Programs["phong"]
	assert.False(t, program.Uniforms.Contains(NormalMatrixUniformName))

	cfg := filepath.Join(rig.dir, "shaders", "phong.shadercfg")
	writeFile(t, cfg, testShaderConfig+`
[[uniforms]]
name = "normal_matrix"
type = "mat3"
`)
	rig.device.Reset()
	require.NoError(t, rig.sm.OnAssetChanged(cfg))
	assert.Equal(t, 1, rig.device.Count(headless.OpShaderCreate))
	assert.Equal(t, 1, rig.device.Count(headless.OpShaderDestroy))
	assert.Same(t, program, rig.sm.ShaderSystem.Programs["phong"])
	assert.True(t, program.Uniforms.Contains(NormalMatrixUniformName))

	// Everything is written again to the relinked program.
	rig.device.Reset()
	require.NoError(t, rig.sm.DrawFrame(rig.frame(h)))
	assert.Equal(t, 1, rig.device.Count(headless.OpShaderUse))
	assert.Equal(t, 2, rig.device.Count(headless.OpBindBlock))
	assert.Equal(t, 4, rig.device.Count(headless.OpSetUniform))

	// A stage source change relinks every program using it.
	rig.device.Reset()
	require.NoError(t, rig.sm.OnAssetChanged(filepath.Join(rig.dir, "shaders", "phong.frag")))
	assert.Equal(t, 1, rig.device.Count(headless.OpShaderCreate))

	// A broken config keeps the previous program.
	writeFile(t, cfg, `name = "phong"`)
	assert.Error(t, rig.sm.OnAssetChanged(cfg))
	assert.True(t, program.Uniforms.Contains(NormalMatrixUniformName))
}

func TestSystemManagerReloadsTexture(t *testing.T) {
	rig := newManagerRig(t)
	h, err := rig.sm.MaterialSystem.Acquire("crate")
	require.NoError(t, err)
	mat, err := rig.sm.MaterialSystem.Get(h)
	require.NoError(t, err)
	diffuse, _ := mat.Properties().Get("diffuse")
	tex := diffuse.Texture()
	id := tex.ID

	path := filepath.Join(rig.dir, "textures", "container.png")
	writePNG(t, path, 8, color.RGBA{R: 10, A: 255})
	require.NoError(t, rig.sm.OnAssetChanged(path))

	assert.Equal(t, uint32(1), tex.Generation)
	assert.Equal(t, uint32(8), tex.Width)
	assert.Equal(t, id, tex.ID)

	require.NoError(t, rig.sm.DrawFrame(rig.frame(h)))
	binds := rig.device.CallsOf(headless.OpTextureBind)
	require.NotEmpty(t, binds)
	assert.Same(t, tex, binds[len(binds)-1].Texture)
}

func TestSystemManagerTextureReloadFailureKeepsPrevious(t *testing.T) {
	rig := newManagerRig(t)
	h, err := rig.sm.MaterialSystem.Acquire("crate")
	require.NoError(t, err)
	mat, err := rig.sm.MaterialSystem.Get(h)
	require.NoError(t, err)
	diffuse, _ := mat.Properties().Get("diffuse")
	tex := diffuse.Texture()
	handle := tex.InternalData
	require.NotNil(t, handle)

	rig.device.FailTextureCreate = true
	path := filepath.Join(rig.dir, "textures", "container.png")
	writePNG(t, path, 8, color.RGBA{G: 10, A: 255})
	assert.Error(t, rig.sm.OnAssetChanged(path))

	assert.Equal(t, uint32(0), tex.Generation)
	assert.Equal(t, uint32(4), tex.Width)
	assert.Equal(t, handle, tex.InternalData)

	rig.device.FailTextureCreate = false
	rig.device.Reset()
	require.NoError(t, rig.sm.DrawFrame(rig.frame(h)))
	binds := rig.device.CallsOf(headless.OpTextureBind)
	require.NotEmpty(t, binds)
	assert.Same(t, tex, binds[len(binds)-1].Texture)
	assert.Equal(t, handle, binds[len(binds)-1].Texture.InternalData)
}

func TestSystemManagerIgnoresUnknownChanges(t *testing.T) {
	rig := newManagerRig(t)
	assert.NoError(t, rig.sm.OnAssetChanged(filepath.Join(rig.dir, "notes.txt")))
	assert.NoError(t, rig.sm.OnAssetChanged(filepath.Join(rig.dir, "materials", "unused.amt")))
	assert.NoError(t, rig.sm.OnAssetChanged(filepath.Join(rig.dir, "shaders", "other.shadercfg")))
	assert.NoError(t, rig.sm.OnAssetChanged(filepath.Join(rig.dir, "textures", "never.png")))
}

func TestSystemManagerResize(t *testing.T) {
	rig := newManagerRig(t)
	require.NoError(t, rig.sm.OnResize(1600, 800))
	p := rig.sm.CameraSystem.Projection()
	assert.InDelta(t, 2.0, p.Data[5]/p.Data[0], 1e-5)
	assert.Equal(t, uint32(1600), rig.device.Width)
}
