package systems

import (
	"testing"

	"github.com/spaghettifunk/prism/engine/renderer/headless"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/stretchr/testify/require"
)

// Locations the headless device assigns to phongConfig's uniforms.
const (
	locModel        int32 = 0
	locNormalMatrix int32 = 1
	locDiffuse      int32 = 2
	locSpecular     int32 = 3
	locShininess    int32 = 4
	locIsFloor      int32 = 5
	locTint         int32 = 6
)

func phongConfig() *metadata.ShaderConfig {
	return &metadata.ShaderConfig{
		Name: "phong",
		Uniforms: []*metadata.ShaderUniformConfig{
			{Name: "model", Type: "mat4"},
			{Name: "normal_matrix", Type: "mat3"},
			{Name: "diffuse", Type: "sampler"},
			{Name: "specular", Type: "sampler"},
			{Name: "shininess", Type: "int"},
			{Name: "isFloor", Type: "bool"},
			{Name: "tint", Type: "vec3"},
		},
		Blocks: []string{LightsBlockName, CameraBlockName},
	}
}

func lightSourceConfig() *metadata.ShaderConfig {
	return &metadata.ShaderConfig{
		Name: "light_source",
		Uniforms: []*metadata.ShaderUniformConfig{
			{Name: "model", Type: "mat4"},
			{Name: "lightColor", Type: "vec3"},
		},
		Blocks: []string{CameraBlockName},
	}
}

type testRig struct {
	device    *headless.HeadlessRenderer
	shaders   *ShaderSystem
	textures  *TextureSystem
	materials *MaterialSystem
}

func newTestRig(t *testing.T, units uint32) *testRig {
	t.Helper()
	device := headless.New()
	require.NoError(t, device.Initialize(&metadata.RendererBackendConfig{Width: 800, Height: 600}))

	ts, err := NewTextureSystem(&TextureSystemConfig{MaxTextureCount: 64}, device, nil)
	require.NoError(t, err)
	ss, err := NewShaderSystem(&ShaderSystemConfig{MaxShaderCount: 8}, device, nil)
	require.NoError(t, err)
	ms, err := NewMaterialSystem(&MaterialSystemConfig{MaxMaterialCount: 16, MaxTextureUnits: units}, ss, ts, nil, device)
	require.NoError(t, err)

	_, err = ss.Create(phongConfig())
	require.NoError(t, err)
	_, err = ss.Create(lightSourceConfig())
	require.NoError(t, err)

	device.Reset()
	return &testRig{device: device, shaders: ss, textures: ts, materials: ms}
}

func (r *testRig) texture(t *testing.T, name string) *metadata.Texture {
	t.Helper()
	tex, err := r.textures.Create(name, solidImage(2, 128), 0)
	require.NoError(t, err)
	return tex
}

func (r *testRig) material(t *testing.T, name string, props *metadata.PropertySet) *Material {
	t.Helper()
	h, err := r.materials.Create(name, "phong", props)
	require.NoError(t, err)
	m, err := r.materials.Get(h)
	require.NoError(t, err)
	return m
}

// writes returns the uniform writes the device received for location loc.
func (r *testRig) writes(loc int32) []headless.Call {
	var out []headless.Call
	for _, c := range r.device.CallsOf(headless.OpSetUniform) {
		if c.Location == loc {
			out = append(out, c)
		}
	}
	return out
}
