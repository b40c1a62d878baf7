package assets

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const material = `
name = "phong"
shader = "phong"
[properties]
shininess = { int = 32 }
`

func newTestAssets(t *testing.T) (*AssetManager, string) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "materials"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "textures"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "materials", "phong.amt"), []byte(material), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), []byte("ignored"), 0o644))

	am, err := NewAssetManager()
	require.NoError(t, err)
	require.NoError(t, am.Initialize(dir))
	t.Cleanup(func() { _ = am.Shutdown() })
	return am, am.BaseDir()
}

func TestDetermineAssetType(t *testing.T) {
	assert.Equal(t, metadata.ResourceTypeShader, DetermineAssetType("a/phong.shadercfg"))
	assert.Equal(t, metadata.ResourceTypeShaderSource, DetermineAssetType("a/phong.frag"))
	assert.Equal(t, metadata.ResourceTypeMaterial, DetermineAssetType("floor.amt"))
	assert.Equal(t, metadata.ResourceTypeImage, DetermineAssetType("box.PNG"))
	assert.Equal(t, metadata.ResourceTypeImage, DetermineAssetType("box.webp"))
	assert.Equal(t, metadata.ResourceTypeNone, DetermineAssetType("notes.txt"))
	assert.Equal(t, "container2", AssetName("/x/textures/container2.png"))
}

func TestIndexAndLoad(t *testing.T) {
	am, dir := newTestAssets(t)

	assert.Equal(t, []string{filepath.Join(dir, "materials", "phong.amt")}, am.Assets(metadata.ResourceTypeMaterial))

	res, err := am.LoadAsset("phong", metadata.ResourceTypeMaterial, nil)
	require.NoError(t, err)
	cfg := res.Data.(*metadata.MaterialConfig)
	assert.Equal(t, "phong", cfg.ShaderName)
	assert.Equal(t, filepath.Join(dir, "materials", "phong.amt"), cfg.Path)

	info, ok := am.Info(cfg.Path)
	require.True(t, ok)
	assert.False(t, info.LastLoaded.IsZero())

	_, err = am.LoadAsset("missing", metadata.ResourceTypeMaterial, nil)
	assert.Error(t, err)
	_, err = am.LoadAsset("container", metadata.ResourceTypeImage, nil)
	assert.Error(t, err)
}

func TestChangedReportsWrites(t *testing.T) {
	am, dir := newTestAssets(t)
	assert.Empty(t, am.Changed())

	path := filepath.Join(dir, "materials", "phong.amt")
	require.NoError(t, os.WriteFile(path, []byte(material+"\nspecular = { float = 0.5 }\n"), 0o644))

	var changed []string
	require.Eventually(t, func() bool {
		changed = append(changed, am.Changed()...)
		return len(changed) > 0
	}, 5*time.Second, 20*time.Millisecond)
	assert.Contains(t, changed, path)
}

func TestShutdownIsIdempotent(t *testing.T) {
	am, _ := newTestAssets(t)
	require.NoError(t, am.Shutdown())
	require.NoError(t, am.Shutdown())
}
