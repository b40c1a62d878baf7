package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/prism/engine/assets/loaders"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// Capacity of the change channel. Changes published while it is full are
// dropped with a warning; the next write to the same file is picked up.
const changeBufferSize = 64

type AssetInfo struct {
	Path       string
	Type       metadata.ResourceType
	LastLoaded time.Time
}

/**
 * @brief Indexes the asset directory, loads assets through the registered
 * loaders and watches the directory for changes. The watcher goroutine
 * never loads anything: it only publishes changed paths, which the render
 * thread collects with Changed.
 */
type AssetManager struct {
	baseDir string
	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader

	mutex sync.RWMutex

	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
	changes  chan string
}

func NewAssetManager() (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &AssetManager{
		assets:   make(map[string]AssetInfo),
		loaders:  make(map[metadata.ResourceType]Loader),
		fsnotify: fsWatch,
		changes:  make(chan string, changeBufferSize),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}, nil
}

func (am *AssetManager) Initialize(assetsDir string) error {
	abs, err := filepath.Abs(assetsDir)
	if err != nil {
		return err
	}
	am.baseDir = abs

	if err := am.addRecursive(abs); err != nil {
		return err
	}

	// Register loaders
	am.registerLoader(metadata.ResourceTypeShader, &loaders.ShaderLoader{})
	am.registerLoader(metadata.ResourceTypeImage, &loaders.TextureLoader{})
	am.registerLoader(metadata.ResourceTypeMaterial, &loaders.MaterialLoader{})

	go am.start()

	core.LogInfo("asset manager watching %s (%d assets indexed)", abs, len(am.assets))
	return nil
}

// Shutdown stops the watcher goroutine and waits for it to exit.
func (am *AssetManager) Shutdown() error {
	if am.isClosed {
		return nil
	}
	am.isClosed = true
	close(am.done)
	<-am.stopped
	return nil
}

// BaseDir returns the absolute asset directory.
func (am *AssetManager) BaseDir() string {
	return am.baseDir
}

// addRecursive starts watching the named directory and all sub-directories.
func (am *AssetManager) addRecursive(name string) error {
	if am.isClosed {
		return errors.New("asset watcher already closed")
	}
	return am.watchRecursive(name, false)
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

/**
 * @brief Resolves name to a file of the given type and loads it. Shaders
 * resolve to shaders/<name>.shadercfg, materials to materials/<name>.amt
 * and images to the first textures/<name>.<ext> that is indexed.
 */
func (am *AssetManager) LoadAsset(name string, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	path, err := am.resolve(name, resourceType)
	if err != nil {
		return nil, err
	}
	return am.LoadPath(path, params)
}

// LoadPath loads an indexed file with the loader registered for its type.
func (am *AssetManager) LoadPath(path string, params interface{}) (*metadata.Resource, error) {
	am.mutex.Lock()
	asset, exists := am.assets[path]
	if exists {
		// Update the loaded time
		asset.LastLoaded = time.Now()
		am.assets[path] = asset
	}
	am.mutex.Unlock()
	if !exists {
		return nil, fmt.Errorf("asset not found: %s", path)
	}

	loader, loaderExists := am.loaders[asset.Type]
	if !loaderExists {
		return nil, fmt.Errorf("no loader registered for asset type: %s", asset.Type)
	}

	res, err := loader.Load(path, params)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	if res.Name == "" {
		res.Name = AssetName(path)
	}
	return res, nil
}

func (am *AssetManager) resolve(name string, resourceType metadata.ResourceType) (string, error) {
	var candidates []string
	switch resourceType {
	case metadata.ResourceTypeShader:
		candidates = []string{filepath.Join(am.baseDir, "shaders", name+".shadercfg")}
	case metadata.ResourceTypeMaterial:
		candidates = []string{filepath.Join(am.baseDir, "materials", name+".amt")}
	case metadata.ResourceTypeImage:
		for _, ext := range loaders.ImageExtensions {
			candidates = append(candidates, filepath.Join(am.baseDir, "textures", name+ext))
		}
	default:
		return "", fmt.Errorf("unknown resource type %s", resourceType)
	}

	am.mutex.RLock()
	defer am.mutex.RUnlock()
	for _, c := range candidates {
		if _, ok := am.assets[c]; ok {
			return c, nil
		}
	}
	return "", fmt.Errorf("%s asset %q not found under %s", resourceType, name, am.baseDir)
}

// Assets returns every indexed path of the given type, sorted.
func (am *AssetManager) Assets(resourceType metadata.ResourceType) []string {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	var out []string
	for p, info := range am.assets {
		if info.Type == resourceType {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// Info returns the index entry for path.
func (am *AssetManager) Info(path string) (AssetInfo, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	info, ok := am.assets[path]
	return info, ok
}

/**
 * @brief Drains the paths changed since the last call, without blocking.
 * Each path is reported once even if it changed several times.
 */
func (am *AssetManager) Changed() []string {
	var out []string
	seen := make(map[string]struct{})
	for {
		select {
		case p := <-am.changes:
			if _, dup := seen[p]; !dup {
				seen[p] = struct{}{}
				out = append(out, p)
			}
		default:
			return out
		}
	}
}

func (am *AssetManager) publish(path string) {
	select {
	case am.changes <- path:
	default:
		core.LogWarn("asset change queue full, dropping change for %s", path)
	}
}

func (am *AssetManager) start() {
	defer close(am.stopped)
	for {
		select {

		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					if err := am.watchRecursive(e.Name, false); err != nil {
						core.LogWarn("failed to watch %s: %s", e.Name, err)
					}
				}
				continue
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				if am.handleFileEvent(e.Name) {
					am.publish(e.Name)
				}
			}
			if e.Op&fsnotify.Remove != 0 {
				am.removeAsset(e.Name)
			}

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", err)

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

// watchRecursive adds all directories under the given one to the watch list
// and indexes the files it finds.
func (am *AssetManager) watchRecursive(path string, unWatch bool) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if unWatch {
				return am.fsnotify.Remove(walkPath)
			}
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

// Handle the creation or modification of a file. Returns false for files
// of no known type.
func (am *AssetManager) handleFileEvent(path string) bool {
	assetType := DetermineAssetType(path)
	if assetType == metadata.ResourceTypeNone {
		return false
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.assets[path] = AssetInfo{
		Path: path,
		Type: assetType,
	}
	return true
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, path)
}

func DetermineAssetType(path string) metadata.ResourceType {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".shadercfg":
		return metadata.ResourceTypeShader
	case ".vert", ".frag", ".geom", ".glsl":
		return metadata.ResourceTypeShaderSource
	case ".amt":
		return metadata.ResourceTypeMaterial
	}
	for _, e := range loaders.ImageExtensions {
		if ext == e {
			return metadata.ResourceTypeImage
		}
	}
	return metadata.ResourceTypeNone
}

// AssetName is the file name without directory and extension.
func AssetName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
