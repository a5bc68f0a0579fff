// Package assets handles MD5 asset loading and caching over directories and
// .pk4 archives.
package assets

import (
	"os"
	"path"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/md5kit/internal/engine/model"
	"github.com/Faultbox/md5kit/internal/logger"
	"github.com/Faultbox/md5kit/pkg/formats"
	"github.com/Faultbox/md5kit/pkg/pk4"
)

// ErrNotFound is returned when no source contains a path.
var ErrNotFound = errors.New("asset not found")

// Manager handles asset loading from directories and .pk4 archives.
// Parsed meshes and animations are cached and shared read-only by every
// model instance created from them.
type Manager struct {
	sources []source
	mu      sync.RWMutex

	files  *Cache[[]byte]
	meshes *Cache[*formats.MD5Mesh]
	anims  *Cache[*formats.MD5Anim]
}

// NewManager creates a new asset manager.
func NewManager() *Manager {
	return &Manager{
		files:  NewCache[[]byte](),
		meshes: NewCache[*formats.MD5Mesh](),
		anims:  NewCache[*formats.MD5Anim](),
	}
}

// AddArchive adds a directory or .pk4 archive to the manager.
// Sources are searched in reverse order (last added = highest priority).
func (m *Manager) AddArchive(p string) error {
	info, err := os.Stat(p)
	if err != nil {
		return errors.Wrapf(err, "adding source %s", p)
	}

	var src source
	if info.IsDir() {
		src = &dirSource{root: p}
	} else {
		archive, err := pk4.Open(p)
		if err != nil {
			return errors.Wrapf(err, "opening archive %s", p)
		}
		src = archiveSource{archive}
	}

	m.mu.Lock()
	m.sources = append(m.sources, src)
	m.mu.Unlock()

	// A new source may shadow cached files
	m.Clear()

	logger.Debug("asset source added", zap.String("path", p), zap.Bool("dir", info.IsDir()))
	return nil
}

// Sources returns the source paths in search order, highest priority first.
func (m *Manager) Sources() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]string, 0, len(m.sources))
	for i := len(m.sources) - 1; i >= 0; i-- {
		result = append(result, m.sources[i].String())
	}
	return result
}

// Contains reports whether any source holds p.
func (m *Manager) Contains(p string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, src := range m.sources {
		if src.Contains(p) {
			return true
		}
	}
	return false
}

// List returns every file path with the given extension (e.g. ".md5mesh")
// across all sources. An empty ext lists everything.
func (m *Manager) List(ext string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	var result []string
	for _, src := range m.sources {
		for _, f := range src.List() {
			if seen[f] || (ext != "" && path.Ext(f) != ext) {
				continue
			}
			seen[f] = true
			result = append(result, f)
		}
	}
	return result
}

// Load loads a file from the sources.
func (m *Manager) Load(p string) ([]byte, error) {
	key := pk4.NormalizePath(p)

	// Check cache first
	if data, ok := m.files.Get(key); ok {
		return data, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	// Search sources in reverse order
	for i := len(m.sources) - 1; i >= 0; i-- {
		if !m.sources[i].Contains(p) {
			continue
		}
		data, err := m.sources[i].Read(p)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s from %s", p, m.sources[i])
		}
		m.files.Set(key, data)
		return data, nil
	}

	return nil, errors.Wrapf(ErrNotFound, "loading %s", p)
}

// LoadMesh loads and parses an .md5mesh file. Parse failures are logged and
// returned; they are never cached.
func (m *Manager) LoadMesh(p string) (*formats.MD5Mesh, error) {
	key := pk4.NormalizePath(p)
	if mesh, ok := m.meshes.Get(key); ok {
		return mesh, nil
	}

	data, err := m.Load(p)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	mesh, err := formats.ParseMD5Mesh(data)
	if err != nil {
		logger.Warn("mesh unusable", zap.String("path", p), zap.Error(err))
		return nil, errors.Wrapf(err, "parsing mesh %s", p)
	}
	logger.Debug("mesh parsed",
		zap.String("path", p),
		zap.Int("surfaces", len(mesh.Meshes)),
		zap.Int("vertices", mesh.VertexCount()),
		zap.Duration("took", time.Since(start)))

	m.meshes.Set(key, mesh)
	return mesh, nil
}

// LoadAnim loads and parses an .md5anim file. Parse failures are logged and
// returned; they are never cached.
func (m *Manager) LoadAnim(p string) (*formats.MD5Anim, error) {
	key := pk4.NormalizePath(p)
	if anim, ok := m.anims.Get(key); ok {
		return anim, nil
	}

	data, err := m.Load(p)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	anim, err := formats.ParseMD5Anim(data)
	if err != nil {
		logger.Warn("animation unusable", zap.String("path", p), zap.Error(err))
		return nil, errors.Wrapf(err, "parsing animation %s", p)
	}
	logger.Debug("animation parsed",
		zap.String("path", p),
		zap.Int("frames", anim.NumFrames()),
		zap.Int("frameRate", anim.FrameRate),
		zap.Duration("took", time.Since(start)))

	m.anims.Set(key, anim)
	return anim, nil
}

// LoadModel creates a new model instance from an .md5mesh file. The parsed
// mesh is shared with other instances of the same path.
func (m *Manager) LoadModel(p string, opts model.Options) (*model.Model, error) {
	mesh, err := m.LoadMesh(p)
	if err != nil {
		return nil, err
	}

	opts.ModelPath = p
	if opts.Filename == "" {
		opts.Filename = path.Base(pk4.NormalizePath(p))
	}
	return model.NewModel(mesh, opts), nil
}

// Invalidate drops every cached entry for p and reports whether one existed.
func (m *Manager) Invalidate(p string) bool {
	key := pk4.NormalizePath(p)

	dropped := m.files.Delete(key)
	dropped = m.meshes.Delete(key) || dropped
	dropped = m.anims.Delete(key) || dropped
	if dropped {
		logger.Debug("asset invalidated", zap.String("path", key))
	}
	return dropped
}

// Stats returns the hit and miss counts of the raw file cache.
func (m *Manager) Stats() (hits, misses int) {
	return m.files.Stats()
}

// Clear empties all caches.
func (m *Manager) Clear() {
	m.files.Clear()
	m.meshes.Clear()
	m.anims.Clear()
}

// Close closes all sources.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, src := range m.sources {
		if err := src.Close(); err != nil {
			logger.Warn("closing asset source", zap.String("source", src.String()), zap.Error(err))
		}
	}
	m.sources = nil
	m.Clear()
}

// dirSources returns the directory sources, for watching.
func (m *Manager) dirSources() []*dirSource {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var dirs []*dirSource
	for _, src := range m.sources {
		if d, ok := src.(*dirSource); ok {
			dirs = append(dirs, d)
		}
	}
	return dirs
}
