// Package assets handles model and texture file loading and caching.
package assets

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"go.uber.org/zap"
	textenc "golang.org/x/text/encoding"

	"github.com/Faultbox/derky/internal/engine/model"
	"github.com/Faultbox/derky/internal/logger"
	"github.com/Faultbox/derky/pkg/encoding"
	"github.com/Faultbox/derky/pkg/formats"
)

// ErrNotFound is returned when no root contains the requested file.
var ErrNotFound = errors.New("asset not found")

// Options configures a Manager.
type Options struct {
	// Encoding is the charset of OBJ and MTL text. Nil means UTF-8.
	Encoding textenc.Encoding
	// Workers bounds parallel parsing in ParseOBJs. Zero means 4.
	Workers int
}

// Manager handles asset loading from directory roots.
type Manager struct {
	roots []fs.FS
	cache *Cache
	opts  Options
	mu    sync.RWMutex

	poolOnce sync.Once
	pool     worker.DynamicWorkerPool
}

// NewManager creates a new asset manager.
func NewManager(opts Options) *Manager {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	return &Manager{
		cache: NewCache(),
		opts:  opts,
	}
}

// AddRoot adds a directory to the manager.
// Roots are searched in reverse order (last added = highest priority).
func (m *Manager) AddRoot(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("opening root %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("opening root %s: not a directory", dir)
	}
	m.AddFS(os.DirFS(dir))
	return nil
}

// AddFS adds a file system root to the manager.
func (m *Manager) AddFS(fsys fs.FS) {
	m.mu.Lock()
	m.roots = append(m.roots, fsys)
	m.mu.Unlock()
}

// Load loads a file from the roots. Backslashes in name are treated as
// separators.
func (m *Manager) Load(name string) ([]byte, error) {
	name = path.Clean(encoding.NormalizePath(name))

	if data, ok := m.cache.Get(name); ok {
		return data, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.roots) - 1; i >= 0; i-- {
		data, err := fs.ReadFile(m.roots[i], name)
		if err == nil {
			m.cache.Set(name, data)
			return data, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Open implements model.Source.
func (m *Manager) Open(name string) (io.ReadCloser, error) {
	data, err := m.Load(name)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// ParseOBJ parses one OBJ file with its material libraries.
func (m *Manager) ParseOBJ(name string) (*formats.OBJ, error) {
	r, err := m.Open(name)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	p := model.NewParser(m, name)
	p.Encoding = m.opts.Encoding
	obj, err := p.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}

	for _, w := range obj.Warnings {
		logger.Debug("skipped OBJ statement",
			zap.String("file", name),
			zap.Int("line", w.Line),
			zap.String("keyword", w.Keyword))
	}
	return obj, nil
}

// ParseOBJs parses files in parallel. Results keep the order of names; the
// first error in that order is returned.
func (m *Manager) ParseOBJs(names []string) ([]*formats.OBJ, error) {
	m.poolOnce.Do(func() {
		m.pool = worker.NewDynamicWorkerPool(m.opts.Workers, 256, 1*time.Second)
	})

	objs := make([]*formats.OBJ, len(names))
	errs := make([]error, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		m.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				objs[i], errs[i] = m.ParseOBJ(name)
				return objs[i], errs[i]
			},
		})
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return objs, nil
}

// Close drops all roots and cached data.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.roots = nil
	m.cache.Clear()
}

// Cache is a simple in-memory cache for loaded assets.
type Cache struct {
	data map[string][]byte
	mu   sync.Mutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
