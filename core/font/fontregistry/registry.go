package fontregistry

import (
	"image"
	"path"
	"strings"
	"sync"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/npillmayer/bmtext/core"
	"github.com/npillmayer/bmtext/core/font/bmf"
	"github.com/npillmayer/bmtext/core/locate/resources"
	"github.com/npillmayer/schuko/tracing"
)

// Loader delivers the raw resources a registry caches.
// resources.Loader is the default implementation.
type Loader interface {
	FontData(name string) ([]byte, error)
	Texture(name string) (image.Image, error)
}

// Texture is a loaded texture sheet, the material handle of a bitmap font.
type Texture struct {
	Name          string      // normalized name the texture is cached under
	Image         image.Image // decoded sheet
	Width, Height int         // pixel dimensions of Image
}

type entry struct {
	refs  int
	value interface{} // *bmf.Font or *Texture
}

// Registry is a type for holding loaded bitmap fonts and their texture sheets.
type Registry struct {
	sync.Mutex
	loader   Loader
	fonts    *treemap.Map // normalized name → *entry
	textures *treemap.Map // normalized name → *entry
}

var globalFontRegistry *Registry

var globalRegistryCreation sync.Once

// GlobalRegistry is an application-wide singleton to hold information about
// loaded fonts and textures. It resolves resources without configuration,
// i.e. from paths as given and from packaged resources.
func GlobalRegistry() *Registry {
	globalRegistryCreation.Do(func() {
		globalFontRegistry = NewRegistry(resources.NewLoader(nil))
	})
	return globalFontRegistry
}

// NewRegistry creates an empty registry, loading resources with loader.
func NewRegistry(loader Loader) *Registry {
	if loader == nil {
		loader = resources.NewLoader(nil)
	}
	return &Registry{
		loader:   loader,
		fonts:    treemap.NewWithStringComparator(),
		textures: treemap.NewWithStringComparator(),
	}
}

// LoadData returns the decoded font table for name and increments its
// reference count. Malformed data is never cached; the error carries code
// core.EINVALID.
//
// Loading and decoding run without holding the registry lock. If another
// goroutine caches the same font meanwhile, its table is returned.
func (fr *Registry) LoadData(name string) (*bmf.Font, error) {
	key := NormalizeName(name)
	if v, ok := fr.acquire(fr.fonts, key, "font"); ok {
		return v.(*bmf.Font), nil
	}
	data, err := fr.loader.FontData(name)
	if err != nil {
		return nil, err
	}
	f, err := bmf.Parse(data)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot load font %s", name)
	}
	tracer().Infof("registry caches font %s with %d glyphs", key, f.Len())
	return fr.insert(fr.fonts, key, f, "font").(*bmf.Font), nil
}

// LoadTexture returns the texture sheet at path p and increments its
// reference count. Like LoadData, decoding runs without holding the lock.
func (fr *Registry) LoadTexture(p string) (*Texture, error) {
	key := NormalizeName(p)
	if v, ok := fr.acquire(fr.textures, key, "texture"); ok {
		return v.(*Texture), nil
	}
	img, err := fr.loader.Texture(p)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	tex := &Texture{Name: key, Image: img, Width: b.Dx(), Height: b.Dy()}
	tracer().Infof("registry caches texture %s (%dx%d)", key, tex.Width, tex.Height)
	return fr.insert(fr.textures, key, tex, "texture").(*Texture), nil
}

// UnloadData releases one reference to the font table for name.
func (fr *Registry) UnloadData(name string) {
	fr.release(fr.fonts, NormalizeName(name), "font")
}

// UnloadTexture releases one reference to the texture sheet at path p.
func (fr *Registry) UnloadTexture(p string) {
	fr.release(fr.textures, NormalizeName(p), "texture")
}

// RefCount returns the number of references held for a font table.
func (fr *Registry) RefCount(name string) int {
	fr.Lock()
	defer fr.Unlock()
	if e, ok := fr.lookup(fr.fonts, NormalizeName(name)); ok {
		return e.refs
	}
	return 0
}

// TextureRefCount returns the number of references held for a texture sheet.
func (fr *Registry) TextureRefCount(p string) int {
	fr.Lock()
	defer fr.Unlock()
	if e, ok := fr.lookup(fr.textures, NormalizeName(p)); ok {
		return e.refs
	}
	return 0
}

// Len returns the number of cached fonts and textures.
func (fr *Registry) Len() (fonts int, textures int) {
	fr.Lock()
	defer fr.Unlock()
	return fr.fonts.Size(), fr.textures.Size()
}

// LogCacheList is a helper function to dump the list of cached fonts and
// textures to the trace (log-level Info), ordered by name.
func (fr *Registry) LogCacheList() {
	fr.Lock()
	defer fr.Unlock()
	level := tracer().GetTraceLevel()
	tracer().SetTraceLevel(tracing.LevelInfo)
	defer tracer().SetTraceLevel(level)
	tracer().Infof("--- cached fonts ---")
	for it := fr.fonts.Iterator(); it.Next(); {
		e := it.Value().(*entry)
		tracer().Infof("font [%s] refs=%d glyphs=%d", it.Key(), e.refs, e.value.(*bmf.Font).Len())
	}
	for it := fr.textures.Iterator(); it.Next(); {
		e := it.Value().(*entry)
		tex := e.value.(*Texture)
		tracer().Infof("texture [%s] refs=%d %dx%d", it.Key(), e.refs, tex.Width, tex.Height)
	}
	tracer().Infof("--------------------")
}

func (fr *Registry) lookup(m *treemap.Map, key string) (*entry, bool) {
	if v, found := m.Get(key); found {
		return v.(*entry), true
	}
	return nil, false
}

// acquire increments the reference count of a cached entry.
func (fr *Registry) acquire(m *treemap.Map, key string, kind string) (interface{}, bool) {
	fr.Lock()
	defer fr.Unlock()
	e, ok := fr.lookup(m, key)
	if !ok {
		return nil, false
	}
	e.refs++
	tracer().Debugf("registry found %s %s, references = %d", kind, key, e.refs)
	return e.value, true
}

// insert caches a freshly loaded value with one reference. If the key has
// been cached in the meantime, the cached value wins and value is dropped.
func (fr *Registry) insert(m *treemap.Map, key string, value interface{}, kind string) interface{} {
	fr.Lock()
	defer fr.Unlock()
	if e, ok := fr.lookup(m, key); ok {
		e.refs++
		tracer().Debugf("registry %s %s loaded concurrently, references = %d", kind, key, e.refs)
		return e.value
	}
	m.Put(key, &entry{refs: 1, value: value})
	return value
}

func (fr *Registry) release(m *treemap.Map, key string, kind string) {
	fr.Lock()
	defer fr.Unlock()
	e, ok := fr.lookup(m, key)
	if !ok {
		tracer().Errorf("registry cannot release unknown %s %s", kind, key)
		return
	}
	e.refs--
	if e.refs <= 0 {
		tracer().Infof("registry evicts %s %s", kind, key)
		m.Remove(key)
		return
	}
	tracer().Debugf("registry released %s %s, references = %d", kind, key, e.refs)
}

// NormalizeName cleans a resource path to be used as a cache key.
// Backslashes are treated as path separators and the result is lower case.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Clean(name)
	return strings.ToLower(name)
}
