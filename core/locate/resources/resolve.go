package resources

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"image"
	"os"
	"path"
	"path/filepath"
	"strings"

	// image formats for texture sheets
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/flopp/go-findfont"
	"github.com/npillmayer/bmtext/core"
	"github.com/npillmayer/schuko"
)

type resourceType int

// resource types
const (
	unknownResourceType resourceType = iota
	fontResourceType
	imageResourceType
)

func (rt resourceType) searchKey() string {
	switch rt {
	case fontResourceType:
		return "font-path"
	case imageResourceType:
		return "image-path"
	}
	return ""
}

func (rt resourceType) cacheDir() string {
	switch rt {
	case fontResourceType:
		return "fonts"
	case imageResourceType:
		return "images"
	}
	return ""
}

func (rt resourceType) packagedDir() string {
	switch rt {
	case fontResourceType:
		return "packaged/fonts"
	case imageResourceType:
		return "packaged/images"
	}
	return "packaged"
}

// NotFound returns an application error for a missing resource.
func NotFound(res string, rtype resourceType) error {
	e := fmt.Errorf("resource missing: %v", res)
	var s string
	switch rtype {
	case imageResourceType:
		s = fmt.Sprintf("texture image not found: %s", res)
	case fontResourceType:
		s = fmt.Sprintf("font data not found: %s", res)
	default:
		s = fmt.Sprintf("resource not found: %s", res)
	}
	return core.WrapError(e, core.EMISSING, s)
}

//go:embed packaged/*
var packaged embed.FS

// --- Font data -------------------------------------------------------------

type dataPlusErr struct {
	data []byte
	err  error
}

// DataPromise delivers the bytes of a resolved resource.
type DataPromise interface {
	Data() ([]byte, error)
	Await(ctx context.Context) ([]byte, error)
}

type dataLoader struct {
	await func(ctx context.Context) ([]byte, error)
}

func (loader dataLoader) Data() ([]byte, error) {
	return loader.await(context.Background())
}

func (loader dataLoader) Await(ctx context.Context) ([]byte, error) {
	return loader.await(ctx)
}

// ResolveFontData resolves the binary data of a bitmap font. conf may be nil,
// in which case only the name itself, packaged fonts and system fonts are
// considered.
func ResolveFontData(conf schuko.Configuration, name string) DataPromise {
	ch := make(chan dataPlusErr, 1)
	go func(ch chan<- dataPlusErr) {
		result := dataPlusErr{}
		result.data, result.err = readResource(conf, name, fontResourceType)
		if result.err != nil {
			if fpath, err := findfont.Find(name); err == nil && fpath != "" {
				tracer().Debugf("%s found in system font directories", name)
				result.data, result.err = os.ReadFile(fpath)
			}
		}
		ch <- result
		close(ch)
	}(ch)
	return dataLoader{
		await: func(ctx context.Context) ([]byte, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case r := <-ch:
				return r.data, r.err
			}
		},
	}
}

// --- Images ---------------------------------------------------------------

type imgPlusErr struct {
	img image.Image
	err error
}

// ImagePromise delivers a decoded texture image.
type ImagePromise interface {
	Image() (image.Image, error)
	Await(ctx context.Context) (image.Image, error)
}

type imageLoader struct {
	await func(ctx context.Context) (image.Image, error)
}

func (loader imageLoader) Image() (image.Image, error) {
	return loader.await(context.Background())
}

func (loader imageLoader) Await(ctx context.Context) (image.Image, error) {
	return loader.await(ctx)
}

// ResolveImage resolves and decodes a texture sheet. Supported formats are
// PNG, BMP and TIFF.
func ResolveImage(conf schuko.Configuration, name string) ImagePromise {
	ch := make(chan imgPlusErr, 1)
	go func(ch chan<- imgPlusErr) {
		result := imgPlusErr{}
		var data []byte
		if data, result.err = readResource(conf, name, imageResourceType); result.err == nil {
			var format string
			result.img, format, result.err = image.Decode(bytes.NewReader(data))
			if result.err != nil {
				result.err = core.WrapError(result.err, core.EINVALID, "cannot decode texture image %s", name)
			} else {
				tracer().Debugf("decoded %s image %s", format, name)
			}
		}
		ch <- result
		close(ch)
	}(ch)
	return imageLoader{
		await: func(ctx context.Context) (image.Image, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case r := <-ch:
				return r.img, r.err
			}
		},
	}
}

// --- Loader ----------------------------------------------------------------

// Loader loads resources synchronously, using a configuration for search paths.
type Loader struct {
	conf schuko.Configuration
}

// NewLoader creates a loader. conf may be nil.
func NewLoader(conf schuko.Configuration) *Loader {
	return &Loader{conf: conf}
}

// FontData returns the binary data of a bitmap font.
func (l *Loader) FontData(name string) ([]byte, error) {
	return ResolveFontData(l.conf, name).Data()
}

// Texture returns a decoded texture sheet.
func (l *Loader) Texture(name string) (image.Image, error) {
	return ResolveImage(l.conf, name).Image()
}

// --- Helpers ---------------------------------------------------------------

func readResource(conf schuko.Configuration, name string, rtype resourceType) ([]byte, error) {
	if name == "" {
		return nil, NotFound("<empty name>", rtype)
	}
	for _, candidate := range candidatePaths(conf, name, rtype) {
		if fi, err := os.Stat(candidate); err == nil && fi.Mode().IsRegular() {
			tracer().Debugf("resource %s found at %s", name, candidate)
			data, err := os.ReadFile(candidate)
			if err != nil {
				return nil, core.WrapError(err, core.EMISSING, "cannot read %s", candidate)
			}
			return data, nil
		}
	}
	p := path.Join(rtype.packagedDir(), path.Base(filepath.ToSlash(name)))
	if data, err := packaged.ReadFile(p); err == nil {
		tracer().Debugf("resource %s found as packaged file %s", name, p)
		return data, nil
	}
	tracer().Infof("resource %s not found", name)
	return nil, NotFound(name, rtype)
}

func candidatePaths(conf schuko.Configuration, name string, rtype resourceType) []string {
	candidates := []string{name}
	if conf == nil || filepath.IsAbs(name) {
		return candidates
	}
	for _, dir := range filepath.SplitList(conf.GetString(rtype.searchKey())) {
		if dir = strings.TrimSpace(dir); dir == "" {
			continue
		}
		candidates = append(candidates, filepath.Join(dir, name))
		if base := filepath.Base(name); base != name {
			candidates = append(candidates, filepath.Join(dir, base))
		}
	}
	if conf.GetString("app-key") != "" {
		if dir, err := CacheDirPath(conf, rtype.cacheDir()); err == nil {
			candidates = append(candidates, filepath.Join(dir, filepath.Base(name)))
		}
	}
	return candidates
}
