package resources

import (
	"os"
	"path/filepath"

	"github.com/npillmayer/bmtext/core"
	"github.com/npillmayer/schuko"
)

// CacheDirPath checks and possibly creates a folder in the user's cache
// directory. The base cache directory is taken from `os.UserCacheDir()`, plus
// an application specific key, taken as `app-key` from the configuration.
// Clients may specify a sequence of folder names, which will be appended to
// the base cache path. Non-existing sub-folders will be created as necessary
// (with permissions 755).
func CacheDirPath(conf schuko.Configuration, subfolders ...string) (string, error) {
	if conf == nil || conf.GetString("app-key") == "" {
		return "", core.Error(core.EMISSING, "application key is not set")
	}
	cachedir, err := os.UserCacheDir()
	if err != nil {
		return "", core.WrapError(err, core.EMISSING, "no user cache directory")
	}
	cachedir = filepath.Join(append([]string{cachedir, conf.GetString("app-key")}, subfolders...)...)
	tracer().Debugf("caching in %s", cachedir)
	if _, err = os.Stat(cachedir); os.IsNotExist(err) {
		if err = os.MkdirAll(cachedir, 0755); err != nil {
			return "", core.WrapError(err, core.EINTERNAL, "cannot create cache directory")
		}
	}
	return cachedir, nil
}

// StoreInCache copies resource data into the user's cache directory, where
// Resolve… functions will find it from then on. Texture sheets are recognized
// by their file extension.
func StoreInCache(conf schuko.Configuration, name string, data []byte) (string, error) {
	rtype := fontResourceType
	switch filepath.Ext(name) {
	case ".png", ".bmp", ".tif", ".tiff":
		rtype = imageResourceType
	}
	dir, err := CacheDirPath(conf, rtype.cacheDir())
	if err != nil {
		return "", err
	}
	p := filepath.Join(dir, filepath.Base(name))
	if err = os.WriteFile(p, data, 0644); err != nil {
		return "", core.WrapError(err, core.EINTERNAL, "cannot write %s", p)
	}
	tracer().Infof("stored %s in cache", p)
	return p, nil
}
