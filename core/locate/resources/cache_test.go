package resources

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/bmtext/core"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheDir(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bmtext.resources")
	defer teardown()
	//
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	_, err := CacheDirPath(testconfig.Conf{}, "fonts")
	assert.Equal(t, core.EMISSING, core.Code(err), "cache needs an application key")
	//
	conf := testconfig.Conf{"app-key": "bmtext-test"}
	cachedir, err := CacheDirPath(conf, "fonts")
	require.NoError(t, err)
	fi, err := os.Stat(cachedir)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())
	assert.Equal(t, "fonts", filepath.Base(cachedir))
}

func TestResolveFromCache(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "bmtext.resources")
	defer teardown()
	//
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	conf := testconfig.Conf{"app-key": "bmtext-test"}
	_, err := ResolveFontData(conf, "cached.bmf").Data()
	require.Error(t, err)
	//
	p, err := StoreInCache(conf, "some/where/cached.bmf", []byte("font data"))
	require.NoError(t, err)
	assert.Equal(t, "cached.bmf", filepath.Base(p))
	data, err := ResolveFontData(conf, "cached.bmf").Data()
	require.NoError(t, err)
	assert.Equal(t, []byte("font data"), data)
	//
	_, err = StoreInCache(conf, "sheet.png", []byte("no png"))
	require.NoError(t, err)
	_, err = ResolveImage(conf, "sheet.png").Image()
	assert.Equal(t, core.EINVALID, core.Code(err), "cached sheet is found, but cannot be decoded")
}
