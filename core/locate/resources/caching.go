package resources

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/npillmayer/facetype/core"
	"github.com/npillmayer/schuko"
)

// DownloadCachedFile will download a url to a local file (usually located in the
// user's cache directory). If client is nil, http.DefaultClient is used.
// Responses with a status other than 2xx are treated as errors and no
// file is written.
func DownloadCachedFile(ctx context.Context, client *http.Client, path string, url string) error {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return core.WrapError(err, core.EINVALID, "invalid download URL %s", url)
	}
	resp, err := client.Do(req)
	if err != nil {
		return core.WrapError(err, core.ECONNECTION, "cannot download %s", url)
	}
	defer resp.Body.Close()
	if err = checkStatus(resp, url); err != nil {
		return err
	}
	tmp := path + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return core.WrapError(err, core.EINTERNAL, "cannot create cache file %s", tmp)
	}
	_, err = io.Copy(out, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return core.WrapError(err, core.ECONNECTION, "download of %s interrupted", url)
	}
	tracer().Debugf("downloaded %s to %s", url, path)
	return os.Rename(tmp, path)
}

// storeCachedFile writes data to a file in a cache directory.
func storeCachedFile(path string, data []byte) {
	tmp := path + ".part"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		tracer().Errorf("cannot write cache file %s: %v", tmp, err)
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		tracer().Errorf("cannot move cache file to %s: %v", path, err)
	}
}

// isCached returns true if a non-empty file exists at path.
func isCached(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular() && fi.Size() > 0
}

// CacheDirPath checks and possibly creates a folder in the user's cache
// directory. The base cache directory is taken from `os.UserCacheDir()`, plus
// an application specific key, taken as `app-key` from the configuration.
// Clients may specify a sequence of folder names, which will be appended to
// the base cache path. Non-existing sub-folders will be created as necessary
// (with permissions 755).
func CacheDirPath(conf schuko.Configuration, subfolders ...string) (string, error) {
	appkey := conf.GetString("app-key")
	tracer().Debugf("config[%s] = %s", "app-key", appkey)
	if appkey == "" {
		return "", core.Error(core.EINVALID, "application key is not set, cannot locate cache")
	}
	cachedir, err := os.UserCacheDir()
	if err != nil {
		return "", core.WrapError(err, core.EMISSING, "user cache directory unknown")
	}
	subs := filepath.Join(subfolders...)
	cachedir = filepath.Join(cachedir, appkey, subs)
	tracer().Infof("caching in %s", cachedir)
	_, err = os.Stat(cachedir)
	if os.IsNotExist(err) {
		err = os.MkdirAll(cachedir, 0755)
		if err != nil {
			return "", core.WrapError(err, core.EINVALID, "cache directory cannot be created: %s", cachedir)
		}
	}
	return cachedir, nil
}
