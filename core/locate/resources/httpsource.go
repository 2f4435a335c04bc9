package resources

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/npillmayer/facetype/core"
	"github.com/npillmayer/facetype/core/font/typeface"
)

// DefaultTimeout is the timeout of the HTTP client used by sources which
// are not given a client of their own.
const DefaultTimeout = 30 * time.Second

// HTTPSource fetches typeface-JSON files from a web server.
//
// A font named "Noto Serif" is requested as <BaseURL>/noto_serif.json.
// Responses must have a status of 2xx and a content type of
// application/json. If CacheDir is set, fetched definitions are kept there
// and subsequent loads will not touch the network.
type HTTPSource struct {
	BaseURL  *url.URL
	Client   *http.Client
	CacheDir string
}

// NewHTTPSource creates a source for a base URL. If client is nil, a client
// with DefaultTimeout is used.
func NewHTTPSource(base string, client *http.Client) (*HTTPSource, error) {
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, core.Error(core.EINVALID, "font service URL must be http(s), is %q", base)
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &HTTPSource{BaseURL: u, Client: client}, nil
}

// Load fetches and decodes the typeface file for name.
func (src *HTTPSource) Load(ctx context.Context, name string) (*typeface.Typeface, error) {
	fname := fontFileName(name)
	var cached string
	if src.CacheDir != "" {
		cached = filepath.Join(src.CacheDir, fname)
		if isCached(cached) {
			if f, err := os.Open(cached); err == nil {
				defer f.Close()
				tracer().Debugf("font %s found in cache", name)
				return typeface.Decode(f)
			}
		}
	}
	u := src.BaseURL.JoinPath(fname).String()
	data, err := src.fetch(ctx, u, name)
	if err != nil {
		return nil, err
	}
	tf, err := typeface.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if cached != "" {
		storeCachedFile(cached, data)
	}
	return tf, nil
}

func (src *HTTPSource) fetch(ctx context.Context, u string, name string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot create request for %s", u)
	}
	req.Header.Set("Accept", "application/json")
	tracer().Debugf("GET %s", u)
	resp, err := src.Client.Do(req)
	if err != nil {
		return nil, core.WrapError(err, core.ECONNECTION, "cannot load font %s from %s", name, u)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, NotFound(name)
	}
	if err = checkStatus(resp, u); err != nil {
		return nil, err
	}
	mediatype, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || mediatype != "application/json" {
		return nil, core.Error(core.EINVALID, "font service delivered %q instead of JSON for %s",
			resp.Header.Get("Content-Type"), name)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.WrapError(err, core.ECONNECTION, "cannot read response from %s", u)
	}
	return data, nil
}

func checkStatus(resp *http.Response, url string) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("response: %v", resp.Status)
		return core.WrapError(err, core.ECONNECTION, "request for %s failed with %s", url, resp.Status)
	}
	return nil
}

func (src *HTTPSource) String() string {
	return fmt.Sprintf("http[%s]", src.BaseURL)
}
