package resources

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/npillmayer/facetype/core"
	"github.com/npillmayer/facetype/core/font"
	"github.com/npillmayer/facetype/core/font/sfntconv"
	"github.com/npillmayer/facetype/core/font/typeface"
)

// ConfGoogleAPIKey is the configuration key for the Google Fonts API key.
// If it is not set, the environment variable GOOGLE_API_KEY is consulted.
const ConfGoogleAPIKey = "google-api-key"

// GoogleFontsAPI is the endpoint of the Google Fonts developer API.
const GoogleFontsAPI = `https://www.googleapis.com/webfonts/v1/webfonts`

// GoogleFontInfo describes a font family of the Google Fonts service.
type GoogleFontInfo struct {
	Family   string            `json:"family"`
	Version  string            `json:"version"`
	Variants []string          `json:"variants"`
	Subsets  []string          `json:"subsets"`
	Files    map[string]string `json:"files"`
}

type googleFontsList struct {
	Items []GoogleFontInfo `json:"items"`
}

// GoogleFontsSource downloads fonts from the Google Fonts service and
// converts them to typeface definitions. Font names may carry style and
// weight indicators, e.g. "Antic Slab Bold".
//
// The directory of fonts is fetched once per source. Font files are kept in
// CacheDir; it must be set before the first call to Load.
type GoogleFontsSource struct {
	APIKey   string
	Endpoint string // defaults to GoogleFontsAPI
	Client   *http.Client
	CacheDir string
	Charset  string // see sfntconv.Convert
	dironce  sync.Once
	dir      googleFontsList
	direrr   error
}

// NewGoogleFontsSource creates a source for the Google Fonts service. If
// apikey is empty, it is taken from environment variable GOOGLE_API_KEY.
// If client is nil, a client with DefaultTimeout is used.
func NewGoogleFontsSource(apikey string, client *http.Client) *GoogleFontsSource {
	if apikey == "" {
		apikey = os.Getenv("GOOGLE_API_KEY")
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &GoogleFontsSource{
		APIKey:   apikey,
		Endpoint: GoogleFontsAPI,
		Client:   client,
	}
}

func (gf *GoogleFontsSource) directory(ctx context.Context) (googleFontsList, error) {
	gf.dironce.Do(func() {
		if gf.APIKey == "" {
			gf.direrr = core.Error(core.EMISSING,
				`Google Fonts API-key must be set in configuration or as GOOGLE_API_KEY in environment;
      please refer to https://developers.google.com/fonts/docs/developer_api`)
			return
		}
		values := url.Values{
			"sort": []string{"alpha"},
			"key":  []string{gf.APIKey},
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, gf.Endpoint+"?"+values.Encode(), nil)
		if err != nil {
			gf.direrr = core.WrapError(err, core.EINVALID, "invalid Google Fonts endpoint %s", gf.Endpoint)
			return
		}
		resp, err := gf.Client.Do(req)
		if err != nil {
			tracer().Errorf("Google Fonts API request not OK: %s", err.Error())
			gf.direrr = core.WrapError(err, core.ECONNECTION,
				"could not get fonts-directory from Google font service")
			return
		}
		defer resp.Body.Close()
		if err = checkStatus(resp, gf.Endpoint); err != nil {
			tracer().Errorf("Google Fonts API request not OK: %v", resp.Status)
			gf.direrr = err
			return
		}
		if err = json.NewDecoder(resp.Body).Decode(&gf.dir); err != nil {
			gf.direrr = core.WrapError(err, core.EINVALID,
				"could not decode fonts-list from Google font service")
		}
		tracer().Infof("Google Fonts directory lists %d families", len(gf.dir.Items))
	})
	return gf.dir, gf.direrr
}

// Find returns the font family and variant of the Google Fonts directory
// closest to a font name.
func (gf *GoogleFontsSource) Find(ctx context.Context, name string) (GoogleFontInfo, string, error) {
	dir, err := gf.directory(ctx)
	if err != nil {
		return GoogleFontInfo{}, "", err
	}
	style, weight := font.GuessStyleAndWeight(name)
	family := font.FamilyName(name)
	descs := make([]font.Descriptor, len(dir.Items))
	for i, info := range dir.Items {
		descs[i] = font.Descriptor{Family: info.Family, Variants: info.Variants}
	}
	pattern := "^" + regexp.QuoteMeta(family) + "$"
	desc, variant, confidence := font.ClosestMatch(descs, pattern, style, weight)
	if confidence <= font.LowConfidence {
		return GoogleFontInfo{}, "", NotFound(name)
	}
	for _, info := range dir.Items {
		if info.Family == desc.Family {
			return info, variant, nil
		}
	}
	return GoogleFontInfo{}, "", NotFound(name)
}

// Load finds, downloads and converts a font from the Google Fonts service.
func (gf *GoogleFontsSource) Load(ctx context.Context, name string) (*typeface.Typeface, error) {
	info, variant, err := gf.Find(ctx, name)
	if err != nil {
		return nil, err
	}
	fileURL, ok := info.Files[variant]
	if !ok {
		return nil, core.Error(core.EMISSING, "Google font %s has no file for variant %s", info.Family, variant)
	}
	if gf.CacheDir == "" {
		return nil, core.Error(core.EINVALID, "no cache directory set for Google fonts")
	}
	fpath := filepath.Join(gf.CacheDir, font.NormalizeFontname(info.Family)+"-"+variant+path.Ext(fileURL))
	if !isCached(fpath) {
		if err = DownloadCachedFile(ctx, gf.Client, fpath, fileURL); err != nil {
			return nil, err
		}
	}
	bytez, err := os.ReadFile(fpath)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot read cached font %s", fpath)
	}
	tf, err := sfntconv.ConvertBytes(bytez, gf.Charset)
	if err != nil {
		return nil, err
	}
	tf.FamilyName = info.Family
	return tf, nil
}

// List returns the font families of the Google Fonts directory with
// names matching a given pattern.
//
// If not aleady done, the list of fonts will be downloaded from Google.
func (gf *GoogleFontsSource) List(ctx context.Context, pattern string) ([]GoogleFontInfo, error) {
	r, err := regexp.Compile(pattern)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot list Google fonts: invalid pattern")
	}
	dir, err := gf.directory(ctx)
	if err != nil {
		return nil, err
	}
	var list []GoogleFontInfo
	for _, finfo := range dir.Items {
		if r.MatchString(finfo.Family) {
			list = append(list, finfo)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return strings.ToLower(list[i].Family) < strings.ToLower(list[j].Family)
	})
	return list, nil
}

func (gf *GoogleFontsSource) String() string {
	return "googlefonts"
}
