package resources

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/npillmayer/facetype/core"
	"github.com/npillmayer/facetype/core/font"
	"github.com/npillmayer/facetype/core/font/typeface"
	"github.com/npillmayer/schuko"
)

// Source loads typeface definitions by name. Load failures carry an error
// code: EMISSING for unknown fonts, EINVALID for malformed definitions and
// ECONNECTION for transport problems.
type Source interface {
	Load(ctx context.Context, name string) (*typeface.Typeface, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, name string) (*typeface.Typeface, error)

// Load calls f(ctx, name).
func (f SourceFunc) Load(ctx context.Context, name string) (*typeface.Typeface, error) {
	return f(ctx, name)
}

// ErrNotFound is wrapped by errors for missing resources.
var ErrNotFound = errors.New("resource missing")

// NotFound returns an application error for a missing font.
func NotFound(res string) error {
	return core.WrapError(ErrNotFound, core.EMISSING, "font not found: %s", res)
}

// Predefined fonts, available as typeface definitions from the standard
// font locations.
var PredefinedFonts = []string{
	"noto_serif________regular",
	"noto_serif_________italic",
	"noto_serif___thin_regular",
	"noto_serif___thin__italic",
	"noto_serif_medium_regular",
	"noto_serif_medium__italic",
	"noto_serif___bold_regular",
	"noto_serif___bold__italic",
}

// IsPredefined returns true if name is one of PredefinedFonts.
func IsPredefined(name string) bool {
	for _, p := range PredefinedFonts {
		if p == name {
			return true
		}
	}
	return false
}

// fontFileName is the name of the typeface-JSON file for a font name.
func fontFileName(name string) string {
	if IsPredefined(name) {
		return name + ".json"
	}
	return font.NormalizeFontname(name) + ".json"
}

// --- Directory -------------------------------------------------------------

// DirSource reads typeface-JSON files from a directory. A font named
// "Noto Serif" is expected in file "noto_serif.json".
type DirSource struct {
	Root string
}

// Load reads and decodes the typeface file for name.
func (dir DirSource) Load(ctx context.Context, name string) (*typeface.Typeface, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(dir.Root, fontFileName(name))
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NotFound(name)
		}
		return nil, core.WrapError(err, core.EMISSING, "cannot open font file %s", path)
	}
	defer f.Close()
	tracer().Debugf("loading font %s from %s", name, path)
	return typeface.Decode(f)
}

func (dir DirSource) String() string {
	return fmt.Sprintf("dir[%s]", dir.Root)
}

// --- Fallback --------------------------------------------------------------

// FallbackSource returns the built-in fallback font for every name.
type FallbackSource struct{}

// Load returns the typeface of font.FallbackFont.
func (FallbackSource) Load(ctx context.Context, name string) (*typeface.Typeface, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tracer().Infof("substituting fallback font for %s", name)
	return font.FallbackFont().Typeface, nil
}

func (FallbackSource) String() string {
	return "fallback"
}

// --- Chain -----------------------------------------------------------------

// Chain asks a sequence of sources in turn, until one of them delivers.
//
// If no source delivers, the error of the last source failing for a reason
// other than a missing font is returned. If all sources report a missing
// font, the result is a NotFound error.
type Chain []Source

// Load asks every source of the chain for font name.
func (chain Chain) Load(ctx context.Context, name string) (*typeface.Typeface, error) {
	var failure error
	for _, src := range chain {
		tf, err := src.Load(ctx, name)
		if err == nil {
			return tf, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !core.HasCode(err, core.EMISSING) {
			tracer().Errorf("font source %v: %v", src, err)
			failure = err
		}
	}
	if failure != nil {
		return nil, failure
	}
	return nil, NotFound(name)
}

func (chain Chain) String() string {
	var b strings.Builder
	for i, src := range chain {
		if i > 0 {
			b.WriteString(" → ")
		}
		fmt.Fprintf(&b, "%v", src)
	}
	return b.String()
}

// --- Configuration ---------------------------------------------------------

// Configuration keys evaluated by SourceFromConfig.
const (
	ConfFontDir     = "facetype.fontdir"     // directory of typeface-JSON files
	ConfFontURL     = "facetype.fonturl"     // base URL of a typeface-JSON service
	ConfSystemFonts = "facetype.systemfonts" // convert system fonts, if true
	ConfGoogleFonts = "facetype.googlefonts" // fetch fonts from Google Fonts, if true
	ConfFallback    = "facetype.fallback"    // substitute the fallback font, if true
	ConfCharset     = "facetype.charset"     // characters to convert from OpenType fonts
	ConfCacheFonts  = "facetype.cachefonts"  // cache downloaded fonts, if true
)

// SourceFromConfig creates a chain of sources from configuration values,
// in the order directory, HTTP service, system fonts, Google Fonts and
// fallback font.
// If conf does not enable any source, the chain consists of the fallback
// font only.
func SourceFromConfig(conf schuko.Configuration) (Chain, error) {
	var chain Chain
	if dir := conf.GetString(ConfFontDir); dir != "" {
		if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
			return nil, core.Error(core.EINVALID, "font directory %q is not a directory", dir)
		}
		chain = append(chain, DirSource{Root: dir})
	}
	if base := conf.GetString(ConfFontURL); base != "" {
		src, err := NewHTTPSource(base, nil)
		if err != nil {
			return nil, err
		}
		if conf.GetBool(ConfCacheFonts) {
			if src.CacheDir, err = CacheDirPath(conf, "typefaces"); err != nil {
				return nil, err
			}
		}
		chain = append(chain, src)
	}
	charset := conf.GetString(ConfCharset)
	if conf.GetBool(ConfSystemFonts) {
		chain = append(chain, &SystemSource{Conf: conf, Charset: charset})
	}
	if conf.GetBool(ConfGoogleFonts) {
		src := NewGoogleFontsSource(conf.GetString(ConfGoogleAPIKey), nil)
		src.Charset = charset
		dir, err := CacheDirPath(conf, "fonts")
		if err != nil {
			return nil, err
		}
		src.CacheDir = dir
		chain = append(chain, src)
	}
	if len(chain) == 0 || !conf.IsSet(ConfFallback) || conf.GetBool(ConfFallback) {
		chain = append(chain, FallbackSource{})
	}
	tracer().Infof("font sources: %v", chain)
	return chain, nil
}
