package fontregistry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/npillmayer/facetype/core"
	"github.com/npillmayer/facetype/core/font"
	"github.com/npillmayer/facetype/core/font/outline"
	"github.com/npillmayer/facetype/core/locate/resources"
	"github.com/npillmayer/schuko/gconf"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/sync/singleflight"
)

// ErrLoadFailed is wrapped by errors for fonts which could not be loaded.
// The error code of the source's error is preserved.
var ErrLoadFailed = errors.New("font load failed")

// Registry is a type for holding information about loaded fonts and their
// typecases. It is safe for concurrent use.
type Registry struct {
	sync.RWMutex
	source    resources.Source
	opts      *outline.Options
	fonts     map[string]*font.ScalableFont
	typecases map[string]*font.TypeCase
	loading   singleflight.Group
}

var globalFontRegistry *Registry

var globalRegistryCreation sync.Once

// GlobalRegistry is an application-wide singleton to hold information about
// loaded fonts and typecases. Its font source and vectorization options are
// taken from the global configuration (see gconf) on first use.
func GlobalRegistry() *Registry {
	globalRegistryCreation.Do(func() {
		conf := globalConf{}
		src, err := resources.SourceFromConfig(conf)
		if err != nil {
			tracer().Errorf("font source configuration: %v", err)
			src = resources.Chain{resources.FallbackSource{}}
		}
		opts, err := outline.OptionsFromConfig(conf)
		if err != nil {
			tracer().Errorf("outline configuration: %v", err)
			opts = outline.DefaultOptions()
		}
		globalFontRegistry = NewRegistry(src, opts)
	})
	return globalFontRegistry
}

// NewRegistry creates a registry loading fonts from src. Typecases will
// vectorize glyphs with opts, which may be nil for outline.DefaultOptions.
func NewRegistry(src resources.Source, opts *outline.Options) *Registry {
	if opts == nil {
		opts = outline.DefaultOptions()
	}
	fr := &Registry{
		source:    src,
		opts:      opts,
		fonts:     make(map[string]*font.ScalableFont),
		typecases: make(map[string]*font.TypeCase),
	}
	return fr
}

// StoreFont pushes a font into the registry if it isn't contained yet.
//
// The font will be stored using the normalized font name as a key. If this
// key is already associated with a font, that font will not be overridden.
func (fr *Registry) StoreFont(name string, f *font.ScalableFont) {
	if f == nil || f.Typeface == nil {
		tracer().Errorf("registry cannot store null font")
		return
	}
	normalizedName := font.NormalizeFontname(name)
	fr.Lock()
	defer fr.Unlock()
	if _, ok := fr.fonts[normalizedName]; !ok {
		tracer().Debugf("registry stores font %s as %s", f.Fontname, normalizedName)
		fr.fonts[normalizedName] = f
	}
}

// TypeCase returns the typecase for a font at a given scale.
// If a suitable typecase has already been cached, TypeCase will return the cached
// typecase. If the font has previously been loaded, a typecase will be
// derived from it. Otherwise the font is loaded from the registry's source.
//
// Concurrent requests for a font not yet loaded share a single load, which
// runs with the context of the first request. Load failures are not cached
// and are reported as ErrLoadFailed.
func (fr *Registry) TypeCase(ctx context.Context, name string, scale float64) (*font.TypeCase, error) {
	tname := font.NormalizeTypeCaseName(name, scale)
	tracer().Debugf("registry searches for typecase %s", tname)
	fr.RLock()
	t, ok := fr.typecases[tname]
	fr.RUnlock()
	if ok {
		return t, nil
	}
	f, err := fr.Font(ctx, name)
	if err != nil {
		return nil, err
	}
	fr.Lock()
	defer fr.Unlock()
	if t, ok := fr.typecases[tname]; ok {
		return t, nil
	}
	if t, err = f.PrepareCase(scale, fr.opts); err != nil {
		return nil, err
	}
	tracer().Infof("font registry has font %s, caches at %g", f.Fontname, scale)
	fr.typecases[tname] = t
	return t, nil
}

// Font returns a scalable font, loading it from the registry's source if
// necessary.
func (fr *Registry) Font(ctx context.Context, name string) (*font.ScalableFont, error) {
	fname := font.NormalizeFontname(name)
	if fname == "" {
		return nil, core.Error(core.EINVALID, "empty font name")
	}
	fr.RLock()
	f, ok := fr.fonts[fname]
	fr.RUnlock()
	if ok {
		return f, nil
	}
	v, err, shared := fr.loading.Do(fname, func() (interface{}, error) {
		fr.RLock()
		f, ok := fr.fonts[fname]
		fr.RUnlock()
		if ok {
			return f, nil
		}
		if fr.source == nil {
			return nil, core.Error(core.EMISSING, "font registry has no font source")
		}
		tracer().Infof("registry loads font %s", name)
		tf, err := fr.source.Load(ctx, name)
		if err != nil {
			return nil, core.WrapError(fmt.Errorf("%w: %w", ErrLoadFailed, err), core.Code(err),
				"cannot load font %s", name)
		}
		fontname := tf.FamilyName
		if fontname == "" {
			fontname = name
		}
		f = &font.ScalableFont{Fontname: fontname, Filepath: fmt.Sprintf("%v", fr.source), Typeface: tf}
		fr.StoreFont(name, f)
		return f, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		tracer().Debugf("load of font %s has been shared", name)
	}
	return v.(*font.ScalableFont), nil
}

// --- Promises --------------------------------------------------------------

type typecasePlusErr struct {
	typecase *font.TypeCase
	err      error
}

// TypeCasePromise is the result of an asynchronous typecase request.
type TypeCasePromise interface {
	TypeCase() (*font.TypeCase, error)                 // wait for the typecase
	Await(ctx context.Context) (*font.TypeCase, error) // wait, unless ctx is done first
}

type typecaseLoader struct {
	await func(ctx context.Context) (*font.TypeCase, error)
}

func (loader typecaseLoader) TypeCase() (*font.TypeCase, error) {
	return loader.await(context.Background())
}

func (loader typecaseLoader) Await(ctx context.Context) (*font.TypeCase, error) {
	return loader.await(ctx)
}

// ResolveTypeCase requests a typecase on a separate goroutine and returns
// a promise for it. See TypeCase.
func (fr *Registry) ResolveTypeCase(ctx context.Context, name string, scale float64) TypeCasePromise {
	done := make(chan struct{})
	result := &typecasePlusErr{}
	go func() {
		result.typecase, result.err = fr.TypeCase(ctx, name, scale)
		close(done)
	}()
	return typecaseLoader{
		await: func(ctx context.Context) (*font.TypeCase, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-done:
				return result.typecase, result.err
			}
		},
	}
}

// --- Listing ---------------------------------------------------------------

// DebugList returns the keys of known fonts and typecases, sorted.
func (fr *Registry) DebugList() (fonts []string, typecases []string) {
	fr.RLock()
	defer fr.RUnlock()
	for k := range fr.fonts {
		fonts = append(fonts, k)
	}
	for k := range fr.typecases {
		typecases = append(typecases, k)
	}
	sort.Strings(fonts)
	sort.Strings(typecases)
	return
}

// LogFontList is a helper function to dump the list of known fonts and typecases
// in a registry to the trace-file (log-level Info).
func (fr *Registry) LogFontList() {
	level := tracer().GetTraceLevel()
	tracer().SetTraceLevel(tracing.LevelInfo)
	fonts, typecases := fr.DebugList()
	fr.RLock()
	tracer().Infof("--- registered fonts ---")
	for _, k := range fonts {
		tracer().Infof("font [%s] = %v", k, fr.fonts[k].Fontname)
	}
	for _, k := range typecases {
		tracer().Infof("typecase [%s] = %v", k, fr.typecases[k])
	}
	tracer().Infof("------------------------")
	fr.RUnlock()
	tracer().SetTraceLevel(level)
}

// --- Global configuration --------------------------------------------------

// globalConf is a facade for the global configuration.
type globalConf struct{}

func (globalConf) InitDefaults()               {}
func (globalConf) IsSet(key string) bool       { return gconf.IsSet(key) }
func (globalConf) GetString(key string) string { return gconf.GetString(key) }
func (globalConf) GetInt(key string) int       { return gconf.GetInt(key) }
func (globalConf) GetBool(key string) bool     { return gconf.GetBool(key) }
func (globalConf) IsInteractive() bool         { return gconf.IsInteractive() }
