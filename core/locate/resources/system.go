package resources

import (
	"context"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/flopp/go-findfont"
	"github.com/npillmayer/facetype/core"
	"github.com/npillmayer/facetype/core/font"
	"github.com/npillmayer/facetype/core/font/sfntconv"
	"github.com/npillmayer/facetype/core/font/typeface"
	"github.com/npillmayer/schuko"
)

// SystemSource converts OpenType and TrueType fonts installed on the
// system. Fonts are located with fontconfig, if Conf has key "fontconfig"
// set, and by searching the platform's font directories otherwise.
//
// Font names may carry style and weight indicators, e.g. "Noto Sans Bold
// Italic". Only the characters of Charset are converted; if it is empty,
// sfntconv.DefaultCharset is used.
type SystemSource struct {
	Conf    schuko.Configuration
	Charset string
	fconce  sync.Once
	fcdescs []font.Descriptor
}

// Load locates and converts a system font.
func (sys *SystemSource) Load(ctx context.Context, name string) (*typeface.Typeface, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fpath := sys.locate(name)
	if fpath == "" {
		return nil, NotFound(name)
	}
	if strings.HasSuffix(strings.ToLower(fpath), ".ttc") {
		return nil, core.Error(core.EINVALID, "font collections are not supported: %s", fpath)
	}
	tracer().Debugf("%s is a system font: %s", name, fpath)
	bytez, err := os.ReadFile(fpath)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot read font file %s", fpath)
	}
	return sfntconv.ConvertBytes(bytez, sys.Charset)
}

func (sys *SystemSource) locate(name string) string {
	if sys.Conf != nil && sys.Conf.GetString(ConfFontConfig) != "" {
		sys.fconce.Do(func() {
			var err error
			if sys.fcdescs, err = loadFontConfigList(sys.Conf); err != nil {
				tracer().Errorf(err.Error())
			}
			tracer().Infof("loaded fontconfig list with %d entries", len(sys.fcdescs))
		})
		style, weight := font.GuessStyleAndWeight(name)
		pattern := "^" + regexp.QuoteMeta(font.FamilyName(name)) + "$"
		if desc, _ := findFontConfigFont(sys.fcdescs, pattern, style, weight); desc.Path != "" {
			return desc.Path
		}
	}
	for _, candidate := range []string{name, strings.ReplaceAll(name, " ", ""), strings.ReplaceAll(name, " ", "-")} {
		if fpath, err := findfont.Find(candidate); err == nil && fpath != "" {
			return fpath
		}
	}
	return ""
}

func (sys *SystemSource) String() string {
	return "system"
}

// ListSystemFonts returns the files of all fonts installed on the system
// with file names matching pattern.
func ListSystemFonts(pattern string) ([]string, error) {
	r, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "invalid font name pattern %q", pattern)
	}
	var list []string
	for _, fpath := range findfont.List() {
		if r.MatchString(fpath) {
			list = append(list, fpath)
		}
	}
	return list, nil
}
