package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"

	"github.com/npillmayer/facetype/core"
	"github.com/npillmayer/facetype/core/font"
	"github.com/npillmayer/facetype/core/font/typeface"
	"github.com/npillmayer/facetype/core/locate/resources"
	"github.com/pterm/pterm"
)

// convertCmd converts an OpenType font, given either as a file or as the
// name of an installed font, to a typeface definition.
func (a *app) convertCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	charset := fs.String("charset", "", "Characters to convert (default Latin-1)")
	output := fs.String("o", "", "Output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return core.WrapError(err, core.EINVALID, "convert")
	}
	if fs.NArg() != 1 {
		return core.Error(core.EINVALID, "convert needs exactly one font")
	}
	tf, err := a.convert(ctx, fs.Arg(0), *charset)
	if err != nil {
		return err
	}
	if *output == "" {
		return typeface.Encode(a.out, tf)
	}
	f, err := os.Create(*output)
	if err != nil {
		return core.WrapError(err, core.EINVALID, "cannot create %s", *output)
	}
	defer f.Close()
	if err = typeface.Encode(f, tf); err != nil {
		return core.WrapError(err, core.EINTERNAL, "cannot write %s", *output)
	}
	pterm.Success.Printfln("wrote %d glyphs of %s to %s", len(tf.Glyphs), tf.FamilyName, *output)
	return nil
}

func (a *app) convert(ctx context.Context, fontname string, charset string) (*typeface.Typeface, error) {
	if fi, err := os.Stat(fontname); err == nil && !fi.IsDir() {
		if strings.EqualFold(filepath.Ext(fontname), ".json") {
			f, err := font.LoadTypefaceFont(fontname)
			if err != nil {
				return nil, err
			}
			return f.Typeface, nil
		}
		f, err := font.LoadOpenTypeFont(fontname, charset)
		if err != nil {
			return nil, err
		}
		return f.Typeface, nil
	}
	sys := &resources.SystemSource{Conf: a.conf, Charset: charset}
	return sys.Load(ctx, fontname)
}

// listCmd lists installed fonts or fonts available at Google Fonts.
func (a *app) listCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	google := fs.Bool("google", false, "List Google Fonts")
	if err := fs.Parse(args); err != nil {
		return core.WrapError(err, core.EINVALID, "list")
	}
	pattern := fs.Arg(0)
	data := pterm.TableData{}
	if *google {
		gf := resources.NewGoogleFontsSource(a.conf.GetString(resources.ConfGoogleAPIKey), nil)
		list, err := gf.List(ctx, pattern)
		if err != nil {
			return err
		}
		data = append(data, []string{"Family", "Variants"})
		for _, info := range list {
			data = append(data, []string{info.Family, strings.Join(info.Variants, " ")})
		}
	} else {
		list, err := resources.ListSystemFonts(pattern)
		if err != nil {
			return err
		}
		data = append(data, []string{"Font", "File"})
		for _, fpath := range list {
			name := strings.TrimSuffix(filepath.Base(fpath), filepath.Ext(fpath))
			data = append(data, []string{name, fpath})
		}
	}
	if len(data) == 1 {
		pterm.Info.Println("no fonts found")
		return nil
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
