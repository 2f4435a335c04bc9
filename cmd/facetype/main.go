/*
Command facetype converts fonts to typeface definitions and sets labels
along lines.

	facetype [flags] convert [-charset chars] [-o file] <font file or name>
	facetype [flags] list [-google] [pattern]
	facetype [flags] label [-font name] [-scale s] [-line "x,y x,y …" | -at x,y] <text>
	facetype [flags] repl

Fonts for labels are looked up in a font directory, at a typeface service,
among the fonts installed on the system and at Google Fonts, in this order,
depending on the flags given. If none of them has a font, the built-in
fallback font is used.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2025 Norbert Pillmayer <norbert@pillmayer.com>

*/
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/npillmayer/facetype/core"
	"github.com/npillmayer/facetype/core/font/fontregistry"
	"github.com/npillmayer/facetype/core/font/outline"
	"github.com/npillmayer/facetype/core/locate/resources"
	"github.com/npillmayer/facetype/core/projection"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
)

// tracer traces with key 'facetype.cli'
func tracer() tracing.Trace {
	return tracing.Select("facetype.cli")
}

func main() {
	initDisplay()

	// command line flags
	tlevel := flag.String("trace", "Error", "Trace level [Debug|Info|Error]")
	fontdir := flag.String("fontdir", "", "Directory with typeface definitions")
	fonturl := flag.String("fonturl", "", "Base URL of a typeface service")
	system := flag.Bool("system", false, "Use fonts installed on the system")
	google := flag.Bool("google", false, "Use Google Fonts (requires an API key)")
	cache := flag.Bool("cache", false, "Cache downloaded typeface definitions")
	fallback := flag.Bool("fallback", true, "Use the built-in font if no other font is found")
	flag.Usage = usage
	flag.Parse()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"app-key":                  "facetype",
		"tracing.adapter":          "go",
		"trace.facetype.cli":       *tlevel,
		"trace.facetype.fonts":     *tlevel,
		"trace.facetype.resources": *tlevel,
		"trace.facetype.labels":    *tlevel,
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	conf[resources.ConfFontDir] = *fontdir
	conf[resources.ConfFontURL] = *fonturl
	conf[resources.ConfSystemFonts] = strconv.FormatBool(*system)
	conf[resources.ConfGoogleFonts] = strconv.FormatBool(*google)
	conf[resources.ConfCacheFonts] = strconv.FormatBool(*cache)
	conf[resources.ConfFallback] = strconv.FormatBool(*fallback)
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		conf[resources.ConfGoogleAPIKey] = key
	}

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}
	a, err := newApp(conf, os.Stdout)
	if err != nil {
		core.UserError(err)
		os.Exit(3)
	}
	ctx := context.Background()
	args := flag.Args()[1:]
	switch flag.Arg(0) {
	case "convert":
		err = a.convertCmd(ctx, args)
	case "list":
		err = a.listCmd(ctx, args)
	case "label":
		err = a.labelCmd(ctx, args)
	case "repl":
		err = a.replCmd(ctx)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		core.UserError(err)
		os.Exit(4)
	}
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(),
		"Usage: %s [flags] convert|list|label|repl [command flags] [arguments]\n", os.Args[0])
	flag.PrintDefaults()
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// app holds everything commands need.
type app struct {
	conf     testconfig.Conf
	sources  resources.Chain
	registry *fontregistry.Registry
	svc      *projection.Projections
	out      io.Writer
}

func newApp(conf testconfig.Conf, out io.Writer) (*app, error) {
	chain, err := resources.SourceFromConfig(conf)
	if err != nil {
		return nil, err
	}
	opts, err := outline.OptionsFromConfig(conf)
	if err != nil {
		return nil, err
	}
	tracer().Infof("font sources are %v", chain)
	return &app{
		conf:     conf,
		sources:  chain,
		registry: fontregistry.NewRegistry(chain, opts),
		svc:      projection.Default(),
		out:      out,
	}, nil
}
