package main

import (
	"context"
	"encoding/json"
	"flag"
	"strconv"
	"strings"

	"github.com/npillmayer/facetype/core"
	"github.com/npillmayer/facetype/core/projection"
	"github.com/npillmayer/facetype/engine/labeling"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// labelSettings are the parameters of a label, shared by the label
// command and the REPL.
type labelSettings struct {
	font   string
	scale  float64
	adv    float64
	srs    projection.SRS // of the label line
	target projection.SRS // glyphs are rendered in
	line   orb.LineString
	at     *orb.Point // alternative to line
	extent float64
}

func defaultSettings() labelSettings {
	return labelSettings{
		font:   "Go Sans",
		scale:  1,
		adv:    1,
		srs:    projection.Plane,
		target: projection.Plane,
	}
}

func (a *app) labelCmd(ctx context.Context, args []string) error {
	ls := defaultSettings()
	fs := flag.NewFlagSet("label", flag.ContinueOnError)
	fs.StringVar(&ls.font, "font", ls.font, "Font name")
	fs.Float64Var(&ls.scale, "scale", ls.scale, "Scale from font units to target units")
	fs.Float64Var(&ls.adv, "adv", ls.adv, "Advance multiplier")
	srs := fs.String("srs", "planar", "Reference system of the label line")
	target := fs.String("target", "", "Reference system glyphs are set in (default: same as -srs)")
	line := fs.String("line", "", "Label line as blank separated x,y pairs")
	at := fs.String("at", "", "Start position x,y of a horizontal label line")
	fs.Float64Var(&ls.extent, "extent", 0, "Length in meters of a label line started with -at")
	if err := fs.Parse(args); err != nil {
		return core.WrapError(err, core.EINVALID, "label")
	}
	if fs.NArg() == 0 {
		return core.Error(core.EINVALID, "label needs a text")
	}
	var err error
	if ls.srs, err = projection.ParseSRS(*srs); err != nil {
		return err
	}
	ls.target = ls.srs
	if *target != "" {
		if ls.target, err = projection.ParseSRS(*target); err != nil {
			return err
		}
	}
	switch {
	case *at != "":
		p, err := parsePoint(*at)
		if err != nil {
			return err
		}
		ls.at = &p
	case *line != "":
		if ls.line, err = parseLine(*line); err != nil {
			return err
		}
	default:
		return core.Error(core.EINVALID, "label needs either -line or -at")
	}
	f, err := a.label(ctx, ls, strings.Join(fs.Args(), " "))
	if err != nil {
		return err
	}
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(f)
}

// label sets text with the settings given and returns it as a GeoJSON
// feature in the reference system of the label line.
func (a *app) label(ctx context.Context, ls labelSettings, text string) (*geojson.Feature, error) {
	tc, err := a.registry.TypeCase(ctx, ls.font, ls.scale)
	if err != nil {
		return nil, err
	}
	placer, err := a.placer(ls)
	if err != nil {
		return nil, err
	}
	if _, err = tc.LabelGeometry(text, placer); err != nil {
		return nil, err
	}
	f, err := placer.Label()
	if err != nil {
		return nil, err
	}
	f.Properties["text"] = text
	f.Properties["font"] = tc.Name()
	tracer().Infof("label %q set with %s, %s", text, tc, placer)
	return f, nil
}

func (a *app) placer(ls labelSettings) (*labeling.Placer, error) {
	if ls.at != nil {
		return labeling.FromPosition(*ls.at, ls.srs, ls.extent, ls.target, ls.adv, a.svc)
	}
	return labeling.AlongLine(labeling.LabelLine{Coords: ls.line, SRS: ls.srs}, ls.target, ls.adv, a.svc)
}

// parseLine reads points from a string like "0,0 10,5 20,0".
func parseLine(s string) (orb.LineString, error) {
	var line orb.LineString
	for _, field := range strings.Fields(s) {
		p, err := parsePoint(field)
		if err != nil {
			return nil, err
		}
		line = append(line, p)
	}
	if len(line) < 2 {
		return nil, core.Error(core.EINVALID, "line %q needs at least 2 points", s)
	}
	return line, nil
}

func parsePoint(s string) (orb.Point, error) {
	xy := strings.Split(s, ",")
	if len(xy) != 2 {
		return orb.Point{}, core.Error(core.EINVALID, "point %q is not of the form x,y", s)
	}
	var p orb.Point
	for i, c := range xy {
		v, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
		if err != nil {
			return orb.Point{}, core.WrapError(err, core.EINVALID, "point %q is not of the form x,y", s)
		}
		p[i] = v
	}
	return p, nil
}
