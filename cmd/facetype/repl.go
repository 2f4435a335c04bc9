package main

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/facetype/core"
	"github.com/npillmayer/facetype/core/projection"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/pterm/pterm"
)

// Intp is our interpreter object. It keeps the label settings between
// commands.
type Intp struct {
	app      *app
	repl     *readline.Instance
	settings labelSettings
}

func (a *app) replCmd(ctx context.Context) error {
	repl, err := readline.New("facetype > ")
	if err != nil {
		return core.WrapError(err, core.EINTERNAL, "cannot start REPL")
	}
	defer repl.Close()
	intp := &Intp{app: a, repl: repl, settings: defaultSettings()}
	intp.settings.line = orb.LineString{{0, 0}, {1000, 0}}
	pterm.Info.Println("Welcome to facetype; type 'help' for a list of commands")
	pterm.Info.Println("Quit with <ctrl>D")
	intp.REPL(ctx)
	return nil
}

// REPL starts interactive mode.
func (intp *Intp) REPL(ctx context.Context) {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		quit, err := intp.execute(ctx, line)
		if err != nil {
			pterm.Error.Println(core.UserMessage(err))
			tracer().Errorf(err.Error())
			continue
		}
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

// execute interprets a single command line. Commands are a keyword,
// followed by arguments.
func (intp *Intp) execute(ctx context.Context, line string) (bool, error) {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	tracer().Debugf("command %q, argument %q", cmd, arg)
	ls := &intp.settings
	cmd = strings.ToLower(cmd)
	switch cmd {
	case "quit", "exit":
		return true, nil
	case "font":
		name, scale, ok := strings.Cut(arg, "@")
		if ok {
			s, err := strconv.ParseFloat(scale, 64)
			if err != nil {
				return false, core.WrapError(err, core.EINVALID, "scale %q is not a number", scale)
			}
			ls.scale = s
		}
		if name = strings.TrimSpace(name); name != "" {
			ls.font = name
		}
		tc, err := intp.app.registry.TypeCase(ctx, ls.font, ls.scale)
		if err != nil {
			return false, err
		}
		pterm.Printfln("using %s, mid-line at %g", tc, tc.MidY())
	case "line":
		l, err := parseLine(arg)
		if err != nil {
			return false, err
		}
		ls.line, ls.at = l, nil
	case "at":
		p, err := parsePoint(arg)
		if err != nil {
			return false, err
		}
		ls.at = &p
	case "srs", "target":
		srs, err := projection.ParseSRS(arg)
		if err != nil {
			return false, err
		}
		if cmd == "srs" {
			ls.srs = srs
		} else {
			ls.target = srs
		}
	case "adv":
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return false, core.WrapError(err, core.EINVALID, "advance %q is not a number", arg)
		}
		ls.adv = v
	case "glyph":
		tc, err := intp.app.registry.TypeCase(ctx, ls.font, ls.scale)
		if err != nil {
			return false, err
		}
		g, err := tc.Glyph(arg)
		if err != nil {
			return false, err
		}
		points := 0
		for _, poly := range g.Geometry {
			for _, ring := range poly {
				points += len(ring)
			}
		}
		pterm.Printfln("glyph %q (%s): advance %g, %d polygon(s), %d points, area %g",
			g.Char, g.Resolution, g.Advance, len(g.Geometry), points, planar.Area(g.Geometry))
	case "length":
		tc, err := intp.app.registry.TypeCase(ctx, ls.font, ls.scale)
		if err != nil {
			return false, err
		}
		placer, err := intp.app.placer(*ls)
		if err != nil {
			return false, err
		}
		l, err := tc.LabelLength(arg, placer)
		if err != nil {
			return false, err
		}
		pterm.Printfln("label %q has length %g, line has length %g %s", arg, l,
			placer.Length(), placer.Unit())
	case "label":
		f, err := intp.app.label(ctx, *ls, arg)
		if err != nil {
			return false, err
		}
		b, err := json.MarshalIndent(f, "", "  ")
		if err != nil {
			return false, core.WrapError(err, core.EINTERNAL, "cannot encode label")
		}
		pterm.Println(string(b))
	case "fonts":
		fonts, typecases := intp.app.registry.DebugList()
		pterm.Printfln("fonts:     %v", fonts)
		pterm.Printfln("typecases: %v", typecases)
	case "settings":
		pterm.Printfln("font %s @ %g, advance %g, line %v in %s, target %s", ls.font, ls.scale,
			ls.adv, intp.lineString(), ls.srs, ls.target)
	default:
		help()
	}
	return false, nil
}

func (intp *Intp) lineString() string {
	if intp.settings.at != nil {
		return "from " + orbString(*intp.settings.at)
	}
	s := make([]string, len(intp.settings.line))
	for i, p := range intp.settings.line {
		s[i] = orbString(p)
	}
	return strings.Join(s, " ")
}

func orbString(p orb.Point) string {
	return strconv.FormatFloat(p[0], 'g', -1, 64) + "," + strconv.FormatFloat(p[1], 'g', -1, 64)
}

func help() {
	pterm.Info.Println("Commands")
	pterm.Println(`
	font <name>[@<scale>]   select a font and scale
	line x,y x,y ...        set the label line
	at x,y                  set a horizontal label line starting at x,y
	srs <srs>               reference system of the label line
	target <srs>            reference system glyphs are set in
	adv <factor>            advance multiplier
	glyph <char>            show a glyph
	length <text>           predict the length of a label
	label <text>            set a label and print it as GeoJSON
	fonts                   list loaded fonts and typecases
	settings                show current settings
	quit                    leave
	`)
}
