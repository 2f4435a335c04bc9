package outline

import (
	"errors"
	"strconv"
	"strings"

	"github.com/npillmayer/facetype/core"
	"github.com/paulmach/orb"
)

// ErrInvalidCommand is returned for outline strings containing unknown
// commands, malformed numbers or drawing commands without a current point.
var ErrInvalidCommand = errors.New("invalid outline command")

// arity tells the number of operands of each outline command.
var arity = map[string]int{
	"m": 2,
	"l": 2,
	"q": 4,
	"b": 6,
	"z": 0,
}

// scanner hands out the tokens of an outline string.
type scanner struct {
	tokens []string
	pos    int
}

func (sc *scanner) done() bool {
	return sc.pos >= len(sc.tokens)
}

func (sc *scanner) next() string {
	t := sc.tokens[sc.pos]
	sc.pos++
	return t
}

// operands reads n numbers, scaled by scale.
func (sc *scanner) operands(cmd string, n int, scale float64) ([]float64, error) {
	if sc.pos+n > len(sc.tokens) {
		return nil, core.WrapError(ErrInvalidCommand, core.EINVALID,
			"command %q at token %d expects %d operands, has %d", cmd, sc.pos-1, n,
			len(sc.tokens)-sc.pos)
	}
	args := make([]float64, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(sc.tokens[sc.pos], 64)
		if err != nil {
			return nil, core.WrapError(ErrInvalidCommand, core.EINVALID,
				"operand %q at token %d is not a number", sc.tokens[sc.pos], sc.pos)
		}
		args[i] = f * scale
		sc.pos++
	}
	return args, nil
}

// parse splits an outline into sub-paths. Coordinates are multiplied by scale.
// Every sub-path returned is closed, i.e., its last segment ends at its start.
//
// A close command ends the current sub-path. Drawing commands following a
// close command without an intermediate move-to start a new sub-path at the
// start point of the previous one.
func parse(o string, scale float64) ([]*subpath, error) {
	sc := &scanner{tokens: strings.Fields(o)}
	var paths []*subpath
	var cur *subpath
	var last orb.Point // start of the most recent sub-path
	started := false
	flush := func() {
		if cur == nil {
			return
		}
		if cur.current() != cur.start {
			cur.segments = append(cur.segments, line{cur.current(), cur.start})
		}
		paths = append(paths, cur)
		cur = nil
	}
	for !sc.done() {
		pos := sc.pos
		cmd := sc.next()
		n, ok := arity[cmd]
		if !ok {
			return nil, core.WrapError(ErrInvalidCommand, core.EINVALID,
				"unknown command %q at token %d", cmd, pos)
		}
		args, err := sc.operands(cmd, n, scale)
		if err != nil {
			return nil, err
		}
		if cmd == "m" {
			flush()
			last = orb.Point{args[0], args[1]}
			cur = &subpath{start: last}
			started = true
			continue
		}
		if cmd == "z" {
			flush()
			continue
		}
		if cur == nil {
			if !started {
				return nil, core.WrapError(ErrInvalidCommand, core.EINVALID,
					"command %q at token %d has no current point", cmd, pos)
			}
			cur = &subpath{start: last}
		}
		p0 := cur.current()
		switch cmd {
		case "l":
			cur.segments = append(cur.segments, line{p0, orb.Point{args[0], args[1]}})
		case "q": // end point first, then control point
			cur.segments = append(cur.segments, quadBez{
				P0: p0,
				P1: orb.Point{args[2], args[3]},
				P2: orb.Point{args[0], args[1]},
			})
		case "b": // end point first, then both control points
			cur.segments = append(cur.segments, cubicBez{
				P0: p0,
				P1: orb.Point{args[2], args[3]},
				P2: orb.Point{args[4], args[5]},
				P3: orb.Point{args[0], args[1]},
			})
		}
	}
	flush()
	return paths, nil
}
