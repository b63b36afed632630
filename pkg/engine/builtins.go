package engine

import (
	"fmt"
	"math"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/fgam/spatialam/pkg/geom"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites toolpath source before it reaches zygomys:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: def-path -> def_path
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpPoint wraps a point.
type sexpPoint struct {
	p geom.Vec
}

func (p *sexpPoint) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(pt %g %g %g)", p.p.X, p.p.Y, p.p.Z)
}
func (p *sexpPoint) Type() *zygo.RegisteredType { return nil }

// sexpPath refers to a path registered in the design under construction.
type sexpPath struct {
	idx int
	d   *Design
}

func (p *sexpPath) SexpString(ps *zygo.PrintState) string {
	path := p.d.Paths[p.idx]
	return fmt.Sprintf("(path %q %d)", path.Name, len(path.Points))
}
func (p *sexpPath) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as a flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_x) and plain strings ("x").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toPoint extracts a point from a sexpPoint.
func toPoint(s zygo.Sexp) (geom.Vec, error) {
	if p, ok := s.(*sexpPoint); ok {
		return p.p, nil
	}
	return geom.Vec{}, fmt.Errorf("expected point, got %T (%s)", s, s.SexpString(nil))
}

// toPath extracts a path reference from a sexpPath.
func toPath(s zygo.Sexp) (*sexpPath, error) {
	if p, ok := s.(*sexpPath); ok {
		return p, nil
	}
	return nil, fmt.Errorf("expected path, got %T (%s)", s, s.SexpString(nil))
}

// toPoints flattens points and lists of points into one slice.
func toPoints(args []zygo.Sexp) (geom.Polyline, error) {
	var out geom.Polyline
	for i, a := range args {
		if _, ok := a.(*sexpPoint); !ok {
			items, err := sexpListToSlice(a)
			if err == nil {
				nested, err := toPoints(items)
				if err != nil {
					return nil, err
				}
				out = append(out, nested...)
				continue
			}
		}
		p, err := toPoint(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the toolpath builtins into a zygomys environment.
// Path constructors register their result in d as they run, so evaluation
// order is path order.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, d *Design) {
	newPath := func(points geom.Polyline) *sexpPath {
		return &sexpPath{idx: d.add(points), d: d}
	}

	// (pt 0 0 10)
	env.AddFunction("pt", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("pt requires exactly 3 arguments, got %d", len(args))
		}
		var c [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("pt: %c: %w", "xyz"[i], err)
			}
			c[i] = f
		}
		return &sexpPoint{p: geom.V(c[0], c[1], c[2])}, nil
	})

	// (seg (pt 0 0 0) (pt 0 0 10)) or (seg 0 0 0 0 0 10)
	env.AddFunction("seg", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		switch len(args) {
		case 2:
			pts, err := toPoints(args)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("seg: %w", err)
			}
			return newPath(pts), nil
		case 6:
			var c [6]float64
			for i, a := range args {
				f, err := toFloat64(a)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("seg: argument %d: %w", i+1, err)
				}
				c[i] = f
			}
			return newPath(geom.Polyline{geom.V(c[0], c[1], c[2]), geom.V(c[3], c[4], c[5])}), nil
		}
		return zygo.SexpNull, fmt.Errorf("seg requires 2 points or 6 numbers, got %d arguments", len(args))
	})

	// (path p1 p2 p3 ...) or (path (list p1 p2 ...))
	env.AddFunction("path", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pts, err := toPoints(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("path: %w", err)
		}
		if len(pts) < 2 {
			return zygo.SexpNull, fmt.Errorf("path requires at least 2 points, got %d", len(pts))
		}
		return newPath(pts), nil
	})

	// (nbrace :origin (pt 0 0 0) :bays 4 :pitch 40 :height 60 :dir :x)
	//
	// A zig-zag of vertical rises and angled drops: base, top, next base,
	// next top, ... ending on the last base.
	env.AddFunction("nbrace", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		origin := geom.Origin
		bays, pitch, height := 1.0, 0.0, 0.0
		dir := geom.XAxis

		if v, ok := pa.kw["origin"]; ok {
			p, err := toPoint(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("nbrace: origin: %w", err)
			}
			origin = p
		}
		for _, k := range []struct {
			key string
			dst *float64
		}{{"bays", &bays}, {"pitch", &pitch}, {"height", &height}} {
			v, ok := pa.kw[k.key]
			if !ok {
				continue
			}
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("nbrace: %s: %w", k.key, err)
			}
			*k.dst = f
		}
		if v, ok := pa.kw["dir"]; ok {
			axis, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("nbrace: dir: %w", err)
			}
			switch axis {
			case "x":
				dir = geom.XAxis
			case "y":
				dir = geom.YAxis
			default:
				return zygo.SexpNull, fmt.Errorf("nbrace: invalid dir %q, expected x or y", axis)
			}
		}

		n := int(bays)
		if float64(n) != bays || n < 1 {
			return zygo.SexpNull, fmt.Errorf("nbrace: bays must be a positive integer, got %g", bays)
		}
		if pitch <= 0 || height <= 0 {
			return zygo.SexpNull, fmt.Errorf("nbrace: pitch and height must be positive")
		}

		pts := make(geom.Polyline, 0, 2*n+1)
		for i := 0; i <= n; i++ {
			base := origin.Add(dir.MulScalar(float64(i) * pitch))
			pts = append(pts, base)
			if i < n {
				pts = append(pts, base.Add(geom.V(0, 0, height)))
			}
		}
		return newPath(pts), nil
	})

	// (layer 120 p1 p2 ...) moves each path so its lowest point sits at z.
	env.AddFunction("layer", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("layer requires a height and at least one path")
		}
		z, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("layer: height: %w", err)
		}
		for i, a := range args[1:] {
			ref, err := toPath(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("layer: argument %d: %w", i+2, err)
			}
			pts := d.Paths[ref.idx].Points
			low := math.Inf(1)
			for _, p := range pts {
				low = math.Min(low, p.Z)
			}
			shift := geom.V(0, 0, z-low)
			for j := range pts {
				pts[j] = pts[j].Add(shift)
			}
		}
		if len(args) == 2 {
			return args[1], nil
		}
		return zygo.MakeList(args[1:]), nil
	})

	// (defpath "spine" (path ...)) names a path.
	env.AddFunction("defpath", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("defpath requires a name and a path expression")
		}
		pathName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defpath: name: %w", err)
		}
		ref, err := toPath(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defpath: %w", err)
		}
		if existing := d.Lookup(pathName); existing != nil && existing != &d.Paths[ref.idx] {
			return zygo.SexpNull, fmt.Errorf("defpath: duplicate path name %q", pathName)
		}
		d.Paths[ref.idx].Name = pathName
		return ref, nil
	})
}
