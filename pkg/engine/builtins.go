package engine

import (
	"fmt"
	"slices"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/plantmesh/pkg/connect"
	"github.com/chazu/plantmesh/pkg/primitive"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// preprocessSource rewrites scene source into plain zygomys syntax:
//
//  1. :keyword becomes the string literal "__kw_keyword", so keywords need
//     no global bindings and cannot clash with user variables.
//  2. A hyphen between identifier characters becomes an underscore
//     (circular-torus -> circular_torus); zygomys reads "-" as minus.
//  3. ; line comments become // comments.
//
// String literals and comment bodies are copied unchanged.
func preprocessSource(source string) string {
	var out strings.Builder
	out.Grow(len(source) + len(source)/4)

	for i := 0; i < len(source); {
		c := source[i]
		switch {
		case c == '"' || c == '`':
			j := skipString(source, i)
			out.WriteString(source[i:j])
			i = j
		case c == ';':
			for i < len(source) && source[i] == ';' {
				i++
			}
			j := lineEnd(source, i)
			out.WriteString("//")
			out.WriteString(source[i:j])
			i = j
		case c == '/' && i+1 < len(source) && source[i+1] == '/':
			j := lineEnd(source, i)
			out.WriteString(source[i:j])
			i = j
		case c == ':' && i+1 < len(source) && isLetter(source[i+1]):
			j := i + 1
			for j < len(source) && isKWChar(source[j]) {
				j++
			}
			out.WriteString(`"` + kwPrefix + source[i+1:j] + `"`)
			i = j
		case c == '-' && i > 0 && i+1 < len(source) &&
			isIdentChar(source[i-1]) && isLetter(source[i+1]):
			out.WriteByte('_')
			i++
		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String()
}

// skipString returns the index just past the string literal starting at i.
// Double-quoted literals honour backslash escapes; backtick literals are raw.
func skipString(s string, i int) int {
	q := s[i]
	j := i + 1
	for j < len(s) && s[j] != q {
		if q == '"' && s[j] == '\\' && j+1 < len(s) {
			j += 2
			continue
		}
		j++
	}
	if j < len(s) {
		j++
	}
	return j
}

func lineEnd(s string, i int) int {
	if k := strings.IndexByte(s[i:], '\n'); k >= 0 {
		return i + k
	}
	return len(s)
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

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

type sexpVec3 struct {
	vec mgl64.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec[0], v.vec[1], v.vec[2])
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpPrimitive is returned by the shape builtins and by ref.
type sexpPrimitive struct {
	p *primitive.Primitive
}

func (s *sexpPrimitive) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s %q)", s.p.Kind(), s.p.Name)
}
func (s *sexpPrimitive) Type() *zygo.RegisteredType { return nil }

type sexpContour struct {
	c primitive.Contour
}

func (s *sexpContour) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(contour %d)", len(s.c.Vertices))
}
func (s *sexpContour) Type() *zygo.RegisteredType { return nil }

type sexpPolygon struct {
	p primitive.Polygon
}

func (s *sexpPolygon) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(polygon %d)", len(s.p.Contours))
}
func (s *sexpPolygon) Type() *zygo.RegisteredType { return nil }

type sexpConnection struct {
	c *primitive.Connection
}

func (s *sexpConnection) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(connect %q %d %q %d)", s.c.A.Name, s.c.SideA, s.c.B.Name, s.c.SideB)
}
func (s *sexpConnection) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW checks if a Sexp is a preprocessed keyword string and returns the
// keyword name without its prefix.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	order      []string // keywords in source order
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	a := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			a.positional = append(a.positional, args[i])
			continue
		}
		a.order = append(a.order, name)
		if i+1 < len(args) {
			a.kw[name] = args[i+1]
			i++
		} else {
			// Trailing keyword with no value.
			a.kw[name] = zygo.SexpNull
		}
	}
	return a
}

// only fails on the first keyword not in allowed.
func (a kwArgs) only(allowed ...string) error {
	for _, k := range a.order {
		if !slices.Contains(allowed, k) {
			return fmt.Errorf("unknown keyword :%s", k)
		}
	}
	return nil
}

// float stores keyword key in dst when present.
func (a kwArgs) float(key string, dst *float64) error {
	v, ok := a.kw[key]
	if !ok {
		return nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

// degrees stores keyword key, given in degrees, in dst as radians.
func (a kwArgs) degrees(key string, dst *float64) error {
	if _, ok := a.kw[key]; !ok {
		return nil
	}
	var deg float64
	if err := a.float(key, &deg); err != nil {
		return err
	}
	*dst = mgl64.DegToRad(deg)
	return nil
}

// vec stores keyword key in dst when present.
func (a kwArgs) vec(key string, dst *mgl64.Vec3) error {
	v, ok := a.kw[key]
	if !ok {
		return nil
	}
	vec, err := toVec3(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = vec
	return nil
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

func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
func toKeywordString(s zygo.Sexp) (string, error) {
	if name, ok := isKW(s); ok {
		return name, nil
	}
	str, err := toString(s)
	if err != nil {
		return "", fmt.Errorf("expected keyword or string: %w", err)
	}
	return str, nil
}

func toVec3(s zygo.Sexp) (mgl64.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return mgl64.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

func toPrimitive(s zygo.Sexp) (*primitive.Primitive, error) {
	if v, ok := s.(*sexpPrimitive); ok {
		return v.p, nil
	}
	return nil, fmt.Errorf("expected primitive, got %T (%s)", s, s.SexpString(nil))
}

// toScale accepts a number for uniform scale or a vec3 per axis.
func toScale(s zygo.Sexp) (mgl64.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	f, err := toFloat64(s)
	if err != nil {
		return mgl64.Vec3{}, fmt.Errorf("expected number or vec3: %w", err)
	}
	return mgl64.Vec3{f, f, f}, nil
}

func toFlags(s zygo.Sexp) (primitive.ConnectionFlags, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, err
	}
	switch name {
	case "rect", "rectangular":
		return primitive.HasRectangularSide, nil
	case "circular":
		return primitive.HasCircularSide, nil
	case "none":
		return 0, nil
	}
	return 0, fmt.Errorf("invalid flag %q, expected rect, circular or none", name)
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Shape builtins
// ---------------------------------------------------------------------------

// placementKeys are accepted by every shape builtin.
var placementKeys = []string{"name", "at", "rotate", "scale", "version"}

type shapeBuiltin struct {
	keys  []string
	build func(a kwArgs) (primitive.Shape, error)
}

// shapeBuiltins maps builtin names to shape constructors. Angles are given
// in degrees.
var shapeBuiltins = map[string]shapeBuiltin{
	"box": {[]string{"size"}, func(a kwArgs) (primitive.Shape, error) {
		var size mgl64.Vec3
		err := a.vec("size", &size)
		return &primitive.Box{LengthX: size[0], LengthY: size[1], LengthZ: size[2]}, err
	}},
	"pyramid": {[]string{"bottom", "top", "offset", "height"}, func(a kwArgs) (primitive.Shape, error) {
		var bottom, top, offset mgl64.Vec3
		s := &primitive.Pyramid{}
		err := firstErr(
			a.vec("bottom", &bottom), a.vec("top", &top),
			a.vec("offset", &offset), a.float("height", &s.Height),
		)
		s.BottomX, s.BottomY = bottom[0], bottom[1]
		s.TopX, s.TopY = top[0], top[1]
		s.OffsetX, s.OffsetY = offset[0], offset[1]
		return s, err
	}},
	"cylinder": {[]string{"radius", "height"}, func(a kwArgs) (primitive.Shape, error) {
		s := &primitive.Cylinder{}
		return s, firstErr(a.float("radius", &s.Radius), a.float("height", &s.Height))
	}},
	"snout": {[]string{"bottom", "top", "height", "offset"}, func(a kwArgs) (primitive.Shape, error) {
		var offset mgl64.Vec3
		s := &primitive.Snout{}
		err := firstErr(
			a.float("bottom", &s.RadiusBottom), a.float("top", &s.RadiusTop),
			a.float("height", &s.Height), a.vec("offset", &offset),
		)
		s.OffsetX, s.OffsetY = offset[0], offset[1]
		return s, err
	}},
	"circular_torus": {[]string{"offset", "radius", "angle"}, func(a kwArgs) (primitive.Shape, error) {
		s := &primitive.CircularTorus{}
		return s, firstErr(a.float("offset", &s.Offset), a.float("radius", &s.Radius), a.degrees("angle", &s.Angle))
	}},
	"rectangular_torus": {[]string{"inner", "outer", "height", "angle"}, func(a kwArgs) (primitive.Shape, error) {
		s := &primitive.RectangularTorus{}
		return s, firstErr(
			a.float("inner", &s.RadiusInner), a.float("outer", &s.RadiusOuter),
			a.float("height", &s.Height), a.degrees("angle", &s.Angle),
		)
	}},
	"elliptical_dish": {[]string{"radius", "height"}, func(a kwArgs) (primitive.Shape, error) {
		s := &primitive.EllipticalDish{}
		return s, firstErr(a.float("radius", &s.BaseRadius), a.float("height", &s.Height))
	}},
	"spherical_dish": {[]string{"radius", "height"}, func(a kwArgs) (primitive.Shape, error) {
		s := &primitive.SphericalDish{}
		return s, firstErr(a.float("radius", &s.BaseRadius), a.float("height", &s.Height))
	}},
	"sphere": {[]string{"diameter"}, func(a kwArgs) (primitive.Shape, error) {
		s := &primitive.Sphere{}
		return s, a.float("diameter", &s.Diameter)
	}},
	"line": {[]string{"a", "b"}, func(a kwArgs) (primitive.Shape, error) {
		s := &primitive.Line{}
		return s, firstErr(a.float("a", &s.A), a.float("b", &s.B))
	}},
	"facet_group": {nil, func(a kwArgs) (primitive.Shape, error) {
		fg := &primitive.FacetGroup{}
		for i, arg := range a.positional {
			poly, ok := arg.(*sexpPolygon)
			if !ok {
				return nil, fmt.Errorf("polygon %d: expected polygon, got %T (%s)", i, arg, arg.SexpString(nil))
			}
			fg.Polygons = append(fg.Polygons, poly.p)
		}
		return fg, nil
	}},
}

// addPrimitive builds a primitive from a shape builtin's arguments and adds
// it to the scene.
func addPrimitive(s *primitive.Scene, fn string, b shapeBuiltin, args []zygo.Sexp) (zygo.Sexp, error) {
	a := parseArgs(args)
	if err := a.only(append(slices.Clone(b.keys), placementKeys...)...); err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
	}
	if fn != "facet-group" && len(a.positional) > 0 {
		return zygo.SexpNull, fmt.Errorf("%s: unexpected positional argument %s", fn, a.positional[0].SexpString(nil))
	}

	shape, err := b.build(a)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
	}

	var name string
	if v, ok := a.kw["name"]; ok {
		if name, err = toString(v); err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: name: %w", fn, err)
		}
	}
	p := primitive.New(name, shape)

	at, rotate, scale := mgl64.Vec3{}, mgl64.Vec3{}, mgl64.Vec3{1, 1, 1}
	if err := firstErr(a.vec("at", &at), a.vec("rotate", &rotate)); err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
	}
	if v, ok := a.kw["scale"]; ok {
		if scale, err = toScale(v); err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: scale: %w", fn, err)
		}
	}
	p.Matrix = primitive.Placement(at, rotate, scale)

	if v, ok := a.kw["version"]; ok {
		n, err := toInt(v)
		if err != nil || n < 0 {
			return zygo.SexpNull, fmt.Errorf("%s: version: expected non-negative integer, got %s", fn, v.SexpString(nil))
		}
		p.Version = uint32(n)
	}

	s.Add(p)
	return &sexpPrimitive{p: p}, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the scene builtins into a zygomys environment.
// The builtins add primitives and connections to s during evaluation.
//
// Kebab-case builtins are registered under their underscore names, which
// is what preprocessSource turns them into.
func registerBuiltins(env *zygo.Zlisp, s *primitive.Scene) {
	for name, b := range shapeBuiltins {
		fn := strings.ReplaceAll(name, "_", "-")
		env.AddFunction(name, func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
			return addPrimitive(s, fn, b, args)
		})
	}

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var v mgl64.Vec3
		for i, arg := range args {
			f, err := toFloat64(arg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %c: %w", "xyz"[i], err)
			}
			v[i] = f
		}
		return &sexpVec3{vec: v}, nil
	})

	// -----------------------------------------------------------------------
	// (contour (vec3 0 0 0) (vec3 1 0 0) (vec3 1 1 0) :normal (vec3 0 0 1))
	// -----------------------------------------------------------------------
	env.AddFunction("contour", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs(args)
		if err := a.only("normal"); err != nil {
			return zygo.SexpNull, fmt.Errorf("contour: %w", err)
		}
		var c primitive.Contour
		for i, arg := range a.positional {
			pos, err := toVec3(arg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("contour: vertex %d: %w", i, err)
			}
			c.Vertices = append(c.Vertices, primitive.Vertex{Position: pos})
		}

		normal := c.PlaneNormal()
		if err := a.vec("normal", &normal); err != nil {
			return zygo.SexpNull, fmt.Errorf("contour: %w", err)
		}
		for i := range c.Vertices {
			c.Vertices[i].Normal = normal
		}
		return &sexpContour{c: c}, nil
	})

	// -----------------------------------------------------------------------
	// (polygon (contour ...) (contour ...))
	// -----------------------------------------------------------------------
	env.AddFunction("polygon", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		var p primitive.Polygon
		for i, arg := range args {
			c, ok := arg.(*sexpContour)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("polygon: contour %d: expected contour, got %T (%s)",
					i, arg, arg.SexpString(nil))
			}
			p.Contours = append(p.Contours, c.c)
		}
		return &sexpPolygon{p: p}, nil
	})

	// -----------------------------------------------------------------------
	// (ref "name")
	// -----------------------------------------------------------------------
	env.AddFunction("ref", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("ref requires a name argument")
		}
		n, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ref: name: %w", err)
		}
		p := s.Lookup(n)
		if p == nil {
			return zygo.SexpNull, fmt.Errorf("ref: no primitive named %q", n)
		}
		return &sexpPrimitive{p: p}, nil
	})

	// -----------------------------------------------------------------------
	// (connect (ref "a") 1 (ref "b") 0 :flag :rect)
	// -----------------------------------------------------------------------
	env.AddFunction("connect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs(args)
		if err := a.only("flag"); err != nil {
			return zygo.SexpNull, fmt.Errorf("connect: %w", err)
		}
		if len(a.positional) != 4 {
			return zygo.SexpNull, fmt.Errorf("connect requires primitive, side, primitive, side; got %d arguments",
				len(a.positional))
		}
		pa, err := toPrimitive(a.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("connect: first primitive: %w", err)
		}
		sa, err := toInt(a.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("connect: first side: %w", err)
		}
		pb, err := toPrimitive(a.positional[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("connect: second primitive: %w", err)
		}
		sb, err := toInt(a.positional[3])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("connect: second side: %w", err)
		}

		flags := connect.Flags(pa.Kind(), pb.Kind())
		if v, ok := a.kw["flag"]; ok {
			if flags, err = toFlags(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("connect: flag: %w", err)
			}
		}

		c, err := s.Connect(pa, sa, pb, sb, flags)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("connect: %w", err)
		}
		return &sexpConnection{c: c}, nil
	})
}
