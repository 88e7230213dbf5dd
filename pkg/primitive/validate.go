package primitive

import (
	"errors"
	"fmt"
)

// ValidationSeverity indicates whether a finding blocks tessellation or is
// merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks tessellation
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Primitive string             // name of the primitive, empty if scene-level
	Message   string             // human-readable description
	Severity  ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.Primitive == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Primitive, e.Message)
}

// ValidationResult separates blocking errors from advisory warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether no blocking errors were found.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate runs all checks on the scene. It never mutates the scene.
func Validate(s *Scene) ValidationResult {
	var all []ValidationError
	all = append(all, validateNames(s)...)
	for _, p := range s.Primitives {
		all = append(all, validateTransform(p)...)
		all = append(all, validateShape(p)...)
		all = append(all, validateConnections(p)...)
	}

	var r ValidationResult
	for _, e := range all {
		if e.Severity == SeverityWarning {
			r.Warnings = append(r.Warnings, e)
		} else {
			r.Errors = append(r.Errors, e)
		}
	}
	return r
}

func validateNames(s *Scene) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool, len(s.Primitives))
	for _, p := range s.Primitives {
		if seen[p.Name] {
			errs = append(errs, ValidationError{
				Primitive: p.Name,
				Message:   "duplicate primitive name",
				Severity:  SeverityError,
			})
		}
		seen[p.Name] = true
	}
	return errs
}

func validateTransform(p *Primitive) []ValidationError {
	_, err := p.Scale()
	if err == nil {
		return nil
	}
	msg := err.Error()
	if errors.Is(err, ErrMalformedTransform) {
		msg = "matrix cannot be decomposed into scale, rotation and translation"
	}
	return []ValidationError{{Primitive: p.Name, Message: msg, Severity: SeverityError}}
}

func validateShape(p *Primitive) []ValidationError {
	var errs []ValidationError
	fail := func(sev ValidationSeverity, format string, args ...any) {
		errs = append(errs, ValidationError{
			Primitive: p.Name,
			Message:   fmt.Sprintf(format, args...),
			Severity:  sev,
		})
	}
	negative := func(name string, v float64) {
		if v < 0 {
			fail(SeverityError, "%s must not be negative, got %g", name, v)
		}
	}

	switch s := p.Shape.(type) {
	case *Box:
		negative("length x", s.LengthX)
		negative("length y", s.LengthY)
		negative("length z", s.LengthZ)
		if s.LengthX == 0 || s.LengthY == 0 || s.LengthZ == 0 {
			fail(SeverityWarning, "zero-length edge, faces on that axis are dropped")
		}
	case *Pyramid:
		negative("bottom x", s.BottomX)
		negative("bottom y", s.BottomY)
		negative("top x", s.TopX)
		negative("top y", s.TopY)
		negative("height", s.Height)
	case *Cylinder:
		negative("radius", s.Radius)
		negative("height", s.Height)
	case *Snout:
		negative("bottom radius", s.RadiusBottom)
		negative("top radius", s.RadiusTop)
		negative("height", s.Height)
	case *CircularTorus:
		negative("radius", s.Radius)
		negative("offset", s.Offset)
	case *RectangularTorus:
		negative("inner radius", s.RadiusInner)
		negative("height", s.Height)
		if s.RadiusOuter < s.RadiusInner {
			fail(SeverityError, "outer radius %g is smaller than inner radius %g", s.RadiusOuter, s.RadiusInner)
		}
	case *EllipticalDish:
		negative("base radius", s.BaseRadius)
		negative("height", s.Height)
	case *SphericalDish:
		negative("base radius", s.BaseRadius)
		negative("height", s.Height)
		if s.Height == 0 {
			fail(SeverityWarning, "spherical dish has zero height, its sphere radius is undefined")
		}
	case *Sphere:
		negative("diameter", s.Diameter)
	case *Line:
	case *FacetGroup:
		if len(s.Polygons) == 0 {
			fail(SeverityWarning, "facet group has no polygons")
		}
		for i, poly := range s.Polygons {
			if len(poly.Contours) == 0 {
				fail(SeverityError, "polygon %d has no contours", i)
			}
			for j, c := range poly.Contours {
				if len(c.Vertices) < 3 {
					fail(SeverityError, "polygon %d contour %d has %d vertices, need at least 3", i, j, len(c.Vertices))
				}
			}
		}
	case nil:
		fail(SeverityError, "primitive has no shape")
	default:
		fail(SeverityError, "unhandled shape type %T", p.Shape)
	}
	return errs
}

func validateConnections(p *Primitive) []ValidationError {
	if p.Shape == nil {
		return nil
	}
	var errs []ValidationError
	for side, c := range p.Connections {
		if c == nil {
			continue
		}
		own, _, _, ok := c.Ends(p)
		switch {
		case !ok:
			errs = append(errs, ValidationError{
				Primitive: p.Name,
				Message:   fmt.Sprintf("connection on side %d does not reference this primitive", side),
				Severity:  SeverityError,
			})
		case own != side:
			errs = append(errs, ValidationError{
				Primitive: p.Name,
				Message:   fmt.Sprintf("connection stored on side %d names side %d", side, own),
				Severity:  SeverityError,
			})
		case side >= p.Kind().SideCount():
			errs = append(errs, ValidationError{
				Primitive: p.Name,
				Message:   fmt.Sprintf("%s has no side %d", p.Kind(), side),
				Severity:  SeverityError,
			})
		}
	}
	return errs
}
