package primitive

// Kind enumerates the primitive shape families of the plant model.
type Kind int

const (
	KindBox Kind = iota
	KindPyramid
	KindCylinder
	KindSnout
	KindCircularTorus
	KindRectangularTorus
	KindEllipticalDish
	KindSphericalDish
	KindSphere
	KindLine
	KindFacetGroup
)

func (k Kind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindPyramid:
		return "pyramid"
	case KindCylinder:
		return "cylinder"
	case KindSnout:
		return "snout"
	case KindCircularTorus:
		return "circular-torus"
	case KindRectangularTorus:
		return "rectangular-torus"
	case KindEllipticalDish:
		return "elliptical-dish"
	case KindSphericalDish:
		return "spherical-dish"
	case KindSphere:
		return "sphere"
	case KindLine:
		return "line"
	case KindFacetGroup:
		return "facet-group"
	default:
		return "unknown"
	}
}

// SideCount returns how many connectable sides a primitive of this kind has.
func (k Kind) SideCount() int {
	switch k {
	case KindBox, KindPyramid:
		return 6
	case KindCylinder, KindSnout, KindCircularTorus, KindRectangularTorus:
		return 2
	case KindEllipticalDish, KindSphericalDish:
		return 1
	default:
		return 0
	}
}

// Rectangular reports whether the kind presents planar quadrilateral sides.
func (k Kind) Rectangular() bool {
	return k == KindBox || k == KindPyramid || k == KindRectangularTorus
}

// Circular reports whether the kind presents circular sides.
func (k Kind) Circular() bool {
	switch k {
	case KindCylinder, KindSnout, KindCircularTorus, KindEllipticalDish, KindSphericalDish:
		return true
	}
	return false
}
