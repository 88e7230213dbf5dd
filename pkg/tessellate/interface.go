package tessellate

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/plantmesh/pkg/primitive"
)

// InterfaceKind is the shape category of a primitive side.
type InterfaceKind int

const (
	InterfaceUndefined InterfaceKind = iota
	InterfaceSquare
	InterfaceCircular
)

func (k InterfaceKind) String() string {
	switch k {
	case InterfaceSquare:
		return "square"
	case InterfaceCircular:
		return "circular"
	default:
		return "undefined"
	}
}

// Interface describes the contact geometry of one side of a primitive in
// world space. Corners is set for square interfaces, Radius for circular.
type Interface struct {
	Kind    InterfaceKind
	Corners [4]mgl64.Vec3
	Radius  float64
}

// boxFaces holds the corner signs of each box face in -X, +X, -Y, +Y, -Z,
// +Z order. Corners wind counter-clockwise seen from outside.
var boxFaces = [6][4][3]float64{
	{{-1, -1, 1}, {-1, 1, 1}, {-1, 1, -1}, {-1, -1, -1}},
	{{1, -1, -1}, {1, 1, -1}, {1, 1, 1}, {1, -1, 1}},
	{{1, -1, -1}, {1, -1, 1}, {-1, -1, 1}, {-1, -1, -1}},
	{{-1, 1, -1}, {-1, 1, 1}, {1, 1, 1}, {1, 1, -1}},
	{{-1, 1, -1}, {1, 1, -1}, {1, -1, -1}, {-1, -1, -1}},
	{{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1}},
}

// boxNormals holds the outward normal of each box face.
var boxNormals = [6]mgl64.Vec3{
	{-1, 0, 0}, {1, 0, 0},
	{0, -1, 0}, {0, 1, 0},
	{0, 0, -1}, {0, 0, 1},
}

// boxFace returns the local corners of face i of b.
func boxFace(b *primitive.Box, i int) [4]mgl64.Vec3 {
	h := mgl64.Vec3{0.5 * b.LengthX, 0.5 * b.LengthY, 0.5 * b.LengthZ}
	var out [4]mgl64.Vec3
	for k, s := range boxFaces[i] {
		out[k] = mgl64.Vec3{s[0] * h[0], s[1] * h[1], s[2] * h[2]}
	}
	return out
}

// Extract computes the world-space interface of side of p. The matrix of p
// must decompose into scale, rotation and translation; otherwise the error
// wraps primitive.ErrMalformedTransform.
func Extract(p *primitive.Primitive, side int) (Interface, error) {
	scale, err := p.MaxScale()
	if err != nil {
		return Interface{}, fmt.Errorf("tessellate: interface of %s side %d: %w", p.Name, side, err)
	}

	square := func(local [4]mgl64.Vec3) Interface {
		in := Interface{Kind: InterfaceSquare}
		for k, c := range local {
			in.Corners[k] = p.ToWorld(c)
		}
		return in
	}
	circular := func(r float64) Interface {
		return Interface{Kind: InterfaceCircular, Radius: scale * r}
	}

	switch s := p.Shape.(type) {
	case *primitive.Box:
		if side < 0 || side >= 6 {
			return Interface{}, nil
		}
		return square(boxFace(s, side)), nil

	case *primitive.Pyramid:
		q := s.Quads()
		switch {
		case side >= 0 && side < 4:
			return square([4]mgl64.Vec3{
				q[0][side], q[0][(side+1)&3], q[1][(side+1)&3], q[1][side],
			}), nil
		case side == 4 || side == 5:
			return square(q[side-4]), nil
		}
		return Interface{}, nil

	case *primitive.RectangularTorus:
		h2 := 0.5 * s.Height
		profile := [4][2]float64{
			{s.RadiusOuter, -h2}, {s.RadiusInner, -h2},
			{s.RadiusInner, h2}, {s.RadiusOuter, h2},
		}
		var local [4]mgl64.Vec3
		if side == 0 {
			for k, xz := range profile {
				local[k] = mgl64.Vec3{xz[0], 0, xz[1]}
			}
		} else {
			c, sn := math.Cos(s.Angle), math.Sin(s.Angle)
			for k, xz := range profile {
				local[k] = mgl64.Vec3{xz[0] * c, xz[0] * sn, xz[1]}
			}
		}
		return square(local), nil

	case *primitive.CircularTorus:
		return circular(s.Radius), nil

	case *primitive.EllipticalDish:
		return circular(s.BaseRadius), nil

	case *primitive.SphericalDish:
		return circular(s.SphereRadius()), nil

	case *primitive.Snout:
		if side == 0 {
			return circular(s.RadiusBottom), nil
		}
		return circular(s.RadiusTop), nil

	case *primitive.Cylinder:
		return circular(s.Radius), nil

	default:
		return Interface{}, nil
	}
}
