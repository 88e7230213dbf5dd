package primitive

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Shape is the kind-specific payload of a primitive. The set of
// implementations is closed: one type per Kind, all in this package.
type Shape interface {
	Kind() Kind
	// LocalBounds returns the shape's bounding box in its own frame.
	LocalBounds() Bounds
	shape() // marker method restricting implementations to this package
}

// ---------------------------------------------------------------------------
// Rectangular shapes
// ---------------------------------------------------------------------------

// Box is a cuboid centred on the origin.
type Box struct {
	LengthX float64 `json:"length_x"`
	LengthY float64 `json:"length_y"`
	LengthZ float64 `json:"length_z"`
}

func (*Box) Kind() Kind { return KindBox }
func (*Box) shape()     {}

func (b *Box) LocalBounds() Bounds {
	h := mgl64.Vec3{b.LengthX, b.LengthY, b.LengthZ}.Mul(0.5)
	return Bounds{Min: h.Mul(-1), Max: h}
}

// Pyramid is a truncated rectangular pyramid along Z. The top face is
// shifted by Offset relative to the bottom face.
type Pyramid struct {
	BottomX float64 `json:"bottom_x"`
	BottomY float64 `json:"bottom_y"`
	TopX    float64 `json:"top_x"`
	TopY    float64 `json:"top_y"`
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
	Height  float64 `json:"height"`
}

func (*Pyramid) Kind() Kind { return KindPyramid }
func (*Pyramid) shape()     {}

// Quads returns the bottom (index 0) and top (index 1) corner loops.
func (p *Pyramid) Quads() [2][4]mgl64.Vec3 {
	bx, by := 0.5*p.BottomX, 0.5*p.BottomY
	tx, ty := 0.5*p.TopX, 0.5*p.TopY
	ox, oy := 0.5*p.OffsetX, 0.5*p.OffsetY
	h2 := 0.5 * p.Height
	return [2][4]mgl64.Vec3{
		{
			{-bx - ox, -by - oy, -h2}, {bx - ox, -by - oy, -h2},
			{bx - ox, by - oy, -h2}, {-bx - ox, by - oy, -h2},
		},
		{
			{-tx + ox, -ty + oy, h2}, {tx + ox, -ty + oy, h2},
			{tx + ox, ty + oy, h2}, {-tx + ox, ty + oy, h2},
		},
	}
}

func (p *Pyramid) LocalBounds() Bounds {
	q := p.Quads()
	return BoundsOf(append(q[0][:], q[1][:]...)...)
}

// RectangularTorus is a rectangular profile swept Angle radians about Z.
type RectangularTorus struct {
	RadiusInner float64 `json:"radius_inner"`
	RadiusOuter float64 `json:"radius_outer"`
	Height      float64 `json:"height"`
	Angle       float64 `json:"angle"`
}

func (*RectangularTorus) Kind() Kind { return KindRectangularTorus }
func (*RectangularTorus) shape()     {}

func (t *RectangularTorus) LocalBounds() Bounds {
	r, h2 := t.RadiusOuter, 0.5*t.Height
	return Bounds{Min: mgl64.Vec3{-r, -r, -h2}, Max: mgl64.Vec3{r, r, h2}}
}

// ---------------------------------------------------------------------------
// Circular shapes
// ---------------------------------------------------------------------------

// Cylinder is a right circular cylinder along Z centred on the origin.
type Cylinder struct {
	Radius float64 `json:"radius"`
	Height float64 `json:"height"`
}

func (*Cylinder) Kind() Kind { return KindCylinder }
func (*Cylinder) shape()     {}

func (c *Cylinder) LocalBounds() Bounds {
	return Bounds{
		Min: mgl64.Vec3{-c.Radius, -c.Radius, -0.5 * c.Height},
		Max: mgl64.Vec3{c.Radius, c.Radius, 0.5 * c.Height},
	}
}

// Snout is a (possibly eccentric) cone frustum along Z. Side 0 is the
// bottom, side 1 the top.
type Snout struct {
	RadiusBottom float64 `json:"radius_bottom"`
	RadiusTop    float64 `json:"radius_top"`
	Height       float64 `json:"height"`
	OffsetX      float64 `json:"offset_x"`
	OffsetY      float64 `json:"offset_y"`
}

func (*Snout) Kind() Kind { return KindSnout }
func (*Snout) shape()     {}

func (s *Snout) LocalBounds() Bounds {
	ox, oy, h2 := 0.5*s.OffsetX, 0.5*s.OffsetY, 0.5*s.Height
	rb, rt := s.RadiusBottom, s.RadiusTop
	return BoundsOf(
		mgl64.Vec3{-ox - rb, -oy - rb, -h2}, mgl64.Vec3{-ox + rb, -oy + rb, -h2},
		mgl64.Vec3{ox - rt, oy - rt, h2}, mgl64.Vec3{ox + rt, oy + rt, h2},
	)
}

// CircularTorus is a circular profile of Radius swept Angle radians about
// Z at distance Offset from the axis.
type CircularTorus struct {
	Offset float64 `json:"offset"`
	Radius float64 `json:"radius"`
	Angle  float64 `json:"angle"`
}

func (*CircularTorus) Kind() Kind { return KindCircularTorus }
func (*CircularTorus) shape()     {}

func (t *CircularTorus) LocalBounds() Bounds {
	r := t.Offset + t.Radius
	return Bounds{Min: mgl64.Vec3{-r, -r, -t.Radius}, Max: mgl64.Vec3{r, r, t.Radius}}
}

// EllipticalDish is a half ellipsoid standing on its base disc.
type EllipticalDish struct {
	BaseRadius float64 `json:"base_radius"`
	Height     float64 `json:"height"`
}

func (*EllipticalDish) Kind() Kind { return KindEllipticalDish }
func (*EllipticalDish) shape()     {}

func (d *EllipticalDish) LocalBounds() Bounds {
	r := d.BaseRadius
	return Bounds{Min: mgl64.Vec3{-r, -r, 0}, Max: mgl64.Vec3{r, r, d.Height}}
}

// SphericalDish is a spherical cap standing on its base disc.
type SphericalDish struct {
	BaseRadius float64 `json:"base_radius"`
	Height     float64 `json:"height"`
}

func (*SphericalDish) Kind() Kind { return KindSphericalDish }
func (*SphericalDish) shape()     {}

func (d *SphericalDish) LocalBounds() Bounds {
	r := d.BaseRadius
	return Bounds{Min: mgl64.Vec3{-r, -r, 0}, Max: mgl64.Vec3{r, r, d.Height}}
}

// SphereRadius returns the radius of the sphere the cap is cut from.
func (d *SphericalDish) SphereRadius() float64 {
	return (d.BaseRadius*d.BaseRadius + d.Height*d.Height) / (2 * d.Height)
}

// ---------------------------------------------------------------------------
// Shapes without connectable sides
// ---------------------------------------------------------------------------

// Sphere is a full sphere centred on the origin.
type Sphere struct {
	Diameter float64 `json:"diameter"`
}

func (*Sphere) Kind() Kind { return KindSphere }
func (*Sphere) shape()     {}

func (s *Sphere) LocalBounds() Bounds {
	r := 0.5 * s.Diameter
	return Bounds{Min: mgl64.Vec3{-r, -r, -r}, Max: mgl64.Vec3{r, r, r}}
}

// Line is a segment along X from A to B.
type Line struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

func (*Line) Kind() Kind { return KindLine }
func (*Line) shape()     {}

func (l *Line) LocalBounds() Bounds {
	return Bounds{
		Min: mgl64.Vec3{math.Min(l.A, l.B), 0, 0},
		Max: mgl64.Vec3{math.Max(l.A, l.B), 0, 0},
	}
}
