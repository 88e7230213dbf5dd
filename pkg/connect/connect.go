// Package connect discovers connections between primitives whose sides
// touch. Each connectable side gets an anchor: the world position of the
// side's centre and its outward direction. Anchors of different
// primitives that coincide and face each other are connected.
package connect

import (
	"cmp"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/dhconnelly/rtreego"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/plantmesh/pkg/primitive"
)

// opposed is the largest direction dot product of two facing anchors.
const opposed = -0.9

// Anchor is the world-space centre and outward direction of one side.
type Anchor struct {
	Primitive *primitive.Primitive
	Side      int
	Position  mgl64.Vec3
	Direction mgl64.Vec3

	order int     // primitive index in the scene
	tol   float64 // half extent of the anchor's box in the index
}

// Bounds implements rtreego.Spatial.
func (a *Anchor) Bounds() rtreego.Rect {
	return rtreego.Point(a.Position[:]).ToRect(a.tol)
}

type localAnchor struct {
	side     int
	pos, dir mgl64.Vec3
}

// localAnchors returns the connectable sides of a shape in its own frame.
func localAnchors(s primitive.Shape) []localAnchor {
	minusZ, plusZ := mgl64.Vec3{0, 0, -1}, mgl64.Vec3{0, 0, 1}
	sweep := func(r, angle float64) []localAnchor {
		c, sn := math.Cos(angle), math.Sin(angle)
		return []localAnchor{
			{0, mgl64.Vec3{r, 0, 0}, mgl64.Vec3{0, -1, 0}},
			{1, mgl64.Vec3{r * c, r * sn, 0}, mgl64.Vec3{-sn, c, 0}},
		}
	}

	switch s := s.(type) {
	case *primitive.Box:
		h := mgl64.Vec3{0.5 * s.LengthX, 0.5 * s.LengthY, 0.5 * s.LengthZ}
		out := make([]localAnchor, 6)
		for i := range out {
			axis := i / 2
			dir := mgl64.Vec3{}
			dir[axis] = float64(2*(i%2) - 1)
			pos := mgl64.Vec3{}
			pos[axis] = dir[axis] * h[axis]
			out[i] = localAnchor{i, pos, dir}
		}
		return out
	case *primitive.Pyramid:
		ox, oy, h2 := 0.5*s.OffsetX, 0.5*s.OffsetY, 0.5*s.Height
		return []localAnchor{
			{4, mgl64.Vec3{-ox, -oy, -h2}, minusZ},
			{5, mgl64.Vec3{ox, oy, h2}, plusZ},
		}
	case *primitive.Cylinder:
		h2 := 0.5 * s.Height
		return []localAnchor{
			{0, mgl64.Vec3{0, 0, -h2}, minusZ},
			{1, mgl64.Vec3{0, 0, h2}, plusZ},
		}
	case *primitive.Snout:
		ox, oy, h2 := 0.5*s.OffsetX, 0.5*s.OffsetY, 0.5*s.Height
		return []localAnchor{
			{0, mgl64.Vec3{-ox, -oy, -h2}, minusZ},
			{1, mgl64.Vec3{ox, oy, h2}, plusZ},
		}
	case *primitive.CircularTorus:
		return sweep(s.Offset, s.Angle)
	case *primitive.RectangularTorus:
		return sweep(0.5*(s.RadiusInner+s.RadiusOuter), s.Angle)
	case *primitive.EllipticalDish, *primitive.SphericalDish:
		return []localAnchor{{0, mgl64.Vec3{}, minusZ}}
	}
	return nil
}

// Anchors returns the world-space anchors of p. It fails if p's matrix
// cannot be decomposed.
func Anchors(p *primitive.Primitive) ([]Anchor, error) {
	if _, err := p.Scale(); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	local := localAnchors(p.Shape)
	out := make([]Anchor, len(local))
	for i, la := range local {
		out[i] = Anchor{
			Primitive: p,
			Side:      la.side,
			Position:  p.ToWorld(la.pos),
			Direction: p.DirectionToWorld(la.dir),
		}
	}
	return out, nil
}

// Flags returns the interface category shared by two primitive kinds.
func Flags(a, b primitive.Kind) primitive.ConnectionFlags {
	switch {
	case a.Rectangular() && b.Rectangular():
		return primitive.HasRectangularSide
	case a.Circular() && b.Circular():
		return primitive.HasCircularSide
	}
	return 0
}

// Options configures Connect.
type Options struct {
	Tolerance float64 // max anchor distance, default 1e-3
	Logger    *slog.Logger
}

// Connect links every pair of facing, coincident anchors of s whose side
// slots are free. Existing connections are kept. New connections are
// returned in primitive order, then side order.
func Connect(s *primitive.Scene, opts Options) ([]*primitive.Connection, error) {
	if opts.Tolerance <= 0 {
		opts.Tolerance = 1e-3
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	var anchors []*Anchor
	for i, p := range s.Primitives {
		as, err := Anchors(p)
		if err != nil {
			return nil, err
		}
		for j := range as {
			as[j].order = i
			as[j].tol = opts.Tolerance
			anchors = append(anchors, &as[j])
		}
	}
	if len(anchors) == 0 {
		return nil, nil
	}

	spatials := make([]rtreego.Spatial, len(anchors))
	for i, a := range anchors {
		spatials[i] = a
	}
	tree := rtreego.NewTree(3, 25, 50, spatials...)

	var created []*primitive.Connection
	for _, a := range anchors {
		if a.Primitive.Connections[a.Side] != nil {
			continue
		}
		var mates []*Anchor
		for _, hit := range tree.SearchIntersect(a.Bounds()) {
			b := hit.(*Anchor)
			if b.Primitive == a.Primitive || b.Primitive.Connections[b.Side] != nil {
				continue
			}
			if b.Position.Sub(a.Position).Len() > opts.Tolerance || a.Direction.Dot(b.Direction) > opposed {
				continue
			}
			mates = append(mates, b)
		}
		if len(mates) == 0 {
			continue
		}
		b := slices.MinFunc(mates, func(x, y *Anchor) int {
			return cmp.Or(cmp.Compare(x.order, y.order), cmp.Compare(x.Side, y.Side))
		})

		conn, err := s.Connect(a.Primitive, a.Side, b.Primitive, b.Side, Flags(a.Primitive.Kind(), b.Primitive.Kind()))
		if err != nil {
			return nil, fmt.Errorf("connect: %w", err)
		}
		conn.Position = a.Position
		conn.Direction = a.Direction
		created = append(created, conn)
		opts.Logger.Debug("connected",
			"a", a.Primitive.Name, "side_a", a.Side,
			"b", b.Primitive.Name, "side_b", b.Side,
			"flags", conn.Flags)
	}
	return created, nil
}
