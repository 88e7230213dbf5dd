package tessellate

import (
	"fmt"
	"math"

	"github.com/chazu/plantmesh/pkg/kernel"
	"github.com/chazu/plantmesh/pkg/primitive"
)

// preview builds an approximate local-space mesh of p with the preview
// kernel. Snout offsets are ignored and elliptical dishes are drawn as
// spherical caps of the same base and height.
func (t *Tessellator) preview(p *primitive.Primitive) (mesh *kernel.Mesh, err error) {
	k := t.opts.Preview

	// Kernel constructors panic on degenerate dimensions.
	defer func() {
		if r := recover(); r != nil {
			mesh, err = nil, fmt.Errorf("tessellate: preview %s: %v", p.Name, r)
		}
	}()

	var solid kernel.Solid
	switch s := p.Shape.(type) {
	case *primitive.Cylinder:
		solid = k.Cylinder(s.Height, s.Radius)
	case *primitive.Snout:
		solid = k.Cone(s.Height, s.RadiusBottom, s.RadiusTop)
	case *primitive.Sphere:
		solid = k.Sphere(0.5 * s.Diameter)
	case *primitive.SphericalDish:
		solid = sphereCap(k, s.BaseRadius, s.Height)
	case *primitive.EllipticalDish:
		solid = sphereCap(k, s.BaseRadius, s.Height)
	default:
		return nil, &UnsupportedError{Primitive: p.Name, Kind: p.Kind()}
	}

	mesh, err = k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("tessellate: preview %s: %w", p.Name, err)
	}
	mesh.Name = p.Name
	return mesh, nil
}

// sphereCap returns the cap of height h over a base disc of radius r lying
// in the z=0 plane.
func sphereCap(k kernel.Kernel, r, h float64) kernel.Solid {
	if h <= 0 {
		panic(fmt.Sprintf("sphere cap height %g", h))
	}
	rs := (r*r + h*h) / (2 * h)
	sphere := k.Translate(k.Sphere(rs), 0, 0, h-rs)
	w := 2 * math.Max(r, rs)
	slab := k.Translate(k.Box(w, w, h), 0, 0, 0.5*h)
	return k.Intersection(sphere, slab)
}
