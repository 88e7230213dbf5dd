package tessellate

import (
	"github.com/chazu/plantmesh/pkg/primitive"
)

// Covered reports whether the side of geo taking part in conn is hidden by
// the primitive on the other end, so its face can be left out of the mesh.
//
// Circular sides are covered by a mate whose radius is at least this side's
// radius divided by RadiusSlack. Square sides are covered when every corner
// has a corner of the mate within CornerTolerance. Any other combination is
// never covered.
func (t *Tessellator) Covered(geo *primitive.Primitive, conn *primitive.Connection) (bool, error) {
	side, other, otherSide, ok := conn.Ends(geo)
	if !ok {
		return false, nil
	}

	this, err := Extract(geo, side)
	if err != nil {
		return false, err
	}
	that, err := Extract(other, otherSide)
	if err != nil {
		return false, err
	}

	if this.Kind != that.Kind {
		return false, nil
	}

	switch this.Kind {
	case InterfaceCircular:
		return this.Radius <= t.opts.RadiusSlack*that.Radius, nil

	case InterfaceSquare:
		tol2 := t.opts.CornerTolerance * t.opts.CornerTolerance
		for _, a := range this.Corners {
			found := false
			for _, b := range that.Corners {
				if d := a.Sub(b); d.Dot(d) < tol2 {
					found = true
					break
				}
			}
			if !found {
				return false, nil
			}
		}
		return true, nil
	}
	return false, nil
}
