package primitive

import (
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// ConnectionFlags describes the shape category of a connection interface.
type ConnectionFlags int

const (
	HasCircularSide ConnectionFlags = 1 << iota
	HasRectangularSide
)

func (f ConnectionFlags) String() string {
	var parts []string
	if f&HasCircularSide != 0 {
		parts = append(parts, "circular")
	}
	if f&HasRectangularSide != 0 {
		parts = append(parts, "rectangular")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Connection joins side SideA of primitive A to side SideB of primitive B.
// Both primitives reference the same value from their side slots.
type Connection struct {
	A, B      *Primitive
	SideA     int
	SideB     int
	Position  mgl64.Vec3 // world-space contact point, zero if unknown
	Direction mgl64.Vec3 // world-space outward direction of A's side
	Flags     ConnectionFlags
}

// Ends returns the side of p and the primitive and side on the other end.
// ok is false if p is not part of the connection.
func (c *Connection) Ends(p *Primitive) (side int, other *Primitive, otherSide int, ok bool) {
	switch p {
	case c.A:
		return c.SideA, c.B, c.SideB, true
	case c.B:
		return c.SideB, c.A, c.SideA, true
	}
	return 0, nil, 0, false
}
