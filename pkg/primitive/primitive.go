package primitive

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// MaxConnections is the number of connection slots on a primitive.
const MaxConnections = 6

// ErrMalformedTransform is returned when a primitive's matrix cannot be
// decomposed into scale, rotation and translation.
var ErrMalformedTransform = errors.New("malformed transform")

// Primitive is one solid of the plant model. The matrix maps the shape's
// local frame to world space.
type Primitive struct {
	Name        string                      `json:"name"`
	Version     uint32                      `json:"version"`
	Matrix      mgl64.Mat4                  `json:"matrix"`
	Bounds      Bounds                      `json:"bounds"` // local space
	Connections [MaxConnections]*Connection `json:"-"`
	Shape       Shape                       `json:"-"`
}

// New returns a primitive with an identity placement and local bounds
// taken from the shape.
func New(name string, s Shape) *Primitive {
	return &Primitive{
		Name:   name,
		Matrix: mgl64.Ident4(),
		Bounds: s.LocalBounds(),
		Shape:  s,
	}
}

// Kind returns the kind of the primitive's shape.
func (p *Primitive) Kind() Kind {
	return p.Shape.Kind()
}

// Scale decomposes the matrix and returns the per-axis scale factors.
func (p *Primitive) Scale() (mgl64.Vec3, error) {
	m := p.Matrix
	if m[3] != 0 || m[7] != 0 || m[11] != 0 || m[15] != 1 {
		return mgl64.Vec3{}, fmt.Errorf("primitive %s: %w: not affine", p.Name, ErrMalformedTransform)
	}
	sx, sy, sz := mgl64.Extract3DScale(m)
	s := mgl64.Vec3{sx, sy, sz}
	for _, v := range s {
		if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return mgl64.Vec3{}, fmt.Errorf("primitive %s: %w: axis scale %v", p.Name, ErrMalformedTransform, s)
		}
	}
	if math.Abs(m.Mat3().Det()) < 1e-12 {
		return mgl64.Vec3{}, fmt.Errorf("primitive %s: %w: singular linear part", p.Name, ErrMalformedTransform)
	}
	return s, nil
}

// MaxScale returns the largest per-axis scale factor of the matrix.
func (p *Primitive) MaxScale() (float64, error) {
	s, err := p.Scale()
	if err != nil {
		return 0, err
	}
	return math.Max(s[0], math.Max(s[1], s[2])), nil
}

// ToWorld maps a local-space point to world space.
func (p *Primitive) ToWorld(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.TransformCoordinate(v, p.Matrix)
}

// DirectionToWorld maps a local-space direction to a unit world direction.
func (p *Primitive) DirectionToWorld(d mgl64.Vec3) mgl64.Vec3 {
	return mgl64.TransformNormal(d, p.Matrix).Normalize()
}

// Placement composes a local-to-world matrix from a translation, Euler
// rotation in degrees (applied X, then Y, then Z) and per-axis scale.
func Placement(at, rotateDeg, scale mgl64.Vec3) mgl64.Mat4 {
	r := mgl64.HomogRotate3DZ(mgl64.DegToRad(rotateDeg[2])).
		Mul4(mgl64.HomogRotate3DY(mgl64.DegToRad(rotateDeg[1]))).
		Mul4(mgl64.HomogRotate3DX(mgl64.DegToRad(rotateDeg[0])))
	return mgl64.Translate3D(at[0], at[1], at[2]).
		Mul4(r).
		Mul4(mgl64.Scale3D(scale[0], scale[1], scale[2]))
}
