package instancing

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"

	"github.com/chazu/plantmesh/pkg/primitive"
)

// eps is the absolute distance below which two vertices coincide.
const eps = 1e-3

// flatEps bounds the scale-free measures of the degeneracy tests: sin of
// the angle between two edges, and the volume spanned by three edges over
// the product of their lengths.
const flatEps = 1e-3

// scaleEps is the relative difference of squared edge lengths below which
// no scale is solved for.
const scaleEps = 1e-6

// axisEps bounds sin² of the angle below which two edges count as parallel.
const axisEps = 1e-12

// collinear reports whether u and v are parallel relative to their lengths.
func collinear(u, v mgl64.Vec3) bool {
	return u.Cross(v).Len() <= flatEps*u.Len()*v.Len()
}

type pair struct {
	a, b mgl64.Vec3
}

// TryGetTransform estimates the transform mapping a onto b from four
// corresponding, non-coplanar vertices. It reports false when the
// topologies differ, when a is planar or when no per-axis scale fits.
// The result is not verified against the remaining vertices; see Match.
func TryGetTransform(a, b *primitive.FacetGroup) (mgl64.Mat4, bool) {
	if !a.SameTopology(b) {
		return mgl64.Mat4{}, false
	}

	pa, pb := a.Positions(), b.Positions()
	picked := make([]pair, 0, 4)

candidates:
	for i := range pa {
		ca, cb := pa[i], pb[i]
		for _, p := range picked {
			if p.a.Sub(ca).Len() < eps {
				continue candidates
			}
		}

		switch len(picked) {
		case 3:
			m := mat.NewDense(4, 4, []float64{
				picked[0].a[0], picked[1].a[0], picked[2].a[0], ca[0],
				picked[0].a[1], picked[1].a[1], picked[2].a[1], ca[1],
				picked[0].a[2], picked[1].a[2], picked[2].a[2], ca[2],
				1, 1, 1, 1,
			})
			e1 := picked[1].a.Sub(picked[0].a)
			e2 := picked[2].a.Sub(picked[0].a)
			e3 := ca.Sub(picked[0].a)
			if math.Abs(mat.Det(m)) > flatEps*e1.Len()*e2.Len()*e3.Len() {
				return calculateTransform(
					[4]mgl64.Vec3{picked[0].a, picked[1].a, picked[2].a, ca},
					[4]mgl64.Vec3{picked[0].b, picked[1].b, picked[2].b, cb},
				)
			}
		case 2:
			if !collinear(picked[1].a.Sub(picked[0].a), ca.Sub(picked[0].a)) {
				picked = append(picked, pair{ca, cb})
			}
		default:
			picked = append(picked, pair{ca, cb})
		}
	}
	// Planar groups need a 2-D solve, which is not implemented.
	return mgl64.Mat4{}, false
}

// calculateTransform solves b = R(S a) + t for four point pairs whose
// first entries span three dimensions.
func calculateTransform(pa, pb [4]mgl64.Vec3) (mgl64.Mat4, bool) {
	va12, va13, va14 := pa[1].Sub(pa[0]), pa[2].Sub(pa[0]), pa[3].Sub(pa[0])
	vb12, vb13, vb14 := pb[1].Sub(pb[0]), pb[2].Sub(pb[0]), pb[3].Sub(pb[0])

	bLen := mgl64.Vec3{vb12.Dot(vb12), vb13.Dot(vb13), vb14.Dot(vb14)}
	aLen := mgl64.Vec3{va12.Dot(va12), va13.Dot(va13), va14.Dot(va14)}

	scale := mgl64.Vec3{1, 1, 1}
	if aLen.Sub(bLen).Len() > scaleEps*bLen.Len() {
		// Each row: ax²·sx² + ay²·sy² + az²·sz² = |b|².
		sq := func(v mgl64.Vec3) []float64 { return []float64{v[0] * v[0], v[1] * v[1], v[2] * v[2]} }
		m := mat.NewDense(3, 3, append(append(sq(va12), sq(va13)...), sq(va14)...))
		var inv mat.Dense
		if err := inv.Inverse(m); err != nil {
			return mgl64.Mat4{}, false
		}
		var s2 mat.VecDense
		s2.MulVec(&inv, mat.NewVecDense(3, bLen[:]))
		for i := 0; i < 3; i++ {
			v := s2.AtVec(i)
			if v < 0 || math.IsNaN(v) {
				// Only shear could map these edges.
				return mgl64.Mat4{}, false
			}
			scale[i] = math.Sqrt(v)
		}
		va12 = mul(va12, scale)
		va13 = mul(va13, scale)
	}

	// Align the plane normals, then turn about the shared normal until the
	// first edges agree.
	na := va12.Cross(va13).Normalize()
	nb := vb12.Cross(vb13).Normalize()
	rot1 := mgl64.QuatBetweenVectors(na, nb)

	va12r1 := rot1.Rotate(va12)
	rot2 := mgl64.QuatIdent()
	axis := va12r1.Cross(vb12)
	switch {
	case axis.Dot(axis) > axisEps*va12r1.Dot(va12r1)*vb12.Dot(vb12):
		rot2 = mgl64.QuatRotate(angleBetween(va12r1, vb12), axis.Normalize())
	case va12r1.Dot(vb12) < 0:
		// Opposed edges: half a turn about the shared normal.
		rot2 = mgl64.QuatRotate(math.Pi, nb)
	}
	rotation := rot2.Mul(rot1)

	translation := pb[0].Sub(rotation.Rotate(mul(pa[0], scale)))

	return mgl64.Translate3D(translation[0], translation[1], translation[2]).
		Mul4(rotation.Mat4()).
		Mul4(mgl64.Scale3D(scale[0], scale[1], scale[2])), true
}

func mul(v, s mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v[0] * s[0], v[1] * s[1], v[2] * s[2]}
}

func angleBetween(u, v mgl64.Vec3) float64 {
	c := u.Dot(v) / (u.Len() * v.Len())
	return math.Acos(mgl64.Clamp(c, -1, 1))
}
