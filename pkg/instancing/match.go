package instancing

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/plantmesh/pkg/primitive"
)

// Match reports whether a maps onto b and returns the transform with
// transform(a) = b. Every vertex of a, walked in polygon, contour, vertex
// order, must land within tolerance of the vertex at the same position in
// b; copies stored with a different vertex order do not match.
func Match(a, b *primitive.FacetGroup, tolerance float64) (mgl64.Mat4, bool) {
	transform, ok := TryGetTransform(a, b)
	if !ok {
		return mgl64.Mat4{}, false
	}

	for i, pa := range a.Polygons {
		pb := b.Polygons[i]
		for j, ca := range pa.Contours {
			cb := pb.Contours[j]
			for k, va := range ca.Vertices {
				got := mgl64.TransformCoordinate(va.Position, transform)
				if got.Sub(cb.Vertices[k].Position).Len() > tolerance {
					return transform, false
				}
			}
		}
	}
	return transform, true
}
