package primitive

import "github.com/go-gl/mathgl/mgl64"

// Vertex is a facet corner with its shading normal.
type Vertex struct {
	Position mgl64.Vec3 `json:"position"`
	Normal   mgl64.Vec3 `json:"normal"`
}

// Contour is one closed loop of a polygon: the outer boundary or a hole.
type Contour struct {
	Vertices []Vertex `json:"vertices"`
}

// Polygon is a planar face bounded by one or more contours.
type Polygon struct {
	Contours []Contour `json:"contours"`
}

// FacetGroup is a primitive given as an explicit polygon set. The order of
// polygons, contours and vertices is significant for instance matching.
type FacetGroup struct {
	Polygons []Polygon `json:"polygons"`
}

func (*FacetGroup) Kind() Kind { return KindFacetGroup }
func (*FacetGroup) shape()     {}

func (f *FacetGroup) LocalBounds() Bounds {
	b := EmptyBounds()
	f.EachVertex(func(v Vertex) {
		b = b.Extend(v.Position)
	})
	return b
}

// ContourCount returns the total number of contours over all polygons.
func (f *FacetGroup) ContourCount() int {
	n := 0
	for _, p := range f.Polygons {
		n += len(p.Contours)
	}
	return n
}

// VertexCount returns the total number of vertices over all contours.
func (f *FacetGroup) VertexCount() int {
	n := 0
	for _, p := range f.Polygons {
		for _, c := range p.Contours {
			n += len(c.Vertices)
		}
	}
	return n
}

// EachVertex calls fn for every vertex in polygon, contour, vertex order.
func (f *FacetGroup) EachVertex(fn func(v Vertex)) {
	for _, p := range f.Polygons {
		for _, c := range p.Contours {
			for _, v := range c.Vertices {
				fn(v)
			}
		}
	}
}

// Positions returns every vertex position in polygon, contour, vertex order.
func (f *FacetGroup) Positions() []mgl64.Vec3 {
	out := make([]mgl64.Vec3, 0, f.VertexCount())
	f.EachVertex(func(v Vertex) {
		out = append(out, v.Position)
	})
	return out
}

// SameTopology reports whether both groups have the same polygon count,
// per-polygon contour counts and per-contour vertex counts.
func (f *FacetGroup) SameTopology(o *FacetGroup) bool {
	if len(f.Polygons) != len(o.Polygons) {
		return false
	}
	for i, p := range f.Polygons {
		q := o.Polygons[i]
		if len(p.Contours) != len(q.Contours) {
			return false
		}
		for j, c := range p.Contours {
			if len(c.Vertices) != len(q.Contours[j].Vertices) {
				return false
			}
		}
	}
	return true
}

// Bounds returns the bounding box of a polygon's vertices.
func (p Polygon) Bounds() Bounds {
	b := EmptyBounds()
	for _, c := range p.Contours {
		for _, v := range c.Vertices {
			b = b.Extend(v.Position)
		}
	}
	return b
}

// VertexCount returns the number of vertices over the polygon's contours.
func (p Polygon) VertexCount() int {
	n := 0
	for _, c := range p.Contours {
		n += len(c.Vertices)
	}
	return n
}

// PlaneNormal returns the unit Newell normal of the contour loop, or the
// zero vector for a degenerate loop.
func (c Contour) PlaneNormal() mgl64.Vec3 {
	var n mgl64.Vec3
	for i, v := range c.Vertices {
		a, b := v.Position, c.Vertices[(i+1)%len(c.Vertices)].Position
		n[0] += (a[1] - b[1]) * (a[2] + b[2])
		n[1] += (a[2] - b[2]) * (a[0] + b[0])
		n[2] += (a[0] - b[0]) * (a[1] + b[1])
	}
	if n.Len() == 0 {
		return mgl64.Vec3{}
	}
	return n.Normalize()
}
