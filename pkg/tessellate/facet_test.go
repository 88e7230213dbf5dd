package tessellate_test

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/plantmesh/pkg/kernel"
	"github.com/chazu/plantmesh/pkg/primitive"
	"github.com/chazu/plantmesh/pkg/tessellate"
)

// contour builds a contour whose vertices all carry normal n.
func contour(n mgl64.Vec3, pts ...mgl64.Vec3) primitive.Contour {
	c := primitive.Contour{Vertices: make([]primitive.Vertex, len(pts))}
	for i, p := range pts {
		c.Vertices[i] = primitive.Vertex{Position: p, Normal: n}
	}
	return c
}

func facetPrimitive(polys ...primitive.Polygon) *primitive.Primitive {
	return primitive.New("facets", &primitive.FacetGroup{Polygons: polys})
}

var up = mgl64.Vec3{0, 0, 1}

func TestFacetTriangle(t *testing.T) {
	pts := []mgl64.Vec3{{0, 0, 0}, {2, 0, 0}, {0, 3, 0}}
	p := facetPrimitive(primitive.Polygon{Contours: []primitive.Contour{contour(up, pts...)}})

	mesh, err := newTessellator().Tessellate(p)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if mesh.VertexCount() != 3 || mesh.TriangleCount() != 1 {
		t.Fatalf("got %d vertices / %d triangles, want 3 / 1", mesh.VertexCount(), mesh.TriangleCount())
	}
	for i, want := range pts {
		if mesh.Vertex(i) != want {
			t.Errorf("vertex %d = %v, want %v", i, mesh.Vertex(i), want)
		}
		if mesh.Normal(i) != up {
			t.Errorf("normal %d = %v, want %v", i, mesh.Normal(i), up)
		}
	}
	if got := mesh.Indices; got[0] != 0 || got[1] != 1 || got[2] != 2 {
		t.Errorf("indices = %v, want [0 1 2]", got)
	}
}

func TestFacetQuadDiagonal(t *testing.T) {
	tests := []struct {
		name string
		pts  []mgl64.Vec3
		want []uint32
	}{
		{
			// Reflex corner at vertex 3: split along 1-3.
			name: "dart reflex at 3",
			pts:  []mgl64.Vec3{{0, 0, 0}, {2, 1, 0}, {0, 2, 0}, {0.5, 1, 0}},
			want: []uint32{3, 0, 1, 1, 2, 3},
		},
		{
			// Reflex corner at vertex 0: split along 0-2.
			name: "dart reflex at 0",
			pts:  []mgl64.Vec3{{0.5, 1, 0}, {0, 0, 0}, {2, 1, 0}, {0, 2, 0}},
			want: []uint32{0, 1, 2, 2, 3, 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := facetPrimitive(primitive.Polygon{Contours: []primitive.Contour{contour(up, tt.pts...)}})
			mesh, err := newTessellator().Tessellate(p)
			if err != nil {
				t.Fatalf("Tessellate failed: %v", err)
			}
			if mesh.VertexCount() != 4 {
				t.Fatalf("VertexCount() = %d, want 4", mesh.VertexCount())
			}
			if len(mesh.Indices) != len(tt.want) {
				t.Fatalf("indices = %v, want %v", mesh.Indices, tt.want)
			}
			for i := range tt.want {
				if mesh.Indices[i] != tt.want[i] {
					t.Fatalf("indices = %v, want %v", mesh.Indices, tt.want)
				}
			}
		})
	}
}

func TestFacetPolygonsAppend(t *testing.T) {
	tri := primitive.Polygon{Contours: []primitive.Contour{contour(up, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0})}}
	quad := primitive.Polygon{Contours: []primitive.Contour{contour(up,
		mgl64.Vec3{0, 0, 1}, mgl64.Vec3{1, 0, 1}, mgl64.Vec3{1, 1, 1}, mgl64.Vec3{0, 1, 1})}}

	mesh, err := newTessellator().Tessellate(facetPrimitive(tri, quad))
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if mesh.VertexCount() != 7 || mesh.TriangleCount() != 3 {
		t.Fatalf("got %d vertices / %d triangles, want 7 / 3", mesh.VertexCount(), mesh.TriangleCount())
	}
	for _, idx := range mesh.Indices[3:] {
		if idx < 3 {
			t.Errorf("quad index %d refers to the triangle's vertices", idx)
		}
	}
	if err := mesh.Validate(); err != nil {
		t.Errorf("invalid mesh: %v", err)
	}
}

func TestFacetComplexPolygon(t *testing.T) {
	// A hexagon far from the origin goes through the triangulator.
	var pts []mgl64.Vec3
	for i := 0; i < 6; i++ {
		a := math.Pi / 3 * float64(i)
		pts = append(pts, mgl64.Vec3{1000 + math.Cos(a), 2000 + math.Sin(a), 5})
	}
	lead := primitive.Polygon{Contours: []primitive.Contour{contour(up, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0})}}
	hex := primitive.Polygon{Contours: []primitive.Contour{contour(up, pts...)}}

	mesh, err := newTessellator().Tessellate(facetPrimitive(lead, hex))
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if err := mesh.Validate(); err != nil {
		t.Fatalf("invalid mesh: %v", err)
	}
	if mesh.VertexCount() != 9 || mesh.TriangleCount() != 5 {
		t.Fatalf("got %d vertices / %d triangles, want 9 / 5", mesh.VertexCount(), mesh.TriangleCount())
	}
	for i, want := range pts {
		if got := mesh.Vertex(3 + i); got.Sub(want).Len() > 1e-3 {
			t.Errorf("vertex %d = %v, want %v", 3+i, got, want)
		}
	}
	for _, idx := range mesh.Indices[3:] {
		if idx < 3 {
			t.Errorf("hexagon index %d not offset past the leading triangle", idx)
		}
	}
}

func TestFacetPolygonWithHole(t *testing.T) {
	outer := contour(up, mgl64.Vec3{-2, -2, 0}, mgl64.Vec3{2, -2, 0}, mgl64.Vec3{2, 2, 0}, mgl64.Vec3{-2, 2, 0})
	hole := contour(up, mgl64.Vec3{-1, -1, 0}, mgl64.Vec3{-1, 1, 0}, mgl64.Vec3{1, 1, 0}, mgl64.Vec3{1, -1, 0})
	mesh, err := newTessellator().Tessellate(facetPrimitive(primitive.Polygon{Contours: []primitive.Contour{outer, hole}}))
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if mesh.VertexCount() != 8 || mesh.TriangleCount() != 8 {
		t.Errorf("got %d vertices / %d triangles, want 8 / 8", mesh.VertexCount(), mesh.TriangleCount())
	}
}

// failingTriangulator rejects every submission.
type failingTriangulator struct{}

func (failingTriangulator) Submit(_, _ []float32, _ []int) kernel.Job { return kernel.Job{ID: -1} }
func (failingTriangulator) Collect(kernel.Job, []float32, []float32, []uint32) error {
	return kernel.ErrTriangulation
}

func TestFacetTriangulationFailure(t *testing.T) {
	pts := []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {3, 0, 0}, {4, 0, 0}}
	p := facetPrimitive(primitive.Polygon{Contours: []primitive.Contour{contour(up, pts...)}})

	for name, tr := range map[string]*tessellate.Tessellator{
		"poly2tri": newTessellator(),
		"failing":  tessellate.New(tessellate.Options{Triangulator: failingTriangulator{}}),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := tr.Tessellate(p)
			if !errors.Is(err, kernel.ErrTriangulation) {
				t.Fatalf("error = %v, want ErrTriangulation", err)
			}
		})
	}
}

func TestFacetEmptyGroup(t *testing.T) {
	mesh, err := newTessellator().Tessellate(facetPrimitive())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if !mesh.IsEmpty() {
		t.Error("empty facet group produced geometry")
	}
}
