package tessellate

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/plantmesh/pkg/kernel"
	"github.com/chazu/plantmesh/pkg/primitive"
)

// facetBuilder accumulates the triangles of a facet group.
type facetBuilder struct {
	mesh *kernel.Mesh
}

func (fb *facetBuilder) vertexCount() uint32 {
	return uint32(len(fb.mesh.Vertices) / 3)
}

func (fb *facetBuilder) add(v primitive.Vertex) {
	fb.mesh.Vertices = append(fb.mesh.Vertices, float32(v.Position[0]), float32(v.Position[1]), float32(v.Position[2]))
	fb.mesh.Normals = append(fb.mesh.Normals, float32(v.Normal[0]), float32(v.Normal[1]), float32(v.Normal[2]))
}

func (fb *facetBuilder) triangle(a, b, c uint32) {
	fb.mesh.Indices = append(fb.mesh.Indices, a, b, c)
}

// tessellateFacetGroup triangulates every polygon of f in order.
// Triangles and quads are emitted directly; everything else goes through
// the triangulator.
func (t *Tessellator) tessellateFacetGroup(p *primitive.Primitive, f *primitive.FacetGroup) (*kernel.Mesh, error) {
	fb := &facetBuilder{mesh: &kernel.Mesh{Name: p.Name}}

	for pi, poly := range f.Polygons {
		switch {
		case len(poly.Contours) == 1 && len(poly.Contours[0].Vertices) == 3:
			vo := fb.vertexCount()
			for _, v := range poly.Contours[0].Vertices {
				fb.add(v)
			}
			fb.triangle(vo, vo+1, vo+2)

		case len(poly.Contours) == 1 && len(poly.Contours[0].Vertices) == 4:
			fb.quad(poly.Contours[0].Vertices)

		default:
			if err := t.splice(fb, poly); err != nil {
				return nil, fmt.Errorf("tessellate: facet group %s polygon %d: %w", p.Name, pi, err)
			}
		}
	}
	return fb.mesh, nil
}

// quad splits a four-vertex contour along the diagonal that folds it least.
func (fb *facetBuilder) quad(vs []primitive.Vertex) {
	v0, v1, v2, v3 := vs[0].Position, vs[1].Position, vs[2].Position, vs[3].Position
	v01 := v1.Sub(v0)
	v12 := v2.Sub(v1)
	v23 := v3.Sub(v2)
	v30 := v0.Sub(v3)
	n0 := v01.Cross(v30)
	n1 := v12.Cross(v01)
	n2 := v23.Cross(v12)
	n3 := v30.Cross(v23)

	vo := fb.vertexCount()
	for _, v := range vs {
		fb.add(v)
	}
	if n0.Dot(n2) < n1.Dot(n3) {
		fb.triangle(vo, vo+1, vo+2)
		fb.triangle(vo+2, vo+3, vo)
	} else {
		fb.triangle(vo+3, vo, vo+1)
		fb.triangle(vo+1, vo+2, vo+3)
	}
}

// splice runs poly through the triangulator and appends the result.
// Vertices are submitted relative to the polygon's bounding box centre.
func (t *Tessellator) splice(fb *facetBuilder, poly primitive.Polygon) error {
	m := poly.Bounds().Center()

	n := poly.VertexCount()
	vertices := make([]float32, 0, 3*n)
	normals := make([]float32, 0, 3*n)
	counts := make([]int, len(poly.Contours))
	for ci, c := range poly.Contours {
		counts[ci] = len(c.Vertices)
		for _, v := range c.Vertices {
			q := v.Position.Sub(m)
			vertices = append(vertices, float32(q[0]), float32(q[1]), float32(q[2]))
			normals = append(normals, float32(v.Normal[0]), float32(v.Normal[1]), float32(v.Normal[2]))
		}
	}

	job := t.opts.Triangulator.Submit(vertices, normals, counts)
	if job.Failed() {
		return fmt.Errorf("submit %d contours, %d vertices: %w", len(counts), n, kernel.ErrTriangulation)
	}

	outV := make([]float32, job.VertexCount)
	outN := make([]float32, job.NormalCount)
	outI := make([]uint32, job.IndexCount)
	if err := t.opts.Triangulator.Collect(job, outV, outN, outI); err != nil {
		return fmt.Errorf("collect job %d: %w", job.ID, err)
	}

	vo := fb.vertexCount()
	for i := 0; i+2 < len(outV); i += 3 {
		q := mgl64.Vec3{float64(outV[i]), float64(outV[i+1]), float64(outV[i+2])}.Add(m)
		fb.mesh.Vertices = append(fb.mesh.Vertices, float32(q[0]), float32(q[1]), float32(q[2]))
	}
	fb.mesh.Normals = append(fb.mesh.Normals, outN...)
	for _, idx := range outI {
		fb.mesh.Indices = append(fb.mesh.Indices, vo+idx)
	}

	if len(fb.mesh.Vertices) != len(fb.mesh.Normals) {
		panic(fmt.Sprintf("tessellate: %d vertex floats but %d normal floats after splice",
			len(fb.mesh.Vertices), len(fb.mesh.Normals)))
	}
	return nil
}
