package kernel

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	Name     string    `json:"name"`     // primitive this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Validate checks the buffer invariants: positions and normals have equal
// length, both hold whole vectors, indices hold whole triangles and every
// index names an existing vertex.
func (m *Mesh) Validate() error {
	if len(m.Vertices) != len(m.Normals) {
		return fmt.Errorf("kernel: mesh %q: %d vertex floats but %d normal floats", m.Name, len(m.Vertices), len(m.Normals))
	}
	if len(m.Vertices)%3 != 0 {
		return fmt.Errorf("kernel: mesh %q: vertex buffer length %d is not a multiple of 3", m.Name, len(m.Vertices))
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("kernel: mesh %q: index buffer length %d is not a multiple of 3", m.Name, len(m.Indices))
	}
	n := uint32(m.VertexCount())
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("kernel: mesh %q: index %d at %d out of range (%d vertices)", m.Name, idx, i, n)
		}
	}
	return nil
}

// Vertex returns the position of vertex i.
func (m *Mesh) Vertex(i int) mgl64.Vec3 {
	return mgl64.Vec3{float64(m.Vertices[3*i]), float64(m.Vertices[3*i+1]), float64(m.Vertices[3*i+2])}
}

// Normal returns the normal of vertex i.
func (m *Mesh) Normal(i int) mgl64.Vec3 {
	return mgl64.Vec3{float64(m.Normals[3*i]), float64(m.Normals[3*i+1]), float64(m.Normals[3*i+2])}
}

// Transformed returns a copy of the mesh with positions mapped through mat
// and normals through its linear part, renormalized.
func (m *Mesh) Transformed(mat mgl64.Mat4) *Mesh {
	out := &Mesh{
		Vertices: make([]float32, len(m.Vertices)),
		Normals:  make([]float32, len(m.Normals)),
		Indices:  append([]uint32(nil), m.Indices...),
		Name:     m.Name,
	}
	normalMat := mat.Mat3().Inv().Transpose()
	for i := 0; i < m.VertexCount(); i++ {
		v := mgl64.TransformCoordinate(m.Vertex(i), mat)
		out.Vertices[3*i], out.Vertices[3*i+1], out.Vertices[3*i+2] = float32(v[0]), float32(v[1]), float32(v[2])
	}
	for i := 0; i < len(m.Normals)/3; i++ {
		n := normalMat.Mul3x1(m.Normal(i))
		if l := n.Len(); l > 0 {
			n = n.Mul(1 / l)
		}
		out.Normals[3*i], out.Normals[3*i+1], out.Normals[3*i+2] = float32(n[0]), float32(n[1]), float32(n[2])
	}
	return out
}
