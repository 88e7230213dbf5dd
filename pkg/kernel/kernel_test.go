package kernel

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// --- Mesh helper method tests ---

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []float32{1, 2, 3}, 1},
		{"four vertices", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleCount(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		want    int
	}{
		{"empty", nil, 0},
		{"one triangle", []uint32{0, 1, 2}, 1},
		{"two triangles", []uint32{0, 1, 2, 2, 3, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Indices: tt.indices}
			if got := m.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshIsEmpty(t *testing.T) {
	t.Run("empty mesh", func(t *testing.T) {
		m := &Mesh{}
		if !m.IsEmpty() {
			t.Error("IsEmpty() = false for empty mesh, want true")
		}
	})
	t.Run("non-empty mesh", func(t *testing.T) {
		m := &Mesh{Vertices: []float32{1, 2, 3}}
		if m.IsEmpty() {
			t.Error("IsEmpty() = true for non-empty mesh, want false")
		}
	})
}

func TestMeshValidate(t *testing.T) {
	tri := func() *Mesh {
		return &Mesh{
			Name:     "tri",
			Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
			Normals:  []float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
			Indices:  []uint32{0, 1, 2},
		}
	}
	tests := []struct {
		name    string
		mutate  func(m *Mesh)
		wantErr string
	}{
		{"valid", func(m *Mesh) {}, ""},
		{"empty", func(m *Mesh) { *m = Mesh{} }, ""},
		{"normal count mismatch", func(m *Mesh) { m.Normals = m.Normals[:6] }, "normal floats"},
		{"partial vector", func(m *Mesh) {
			m.Vertices = append(m.Vertices, 1)
			m.Normals = append(m.Normals, 1)
		}, "not a multiple of 3"},
		{"partial triangle", func(m *Mesh) { m.Indices = append(m.Indices, 0) }, "index buffer"},
		{"index out of range", func(m *Mesh) { m.Indices[2] = 3 }, "out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tri()
			tt.mutate(m)
			err := m.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestMeshTransformed(t *testing.T) {
	m := &Mesh{
		Name:     "quad",
		Vertices: []float32{0, 0, 0, 1, 0, 0, 1, 1, 0},
		Normals:  []float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
		Indices:  []uint32{0, 1, 2},
	}
	mat := mgl64.Translate3D(5, 0, 0).Mul4(mgl64.HomogRotate3DX(math.Pi / 2)).Mul4(mgl64.Scale3D(2, 2, 2))
	out := m.Transformed(mat)

	if out.Name != "quad" {
		t.Errorf("Name = %q, want quad", out.Name)
	}
	if got := out.Vertex(1); !got.ApproxEqualThreshold(mgl64.Vec3{7, 0, 0}, 1e-6) {
		t.Errorf("Vertex(1) = %v, want [7 0 0]", got)
	}
	// +Z rotated a quarter turn about X points along -Y; scale must not leak into the normal.
	if got := out.Normal(0); !got.ApproxEqualThreshold(mgl64.Vec3{0, -1, 0}, 1e-6) {
		t.Errorf("Normal(0) = %v, want [0 -1 0]", got)
	}
	if m.Vertices[3] != 1 {
		t.Error("Transformed modified the source mesh")
	}
}

// --- Compile-time interface checks with stubs ---

// stubSolid is a minimal Solid implementation for testing.
type stubSolid struct {
	minBB, maxBB [3]float64
}

func (s *stubSolid) BoundingBox() (min, max [3]float64) {
	return s.minBB, s.maxBB
}

// stubKernel is a minimal Kernel implementation that proves the interface
// is satisfiable. All methods return trivial results.
type stubKernel struct{}

func (k *stubKernel) Box(x, y, z float64) Solid {
	return &stubSolid{
		minBB: [3]float64{-x / 2, -y / 2, -z / 2},
		maxBB: [3]float64{x / 2, y / 2, z / 2},
	}
}

func (k *stubKernel) Cylinder(height, radius float64) Solid {
	return &stubSolid{
		minBB: [3]float64{-radius, -radius, -height / 2},
		maxBB: [3]float64{radius, radius, height / 2},
	}
}

func (k *stubKernel) Cone(height, bottom, top float64) Solid {
	r := math.Max(bottom, top)
	return k.Cylinder(height, r)
}

func (k *stubKernel) Sphere(radius float64) Solid {
	return k.Box(2*radius, 2*radius, 2*radius)
}

func (k *stubKernel) Intersection(a, _ Solid) Solid            { return a }
func (k *stubKernel) Translate(s Solid, _, _, _ float64) Solid { return s }

func (k *stubKernel) ToMesh(_ Solid) (*Mesh, error) {
	return &Mesh{}, nil
}

// stubTriangulator fans every submission from its first vertex.
type stubTriangulator struct {
	jobs map[int][]uint32
}

func (s *stubTriangulator) Submit(vertices, normals []float32, contourCounts []int) Job {
	if len(contourCounts) != 1 || contourCounts[0] < 3 {
		return Job{ID: -1}
	}
	var idx []uint32
	for i := 1; i+1 < contourCounts[0]; i++ {
		idx = append(idx, 0, uint32(i), uint32(i+1))
	}
	if s.jobs == nil {
		s.jobs = make(map[int][]uint32)
	}
	id := len(s.jobs)
	s.jobs[id] = idx
	return Job{ID: id, VertexCount: len(vertices), NormalCount: len(normals), IndexCount: len(idx)}
}

func (s *stubTriangulator) Collect(job Job, _, _ []float32, indices []uint32) error {
	idx, ok := s.jobs[job.ID]
	if !ok {
		return ErrTriangulation
	}
	copy(indices, idx)
	delete(s.jobs, job.ID)
	return nil
}

var _ Solid = (*stubSolid)(nil)
var _ Kernel = (*stubKernel)(nil)
var _ Triangulator = (*stubTriangulator)(nil)

func TestStubKernelBoxBoundingBox(t *testing.T) {
	var k Kernel = &stubKernel{}
	s := k.Box(10, 20, 30)
	min, max := s.BoundingBox()
	if min != [3]float64{-5, -10, -15} {
		t.Errorf("Box min = %v, want [-5 -10 -15]", min)
	}
	if max != [3]float64{5, 10, 15} {
		t.Errorf("Box max = %v, want [5 10 15]", max)
	}
}

func TestJobFailed(t *testing.T) {
	var tr Triangulator = &stubTriangulator{}
	if job := tr.Submit(nil, nil, []int{2}); !job.Failed() {
		t.Errorf("Submit(2 vertices) = %+v, want failed job", job)
	}
	pentagon := make([]float32, 15)
	job := tr.Submit(pentagon, pentagon, []int{5})
	if job.Failed() {
		t.Fatalf("Submit(pentagon) failed")
	}
	if job.IndexCount != 9 {
		t.Errorf("IndexCount = %d, want 9", job.IndexCount)
	}
	idx := make([]uint32, job.IndexCount)
	if err := tr.Collect(job, nil, nil, idx); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if err := tr.Collect(job, nil, nil, idx); !errors.Is(err, ErrTriangulation) {
		t.Errorf("second Collect = %v, want ErrTriangulation", err)
	}
}
