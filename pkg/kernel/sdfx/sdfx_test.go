package sdfx

import (
	"math"
	"testing"

	"github.com/chazu/plantmesh/pkg/kernel"
)

// testCells keeps marching cubes fast in tests.
const testCells = 24

func checkMesh(t *testing.T, mesh *kernel.Mesh) {
	t.Helper()
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	if mesh.TriangleCount() == 0 {
		t.Fatal("expected non-zero triangle count")
	}
	if err := mesh.Validate(); err != nil {
		t.Fatalf("invalid mesh: %v", err)
	}
}

func TestBox(t *testing.T) {
	k := New(testCells)
	box := k.Box(100, 50, 25)
	min, max := box.BoundingBox()
	if math.Abs(min[0]+50) > 1e-9 || math.Abs(max[2]-12.5) > 1e-9 {
		t.Fatalf("box bounds = %v %v, want centred on origin", min, max)
	}
	mesh, err := k.ToMesh(box)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	checkMesh(t, mesh)
}

func TestCylinder(t *testing.T) {
	k := New(testCells)
	mesh, err := k.ToMesh(k.Cylinder(50, 10))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	checkMesh(t, mesh)
	t.Logf("cylinder triangle count: %d", mesh.TriangleCount())
}

func TestCone(t *testing.T) {
	k := New(testCells)
	cone := k.Cone(20, 10, 5)
	min, max := cone.BoundingBox()
	if min[2] > -10+1e-6 || max[2] < 10-1e-6 {
		t.Errorf("cone z extent = [%g, %g], want [-10, 10]", min[2], max[2])
	}
	mesh, err := k.ToMesh(cone)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	checkMesh(t, mesh)
}

func TestSphereCap(t *testing.T) {
	k := New(testCells)
	sphere := k.Sphere(10)
	slab := k.Translate(k.Box(30, 30, 4), 0, 0, 8)
	capSolid := k.Intersection(sphere, slab)

	mesh, err := k.ToMesh(capSolid)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	checkMesh(t, mesh)
	for i := 0; i < mesh.VertexCount(); i++ {
		if z := mesh.Vertex(i)[2]; z < 5 {
			t.Fatalf("vertex %d at z=%g lies below the cap", i, z)
		}
	}
}

func TestTranslate(t *testing.T) {
	k := New(testCells)
	s := k.Translate(k.Sphere(1), 10, 0, 0)
	min, max := s.BoundingBox()
	if math.Abs(min[0]-9) > 1e-9 || math.Abs(max[0]-11) > 1e-9 {
		t.Errorf("translated x extent = [%g, %g], want [9, 11]", min[0], max[0])
	}
}

func TestNewDefaultCells(t *testing.T) {
	if k := New(0); k.cells != DefaultMeshCells {
		t.Errorf("New(0).cells = %d, want %d", k.cells, DefaultMeshCells)
	}
}
