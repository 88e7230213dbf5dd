// Package poly2tri implements kernel.Triangulator with the constrained
// Delaunay sweep from github.com/ByteArena/poly2tri-go.
//
// Contours are projected onto the coordinate plane most perpendicular to
// the polygon normal. The contour with the largest projected area bounds
// the polygon; every other contour is a hole. Output vertices are the
// input vertices, so no new points are introduced.
package poly2tri

import (
	"fmt"
	"log/slog"
	"math"
	"sync"

	p2t "github.com/ByteArena/poly2tri-go"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/plantmesh/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Triangulator = (*Triangulator)(nil)

type result struct {
	vertices []float32
	normals  []float32
	indices  []uint32
}

// Triangulator buffers results between Submit and Collect.
// It is safe for concurrent use.
type Triangulator struct {
	logger *slog.Logger

	mu   sync.Mutex
	next int
	jobs map[int]*result
}

// New returns a Triangulator. A nil logger selects slog.Default().
func New(logger *slog.Logger) *Triangulator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Triangulator{logger: logger, jobs: make(map[int]*result)}
}

// Submit triangulates the polygon and buffers the result. A failed
// triangulation returns a Job with a negative ID.
func (t *Triangulator) Submit(vertices, normals []float32, contourCounts []int) kernel.Job {
	res, err := triangulate(vertices, normals, contourCounts)
	if err != nil {
		t.logger.Warn("polygon rejected by triangulator", "contours", len(contourCounts), "error", err)
		return kernel.Job{ID: -1}
	}

	t.mu.Lock()
	id := t.next
	t.next++
	t.jobs[id] = res
	t.mu.Unlock()

	return kernel.Job{
		ID:          id,
		VertexCount: len(res.vertices),
		NormalCount: len(res.normals),
		IndexCount:  len(res.indices),
	}
}

// Collect copies the buffered result of job into the given slices and
// releases it. Each job can be collected once.
func (t *Triangulator) Collect(job kernel.Job, vertices, normals []float32, indices []uint32) error {
	t.mu.Lock()
	res, ok := t.jobs[job.ID]
	delete(t.jobs, job.ID)
	t.mu.Unlock()

	if !ok {
		return fmt.Errorf("poly2tri: unknown job %d: %w", job.ID, kernel.ErrTriangulation)
	}
	if len(vertices) != len(res.vertices) || len(normals) != len(res.normals) || len(indices) != len(res.indices) {
		return fmt.Errorf("poly2tri: job %d: buffer sizes %d/%d/%d, want %d/%d/%d: %w",
			job.ID, len(vertices), len(normals), len(indices),
			len(res.vertices), len(res.normals), len(res.indices), kernel.ErrTriangulation)
	}
	copy(vertices, res.vertices)
	copy(normals, res.normals)
	copy(indices, res.indices)
	return nil
}

// Pending returns the number of submitted jobs not yet collected.
func (t *Triangulator) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.jobs)
}

// ----------------------------------------------------------------------------
// Triangulation
// ----------------------------------------------------------------------------

func triangulate(vertices, normals []float32, contourCounts []int) (res *result, err error) {
	if len(vertices) != len(normals) {
		return nil, fmt.Errorf("%d vertex floats but %d normal floats", len(vertices), len(normals))
	}
	if len(contourCounts) == 0 {
		return nil, fmt.Errorf("no contours")
	}
	total := 0
	for i, n := range contourCounts {
		if n < 3 {
			return nil, fmt.Errorf("contour %d has %d vertices", i, n)
		}
		total += n
	}
	if 3*total != len(vertices) {
		return nil, fmt.Errorf("contour counts sum to %d vertices, buffer holds %d floats", total, len(vertices))
	}

	positions := make([]mgl64.Vec3, total)
	for i := range positions {
		positions[i] = mgl64.Vec3{float64(vertices[3*i]), float64(vertices[3*i+1]), float64(vertices[3*i+2])}
	}

	// Split into contours and pick the outer boundary.
	contours := make([][]int, len(contourCounts))
	start := 0
	for i, n := range contourCounts {
		idx := make([]int, n)
		for j := range idx {
			idx[j] = start + j
		}
		contours[i] = idx
		start += n
	}
	outer, normal := 0, mgl64.Vec3{}
	for i, c := range contours {
		n := newellNormal(positions, c)
		if n.Len() > normal.Len() {
			outer, normal = i, n
		}
	}
	if normal.Len() < 1e-12 {
		return nil, fmt.Errorf("degenerate polygon")
	}
	normal = normal.Normalize()
	u, v := projectionAxes(normal)

	points := make([]*p2t.Point, total)
	owner := make(map[*p2t.Point]int, total)
	for i, p := range positions {
		points[i] = p2t.NewPoint(p[u], p[v])
		owner[points[i]] = i
	}
	loop := func(c []int) []*p2t.Point {
		out := make([]*p2t.Point, len(c))
		for j, i := range c {
			out[j] = points[i]
		}
		return out
	}

	// The sweep panics on self-intersections and repeated points.
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("sweep failed: %v", r)
		}
	}()

	sc := p2t.NewSweepContext(loop(contours[outer]), false)
	for i, c := range contours {
		if i != outer {
			sc.AddHole(loop(c))
		}
	}
	sc.Triangulate()

	tris := sc.GetTriangles()
	if len(tris) == 0 {
		return nil, fmt.Errorf("sweep produced no triangles")
	}
	res = &result{
		vertices: append([]float32(nil), vertices...),
		normals:  append([]float32(nil), normals...),
		indices:  make([]uint32, 0, 3*len(tris)),
	}
	for _, tri := range tris {
		a, aok := owner[tri.Points[0]]
		b, bok := owner[tri.Points[1]]
		c, cok := owner[tri.Points[2]]
		if !aok || !bok || !cok {
			return nil, fmt.Errorf("sweep introduced a point")
		}
		// Wind every triangle with the polygon normal.
		if positions[b].Sub(positions[a]).Cross(positions[c].Sub(positions[a])).Dot(normal) < 0 {
			b, c = c, b
		}
		res.indices = append(res.indices, uint32(a), uint32(b), uint32(c))
	}
	return res, nil
}

// newellNormal returns the area-weighted normal of a closed loop; its
// length is twice the loop's area.
func newellNormal(positions []mgl64.Vec3, loop []int) mgl64.Vec3 {
	var n mgl64.Vec3
	for j, i := range loop {
		p := positions[i]
		q := positions[loop[(j+1)%len(loop)]]
		n[0] += (p[1] - q[1]) * (p[2] + q[2])
		n[1] += (p[2] - q[2]) * (p[0] + q[0])
		n[2] += (p[0] - q[0]) * (p[1] + q[1])
	}
	return n
}

// projectionAxes returns the two coordinate axes spanning the plane that
// the normal is most perpendicular to.
func projectionAxes(n mgl64.Vec3) (u, v int) {
	ax, ay, az := math.Abs(n[0]), math.Abs(n[1]), math.Abs(n[2])
	switch {
	case az >= ax && az >= ay:
		return 0, 1
	case ay >= ax:
		return 2, 0
	default:
		return 1, 2
	}
}
