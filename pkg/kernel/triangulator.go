package kernel

import "errors"

// ErrTriangulation is returned when a polygon cannot be triangulated.
var ErrTriangulation = errors.New("triangulation failed")

// Job is the handle returned by Triangulator.Submit. The counts give the
// buffer lengths, in elements, the caller must pass to Collect. A negative
// ID means the submission failed.
type Job struct {
	ID          int
	VertexCount int // float32 elements
	NormalCount int // float32 elements
	IndexCount  int // uint32 elements
}

// Failed reports whether the submission was rejected.
func (j Job) Failed() bool {
	return j.ID < 0
}

// Triangulator triangulates planar polygons with holes in two phases.
// Submit takes the flat vertex and normal floats of all contours back to
// back plus the vertex count of each contour, and buffers the result.
// Collect copies a buffered result into caller-allocated slices sized from
// the Job and releases it. Implementations must be safe for concurrent use.
type Triangulator interface {
	Submit(vertices, normals []float32, contourCounts []int) Job
	Collect(job Job, vertices, normals []float32, indices []uint32) error
}
