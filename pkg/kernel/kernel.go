// Package kernel defines the mesh buffers produced by tessellation and the
// ports behind which external geometry capabilities sit: the polygon
// triangulator used for complex facets, and a solid-modelling kernel used
// for preview meshes of shapes without an exact tessellation.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel builds approximate solids for preview meshes. All primitives are
// centred on the origin with Z as the axis of revolution.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64) Solid
	Cone(height, bottomRadius, topRadius float64) Solid
	Sphere(radius float64) Solid

	// Boolean operations
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
