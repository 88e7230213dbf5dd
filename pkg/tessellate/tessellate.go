// Package tessellate turns plant-model primitives into triangle meshes.
// Boxes and facet groups have exact tessellations; faces hidden by a
// connected neighbour are left out. Other kinds are reported as
// unsupported, or meshed approximately through a preview kernel when one
// is configured.
package tessellate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/chazu/plantmesh/pkg/kernel"
	"github.com/chazu/plantmesh/pkg/kernel/poly2tri"
	"github.com/chazu/plantmesh/pkg/primitive"
)

// ErrUnsupported is wrapped by UnsupportedError.
var ErrUnsupported = errors.New("unsupported primitive kind")

// UnsupportedError reports a primitive kind without a tessellation.
type UnsupportedError struct {
	Primitive string
	Kind      primitive.Kind
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("tessellate: %s (%s): %v", e.Primitive, e.Kind, ErrUnsupported)
}

func (e *UnsupportedError) Unwrap() error { return ErrUnsupported }

// Options configures a Tessellator. Zero values select the defaults.
type Options struct {
	FaceEpsilon     float64 // minimum box edge length for its faces to be emitted
	CornerTolerance float64 // max distance between matching square corners
	RadiusSlack     float64 // circular side covered if r <= slack * mate radius
	Workers         int     // parallel primitives in TessellateScene, 0 = GOMAXPROCS

	Triangulator kernel.Triangulator // nil selects poly2tri
	Preview      kernel.Kernel       // nil disables preview meshes
	Logger       *slog.Logger
}

// DefaultOptions returns the default tolerances.
func DefaultOptions() Options {
	return Options{
		FaceEpsilon:     1e-5,
		CornerTolerance: 1e-3,
		RadiusSlack:     1.05,
	}
}

// Tessellator produces meshes for primitives. It is safe for concurrent
// use if its Triangulator is.
type Tessellator struct {
	opts Options
}

// New returns a Tessellator with defaults filled in for unset options.
func New(opts Options) *Tessellator {
	def := DefaultOptions()
	if opts.FaceEpsilon <= 0 {
		opts.FaceEpsilon = def.FaceEpsilon
	}
	if opts.CornerTolerance <= 0 {
		opts.CornerTolerance = def.CornerTolerance
	}
	if opts.RadiusSlack <= 0 {
		opts.RadiusSlack = def.RadiusSlack
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Triangulator == nil {
		opts.Triangulator = poly2tri.New(opts.Logger)
	}
	return &Tessellator{opts: opts}
}

// Tessellate returns the mesh of p in p's local space. Kinds without a
// tessellation return an *UnsupportedError.
func (t *Tessellator) Tessellate(p *primitive.Primitive) (*kernel.Mesh, error) {
	switch s := p.Shape.(type) {
	case *primitive.Box:
		return t.tessellateBox(p, s)
	case *primitive.FacetGroup:
		return t.tessellateFacetGroup(p, s)
	case nil:
		return nil, fmt.Errorf("tessellate: %s has no shape", p.Name)
	default:
		return nil, &UnsupportedError{Primitive: p.Name, Kind: s.Kind()}
	}
}

// Part is a tessellated primitive. Mesh is in the primitive's local space.
type Part struct {
	Primitive *primitive.Primitive
	Mesh      *kernel.Mesh
	Preview   bool // mesh is an approximation from the preview kernel
}

// WorldMesh returns the part's mesh mapped through its primitive's matrix.
func (p Part) WorldMesh() *kernel.Mesh {
	return p.Mesh.Transformed(p.Primitive.Matrix)
}

// TessellateScene tessellates every primitive of s in parallel. Unsupported
// kinds are skipped, or previewed when a preview kernel is configured.
// Any other error cancels the remaining work and is returned. Parts keep
// the scene's primitive order.
func (t *Tessellator) TessellateScene(ctx context.Context, s *primitive.Scene) ([]Part, error) {
	parts := make([]*Part, len(s.Primitives))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(t.opts.Workers)
	for i, p := range s.Primitives {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			mesh, err := t.Tessellate(p)
			var unsupported *UnsupportedError
			switch {
			case errors.As(err, &unsupported):
				parts[i] = t.previewPart(p)
				return nil
			case err != nil:
				return err
			}
			t.opts.Logger.Debug("primitive tessellated",
				"primitive", p.Name, "kind", p.Kind(),
				"vertices", mesh.VertexCount(), "triangles", mesh.TriangleCount())
			parts[i] = &Part{Primitive: p, Mesh: mesh}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return lo.FilterMap(parts, func(p *Part, _ int) (Part, bool) {
		if p == nil || p.Mesh.IsEmpty() {
			return Part{}, false
		}
		return *p, true
	}), nil
}

// previewPart meshes p with the preview kernel, or returns nil.
func (t *Tessellator) previewPart(p *primitive.Primitive) *Part {
	if t.opts.Preview == nil {
		t.opts.Logger.Debug("primitive skipped", "primitive", p.Name, "kind", p.Kind())
		return nil
	}
	mesh, err := t.preview(p)
	if err != nil {
		t.opts.Logger.Warn("no preview mesh", "primitive", p.Name, "kind", p.Kind(), "error", err)
		return nil
	}
	t.opts.Logger.Warn("using preview mesh", "primitive", p.Name, "kind", p.Kind(),
		"triangles", mesh.TriangleCount())
	return &Part{Primitive: p, Mesh: mesh, Preview: true}
}
