package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/chazu/plantmesh/pkg/config"
	"github.com/chazu/plantmesh/pkg/connect"
	"github.com/chazu/plantmesh/pkg/engine"
	"github.com/chazu/plantmesh/pkg/instancing"
	"github.com/chazu/plantmesh/pkg/kernel"
	"github.com/chazu/plantmesh/pkg/kernel/manifold"
	"github.com/chazu/plantmesh/pkg/kernel/sdfx"
	"github.com/chazu/plantmesh/pkg/primitive"
	"github.com/chazu/plantmesh/pkg/tessellate"
)

// EvalErrors is returned when scene source fails to evaluate.
type EvalErrors []engine.EvalError

func (e EvalErrors) Error() string {
	errs := make([]error, len(e))
	for i, ee := range e {
		errs[i] = ee
	}
	return errors.Join(errs...).Error()
}

// InvalidSceneError is returned when validation finds blocking errors.
type InvalidSceneError struct {
	Result primitive.ValidationResult
}

func (e *InvalidSceneError) Error() string {
	return fmt.Sprintf("scene has %d validation errors, first: %v", len(e.Result.Errors), e.Result.Errors[0])
}

// Pipeline runs scene source through evaluation, validation, connection
// discovery, tessellation and instancing with one configuration.
type Pipeline struct {
	cfg     config.Config
	logger  *slog.Logger
	engine  *engine.Engine
	tess    *tessellate.Tessellator
	matcher *instancing.Matcher
}

// NewPipeline wires the pipeline stages from cfg.
func NewPipeline(cfg config.Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	var preview kernel.Kernel
	if cfg.Tessellate.Preview {
		preview = previewKernel(cfg.Tessellate, logger)
	}
	return &Pipeline{
		cfg:    cfg,
		logger: logger,
		engine: engine.NewEngine(),
		tess: tessellate.New(tessellate.Options{
			FaceEpsilon:     cfg.Tessellate.FaceEpsilon,
			CornerTolerance: cfg.Tessellate.CornerTolerance,
			RadiusSlack:     cfg.Tessellate.RadiusSlack,
			Workers:         cfg.Tessellate.Workers,
			Preview:         preview,
			Logger:          logger,
		}),
		matcher: instancing.NewMatcher(instancing.Options{
			Tolerance: cfg.Instancing.Tolerance,
			Workers:   cfg.Instancing.Workers,
			Logger:    logger,
		}),
	}
}

// previewKernel returns the configured preview kernel. The manifold kernel
// falls back to sdfx in builds without it.
func previewKernel(cfg config.Tessellate, logger *slog.Logger) kernel.Kernel {
	if cfg.PreviewKernel == "manifold" {
		k, err := manifold.New(cfg.PreviewSegments)
		if err == nil {
			return k
		}
		logger.Warn("falling back to sdfx preview kernel", "error", err)
	}
	return sdfx.New(cfg.PreviewCells)
}

// Evaluate runs scene source and returns the scene it builds. Source
// errors are returned as EvalErrors.
func (p *Pipeline) Evaluate(ctx context.Context, source string) (*primitive.Scene, error) {
	s, evalErrs, err := p.engine.EvaluateContext(ctx, source)
	if err != nil {
		return nil, err
	}
	if len(evalErrs) > 0 {
		return nil, EvalErrors(evalErrs)
	}
	return s, nil
}

// Load evaluates source into a scene, validates it and, when enabled,
// connects touching primitives. Validation warnings are logged; errors
// fail the load with an *InvalidSceneError.
func (p *Pipeline) Load(ctx context.Context, source string) (*primitive.Scene, error) {
	s, err := p.Evaluate(ctx, source)
	if err != nil {
		return nil, err
	}

	res := primitive.Validate(s)
	for _, w := range res.Warnings {
		p.logger.Warn("validation", "primitive", w.Primitive, "message", w.Message)
	}
	if !res.OK() {
		return nil, &InvalidSceneError{Result: res}
	}

	if p.cfg.Connect.Enabled {
		conns, err := connect.Connect(s, connect.Options{
			Tolerance: p.cfg.Connect.Tolerance,
			Logger:    p.logger,
		})
		if err != nil {
			return nil, err
		}
		p.logger.Info("connections discovered", "created", len(conns), "total", len(s.Connections))
	}
	p.logger.Info("scene loaded", "primitives", s.Len(), "connections", len(s.Connections))
	return s, nil
}

// Tessellate meshes every primitive of s and returns world-space meshes
// named after their primitives.
func (p *Pipeline) Tessellate(ctx context.Context, s *primitive.Scene) ([]*kernel.Mesh, error) {
	parts, err := p.tess.TessellateScene(ctx, s)
	if err != nil {
		return nil, err
	}
	meshes := make([]*kernel.Mesh, len(parts))
	triangles, previews := 0, 0
	for i, part := range parts {
		m := part.WorldMesh()
		m.Name = part.Primitive.Name
		meshes[i] = m
		triangles += m.TriangleCount()
		if part.Preview {
			previews++
		}
	}
	p.logger.Info("scene tessellated",
		"primitives", s.Len(), "meshes", len(meshes), "previews", previews, "triangles", triangles)
	return meshes, nil
}

// Instance matches the facet groups of s against each other.
func (p *Pipeline) Instance(ctx context.Context, s *primitive.Scene) (*instancing.Result, error) {
	groups := s.FacetGroups()
	if !p.cfg.Instancing.Enabled {
		return instancing.Identity(groups), nil
	}
	res, err := p.matcher.MatchAll(ctx, groups)
	if err != nil {
		return nil, err
	}
	p.logger.Info("facet groups matched", "groups", len(groups), "templates", res.TemplateCount())
	return res, nil
}
