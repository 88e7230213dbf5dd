package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chazu/plantmesh/pkg/primitive"
)

// EvalTimeout is the default limit for a single evaluation.
const EvalTimeout = 5 * time.Second

type evalResult struct {
	scene  *primitive.Scene
	errors []EvalError
	err    error
}

// wait blocks until the evaluation of generation gen reports on ch or ctx
// ends. A result from a generation that is no longer current is dropped.
//
// When ctx ends first the evaluating goroutine keeps running; ch is
// buffered so its send never blocks.
func (e *Engine) wait(ctx context.Context, ch <-chan evalResult, gen uint64) (*primitive.Scene, []EvalError, error) {
	select {
	case res := <-ch:
		e.mu.Lock()
		current := e.generation
		e.mu.Unlock()

		if gen != current {
			return nil, nil, fmt.Errorf("engine: evaluation superseded by newer request")
		}
		return res.scene, res.errors, res.err

	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, nil, fmt.Errorf("engine: evaluation timed out after %s: %w", e.timeout, ctx.Err())
		}
		return nil, nil, fmt.Errorf("engine: evaluation abandoned: %w", ctx.Err())
	}
}
