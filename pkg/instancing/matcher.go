package instancing

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/sync/errgroup"

	"github.com/chazu/plantmesh/pkg/primitive"
)

// Instance places a facet group as a transformed copy of a template.
// A template is an instance of itself with the identity transform.
type Instance struct {
	Template  *primitive.FacetGroup
	Transform mgl64.Mat4
}

// Result maps every input facet group to its instance, and every template
// to the number of groups using it, itself included.
type Result struct {
	Instances map[*primitive.FacetGroup]Instance
	Templates map[*primitive.FacetGroup]int
}

// TemplateCount returns the number of distinct shapes found.
func (r *Result) TemplateCount() int {
	return len(r.Templates)
}

// Identity returns the result of matching nothing: every group is its own
// template.
func Identity(groups []*primitive.FacetGroup) *Result {
	res := &Result{
		Instances: make(map[*primitive.FacetGroup]Instance, len(groups)),
		Templates: make(map[*primitive.FacetGroup]int, len(groups)),
	}
	for _, f := range groups {
		res.Instances[f] = Instance{Template: f, Transform: mgl64.Ident4()}
		res.Templates[f] = 1
	}
	return res
}

// Options configures a Matcher. Zero values select the defaults.
type Options struct {
	Tolerance float64 // max vertex distance in verification, default 1e-3
	Workers   int     // buckets matched in parallel, 0 = GOMAXPROCS
	Logger    *slog.Logger
}

// Matcher groups facet groups into templates and instances.
type Matcher struct {
	opts Options
}

// NewMatcher returns a Matcher with defaults filled in for unset options.
func NewMatcher(opts Options) *Matcher {
	if opts.Tolerance <= 0 {
		opts.Tolerance = 1e-3
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Matcher{opts: opts}
}

// bucketResult is the outcome of matching one bucket.
type bucketResult struct {
	members   []*primitive.FacetGroup
	instances []Instance
	templates []*primitive.FacetGroup
	counts    []int
}

// MatchAll buckets groups by key and matches each bucket independently.
// Within a bucket, candidates are compared in input order against the
// templates found so far and take the first that matches, so input order
// decides which copy becomes the template.
func (m *Matcher) MatchAll(ctx context.Context, groups []*primitive.FacetGroup) (*Result, error) {
	keys, buckets := Bucket(groups)
	results := make([]bucketResult, len(keys))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.Workers)
	for i, key := range keys {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = m.matchBucket(buckets[key])
			m.opts.Logger.Debug("bucket completed",
				"key", int64(key),
				"members", len(buckets[key]),
				"templates", len(results[i].templates))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		Instances: make(map[*primitive.FacetGroup]Instance, len(groups)),
		Templates: make(map[*primitive.FacetGroup]int),
	}
	for _, br := range results {
		for j, f := range br.members {
			res.Instances[f] = br.instances[j]
		}
		for j, t := range br.templates {
			res.Templates[t] = br.counts[j]
		}
	}
	return res, nil
}

// matchBucket runs first-match-wins template discovery over one bucket.
func (m *Matcher) matchBucket(members []*primitive.FacetGroup) bucketResult {
	br := bucketResult{
		members:   members,
		instances: make([]Instance, len(members)),
	}
	for i, candidate := range members {
		found := false
		for j, tmpl := range br.templates {
			if tmpl == candidate {
				continue
			}
			transform, ok := Match(tmpl, candidate, m.opts.Tolerance)
			if !ok {
				continue
			}
			br.counts[j]++
			br.instances[i] = Instance{Template: tmpl, Transform: transform}
			found = true
			break
		}
		if !found {
			br.templates = append(br.templates, candidate)
			br.counts = append(br.counts, 1)
			br.instances[i] = Instance{Template: candidate, Transform: mgl64.Ident4()}
		}
	}
	return br
}
