// Package instancing finds facet groups that are copies of one another
// under per-axis scale, rotation and translation, so that each distinct
// shape is stored once and every copy as a transform of it.
package instancing

import (
	"slices"

	"github.com/samber/lo"

	"github.com/chazu/plantmesh/pkg/primitive"
)

// BucketKey fingerprints a facet group by its polygon, contour and vertex
// counts. Groups with different keys can never match.
type BucketKey int64

// Key returns polygons*1e9 + contours*1e6 + vertices for f.
func Key(f *primitive.FacetGroup) BucketKey {
	return BucketKey(int64(len(f.Polygons))*1_000_000_000 +
		int64(f.ContourCount())*1_000_000 +
		int64(f.VertexCount()))
}

// Bucket partitions groups by key. Members keep their input order; keys are
// returned in ascending order.
func Bucket(groups []*primitive.FacetGroup) ([]BucketKey, map[BucketKey][]*primitive.FacetGroup) {
	buckets := lo.GroupBy(groups, Key)
	keys := lo.Keys(buckets)
	slices.Sort(keys)
	return keys, buckets
}
