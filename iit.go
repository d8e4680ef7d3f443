// Package iitii provides in-memory indexes over half-open intervals
// [beg, end) attached to arbitrary items, answering overlap queries.
//
// Two variants are available. IIT is an implicit interval tree: a
// complete binary search tree over items sorted by interval begin, laid
// out in a single array with no pointers and augmented with subtree max
// ends. IITII extends IIT with a learned interpolation index that
// predicts a starting leaf for each query and climbs toward the root
// only as far as provably necessary, which avoids the full top-down
// descent on large datasets.
//
// Both are built through a Builder parameterized by a position type and
// an item type, with two accessor functions extracting each item's
// interval:
//
//	br := iitii.NewBuilder(
//		func(v Variant) uint32 { return v.Beg },
//		func(v Variant) uint32 { return v.End })
//	br.Add(variants...)
//	idx := br.Build() // or br.BuildInterpolated(100)
//	hits := idx.Overlap(22, 25)
//
// Indexes are immutable after build and safe for concurrent queries as
// long as callers do not share a result buffer.
package iitii

// IIT is an implicit interval tree over items sorted by interval begin.
type IIT[P Pos, T any] struct {
	tree[P, T]
}

func newIIT[P Pos, T any](nodes []node[P, T], begOf, endOf func(T) P) *IIT[P, T] {
	return &IIT[P, T]{tree: newTree(nodes, begOf, endOf)}
}

// Overlap returns every indexed item whose interval overlaps
// [qbeg, qend). Results are in no particular order.
func (t *IIT[P, T]) Overlap(qbeg, qend P) []T {
	var out []T
	t.OverlapInto(qbeg, qend, &out)
	return out
}

// OverlapInto clears out, appends every overlapping item to it, and
// returns the number of tree nodes visited.
func (t *IIT[P, T]) OverlapInto(qbeg, qend P, out *[]T) int {
	*out = (*out)[:0]
	if len(t.nodes) == 0 {
		return 0
	}
	return t.scan(t.root, qbeg, qend, out)
}
