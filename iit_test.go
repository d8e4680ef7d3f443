package iitii

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type span struct{ beg, end int }

func spanBeg(s span) int { return s.beg }
func spanEnd(s span) int { return s.end }

func newSpanBuilder() *Builder[int, span] {
	return NewBuilder(spanBeg, spanEnd)
}

// sortedSpans returns a sorted copy so result multisets can be compared
// without relying on traversal order.
func sortedSpans(spans []span) []span {
	out := append([]span(nil), spans...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].beg == out[j].beg {
			return out[i].end < out[j].end
		}
		return out[i].beg < out[j].beg
	})
	return out
}

func naiveOverlap(items []span, qbeg, qend int) []span {
	var out []span
	for _, it := range items {
		if it.end > qbeg && it.beg < qend {
			out = append(out, it)
		}
	}
	return out
}

func randomSpans(r *rand.Rand, n, maxBeg, maxLen int) []span {
	spans := make([]span, n)
	for i := range spans {
		beg := r.Intn(maxBeg)
		spans[i] = span{beg, beg + r.Intn(maxLen)}
	}
	return spans
}

func TestOverlapBasic(t *testing.T) {
	br := newSpanBuilder()
	br.Add(span{12, 34}, span{0, 23}, span{34, 56})
	db := br.Build()

	assert.Equal(t, []span{{0, 23}, {12, 34}}, sortedSpans(db.Overlap(22, 25)),
		"(34,56) starts at qend, no overlap")
	assert.Equal(t, []span{{34, 56}}, db.Overlap(34, 35),
		"(12,34) ends at qbeg, half-open intervals do not touch")
	assert.Empty(t, db.Overlap(0, 0), "empty query window")
}

func TestOverlapEmptyIndex(t *testing.T) {
	db := newSpanBuilder().Build()
	assert.Empty(t, db.Overlap(0, 100))

	var out []span
	assert.Zero(t, db.OverlapInto(0, 100, &out), "empty index visits no nodes")
	assert.Empty(t, out)
}

func TestOverlapDuplicates(t *testing.T) {
	br := newSpanBuilder()
	br.Add(span{0, 10}, span{0, 10}, span{0, 10})
	db := br.Build()

	assert.Len(t, db.Overlap(5, 6), 3, "duplicates are reported once each")
}

func TestOverlapTiled(t *testing.T) {
	br := newSpanBuilder()
	for i := range 1000 {
		br.Add(span{i, i + 1})
	}
	db := br.Build()

	got := sortedSpans(db.Overlap(500, 503))
	assert.Equal(t, []span{{500, 501}, {501, 502}, {502, 503}}, got)
}

func TestOverlapIntoClearsBuffer(t *testing.T) {
	br := newSpanBuilder()
	br.Add(span{0, 10})
	db := br.Build()

	out := []span{{99, 100}}
	db.OverlapInto(5, 6, &out)
	assert.Equal(t, []span{{0, 10}}, out, "stale contents are discarded")
}

func TestOverlapInsertionOrderIndependent(t *testing.T) {
	items := []span{{5, 9}, {0, 3}, {7, 20}, {7, 8}, {2, 2}, {15, 16}}
	r := rand.New(rand.NewSource(7))

	br := newSpanBuilder()
	br.Add(items...)
	want := sortedSpans(br.Build().Overlap(6, 16))

	for range 10 {
		r.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
		br := newSpanBuilder()
		br.Add(items...)
		assert.Equal(t, want, sortedSpans(br.Build().Overlap(6, 16)))
	}
}

func TestOverlapMatchesLinearScan(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	// cover every border shape around powers of two
	for n := 0; n <= 66; n++ {
		items := randomSpans(r, n, 50, 12)
		br := newSpanBuilder()
		br.Add(items...)
		db := br.Build()

		for q := 0; q < 40; q++ {
			qbeg := r.Intn(60)
			qend := qbeg + r.Intn(15)
			want := sortedSpans(naiveOverlap(items, qbeg, qend))
			got := sortedSpans(db.Overlap(qbeg, qend))
			require.Equal(t, want, got, "n=%d query=[%d,%d)", n, qbeg, qend)
		}
	}
}

func TestEmptyQueryWindow(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	items := randomSpans(r, 100, 1000, 20)
	br := newSpanBuilder()
	br.Add(items...)
	db := br.Build()

	assert.Empty(t, db.Overlap(50, 50))
	assert.Empty(t, db.Overlap(60, 50), "inverted window")
}

// realDescendants returns the real ranks in the subtree rooted at rank.
func realDescendants(rank, n int) []int {
	lo, hi := leftmostLeaf(rank), rightmostLeaf(rank)
	var out []int
	for r := lo; r <= hi && r < n; r++ {
		out = append(out, r)
	}
	return out
}

func TestInsideMaxEndCoversSubtree(t *testing.T) {
	r := rand.New(rand.NewSource(13))

	for _, n := range []int{1, 2, 3, 4, 6, 7, 8, 15, 16, 17, 33, 100, 1000} {
		items := randomSpans(r, n, 10000, 500)
		br := newSpanBuilder()
		br.Add(items...)
		db := br.Build()

		for rank := 0; rank < n; rank++ {
			for _, d := range realDescendants(rank, n) {
				require.GreaterOrEqual(t,
					db.nodes[rank].insideMaxEnd, db.endOf(db.nodes[d].item),
					"n=%d rank=%d descendant=%d", n, rank, d)
			}
		}
	}
}

func TestInsideMaxEndBorderCorrection(t *testing.T) {
	// Five nodes: ranks 5 and 6 are imaginary. Rank 3 (the root) has a
	// right child rank 5 that is imaginary, so its insideMaxEnd must be
	// corrected with the border value covering the real leaf at rank 4.
	br := newSpanBuilder()
	br.Add(span{0, 1}, span{10, 11}, span{20, 21}, span{30, 31}, span{40, 99})
	db := br.Build()

	require.Equal(t, 5, db.Len())
	assert.Equal(t, 99, db.nodes[3].insideMaxEnd,
		"root must see the rightmost leaf's end through the border")
	assert.Equal(t, []span{{40, 99}}, db.Overlap(80, 81))
}

func TestLen(t *testing.T) {
	br := newSpanBuilder()
	br.Add(span{0, 1}, span{1, 2})
	assert.Equal(t, 2, br.Build().Len())
	assert.Zero(t, newSpanBuilder().Build().Len())
}
