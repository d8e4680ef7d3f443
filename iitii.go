package iitii

import (
	"math"
	"sync/atomic"
)

// IITII is an implicit interval tree extended with a per-domain learned
// model that predicts which leaf a query should start from. Each query
// climbs from the predicted leaf until the subtree provably contains
// every possible result, then scans that subtree only.
//
// The extra per-node augment is outsideMaxEnd: for node n, the maximum
// end over all nodes m outside n's subtree with m.beg < n.beg (the
// minimum position value when no such node exists). Its counterpart
// outsideMinBeg — the minimum beg over outside nodes with beg >= n's —
// is computed on demand from rank offsets in the sorted array. When a
// subtree satisfies outsideMaxEnd <= qbeg and outsideMinBeg >= qend,
// no node outside it can overlap [qbeg, qend), so the climb may stop.
type IITII[P Pos, T any] struct {
	tree[P, T]
	outsideMaxEnd []P

	// Rank prediction model: the indexed beg range is split into
	// equal-width domains, each with a regression of within-level node
	// offset on beg. params holds three values per domain: intercept,
	// slope, and the target level; NaN in the level slot marks a domain
	// whose model is unusable.
	domains    int
	domainSize P
	minBeg     P
	params     []float32

	queries        atomic.Uint64
	totalClimbCost atomic.Uint64
}

func newIITII[P Pos, T any](nodes []node[P, T], begOf, endOf func(T) P, domains uint) *IITII[P, T] {
	if domains < 1 {
		domains = 1
	}
	ii := &IITII[P, T]{
		tree:       newTree(nodes, begOf, endOf),
		domains:    int(domains),
		domainSize: maxPos[P](),
		minBeg:     maxPos[P](),
	}
	ii.params = make([]float32, 3*ii.domains)
	for i := range ii.params {
		ii.params[i] = float32(math.NaN())
	}

	n := len(ii.nodes)
	ii.outsideMaxEnd = make([]P, n)
	for i := range ii.outsideMaxEnd {
		ii.outsideMaxEnd[i] = minPos[P]()
	}
	if n == 0 {
		return ii
	}

	ii.minBeg = ii.begOf(ii.nodes[0].item)
	ii.domainSize = 1 + (ii.begOf(ii.nodes[n-1].item)-ii.minBeg)/P(ii.domains)

	ii.fillOutsideMaxEnd()
	ii.train(0)
	return ii
}

// fillOutsideMaxEnd computes the outside augment for every real node
// from a running max of ends along the sorted array. Sort order
// guarantees all ranks below a node's leftmost descendant have beg <=
// the node's; the walk skips equal-beg neighbors to keep the "strictly
// smaller beg" definition.
func (ii *IITII[P, T]) fillOutsideMaxEnd() {
	n := len(ii.nodes)
	running := make([]P, n)
	running[0] = ii.endOf(ii.nodes[0].item)
	for i := 1; i < n; i++ {
		running[i] = max(running[i-1], ii.endOf(ii.nodes[i].item))
	}

	for r := range n {
		l := leftmostLeaf(r)
		if l == 0 {
			continue
		}
		beg := ii.begOf(ii.nodes[r].item)
		leq := l - 1
		for leq > 0 && ii.begOf(ii.nodes[leq].item) == beg {
			leq--
		}
		if ii.begOf(ii.nodes[leq].item) < beg {
			ii.outsideMaxEnd[r] = running[leq]
		}
	}
}

// outsideMinBeg returns the minimum beg over nodes outside the subtree
// with beg >= the subtree root's, or the maximum position value if
// there are none. An equal-beg neighbor immediately left of the subtree
// forces the conservative answer of the root's own beg.
func (ii *IITII[P, T]) outsideMinBeg(subtree int) P {
	beg := ii.begOf(ii.nodes[subtree].item)
	if l := leftmostLeaf(subtree); l > 0 && ii.begOf(ii.nodes[l-1].item) == beg {
		return beg
	}
	if r := rightmostLeaf(subtree); r < len(ii.nodes)-1 {
		return ii.begOf(ii.nodes[r+1].item)
	}
	return maxPos[P]()
}

// whichDomain maps a begin position to its model domain.
func (ii *IITII[P, T]) whichDomain(beg P) int {
	if beg < ii.minBeg {
		return 0
	}
	q := (beg - ii.minBeg) / ii.domainSize
	if q >= P(ii.domains) {
		return ii.domains - 1
	}
	return int(q)
}

// train fits one linear model per domain over the nodes of the given
// level, regressing within-level offset on beg. A domain keeps its model
// only if the regression is finite and its mean absolute residual is at
// most 2^(rootLevel/2); otherwise the NaN parameters make queries in
// that domain fall back to a top-down scan from the root.
func (ii *IITII[P, T]) train(lv int) {
	points := make([][]point, ii.domains)
	step := 1 << (lv + 1)
	ofs := 0
	for r := 1<<lv - 1; r < len(ii.nodes); r += step {
		beg := ii.begOf(ii.nodes[r].item)
		d := ii.whichDomain(beg)
		points[d] = append(points[d], point{x: float64(beg), y: float64(ofs)})
		ofs++
	}

	limit := float64(uint64(1) << (ii.rootLevel / 2))
	for d := range ii.domains {
		b, m := regress(points[d])
		if isFinite(b) && isFinite(m) && meanAbsoluteResidual(points[d], b, m) <= limit {
			ii.params[3*d] = float32(b)
			ii.params[3*d+1] = float32(m)
			ii.params[3*d+2] = float32(lv)
		}
	}
}

// predictLeaf asks the model for the leaf rank to start climbing from,
// or nrank if the query's domain has no usable model.
func (ii *IITII[P, T]) predictLeaf(qbeg P) int {
	d := ii.whichDomain(qbeg)
	lvF := float64(ii.params[3*d+2])
	if !isFinite(lvF) {
		return nrank
	}
	lv := int(lvF)

	ofsF := float64(ii.params[3*d]) + float64(ii.params[3*d+1])*float64(qbeg)
	ofsF = math.Round(math.Max(0, ofsF))
	n := len(ii.nodes)
	if ofsF > float64(n) { // wild extrapolation; any off-scale offset works
		ofsF = float64(n)
	}

	r := (1<<lv)*(2*int(ofsF)+1) - 1
	if r >= n {
		// off-scale high; start from the rightmost real leaf
		return rightmostRealLeaf(n)
	}
	return r
}

// climb ascends from a predicted rank until the subtree provably holds
// all results for [qbeg, qend), or the root. Imaginary ranks always
// climb. Returns the stopping rank and the number of steps taken.
func (ii *IITII[P, T]) climb(prediction int, qbeg, qend P) (subtree, cost int) {
	subtree = prediction
	for subtree != ii.root &&
		(subtree >= len(ii.nodes) ||
			ii.outsideMaxEnd[subtree] > qbeg ||
			ii.outsideMinBeg(subtree) < qend) {
		subtree = ii.parent(subtree)
		cost++
	}
	return subtree, cost
}

// Overlap returns every indexed item whose interval overlaps
// [qbeg, qend). Results are in no particular order.
func (ii *IITII[P, T]) Overlap(qbeg, qend P) []T {
	var out []T
	ii.OverlapInto(qbeg, qend, &out)
	return out
}

// OverlapInto clears out, appends every overlapping item to it, and
// returns the number of tree nodes visited plus climb steps.
func (ii *IITII[P, T]) OverlapInto(qbeg, qend P, out *[]T) int {
	*out = (*out)[:0]
	if len(ii.nodes) == 0 {
		return 0
	}

	prediction := ii.predictLeaf(qbeg)
	if prediction == nrank {
		return ii.scan(ii.root, qbeg, qend, out)
	}

	subtree, climbCost := ii.climb(prediction, qbeg, qend)

	ii.queries.Add(1)
	ii.totalClimbCost.Add(uint64(climbCost))

	return ii.scan(subtree, qbeg, qend, out) + climbCost
}

// Stats reports the diagnostic query counters. Counters are updated
// atomically and only by queries that took the predicted-climb path.
type Stats struct {
	Queries        uint64
	TotalClimbCost uint64
}

// Stats returns a snapshot of the index's query counters.
func (ii *IITII[P, T]) Stats() Stats {
	return Stats{
		Queries:        ii.queries.Load(),
		TotalClimbCost: ii.totalClimbCost.Load(),
	}
}
