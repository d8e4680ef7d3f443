// Package bench drives comparative build/query experiments over the
// two interval index variants.
package bench

import (
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/inodb/iitii"
	"github.com/inodb/iitii/internal/variants"
)

// Index is the query surface shared by both tree variants.
type Index interface {
	OverlapInto(qbeg, qend uint32, out *[]variants.Variant) int
	Len() int
}

// Query is one half-open overlap query window.
type Query struct {
	Beg uint32
	End uint32
}

// Result holds the measurements of one experiment: one tree variant
// built over a prefix of the variant set and driven through the query
// workload.
type Result struct {
	TreeType  string // "iit" or "iitii"
	Variants  int
	Domains   uint // 0 for iit
	Build     time.Duration
	Queries   time.Duration
	Cost      uint64 // total tree nodes visited
	Hits      uint64 // total results returned
	MeanClimb float64 // iitii only
}

// Runner executes a sweep of experiments over shrinking prefixes of a
// variant set, comparing iit against iitii at several domain counts.
type Runner struct {
	logger     *zap.Logger
	queryCount int
	workers    int
	window     uint32
	seed       int64
	domains    []uint
	minSize    int
}

// NewRunner returns a runner with the default workload: 100k mixed
// queries, 10-base windows, seed 42, domain sweep 1..10000, and
// experiment prefixes shrinking by 4x down to 100k variants.
func NewRunner() *Runner {
	return &Runner{
		logger:     zap.NewNop(),
		queryCount: 100000,
		workers:    runtime.NumCPU(),
		window:     10,
		seed:       42,
		domains:    []uint{1, 10, 100, 1000, 10000},
		minSize:    100000,
	}
}

// SetLogger sets the logger for progress messages.
func (r *Runner) SetLogger(l *zap.Logger) { r.logger = l }

// SetQueryCount sets how many queries each experiment runs.
func (r *Runner) SetQueryCount(n int) { r.queryCount = n }

// SetWorkers sets the query worker pool size; 0 means NumCPU.
func (r *Runner) SetWorkers(n int) {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	r.workers = n
}

// SetWindow sets the width of the uniform random query windows.
func (r *Runner) SetWindow(w uint32) { r.window = w }

// SetSeed sets the query-generation seed.
func (r *Runner) SetSeed(seed int64) { r.seed = seed }

// SetDomains sets the iitii domain counts to sweep.
func (r *Runner) SetDomains(domains []uint) {
	if len(domains) > 0 {
		r.domains = domains
	}
}

// SetMinSize sets the smallest variant-prefix size the sweep descends to.
func (r *Runner) SetMinSize(n int) {
	if n > 0 {
		r.minSize = n
	}
}

// GenerateQueries builds the mixed workload: even-indexed queries are
// fixed-width windows at a uniform random begin in [0, maxEnd];
// odd-indexed queries reuse the interval of a random existing variant.
func (r *Runner) GenerateQueries(vs []variants.Variant, maxEnd uint32) []Query {
	rng := rand.New(rand.NewSource(r.seed))
	queries := make([]Query, r.queryCount)
	for i := range queries {
		if i%2 == 1 && len(vs) > 0 {
			vt := vs[rng.Intn(len(vs))]
			queries[i] = Query{Beg: vt.Beg, End: vt.End}
			continue
		}
		qbeg := uint32(rng.Int63n(int64(maxEnd) + 1))
		queries[i] = Query{Beg: qbeg, End: qbeg + r.window}
	}
	return queries
}

// runQueries drives the workload through the index on a worker pool.
// Each worker owns its result buffer; hit and cost totals accumulate
// atomically.
func (r *Runner) runQueries(idx Index, queries []Query) (hits, cost uint64) {
	var hitTotal, costTotal atomic.Uint64
	var wg sync.WaitGroup

	chunk := (len(queries) + r.workers - 1) / r.workers
	for start := 0; start < len(queries); start += chunk {
		qs := queries[start:min(start+chunk, len(queries))]
		wg.Add(1)
		go func() {
			defer wg.Done()
			var out []variants.Variant
			var h, c uint64
			for _, q := range qs {
				c += uint64(idx.OverlapInto(q.Beg, q.End, &out))
				h += uint64(len(out))
			}
			hitTotal.Add(h)
			costTotal.Add(c)
		}()
	}
	wg.Wait()

	return hitTotal.Load(), costTotal.Load()
}

// RunExperiment builds one index over the first n variants and runs the
// query workload against it. domains == 0 builds the plain iit;
// otherwise an iitii with that many model domains.
func (r *Runner) RunExperiment(vs []variants.Variant, n int, domains uint, queries []Query) Result {
	br := iitii.NewBuilder(variants.Beg, variants.End)
	br.Add(vs[:n]...)

	res := Result{Variants: n, Domains: domains}

	var idx Index
	var learned *iitii.IITII[uint32, variants.Variant]
	buildStart := time.Now()
	if domains == 0 {
		res.TreeType = "iit"
		idx = br.Build()
	} else {
		res.TreeType = "iitii"
		learned = br.BuildInterpolated(domains)
		idx = learned
	}
	res.Build = time.Since(buildStart)

	queryStart := time.Now()
	res.Hits, res.Cost = r.runQueries(idx, queries)
	res.Queries = time.Since(queryStart)

	if learned != nil {
		if st := learned.Stats(); st.Queries > 0 {
			res.MeanClimb = float64(st.TotalClimbCost) / float64(st.Queries)
		}
	}

	r.logger.Info("experiment finished",
		zap.String("tree", res.TreeType),
		zap.String("variants", humanize.Comma(int64(n))),
		zap.Uint("domains", domains),
		zap.Duration("build", res.Build),
		zap.Duration("queries", res.Queries),
		zap.String("cost", humanize.Comma(int64(res.Cost))))

	return res
}

// Run sweeps experiments over prefixes of vs, shrinking by 4x down to
// the minimum size, comparing iit against iitii at each configured
// domain count. The two variants must return the same number of results
// on the same workload; a mismatch aborts the sweep.
func (r *Runner) Run(vs []variants.Variant) ([]Result, error) {
	if len(vs) == 0 {
		return nil, fmt.Errorf("no variants to index")
	}

	var maxEnd uint32
	for _, v := range vs {
		maxEnd = max(maxEnd, v.End)
	}
	queries := r.GenerateQueries(vs, maxEnd)
	r.logger.Info("generated query workload",
		zap.String("queries", humanize.Comma(int64(len(queries)))),
		zap.Uint32("max_end", maxEnd))

	minSize := min(r.minSize, len(vs))

	var results []Result
	for n := len(vs); n >= minSize; n /= 4 {
		ref := r.RunExperiment(vs, n, 0, queries)
		results = append(results, ref)

		for _, domains := range r.domains {
			res := r.RunExperiment(vs, n, domains, queries)
			if res.Hits != ref.Hits {
				return results, fmt.Errorf(
					"inconsistent results between iit and iitii: n=%d domains=%d iit=%d iitii=%d",
					n, domains, ref.Hits, res.Hits)
			}
			results = append(results, res)
		}
	}
	return results, nil
}
