package alphabet

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/hmmalign/alignment"
	"github.com/katalvlaran/hmmalign/corpus"
)

// Candidates is the result of scanning a corpus with a permissive encoder:
// every chunk that lies on some admissible path of some pair, together with
// the per-pair graphs coded against that pool.
type Candidates[A, B comparable] struct {
	// Pool holds every candidate chunk; candidate i has code i.
	Pool *Alphabet[A, B]
	// Frequency[i] counts the surviving edges labelled with candidate i.
	Frequency []int
	// Alignable[p] reports whether pair p admits any path at all.
	Alignable []bool
	// Header records the largest graph dimensions seen.
	Header alignment.Header

	graphs []*alignment.Graph
}

type scanResult[A, B comparable] struct {
	graph *alignment.Graph
	local *Alphabet[A, B]
}

// ComputeCandidates builds the permissive graph of every pair on up to
// workers goroutines (≤ 0 means GOMAXPROCS). Results are merged in pair
// order so that candidate codes do not depend on scheduling.
func ComputeCandidates[A, B comparable](
	ctx context.Context,
	pairs []corpus.Pair[A, B],
	bounds alignment.Bounds,
	workers int,
	logger *slog.Logger,
) (*Candidates[A, B], error) {
	// 1. Validate
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	// 2. Build every pair's graph against a private interner
	results := make([]scanResult[A, B], len(pairs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range pairs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			local := New[A, B]()
			graph, err := alignment.Build(pairs[i].Above, pairs[i].Below, bounds, local.Interner())
			if errors.Is(err, alignment.ErrNotAlignable) {
				return nil
			}
			if err != nil {
				return err
			}
			results[i] = scanResult[A, B]{graph: graph, local: local}

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// 3. Merge in pair order, keeping only chunks on surviving edges
	c := &Candidates[A, B]{
		Pool:      New[A, B](),
		Alignable: make([]bool, len(pairs)),
	}
	for i, r := range results {
		if r.graph == nil {
			continue
		}
		c.Alignable[i] = true
		mapping := make([]int, r.local.Len())
		for k := range mapping {
			mapping[k] = -1
		}
		for idx := 0; idx < r.graph.Size(); idx++ {
			for _, e := range r.graph.IncomingAt(idx) {
				if mapping[e.Code] < 0 {
					ch := r.local.chunks[e.Code]
					mapping[e.Code] = c.Pool.Add(ch.Above, ch.Below)
					if mapping[e.Code] == len(c.Frequency) {
						c.Frequency = append(c.Frequency, 0)
					}
				}
				c.Frequency[mapping[e.Code]]++
			}
		}
		r.graph.Recode(func(code int) int { return mapping[code] })
		c.graphs = append(c.graphs, r.graph)
	}
	c.Header = alignment.HeaderOf(c.graphs)
	c.Pool.SetHeader(c.Header)

	logger.Debug("candidate scan complete",
		"pairs", len(pairs), "alignable", len(c.graphs), "candidates", c.Pool.Len())

	return c, nil
}

// Len returns the number of candidates.
func (c *Candidates[A, B]) Len() int { return c.Pool.Len() }

// AlignableCount returns how many pairs are alignable with every candidate.
func (c *Candidates[A, B]) AlignableCount() int { return len(c.graphs) }

// Graphs returns the candidate-coded graph of each alignable pair, in pair
// order.
func (c *Candidates[A, B]) Graphs() []*alignment.Graph { return c.graphs }

// Unalignable returns the fraction of alignable pairs that lose every path
// when only the selected candidates are kept. A corpus with no alignable
// pair yields 0.
func (c *Candidates[A, B]) Unalignable(selected []bool) float64 {
	if len(c.graphs) == 0 {
		return 0
	}
	allowed := func(code int) bool { return selected[code] }
	miss := 0
	for _, g := range c.graphs {
		if !g.Reachable(allowed) {
			miss++
		}
	}

	return float64(miss) / float64(len(c.graphs))
}

// ByFrequency returns candidate codes by descending frequency. Ties keep
// first-occurrence order.
func (c *Candidates[A, B]) ByFrequency() []int {
	order := make([]int, c.Len())
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(x, y int) int { return c.Frequency[y] - c.Frequency[x] })

	return order
}

// Subset returns a fresh alphabet holding the given candidates in the given
// order.
func (c *Candidates[A, B]) Subset(codes []int) *Alphabet[A, B] {
	al := New[A, B]()
	for _, code := range codes {
		ch := c.Pool.chunks[code]
		al.Add(ch.Above, ch.Below)
	}
	al.SetHeader(c.Header)

	return al
}
