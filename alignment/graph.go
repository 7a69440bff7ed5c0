package alignment

import (
	"fmt"
	"math"
)

// Graph is the pruned alignment DAG of one sequence pair.
// It is immutable once built, except for Recode.
type Graph struct {
	n, m  int      // |above|, |below|
	alive []bool   // node lies on a root→terminal path
	in    [][]Edge // incoming edges per node; nil for pruned nodes
}

// newGraph allocates an empty (n+1)×(m+1) arena.
func newGraph(n, m int) *Graph {
	size := (n + 1) * (m + 1)

	return &Graph{
		n:     n,
		m:     m,
		alive: make([]bool, size),
		in:    make([][]Edge, size),
	}
}

// Build constructs the alignment graph of (above, below).
//
// Algorithm:
//  1. Seed (0,0) as reachable.
//  2. Forward sweep a = 1..n: from every reachable (a-1,b) try each split
//     z in [b+MinBelow, min(b+MaxBelow, m)]; skip z when the leftover
//     above-symbols cannot consume the leftover below-symbols; otherwise ask
//     enc for the code of (above[a-1], below[b:z]) and record the edge.
//  3. Terminal (n,m) unreached → ErrNotAlignable.
//  4. Backward sweep from the terminal along recorded edges; every node not
//     reached is pruned (its edges are dropped).
//
// Errors:
//   - ErrBadBounds, ErrNilEncoder, ErrNotAlignable (wrapped with the pair sizes).
//
// Complexity: O(n·m·(MaxBelow−MinBelow+1)) time, O(n·m) memory.
func Build[A, B any](above []A, below []B, bounds Bounds, enc Encoder[A, B]) (*Graph, error) {
	// 1. Validate inputs
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	if enc == nil {
		return nil, ErrNilEncoder
	}
	n, m := len(above), len(below)
	g := newGraph(n, m)
	lo, hi := bounds.MinBelow, bounds.MaxBelow

	// 2. Forward sweep
	reach := make([]bool, len(g.alive))
	reach[0] = true
	for a := 1; a <= n; a++ {
		leftover := n - a
		sym := above[a-1]
		for b := 0; b <= m; b++ {
			if !reach[g.Index(a-1, b)] {
				continue
			}
			top := b + hi
			if top > m {
				top = m
			}
			for z := b + lo; z <= top; z++ {
				// feasibility: the rest must be able to consume m-z below-symbols
				if z+leftover*lo > m || z+leftover*hi < m {
					continue
				}
				code, ok := enc(sym, below[b:z:z])
				if !ok {
					continue
				}
				dst := g.Index(a, z)
				g.in[dst] = append(g.in[dst], Edge{FromA: a - 1, FromB: b, Code: code})
				reach[dst] = true
			}
		}
	}

	// 3. Terminal check
	term := g.Terminal()
	if !reach[term] {
		return nil, fmt.Errorf("above=%d below=%d min=%d max=%d: %w", n, m, lo, hi, ErrNotAlignable)
	}

	// 4. Backward sweep: prune nodes that cannot reach the terminal
	g.prune()

	return g, nil
}

// prune marks nodes reachable-from-end and drops everything else.
// Sources always precede destinations in row-major order, so one reverse
// pass suffices.
func (g *Graph) prune() {
	for i := range g.alive {
		g.alive[i] = false
	}
	g.alive[g.Terminal()] = true
	for idx := g.Terminal(); idx >= 0; idx-- {
		if !g.alive[idx] {
			g.in[idx] = nil
			continue
		}
		for _, e := range g.in[idx] {
			g.alive[g.Index(e.FromA, e.FromB)] = true
		}
	}
}

// Above returns |above|.
func (g *Graph) Above() int { return g.n }

// Below returns |below|.
func (g *Graph) Below() int { return g.m }

// Size returns the number of arena slots, (|above|+1)·(|below|+1).
func (g *Graph) Size() int { return len(g.alive) }

// Index maps (a,b) to its row-major arena index.
// Complexity: O(1).
func (g *Graph) Index(a, b int) int { return a*(g.m+1) + b }

// Coordinate converts an arena index back to (a,b).
// Complexity: O(1).
func (g *Graph) Coordinate(idx int) (a, b int) { return idx / (g.m + 1), idx % (g.m + 1) }

// InBounds reports whether (a,b) lies within the grid.
func (g *Graph) InBounds(a, b int) bool { return a >= 0 && a <= g.n && b >= 0 && b <= g.m }

// Root returns the arena index of (0,0).
func (g *Graph) Root() int { return 0 }

// Terminal returns the arena index of (|above|,|below|).
func (g *Graph) Terminal() int { return len(g.alive) - 1 }

// AliveAt reports whether the node at idx survived pruning.
func (g *Graph) AliveAt(idx int) bool { return idx >= 0 && idx < len(g.alive) && g.alive[idx] }

// Alive reports whether (a,b) survived pruning.
func (g *Graph) Alive(a, b int) bool { return g.InBounds(a, b) && g.alive[g.Index(a, b)] }

// IncomingAt returns the incoming edges of the node at idx.
// The slice is owned by the graph and must not be modified.
func (g *Graph) IncomingAt(idx int) []Edge {
	if idx < 0 || idx >= len(g.in) {
		return nil
	}

	return g.in[idx]
}

// Incoming returns the incoming edges of (a,b); nil for pruned or
// out-of-range nodes.
func (g *Graph) Incoming(a, b int) []Edge {
	if !g.InBounds(a, b) {
		return nil
	}

	return g.in[g.Index(a, b)]
}

// EdgeCount returns the number of surviving edges.
func (g *Graph) EdgeCount() int {
	var n int
	for _, in := range g.in {
		n += len(in)
	}

	return n
}

// MaxIncoming returns the largest in-degree over all nodes.
func (g *Graph) MaxIncoming() int {
	var n int
	for _, in := range g.in {
		if len(in) > n {
			n = len(in)
		}
	}

	return n
}

// MaxCode returns the largest chunk code on any edge, or -1 for a graph
// without edges.
func (g *Graph) MaxCode() int {
	mc := -1
	for _, in := range g.in {
		for _, e := range in {
			if e.Code > mc {
				mc = e.Code
			}
		}
	}

	return mc
}

// Recode rewrites every edge code through mapping. Used when merging
// graphs built against a scratch alphabet into a shared code space.
func (g *Graph) Recode(mapping func(code int) int) {
	for _, in := range g.in {
		for i := range in {
			in[i].Code = mapping(in[i].Code)
		}
	}
}

// Equal reports whether g and o have the same shape and identical edge lists.
func (g *Graph) Equal(o *Graph) bool {
	if g == nil || o == nil {
		return g == o
	}
	if g.n != o.n || g.m != o.m {
		return false
	}
	for idx := range g.in {
		if g.alive[idx] != o.alive[idx] || len(g.in[idx]) != len(o.in[idx]) {
			return false
		}
		for i, e := range g.in[idx] {
			if o.in[idx][i] != e {
				return false
			}
		}
	}

	return true
}

// CountPaths returns the number of root→terminal paths, saturating at
// math.MaxUint64.
// Complexity: O(nodes + edges).
func (g *Graph) CountPaths() uint64 {
	paths := make([]uint64, len(g.alive))
	paths[0] = 1
	for idx := 1; idx < len(paths); idx++ {
		if !g.alive[idx] {
			continue
		}
		var s uint64
		for _, e := range g.in[idx] {
			p := paths[g.Index(e.FromA, e.FromB)]
			if s > math.MaxUint64-p {
				s = math.MaxUint64
				break
			}
			s += p
		}
		paths[idx] = s
	}

	return paths[g.Terminal()]
}

// Reachable reports whether the terminal is still reachable from the root
// when only edges whose code satisfies allowed may be used. The alphabet
// builder uses it to measure coverage of a partial chunk selection without
// rebuilding graphs.
// Complexity: O(nodes + edges).
func (g *Graph) Reachable(allowed func(code int) bool) bool {
	reach := make([]bool, len(g.alive))
	reach[0] = true
	for idx := 1; idx < len(reach); idx++ {
		if !g.alive[idx] {
			continue
		}
		for _, e := range g.in[idx] {
			if reach[g.Index(e.FromA, e.FromB)] && allowed(e.Code) {
				reach[idx] = true
				break
			}
		}
	}

	return reach[g.Terminal()]
}

// WalkPaths enumerates root→terminal paths in a deterministic order and
// calls yield with each one (steps in root→terminal order). The slice is
// reused between calls; copy it to retain it. Enumeration stops when yield
// returns false.
//
// The number of paths grows exponentially with the pair length; intended for
// tests and diagnostics on short pairs.
func (g *Graph) WalkPaths(yield func(path []Step) bool) {
	stack := make([]Step, 0, g.n)
	path := make([]Step, g.n)
	var walk func(idx int) bool
	walk = func(idx int) bool {
		if idx == 0 {
			for i := range stack {
				path[len(stack)-1-i] = stack[i]
			}
			return yield(path[:len(stack)])
		}
		a, b := g.Coordinate(idx)
		for _, e := range g.in[idx] {
			stack = append(stack, Step{FromA: e.FromA, FromB: e.FromB, ToA: a, ToB: b, Code: e.Code})
			ok := walk(g.Index(e.FromA, e.FromB))
			stack = stack[:len(stack)-1]
			if !ok {
				return false
			}
		}
		return true
	}
	if g.alive[g.Terminal()] {
		walk(g.Terminal())
	}
}
