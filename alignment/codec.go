package alignment

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Header summarises a batch of graphs; it is written as the first line of
// the text format so readers can size buffers before parsing.
type Header struct {
	MaxAbove int // longest above-sequence in the batch
	MaxBelow int // longest below-sequence in the batch
	MaxEdges int // largest per-graph edge count in the batch
}

// HeaderOf computes the header of a batch.
func HeaderOf(graphs []*Graph) Header {
	var h Header
	for _, g := range graphs {
		h.MaxAbove = max(h.MaxAbove, g.n)
		h.MaxBelow = max(h.MaxBelow, g.m)
		h.MaxEdges = max(h.MaxEdges, g.EdgeCount())
	}

	return h
}

// WriteGraphs serialises a batch of graphs:
//
//	max_above_length,max_below_length,max_edge_count
//	a b source_a source_b code     (one line per edge, ascending (a,b))
//	...
//	<blank line>                   (terminates each graph)
//
// The pair sizes are implied by the last node carrying edges, which is
// always the terminal.
func WriteGraphs(w io.Writer, graphs []*Graph) error {
	bw := bufio.NewWriter(w)
	h := HeaderOf(graphs)
	if _, err := fmt.Fprintf(bw, "%d,%d,%d\n", h.MaxAbove, h.MaxBelow, h.MaxEdges); err != nil {
		return err
	}
	for _, g := range graphs {
		if err := writeGraph(bw, g); err != nil {
			return err
		}
	}

	return bw.Flush()
}

func writeGraph(w *bufio.Writer, g *Graph) error {
	for idx, in := range g.in {
		if len(in) == 0 {
			continue
		}
		a, b := g.Coordinate(idx)
		for _, e := range in {
			if _, err := fmt.Fprintf(w, "%d %d %d %d %d\n", a, b, e.FromA, e.FromB, e.Code); err != nil {
				return err
			}
		}
	}
	_, err := w.WriteString("\n")

	return err
}

// ReadGraphs parses the format written by WriteGraphs.
//
// Errors:
//   - ErrMalformed (wrapped with the offending line number) when the header
//     is missing or inconsistent with the data, an edge does not consume
//     exactly one above-symbol, edges are out of (a,b) order, or an edge
//     source is not itself reachable.
func ReadGraphs(r io.Reader) (Header, []*Graph, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return Header{}, nil, err
		}
		return Header{}, nil, fmt.Errorf("missing header: %w", ErrMalformed)
	}
	line++
	h, err := parseHeader(sc.Text())
	if err != nil {
		return Header{}, nil, fmt.Errorf("line %d: %v: %w", line, err, ErrMalformed)
	}

	var graphs []*Graph
	var rows [][5]int
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			g, err := assemble(rows, h)
			if err != nil {
				return h, nil, fmt.Errorf("graph ending at line %d: %w", line, err)
			}
			graphs = append(graphs, g)
			rows = rows[:0]
			continue
		}
		row, err := parseEdge(text)
		if err != nil {
			return h, nil, fmt.Errorf("line %d: %v: %w", line, err, ErrMalformed)
		}
		if k := len(rows); k > 0 && (row[0] < rows[k-1][0] || (row[0] == rows[k-1][0] && row[1] < rows[k-1][1])) {
			return h, nil, fmt.Errorf("line %d: edges not grouped by ascending (a,b): %w", line, ErrMalformed)
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return h, nil, err
	}
	if len(rows) > 0 {
		return h, nil, fmt.Errorf("line %d: graph not terminated by a blank line: %w", line, ErrMalformed)
	}

	return h, graphs, nil
}

func parseHeader(s string) (Header, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 3 {
		return Header{}, fmt.Errorf("header %q: want 3 fields", s)
	}
	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return Header{}, fmt.Errorf("header field %q", p)
		}
		v[i] = n
	}

	return Header{MaxAbove: v[0], MaxBelow: v[1], MaxEdges: v[2]}, nil
}

func parseEdge(s string) ([5]int, error) {
	var row [5]int
	fields := strings.Fields(s)
	if len(fields) != 5 {
		return row, fmt.Errorf("edge %q: want 5 fields", s)
	}
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return row, fmt.Errorf("edge field %q", f)
		}
		row[i] = n
	}
	if row[2] != row[0]-1 || row[3] > row[1] {
		return row, fmt.Errorf("edge %q does not consume exactly one above-symbol", s)
	}

	return row, nil
}

// assemble rebuilds one graph from its edge rows and re-checks reachability.
func assemble(rows [][5]int, h Header) (*Graph, error) {
	if len(rows) == 0 {
		return newGraph(0, 0).withRootAlive(), nil
	}
	last := rows[len(rows)-1]
	n, m := last[0], last[1]
	if n > h.MaxAbove || m > h.MaxBelow || len(rows) > h.MaxEdges {
		return nil, fmt.Errorf("graph %dx%d with %d edges exceeds header %+v: %w", n, m, len(rows), h, ErrMalformed)
	}
	g := newGraph(n, m)
	for _, r := range rows {
		if r[1] > m {
			return nil, fmt.Errorf("edge into (%d,%d) beyond terminal (%d,%d): %w", r[0], r[1], n, m, ErrMalformed)
		}
		idx := g.Index(r[0], r[1])
		g.in[idx] = append(g.in[idx], Edge{FromA: r[2], FromB: r[3], Code: r[4]})
	}
	// every source must itself be the root or carry edges
	for idx, in := range g.in {
		for _, e := range in {
			src := g.Index(e.FromA, e.FromB)
			if src != 0 && len(g.in[src]) == 0 {
				a, b := g.Coordinate(idx)
				return nil, fmt.Errorf("edge (%d,%d)->(%d,%d) from unreachable node: %w", e.FromA, e.FromB, a, b, ErrMalformed)
			}
		}
	}
	g.prune()
	for idx, in := range g.in {
		if len(in) == 0 && idx != 0 && g.alive[idx] {
			return nil, fmt.Errorf("node %d has no incoming edges: %w", idx, ErrMalformed)
		}
	}
	if g.EdgeCount() != len(rows) {
		return nil, fmt.Errorf("graph contains edges off every root-terminal path: %w", ErrMalformed)
	}

	return g, nil
}

func (g *Graph) withRootAlive() *Graph {
	g.alive[0] = true

	return g
}
