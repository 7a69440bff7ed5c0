package baumwelch

import (
	"io"

	"github.com/katalvlaran/hmmalign/alignment"
)

// GraphCursor iterates one pass over a GraphSource.
type GraphCursor interface {
	// Next returns the next graph, or io.EOF at the end of the pass.
	Next() (*alignment.Graph, error)
	Close() error
}

// GraphSource is a restartable sequence of graphs.
type GraphSource interface {
	Open() (GraphCursor, error)
}

// SliceSource serves graphs from memory.
type SliceSource []*alignment.Graph

// Open implements GraphSource.
func (s SliceSource) Open() (GraphCursor, error) {
	return &sliceCursor{graphs: s}, nil
}

type sliceCursor struct {
	graphs []*alignment.Graph
	pos    int
}

func (c *sliceCursor) Next() (*alignment.Graph, error) {
	if c.pos >= len(c.graphs) {
		return nil, io.EOF
	}
	g := c.graphs[c.pos]
	c.pos++

	return g, nil
}

func (c *sliceCursor) Close() error { return nil }
