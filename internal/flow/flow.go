// Package flow is a small workflow engine: stations connected by signal
// edges, executed sequentially over a shared context value.
package flow

import (
	"context"
	"fmt"
)

// Signal routes between stations. The set of values is closed per graph;
// a signal with no registered edge ends the run.
type Signal string

// Next is the conventional signal for linear progression.
const Next Signal = "next"

// Station is one pipeline step. Prepare reads what it needs from the
// shared context, Execute does the work without touching the shared
// context, Finalize writes results back and picks the outgoing signal.
type Station[C any] interface {
	Name() string
	Prepare(c C) (any, error)
	Execute(ctx context.Context, in any) (any, error)
	Finalize(c C, in, out any) Signal
}

type edgeKey struct {
	from   string
	signal Signal
}

// Flow is a directed graph of stations.
type Flow[C any] struct {
	entry Station[C]
	edges map[edgeKey]Station[C]
}

// New creates a flow starting at entry.
func New[C any](entry Station[C]) *Flow[C] {
	return &Flow[C]{
		entry: entry,
		edges: make(map[edgeKey]Station[C]),
	}
}

// Wire registers the edge from -> to for the given signal.
func (f *Flow[C]) Wire(from Station[C], signal Signal, to Station[C]) *Flow[C] {
	f.edges[edgeKey{from.Name(), signal}] = to
	return f
}

// Run walks the graph from the entry station until a signal has no
// registered edge. Prepare and Execute errors abort the run.
func (f *Flow[C]) Run(ctx context.Context, c C) error {
	cur := f.entry
	for cur != nil {
		in, err := cur.Prepare(c)
		if err != nil {
			return fmt.Errorf("station %s: prepare: %w", cur.Name(), err)
		}
		out, err := cur.Execute(ctx, in)
		if err != nil {
			return fmt.Errorf("station %s: %w", cur.Name(), err)
		}
		signal := cur.Finalize(c, in, out)
		cur = f.edges[edgeKey{cur.Name(), signal}]
	}
	return nil
}
