package io

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pagegraph/pkg/errors"
	"github.com/matzehuels/pagegraph/pkg/graph"
	"github.com/matzehuels/pagegraph/pkg/graphml"
	"github.com/matzehuels/pagegraph/pkg/observability"
)

// Option configures a read.
type Option func(*options)

type options struct {
	logger      *log.Logger
	parallelism int
}

func newOptions(opts []Option) options {
	o := options{logger: log.New(io.Discard), parallelism: 4}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger routes debug output to l.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithParallelism bounds how many frame files [ReadWithFrames] reads at
// once. Values below 1 are ignored.
func WithParallelism(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.parallelism = n
		}
	}
}

// ReadFromReader parses and builds a graph from r. It does not close r.
func ReadFromReader(r io.Reader, opts ...Option) (*graph.Graph, error) {
	return read(context.Background(), "reader", r, newOptions(opts))
}

// ReadFromFile opens, parses and builds the recording at path. The file is
// closed on every path, including failures.
func ReadFromFile(path string, opts ...Option) (*graph.Graph, error) {
	return readFile(context.Background(), path, newOptions(opts))
}

func readFile(ctx context.Context, path string, o options) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	g, err := read(ctx, path, bufio.NewReader(f), o)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

func read(ctx context.Context, source string, r io.Reader, o options) (g *graph.Graph, err error) {
	start := time.Now()
	observability.Read().OnReadStart(ctx, source)
	defer func() {
		var nodes, edges int
		if g != nil {
			nodes, edges = g.NodeCount(), g.EdgeCount()
		}
		elapsed := time.Since(start)
		observability.Read().OnReadComplete(ctx, source, nodes, edges, elapsed, err)
		if err == nil {
			o.logger.Debug("read graph", "source", source, "nodes", nodes, "edges", edges, "took", elapsed)
		}
	}()

	p, err := graphml.NewParser(r, graphml.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}
	return graph.FromParser(p)
}
