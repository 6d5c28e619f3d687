package io

import (
	"context"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/pagegraph/pkg/graph"
	"github.com/matzehuels/pagegraph/pkg/id"
	"github.com/matzehuels/pagegraph/pkg/observability"
)

// FramePath returns where the recording of frame fid is expected, next to
// the root recording at root.
func FramePath(root string, fid id.FrameID) string {
	return filepath.Join(filepath.Dir(root), "page_graph_"+fid.String()+".0.graphml")
}

// ReadWithFrames reads the root recording at path and merges the
// recordings of its remote frames found next to it.
//
// Frame files are read concurrently. Merging happens afterwards in the
// order the remote frame nodes appear in the root graph, so the result does
// not depend on scheduling. A frame whose file does not exist is skipped.
func ReadWithFrames(ctx context.Context, path string, opts ...Option) (*graph.Graph, error) {
	o := newOptions(opts)
	root, err := readFile(ctx, path, o)
	if err != nil {
		return nil, err
	}
	if !root.IsRoot() {
		o.logger.Debug("not a root recording, skipping frames", "path", path)
		return root, nil
	}

	fids := root.RemoteFrameIDs()
	frames := make([]*graph.Graph, len(fids))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(o.parallelism)
	for i, fid := range fids {
		fp := FramePath(path, fid)
		if _, err := os.Stat(fp); err != nil {
			o.logger.Debug("frame recording not found", "frame", fid, "path", fp)
			continue
		}
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			g, err := readFile(egCtx, fp, o)
			if err != nil {
				return err
			}
			frames[i] = g
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	merged := root
	for i, frame := range frames {
		if frame == nil {
			continue
		}
		merged, err = merged.MergeFrame(frame, fids[i])
		if err != nil {
			return nil, err
		}
		observability.Read().OnFrameMerged(ctx, fids[i].String(), frame.NodeCount(), frame.EdgeCount())
		o.logger.Debug("merged frame", "frame", fids[i], "nodes", frame.NodeCount(), "edges", frame.EdgeCount())
	}
	return merged, nil
}
