// Package pkg holds the PageGraph libraries.
//
// A PageGraph recording is a GraphML document written by the browser while a
// page loads. It records what the page did: which parser or script created
// each DOM node, which requests were started and how they ended, which
// storage areas were touched. The packages here turn such a recording into a
// typed, read-only graph and answer questions about it.
//
//	GraphML file
//	     ↓
//	[graphml] stream key declarations and raw node/edge records
//	     ↓
//	[kind] decode attributes into typed node and edge kinds
//	     ↓
//	[graph] validate and index into an immutable Graph
//	     ↓
//	[query] named queries and downstream effect analysis
//
// [io] wires the stages together and merges the recordings of remote frames
// into their parent graph. [cache] stores query results keyed by the content
// of the recording. [observability] exposes hooks for reads, queries, cache
// lookups and HTTP requests.
//
// # Quick Start
//
//	g, err := io.ReadWithFrames(ctx, "page_graph.graphml")
//	if err != nil {
//	    return err
//	}
//	t, err := query.Run(ctx, g, "deleted-elements", nil)
//	if err != nil {
//	    return err
//	}
//	return t.WriteCSV(os.Stdout)
package pkg
