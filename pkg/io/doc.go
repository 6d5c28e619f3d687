// Package io reads PageGraph recordings from files and streams.
//
// [ReadFromReader] and [ReadFromFile] parse a GraphML document and build
// the typed graph in one call. Every construction error aborts the read;
// no partial graph is returned. Callers discriminate failures with
// errors.As on the typed errors of package errors:
//
//	g, err := io.ReadFromFile("page_graph.graphml")
//	var md *errors.MalformedDocumentError
//	if stderrors.As(err, &md) {
//	    fmt.Println("bad XML at line", md.Line)
//	}
//
// # Remote frames
//
// Out-of-process frames are recorded in separate files next to the root
// recording, named page_graph_<FRAMEID>.0.graphml. [ReadWithFrames] reads
// those that exist in parallel and merges them into the root graph with
// [graph.Graph.MergeFrame]. Missing frame files are skipped.
package io
