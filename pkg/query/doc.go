// Package query runs built-in analyses over a PageGraph recording.
//
// Named queries produce a [Table] and are what the command line and the
// HTTP API expose:
//
//	t, err := query.Run(ctx, g, "deleted-elements", nil)
//	if err != nil {
//	    return err
//	}
//	return t.WriteCSV(os.Stdout)
//
// The provenance analyses answer causal questions about single elements:
// which edges modified an HTML element, which scripts fetched a resource,
// and which requests an edge led to. [DownstreamEffects] follows a fixed set
// of causal rules between edge kinds and reports UNSUPPORTED for kinds it
// cannot reason about.
package query
