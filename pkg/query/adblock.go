package query

import (
	"net/url"

	"github.com/matzehuels/pagegraph/pkg/adblock"
	"github.com/matzehuels/pagegraph/pkg/attr"
	"github.com/matzehuels/pagegraph/pkg/errors"
	"github.com/matzehuels/pagegraph/pkg/graph"
	"github.com/matzehuels/pagegraph/pkg/kind"
)

// ResourcesMatchingFilters returns the resources with at least one request
// the filter list would have blocked on the recorded page. With
// onlyExceptions it returns the resources an exception filter let through
// instead. Resources whose URL has no host are never reported.
func ResourcesMatchingFilters(g *graph.Graph, filters []string, onlyExceptions bool) ([]graph.Node, error) {
	d, ok := g.Descriptor()
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "recording has no page URL to match filters against")
	}
	page, err := url.Parse(d.URL)
	if err != nil || page.Hostname() == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "page URL %q has no host", d.URL)
	}
	engine, err := adblock.Compile(filters)
	if err != nil {
		return nil, err
	}

	sourceHost := page.Hostname()
	sourceDomain := adblock.Domain(sourceHost)
	out := []graph.Node{}
	for _, n := range g.Nodes() {
		r, ok := n.Type.(kind.Resource)
		if !ok {
			continue
		}
		u, err := url.Parse(r.URL)
		if err != nil || u.Hostname() == "" {
			continue
		}
		thirdParty := attr.Some(sourceDomain != adblock.Domain(u.Hostname()))
		usages, err := RequestTypes(g, n.ID)
		if err != nil {
			return nil, err
		}
		for _, usage := range usages {
			res := engine.Check(adblock.Request{
				URL:        r.URL,
				SourceHost: sourceHost,
				Type:       usage.Type,
				ThirdParty: thirdParty,
			})
			if (onlyExceptions && res.Exception) || (!onlyExceptions && res.Matched) {
				out = append(out, n)
				break
			}
		}
	}
	return out, nil
}
