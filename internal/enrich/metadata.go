// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"

	"github.com/pdiddy/weekly-radar/internal/search"
)

// Metadata is the canonical description of one preprint.
type Metadata struct {
	Title    string
	Abstract string
	Authors  []string
}

// Resolver is the metadata resolution capability. found is false when the
// authority has no record for id.
type Resolver interface {
	Resolve(ctx context.Context, id string) (md Metadata, found bool, err error)
}

// ArxivResolver resolves identifiers through the arXiv id_list API.
type ArxivResolver struct {
	Backend *search.ArxivBackend
}

// Resolve looks up a single arXiv identifier.
func (r *ArxivResolver) Resolve(ctx context.Context, id string) (Metadata, bool, error) {
	papers, err := r.Backend.Lookup(ctx, id)
	if err != nil {
		return Metadata{}, false, err
	}
	p, ok := papers[id]
	if !ok {
		return Metadata{}, false, nil
	}
	return Metadata{Title: p.Title, Abstract: p.Abstract, Authors: p.Authors}, true, nil
}
