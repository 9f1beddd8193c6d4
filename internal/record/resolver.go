package record

import (
	"context"
	"fmt"
	"sort"

	"github.com/mathbib/mbib/internal/keyid"
)

// Resolver computes the transitive closure of identifiers reachable from a
// starting identifier via the related-identifier links embedded in fetched
// records, short-circuiting through the relation store when a closure has
// already been recorded.
type Resolver struct {
	fetcher Fetcher
	store   RelationStore
}

// NewResolver creates a resolver over the given fetcher and relation store.
func NewResolver(fetcher Fetcher, store RelationStore) *Resolver {
	return &Resolver{fetcher: fetcher, store: store}
}

// Resolve returns every reachable identifier together with its current
// fields, in closure order (repository precedence, then local id).
//
// If a closure is already recorded for start, membership is trusted: exactly
// one fetch per recorded member refreshes field values, and members that no
// longer resolve are dropped. Otherwise a breadth-first expansion discovers
// the closure, records it, and returns it.
//
// A connectivity failure aborts the whole resolution with ErrRemoteAccess.
// An empty result is a NullRecordError, not a valid empty record.
func (r *Resolver) Resolve(ctx context.Context, start keyid.KeyID) ([]Resolved, error) {
	closure, ok, err := r.store.Lookup(start)
	if err != nil {
		return nil, err
	}

	var resolved []Resolved
	if ok {
		resolved, err = r.refresh(ctx, closure)
	} else {
		resolved, err = r.expand(ctx, start)
	}
	if err != nil {
		return nil, err
	}

	if len(resolved) == 0 {
		return nil, &NullRecordError{Key: start}
	}
	return resolved, nil
}

// refresh fetches current fields for an already-recorded closure, preserving
// the recorded order and dropping members that no longer resolve.
func (r *Resolver) refresh(ctx context.Context, closure []keyid.KeyID) ([]Resolved, error) {
	var resolved []Resolved
	for _, k := range closure {
		fields, _, err := r.fetcher.Load(ctx, k)
		if err != nil {
			return nil, fmt.Errorf("%w: fetching %s: %v", ErrRemoteAccess, k, err)
		}
		if fields != nil {
			resolved = append(resolved, Resolved{Key: k, Fields: fields})
		}
	}
	return resolved, nil
}

// expand performs the breadth-first discovery. Each identifier is fetched at
// most once, so the traversal terminates even when repositories reference
// each other cyclically. Every related pair reported in a round, including
// pairs from fetches whose record was absent, feeds the next frontier.
func (r *Resolver) expand(ctx context.Context, start keyid.KeyID) ([]Resolved, error) {
	visited := make(map[keyid.KeyID]bool)
	frontier := []keyid.KeyID{start}

	var emitted []Resolved
	for len(frontier) > 0 {
		var related []RelatedPair
		for _, k := range frontier {
			if visited[k] {
				continue
			}
			visited[k] = true

			fields, pairs, err := r.fetcher.Load(ctx, k)
			if err != nil {
				return nil, fmt.Errorf("%w: fetching %s: %v", ErrRemoteAccess, k, err)
			}
			if fields != nil {
				emitted = append(emitted, Resolved{Key: k, Fields: fields})
			}
			related = append(related, pairs...)
		}

		frontier = frontier[:0]
		for _, pair := range related {
			k, err := keyid.Parse(pair.Key + ":" + pair.ID)
			if err != nil {
				// Records may reference repositories this tool does not
				// know; such links are not expandable.
				continue
			}
			frontier = append(frontier, k)
		}
	}

	sort.Slice(emitted, func(i, j int) bool {
		return emitted[i].Key.Less(emitted[j].Key)
	})

	if len(emitted) > 0 {
		closure := make([]keyid.KeyID, len(emitted))
		for i, e := range emitted {
			closure[i] = e.Key
		}
		if err := r.store.Record(closure); err != nil {
			return nil, err
		}
	}

	return emitted, nil
}
