// Package record resolves and merges bibliographic records mirrored across
// repositories. Starting from one identifier it discovers the full set of
// related identifiers, fetches each repository's view of the work, and merges
// them into a single citation-ready record with deterministic precedence.
package record

import (
	"context"

	"github.com/mathbib/mbib/internal/keyid"
)

// Fields is one repository's view of a record: an open field-name to value
// mapping. Recognized keys with special merge handling:
//
//   - "bibtype": entry type, required for bibliography generation
//   - "authors": ordered []string
//   - "classifications": []string, merged by sorted set union
//   - "bibtex": map[string]string of literal BibTeX overrides, merged by union
//
// Everything else passes through verbatim with first-discovered precedence.
type Fields map[string]any

// RelatedPair is a (repository key, local id) pair as reported inside a
// fetched record. It has not yet been validated as a parseable identifier.
type RelatedPair struct {
	Key string
	ID  string
}

// Fetcher loads one identifier's record from its repository.
//
// A missing record is signalled by nil fields with a nil error; related pairs
// may still be returned. A non-nil error indicates a connectivity failure and
// aborts any resolution in progress.
type Fetcher interface {
	Load(ctx context.Context, key keyid.KeyID) (Fields, []RelatedPair, error)
}

// RelationStore caches resolved closures between runs. relations.Store is
// the durable implementation.
type RelationStore interface {
	// Lookup returns the cached closure for start, or ok=false.
	Lookup(start keyid.KeyID) (closure []keyid.KeyID, ok bool, err error)
	// Record persists a freshly computed closure, keyed by each member.
	Record(closure []keyid.KeyID) error
	// Canonical returns the first element of the cached closure for start,
	// or relations.ErrNotFound.
	Canonical(start keyid.KeyID) (keyid.KeyID, error)
	// Related returns the cached closure for start, or relations.ErrNotFound.
	Related(start keyid.KeyID) ([]keyid.KeyID, error)
}

// Resolved is one entry of a resolved closure: an identifier together with
// the fields its repository reported.
type Resolved struct {
	Key    keyid.KeyID
	Fields Fields
}
