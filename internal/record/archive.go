package record

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/mathbib/mbib/internal/keyid"
	"github.com/mathbib/mbib/internal/relations"
)

// OverrideSource supplies user-local BibTeX field overrides for an
// identifier. A nil map means no overrides exist for that identifier.
type OverrideSource interface {
	Overrides(key keyid.KeyID) (map[string]string, error)
}

// resolveState tracks the lazy resolution of an ArchiveRecord. The outcome
// of the first resolution, success or failure, is cached for the life of the
// instance; a failed resolution is never retried.
type resolveState int

const (
	stateUnresolved resolveState = iota
	stateResolved
	stateFailed
)

// ArchiveRecord is a lazily-resolved view of one work across all
// repositories that mirror it. The resolver runs at most once per instance.
type ArchiveRecord struct {
	Key keyid.AliasedKeyID

	resolver  *Resolver
	store     RelationStore
	overrides OverrideSource

	state    resolveState
	resolved []Resolved
	err      error
}

// NewArchive creates an archive record for key. overrides may be nil.
func NewArchive(key keyid.AliasedKeyID, resolver *Resolver, store RelationStore, overrides OverrideSource) *ArchiveRecord {
	return &ArchiveRecord{
		Key:       key,
		resolver:  resolver,
		store:     store,
		overrides: overrides,
	}
}

// NewArchiveFromString parses keyStr and creates an archive record with an
// optional alias.
func NewArchiveFromString(keyStr, alias string, resolver *Resolver, store RelationStore, overrides OverrideSource) (*ArchiveRecord, error) {
	key, err := keyid.ParseAliased(keyStr, alias)
	if err != nil {
		return nil, err
	}
	return NewArchive(key, resolver, store, overrides), nil
}

// Resolve returns the resolved closure, invoking the resolver on first call
// and replaying the cached outcome afterwards.
func (a *ArchiveRecord) Resolve(ctx context.Context) ([]Resolved, error) {
	if a.state == stateUnresolved {
		a.resolved, a.err = a.resolver.Resolve(ctx, a.Key.DropAlias())
		if a.err != nil {
			a.state = stateFailed
		} else {
			a.state = stateResolved
		}
	}
	return a.resolved, a.err
}

// AsJSON returns a JSON document mapping each resolved identifier to its
// fields, for inspection.
func (a *ArchiveRecord) AsJSON(ctx context.Context) ([]byte, error) {
	resolved, err := a.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	m := make(map[string]Fields, len(resolved))
	for _, r := range resolved {
		m[r.Key.String()] = r.Fields
	}
	return json.MarshalIndent(m, "", "  ")
}

// JointRecord merges every resolved record into one. Records are overlaid
// in reverse closure order so the first-discovered record's value wins on
// field collision, with two exceptions: "classifications" is the sorted set
// union across all records, and "bibtex" is the union of all records'
// override sub-maps with the same first-wins precedence.
func (a *ArchiveRecord) JointRecord(ctx context.Context) (Fields, error) {
	resolved, err := a.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	joint := make(Fields)
	for i := len(resolved) - 1; i >= 0; i-- {
		for k, v := range resolved[i].Fields {
			joint[k] = v
		}
	}

	classSet := make(map[string]bool)
	for _, r := range resolved {
		for _, c := range stringSlice(r.Fields["classifications"]) {
			classSet[c] = true
		}
	}
	if len(classSet) > 0 {
		classes := make([]string, 0, len(classSet))
		for c := range classSet {
			classes = append(classes, c)
		}
		sort.Strings(classes)
		joint["classifications"] = classes
	} else {
		delete(joint, "classifications")
	}

	bib := make(map[string]string)
	for i := len(resolved) - 1; i >= 0; i-- {
		for k, v := range stringMap(resolved[i].Fields["bibtex"]) {
			bib[k] = v
		}
	}
	if len(bib) > 0 {
		joint["bibtex"] = bib
	} else {
		delete(joint, "bibtex")
	}

	return joint, nil
}

// IsNull reports whether the joint record has no fields at all. With warn
// set, a null record also emits a warning on stderr.
func (a *ArchiveRecord) IsNull(ctx context.Context, warn bool) (bool, error) {
	joint, err := a.JointRecord(ctx)
	if err != nil {
		return false, err
	}
	null := len(joint) == 0
	if null && warn {
		fmt.Fprintf(os.Stderr, "warning: null record %q\n", a.Key.String())
	}
	return null, nil
}

// RelatedKeys returns the identifiers related to this record: the cached
// closure if the relation store has one, else the keys of a live resolution.
func (a *ArchiveRecord) RelatedKeys(ctx context.Context) ([]keyid.KeyID, error) {
	closure, err := a.store.Related(a.Key.DropAlias())
	if err == nil {
		return closure, nil
	}
	if !errors.Is(err, relations.ErrNotFound) {
		return nil, err
	}

	resolved, err := a.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]keyid.KeyID, len(resolved))
	for i, r := range resolved {
		keys[i] = r.Key
	}
	return keys, nil
}

// PriorityKey returns the canonical identifier for this record: the relation
// store's canonical entry if present, else the first identifier of a live
// resolution.
func (a *ArchiveRecord) PriorityKey(ctx context.Context) (keyid.KeyID, error) {
	canonical, err := a.store.Canonical(a.Key.DropAlias())
	if err == nil {
		return canonical, nil
	}
	if !errors.Is(err, relations.ErrNotFound) {
		return keyid.KeyID{}, err
	}

	resolved, err := a.Resolve(ctx)
	if err != nil {
		return keyid.KeyID{}, err
	}
	if len(resolved) == 0 {
		return keyid.KeyID{}, &NullRecordError{Key: a.Key.DropAlias()}
	}
	return resolved[0].Key, nil
}

// BibEntry builds a citation-ready record: eprint fields from the priority
// identifier, the captured subset of the joint record, a synthesized entry
// key and type, a joined author string, and finally any user-local overrides.
func (a *ArchiveRecord) BibEntry(ctx context.Context) (Fields, error) {
	joint, err := a.JointRecord(ctx)
	if err != nil {
		return nil, err
	}

	priority, err := a.PriorityKey(ctx)
	if err != nil {
		return nil, err
	}

	entry := Fields{
		"eprint":     priority.ID,
		"eprinttype": priority.Repo.String(),
	}
	for k, v := range joint {
		if capturedFields[k] {
			entry[k] = v
		}
	}

	bibtype, ok := joint["bibtype"].(string)
	if !ok || bibtype == "" {
		return nil, &MissingFieldError{Key: a.Key.DropAlias(), Field: "bibtype"}
	}
	entry["ID"] = a.Key.CiteKey()
	entry["ENTRYTYPE"] = bibtype

	if authors := stringSlice(joint["authors"]); len(authors) > 0 {
		entry["author"] = strings.Join(authors, " and ")
	}

	local, err := a.localOverrides(ctx)
	if err != nil {
		return nil, err
	}
	for k, v := range local {
		entry[k] = v
	}

	return entry, nil
}

// localOverrides merges per-identifier override files in reverse closure
// order, so the first-discovered identifier's overrides win among themselves.
func (a *ArchiveRecord) localOverrides(ctx context.Context) (map[string]string, error) {
	if a.overrides == nil {
		return nil, nil
	}

	resolved, err := a.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]string)
	for i := len(resolved) - 1; i >= 0; i-- {
		local, err := a.overrides.Overrides(resolved[i].Key)
		if err != nil {
			return nil, err
		}
		for k, v := range local {
			merged[k] = v
		}
	}
	return merged, nil
}

// capturedFields is the subset of joint-record fields carried verbatim into
// generated bibliography entries.
var capturedFields = map[string]bool{
	"title":     true,
	"year":      true,
	"month":     true,
	"doi":       true,
	"journal":   true,
	"volume":    true,
	"number":    true,
	"pages":     true,
	"series":    true,
	"publisher": true,
	"language":  true,
	"url":       true,
	"edition":   true,
	"isbn":      true,
	"zbl":       true,
}

// stringSlice converts a field value to []string, tolerating the []any shape
// produced by JSON decoding.
func stringSlice(v any) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []any:
		out := make([]string, 0, len(vv))
		for _, e := range vv {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// stringMap converts a field value to map[string]string, tolerating the
// map[string]any shape produced by JSON decoding.
func stringMap(v any) map[string]string {
	switch vv := v.(type) {
	case map[string]string:
		return vv
	case map[string]any:
		out := make(map[string]string, len(vv))
		for k, e := range vv {
			if s, ok := e.(string); ok {
				out[k] = s
			}
		}
		return out
	}
	return nil
}
