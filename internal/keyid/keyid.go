// Package keyid defines canonical identifiers for records in mathematical
// literature repositories. A KeyID names one record in one repository and is
// written KEY:ID, e.g. "arxiv:1234.56789" or "zbl:0123.45678".
package keyid

import (
	"fmt"
	"strings"
)

// Repo identifies a supported repository. The numeric order defines citation
// precedence: when a record is mirrored in several repositories, the lowest
// Repo value is the preferred eprint source.
type Repo int

const (
	RepoArxiv Repo = iota
	RepoZbl
	RepoZbmath
	RepoDOI
)

var repoNames = map[Repo]string{
	RepoArxiv:  "arxiv",
	RepoZbl:    "zbl",
	RepoZbmath: "zbmath",
	RepoDOI:    "doi",
}

var reposByName = map[string]Repo{
	"arxiv":  RepoArxiv,
	"zbl":    RepoZbl,
	"zbmath": RepoZbmath,
	"doi":    RepoDOI,
}

// String returns the canonical lowercase repository key.
func (r Repo) String() string {
	if name, ok := repoNames[r]; ok {
		return name
	}
	return fmt.Sprintf("repo(%d)", int(r))
}

// ParseRepo parses a repository key, case-insensitively.
func ParseRepo(s string) (Repo, error) {
	r, ok := reposByName[strings.ToLower(s)]
	if !ok {
		return 0, &ParseError{Input: s, Reason: "unknown repository key"}
	}
	return r, nil
}

// Repos returns all supported repositories in precedence order.
func Repos() []Repo {
	return []Repo{RepoArxiv, RepoZbl, RepoZbmath, RepoDOI}
}

// ParseError indicates a string that does not name a valid identifier.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed identifier %q: %s", e.Input, e.Reason)
}

// KeyID is an immutable (repository, local id) reference. Two KeyIDs are
// equal iff both fields are equal, so KeyID is usable as a map key.
type KeyID struct {
	Repo Repo
	ID   string
}

// Parse parses the KEY:ID textual form.
func Parse(s string) (KeyID, error) {
	key, id, found := strings.Cut(s, ":")
	if !found {
		return KeyID{}, &ParseError{Input: s, Reason: "missing ':' separator"}
	}
	if id == "" {
		return KeyID{}, &ParseError{Input: s, Reason: "empty local id"}
	}
	repo, err := ParseRepo(key)
	if err != nil {
		return KeyID{}, &ParseError{Input: s, Reason: fmt.Sprintf("unknown repository key %q", key)}
	}
	return KeyID{Repo: repo, ID: id}, nil
}

// String formats the KEY:ID form. Parse(k.String()) round-trips for any
// KeyID produced by Parse.
func (k KeyID) String() string {
	return k.Repo.String() + ":" + k.ID
}

// Compare orders KeyIDs by repository precedence, then by local id. The
// first element of a sorted closure is the priority identifier.
func (k KeyID) Compare(other KeyID) int {
	if k.Repo != other.Repo {
		if k.Repo < other.Repo {
			return -1
		}
		return 1
	}
	return strings.Compare(k.ID, other.ID)
}

// Less reports whether k sorts before other.
func (k KeyID) Less(other KeyID) bool {
	return k.Compare(other) < 0
}

// AliasedKeyID is a KeyID plus an optional user-chosen alias. The alias is
// presentation-only: it becomes the citation key in generated bibliographies
// but never affects resolution identity.
type AliasedKeyID struct {
	KeyID
	Alias string
}

// ParseAliased parses KEY:ID and attaches an alias.
func ParseAliased(s, alias string) (AliasedKeyID, error) {
	k, err := Parse(s)
	if err != nil {
		return AliasedKeyID{}, err
	}
	return AliasedKeyID{KeyID: k, Alias: alias}, nil
}

// DropAlias returns the underlying KeyID.
func (a AliasedKeyID) DropAlias() KeyID {
	return a.KeyID
}

// CiteKey returns the alias if present, else the KEY:ID form.
func (a AliasedKeyID) CiteKey() string {
	if a.Alias != "" {
		return a.Alias
	}
	return a.KeyID.String()
}
