// Package relations persists resolved identifier closures. Once the full set
// of identifiers related to a starting identifier has been computed, it is
// recorded here and treated as authoritative for the life of the store: there
// is no invalidation path.
package relations

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/mathbib/mbib/internal/keyid"
)

// ErrNotFound is returned when no closure has been recorded for an
// identifier. Callers fall back to live resolution on this error; it is
// never surfaced to the end user.
var ErrNotFound = errors.New("no recorded relations")

// DBFile is the database file name under the data root.
const DBFile = "relations.db"

// Store is a durable map from a starting identifier to its resolved,
// ordered closure, backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the relation store under root.
func Open(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return OpenPath(filepath.Join(root, DBFile))
}

// OpenPath opens a relation store at an explicit database path.
func OpenPath(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS relations (
  start TEXT PRIMARY KEY,
  members TEXT NOT NULL
)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating relations table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Lookup returns the recorded closure for start, or ok=false if none exists.
// Lookup never performs network I/O.
func (s *Store) Lookup(start keyid.KeyID) ([]keyid.KeyID, bool, error) {
	var members string
	err := s.db.QueryRow("SELECT members FROM relations WHERE start = ?", start.String()).Scan(&members)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading relations: %w", err)
	}

	closure, err := decodeMembers(members)
	if err != nil {
		return nil, false, err
	}
	return closure, true, nil
}

// Record persists the closure for every member of the closure, keyed by each
// member. Recording an identical closure again is a no-op; a conflicting
// closure replaces the stored one (last write wins).
func (s *Store) Record(closure []keyid.KeyID) error {
	if len(closure) == 0 {
		return nil
	}

	members, err := encodeMembers(closure)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, k := range closure {
		if _, err := tx.Exec(`INSERT OR REPLACE INTO relations (start, members) VALUES (?, ?)`,
			k.String(), members); err != nil {
			return fmt.Errorf("recording relations for %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing relations: %w", err)
	}
	return nil
}

// Related returns the recorded closure for start, or ErrNotFound.
func (s *Store) Related(start keyid.KeyID) ([]keyid.KeyID, error) {
	closure, ok, err := s.Lookup(start)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w for %s", ErrNotFound, start)
	}
	return closure, nil
}

// Canonical returns the first element of the recorded closure for start: the
// highest-precedence identifier among the related records. Returns
// ErrNotFound if no closure is recorded.
func (s *Store) Canonical(start keyid.KeyID) (keyid.KeyID, error) {
	closure, err := s.Related(start)
	if err != nil {
		return keyid.KeyID{}, err
	}
	return closure[0], nil
}

// Count returns the number of recorded starting identifiers.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM relations").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting relations: %w", err)
	}
	return n, nil
}

func encodeMembers(closure []keyid.KeyID) (string, error) {
	strs := make([]string, len(closure))
	for i, k := range closure {
		strs[i] = k.String()
	}
	data, err := json.Marshal(strs)
	if err != nil {
		return "", fmt.Errorf("encoding closure: %w", err)
	}
	return string(data), nil
}

func decodeMembers(members string) ([]keyid.KeyID, error) {
	var strs []string
	if err := json.Unmarshal([]byte(members), &strs); err != nil {
		return nil, fmt.Errorf("decoding closure: %w", err)
	}

	closure := make([]keyid.KeyID, len(strs))
	for i, s := range strs {
		k, err := keyid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("decoding closure member: %w", err)
		}
		closure[i] = k
	}
	return closure, nil
}
