package relations

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/mathbib/mbib/internal/keyid"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenPath(filepath.Join(t.TempDir(), "relations.db"))
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustParse(t *testing.T, s string) keyid.KeyID {
	t.Helper()
	k, err := keyid.Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return k
}

func TestLookupMiss(t *testing.T) {
	s := openTestStore(t)

	_, ok, err := s.Lookup(mustParse(t, "arxiv:1234.5678"))
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if ok {
		t.Error("expected miss for unrecorded identifier")
	}
}

func TestRecordAndLookup(t *testing.T) {
	s := openTestStore(t)

	closure := []keyid.KeyID{
		mustParse(t, "arxiv:1234.5678"),
		mustParse(t, "zbl:98765"),
	}
	if err := s.Record(closure); err != nil {
		t.Fatalf("Record: %v", err)
	}

	// Every member of the closure is a valid starting point.
	for _, start := range closure {
		got, ok, err := s.Lookup(start)
		if err != nil {
			t.Fatalf("Lookup(%s): %v", start, err)
		}
		if !ok {
			t.Fatalf("Lookup(%s): expected hit", start)
		}
		if len(got) != 2 || got[0] != closure[0] || got[1] != closure[1] {
			t.Errorf("Lookup(%s) = %v, want %v", start, got, closure)
		}
	}
}

func TestRecordIdempotent(t *testing.T) {
	s := openTestStore(t)

	closure := []keyid.KeyID{mustParse(t, "arxiv:1"), mustParse(t, "zbl:2")}
	if err := s.Record(closure); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := s.Record(closure); err != nil {
		t.Fatalf("Record (again): %v", err)
	}

	got, err := s.Related(closure[0])
	if err != nil {
		t.Fatalf("Related: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 members, got %d", len(got))
	}
}

func TestRecordEmptyIsNoop(t *testing.T) {
	s := openTestStore(t)

	if err := s.Record(nil); err != nil {
		t.Fatalf("Record(nil): %v", err)
	}
	n, err := s.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 0 {
		t.Errorf("Count = %d, want 0", n)
	}
}

func TestCanonical(t *testing.T) {
	s := openTestStore(t)

	closure := []keyid.KeyID{mustParse(t, "arxiv:1234.5678"), mustParse(t, "zbl:98765")}
	if err := s.Record(closure); err != nil {
		t.Fatalf("Record: %v", err)
	}

	canonical, err := s.Canonical(mustParse(t, "zbl:98765"))
	if err != nil {
		t.Fatalf("Canonical: %v", err)
	}
	if canonical != closure[0] {
		t.Errorf("Canonical = %s, want %s", canonical, closure[0])
	}
}

func TestNotFound(t *testing.T) {
	s := openTestStore(t)
	start := mustParse(t, "zbmath:7037533")

	if _, err := s.Related(start); !errors.Is(err, ErrNotFound) {
		t.Errorf("Related: expected ErrNotFound, got %v", err)
	}
	if _, err := s.Canonical(start); !errors.Is(err, ErrNotFound) {
		t.Errorf("Canonical: expected ErrNotFound, got %v", err)
	}
}

func TestPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relations.db")

	s, err := OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	closure := []keyid.KeyID{mustParse(t, "arxiv:1"), mustParse(t, "doi:10.1/x")}
	if err := s.Record(closure); err != nil {
		t.Fatalf("Record: %v", err)
	}
	s.Close()

	reopened, err := OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath (reopen): %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Related(closure[1])
	if err != nil {
		t.Fatalf("Related after reopen: %v", err)
	}
	if len(got) != 2 || got[0] != closure[0] {
		t.Errorf("Related after reopen = %v, want %v", got, closure)
	}
}
