package local

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mathbib/mbib/internal/keyid"
)

func mustParse(t *testing.T, s string) keyid.KeyID {
	t.Helper()
	k, err := keyid.Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return k
}

func TestOverridePath(t *testing.T) {
	s := NewSource("/data")

	got := s.OverridePath(mustParse(t, "arxiv:1703.04289"))
	want := filepath.Join("/data", "records", "arxiv", "1703.04289.yml")
	if got != want {
		t.Errorf("OverridePath = %s, want %s", got, want)
	}

	// DOIs contain slashes; they must flatten to one path component.
	got = s.OverridePath(mustParse(t, "doi:10.1007/s00222"))
	want = filepath.Join("/data", "records", "doi", "10.1007_s00222.yml")
	if got != want {
		t.Errorf("OverridePath = %s, want %s", got, want)
	}
}

func TestOverridesRoundTrip(t *testing.T) {
	s := NewSource(t.TempDir())
	key := mustParse(t, "zbl:1396.37064")

	overrides, err := s.Overrides(key)
	if err != nil {
		t.Fatalf("Overrides: %v", err)
	}
	if overrides != nil {
		t.Errorf("Overrides for missing file = %v, want nil", overrides)
	}

	want := map[string]string{"title": "Fixed", "pages": "1--10"}
	if err := s.WriteOverrides(key, want); err != nil {
		t.Fatalf("WriteOverrides: %v", err)
	}

	got, err := s.Overrides(key)
	if err != nil {
		t.Fatalf("Overrides after write: %v", err)
	}
	if got["title"] != "Fixed" || got["pages"] != "1--10" {
		t.Errorf("Overrides = %v, want %v", got, want)
	}
}

func TestOverridesBadYAML(t *testing.T) {
	s := NewSource(t.TempDir())
	key := mustParse(t, "arxiv:1")

	path := s.OverridePath(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("title: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Overrides(key); err == nil {
		t.Error("expected parse error")
	}
}

func TestExistingFile(t *testing.T) {
	s := NewSource(t.TempDir())
	a := mustParse(t, "arxiv:1")
	b := mustParse(t, "zbl:2")

	if _, ok := s.ExistingFile([]keyid.KeyID{a, b}); ok {
		t.Error("no files exist yet")
	}

	path := s.FilePath(b)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0644); err != nil {
		t.Fatal(err)
	}

	got, ok := s.ExistingFile([]keyid.KeyID{a, b})
	if !ok {
		t.Fatal("expected a hit")
	}
	if got != path {
		t.Errorf("ExistingFile = %s, want %s", got, path)
	}
}
