package keyid

import (
	"errors"
	"sort"
	"testing"
)

func TestParse(t *testing.T) {
	k, err := Parse("arxiv:1703.04289")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if k.Repo != RepoArxiv {
		t.Errorf("Repo = %v, want %v", k.Repo, RepoArxiv)
	}
	if k.ID != "1703.04289" {
		t.Errorf("ID = %q, want %q", k.ID, "1703.04289")
	}
}

func TestParseCaseInsensitiveKey(t *testing.T) {
	k, err := Parse("ZBL:1396.37064")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if k.Repo != RepoZbl {
		t.Errorf("Repo = %v, want %v", k.Repo, RepoZbl)
	}
}

func TestParseDOIWithColons(t *testing.T) {
	// Only the first colon separates key from id; the rest belongs to the id.
	k, err := Parse("doi:10.1000/abc:def")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if k.ID != "10.1000/abc:def" {
		t.Errorf("ID = %q, want %q", k.ID, "10.1000/abc:def")
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{"", "arxiv", "arxiv:", "nosuch:123", ":123"} {
		_, err := Parse(input)
		if err == nil {
			t.Errorf("Parse(%q): expected error", input)
			continue
		}
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("Parse(%q): error is not a ParseError: %v", input, err)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, s := range []string{"arxiv:1703.04289", "zbl:1396.37064", "zbmath:7037533", "doi:10.1007/s00222-018-0832-y"} {
		k, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
		if k.String() != s {
			t.Errorf("round trip: %q -> %q", s, k.String())
		}
	}
}

func TestCompare(t *testing.T) {
	arxiv := KeyID{Repo: RepoArxiv, ID: "9999.99999"}
	zbl := KeyID{Repo: RepoZbl, ID: "0001.00001"}
	if !arxiv.Less(zbl) {
		t.Error("arxiv identifiers should sort before zbl regardless of local id")
	}

	a := KeyID{Repo: RepoZbl, ID: "0001"}
	b := KeyID{Repo: RepoZbl, ID: "0002"}
	if !a.Less(b) {
		t.Error("same repository should order by local id")
	}
	if a.Compare(a) != 0 {
		t.Error("Compare with self should be 0")
	}
}

func TestSortOrder(t *testing.T) {
	keys := []KeyID{
		{Repo: RepoDOI, ID: "10.1/x"},
		{Repo: RepoArxiv, ID: "2"},
		{Repo: RepoZbmath, ID: "7"},
		{Repo: RepoArxiv, ID: "1"},
		{Repo: RepoZbl, ID: "5"},
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	want := []string{"arxiv:1", "arxiv:2", "zbl:5", "zbmath:7", "doi:10.1/x"}
	for i, w := range want {
		if keys[i].String() != w {
			t.Errorf("sorted[%d] = %s, want %s", i, keys[i], w)
		}
	}
}

func TestAliased(t *testing.T) {
	a, err := ParseAliased("arxiv:1703.04289", "rutar2017")
	if err != nil {
		t.Fatalf("ParseAliased: %v", err)
	}
	if a.CiteKey() != "rutar2017" {
		t.Errorf("CiteKey = %q, want %q", a.CiteKey(), "rutar2017")
	}
	if a.DropAlias().String() != "arxiv:1703.04289" {
		t.Errorf("DropAlias = %s", a.DropAlias())
	}

	// Alias never affects identity.
	b, _ := ParseAliased("arxiv:1703.04289", "other")
	if a.DropAlias() != b.DropAlias() {
		t.Error("aliased identifiers with same KEY:ID should share identity")
	}

	noAlias, _ := ParseAliased("zbl:1396.37064", "")
	if noAlias.CiteKey() != "zbl:1396.37064" {
		t.Errorf("CiteKey without alias = %q", noAlias.CiteKey())
	}
}
