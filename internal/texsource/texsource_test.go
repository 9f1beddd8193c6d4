package texsource

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestExtractKeys(t *testing.T) {
	source := `We cite \cite{zbl:1} first, then \textcite[p.~3]{arxiv:2}
and a group \autocite{doi:10.1/x, zbl:1} plus \Cite*{mypaper}.`

	got := ExtractKeys(source)
	want := []string{"zbl:1", "arxiv:2", "doi:10.1/x", "mypaper"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractKeys = %v, want %v", got, want)
	}
}

func TestExtractKeysNoCitations(t *testing.T) {
	if got := ExtractKeys(`\section{Intro} no citations here`); got != nil {
		t.Errorf("ExtractKeys = %v, want nil", got)
	}
}

func TestExtractKeysIgnoresEmptyGroupMembers(t *testing.T) {
	got := ExtractKeys(`\cite{a, , b}`)
	want := []string{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractKeys = %v, want %v", got, want)
	}
}

func TestExtractKeysFromFiles(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.tex")
	second := filepath.Join(dir, "b.tex")
	if err := os.WriteFile(first, []byte(`\cite{one} and \cite{two}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(second, []byte(`\parencite{two,three}`), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := ExtractKeysFromFiles([]string{first, second})
	if err != nil {
		t.Fatalf("ExtractKeysFromFiles: %v", err)
	}
	want := []string{"one", "two", "three"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractKeysFromFiles = %v, want %v", got, want)
	}
}

func TestExtractKeysFromFilesMissing(t *testing.T) {
	_, err := ExtractKeysFromFiles([]string{filepath.Join(t.TempDir(), "nope.tex")})
	if err == nil {
		t.Error("expected error for a missing file")
	}
}
