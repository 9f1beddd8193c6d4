// Package local manages per-identifier files kept alongside the data store:
// user BibTeX field overrides and downloaded papers.
package local

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mathbib/mbib/internal/keyid"
)

// Source reads user-local record data under an explicitly injected data
// root. It implements record.OverrideSource.
type Source struct {
	root string
}

// NewSource creates a source rooted at the given data directory.
func NewSource(root string) *Source {
	return &Source{root: root}
}

// OverridePath returns the override file path for an identifier:
// <root>/records/<repo>/<id>.yml. Path separators in local ids (DOIs) are
// flattened so every identifier maps to a single file.
func (s *Source) OverridePath(key keyid.KeyID) string {
	return filepath.Join(s.root, "records", key.Repo.String(), safeName(key.ID)+".yml")
}

// FilePath returns where the downloaded paper for an identifier lives:
// <root>/files/<repo>/<id>.pdf.
func (s *Source) FilePath(key keyid.KeyID) string {
	return filepath.Join(s.root, "files", key.Repo.String(), safeName(key.ID)+".pdf")
}

// Overrides returns the user's BibTeX field overrides for an identifier, or
// nil if no override file exists.
func (s *Source) Overrides(key keyid.KeyID) (map[string]string, error) {
	data, err := os.ReadFile(s.OverridePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading overrides for %s: %w", key, err)
	}

	var overrides map[string]string
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parsing overrides for %s: %w", key, err)
	}
	return overrides, nil
}

// WriteOverrides persists the override map for an identifier.
func (s *Source) WriteOverrides(key keyid.KeyID, overrides map[string]string) error {
	path := s.OverridePath(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating records directory: %w", err)
	}

	data, err := yaml.Marshal(overrides)
	if err != nil {
		return fmt.Errorf("encoding overrides: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing overrides for %s: %w", key, err)
	}
	return nil
}

// ExistingFile returns the path of the first key in keys whose downloaded
// file exists, or ok=false.
func (s *Source) ExistingFile(keys []keyid.KeyID) (string, bool) {
	for _, k := range keys {
		path := s.FilePath(k)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// safeName flattens a local id into a single path component.
func safeName(id string) string {
	return strings.ReplaceAll(id, "/", "_")
}
