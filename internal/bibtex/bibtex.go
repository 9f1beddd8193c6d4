// Package bibtex renders bibliography entries as BibLaTeX source.
package bibtex

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mathbib/mbib/internal/record"
)

// Entry field keys with special meaning, following the convention that the
// citation key and entry type travel inside the field map.
const (
	KeyID        = "ID"
	KeyEntryType = "ENTRYTYPE"
)

// WriteEntry renders a single bibliography entry. Fields are emitted in
// alphabetical order so output is deterministic; the "bibtex" sub-map of
// literal overrides is expanded last and wins over same-named fields.
func WriteEntry(entry record.Fields) (string, error) {
	id, _ := entry[KeyID].(string)
	entryType, _ := entry[KeyEntryType].(string)
	if id == "" || entryType == "" {
		return "", fmt.Errorf("entry missing %s or %s", KeyID, KeyEntryType)
	}

	fields := make(map[string]string)
	for k, v := range entry {
		if k == KeyID || k == KeyEntryType || k == "bibtex" || k == "classifications" || k == "authors" {
			continue
		}
		if s := fieldString(v); s != "" {
			fields[k] = s
		}
	}
	if overrides, ok := entry["bibtex"].(map[string]string); ok {
		for k, v := range overrides {
			fields[k] = v
		}
	}

	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "@%s{%s,\n", entryType, id)
	for _, k := range names {
		fmt.Fprintf(&b, "  %s = {%s},\n", k, fields[k])
	}
	b.WriteString("}\n")
	return b.String(), nil
}

// WriteEntries renders multiple entries separated by blank lines.
func WriteEntries(entries []record.Fields) (string, error) {
	rendered := make([]string, 0, len(entries))
	for _, e := range entries {
		s, err := WriteEntry(e)
		if err != nil {
			return "", err
		}
		rendered = append(rendered, s)
	}
	return strings.Join(rendered, "\n"), nil
}

// fieldString converts a field value to its BibTeX text form. Slices and
// maps are not representable as a single field and are skipped.
func fieldString(v any) string {
	switch vv := v.(type) {
	case string:
		return vv
	case int:
		return fmt.Sprintf("%d", vv)
	case float64:
		if vv == float64(int64(vv)) {
			return fmt.Sprintf("%d", int64(vv))
		}
		return fmt.Sprintf("%v", vv)
	}
	return ""
}
