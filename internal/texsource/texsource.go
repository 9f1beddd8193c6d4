// Package texsource extracts citation keys from TeX documents.
package texsource

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// citePattern matches the biblatex citation command family:
// \cite, \Cite, \textcite, \parencite, \autocite, \footcite and their
// starred/optioned forms, capturing the brace-delimited key group.
var citePattern = regexp.MustCompile(`\\[a-zA-Z]*[cC]ite[a-zA-Z]*\*?(?:\[[^\]]*\])*\{([^}]*)\}`)

// ExtractKeys returns the citation keys appearing in the TeX source, in
// first-appearance order without duplicates. Keys inside multi-key groups
// (\cite{a,b}) are split and trimmed.
func ExtractKeys(source string) []string {
	seen := make(map[string]bool)
	var keys []string

	for _, match := range citePattern.FindAllStringSubmatch(source, -1) {
		for _, key := range strings.Split(match[1], ",") {
			key = strings.TrimSpace(key)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys
}

// ExtractKeysFromFiles reads each TeX file and returns the union of its
// citation keys, in first-appearance order across files.
func ExtractKeysFromFiles(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var keys []string

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		for _, key := range ExtractKeys(string(data)) {
			if seen[key] {
				continue
			}
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys, nil
}
