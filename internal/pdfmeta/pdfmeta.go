// Package pdfmeta identifies downloaded papers by scanning their text for
// repository identifiers.
package pdfmeta

import (
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/mathbib/mbib/internal/keyid"
)

// Identifiers usually appear on the first page; arXiv stamps the margin of
// page one, publishers print the DOI in the header or footer.
const maxPages = 3

var (
	arxivPattern = regexp.MustCompile(`arXiv:(\d{4}\.\d{4,5})(v\d+)?`)
	doiPattern   = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)
)

// Identify scans the first pages of a PDF for repository identifiers.
// Returns the identifiers found, arXiv first, or an empty slice when the
// document carries none.
func Identify(path string) ([]keyid.KeyID, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pages := maxPages
	if r.NumPage() < pages {
		pages = r.NumPage()
	}

	var text strings.Builder
	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text.WriteString(content)
		text.WriteString("\n")
	}

	return identifyText(text.String()), nil
}

func identifyText(text string) []keyid.KeyID {
	var keys []keyid.KeyID
	seen := make(map[keyid.KeyID]bool)

	add := func(k keyid.KeyID) {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}

	if m := arxivPattern.FindStringSubmatch(text); m != nil {
		add(keyid.KeyID{Repo: keyid.RepoArxiv, ID: m[1]})
	}
	for _, m := range doiPattern.FindAllString(text, -1) {
		doi := strings.TrimRight(m, ".,;:)")
		if validDOI(doi) {
			add(keyid.KeyID{Repo: keyid.RepoDOI, ID: doi})
			break
		}
	}
	return keys
}

// validDOI performs basic shape validation.
func validDOI(doi string) bool {
	if len(doi) < 10 || !strings.HasPrefix(doi, "10.") {
		return false
	}
	slash := strings.Index(doi, "/")
	return slash != -1 && slash < len(doi)-1
}
