package remote

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"

	"github.com/mathbib/mbib/internal/keyid"
	"github.com/mathbib/mbib/internal/record"
)

// repository describes how to fetch and interpret one repository's records.
type repository struct {
	baseURL     string
	accept      string
	recordPath  func(id string) string
	parse       func(id string, body []byte) (record.Fields, []record.RelatedPair, error)
	showURL     func(id string) string
	downloadURL func(id string) string
}

var repositories = map[keyid.Repo]repository{
	keyid.RepoArxiv: {
		baseURL: "https://export.arxiv.org",
		recordPath: func(id string) string {
			return "/api/query?id_list=" + url.QueryEscape(id)
		},
		parse: parseArxiv,
		showURL: func(id string) string {
			return "https://arxiv.org/abs/" + id
		},
		downloadURL: func(id string) string {
			return "https://arxiv.org/pdf/" + id
		},
	},
	keyid.RepoZbl: {
		baseURL: "https://api.zbmath.org",
		accept:  "application/json",
		recordPath: func(id string) string {
			return "/v1/document/_structured_search?page=0&results_per_page=1&zbl=" + url.QueryEscape(id)
		},
		parse: parseZblSearch,
		showURL: func(id string) string {
			return "https://zbmath.org/?q=an:" + id
		},
	},
	keyid.RepoZbmath: {
		baseURL: "https://api.zbmath.org",
		accept:  "application/json",
		recordPath: func(id string) string {
			return "/v1/document/" + url.PathEscape(id)
		},
		parse: parseZbmathDocument,
		showURL: func(id string) string {
			return "https://zbmath.org/" + id
		},
	},
	keyid.RepoDOI: {
		baseURL: "https://doi.org",
		accept:  "application/vnd.citationstyles.csl+json",
		recordPath: func(id string) string {
			return "/" + id
		},
		parse: parseCSL,
		showURL: func(id string) string {
			return "https://doi.org/" + id
		},
	},
}

// atomFeed is the subset of the arXiv export API Atom response we read.
type atomFeed struct {
	Entries []struct {
		ID      string `xml:"id"`
		Title   string `xml:"title"`
		Authors []struct {
			Name string `xml:"name"`
		} `xml:"author"`
		Published  string `xml:"published"`
		DOI        string `xml:"doi"`
		Categories []struct {
			Term string `xml:"term,attr"`
		} `xml:"category"`
	} `xml:"entry"`
}

// parseArxiv interprets an arXiv Atom feed. A query for an unknown id still
// returns HTTP 200 with an empty or error entry, so absence is detected from
// the entry contents.
func parseArxiv(id string, body []byte) (record.Fields, []record.RelatedPair, error) {
	var feed atomFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, nil, fmt.Errorf("parsing Atom feed: %w", err)
	}
	if len(feed.Entries) == 0 {
		return nil, nil, nil
	}

	entry := feed.Entries[0]
	if entry.ID == "" || strings.Contains(entry.ID, "/api/errors") {
		return nil, nil, nil
	}

	fields := record.Fields{"bibtype": "preprint"}
	if title := collapseSpace(entry.Title); title != "" {
		fields["title"] = title
	}
	if len(entry.Authors) > 0 {
		authors := make([]string, len(entry.Authors))
		for i, a := range entry.Authors {
			authors[i] = collapseSpace(a.Name)
		}
		fields["authors"] = authors
	}
	if len(entry.Published) >= 4 {
		fields["year"] = entry.Published[:4]
	}
	if len(entry.Categories) > 0 {
		terms := make([]string, 0, len(entry.Categories))
		for _, c := range entry.Categories {
			if c.Term != "" {
				terms = append(terms, c.Term)
			}
		}
		fields["classifications"] = terms
	}

	var related []record.RelatedPair
	if entry.DOI != "" {
		fields["doi"] = entry.DOI
		related = append(related, record.RelatedPair{Key: "doi", ID: entry.DOI})
	}
	return fields, related, nil
}

// zbmathDocument is the subset of a zbMATH Open document we read.
type zbmathDocument struct {
	ID    json.Number `json:"id"`
	Title struct {
		Title string `json:"title"`
	} `json:"title"`
	Contributors struct {
		Authors []struct {
			Name string `json:"name"`
		} `json:"authors"`
	} `json:"contributors"`
	MSC []struct {
		Code string `json:"code"`
	} `json:"msc"`
	DocumentType struct {
		Code string `json:"code"`
	} `json:"document_type"`
	Year     json.Number `json:"year"`
	Language struct {
		Languages []string `json:"languages"`
	} `json:"language"`
	Links []struct {
		Type       string `json:"type"`
		Identifier string `json:"identifier"`
	} `json:"links"`
	ZblID  string `json:"zbl_id"`
	Source struct {
		Series []struct {
			Title string `json:"title"`
		} `json:"series"`
	} `json:"source"`
}

// parseZbmathDocument interprets a zbMATH Open single-document response.
func parseZbmathDocument(id string, body []byte) (record.Fields, []record.RelatedPair, error) {
	var resp struct {
		Result zbmathDocument `json:"result"`
		Status struct {
			StatusCode int `json:"status_code"`
		} `json:"status"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, nil, fmt.Errorf("parsing document: %w", err)
	}
	if resp.Status.StatusCode != 0 && resp.Status.StatusCode != 200 {
		return nil, nil, nil
	}
	if resp.Result.ID.String() == "" && resp.Result.Title.Title == "" {
		return nil, nil, nil
	}

	fields, related := zbmathFields(resp.Result)
	// A zbMATH document and its Zbl number name the same record.
	if resp.Result.ZblID != "" {
		related = append(related, record.RelatedPair{Key: "zbl", ID: resp.Result.ZblID})
	}
	return fields, related, nil
}

// parseZblSearch interprets a zbMATH structured search by Zbl number.
func parseZblSearch(id string, body []byte) (record.Fields, []record.RelatedPair, error) {
	var resp struct {
		Result []zbmathDocument `json:"result"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, nil, fmt.Errorf("parsing search result: %w", err)
	}
	if len(resp.Result) == 0 {
		return nil, nil, nil
	}

	doc := resp.Result[0]
	fields, related := zbmathFields(doc)
	if doc.ID.String() != "" {
		related = append(related, record.RelatedPair{Key: "zbmath", ID: doc.ID.String()})
	}
	fields["zbl"] = id
	return fields, related, nil
}

// zbmathFields converts a zbMATH document into record fields plus the
// related identifiers found in its links.
func zbmathFields(doc zbmathDocument) (record.Fields, []record.RelatedPair) {
	fields := record.Fields{"bibtype": zbmathBibtype(doc.DocumentType.Code)}
	if doc.Title.Title != "" {
		fields["title"] = doc.Title.Title
	}
	if len(doc.Contributors.Authors) > 0 {
		authors := make([]string, len(doc.Contributors.Authors))
		for i, a := range doc.Contributors.Authors {
			authors[i] = a.Name
		}
		fields["authors"] = authors
	}
	if len(doc.MSC) > 0 {
		codes := make([]string, 0, len(doc.MSC))
		for _, m := range doc.MSC {
			if m.Code != "" {
				codes = append(codes, m.Code)
			}
		}
		fields["classifications"] = codes
	}
	if doc.Year.String() != "" {
		fields["year"] = doc.Year.String()
	}
	if len(doc.Language.Languages) > 0 {
		fields["language"] = doc.Language.Languages[0]
	}
	if len(doc.Source.Series) > 0 && doc.Source.Series[0].Title != "" {
		fields["journal"] = doc.Source.Series[0].Title
	}

	var related []record.RelatedPair
	for _, link := range doc.Links {
		switch link.Type {
		case "arxiv":
			related = append(related, record.RelatedPair{Key: "arxiv", ID: link.Identifier})
		case "doi":
			related = append(related, record.RelatedPair{Key: "doi", ID: link.Identifier})
			fields["doi"] = link.Identifier
		}
	}
	return fields, related
}

func zbmathBibtype(code string) string {
	switch code {
	case "j":
		return "article"
	case "b":
		return "book"
	case "a":
		return "incollection"
	default:
		return "misc"
	}
}

// parseCSL interprets a doi.org citeproc JSON response.
func parseCSL(id string, body []byte) (record.Fields, []record.RelatedPair, error) {
	var doc struct {
		Title  string `json:"title"`
		Author []struct {
			Given  string `json:"given"`
			Family string `json:"family"`
		} `json:"author"`
		Issued struct {
			DateParts [][]json.Number `json:"date-parts"`
		} `json:"issued"`
		ContainerTitle string      `json:"container-title"`
		Publisher      string      `json:"publisher"`
		Volume         json.Number `json:"volume"`
		Page           string      `json:"page"`
		Type           string      `json:"type"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, nil, fmt.Errorf("parsing citeproc JSON: %w", err)
	}
	if doc.Title == "" {
		return nil, nil, nil
	}

	fields := record.Fields{
		"bibtype": cslBibtype(doc.Type),
		"title":   doc.Title,
		"doi":     id,
	}
	if len(doc.Author) > 0 {
		authors := make([]string, len(doc.Author))
		for i, a := range doc.Author {
			authors[i] = strings.TrimSpace(a.Given + " " + a.Family)
		}
		fields["authors"] = authors
	}
	if len(doc.Issued.DateParts) > 0 && len(doc.Issued.DateParts[0]) > 0 {
		fields["year"] = doc.Issued.DateParts[0][0].String()
	}
	if doc.ContainerTitle != "" {
		fields["journal"] = doc.ContainerTitle
	}
	if doc.Publisher != "" {
		fields["publisher"] = doc.Publisher
	}
	if doc.Volume.String() != "" {
		fields["volume"] = doc.Volume.String()
	}
	if doc.Page != "" {
		fields["pages"] = doc.Page
	}
	return fields, nil, nil
}

func cslBibtype(t string) string {
	switch t {
	case "article-journal", "article":
		return "article"
	case "book", "monograph":
		return "book"
	case "chapter":
		return "incollection"
	case "paper-conference":
		return "inproceedings"
	default:
		return "misc"
	}
}

// collapseSpace normalizes the multi-line whitespace the arXiv API embeds in
// titles and names.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
