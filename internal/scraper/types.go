package scraper

import (
	"net/url"
	"sort"

	"github.com/PuerkitoBio/goquery"
)

// Columns is the canonical output schema, in writing order. Every record is
// normalized into exactly this field vocabulary.
var Columns = []string{
	"cardno",
	"name",
	"class",
	"title",
	"expansion",
	"kind",
	"rarity",
	"cost",
	"power",
	"hp",
	"type",
	"keywords",
	"ability",
	"illustrator",
	"image_url",
	"url",
}

// Record maps canonical field names to extracted values. Absent fields are
// simply missing; readers treat them as empty strings.
type Record map[string]string

// Fetcher retrieves a URL and parses it into a goquery document. The HTTP
// transport implements it; tests substitute an in-memory map.
type Fetcher interface {
	Fetch(url string) (*goquery.Document, error)
}

// Page is one fetched search-result page. Pages are used once and discarded.
type Page struct {
	URL string
	Doc *goquery.Document
}

// Site describes the scrape target endpoints.
type Site struct {
	BaseURL string
}

// DefaultSite is the production card-list origin.
var DefaultSite = Site{BaseURL: "https://shadowverse-evolve.com"}

func (s Site) indexURL() string {
	return s.BaseURL + "/cardlist/"
}

func (s Site) searchURL() string {
	return s.BaseURL + "/cardlist/cardsearch/"
}

// searchPath marks URLs served by the AJAX search form, which page through a
// separate fragment endpoint instead of next links.
const (
	searchPath     = "/cardlist/cardsearch/"
	fragmentPath   = "/cardlist/cardsearch_ex"
	logoAssetToken = "logo"
)

// SortedCardnos returns the set's members in ascending order.
func SortedCardnos(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for cn := range set {
		out = append(out, cn)
	}
	sort.Strings(out)
	return out
}

// resolveURL resolves href against base, returning href untouched when
// either side fails to parse.
func resolveURL(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	h, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(h).String()
}

// pageHTML renders a document back to markup for pattern-based extraction.
func pageHTML(doc *goquery.Document) string {
	html, err := doc.Html()
	if err != nil {
		return ""
	}
	return html
}
