package scraper

import (
	"net/url"
	"strings"
	"time"

	"svescraper/logger"

	"github.com/PuerkitoBio/goquery"
)

// Crawler discovers card identifiers reachable from the site's search pages.
// It is strictly sequential: one fetch outstanding at a time, paced by Delay.
type Crawler struct {
	Site  Site
	Fetch Fetcher
	Delay time.Duration
}

// CollectSearchURL walks one search result set to exhaustion and returns
// every cardno found along the way. On a pagination failure the identifiers
// collected so far are returned together with the error, so callers can keep
// the partial batch.
func (c *Crawler) CollectSearchURL(rawurl string) (map[string]struct{}, error) {
	cardnos := make(map[string]struct{})
	p := newPager(c.Fetch, rawurl, c.Delay)
	for {
		page, err := p.Next()
		if err != nil {
			return cardnos, err
		}
		if page == nil {
			return cardnos, nil
		}
		for cn := range ExtractCardnos(pageHTML(page.Doc)) {
			cardnos[cn] = struct{}{}
		}
	}
}

// CollectExpansion runs one search filtered to a single expansion code.
func (c *Crawler) CollectExpansion(code string) (map[string]struct{}, error) {
	q := url.Values{}
	q.Set("expansion_name", code)
	q.Set("class[]", "all")
	return c.CollectSearchURL(c.Site.searchURL() + "?" + q.Encode())
}

// CollectAll loads the index page, reads the expansion codes from its filter
// control, and crawls each expansion in turn. A single expansion's failure is
// logged and skipped. When the expansion list cannot be obtained, one
// unfiltered query is crawled instead.
func (c *Crawler) CollectAll() (map[string]struct{}, error) {
	var expansions []string
	doc, err := c.Fetch.Fetch(c.Site.indexURL())
	if err != nil {
		logger.Warn("index page: %v", err)
	} else {
		expansions = ExtractExpansions(doc)
	}
	if len(expansions) == 0 {
		expansions = []string{""}
	}

	cardnos := make(map[string]struct{})
	for _, exp := range expansions {
		batch, err := c.CollectExpansion(exp)
		if err != nil {
			logger.Warn("expansion %s: %v", exp, err)
		}
		for cn := range batch {
			cardnos[cn] = struct{}{}
		}
	}
	return cardnos, nil
}

// ExtractExpansions reads the expansion codes offered by the index page's
// search form, skipping the sentinel ALL entry.
func ExtractExpansions(doc *goquery.Document) []string {
	var codes []string
	doc.Find(`select[name="expansion_name"] option`).Each(func(_ int, opt *goquery.Selection) {
		val := strings.TrimSpace(opt.AttrOr("value", ""))
		if val != "" && !strings.EqualFold(val, "all") {
			codes = append(codes, val)
		}
	})
	return codes
}
