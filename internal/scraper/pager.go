package scraper

import (
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"svescraper/logger"

	"github.com/PuerkitoBio/goquery"
)

// pager walks one paginated result set, yielding pages until exhaustion.
// Next returns (nil, nil) once every page has been produced. Pages reports
// how many pages the result set covered: fetched pages for link-following
// pagination, the declared total for the fragment style.
type pager interface {
	Next() (*Page, error)
	Pages() int
}

// newPager classifies a search URL by its path shape and returns the
// matching pagination strategy.
func newPager(fetch Fetcher, rawurl string, delay time.Duration) pager {
	if parsed, err := url.Parse(rawurl); err == nil && strings.Contains(parsed.Path, searchPath) {
		return &fragmentPager{fetch: fetch, url: rawurl, delay: delay}
	}
	return &classicPager{fetch: fetch, url: rawurl, delay: delay}
}

// classicPager follows discrete "next page" links until none is found or the
// next link resolves to the current URL.
type classicPager struct {
	fetch Fetcher
	url   string
	delay time.Duration
	pages int
	done  bool
}

func (p *classicPager) Next() (*Page, error) {
	if p.done {
		return nil, nil
	}
	if p.pages > 0 {
		time.Sleep(p.delay)
	}
	doc, err := p.fetch.Fetch(p.url)
	if err != nil {
		p.done = true
		return nil, err
	}
	p.pages++
	page := &Page{URL: p.url, Doc: doc}

	next := findNextURL(doc, p.url)
	if next == "" || next == p.url {
		p.done = true
	} else {
		p.url = next
	}
	return page, nil
}

func (p *classicPager) Pages() int {
	return p.pages
}

var maxPageRe = regexp.MustCompile(`max_page\s*=\s*(\d+)`)

// fragmentPager serves the AJAX search form: the first page is a full
// document declaring the total page count in an inline script, and pages
// 2..N come from the fragment endpoint with the same (normalized) query.
// A fragment page that fails to fetch is logged and skipped.
type fragmentPager struct {
	fetch   Fetcher
	url     string
	delay   time.Duration
	maxPage int
	page    int // next fragment page number; 0 means the first page is pending
	exURL   string
	params  url.Values
}

func (p *fragmentPager) Next() (*Page, error) {
	if p.page == 0 {
		p.page = 2
		doc, err := p.fetch.Fetch(p.url)
		if err != nil {
			return nil, err
		}
		html := pageHTML(doc)
		p.maxPage = parseMaxPage(html)
		p.initFragmentQuery()
		return &Page{URL: p.url, Doc: doc}, nil
	}

	for p.page <= p.maxPage {
		pageNo := p.page
		p.page++
		time.Sleep(p.delay)
		u := p.fragmentURL(pageNo)
		doc, err := p.fetch.Fetch(u)
		if err != nil {
			logger.Warn("search_ex page %d: %v", pageNo, err)
			continue
		}
		return &Page{URL: u, Doc: doc}, nil
	}
	return nil, nil
}

func (p *fragmentPager) Pages() int {
	return p.maxPage
}

// initFragmentQuery derives the fragment endpoint and the normalized query
// parameters from the first page's URL.
func (p *fragmentPager) initFragmentQuery() {
	parsed, err := url.Parse(p.url)
	if err != nil {
		p.maxPage = 1
		return
	}
	p.exURL = resolveURL(p.url, fragmentPath)
	p.params = normalizeQueryKeys(parsed.Query())
}

func (p *fragmentPager) fragmentURL(pageNo int) string {
	q := url.Values{}
	for k, v := range p.params {
		q[k] = v
	}
	q.Set("page", strconv.Itoa(pageNo))
	return p.exURL + "?" + q.Encode()
}

var indexedKeyRe = regexp.MustCompile(`\[\d+\]$`)

// normalizeQueryKeys folds indexed array parameters like class[0] back into
// their bracketed array form (class[]) so the fragment endpoint accepts
// them. Values of every index are kept, appended in key order.
func normalizeQueryKeys(q url.Values) url.Values {
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := url.Values{}
	for _, k := range keys {
		nk := indexedKeyRe.ReplaceAllString(k, "[]")
		out[nk] = append(out[nk], q[k]...)
	}
	return out
}

// parseMaxPage reads the declared total page count from inline script
// content, defaulting to 1 when absent.
func parseMaxPage(html string) int {
	m := maxPageRe.FindStringSubmatch(html)
	if m == nil {
		return 1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Anchor texts that commonly mark a "next page" link, including the
// localized ones and navigational arrow glyphs.
var nextTexts = []string{"次へ", "次", "Next", "»", ">>"}

var paginationClassRe = regexp.MustCompile(`(?i)page|pager|pagination`)

// findNextURL locates the next-page link of a classic listing. It tries, in
// order: a rel attribute marking "next", anchor text matching the known
// next-page phrases anywhere in the document, and the same text match
// restricted to the first pagination-styled container.
func findNextURL(doc *goquery.Document, current string) string {
	var found string
	doc.Find("a[rel]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		rel, _ := a.Attr("rel")
		if !strings.Contains(strings.ToLower(rel), "next") {
			return true
		}
		if href, ok := a.Attr("href"); ok && href != "" {
			found = resolveURL(current, href)
			return false
		}
		return true
	})
	if found != "" {
		return found
	}

	if next := nextLinkByText(doc.Selection, current); next != "" {
		return next
	}

	var nav *goquery.Selection
	doc.Find("[class]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if class, _ := s.Attr("class"); paginationClassRe.MatchString(class) {
			nav = s
			return false
		}
		return true
	})
	if nav != nil {
		return nextLinkByText(nav, current)
	}
	return ""
}

// nextLinkByText scans anchors under sel for the known next-page phrases.
func nextLinkByText(sel *goquery.Selection, current string) string {
	var found string
	sel.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		txt := strings.TrimSpace(a.Text())
		for _, marker := range nextTexts {
			if !strings.Contains(txt, marker) {
				continue
			}
			if href, ok := a.Attr("href"); ok && href != "" {
				found = resolveURL(current, href)
				return false
			}
		}
		return true
	})
	return found
}
