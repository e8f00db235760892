package scraper

import (
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Resolver finds and extracts the detail page for a single cardno. It never
// fails: the result always carries at least the cardno and the URL the
// resolution settled on.
type Resolver struct {
	Site  Site
	Fetch Fetcher
	Delay time.Duration
}

// Selectors whose presence marks a page as a card detail page.
const nameBlockSelector = ".card-Detail_Name, .cardDetail-Name, .CardDetail_Name, .Detail_Title"

// Common list-to-detail link patterns, used when no anchor embeds the cardno.
const detailLinkSelector = ".cardlist-Card a, .CardList a, a.card-link"

// detailCandidates lists the URLs to try for a cardno, in order: the direct
// index lookup, then the search-form lookup.
func (r *Resolver) detailCandidates(cardno string) []string {
	q := url.Values{}
	q.Set("cardno", cardno)
	direct := r.Site.indexURL() + "?" + q.Encode()
	q.Set("class[]", "all")
	search := r.Site.searchURL() + "?" + q.Encode()
	return []string{direct, search}
}

// Resolve fetches the best-effort detail record for cardno. Candidates are
// tried in order; a page that does not look like a detail page gets one
// chance to redirect through a link embedding the cardno. The first candidate
// yielding any extracted data wins. When all candidates come up empty, one
// final unguarded attempt is made against the first candidate and whatever it
// yields is accepted.
func (r *Resolver) Resolve(cardno string) Record {
	candidates := r.detailCandidates(cardno)

	var rec Record
	var finalURL string
	for _, u := range candidates {
		doc, err := r.Fetch.Fetch(u)
		if err != nil {
			continue
		}
		if !looksLikeDetailPage(doc) {
			if link := findDetailLink(doc, u, cardno); link != "" {
				if followed, err := r.Fetch.Fetch(link); err == nil {
					doc = followed
					u = link
				}
			}
		}
		rec = ExtractDetail(doc, r.Site.BaseURL)
		if len(rec) > 0 {
			finalURL = u
			break
		}
	}

	if len(rec) == 0 {
		finalURL = candidates[0]
		if doc, err := r.Fetch.Fetch(finalURL); err == nil {
			rec = ExtractDetail(doc, r.Site.BaseURL)
		}
		if rec == nil {
			rec = Record{}
		}
	}

	if rec["cardno"] == "" {
		rec["cardno"] = cardno
	}
	if rec["url"] == "" {
		rec["url"] = finalURL
	}

	// Be polite between identifiers.
	time.Sleep(r.Delay)
	return rec
}

// looksLikeDetailPage checks for known name blocks, or for a definition term
// whose normalized text matches a recognized label.
func looksLikeDetailPage(doc *goquery.Document) bool {
	if doc.Find(nameBlockSelector).Length() > 0 {
		return true
	}
	found := false
	doc.Find("dt").EachWithBreak(func(_ int, dt *goquery.Selection) bool {
		if _, ok := canonicalField(normalizeLabel(dt.Text())); ok {
			found = true
			return false
		}
		return true
	})
	return found
}

// findDetailLink searches a listing page for the anchor pointing at the
// wanted card: first any href embedding the cardno, then the common
// list-entry link patterns.
func findDetailLink(doc *goquery.Document, current, cardno string) string {
	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if strings.Contains(href, "cardno=") && strings.Contains(href, cardno) {
			found = resolveURL(current, href)
			return false
		}
		return true
	})
	if found != "" {
		return found
	}

	a := doc.Find(detailLinkSelector).First()
	if a.Length() > 0 {
		if href := strings.TrimSpace(a.AttrOr("href", "")); href != "" {
			return resolveURL(current, href)
		}
	}
	return ""
}
