package scraper

import (
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DuplicateSample reports one cardno that occurred more than once on a
// listing page, with a few of the anchors that carried it.
type DuplicateSample struct {
	Cardno string
	Count  int
	Hrefs  []string
}

// InspectReport summarizes listing anomalies for one search URL: duplicate
// cardno occurrences and listing links lacking a cardno parameter.
type InspectReport struct {
	URL           string
	Pages         int
	Duplicates    []DuplicateSample
	NoCardnoLinks []string
}

// Inspector walks a search URL with the same pagination engine as the
// crawler, but aggregates diagnostics instead of collecting identifiers.
type Inspector struct {
	Fetch  Fetcher
	Delay  time.Duration
	Sample int
}

const hrefSamplesPerCardno = 3

// Inspect paginates through rawurl and reports what it saw. A pagination
// failure ends the walk early; the partial report is still returned.
func (in *Inspector) Inspect(rawurl string) (*InspectReport, error) {
	report := &InspectReport{URL: rawurl}
	best := make(map[string]DuplicateSample)
	seenLinks := make(map[string]struct{})

	p := newPager(in.Fetch, rawurl, in.Delay)
	var walkErr error
	for {
		page, err := p.Next()
		if err != nil {
			walkErr = err
			break
		}
		if page == nil {
			break
		}
		in.processPage(page, best, report, seenLinks)
	}
	report.Pages = p.Pages()

	samples := make([]DuplicateSample, 0, len(best))
	for _, d := range best {
		samples = append(samples, d)
	}
	sort.Slice(samples, func(i, j int) bool {
		if samples[i].Count != samples[j].Count {
			return samples[i].Count > samples[j].Count
		}
		return samples[i].Cardno < samples[j].Cardno
	})
	if in.Sample > 0 && len(samples) > in.Sample {
		samples = samples[:in.Sample]
	}
	report.Duplicates = samples

	return report, walkErr
}

func (in *Inspector) processPage(page *Page, best map[string]DuplicateSample, report *InspectReport, seenLinks map[string]struct{}) {
	html := pageHTML(page.Doc)

	counts := make(map[string]int)
	for _, m := range cardnoRe.FindAllStringSubmatch(html, -1) {
		counts[m[1]]++
	}

	hrefsByCardno := make(map[string][]string)
	var hrefs []string
	page.Doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		abs := resolveURL(page.URL, href)
		hrefs = append(hrefs, abs)
		if m := cardnoRe.FindStringSubmatch(abs); m != nil {
			hrefsByCardno[m[1]] = append(hrefsByCardno[m[1]], abs)
		}
	})

	// Keep the highest count seen for each duplicated cardno.
	for cn, n := range counts {
		if n <= 1 {
			continue
		}
		if cur, ok := best[cn]; ok && cur.Count >= n {
			continue
		}
		sample := hrefsByCardno[cn]
		if len(sample) > hrefSamplesPerCardno {
			sample = sample[:hrefSamplesPerCardno]
		}
		best[cn] = DuplicateSample{Cardno: cn, Count: n, Hrefs: sample}
	}

	for _, h := range hrefs {
		if in.Sample > 0 && len(report.NoCardnoLinks) >= in.Sample {
			break
		}
		if !strings.Contains(h, "/cardlist/") || strings.Contains(h, "cardno=") {
			continue
		}
		if _, ok := seenLinks[h]; ok {
			continue
		}
		seenLinks[h] = struct{}{}
		report.NoCardnoLinks = append(report.NoCardnoLinks, h)
	}
}
