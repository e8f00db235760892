package scraper

import (
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

// mockFetcher serves pages from an in-memory map and records every URL it
// was asked for. URLs without a page entry fail like a dead server.
type mockFetcher struct {
	pages map[string]string
	calls []string
}

func (m *mockFetcher) Fetch(url string) (*goquery.Document, error) {
	m.calls = append(m.calls, url)
	html, ok := m.pages[url]
	if !ok {
		return nil, fmt.Errorf("no page for %s", url)
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func (m *mockFetcher) countCalls(url string) int {
	n := 0
	for _, c := range m.calls {
		if c == url {
			n++
		}
	}
	return n
}

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}
