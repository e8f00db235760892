package main

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"svescraper/config"
	"svescraper/helpers"
	"svescraper/internal/scraper"
	"svescraper/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fakeDetailPage = `<html><body>
	<div class="card-Detail_Name">テストカード</div>
	<dl>
		<dt>カード番号</dt><dd>%s</dd>
		<dt>クラス</dt><dd>ニュートラル</dd>
		<dt>種類</dt><dd>フォロワー</dd>
	</dl>
	<div class="status">
		<div class="status-Item-Cost">2</div>
		<div class="status-Item-Power">3</div>
		<div class="status-Item-Hp">3</div>
	</div>
	</body></html>`

const fakeIndexPage = `<html><body>
	<select name="expansion_name">
		<option value="all">ALL</option>
		<option value="T01">Test Expansion</option>
	</select>
	</body></html>`

const fakeListingPage = `<html><body>
	<a href="/cardlist/?cardno=T01-001">card one</a>
	<a href="/cardlist/?cardno=T01-002">card two</a>
	</body></html>`

func newFakeSite(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/cardlist/" && r.URL.Query().Get("cardno") != "":
			fmt.Fprintf(w, fakeDetailPage, r.URL.Query().Get("cardno"))
		case r.URL.Path == "/cardlist/":
			fmt.Fprint(w, fakeIndexPage)
		case r.URL.Path == "/cardlist/cardsearch/":
			fmt.Fprint(w, fakeListingPage)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestScrapePipeline(t *testing.T) {
	srv := newFakeSite(t)

	cfg := config.LoadConfig()
	cfg.BaseURL = srv.URL
	cfg.Delay = 0
	cfg.RetryWait = time.Millisecond
	require.NoError(t, cfg.Validate())

	client := helpers.NewClient(cfg, nil)
	site := scraper.Site{BaseURL: cfg.BaseURL}

	crawler := &scraper.Crawler{Site: site, Fetch: client, Delay: 0}
	cardnos, err := crawler.CollectAll()
	require.NoError(t, err)
	require.Equal(t, []string{"T01-001", "T01-002"}, scraper.SortedCardnos(cardnos))

	resolver := &scraper.Resolver{Site: site, Fetch: client, Delay: 0}
	var records []scraper.Record
	for _, cn := range scraper.SortedCardnos(cardnos) {
		records = append(records, resolver.Resolve(cn))
	}
	require.Len(t, records, 2)
	assert.Equal(t, "テストカード", records[0]["name"])
	assert.Equal(t, "2", records[0]["cost"])

	// Both cards share a name and kind, so one survives.
	records = scraper.Dedupe(records)
	require.Len(t, records, 1)
	assert.Equal(t, "T01-001", records[0]["cardno"])

	out := filepath.Join(t.TempDir(), "cards.tsv")
	require.NoError(t, storage.WriteTSV(out, records))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	r := csv.NewReader(f)
	r.Comma = '\t'
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, scraper.Columns, rows[0])
	assert.Equal(t, "T01-001", rows[1][0])
	assert.Equal(t, "ニュートラル", rows[1][2])
}

func TestInspectAgainstFakeSite(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<a href="/cardlist/?cardno=T01-001">one</a>
			<a href="/cardlist/?cardno=T01-001">one again</a>
			<a href="/cardlist/rules/">rules</a>
			</body></html>`)
	}))
	defer srv.Close()

	cfg := config.LoadConfig()
	cfg.BaseURL = srv.URL
	cfg.RetryWait = time.Millisecond
	client := helpers.NewClient(cfg, nil)

	in := &scraper.Inspector{Fetch: client, Delay: 0, Sample: 5}
	report, err := in.Inspect(srv.URL + "/cardlist/")

	require.NoError(t, err)
	assert.Equal(t, 1, report.Pages)
	require.Len(t, report.Duplicates, 1)
	assert.Equal(t, "T01-001", report.Duplicates[0].Cardno)
	assert.Equal(t, []string{srv.URL + "/cardlist/rules/"}, report.NoCardnoLinks)
}

func TestRootCommandFlags(t *testing.T) {
	cmd := newRootCmd()

	out, err := cmd.Flags().GetString("out")
	require.NoError(t, err)
	assert.Equal(t, "cards.tsv", out)

	limit, err := cmd.Flags().GetInt("inspect-limit")
	require.NoError(t, err)
	assert.Equal(t, 5, limit)

	assert.NotNil(t, cmd.Flags().Lookup("expansion"))
	assert.NotNil(t, cmd.Flags().Lookup("search-url"))
	assert.NotNil(t, cmd.Flags().Lookup("inspect-search"))
	assert.NotNil(t, cmd.Flags().Lookup("delay"))
}
