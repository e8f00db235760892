package helpers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"time"

	"svescraper/config"
	apperrors "svescraper/pkg/errors"
	"svescraper/services/cache"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html/charset"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/124.0.0.0 Safari/537.36"

// Status codes worth retrying on GET requests
var retryStatuses = []int{
	http.StatusTooManyRequests,
	http.StatusInternalServerError,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

// Client is the read-only HTTP collaborator: browser-like headers, a bounded
// retry policy with exponential backoff, UTF-8 normalization of responses,
// and an optional origin block guard backed by the cache service.
type Client struct {
	http      *resty.Client
	cache     cache.CacheService
	blockTime time.Duration
}

// NewClient builds the transport from configuration. cacheSvc may be nil,
// which disables the block guard.
func NewClient(cfg *config.Config, cacheSvc cache.CacheService) *Client {
	rc := resty.New().
		SetTimeout(cfg.RequestTimeout).
		SetRetryCount(5).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(16 * cfg.RetryWait).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "ja,en;q=0.9").
		SetHeader("Referer", cfg.BaseURL+"/cardlist/")

	rc.AddRetryCondition(func(r *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		return slices.Contains(retryStatuses, r.StatusCode())
	})

	return &Client{
		http:      rc,
		cache:     cacheSvc,
		blockTime: cfg.BlockTime,
	}
}

// Fetch retrieves a URL and parses the response body into a goquery document.
// Non-UTF-8 responses are converted before parsing.
func (c *Client) Fetch(rawurl string) (*goquery.Document, error) {
	host := hostOf(rawurl)

	if c.cache != nil && host != "" {
		if _, err := c.cache.Get(blockKey(host)); err == nil {
			return nil, apperrors.NewRateLimit(host, c.blockTime)
		}
	}

	resp, err := c.http.R().Get(rawurl)
	if err != nil {
		return nil, apperrors.NewNetwork(host, fmt.Sprintf("fetch %s", rawurl), err)
	}

	if resp.StatusCode() == http.StatusTooManyRequests {
		c.block(host)
		return nil, apperrors.NewRateLimit(host, c.blockTime)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, apperrors.NewNetwork(host,
			fmt.Sprintf("fetch %s: unexpected status code: %d", rawurl, resp.StatusCode()), nil)
	}

	body, err := decodeUTF8(resp.Body(), resp.Header().Get("Content-Type"))
	if err != nil {
		return nil, apperrors.NewParsing(host, fmt.Sprintf("decode %s", rawurl), err)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, apperrors.NewParsing(host, fmt.Sprintf("parse %s", rawurl), err)
	}
	return doc, nil
}

// block marks the origin as rate limited for the configured block time.
// The guard is best-effort; a cache failure never affects the fetch result.
func (c *Client) block(host string) {
	if c.cache == nil || host == "" {
		return
	}
	value := []byte(fmt.Sprintf("%d", int(c.blockTime.Seconds())))
	_ = c.cache.Set(blockKey(host), value, c.blockTime)
}

func blockKey(host string) string {
	return "sve_block_" + host
}

func hostOf(rawurl string) string {
	u, err := url.Parse(rawurl)
	if err != nil {
		return ""
	}
	return u.Host
}

// decodeUTF8 converts a response body to UTF-8 based on the Content-Type
// header and the body content itself
func decodeUTF8(body []byte, contentType string) (io.Reader, error) {
	enc, name, _ := charset.DetermineEncoding(body, contentType)
	if name == "utf-8" {
		return bytes.NewReader(body), nil
	}
	utf8Reader := enc.NewDecoder().Reader(bytes.NewReader(body))
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, utf8Reader); err != nil {
		return nil, err
	}
	return &buf, nil
}
