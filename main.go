package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"svescraper/config"
	"svescraper/helpers"
	"svescraper/internal/scraper"
	"svescraper/internal/storage"
	"svescraper/logger"
	apperrors "svescraper/pkg/errors"
	"svescraper/services/cache"
	"svescraper/services/publisher"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	flagOut          string
	flagDelay        time.Duration
	flagExpansions   []string
	flagSearchURLs   []string
	flagLimit        int
	flagInspect      []string
	flagInspectLimit int
)

func main() {
	godotenv.Load()
	logger.Init()

	if err := newRootCmd().Execute(); err != nil {
		if errors.Is(err, apperrors.ErrNoCardsFound) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "svescraper",
		Short:         "Scrape Shadowverse EVOLVE card data to TSV",
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVarP(&flagOut, "out", "o", "cards.tsv", "output TSV path")
	cmd.Flags().DurationVar(&flagDelay, "delay", 0, "delay between requests (overrides SVE_DELAY_MS)")
	cmd.Flags().StringArrayVar(&flagExpansions, "expansion", nil, "limit scraping to expansion code(s), repeatable")
	cmd.Flags().StringArrayVar(&flagSearchURLs, "search-url", nil, "full search URL from the site, repeatable")
	cmd.Flags().IntVar(&flagLimit, "limit", 0, "limit number of cards for a quick test")
	cmd.Flags().StringArrayVar(&flagInspect, "inspect-search", nil, "inspect a search URL for listing anomalies, repeatable")
	cmd.Flags().IntVar(&flagInspectLimit, "inspect-limit", 5, "max duplicate/no-cardno samples per inspected URL")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	start := time.Now()

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration: %v", err)
		return err
	}
	delay := cfg.Delay
	if flagDelay > 0 {
		delay = flagDelay
	}

	var cacheSvc cache.CacheService
	if cfg.MemcacheAddr != "" {
		cacheSvc = cache.NewMemcacheService(cfg.MemcacheAddr)
		logger.Info("Using memcache block guard at %s", cfg.MemcacheAddr)
	}
	client := helpers.NewClient(cfg, cacheSvc)
	site := scraper.Site{BaseURL: cfg.BaseURL}

	// Diagnostic mode: inspect and exit without writing output.
	if len(flagInspect) > 0 {
		inspector := &scraper.Inspector{Fetch: client, Delay: delay, Sample: flagInspectLimit}
		for _, u := range flagInspect {
			report, err := inspector.Inspect(u)
			if err != nil {
				logger.Warn("inspect %s: %v", u, err)
			}
			printInspectReport(report)
		}
		logger.Info("Elapsed time: %s", time.Since(start).Round(10*time.Millisecond))
		return nil
	}

	crawler := &scraper.Crawler{Site: site, Fetch: client, Delay: delay}
	cardnos := make(map[string]struct{})
	for _, u := range flagSearchURLs {
		batch, err := crawler.CollectSearchURL(u)
		if err != nil {
			logger.Warn("search url %s: %v", u, err)
		}
		merge(cardnos, batch)
	}
	for _, exp := range flagExpansions {
		batch, err := crawler.CollectExpansion(exp)
		if err != nil {
			logger.Warn("expansion %s: %v", exp, err)
		}
		merge(cardnos, batch)
	}
	if len(flagSearchURLs) == 0 && len(flagExpansions) == 0 {
		batch, err := crawler.CollectAll()
		if err != nil {
			logger.Warn("crawl: %v", err)
		}
		merge(cardnos, batch)
	}

	if len(cardnos) == 0 {
		logger.Error("No card numbers found. The site layout may have changed.")
		return apperrors.ErrNoCardsFound
	}
	logger.Info("Found %d cards. Fetching details...", len(cardnos))

	sorted := scraper.SortedCardnos(cardnos)
	if flagLimit > 0 && len(sorted) > flagLimit {
		sorted = sorted[:flagLimit]
	}

	resolver := &scraper.Resolver{Site: site, Fetch: client, Delay: delay}
	records := make([]scraper.Record, 0, len(sorted))
	for _, cn := range sorted {
		records = append(records, resolver.Resolve(cn))
	}

	records = scraper.Dedupe(records)

	if err := storage.WriteTSV(flagOut, records); err != nil {
		logger.Error("write %s: %v", flagOut, err)
		return err
	}
	publishRecords(cfg, records)

	logger.Info("Wrote %d records to %s", len(records), flagOut)
	logger.Info("Elapsed time: %s", time.Since(start).Round(10*time.Millisecond))
	return nil
}

// merge unions src into dst
func merge(dst, src map[string]struct{}) {
	for k := range src {
		dst[k] = struct{}{}
	}
}

// publishRecords mirrors the surviving records to a Redis stream when one is
// configured. Publishing is best-effort; the TSV file is the primary sink.
func publishRecords(cfg *config.Config, records []scraper.Record) {
	if cfg.RedisAddr == "" {
		return
	}
	pub := publisher.NewRedisPublisher(context.Background(), cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
	defer pub.Close()

	published := 0
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			logger.Warn("publish %s: %v", rec["cardno"], err)
			continue
		}
		if err := pub.Publish(rec["cardno"], data); err != nil {
			logger.Warn("publish %s: %v", rec["cardno"], err)
			continue
		}
		published++
	}
	logger.Info("Published %d records to stream %s", published, cfg.RedisStream)
}

func printInspectReport(report *scraper.InspectReport) {
	fmt.Printf("[inspect] URL: %s\n", report.URL)
	fmt.Printf("[inspect] Pages scanned: %d\n", report.Pages)

	if len(report.Duplicates) > 0 {
		fmt.Println("[inspect] Duplicate cardno samples (cardno x count):")
		for _, d := range report.Duplicates {
			fmt.Printf("  - %s x %d\n", d.Cardno, d.Count)
			for _, h := range d.Hrefs {
				fmt.Printf("      href: %s\n", h)
			}
		}
	} else {
		fmt.Println("[inspect] No duplicate cardno occurrences found in samples.")
	}

	if len(report.NoCardnoLinks) > 0 {
		fmt.Println("[inspect] Links without cardno= samples:")
		for _, h := range report.NoCardnoLinks {
			fmt.Printf("  - %s\n", h)
		}
	} else {
		fmt.Println("[inspect] No links without cardno= found in samples.")
	}
}
