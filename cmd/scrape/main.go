// Command scrape runs a one-shot scrape outside the job API: it fetches
// the given locations, runs the cleaning pipeline, and writes report
// artifacts to the configured directory. Useful for ad-hoc runs that do
// not need Postgres.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"lead-scraper/internal/config"
	"lead-scraper/internal/models"
	"lead-scraper/internal/pipeline"
	"lead-scraper/internal/report"
	"lead-scraper/internal/scraper"
)

func main() {
	var (
		locationsFlag = flag.String("locations", "", "comma-separated locations to scrape (required)")
		businessType  = flag.String("type", "", "business type (default from config)")
		maxReviews    = flag.Int("max-reviews", 0, "review count ceiling (default from config)")
		minQuality    = flag.Float64("min-quality", 0, "data quality floor (default from config)")
		name          = flag.String("name", "adhoc", "run name used in artifact filenames")
	)
	flag.Parse()

	cfg := config.Load()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var locations []string
	for _, loc := range strings.Split(*locationsFlag, ",") {
		if trimmed := strings.TrimSpace(loc); trimmed != "" {
			locations = append(locations, trimmed)
		}
	}
	if len(locations) == 0 {
		logger.Error("at least one location is required (-locations)")
		os.Exit(2)
	}
	if *businessType == "" {
		*businessType = cfg.DefaultBusinessType
	}
	if *maxReviews <= 0 {
		*maxReviews = cfg.DefaultMaxReviews
	}
	if *minQuality <= 0 {
		*minQuality = cfg.DefaultMinQualityScore
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	client := scraper.NewClient(cfg)
	exporter, err := report.NewFileExporter(ctx, cfg, logger)
	if err != nil {
		logger.Error("init exporter", "error", err)
		os.Exit(1)
	}

	var all []models.RawBusiness
	for _, location := range locations {
		if ctx.Err() != nil {
			logger.Info("interrupted")
			os.Exit(1)
		}
		batch, err := client.Scrape(ctx, location, *businessType)
		if err != nil {
			logger.Error("scrape failed", "location", location, "error", err)
			os.Exit(1)
		}
		logger.Info("scraped", "location", location, "listings", len(batch))
		all = append(all, batch...)
	}

	scored := pipeline.Process(all)
	filtered := pipeline.SelectAndRank(scored, *maxReviews, *minQuality)
	logger.Info("pipeline done", "found", len(scored), "matching", len(filtered))

	artifacts, err := exporter.Export(ctx, filtered, report.Metadata{
		JobName:     *name,
		GeneratedAt: time.Now().UTC(),
		Locations:   locations,
	})
	if err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}
	logger.Info("reports written",
		"xlsx", artifacts.ReportPath,
		"csv", artifacts.CSVPath,
		"json", artifacts.JSONPath,
	)
}
