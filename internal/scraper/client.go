// Package scraper talks to the external scraping service that turns a
// location query into raw business listings.
package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"lead-scraper/internal/config"
	"lead-scraper/internal/models"
)

// Extractor yields raw candidate listings for one location. Implementations
// may block for the duration of a scrape; they must honor ctx cancellation.
type Extractor interface {
	Scrape(ctx context.Context, location, businessType string) ([]models.RawBusiness, error)
}

// Client is an HTTP Extractor backed by the scraping service. Errors are
// returned as-is; retry policy belongs to the caller.
type Client struct {
	baseURL    string
	apiKey     string
	maxResults int
	maxBytes   int64
	httpClient *http.Client
}

// NewClient builds a scraping service client from config.
func NewClient(cfg config.Config) *Client {
	timeout := cfg.ScraperTimeout
	if timeout == 0 {
		timeout = 5 * time.Minute
	}
	maxBytes := cfg.ScraperMaxBytes
	if maxBytes == 0 {
		maxBytes = 8 * 1024 * 1024
	}
	return &Client{
		baseURL:    cfg.ScraperBaseURL,
		apiKey:     cfg.ScraperAPIKey,
		maxResults: cfg.ScraperMaxResults,
		maxBytes:   maxBytes,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type scrapeResponse struct {
	Businesses []models.RawBusiness `json:"businesses"`
}

// Scrape fetches listings for one location. The request carries ctx, so a
// cancelled job interrupts an in-flight call at the transport level.
func (c *Client) Scrape(ctx context.Context, location, businessType string) ([]models.RawBusiness, error) {
	params := url.Values{}
	params.Set("location", location)
	params.Set("business_type", businessType)
	if c.maxResults > 0 {
		params.Set("max_results", fmt.Sprintf("%d", c.maxResults))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/scrape?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build scrape request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scrape %q: %w", location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("scrape %q: status %d: %s", location, resp.StatusCode, string(body))
	}

	limited := io.LimitReader(resp.Body, c.maxBytes+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("read scrape response: %w", err)
	}
	if int64(len(body)) > c.maxBytes {
		return nil, fmt.Errorf("scrape response too large (>%d bytes)", c.maxBytes)
	}

	var parsed scrapeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode scrape response: %w", err)
	}

	now := time.Now().UTC()
	for i := range parsed.Businesses {
		if parsed.Businesses[i].Location == "" {
			parsed.Businesses[i].Location = location
		}
		if parsed.Businesses[i].ScrapedAt.IsZero() {
			parsed.Businesses[i].ScrapedAt = now
		}
	}
	return parsed.Businesses, nil
}
