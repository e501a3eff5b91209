package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/marchebantum/caymanmyass-sub002/internal/domain/entity"
	"github.com/marchebantum/caymanmyass-sub002/internal/resilience/circuitbreaker"
	"github.com/marchebantum/caymanmyass-sub002/internal/resilience/retry"
	"github.com/marchebantum/caymanmyass-sub002/internal/usecase/ingest"

	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// GDELTClient fetches records from a GDELT-style document feed in RSS
// format, parsed with gofeed.
type GDELTClient struct {
	feedURL        string
	client         *http.Client
	limiter        *rate.Limiter
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewGDELTClient creates a GDELT feed client from the given configuration.
func NewGDELTClient(cfg Config) *GDELTClient {
	return &GDELTClient{
		feedURL:        cfg.GDELTFeedURL,
		client:         &http.Client{Timeout: cfg.Timeout},
		limiter:        rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1),
		circuitBreaker: circuitbreaker.New(circuitbreaker.GDELTConfig()),
		retryConfig:    retry.FeedFetchConfig(),
	}
}

// Name returns the source system tag.
func (c *GDELTClient) Name() string {
	return entity.SourceGDELT
}

// Breaker exposes the client circuit breaker for health reporting.
func (c *GDELTClient) Breaker() *circuitbreaker.CircuitBreaker {
	return c.circuitBreaker
}

// Validate reports whether the client is usable. The feed needs no
// credential; only a configured endpoint.
func (c *GDELTClient) Validate() error {
	if c.feedURL == "" {
		return fmt.Errorf("gdelt feed URL not configured")
	}
	return nil
}

// Fetch retrieves and parses the feed for the query keywords.
func (c *GDELTClient) Fetch(ctx context.Context, q ingest.SourceQuery) ([]ingest.SourceRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("Fetch: rate limiter: %w", err)
	}

	var records []ingest.SourceRecord

	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		cbResult, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doFetch(ctx, q)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("gdelt circuit breaker open, request rejected",
					slog.String("url", c.feedURL),
					slog.String("state", c.circuitBreaker.State().String()))
			}
			return err
		}
		records = cbResult.([]ingest.SourceRecord)
		return nil
	})
	if retryErr != nil {
		return nil, retryErr
	}

	return records, nil
}

// doFetch performs the actual feed fetch without retry or circuit breaker.
func (c *GDELTClient) doFetch(ctx context.Context, q ingest.SourceQuery) ([]ingest.SourceRecord, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = "CaymanMonitorBot"
	fp.Client = c.client

	feed, err := fp.ParseURLWithContext(c.queryURL(q), ctx)
	if err != nil {
		return nil, err
	}

	records := make([]ingest.SourceRecord, 0, len(feed.Items))
	for _, it := range feed.Items {
		// Content優先、なければDescriptionを使用
		content := it.Content
		if content == "" {
			content = it.Description
		}

		published := it.Published
		if published == "" && it.PublishedParsed != nil {
			published = it.PublishedParsed.Format(time.RFC3339)
		}

		var author string
		if it.Author != nil {
			author = it.Author.Name
		}

		records = append(records, ingest.SourceRecord{
			Title:     it.Title,
			URL:       it.Link,
			Content:   content,
			Author:    author,
			SourceID:  it.GUID,
			Published: published,
		})
	}

	return records, nil
}

// queryURL builds the feed URL with the keyword query and format=rss.
func (c *GDELTClient) queryURL(q ingest.SourceQuery) string {
	params := url.Values{}
	params.Set("query", strings.Join(q.Keywords, " OR "))
	params.Set("mode", "artlist")
	params.Set("format", "rss")
	if !q.From.IsZero() {
		params.Set("startdatetime", q.From.UTC().Format("20060102150405"))
	}

	sep := "?"
	if strings.Contains(c.feedURL, "?") {
		sep = "&"
	}
	return c.feedURL + sep + params.Encode()
}
