package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/marchebantum/caymanmyass-sub002/internal/domain/entity"
	"github.com/marchebantum/caymanmyass-sub002/internal/resilience/circuitbreaker"
	"github.com/marchebantum/caymanmyass-sub002/internal/resilience/retry"
	"github.com/marchebantum/caymanmyass-sub002/internal/usecase/ingest"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const newsAPIMaxBodySize = 10 * 1024 * 1024 // 10MB

// newsAPIResponse mirrors the NewsAPI /v2/everything response envelope.
type newsAPIResponse struct {
	Status       string           `json:"status"`
	Code         string           `json:"code"`
	Message      string           `json:"message"`
	TotalResults int              `json:"totalResults"`
	Articles     []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

// NewsAPIClient fetches records from the NewsAPI everything endpoint.
// It paces requests with a local rate limiter on top of the run-level
// quota accounting, and wraps calls in retry and circuit breaker logic.
type NewsAPIClient struct {
	apiKey         string
	baseURL        string
	pageSize       int
	client         *http.Client
	limiter        *rate.Limiter
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewNewsAPIClient creates a NewsAPI client from the given configuration.
func NewNewsAPIClient(cfg Config) *NewsAPIClient {
	return &NewsAPIClient{
		apiKey:         cfg.NewsAPIKey,
		baseURL:        strings.TrimRight(cfg.NewsAPIBaseURL, "/"),
		pageSize:       cfg.PageSize,
		client:         &http.Client{Timeout: cfg.Timeout},
		limiter:        rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1),
		circuitBreaker: circuitbreaker.New(circuitbreaker.NewsAPIConfig()),
		retryConfig:    retry.NewsAPIConfig(),
	}
}

// Name returns the source system tag.
func (c *NewsAPIClient) Name() string {
	return entity.SourceNewsAPI
}

// Breaker exposes the client circuit breaker for health reporting.
func (c *NewsAPIClient) Breaker() *circuitbreaker.CircuitBreaker {
	return c.circuitBreaker
}

// Validate reports whether the client is usable before any external call.
func (c *NewsAPIClient) Validate() error {
	if c.apiKey == "" {
		return ingest.ErrMissingAPIKey
	}
	return nil
}

// Fetch retrieves records matching the query keywords inside the lookback
// window. One Fetch is one external request; the run coordinator accounts
// for it against the daily quota before calling.
func (c *NewsAPIClient) Fetch(ctx context.Context, q ingest.SourceQuery) ([]ingest.SourceRecord, error) {
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
				slog.Warn("newsapi circuit breaker open, request rejected",
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

// doFetch performs one request without retry or circuit breaker.
func (c *NewsAPIClient) doFetch(ctx context.Context, q ingest.SourceQuery) ([]ingest.SourceRecord, error) {
	endpoint := c.baseURL + "/everything"

	params := url.Values{}
	params.Set("q", buildQuery(q.Keywords))
	params.Set("from", q.From.UTC().Format("2006-01-02"))
	params.Set("sortBy", "publishedAt")
	params.Set("language", "en")
	params.Set("pageSize", strconv.Itoa(c.pageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("doFetch: build request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("doFetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, newsAPIMaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("doFetch: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    "newsapi: " + strings.TrimSpace(string(body)),
		}
	}

	var parsed newsAPIResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("doFetch: decode response: %w", err)
	}
	if parsed.Status != "ok" {
		return nil, fmt.Errorf("doFetch: newsapi error %s: %s", parsed.Code, parsed.Message)
	}

	records := make([]ingest.SourceRecord, 0, len(parsed.Articles))
	for _, a := range parsed.Articles {
		records = append(records, ingest.SourceRecord{
			Title:       a.Title,
			URL:         a.URL,
			Description: a.Description,
			Content:     a.Content,
			Author:      a.Author,
			SourceID:    a.Source.ID,
			Published:   a.PublishedAt,
		})
	}

	return records, nil
}

// buildQuery joins keywords into a NewsAPI OR query, quoting multi-word
// phrases so "Cayman Islands" matches as a phrase.
func buildQuery(keywords []string) string {
	if len(keywords) == 0 {
		return ""
	}
	parts := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if strings.Contains(kw, " ") {
			kw = `"` + kw + `"`
		}
		parts = append(parts, kw)
	}
	return strings.Join(parts, " OR ")
}
