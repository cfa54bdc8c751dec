// Package ner is an HTTP client for a spaCy-style entity recognition service
// that answers POST {"text": ...} with {"entities": [{"text", "label"}]}.
package ner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/kailas-cloud/qou/internal/domain"
	"github.com/kailas-cloud/qou/internal/metrics"
)

// ProviderName labels metrics of this recognizer.
const ProviderName = "http"

const maxResponseBytes = 1 << 20

// Client calls the recognition endpoint.
type Client struct {
	url     string
	http    *http.Client
	limiter *rate.Limiter
}

// Config holds recognizer endpoint settings.
type Config struct {
	URL        string
	Timeout    time.Duration
	RateLimit  float64 // requests per second; 0 = unlimited
	RateBurst  int
	HTTPClient *http.Client
}

// NewClient creates a recognizer client.
func NewClient(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{url: cfg.URL, http: hc, limiter: limiter}
}

type extractRequest struct {
	Text string `json:"text"`
}

type extractResponse struct {
	Entities []struct {
		Text  string `json:"text"`
		Label string `json:"label"`
		Start *int   `json:"start,omitempty"`
		End   *int   `json:"end,omitempty"`
	} `json:"entities"`
}

// Extract implements domain.EntityExtractor.
func (c *Client) Extract(ctx context.Context, text string) (domain.ExtractionResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		metrics.NERRequestsTotal.WithLabelValues(ProviderName, "rate_limited").Inc()
		return domain.ExtractionResult{}, fmt.Errorf("wait for rate limiter: %w: %w", domain.ErrExtractionFailed, err)
	}

	start := time.Now()
	body, err := c.post(ctx, text)
	metrics.NERRequestDuration.WithLabelValues(ProviderName).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.NERRequestsTotal.WithLabelValues(ProviderName, "error").Inc()
		return domain.ExtractionResult{}, err
	}

	var parsed extractResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		metrics.NERRequestsTotal.WithLabelValues(ProviderName, "error").Inc()
		return domain.ExtractionResult{}, fmt.Errorf("decode entities: %w: %w", domain.ErrExtractionFailed, err)
	}
	metrics.NERRequestsTotal.WithLabelValues(ProviderName, "success").Inc()

	out := make([]domain.RecognizedEntity, 0, len(parsed.Entities))
	for _, e := range parsed.Entities {
		if strings.TrimSpace(e.Text) == "" || strings.TrimSpace(e.Label) == "" {
			continue
		}
		re := domain.RecognizedEntity{Text: e.Text, Label: e.Label, Start: -1, End: -1}
		if e.Start != nil && e.End != nil {
			re.Start, re.End = *e.Start, *e.End
		}
		out = append(out, re)
	}
	return domain.ExtractionResult{Entities: out}, nil
}

// HealthCheck sends an empty text and expects a 2xx answer.
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.post(ctx, ""); err != nil {
		return fmt.Errorf("ner health check: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, text string) ([]byte, error) {
	payload, err := json.Marshal(extractRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w: %w", c.url, domain.ErrExtractionFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w: %w", domain.ErrExtractionFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("ner status %d: %s: %w",
			resp.StatusCode, strings.TrimSpace(string(body)), domain.ErrExtractionFailed)
	}
	return body, nil
}
