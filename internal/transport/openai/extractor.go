package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/qou/internal/domain"
	"github.com/kailas-cloud/qou/internal/domain/query"
	"github.com/kailas-cloud/qou/internal/metrics"
)

// ProviderName labels metrics of this recognizer.
const ProviderName = "openai"

// Labels is the closed label set the model may assign.
var Labels = []query.EntityType{
	query.EntityBrand,
	query.EntityAisle,
	query.EntityCategory,
	query.EntityDepartment,
	query.EntityDietaryAttribute,
	query.EntityGroceryAttribute,
	query.EntityColor,
	query.EntityProductType,
}

// Extractor recognizes entities with an OpenAI-compatible chat completion API.
type Extractor struct {
	client *openai.Client
	model  string
	prompt string
	labels map[string]struct{}
	logger *zap.Logger
}

// Config holds the chat completion provider settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// NewExtractor creates an OpenAI-compatible entity extractor.
func NewExtractor(cfg *Config) *Extractor {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	labels := make(map[string]struct{}, len(Labels))
	names := make([]string, 0, len(Labels))
	for _, l := range Labels {
		labels[string(l)] = struct{}{}
		names = append(names, string(l))
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Extractor{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		prompt: systemPrompt(names),
		labels: labels,
		logger: logger,
	}
}

func systemPrompt(labels []string) string {
	return "You extract entities from grocery and retail search queries. " +
		"Reply with a JSON object of the form " +
		`{"entities":[{"text":"<exact words from the query>","label":"<LABEL>"}]}. ` +
		"Allowed labels: " + strings.Join(labels, ", ") + ". " +
		"Use only words that appear in the query. Return an empty list when nothing matches."
}

type completionEntities struct {
	Entities []struct {
		Text  string `json:"text"`
		Label string `json:"label"`
	} `json:"entities"`
}

// Extract implements domain.EntityExtractor.
func (e *Extractor) Extract(ctx context.Context, text string) (domain.ExtractionResult, error) {
	req := openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: e.prompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0,
	}

	start := time.Now()
	resp, err := e.client.CreateChatCompletion(ctx, req)
	metrics.NERRequestDuration.WithLabelValues(ProviderName).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.NERRequestsTotal.WithLabelValues(ProviderName, "error").Inc()
		return domain.ExtractionResult{}, parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		metrics.NERRequestsTotal.WithLabelValues(ProviderName, "error").Inc()
		return domain.ExtractionResult{}, fmt.Errorf("empty completion response: %w", domain.ErrExtractionFailed)
	}

	var parsed completionEntities
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		metrics.NERRequestsTotal.WithLabelValues(ProviderName, "error").Inc()
		return domain.ExtractionResult{}, fmt.Errorf("decode completion: %w: %w", domain.ErrExtractionFailed, err)
	}
	metrics.NERRequestsTotal.WithLabelValues(ProviderName, "success").Inc()

	lower := strings.ToLower(text)
	out := make([]domain.RecognizedEntity, 0, len(parsed.Entities))
	for _, ent := range parsed.Entities {
		label := strings.ToUpper(strings.TrimSpace(ent.Label))
		value := strings.TrimSpace(ent.Text)
		if value == "" {
			continue
		}
		if _, ok := e.labels[label]; !ok {
			e.logger.Debug("dropping entity with unknown label", zap.String("label", ent.Label))
			continue
		}
		re := domain.RecognizedEntity{Text: value, Label: label, Start: -1, End: -1}
		if i := strings.Index(lower, strings.ToLower(value)); i >= 0 {
			re.Start, re.End = i, i+len(value)
		}
		out = append(out, re)
	}
	return domain.ExtractionResult{Entities: out}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Extractor) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrExtractionFailed.
func parseAPIError(err error) error {
	wrap := domain.ErrExtractionFailed

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("completion API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("completion API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("completion API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("completion request: %w: %w", wrap, err)
	}
	return fmt.Errorf("completion request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
