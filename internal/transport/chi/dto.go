package chi

import (
	"github.com/kailas-cloud/qou/internal/domain/product"
	"github.com/kailas-cloud/qou/internal/domain/query"
	"github.com/kailas-cloud/qou/internal/domain/search/result"
	"github.com/kailas-cloud/qou/internal/domain/search/structured"
	searchuc "github.com/kailas-cloud/qou/internal/usecase/search"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest       = "bad_request"
	CodeValidationFailed = "validation_failed"
	CodeUnauthorized     = "unauthorized"
	CodeIndexNotReady    = "index_not_ready"
	CodeUnavailable      = "search_unavailable"
	CodeInternalError    = "internal_error"
)

// ErrorResponse is the JSON body of every non-2xx answer.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// UserContextDTO identifies the caller.
type UserContextDTO struct {
	UserID  string `json:"user_id" validate:"max=128"`
	Segment string `json:"segment" validate:"max=64"`
}

// SearchRequest is the body of POST /api/v1/search and /api/v1/search/understand.
type SearchRequest struct {
	RawQuery    string          `json:"raw_query" validate:"max=1024"`
	UserContext *UserContextDTO `json:"user_context"`
	Limit       int             `json:"limit" validate:"gte=0"`
	Offset      int             `json:"offset" validate:"gte=0,lte=10000"`
}

func (r *SearchRequest) user() query.UserContext {
	if r.UserContext == nil {
		return query.UserContext{}
	}
	return query.UserContext{UserID: r.UserContext.UserID, Segment: r.UserContext.Segment}
}

// SearchResponse is the public search answer.
type SearchResponse struct {
	Products             []product.Product `json:"products"`
	Facets               []result.Facet    `json:"facets"`
	Total                int               `json:"total"`
	DidYouMeanSuggestion *string           `json:"did_you_mean_suggestion,omitempty"`
}

func searchResponseFrom(o *result.Outcome) SearchResponse {
	resp := SearchResponse{
		Products: o.Products(),
		Facets:   o.Facets(),
		Total:    o.Total(),
	}
	if s, ok := o.DidYouMean(); ok {
		resp.DidYouMeanSuggestion = &s
	}
	return resp
}

// UnderstandResponse exposes every pipeline stage without calling the engine.
type UnderstandResponse struct {
	Normalized   string                       `json:"normalized"`
	Intent       query.Intent                 `json:"intent"`
	Entities     []query.Entity               `json:"entities"`
	Query        structured.Query             `json:"structured_query"`
	Aggregations []structured.AggregationSpec `json:"aggregations"`
	EngineQuery  string                       `json:"engine_query"`
}

func understandResponseFrom(u searchuc.Understanding) UnderstandResponse {
	entities := u.Entities
	if entities == nil {
		entities = []query.Entity{}
	}
	return UnderstandResponse{
		Normalized:   u.Normalized,
		Intent:       u.Intent,
		Entities:     entities,
		Query:        u.Query,
		Aggregations: u.Query.Aggregations,
		EngineQuery:  u.EngineQuery,
	}
}

// SuggestResponse lists autocomplete completions.
type SuggestResponse struct {
	Suggestions []string `json:"suggestions"`
}

// HealthResponse reports component health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
