package request

import (
	"fmt"

	"github.com/kailas-cloud/qou/internal/domain/query"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed raw query length in bytes.
	MaxQueryLength = 1024
	DefaultLimit   = 20
	MaxLimit       = 100
	MaxOffset      = 10000
)

// Request is a validated search request.
// A blank query is valid: it normalizes to "" and falls back to an
// unconstrained text clause.
type Request struct {
	rawQuery string
	user     query.UserContext
	limit    int
	offset   int
}

// New validates and normalizes search parameters.
// Defaults: limit=20, offset=0. Limit is clamped to MaxLimit.
func New(rawQuery string, user query.UserContext, limit, offset int) (Request, error) {
	if len(rawQuery) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d bytes)", MaxQueryLength)
	}
	if offset < 0 {
		return Request{}, fmt.Errorf("offset must not be negative")
	}
	if offset > MaxOffset {
		return Request{}, fmt.Errorf("offset too large (max %d)", MaxOffset)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Request{rawQuery: rawQuery, user: user, limit: limit, offset: offset}, nil
}

// RawQuery returns the query text as sent by the caller.
func (r *Request) RawQuery() string { return r.rawQuery }

// User returns the caller context.
func (r *Request) User() query.UserContext { return r.user }

// Limit returns the maximum number of products to return.
func (r *Request) Limit() int { return r.limit }

// Offset returns the number of products to skip.
func (r *Request) Offset() int { return r.offset }
