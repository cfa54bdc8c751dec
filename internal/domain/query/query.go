// Package query holds the request-scoped values produced by the
// query-understanding pipeline before the query is rewritten.
package query

// UserContext is passed through the pipeline untouched.
type UserContext struct {
	UserID  string `json:"user_id,omitempty"`
	Segment string `json:"segment,omitempty"`
}

// Preprocessed is the raw query together with its normalized form.
type Preprocessed struct {
	raw        string
	normalized string
	user       UserContext
}

// NewPreprocessed creates a preprocessed query.
func NewPreprocessed(raw, normalized string, user UserContext) Preprocessed {
	return Preprocessed{raw: raw, normalized: normalized, user: user}
}

// Raw returns the query exactly as the caller sent it.
func (p Preprocessed) Raw() string { return p.raw }

// Normalized returns the normalized query text.
func (p Preprocessed) Normalized() string { return p.normalized }

// User returns the caller context.
func (p Preprocessed) User() UserContext { return p.user }

// Understood is a preprocessed query annotated with its intent and entities.
type Understood struct {
	preprocessed Preprocessed
	intent       Intent
	entities     []Entity
}

// NewUnderstood creates an understood query. The entity slice is copied.
func NewUnderstood(p Preprocessed, intent Intent, entities []Entity) Understood {
	cp := make([]Entity, len(entities))
	copy(cp, entities)
	return Understood{preprocessed: p, intent: intent, entities: cp}
}

// Preprocessed returns the underlying preprocessed query.
func (u Understood) Preprocessed() Preprocessed { return u.preprocessed }

// Intent returns the classified intent.
func (u Understood) Intent() Intent { return u.intent }

// Entities returns the recognized entities in discovery order.
func (u Understood) Entities() []Entity { return u.entities }
