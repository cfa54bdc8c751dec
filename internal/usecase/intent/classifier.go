// Package intent classifies the coarse purpose of a normalized query.
package intent

import (
	"strings"

	"github.com/kailas-cloud/qou/internal/domain/query"
	"github.com/kailas-cloud/qou/internal/usecase/normalize"
)

// Classifier maps normalized query text to exactly one intent.
type Classifier interface {
	Classify(normalized string) query.Intent
}

// DefaultInformationalPrefixes mark questions rather than product lookups.
var DefaultInformationalPrefixes = []string{
	"how to", "how do", "how does", "how long", "how much",
	"what is", "what are", "why", "when", "recipe for",
}

// RuleClassifier is a prefix-rule classifier. Immutable after construction.
type RuleClassifier struct {
	prefixes []string
}

var _ Classifier = (*RuleClassifier)(nil)

// NewRuleClassifier normalizes the given prefixes; nil means the defaults.
func NewRuleClassifier(prefixes []string) *RuleClassifier {
	if prefixes == nil {
		prefixes = DefaultInformationalPrefixes
	}
	c := &RuleClassifier{}
	for _, p := range prefixes {
		if n := normalize.Normalize(p); n != "" {
			c.prefixes = append(c.prefixes, n)
		}
	}
	return c
}

// Classify returns informational when the text starts with a configured
// prefix on a word boundary, find_product otherwise.
func (c *RuleClassifier) Classify(normalized string) query.Intent {
	for _, p := range c.prefixes {
		if hasWordPrefix(normalized, p) {
			return query.NewIntent(query.IntentInformational)
		}
	}
	return query.NewIntent(query.IntentFindProduct)
}

func hasWordPrefix(s, prefix string) bool {
	if !strings.HasPrefix(s, prefix) {
		return false
	}
	return len(s) == len(prefix) || s[len(prefix)] == ' '
}
