// Package normalize turns raw query text into the canonical form every
// downstream pipeline stage works on.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/kailas-cloud/qou/internal/domain/query"
	"github.com/kailas-cloud/qou/internal/domain/search/request"
)

// Normalize trims, lowercases and folds diacritics, then drops every rune
// outside [a-z0-9 -]. Whitespace runs collapse to a single space.
// The result is idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}

	// The transformer carries state, so it is built per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingSpace := false
	for _, r := range folded {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-':
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			pendingSpace = true
		}
	}
	return b.String()
}

// Preprocess builds the immutable preprocessed query for a request.
func Preprocess(req *request.Request) query.Preprocessed {
	return query.NewPreprocessed(req.RawQuery(), Normalize(req.RawQuery()), req.User())
}
