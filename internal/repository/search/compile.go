package search

import (
	"strconv"
	"strings"

	"github.com/kailas-cloud/qou/internal/domain/search/clause"
	"github.com/kailas-cloud/qou/internal/domain/search/structured"
	"github.com/kailas-cloud/qou/internal/repository/productindex"
)

const (
	matchAll      = "*"
	minFuzzyChars = 4
)

// Compile translates a structured query into RediSearch DIALECT 2 syntax.
// Filters come first, then must clauses, then optional should clauses.
// A query without any required part matches everything.
func Compile(q structured.Query) string {
	var required []string
	for _, c := range q.Filter {
		if s := compileClause(c, ""); s != "" {
			required = append(required, s)
		}
	}
	for _, c := range q.Must {
		if s := compileClause(c, ""); s != "" {
			required = append(required, s)
		}
	}
	if len(required) == 0 {
		return matchAll
	}

	parts := required
	for _, c := range q.Should {
		if s := compileClause(c, ""); s != "" {
			parts = append(parts, "~"+s)
		}
	}
	return strings.Join(parts, " ")
}

func compileClause(c clause.Clause, path string) string {
	switch v := c.(type) {
	case clause.TermFilter:
		return compileTerm(v, path)
	case clause.MultiMatch:
		return compileMultiMatch(v, path)
	case clause.NestedMatch:
		return compileNested(v, path)
	default:
		return ""
	}
}

func compileTerm(t clause.TermFilter, path string) string {
	value := t.Value
	if t.CaseInsensitive {
		value = strings.ToLower(value)
	}
	if strings.TrimSpace(value) == "" {
		return ""
	}
	return "@" + attr(path, t.Field) + ":{" + tagEscaper.Replace(value) + "}"
}

type fieldGroup struct {
	weight float64
	attrs  []string
}

func compileMultiMatch(m clause.MultiMatch, path string) string {
	tokens := matchTokens(m.Text, m.Fuzzy)
	if len(tokens) == 0 || len(m.Fields) == 0 {
		return ""
	}
	terms := "(" + strings.Join(tokens, "|") + ")"

	// Fields sharing a weight share one field-modifier group.
	var groups []*fieldGroup
	byWeight := make(map[float64]*fieldGroup)
	for _, f := range m.Fields {
		g, ok := byWeight[f.Weight]
		if !ok {
			g = &fieldGroup{weight: f.Weight}
			byWeight[f.Weight] = g
			groups = append(groups, g)
		}
		g.attrs = append(g.attrs, attr(path, f.Name))
	}

	parts := make([]string, 0, len(groups))
	for _, g := range groups {
		s := "@" + strings.Join(g.attrs, "|") + ":" + terms
		if g.weight > 0 && g.weight != 1 {
			s = "(" + s + ") => { $weight: " + strconv.FormatFloat(g.weight, 'f', -1, 64) + "; }"
		}
		parts = append(parts, s)
	}
	return "(" + strings.Join(parts, " | ") + ")"
}

func compileNested(n clause.NestedMatch, path string) string {
	nestedPath := n.Path
	if path != "" {
		nestedPath = path + "." + n.Path
	}
	var parts []string
	for _, c := range n.Clauses {
		if s := compileClause(c, nestedPath); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func matchTokens(text string, fuzzy bool) []string {
	words := strings.Fields(text)
	tokens := make([]string, 0, len(words))
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		tok := queryEscaper.Replace(w)
		if fuzzy && len(w) >= minFuzzyChars {
			tok = "%" + tok + "%"
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

func attr(path, field string) string {
	if path != "" {
		field = path + "." + field
	}
	return productindex.Attr(field)
}

// escapeText escapes query syntax characters in free text.
func escapeText(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = queryEscaper.Replace(w)
	}
	return strings.Join(words, " ")
}

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"[", "\\[",
	"]", "\\]",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	" ", "\\ ",
)

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
	`:`, `\:`,
	`.`, `\.`,
	`,`, `\,`,
)
