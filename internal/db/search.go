package db

// SearchQuery is the input for FT.SEARCH with a pre-compiled query string.
type SearchQuery struct {
	IndexName    string
	Query        string
	Offset       int
	Limit        int
	ReturnFields []string
	WithScores   bool
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// AggregateQuery groups matching documents by a single field and counts them.
type AggregateQuery struct {
	IndexName string
	Query     string
	GroupBy   string
	Max       int
}

// GroupCount is one row of a grouped aggregation.
type GroupCount struct {
	Value string
	Count int64
}

// SpellCheckQuery is the input for FT.SPELLCHECK.
type SpellCheckQuery struct {
	IndexName    string
	Query        string
	Distance     int
	IncludeDicts []string
}

// ScoredSuggestion is a spelling alternative with its engine score.
type ScoredSuggestion struct {
	Value string
	Score float64
}

// SpellCheckTerm lists alternatives for one misspelled term, best first.
type SpellCheckTerm struct {
	Term        string
	Suggestions []ScoredSuggestion
}
