package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/qou/internal/db"
)

const dialect = "2"

// Search runs a pre-compiled query via FT.SEARCH.
func (s *Store) Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if q.Limit < 0 || q.Offset < 0 {
		return nil, fmt.Errorf("offset and limit must not be negative")
	}

	args := []string{q.IndexName, q.Query}
	if q.WithScores {
		args = append(args, "WITHSCORES")
	}
	if len(q.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(q.ReturnFields)))
		args = append(args, q.ReturnFields...)
	}
	args = append(args,
		"LIMIT", strconv.Itoa(q.Offset), strconv.Itoa(q.Limit),
		"DIALECT", dialect,
	)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isMissingIndex(err) {
			return nil, &db.Error{Op: db.OpSearch, Err: db.ErrIndexNotFound}
		}
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	if q.WithScores {
		return parseScoredResult(raw)
	}
	return parseListResult(raw)
}

// Aggregate counts matching documents per distinct value of q.GroupBy, most frequent first.
func (s *Store) Aggregate(ctx context.Context, q *db.AggregateQuery) ([]db.GroupCount, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.GroupBy == "" {
		return nil, fmt.Errorf("group by field is required")
	}
	if q.Query == "" {
		return nil, fmt.Errorf("query is required")
	}

	field := "@" + q.GroupBy
	args := []string{
		q.IndexName, q.Query,
		"GROUPBY", "1", field,
		"REDUCE", "COUNT", "0", "AS", "count",
		"SORTBY", "2", "@count", "DESC",
	}
	if q.Max > 0 {
		args = append(args, "MAX", strconv.Itoa(q.Max))
	}
	args = append(args, "DIALECT", dialect)

	cmd := s.b().Arbitrary("FT.AGGREGATE").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isMissingIndex(err) {
			return nil, &db.Error{Op: db.OpAggregate, Err: db.ErrIndexNotFound}
		}
		return nil, &db.Error{Op: db.OpAggregate, Err: err}
	}

	return parseAggregateResult(raw, q.GroupBy)
}

// SpellCheck returns alternatives for misspelled terms of q.Query via FT.SPELLCHECK.
func (s *Store) SpellCheck(ctx context.Context, q *db.SpellCheckQuery) ([]db.SpellCheckTerm, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Query == "" {
		return nil, nil
	}

	args := []string{q.IndexName, q.Query}
	if q.Distance > 0 {
		args = append(args, "DISTANCE", strconv.Itoa(q.Distance))
	}
	for _, dict := range q.IncludeDicts {
		args = append(args, "TERMS", "INCLUDE", dict)
	}
	args = append(args, "DIALECT", dialect)

	cmd := s.b().Arbitrary("FT.SPELLCHECK").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSpellCheck, Err: err}
	}

	return parseSpellCheckResult(raw)
}

func isMissingIndex(err error) bool {
	return isRedisErr(err, "no such index") || isRedisErr(err, "unknown index name")
}

// --- Result parsing ---

func parseScoredResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, (len(raw)-1)/3)
	// 3-stride: [total, key1, score1, fields1, key2, score2, fields2, ...]
	for i := 1; i+2 < len(raw); i += 3 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		scoreStr, err := raw[i+1].ToString()
		if err != nil {
			continue
		}
		score, err := strconv.ParseFloat(scoreStr, 64)
		if err != nil {
			continue
		}

		fields, err := raw[i+2].ToArray()
		if err != nil {
			continue
		}

		entries = append(entries, db.SearchEntry{
			Key:    key,
			Score:  score,
			Fields: parseFieldPairs(fields),
		})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseListResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, (len(raw)-1)/2)
	// 2-stride: [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		entries = append(entries, db.SearchEntry{
			Key:    key,
			Fields: parseFieldPairs(fields),
		})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

// parseAggregateResult reads rows shaped [total, [field, value, "count", n], ...].
func parseAggregateResult(raw []rueidis.RedisMessage, groupBy string) ([]db.GroupCount, error) {
	if len(raw) <= 1 {
		return nil, nil
	}

	out := make([]db.GroupCount, 0, len(raw)-1)
	for _, msg := range raw[1:] {
		row, err := msg.ToArray()
		if err != nil {
			continue
		}
		fields := parseFieldPairs(row)

		value, ok := fields[groupBy]
		if !ok || value == "" {
			continue
		}
		count, err := strconv.ParseInt(fields["count"], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse count for %q: %w", value, err)
		}
		out = append(out, db.GroupCount{Value: value, Count: count})
	}
	return out, nil
}

// parseSpellCheckResult reads entries shaped ["TERM", term, [[score, suggestion], ...]].
func parseSpellCheckResult(raw []rueidis.RedisMessage) ([]db.SpellCheckTerm, error) {
	out := make([]db.SpellCheckTerm, 0, len(raw))
	for _, msg := range raw {
		entry, err := msg.ToArray()
		if err != nil || len(entry) < 3 {
			continue
		}
		term, err := entry[1].ToString()
		if err != nil {
			continue
		}
		pairs, err := entry[2].ToArray()
		if err != nil {
			continue
		}

		st := db.SpellCheckTerm{Term: term}
		for _, p := range pairs {
			pair, err := p.ToArray()
			if err != nil || len(pair) < 2 {
				continue
			}
			scoreStr, err := pair[0].ToString()
			if err != nil {
				continue
			}
			score, err := strconv.ParseFloat(scoreStr, 64)
			if err != nil {
				return nil, fmt.Errorf("parse suggestion score: %w", err)
			}
			value, err := pair[1].ToString()
			if err != nil {
				continue
			}
			st.Suggestions = append(st.Suggestions, db.ScoredSuggestion{Value: value, Score: score})
		}
		out = append(out, st)
	}
	return out, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}
