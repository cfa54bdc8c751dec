package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/qou/internal/db"
)

// SugAdd adds autocomplete entries to a suggestion dictionary in a single DoMulti round-trip.
// Re-adding an entry replaces its score.
func (s *Store) SugAdd(ctx context.Context, key string, items []db.SuggestionItem) error {
	if len(items) == 0 {
		return nil
	}

	cmds := make([]rueidis.Completed, len(items))
	for i, item := range items {
		score := item.Score
		if score <= 0 {
			score = 1
		}
		cmds[i] = s.b().Arbitrary("FT.SUGADD").Keys(key).
			Args(item.Value, strconv.FormatFloat(score, 'f', -1, 64)).Build()
	}

	results := s.client.DoMulti(ctx, cmds...)
	for i, res := range results {
		if err := res.Error(); err != nil {
			return &db.Error{Op: db.OpSugAdd, Err: fmt.Errorf("entry %q: %w", items[i].Value, err)}
		}
	}
	return nil
}

// SugGet returns up to limit completions for prefix, best first.
func (s *Store) SugGet(ctx context.Context, key, prefix string, limit int, fuzzy bool) ([]string, error) {
	if prefix == "" {
		return nil, nil
	}

	args := []string{prefix}
	if fuzzy {
		args = append(args, "FUZZY")
	}
	if limit > 0 {
		args = append(args, "MAX", strconv.Itoa(limit))
	}

	cmd := s.b().Arbitrary("FT.SUGGET").Keys(key).Args(args...).Build()
	out, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, nil
		}
		return nil, &db.Error{Op: db.OpSugGet, Err: err}
	}
	return out, nil
}
