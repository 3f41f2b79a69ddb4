// Package recommend provides nearest-neighbor lookup over a precomputed similarity table.
package recommend

import (
	"math"
	"sort"
	"strings"

	"github.com/agext/levenshtein"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/stairway/internal/domain/catalog"
	"github.com/osa030/stairway/internal/domain/track"
)

// DefaultLimit is the number of recommendations returned when no limit is configured.
const DefaultLimit = 5

// suggestionThreshold is the minimum name similarity for a "did you mean" hint.
const suggestionThreshold = 0.5

// Engine ranks catalog tracks by similarity to a selected track.
// It holds only read-only data and is safe for concurrent use.
type Engine struct {
	catalog    *catalog.Catalog
	similarity *catalog.Similarity
	limit      int
}

// NewEngine creates a new Engine. The similarity table must match the catalog dimensions.
func NewEngine(c *catalog.Catalog, s *catalog.Similarity, limit int) (*Engine, error) {
	if c == nil || s == nil {
		return nil, errors.New("catalog and similarity table are required")
	}
	if err := catalog.Check(c, s); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Engine{
		catalog:    c,
		similarity: s,
		limit:      limit,
	}, nil
}

// Recommend returns up to limit track names most similar to name, best first.
// An unknown name yields an empty result.
func (e *Engine) Recommend(name string) []string {
	neighbors, _ := e.RecommendScored(name)
	names := make([]string, len(neighbors))
	for i, n := range neighbors {
		names[i] = n.Name
	}
	return names
}

// RecommendScored returns the ranked neighbors of name with their scores.
// The boolean reports whether name is in the catalog.
func (e *Engine) RecommendScored(name string) ([]track.Neighbor, bool) {
	idx, ok := e.catalog.IndexOf(name)
	if !ok {
		zlog.Debug().Msgf("track not in catalog: %q", name)
		return []track.Neighbor{}, false
	}

	row := e.similarity.Row(idx)
	ranked := make([]int, len(row))
	for i := range ranked {
		ranked[i] = i
	}

	// Stable sort keeps lower catalog index first on equal scores.
	sort.SliceStable(ranked, func(a, b int) bool {
		return scoreGreater(row[ranked[a]], row[ranked[b]])
	})

	result := make([]track.Neighbor, 0, e.limit)
	for _, j := range ranked {
		if len(result) == e.limit {
			break
		}
		t := e.catalog.At(j)
		// The selected track is dropped wherever ties place it, and so are later duplicates of its name.
		if j == idx || t.Name == name {
			continue
		}
		result = append(result, track.Neighbor{
			Index: j,
			Name:  t.Name,
			Score: row[j],
		})
	}

	zlog.Debug().Msgf("ranked neighbors: track=%q index=%d count=%d", name, idx, len(result))
	return result, true
}

// Tracks returns the selectable catalog track names in catalog order.
func (e *Engine) Tracks() []string {
	return e.catalog.Names()
}

// Contains reports whether name is a catalog track.
func (e *Engine) Contains(name string) bool {
	return e.catalog.Contains(name)
}

// Limit returns the maximum number of recommendations.
func (e *Engine) Limit() int {
	return e.limit
}

// Suggest returns up to n catalog names that closely resemble name, best first.
func (e *Engine) Suggest(name string, n int) []string {
	if n <= 0 || strings.TrimSpace(name) == "" {
		return nil
	}

	type candidate struct {
		name  string
		score float64
	}

	query := strings.ToLower(name)
	var candidates []candidate
	for _, candidateName := range e.catalog.Names() {
		score := levenshtein.Similarity(query, strings.ToLower(candidateName), nil)
		if score >= suggestionThreshold {
			candidates = append(candidates, candidate{name: candidateName, score: score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > n {
		candidates = candidates[:n]
	}
	suggestions := make([]string, len(candidates))
	for i, c := range candidates {
		suggestions[i] = c.name
	}
	return suggestions
}

// scoreGreater orders scores descending with NaN last.
func scoreGreater(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a > b
}
