package recommend

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/stairway/internal/domain/catalog"
)

func newTestEngine(t *testing.T, names []string, rows [][]float64, limit int) *Engine {
	t.Helper()
	c, err := catalog.New(names, nil)
	require.NoError(t, err)
	s, err := catalog.NewSimilarity(rows)
	require.NoError(t, err)
	e, err := NewEngine(c, s, limit)
	require.NoError(t, err)
	return e
}

func trackNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("track%d", i)
	}
	return names
}

func TestNewEngine(t *testing.T) {
	c, err := catalog.New([]string{"a", "b"}, nil)
	require.NoError(t, err)
	s3, err := catalog.NewSimilarityFlat(3, make([]float64, 9))
	require.NoError(t, err)
	s2, err := catalog.NewSimilarityFlat(2, make([]float64, 4))
	require.NoError(t, err)

	_, err = NewEngine(c, s3, 5)
	assert.Error(t, err, "dimension mismatch must be rejected")

	_, err = NewEngine(nil, s2, 5)
	assert.Error(t, err)

	e, err := NewEngine(c, s2, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, e.Limit())
}

func TestEngine_Recommend(t *testing.T) {
	tests := []struct {
		name     string
		names    []string
		row0     []float64
		limit    int
		expected []string
	}{
		{
			name:     "strictly descending row",
			names:    trackNames(6),
			row0:     []float64{1.0, 0.1, 0.2, 0.3, 0.4, 0.5},
			expected: []string{"track5", "track4", "track3", "track2", "track1"},
		},
		{
			name:     "ties keep catalog order",
			names:    trackNames(7),
			row0:     []float64{1.0, 0.5, 0.5, 0.9, 0.5, 0.5, 0.5},
			expected: []string{"track3", "track1", "track2", "track4", "track5"},
		},
		{
			name:     "self not ranked first",
			names:    trackNames(4),
			row0:     []float64{0.5, 0.9, 0.5, 0.1},
			expected: []string{"track1", "track2", "track3"},
		},
		{
			name:     "self tied with others",
			names:    trackNames(3),
			row0:     []float64{1.0, 1.0, 1.0},
			expected: []string{"track1", "track2"},
		},
		{
			name:     "NaN scores sort last",
			names:    trackNames(3),
			row0:     []float64{1.0, math.NaN(), 0.2},
			expected: []string{"track2", "track1"},
		},
		{
			name:     "custom limit",
			names:    trackNames(6),
			row0:     []float64{1.0, 0.1, 0.2, 0.3, 0.4, 0.5},
			limit:    2,
			expected: []string{"track5", "track4"},
		},
		{
			name:     "duplicate name of selected track is dropped",
			names:    []string{"x", "y", "x"},
			row0:     []float64{1.0, 0.1, 0.9},
			expected: []string{"y"},
		},
		{
			name:     "single track catalog",
			names:    []string{"solo"},
			row0:     []float64{1.0},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := len(tt.names)
			rows := make([][]float64, n)
			rows[0] = tt.row0
			for i := 1; i < n; i++ {
				rows[i] = make([]float64, n)
			}
			e := newTestEngine(t, tt.names, rows, tt.limit)

			assert.Equal(t, tt.expected, e.Recommend(tt.names[0]))
		})
	}
}

func TestEngine_RecommendUnknown(t *testing.T) {
	e := newTestEngine(t, trackNames(3), [][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}, 5)

	for _, name := range []string{"", "TRACK0", "track9", " track0"} {
		result := e.Recommend(name)
		assert.NotNil(t, result)
		assert.Empty(t, result, "name %q", name)

		scored, found := e.RecommendScored(name)
		assert.False(t, found)
		assert.Empty(t, scored)
	}
}

func TestEngine_RecommendScored(t *testing.T) {
	e := newTestEngine(t, trackNames(3), [][]float64{
		{1.0, 0.25, 0.75},
		{0, 1, 0},
		{0, 0, 1},
	}, 5)

	scored, found := e.RecommendScored("track0")
	require.True(t, found)
	require.Len(t, scored, 2)
	assert.Equal(t, 2, scored[0].Index)
	assert.Equal(t, "track2", scored[0].Name)
	assert.InDelta(t, 0.75, scored[0].Score, 1e-9)
	assert.Equal(t, 1, scored[1].Index)
}

func TestEngine_RecommendProperties(t *testing.T) {
	const n = 40
	rng := rand.New(rand.NewSource(7))
	names := trackNames(n)
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, n)
		for j := range rows[i] {
			// Coarse values force plenty of ties.
			rows[i][j] = float64(rng.Intn(5)) / 4
		}
	}
	e := newTestEngine(t, names, rows, 5)

	known := make(map[string]bool, n)
	for _, name := range names {
		known[name] = true
	}

	for _, name := range names {
		first := e.Recommend(name)
		assert.LessOrEqual(t, len(first), 5)
		assert.NotContains(t, first, name)
		for _, rec := range first {
			assert.True(t, known[rec], "recommendation %q must come from the catalog", rec)
		}
		assert.Equal(t, first, e.Recommend(name), "order must be deterministic")
	}
}

func TestEngine_Suggest(t *testing.T) {
	names := []string{"Shape of You", "Blinding Lights", "Shape of Me"}
	rows := [][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	e := newTestEngine(t, names, rows, 5)

	suggestions := e.Suggest("shape of yoo", 2)
	require.Len(t, suggestions, 2)
	assert.Equal(t, "Shape of You", suggestions[0])
	assert.NotContains(t, suggestions, "Blinding Lights")

	assert.Empty(t, e.Suggest("", 3))
	assert.Empty(t, e.Suggest("zzzzzzzzzzzzzzzzzzzz", 3))
	assert.Empty(t, e.Suggest("shape of you", 0))
}

func TestEngine_Tracks(t *testing.T) {
	e := newTestEngine(t, []string{"b", "a"}, [][]float64{{1, 0}, {0, 1}}, 5)
	assert.Equal(t, []string{"b", "a"}, e.Tracks())
	assert.True(t, e.Contains("a"))
	assert.False(t, e.Contains("c"))
}
