// Package catalog provides the Catalog and Similarity Table domain entities.
package catalog

import (
	"github.com/cockroachdb/errors"

	"github.com/osa030/stairway/internal/domain/track"
)

// Catalog represents the ordered list of known tracks.
// Index i corresponds to row and column i of the similarity table.
type Catalog struct {
	tracks []track.Track
}

// New creates a catalog from track names and optional passthrough fields.
// fields may be nil or shorter than names.
func New(names []string, fields []map[string]string) (*Catalog, error) {
	tracks := make([]track.Track, len(names))
	for i, name := range names {
		if name == "" {
			return nil, errors.Newf("empty track name at row %d", i)
		}
		var f map[string]string
		if i < len(fields) {
			f = fields[i]
		}
		tracks[i] = track.Track{Index: i, Name: name, Fields: f}
	}
	return &Catalog{tracks: tracks}, nil
}

// Len returns the number of tracks.
func (c *Catalog) Len() int {
	return len(c.tracks)
}

// At returns the track at index i.
func (c *Catalog) At(i int) track.Track {
	return c.tracks[i]
}

// IndexOf returns the first index whose name equals name exactly.
func (c *Catalog) IndexOf(name string) (int, bool) {
	for i, t := range c.tracks {
		if t.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Contains reports whether the catalog has a track with the given name.
func (c *Catalog) Contains(name string) bool {
	_, ok := c.IndexOf(name)
	return ok
}

// Names returns all track names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.tracks))
	for i, t := range c.tracks {
		names[i] = t.Name
	}
	return names
}

// Similarity represents an N×N matrix of similarity scores.
// Row i, column j is the similarity of track i to track j. Symmetry is not assumed.
type Similarity struct {
	n      int
	values []float64 // row-major
}

// NewSimilarity creates a similarity table from rows. Every row must have len(rows) columns.
func NewSimilarity(rows [][]float64) (*Similarity, error) {
	n := len(rows)
	values := make([]float64, 0, n*n)
	for i, row := range rows {
		if len(row) != n {
			return nil, errors.Newf("similarity row %d has %d columns, expected %d", i, len(row), n)
		}
		values = append(values, row...)
	}
	return &Similarity{n: n, values: values}, nil
}

// NewSimilarityFlat creates a similarity table from row-major values.
func NewSimilarityFlat(n int, values []float64) (*Similarity, error) {
	if n < 0 || len(values) != n*n {
		return nil, errors.Newf("similarity data has %d values, expected %d", len(values), n*n)
	}
	return &Similarity{n: n, values: values}, nil
}

// Size returns N.
func (s *Similarity) Size() int {
	return s.n
}

// Row returns row i. The returned slice must not be modified.
func (s *Similarity) Row(i int) []float64 {
	return s.values[i*s.n : (i+1)*s.n]
}

// At returns the score of row i, column j.
func (s *Similarity) At(i, j int) float64 {
	return s.values[i*s.n+j]
}

// Check verifies that the table dimensions match the catalog.
func Check(c *Catalog, s *Similarity) error {
	if c.Len() != s.Size() {
		return errors.Newf("catalog has %d tracks but similarity table is %dx%d", c.Len(), s.Size(), s.Size())
	}
	return nil
}
