// Package artifact loads the precomputed catalog and similarity table from disk.
package artifact

import (
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/stairway/internal/domain/catalog"
)

// TrackNameColumn is the catalog column holding track names.
const TrackNameColumn = "track_name"

// ErrUnsupportedFormat is returned for artifact files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported artifact format")

// Load reads both artifacts and verifies that their dimensions agree.
func Load(tracksPath, similarityPath string) (*catalog.Catalog, *catalog.Similarity, error) {
	c, err := LoadCatalog(tracksPath)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to load catalog from %s", tracksPath)
	}

	s, err := LoadSimilarity(similarityPath)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to load similarity table from %s", similarityPath)
	}

	if err := catalog.Check(c, s); err != nil {
		return nil, nil, err
	}

	zlog.Info().Msgf("loaded artifacts: tracks=%d tracks_path=%s similarity_path=%s", c.Len(), tracksPath, similarityPath)
	return c, s, nil
}

// LoadCatalog reads a catalog from a .csv or .json file.
func LoadCatalog(path string) (*catalog.Catalog, error) {
	switch ext(path) {
	case ".csv":
		return loadCatalogCSV(path)
	case ".json":
		return loadCatalogJSON(path)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "catalog file %s", path)
	}
}

// LoadSimilarity reads a similarity table from a .npy or .json file.
func LoadSimilarity(path string) (*catalog.Similarity, error) {
	switch ext(path) {
	case ".npy":
		return loadSimilarityNPY(path)
	case ".json":
		return loadSimilarityJSON(path)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "similarity file %s", path)
	}
}

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
