package artifact

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"

	"github.com/osa030/stairway/internal/domain/catalog"
)

func loadCatalogCSV(path string) (*catalog.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open catalog file")
	}
	defer f.Close()

	return readCatalogCSV(f)
}

func readCatalogCSV(r io.Reader) (*catalog.Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read catalog header")
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	nameCol := -1
	for i, h := range header {
		if strings.TrimSpace(h) == TrackNameColumn {
			nameCol = i
			break
		}
	}
	if nameCol < 0 {
		return nil, errors.Newf("catalog has no %q column", TrackNameColumn)
	}

	var names []string
	var fields []map[string]string
	for row := 1; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read catalog row %d", row)
		}
		if nameCol >= len(record) {
			return nil, errors.Newf("catalog row %d has no %q value", row, TrackNameColumn)
		}

		extra := make(map[string]string, len(header)-1)
		for i, value := range record {
			if i == nameCol || i >= len(header) || header[i] == "" {
				continue
			}
			extra[header[i]] = value
		}
		names = append(names, record[nameCol])
		fields = append(fields, extra)
	}

	return catalog.New(names, fields)
}

func loadCatalogJSON(path string) (*catalog.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read catalog file")
	}
	return parseCatalogJSON(data)
}

// parseCatalogJSON parses an array of records, each with a track_name string.
func parseCatalogJSON(data []byte) (*catalog.Catalog, error) {
	var records []map[string]json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrap(err, "failed to parse catalog records")
	}

	names := make([]string, 0, len(records))
	fields := make([]map[string]string, 0, len(records))
	for i, record := range records {
		raw, ok := record[TrackNameColumn]
		if !ok {
			return nil, errors.Newf("catalog record %d has no %q field", i, TrackNameColumn)
		}
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return nil, errors.Wrapf(err, "catalog record %d: %q is not a string", i, TrackNameColumn)
		}

		extra := make(map[string]string, len(record)-1)
		for key, value := range record {
			if key == TrackNameColumn {
				continue
			}
			extra[key] = rawString(value)
		}
		names = append(names, name)
		fields = append(fields, extra)
	}

	return catalog.New(names, fields)
}

// rawString returns JSON strings unquoted and any other value as its JSON text.
func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
