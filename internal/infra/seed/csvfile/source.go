// Package csvfile decodes house records from comma-separated text with a
// header row, and loads them from a local file.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"housingapi/pkg/domain"
	"io"
	"os"
	"strings"
)

// DefaultPath is the data file read when no path is configured.
const DefaultPath = "data/house_pricing.csv"

// Source loads houses from a CSV file on disk.
type Source struct {
	path string
}

// New constructs a file source; an empty path falls back to DefaultPath.
func New(path string) *Source {
	if path == "" {
		path = DefaultPath
	}
	return &Source{path: path}
}

// Path returns the configured file path.
func (s *Source) Path() string { return s.path }

// Load opens and decodes the file.
func (s *Source) Load(ctx context.Context) ([]domain.House, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open csv source: %w", err)
	}
	defer func() { _ = f.Close() }()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Decode(f)
}

// Decode reads a header row followed by one house per row. Columns are
// matched by name, so order is free and unknown columns (an existing id
// column included) are ignored. Every schema column must be present.
func Decode(r io.Reader) ([]domain.House, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("csv source: missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("csv source: read header: %w", err)
	}
	positions, err := columnPositions(header)
	if err != nil {
		return nil, err
	}

	var houses []domain.House
	for row := 1; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv source: row %d: %w", row, err)
		}
		var h domain.House
		for i, f := range domain.Fields {
			if err := f.Parse(&h, record[positions[i]]); err != nil {
				return nil, fmt.Errorf("csv source: row %d column %s: %w", row, f.Name, err)
			}
		}
		houses = append(houses, h)
	}
	return houses, nil
}

func columnPositions(header []string) ([]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	positions := make([]int, len(domain.Fields))
	var missing []string
	for i, f := range domain.Fields {
		pos, ok := index[f.Name]
		if !ok {
			missing = append(missing, f.Name)
			continue
		}
		positions[i] = pos
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("csv source: missing columns %s", strings.Join(missing, ", "))
	}
	return positions, nil
}
