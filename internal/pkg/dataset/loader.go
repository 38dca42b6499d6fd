package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"bankdash/internal/pkg/config"
)

// Loader reads the delimited input file into a [Dataset], enforcing the
// configured schema.
//
// Numeric parsing is strict: a non-numeric or missing value in a flag or
// measure column is a load error, so aggregations never see bad data.
type Loader struct {
	options

	cfg *config.Config
	l   *slog.Logger
}

// NewLoader builds a [Loader] for the configured schema.
func NewLoader(cfg *config.Config, opts ...Option) *Loader {
	return &Loader{
		options: optionsWithDefaults(opts),
		cfg:     cfg,
		l:       slog.Default().With(slog.String("module", "dataset")),
	}
}

// LoadFile loads the dataset from a file on the local file system.
func (ld *Loader) LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	return ld.Read(f, path)
}

// Read loads the dataset from a reader. The source string is kept for
// reporting only.
func (ld *Loader) Read(r io.Reader, source string) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.Comma = ld.Comma

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", source, err)
	}

	columns, err := ld.mapColumns(header, source)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0)
	for row := 2; ; row++ { // row 1 is the header
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s row %d: %w", source, row, err)
		}

		rec, err := ld.parseRecord(fields, columns, source, row)
		if err != nil {
			return nil, err
		}

		records = append(records, rec)
	}

	ld.l.Info("loaded dataset",
		slog.String("source", source),
		slog.Int("rows", len(records)),
		slog.Int("columns", len(columns)),
	)

	return New(ld.cfg, records, source), nil
}

type column struct {
	name  string
	index int
	kind  config.FieldKind
	isKey bool
}

// mapColumns binds every declared schema column to its header position.
// A declared column missing from the header is a fatal lookup error.
func (ld *Loader) mapColumns(header []string, source string) ([]column, error) {
	position := make(map[string]int, len(header))
	for i, name := range header {
		position[strings.TrimSpace(name)] = i
	}

	schema := ld.cfg.Dataset
	columns := make([]column, 0, len(schema.Dimensions)+len(schema.Flags)+len(schema.Measures)+1)

	bind := func(name string, kind config.FieldKind, isKey bool) error {
		idx, ok := position[name]
		if !ok {
			return fmt.Errorf("column %q not found in header of %s", name, source)
		}
		columns = append(columns, column{name: name, index: idx, kind: kind, isKey: isKey})

		return nil
	}

	for _, name := range schema.Dimensions {
		if err := bind(name, config.FieldDimension, false); err != nil {
			return nil, err
		}
	}
	for _, name := range schema.Flags {
		if err := bind(name, config.FieldFlag, false); err != nil {
			return nil, err
		}
	}
	for _, name := range schema.Measures {
		if err := bind(name, config.FieldMeasure, false); err != nil {
			return nil, err
		}
	}
	if schema.Key != "" {
		if err := bind(schema.Key, config.FieldDimension, true); err != nil {
			return nil, err
		}
	}

	// columns present in the file but not declared are ignored
	return columns, nil
}

func (ld *Loader) parseRecord(fields []string, columns []column, source string, row int) (Record, error) {
	rec := Record{
		Categories: make(map[string]string),
		Values:     make(map[string]float64),
	}

	for _, col := range columns {
		if col.index >= len(fields) {
			return rec, fmt.Errorf("%s row %d: missing value for column %q", source, row, col.name)
		}
		raw := strings.TrimSpace(fields[col.index])

		if col.isKey {
			rec.Key = raw

			continue
		}

		switch col.kind {
		case config.FieldDimension:
			rec.Categories[col.name] = raw
		case config.FieldFlag, config.FieldMeasure:
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return rec, fmt.Errorf("%s row %d: column %q: non-numeric value %q", source, row, col.name, raw)
			}
			rec.Values[col.name] = v
		}
	}

	return rec, nil
}

// Discover reads a delimited file without a schema and infers one: numeric
// columns whose observed values are all 0 or 1 become flags, other numeric
// columns become measures, the rest become dimensions. A column whose name
// ends in "_id" becomes the row key.
//
// The result feeds [config.Generate].
func Discover(r io.Reader, source string, opts ...Option) (config.GenerateInput, error) {
	o := optionsWithDefaults(opts)

	reader := csv.NewReader(r)
	reader.Comma = o.Comma

	header, err := reader.Read()
	if err != nil {
		return config.GenerateInput{}, fmt.Errorf("reading header of %s: %w", source, err)
	}

	names := make([]string, len(header))
	for i, name := range header {
		names[i] = strings.TrimSpace(name)
	}

	numeric := make([]bool, len(names))
	binary := make([]bool, len(names))
	for i := range names {
		numeric[i] = true
		binary[i] = true
	}

	rows := 0
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return config.GenerateInput{}, fmt.Errorf("reading %s: %w", source, err)
		}
		rows++

		for i := range names {
			if i >= len(fields) {
				continue
			}
			raw := strings.TrimSpace(fields[i])
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				numeric[i] = false
				binary[i] = false

				continue
			}
			if v != 0 && v != 1 {
				binary[i] = false
			}
		}
	}

	if rows == 0 {
		return config.GenerateInput{}, fmt.Errorf("no data rows in %s", source)
	}

	input := config.GenerateInput{File: source}
	for i, name := range names {
		switch {
		case input.Key == "" && strings.HasSuffix(name, "_id"):
			input.Key = name
		case numeric[i] && binary[i]:
			input.Flags = append(input.Flags, name)
		case numeric[i]:
			input.Measures = append(input.Measures, name)
		default:
			input.Dimensions = append(input.Dimensions, name)
		}
	}

	return input, nil
}
