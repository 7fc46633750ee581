package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/YuminosukeSato/id3/pkg/errors"
)

// CSVOptions controls ReadCSV.
type CSVOptions struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune
	// MissingMarker is the cell text read as nil. Empty disables the check.
	MissingMarker string
	// TrimSpace trims leading and trailing spaces from every cell.
	TrimSpace bool
	// Columns restricts the result to these header names. Empty keeps all.
	Columns []string
}

// ReadCSV parses a CSV stream whose first row names the columns. Every
// other row becomes a Sample with string values, or nil where the cell
// equals MissingMarker. It returns the samples and the kept column names in
// header order.
func ReadCSV(r io.Reader, opts CSVOptions) (Dataset, []string, error) {
	cr := csv.NewReader(r)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.TrimLeadingSpace = opts.TrimSpace

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, errors.Wrap(errors.ErrEmptyData, "reading header")
	}
	if err != nil {
		return nil, nil, errors.Wrap(err, "reading header")
	}

	keep, columns, err := selectColumns(header, opts)
	if err != nil {
		return nil, nil, err
	}

	var ds Dataset
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, errors.Wrapf(err, "reading line %d", line)
		}
		s := make(Sample, len(keep))
		for _, i := range keep {
			cell := row[i]
			if opts.TrimSpace {
				cell = strings.TrimSpace(cell)
			}
			if opts.MissingMarker != "" && cell == opts.MissingMarker {
				s[header[i]] = nil
				continue
			}
			s[header[i]] = cell
		}
		ds = append(ds, s)
	}
	return ds, columns, nil
}

// ReadCSVFile opens path and calls ReadCSV. An empty path reads stdin.
func ReadCSVFile(path string, opts CSVOptions) (Dataset, []string, error) {
	var f *os.File
	if path == "" {
		f = os.Stdin
	} else {
		var err error
		f, err = os.Open(path)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "opening %s", path)
		}
		defer f.Close()
	}
	ds, columns, err := ReadCSV(f, opts)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "parsing CSV file %s", path)
	}
	return ds, columns, nil
}

func selectColumns(header []string, opts CSVOptions) ([]int, []string, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		if opts.TrimSpace {
			name = strings.TrimSpace(name)
			header[i] = name
		}
		if _, dup := index[name]; dup {
			return nil, nil, errors.NewValidationError("header", "duplicate column name", name)
		}
		index[name] = i
	}

	if len(opts.Columns) == 0 {
		keep := make([]int, len(header))
		for i := range header {
			keep[i] = i
		}
		return keep, append([]string(nil), header...), nil
	}

	keep := make([]int, 0, len(opts.Columns))
	for _, name := range opts.Columns {
		i, ok := index[name]
		if !ok {
			return nil, nil, errors.NewValidationError("columns", "column not in header", name)
		}
		keep = append(keep, i)
	}
	sort.Ints(keep)
	columns := make([]string, len(keep))
	for j, i := range keep {
		columns[j] = header[i]
	}
	return keep, columns, nil
}
