// Package dataset holds the tabular data model used for tree induction:
// samples keyed by attribute name, datasets as ordered sample slices, a total
// order over attribute values, and loaders for CSV files and SQLite tables.
package dataset

import (
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/id3/pkg/errors"
)

// Sample maps attribute names to values. The label is stored under a
// caller-chosen key like any other attribute. A key may be absent; an
// explicit nil value is a valid value meaning "missing".
type Sample map[string]any

// Get returns the value stored under key or a MissingKeyError.
func (s Sample) Get(key string) (any, error) {
	v, ok := s[key]
	if !ok {
		return nil, errors.NewMissingKeyError("Sample.Get", key, -1)
	}
	return v, nil
}

// Lookup returns the value under key and whether it was present.
func (s Sample) Lookup(key string) (any, bool) {
	v, ok := s[key]
	return v, ok
}

// Clone returns a shallow copy of s.
func (s Sample) Clone() Sample {
	out := make(Sample, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Dataset is an ordered sequence of samples. Keys need not be uniform
// across samples.
type Dataset []Sample

// Len returns the number of samples.
func (d Dataset) Len() int { return len(d) }

// Values returns the value of key for every sample, in order. A sample
// without key yields a MissingKeyError carrying its row index.
func (d Dataset) Values(key string) ([]any, error) {
	out := make([]any, len(d))
	for i, s := range d {
		v, ok := s[key]
		if !ok {
			return nil, errors.NewMissingKeyError("Dataset.Values", key, i)
		}
		out[i] = v
	}
	return out, nil
}

// Labels is Values for the label key.
func (d Dataset) Labels(labelKey string) ([]any, error) {
	labels, err := d.Values(labelKey)
	if err != nil {
		var missing *errors.MissingKeyError
		if errors.As(err, &missing) {
			return nil, errors.NewMissingKeyError("Dataset.Labels", labelKey, missing.Row)
		}
		return nil, err
	}
	return labels, nil
}

// Keys returns the sorted union of keys over all samples.
func (d Dataset) Keys() []string {
	seen := map[string]struct{}{}
	for _, s := range d {
		for k := range s {
			seen[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Filter returns the samples for which keep returns true, in order. The
// samples are shared with d, not copied.
func (d Dataset) Filter(keep func(Sample) bool) Dataset {
	var out Dataset
	for _, s := range d {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

// Subset returns the samples at the given indices, in index order.
func (d Dataset) Subset(indices []int) Dataset {
	out := make(Dataset, len(indices))
	for i, idx := range indices {
		out[i] = d[idx]
	}
	return out
}

// NumericMatrix converts the given columns into a dense matrix, one row per
// sample. Numbers and numeric strings are accepted; nil, an absent key or an
// empty string become NaN. Anything else is a ValueError.
func (d Dataset) NumericMatrix(columns []string) (*mat.Dense, error) {
	if len(d) == 0 || len(columns) == 0 {
		return nil, errors.WithStack(errors.ErrEmptyData)
	}
	m := mat.NewDense(len(d), len(columns), nil)
	for i, s := range d {
		for j, c := range columns {
			f, err := toFloat(s[c])
			if err != nil {
				return nil, errors.Wrapf(err, "row %d column %q", i, c)
			}
			m.Set(i, j, f)
		}
	}
	return m, nil
}

// WithBins returns a copy of d where each of columns is replaced by the
// integer bin id found in the matching column of m. NaN entries in m become
// nil. m must have one row per sample and one column per name.
func (d Dataset) WithBins(columns []string, m mat.Matrix) (Dataset, error) {
	r, c := m.Dims()
	if r != len(d) {
		return nil, errors.NewDimensionError("Dataset.WithBins", len(d), r, 0)
	}
	if c != len(columns) {
		return nil, errors.NewDimensionError("Dataset.WithBins", len(columns), c, 1)
	}
	out := make(Dataset, len(d))
	for i, s := range d {
		ns := s.Clone()
		for j, name := range columns {
			v := m.At(i, j)
			if math.IsNaN(v) {
				ns[name] = nil
				continue
			}
			ns[name] = int(v)
		}
		out[i] = ns
	}
	return out, nil
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case nil:
		return math.NaN(), nil
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case string:
		if x == "" {
			return math.NaN(), nil
		}
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, errors.NewValueError("NumericMatrix", "non-numeric value "+strconv.Quote(x))
		}
		return f, nil
	default:
		return 0, errors.Wrapf(errors.ErrUnsupportedValue, "NumericMatrix: %T", v)
	}
}
