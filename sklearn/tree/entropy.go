package tree

import (
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/id3/dataset"
	"github.com/YuminosukeSato/id3/pkg/errors"
)

// Entropy returns the Shannon entropy, in bits, of the label multiset.
// An empty sequence has entropy 0. Labels must be comparable.
//
// The probability vector is summed in ascending order, so the result does
// not depend on the order of labels or on how they are named.
func Entropy(labels []any) float64 {
	if len(labels) == 0 {
		return 0
	}
	counts := make(map[any]int)
	for _, l := range labels {
		counts[l]++
	}
	return entropyOfCounts(counts, len(labels))
}

func entropyOfCounts(counts map[any]int, n int) float64 {
	if len(counts) <= 1 {
		return 0
	}
	p := make([]float64, 0, len(counts))
	for _, c := range counts {
		p = append(p, float64(c)/float64(n))
	}
	sort.Float64s(p)
	h := stat.Entropy(p) / math.Ln2
	if h <= 0 {
		return 0
	}
	return h
}

// SplitEntropy returns H(S|A): the entropy of the labels within each group
// of samples sharing a value of attribute, weighted by group size. Groups
// are summed in dataset.CompareValues order. A sample lacking attribute or
// labelKey yields a MissingKeyError; nil is an ordinary value.
func SplitEntropy(ds dataset.Dataset, attribute, labelKey string) (float64, error) {
	if len(ds) == 0 {
		return 0, nil
	}

	groups := make(map[any][]any)
	var values []any
	for i, s := range ds {
		v, ok := s[attribute]
		if !ok {
			return 0, errors.NewMissingKeyError("SplitEntropy", attribute, i)
		}
		label, ok := s[labelKey]
		if !ok {
			return 0, errors.NewMissingKeyError("SplitEntropy", labelKey, i)
		}
		if dataset.IsNaN(v) || dataset.IsNaN(label) {
			return 0, errors.NewValueError("SplitEntropy", nanMessage(i))
		}
		if _, seen := groups[v]; !seen {
			values = append(values, v)
		}
		groups[v] = append(groups[v], label)
	}
	dataset.SortValues(values)

	n := float64(len(ds))
	var h float64
	for _, v := range values {
		g := groups[v]
		h += float64(len(g)) / n * Entropy(g)
	}
	return h, nil
}

func nanMessage(row int) string {
	return "NaN in row " + strconv.Itoa(row) + " cannot be used as a category"
}

// InformationGain returns H(S) - H(S|A) for attribute over ds.
//
// The result is not clamped; floating-point rounding can make it a tiny
// negative number when the attribute carries no information.
func InformationGain(ds dataset.Dataset, attribute, labelKey string) (float64, error) {
	labels, err := ds.Labels(labelKey)
	if err != nil {
		return 0, err
	}
	conditional, err := SplitEntropy(ds, attribute, labelKey)
	if err != nil {
		return 0, err
	}
	return Entropy(labels) - conditional, nil
}
