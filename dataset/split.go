package dataset

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/YuminosukeSato/id3/pkg/errors"
)

// SplitOptions controls TrainTestSplit.
type SplitOptions struct {
	// TestSize is the fraction of samples placed in the test set, in (0, 1).
	TestSize float64
	// Seed makes the shuffle reproducible.
	Seed uint64
	// StratifyBy, when set, keeps the proportion of each value of this key
	// (usually the label) roughly equal in both sets.
	StratifyBy string
}

// TrainTestSplit shuffles ds with a seeded PCG source and splits it in two.
// Without stratification the test set has ceil(TestSize*n) samples. With
// stratification every group of equal StratifyBy values contributes
// round(TestSize*len(group)) samples. Both outputs keep the input order.
func TrainTestSplit(ds Dataset, opts SplitOptions) (train, test Dataset, err error) {
	if len(ds) == 0 {
		return nil, nil, errors.WithStack(errors.ErrEmptyData)
	}
	if !(opts.TestSize > 0 && opts.TestSize < 1) {
		return nil, nil, errors.NewValidationError("test_size", "must be in (0, 1)", opts.TestSize)
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	var testIdx []int
	if opts.StratifyBy == "" {
		perm := rng.Perm(len(ds))
		nTest := int(math.Ceil(opts.TestSize * float64(len(ds))))
		testIdx = perm[:nTest]
	} else {
		groups, err := groupIndices(ds, opts.StratifyBy)
		if err != nil {
			return nil, nil, err
		}
		for _, g := range groups {
			rng.Shuffle(len(g), func(i, j int) { g[i], g[j] = g[j], g[i] })
			nTest := int(math.Round(opts.TestSize * float64(len(g))))
			testIdx = append(testIdx, g[:nTest]...)
		}
	}

	inTest := make([]bool, len(ds))
	for _, i := range testIdx {
		inTest[i] = true
	}
	for i, s := range ds {
		if inTest[i] {
			test = append(test, s)
		} else {
			train = append(train, s)
		}
	}
	return train, test, nil
}

// KFold returns k folds of row indices of ds, shuffled with seed. Each index
// appears in exactly one fold; fold sizes differ by at most one. Indices
// inside a fold are ascending.
func KFold(n, k int, seed uint64) ([][]int, error) {
	if k < 2 || k > n {
		return nil, errors.NewValidationError("folds", "must be in [2, n_samples]", k)
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	perm := rng.Perm(n)
	folds := make([][]int, k)
	for i, idx := range perm {
		folds[i%k] = append(folds[i%k], idx)
	}
	for _, f := range folds {
		sort.Ints(f)
	}
	return folds, nil
}

// groupIndices groups row indices by the value of key, groups ordered by
// CompareValues on that value so the shuffle sequence is reproducible.
func groupIndices(ds Dataset, key string) ([][]int, error) {
	byValue := map[any][]int{}
	var values []any
	for i, s := range ds {
		v, ok := s[key]
		if !ok {
			return nil, errors.NewMissingKeyError("TrainTestSplit", key, i)
		}
		if _, seen := byValue[v]; !seen {
			values = append(values, v)
		}
		byValue[v] = append(byValue[v], i)
	}
	SortValues(values)
	groups := make([][]int, len(values))
	for i, v := range values {
		groups[i] = byValue[v]
	}
	return groups, nil
}
