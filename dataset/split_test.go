package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/id3/pkg/errors"
)

func weather(t *testing.T) Dataset {
	t.Helper()
	ds, _, err := ReadCSVFile("testdata/weather.csv", CSVOptions{})
	require.NoError(t, err)
	return ds
}

func countLabel(ds Dataset, label string) int {
	n := 0
	for _, s := range ds {
		if s["Play"] == label {
			n++
		}
	}
	return n
}

func TestTrainTestSplitSizes(t *testing.T) {
	ds := weather(t)

	train, test, err := TrainTestSplit(ds, SplitOptions{TestSize: 0.3, Seed: 42})
	require.NoError(t, err)
	assert.Len(t, test, 5)
	assert.Len(t, train, 9)
}

func TestTrainTestSplitStratified(t *testing.T) {
	ds := weather(t)

	train, test, err := TrainTestSplit(ds, SplitOptions{TestSize: 0.3, Seed: 7, StratifyBy: "Play"})
	require.NoError(t, err)

	// 9 Yes and 5 No: round(2.7)=3 and round(1.5)=2 go to test.
	assert.Equal(t, 3, countLabel(test, "Yes"))
	assert.Equal(t, 2, countLabel(test, "No"))
	assert.Equal(t, 6, countLabel(train, "Yes"))
	assert.Equal(t, 3, countLabel(train, "No"))
}

func TestTrainTestSplitDeterministic(t *testing.T) {
	ds := weather(t)
	opts := SplitOptions{TestSize: 0.25, Seed: 1234, StratifyBy: "Play"}

	train1, test1, err := TrainTestSplit(ds, opts)
	require.NoError(t, err)
	train2, test2, err := TrainTestSplit(ds, opts)
	require.NoError(t, err)

	assert.Equal(t, train1, train2)
	assert.Equal(t, test1, test2)
	assert.Equal(t, len(ds), len(train1)+len(test1))
}

func TestTrainTestSplitErrors(t *testing.T) {
	ds := weather(t)

	_, _, err := TrainTestSplit(nil, SplitOptions{TestSize: 0.3})
	assert.True(t, errors.Is(err, errors.ErrEmptyData))

	for _, size := range []float64{0, 1, -0.1, 1.5} {
		_, _, err = TrainTestSplit(ds, SplitOptions{TestSize: size})
		var verr *errors.ValidationError
		assert.True(t, errors.As(err, &verr), "size %v", size)
	}

	_, _, err = TrainTestSplit(ds, SplitOptions{TestSize: 0.3, StratifyBy: "Wind"})
	var missing *errors.MissingKeyError
	assert.True(t, errors.As(err, &missing))
}

func TestKFold(t *testing.T) {
	folds, err := KFold(14, 3, 99)
	require.NoError(t, err)
	require.Len(t, folds, 3)

	seen := map[int]int{}
	for _, f := range folds {
		assert.True(t, len(f) == 4 || len(f) == 5)
		for i := 1; i < len(f); i++ {
			assert.Less(t, f[i-1], f[i])
		}
		for _, idx := range f {
			seen[idx]++
		}
	}
	assert.Len(t, seen, 14)
	for idx, n := range seen {
		assert.Equal(t, 1, n, "index %d", idx)
	}

	_, err = KFold(3, 5, 0)
	assert.Error(t, err)
	_, err = KFold(10, 1, 0)
	assert.Error(t, err)
}
