package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/id3/dataset"
	"github.com/YuminosukeSato/id3/pkg/errors"
)

func TestSelectAttributeWeather(t *testing.T) {
	sel, err := SelectAttribute(weather(), []string{humidity, outlook}, play)
	require.NoError(t, err)

	assert.True(t, sel.OK)
	assert.Equal(t, outlook, sel.Attribute)
	require.Len(t, sel.Gains, 2)
	assert.InDelta(t, 0.24674981977443933, sel.Gains[outlook], 1e-12)
	assert.InDelta(t, 0.15183550136234159, sel.Gains[humidity], 1e-12)
}

func TestSelectAttributeNothingToSelect(t *testing.T) {
	sel, err := SelectAttribute(nil, []string{outlook}, play)
	require.NoError(t, err)
	assert.False(t, sel.OK)
	assert.Empty(t, sel.Attribute)
	assert.Empty(t, sel.Gains)

	sel, err = SelectAttribute(weather(), nil, play)
	require.NoError(t, err)
	assert.False(t, sel.OK)
	assert.Empty(t, sel.Gains)
}

func TestSelectAttributeTieGoesToFirst(t *testing.T) {
	// a and b carry identical information, c carries none.
	ds := dataset.Dataset{
		{"a": 1, "b": "x", "c": true, "y": "p"},
		{"a": 1, "b": "x", "c": false, "y": "p"},
		{"a": 2, "b": "z", "c": true, "y": "q"},
		{"a": 2, "b": "z", "c": false, "y": "q"},
	}

	sel, err := SelectAttribute(ds, []string{"a", "b", "c"}, "y")
	require.NoError(t, err)
	assert.Equal(t, "a", sel.Attribute)
	assert.Equal(t, sel.Gains["a"], sel.Gains["b"])

	sel, err = SelectAttribute(ds, []string{"c", "b", "a"}, "y")
	require.NoError(t, err)
	assert.Equal(t, "b", sel.Attribute)
}

func TestSelectAttributeZeroGainStillSelects(t *testing.T) {
	ds := dataset.Dataset{
		{"k": "same", "y": "p"},
		{"k": "same", "y": "q"},
	}
	sel, err := SelectAttribute(ds, []string{"k"}, "y")
	require.NoError(t, err)
	assert.True(t, sel.OK)
	assert.Equal(t, "k", sel.Attribute)
	assert.InDelta(t, 0.0, sel.Gains["k"], 1e-12)
}

func TestSelectAttributeMissingKey(t *testing.T) {
	ds := weather()
	_, err := SelectAttribute(ds, []string{outlook, "Wind"}, play)

	var missing *errors.MissingKeyError
	require.True(t, errors.As(err, &missing), "got %v", err)
	assert.Equal(t, "Wind", missing.Key)
	assert.Equal(t, 0, missing.Row)
}
