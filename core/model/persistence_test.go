package model

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type savedState struct {
	Name  string
	State ModelState
}

func TestSaveModelToWriterRoundTrip(t *testing.T) {
	in := savedState{Name: "tree", State: ModelState{Fitted: true, NAttributes: 2, NSamples: 14}}

	var buf bytes.Buffer
	require.NoError(t, SaveModelToWriter(in, &buf))

	var out savedState
	require.NoError(t, LoadModelFromReader(&out, &buf))
	assert.Equal(t, in, out)
}

func TestSaveLoadModelFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.gob")
	in := savedState{Name: "tree", State: ModelState{Fitted: true}}

	require.NoError(t, SaveModel(in, path))

	var out savedState
	require.NoError(t, LoadModel(&out, path))
	assert.Equal(t, in, out)
}

func TestPersistenceErrors(t *testing.T) {
	dir := t.TempDir()

	err := SaveModel(savedState{}, filepath.Join(dir, "missing", "state.gob"))
	assert.ErrorContains(t, err, "failed to create")

	err = LoadModel(&savedState{}, filepath.Join(dir, "absent.gob"))
	assert.ErrorContains(t, err, "failed to open")

	err = LoadModelFromReader(&savedState{}, bytes.NewReader([]byte("not gob")))
	assert.ErrorContains(t, err, "failed to decode model")
}
