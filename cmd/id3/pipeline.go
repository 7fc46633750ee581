package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/YuminosukeSato/id3/dataset"
	"github.com/YuminosukeSato/id3/pkg/errors"
	"github.com/YuminosukeSato/id3/preprocessing"
	"github.com/YuminosukeSato/id3/sklearn/tree"
)

// bundle is the file written by fit and read by predict: the tree plus the
// bin edges its numeric attributes were discretized with.
type bundle struct {
	Tree *tree.DecisionTreeClassifier `json:"tree"`
	Bins *binning                     `json:"bins,omitempty"`
}

type binning struct {
	Columns     []string                        `json:"columns"`
	Discretizer *preprocessing.KBinsDiscretizer `json:"discretizer"`
}

// fitBinning learns bin edges for cfg.Columns on ds. It returns nil when no
// column is to be discretized.
func fitBinning(cfg DiscretizeConfig, ds dataset.Dataset) (*binning, error) {
	if len(cfg.Columns) == 0 {
		return nil, nil
	}
	method, err := preprocessing.ParseQuantileMethod(cfg.Method)
	if err != nil {
		return nil, err
	}
	X, err := ds.NumericMatrix(cfg.Columns)
	if err != nil {
		return nil, errors.Wrap(err, "reading numeric columns")
	}
	d := preprocessing.NewKBinsDiscretizer(cfg.Bins, method)
	if err := d.Fit(X); err != nil {
		return nil, err
	}
	return &binning{Columns: cfg.Columns, Discretizer: d}, nil
}

// apply replaces the binned columns of ds with their bin ids. A nil
// binning returns ds unchanged.
func (b *binning) apply(ds dataset.Dataset) (dataset.Dataset, error) {
	if b == nil || len(ds) == 0 {
		return ds, nil
	}
	X, err := ds.NumericMatrix(b.Columns)
	if err != nil {
		return nil, errors.Wrap(err, "reading numeric columns")
	}
	binned, err := b.Discretizer.Transform(X)
	if err != nil {
		return nil, err
	}
	return ds.WithBins(b.Columns, binned)
}

// train discretizes ds, fits a classifier on it and returns both.
func train(cfg *Config, ds dataset.Dataset, attributes []string) (*bundle, error) {
	bins, err := fitBinning(cfg.Discretize, ds)
	if err != nil {
		return nil, err
	}
	binned, err := bins.apply(ds)
	if err != nil {
		return nil, err
	}
	clf := tree.NewDecisionTreeClassifier(tree.WithParallel(cfg.Model.ParallelThreshold))
	if err := clf.Fit(binned, attributes, cfg.Data.Label); err != nil {
		return nil, err
	}
	return &bundle{Tree: clf, Bins: bins}, nil
}

func writeBundle(w io.Writer, b *bundle) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(b), "encoding model")
}

func saveBundle(path string, b *bundle, stdout io.Writer) error {
	if path == "" || path == "-" {
		return writeBundle(stdout, b)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	if err := writeBundle(f, b); err != nil {
		_ = f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "closing %s", path)
}

func loadBundle(path string) (*bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading model %s", path)
	}
	var b bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, errors.Wrapf(err, "decoding model %s", path)
	}
	if b.Tree == nil {
		return nil, errors.NewValueError("loadBundle", "model file has no tree")
	}
	if b.Bins != nil && b.Bins.Discretizer == nil {
		return nil, errors.NewValueError("loadBundle", "bins without a discretizer")
	}
	return &b, nil
}
