// Package model defines the capability interfaces shared by estimators and
// the fitted-state bookkeeping they embed.
package model

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/id3/dataset"
)

// Fitter is the interface for models trained on labelled samples.
type Fitter interface {
	// Fit trains the model on ds using the given attributes and the label
	// stored under labelKey. Calling Fit again replaces the previous model.
	Fit(ds dataset.Dataset, attributes []string, labelKey string) error
}

// Predictor is the interface for models that label a single sample.
type Predictor interface {
	Predict(sample dataset.Sample) (any, error)
}

// BatchPredictor labels many samples, preserving their order.
type BatchPredictor interface {
	PredictBatch(samples []dataset.Sample) ([]any, error)
}

// Scorer is the interface for models that can compute a score.
type Scorer interface {
	// Score returns the mean accuracy on ds against the labels it carries.
	Score(ds dataset.Dataset) (float64, error)
}

// Classifier combines interfaces for classification models.
type Classifier interface {
	Fitter
	Predictor
	BatchPredictor
	Scorer

	// IsFitted reports whether a successful Fit has happened.
	IsFitted() bool
}

// MatrixClassifier is implemented by classifiers that also accept gonum
// matrices, treating every column as a categorical attribute.
type MatrixClassifier interface {
	FitMatrix(X, y mat.Matrix) error
	PredictMatrix(X mat.Matrix) (*mat.Dense, error)
	ScoreMatrix(X, y mat.Matrix) (float64, error)
}

// Transformer is the interface for preprocessing steps that learn from a
// matrix and then rewrite matrices with what they learned.
type Transformer interface {
	// Fit learns the transformation parameters.
	Fit(X mat.Matrix) error

	// Transform applies the learned transformation.
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform runs Fit then Transform on the same data.
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// ParameterGetter is the interface for models that expose their parameters.
type ParameterGetter interface {
	// GetParams returns the model's hyperparameters.
	GetParams() map[string]interface{}
}

// ParameterSetter is the interface for models that allow parameter modification.
type ParameterSetter interface {
	// SetParams sets the model's hyperparameters.
	SetParams(params map[string]interface{}) error
}
