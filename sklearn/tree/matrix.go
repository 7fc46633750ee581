package tree

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/id3/dataset"
	"github.com/YuminosukeSato/id3/metrics"
	"github.com/YuminosukeSato/id3/pkg/errors"
)

// MatrixLabelKey is the label key used by FitMatrix.
const MatrixLabelKey = "y"

// ColumnName returns the attribute name FitMatrix gives to column j.
func ColumnName(j int) string {
	return "x" + strconv.Itoa(j)
}

// FitMatrix fits on a matrix of already-discretized features. Column j
// becomes attribute "x<j>" and every cell is used as a categorical value;
// NaN cells are read as missing (nil). y must be a column vector of labels
// without NaN.
func (c *DecisionTreeClassifier) FitMatrix(X, y mat.Matrix) error {
	r, cols := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || cols == 0 {
		return errors.NewModelError("DecisionTreeClassifier.FitMatrix", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("DecisionTreeClassifier.FitMatrix", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("DecisionTreeClassifier.FitMatrix", "y must be a column vector")
	}

	names := make([]string, cols)
	for j := range names {
		names[j] = ColumnName(j)
	}
	ds := matrixSamples(X, names)
	for i := range ds {
		label := y.At(i, 0)
		if math.IsNaN(label) {
			return errors.NewValueError("DecisionTreeClassifier.FitMatrix", "y contains NaN")
		}
		ds[i][MatrixLabelKey] = dataset.CanonicalValue(label)
	}
	return c.Fit(ds, names, MatrixLabelKey)
}

// PredictMatrix predicts one label per row of X. The model must have been
// fitted with numeric labels, as FitMatrix does. NaN cells take the branch
// for missing values, or the Split default when none was seen.
func (c *DecisionTreeClassifier) PredictMatrix(X mat.Matrix) (*mat.Dense, error) {
	if _, err := c.snapshot("PredictMatrix"); err != nil {
		return nil, err
	}
	attrs := c.Attributes()
	r, cols := X.Dims()
	if cols != len(attrs) {
		return nil, errors.NewDimensionError("DecisionTreeClassifier.PredictMatrix", len(attrs), cols, 1)
	}

	preds, err := c.PredictBatch(matrixSamples(X, attrs))
	if err != nil {
		return nil, err
	}

	out := mat.NewDense(r, 1, nil)
	for i, p := range preds {
		f, ok := p.(float64)
		if !ok {
			return nil, errors.NewValueError("DecisionTreeClassifier.PredictMatrix",
				"model labels are not float64; use PredictBatch")
		}
		out.Set(i, 0, f)
	}
	return out, nil
}

// ScoreMatrix returns the accuracy of PredictMatrix(X) against y.
func (c *DecisionTreeClassifier) ScoreMatrix(X, y mat.Matrix) (float64, error) {
	ry, cy := y.Dims()
	r, _ := X.Dims()
	if ry != r {
		return 0, errors.NewDimensionError("DecisionTreeClassifier.ScoreMatrix", r, ry, 0)
	}
	if cy != 1 {
		return 0, errors.NewValueError("DecisionTreeClassifier.ScoreMatrix", "y must be a column vector")
	}
	pred, err := c.PredictMatrix(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyMatrix(y, pred)
}

func matrixSamples(X mat.Matrix, names []string) dataset.Dataset {
	r, _ := X.Dims()
	ds := make(dataset.Dataset, r)
	for i := 0; i < r; i++ {
		s := make(dataset.Sample, len(names)+1)
		for j, name := range names {
			s[name] = dataset.CanonicalValue(X.At(i, j))
		}
		ds[i] = s
	}
	return ds
}
