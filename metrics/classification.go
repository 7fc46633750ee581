// Package metrics provides evaluation metrics for classifiers.
package metrics

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/id3/dataset"
	"github.com/YuminosukeSato/id3/pkg/errors"
)

// Accuracy は正解率（予測が一致した割合）を計算する
//
// ラベルは比較可能な任意の値。yTrue と yPred は同じ長さである必要がある。
func Accuracy(yTrue, yPred []any) (float64, error) {
	n := len(yTrue)
	if n == 0 {
		return 0, errors.NewValueError("Accuracy", "empty input")
	}
	if len(yPred) != n {
		return 0, errors.NewDimensionError("Accuracy", n, len(yPred), 0)
	}

	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// AccuracyMatrix は列ベクトル（n×1行列）同士の正解率を計算する
func AccuracyMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	rTrue, cTrue := yTrue.Dims()
	rPred, cPred := yPred.Dims()

	if rTrue == 0 || cTrue == 0 {
		return 0, errors.NewValueError("AccuracyMatrix", "empty matrix")
	}
	if rTrue != rPred || cTrue != cPred {
		return 0, errors.NewDimensionError("AccuracyMatrix", rTrue, rPred, 0)
	}
	if cTrue != 1 {
		return 0, errors.NewValueError("AccuracyMatrix", "must be a column vector (n×1 matrix)")
	}

	correct := 0
	for i := 0; i < rTrue; i++ {
		if yTrue.At(i, 0) == yPred.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(rTrue), nil
}

// ConfusionMatrix counts predictions per (true label, predicted label).
// Row i and column j correspond to Labels[i] and Labels[j].
type ConfusionMatrix struct {
	Labels []any
	Counts *mat.Dense

	index map[any]int
}

// NewConfusionMatrix tallies yTrue against yPred. When labels is empty the
// distinct values of both slices are used, in dataset.CompareValues order.
// A value missing from a non-empty labels list is a ValueError.
func NewConfusionMatrix(yTrue, yPred []any, labels []any) (*ConfusionMatrix, error) {
	n := len(yTrue)
	if n == 0 {
		return nil, errors.NewValueError("ConfusionMatrix", "empty input")
	}
	if len(yPred) != n {
		return nil, errors.NewDimensionError("ConfusionMatrix", n, len(yPred), 0)
	}

	if len(labels) == 0 {
		all := make([]any, 0, 2*n)
		all = append(all, yTrue...)
		all = append(all, yPred...)
		labels = dataset.Distinct(all)
	}

	cm := &ConfusionMatrix{
		Labels: append([]any(nil), labels...),
		Counts: mat.NewDense(len(labels), len(labels), nil),
		index:  make(map[any]int, len(labels)),
	}
	for i, l := range cm.Labels {
		cm.index[l] = i
	}

	for k := range yTrue {
		i, ok := cm.index[yTrue[k]]
		if !ok {
			return nil, errors.NewValueError("ConfusionMatrix", fmt.Sprintf("unknown label %v", yTrue[k]))
		}
		j, ok := cm.index[yPred[k]]
		if !ok {
			return nil, errors.NewValueError("ConfusionMatrix", fmt.Sprintf("unknown label %v", yPred[k]))
		}
		cm.Counts.Set(i, j, cm.Counts.At(i, j)+1)
	}
	return cm, nil
}

// Count returns how many samples labelled trueLabel were predicted as
// predLabel.
func (cm *ConfusionMatrix) Count(trueLabel, predLabel any) int {
	i, ok := cm.index[trueLabel]
	if !ok {
		return 0
	}
	j, ok := cm.index[predLabel]
	if !ok {
		return 0
	}
	return int(cm.Counts.At(i, j))
}

// Accuracy is the trace divided by the total.
func (cm *ConfusionMatrix) Accuracy() float64 {
	total := mat.Sum(cm.Counts)
	if total == 0 {
		return 0
	}
	return mat.Trace(cm.Counts) / total
}

// Precision returns TP / (TP + FP) for label, 0 when nothing was predicted
// as label.
func (cm *ConfusionMatrix) Precision(label any) float64 {
	j, ok := cm.index[label]
	if !ok {
		return 0
	}
	col := mat.Col(nil, j, cm.Counts)
	var predicted float64
	for _, v := range col {
		predicted += v
	}
	if predicted == 0 {
		return 0
	}
	return cm.Counts.At(j, j) / predicted
}

// Recall returns TP / (TP + FN) for label, 0 when label never occurs.
func (cm *ConfusionMatrix) Recall(label any) float64 {
	i, ok := cm.index[label]
	if !ok {
		return 0
	}
	row := mat.Row(nil, i, cm.Counts)
	var actual float64
	for _, v := range row {
		actual += v
	}
	if actual == 0 {
		return 0
	}
	return cm.Counts.At(i, i) / actual
}

// String renders the matrix as a small table, rows are true labels.
func (cm *ConfusionMatrix) String() string {
	var b strings.Builder
	b.WriteString("true\\pred")
	for _, l := range cm.Labels {
		fmt.Fprintf(&b, "\t%v", l)
	}
	b.WriteByte('\n')
	for i, l := range cm.Labels {
		fmt.Fprintf(&b, "%v", l)
		for j := range cm.Labels {
			fmt.Fprintf(&b, "\t%d", int(cm.Counts.At(i, j)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
