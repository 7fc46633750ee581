package tree

import (
	"github.com/YuminosukeSato/id3/dataset"
)

// Predict walks the tree for sample and returns the label it reaches. A
// missing attribute is read as nil. When a Split has no child for the
// sample's value, its Default is returned without looking further. A nil
// node predicts nil.
func Predict(node Node, sample dataset.Sample) any {
	label, _ := walk(node, sample, false)
	return label
}

// PredictPath is Predict that also returns every (attribute, value) pair
// consulted, including the last one when it fell back to a default.
func PredictPath(node Node, sample dataset.Sample) (any, []PathStep) {
	return walk(node, sample, true)
}

func walk(node Node, sample dataset.Sample, record bool) (any, []PathStep) {
	var path []PathStep
	for {
		switch n := node.(type) {
		case *Leaf:
			return n.Label, path
		case *Split:
			v := sample[n.Attribute]
			if record {
				path = append(path, PathStep{Attribute: n.Attribute, Value: v})
			}
			child, ok := n.Children[v]
			if !ok {
				return n.Default, path
			}
			node = child
		default:
			return nil, path
		}
	}
}
