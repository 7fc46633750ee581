package tree

import (
	"github.com/YuminosukeSato/id3/dataset"
)

// Node is a built decision-tree node: either *Leaf or *Split. Nodes are
// created bottom-up by Build and never modified afterwards.
type Node interface {
	isNode()
}

// Leaf is a terminal node carrying the predicted label.
type Leaf struct {
	Label any
}

// Split is an internal node testing one attribute.
type Split struct {
	// Attribute is the sample key this node tests.
	Attribute string
	// Default is the majority label of the training samples that reached
	// this node. It is returned when a sample's value has no child.
	Default any
	// Values lists the child keys in dataset.CompareValues order.
	Values []any
	// Children maps an observed attribute value to its subtree.
	Children map[any]Node
}

func (*Leaf) isNode()  {}
func (*Split) isNode() {}

// Child returns the subtree for value v, if one was trained.
func (s *Split) Child(v any) (Node, bool) {
	child, ok := s.Children[v]
	return child, ok
}

// PathStep records one Split consulted during prediction: the attribute
// and the value the sample carried for it (nil when absent).
type PathStep struct {
	Attribute string
	Value     any
}

// Depth returns the number of Split nodes on the longest root-to-leaf path.
// A nil node or a single Leaf has depth 0.
func Depth(n Node) int {
	s, ok := n.(*Split)
	if !ok {
		return 0
	}
	deepest := 0
	for _, v := range s.Values {
		if d := Depth(s.Children[v]); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}

// CountLeaves returns the number of leaves under n.
func CountLeaves(n Node) int {
	switch node := n.(type) {
	case *Leaf:
		return 1
	case *Split:
		total := 0
		for _, v := range node.Values {
			total += CountLeaves(node.Children[v])
		}
		return total
	default:
		return 0
	}
}

// Equal reports whether a and b have the same shape, attributes, values,
// defaults and leaf labels.
func Equal(a, b Node) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case *Leaf:
		y, ok := b.(*Leaf)
		return ok && x.Label == y.Label
	case *Split:
		y, ok := b.(*Split)
		if !ok || x.Attribute != y.Attribute || x.Default != y.Default ||
			len(x.Values) != len(y.Values) || len(x.Children) != len(y.Children) {
			return false
		}
		for i, v := range x.Values {
			if dataset.CompareValues(v, y.Values[i]) != 0 {
				return false
			}
			if !Equal(x.Children[v], y.Children[y.Values[i]]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
