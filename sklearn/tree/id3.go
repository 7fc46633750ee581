package tree

import (
	"context"

	"github.com/emirpasic/gods/sets/treeset"

	"github.com/YuminosukeSato/id3/core/parallel"
	"github.com/YuminosukeSato/id3/dataset"
	"github.com/YuminosukeSato/id3/pkg/errors"
	"github.com/YuminosukeSato/id3/pkg/log"
)

// BuildOption configures Build.
type BuildOption func(*buildConfig)

type buildConfig struct {
	parallelThreshold int
	logger            log.Logger
}

// WithParallelThreshold builds sibling subtrees concurrently whenever the
// samples reaching a Split number at least n. Zero disables fan-out. The
// tree is the same either way.
func WithParallelThreshold(n int) BuildOption {
	return func(c *buildConfig) { c.parallelThreshold = n }
}

// WithBuildLogger logs every chosen split at debug level.
func WithBuildLogger(l log.Logger) BuildOption {
	return func(c *buildConfig) { c.logger = l }
}

// Build grows an ID3 tree over ds using the candidate attributes and the
// label stored under labelKey.
//
// The boolean is false, with a nil node and no error, when ds is empty.
// Callers inside the recursion replace that signal with the parent's
// default label; at the top level it means no tree could be built.
//
// At each node the rules apply in order: a single label makes a Leaf; no
// remaining attributes make a Leaf with the majority label; otherwise the
// attribute with the highest information gain becomes a Split whose default
// is the majority label, with one child per observed value.
func Build(ds dataset.Dataset, attributes []string, labelKey string, opts ...BuildOption) (node Node, ok bool, err error) {
	cfg := buildConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	defer errors.Recover(&err, "tree.Build")

	return build(ds, append([]string(nil), attributes...), labelKey, &cfg, 0)
}

func build(ds dataset.Dataset, attributes []string, labelKey string, cfg *buildConfig, depth int) (Node, bool, error) {
	if len(ds) == 0 {
		return nil, false, nil
	}

	labels, err := ds.Labels(labelKey)
	if err != nil {
		return nil, false, err
	}
	for i, l := range labels {
		if dataset.IsNaN(l) {
			return nil, false, errors.NewValueError("Build", nanMessage(i))
		}
	}
	majority, pure := majorityLabel(labels)
	if pure {
		return &Leaf{Label: labels[0]}, true, nil
	}
	if len(attributes) == 0 {
		return &Leaf{Label: majority}, true, nil
	}

	sel, err := SelectAttribute(ds, attributes, labelKey)
	if err != nil {
		return nil, false, err
	}
	best := sel.Attribute

	if cfg.logger != nil && cfg.logger.Enabled(context.Background(), log.LevelDebug) {
		cfg.logger.Debug("split selected",
			"tree.attribute", best,
			"tree.gain", sel.Gains[best],
			log.DepthKey, depth,
			log.SamplesKey, len(ds),
		)
	}

	values := treeset.NewWith(dataset.CompareValues)
	subsets := make(map[any]dataset.Dataset)
	for i, s := range ds {
		v, ok := s[best]
		if !ok {
			return nil, false, errors.NewMissingKeyError("Build", best, i)
		}
		if dataset.IsNaN(v) {
			return nil, false, errors.NewValueError("Build", nanMessage(i))
		}
		values.Add(v)
		subsets[v] = append(subsets[v], s)
	}

	remaining := make([]string, 0, len(attributes)-1)
	for _, a := range attributes {
		if a != best {
			remaining = append(remaining, a)
		}
	}

	ordered := values.Values()
	children := make([]Node, len(ordered))
	threshold := 0
	if cfg.parallelThreshold > 0 && len(ds) >= cfg.parallelThreshold {
		threshold = 1
	}
	err = parallel.ForEach(len(ordered), threshold, func(i int) error {
		return errors.SafeExecute("tree.Build", func() error {
			child, ok, err := build(subsets[ordered[i]], remaining, labelKey, cfg, depth+1)
			if err != nil {
				return err
			}
			if !ok {
				child = &Leaf{Label: majority}
			}
			children[i] = child
			return nil
		})
	})
	if err != nil {
		return nil, false, err
	}

	split := &Split{
		Attribute: best,
		Default:   majority,
		Values:    ordered,
		Children:  make(map[any]Node, len(ordered)),
	}
	for i, v := range ordered {
		split.Children[v] = children[i]
	}
	return split, true, nil
}

// majorityLabel returns the most frequent label and whether it is the only
// one. Ties go to the smallest label in dataset.CompareValues order.
func majorityLabel(labels []any) (any, bool) {
	counts := make(map[any]int)
	var distinct []any
	for _, l := range labels {
		if _, seen := counts[l]; !seen {
			distinct = append(distinct, l)
		}
		counts[l]++
	}
	dataset.SortValues(distinct)

	var majority any
	best := -1
	for _, l := range distinct {
		if counts[l] > best {
			majority, best = l, counts[l]
		}
	}
	return majority, len(distinct) == 1
}
