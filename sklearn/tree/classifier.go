// Package tree implements ID3 decision-tree induction over categorical
// attributes: entropy, conditional entropy, information gain, attribute
// selection, tree building and prediction, wrapped by DecisionTreeClassifier.
package tree

import (
	"sync"
	"time"

	"github.com/YuminosukeSato/id3/core/model"
	"github.com/YuminosukeSato/id3/core/parallel"
	"github.com/YuminosukeSato/id3/dataset"
	"github.com/YuminosukeSato/id3/metrics"
	"github.com/YuminosukeSato/id3/pkg/errors"
	"github.com/YuminosukeSato/id3/pkg/log"
)

const modelName = "DecisionTreeClassifier"

// DecisionTreeClassifier is an ID3 classifier over samples keyed by
// attribute name. A fitted classifier is safe for concurrent prediction.
type DecisionTreeClassifier struct {
	state *model.StateManager // State management (composition)

	// Hyperparameters
	parallelThreshold int        // rows at which building and batch prediction fan out; 0 = never
	logger            log.Logger // structured logger

	// Fitted model, guarded by mu
	mu         sync.RWMutex
	root       Node
	attributes []string
	labelKey   string
	classes    []any
}

// Option is a functional option for DecisionTreeClassifier.
type Option func(*DecisionTreeClassifier)

// WithParallel builds sibling subtrees and predicts batches concurrently
// once the number of rows involved reaches threshold. Zero keeps
// everything on the calling goroutine.
func WithParallel(threshold int) Option {
	return func(c *DecisionTreeClassifier) {
		c.parallelThreshold = threshold
	}
}

// WithLogger replaces the logger obtained from the global provider.
func WithLogger(l log.Logger) Option {
	return func(c *DecisionTreeClassifier) {
		c.logger = l
	}
}

// NewDecisionTreeClassifier creates an unfitted classifier.
func NewDecisionTreeClassifier(opts ...Option) *DecisionTreeClassifier {
	c := &DecisionTreeClassifier{
		state: model.NewStateManager(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.GetLoggerWithName("tree")
	}
	c.logger = c.logger.With(log.ModelNameKey, modelName)
	return c
}

// Fit grows the tree on ds. attributes are the candidate split keys in
// priority order (earlier wins ties) and labelKey names the class label.
// Repeated attributes are dropped with a warning.
//
// Calling Fit again replaces the previous tree. If Fit fails the
// classifier is left unfitted.
func (c *DecisionTreeClassifier) Fit(ds dataset.Dataset, attributes []string, labelKey string) (err error) {
	defer errors.Recover(&err, "DecisionTreeClassifier.Fit")

	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Reset()
	c.root, c.attributes, c.labelKey, c.classes = nil, nil, "", nil

	start := time.Now()
	logger := c.logger.With(log.OperationKey, log.OperationFit, log.PhaseKey, log.PhaseTraining)

	attrs, err := validateFitArgs(ds, attributes, labelKey)
	if err != nil {
		logger.Error("Invalid fit arguments", err)
		return err
	}

	logger.Debug("Training started",
		log.SamplesKey, len(ds),
		log.AttributesKey, len(attrs),
		log.LabelKeyKey, labelKey,
	)

	root, ok, err := Build(ds, attrs, labelKey,
		WithParallelThreshold(c.parallelThreshold),
		WithBuildLogger(logger),
	)
	if err != nil {
		logger.Error("Tree construction failed", err)
		return err
	}
	if !ok {
		return errors.NewModelError("DecisionTreeClassifier.Fit", "cannot build tree", errors.ErrEmptyData)
	}

	labels, err := ds.Labels(labelKey)
	if err != nil {
		return err
	}

	c.root = root
	c.attributes = attrs
	c.labelKey = labelKey
	c.classes = dataset.Distinct(labels)
	c.state.SetDimensions(len(attrs), len(ds))
	c.state.SetFitted()

	fields := []any{
		log.SamplesKey, len(ds),
		log.AttributesKey, len(attrs),
		log.DepthKey, Depth(root),
		log.LeavesKey, CountLeaves(root),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	}
	if s, isSplit := root.(*Split); isSplit {
		fields = append(fields, log.RootAttributeKey, s.Attribute)
	}
	logger.Info("Model fitted", fields...)
	return nil
}

func validateFitArgs(ds dataset.Dataset, attributes []string, labelKey string) ([]string, error) {
	if labelKey == "" {
		return nil, errors.NewValidationError("label_key", "must not be empty", labelKey)
	}
	if len(ds) == 0 {
		return nil, errors.NewModelError("DecisionTreeClassifier.Fit", "cannot build tree", errors.ErrEmptyData)
	}

	seen := make(map[string]int, len(attributes))
	attrs := make([]string, 0, len(attributes))
	for _, a := range attributes {
		if a == "" {
			return nil, errors.NewValidationError("attributes", "attribute names must not be empty", attributes)
		}
		if a == labelKey {
			return nil, errors.NewValidationError("label_key", "must not be one of the attributes", labelKey)
		}
		if seen[a] == 0 {
			attrs = append(attrs, a)
		}
		seen[a]++
	}
	for _, a := range attrs {
		if n := seen[a]; n > 1 {
			errors.Warn(errors.NewDuplicateAttributeWarning(a, n))
		}
	}
	return attrs, nil
}

// snapshot returns the fitted tree under the read lock, or a NotFittedError
// naming method.
func (c *DecisionTreeClassifier) snapshot(method string) (Node, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.state.RequireFitted(modelName, method); err != nil {
		return nil, err
	}
	return c.root, nil
}

// Predict returns the label for one sample. Values unseen during training
// fall back to the default label of the Split where they were tested.
func (c *DecisionTreeClassifier) Predict(sample dataset.Sample) (label any, err error) {
	root, err := c.snapshot("Predict")
	if err != nil {
		return nil, err
	}
	defer errors.Recover(&err, "DecisionTreeClassifier.Predict")
	return Predict(root, sample), nil
}

// PredictPath returns the label for one sample and the decision path taken.
func (c *DecisionTreeClassifier) PredictPath(sample dataset.Sample) (label any, path []PathStep, err error) {
	root, err := c.snapshot("PredictPath")
	if err != nil {
		return nil, nil, err
	}
	defer errors.Recover(&err, "DecisionTreeClassifier.PredictPath")
	label, path = PredictPath(root, sample)
	return label, path, nil
}

// PredictBatch labels every sample independently. The result has the same
// order as samples.
func (c *DecisionTreeClassifier) PredictBatch(samples []dataset.Sample) ([]any, error) {
	root, err := c.snapshot("PredictBatch")
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	threshold := c.parallelThreshold
	c.mu.RUnlock()

	out := make([]any, len(samples))
	err = parallel.ForEach(len(samples), threshold, func(i int) error {
		return errors.SafeExecute("DecisionTreeClassifier.PredictBatch", func() error {
			out[i] = Predict(root, samples[i])
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Batch predicted",
		log.OperationKey, log.OperationPredict,
		log.PredsKey, len(out),
	)
	return out, nil
}

// Score returns the accuracy of the classifier on ds, reading the true
// labels from the key the model was fitted with.
func (c *DecisionTreeClassifier) Score(ds dataset.Dataset) (float64, error) {
	if _, err := c.snapshot("Score"); err != nil {
		return 0, err
	}
	labels, err := ds.Labels(c.LabelKey())
	if err != nil {
		return 0, err
	}
	preds, err := c.PredictBatch(ds)
	if err != nil {
		return 0, err
	}
	acc, err := metrics.Accuracy(labels, preds)
	if err != nil {
		return 0, err
	}
	c.logger.Debug("Scored",
		log.OperationKey, log.OperationScore,
		log.SamplesKey, len(ds),
		log.AccuracyKey, acc,
	)
	return acc, nil
}

// Gains returns the information gain of every fitted attribute over ds, as
// computed by the root-level selection. It is meant for diagnostics.
func (c *DecisionTreeClassifier) Gains(ds dataset.Dataset) (map[string]float64, error) {
	if _, err := c.snapshot("Gains"); err != nil {
		return nil, err
	}
	c.mu.RLock()
	attrs, labelKey := c.attributes, c.labelKey
	c.mu.RUnlock()

	sel, err := SelectAttribute(ds, attrs, labelKey)
	if err != nil {
		return nil, err
	}
	return sel.Gains, nil
}

// IsFitted reports whether Fit has succeeded.
func (c *DecisionTreeClassifier) IsFitted() bool {
	return c.state.IsFitted()
}

// Root returns the fitted tree, or nil.
func (c *DecisionTreeClassifier) Root() Node {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.root
}

// Depth returns the depth of the fitted tree.
func (c *DecisionTreeClassifier) Depth() int {
	return Depth(c.Root())
}

// NLeaves returns the number of leaves of the fitted tree.
func (c *DecisionTreeClassifier) NLeaves() int {
	return CountLeaves(c.Root())
}

// Attributes returns the attributes used for fitting, duplicates removed.
func (c *DecisionTreeClassifier) Attributes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.attributes...)
}

// LabelKey returns the label key used for fitting.
func (c *DecisionTreeClassifier) LabelKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.labelKey
}

// Classes returns the distinct training labels in dataset.CompareValues order.
func (c *DecisionTreeClassifier) Classes() []any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]any(nil), c.classes...)
}

// GetParams returns the model hyperparameters.
func (c *DecisionTreeClassifier) GetParams() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return map[string]interface{}{
		"parallel_threshold": c.parallelThreshold,
	}
}

// SetParams sets the model hyperparameters. Numbers decoded from JSON or
// YAML are accepted for integer parameters.
func (c *DecisionTreeClassifier) SetParams(params map[string]interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, value := range params {
		switch key {
		case "parallel_threshold":
			n, ok := asInt(value)
			if !ok || n < 0 {
				return errors.NewValidationError(key, "must be a non-negative integer", value)
			}
			c.parallelThreshold = n
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
	}
	return nil
}

func asInt(v interface{}) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case float64:
		if x != float64(int(x)) {
			return 0, false
		}
		return int(x), true
	default:
		return 0, false
	}
}

var (
	_ model.Classifier       = (*DecisionTreeClassifier)(nil)
	_ model.MatrixClassifier = (*DecisionTreeClassifier)(nil)
	_ model.ParameterGetter  = (*DecisionTreeClassifier)(nil)
	_ model.ParameterSetter  = (*DecisionTreeClassifier)(nil)
)
