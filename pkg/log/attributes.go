// Package log defines standard attribute keys for tree induction and inference.
//
// Keys follow a hierarchical naming convention ("model.name", "data.samples")
// so records from the library, the CLI and tests can be filtered uniformly.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the type of model.
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "score", "transform"
	OperationKey = "ml.operation"

	// ComponentKey identifies which component or package is logging.
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of model lifecycle.
	PhaseKey = "ml.phase"
)

// Data Shape
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// AttributesKey indicates the number of candidate attributes.
	AttributesKey = "data.attributes"

	// FeaturesKey indicates the number of numeric columns (matrix inputs).
	FeaturesKey = "data.features"

	// LabelKeyKey names the sample key holding the class label.
	LabelKeyKey = "data.label_key"

	// PathKey is the file or table a dataset was read from.
	PathKey = "data.path"
)

// Tree Shape
const (
	// DepthKey records the depth of a built tree.
	DepthKey = "tree.depth"

	// LeavesKey records the number of leaves of a built tree.
	LeavesKey = "tree.leaves"

	// RootAttributeKey records the attribute chosen at the root split.
	RootAttributeKey = "tree.root_attribute"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// AccuracyKey records classification accuracy in [0, 1].
	AccuracyKey = "metrics.accuracy"

	// PredsKey indicates the number of predictions made.
	PredsKey = "preds.count"
)

// Error Context
const (
	// ErrorKey carries the error value of an Error record.
	ErrorKey = "error"

	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"

	// StacktraceKey contains stack trace information extracted from
	// cockroachdb/errors safe details.
	StacktraceKey = "error.stacktrace"
)

// Standard attribute values.
const (
	OperationFit       = "fit"
	OperationPredict   = "predict"
	OperationScore     = "score"
	OperationTransform = "transform"

	PhaseTraining      = "training"
	PhaseTesting       = "testing"
	PhaseInference     = "inference"
	PhasePreprocessing = "preprocessing"
)
