// Package id3 is an ID3 decision-tree learner for Go, aimed at categorical
// data and small backend services that need an explainable classifier.
//
// The API follows the scikit-learn shape: create a classifier, Fit it,
// then Predict. Samples are maps from attribute name to value, so any
// comparable value (strings, numbers, booleans, nil) can be a category.
//
// # Packages
//
//   - sklearn/tree: entropy, information gain, attribute selection, tree
//     building and prediction, and DecisionTreeClassifier
//   - dataset: samples, CSV and SQLite loading, train/test splits, k-fold
//   - preprocessing: KBinsDiscretizer for turning numeric columns into bins
//   - metrics: accuracy and confusion matrices
//   - core/model: fitted state, interfaces and gob persistence
//   - pkg/errors, pkg/log: error types and structured logging
//   - cmd/id3: the fit, predict and eval command line tool
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/id3/dataset"
//	    "github.com/YuminosukeSato/id3/sklearn/tree"
//	)
//
//	func main() {
//	    ds := dataset.Dataset{
//	        {"Outlook": "Sunny", "Humidity": "High", "Play": "No"},
//	        {"Outlook": "Overcast", "Humidity": "High", "Play": "Yes"},
//	        {"Outlook": "Rain", "Humidity": "Normal", "Play": "Yes"},
//	    }
//
//	    clf := tree.NewDecisionTreeClassifier()
//	    if err := clf.Fit(ds, []string{"Outlook", "Humidity"}, "Play"); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    label, err := clf.Predict(dataset.Sample{"Outlook": "Overcast"})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(label)
//	}
//
// Values that were never seen during training are routed to the default
// label of the split that tested them, so Predict always returns a label
// once the classifier is fitted.
//
// # Error Handling
//
// Errors carry stack traces via github.com/cockroachdb/errors and can be
// inspected with errors.As:
//
//	var missing *errors.MissingKeyError
//	if errors.As(err, &missing) {
//	    fmt.Println(missing.Key, missing.Row)
//	}
//
// # Logging
//
// Logging goes through pkg/log, backed by zerolog. Call log.Setup to choose
// the level and output.
package id3
