package main

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/id3/dataset"
	"github.com/YuminosukeSato/id3/pkg/errors"
	"github.com/YuminosukeSato/id3/pkg/log"
	"github.com/YuminosukeSato/id3/sklearn/tree"
)

type predictCmdConfig struct {
	*rootCmdConfig
	modelPath     string
	dataInput     string
	missingMarker string
	showPath      bool
}

func predictCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &predictCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Label samples with a grown tree",
		Long:  `Read samples from a CSV file and print the label the tree predicts for each of them as CSV.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Validate(); err != nil {
				return err
			}
			if err := config.setupLogging(LogConfig{}, cmd.ErrOrStderr()); err != nil {
				return err
			}
			defer config.closeLog()
			logger := log.GetLoggerWithName("cli").With(log.OperationKey, log.OperationPredict)

			b, err := loadBundle(config.modelPath)
			if err != nil {
				return err
			}
			path := config.dataInput
			if path == "-" {
				path = ""
			}
			ds, _, err := dataset.ReadCSVFile(path, dataset.CSVOptions{
				MissingMarker: config.missingMarker,
				TrimSpace:     true,
			})
			if err != nil {
				logger.Error("Loading data failed", err)
				return err
			}
			binned, err := b.Bins.apply(ds)
			if err != nil {
				return err
			}
			if err := config.write(cmd, b.Tree, binned); err != nil {
				return err
			}
			logger.Info("Predictions written", log.PredsKey, len(binned))
			return nil
		},
	}
	cmd.Flags().StringVarP(&(config.modelPath), "model", "m", "", "path to a model JSON written by fit (required)")
	cmd.Flags().StringVarP(&(config.dataInput), "data", "i", "", "path to a CSV file with the samples to label (defaults to STDIN)")
	cmd.Flags().StringVar(&(config.missingMarker), "missing-marker", "?", "cell text read as a missing value")
	cmd.Flags().BoolVar(&(config.showPath), "path", false, "add a column with the decision path of every sample")
	return cmd
}

func (pcc *predictCmdConfig) Validate() error {
	if pcc.modelPath == "" {
		return fmt.Errorf("required model flag was not set")
	}
	return nil
}

func (pcc *predictCmdConfig) write(cmd *cobra.Command, clf *tree.DecisionTreeClassifier, ds dataset.Dataset) error {
	w := csv.NewWriter(cmd.OutOrStdout())
	header := []string{"row", clf.LabelKey()}
	if pcc.showPath {
		header = append(header, "path")
	}
	if err := w.Write(header); err != nil {
		return errors.Wrap(err, "writing predictions")
	}

	if !pcc.showPath {
		labels, err := clf.PredictBatch(ds)
		if err != nil {
			return err
		}
		for i, label := range labels {
			if err := w.Write([]string{strconv.Itoa(i), fmt.Sprint(label)}); err != nil {
				return errors.Wrap(err, "writing predictions")
			}
		}
	} else {
		for i, s := range ds {
			label, path, err := clf.PredictPath(s)
			if err != nil {
				return err
			}
			if err := w.Write([]string{strconv.Itoa(i), fmt.Sprint(label), formatPath(path)}); err != nil {
				return errors.Wrap(err, "writing predictions")
			}
		}
	}
	w.Flush()
	return errors.Wrap(w.Error(), "writing predictions")
}

func formatPath(path []tree.PathStep) string {
	parts := make([]string, len(path))
	for i, step := range path {
		parts[i] = fmt.Sprintf("%s=%v", step.Attribute, step.Value)
	}
	return strings.Join(parts, ";")
}
