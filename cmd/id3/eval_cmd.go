package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/id3/dataset"
	"github.com/YuminosukeSato/id3/metrics"
	"github.com/YuminosukeSato/id3/pkg/errors"
	"github.com/YuminosukeSato/id3/pkg/log"
)

type evalCmdConfig struct {
	*rootCmdConfig
	configPath string
}

func evalCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &evalCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Test the performance of the tree on held-out data",
		Long: `Split the configured data into training and test sets, discretize with edges learnt on the
training set only, grow a tree and report its accuracy and confusion matrix on the test set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Validate(); err != nil {
				return err
			}
			cfg, err := LoadConfig(config.configPath)
			if err != nil {
				return err
			}
			if err := config.setupLogging(cfg.Log, cmd.ErrOrStderr()); err != nil {
				return err
			}
			defer config.closeLog()

			ds, attributes, err := cfg.loadDataset(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := holdout(out, cfg, ds, attributes); err != nil {
				return err
			}
			if cfg.Split.Folds > 1 {
				return crossValidate(out, cfg, ds, attributes)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&(config.configPath), "config", "c", "", "path to the YAML config describing data, discretization, split and model (required)")
	return cmd
}

func (ecc *evalCmdConfig) Validate() error {
	if ecc.configPath == "" {
		return fmt.Errorf("required config flag was not set")
	}
	return nil
}

// evaluate trains on trainSet and returns the test labels, the predictions
// and the accuracy.
func evaluate(cfg *Config, trainSet, testSet dataset.Dataset, attributes []string) ([]any, []any, float64, error) {
	b, err := train(cfg, trainSet, attributes)
	if err != nil {
		return nil, nil, 0, err
	}
	binned, err := b.Bins.apply(testSet)
	if err != nil {
		return nil, nil, 0, err
	}
	yTrue, err := binned.Labels(cfg.Data.Label)
	if err != nil {
		return nil, nil, 0, err
	}
	yPred, err := b.Tree.PredictBatch(binned)
	if err != nil {
		return nil, nil, 0, err
	}
	acc, err := metrics.Accuracy(yTrue, yPred)
	if err != nil {
		return nil, nil, 0, err
	}
	return yTrue, yPred, acc, nil
}

func holdout(out io.Writer, cfg *Config, ds dataset.Dataset, attributes []string) error {
	opts := dataset.SplitOptions{TestSize: cfg.Split.TestSize, Seed: cfg.Split.Seed}
	if cfg.Split.Stratify {
		opts.StratifyBy = cfg.Data.Label
	}
	trainSet, testSet, err := dataset.TrainTestSplit(ds, opts)
	if err != nil {
		return err
	}
	if len(testSet) == 0 || len(trainSet) == 0 {
		return errors.NewValueError("eval", "split left an empty training or test set")
	}

	yTrue, yPred, acc, err := evaluate(cfg, trainSet, testSet, attributes)
	if err != nil {
		return err
	}
	cm, err := metrics.NewConfusionMatrix(yTrue, yPred, nil)
	if err != nil {
		return err
	}

	log.GetLoggerWithName("cli").Info("Held-out evaluation",
		log.OperationKey, log.OperationScore,
		log.PhaseKey, log.PhaseTesting,
		log.SamplesKey, len(testSet),
		log.AccuracyKey, acc,
	)
	fmt.Fprintf(out, "train samples: %d\ntest samples: %d\naccuracy: %.4f\n\n%s", len(trainSet), len(testSet), acc, cm)
	return nil
}

func crossValidate(out io.Writer, cfg *Config, ds dataset.Dataset, attributes []string) error {
	folds, err := dataset.KFold(len(ds), cfg.Split.Folds, cfg.Split.Seed)
	if err != nil {
		return err
	}

	scores := make([]float64, len(folds))
	for k, testIdx := range folds {
		inTest := make(map[int]bool, len(testIdx))
		for _, i := range testIdx {
			inTest[i] = true
		}
		trainIdx := make([]int, 0, len(ds)-len(testIdx))
		for i := range ds {
			if !inTest[i] {
				trainIdx = append(trainIdx, i)
			}
		}
		_, _, acc, err := evaluate(cfg, ds.Subset(trainIdx), ds.Subset(testIdx), attributes)
		if err != nil {
			return errors.Wrapf(err, "fold %d", k)
		}
		scores[k] = acc
	}

	mean, std := stat.MeanStdDev(scores, nil)
	fmt.Fprintf(out, "\ncross-validation (%d folds): mean accuracy %.4f, std %.4f\n", len(folds), mean, std)
	return nil
}
