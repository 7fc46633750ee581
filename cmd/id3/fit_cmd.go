package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/id3/pkg/log"
)

type fitCmdConfig struct {
	*rootCmdConfig
	configPath string
	output     string
}

func fitCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &fitCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Grow a tree from a set of data",
		Long:  `Grow an ID3 tree from the data described in a YAML config and write it, with any bin edges, as JSON.`,
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
			logger := log.GetLoggerWithName("cli").With(log.OperationKey, log.OperationFit)

			start := time.Now()
			ds, attributes, err := cfg.loadDataset(cmd.Context())
			if err != nil {
				logger.Error("Loading data failed", err)
				return err
			}
			logger.Info("Data loaded",
				log.PathKey, firstNonEmpty(cfg.Data.Path, cfg.Data.SQLite),
				log.SamplesKey, len(ds),
				log.AttributesKey, len(attributes),
			)

			b, err := train(cfg, ds, attributes)
			if err != nil {
				logger.Error("Fitting failed", err)
				return err
			}
			if err := saveBundle(config.output, b, cmd.OutOrStdout()); err != nil {
				return err
			}
			logger.Info("Model written",
				log.PathKey, config.output,
				log.DepthKey, b.Tree.Depth(),
				log.LeavesKey, b.Tree.NLeaves(),
				log.DurationMsKey, time.Since(start).Milliseconds(),
			)
			return nil
		},
	}
	cmd.Flags().StringVarP(&(config.configPath), "config", "c", "", "path to the YAML config describing data, discretization and model (required)")
	cmd.Flags().StringVarP(&(config.output), "out", "o", "", "path to write the model JSON to (defaults to STDOUT)")
	return cmd
}

func (fcc *fitCmdConfig) Validate() error {
	if fcc.configPath == "" {
		return fmt.Errorf("required config flag was not set")
	}
	return nil
}
