// Command id3 grows ID3 decision trees from CSV or SQLite data, evaluates
// them on a held-out split and uses them to label new samples.
package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/YuminosukeSato/id3/pkg/log"
)

type rootCmdConfig struct {
	logLevel string
	logFile  string
	console  bool

	logCloser io.Closer
}

func main() {
	if err := cliParser().Execute(); err != nil {
		os.Exit(1)
	}
}

func cliParser() *cobra.Command {
	config := &rootCmdConfig{}
	rootCmd := &cobra.Command{
		Use:          "id3",
		Short:        "id3 grows and applies ID3 decision trees",
		Long:         `A tool to grow ID3 decision trees over categorical (or discretized) data, evaluate them and use them to make predictions`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&(config.logLevel), "log-level", "", "minimum log level: debug, info, warn or error (overrides the config file, defaults to warn)")
	rootCmd.PersistentFlags().StringVar(&(config.logFile), "log-file", "", "write logs to this file, rotated by size, instead of STDERR (overrides the config file)")
	rootCmd.PersistentFlags().BoolVar(&(config.console), "console", false, "human-readable log lines instead of JSON")
	rootCmd.AddCommand(versionCmd(), fitCmd(config), predictCmd(config), evalCmd(config))
	return rootCmd
}

// setupLogging installs the global logger. Flags win over the config file.
func (rc *rootCmdConfig) setupLogging(cfg LogConfig, stderr io.Writer) error {
	level := firstNonEmpty(rc.logLevel, cfg.Level, "warn")
	file := firstNonEmpty(rc.logFile, cfg.File)

	w := stderr
	if file != "" {
		lj := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}
		rc.logCloser = lj
		w = lj
	}
	return log.Setup(level, w, rc.console)
}

func (rc *rootCmdConfig) closeLog() {
	if rc.logCloser != nil {
		_ = rc.logCloser.Close()
		rc.logCloser = nil
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
