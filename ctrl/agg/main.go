package main

import (
	"os"

	"github.com/celskeggs/schedlat/ctrl/metrics"
	"github.com/celskeggs/schedlat/ctrl/util"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newRootCmd builds the agg command. It takes no configuration beyond its
// single argument.
func newRootCmd(logger *zap.SugaredLogger, level zap.AtomicLevel) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "agg <logfile>",
		Short: "Summarize the metrics reported in an experiment log",
		Long: `Scans a log for lines starting with "Received Metric." and prints, for every
metric in order of first appearance, its median, mean and sample standard
deviation. Nothing is printed unless every metric can be summarized.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				level.SetLevel(zap.DebugLevel)
			}
			summaries, err := metrics.Aggregate(args[0])
			if err != nil {
				return err
			}
			logger.Debugw("aggregated log", "path", args[0], "metrics", len(summaries))
			return metrics.WriteSummaries(cmd.OutOrStdout(), summaries)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}

func main() {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	logger, err := util.NewLogger(level)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()
	if err := newRootCmd(logger, level).Execute(); err != nil {
		logger.Error(err)
		_ = logger.Sync()
		os.Exit(1)
	}
}
