package main

import (
	"fmt"
	"os"

	"github.com/celskeggs/schedlat/ctrl/chart/latplot"
	"github.com/celskeggs/schedlat/ctrl/metrics"
	"github.com/celskeggs/schedlat/ctrl/util"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"
)

// SchedulerMetrics are the per-task timings reported by the scheduler agent.
var SchedulerMetrics = []string{
	"block_time_us",
	"runnable_time_us",
	"queued_time_us",
	"on_cpu_time_us",
	"yielding_time_us",
}

func isSchedulerMetric(name string) bool {
	for _, m := range SchedulerMetrics {
		if m == name {
			return true
		}
	}
	return false
}

type options struct {
	Input  string
	Metric string
	Stat   metrics.Stat
	Labels []string
	Output string
	Width  vg.Length
	Height vg.Length
}

func Render(logger *zap.SugaredLogger, opts options) error {
	summaries, err := metrics.ScanSummariesFile(opts.Input)
	if err != nil {
		return err
	}
	if !isSchedulerMetric(opts.Metric) {
		logger.Warnw("metric is not reported by the scheduler agent", "metric", opts.Metric)
	}
	runs := metrics.Select(summaries, opts.Metric)
	if len(opts.Labels) != len(runs) {
		logger.Infow("label count does not match runs; numbering runs instead",
			"labels", len(opts.Labels), "runs", len(runs))
	}
	p, err := latplot.SummaryBars(runs, opts.Metric, opts.Stat, opts.Labels)
	if err != nil {
		return fmt.Errorf("%s: %w", opts.Input, err)
	}
	if err := latplot.SavePlot(p, opts.Width, opts.Height, opts.Output); err != nil {
		return err
	}
	logger.Infow("wrote chart", "path", opts.Output, "runs", len(runs))
	return nil
}

func newRootCmd(logger *zap.SugaredLogger, level zap.AtomicLevel) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "barchart <summaries-file>",
		Short: "Chart one statistic of a metric across concatenated agg runs",
		Long: `Reads the output of several agg runs concatenated into one file and draws
one bar per run for the chosen metric and statistic.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := util.LoadConfig(cmd)
			if err != nil {
				return err
			}
			if v.GetBool("verbose") {
				level.SetLevel(zap.DebugLevel)
			}
			stat, err := metrics.ParseStat(v.GetString("stat"))
			if err != nil {
				return err
			}
			opts := options{
				Input:  args[0],
				Metric: v.GetString("metric"),
				Stat:   stat,
				Labels: util.SplitList(v.GetString("labels")),
				Output: v.GetString("out"),
				Width:  vg.Length(v.GetFloat64("width")) * vg.Inch,
				Height: vg.Length(v.GetFloat64("height")) * vg.Inch,
			}
			if opts.Output == "" {
				opts.Output = fmt.Sprintf("%s_%s.png", opts.Metric, opts.Stat)
			}
			logger.Debugw("rendering bar chart", "options", opts)
			if err := Render(logger, opts); err != nil {
				return err
			}
			if v.GetBool("show") {
				return latplot.DisplayExternal(opts.Output)
			}
			return nil
		},
	}
	util.AddConfigFlags(cmd)
	cmd.Flags().StringP("metric", "m", "queued_time_us", "metric to chart")
	cmd.Flags().StringP("stat", "s", "median", "statistic to chart: median, mean or stdev")
	cmd.Flags().String("labels", "0.0,0.1,0.2,0.3,0.4,0.5,0.6,0.7,0.8,0.9,1.0", "comma-separated bar labels, one per run")
	cmd.Flags().StringP("out", "o", "", "output image (default <metric>_<stat>.png)")
	cmd.Flags().Float64("width", 6, "image width in inches")
	cmd.Flags().Float64("height", 4, "image height in inches")
	cmd.Flags().Bool("show", false, "open the chart with xdg-open once written")
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
