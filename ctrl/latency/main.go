package main

import (
	"fmt"
	"os"

	"github.com/celskeggs/schedlat/ctrl/chart/latplot"
	"github.com/celskeggs/schedlat/ctrl/results"
	"github.com/celskeggs/schedlat/ctrl/util"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"
)

func Render(logger *zap.SugaredLogger, dir string, stat results.LatencyStat, output string, width, height vg.Length) error {
	if err := util.RequireDir(dir); err != nil {
		return err
	}
	rows, err := results.ReadDir(dir, stat)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no results found in %s", dir)
	}
	logger.Debugw("read results", "dir", dir, "rows", len(rows))
	grid, err := latplot.LatencyGrid(results.BuildPanels(rows), stat)
	if err != nil {
		return err
	}
	if err := latplot.SaveGrid(grid, width, height, output); err != nil {
		return err
	}
	logger.Infow("wrote chart", "path", output, "stat", stat.Column)
	return nil
}

func newRootCmd(logger *zap.SugaredLogger, level zap.AtomicLevel) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "latency <results-dir> [latency-stat]",
		Short: "Plot scheduler tail latency against throughput for each workload mix",
		Long: `Reads every *.txt results table in a directory and plots, for each workload
mix, the lowest observed latency per scheduler at each throughput.
The latency stat defaults to ` + results.DefaultLatencyStat + `.`,
		Args:          cobra.RangeArgs(1, 2),
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
			column := results.DefaultLatencyStat
			if len(args) == 2 {
				column = args[1]
			}
			stat, err := results.LookupLatencyStat(column)
			if err != nil {
				return err
			}
			output := v.GetString("out")
			width := vg.Length(v.GetFloat64("width")) * vg.Inch
			height := vg.Length(v.GetFloat64("height")) * vg.Inch
			if err := Render(logger, args[0], stat, output, width, height); err != nil {
				return err
			}
			if v.GetBool("show") {
				return latplot.DisplayExternal(output)
			}
			return nil
		},
	}
	util.AddConfigFlags(cmd)
	cmd.Flags().StringP("out", "o", "tail_latency.png", "output image")
	cmd.Flags().Float64("width", 12, "image width in inches")
	cmd.Flags().Float64("height", 9, "image height in inches")
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
