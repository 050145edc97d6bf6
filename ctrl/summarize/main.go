package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/celskeggs/schedlat/ctrl/metrics"
	"github.com/celskeggs/schedlat/ctrl/util"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type Row struct {
	Trial   string
	Metric  string
	Samples int
	Median  float64
	Mean    float64
	Stdev   float64
}

func SaveCSV(rowSlice interface{}, filename string) error {
	rowSliceV := reflect.ValueOf(rowSlice)
	rowSliceT := rowSliceV.Type()
	if rowSliceT.Kind() != reflect.Slice {
		return errors.New("not a slice")
	}
	rowT := rowSliceT.Elem()
	if rowT.Kind() != reflect.Struct {
		return errors.New("not a struct in the slice")
	}
	var columns []string
	for fieldI := 0; fieldI < rowT.NumField(); fieldI++ {
		field := rowT.Field(fieldI)
		if field.Name == "" {
			return errors.New("empty field name")
		}
		columns = append(columns, field.Name)
	}
	fileOut, err := os.Create(filename)
	if err != nil {
		return err
	}
	return util.WriteClose(fileOut, func() error {
		cw := csv.NewWriter(fileOut)
		if err := cw.Write(columns); err != nil {
			return err
		}
		for i := 0; i < rowSliceV.Len(); i++ {
			rowV := rowSliceV.Index(i)
			cells := make([]string, len(columns))
			for j := 0; j < len(cells); j++ {
				cells[j] = fmt.Sprint(rowV.Field(j).Interface())
			}
			if err := cw.Write(cells); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

func LoadTrial(path string) ([]Row, error) {
	summaries, err := metrics.Aggregate(path)
	if err != nil {
		return nil, err
	}
	trial := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	rows := make([]Row, len(summaries))
	for i, s := range summaries {
		rows[i] = Row{
			Trial:   trial,
			Metric:  s.Name,
			Samples: s.Samples,
			Median:  s.Median,
			Mean:    s.Mean,
			Stdev:   s.Stdev,
		}
	}
	return rows, nil
}

const SummaryName = "summary.csv"

func Summarize(logger *zap.SugaredLogger, dir string, suffix string, output string) error {
	if err := util.RequireDir(dir); err != nil {
		return err
	}
	paths, err := util.ListFiles(dir, suffix)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no %s files in %s", suffix, dir)
	}
	var rows []Row
	for _, path := range paths {
		trialRows, err := LoadTrial(path)
		if err != nil {
			return err
		}
		logger.Debugw("loaded trial", "path", path, "metrics", len(trialRows))
		rows = append(rows, trialRows...)
	}
	if err := SaveCSV(rows, output); err != nil {
		// make sure summary file is removed, if possible
		_ = os.Remove(output)
		return err
	}
	logger.Infow("wrote summary", "path", output, "trials", len(paths), "rows", len(rows))
	return nil
}

func newRootCmd(logger *zap.SugaredLogger, level zap.AtomicLevel) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "summarize <trial-dir>",
		Short:         "Aggregate every trial log in a directory into a CSV summary",
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
			dir := args[0]
			output := v.GetString("output")
			if output == "" {
				output = filepath.Join(dir, SummaryName)
			}
			return Summarize(logger, dir, v.GetString("suffix"), output)
		},
	}
	util.AddConfigFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "summary CSV path (default <trial-dir>/"+SummaryName+")")
	cmd.Flags().String("suffix", ".log", "file name suffix of trial logs")
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
