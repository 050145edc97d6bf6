package results

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/celskeggs/schedlat/ctrl/util"
)

// ExpResult is one row of a workload run: a scheduler configuration, the
// offered load, and the latency statistic selected when reading.
type ExpResult struct {
	SchedType            string
	PreemptionIntervalUs int64
	Throughput           int64
	ProportionLongJobs   float64
	Latency              float64
}

type LatencyStat struct {
	Column     string
	Percentile string
}

// LatencyStats lists every latency column a results file carries.
var LatencyStats = func() (stats []LatencyStat) {
	for _, reqType := range []string{"short", "long"} {
		for _, pctile := range []string{"0", "25", "50", "75", "90", "99", "99.9", "1"} {
			stats = append(stats, LatencyStat{
				Column:     fmt.Sprintf("%s_%s_pct", reqType, pctile),
				Percentile: pctile,
			})
		}
	}
	return stats
}()

const DefaultLatencyStat = "short_99.9_pct"

func LookupLatencyStat(column string) (LatencyStat, error) {
	for _, stat := range LatencyStats {
		if stat.Column == column {
			return stat, nil
		}
	}
	return LatencyStat{}, fmt.Errorf("unknown latency stat %q", column)
}

var requiredColumns = []string{"sched_type", "preemption_interval_us", "throughput", "proportion_long_jobs"}

// ReadCSV decodes a results table whose first row names its columns.
func ReadCSV(r io.Reader, stat LatencyStat) ([]ExpResult, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	columns := map[string]int{}
	for i, name := range header {
		columns[name] = i
	}
	for _, name := range append(requiredColumns, stat.Column) {
		if _, found := columns[name]; !found {
			return nil, fmt.Errorf("missing column %q in header %v", name, header)
		}
	}

	var results []ExpResult
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return results, nil
		} else if err != nil {
			return nil, err
		}
		schedType := row[columns["sched_type"]]
		if schedType == "" {
			return nil, errors.New("invalid empty string for sched_type")
		}
		preemption, err := strconv.ParseInt(row[columns["preemption_interval_us"]], 10, 64)
		if err != nil {
			return nil, err
		}
		throughput, err := strconv.ParseInt(row[columns["throughput"]], 10, 64)
		if err != nil {
			return nil, err
		}
		proportion, err := strconv.ParseFloat(row[columns["proportion_long_jobs"]], 64)
		if err != nil {
			return nil, err
		}
		latency, err := strconv.ParseFloat(row[columns[stat.Column]], 64)
		if err != nil {
			return nil, err
		}
		results = append(results, ExpResult{
			SchedType:            schedType,
			PreemptionIntervalUs: preemption,
			Throughput:           throughput,
			ProportionLongJobs:   proportion,
			Latency:              latency,
		})
	}
}

func ReadFile(path string, stat LatencyStat) ([]ExpResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	results, err := ReadCSV(f, stat)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return results, nil
}

// ReadDir reads every *.txt results file in dir.
func ReadDir(dir string, stat LatencyStat) ([]ExpResult, error) {
	paths, err := util.ListFiles(dir, ".txt")
	if err != nil {
		return nil, err
	}
	var all []ExpResult
	for _, path := range paths {
		results, err := ReadFile(path, stat)
		if err != nil {
			return nil, err
		}
		all = append(all, results...)
	}
	return all, nil
}

type Workload struct {
	ProportionLongJobs float64
	Title              string
}

var Workloads = []Workload{
	{ProportionLongJobs: 0, Title: "Scheduler Tail Latency (0-100 workload)"},
	{ProportionLongJobs: 0.01, Title: "Scheduler Tail Latency (1-99 workload)"},
	{ProportionLongJobs: 0.1, Title: "Scheduler Tail Latency (10-90 workload)"},
	{ProportionLongJobs: 0.5, Title: "Scheduler Tail Latency (50-50 workload)"},
}

var baseSchedTypes = []string{"dFCFS", "cFCFS", "cfs"}

const OrcaSchedType = "orca"

type Point struct {
	Throughput int64
	Latency    float64
}

type Line struct {
	SchedType string
	Points    []Point
}

type Panel struct {
	Title string
	Lines []Line
}

// BuildPanel keeps the lowest latency seen for each scheduler at each
// throughput among the rows of the given workload. Lines are ordered dFCFS,
// cFCFS, cfs, then orca when any orca rows are present.
func BuildPanel(rows []ExpResult, workload Workload) Panel {
	type key struct {
		schedType  string
		throughput int64
	}
	best := map[key]float64{}
	hasOrca := false
	for _, row := range rows {
		if row.ProportionLongJobs != workload.ProportionLongJobs {
			continue
		}
		k := key{row.SchedType, row.Throughput}
		if current, found := best[k]; !found || row.Latency < current {
			best[k] = row.Latency
		}
		if row.SchedType == OrcaSchedType {
			hasOrca = true
		}
	}
	schedTypes := append([]string(nil), baseSchedTypes...)
	if hasOrca {
		schedTypes = append(schedTypes, OrcaSchedType)
	}
	panel := Panel{Title: workload.Title}
	for _, schedType := range schedTypes {
		line := Line{SchedType: schedType}
		for k, latency := range best {
			if k.schedType == schedType {
				line.Points = append(line.Points, Point{Throughput: k.throughput, Latency: latency})
			}
		}
		sort.Slice(line.Points, func(i, j int) bool {
			return line.Points[i].Throughput < line.Points[j].Throughput
		})
		panel.Lines = append(panel.Lines, line)
	}
	return panel
}

func BuildPanels(rows []ExpResult) []Panel {
	panels := make([]Panel, len(Workloads))
	for i, workload := range Workloads {
		panels[i] = BuildPanel(rows, workload)
	}
	return panels
}
