package latplot

import (
	"fmt"
	"image/color"
	"strconv"

	"github.com/celskeggs/schedlat/ctrl/metrics"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// RatioLabels name the runs of a long-task ratio sweep.
var RatioLabels = []string{"0.0", "0.1", "0.2", "0.3", "0.4", "0.5", "0.6", "0.7", "0.8", "0.9", "1.0"}

var statTitles = map[metrics.Stat]string{
	metrics.Median: "Median",
	metrics.Mean:   "Mean",
	metrics.Stdev:  "Stdev",
}

// SummaryBars draws one bar per run showing the chosen statistic of a metric.
// Runs are labelled 1..n when labels does not match the number of runs.
func SummaryBars(runs []metrics.Summary, metric string, which metrics.Stat, labels []string) (*plot.Plot, error) {
	if len(runs) == 0 {
		return nil, fmt.Errorf("no summaries for metric %s", metric)
	}
	if len(labels) != len(runs) {
		labels = make([]string, len(runs))
		for i := range labels {
			labels[i] = strconv.Itoa(i + 1)
		}
	}
	values := make(plotter.Values, len(runs))
	for i, run := range runs {
		values[i] = run.Value(which)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s %s", statTitles[which], metric)
	p.X.Label.Text = "ratio of long tasks"
	p.Y.Label.Text = metric

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return nil, err
	}
	bars.Color = color.RGBA{0, 0, 255, 255}
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(labels...)
	return p, nil
}
