package latplot

import (
	"fmt"

	"github.com/celskeggs/schedlat/ctrl/results"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
)

// PanelPlot draws latency against throughput with one line per scheduler.
// Schedulers without data in this panel are left out of the legend.
func PanelPlot(panel results.Panel, stat results.LatencyStat) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = panel.Title
	p.X.Label.Text = "Throughput (reqs/sec)"
	p.Y.Label.Text = fmt.Sprintf("%s%% Latency (μs)", stat.Percentile)
	p.Legend.Top = true

	var lines []interface{}
	for _, line := range panel.Lines {
		if len(line.Points) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(line.Points))
		for i, point := range line.Points {
			xys[i].X = float64(point.Throughput)
			xys[i].Y = point.Latency
		}
		lines = append(lines, line.SchedType, xys)
	}
	if len(lines) > 0 {
		if err := plotutil.AddLinePoints(p, lines...); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// LatencyGrid arranges one plot per panel, two panels to a row. A trailing
// gap is filled with a blank plot.
func LatencyGrid(panels []results.Panel, stat results.LatencyStat) ([][]*plot.Plot, error) {
	const cols = 2
	rows := (len(panels) + cols - 1) / cols
	grid := make([][]*plot.Plot, rows)
	for j := range grid {
		grid[j] = make([]*plot.Plot, cols)
		for i := range grid[j] {
			blank := plot.New()
			blank.HideAxes()
			grid[j][i] = blank
		}
	}
	for i, panel := range panels {
		p, err := PanelPlot(panel, stat)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", panel.Title, err)
		}
		grid[i/cols][i%cols] = p
	}
	return grid, nil
}
