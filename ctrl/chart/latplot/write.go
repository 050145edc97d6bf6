package latplot

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/celskeggs/schedlat/ctrl/util"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// FormatOf derives the image format (png, svg, pdf, ...) from a file name.
func FormatOf(path string) (string, error) {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if format == "" {
		return "", fmt.Errorf("cannot determine image format of %q", path)
	}
	return format, nil
}

func WritePlot(p *plot.Plot, width, height vg.Length, output io.Writer, format string) error {
	w, err := p.WriterTo(width, height, format)
	if err != nil {
		return err
	}
	_, err = w.WriteTo(output)
	return err
}

func SavePlot(p *plot.Plot, width, height vg.Length, path string) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	output, err := os.Create(path)
	if err != nil {
		return err
	}
	return util.WriteClose(output, func() error {
		return WritePlot(p, width, height, output, format)
	})
}

// WriteGrid lays plots out as rows of tiles sharing aligned axes.
func WriteGrid(plots [][]*plot.Plot, width, height vg.Length, output io.Writer, format string) error {
	if len(plots) == 0 || len(plots[0]) == 0 {
		return fmt.Errorf("empty plot grid")
	}
	for _, row := range plots {
		if len(row) != len(plots[0]) {
			return fmt.Errorf("ragged plot grid")
		}
		for _, p := range row {
			if p == nil {
				return fmt.Errorf("missing plot in grid")
			}
		}
	}
	c, err := draw.NewFormattedCanvas(width, height, format)
	if err != nil {
		return err
	}
	tiles := draw.Tiles{
		Rows:      len(plots),
		Cols:      len(plots[0]),
		PadX:      vg.Millimeter * 6,
		PadY:      vg.Millimeter * 6,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align(plots, tiles, draw.New(c))
	for j := range plots {
		for i, p := range plots[j] {
			p.Draw(canvases[j][i])
		}
	}
	_, err = c.WriteTo(output)
	return err
}

func SaveGrid(plots [][]*plot.Plot, width, height vg.Length, path string) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	output, err := os.Create(path)
	if err != nil {
		return err
	}
	return util.WriteClose(output, func() error {
		return WriteGrid(plots, width, height, output, format)
	})
}

// DisplayExternal opens a saved chart in the desktop's default viewer.
func DisplayExternal(path string) error {
	return exec.Command("xdg-open", path).Run()
}
