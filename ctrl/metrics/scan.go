package metrics

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

func forEachLine(r io.Reader, fn func(lineNo int, line string) error) error {
	br := bufio.NewReader(r)
	for lineNo := 1; ; lineNo++ {
		line, err := br.ReadString('\n')
		if err == io.EOF && len(line) == 0 {
			return nil
		}
		if err != nil && err != io.EOF {
			return err
		}
		if ferr := fn(lineNo, strings.TrimRight(line, "\r\n")); ferr != nil {
			return ferr
		}
		if err == io.EOF {
			return nil
		}
	}
}

// ScanMetrics reads a log and collects the samples from every marker line.
// Any undecodable marker line aborts the scan.
func ScanMetrics(r io.Reader) (*Series, error) {
	series := NewSeries()
	err := forEachLine(r, func(lineNo int, line string) error {
		samples, ok, err := ParseLine(line)
		if err != nil {
			return &ParseError{Line: lineNo, Text: line, Err: err}
		}
		if !ok {
			return nil
		}
		for _, sample := range samples {
			series.Add(sample)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return series, nil
}

func ScanMetricsFile(path string) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	series, err := ScanMetrics(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return series, nil
}

// Aggregate scans the log at path and summarizes every metric in it.
// Either every metric is summarized or an error is returned.
func Aggregate(path string) ([]Summary, error) {
	series, err := ScanMetricsFile(path)
	if err != nil {
		return nil, err
	}
	summaries, err := series.Summarize()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return summaries, nil
}

func WriteSummaries(w io.Writer, summaries []Summary) error {
	bw := bufio.NewWriter(w)
	for _, summary := range summaries {
		if _, err := fmt.Fprintln(bw, summary.String()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ScanSummaries reads back summary lines, skipping anything else. Summaries are
// returned in file order; a metric may appear once per concatenated run.
func ScanSummaries(r io.Reader) ([]Summary, error) {
	var summaries []Summary
	err := forEachLine(r, func(lineNo int, line string) error {
		summary, ok, err := ParseSummaryLine(line)
		if err != nil {
			return &ParseError{Line: lineNo, Text: line, Err: err}
		}
		if ok {
			summaries = append(summaries, summary)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

func ScanSummariesFile(path string) ([]Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	summaries, err := ScanSummaries(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return summaries, nil
}

// Select returns the summaries of the named metric, one per run.
func Select(summaries []Summary, name string) []Summary {
	var selected []Summary
	for _, summary := range summaries {
		if summary.Name == name {
			selected = append(selected, summary)
		}
	}
	return selected
}
