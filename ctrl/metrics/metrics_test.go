package metrics

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLog(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "experiment.log")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestParseLine(t *testing.T) {
	samples, ok, err := ParseLine("Received Metric. gtid=7, block_time_us=12, queued_time_us=-3\n")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []Sample{
		{Name: "gtid", Value: 7},
		{Name: "block_time_us", Value: 12},
		{Name: "queued_time_us", Value: -3},
	}, samples)

	samples, ok, err = ParseLine("Received SetScheduler. type=1, preemption_interval_us=0")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, samples)

	_, ok, err = ParseLine("")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParseLineSplitsOnFirstEquals(t *testing.T) {
	_, _, err := ParseLine("Received Metric. a==5")
	require.Error(t, err)
	var numErr *strconv.NumError
	assert.True(t, errors.As(err, &numErr))
}

func TestParseLineErrors(t *testing.T) {
	_, ok, err := ParseLine("Received Metric. latency=abc")
	assert.True(t, ok)
	var numErr *strconv.NumError
	assert.True(t, errors.As(err, &numErr))

	_, _, err = ParseLine("Received Metric. latency")
	assert.ErrorIs(t, err, ErrMalformedSegment)

	_, _, err = ParseLine("Received Metric.")
	assert.ErrorIs(t, err, ErrMalformedSegment)

	_, _, err = ParseLine("Received Metric. =4")
	assert.ErrorIs(t, err, ErrEmptyName)

	_, _, err = ParseLine("Received Metric. a=1,b=2")
	assert.Error(t, err, "segments are separated by comma and space")
}

func TestSeriesKeepsFirstSeenOrder(t *testing.T) {
	s := NewSeries()
	s.Add(Sample{Name: "b", Value: 1})
	s.Add(Sample{Name: "a", Value: 2})
	s.Add(Sample{Name: "b", Value: 3})
	s.Add(Sample{Name: "c", Value: 4})

	assert.Equal(t, []string{"b", "a", "c"}, s.Names())
	assert.Equal(t, []int64{1, 3}, s.Values("b"))
	assert.Equal(t, 3, s.Len())
	assert.Nil(t, s.Values("missing"))
}

func TestSummarize(t *testing.T) {
	odd, err := Summarize("x", []int64{30, 10, 20})
	require.NoError(t, err)
	assert.Equal(t, 20.0, odd.Median)
	assert.True(t, odd.IntegerMedian)
	assert.Equal(t, 20.0, odd.Mean)
	assert.Equal(t, 10.0, odd.Stdev)
	assert.Equal(t, 3, odd.Samples)

	even, err := Summarize("y", []int64{4, 1, 3, 2})
	require.NoError(t, err)
	assert.Equal(t, 2.5, even.Median)
	assert.False(t, even.IntegerMedian)
	assert.Equal(t, 2.5, even.Mean)
	assert.Equal(t, 1.2909944487358056, even.Stdev)
}

func TestSummarizeNeedsTwoSamples(t *testing.T) {
	_, err := Summarize("once", []int64{5})
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = Summarize("never", nil)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestSummaryString(t *testing.T) {
	s, err := Summarize("latency", []int64{10, 20, 30})
	require.NoError(t, err)
	assert.Equal(t, "latency median=20 mean=20.0 stdev=10.0", s.String())

	s, err = Summarize("pair", []int64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, "pair median=1.5 mean=1.5 stdev=0.7071067811865476", s.String())

	s, err = Summarize("even", []int64{10, 20})
	require.NoError(t, err)
	assert.Equal(t, "even median=15.0 mean=15.0 stdev=7.0710678118654755", s.String())
}

func TestSummaryStdevDigits(t *testing.T) {
	// expected digits are those printed by Python's statistics.stdev
	cases := []struct {
		values []int64
		stdev  string
	}{
		{[]int64{50, 50631, 8, 5, 7602, 28140, 1}, "19772.93744345683"},
		{[]int64{3, 8, 2234302, 429, 69, 9, 573, 3032085}, "1237356.331149687"},
		{[]int64{7, 7}, "0.0"},
		{[]int64{-5, 5}, "7.0710678118654755"},
	}
	for _, c := range cases {
		s, err := Summarize("x", c.values)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(s.String(), " stdev="+c.stdev), "%v: got %q", c.values, s.String())
	}
}

func TestSummaryLargeValues(t *testing.T) {
	const big = int64(1)<<53 + 1
	s, err := Summarize("big", []int64{big, big, big})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(s.String(), "big median=9007199254740993 "), s.String())
	assert.Equal(t, 0.0, s.Stdev)

	s, err = Summarize("pair", []int64{big, big + 2})
	require.NoError(t, err)
	assert.Equal(t, 9007199254740994.0, s.Median)
	assert.Equal(t, 1.4142135623730951, s.Stdev)

	parsed, ok, err := ParseSummaryLine("big median=9007199254740993 mean=9007199254740992.0 stdev=0.0")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(9007199254740993), parsed.MedianSample)
	assert.True(t, strings.HasPrefix(parsed.String(), "big median=9007199254740993 "))
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "0.0", formatFloat(0))
	assert.Equal(t, "-2.5", formatFloat(-2.5))
	assert.Equal(t, "123.0", formatFloat(123))
	assert.Equal(t, "1e+16", formatFloat(1e16))
	assert.Equal(t, "1e-05", formatFloat(0.00001))
	assert.Equal(t, "0.0001", formatFloat(0.0001))
}

func TestAggregateRoundTrip(t *testing.T) {
	path := writeLog(t, "Received Metric. latency=10, latency=20\nReceived Metric. latency=30\n")
	summaries, err := Aggregate(path)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "latency median=20 mean=20.0 stdev=10.0", summaries[0].String())
}

func TestAggregateIgnoresOtherLines(t *testing.T) {
	path := writeLog(t, strings.Join([]string{
		"Orca listening on port 8000...",
		"",
		"Received Metric. gtid=1, queued_time_us=5, block_time_us=100",
		"Determining scheduler. curr=dFCFS, var=1.00, thresh=2.00",
		"  Received Metric. queued_time_us=oops",
		"Received Metric. gtid=2, queued_time_us=7, block_time_us=200",
	}, "\n"))
	summaries, err := Aggregate(path)
	require.NoError(t, err)

	var names []string
	for _, s := range summaries {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"gtid", "queued_time_us", "block_time_us"}, names)
	assert.Equal(t, 6.0, summaries[1].Mean)
	assert.Equal(t, 150.0, summaries[2].Median)
}

func TestAggregateFailures(t *testing.T) {
	_, err := Aggregate(filepath.Join(t.TempDir(), "missing.log"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := writeLog(t, "Received Metric. latency=1\nReceived Metric. latency=abc\n")
	summaries, err := Aggregate(path)
	assert.Nil(t, summaries)
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, 2, parseErr.Line)

	path = writeLog(t, "Received Metric. a=1, b=2\nReceived Metric. a=3\n")
	summaries, err = Aggregate(path)
	assert.Nil(t, summaries)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestAggregateEmptyLog(t *testing.T) {
	summaries, err := Aggregate(writeLog(t, ""))
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestScanSummaries(t *testing.T) {
	input := strings.Join([]string{
		"queued_time_us median=20 mean=20.0 stdev=10.0",
		"some banner",
		"block_time_us median=2.5 mean=3.25 stdev=1e-05",
		"queued_time_us median=15.0 mean=16.5 stdev=2.0",
	}, "\n")
	summaries, err := ScanSummaries(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	assert.Equal(t, Summary{Name: "queued_time_us", Median: 20, Mean: 20, Stdev: 10, IntegerMedian: true, MedianSample: 20}, summaries[0])
	assert.Equal(t, 1e-05, summaries[1].Stdev)

	runs := Select(summaries, "queued_time_us")
	require.Len(t, runs, 2)
	assert.Equal(t, 16.5, runs[1].Value(Mean))
	assert.Equal(t, 15.0, runs[1].Value(Median))
	assert.Equal(t, "queued_time_us median=15.0 mean=16.5 stdev=2.0", runs[1].String())
}

func TestScanSummariesBadNumber(t *testing.T) {
	_, err := ScanSummaries(strings.NewReader("x median=1 mean=two stdev=3\n"))
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, 1, parseErr.Line)
}

func TestWriteSummariesMatchesScan(t *testing.T) {
	series, err := ScanMetrics(strings.NewReader("Received Metric. a=1, b=10\nReceived Metric. a=4, b=30\n"))
	require.NoError(t, err)
	summaries, err := series.Summarize()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteSummaries(&buf, summaries))
	assert.Equal(t, "a median=2.5 mean=2.5 stdev=2.1213203435596424\nb median=20.0 mean=20.0 stdev=14.142135623730951\n", buf.String())
}

func TestParseStat(t *testing.T) {
	for _, name := range []string{"median", "MEAN", "Stdev"} {
		_, err := ParseStat(name)
		assert.NoError(t, err)
	}
	s, err := ParseStat("stdev")
	require.NoError(t, err)
	assert.Equal(t, Stdev, s)
	assert.Equal(t, "stdev", s.String())

	_, err = ParseStat("mode")
	assert.Error(t, err)
}
