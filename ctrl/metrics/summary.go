package metrics

import (
	"fmt"
	"math"
	"math/big"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"
)

type Stat int

const (
	Median Stat = iota
	Mean
	Stdev
)

var statNames = [...]string{
	Median: "median",
	Mean:   "mean",
	Stdev:  "stdev",
}

func (s Stat) String() string {
	if s < 0 || int(s) >= len(statNames) {
		return fmt.Sprintf("Stat(%d)", int(s))
	}
	return statNames[s]
}

func ParseStat(name string) (Stat, error) {
	for i, n := range statNames {
		if strings.EqualFold(n, name) {
			return Stat(i), nil
		}
	}
	return 0, fmt.Errorf("unknown statistic %q (want median, mean or stdev)", name)
}

type Summary struct {
	Name    string
	Samples int
	Median  float64
	Mean    float64
	Stdev   float64

	// IntegerMedian is set when the median is a single observed sample rather
	// than the average of the two middle samples. MedianSample then holds it
	// without the rounding Median may carry above 2^53.
	IntegerMedian bool
	MedianSample  int64
}

func (s Summary) Value(which Stat) float64 {
	switch which {
	case Median:
		return s.Median
	case Mean:
		return s.Mean
	case Stdev:
		return s.Stdev
	default:
		panic(fmt.Sprintf("invalid statistic: %v", which))
	}
}

// Summarize computes median, mean and sample standard deviation of values.
func Summarize(name string, values []int64) (Summary, error) {
	if len(values) < 2 {
		return Summary{}, fmt.Errorf("metric %s has %d sample(s): %w", name, len(values), ErrInsufficientData)
	}
	sorted := append([]int64(nil), values...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})
	floats := make([]float64, len(values))
	for i, v := range values {
		floats[i] = float64(v)
	}
	summary := Summary{
		Name:    name,
		Samples: len(values),
		Mean:    stat.Mean(floats, nil),
		Stdev:   sampleStdev(values),
	}
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		summary.Median = float64(sorted[mid])
		summary.IntegerMedian = true
		summary.MedianSample = sorted[mid]
	} else {
		pair := new(big.Int).Add(big.NewInt(sorted[mid-1]), big.NewInt(sorted[mid]))
		summary.Median, _ = new(big.Rat).SetFrac(pair, big.NewInt(2)).Float64()
	}
	return summary, nil
}

const stdevPrecision = 256

// sampleStdev evaluates sqrt((n·Σx² − (Σx)²) / (n(n−1))) with the sums held
// exactly, so the only rounding is in the final square root.
func sampleStdev(values []int64) float64 {
	n := big.NewInt(int64(len(values)))
	sum, sumSq := new(big.Int), new(big.Int)
	for _, v := range values {
		x := big.NewInt(v)
		sum.Add(sum, x)
		sumSq.Add(sumSq, new(big.Int).Mul(x, x))
	}
	num := new(big.Int).Mul(n, sumSq)
	num.Sub(num, new(big.Int).Mul(sum, sum))
	den := new(big.Int).Mul(n, new(big.Int).Sub(n, big.NewInt(1)))

	variance := new(big.Float).SetPrec(stdevPrecision).SetRat(new(big.Rat).SetFrac(num, den))
	stdev, _ := new(big.Float).SetPrec(stdevPrecision).Sqrt(variance).Float64()
	return stdev
}

func (s Summary) String() string {
	median := formatFloat(s.Median)
	if s.IntegerMedian {
		median = strconv.FormatInt(s.MedianSample, 10)
	}
	return fmt.Sprintf("%s median=%s mean=%s stdev=%s", s.Name, median, formatFloat(s.Mean), formatFloat(s.Stdev))
}

// formatFloat prints the shortest decimal that round-trips, always with a
// fractional part, using exponent form for very large or very small magnitudes.
func formatFloat(v float64) string {
	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

var summaryPattern = regexp.MustCompile(`^(\S+) median=(\S+) mean=(\S+) stdev=(\S+)$`)

// ParseSummaryLine decodes a line written by Summary.String. The boolean is
// false for lines that are not summaries.
func ParseSummaryLine(line string) (Summary, bool, error) {
	matches := summaryPattern.FindStringSubmatch(strings.TrimSpace(line))
	if matches == nil {
		return Summary{}, false, nil
	}
	var values [3]float64
	for i := range values {
		v, err := strconv.ParseFloat(matches[2+i], 64)
		if err != nil {
			return Summary{}, true, fmt.Errorf("metric %s: %w", matches[1], err)
		}
		values[i] = v
	}
	summary := Summary{
		Name:   matches[1],
		Median: values[Median],
		Mean:   values[Mean],
		Stdev:  values[Stdev],
	}
	if sample, err := strconv.ParseInt(matches[2], 10, 64); err == nil {
		summary.IntegerMedian = true
		summary.MedianSample = sample
	}
	return summary, true, nil
}
