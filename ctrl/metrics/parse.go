package metrics

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MarkerPrefix starts every log line that reports metric samples.
const MarkerPrefix = "Received Metric."

var (
	ErrMalformedSegment = errors.New("segment is not of the form key=value")
	ErrEmptyName        = errors.New("empty metric name")
	ErrInsufficientData = errors.New("standard deviation requires at least two samples")
)

type Sample struct {
	Name  string
	Value int64
}

// ParseError reports a marker line that could not be decoded.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func IsMarkerLine(line string) bool {
	return strings.HasPrefix(line, MarkerPrefix)
}

// ParseLine extracts the samples reported by a marker line. The boolean is false
// when the line does not start with MarkerPrefix, in which case it carries no samples.
func ParseLine(line string) ([]Sample, bool, error) {
	if !IsMarkerLine(line) {
		return nil, false, nil
	}
	body := strings.TrimSpace(line[len(MarkerPrefix):])
	segments := strings.Split(body, ", ")
	samples := make([]Sample, 0, len(segments))
	for _, segment := range segments {
		sample, err := parseSegment(segment)
		if err != nil {
			return nil, true, err
		}
		samples = append(samples, sample)
	}
	return samples, true, nil
}

func parseSegment(segment string) (Sample, error) {
	name, value, found := strings.Cut(segment, "=")
	if !found {
		return Sample{}, fmt.Errorf("%w: %q", ErrMalformedSegment, segment)
	}
	if name == "" {
		return Sample{}, fmt.Errorf("%w in %q", ErrEmptyName, segment)
	}
	v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return Sample{}, fmt.Errorf("metric %s: %w", name, err)
	}
	return Sample{Name: name, Value: v}, nil
}
