package metrics

// Series accumulates the samples of every metric seen in a log, remembering
// the order in which metric names first appeared.
type Series struct {
	names  []string
	values map[string][]int64
}

func NewSeries() *Series {
	return &Series{
		values: map[string][]int64{},
	}
}

func (s *Series) Add(sample Sample) {
	existing, found := s.values[sample.Name]
	if !found {
		s.names = append(s.names, sample.Name)
	}
	s.values[sample.Name] = append(existing, sample.Value)
}

// Names returns metric names in first-seen order.
func (s *Series) Names() []string {
	return append([]string(nil), s.names...)
}

func (s *Series) Values(name string) []int64 {
	return append([]int64(nil), s.values[name]...)
}

func (s *Series) Len() int {
	return len(s.names)
}

// Summarize computes a Summary for every metric in first-seen order. It fails
// as a whole if any single metric cannot be summarized.
func (s *Series) Summarize() ([]Summary, error) {
	summaries := make([]Summary, 0, len(s.names))
	for _, name := range s.names {
		summary, err := Summarize(name, s.values[name])
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
