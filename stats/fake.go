package stats

// FakeSource replays a scripted sequence of utilization values. The last
// value repeats once the script is exhausted. Used by tests and available
// for bench-driving the renderer without real load.
type FakeSource struct {
	values []float64
	index  int
}

func NewFakeSource(values ...float64) *FakeSource {
	return &FakeSource{values: values}
}

func (s *FakeSource) Sample() (float64, error) {
	if len(s.values) == 0 {
		return 0, nil
	}
	v := s.values[s.index]
	if s.index < len(s.values)-1 {
		s.index++
	}
	return v, nil
}
