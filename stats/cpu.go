package stats

import (
	"fmt"
	"math"

	"github.com/shirou/gopsutil/v4/cpu"
)

// Source delivers one aggregate CPU utilization reading per call, as a
// percentage in [0,100] covering the interval since the previous call.
type Source interface {
	Sample() (float64, error)
}

// CPUSource reads host CPU utilization through gopsutil. The underlying
// call is non-blocking and measures the delta since the last invocation,
// so the constructor takes one throwaway sample to establish the baseline;
// without it the first real reading would be meaningless.
type CPUSource struct{}

func NewCPUSource() (*CPUSource, error) {
	if _, err := cpu.Percent(0, false); err != nil {
		return nil, fmt.Errorf("priming cpu sampling failed: %w", err)
	}
	return &CPUSource{}, nil
}

func (s *CPUSource) Sample() (float64, error) {
	percentages, err := cpu.Percent(0, false)
	if err != nil {
		return 0, fmt.Errorf("cpu sampling failed: %w", err)
	}
	if len(percentages) == 0 {
		return 0, nil
	}
	return math.Max(0, math.Min(100, percentages[0])), nil
}
