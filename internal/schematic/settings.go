package schematic

import (
	"fmt"
	"math"
)

// Analysis selects the simulation a document is set up for.
type Analysis string

const (
	AnalysisTransient Analysis = "transient"
	AnalysisDC        Analysis = "dc"
	AnalysisAC        Analysis = "ac"
	AnalysisFourier   Analysis = "fourier"
)

// SimSettings holds per-document simulation parameters. The core only
// stores them; running a simulation is the simulator's business.
type SimSettings struct {
	Analysis       Analysis `yaml:"analysis"`
	TransientStart float64  `yaml:"transient_start"`
	TransientStop  float64  `yaml:"transient_stop"`
	TransientStep  float64  `yaml:"transient_step"`
}

// DefaultSimSettings returns a 5ms transient analysis in 0.1ms steps.
func DefaultSimSettings() SimSettings {
	return SimSettings{
		Analysis:       AnalysisTransient,
		TransientStart: 0,
		TransientStop:  5e-3,
		TransientStep:  1e-4,
	}
}

// Validate checks that the analysis is known and the transient window is usable.
func (s SimSettings) Validate() error {
	switch s.Analysis {
	case AnalysisTransient, AnalysisDC, AnalysisAC, AnalysisFourier:
	default:
		return fmt.Errorf("analysis must be \"transient\", \"dc\", \"ac\", or \"fourier\", got %q", s.Analysis)
	}
	for name, v := range map[string]float64{
		"transient_start": s.TransientStart,
		"transient_stop":  s.TransientStop,
		"transient_step":  s.TransientStep,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be finite", name)
		}
	}
	if s.TransientStop <= s.TransientStart {
		return fmt.Errorf("transient_stop (%g) must be after transient_start (%g)", s.TransientStop, s.TransientStart)
	}
	if s.TransientStep <= 0 {
		return fmt.Errorf("transient_step must be positive, got %g", s.TransientStep)
	}
	return nil
}
