// Package models defines the domain types for scenaview.
package models

// DefaultTotalFrames is assumed for sequences without a recorded frame count.
const DefaultTotalFrames = 1000

// Scenario is a labeled driving condition (e.g. "Rain").
type Scenario struct {
	ID          string `json:"id" yaml:"id" msgpack:"id"`
	Name        string `json:"name" yaml:"name" msgpack:"name"`
	Description string `json:"description,omitempty" yaml:"description" msgpack:"description,omitempty"`
}

// ScenarioShare records how often a scenario appears in a sequence, in percent.
type ScenarioShare struct {
	ScenarioID string `json:"scenarioId" yaml:"scenario_id" msgpack:"scenarioId"`
	Percentage int    `json:"percentage" yaml:"percentage" msgpack:"percentage"`
}

// Sequence is a recorded drive with a nominal frame count.
type Sequence struct {
	ID          string          `json:"id" yaml:"id" msgpack:"id"`
	Name        string          `json:"name" yaml:"name" msgpack:"name"`
	TotalFrames int             `json:"totalFrames,omitempty" yaml:"total_frames" msgpack:"totalFrames,omitempty"`
	Description string          `json:"description,omitempty" yaml:"description" msgpack:"description,omitempty"`
	Scenarios   []ScenarioShare `json:"scenarios" yaml:"scenarios" msgpack:"scenarios"`
}

// Frames returns the sequence frame count, falling back to DefaultTotalFrames.
func (s *Sequence) Frames() int {
	if s.TotalFrames > 0 {
		return s.TotalFrames
	}
	return DefaultTotalFrames
}

// Share returns the share recorded for scenarioID, if any.
func (s *Sequence) Share(scenarioID string) (ScenarioShare, bool) {
	for _, sh := range s.Scenarios {
		if sh.ScenarioID == scenarioID {
			return sh, true
		}
	}
	return ScenarioShare{}, false
}
