package api

import (
	"github.com/starford/scenaview/internal/models"
	"github.com/starford/scenaview/internal/viewstate"
)

// ScenarioListResponse wraps scenario listings.
type ScenarioListResponse struct {
	Scenarios []models.Scenario `json:"scenarios" msgpack:"scenarios"`
	Total     int               `json:"total" msgpack:"total"`
}

// SequenceListItem is a sequence with the share of the requested scenario.
type SequenceListItem struct {
	models.Sequence `msgpack:",inline"`
	Percentage int  `json:"percentage" msgpack:"percentage"`
	Present    bool `json:"present" msgpack:"present"`
}

// SequenceListResponse wraps sequence listings.
type SequenceListResponse struct {
	Sequences []SequenceListItem `json:"sequences" msgpack:"sequences"`
	Total     int                `json:"total" msgpack:"total"`
}

// SegmentsResponse is the presence bar of one sequence for one scenario.
type SegmentsResponse struct {
	SequenceID string           `json:"sequenceId" msgpack:"sequenceId"`
	ScenarioID string           `json:"scenarioId" msgpack:"scenarioId"`
	Percentage int              `json:"percentage" msgpack:"percentage"`
	Segments   []models.Segment `json:"segments" msgpack:"segments"`
}

// TimelineResponse is the sampled timeline plus its rendered geometry.
type TimelineResponse struct {
	Timeline models.TimelineData `json:"timeline" msgpack:"timeline"`
	Layout   viewstate.Layout    `json:"layout" msgpack:"layout"`
}

// SelectScenarioRequest is the body of PUT /sessions/{id}/scenario.
type SelectScenarioRequest struct {
	ScenarioID string `json:"scenarioId" msgpack:"scenarioId"`
}

// SelectSequenceRequest is the body of PUT /sessions/{id}/sequence.
type SelectSequenceRequest struct {
	SequenceID string `json:"sequenceId" msgpack:"sequenceId"`
}

// SelectFrameRequest is the body of PUT /sessions/{id}/frame.
type SelectFrameRequest struct {
	Frame int `json:"frame" msgpack:"frame"`
}

// NavigateRequest is the body of POST /sessions/{id}/navigate.
type NavigateRequest struct {
	Delta int `json:"delta" msgpack:"delta"`
}

// FrameInputRequest is the body of PUT /sessions/{id}/frame-input.
type FrameInputRequest struct {
	Value string `json:"value" msgpack:"value"`
}

// ThemeRequest is the body of PUT /sessions/{id}/theme.
type ThemeRequest struct {
	DarkMode bool `json:"darkMode" msgpack:"darkMode"`
}

// ThemeResponse reports the theme of a session.
type ThemeResponse struct {
	DarkMode bool `json:"darkMode" msgpack:"darkMode"`
}
