package models

// FrameMetadata is the synthetic annotation of a single frame.
type FrameMetadata struct {
	SequenceName     string  `json:"sequenceName" msgpack:"sequenceName"`
	FrameNumber      int     `json:"frameNumber" msgpack:"frameNumber"`
	ScenarioPresence bool    `json:"scenarioPresence" msgpack:"scenarioPresence"`
	ImagePath        string  `json:"imagePath" msgpack:"imagePath"`
	Timestamp        string  `json:"timestamp,omitempty" msgpack:"timestamp,omitempty"`
	Confidence       float64 `json:"confidence,omitempty" msgpack:"confidence,omitempty"`
}

// TimelineFrame is one sampled frame of a timeline.
type TimelineFrame struct {
	FrameNumber      int     `json:"frameNumber" msgpack:"frameNumber"`
	Timestamp        string  `json:"timestamp" msgpack:"timestamp"`
	ScenarioPresence bool    `json:"scenarioPresence" msgpack:"scenarioPresence"`
	Confidence       float64 `json:"confidence,omitempty" msgpack:"confidence,omitempty"`
	ThumbnailURL     string  `json:"thumbnailUrl,omitempty" msgpack:"thumbnailUrl,omitempty"`
}

// TimelineData is the sampled view of a sequence for one scenario.
type TimelineData struct {
	SequenceID   string          `json:"sequenceId" msgpack:"sequenceId"`
	SequenceName string          `json:"sequenceName" msgpack:"sequenceName"`
	ScenarioID   string          `json:"scenarioId" msgpack:"scenarioId"`
	ScenarioName string          `json:"scenarioName" msgpack:"scenarioName"`
	TotalFrames  int             `json:"totalFrames" msgpack:"totalFrames"`
	Frames       []TimelineFrame `json:"frames" msgpack:"frames"`
}

// Segment is one slice of a sequence presence bar.
type Segment struct {
	Start       int     `json:"start" msgpack:"start"`
	End         int     `json:"end" msgpack:"end"`
	HasScenario bool    `json:"hasScenario" msgpack:"hasScenario"`
	Width       float64 `json:"width" msgpack:"width"`
	Tooltip     string  `json:"tooltip" msgpack:"tooltip"`
}

// Midpoint returns the frame a click on the segment jumps to.
func (s Segment) Midpoint() int {
	return (s.Start + s.End) / 2
}

// ScenarioStatistic summarises how much of the catalog a scenario covers.
type ScenarioStatistic struct {
	Name          string  `json:"name" msgpack:"name"`
	FrameCount    int     `json:"frameCount" msgpack:"frameCount"`
	Percentage    float64 `json:"percentage" msgpack:"percentage"`
	SequenceCount int     `json:"sequenceCount" msgpack:"sequenceCount"`
	Color         string  `json:"color" msgpack:"color"`
}
