// Package viewstate holds the presentation arithmetic behind the viewer:
// timeline zoom and scroll, the image popup transform, and frame navigation.
package viewstate

import (
	"math"

	"github.com/starford/scenaview/internal/models"
)

// Timeline zoom bounds and geometry, in CSS pixels.
const (
	TimelineMinZoom  = 0.5
	TimelineMaxZoom  = 3.0
	ZoomStep         = 0.25
	BaseFrameWidth   = 60.0
	frameGap         = 2.0
	timelinePadding  = 16.0
	markerOffset     = 8.0
	scrollFrameCount = 5
	markerEvery      = 10.0
)

// Timeline is the zoom and scroll state of a timeline strip.
type Timeline struct {
	Zoom       float64
	ScrollLeft float64
	frames     []models.TimelineFrame
}

// Marker is a scale label above the strip.
type Marker struct {
	FrameNumber int     `json:"frameNumber" msgpack:"frameNumber"`
	Timestamp   string  `json:"timestamp" msgpack:"timestamp"`
	Position    float64 `json:"position" msgpack:"position"`
}

// Layout is the derived geometry handed to renderers.
type Layout struct {
	Zoom         float64  `json:"zoom" msgpack:"zoom"`
	FrameWidth   float64  `json:"frameWidth" msgpack:"frameWidth"`
	Spacing      float64  `json:"spacing" msgpack:"spacing"`
	Width        float64  `json:"width" msgpack:"width"`
	ScrollAmount float64  `json:"scrollAmount" msgpack:"scrollAmount"`
	FrameCount   string   `json:"frameCount" msgpack:"frameCount"`
	CanZoomIn    bool     `json:"canZoomIn" msgpack:"canZoomIn"`
	CanZoomOut   bool     `json:"canZoomOut" msgpack:"canZoomOut"`
	Markers      []Marker `json:"markers" msgpack:"markers"`
}

// NewTimeline returns a timeline over frames at zoom 1.
func NewTimeline(frames []models.TimelineFrame) *Timeline {
	return &Timeline{Zoom: 1, frames: frames}
}

// SetZoom clamps z into the allowed range.
func (t *Timeline) SetZoom(z float64) {
	if math.IsNaN(z) {
		return
	}
	t.Zoom = math.Max(TimelineMinZoom, math.Min(TimelineMaxZoom, z))
}

func (t *Timeline) ZoomIn() {
	if t.Zoom < TimelineMaxZoom {
		t.Zoom = math.Min(TimelineMaxZoom, t.Zoom+ZoomStep)
	}
}

func (t *Timeline) ZoomOut() {
	if t.Zoom > TimelineMinZoom {
		t.Zoom = math.Max(TimelineMinZoom, t.Zoom-ZoomStep)
	}
}

// FrameWidth is the rendered width of one thumbnail.
func (t *Timeline) FrameWidth() float64 {
	return BaseFrameWidth * t.Zoom
}

// Spacing is the horizontal distance between thumbnail origins.
func (t *Timeline) Spacing() float64 {
	return t.FrameWidth() + frameGap
}

// Width is the full scrollable width of the strip; 0 without frames.
func (t *Timeline) Width() float64 {
	if len(t.frames) == 0 {
		return 0
	}
	return t.Spacing()*float64(len(t.frames)) + timelinePadding
}

// ScrollAmount is how far one scroll button press moves the strip.
func (t *Timeline) ScrollAmount() float64 {
	return t.Spacing() * scrollFrameCount
}

// Scroll moves the strip one step left (negative) or right (positive).
func (t *Timeline) Scroll(right bool) {
	if right {
		t.scrollBy(t.ScrollAmount())
	} else {
		t.scrollBy(-t.ScrollAmount())
	}
}

// Wheel applies a wheel event: with shift it scrolls by deltaY, with ctrl
// it zooms in for upward and out for downward motion. It reports whether the
// event was consumed.
func (t *Timeline) Wheel(deltaY float64, shift, ctrl bool) bool {
	switch {
	case shift:
		t.scrollBy(deltaY)
		return true
	case ctrl:
		if deltaY < 0 {
			t.ZoomIn()
		} else {
			t.ZoomOut()
		}
		return true
	}
	return false
}

func (t *Timeline) scrollBy(d float64) {
	t.ScrollLeft = math.Max(0, math.Min(t.ScrollLeft+d, t.Width()))
}

// Markers returns every n-th frame as a scale label, where n shrinks as the
// zoom grows.
func (t *Timeline) Markers() []Marker {
	step := max(1, int(math.Floor(markerEvery/t.Zoom)))
	out := make([]Marker, 0, len(t.frames)/step+1)
	for i, f := range t.frames {
		if i%step != 0 {
			continue
		}
		out = append(out, Marker{
			FrameNumber: f.FrameNumber,
			Timestamp:   f.Timestamp,
			Position:    t.positionAt(i),
		})
	}
	return out
}

// Position returns the x offset of frameNumber, or 0 if it is not sampled.
func (t *Timeline) Position(frameNumber int) float64 {
	for i, f := range t.frames {
		if f.FrameNumber == frameNumber {
			return t.positionAt(i)
		}
	}
	return 0
}

func (t *Timeline) positionAt(i int) float64 {
	return slot(t.Spacing(), i)
}

func slot(spacing float64, i int) float64 {
	return spacing*float64(i) + markerOffset
}

// Slot returns the x offset of the i-th sampled frame.
func (l Layout) Slot(i int) float64 {
	return slot(l.Spacing, i)
}

// Layout snapshots the derived geometry.
func (t *Timeline) Layout() Layout {
	return Layout{
		Zoom:         t.Zoom,
		FrameWidth:   t.FrameWidth(),
		Spacing:      t.Spacing(),
		Width:        t.Width(),
		ScrollAmount: t.ScrollAmount(),
		FrameCount:   FormatCount(len(t.frames)),
		CanZoomIn:    t.Zoom < TimelineMaxZoom,
		CanZoomOut:   t.Zoom > TimelineMinZoom,
		Markers:      t.Markers(),
	}
}
