package annotate

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/starford/scenaview/internal/models"
)

func testAnnotator() *Annotator {
	return New(WithRand(rand.New(rand.NewSource(1))))
}

func TestTimestamp(t *testing.T) {
	cases := map[int]string{
		0:      "00:00:00",
		29:     "00:00:00",
		30:     "00:00:01",
		1800:   "00:01:00",
		108000: "01:00:00",
		111630: "01:02:01",
	}
	for frame, want := range cases {
		if got := Timestamp(frame); got != want {
			t.Errorf("Timestamp(%d) = %q, want %q", frame, got, want)
		}
	}
}

func TestPresence(t *testing.T) {
	// len("Rain") = 4: frame 2 -> 6 % 3 == 0 -> absent.
	if Presence(2, "Rain") {
		t.Error("frame 2 Rain should be absent")
	}
	if !Presence(3, "Rain") {
		t.Error("frame 3 Rain should be present")
	}
}

func TestConfidenceRange(t *testing.T) {
	a := testAnnotator()
	for i := 0; i < 1000; i++ {
		c := a.Confidence()
		if c < 0.7 || c > 0.99 {
			t.Fatalf("confidence %v out of range", c)
		}
		if math.Abs(c*100-math.Round(c*100)) > 1e-6 {
			t.Fatalf("confidence %v not rounded to 2 decimals", c)
		}
	}
}

func TestImagePath_Deterministic(t *testing.T) {
	a := testAnnotator()
	p1 := a.ImagePath("Tunnel Drive", 42, "Tunnel")
	p2 := a.ImagePath("Tunnel Drive", 42, "Tunnel")
	if p1 != p2 {
		t.Errorf("image path not deterministic: %q vs %q", p1, p2)
	}
	// (42 + 12) % 3 == 0 -> first Tunnel image.
	want := DefaultImageBaseURL + "/1108099/pexels-photo-1108099.jpeg" + frameImageQuery
	if p1 != want {
		t.Errorf("ImagePath = %q, want %q", p1, want)
	}
}

func TestImagePath_UnknownScenarioUsesAllImages(t *testing.T) {
	a := New(WithBaseURL("http://img.test"))
	p := a.ImagePath("x", 0, "Fog")
	if !strings.HasPrefix(p, "http://img.test/") {
		t.Errorf("base url not applied: %q", p)
	}
	// index 1 of the flattened pool; first pool by name is City.
	if !strings.Contains(p, "1105766") {
		t.Errorf("unexpected fallback image: %q", p)
	}
}

func TestFrame_NoScenario(t *testing.T) {
	a := testAnnotator()
	md := a.Frame("Morning Commute", 4, "")
	if md.ScenarioPresence {
		t.Error("presence must be false without scenario")
	}
	if md.SequenceName != "Morning Commute" || md.FrameNumber != 4 {
		t.Errorf("metadata = %+v", md)
	}
	if md.Timestamp != "00:00:00" {
		t.Errorf("timestamp = %q", md.Timestamp)
	}
}

func TestFrameImage_Latency(t *testing.T) {
	a := New(WithLatency(Latency{Min: 20 * time.Millisecond, Max: 40 * time.Millisecond}))
	start := time.Now()
	if _, err := a.FrameImage(context.Background(), "s", 1, "Rain"); err != nil {
		t.Fatal(err)
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Error("latency not applied")
	}
}

func TestFrameImage_Cancelled(t *testing.T) {
	a := New(WithLatency(Latency{Min: time.Second, Max: 2 * time.Second}))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := a.FrameImage(ctx, "s", 1, "Rain")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}

func TestTimeline_Sampling(t *testing.T) {
	a := testAnnotator()
	seq := models.Sequence{ID: "1", Name: "Morning Commute", TotalFrames: 1200}
	sc := models.Scenario{ID: "2", Name: "Clear Sky"}

	td := a.Timeline(seq, sc)
	if td.TotalFrames != 1200 || td.ScenarioName != "Clear Sky" || td.SequenceID != "1" {
		t.Errorf("timeline header = %+v", td)
	}
	// step 12: 1, 13, ..., 1189 -> 100 frames.
	if len(td.Frames) != 100 {
		t.Fatalf("frames = %d, want 100", len(td.Frames))
	}
	if td.Frames[0].FrameNumber != 1 || td.Frames[1].FrameNumber != 13 {
		t.Errorf("unexpected sampling: %d, %d", td.Frames[0].FrameNumber, td.Frames[1].FrameNumber)
	}
	for _, f := range td.Frames {
		if f.ScenarioPresence != Presence(f.FrameNumber, "Clear Sky") {
			t.Fatalf("presence mismatch at frame %d", f.FrameNumber)
		}
		if !strings.Contains(f.ThumbnailURL, "w=120&h=80") {
			t.Fatalf("thumbnail url = %q", f.ThumbnailURL)
		}
	}
}

func TestTimeline_ShortSequence(t *testing.T) {
	a := testAnnotator()
	td := a.Timeline(models.Sequence{ID: "x", Name: "x", TotalFrames: 50}, models.Scenario{ID: "1", Name: "City"})
	if len(td.Frames) != 50 {
		t.Errorf("frames = %d, want 50", len(td.Frames))
	}
}

func TestTimeline_DefaultFrames(t *testing.T) {
	a := testAnnotator()
	td := a.Timeline(models.Sequence{ID: "x", Name: "x"}, models.Scenario{ID: "1", Name: "City"})
	if td.TotalFrames != 1000 || len(td.Frames) != 100 {
		t.Errorf("total = %d, frames = %d", td.TotalFrames, len(td.Frames))
	}
}

func TestSegments(t *testing.T) {
	seq := models.Sequence{
		ID: "3", Name: "Tunnel Drive", TotalFrames: 800,
		Scenarios: []models.ScenarioShare{{ScenarioID: "1", Percentage: 100}},
	}
	segs := Segments(seq, models.Scenario{ID: "1", Name: "City"})
	if len(segs) != 40 {
		t.Fatalf("segments = %d, want 40", len(segs))
	}
	var width float64
	for i, s := range segs {
		if s.Start != i*20 || s.End != s.Start+20 {
			t.Fatalf("segment %d bounds = %d-%d", i, s.Start, s.End)
		}
		if !s.HasScenario {
			t.Fatalf("100%% share should mark every segment present")
		}
		width += s.Width
	}
	if width < 99.999 || width > 100.001 {
		t.Errorf("widths sum to %v", width)
	}
	if segs[0].Tooltip != "Frames 0-20: City Present" {
		t.Errorf("tooltip = %q", segs[0].Tooltip)
	}
	if segs[0].Midpoint() != 10 {
		t.Errorf("midpoint = %d", segs[0].Midpoint())
	}
}

func TestSegments_NoShare(t *testing.T) {
	seq := models.Sequence{ID: "1", Name: "Morning Commute", TotalFrames: 1200}
	for _, s := range Segments(seq, models.Scenario{ID: "3", Name: "Tunnel"}) {
		if s.HasScenario {
			t.Fatal("segment present without share")
		}
		if !strings.HasSuffix(s.Tooltip, "Tunnel Absent") {
			t.Fatalf("tooltip = %q", s.Tooltip)
		}
	}
}

func TestSegments_LastSegmentClamped(t *testing.T) {
	seq := models.Sequence{ID: "1", Name: "x", TotalFrames: 950}
	segs := Segments(seq, models.Scenario{ID: "1", Name: "City"})
	last := segs[len(segs)-1]
	if last.End != 950 {
		t.Errorf("last end = %d, want 950", last.End)
	}
	if last.End-last.Start > 23 {
		t.Errorf("last segment too wide: %+v", last)
	}
}
