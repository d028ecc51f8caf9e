// Package annotate fabricates frame annotations: scenario presence,
// confidence scores, timestamps and placeholder image URLs. Presence and
// image choice are deterministic in the frame number and names; confidence
// is random.
package annotate

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/starford/scenaview/internal/models"
)

// FPS is the nominal capture rate used to derive timestamps.
const FPS = 30

const (
	// DefaultImageBaseURL is the public stock photo host for placeholders.
	DefaultImageBaseURL = "https://images.pexels.com/photos"

	frameImageQuery = "?auto=compress&cs=tinysrgb&w=800&h=600&fit=crop"
	thumbnailQuery  = "?auto=compress&cs=tinysrgb&w=120&h=80&fit=crop"

	maxTimelineFrames = 100
	segmentsPerBar    = 40
)

var scenarioImages = map[string][]string{
	"Tunnel":       {"1108099/pexels-photo-1108099.jpeg", "2885320/pexels-photo-2885320.jpeg", "3593922/pexels-photo-3593922.jpeg"},
	"City":         {"378570/pexels-photo-378570.jpeg", "1105766/pexels-photo-1105766.jpeg", "2253275/pexels-photo-2253275.jpeg"},
	"Rain":         {"125510/pexels-photo-125510.jpeg", "1118873/pexels-photo-1118873.jpeg", "2448749/pexels-photo-2448749.jpeg"},
	"Highway":      {"210019/pexels-photo-210019.jpeg", "1059040/pexels-photo-1059040.jpeg", "2253275/pexels-photo-2253275.jpeg"},
	"Night":        {"315938/pexels-photo-315938.jpeg", "1108099/pexels-photo-1108099.jpeg", "2448749/pexels-photo-2448749.jpeg"},
	"Snow":         {"1118873/pexels-photo-1118873.jpeg", "2885320/pexels-photo-2885320.jpeg", "3593922/pexels-photo-3593922.jpeg"},
	"Construction": {"2253275/pexels-photo-2253275.jpeg", "1059040/pexels-photo-1059040.jpeg", "378570/pexels-photo-378570.jpeg"},
	"Parking":      {"1105766/pexels-photo-1105766.jpeg", "210019/pexels-photo-210019.jpeg", "125510/pexels-photo-125510.jpeg"},
	"Rural":        {"3593922/pexels-photo-3593922.jpeg", "2885320/pexels-photo-2885320.jpeg", "1118873/pexels-photo-1118873.jpeg"},
	"Traffic":      {"2448749/pexels-photo-2448749.jpeg", "315938/pexels-photo-315938.jpeg", "1108099/pexels-photo-1108099.jpeg"},
}

var thumbnailImages = []string{
	"378570/pexels-photo-378570.jpeg",
	"1105766/pexels-photo-1105766.jpeg",
	"2253275/pexels-photo-2253275.jpeg",
	"210019/pexels-photo-210019.jpeg",
	"1059040/pexels-photo-1059040.jpeg",
	"125510/pexels-photo-125510.jpeg",
	"1118873/pexels-photo-1118873.jpeg",
	"2448749/pexels-photo-2448749.jpeg",
	"315938/pexels-photo-315938.jpeg",
	"1108099/pexels-photo-1108099.jpeg",
	"2885320/pexels-photo-2885320.jpeg",
	"3593922/pexels-photo-3593922.jpeg",
}

// allImages is every scenario pool concatenated in scenario-name order.
var allImages = func() []string {
	names := make([]string, 0, len(scenarioImages))
	for name := range scenarioImages {
		names = append(names, name)
	}
	sort.Strings(names)
	var out []string
	for _, name := range names {
		out = append(out, scenarioImages[name]...)
	}
	return out
}()

// Latency bounds the artificial delay applied to frame lookups.
type Latency struct {
	Min time.Duration
	Max time.Duration
}

// Annotator generates synthetic frame metadata.
type Annotator struct {
	baseURL string
	latency Latency

	mu  sync.Mutex
	rnd *rand.Rand
}

// Option configures an Annotator.
type Option func(*Annotator)

// WithBaseURL overrides the placeholder image host.
func WithBaseURL(u string) Option {
	return func(a *Annotator) { a.baseURL = u }
}

// WithLatency sets the simulated lookup delay range.
func WithLatency(l Latency) Option {
	return func(a *Annotator) { a.latency = l }
}

// WithRand sets the random source used for confidence and latency.
func WithRand(r *rand.Rand) Option {
	return func(a *Annotator) { a.rnd = r }
}

// New returns an Annotator with no latency and a time-seeded random source.
func New(opts ...Option) *Annotator {
	a := &Annotator{
		baseURL: DefaultImageBaseURL,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Timestamp formats the position of frame as HH:MM:SS at FPS.
func Timestamp(frame int) string {
	seconds := frame / FPS
	minutes := seconds / 60
	hours := minutes / 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes%60, seconds%60)
}

// Presence reports whether scenarioName is considered present at frame.
// Roughly two thirds of frames are present for any scenario.
func Presence(frame int, scenarioName string) bool {
	return (frame+len(scenarioName))%3 != 0
}

// Confidence returns a score in [0.70, 0.99] rounded to two decimals.
func (a *Annotator) Confidence() float64 {
	a.mu.Lock()
	f := a.rnd.Float64()
	a.mu.Unlock()
	return math.Round((0.7+f*0.29)*100) / 100
}

// ImagePath picks the placeholder image for a frame. The same sequence,
// frame and scenario always map to the same image.
func (a *Annotator) ImagePath(sequenceName string, frame int, scenarioName string) string {
	pool, ok := scenarioImages[scenarioName]
	if !ok {
		pool = allImages
	}
	idx := (frame + len(sequenceName)) % len(pool)
	return a.baseURL + "/" + pool[idx] + frameImageQuery
}

// ThumbnailURL returns the small timeline image for frame.
func (a *Annotator) ThumbnailURL(frame int) string {
	return a.baseURL + "/" + thumbnailImages[frame%len(thumbnailImages)] + thumbnailQuery
}

// Frame builds the metadata for one frame. An empty scenarioName means no
// scenario is selected and presence is always false.
func (a *Annotator) Frame(sequenceName string, frame int, scenarioName string) models.FrameMetadata {
	return models.FrameMetadata{
		SequenceName:     sequenceName,
		FrameNumber:      frame,
		ScenarioPresence: scenarioName != "" && Presence(frame, scenarioName),
		ImagePath:        a.ImagePath(sequenceName, frame, scenarioName),
		Timestamp:        Timestamp(frame),
		Confidence:       a.Confidence(),
	}
}

// FrameImage is Frame behind the simulated lookup latency. It returns the
// context error if ctx ends first.
func (a *Annotator) FrameImage(ctx context.Context, sequenceName string, frame int, scenarioName string) (models.FrameMetadata, error) {
	if d := a.delay(); d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return models.FrameMetadata{}, ctx.Err()
		case <-t.C:
		}
	} else if err := ctx.Err(); err != nil {
		return models.FrameMetadata{}, err
	}
	return a.Frame(sequenceName, frame, scenarioName), nil
}

func (a *Annotator) delay() time.Duration {
	lo, hi := a.latency.Min, a.latency.Max
	if hi <= lo {
		return lo
	}
	a.mu.Lock()
	n := a.rnd.Int63n(int64(hi - lo))
	a.mu.Unlock()
	return lo + time.Duration(n)
}

// Timeline samples at most 100 frames of seq, starting at frame 1.
func (a *Annotator) Timeline(seq models.Sequence, scenario models.Scenario) models.TimelineData {
	total := seq.Frames()
	step := max(1, total/maxTimelineFrames)

	frames := make([]models.TimelineFrame, 0, total/step+1)
	for i := 1; i <= total; i += step {
		frames = append(frames, models.TimelineFrame{
			FrameNumber:      i,
			Timestamp:        Timestamp(i),
			ScenarioPresence: Presence(i, scenario.Name),
			Confidence:       a.Confidence(),
			ThumbnailURL:     a.ThumbnailURL(i),
		})
	}

	return models.TimelineData{
		SequenceID:   seq.ID,
		SequenceName: seq.Name,
		ScenarioID:   scenario.ID,
		ScenarioName: scenario.Name,
		TotalFrames:  total,
		Frames:       frames,
	}
}

// Segments splits seq into about 40 presence bar segments for scenario.
// A segment is present when a hash of its bounds falls under the scenario
// share of the sequence, so sequences without a share have no presence.
func Segments(seq models.Sequence, scenario models.Scenario) []models.Segment {
	total := seq.Frames()
	size := max(1, total/segmentsPerBar)
	share, hasShare := seq.Share(scenario.ID)

	segments := make([]models.Segment, 0, total/size+1)
	for start := 0; start < total; start += size {
		end := min(start+size, total)
		present := hasShare && (start+end+len(seq.ID))%100 < share.Percentage
		status := "Absent"
		if present {
			status = "Present"
		}
		segments = append(segments, models.Segment{
			Start:       start,
			End:         end,
			HasScenario: present,
			Width:       float64(end-start) / float64(total) * 100,
			Tooltip:     fmt.Sprintf("Frames %d-%d: %s %s", start, end, scenario.Name, status),
		})
	}
	return segments
}
