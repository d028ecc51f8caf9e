// Package stats aggregates scenario coverage across the catalog and renders
// it as a doughnut chart.
package stats

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/starford/scenaview/internal/models"
)

// ErrNoData is returned when there is nothing to chart.
var ErrNoData = errors.New("stats: no scenario coverage")

var palette = []string{
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4", "#FFEAA7",
	"#DDA0DD", "#98D8C8", "#F7DC6F", "#BB8FCE", "#85C1E9",
	"#F8C471", "#82E0AA", "#F1948A", "#85C1E9", "#D7BDE2",
}

// Summary is the result of Compute.
type Summary struct {
	TotalFrames    int                        `json:"totalFrames" msgpack:"totalFrames"`
	TotalSequences int                        `json:"totalSequences" msgpack:"totalSequences"`
	Scenarios      []models.ScenarioStatistic `json:"scenarios" msgpack:"scenarios"`
}

// Compute estimates per-scenario frame counts from the sequence shares.
// Scenarios that cover no frames are omitted; the rest are ordered by
// descending percentage of all catalog frames.
func Compute(scenarios []models.Scenario, sequences []models.Sequence) Summary {
	sum := Summary{
		TotalSequences: len(sequences),
		Scenarios:      []models.ScenarioStatistic{},
	}
	for i := range sequences {
		sum.TotalFrames += sequences[i].Frames()
	}
	if sum.TotalFrames == 0 {
		return sum
	}

	for idx, sc := range scenarios {
		frames, count := 0, 0
		for i := range sequences {
			sh, ok := sequences[i].Share(sc.ID)
			if !ok || sh.Percentage <= 0 {
				continue
			}
			frames += int(math.Round(float64(sh.Percentage) / 100 * float64(sequences[i].Frames())))
			count++
		}
		if frames == 0 {
			continue
		}
		sum.Scenarios = append(sum.Scenarios, models.ScenarioStatistic{
			Name:          sc.Name,
			FrameCount:    frames,
			Percentage:    float64(frames) / float64(sum.TotalFrames) * 100,
			SequenceCount: count,
			Color:         palette[idx%len(palette)],
		})
	}

	sort.SliceStable(sum.Scenarios, func(i, j int) bool {
		return sum.Scenarios[i].Percentage > sum.Scenarios[j].Percentage
	})
	return sum
}

// RenderDonut writes a PNG doughnut chart of stats to w. The ring follows
// Geometry: slices start at the top and run clockwise, each spanning its
// percentage of the full circle. Coverage beyond 100% is not drawn, so every
// painted pixel belongs to the slice SliceAt reports for it.
func RenderDonut(w io.Writer, stats []models.ScenarioStatistic, dark bool, width, height int) error {
	if len(stats) == 0 {
		return ErrNoData
	}

	bg := drawing.ColorWhite
	if dark {
		bg = drawing.ColorFromHex("1E1E1E")
	}

	r, err := chart.PNG(width, height)
	if err != nil {
		return fmt.Errorf("stats: new renderer: %w", err)
	}

	r.SetFillColor(bg)
	r.MoveTo(0, 0)
	r.LineTo(width, 0)
	r.LineTo(width, height)
	r.LineTo(0, height)
	r.Close()
	r.Fill()

	g := Geometry{Width: float64(width), Height: float64(height)}
	fcx, fcy := g.Center()
	cx, cy := int(math.Round(fcx)), int(math.Round(fcy))
	outer := g.OuterRadius()

	current := 0.0
	for _, st := range stats {
		start := current
		slice := st.Percentage / 100 * 2 * math.Pi
		current += slice
		if start >= 2*math.Pi || slice <= 0 {
			continue
		}
		r.SetFillColor(hexColor(st.Color))
		r.SetStrokeColor(bg)
		r.SetStrokeWidth(2)
		r.MoveTo(cx, cy)
		r.ArcTo(cx, cy, outer, outer, start-math.Pi/2, math.Min(slice, 2*math.Pi-start))
		r.LineTo(cx, cy)
		r.Close()
		r.FillStroke()
	}

	inner := g.InnerRadius()
	r.SetFillColor(bg)
	r.MoveTo(cx+int(inner), cy)
	r.ArcTo(cx, cy, inner, inner, 0, 2*math.Pi)
	r.Close()
	r.Fill()

	if err := r.Save(w); err != nil {
		return fmt.Errorf("stats: render donut: %w", err)
	}
	return nil
}

func hexColor(s string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(s, "#"))
}
