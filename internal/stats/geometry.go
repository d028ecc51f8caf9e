package stats

import (
	"math"

	"github.com/starford/scenaview/internal/models"
)

// Geometry describes the doughnut layout on a canvas of Width x Height and
// answers which slice lies under a pointer position.
type Geometry struct {
	Width  float64
	Height float64
}

// Center returns the doughnut center.
func (g Geometry) Center() (float64, float64) {
	return g.Width / 2, g.Height / 2
}

// OuterRadius leaves a 20px margin inside the smaller canvas dimension.
func (g Geometry) OuterRadius() float64 {
	cx, cy := g.Center()
	return math.Min(cx, cy) - 20
}

// InnerRadius is the radius of the hole.
func (g Geometry) InnerRadius() float64 {
	return g.OuterRadius() * 0.6
}

// SliceAt returns the statistic whose slice contains (x, y). Slices start at
// the top and run clockwise in the order given, each spanning its
// percentage of the full circle.
func (g Geometry) SliceAt(stats []models.ScenarioStatistic, x, y float64) (models.ScenarioStatistic, bool) {
	cx, cy := g.Center()
	dist := math.Hypot(x-cx, y-cy)
	if dist < g.InnerRadius() || dist > g.OuterRadius() {
		return models.ScenarioStatistic{}, false
	}

	angle := math.Atan2(y-cy, x-cx)
	normalized := math.Mod(angle+math.Pi/2+2*math.Pi, 2*math.Pi)

	current := 0.0
	for _, st := range stats {
		slice := st.Percentage / 100 * 2 * math.Pi
		if normalized >= current && normalized <= current+slice {
			return st, true
		}
		current += slice
	}
	return models.ScenarioStatistic{}, false
}
