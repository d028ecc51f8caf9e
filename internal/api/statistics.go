package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/starford/scenaview/internal/apperr"
	"github.com/starford/scenaview/internal/stats"
)

const (
	defaultChartSize = 400
	maxChartSize     = 2000
)

// Statistics handles GET /statistics.
func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, stats.Compute(h.cat.Scenarios(), h.cat.Sequences()))
}

// StatisticsChart handles GET /statistics/chart.png?dark=&width=&height=.
func (h *Handler) StatisticsChart(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dark, _ := strconv.ParseBool(q.Get("dark"))
	width, err := chartSize(q.Get("width"))
	if err != nil {
		writeError(w, r, "chart", err)
		return
	}
	height, err := chartSize(q.Get("height"))
	if err != nil {
		writeError(w, r, "chart", err)
		return
	}

	sum := stats.Compute(h.cat.Scenarios(), h.cat.Sequences())
	var buf bytes.Buffer
	if err := stats.RenderDonut(&buf, sum.Scenarios, dark, width, height); err != nil {
		if errors.Is(err, stats.ErrNoData) {
			writeError(w, r, "chart", fmt.Errorf("chart: %w", apperr.ErrNotFound))
			return
		}
		writeError(w, r, "chart", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// StatisticsSlice handles GET /statistics/slice?x=&y=&width=&height=. It
// returns the statistic drawn under pixel (x, y) of a chart rendered at the
// given size, or 404 when the point misses the ring.
func (h *Handler) StatisticsSlice(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	width, err := chartSize(q.Get("width"))
	if err != nil {
		writeError(w, r, "slice", err)
		return
	}
	height, err := chartSize(q.Get("height"))
	if err != nil {
		writeError(w, r, "slice", err)
		return
	}
	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	y, errY := strconv.ParseFloat(q.Get("y"), 64)
	if errX != nil || errY != nil {
		writeError(w, r, "slice", fmt.Errorf("%w: x and y must be numbers", apperr.ErrInvalidInput))
		return
	}

	sum := stats.Compute(h.cat.Scenarios(), h.cat.Sequences())
	g := stats.Geometry{Width: float64(width), Height: float64(height)}
	st, ok := g.SliceAt(sum.Scenarios, x, y)
	if !ok {
		writeError(w, r, "slice", fmt.Errorf("no slice at %v,%v: %w", x, y, apperr.ErrNotFound))
		return
	}
	respond(w, r, http.StatusOK, st)
}

func chartSize(raw string) (int, error) {
	if raw == "" {
		return defaultChartSize, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 100 || n > maxChartSize {
		return 0, fmt.Errorf("%w: chart size must be 100-%d", apperr.ErrInvalidInput, maxChartSize)
	}
	return n, nil
}
