package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/scenaview/internal/annotate"
	"github.com/starford/scenaview/internal/apperr"
	"github.com/starford/scenaview/internal/catalog"
	"github.com/starford/scenaview/internal/models"
	"github.com/starford/scenaview/internal/viewstate"
)

// ListScenarios handles GET /scenarios?q=.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	items := h.cat.FilterScenarios(r.URL.Query().Get("q"))
	respond(w, r, http.StatusOK, ScenarioListResponse{Scenarios: items, Total: len(items)})
}

// GetScenario handles GET /scenarios/{id}.
func (h *Handler) GetScenario(w http.ResponseWriter, r *http.Request) {
	sc, err := h.cat.ScenarioByID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "get scenario", err)
		return
	}
	respond(w, r, http.StatusOK, sc)
}

// ListSequences handles GET /sequences?scenario=&mode=&q=&min=.
//
// Without a scenario every sequence matching q is listed. With a scenario the
// dashboard rules apply: mode=present keeps sequences that contain it and
// min drops shares below the given percentage.
func (h *Handler) ListSequences(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	scenarioID := q.Get("scenario")
	mode := q.Get("mode")
	if mode == "" {
		mode = catalog.ModeAll
	}
	if mode != catalog.ModeAll && mode != catalog.ModePresent {
		writeError(w, r, "list sequences", fmt.Errorf("%w: mode must be %q or %q", apperr.ErrInvalidInput, catalog.ModeAll, catalog.ModePresent))
		return
	}
	minPct := 0
	if raw := q.Get("min"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > 100 {
			writeError(w, r, "list sequences", fmt.Errorf("%w: min must be 0-100", apperr.ErrInvalidInput))
			return
		}
		minPct = n
	}

	if scenarioID != "" {
		if _, err := h.cat.ScenarioByID(scenarioID); err != nil {
			writeError(w, r, "list sequences", err)
			return
		}
	}

	seqs := h.cat.Browse(scenarioID, mode, q.Get("q"), minPct)
	items := make([]SequenceListItem, 0, len(seqs))
	for _, sq := range seqs {
		_, present := sq.Share(scenarioID)
		items = append(items, SequenceListItem{
			Sequence:   sq,
			Percentage: h.cat.ScenarioPercentage(sq.ID, scenarioID),
			Present:    present,
		})
	}
	respond(w, r, http.StatusOK, SequenceListResponse{Sequences: items, Total: len(items)})
}

// GetSequence handles GET /sequences/{id}.
func (h *Handler) GetSequence(w http.ResponseWriter, r *http.Request) {
	sq, err := h.cat.SequenceByID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "get sequence", err)
		return
	}
	respond(w, r, http.StatusOK, sq)
}

// Segments handles GET /sequences/{id}/segments?scenario=.
func (h *Handler) Segments(w http.ResponseWriter, r *http.Request) {
	sq, sc, err := h.sequenceAndScenario(r, true)
	if err != nil {
		writeError(w, r, "segments", err)
		return
	}
	sh, _ := sq.Share(sc.ID)
	respond(w, r, http.StatusOK, SegmentsResponse{
		SequenceID: sq.ID,
		ScenarioID: sc.ID,
		Percentage: sh.Percentage,
		Segments:   annotate.Segments(sq, sc),
	})
}

// Timeline handles GET /sequences/{id}/timeline?scenario=&zoom=.
func (h *Handler) Timeline(w http.ResponseWriter, r *http.Request) {
	sq, sc, err := h.sequenceAndScenario(r, true)
	if err != nil {
		writeError(w, r, "timeline", err)
		return
	}
	zoom := 1.0
	if raw := r.URL.Query().Get("zoom"); raw != "" {
		if zoom, err = strconv.ParseFloat(raw, 64); err != nil {
			writeError(w, r, "timeline", fmt.Errorf("%w: zoom: %v", apperr.ErrInvalidInput, err))
			return
		}
	}

	data := h.ann.Timeline(sq, sc)
	tl := viewstate.NewTimeline(data.Frames)
	tl.SetZoom(zoom)
	h.rec.IncTimelinesBuilt()

	respond(w, r, http.StatusOK, TimelineResponse{Timeline: data, Layout: tl.Layout()})
}

// Frame handles GET /sequences/{id}/frames/{frame}?scenario=. The lookup is
// subject to the configured simulated latency.
func (h *Handler) Frame(w http.ResponseWriter, r *http.Request) {
	sq, sc, err := h.sequenceAndScenario(r, false)
	if err != nil {
		writeError(w, r, "frame", err)
		return
	}
	frame, err := viewstate.ParseFrame(chi.URLParam(r, "frame"), viewstate.MaxFrames(sq))
	if err != nil {
		writeError(w, r, "frame", err)
		return
	}
	meta, err := h.ann.FrameImage(r.Context(), sq.Name, frame, sc.Name)
	if err != nil {
		writeError(w, r, "frame", err)
		return
	}
	h.rec.IncFramesServed()
	respond(w, r, http.StatusOK, meta)
}

func (h *Handler) sequenceAndScenario(r *http.Request, scenarioRequired bool) (models.Sequence, models.Scenario, error) {
	sq, err := h.cat.SequenceByID(chi.URLParam(r, "id"))
	if err != nil {
		return models.Sequence{}, models.Scenario{}, err
	}
	scenarioID := r.URL.Query().Get("scenario")
	if scenarioID == "" {
		if scenarioRequired {
			return models.Sequence{}, models.Scenario{}, fmt.Errorf("%w: scenario is required", apperr.ErrInvalidInput)
		}
		return sq, models.Scenario{}, nil
	}
	sc, err := h.cat.ScenarioByID(scenarioID)
	if err != nil {
		return models.Sequence{}, models.Scenario{}, err
	}
	return sq, sc, nil
}
