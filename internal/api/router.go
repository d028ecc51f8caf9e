package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/scenaview/internal/annotate"
	"github.com/starford/scenaview/internal/catalog"
	"github.com/starford/scenaview/internal/selection"
)

// Recorder counts domain work done by the handlers.
type Recorder interface {
	IncFramesServed()
	IncTimelinesBuilt()
}

type nopRecorder struct{}

func (nopRecorder) IncFramesServed()   {}
func (nopRecorder) IncTimelinesBuilt() {}

// Handler holds API route handlers.
type Handler struct {
	cat      *catalog.Catalog
	ann      *annotate.Annotator
	sessions *selection.Service
	rec      Recorder
}

// NewHandler creates a new Handler. rec may be nil.
func NewHandler(cat *catalog.Catalog, ann *annotate.Annotator, sessions *selection.Service, rec Recorder) *Handler {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Handler{cat: cat, ann: ann, sessions: sessions, rec: rec}
}

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(h *Handler, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()

	// Responses that depend only on catalog content.
	r.Group(func(r chi.Router) {
		r.Use(ETagMiddleware(h.cat))

		r.Get("/scenarios", h.ListScenarios)
		r.Get("/scenarios/{id}", h.GetScenario)
		r.Get("/sequences", h.ListSequences)
		r.Get("/sequences/{id}", h.GetSequence)
		r.Get("/sequences/{id}/segments", h.Segments)
		r.Get("/statistics", h.Statistics)
		r.Get("/statistics/chart.png", h.StatisticsChart)
		r.Get("/statistics/slice", h.StatisticsSlice)
	})

	// Confidence scores are random, so these are never cached.
	r.Get("/sequences/{id}/timeline", h.Timeline)
	r.Get("/sequences/{id}/frames/{frame}", h.Frame)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.DeleteSession)
			r.Put("/scenario", h.SelectScenario)
			r.Put("/sequence", h.SelectSequence)
			r.Put("/frame", h.SelectFrame)
			r.Post("/navigate", h.Navigate)
			r.Put("/frame-input", h.SetFrameInput)
			r.Get("/theme", h.GetTheme)
			r.Put("/theme", h.SetTheme)
		})
	})

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
