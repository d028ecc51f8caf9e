// Package web renders the server-side dashboard and the frame popup.
package web

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/scenaview/internal/annotate"
	"github.com/starford/scenaview/internal/apperr"
	"github.com/starford/scenaview/internal/catalog"
	"github.com/starford/scenaview/internal/models"
	"github.com/starford/scenaview/internal/selection"
	"github.com/starford/scenaview/internal/stats"
	"github.com/starford/scenaview/internal/viewstate"
)

// ThemeCookie stores the theme of visitors without a session.
const ThemeCookie = "theme"

// DefaultChartURL is where the API serves the statistics chart.
const DefaultChartURL = "/api/statistics/chart.png"

// Handler serves the HTML pages.
type Handler struct {
	cat      *catalog.Catalog
	ann      *annotate.Annotator
	sessions *selection.Service
	chartURL string
	tmpl     *template.Template
}

// New parses the page templates. sessions may be nil, in which case the
// theme comes from the cookie only.
func New(cat *catalog.Catalog, ann *annotate.Annotator, sessions *selection.Service, chartURL string) (*Handler, error) {
	if chartURL == "" {
		chartURL = DefaultChartURL
	}
	tmpl, err := template.New("page").Funcs(funcMap).Parse(tmplBase + tmplDashboard + tmplPopup)
	if err != nil {
		return nil, fmt.Errorf("web: parse templates: %w", err)
	}
	return &Handler{cat: cat, ann: ann, sessions: sessions, chartURL: chartURL, tmpl: tmpl}, nil
}

// Routes returns the page routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Dashboard)
	r.Get("/popup", h.Popup)
	r.Post("/theme", h.ToggleTheme)
	return r
}

type sequenceRow struct {
	Sequence   models.Sequence
	Frames     int
	Percentage int
	Present    bool
	Selected   bool
	Segments   []models.Segment
}

type frameNav struct {
	Prev, Next int
}

type dashboardView struct {
	Dark      bool
	Session   string
	Params    url.Values
	Scenarios []models.Scenario
	Scenario  models.Scenario
	Mode      string
	Query     string

	Sequences []sequenceRow
	Sequence  *models.Sequence
	MaxFrames int

	FrameInput string
	FrameError string
	Frame      *models.FrameMetadata
	Nav        frameNav

	Timeline *models.TimelineData
	Layout   viewstate.Layout
	Cursor   float64

	Stats    stats.Summary
	ChartURL string
}

// Dashboard handles GET /. The selection comes from the query string, and
// falls back to the session named by ?session= for missing parameters.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := url.Values{}
	sess := h.session(q.Get("session"))
	if sess != nil {
		params.Set("session", sess.ID)
	}

	v := dashboardView{
		Dark:      h.dark(r, sess),
		Params:    params,
		Scenarios: h.cat.Scenarios(),
		Mode:      catalog.ModeAll,
		Query:     q.Get("q"),
		Stats:     stats.Compute(h.cat.Scenarios(), h.cat.Sequences()),
	}
	if sess != nil {
		v.Session = sess.ID
	}
	if q.Get("mode") == catalog.ModePresent {
		v.Mode = catalog.ModePresent
	}
	v.ChartURL = h.chartURL + "?dark=" + strconv.FormatBool(v.Dark)

	scenarioID := pick(q, "scenario", sess, func(s *selection.Session) string { return s.ScenarioID })
	if scenarioID != "" {
		sc, err := h.cat.ScenarioByID(scenarioID)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		v.Scenario = sc
		params.Set("scenario", sc.ID)
		params.Set("mode", v.Mode)
		if v.Query != "" {
			params.Set("q", v.Query)
		}
	}

	sequenceID := ""
	if v.Scenario.ID != "" {
		sequenceID = pick(q, "sequence", sess, func(s *selection.Session) string { return s.SequenceID })
	}
	for _, sq := range h.cat.ListForDashboard(v.Scenario.ID, v.Mode, v.Query) {
		sh, ok := sq.Share(v.Scenario.ID)
		v.Sequences = append(v.Sequences, sequenceRow{
			Sequence:   sq,
			Frames:     sq.Frames(),
			Percentage: sh.Percentage,
			Present:    ok,
			Selected:   sq.ID == sequenceID,
			Segments:   annotate.Segments(sq, v.Scenario),
		})
	}

	if sequenceID != "" {
		sq, err := h.cat.SequenceByID(sequenceID)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		v.Sequence = &sq
		v.MaxFrames = viewstate.MaxFrames(sq)
		params.Set("sequence", sq.ID)

		tl := h.ann.Timeline(sq, v.Scenario)
		strip := viewstate.NewTimeline(tl.Frames)
		if z, err := strconv.ParseFloat(q.Get("zoom"), 64); err == nil {
			strip.SetZoom(z)
		}
		if strip.Zoom != 1 {
			params.Set("zoom", strconv.FormatFloat(strip.Zoom, 'f', -1, 64))
		}
		v.Timeline = &tl
		v.Layout = strip.Layout()

		if err := h.loadFrame(r, &v, q, sess, strip); err != nil {
			h.fail(w, r, err)
			return
		}
	}

	h.render(w, "dashboard", v)
}

func (h *Handler) loadFrame(r *http.Request, v *dashboardView, q url.Values, sess *selection.Session, strip *viewstate.Timeline) error {
	raw := q.Get("frame")
	if raw == "" && sess != nil && sess.SequenceID == v.Sequence.ID && sess.FrameNumber > 0 {
		raw = strconv.Itoa(sess.FrameNumber)
	}
	if raw == "" {
		return nil
	}
	v.FrameInput = raw

	frame, err := viewstate.ParseFrame(raw, v.MaxFrames)
	if err != nil {
		v.FrameError = fmt.Sprintf("Frame must be a whole number between 1 and %s", viewstate.FormatCount(v.MaxFrames))
		return nil
	}
	meta, err := h.ann.FrameImage(r.Context(), v.Sequence.Name, frame, v.Scenario.Name)
	if err != nil {
		if errors.Is(err, r.Context().Err()) {
			return err
		}
		v.FrameError = "Failed to load frame"
		return nil
	}
	v.Frame = &meta
	v.Cursor = strip.Position(frame)
	if viewstate.CanNavigate(frame, -1, v.MaxFrames) {
		v.Nav.Prev = frame - 1
	}
	if viewstate.CanNavigate(frame, 1, v.MaxFrames) {
		v.Nav.Next = frame + 1
	}
	return nil
}

type popupView struct {
	Dark      bool
	Frame     models.FrameMetadata
	Transform template.CSS
	Download  string
	Zoom      float64
	Rotation  int
	CanPan    bool
	Back      string
	Links     map[string]string
}

// Popup handles GET /popup. The popup state travels in the query string;
// ?action= or ?key= applies one step to it.
func (h *Handler) Popup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sq, err := h.cat.SequenceByID(q.Get("sequence"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var sc models.Scenario
	if id := q.Get("scenario"); id != "" {
		if sc, err = h.cat.ScenarioByID(id); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	frame, err := viewstate.ParseFrame(q.Get("frame"), viewstate.MaxFrames(sq))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	back := url.Values{"sequence": {sq.ID}, "frame": {strconv.Itoa(frame)}}
	if sc.ID != "" {
		back.Set("scenario", sc.ID)
	}
	if s := q.Get("session"); s != "" {
		back.Set("session", s)
	}
	backURL := "/?" + back.Encode()

	p := popupFromQuery(q)
	switch q.Get("action") {
	case "zoomin":
		p.ZoomIn()
	case "zoomout":
		p.ZoomOut()
	case "rotateleft":
		p.RotateLeft()
	case "rotateright":
		p.RotateRight()
	case "resetzoom":
		p.ResetZoom()
	case "reset":
		p.ResetAll()
	case "pan":
		dx, _ := strconv.ParseFloat(q.Get("dx"), 64)
		dy, _ := strconv.ParseFloat(q.Get("dy"), 64)
		if p.BeginDrag(0, 0) {
			p.Drag(dx, dy)
			p.EndDrag()
		}
	}
	if key := q.Get("key"); key != "" && p.HandleKey(key) == viewstate.KeyClose {
		http.Redirect(w, r, backURL, http.StatusSeeOther)
		return
	}

	meta := h.ann.Frame(sq.Name, frame, sc.Name)
	state := clone(back)
	state.Set("zoom", strconv.FormatFloat(p.Zoom, 'f', -1, 64))
	state.Set("rotation", strconv.Itoa(p.Rotation))
	state.Set("panx", strconv.FormatFloat(p.PanX, 'f', -1, 64))
	state.Set("pany", strconv.FormatFloat(p.PanY, 'f', -1, 64))
	links := make(map[string]string)
	for _, action := range []string{"zoomin", "zoomout", "rotateleft", "rotateright", "resetzoom", "reset"} {
		links[action] = "/popup?" + with(state, "action", action).Encode()
	}
	for dir, d := range map[string][2]string{"left": {"-50", "0"}, "right": {"50", "0"}, "up": {"0", "-50"}, "down": {"0", "50"}} {
		links["pan"+dir] = "/popup?" + with(with(with(state, "action", "pan"), "dx", d[0]), "dy", d[1]).Encode()
	}

	h.render(w, "popup", popupView{
		Dark:      h.dark(r, h.session(q.Get("session"))),
		Frame:     meta,
		Transform: template.CSS(p.Transform()),
		Download:  viewstate.DownloadName(frame, sq.Name),
		Zoom:      p.Zoom,
		Rotation:  p.Rotation,
		CanPan:    p.Zoom > 1,
		Back:      backURL,
		Links:     links,
	})
}

// ToggleTheme handles POST /theme. It flips the session preference when a
// session is given and always mirrors the result into the theme cookie.
func (h *Handler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	sess := h.session(r.Form.Get("session"))
	dark := !h.dark(r, sess)
	if sess != nil {
		if _, err := h.sessions.SetDarkMode(sess.ID, dark); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	value := "light"
	if dark {
		value = "dark"
	}
	http.SetCookie(w, &http.Cookie{Name: ThemeCookie, Value: value, Path: "/", MaxAge: 365 * 24 * 3600, HttpOnly: true, SameSite: http.SameSiteLaxMode})

	back := r.Form.Get("back")
	if back == "" || back[0] != '/' || (len(back) > 1 && back[1] == '/') {
		back = "/"
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func (h *Handler) session(id string) *selection.Session {
	if id == "" || h.sessions == nil {
		return nil
	}
	s, err := h.sessions.Get(id)
	if err != nil {
		return nil
	}
	return &s
}

func (h *Handler) dark(r *http.Request, sess *selection.Session) bool {
	if sess != nil {
		return sess.DarkMode
	}
	c, err := r.Cookie(ThemeCookie)
	return err == nil && c.Value == "dark"
}

func (h *Handler) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("template error", slog.String("template", name), slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, apperr.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, r.Context().Err()):
		slog.Debug("page cancelled", slog.String("path", r.URL.Path))
	default:
		slog.Error("page failed", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func pick(q url.Values, key string, sess *selection.Session, fromSession func(*selection.Session) string) string {
	if q.Has(key) {
		return q.Get(key)
	}
	if sess != nil {
		return fromSession(sess)
	}
	return ""
}

func popupFromQuery(q url.Values) *viewstate.Popup {
	p := viewstate.NewPopup()
	if z, err := strconv.ParseFloat(q.Get("zoom"), 64); err == nil && z >= viewstate.PopupMinZoom && z <= viewstate.PopupMaxZoom {
		p.Zoom = z
	}
	if rot, err := strconv.Atoi(q.Get("rotation")); err == nil {
		p.Rotation = rot % 360
	}
	if p.Zoom > 1 {
		p.PanX, _ = strconv.ParseFloat(q.Get("panx"), 64)
		p.PanY, _ = strconv.ParseFloat(q.Get("pany"), 64)
	}
	return p
}

// with returns a copy of v with key set to value.
func with(v url.Values, key, value string) url.Values {
	out := clone(v)
	out.Set(key, value)
	return out
}

func clone(v url.Values) url.Values {
	out := make(url.Values, len(v)+1)
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
