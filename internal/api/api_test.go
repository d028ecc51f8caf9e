package api

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/starford/scenaview/internal/annotate"
	"github.com/starford/scenaview/internal/catalog"
	"github.com/starford/scenaview/internal/models"
	"github.com/starford/scenaview/internal/selection"
	"github.com/starford/scenaview/internal/stats"
	"github.com/starford/scenaview/internal/testutil"
)

type countingRecorder struct {
	frames, timelines int
}

func (c *countingRecorder) IncFramesServed()   { c.frames++ }
func (c *countingRecorder) IncTimelinesBuilt() { c.timelines++ }

// testEnv wires the default catalog, a seeded annotator without latency and
// a session service over a temp SQLite store.
func testEnv(t *testing.T) (http.Handler, *countingRecorder) {
	t.Helper()
	cat := catalog.Default()
	ann := annotate.New(annotate.WithRand(rand.New(rand.NewSource(1))))
	sessions := selection.New(cat, testutil.PrefsDB(t), nil, selection.WithLogger(testutil.Logger()))
	t.Cleanup(sessions.Close)

	rec := &countingRecorder{}
	return NewRouter(NewHandler(cat, ann, sessions, rec), nil), rec
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		rd = bytes.NewReader(raw)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func TestListScenarios(t *testing.T) {
	router, _ := testEnv(t)

	w := do(t, router, http.MethodGet, "/scenarios", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := decodeJSON[ScenarioListResponse](t, w); got.Total != 6 {
		t.Errorf("total = %d, want 6", got.Total)
	}

	w = do(t, router, http.MethodGet, "/scenarios?q=RAI", nil)
	got := decodeJSON[ScenarioListResponse](t, w)
	if got.Total != 1 || got.Scenarios[0].Name != "Rain" {
		t.Errorf("filtered = %+v", got)
	}
}

func TestGetScenario(t *testing.T) {
	router, _ := testEnv(t)

	w := do(t, router, http.MethodGet, "/scenarios/4", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if sc := decodeJSON[models.Scenario](t, w); sc.Name != "Rain" {
		t.Errorf("name = %q", sc.Name)
	}

	if w := do(t, router, http.MethodGet, "/scenarios/99", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown scenario = %d, want 404", w.Code)
	}
}

func TestListSequences(t *testing.T) {
	router, _ := testEnv(t)

	cases := []struct {
		path string
		want int
	}{
		{"/sequences", 12},
		{"/sequences?q=drive", 2},
		{"/sequences?scenario=4", 12},
		{"/sequences?scenario=4&mode=present", 7},
		{"/sequences?scenario=4&mode=present&min=80", 2},
		{"/sequences?scenario=4&q=drive", 2},
	}
	for _, tc := range cases {
		w := do(t, router, http.MethodGet, tc.path, nil)
		if w.Code != http.StatusOK {
			t.Errorf("%s: status = %d", tc.path, w.Code)
			continue
		}
		if got := decodeJSON[SequenceListResponse](t, w); got.Total != tc.want {
			t.Errorf("%s: total = %d, want %d", tc.path, got.Total, tc.want)
		}
	}

	w := do(t, router, http.MethodGet, "/sequences?scenario=4&mode=present&min=80", nil)
	got := decodeJSON[SequenceListResponse](t, w)
	if got.Sequences[0].Name != "Highway Journey" || got.Sequences[0].Percentage != 95 || !got.Sequences[0].Present {
		t.Errorf("first item = %+v", got.Sequences[0])
	}

	for path, want := range map[string]int{
		"/sequences?mode=weird":                   http.StatusBadRequest,
		"/sequences?min=101":                      http.StatusBadRequest,
		"/sequences?scenario=99":                  http.StatusNotFound,
		"/sequences/99":                           http.StatusNotFound,
		"/sequences/3/segments":                   http.StatusBadRequest,
		"/sequences/3/timeline":                   http.StatusBadRequest,
		"/sequences/3/timeline?scenario=4&zoom=x": http.StatusBadRequest,
	} {
		if w := do(t, router, http.MethodGet, path, nil); w.Code != want {
			t.Errorf("%s: status = %d, want %d", path, w.Code, want)
		}
	}
}

func TestMsgpackNegotiation(t *testing.T) {
	router, _ := testEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/sequences?scenario=4&mode=present", nil)
	req.Header.Set("Accept", "application/msgpack")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if ct := w.Header().Get("Content-Type"); ct != "application/msgpack" {
		t.Fatalf("Content-Type = %q", ct)
	}
	var got SequenceListResponse
	if err := msgpack.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("msgpack decode: %v", err)
	}
	if got.Total != 7 || got.Sequences[0].ID != "1" {
		t.Errorf("decoded = %+v", got)
	}
}

func TestETag(t *testing.T) {
	router, _ := testEnv(t)

	w := do(t, router, http.MethodGet, "/scenarios", nil)
	tag := w.Header().Get("ETag")
	if tag == "" {
		t.Fatal("missing ETag")
	}

	req := httptest.NewRequest(http.MethodGet, "/scenarios", nil)
	req.Header.Set("If-None-Match", tag)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotModified {
		t.Errorf("conditional GET = %d, want 304", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/scenarios", nil)
	req.Header.Set("If-None-Match", tag)
	req.Header.Set("Accept", "application/msgpack")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("msgpack GET with json tag = %d, want 200", w.Code)
	}

	if w := do(t, router, http.MethodGet, "/sequences/1/timeline?scenario=4", nil); w.Header().Get("ETag") != "" {
		t.Error("timeline must not carry an ETag")
	}
}

func TestSegments(t *testing.T) {
	router, _ := testEnv(t)

	w := do(t, router, http.MethodGet, "/sequences/3/segments?scenario=4", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	got := decodeJSON[SegmentsResponse](t, w)
	if len(got.Segments) != 40 || got.Percentage != 0 {
		t.Fatalf("segments = %d, pct = %d", len(got.Segments), got.Percentage)
	}
	for _, s := range got.Segments {
		if s.HasScenario {
			t.Fatalf("segment %+v present without a share", s)
		}
	}
}

func TestTimeline(t *testing.T) {
	router, rec := testEnv(t)

	w := do(t, router, http.MethodGet, "/sequences/1/timeline?scenario=4&zoom=2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	got := decodeJSON[TimelineResponse](t, w)
	if len(got.Timeline.Frames) != 100 || got.Timeline.TotalFrames != 1200 {
		t.Errorf("frames = %d, total = %d", len(got.Timeline.Frames), got.Timeline.TotalFrames)
	}
	if got.Layout.Zoom != 2 || got.Layout.FrameWidth != 120 {
		t.Errorf("layout = %+v", got.Layout)
	}
	if rec.timelines != 1 {
		t.Errorf("timelines recorded = %d", rec.timelines)
	}
}

func TestFrame(t *testing.T) {
	router, rec := testEnv(t)

	w := do(t, router, http.MethodGet, "/sequences/3/frames/10?scenario=4", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	meta := decodeJSON[models.FrameMetadata](t, w)
	if meta.FrameNumber != 10 || meta.SequenceName != "Tunnel Drive" || !meta.ScenarioPresence {
		t.Errorf("meta = %+v", meta)
	}
	if meta.Timestamp != "00:00:00" {
		t.Errorf("timestamp = %q", meta.Timestamp)
	}

	w = do(t, router, http.MethodGet, "/sequences/3/frames/10", nil)
	if meta := decodeJSON[models.FrameMetadata](t, w); meta.ScenarioPresence {
		t.Error("presence without scenario must be false")
	}

	for _, frame := range []string{"0", "801", "abc"} {
		if w := do(t, router, http.MethodGet, "/sequences/3/frames/"+frame, nil); w.Code != http.StatusBadRequest {
			t.Errorf("frame %s: status = %d, want 400", frame, w.Code)
		}
	}
	if rec.frames != 2 {
		t.Errorf("frames recorded = %d, want 2", rec.frames)
	}
}

func TestStatistics(t *testing.T) {
	router, _ := testEnv(t)

	w := do(t, router, http.MethodGet, "/statistics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	sum := decodeJSON[stats.Summary](t, w)
	if sum.TotalFrames != 14250 || sum.Scenarios[0].Name != "Rain" {
		t.Errorf("summary = %+v", sum)
	}

	w = do(t, router, http.MethodGet, "/statistics/chart.png?dark=true&width=300&height=300", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("chart status = %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.HasPrefix(w.Body.String(), "\x89PNG") {
		t.Error("body is not a PNG")
	}

	if w := do(t, router, http.MethodGet, "/statistics/chart.png?width=5", nil); w.Code != http.StatusBadRequest {
		t.Errorf("tiny chart = %d, want 400", w.Code)
	}
}

func TestStatisticsSlice(t *testing.T) {
	router, _ := testEnv(t)

	w := do(t, router, http.MethodGet, "/statistics/slice?x=200&y=50&width=400&height=400", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	st := decodeJSON[models.ScenarioStatistic](t, w)
	if st.Name != "Rain" || st.Color != "#96CEB4" {
		t.Errorf("top of ring = %+v, want Rain", st)
	}

	if w := do(t, router, http.MethodGet, "/statistics/slice?x=200&y=200", nil); w.Code != http.StatusNotFound {
		t.Errorf("hole = %d, want 404", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/statistics/slice?x=a&y=1", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad x = %d, want 400", w.Code)
	}
}

func TestSessionFlow(t *testing.T) {
	router, _ := testEnv(t)

	w := do(t, router, http.MethodPost, "/sessions", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d", w.Code)
	}
	sess := decodeJSON[selection.Session](t, w)
	base := "/sessions/" + sess.ID

	if w := do(t, router, http.MethodPut, base+"/sequence", SelectSequenceRequest{SequenceID: "3"}); w.Code != http.StatusConflict {
		t.Errorf("sequence before scenario = %d, want 409", w.Code)
	}
	if w := do(t, router, http.MethodPut, base+"/scenario", SelectScenarioRequest{ScenarioID: "4"}); w.Code != http.StatusOK {
		t.Fatalf("scenario = %d", w.Code)
	}
	if w := do(t, router, http.MethodPut, base+"/sequence", SelectSequenceRequest{SequenceID: "3"}); w.Code != http.StatusOK {
		t.Fatalf("sequence = %d", w.Code)
	}
	if w := do(t, router, http.MethodPut, base+"/frame", SelectFrameRequest{Frame: 5}); w.Code != http.StatusOK {
		t.Fatalf("frame = %d", w.Code)
	}
	w = do(t, router, http.MethodPost, base+"/navigate", NavigateRequest{Delta: 1})
	if got := decodeJSON[selection.Session](t, w); got.FrameNumber != 6 {
		t.Errorf("after navigate frame = %d, want 6", got.FrameNumber)
	}
	if w := do(t, router, http.MethodPut, base+"/frame", SelectFrameRequest{Frame: 9999}); w.Code != http.StatusBadRequest {
		t.Errorf("out of range frame = %d, want 400", w.Code)
	}
	if w := do(t, router, http.MethodPut, base+"/frame-input", FrameInputRequest{Value: "12"}); w.Code != http.StatusAccepted {
		t.Errorf("frame input = %d, want 202", w.Code)
	}

	w = do(t, router, http.MethodGet, base, nil)
	if got := decodeJSON[selection.Session](t, w); got.ScenarioID != "4" || got.SequenceID != "3" {
		t.Errorf("session = %+v", got)
	}

	w = do(t, router, http.MethodPut, base+"/theme", ThemeRequest{DarkMode: true})
	if got := decodeJSON[ThemeResponse](t, w); !got.DarkMode {
		t.Error("theme not set")
	}
	w = do(t, router, http.MethodGet, base+"/theme", nil)
	if got := decodeJSON[ThemeResponse](t, w); !got.DarkMode {
		t.Error("theme not reported")
	}

	if w := do(t, router, http.MethodDelete, base, nil); w.Code != http.StatusNoContent {
		t.Errorf("delete = %d, want 204", w.Code)
	}
	if w := do(t, router, http.MethodGet, base, nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
}

func TestSession_BadBody(t *testing.T) {
	router, _ := testEnv(t)
	w := do(t, router, http.MethodPost, "/sessions", nil)
	sess := decodeJSON[selection.Session](t, w)

	req := httptest.NewRequest(http.MethodPut, "/sessions/"+sess.ID+"/scenario", strings.NewReader("{not json"))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad body = %d, want 400", w.Code)
	}
}

func TestSession_MsgpackBody(t *testing.T) {
	router, _ := testEnv(t)
	w := do(t, router, http.MethodPost, "/sessions", nil)
	sess := decodeJSON[selection.Session](t, w)

	raw, _ := msgpack.Marshal(SelectScenarioRequest{ScenarioID: "2"})
	req := httptest.NewRequest(http.MethodPut, "/sessions/"+sess.ID+"/scenario", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/msgpack")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("msgpack body = %d: %s", w.Code, w.Body.String())
	}
	if got := decodeJSON[selection.Session](t, w); got.ScenarioID != "2" {
		t.Errorf("scenario = %q", got.ScenarioID)
	}
}
