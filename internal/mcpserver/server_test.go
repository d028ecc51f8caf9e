package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/scenaview/internal/annotate"
	"github.com/starford/scenaview/internal/catalog"
	"github.com/starford/scenaview/internal/models"
	"github.com/starford/scenaview/internal/stats"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	return New(catalog.Default(), annotate.New(annotate.WithBaseURL("http://img.test")))
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_scenarios":
		result, err = srv.listScenarios(ctx, req)
	case "list_sequences":
		result, err = srv.listSequences(ctx, req)
	case "get_frame":
		result, err = srv.getFrame(ctx, req)
	case "get_timeline":
		result, err = srv.getTimeline(ctx, req)
	case "get_segments":
		result, err = srv.getSegments(ctx, req)
	case "scenario_statistics":
		result, err = srv.scenarioStatistics(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func decodeResult(t *testing.T, r *mcp.CallToolResult, v any) {
	t.Helper()
	if r.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(r))
	}
	if err := json.Unmarshal([]byte(resultText(r)), v); err != nil {
		t.Fatalf("decode result: %v", err)
	}
}

func TestListScenarios(t *testing.T) {
	srv := testServer(t)

	var all []models.Scenario
	decodeResult(t, callTool(t, srv, "list_scenarios", map[string]interface{}{}), &all)
	if len(all) != len(catalog.Default().Scenarios()) {
		t.Errorf("len = %d, want every scenario", len(all))
	}

	var rain []models.Scenario
	decodeResult(t, callTool(t, srv, "list_scenarios", map[string]interface{}{"query": "RAIN"}), &rain)
	if len(rain) != 1 || rain[0].ID != "4" {
		t.Errorf("query rain = %+v", rain)
	}
}

func TestListSequences(t *testing.T) {
	srv := testServer(t)

	var all []sequenceEntry
	decodeResult(t, callTool(t, srv, "list_sequences", map[string]interface{}{}), &all)
	if len(all) != 12 {
		t.Errorf("len = %d, want 12", len(all))
	}

	var strong []sequenceEntry
	decodeResult(t, callTool(t, srv, "list_sequences", map[string]interface{}{
		"scenario":       "4",
		"min_percentage": 80,
	}), &strong)
	if len(strong) != 2 {
		t.Fatalf("min 80 len = %d, want 2", len(strong))
	}
	for _, e := range strong {
		if e.Percentage < 80 {
			t.Errorf("%s has %d%%", e.Name, e.Percentage)
		}
	}

	var present []sequenceEntry
	decodeResult(t, callTool(t, srv, "list_sequences", map[string]interface{}{
		"scenario": "4",
		"mode":     "present",
	}), &present)
	if len(present) != 7 {
		t.Errorf("present len = %d, want 7", len(present))
	}
}

func TestListSequencesUnknownScenario(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "list_sequences", map[string]interface{}{"scenario": "nope"})
	if !r.IsError {
		t.Error("expected error for unknown scenario")
	}
}

func TestGetFrame(t *testing.T) {
	srv := testServer(t)

	var meta models.FrameMetadata
	decodeResult(t, callTool(t, srv, "get_frame", map[string]interface{}{
		"sequence": "3",
		"frame":    10,
		"scenario": "4",
	}), &meta)
	if meta.SequenceName != "Tunnel Drive" || meta.FrameNumber != 10 {
		t.Errorf("meta = %+v", meta)
	}
	if !meta.ScenarioPresence {
		t.Error("expected Rain present at frame 10")
	}
	if !strings.HasPrefix(meta.ImagePath, "http://img.test/") {
		t.Errorf("image = %q", meta.ImagePath)
	}

	decodeResult(t, callTool(t, srv, "get_frame", map[string]interface{}{
		"sequence": "3",
		"frame":    2,
		"scenario": "4",
	}), &meta)
	if meta.ScenarioPresence {
		t.Error("expected Rain absent at frame 2")
	}
}

func TestGetFrameInvalid(t *testing.T) {
	srv := testServer(t)

	cases := []map[string]interface{}{
		{"sequence": "3", "frame": 0},
		{"sequence": "3", "frame": 801},
		{"sequence": "3", "frame": 1.5},
		{"sequence": "3"},
		{"sequence": "99", "frame": 1},
		{"sequence": "3", "frame": 1, "scenario": "99"},
	}
	for _, args := range cases {
		if r := callTool(t, srv, "get_frame", args); !r.IsError {
			t.Errorf("args %v: expected error", args)
		}
	}
}

func TestGetTimeline(t *testing.T) {
	srv := testServer(t)

	var out struct {
		Timeline models.TimelineData `json:"timeline"`
	}
	decodeResult(t, callTool(t, srv, "get_timeline", map[string]interface{}{
		"sequence": "2",
		"scenario": "4",
		"zoom":     2,
	}), &out)
	if out.Timeline.TotalFrames != 2000 {
		t.Errorf("total = %d, want 2000", out.Timeline.TotalFrames)
	}
	if len(out.Timeline.Frames) != 100 {
		t.Errorf("frames = %d, want 100", len(out.Timeline.Frames))
	}
	if out.Timeline.Frames[0].FrameNumber != 1 {
		t.Errorf("first frame = %d, want 1", out.Timeline.Frames[0].FrameNumber)
	}
}

func TestGetTimelineRequiresScenario(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_timeline", map[string]interface{}{"sequence": "2"})
	if !r.IsError {
		t.Error("expected error without scenario")
	}
}

func TestGetSegments(t *testing.T) {
	srv := testServer(t)

	var segs []models.Segment
	decodeResult(t, callTool(t, srv, "get_segments", map[string]interface{}{
		"sequence": "3",
		"scenario": "4",
	}), &segs)
	if len(segs) != 40 {
		t.Fatalf("segments = %d, want 40", len(segs))
	}
	for _, s := range segs {
		if s.HasScenario {
			t.Errorf("segment %d-%d present, Tunnel Drive has no Rain share", s.Start, s.End)
		}
	}
}

func TestScenarioStatistics(t *testing.T) {
	srv := testServer(t)

	var sum stats.Summary
	decodeResult(t, callTool(t, srv, "scenario_statistics", map[string]interface{}{}), &sum)
	if sum.TotalFrames != 14250 || sum.TotalSequences != 12 {
		t.Errorf("summary = %d frames / %d sequences", sum.TotalFrames, sum.TotalSequences)
	}
	for i := 1; i < len(sum.Scenarios); i++ {
		if sum.Scenarios[i].Percentage > sum.Scenarios[i-1].Percentage {
			t.Errorf("statistics not sorted at %d", i)
		}
	}
}

func TestReadGlossary(t *testing.T) {
	srv := testServer(t)

	contents, err := srv.readGlossary(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 1 {
		t.Fatalf("contents = %d", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("unexpected content type %T", contents[0])
	}
	if !strings.Contains(tc.Text, "get_frame") {
		t.Error("glossary does not mention get_frame")
	}
}
