// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the scenario catalog and frame annotations over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/scenaview/internal/annotate"
	"github.com/starford/scenaview/internal/catalog"
	"github.com/starford/scenaview/internal/models"
	"github.com/starford/scenaview/internal/stats"
	"github.com/starford/scenaview/internal/viewstate"
)

const glossaryURI = "scenaview://glossary"

// Server wraps the MCP server with the viewer tools.
type Server struct {
	mcp *server.MCPServer
	cat *catalog.Catalog
	ann *annotate.Annotator
}

// New creates a new MCP server with all tools registered.
func New(cat *catalog.Catalog, ann *annotate.Annotator) *Server {
	s := &Server{cat: cat, ann: ann}

	s.mcp = server.NewMCPServer(
		"Scenario Viewer",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_scenarios",
		mcp.WithDescription("List driving scenarios, optionally filtered by a case-insensitive name substring."),
		mcp.WithString("query", mcp.Description("Optional name filter")),
	), s.listScenarios)

	s.mcp.AddTool(mcp.NewTool("list_sequences",
		mcp.WithDescription("List recorded sequences. With a scenario, each entry carries that scenario's share; "+
			"mode 'present' keeps only sequences containing it."),
		mcp.WithString("scenario", mcp.Description("Optional scenario id")),
		mcp.WithString("mode", mcp.Description("'all' (default) or 'present'"), mcp.Enum(catalog.ModeAll, catalog.ModePresent)),
		mcp.WithString("query", mcp.Description("Optional sequence name filter")),
		mcp.WithNumber("min_percentage", mcp.Description("Drop sequences whose share is below this value")),
	), s.listSequences)

	s.mcp.AddTool(mcp.NewTool("get_frame",
		mcp.WithDescription("Get the metadata of one frame: timestamp, scenario presence, confidence and image URL."),
		mcp.WithString("sequence", mcp.Required(), mcp.Description("Sequence id")),
		mcp.WithNumber("frame", mcp.Required(), mcp.Description("Frame number, starting at 1")),
		mcp.WithString("scenario", mcp.Description("Optional scenario id; without it presence is false")),
	), s.getFrame)

	s.mcp.AddTool(mcp.NewTool("get_timeline",
		mcp.WithDescription("Get up to 100 evenly sampled frames of a sequence for a scenario, with strip geometry."),
		mcp.WithString("sequence", mcp.Required(), mcp.Description("Sequence id")),
		mcp.WithString("scenario", mcp.Required(), mcp.Description("Scenario id")),
		mcp.WithNumber("zoom", mcp.Description("Strip zoom between 0.5 and 3 (default 1)")),
	), s.getTimeline)

	s.mcp.AddTool(mcp.NewTool("get_segments",
		mcp.WithDescription("Get the presence bar of a sequence for a scenario as about 40 segments."),
		mcp.WithString("sequence", mcp.Required(), mcp.Description("Sequence id")),
		mcp.WithString("scenario", mcp.Required(), mcp.Description("Scenario id")),
	), s.getSegments)

	s.mcp.AddTool(mcp.NewTool("scenario_statistics",
		mcp.WithDescription("Estimated frame counts and percentages per scenario across the whole catalog."),
	), s.scenarioStatistics)

	s.mcp.AddResource(
		mcp.NewResource(glossaryURI, "Glossary",
			mcp.WithResourceDescription("Vocabulary of the scenario viewer and its tools."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readGlossary,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listScenarios(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.cat.FilterScenarios(req.GetString("query", "")))
}

type sequenceEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	TotalFrames int    `json:"totalFrames"`
	Percentage  int    `json:"percentage,omitempty"`
}

func (s *Server) listSequences(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scenarioID := req.GetString("scenario", "")
	mode := req.GetString("mode", catalog.ModeAll)
	query := req.GetString("query", "")
	minPct := int(req.GetFloat("min_percentage", 0))

	if scenarioID != "" {
		if _, err := s.cat.ScenarioByID(scenarioID); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	seqs := s.cat.Browse(scenarioID, mode, query, minPct)
	out := make([]sequenceEntry, 0, len(seqs))
	for _, sq := range seqs {
		out = append(out, sequenceEntry{
			ID:          sq.ID,
			Name:        sq.Name,
			TotalFrames: sq.Frames(),
			Percentage:  s.cat.ScenarioPercentage(sq.ID, scenarioID),
		})
	}
	return jsonResult(out)
}

func (s *Server) getFrame(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sq, err := s.sequence(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := req.RequireFloat("frame")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if raw != math.Trunc(raw) {
		return mcp.NewToolResultError(fmt.Sprintf("frame must be a whole number, got %v", raw)), nil
	}
	frame := int(raw)
	if err := viewstate.ValidateFrame(frame, viewstate.MaxFrames(sq)); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sc models.Scenario
	if id := req.GetString("scenario", ""); id != "" {
		if sc, err = s.cat.ScenarioByID(id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	meta, err := s.ann.FrameImage(ctx, sq.Name, frame, sc.Name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(meta)
}

func (s *Server) getTimeline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sq, sc, err := s.sequenceAndScenario(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data := s.ann.Timeline(sq, sc)
	strip := viewstate.NewTimeline(data.Frames)
	strip.SetZoom(req.GetFloat("zoom", 1))
	return jsonResult(map[string]any{
		"timeline": data,
		"layout":   strip.Layout(),
	})
}

func (s *Server) getSegments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sq, sc, err := s.sequenceAndScenario(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(annotate.Segments(sq, sc))
}

func (s *Server) scenarioStatistics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(stats.Compute(s.cat.Scenarios(), s.cat.Sequences()))
}

func (s *Server) readGlossary(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      glossaryURI,
			MIMEType: "text/markdown",
			Text:     Glossary,
		},
	}, nil
}

func (s *Server) sequence(req mcp.CallToolRequest) (models.Sequence, error) {
	id, err := req.RequireString("sequence")
	if err != nil {
		return models.Sequence{}, err
	}
	return s.cat.SequenceByID(id)
}

func (s *Server) sequenceAndScenario(req mcp.CallToolRequest) (models.Sequence, models.Scenario, error) {
	sq, err := s.sequence(req)
	if err != nil {
		return models.Sequence{}, models.Scenario{}, err
	}
	id, err := req.RequireString("scenario")
	if err != nil {
		return models.Sequence{}, models.Scenario{}, err
	}
	sc, err := s.cat.ScenarioByID(id)
	if err != nil {
		return models.Sequence{}, models.Scenario{}, err
	}
	return sq, sc, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
