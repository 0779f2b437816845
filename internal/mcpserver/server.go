// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes okrtrack coaching tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/okrtrack/internal/apperr"
	"github.com/starford/okrtrack/internal/models"
	"github.com/starford/okrtrack/internal/okrservice"
)

const statusModelURI = "okr://status-model"

// Server wraps the MCP server with okrtrack tools.
type Server struct {
	mcp *server.MCPServer
	svc *okrservice.Service
}

// New creates a new MCP server with all coach tools registered.
func New(svc *okrservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"okrtrack",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("get_dashboard",
		mcp.WithDescription("Status overview of the active period: overall status, counts per status "+
			"and every objective with its key results evaluated at the current week."),
	), s.getDashboard)

	s.mcp.AddTool(mcp.NewTool("get_key_result_series",
		mcp.WithDescription("Expected vs. actual cumulative values for every week of a key result's period."),
		mcp.WithString("key_result_id", mcp.Required(), mcp.Description("Key result ID")),
	), s.getKeyResultSeries)

	s.mcp.AddTool(mcp.NewTool("record_progress",
		mcp.WithDescription("Record a weekly check-in. The value is cumulative progress, not a delta. "+
			"Read the status model first via get_status_model or the okr://status-model resource."),
		mcp.WithString("key_result_id", mcp.Required(), mcp.Description("Key result ID")),
		mcp.WithNumber("value", mcp.Required(), mcp.Description("Cumulative value reached so far")),
		mcp.WithString("week_start", mcp.Description("Any date of the week (YYYY-MM-DD); defaults to the current week")),
		mcp.WithString("note", mcp.Description("Optional note for the check-in")),
	), s.recordProgress)

	s.mcp.AddTool(mcp.NewTool("list_reflections",
		mcp.WithDescription("List weekly reflections of a period, oldest week first."),
		mcp.WithString("period_id", mcp.Description("Period ID; defaults to the active period")),
	), s.listReflections)

	s.mcp.AddTool(mcp.NewTool("save_reflection",
		mcp.WithDescription("Write the reflection for a week of the active period. Saving a week again replaces it."),
		mcp.WithString("body", mcp.Required(), mcp.Description("Markdown body of the reflection")),
		mcp.WithNumber("week", mcp.Description("Week number; defaults to the current week")),
		mcp.WithNumber("confidence", mcp.Description("Confidence from 0 to 10")),
		mcp.WithString("title", mcp.Description("Optional title")),
	), s.saveReflection)

	s.mcp.AddTool(mcp.NewTool("search_okrs",
		mcp.WithDescription("Full-text search through objectives, key results and reflections."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchOKRs)

	s.mcp.AddTool(mcp.NewTool("get_status_model",
		mcp.WithDescription("Returns how statuses are derived from weekly progress. "+
			"Call this before interpreting a dashboard or coaching on a key result."),
	), s.getStatusModel)

	s.mcp.AddResource(
		mcp.NewResource(statusModelURI, "Status Model",
			mcp.WithResourceDescription("How okrtrack derives on-track, needs-attention and behind."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readStatusModelResource,
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

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func toolError(err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNoActivePeriod) {
		return mcp.NewToolResultError("no active period: create or activate one first")
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) getDashboard(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	d, err := s.svc.Dashboard(ctx)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(d)
}

func (s *Server) getKeyResultSeries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("key_result_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	series, err := s.svc.KeyResultSeries(ctx, id)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(series)
}

func (s *Server) recordProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("key_result_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	value, err := req.RequireFloat("value")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in := okrservice.ProgressInput{Value: value, Note: req.GetString("note", "")}
	if ws := req.GetString("week_start", ""); ws != "" {
		d, err := time.Parse(models.DateLayout, ws)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("week_start must be YYYY-MM-DD: %s", ws)), nil
		}
		in.WeekStart = &d
	}
	entry, err := s.svc.RecordProgress(ctx, id, in)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(entry)
}

// periodOrActive resolves an explicit period ID, falling back to the active one.
func (s *Server) periodOrActive(ctx context.Context, req mcp.CallToolRequest) (string, error) {
	if id := req.GetString("period_id", ""); id != "" {
		return id, nil
	}
	p, err := s.svc.ActivePeriod(ctx)
	if err != nil {
		return "", err
	}
	return p.ID, nil
}

func (s *Server) listReflections(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	periodID, err := s.periodOrActive(ctx, req)
	if err != nil {
		return toolError(err), nil
	}
	refs, err := s.svc.ListReflections(ctx, periodID)
	if err != nil {
		return toolError(err), nil
	}
	if len(refs) == 0 {
		return mcp.NewToolResultText("no reflections yet"), nil
	}
	return jsonResult(refs)
}

func (s *Server) saveReflection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body, err := req.RequireString("body")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.svc.ActivePeriod(ctx)
	if err != nil {
		return toolError(err), nil
	}
	detail, err := s.svc.SaveReflection(ctx, p.ID, okrservice.ReflectionInput{
		Week:       req.GetInt("week", 0),
		Title:      req.GetString("title", ""),
		Confidence: req.GetInt("confidence", 0),
		Body:       body,
	})
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("saved: %s", detail.Path)), nil
}

func (s *Server) searchOKRs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(results)
}

func (s *Server) getStatusModel(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(StatusModelContract), nil
}

func (s *Server) readStatusModelResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      statusModelURI,
			MIMEType: "text/markdown",
			Text:     StatusModelContract,
		},
	}, nil
}
