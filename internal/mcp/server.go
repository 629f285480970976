// Package mcp provides Model Context Protocol server functionality.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/claimsdesk/fnol/application/service"
	"github.com/claimsdesk/fnol/domain/query"
	"github.com/claimsdesk/fnol/domain/workitem"
	"github.com/claimsdesk/fnol/infrastructure/api/v1/dto"
)

// Tool result limits.
const (
	DefaultListLimit = 20
	MaxListLimit     = 200
)

// WorkItemReader provides work item lookups for MCP tools.
type WorkItemReader interface {
	List(ctx context.Context, options ...query.Option) ([]workitem.Record, error)
	Get(ctx context.Context, id int64) (workitem.Record, error)
}

// Summarizer provides the analytics summary for MCP tools.
type Summarizer interface {
	Summary(ctx context.Context) (service.Summary, error)
}

// Server wraps the MCP server with work item tools.
type Server struct {
	mcpServer *server.MCPServer
	workItems WorkItemReader
	analytics Summarizer
	logger    *slog.Logger
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(workItems WorkItemReader, analytics Summarizer, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		workItems: workItems,
		analytics: analytics,
		logger:    logger,
	}

	mcpServer := server.NewMCPServer(
		"fnol",
		version,
		server.WithToolCapabilities(true),
	)
	s.registerTools(mcpServer)

	s.mcpServer = mcpServer
	return s
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	listTool := mcp.NewTool("list_work_items",
		mcp.WithDescription("List FNOL work items, newest first, with their attachments"),
		mcp.WithString("status",
			mcp.Description("Only return work items in this status (e.g. pending, approved, closed)"),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum number of work items (default: %d, max: %d)", DefaultListLimit, MaxListLimit)),
		),
	)
	mcpServer.AddTool(listTool, s.handleListWorkItems)

	getTool := mcp.NewTool("get_work_item",
		mcp.WithDescription("Get one FNOL work item with its extracted fields and attachments"),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("The numeric work item ID"),
		),
	)
	mcpServer.AddTool(getTool, s.handleGetWorkItem)

	summaryTool := mcp.NewTool("analytics_summary",
		mcp.WithDescription("Counts by status and document type, and the average processing time"),
	)
	mcpServer.AddTool(summaryTool, s.handleAnalyticsSummary)
}

func (s *Server) handleListWorkItems(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", DefaultListLimit)
	if limit < 1 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	options := []query.Option{query.WithLimit(limit)}
	if status := workitem.ParseStatus(request.GetString("status", "")); !status.IsEmpty() {
		options = append(options, workitem.WithStatus(status))
	}

	records, err := s.workItems.List(ctx, options...)
	if err != nil {
		s.logger.Error("list work items failed", slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("list work items failed: %v", err)), nil
	}

	return jsonResult(dto.NewWorkItemListResponse(records))
}

func (s *Server) handleGetWorkItem(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetInt("id", 0)
	if id < 1 {
		return mcp.NewToolResultError("id is required"), nil
	}

	record, err := s.workItems.Get(ctx, int64(id))
	if errors.Is(err, workitem.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("work item %d not found", id)), nil
	}
	if err != nil {
		s.logger.Error("get work item failed", slog.Int("id", id), slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("get work item failed: %v", err)), nil
	}

	return jsonResult(dto.NewWorkItemResponse(record))
}

func (s *Server) handleAnalyticsSummary(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summary, err := s.analytics.Summary(ctx)
	if err != nil {
		s.logger.Error("analytics summary failed", slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("analytics summary failed: %v", err)), nil
	}

	return jsonResult(dto.NewSummaryResponse(summary))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// MCPServer returns the underlying MCP server for stdio serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio runs the MCP server on stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
