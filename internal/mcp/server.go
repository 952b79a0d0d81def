// Package mcp exposes training history and the week plan to MCP clients.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("reprx", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("reprx training log. Query completed workout sessions, individual logged sets, the current week's program and lifetime stats, and map muscle names to the app's muscle groups."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetSessions, Handler: h.getSessions},
		server.ServerTool{Tool: toolGetSetLogs, Handler: h.getSetLogs},
		server.ServerTool{Tool: toolGetWeekPlan, Handler: h.getWeekPlan},
		server.ServerTool{Tool: toolGetTrainingStats, Handler: h.getTrainingStats},
		server.ServerTool{Tool: toolResolveMuscle, Handler: h.resolveMuscle},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resWeekPlan, Handler: h.weekPlan},
		server.ServerResource{Resource: resRecentSessions, Handler: h.recentSessions},
	)

	return s
}

// NewHTTPHandler wraps an MCP server in the streamable HTTP transport.
func NewHTTPHandler(s *server.MCPServer) *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(s, server.WithEndpointPath("/mcp"))
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resWeekPlan = mcp.NewResource(
	"reprx://week_plan",
	"Week Plan",
	mcp.WithResourceDescription("The active program's training days with prescribed exercises, sets, rep ranges and starting weights"),
	mcp.WithMIMEType("application/json"),
)

var resRecentSessions = mcp.NewResource(
	"reprx://recent_sessions",
	"Recent Sessions",
	mcp.WithResourceDescription("Workout sessions from the last 14 days with volume, duration and personal record counts"),
	mcp.WithMIMEType("application/json"),
)
