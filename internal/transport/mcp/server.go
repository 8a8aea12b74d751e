package mcp

import (
	"context"
	"log/slog"
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	productsvc "github.com/alanyang/product-catalog/internal/service/product"
	projectsvc "github.com/alanyang/product-catalog/internal/service/project"
)

// Server wraps the mark3labs/mcp-go MCPServer and its StreamableHTTPServer.
// [SRP] HTTP server lifecycle only (session open/close).
//
//	Tools are registered in tools.go, prompts in prompts.go, session state in registry.go.
//
// [OCP] Adding new tools or prompts never requires changes to this file.
type Server struct {
	httpSrv *mcpserver.StreamableHTTPServer
	reg     *SessionRegistry
}

// New creates the MCP transport server. counter backs the count_products tool.
func New(
	productSvc *productsvc.Service,
	projectSvc *projectsvc.Service,
	counter Counter,
) *Server {
	s := &Server{
		reg: NewSessionRegistry(),
	}

	hooks := &mcpserver.Hooks{}
	hooks.OnRegisterSession = append(hooks.OnRegisterSession, s.onSessionOpen)
	hooks.OnUnregisterSession = append(hooks.OnUnregisterSession, s.onSessionClose)

	mcpSrv := mcpserver.NewMCPServer(
		"product-catalog",
		"1.0.0",
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithPromptCapabilities(true),
		mcpserver.WithHooks(hooks),
	)

	s.reg.SetMCPServer(mcpSrv)

	RegisterTools(mcpSrv, productSvc, projectSvc, counter)
	RegisterPrompts(mcpSrv, productSvc)

	s.httpSrv = mcpserver.NewStreamableHTTPServer(mcpSrv)
	return s
}

// Handler returns an http.Handler that serves the MCP endpoint.
func (s *Server) Handler() http.Handler {
	return s.httpSrv
}

// Registry returns the session registry used to push change events.
func (s *Server) Registry() *SessionRegistry {
	return s.reg
}

func (s *Server) onSessionOpen(ctx context.Context, session mcpserver.ClientSession) {
	s.reg.Register(session.SessionID())
	slog.DebugContext(ctx, "mcp: session opened", "session_id", session.SessionID())
}

func (s *Server) onSessionClose(ctx context.Context, session mcpserver.ClientSession) {
	if s.reg.Unregister(session.SessionID()) {
		slog.DebugContext(ctx, "mcp: session closed", "session_id", session.SessionID())
	}
}
