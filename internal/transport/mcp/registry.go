package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/alanyang/product-catalog/internal/domain/event"
)

const notificationMethod = "notifications/message"

// SessionRegistry is the in-memory set of open MCP sessions. Catalog change
// events are pushed to every session as log-message notifications.
//
// [SRP] Session storage and notification dispatch only.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]struct{}

	// mcpSrv is set after the MCP server is constructed.
	mcpMu  sync.RWMutex
	mcpSrv *mcpserver.MCPServer
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]struct{}),
	}
}

func (r *SessionRegistry) SetMCPServer(s *mcpserver.MCPServer) {
	r.mcpMu.Lock()
	r.mcpSrv = s
	r.mcpMu.Unlock()
}

func (r *SessionRegistry) Register(sessionID string) {
	r.mu.Lock()
	r.sessions[sessionID] = struct{}{}
	r.mu.Unlock()
}

// Unregister reports whether the session was known.
func (r *SessionRegistry) Unregister(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sessionID]; !ok {
		return false
	}
	delete(r.sessions, sessionID)
	return true
}

func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Broadcast sends e to every open session. Failures are logged per session;
// a session that dropped without unregistering does not block the rest.
func (r *SessionRegistry) Broadcast(ctx context.Context, e event.Event) {
	r.mu.RLock()
	targets := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		targets = append(targets, id)
	}
	r.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	r.mcpMu.RLock()
	srv := r.mcpSrv
	r.mcpMu.RUnlock()
	if srv == nil {
		return
	}

	params := map[string]any{
		"level":  "info",
		"logger": "catalog",
		"data":   toParams(e),
	}
	for _, sessionID := range targets {
		if err := srv.SendNotificationToSpecificClient(sessionID, notificationMethod, params); err != nil {
			slog.WarnContext(ctx, "mcp: notify session failed", "session_id", sessionID, "error", err)
		}
	}
}

func toParams(v any) map[string]any {
	data, err := json.Marshal(v)
	if err != nil {
		return map[string]any{"data": v}
	}
	var params map[string]any
	if err := json.Unmarshal(data, &params); err != nil {
		return map[string]any{"data": v}
	}
	return params
}
