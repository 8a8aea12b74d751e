package transport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alanyang/product-catalog/internal/domain/event"
	porteventbus "github.com/alanyang/product-catalog/internal/port/eventbus"
	portidempotency "github.com/alanyang/product-catalog/internal/port/idempotency"
	productsvc "github.com/alanyang/product-catalog/internal/service/product"
	projectsvc "github.com/alanyang/product-catalog/internal/service/project"

	mcptransport "github.com/alanyang/product-catalog/internal/transport/mcp"
	producthandler "github.com/alanyang/product-catalog/internal/transport/product"
	projecthandler "github.com/alanyang/product-catalog/internal/transport/project"
	wshandler "github.com/alanyang/product-catalog/internal/transport/ws"
)

type Options struct {
	// APIPrefix is mounted without surrounding slashes, e.g. "api/v1".
	APIPrefix      string
	IdempotencyTTL time.Duration
}

// NewRouter mounts the REST API under the prefix, the websocket feed at
// {prefix}/ws and, when mcpSrv is non-nil, the MCP endpoint at /mcp.
func NewRouter(
	ctx context.Context,
	opts Options,
	productSvc *productsvc.Service,
	projectSvc *projectsvc.Service,
	eventBus porteventbus.EventBus,
	idemStore portidempotency.Store,
	mcpSrv *mcptransport.Server,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestLogger())
	r.Use(CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/" + opts.APIPrefix)
	api.Use(IdempotencyMiddleware(idemStore, opts.IdempotencyTTL))

	producthandler.Register(api.Group("/products"), productSvc)
	projecthandler.Register(api.Group("/project"), projectSvc)

	hub := wshandler.NewHub()
	hub.Register(api.Group("/ws"))

	// One subscription per domain channel; each event goes to browsers and MCP sessions.
	for _, ch := range []event.Channel{event.ChannelProduct, event.ChannelProject} {
		if _, err := eventBus.Subscribe(ctx, ch, func(ctx context.Context, e event.Event) {
			hub.Broadcast(e)
			if mcpSrv != nil {
				mcpSrv.Registry().Broadcast(ctx, e)
			}
		}); err != nil {
			slog.Error("failed to subscribe channel", "channel", ch, "error", err)
		}
	}

	if mcpSrv != nil {
		r.Any("/mcp", gin.WrapH(mcpSrv.Handler()))
	}

	return r
}
