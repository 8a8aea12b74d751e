package wire

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyang/product-catalog/internal/adapter/memory"
	pgdb "github.com/alanyang/product-catalog/internal/adapter/postgres"
	pgeventbus "github.com/alanyang/product-catalog/internal/adapter/postgres/eventbus"
	pgidempotency "github.com/alanyang/product-catalog/internal/adapter/postgres/idempotency"
	pglocker "github.com/alanyang/product-catalog/internal/adapter/postgres/locker"
	pgproduct "github.com/alanyang/product-catalog/internal/adapter/postgres/product"
	pgproject "github.com/alanyang/product-catalog/internal/adapter/postgres/project"
	"github.com/alanyang/product-catalog/internal/config"

	porteventbus "github.com/alanyang/product-catalog/internal/port/eventbus"
	portidempotency "github.com/alanyang/product-catalog/internal/port/idempotency"
	portproduct "github.com/alanyang/product-catalog/internal/port/product"
	portproject "github.com/alanyang/product-catalog/internal/port/project"

	productsvc "github.com/alanyang/product-catalog/internal/service/product"
	projectsvc "github.com/alanyang/product-catalog/internal/service/project"

	"github.com/alanyang/product-catalog/internal/transport"
	mcptransport "github.com/alanyang/product-catalog/internal/transport/mcp"
)

// App holds the top-level resources needed to run and gracefully stop the server.
type App struct {
	// Pool is nil for the memory store.
	Pool       *pgxpool.Pool
	Server     *http.Server
	ProductSvc *productsvc.Service
	ProjectSvc *projectsvc.Service
	MCPServer  *mcptransport.Server
}

// Close releases the database pool, if any.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}

// adapters is the set of store-specific implementations chosen by config.
type adapters struct {
	pool        *pgxpool.Pool
	products    portproduct.Repository
	projects    portproject.Repository
	eventBus    porteventbus.EventBus
	idempotency interface {
		portidempotency.Store
		purger
	}
}

// Build is the composition root: the only place concrete types are wired to their
// interface dependencies.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	// ── Adapters ─────────────────────────────────────────────────────────────
	var (
		ad  adapters
		err error
	)
	switch cfg.Store {
	case config.StoreMemory:
		ad = memoryAdapters()
	default:
		ad, err = postgresAdapters(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	// ── Services ─────────────────────────────────────────────────────────────
	productSvcInstance := productsvc.NewService(ad.products)
	projectSvcInstance := projectsvc.NewService(ad.projects)

	var mcpServer *mcptransport.Server
	if cfg.MCPEnabled {
		mcpServer = mcptransport.New(productSvcInstance, projectSvcInstance, ad.products)
	}

	// ── Transport ─────────────────────────────────────────────────────────────
	gin.SetMode(gin.ReleaseMode)
	router := transport.NewRouter(
		ctx,
		transport.Options{APIPrefix: cfg.APIPrefix, IdempotencyTTL: cfg.Idempotency.TTL},
		productSvcInstance,
		projectSvcInstance,
		ad.eventBus,
		ad.idempotency,
		mcpServer,
	)

	server := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.Port),
		Handler: router,
	}

	startPurger(ctx, ad.idempotency, cfg.Idempotency.PurgeInterval)

	slog.Info("application wired", "port", cfg.Port, "store", cfg.Store, "idempotency", cfg.Idempotency.Backend)

	return &App{
		Pool:       ad.pool,
		Server:     server,
		ProductSvc: productSvcInstance,
		ProjectSvc: projectSvcInstance,
		MCPServer:  mcpServer,
	}, nil
}

// Migrate applies pending migrations against the configured database.
func Migrate(ctx context.Context, cfg config.Config) error {
	if cfg.Store != config.StorePostgres {
		return fmt.Errorf("migrate requires the %s store, configured %q", config.StorePostgres, cfg.Store)
	}
	pool, err := pgdb.Connect(ctx, cfg.DB.DSN(), cfg.DB.ConnectTimeout)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()
	return pgdb.Migrate(ctx, pool, pglocker.New(pool))
}

func memoryAdapters() adapters {
	bus := memory.NewEventBus()
	return adapters{
		products:    memory.NewProductRepository(bus),
		projects:    memory.NewProjectRepository(bus),
		eventBus:    bus,
		idempotency: memory.NewCache(),
	}
}

func postgresAdapters(ctx context.Context, cfg config.Config) (adapters, error) {
	pool, err := pgdb.Connect(ctx, cfg.DB.DSN(), cfg.DB.ConnectTimeout)
	if err != nil {
		return adapters{}, fmt.Errorf("connecting to database: %w", err)
	}

	if cfg.DB.Synchronize {
		if err := pgdb.Migrate(ctx, pool, pglocker.New(pool)); err != nil {
			pool.Close()
			return adapters{}, fmt.Errorf("migrating database: %w", err)
		}
	}

	ad := adapters{
		pool:        pool,
		products:    pgproduct.New(pool),
		projects:    pgproject.New(pool),
		eventBus:    pgeventbus.New(pool),
		idempotency: memory.NewCache(),
	}
	if cfg.Idempotency.Backend == config.StorePostgres {
		ad.idempotency = pgidempotency.New(pool)
	}
	return ad, nil
}
