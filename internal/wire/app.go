package wire

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/promptlab/promptlab/internal/adapter/memory"
	pgdb "github.com/promptlab/promptlab/internal/adapter/postgres"
	pgcollection "github.com/promptlab/promptlab/internal/adapter/postgres/collection"
	pgeventbus "github.com/promptlab/promptlab/internal/adapter/postgres/eventbus"
	pgprompt "github.com/promptlab/promptlab/internal/adapter/postgres/prompt"
	pgtag "github.com/promptlab/promptlab/internal/adapter/postgres/tag"
	pgunit "github.com/promptlab/promptlab/internal/adapter/postgres/unit"
	pgversion "github.com/promptlab/promptlab/internal/adapter/postgres/version"

	portcollection "github.com/promptlab/promptlab/internal/port/collection"
	portbus "github.com/promptlab/promptlab/internal/port/eventbus"
	portprompt "github.com/promptlab/promptlab/internal/port/prompt"
	porttag "github.com/promptlab/promptlab/internal/port/tag"
	portunit "github.com/promptlab/promptlab/internal/port/unit"
	portversion "github.com/promptlab/promptlab/internal/port/version"

	collectionsvc "github.com/promptlab/promptlab/internal/service/collection"
	promptsvc "github.com/promptlab/promptlab/internal/service/prompt"

	"github.com/promptlab/promptlab/internal/transport"
	mcptransport "github.com/promptlab/promptlab/internal/transport/mcp"
)

// App holds the top-level resources needed to run and gracefully stop the server.
type App struct {
	Pool      *pgxpool.Pool // nil when running on the in-memory backend
	Server    *http.Server
	PromptSvc *promptsvc.Service
	MCPServer *mcptransport.Server
}

// Build is the composition root: the only place concrete types are wired to
// their interface dependencies. DATABASE_URL selects the Postgres backend;
// without it the server runs entirely in memory.
func Build(ctx context.Context) (*App, error) {
	var (
		pool           *pgxpool.Pool
		promptRepo     portprompt.Repository
		versionStore   portversion.Store
		tagIndex       porttag.Index
		collectionRepo portcollection.Repository
		unitRunner     portunit.Runner
		eventBus       portbus.EventBus
	)

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		var err error
		pool, err = pgdb.Connect(ctx, dbURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		promptRepo = pgprompt.New(pool)
		versionStore = pgversion.New(pool)
		tagIndex = pgtag.New(pool)
		collectionRepo = pgcollection.New(pool)
		unitRunner = pgunit.New(pool)
		eventBus = pgeventbus.New(pool)
	} else {
		slog.Warn("DATABASE_URL not set, using in-memory storage; data will not survive a restart")
		store := memory.NewStore()
		promptRepo = store
		versionStore = store.Versions()
		tagIndex = store
		collectionRepo = store.Collections()
		unitRunner = store
		eventBus = memory.NewBus()
	}

	promptSvcInstance := promptsvc.NewService(promptRepo, versionStore, tagIndex, collectionRepo, unitRunner, eventBus)
	collectionSvcInstance := collectionsvc.NewService(collectionRepo, promptRepo, eventBus)

	mcpServer := mcptransport.New(promptSvcInstance)

	router := transport.NewRouter(ctx, promptSvcInstance, collectionSvcInstance, mcpServer, eventBus)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	slog.Info("application wired", "port", port, "backend", backendName(pool))

	return &App{
		Pool:      pool,
		Server:    server,
		PromptSvc: promptSvcInstance,
		MCPServer: mcpServer,
	}, nil
}

func backendName(pool *pgxpool.Pool) string {
	if pool != nil {
		return "postgres"
	}
	return "memory"
}
