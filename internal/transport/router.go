package transport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/promptlab/promptlab/internal/domain/event"
	porteventbus "github.com/promptlab/promptlab/internal/port/eventbus"
	collectionsvc "github.com/promptlab/promptlab/internal/service/collection"
	promptsvc "github.com/promptlab/promptlab/internal/service/prompt"

	collectionhandler "github.com/promptlab/promptlab/internal/transport/collection"
	mcphandler "github.com/promptlab/promptlab/internal/transport/mcp"
	prompthandler "github.com/promptlab/promptlab/internal/transport/prompt"
	wshandler "github.com/promptlab/promptlab/internal/transport/ws"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

func NewRouter(
	ctx context.Context,
	promptSvc *promptsvc.Service,
	collectionSvc *collectionsvc.Service,
	mcpServer *mcphandler.Server,
	eventBus porteventbus.EventBus,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestLogger())
	r.Use(CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": Version})
	})

	api := r.Group("/api")

	prompthandler.Register(api.Group("/prompts"), promptSvc)
	collectionhandler.Register(api.Group("/collections"), collectionSvc)

	r.Any("/mcp", gin.WrapH(mcpServer.Handler()))

	hub := wshandler.NewHub()
	hub.Register(api.Group("/ws"))

	// Bridge: one subscription per domain channel. All events within a channel
	// are forwarded to WS clients; event.Type in the payload lets the client
	// filter.
	for _, ch := range []event.Channel{
		event.ChannelPrompt,
		event.ChannelCollection,
	} {
		c := ch
		if _, err := eventBus.Subscribe(ctx, c, func(_ context.Context, e event.Event) {
			hub.Broadcast(e)
		}); err != nil {
			slog.Error("failed to subscribe channel to WS hub", "channel", c, "error", err)
		}
	}

	return r
}
