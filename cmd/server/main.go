package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"propertychat/internal/config"
	"propertychat/internal/handler"
	"propertychat/internal/observability"
	"propertychat/internal/repository"
	"propertychat/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	observability.Setup(observability.LogConfig{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		ServiceName: "propertychat",
	})
	log.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Msg("London property chat assistant")

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	catalog, err := repository.LoadCatalog(cfg.Catalog.ListingsFile, cfg.Catalog.AreasFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load catalog")
	}
	log.Info().
		Int("listings", len(catalog.Listings())).
		Int("areas", len(catalog.Areas())).
		Msg("catalog loaded")

	kv, err := repository.OpenStore(cfg.StoreSettings())
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Store.Backend).Msg("failed to open conversation store")
	}
	defer kv.Close()
	log.Info().Str("backend", cfg.Store.Backend).Msg("conversation store ready")

	// Initialize services
	assistant := service.NewAssistant(catalog, cfg.Chat.TopK)
	chat := service.NewChatService(
		assistant,
		repository.NewConversationStore(kv),
		service.NewScheduler(),
		service.NewBroker(),
		service.ChatConfig{ReplyDelay: cfg.Chat.ReplyDelay, NudgeDelay: cfg.Chat.NudgeDelay},
	)
	defer chat.Close()
	listings := service.NewListingService(catalog, repository.NewFavouritesStore(kv))

	router := handler.NewRouter(handler.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: cfg.Server.AllowedMethods,
		AllowedHeaders: cfg.Server.AllowedHeaders,
		Build:          handler.BuildInfo{Version: Version, BuildTime: BuildTime, GitCommit: GitCommit},
	}, chat, listings)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: router}
	log.Info().
		Str("addr", addr).
		Dur("reply_delay", cfg.Chat.ReplyDelay).
		Dur("nudge_delay", cfg.Chat.NudgeDelay).
		Msg("starting server")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	log.Info().Msg("server stopped")
}
