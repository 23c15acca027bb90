package handler

import (
	"net/http"
	"strings"

	"propertychat/internal/observability"
	"propertychat/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// BuildInfo is reported by /health and /version
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
}

// RouterConfig holds the HTTP surface settings
type RouterConfig struct {
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
	Build          BuildInfo
}

// NewRouter wires every API route
func NewRouter(cfg RouterConfig, chat *service.ChatService, listings *service.ListingService) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), observability.RequestLogger())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = splitList(cfg.AllowedOrigins, "*")
	corsConfig.AllowMethods = splitList(cfg.AllowedMethods, "GET,POST,PUT,DELETE,OPTIONS")
	corsConfig.AllowHeaders = splitList(cfg.AllowedHeaders, "Content-Type,Authorization")
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"service":    "propertychat",
			"version":    cfg.Build.Version,
			"build_time": cfg.Build.BuildTime,
			"git_commit": cfg.Build.GitCommit,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    cfg.Build.Version,
			"build_time": cfg.Build.BuildTime,
			"git_commit": cfg.Build.GitCommit,
		})
	})

	chatHandler := NewChatHandler(chat)
	wsHandler := NewChatWSHandler(chat)
	listingHandler := NewListingHandler(listings)

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		// Chat endpoints
		apiV1.GET("/chat/starters", chatHandler.Starters)
		apiV1.POST("/chat", chatHandler.Create)
		apiV1.POST("/chat/:id/messages", chatHandler.Send)
		apiV1.GET("/chat/:id/messages", chatHandler.Messages)
		apiV1.GET("/chat/:id/preferences", chatHandler.Preferences)
		apiV1.DELETE("/chat/:id", chatHandler.Reset)
		apiV1.GET("/chat/:id/stream", chatHandler.Stream)
		apiV1.GET("/chat/:id/ws", wsHandler.Handle)

		// Listing endpoints
		apiV1.GET("/listings", listingHandler.List)
		apiV1.GET("/listings/:id", listingHandler.GetListing)
		apiV1.GET("/listings/:id/viewings", listingHandler.Viewings)
		apiV1.POST("/listings/:id/viewings/:slot", listingHandler.BookViewing)

		// Area directory
		apiV1.GET("/areas", listingHandler.Areas)
		apiV1.GET("/areas/search", listingHandler.SearchAreas)
		apiV1.GET("/areas/:name", listingHandler.Area)

		// Favourites
		apiV1.GET("/favourites/:visitor", listingHandler.Favourites)
		apiV1.PUT("/favourites/:visitor/:listing", listingHandler.AddFavourite)
		apiV1.DELETE("/favourites/:visitor/:listing", listingHandler.RemoveFavourite)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
	})

	return router
}

func splitList(value, fallback string) []string {
	if strings.TrimSpace(value) == "" {
		value = fallback
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
