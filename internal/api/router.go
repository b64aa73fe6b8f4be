package api

import (
	"github.com/gin-gonic/gin"

	"github.com/civiz/civiz/internal/api/handler"
	"github.com/civiz/civiz/internal/api/middleware"
	"github.com/civiz/civiz/internal/service"
	"github.com/civiz/civiz/internal/store"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	visionStore *store.VisionStore,
	streetView *service.StreetViewService,
	mode string,
	cors middleware.CORSConfig,
) *gin.Engine {
	// Set Gin mode
	switch mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cors))

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	visionHandler := handler.NewVisionHandler(visionStore)
	fundingHandler := handler.NewFundingHandler()
	streetViewHandler := handler.NewStreetViewHandler(streetView)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Visions
		v1.POST("/visions", visionHandler.Submit)
		v1.GET("/visions", visionHandler.List)
		v1.GET("/visions/mine", visionHandler.ListMine)
		v1.GET("/visions/city", visionHandler.ListCity)
		v1.GET("/visions/top-by-category", visionHandler.TopByCategory)
		v1.POST("/visions/:id/like", visionHandler.Like)

		// Points
		v1.GET("/points", visionHandler.Points)

		// View mode
		v1.PUT("/view-mode", visionHandler.SetViewMode)
		v1.POST("/view-mode/toggle", visionHandler.ToggleViewMode)

		// Funding categories
		v1.GET("/funding", fundingHandler.ListCategories)

		// Street view imagery
		v1.POST("/streetview", streetViewHandler.Fetch)

		// Admin
		v1.POST("/reset", visionHandler.Reset)
	}

	return r
}
