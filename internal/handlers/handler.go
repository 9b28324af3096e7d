package handlers

import (
	"filadash/internal/logger"
	"filadash/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// Live status stream (HTTP upgrade) — same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerAMSRoutes(api)
		h.registerArchiveRoutes(api)
		h.registerSettingsRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerAMSRoutes(api *gin.RouterGroup) {
	feed := api.Group("/ams")
	{
		// Body example: {"unit_id":0,"slot_index":2}
		feed.POST("/refresh", h.refreshSlot)
		feed.POST("/load", h.loadSlot)
		feed.POST("/unload", h.unloadFilament)
		feed.POST("/cancel", h.cancelOperation)
		feed.GET("/status", h.getAMSStatus)
		feed.GET("/history", h.getSensorHistory)
	}
}

func (h *Handler) registerArchiveRoutes(api *gin.RouterGroup) {
	archives := api.Group("/archives")
	{
		archives.POST("/", h.createArchive)
		archives.GET("/", h.listArchives)
		archives.GET("/:id", h.getArchive)
		archives.DELETE("/:id", h.deleteArchive)
	}
	api.GET("/stats", h.getStats)
}

func (h *Handler) registerSettingsRoutes(api *gin.RouterGroup) {
	settings := api.Group("/settings")
	{
		settings.GET("/", h.getSettings)
		settings.GET("/:key", h.getSetting)
		settings.PUT("/:key", h.putSetting)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}
