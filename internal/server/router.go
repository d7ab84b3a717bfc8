package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/example/contentapi/internal/handlers"
	"github.com/example/contentapi/internal/middleware"
)

type RouterConfig struct {
	MessageHandler *handlers.MessageHandler
	ServiceAuth    *middleware.ServiceAuth
	AllowOrigins   []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.RequestID())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	protected := router.Group("/")
	protected.Use(cfg.ServiceAuth.RequireServiceToken())
	protected.POST("/", cfg.MessageHandler.Handle)

	return router
}
