// Package web serves the steganography operations over HTTP.
//
// Uploads are processed in memory and never written to disk. Routes:
//
//	GET  /api/v1/health
//	POST /api/v1/embed     multipart file, message, key -> PNG attachment
//	POST /api/v1/extract   multipart file, key -> {"success", "message"}
//	POST /api/v1/capacity  multipart file -> {"success", "capacity"}
package web

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with CORS and all API routes.
func NewRouter(cfg Config) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Requested-With"}
	corsConfig.ExposeHeaders = []string{"Content-Disposition", "X-Stego-Key", "X-Stego-Bits", "X-Stego-Capacity"}
	router.Use(cors.New(corsConfig))

	h := NewHandler(cfg)

	api := router.Group("/api/v1")
	{
		api.GET("/health", h.HealthCheck)
		api.POST("/embed", h.Embed)
		api.POST("/extract", h.Extract)
		api.POST("/capacity", h.Capacity)
	}

	return router
}
