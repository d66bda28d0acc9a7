package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ytdoc/youtube-doc-service-go/internal/middleware"
)

// SetupRouter builds the gin engine with all routes. templatesGlob may be
// empty in tests that do not render pages.
func SetupRouter(videoHandler *VideoHandler, apiHandler *APIHandler, templatesGlob string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())

	if templatesGlob != "" {
		router.LoadHTMLGlob(templatesGlob)
	}

	indexLimiter := middleware.NewRateLimiter(10)
	watchLimiter := middleware.NewRateLimiter(5)

	router.GET("/", videoHandler.Index)
	router.POST("/", indexLimiter.Middleware(), videoHandler.ProcessIndex)

	router.GET("/video/:video_id", videoHandler.VideoPage)
	router.POST("/video/:video_id", watchLimiter.Middleware(), videoHandler.ProcessVideo)

	router.GET("/watch", videoHandler.Watch)
	router.POST("/watch", watchLimiter.Middleware(), videoHandler.ProcessWatch)

	router.GET("/stream", videoHandler.Stream)

	api := router.Group("/api/v1")
	api.POST("/process", apiHandler.Process)
	api.GET("/documents", apiHandler.ListDocuments)
	api.GET("/documents/:video_id", apiHandler.GetDocument)

	router.GET("/health", Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
