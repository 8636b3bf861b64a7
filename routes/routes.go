package routes

import (
	"github.com/gin-gonic/gin"

	"proofok-api/controllers"
	"proofok-api/middleware"
	"proofok-api/monitor"
)

// Options carries what the route table needs besides the handlers.
type Options struct {
	MonitorTokenHash string
	LogPath          string
}

func SetupRoutes(router *gin.Engine, proofs *controllers.ProofHandler, opts Options) {
	router.SetHTMLTemplate(controllers.Templates())

	// Public routes
	router.GET("/", proofs.Index)
	router.GET("/healthz", proofs.Healthz)
	router.GET("/routes", controllers.ListRoutes(router))

	// Uploads
	router.GET("/upload", proofs.UploadForm)
	router.POST("/upload", proofs.UploadPost)

	api := router.Group("/api")
	{
		api.POST("/upload", proofs.APIUpload)
		api.GET("/proof/:token", proofs.APIRecord)
	}

	// Review
	router.GET("/proof/:token", proofs.ReviewPage)
	router.POST("/respond/:token", proofs.Respond)
	router.GET("/p/:token/*filename", proofs.ServeDocument)

	// Operator routes
	ops := router.Group("")
	ops.Use(middleware.RequireMonitorToken(opts.MonitorTokenHash))
	{
		monitor.RegisterMonitorPage(ops)
		monitor.RegisterLogsRoute(ops, opts.LogPath)
		monitor.RegisterMetricsRoute(ops)
	}

	router.NoRoute(proofs.NotFound)
}
