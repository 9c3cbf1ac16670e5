package router

import (
	"log"

	"horizon/internal/handlers"
	"horizon/internal/middleware"
	"horizon/internal/services"
	"horizon/internal/utils"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	previewCache, err := utils.NewTTLCache(256)
	if err != nil {
		log.Fatalf("Failed to create preview cache: %v", err)
	}

	// Handlers
	authHandler := handlers.NewAuthHandler()
	postHandler := handlers.NewPostHandler()
	apiHandler := handlers.NewAPIHandler(services.NewLinkPreviewService(previewCache))
	adminHandler := handlers.NewAdminHandler()

	// Session resolution on every request
	r.Use(middleware.LoadUser())

	// Public routes
	r.GET("/", postHandler.Index)
	r.POST("/auth/session", authHandler.CreateSession)
	r.POST("/auth/logout", authHandler.Logout)

	// Reader routes (login required, whole site is gated)
	reader := r.Group("/")
	reader.Use(middleware.AuthRequired())
	{
		reader.GET("/archive/:month", postHandler.Archive)
		reader.GET("/months", postHandler.Months)
		reader.GET("/post/:slug", postHandler.Detail)
	}

	// Interaction API
	api := r.Group("/api")
	{
		// Read tracking accepts anonymous callers via anon_id
		api.POST("/read-event/:post_id", apiHandler.TrackReadEvent)

		authed := api.Group("/")
		authed.Use(middleware.AuthRequired())
		{
			authed.POST("/like/:post_id", apiHandler.ToggleLike)
			// Same wildcard name on every /comment route: gin's router
			// rejects mixed param names on one segment.
			authed.POST("/comment/:id", apiHandler.AddComment)
			authed.DELETE("/comment/:id", apiHandler.DeleteComment)
			authed.POST("/comment/:id/like", apiHandler.ToggleCommentLike)
			authed.GET("/comments/:post_id", apiHandler.ListComments)
			authed.GET("/link-preview", apiHandler.LinkPreview)
		}
	}

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
	{
		admin.GET("/dashboard", adminHandler.Dashboard)
		admin.GET("/posts", adminHandler.ListPosts)
		admin.POST("/posts", adminHandler.CreatePost)
		admin.PUT("/posts/:post_id", adminHandler.UpdatePost)
		admin.DELETE("/posts/:post_id", adminHandler.DeletePost)
		admin.GET("/posts/:post_id/stats", adminHandler.PostStats)
		admin.GET("/posts/:post_id/readers", adminHandler.PostReaders)
		admin.GET("/readers", adminHandler.Readers)
		admin.GET("/readers/:reader_type/:reader_id", adminHandler.ReaderDetail)
		admin.GET("/comments", adminHandler.Comments)
		admin.DELETE("/comments/:comment_id", adminHandler.DeleteComment)
		admin.GET("/users", adminHandler.Users)
	}
}
