package router

import (
	"memebot/internal/handlers"
	"memebot/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Deps carries the constructed handlers into route registration.
type Deps struct {
	Queue  *handlers.QueueHandler
	Trends *handlers.TrendHandler
	Status *handlers.StatusHandler
	Auth   *handlers.AuthHandler
	Review *handlers.ReviewHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/health", handlers.Health)

	// JSON API for the review frontend and monitoring
	api := r.Group("/api")
	{
		api.GET("/status", d.Status.Status)

		api.GET("/trends", d.Trends.List)
		api.GET("/trends/trending", d.Trends.Trending)

		api.GET("/queue", d.Queue.List)
		api.GET("/queue/:id", d.Queue.Get)
		api.POST("/queue/:id/approve", d.Queue.Approve)
		api.POST("/queue/:id/reject", d.Queue.Reject)
		api.POST("/queue/:id/mark-posted", d.Queue.MarkPosted)
		api.POST("/queue/:id/publish", d.Queue.Publish)
	}

	// Reviewer login
	r.GET("/login", d.Auth.ShowLogin)
	r.POST("/login", d.Auth.Login)
	r.GET("/logout", d.Auth.Logout)

	// Review page (session protected)
	review := r.Group("/")
	review.Use(middleware.ReviewerRequired())
	{
		review.GET("/", d.Review.Page)
		review.GET("/review", d.Review.Page)
	}
}
