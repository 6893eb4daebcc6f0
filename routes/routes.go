package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"charterhub/handlers"
	"charterhub/middleware"
)

// RegisterChatRoutes registers the conversational intake endpoints.
// Identity is optional here: anonymous visitors chat too.
func RegisterChatRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/chat")
	{
		api.Use(middleware.OptionalIdentity())
		api.POST("/session", hb.StartConversation)
		api.POST("/session/:sessionID/message", hb.SendMessage)
	}
}

// RegisterAdminRoutes registers the review/publish lifecycle endpoints.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/admin/requests")
	{
		api.Use(middleware.RequireRole("admin"))
		api.GET("", hb.ListRequests)
		api.GET("/:id", hb.GetRequest)
		api.POST("/:id/review", hb.BeginReview)
		api.POST("/:id/publish", hb.PublishRequest)
		api.POST("/:id/withdraw", hb.WithdrawRequest)
		api.POST("/:id/accept", hb.AcceptRequest)
		api.POST("/:id/complete", hb.CompleteRequest)
	}
}

// RegisterOperatorRoutes registers the bidding endpoints.
func RegisterOperatorRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/requests")
	{
		api.Use(middleware.RequireRole("operator"))
		api.POST("/:id/quotes", hb.SubmitQuote)
		api.GET("/:id/quotes", hb.ListQuotes)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.HealthHandler)
}

// RegisterRoutes wires up CORS and all route groups.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterChatRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
	RegisterOperatorRoutes(r, hb)
}
