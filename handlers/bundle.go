package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"charterhub/utils"
)

// HandlerBundle aggregates the handler functions registered by routes.
type HandlerBundle struct {
	// Dialogue endpoints.
	StartConversation gin.HandlerFunc
	SendMessage       gin.HandlerFunc

	// Admin lifecycle endpoints.
	GetRequest      gin.HandlerFunc
	ListRequests    gin.HandlerFunc
	BeginReview     gin.HandlerFunc
	PublishRequest  gin.HandlerFunc
	WithdrawRequest gin.HandlerFunc
	AcceptRequest   gin.HandlerFunc
	CompleteRequest gin.HandlerFunc

	// Operator endpoints.
	SubmitQuote gin.HandlerFunc
	ListQuotes  gin.HandlerFunc
}

// HealthHandler reports the latest monitored health snapshot.
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"deps":   utils.GetHealthStatus(),
	})
}
