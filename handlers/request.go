package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	requestRepo "charterhub/database/repository/request"
	"charterhub/models"
	"charterhub/services/lifecycle"
	"charterhub/utils"
)

// RequestHandler exposes the administrative lifecycle endpoints.
type RequestHandler struct {
	Service lifecycle.Service
	Logger  *zap.Logger
}

// NewRequestHandler returns a handler over the lifecycle service.
func NewRequestHandler(svc lifecycle.Service, logger *zap.Logger) *RequestHandler {
	return &RequestHandler{Service: svc, Logger: logger}
}

// GetRequest fetches one charter request record.
func (h *RequestHandler) GetRequest(c *gin.Context) {
	record, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// ListRequests lists records by status (?status=Draft etc.).
func (h *RequestHandler) ListRequests(c *gin.Context) {
	status := models.RequestStatus(c.Query("status"))
	if status == "" {
		status = models.StatusDraft
	}
	records, err := h.Service.ListByStatus(c.Request.Context(), status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": records})
}

// BeginReview moves a Draft into review.
func (h *RequestHandler) BeginReview(c *gin.Context) {
	if err := h.Service.BeginReview(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.StatusUnderReview})
}

// PublishRequest opens a request for quoting. An optional deadlineHours
// field overrides the configured quote-collection window.
func (h *RequestHandler) PublishRequest(c *gin.Context) {
	var input struct {
		DeadlineHours int `json:"deadlineHours"`
	}
	// Body is optional.
	_ = c.ShouldBindJSON(&input)

	var deadline *time.Time
	if input.DeadlineHours > 0 {
		dl := time.Now().Add(time.Duration(input.DeadlineHours) * time.Hour)
		deadline = &dl
	}

	if err := h.Service.Publish(c.Request.Context(), c.Param("id"), deadline); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.StatusPublished})
}

// WithdrawRequest cancels a request.
func (h *RequestHandler) WithdrawRequest(c *gin.Context) {
	if err := h.Service.Withdraw(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.StatusCancelled})
}

// AcceptRequest marks the request as having an accepted quote.
func (h *RequestHandler) AcceptRequest(c *gin.Context) {
	if err := h.Service.Accept(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.StatusAccepted})
}

// CompleteRequest ends the request lifecycle.
func (h *RequestHandler) CompleteRequest(c *gin.Context) {
	if err := h.Service.Complete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.StatusCompleted})
}

func (h *RequestHandler) respondError(c *gin.Context, err error) {
	if errors.Is(err, requestRepo.ErrNotFound) {
		utils.JSONError(c, http.StatusNotFound, "Request not found", "")
		return
	}
	var lcErr *lifecycle.LifecycleError
	if errors.As(err, &lcErr) {
		utils.JSONError(c, http.StatusConflict, lcErr.Message, lcErr.Code)
		return
	}
	h.Logger.Error("lifecycle operation failed", zap.Error(err))
	utils.JSONError(c, http.StatusInternalServerError, "Internal error", "")
}
