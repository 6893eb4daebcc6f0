package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	requestRepo "charterhub/database/repository/request"
	"charterhub/middleware"
	"charterhub/services/quotes"
	"charterhub/utils"
)

// QuoteHandler exposes the operator bidding endpoints.
type QuoteHandler struct {
	Service quotes.IntakeService
	Logger  *zap.Logger
}

// NewQuoteHandler returns a handler over the quote intake service.
func NewQuoteHandler(svc quotes.IntakeService, logger *zap.Logger) *QuoteHandler {
	return &QuoteHandler{Service: svc, Logger: logger}
}

// SubmitQuote records an operator bid against a published request. The
// operator id comes from the authenticated token.
func (h *QuoteHandler) SubmitQuote(c *gin.Context) {
	caller := middleware.CallerIdentity(c)
	if caller == nil {
		utils.JSONError(c, http.StatusUnauthorized, "Operator authentication required", "")
		return
	}

	var input struct {
		PriceMinor int64  `json:"priceMinor" binding:"required"`
		Currency   string `json:"currency" binding:"required"`
		Notes      string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}

	quoteID, err := h.Service.SubmitQuote(c.Request.Context(), c.Param("id"), caller.UserID, input.PriceMinor, input.Currency, input.Notes)
	if err != nil {
		if errors.Is(err, requestRepo.ErrNotFound) {
			utils.JSONError(c, http.StatusNotFound, "Request not found", "")
			return
		}
		var intakeErr *quotes.IntakeError
		if errors.As(err, &intakeErr) {
			utils.JSONError(c, http.StatusConflict, intakeErr.Message, intakeErr.Code)
			return
		}
		h.Logger.Error("failed to submit quote",
			zap.String("requestId", c.Param("id")), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to submit quote", "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"quoteId": quoteID})
}

// ListQuotes returns all quotes submitted against a request.
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	quoteList, err := h.Service.ListByRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Logger.Error("failed to list quotes",
			zap.String("requestId", c.Param("id")), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to list quotes", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"quotes": quoteList})
}
