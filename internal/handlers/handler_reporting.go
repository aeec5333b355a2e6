package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/autoledger/internal/core/domain"
	portssvc "github.com/SscSPs/autoledger/internal/core/ports/services"
	"github.com/SscSPs/autoledger/internal/dto"
	"github.com/SscSPs/autoledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler serves the reconciliation reports.
type reportingHandler struct {
	reconciliation portssvc.ReconciliationService
}

func registerReportingRoutes(rg *gin.RouterGroup, reconciliation portssvc.ReconciliationService) {
	h := &reportingHandler{reconciliation: reconciliation}

	reports := rg.Group("/reports")
	{
		reports.GET("/trial-balance", h.getTrialBalance)
		reports.GET("/unreconciled", h.getUnreconciled)
		reports.GET("/unbalanced", h.getUnbalanced)
	}
}

// getTrialBalance godoc
// @Summary Get trial balance
// @Description Per-account debit and credit totals for entries dated on or before asOf. Balances net to zero.
// @Tags reports
// @Produce  json
// @Param   asOf query string false "As-of date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.TrialBalanceResponse
// @Failure 400 {object} map[string]string "Invalid date"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security BearerAuth
// @Router /reports/trial-balance [get]
func (h *reportingHandler) getTrialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.TrialBalanceParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for trial balance", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	var asOf time.Time
	if params.AsOf != "" {
		// format already checked by the binding
		asOf, _ = time.Parse(time.DateOnly, params.AsOf)
	}

	report, err := h.reconciliation.TrialBalance(c.Request.Context(), asOf)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to generate trial balance")
		return
	}
	c.JSON(http.StatusOK, dto.ToTrialBalanceResponse(report))
}

// getUnreconciled godoc
// @Summary List source records missing from the ledger
// @Tags reports
// @Produce  json
// @Param   sourceType query string true "Source type"
// @Param   limit query int false "Maximum rows" default(100)
// @Success 200 {object} dto.UnreconciledResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /reports/unreconciled [get]
func (h *reportingHandler) getUnreconciled(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.UnreconciledParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for unreconciled", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	sourceType := domain.SourceType(params.SourceType)
	sources, err := h.reconciliation.Unreconciled(c.Request.Context(), sourceType, params.Limit)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list unreconciled sources")
		return
	}
	c.JSON(http.StatusOK, dto.UnreconciledResponse{SourceType: sourceType, Sources: sources})
}

// getUnbalanced godoc
// @Summary List stored entries that do not balance
// @Tags reports
// @Produce  json
// @Success 200 {object} dto.UnbalancedEntriesResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /reports/unbalanced [get]
func (h *reportingHandler) getUnbalanced(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entries, err := h.reconciliation.UnbalancedEntries(c.Request.Context())
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list unbalanced entries")
		return
	}
	c.JSON(http.StatusOK, dto.UnbalancedEntriesResponse{Entries: entries})
}
