package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/autoledger/internal/core/ports/services"
	"github.com/SscSPs/autoledger/internal/dto"
	"github.com/SscSPs/autoledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to the chart of accounts.
type accountHandler struct {
	chart          portssvc.ChartSvcFacade
	reconciliation portssvc.ReconciliationService
}

func registerAccountRoutes(rg *gin.RouterGroup, chart portssvc.ChartSvcFacade, reconciliation portssvc.ReconciliationService) {
	h := &accountHandler{chart: chart, reconciliation: reconciliation}

	accounts := rg.Group("/accounts")
	{
		accounts.GET("", h.listAccounts)
		accounts.PATCH("/:code", h.updateAccount)
		accounts.GET("/:code/ledger", h.getAccountLedger)
	}
}

// listAccounts godoc
// @Summary List the chart of accounts
// @Tags accounts
// @Produce  json
// @Success 200 {object} dto.ListAccountsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list accounts"
// @Security BearerAuth
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accounts, err := h.chart.ListAccounts(c.Request.Context())
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list accounts")
		return
	}
	c.JSON(http.StatusOK, dto.ToListAccountsResponse(accounts))
}

// updateAccount godoc
// @Summary Rename or (de)activate an account
// @Description Code, type and normal balance are fixed. Inactive accounts reject new postings.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   code path string true "Account code"
// @Param   account body dto.UpdateAccountRequest true "Fields to change"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /accounts/{code} [patch]
func (h *accountHandler) updateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	code := c.Param("code")

	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor := middleware.ActorOrSystem(c)
	logger = logger.With(slog.String("account_code", code))

	account, err := h.chart.UpdateAccount(c.Request.Context(), code, req, actor)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update account")
		return
	}
	logger.Info("Account updated", slog.Bool("is_active", account.IsActive))
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// getAccountLedger godoc
// @Summary List an account's postings
// @Description Lines oldest first with a running balance signed by the account's normal balance.
// @Tags accounts
// @Produce  json
// @Param   code path string true "Account code"
// @Param   limit query int false "Page size" default(50)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.AccountLedgerResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /accounts/{code}/ledger [get]
func (h *accountHandler) getAccountLedger(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	code := c.Param("code")

	var params dto.AccountLedgerParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for account ledger", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	lines, next, err := h.reconciliation.AccountLedger(c.Request.Context(), code, params.Limit, params.NextToken)
	if err != nil {
		respondServiceError(c, logger.With(slog.String("account_code", code)), err, "Failed to list account ledger")
		return
	}
	c.JSON(http.StatusOK, dto.AccountLedgerResponse{AccountCode: code, Lines: lines, NextToken: next})
}
