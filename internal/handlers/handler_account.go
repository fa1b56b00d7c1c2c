package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/karobooks/ledger_engine/internal/core/ports/services"
	"github.com/karobooks/ledger_engine/internal/dto"
	"github.com/karobooks/ledger_engine/internal/middleware"
)

// accountHandler handles HTTP requests related to a tenant's chart of accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
	balanceService portssvc.BalanceSvcFacade
	postingService portssvc.PostingSvcFacade
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(as portssvc.AccountSvcFacade, bs portssvc.BalanceSvcFacade, ps portssvc.PostingSvcFacade) *accountHandler {
	return &accountHandler{
		accountService: as,
		balanceService: bs,
		postingService: ps,
	}
}

// registerAccountRoutes registers account routes nested under a tenant.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade, balanceService portssvc.BalanceSvcFacade, postingService portssvc.PostingSvcFacade) {
	h := newAccountHandler(accountService, balanceService, postingService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:accountID", h.getAccount)
		accounts.PUT("/:accountID", h.updateAccount)
		accounts.DELETE("/:accountID", h.deactivateAccount)
		accounts.GET("/:accountID/balance", h.getBalance)
		accounts.GET("/:accountID/balance/recomputed", h.recomputeBalance)
		accounts.GET("/:accountID/periods", h.listPeriodBalances)
		accounts.GET("/:accountID/periods/:periodKey", h.getPeriodBalance)
		accounts.GET("/:accountID/lines", h.listAccountLines)
	}

	reconciliation := rg.Group("/reconciliation")
	{
		reconciliation.GET("/control-accounts", h.reconcileControlAccounts)
	}
}

// createAccount godoc
// @Summary Create an account
// @Description Creates a new account in the tenant's chart of accounts.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 409 {object} map[string]string "Duplicate account code"
// @Router /tenants/{tenant_id}/accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")

	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), tenantID, req, creatorUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create account")
		return
	}

	logger.Info("Account created successfully", slog.String("account_id", account.AccountID), slog.String("tenant_id", tenantID))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// getAccount godoc
// @Summary Get an account
// @Tags accounts
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   accountID path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Router /tenants/{tenant_id}/accounts/{accountID} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	accountID := c.Param("accountID")

	account, err := h.accountService.GetAccountByID(c.Request.Context(), tenantID, accountID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve account")
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// listAccounts godoc
// @Summary List accounts
// @Tags accounts
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   limit query int false "Page size" default(50)
// @Param   offset query int false "Offset" default(0)
// @Success 200 {array} dto.AccountResponse
// @Router /tenants/{tenant_id}/accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	limit, offset := paginationParams(c)

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), tenantID, limit, offset)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list accounts")
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponses(accounts))
}

// updateAccount godoc
// @Summary Update an account
// @Description Updates an account's descriptive fields. Type, side and balances are immutable.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   accountID path string true "Account ID"
// @Param   account body dto.UpdateAccountRequest true "Fields to update"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Router /tenants/{tenant_id}/accounts/{accountID} [put]
func (h *accountHandler) updateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	accountID := c.Param("accountID")

	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	account, err := h.accountService.UpdateAccount(c.Request.Context(), tenantID, accountID, req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update account")
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// deactivateAccount godoc
// @Summary Deactivate an account
// @Description Marks an account inactive. Posted history keeps referencing it; only new postings are rejected.
// @Tags accounts
// @Param   tenant_id path string true "Tenant ID"
// @Param   accountID path string true "Account ID"
// @Success 204 "Deactivated"
// @Failure 404 {object} map[string]string "Account not found"
// @Router /tenants/{tenant_id}/accounts/{accountID} [delete]
func (h *accountHandler) deactivateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	accountID := c.Param("accountID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.accountService.DeactivateAccount(c.Request.Context(), tenantID, accountID, userID); err != nil {
		respondServiceError(c, logger, err, "Failed to deactivate account")
		return
	}

	c.Status(http.StatusNoContent)
}

// getBalance godoc
// @Summary Get an account's current balance
// @Description Returns the cached current balance maintained by the posting path.
// @Tags balances
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   accountID path string true "Account ID"
// @Success 200 {object} dto.AccountBalanceResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Router /tenants/{tenant_id}/accounts/{accountID}/balance [get]
func (h *accountHandler) getBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	accountID := c.Param("accountID")

	balance, err := h.balanceService.GetAccountBalance(c.Request.Context(), tenantID, accountID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve balance")
		return
	}

	c.JSON(http.StatusOK, dto.AccountBalanceResponse{AccountID: accountID, Balance: balance})
}

// recomputeBalance godoc
// @Summary Recompute an account's balance from posted lines
// @Description Audit endpoint: derives the balance from opening balance plus all posted lines, bypassing the cache.
// @Tags balances
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   accountID path string true "Account ID"
// @Success 200 {object} dto.AccountBalanceResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Router /tenants/{tenant_id}/accounts/{accountID}/balance/recomputed [get]
func (h *accountHandler) recomputeBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	accountID := c.Param("accountID")

	balance, err := h.accountService.RecomputeBalance(c.Request.Context(), tenantID, accountID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to recompute balance")
		return
	}

	c.JSON(http.StatusOK, dto.AccountBalanceResponse{AccountID: accountID, Balance: balance})
}

// listPeriodBalances godoc
// @Summary List an account's period balances
// @Tags balances
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   accountID path string true "Account ID"
// @Success 200 {array} dto.PeriodBalanceResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Router /tenants/{tenant_id}/accounts/{accountID}/periods [get]
func (h *accountHandler) listPeriodBalances(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	accountID := c.Param("accountID")

	periods, err := h.balanceService.ListPeriodBalances(c.Request.Context(), tenantID, accountID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list period balances")
		return
	}

	out := make([]dto.PeriodBalanceResponse, len(periods))
	for i, p := range periods {
		out[i] = dto.PeriodBalanceResponse{
			AccountID:      p.AccountID,
			PeriodKey:      p.PeriodKey,
			OpeningBalance: p.OpeningBalance,
			Movement:       p.Movement,
			ClosingBalance: p.ClosingBalance,
			LastEntryAt:    p.LastEntryAt,
		}
	}
	c.JSON(http.StatusOK, out)
}

// getPeriodBalance godoc
// @Summary Get one account-period balance
// @Tags balances
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   accountID path string true "Account ID"
// @Param   periodKey path string true "Period key, e.g. 2025-26-03"
// @Success 200 {object} dto.PeriodBalanceResponse
// @Failure 404 {object} map[string]string "Period not found"
// @Router /tenants/{tenant_id}/accounts/{accountID}/periods/{periodKey} [get]
func (h *accountHandler) getPeriodBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	accountID := c.Param("accountID")
	periodKey := c.Param("periodKey")

	period, err := h.balanceService.GetPeriodBalance(c.Request.Context(), tenantID, accountID, periodKey)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve period balance")
		return
	}

	c.JSON(http.StatusOK, dto.PeriodBalanceResponse{
		AccountID:      period.AccountID,
		PeriodKey:      period.PeriodKey,
		OpeningBalance: period.OpeningBalance,
		Movement:       period.Movement,
		ClosingBalance: period.ClosingBalance,
		LastEntryAt:    period.LastEntryAt,
	})
}

// listAccountLines godoc
// @Summary List an account's posted lines
// @Description Token-paginated ledger view of one account, newest first, with running balances.
// @Tags entries
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   accountID path string true "Account ID"
// @Param   limit query int false "Page size" default(50)
// @Param   nextToken query string false "Pagination token from a previous page"
// @Success 200 {object} dto.ListLinesResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Router /tenants/{tenant_id}/accounts/{accountID}/lines [get]
func (h *accountHandler) listAccountLines(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	accountID := c.Param("accountID")
	limit, _ := paginationParams(c)

	var nextToken *string
	if token := c.Query("nextToken"); token != "" {
		nextToken = &token
	}

	resp, err := h.postingService.ListLinesByAccount(c.Request.Context(), tenantID, accountID, limit, nextToken)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list account lines")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// reconcileControlAccounts godoc
// @Summary Reconcile control accounts against their subledger lines
// @Description Compares each control account's cached balance with the sum of its subledger-linked lines and reports drift. Read only.
// @Tags reconciliation
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Success 200 {array} dto.ControlDriftResponse
// @Router /tenants/{tenant_id}/reconciliation/control-accounts [get]
func (h *accountHandler) reconcileControlAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")

	drifts, err := h.accountService.ReconcileControlAccounts(c.Request.Context(), tenantID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to reconcile control accounts")
		return
	}

	out := make([]dto.ControlDriftResponse, len(drifts))
	for i, d := range drifts {
		out[i] = dto.ControlDriftResponse{
			AccountID:       d.AccountID,
			Code:            d.Code,
			CachedBalance:   d.CachedBalance,
			RecomputedTotal: d.RecomputedTotal,
			Drift:           d.Drift,
		}
	}
	c.JSON(http.StatusOK, out)
}
