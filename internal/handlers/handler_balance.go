package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/karobooks/ledger_engine/internal/core/ports/services"
	"github.com/karobooks/ledger_engine/internal/middleware"
)

// balanceHandler exposes the balance maintainer's recovery surface.
// Per-account balance reads live on the account routes.
type balanceHandler struct {
	balanceService portssvc.BalanceSvcFacade
}

// newBalanceHandler creates a new balanceHandler.
func newBalanceHandler(bs portssvc.BalanceSvcFacade) *balanceHandler {
	return &balanceHandler{balanceService: bs}
}

// registerBalanceRoutes registers balance routes nested under a tenant.
func registerBalanceRoutes(rg *gin.RouterGroup, balanceService portssvc.BalanceSvcFacade) {
	h := newBalanceHandler(balanceService)

	balances := rg.Group("/balances")
	{
		balances.POST("/reapply", h.reapplyUnapplied)
	}
}

// reapplyUnapplied godoc
// @Summary Reapply unapplied balance effects
// @Description Applies balance effects for posted entries that carry no apply mark, typically after a crash between commit and cache update. Safe to call repeatedly.
// @Tags balances
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Success 200 {object} map[string]int "Number of entries applied"
// @Router /tenants/{tenant_id}/balances/reapply [post]
func (h *balanceHandler) reapplyUnapplied(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")

	if _, ok := middleware.GetUserIDFromContext(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	applied, err := h.balanceService.ReapplyUnapplied(c.Request.Context(), tenantID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to reapply balances")
		return
	}

	if applied > 0 {
		logger.Info("Reapplied balance effects", slog.Int("applied", applied), slog.String("tenant_id", tenantID))
	}
	c.JSON(http.StatusOK, gin.H{"applied": applied})
}
