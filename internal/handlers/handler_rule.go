package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/karobooks/ledger_engine/internal/core/ports/services"
	"github.com/karobooks/ledger_engine/internal/dto"
	"github.com/karobooks/ledger_engine/internal/middleware"
)

// ruleHandler handles HTTP requests related to posting rules.
type ruleHandler struct {
	ruleService portssvc.RuleSvcFacade
}

// newRuleHandler creates a new ruleHandler.
func newRuleHandler(rs portssvc.RuleSvcFacade) *ruleHandler {
	return &ruleHandler{ruleService: rs}
}

// registerRuleRoutes registers rule routes nested under a tenant.
func registerRuleRoutes(rg *gin.RouterGroup, ruleService portssvc.RuleSvcFacade) {
	h := newRuleHandler(ruleService)

	rules := rg.Group("/rules")
	{
		rules.POST("", h.createRule)
		rules.GET("", h.listRules)
		rules.GET("/:ruleID", h.getRule)
		rules.DELETE("/:ruleID", h.deactivateRule)
	}
}

// createRule godoc
// @Summary Register a posting rule
// @Description Registers a rule version for a fiscal year. All expressions are parsed and rejected here, never at posting time.
// @Tags rules
// @Accept  json
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   rule body dto.CreateRuleRequest true "Rule definition"
// @Success 201 {object} dto.RuleResponse
// @Failure 400 {object} map[string]string "Invalid rule definition"
// @Failure 409 {object} map[string]string "Duplicate rule code for fiscal year"
// @Router /tenants/{tenant_id}/rules [post]
func (h *ruleHandler) createRule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")

	var req dto.CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateRule", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	rule, err := h.ruleService.CreateRule(c.Request.Context(), tenantID, req, creatorUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create rule")
		return
	}

	logger.Info("Rule created successfully", slog.String("rule_id", rule.RuleID), slog.String("tenant_id", tenantID))
	c.JSON(http.StatusCreated, dto.ToRuleResponse(rule))
}

// getRule godoc
// @Summary Get a posting rule
// @Tags rules
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   ruleID path string true "Rule ID"
// @Success 200 {object} dto.RuleResponse
// @Failure 404 {object} map[string]string "Rule not found"
// @Router /tenants/{tenant_id}/rules/{ruleID} [get]
func (h *ruleHandler) getRule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	ruleID := c.Param("ruleID")

	rule, err := h.ruleService.GetRuleByID(c.Request.Context(), tenantID, ruleID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve rule")
		return
	}

	c.JSON(http.StatusOK, dto.ToRuleResponse(rule))
}

// listRules godoc
// @Summary List posting rules
// @Tags rules
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   limit query int false "Page size" default(50)
// @Param   offset query int false "Offset" default(0)
// @Success 200 {array} dto.RuleResponse
// @Router /tenants/{tenant_id}/rules [get]
func (h *ruleHandler) listRules(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	limit, offset := paginationParams(c)

	rules, err := h.ruleService.ListRules(c.Request.Context(), tenantID, limit, offset)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list rules")
		return
	}

	c.JSON(http.StatusOK, dto.ToRuleResponses(rules))
}

// deactivateRule godoc
// @Summary Deactivate a posting rule
// @Description Marks a rule inactive. Entries it already produced are untouched.
// @Tags rules
// @Param   tenant_id path string true "Tenant ID"
// @Param   ruleID path string true "Rule ID"
// @Success 204 "Deactivated"
// @Failure 404 {object} map[string]string "Rule not found"
// @Router /tenants/{tenant_id}/rules/{ruleID} [delete]
func (h *ruleHandler) deactivateRule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	ruleID := c.Param("ruleID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.ruleService.DeactivateRule(c.Request.Context(), tenantID, ruleID, userID); err != nil {
		respondServiceError(c, logger, err, "Failed to deactivate rule")
		return
	}

	c.Status(http.StatusNoContent)
}
