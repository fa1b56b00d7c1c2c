package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/karobooks/ledger_engine/internal/core/ports/services"
	"github.com/karobooks/ledger_engine/internal/dto"
	"github.com/karobooks/ledger_engine/internal/middleware"
)

// eventHandler accepts business events for posting.
type eventHandler struct {
	postingService portssvc.PostingSvcFacade
}

// newEventHandler creates a new eventHandler.
func newEventHandler(ps portssvc.PostingSvcFacade) *eventHandler {
	return &eventHandler{postingService: ps}
}

// registerEventRoutes registers event ingestion routes nested under a tenant.
func registerEventRoutes(rg *gin.RouterGroup, postingService portssvc.PostingSvcFacade) {
	h := newEventHandler(postingService)

	events := rg.Group("/events")
	{
		events.POST("", h.postEvent)
	}
}

// postEvent godoc
// @Summary Post a business event
// @Description Resolves the matching posting rule for the event, expands it into a balanced journal entry and commits it. Replaying the same idempotency key returns the original entry.
// @Tags events
// @Accept  json
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   event body dto.PostEventRequest true "Business event"
// @Success 201 {object} dto.EntryResponse
// @Failure 400 {object} map[string]string "Invalid event payload"
// @Failure 422 {object} map[string]string "No matching rule, unknown account, or evaluation failure"
// @Router /tenants/{tenant_id}/events [post]
func (h *eventHandler) postEvent(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")

	var req dto.PostEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for PostEvent", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.postingService.PostEvent(c.Request.Context(), req.ToBusinessEvent(tenantID), userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to post event")
		return
	}

	logger.Info("Event posted",
		slog.String("entry_id", entry.EntryID),
		slog.String("source_type", entry.SourceType),
		slog.String("source_id", entry.SourceID),
		slog.String("tenant_id", tenantID))
	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
}
