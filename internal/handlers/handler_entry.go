package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/karobooks/ledger_engine/internal/core/ports/services"
	"github.com/karobooks/ledger_engine/internal/dto"
	"github.com/karobooks/ledger_engine/internal/middleware"
)

// entryHandler serves posted journal entries and their correction operations.
type entryHandler struct {
	postingService    portssvc.PostingSvcFacade
	correctionService portssvc.CorrectionSvcFacade
}

// newEntryHandler creates a new entryHandler.
func newEntryHandler(ps portssvc.PostingSvcFacade, cs portssvc.CorrectionSvcFacade) *entryHandler {
	return &entryHandler{postingService: ps, correctionService: cs}
}

// registerEntryRoutes registers entry routes nested under a tenant.
func registerEntryRoutes(rg *gin.RouterGroup, postingService portssvc.PostingSvcFacade, correctionService portssvc.CorrectionSvcFacade) {
	h := newEntryHandler(postingService, correctionService)

	entries := rg.Group("/entries")
	{
		entries.GET("", h.listEntries)
		entries.GET("/:entryID", h.getEntry)
		entries.POST("/:entryID/reverse", h.reverseEntry)
		entries.POST("/:entryID/amend", h.amendEntry)
		entries.GET("/:entryID/corrections", h.getCorrectionChain)
	}
}

// listEntries godoc
// @Summary List journal entries
// @Description Lists posted entries newest first, filterable by date range and source, with token pagination.
// @Tags entries
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   fromDate query string false "Start date (YYYY-MM-DD)"
// @Param   toDate query string false "End date (YYYY-MM-DD)"
// @Param   sourceType query string false "Source type filter"
// @Param   sourceID query string false "Source ID filter"
// @Param   limit query int false "Page size" default(50)
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListEntriesResponse
// @Router /tenants/{tenant_id}/entries [get]
func (h *entryHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")

	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListEntries", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	page, err := h.postingService.ListEntries(c.Request.Context(), tenantID, params)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list entries")
		return
	}

	c.JSON(http.StatusOK, page)
}

// getEntry godoc
// @Summary Get a journal entry
// @Description Returns an entry with its lines in position order.
// @Tags entries
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   entryID path string true "Entry ID"
// @Success 200 {object} dto.EntryResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Router /tenants/{tenant_id}/entries/{entryID} [get]
func (h *entryHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	entryID := c.Param("entryID")

	entry, err := h.postingService.GetEntryByID(c.Request.Context(), tenantID, entryID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve entry")
		return
	}

	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// reverseEntry godoc
// @Summary Reverse a journal entry
// @Description Posts a mirror entry with sides swapped and links it to the original. The original is never edited in place.
// @Tags entries
// @Accept  json
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   entryID path string true "Entry ID"
// @Param   request body dto.ReverseEntryRequest true "Reversal reason"
// @Success 201 {object} dto.EntryResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry already reversed or not posted"
// @Router /tenants/{tenant_id}/entries/{entryID}/reverse [post]
func (h *entryHandler) reverseEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	entryID := c.Param("entryID")

	var req dto.ReverseEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ReverseEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	reversal, err := h.correctionService.ReverseEntry(c.Request.Context(), tenantID, entryID, req.Reason, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to reverse entry")
		return
	}

	logger.Info("Entry reversed",
		slog.String("entry_id", entryID),
		slog.String("reversal_id", reversal.EntryID),
		slog.String("tenant_id", tenantID))
	c.JSON(http.StatusCreated, dto.ToEntryResponse(reversal))
}

// amendEntry godoc
// @Summary Amend a journal entry
// @Description Reverses the original entry and posts the corrected event through the normal rule-driven path, in one operation.
// @Tags entries
// @Accept  json
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   entryID path string true "Entry ID"
// @Param   request body dto.AmendEntryRequest true "Reason and corrected event"
// @Success 201 {object} dto.EntryResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry already reversed or not posted"
// @Failure 422 {object} map[string]string "Corrected event cannot be posted"
// @Router /tenants/{tenant_id}/entries/{entryID}/amend [post]
func (h *entryHandler) amendEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	entryID := c.Param("entryID")

	var req dto.AmendEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AmendEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	replacement, err := h.correctionService.AmendEntry(c.Request.Context(), tenantID, entryID, req.Event.ToBusinessEvent(tenantID), req.Reason, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to amend entry")
		return
	}

	logger.Info("Entry amended",
		slog.String("entry_id", entryID),
		slog.String("replacement_id", replacement.EntryID),
		slog.String("tenant_id", tenantID))
	c.JSON(http.StatusCreated, dto.ToEntryResponse(replacement))
}

// getCorrectionChain godoc
// @Summary Get an entry's correction chain
// @Description Returns the full correction lineage of an entry, oldest first: the root, its reversals, and their replacements.
// @Tags entries
// @Produce  json
// @Param   tenant_id path string true "Tenant ID"
// @Param   entryID path string true "Entry ID"
// @Success 200 {object} dto.CorrectionChainResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Router /tenants/{tenant_id}/entries/{entryID}/corrections [get]
func (h *entryHandler) getCorrectionChain(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenant_id")
	entryID := c.Param("entryID")

	chain, err := h.correctionService.GetCorrectionChain(c.Request.Context(), tenantID, entryID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve correction chain")
		return
	}

	c.JSON(http.StatusOK, dto.CorrectionChainResponse{Entries: dto.ToEntryResponses(chain)})
}
