package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/autoledger/internal/core/ports/services"
	"github.com/SscSPs/autoledger/internal/dto"
	"github.com/SscSPs/autoledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// journalHandler reads posted entries and reverses them.
type journalHandler struct {
	ledger portssvc.LedgerReaderSvc
	poster portssvc.PosterSvc
}

func registerJournalRoutes(rg *gin.RouterGroup, ledger portssvc.LedgerReaderSvc, poster portssvc.PosterSvc) {
	h := &journalHandler{ledger: ledger, poster: poster}

	entries := rg.Group("/entries")
	{
		entries.GET("/:entryID", h.getEntry)
		entries.POST("/:entryID/reverse", h.reverseEntry)
	}
}

// getEntry godoc
// @Summary Get a journal entry
// @Tags entries
// @Produce  json
// @Param   entryID path string true "Entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Security BearerAuth
// @Router /entries/{entryID} [get]
func (h *journalHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("entry_id", c.Param("entryID")))
	entry, err := h.ledger.GetEntry(c.Request.Context(), c.Param("entryID"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// reverseEntry godoc
// @Summary Reverse a journal entry
// @Description Posts a new entry with every line's side swapped. The original is never modified.
// @Description Reversing twice returns the first reversal with posted=false.
// @Tags entries
// @Accept  json
// @Produce  json
// @Param   entryID path string true "Entry ID"
// @Param   reversal body dto.ReverseEntryRequest false "Optional memo"
// @Success 201 {object} dto.PostingResponse "Reversal posted"
// @Success 200 {object} dto.PostingResponse "Already reversed"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 422 {object} map[string]string "Entry cannot be reversed"
// @Security BearerAuth
// @Router /entries/{entryID}/reverse [post]
func (h *journalHandler) reverseEntry(c *gin.Context) {
	entryID := c.Param("entryID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("entry_id", entryID))

	var req dto.ReverseEntryRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for ReverseEntry", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}

	result, err := h.poster.ReverseEntry(c.Request.Context(), entryID, req.Memo, middleware.ActorOrSystem(c))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to reverse entry")
		return
	}

	status := http.StatusOK
	if result.Posted {
		status = http.StatusCreated
		logger.Info("Entry reversed", slog.String("reversal_id", result.Entry.EntryID))
	}
	c.JSON(status, dto.ToPostingResponse(result))
}
