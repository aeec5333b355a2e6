package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/SscSPs/autoledger/internal/core/domain"
	portssvc "github.com/SscSPs/autoledger/internal/core/ports/services"
	"github.com/SscSPs/autoledger/internal/dto"
	"github.com/SscSPs/autoledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// maxEventBody bounds producer payloads; a sale with a few hundred lines fits comfortably.
const maxEventBody = 1 << 20

// eventHandler is the synchronous producer entry point.
type eventHandler struct {
	producer portssvc.ProducerSvc
}

func registerEventRoutes(rg *gin.RouterGroup, producer portssvc.ProducerSvc, limit gin.HandlerFunc) {
	h := &eventHandler{producer: producer}

	events := rg.Group("/events", limit)
	{
		events.POST("/:sourceType/:sourceID", h.postEvent)
	}
}

// postEvent godoc
// @Summary Post a business event to the ledger
// @Description Builds and stores the journal entry for a business event, at most once per source.
// @Description Ledger failures are logged and reported as posted=false; they never fail the request.
// @Tags events
// @Accept  json
// @Produce  json
// @Param   sourceType path string true "Source type" Enums(field_report, materials_purchase, pos_sale, pos_refund, payroll_payment, loan_disbursement, loan_repayment)
// @Param   sourceID path string true "Source record ID"
// @Param   payload body object true "Event payload for the source type"
// @Success 200 {object} dto.EventResponse "Entry posted now or earlier"
// @Success 202 {object} dto.EventResponse "Accepted; posting failed and was logged"
// @Failure 400 {object} map[string]string "Malformed request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 429 {object} map[string]string "Too many requests"
// @Security BearerAuth
// @Router /events/{sourceType}/{sourceID} [post]
func (h *eventHandler) postEvent(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.EventParams
	if err := c.ShouldBindUri(&params); err != nil {
		logger.Warn("Invalid event path", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event path: " + err.Error()})
		return
	}
	sourceType := domain.SourceType(params.SourceType)
	logger = logger.With(slog.String("source_type", params.SourceType), slog.String("source_id", params.SourceID))

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxEventBody))
	if err != nil {
		logger.Warn("Failed to read event body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}
	payload, err := dto.DecodeEventPayload(sourceType, body)
	if err != nil {
		logger.Warn("Invalid event payload", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor, _ := middleware.GetActorIDFromContext(c)
	result := h.producer.PostBusinessEvent(c.Request.Context(), sourceType, params.SourceID, payload, actor)

	status := http.StatusOK
	if result.Entry == nil {
		status = http.StatusAccepted
	}
	logger.Info("Business event handled", slog.Bool("posted", result.Posted), slog.Int("status", status))
	c.JSON(status, dto.ToEventResponse(result))
}
