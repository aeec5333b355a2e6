package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/autoledger/internal/core/domain"
	portssvc "github.com/SscSPs/autoledger/internal/core/ports/services"
	"github.com/SscSPs/autoledger/internal/dto"
	"github.com/SscSPs/autoledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// outboxHandler exposes the posting queue to producers and operators.
type outboxHandler struct {
	outbox portssvc.OutboxSvcFacade
}

func registerOutboxRoutes(rg *gin.RouterGroup, outbox portssvc.OutboxSvcFacade, limit gin.HandlerFunc) {
	h := &outboxHandler{outbox: outbox}

	queue := rg.Group("/outbox")
	{
		queue.POST("", limit, h.enqueue)
		queue.GET("", h.listItems)
		queue.GET("/stats", h.stats)
		queue.POST("/sync", h.sync)
		queue.POST("/:itemID/retry", h.retry)
	}
}

// enqueue godoc
// @Summary Queue a source record for posting
// @Description Records a pending posting. Enqueuing the same source twice returns the existing item.
// @Tags outbox
// @Accept  json
// @Produce  json
// @Param   item body dto.EnqueueRequest true "Source to post"
// @Success 202 {object} domain.OutboxItem
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to enqueue"
// @Security BearerAuth
// @Router /outbox [post]
func (h *outboxHandler) enqueue(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.EnqueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Enqueue", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	item, err := h.outbox.Enqueue(c.Request.Context(), domain.SourceType(req.SourceType), req.SourceID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to enqueue posting")
		return
	}
	c.JSON(http.StatusAccepted, item)
}

// sync godoc
// @Summary Process the posting queue
// @Description Claims and posts up to limit queued items, optionally of one source type.
// @Tags outbox
// @Produce  json
// @Param   limit query int false "Maximum items to process"
// @Param   kind query string false "Only process this source type"
// @Success 200 {object} domain.SyncResult
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Queue sync failed"
// @Security BearerAuth
// @Router /outbox/sync [post]
func (h *outboxHandler) sync(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.SyncQueueParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for queue sync", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	result, err := h.outbox.RunQueueSync(c.Request.Context(), params.Limit, domain.SourceType(params.Kind))
	if err != nil {
		respondServiceError(c, logger, err, "Queue sync failed")
		return
	}
	c.JSON(http.StatusOK, result)
}

// listItems godoc
// @Summary List queued postings
// @Tags outbox
// @Produce  json
// @Param   status query string false "Filter by status" Enums(pending, processing, synced, error)
// @Param   sourceType query string false "Filter by source type"
// @Param   limit query int false "Page size" default(50)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListOutboxResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /outbox [get]
func (h *outboxHandler) listItems(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListOutboxParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListOutbox", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	items, next, err := h.outbox.ListItems(c.Request.Context(), params.ToFilter())
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list queue items")
		return
	}
	c.JSON(http.StatusOK, dto.ListOutboxResponse{Items: items, NextToken: next})
}

// stats godoc
// @Summary Count queued postings by status
// @Tags outbox
// @Produce  json
// @Success 200 {object} map[string]int
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /outbox/stats [get]
func (h *outboxHandler) stats(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	stats, err := h.outbox.Stats(c.Request.Context())
	if err != nil {
		respondServiceError(c, logger, err, "Failed to count queue items")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// retry godoc
// @Summary Retry a failed posting
// @Description Moves an item in error back to pending. Its attempt history is kept.
// @Tags outbox
// @Produce  json
// @Param   itemID path string true "Queue item ID"
// @Success 200 {object} domain.OutboxItem
// @Failure 400 {object} map[string]string "Item is not in error"
// @Failure 404 {object} map[string]string "Item not found"
// @Security BearerAuth
// @Router /outbox/{itemID}/retry [post]
func (h *outboxHandler) retry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("item_id", c.Param("itemID")))
	item, err := h.outbox.RetryItem(c.Request.Context(), c.Param("itemID"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retry queue item")
		return
	}
	logger.Info("Queue item requeued", slog.String("actor_id", middleware.ActorOrSystem(c)))
	c.JSON(http.StatusOK, item)
}
