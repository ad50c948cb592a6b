package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/statement_importer/internal/core/ports/services"
	"github.com/SscSPs/statement_importer/internal/dto"
	"github.com/SscSPs/statement_importer/internal/middleware"
	"github.com/gin-gonic/gin"
)

// batchHandler handles the review decisions on staged imports.
type batchHandler struct {
	batchService portssvc.ImportBatchSvcFacade
}

func newBatchHandler(bs portssvc.ImportBatchSvcFacade) *batchHandler {
	return &batchHandler{batchService: bs}
}

// RegisterBatchRoutes registers routes related to import batches.
func RegisterBatchRoutes(rg *gin.RouterGroup, batchService portssvc.ImportBatchSvcFacade) {
	h := newBatchHandler(batchService)

	batches := rg.Group("/batches")
	{
		batches.GET("/:batchID", h.getBatch)
		batches.POST("/:batchID/approve", h.approveBatch)
		batches.POST("/:batchID/reject", h.rejectBatch)
	}
}

// getBatch godoc
// @Summary Get an import batch
// @Description Returns a batch with its drafts and duplicate flags
// @Tags import batches
// @Produce  json
// @Param   batchID path string true "Batch ID"
// @Success 200 {object} dto.BatchResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Batch not found"
// @Failure 500 {object} map[string]string "Failed to retrieve batch"
// @Security BearerAuth
// @Router /batches/{batchID} [get]
func (h *batchHandler) getBatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	batchID := c.Param("batchID")

	batch, err := h.batchService.GetBatch(c.Request.Context(), batchID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve batch")
		return
	}
	c.JSON(http.StatusOK, dto.ToBatchResponse(batch))
}

// approveBatch godoc
// @Summary Approve an import batch
// @Description Commits the batch's non-duplicate drafts on behalf of the reviewer
// @Tags import batches
// @Produce  json
// @Param   batchID path string true "Batch ID"
// @Success 200 {object} map[string]interface{} "Approved batch and import result"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Batch not found"
// @Failure 409 {object} map[string]string "Batch is not pending"
// @Failure 500 {object} map[string]string "Failed to approve batch"
// @Security BearerAuth
// @Router /batches/{batchID}/approve [post]
func (h *batchHandler) approveBatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	batchID := c.Param("batchID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Reviewer user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("batch_id", batchID))
	logger.Info("Received request to approve batch")

	batch, result, err := h.batchService.ApproveBatch(c.Request.Context(), batchID, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to approve batch")
		return
	}

	logger.Info("Batch approved", slog.Int("committed", result.Committed))
	c.JSON(http.StatusOK, gin.H{
		"batch":  dto.ToBatchResponse(batch),
		"result": dto.ToImportResultResponse(result),
	})
}

// rejectBatch godoc
// @Summary Reject an import batch
// @Description Marks a pending batch as rejected with the reviewer's reason
// @Tags import batches
// @Accept  json
// @Produce  json
// @Param   batchID path string true "Batch ID"
// @Param   reason body dto.RejectBatchRequest true "Rejection reason"
// @Success 200 {object} dto.BatchResponse
// @Failure 400 {object} map[string]string "Missing reason"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Batch not found"
// @Failure 409 {object} map[string]string "Batch is not pending"
// @Failure 500 {object} map[string]string "Failed to reject batch"
// @Security BearerAuth
// @Router /batches/{batchID}/reject [post]
func (h *batchHandler) rejectBatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	batchID := c.Param("batchID")

	var req dto.RejectBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RejectBatch", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Reviewer user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	batch, err := h.batchService.RejectBatch(c.Request.Context(), batchID, req.Reason, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to reject batch")
		return
	}

	logger.Info("Batch rejected", slog.String("batch_id", batchID))
	c.JSON(http.StatusOK, dto.ToBatchResponse(batch))
}
