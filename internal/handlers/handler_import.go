package handlers

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/SscSPs/statement_importer/internal/core/domain"
	portssvc "github.com/SscSPs/statement_importer/internal/core/ports/services"
	"github.com/SscSPs/statement_importer/internal/dto"
	"github.com/SscSPs/statement_importer/internal/middleware"
	"github.com/gin-gonic/gin"
)

// importHandler handles statement uploads and the per-account batch queue.
type importHandler struct {
	importService  portssvc.ImportSvc
	batchService   portssvc.ImportBatchReaderSvc
	maxUploadBytes int64
}

func newImportHandler(is portssvc.ImportSvc, bs portssvc.ImportBatchReaderSvc, maxUploadBytes int64) *importHandler {
	return &importHandler{importService: is, batchService: bs, maxUploadBytes: maxUploadBytes}
}

// registerImportRoutes registers routes related to statement imports.
// Extra middleware (rate limiting) applies to the upload route only.
func registerImportRoutes(rg *gin.RouterGroup, is portssvc.ImportSvc, bs portssvc.ImportBatchReaderSvc, maxUploadBytes int64, uploadMiddleware ...gin.HandlerFunc) {
	h := newImportHandler(is, bs, maxUploadBytes)

	accounts := rg.Group("/accounts/:accountID")
	{
		accounts.POST("/imports", append(uploadMiddleware, h.importStatement)...)
		accounts.GET("/batches", h.listBatches)
	}
}

// importStatement godoc
// @Summary Import a bank statement
// @Description Parses an uploaded statement and commits its transactions, or stages them in a batch for review
// @Tags imports
// @Accept  multipart/form-data
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   file formData file true "Statement file (PDF or CSV)"
// @Param   declaredType formData string true "Statement type, e.g. santander"
// @Param   review formData bool false "Stage the drafts for review instead of committing"
// @Success 201 {object} dto.ImportResultResponse "Transactions committed"
// @Success 202 {object} dto.ImportResultResponse "Batch staged for review"
// @Failure 400 {object} map[string]string "Invalid input or unknown statement type"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 422 {object} map[string]string "Malformed statement"
// @Failure 500 {object} map[string]string "Failed to import statement"
// @Security BearerAuth
// @Router /accounts/{accountID}/imports [post]
func (h *importHandler) importStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	var form dto.ImportForm
	if err := c.ShouldBind(&form); err != nil {
		logger.Warn("Failed to bind import form", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		logger.Warn("Statement file missing from upload", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "A statement file is required in the 'file' field"})
		return
	}

	// Extraction tools need a real file, so the upload is spooled to a private directory.
	dir, err := os.MkdirTemp("", "statement-upload-")
	if err != nil {
		logger.Error("Failed to create upload directory", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store upload"})
		return
	}
	defer os.RemoveAll(dir)

	fileName := filepath.Base(fileHeader.Filename)
	path := filepath.Join(dir, fileName)
	if err := c.SaveUploadedFile(fileHeader, path); err != nil {
		logger.Error("Failed to store uploaded statement", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store upload"})
		return
	}

	logger = logger.With(slog.String("account_id", accountID), slog.String("file_name", fileName))
	logger.Info("Received statement upload", slog.String("declared_type", form.DeclaredType), slog.Bool("review", form.Review))

	result, err := h.importService.Import(c.Request.Context(), dto.ImportRequest{
		AccountID:    accountID,
		DeclaredType: form.DeclaredType,
		FileName:     fileName,
		Path:         path,
		Review:       form.Review,
		UserID:       userID,
	})
	if err != nil {
		respondError(c, logger, err, "Failed to import statement")
		return
	}

	status := http.StatusCreated
	if result.Mode == domain.ImportReviewed {
		status = http.StatusAccepted
	}
	c.JSON(status, dto.ToImportResultResponse(result))
}

// listBatches godoc
// @Summary List import batches
// @Description Returns the account's staged imports, newest first
// @Tags import batches
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   status query string false "Filter by status" Enums(pending, applied, rejected)
// @Param   limit query int false "Page size (1-100)"
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListBatchesResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list batches"
// @Security BearerAuth
// @Router /accounts/{accountID}/batches [get]
func (h *importHandler) listBatches(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	var params dto.ListBatchesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind batch list query", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	var status *domain.ImportBatchStatus
	if params.Status != "" {
		s := domain.ImportBatchStatus(params.Status)
		status = &s
	}
	var nextToken *string
	if params.NextToken != "" {
		nextToken = &params.NextToken
	}

	batches, token, err := h.batchService.ListBatches(c.Request.Context(), accountID, status, params.Limit, nextToken)
	if err != nil {
		respondError(c, logger, err, "Failed to list batches")
		return
	}

	c.JSON(http.StatusOK, dto.ToListBatchesResponse(batches, token))
}
