package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"safebite/internal/service"
)

// DocumentHandler handles label upload and reconciliation endpoints.
type DocumentHandler struct {
	documentService service.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documentService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// Upload handles POST /api/v1/documents/upload
// @Summary Upload a product label
// @Description Stores the label (PDF, JPG, PNG), reads its ingredient text and queues unknown ingredients for review.
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Label file"
// @Success 201 {object} APIResponse{data=service.LabelUploadResult}
// @Failure 400 {object} APIResponse "Missing file or unsupported type"
// @Failure 413 {object} APIResponse "File too large"
// @Failure 502 {object} APIResponse "Text extraction failed"
// @Security BearerAuth
// @Router /documents/upload [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	ownerID, ok := ownerFrom(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	result, err := h.documentService.Upload(c.Request.Context(), service.LabelUploadInput{
		OwnerID: ownerID,
		File:    file,
		Header:  header,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, result)
}

// Reconcile handles POST /api/v1/documents/reconcile
// @Summary Reconcile label text
// @Tags documents
// @Accept json
// @Produce json
// @Param body body ReconcileTextRequest true "Label text"
// @Success 200 {object} APIResponse{data=domain.Reconciliation}
// @Security BearerAuth
// @Router /documents/reconcile [post]
func (h *DocumentHandler) Reconcile(c *gin.Context) {
	ownerID, ok := ownerFrom(c)
	if !ok {
		return
	}

	var req ReconcileTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	rec, err := h.documentService.ReconcileText(c.Request.Context(), ownerID, req.Text)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, rec)
}
