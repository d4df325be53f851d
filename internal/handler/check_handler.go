package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"safebite/internal/service"
)

// CheckHandler handles safety check endpoints.
type CheckHandler struct {
	checkService service.CheckService
}

// NewCheckHandler creates a new CheckHandler.
func NewCheckHandler(checkService service.CheckService) *CheckHandler {
	return &CheckHandler{checkService: checkService}
}

// Check handles POST /api/v1/checks
// @Summary Check a product against the caller's allergens
// @Tags checks
// @Accept json
// @Produce json
// @Param body body CheckRequest true "Evidence text"
// @Success 200 {object} APIResponse{data=domain.Verdict}
// @Failure 400 {object} APIResponse
// @Security BearerAuth
// @Router /checks [post]
func (h *CheckHandler) Check(c *gin.Context) {
	ownerID, ok := ownerFrom(c)
	if !ok {
		return
	}

	var req CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	verdict, err := h.checkService.Check(c.Request.Context(), ownerID, req.Evidence)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, verdict)
}

// CheckBatch handles POST /api/v1/checks/batch
// @Summary Check several products at once
// @Tags checks
// @Accept json
// @Produce json
// @Param body body CheckBatchRequest true "Evidence texts"
// @Success 200 {object} APIResponse{data=[]domain.Verdict}
// @Security BearerAuth
// @Router /checks/batch [post]
func (h *CheckHandler) CheckBatch(c *gin.Context) {
	ownerID, ok := ownerFrom(c)
	if !ok {
		return
	}

	var req CheckBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	verdicts, err := h.checkService.CheckBatch(c.Request.Context(), ownerID, req.Evidences)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, verdicts)
}
