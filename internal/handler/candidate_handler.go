package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"safebite/internal/service"
)

// CandidateHandler handles the pending-review set of candidate allergens.
type CandidateHandler struct {
	documentService service.DocumentService
}

// NewCandidateHandler creates a new CandidateHandler.
func NewCandidateHandler(documentService service.DocumentService) *CandidateHandler {
	return &CandidateHandler{documentService: documentService}
}

// List handles GET /api/v1/candidates
// @Summary List pending candidates
// @Tags candidates
// @Produce json
// @Success 200 {object} APIResponse{data=[]domain.CandidateAllergen}
// @Security BearerAuth
// @Router /candidates [get]
func (h *CandidateHandler) List(c *gin.Context) {
	ownerID, ok := ownerFrom(c)
	if !ok {
		return
	}

	candidates, err := h.documentService.ListPending(c.Request.Context(), ownerID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, candidates)
}

// Confirm handles POST /api/v1/candidates/confirm
// @Summary Confirm candidates as allergens
// @Tags candidates
// @Accept json
// @Produce json
// @Param body body AllergenNamesRequest true "Candidate names"
// @Success 200 {object} APIResponse{data=[]domain.Allergen}
// @Security BearerAuth
// @Router /candidates/confirm [post]
func (h *CandidateHandler) Confirm(c *gin.Context) {
	ownerID, ok := ownerFrom(c)
	if !ok {
		return
	}

	var req AllergenNamesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	allergens, err := h.documentService.Confirm(c.Request.Context(), ownerID, req.Names)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, allergens)
}

// Discard handles POST /api/v1/candidates/discard
// @Summary Discard candidates
// @Tags candidates
// @Accept json
// @Produce json
// @Param body body AllergenNamesRequest true "Candidate names"
// @Success 200 {object} APIResponse{data=CountResponse}
// @Security BearerAuth
// @Router /candidates/discard [post]
func (h *CandidateHandler) Discard(c *gin.Context) {
	ownerID, ok := ownerFrom(c)
	if !ok {
		return
	}

	var req AllergenNamesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	n, err := h.documentService.Discard(c.Request.Context(), ownerID, req.Names)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, CountResponse{Count: n})
}
