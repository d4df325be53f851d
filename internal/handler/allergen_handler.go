package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"safebite/internal/service"
)

// AllergenHandler handles allergen registration endpoints.
type AllergenHandler struct {
	allergenService service.AllergenService
}

// NewAllergenHandler creates a new AllergenHandler.
func NewAllergenHandler(allergenService service.AllergenService) *AllergenHandler {
	return &AllergenHandler{allergenService: allergenService}
}

// List handles GET /api/v1/allergens
// @Summary List allergens
// @Tags allergens
// @Produce json
// @Success 200 {object} APIResponse{data=[]domain.Allergen}
// @Security BearerAuth
// @Router /allergens [get]
func (h *AllergenHandler) List(c *gin.Context) {
	ownerID, ok := ownerFrom(c)
	if !ok {
		return
	}

	allergens, err := h.allergenService.List(c.Request.Context(), ownerID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, allergens)
}

// Register handles POST /api/v1/allergens
// @Summary Register an allergen
// @Description Registering a name that already exists returns the existing allergen with 200.
// @Tags allergens
// @Accept json
// @Produce json
// @Param body body RegisterAllergenRequest true "Allergen name"
// @Success 201 {object} APIResponse{data=RegisterAllergenResponse}
// @Success 200 {object} APIResponse{data=RegisterAllergenResponse}
// @Failure 400 {object} APIResponse
// @Security BearerAuth
// @Router /allergens [post]
func (h *AllergenHandler) Register(c *gin.Context) {
	ownerID, ok := ownerFrom(c)
	if !ok {
		return
	}

	var req RegisterAllergenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	allergen, created, err := h.allergenService.Register(c.Request.Context(), ownerID, req.Name)
	if err != nil {
		HandleError(c, err)
		return
	}

	resp := RegisterAllergenResponse{Allergen: allergen, Created: created}
	if created {
		RespondCreated(c, resp)
		return
	}
	RespondOK(c, resp)
}

// AddBatch handles POST /api/v1/allergens/batch
// @Summary Register several allergens
// @Tags allergens
// @Accept json
// @Produce json
// @Param body body AllergenNamesRequest true "Allergen names"
// @Success 200 {object} APIResponse{data=service.BatchAddResult}
// @Security BearerAuth
// @Router /allergens/batch [post]
func (h *AllergenHandler) AddBatch(c *gin.Context) {
	ownerID, ok := ownerFrom(c)
	if !ok {
		return
	}

	var req AllergenNamesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := h.allergenService.AddBatch(c.Request.Context(), ownerID, req.Names)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// Rename handles PUT /api/v1/allergens/rename
// @Summary Rename an allergen
// @Tags allergens
// @Accept json
// @Produce json
// @Param body body RenameAllergenRequest true "Old and new names"
// @Success 200 {object} APIResponse{data=domain.Allergen}
// @Failure 404 {object} APIResponse
// @Failure 409 {object} APIResponse
// @Security BearerAuth
// @Router /allergens/rename [put]
func (h *AllergenHandler) Rename(c *gin.Context) {
	ownerID, ok := ownerFrom(c)
	if !ok {
		return
	}

	var req RenameAllergenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	allergen, err := h.allergenService.Rename(c.Request.Context(), ownerID, req.OldName, req.NewName)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, allergen)
}

// Delete handles DELETE /api/v1/allergens/:name
// @Summary Delete an allergen
// @Tags allergens
// @Produce json
// @Param name path string true "Allergen name"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Security BearerAuth
// @Router /allergens/{name} [delete]
func (h *AllergenHandler) Delete(c *gin.Context) {
	ownerID, ok := ownerFrom(c)
	if !ok {
		return
	}

	if err := h.allergenService.Delete(c.Request.Context(), ownerID, c.Param("name")); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "allergen deleted"})
}

// DeleteBatch handles POST /api/v1/allergens/batch-delete
// @Summary Delete several allergens
// @Tags allergens
// @Accept json
// @Produce json
// @Param body body AllergenNamesRequest true "Allergen names"
// @Success 200 {object} APIResponse{data=CountResponse}
// @Security BearerAuth
// @Router /allergens/batch-delete [post]
func (h *AllergenHandler) DeleteBatch(c *gin.Context) {
	ownerID, ok := ownerFrom(c)
	if !ok {
		return
	}

	var req AllergenNamesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	n, err := h.allergenService.DeleteBatch(c.Request.Context(), ownerID, req.Names)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, CountResponse{Count: n})
}
