package handler_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"safebite/internal/domain"
	"safebite/internal/handler"
	"safebite/internal/service"
	"safebite/mocks"
)

func TestAllergenHandler_List(t *testing.T) {
	svc := new(mocks.MockAllergenService)
	h := handler.NewAllergenHandler(svc)
	owner := uuid.New()

	svc.On("List", mock.Anything, owner).Return([]domain.Allergen{
		{ID: uuid.New(), OwnerID: owner, CanonicalName: "milk"},
	}, nil)

	c, w := newContext(t, http.MethodGet, "/api/v1/allergens", owner, nil)
	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.True(t, resp.Success)
	assert.Len(t, resp.Data, 1)
	svc.AssertExpectations(t)
}

func TestAllergenHandler_List_NoOwner(t *testing.T) {
	svc := new(mocks.MockAllergenService)
	h := handler.NewAllergenHandler(svc)

	c, w := newContext(t, http.MethodGet, "/api/v1/allergens", uuid.Nil, nil)
	h.List(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestAllergenHandler_Register_Created(t *testing.T) {
	svc := new(mocks.MockAllergenService)
	h := handler.NewAllergenHandler(svc)
	owner := uuid.New()

	svc.On("Register", mock.Anything, owner, "Peanuts").
		Return(&domain.Allergen{ID: uuid.New(), OwnerID: owner, CanonicalName: "peanut"}, true, nil)

	c, w := newContext(t, http.MethodPost, "/api/v1/allergens", owner, gin.H{"name": "Peanuts"})
	h.Register(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := decode(t, w).Data.(map[string]interface{})
	assert.Equal(t, true, data["created"])
	svc.AssertExpectations(t)
}

func TestAllergenHandler_Register_Existing(t *testing.T) {
	svc := new(mocks.MockAllergenService)
	h := handler.NewAllergenHandler(svc)
	owner := uuid.New()

	svc.On("Register", mock.Anything, owner, "peanut").
		Return(&domain.Allergen{ID: uuid.New(), OwnerID: owner, CanonicalName: "peanut"}, false, nil)

	c, w := newContext(t, http.MethodPost, "/api/v1/allergens", owner, gin.H{"name": "peanut"})
	h.Register(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.(map[string]interface{})
	assert.Equal(t, false, data["created"])
}

func TestAllergenHandler_Register_MissingName(t *testing.T) {
	svc := new(mocks.MockAllergenService)
	h := handler.NewAllergenHandler(svc)

	c, w := newContext(t, http.MethodPost, "/api/v1/allergens", uuid.New(), gin.H{})
	h.Register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
}

func TestAllergenHandler_Register_InvalidName(t *testing.T) {
	svc := new(mocks.MockAllergenService)
	h := handler.NewAllergenHandler(svc)
	owner := uuid.New()

	svc.On("Register", mock.Anything, owner, "x").Return(nil, false, domain.ErrInvalidInput)

	c, w := newContext(t, http.MethodPost, "/api/v1/allergens", owner, gin.H{"name": "x"})
	h.Register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_INPUT", errorCode(t, w))
}

func TestAllergenHandler_AddBatch(t *testing.T) {
	svc := new(mocks.MockAllergenService)
	h := handler.NewAllergenHandler(svc)
	owner := uuid.New()
	names := []string{"milk", "eggs", "?"}

	svc.On("AddBatch", mock.Anything, owner, names).Return(&service.BatchAddResult{
		Added:   []domain.Allergen{{CanonicalName: "milk"}, {CanonicalName: "eggs"}},
		Invalid: []string{"?"},
	}, nil)

	c, w := newContext(t, http.MethodPost, "/api/v1/allergens/batch", owner, gin.H{"names": names})
	h.AddBatch(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.(map[string]interface{})
	assert.Len(t, data["added"], 2)
	assert.Equal(t, []interface{}{"?"}, data["invalid"])
}

func TestAllergenHandler_AddBatch_EmptyList(t *testing.T) {
	svc := new(mocks.MockAllergenService)
	h := handler.NewAllergenHandler(svc)

	c, w := newContext(t, http.MethodPost, "/api/v1/allergens/batch", uuid.New(), gin.H{"names": []string{}})
	h.AddBatch(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "AddBatch", mock.Anything, mock.Anything, mock.Anything)
}

func TestAllergenHandler_Rename_Conflict(t *testing.T) {
	svc := new(mocks.MockAllergenService)
	h := handler.NewAllergenHandler(svc)
	owner := uuid.New()

	svc.On("Rename", mock.Anything, owner, "nut", "peanut").Return(nil, domain.ErrConflict)

	c, w := newContext(t, http.MethodPut, "/api/v1/allergens/rename", owner,
		gin.H{"old_name": "nut", "new_name": "peanut"})
	h.Rename(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CONFLICT", errorCode(t, w))
}

func TestAllergenHandler_Rename_Success(t *testing.T) {
	svc := new(mocks.MockAllergenService)
	h := handler.NewAllergenHandler(svc)
	owner := uuid.New()

	svc.On("Rename", mock.Anything, owner, "nut", "peanut").
		Return(&domain.Allergen{OwnerID: owner, CanonicalName: "peanut"}, nil)

	c, w := newContext(t, http.MethodPut, "/api/v1/allergens/rename", owner,
		gin.H{"old_name": "nut", "new_name": "peanut"})
	h.Rename(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.(map[string]interface{})
	assert.Equal(t, "peanut", data["canonical_name"])
}

func TestAllergenHandler_Delete(t *testing.T) {
	svc := new(mocks.MockAllergenService)
	h := handler.NewAllergenHandler(svc)
	owner := uuid.New()

	svc.On("Delete", mock.Anything, owner, "milk").Return(nil)

	c, w := newContext(t, http.MethodDelete, "/api/v1/allergens/milk", owner, nil)
	c.Params = gin.Params{{Key: "name", Value: "milk"}}
	h.Delete(c)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestAllergenHandler_Delete_NotFound(t *testing.T) {
	svc := new(mocks.MockAllergenService)
	h := handler.NewAllergenHandler(svc)
	owner := uuid.New()

	svc.On("Delete", mock.Anything, owner, "kiwi").Return(domain.ErrNotFound)

	c, w := newContext(t, http.MethodDelete, "/api/v1/allergens/kiwi", owner, nil)
	c.Params = gin.Params{{Key: "name", Value: "kiwi"}}
	h.Delete(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAllergenHandler_DeleteBatch(t *testing.T) {
	svc := new(mocks.MockAllergenService)
	h := handler.NewAllergenHandler(svc)
	owner := uuid.New()
	names := []string{"milk", "kiwi"}

	svc.On("DeleteBatch", mock.Anything, owner, names).Return(1, nil)

	c, w := newContext(t, http.MethodPost, "/api/v1/allergens/batch-delete", owner, gin.H{"names": names})
	h.DeleteBatch(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.(map[string]interface{})
	assert.EqualValues(t, 1, data["count"])
}

func TestAllergenHandler_InternalError(t *testing.T) {
	svc := new(mocks.MockAllergenService)
	h := handler.NewAllergenHandler(svc)
	owner := uuid.New()

	svc.On("List", mock.Anything, owner).Return(nil, errors.New("connection reset"))

	c, w := newContext(t, http.MethodGet, "/api/v1/allergens", owner, nil)
	h.List(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", errorCode(t, w))
	assert.NotContains(t, w.Body.String(), "connection reset")
}
