package handler

import "safebite/internal/domain"

// RegisterAllergenRequest represents the register allergen request body.
type RegisterAllergenRequest struct {
	Name string `json:"name" binding:"required" example:"Peanuts"`
}

// AllergenNamesRequest carries a list of allergen or candidate names.
type AllergenNamesRequest struct {
	Names []string `json:"names" binding:"required,min=1" example:"milk,peanut"`
}

// RenameAllergenRequest represents the rename allergen request body.
type RenameAllergenRequest struct {
	OldName string `json:"old_name" binding:"required" example:"nut"`
	NewName string `json:"new_name" binding:"required" example:"peanut"`
}

// ReconcileTextRequest carries already-extracted label text.
type ReconcileTextRequest struct {
	Text string `json:"text" binding:"required" example:"Ingredients: wheat flour, milk, soy lecithin"`
}

// CheckRequest carries one piece of evidence text.
type CheckRequest struct {
	Evidence string `json:"evidence" binding:"required" example:"Ingredients: peanuts, sugar, salt"`
}

// CheckBatchRequest carries several evidence texts.
type CheckBatchRequest struct {
	Evidences []string `json:"evidences" binding:"required,min=1" example:"Granola Bar,Pad Thai"`
}

// RegisterAllergenResponse reports whether a new allergen was created.
type RegisterAllergenResponse struct {
	Allergen *domain.Allergen `json:"allergen"`
	Created  bool             `json:"created"`
}

// CountResponse reports how many records an operation affected.
type CountResponse struct {
	Count int `json:"count"`
}
