package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/itemstore/pkg/optional"
	"github.com/ghuser/itemstore/services/item/domain/models"
)

// Validator tags mirror models.MinNameLength, MaxNameLength and MaxDescriptionLength.

// CreateItemRequest is the request body for POST /items.
type CreateItemRequest struct {
	Name        string  `json:"name"        validate:"required,min=1,max=128" example:"Minecraft"`
	Description *string `json:"description" validate:"required,min=1,max=256" example:"Best selling game"`
	Price       float64 `json:"price"       validate:"required,gt=0" example:"450"`
	Available   *bool   `json:"available"   example:"true"` // defaults to true
} // @name CreateItemRequest

// UpdateItemRequest is the request body for PUT /items/{id}. Omitted fields
// are left unchanged; description may be null to clear it.
type UpdateItemRequest struct {
	Name        optional.Value[string]  `json:"name"        validate:"omitempty,min=1,max=128" swaggertype:"string" example:"Minecraft"`
	Description optional.Value[string]  `json:"description" validate:"omitempty,min=1,max=256" swaggertype:"string" example:"Best selling game"`
	Price       optional.Value[float64] `json:"price"       validate:"omitempty,gt=0" swaggertype:"number" example:"500"`
	Available   optional.Value[bool]    `json:"available"   swaggertype:"boolean" example:"false"`
} // @name UpdateItemRequest

// ItemResponse is the public representation of an item.
type ItemResponse struct {
	ID          uuid.UUID `json:"id"          example:"123e4567-e89b-12d3-a456-426614174000"`
	Name        string    `json:"name"        example:"Minecraft"`
	Description *string   `json:"description" example:"Best selling game"`
	Price       float64   `json:"price"       example:"450"`
	Available   bool      `json:"available"   example:"true"`
	CreatedAt   time.Time `json:"created_at"  example:"2024-01-15T10:30:00Z"`
} // @name ItemResponse

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"item not found"`
} // @name ErrorResponse

// ValidationErrorResponse is returned with 422 when request fields are invalid.
type ValidationErrorResponse struct {
	Error  string            `json:"error"  example:"Validation failed"`
	Fields map[string]string `json:"fields"`
} // @name ValidationErrorResponse

func toItemResponse(item *models.Item) ItemResponse {
	resp := ItemResponse{
		ID:        item.ID,
		Name:      item.Name.String(),
		Price:     item.Price.Float64(),
		Available: item.Available,
		CreatedAt: item.CreatedAt,
	}
	if d, ok := item.DescriptionString(); ok {
		resp.Description = &d
	}
	return resp
}

func toItemResponses(items []*models.Item) []ItemResponse {
	out := make([]ItemResponse, len(items))
	for i, item := range items {
		out[i] = toItemResponse(item)
	}
	return out
}
