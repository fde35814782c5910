package handlers

import (
	"net/http"

	"github.com/ghuser/itemstore/pkg/httpx"
	pkgvalidator "github.com/ghuser/itemstore/pkg/validator"
	appsvcs "github.com/ghuser/itemstore/services/item/application/services"
)

// PostItemHandler handles POST /items requests.
type PostItemHandler struct {
	Deps
}

// NewPostItemHandler returns a PostItemHandler backed by the given services.
func NewPostItemHandler(d Deps) *PostItemHandler {
	return &PostItemHandler{Deps: d}
}

// Execute creates a new item.
//
//	@Summary		Create item
//	@Description	Creates a new item. available defaults to true.
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateItemRequest	true	"Item creation request"
//	@Success		201		{object}	ItemResponse
//	@Header			201		{string}	Location	"URL of the new item"
//	@Failure		400		{object}	ErrorResponse
//	@Failure		413		{object}	ErrorResponse
//	@Failure		422		{object}	ValidationErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/items [post]
func (h *PostItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[CreateItemRequest](w, r)
	if !ok {
		return
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	item, err := h.Services.Item.Create(r.Context(), appsvcs.CreateItemInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Available:   available,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httpx.Created(w, "/items/"+item.ID.String(), toItemResponse(item))
}
