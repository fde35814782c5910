package handlers

import (
	"net/http"

	"github.com/ghuser/itemstore/pkg/httpx"
	pkgvalidator "github.com/ghuser/itemstore/pkg/validator"
	itemdomain "github.com/ghuser/itemstore/services/item/domain"
	"github.com/ghuser/itemstore/services/item/domain/models"
)

// PutItemHandler handles PUT /items/{id} requests.
type PutItemHandler struct {
	Deps
}

func NewPutItemHandler(d Deps) *PutItemHandler {
	return &PutItemHandler{Deps: d}
}

// Execute partially updates an item. Only fields present in the body change;
// an empty body object returns the item unchanged.
//
//	@Summary		Update item
//	@Description	Applies the supplied fields only. description may be null to clear it.
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Item ID"	format(uuid)
//	@Param			request	body		UpdateItemRequest	true	"Fields to change"
//	@Success		200		{object}	ItemResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		413		{object}	ErrorResponse
//	@Failure		422		{object}	ValidationErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/items/{id} [put]
func (h *PutItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	req, ok := pkgvalidator.ValidateRequest[UpdateItemRequest](w, r)
	if !ok {
		return
	}

	patch, err := models.NewItemPatch(req.Name, req.Description, req.Price, req.Available)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	item, err := h.Services.Item.Update(r.Context(), id, patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if item == nil {
		h.writeError(w, r, itemdomain.ErrItemNotFound)
		return
	}
	httpx.JSON(w, http.StatusOK, toItemResponse(item))
}
