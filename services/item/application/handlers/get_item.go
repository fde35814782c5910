package handlers

import (
	"net/http"

	"github.com/ghuser/itemstore/pkg/httpx"
	itemdomain "github.com/ghuser/itemstore/services/item/domain"
)

// GetItemHandler handles GET /items/{id} requests.
type GetItemHandler struct {
	Deps
}

func NewGetItemHandler(d Deps) *GetItemHandler {
	return &GetItemHandler{Deps: d}
}

// Execute returns one item.
//
//	@Summary	Get item
//	@Tags		items
//	@Produce	json
//	@Param		id	path		string	true	"Item ID"	format(uuid)
//	@Success	200	{object}	ItemResponse
//	@Failure	404	{object}	ErrorResponse
//	@Failure	500	{object}	ErrorResponse
//	@Router		/items/{id} [get]
func (h *GetItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	item, err := h.Services.Item.GetByID(r.Context(), id)
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
