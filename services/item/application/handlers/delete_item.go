package handlers

import (
	"net/http"

	"github.com/ghuser/itemstore/pkg/httpx"
	itemdomain "github.com/ghuser/itemstore/services/item/domain"
)

// DeleteItemHandler handles DELETE /items/{id} requests.
type DeleteItemHandler struct {
	Deps
}

func NewDeleteItemHandler(d Deps) *DeleteItemHandler {
	return &DeleteItemHandler{Deps: d}
}

// Execute removes an item.
//
//	@Summary	Delete item
//	@Tags		items
//	@Param		id	path	string	true	"Item ID"	format(uuid)
//	@Success	204
//	@Failure	404	{object}	ErrorResponse
//	@Failure	500	{object}	ErrorResponse
//	@Router		/items/{id} [delete]
func (h *DeleteItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	removed, err := h.Services.Item.Delete(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if removed == nil {
		h.writeError(w, r, itemdomain.ErrItemNotFound)
		return
	}
	httpx.NoContent(w)
}
