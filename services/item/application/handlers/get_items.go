package handlers

import (
	"fmt"
	"net/http"

	"github.com/ghuser/itemstore/pkg/httpx"
	pkgvalidator "github.com/ghuser/itemstore/pkg/validator"
	"github.com/ghuser/itemstore/services/item/domain/repositories"
)

// GetItemsHandler handles GET /items requests.
type GetItemsHandler struct {
	Deps
}

func NewGetItemsHandler(d Deps) *GetItemsHandler {
	return &GetItemsHandler{Deps: d}
}

// Execute lists items in insertion order.
//
//	@Summary	List items
//	@Tags		items
//	@Produce	json
//	@Param		skip	query		int	false	"Items to skip"	minimum(0)	default(0)
//	@Param		limit	query		int	false	"Page size"		minimum(1)	maximum(100)	default(10)
//	@Success	200		{array}		ItemResponse
//	@Failure	422		{object}	ValidationErrorResponse
//	@Failure	500		{object}	ErrorResponse
//	@Router		/items [get]
func (h *GetItemsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	fields := map[string]string{}
	q := r.URL.Query()
	skip, err := httpx.QueryInt(q, "skip", 0)
	switch {
	case err != nil:
		fields["skip"] = "Must be an integer"
	case skip < 0:
		fields["skip"] = "Must be greater than or equal to 0"
	}
	limit, err := httpx.QueryInt(q, "limit", repositories.DefaultListLimit)
	switch {
	case err != nil:
		fields["limit"] = "Must be an integer"
	case limit < 1 || limit > repositories.MaxListLimit:
		fields["limit"] = fmt.Sprintf("Must be between 1 and %d", repositories.MaxListLimit)
	}
	if len(fields) > 0 {
		pkgvalidator.WriteValidationError(w, fields)
		return
	}

	items, err := h.Services.Item.List(r.Context(), skip, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toItemResponses(items))
}
