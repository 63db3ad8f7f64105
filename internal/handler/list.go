package handler

import (
	"net/http"

	"github.com/rosterdesk/platform/internal/filter"
)

// listResponse is the envelope for paginated list endpoints.
type listResponse[T any] struct {
	Data       []T             `json:"data"`
	Pagination filter.PageInfo `json:"pagination"`
}

// respondPage paginates items using the page and per_page query parameters.
func respondPage[T any](w http.ResponseWriter, r *http.Request, items []T) {
	page, perPage := filter.ParsePage(r.URL.Query())
	data, info := filter.Paginate(items, page, perPage)
	if data == nil {
		data = []T{}
	}
	RespondJSON(w, http.StatusOK, listResponse[T]{Data: data, Pagination: info})
}
