package handlers

import (
	"log/slog"
	"net/http"

	"systems-api/internal/search"
	"systems-api/internal/shared/errors"
	"systems-api/internal/shared/response"
)

type SearchHandler struct {
	searcher search.Searcher
}

func NewSearchHandler(searcher search.Searcher) *SearchHandler {
	return &SearchHandler{searcher: searcher}
}

// Search serves GET /api/search?name=<name>[&fast]. Not-found outcomes are
// 200 responses whose meta carries the error.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "search")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	params := r.URL.Query()
	q := search.Query{
		Name:    params.Get("name"),
		Present: params.Has("name"),
		Fast:    params.Has("fast"),
	}

	result, err := h.searcher.Search(ctx, q)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, result)
}
