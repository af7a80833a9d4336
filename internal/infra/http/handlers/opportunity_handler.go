package handlers

import (
	"net/http"

	"github.com/xavierca1/seller-console/internal/cache"
)

type OpportunityHandler struct {
	Cache *cache.Store
}

func NewOpportunityHandler(store *cache.Store) *OpportunityHandler {
	return &OpportunityHandler{Cache: store}
}

func (h *OpportunityHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: h.Cache.Opportunities()})
}
