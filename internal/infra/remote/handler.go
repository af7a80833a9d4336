package remote

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/seller-console/internal/entity"
	"github.com/xavierca1/seller-console/internal/usecase"
)

// Handler exposes a Memory store over the wire contract. Domain failures
// ride the envelope (success=false) with HTTP 200, matching the backend the
// client was written against; only undecodable requests get a 4xx.
func Handler(m *Memory) http.Handler {
	r := chi.NewRouter()

	r.Get("/leads", func(w http.ResponseWriter, req *http.Request) {
		leads, err := m.GetLeads(req.Context())
		writeEnvelope(w, leads, err)
	})

	r.Get("/opportunities", func(w http.ResponseWriter, req *http.Request) {
		opportunities, err := m.GetOpportunities(req.Context())
		writeEnvelope(w, opportunities, err)
	})

	r.Patch("/leads/{leadID}", func(w http.ResponseWriter, req *http.Request) {
		var input usecase.UpdateLeadInput
		if err := json.NewDecoder(req.Body).Decode(&input); err != nil {
			writeBadRequest(w, "Invalid JSON")
			return
		}
		lead, err := m.UpdateLead(req.Context(), chi.URLParam(req, "leadID"), input)
		writeEnvelope(w, lead, err)
	})

	r.Post("/leads/{leadID}/convert", func(w http.ResponseWriter, req *http.Request) {
		var draft entity.OpportunityDraft
		if err := json.NewDecoder(req.Body).Decode(&draft); err != nil {
			writeBadRequest(w, "Invalid JSON")
			return
		}
		opportunity, err := m.ConvertLead(req.Context(), chi.URLParam(req, "leadID"), draft)
		writeEnvelope(w, opportunity, err)
	})

	return r
}

func writeEnvelope(w http.ResponseWriter, data any, err error) {
	w.Header().Set("Content-Type", "application/json")

	if err != nil {
		reason := err.Error()
		var rejection *usecase.RemoteRejectionError
		if errors.As(err, &rejection) {
			reason = rejection.Reason
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(apiResponse{Success: false, Error: reason})
		return
	}

	raw, err := json.Marshal(data)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(apiResponse{Success: false, Error: "encoding failure"})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(apiResponse{Success: true, Data: raw})
}

func writeBadRequest(w http.ResponseWriter, reason string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(apiResponse{Success: false, Error: reason})
}
