package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/seller-console/internal/cache"
	"github.com/xavierca1/seller-console/internal/entity"
	"github.com/xavierca1/seller-console/internal/infra/http/middleware"
	"github.com/xavierca1/seller-console/internal/usecase"
	"github.com/xavierca1/seller-console/internal/view"
)

type LeadHandler struct {
	View      *view.Leads
	Cache     *cache.Store
	Editor    *usecase.EditLeadUseCase
	Converter *usecase.ConvertLeadUseCase
	Loader    *usecase.LoadWorkspaceUseCase
}

func NewLeadHandler(
	leadView *view.Leads,
	store *cache.Store,
	editor *usecase.EditLeadUseCase,
	converter *usecase.ConvertLeadUseCase,
	loader *usecase.LoadWorkspaceUseCase,
) *LeadHandler {
	return &LeadHandler{
		View:      leadView,
		Cache:     store,
		Editor:    editor,
		Converter: converter,
		Loader:    loader,
	}
}

type leadListResponse struct {
	Leads              []entity.Lead   `json:"leads"`
	TotalLeads         int             `json:"totalLeads"`
	TotalOpportunities int             `json:"totalOpportunities"`
	Preference         view.Preference `json:"preference"`
}

// HandleList returns the derived projection plus the raw counts shown on
// the leads/opportunities tabs.
func (h *LeadHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	totalLeads, totalOpportunities := h.Cache.Counts()
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: leadListResponse{
		Leads:              h.View.Rows(),
		TotalLeads:         totalLeads,
		TotalOpportunities: totalOpportunities,
		Preference:         h.View.Preference(),
	}})
}

type updateViewRequest struct {
	SearchQuery  *string `json:"searchQuery,omitempty"`
	StatusFilter *string `json:"statusFilter,omitempty"`
	SortField    *string `json:"sortField,omitempty"`
}

// HandleUpdateView mutates the filter/sort state. Each accepted change is
// persisted before the new preference is echoed back. Sending sortField
// toggles it: same field flips direction, new field resets to descending.
func (h *LeadHandler) HandleUpdateView(w http.ResponseWriter, r *http.Request) {
	var req updateViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Success: false, Error: "Invalid JSON"})
		return
	}

	ctx := r.Context()

	if req.SearchQuery != nil {
		if err := h.View.SetQuery(ctx, *req.SearchQuery); err != nil {
			writeJSON(w, http.StatusInternalServerError, apiResponse{Success: false, Error: "Failed to persist preference"})
			return
		}
	}

	if req.StatusFilter != nil {
		filter := *req.StatusFilter
		if filter != view.StatusFilterAll && !entity.LeadStatus(filter).Valid() {
			writeJSON(w, http.StatusUnprocessableEntity, apiResponse{Success: false, Error: "Unknown status filter"})
			return
		}
		if err := h.View.SetStatusFilter(ctx, filter); err != nil {
			writeJSON(w, http.StatusInternalServerError, apiResponse{Success: false, Error: "Failed to persist preference"})
			return
		}
	}

	if req.SortField != nil {
		field := view.SortField(*req.SortField)
		if !field.Valid() {
			writeJSON(w, http.StatusUnprocessableEntity, apiResponse{Success: false, Error: "Unknown sort field"})
			return
		}
		if err := h.View.ToggleSort(ctx, field); err != nil {
			writeJSON(w, http.StatusInternalServerError, apiResponse{Success: false, Error: "Failed to persist preference"})
			return
		}
	}

	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: h.View.Preference()})
}

type updateLeadRequest struct {
	Email  *string `json:"email,omitempty"`
	Status *string `json:"status,omitempty"`
}

type updateLeadFailure struct {
	Field             string `json:"field,omitempty"`
	RollbackAvailable bool   `json:"rollbackAvailable"`
}

// HandleUpdate runs one full edit cycle: begin, apply fields, commit. The
// engine keeps a failed-validation session open for correction; this
// surface is stateless per request, so it cancels and lets the caller retry
// with a fresh PATCH.
func (h *LeadHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadID")

	var req updateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Success: false, Error: "Invalid JSON"})
		return
	}

	session, err := h.Editor.BeginEdit(leadID)
	if err != nil {
		switch {
		case usecase.IsNotFound(err):
			writeJSON(w, http.StatusNotFound, apiResponse{Success: false, Error: err.Error()})
		case errors.Is(err, usecase.ErrEditInProgress):
			writeJSON(w, http.StatusConflict, apiResponse{Success: false, Error: err.Error()})
		default:
			writeJSON(w, http.StatusInternalServerError, apiResponse{Success: false, Error: err.Error()})
		}
		return
	}

	if req.Email != nil {
		if err := h.Editor.ApplyField(session, usecase.FieldEmail, *req.Email); err != nil {
			h.Editor.Cancel(session)
			writeJSON(w, http.StatusUnprocessableEntity, apiResponse{Success: false, Error: err.Error()})
			return
		}
	}
	if req.Status != nil {
		if err := h.Editor.ApplyField(session, usecase.FieldStatus, *req.Status); err != nil {
			h.Editor.Cancel(session)
			writeJSON(w, http.StatusUnprocessableEntity, apiResponse{Success: false, Error: err.Error()})
			return
		}
	}

	lead, err := h.Editor.Commit(r.Context(), session)
	if err != nil {
		switch {
		case usecase.IsValidationError(err):
			// Local gate: no remote call happened, nothing to roll back.
			h.Editor.Cancel(session)
			middleware.RecordLeadUpdate("validation_error")
			writeJSON(w, http.StatusUnprocessableEntity, apiResponse{
				Success: false,
				Error:   err.Error(),
				Data:    updateLeadFailure{Field: usecase.FieldEmail},
			})

		case usecase.IsEmailRejection(err):
			// Remote rejected the email shape: rolled back, session was
			// reopened with the field error. Abandon it for statelessness.
			h.Editor.Cancel(session)
			middleware.RecordLeadUpdate("rejected")
			middleware.RecordRollback()
			writeJSON(w, http.StatusUnprocessableEntity, apiResponse{
				Success: false,
				Error:   err.Error(),
				Data: updateLeadFailure{
					Field:             usecase.FieldEmail,
					RollbackAvailable: h.Editor.RollbackAvailable(leadID),
				},
			})

		default:
			// Generic rejection or transport failure: rolled back, closed.
			middleware.RecordLeadUpdate("failed")
			middleware.RecordRollback()
			middleware.RecordRemoteError("updateLead")
			writeJSON(w, http.StatusBadGateway, apiResponse{
				Success: false,
				Error:   err.Error(),
				Data:    updateLeadFailure{RollbackAvailable: h.Editor.RollbackAvailable(leadID)},
			})
		}
		return
	}

	middleware.RecordLeadUpdate("confirmed")
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: lead})
}

// HandleUndo restores the pre-edit record while the rollback notice is up.
func (h *LeadHandler) HandleUndo(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadID")
	reverted := h.Editor.Undo(leadID)
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: map[string]bool{"reverted": reverted}})
}

// HandleConvert retires a lead into a new opportunity.
func (h *LeadHandler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "leadID")

	var input usecase.ConvertLeadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Success: false, Error: "Invalid JSON"})
		return
	}

	opportunity, err := h.Converter.Execute(r.Context(), leadID, input)
	if err != nil {
		switch {
		case usecase.IsNotFound(err):
			writeJSON(w, http.StatusNotFound, apiResponse{Success: false, Error: err.Error()})
		case usecase.IsValidationError(err):
			writeJSON(w, http.StatusUnprocessableEntity, apiResponse{Success: false, Error: err.Error()})
		default:
			middleware.RecordConversion("failed")
			middleware.RecordRemoteError("convertLead")
			writeJSON(w, http.StatusBadGateway, apiResponse{Success: false, Error: err.Error()})
		}
		return
	}

	middleware.RecordConversion("confirmed")
	writeJSON(w, http.StatusCreated, apiResponse{Success: true, Data: opportunity})
}

// HandleRefresh re-runs the initial load: leads required, opportunities
// best-effort.
func (h *LeadHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	out, err := h.Loader.Execute(r.Context())
	if err != nil {
		middleware.RecordRemoteError("getLeads")
		writeJSON(w, http.StatusBadGateway, apiResponse{Success: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: out})
}
