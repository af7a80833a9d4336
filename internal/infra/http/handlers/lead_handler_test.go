package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/seller-console/internal/cache"
	"github.com/xavierca1/seller-console/internal/entity"
	"github.com/xavierca1/seller-console/internal/infra/http/handlers"
	"github.com/xavierca1/seller-console/internal/infra/prefstore"
	"github.com/xavierca1/seller-console/internal/infra/remote"
	"github.com/xavierca1/seller-console/internal/usecase"
	"github.com/xavierca1/seller-console/internal/view"
)

// stubRemote lets a test script exact remote verdicts per call.
type stubRemote struct {
	updateLead  func(ctx context.Context, id string, input usecase.UpdateLeadInput) (*entity.Lead, error)
	convertLead func(ctx context.Context, id string, draft entity.OpportunityDraft) (*entity.Opportunity, error)
}

func (s *stubRemote) GetLeads(ctx context.Context) ([]entity.Lead, error) {
	return nil, nil
}

func (s *stubRemote) GetOpportunities(ctx context.Context) ([]entity.Opportunity, error) {
	return nil, nil
}

func (s *stubRemote) UpdateLead(ctx context.Context, id string, input usecase.UpdateLeadInput) (*entity.Lead, error) {
	return s.updateLead(ctx, id, input)
}

func (s *stubRemote) ConvertLead(ctx context.Context, id string, draft entity.OpportunityDraft) (*entity.Opportunity, error) {
	return s.convertLead(ctx, id, draft)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newRouter(store usecase.RemoteStore) (*chi.Mux, *cache.Store) {
	collection := cache.NewStore()
	collection.ReplaceAll(remote.SeedLeads(), nil)

	leadView := view.NewLeads(collection, prefstore.NewMemory())
	editor := usecase.NewEditLeadUseCase(collection, store, nil)
	converter := usecase.NewConvertLeadUseCase(collection, store, nil)
	loader := usecase.NewLoadWorkspaceUseCase(collection, store)
	handler := handlers.NewLeadHandler(leadView, collection, editor, converter, loader)
	oppHandler := handlers.NewOpportunityHandler(collection)

	r := chi.NewRouter()
	r.Get("/leads", handler.HandleList)
	r.Put("/leads/view", handler.HandleUpdateView)
	r.Patch("/leads/{leadID}", handler.HandleUpdate)
	r.Post("/leads/{leadID}/undo", handler.HandleUndo)
	r.Post("/leads/{leadID}/convert", handler.HandleConvert)
	r.Get("/opportunities", oppHandler.HandleList)
	r.Post("/refresh", handler.HandleRefresh)
	return r, collection
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader([]byte(`{}`))
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestHandleListReturnsProjectionAndCounts(t *testing.T) {
	r, _ := newRouter(&stubRemote{})

	rec, env := doJSON(t, r, http.MethodGet, "/leads", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	var payload struct {
		Leads              []entity.Lead   `json:"leads"`
		TotalLeads         int             `json:"totalLeads"`
		TotalOpportunities int             `json:"totalOpportunities"`
		Preference         view.Preference `json:"preference"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &payload))

	assert.Equal(t, 8, payload.TotalLeads)
	assert.Equal(t, 0, payload.TotalOpportunities)
	assert.Len(t, payload.Leads, 8)
	// Default projection: score descending, Elena Petrova (97) first.
	assert.Equal(t, "5", payload.Leads[0].ID)
	assert.Equal(t, view.DefaultPreference(), payload.Preference)
}

func TestHandleUpdateConfirmed(t *testing.T) {
	confirmed := remote.SeedLeads()[0]
	confirmed.Email = "alice.new@acme.com"
	confirmed.Status = entity.StatusQualified

	r, collection := newRouter(&stubRemote{
		updateLead: func(_ context.Context, id string, input usecase.UpdateLeadInput) (*entity.Lead, error) {
			lead := confirmed
			return &lead, nil
		},
	})

	rec, env := doJSON(t, r, http.MethodPatch, "/leads/1", map[string]string{
		"email":  "alice.new@acme.com",
		"status": "qualified",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	cached, _ := collection.Lead("1")
	assert.Equal(t, confirmed, cached)
}

func TestHandleUpdateLocalValidationNeverCallsRemote(t *testing.T) {
	remoteCalled := false
	r, collection := newRouter(&stubRemote{
		updateLead: func(_ context.Context, _ string, _ usecase.UpdateLeadInput) (*entity.Lead, error) {
			remoteCalled = true
			return nil, nil
		},
	})

	rec, env := doJSON(t, r, http.MethodPatch, "/leads/1", map[string]string{"email": "nope"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.False(t, env.Success)
	assert.False(t, remoteCalled)

	cached, _ := collection.Lead("1")
	assert.Equal(t, remote.SeedLeads()[0], cached)
}

func TestHandleUpdateRemoteRejectionRollsBack(t *testing.T) {
	r, collection := newRouter(&stubRemote{
		updateLead: func(_ context.Context, _ string, _ usecase.UpdateLeadInput) (*entity.Lead, error) {
			return nil, &usecase.RemoteRejectionError{Op: "updateLead", Reason: "Invalid email format"}
		},
	})

	rec, env := doJSON(t, r, http.MethodPatch, "/leads/1", map[string]string{"email": "alice@blocked.example"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Invalid email format", env.Error)

	var failure struct {
		Field             string `json:"field"`
		RollbackAvailable bool   `json:"rollbackAvailable"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &failure))
	assert.Equal(t, "email", failure.Field)
	assert.True(t, failure.RollbackAvailable)

	// The optimistic write was rolled back to the exact prior record.
	cached, _ := collection.Lead("1")
	assert.Equal(t, remote.SeedLeads()[0], cached)

	// Undo is still offered, once.
	rec, env = doJSON(t, r, http.MethodPost, "/leads/1/undo", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"reverted":true}`, string(env.Data))

	_, env = doJSON(t, r, http.MethodPost, "/leads/1/undo", nil)
	assert.JSONEq(t, `{"reverted":false}`, string(env.Data))
}

func TestHandleUpdateUnknownLead(t *testing.T) {
	r, _ := newRouter(&stubRemote{})

	rec, env := doJSON(t, r, http.MethodPatch, "/leads/999", map[string]string{"status": "contacted"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
}

func TestHandleConvertLifecycle(t *testing.T) {
	r, collection := newRouter(&stubRemote{
		convertLead: func(_ context.Context, id string, draft entity.OpportunityDraft) (*entity.Opportunity, error) {
			return &entity.Opportunity{
				ID:          "opp-1",
				Name:        draft.Name,
				Stage:       draft.Stage,
				Amount:      draft.Amount,
				AccountName: draft.AccountName,
				CreatedFrom: id,
			}, nil
		},
	})

	rec, env := doJSON(t, r, http.MethodPost, "/leads/1/convert", map[string]any{"amount": 9000})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)

	var opportunity entity.Opportunity
	require.NoError(t, json.Unmarshal(env.Data, &opportunity))
	assert.Equal(t, "Acme Corp - Alice Johnson", opportunity.Name)
	assert.Equal(t, entity.StageProspecting, opportunity.Stage)

	_, found := collection.Lead("1")
	assert.False(t, found)

	// Converting again cannot duplicate: the lead left the active set.
	rec, _ = doJSON(t, r, http.MethodPost, "/leads/1/convert", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env = doJSON(t, r, http.MethodGet, "/opportunities", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var opportunities []entity.Opportunity
	require.NoError(t, json.Unmarshal(env.Data, &opportunities))
	assert.Len(t, opportunities, 1)
}

func TestHandleConvertClosedStageRejected(t *testing.T) {
	r, collection := newRouter(&stubRemote{})

	rec, env := doJSON(t, r, http.MethodPost, "/leads/1/convert", map[string]string{"stage": "closed-won"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.False(t, env.Success)

	_, found := collection.Lead("1")
	assert.True(t, found)
}

func TestHandleUpdateViewTogglesSort(t *testing.T) {
	r, _ := newRouter(&stubRemote{})

	_, env := doJSON(t, r, http.MethodPut, "/leads/view", map[string]string{"sortField": "name"})
	var pref view.Preference
	require.NoError(t, json.Unmarshal(env.Data, &pref))
	assert.Equal(t, view.SortName, pref.SortField)
	assert.Equal(t, view.Descending, pref.SortDirection)

	// Same field again flips direction.
	_, env = doJSON(t, r, http.MethodPut, "/leads/view", map[string]string{"sortField": "name"})
	require.NoError(t, json.Unmarshal(env.Data, &pref))
	assert.Equal(t, view.Ascending, pref.SortDirection)

	rec, _ := doJSON(t, r, http.MethodPut, "/leads/view", map[string]string{"sortField": "height"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, _ = doJSON(t, r, http.MethodPut, "/leads/view", map[string]string{"statusFilter": "on-fire"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleRefreshFailureSurfaces(t *testing.T) {
	store := remote.NewMemory(remote.SeedLeads())
	store.FailureRate = 1
	r, _ := newRouter(store)

	rec, env := doJSON(t, r, http.MethodPost, "/refresh", nil)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Failed to fetch leads. Please try again.", env.Error)
}
