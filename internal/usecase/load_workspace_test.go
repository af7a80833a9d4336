package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xavierca1/seller-console/internal/cache"
	"github.com/xavierca1/seller-console/internal/entity"
	"github.com/xavierca1/seller-console/internal/usecase"
)

func TestLoadWorkspaceSeatsBothSnapshots(t *testing.T) {
	ctx := context.Background()
	store := cache.NewStore()

	leads := []entity.Lead{demoLead()}
	opportunities := []entity.Opportunity{{ID: "opp-1", Name: "Old Deal", Stage: entity.StageProposal, AccountName: "Beta"}}

	mockRemote := new(MockRemoteStore)
	mockRemote.On("GetLeads", ctx).Return(leads, nil)
	mockRemote.On("GetOpportunities", ctx).Return(opportunities, nil)

	uc := usecase.NewLoadWorkspaceUseCase(store, mockRemote)

	out, err := uc.Execute(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 1, out.Leads)
	assert.Equal(t, 1, out.Opportunities)
	assert.Equal(t, leads, store.Leads())
	assert.Equal(t, opportunities, store.Opportunities())
}

func TestLoadWorkspaceLeadFailureIsFatal(t *testing.T) {
	ctx := context.Background()
	store := cache.NewStore()

	mockRemote := new(MockRemoteStore)
	mockRemote.On("GetLeads", ctx).
		Return(nil, &usecase.RemoteRejectionError{Op: "getLeads", Reason: "Failed to fetch leads. Please try again."})
	mockRemote.On("GetOpportunities", ctx).Return([]entity.Opportunity{}, nil)

	uc := usecase.NewLoadWorkspaceUseCase(store, mockRemote)

	out, err := uc.Execute(ctx)

	assert.Nil(t, out)
	assert.True(t, usecase.IsRemoteRejection(err))

	// Nothing was seated; the caller retries the whole load.
	assert.Empty(t, store.Leads())
	assert.Empty(t, store.Opportunities())
}

func TestLoadWorkspaceToleratesOpportunityFailure(t *testing.T) {
	ctx := context.Background()
	store := cache.NewStore()

	leads := []entity.Lead{demoLead()}

	mockRemote := new(MockRemoteStore)
	mockRemote.On("GetLeads", ctx).Return(leads, nil)
	mockRemote.On("GetOpportunities", ctx).
		Return(nil, &usecase.TransportError{Op: "getOpportunities", Err: context.DeadlineExceeded})

	uc := usecase.NewLoadWorkspaceUseCase(store, mockRemote)

	out, err := uc.Execute(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 1, out.Leads)
	assert.Equal(t, 0, out.Opportunities)
	assert.Equal(t, leads, store.Leads())
	assert.Empty(t, store.Opportunities())
}
