package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/seller-console/internal/entity"
	"github.com/xavierca1/seller-console/internal/infra/queue"
	"github.com/xavierca1/seller-console/internal/usecase"
)

func TestConvertLeadSuccessIsAtomic(t *testing.T) {
	ctx := context.Background()
	lead := demoLead()
	store := seededCache(lead)

	created := entity.Opportunity{
		ID:          "opp-1",
		Name:        "Acme Corp - Alice Johnson",
		Stage:       entity.StageProspecting,
		AccountName: "Acme Corp",
		CreatedFrom: "lead-1",
	}

	mockRemote := new(MockRemoteStore)
	mockRemote.On("ConvertLead", ctx, "lead-1", mock.MatchedBy(func(d entity.OpportunityDraft) bool {
		// Defaults seeded from the lead when the operator overrides nothing.
		return d.Name == "Acme Corp - Alice Johnson" &&
			d.AccountName == "Acme Corp" &&
			d.Stage == entity.StageProspecting &&
			d.Amount == nil
	})).Return(&created, nil)

	mockQueue := new(MockEventPublisher)
	mockQueue.On("PublishLeadEvent", mock.Anything, mock.Anything).Return(nil)

	uc := usecase.NewConvertLeadUseCase(store, mockRemote, mockQueue)

	opportunity, err := uc.Execute(ctx, "lead-1", usecase.ConvertLeadInput{})

	assert.NoError(t, err)
	assert.Equal(t, created, *opportunity)

	// Lead retired and opportunity appended together.
	_, found := store.Lead("lead-1")
	assert.False(t, found)
	opportunities := store.Opportunities()
	assert.Len(t, opportunities, 1)
	assert.Equal(t, created, opportunities[0])

	mockQueue.AssertCalled(t, "PublishLeadEvent", mock.Anything, mock.MatchedBy(func(p queue.LeadEventPayload) bool {
		return p.Event == queue.EventLeadConverted && p.OpportunityID == "opp-1"
	}))
}

func TestConvertLeadHonorsOverrides(t *testing.T) {
	ctx := context.Background()
	store := seededCache(demoLead())

	amount := 25000.0
	name := "Acme Expansion"
	stage := entity.StageNegotiation

	created := entity.Opportunity{ID: "opp-2", Name: name, Stage: stage, Amount: &amount, AccountName: "Acme Corp"}

	mockRemote := new(MockRemoteStore)
	mockRemote.On("ConvertLead", ctx, "lead-1", mock.MatchedBy(func(d entity.OpportunityDraft) bool {
		return d.Name == name && d.Stage == stage && d.Amount != nil && *d.Amount == amount
	})).Return(&created, nil)

	uc := usecase.NewConvertLeadUseCase(store, mockRemote, nil)

	opportunity, err := uc.Execute(ctx, "lead-1", usecase.ConvertLeadInput{
		Name:   &name,
		Stage:  &stage,
		Amount: &amount,
	})

	assert.NoError(t, err)
	assert.Equal(t, created, *opportunity)
}

func TestConvertLeadNotFoundMakesNoRemoteCall(t *testing.T) {
	store := seededCache(demoLead())
	mockRemote := new(MockRemoteStore)
	uc := usecase.NewConvertLeadUseCase(store, mockRemote, nil)

	opportunity, err := uc.Execute(context.Background(), "lead-999", usecase.ConvertLeadInput{})

	assert.Nil(t, opportunity)
	assert.True(t, usecase.IsNotFound(err))
	mockRemote.AssertNotCalled(t, "ConvertLead", mock.Anything, mock.Anything, mock.Anything)
}

func TestConvertLeadTwiceCannotDuplicate(t *testing.T) {
	ctx := context.Background()
	store := seededCache(demoLead())

	created := entity.Opportunity{ID: "opp-1", Name: "Acme Corp - Alice Johnson", Stage: entity.StageProspecting, AccountName: "Acme Corp"}
	mockRemote := new(MockRemoteStore)
	mockRemote.On("ConvertLead", ctx, "lead-1", mock.Anything).Return(&created, nil)

	uc := usecase.NewConvertLeadUseCase(store, mockRemote, nil)

	_, err := uc.Execute(ctx, "lead-1", usecase.ConvertLeadInput{})
	assert.NoError(t, err)

	// The lead left the active set; the repeat cannot reach the remote store.
	_, err = uc.Execute(ctx, "lead-1", usecase.ConvertLeadInput{})
	assert.True(t, usecase.IsNotFound(err))
	assert.Len(t, store.Opportunities(), 1)
	mockRemote.AssertNumberOfCalls(t, "ConvertLead", 1)
}

func TestConvertLeadValidationBlocksRemoteCall(t *testing.T) {
	ctx := context.Background()
	mockRemote := new(MockRemoteStore)

	cases := []struct {
		label string
		input usecase.ConvertLeadInput
	}{
		{"blank name", func() usecase.ConvertLeadInput {
			empty := "   "
			return usecase.ConvertLeadInput{Name: &empty}
		}()},
		{"closed stage", func() usecase.ConvertLeadInput {
			stage := entity.StageClosedWon
			return usecase.ConvertLeadInput{Stage: &stage}
		}()},
		{"unknown stage", func() usecase.ConvertLeadInput {
			stage := entity.OpportunityStage("daydreaming")
			return usecase.ConvertLeadInput{Stage: &stage}
		}()},
		{"negative amount", func() usecase.ConvertLeadInput {
			amount := -1.0
			return usecase.ConvertLeadInput{Amount: &amount}
		}()},
	}

	for _, tc := range cases {
		store := seededCache(demoLead())
		uc := usecase.NewConvertLeadUseCase(store, mockRemote, nil)

		opportunity, err := uc.Execute(ctx, "lead-1", tc.input)

		assert.Nil(t, opportunity, tc.label)
		assert.True(t, usecase.IsValidationError(err), tc.label)

		// Nothing moved locally either.
		_, found := store.Lead("lead-1")
		assert.True(t, found, tc.label)
		assert.Empty(t, store.Opportunities(), tc.label)
	}

	mockRemote.AssertNotCalled(t, "ConvertLead", mock.Anything, mock.Anything, mock.Anything)
}

func TestConvertLeadRemoteFailureLeavesLeadActive(t *testing.T) {
	ctx := context.Background()
	store := seededCache(demoLead())

	mockRemote := new(MockRemoteStore)
	mockRemote.On("ConvertLead", ctx, "lead-1", mock.Anything).
		Return(nil, &usecase.RemoteRejectionError{Op: "convertLead", Reason: "Lead not found"})

	uc := usecase.NewConvertLeadUseCase(store, mockRemote, nil)

	opportunity, err := uc.Execute(ctx, "lead-1", usecase.ConvertLeadInput{})

	assert.Nil(t, opportunity)
	assert.True(t, usecase.IsRemoteRejection(err))

	// Failed conversion: the lead stays, no opportunity appears.
	_, found := store.Lead("lead-1")
	assert.True(t, found)
	assert.Empty(t, store.Opportunities())
}
