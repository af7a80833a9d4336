package usecase

import (
	"context"
	"log"
	"time"

	"github.com/xavierca1/seller-console/internal/cache"
	"github.com/xavierca1/seller-console/internal/entity"
	"github.com/xavierca1/seller-console/internal/infra/queue"
)

// ConvertLeadUseCase runs the irreversible lead-to-opportunity transition:
// one remote call, and local effects applied together only after the store
// confirmed. There is no automatic retry; a failed conversion leaves the
// lead active and unconverted.
type ConvertLeadUseCase struct {
	Cache  *cache.Store
	Remote RemoteStore
	Queue  EventPublisherInterface
}

func NewConvertLeadUseCase(store *cache.Store, remote RemoteStore, producer EventPublisherInterface) *ConvertLeadUseCase {
	return &ConvertLeadUseCase{
		Cache:  store,
		Remote: remote,
		Queue:  producer,
	}
}

func (uc *ConvertLeadUseCase) Execute(ctx context.Context, leadID string, input ConvertLeadInput) (*entity.Opportunity, error) {
	lead, ok := uc.Cache.Lead(leadID)
	if !ok {
		// Already converted, or never existed. Either way: no remote call,
		// no side effects, and a repeat convert cannot mint a duplicate.
		return nil, &NotFoundError{Resource: "lead", ID: leadID}
	}

	draft := entity.NewOpportunityDraft(lead)
	if input.Name != nil {
		draft.Name = *input.Name
	}
	if input.AccountName != nil {
		draft.AccountName = *input.AccountName
	}
	if input.Stage != nil {
		draft.Stage = *input.Stage
	}
	if input.Amount != nil {
		draft.Amount = input.Amount
	}

	if errs := ValidateOpportunityDraft(draft); len(errs) > 0 {
		return nil, errs[0]
	}

	opportunity, err := uc.Remote.ConvertLead(ctx, leadID, draft)
	if err != nil {
		return nil, err
	}

	if !uc.Cache.ApplyConversion(leadID, *opportunity) {
		// The lead can only vanish mid-call through a competing conversion,
		// which the remote store would have refused. Keep the confirmed
		// opportunity either way; it exists remotely now.
		log.Printf("warn: lead %s gone before conversion applied locally", leadID)
		uc.Cache.AppendOpportunity(*opportunity)
	}

	uc.publish(queue.LeadEventPayload{
		Event:         queue.EventLeadConverted,
		LeadID:        leadID,
		LeadName:      lead.Name,
		OpportunityID: opportunity.ID,
		Opportunity:   opportunity.Name,
		Amount:        opportunity.Amount,
		OccurredAt:    time.Now(),
	})
	return opportunity, nil
}

func (uc *ConvertLeadUseCase) publish(payload queue.LeadEventPayload) {
	if uc.Queue == nil {
		return
	}
	if err := uc.Queue.PublishLeadEvent(context.Background(), payload); err != nil {
		log.Printf("warn: lead event %s not published: %v", payload.Event, err)
	}
}
