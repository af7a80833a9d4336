package usecase

import (
	"context"

	"github.com/xavierca1/seller-console/internal/entity"
	"github.com/xavierca1/seller-console/internal/infra/queue"
)

// RemoteStore is the asynchronous request/response contract of the CRM
// backend. Implementations return *RemoteRejectionError when the store
// answered success=false, *TransportError when the call itself failed.
type RemoteStore interface {
	GetLeads(ctx context.Context) ([]entity.Lead, error)
	GetOpportunities(ctx context.Context) ([]entity.Opportunity, error)
	UpdateLead(ctx context.Context, id string, input UpdateLeadInput) (*entity.Lead, error)
	ConvertLead(ctx context.Context, id string, draft entity.OpportunityDraft) (*entity.Opportunity, error)
}

type EventPublisherInterface interface {
	PublishLeadEvent(ctx context.Context, payload queue.LeadEventPayload) error
}
