package usecase

import "github.com/xavierca1/seller-console/internal/entity"

// UpdateLeadInput carries only the editable fields. Everything else on a
// lead is server-owned and never leaves the client in an update.
type UpdateLeadInput struct {
	Email  *string            `json:"email,omitempty"`
	Status *entity.LeadStatus `json:"status,omitempty"`
}

// ConvertLeadInput overrides the defaults derived from the lead at draft
// construction. Nil fields keep the derived value.
type ConvertLeadInput struct {
	Name        *string                  `json:"name,omitempty"`
	AccountName *string                  `json:"accountName,omitempty"`
	Stage       *entity.OpportunityStage `json:"stage,omitempty"`
	Amount      *float64                 `json:"amount,omitempty"`
}

type LoadWorkspaceOutput struct {
	Leads         int `json:"leads"`
	Opportunities int `json:"opportunities"`
}
