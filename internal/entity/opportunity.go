package entity

import "fmt"

type OpportunityStage string

const (
	StageProspecting   OpportunityStage = "prospecting"
	StageQualification OpportunityStage = "qualification"
	StageProposal      OpportunityStage = "proposal"
	StageNegotiation   OpportunityStage = "negotiation"
	StageClosedWon     OpportunityStage = "closed-won"
	StageClosedLost    OpportunityStage = "closed-lost"
)

func (s OpportunityStage) Valid() bool {
	switch s {
	case StageProspecting, StageQualification, StageProposal, StageNegotiation,
		StageClosedWon, StageClosedLost:
		return true
	}
	return false
}

// Open reports whether the stage is a valid conversion target. A lead cannot
// be converted straight into a closed stage.
func (s OpportunityStage) Open() bool {
	switch s {
	case StageProspecting, StageQualification, StageProposal, StageNegotiation:
		return true
	}
	return false
}

// Opportunity is a converted lead. CreatedFrom keeps the id of the lead it
// came from; that lead is gone from the active set by then, the field is a
// lookup reference only.
type Opportunity struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Stage       OpportunityStage `json:"stage"`
	Amount      *float64         `json:"amount,omitempty"`
	AccountName string           `json:"accountName"`
	CreatedFrom string           `json:"createdFrom,omitempty"`
}

// OpportunityDraft is the operator's input for a conversion. The remote
// store assigns the id and the createdFrom reference.
type OpportunityDraft struct {
	Name        string           `json:"name"`
	AccountName string           `json:"accountName"`
	Stage       OpportunityStage `json:"stage"`
	Amount      *float64         `json:"amount,omitempty"`
}

// NewOpportunityDraft seeds a draft from the lead being converted. Defaults
// are resolved here, once: name "{company} - {name}", account taken from the
// company, stage prospecting, no amount.
func NewOpportunityDraft(lead Lead) OpportunityDraft {
	return OpportunityDraft{
		Name:        fmt.Sprintf("%s - %s", lead.Company, lead.Name),
		AccountName: lead.Company,
		Stage:       StageProspecting,
	}
}
