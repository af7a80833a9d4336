package remote

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xavierca1/seller-console/internal/entity"
	"github.com/xavierca1/seller-console/internal/usecase"
)

// Memory is an in-process remote store honoring the same contract as the
// real CRM API: latency, in-band failures, server-side email validation.
// cmd/mockcrm serves it over HTTP; tests drive it directly.
type Memory struct {
	mu            sync.Mutex
	leads         []entity.Lead
	opportunities []entity.Opportunity

	// Latency is applied to every call; FailureRate is the chance (0..1)
	// that a GetLeads snapshot fails, as the original backend simulated.
	Latency     time.Duration
	FailureRate float64

	rng *rand.Rand
}

func NewMemory(seed []entity.Lead) *Memory {
	return &Memory{
		leads: append([]entity.Lead(nil), seed...),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SeedLeads is the demo dataset shipped with cmd/mockcrm.
func SeedLeads() []entity.Lead {
	return []entity.Lead{
		{ID: "1", Name: "Alice Johnson", Company: "Acme Corp", Email: "alice@acme.com", Source: "website", Score: 92, Status: entity.StatusNew},
		{ID: "2", Name: "Bob Martinez", Company: "Globex", Email: "bob@globex.com", Source: "referral", Score: 78, Status: entity.StatusContacted},
		{ID: "3", Name: "Carla Nguyen", Company: "Initech", Email: "carla@initech.io", Source: "webinar", Score: 85, Status: entity.StatusNew},
		{ID: "4", Name: "Derek Smith", Company: "Umbrella", Email: "derek@umbrella.org", Source: "cold-call", Score: 41, Status: entity.StatusUnqualified},
		{ID: "5", Name: "Elena Petrova", Company: "Hooli", Email: "elena@hooli.com", Source: "website", Score: 97, Status: entity.StatusQualified},
		{ID: "6", Name: "Frank Osei", Company: "Stark Industries", Email: "frank@stark.com", Source: "event", Score: 66, Status: entity.StatusContacted},
		{ID: "7", Name: "Grace Lee", Company: "Wayne Enterprises", Email: "grace@wayne.com", Source: "referral", Score: 88, Status: entity.StatusNew},
		{ID: "8", Name: "Hugo Alves", Company: "Acme Corp", Email: "hugo@acme.com", Source: "website", Score: 73, Status: entity.StatusContacted},
	}
}

func (m *Memory) GetLeads(ctx context.Context) ([]entity.Lead, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailureRate > 0 && m.rng.Float64() < m.FailureRate {
		return nil, &usecase.RemoteRejectionError{
			Op:     "getLeads",
			Reason: "Failed to fetch leads. Please try again.",
		}
	}
	return append([]entity.Lead(nil), m.leads...), nil
}

func (m *Memory) GetOpportunities(ctx context.Context) ([]entity.Opportunity, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.Opportunity(nil), m.opportunities...), nil
}

func (m *Memory) UpdateLead(ctx context.Context, id string, input usecase.UpdateLeadInput) (*entity.Lead, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if input.Email != nil && !entity.IsValidEmail(*input.Email) {
		return nil, &usecase.RemoteRejectionError{Op: "updateLead", Reason: "Invalid email format"}
	}

	i := m.indexOf(id)
	if i < 0 {
		return nil, &usecase.RemoteRejectionError{Op: "updateLead", Reason: "Lead not found"}
	}

	if input.Email != nil {
		m.leads[i].Email = *input.Email
	}
	if input.Status != nil {
		m.leads[i].Status = *input.Status
	}

	lead := m.leads[i]
	return &lead, nil
}

func (m *Memory) ConvertLead(ctx context.Context, id string, draft entity.OpportunityDraft) (*entity.Opportunity, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return nil, &usecase.RemoteRejectionError{Op: "convertLead", Reason: "Lead not found"}
	}

	opportunity := entity.Opportunity{
		ID:          "opp-" + uuid.New().String()[:8],
		Name:        draft.Name,
		Stage:       draft.Stage,
		Amount:      draft.Amount,
		AccountName: draft.AccountName,
		CreatedFrom: id,
	}

	m.opportunities = append(m.opportunities, opportunity)
	m.leads = append(m.leads[:i], m.leads[i+1:]...)

	return &opportunity, nil
}

// indexOf must be called with the lock held.
func (m *Memory) indexOf(id string) int {
	for i := range m.leads {
		if m.leads[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *Memory) wait(ctx context.Context) error {
	if m.Latency <= 0 {
		return nil
	}
	select {
	case <-time.After(m.Latency):
		return nil
	case <-ctx.Done():
		return &usecase.TransportError{Op: "remote", Err: ctx.Err()}
	}
}
