// Package cache holds the in-process working copy of the lead and
// opportunity sets. It is the single owner of both collections: engines
// mutate through its narrow API, everything else reads copies and may
// subscribe to change notifications.
package cache

import (
	"sync"

	"github.com/xavierca1/seller-console/internal/entity"
)

type EntitySet string

const (
	SetLeads         EntitySet = "leads"
	SetOpportunities EntitySet = "opportunities"
)

// Event announces that one entity set changed. Listeners re-read the store;
// the event itself carries no records.
type Event struct {
	Set EntitySet
}

type Listener func(Event)

type Store struct {
	mu            sync.RWMutex
	leads         []entity.Lead
	opportunities []entity.Opportunity
	listeners     []Listener
}

func NewStore() *Store {
	return &Store{}
}

// Subscribe registers a listener invoked synchronously after each mutation.
// Listeners must not mutate the store from inside the callback.
func (s *Store) Subscribe(fn Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// ReplaceAll installs fresh snapshots of both sets, as delivered by the
// initial load or a refresh.
func (s *Store) ReplaceAll(leads []entity.Lead, opportunities []entity.Opportunity) {
	s.mu.Lock()
	s.leads = append([]entity.Lead(nil), leads...)
	s.opportunities = append([]entity.Opportunity(nil), opportunities...)
	s.mu.Unlock()

	s.notify(Event{Set: SetLeads})
	s.notify(Event{Set: SetOpportunities})
}

// Leads returns a copy of the active lead set in insertion order.
func (s *Store) Leads() []entity.Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entity.Lead(nil), s.leads...)
}

func (s *Store) Lead(id string) (entity.Lead, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.leads[i], true
	}
	return entity.Lead{}, false
}

func (s *Store) Opportunities() []entity.Opportunity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entity.Opportunity(nil), s.opportunities...)
}

func (s *Store) Counts() (leads, opportunities int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.leads), len(s.opportunities)
}

// SetLead overwrites the stored record with the same id, keeping its
// position so derived views see a stable order. Returns false when the id is
// not in the active set.
func (s *Store) SetLead(lead entity.Lead) bool {
	s.mu.Lock()
	i := s.indexOf(lead.ID)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.leads[i] = lead
	s.mu.Unlock()

	s.notify(Event{Set: SetLeads})
	return true
}

// RemoveLead retires the id from the active set.
func (s *Store) RemoveLead(id string) bool {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.leads = append(s.leads[:i], s.leads[i+1:]...)
	s.mu.Unlock()

	s.notify(Event{Set: SetLeads})
	return true
}

func (s *Store) AppendOpportunity(opp entity.Opportunity) {
	s.mu.Lock()
	s.opportunities = append(s.opportunities, opp)
	s.mu.Unlock()

	s.notify(Event{Set: SetOpportunities})
}

// ApplyConversion retires the lead and appends the opportunity under one
// lock. Readers never observe the half-applied state where the lead is gone
// but the opportunity missing, or the other way around.
func (s *Store) ApplyConversion(leadID string, opp entity.Opportunity) bool {
	s.mu.Lock()
	i := s.indexOf(leadID)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.leads = append(s.leads[:i], s.leads[i+1:]...)
	s.opportunities = append(s.opportunities, opp)
	s.mu.Unlock()

	s.notify(Event{Set: SetLeads})
	s.notify(Event{Set: SetOpportunities})
	return true
}

// indexOf must be called with the lock held.
func (s *Store) indexOf(id string) int {
	for i := range s.leads {
		if s.leads[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) notify(e Event) {
	s.mu.RLock()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(e)
	}
}
