package entity

import "regexp"

type LeadStatus string

const (
	StatusNew         LeadStatus = "new"
	StatusContacted   LeadStatus = "contacted"
	StatusQualified   LeadStatus = "qualified"
	StatusUnqualified LeadStatus = "unqualified"
)

func (s LeadStatus) Valid() bool {
	switch s {
	case StatusNew, StatusContacted, StatusQualified, StatusUnqualified:
		return true
	}
	return false
}

// Lead is a prospect in the working set. The ID is assigned by the remote
// store and never changes. Name, Company, Source and Score are server-owned;
// only Email and Status accept client edits.
type Lead struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Company string     `json:"company"`
	Email   string     `json:"email"`
	Source  string     `json:"source"`
	Score   int        `json:"score"`
	Status  LeadStatus `json:"status"`
}

// emailPattern enforces the local@domain.tld shape: no spaces or extra '@'
// on either side, and at least one dot in the domain.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
