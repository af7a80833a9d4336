package usecase

import (
	"fmt"
	"strings"

	"github.com/xavierca1/seller-console/internal/entity"
)

func ValidateOpportunityDraft(draft entity.OpportunityDraft) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(draft.Name) == "" {
		errors = append(errors, ValidationError{"name", "is required"})
	}

	if strings.TrimSpace(draft.AccountName) == "" {
		errors = append(errors, ValidationError{"accountName", "is required"})
	}

	if !draft.Stage.Valid() {
		errors = append(errors, ValidationError{"stage", fmt.Sprintf("unknown stage %q", draft.Stage)})
	} else if !draft.Stage.Open() {
		errors = append(errors, ValidationError{"stage", "a lead cannot be converted into a closed stage"})
	}

	if draft.Amount != nil && *draft.Amount < 0 {
		errors = append(errors, ValidationError{"amount", "must be a non-negative number"})
	}

	return errors
}
