package engine

import (
	"context"

	officerdomain "github.com/Reyansh-Niranjan/CogniSecure/internal/officer/domain"
)

// Decision holds what a role may do with the assistant.
type Decision struct {
	AllowQuery     bool
	ListAllLogs    bool
	ManageOfficers bool
}

// Evaluator decides assistant permissions for a caller's role.
type Evaluator interface {
	Evaluate(ctx context.Context, role officerdomain.Role) (Decision, error)
}
