package engine

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/rego"

	officerdomain "github.com/Reyansh-Niranjan/CogniSecure/internal/officer/domain"
)

const policyQuery = "data.cognisecure.assistant"

// rolePolicy is the fixed assistant role policy. It is compiled once at startup.
const rolePolicy = `package cognisecure.assistant

default allow_query := false
default list_all_logs := false
default manage_officers := false

query_roles := {"officer", "supervisor", "admin"}

allow_query if {
	input.officer.role in query_roles
}

list_all_logs if {
	input.officer.role == "admin"
}

manage_officers if {
	input.officer.role == "admin"
}
`

// OPAEvaluator evaluates the assistant role policy with an in-process OPA Rego engine.
type OPAEvaluator struct {
	query rego.PreparedEvalQuery
}

// NewOPAEvaluator compiles the role policy. Returns an error if it does not compile.
func NewOPAEvaluator(ctx context.Context) (*OPAEvaluator, error) {
	pq, err := rego.New(
		rego.Query(policyQuery),
		rego.Module("assistant.rego", rolePolicy),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile role policy: %w", err)
	}
	return &OPAEvaluator{query: pq}, nil
}

// HealthCheck verifies that the compiled policy still evaluates. Returns nil on success.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	_, err := e.Evaluate(ctx, officerdomain.RoleOfficer)
	return err
}

// Evaluate returns the permissions for role. Unknown roles get no permissions.
func (e *OPAEvaluator) Evaluate(ctx context.Context, role officerdomain.Role) (Decision, error) {
	input := map[string]interface{}{
		"officer": map[string]interface{}{
			"role": string(role),
		},
	}
	rs, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return Decision{}, fmt.Errorf("eval role policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return Decision{}, fmt.Errorf("role policy returned no result")
	}
	doc, ok := rs[0].Expressions[0].Value.(map[string]interface{})
	if !ok {
		return Decision{}, fmt.Errorf("role policy returned %T", rs[0].Expressions[0].Value)
	}
	return Decision{
		AllowQuery:     boolField(doc, "allow_query"),
		ListAllLogs:    boolField(doc, "list_all_logs"),
		ManageOfficers: boolField(doc, "manage_officers"),
	}, nil
}

func boolField(doc map[string]interface{}, key string) bool {
	v, ok := doc[key].(bool)
	return ok && v
}
