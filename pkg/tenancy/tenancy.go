// Package tenancy resolves the bearer credential on an ingestion or read
// request to a tenant ID and checks it is authorized for the requested
// operation, via an embedded Open Policy Agent policy (spec §6: "every
// request is scoped to exactly one tenant").
package tenancy

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/open-policy-agent/opa/rego"

	apperrors "github.com/archlens/archlens/internal/errors"
)

//go:embed policy/authz.rego
var authzPolicy string

// Operation names passed as rego input.operation.
const (
	OperationIngest = "ingest"
	OperationRead   = "read"
)

// Decision is the outcome of authorizing a bearer credential for an
// operation.
type Decision struct {
	TenantID string
	Allowed  bool
}

// Evaluator compiles the embedded policy once and evaluates it per request.
type Evaluator struct {
	allowQuery rego.PreparedEvalQuery
	tenantID   rego.PreparedEvalQuery
}

// NewEvaluator compiles the embedded authz policy.
func NewEvaluator(ctx context.Context) (*Evaluator, error) {
	allowQuery, err := rego.New(
		rego.Query("data.archlens.authz.allow"),
		rego.Module("authz.rego", authzPolicy),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile authz policy: %w", err)
	}

	tenantQuery, err := rego.New(
		rego.Query("data.archlens.authz.tenant_id"),
		rego.Module("authz.rego", authzPolicy),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile authz policy: %w", err)
	}

	return &Evaluator{allowQuery: allowQuery, tenantID: tenantQuery}, nil
}

// Authorize evaluates the policy for token and operation, returning the
// resolved tenant on success. A missing or unauthorized token surfaces as
// an AppError of type Auth so the HTTP layer maps it to 401 without
// leaking policy internals.
func (e *Evaluator) Authorize(ctx context.Context, token, operation string) (Decision, error) {
	if token == "" {
		return Decision{}, apperrors.NewAuthError("missing bearer credential")
	}

	input := map[string]interface{}{
		"token":     token,
		"operation": operation,
	}

	allowResults, err := e.allowQuery.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return Decision{}, apperrors.Wrap(err, apperrors.ErrorTypeDependency, "policy evaluation failed")
	}
	allowed := resultsToBool(allowResults)
	if !allowed {
		return Decision{}, apperrors.NewAuthError("credential is not authorized for this operation")
	}

	tenantResults, err := e.tenantID.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return Decision{}, apperrors.Wrap(err, apperrors.ErrorTypeDependency, "policy evaluation failed")
	}
	tenant, ok := resultsToString(tenantResults)
	if !ok {
		return Decision{}, apperrors.NewAuthError("credential did not resolve to a tenant")
	}

	return Decision{TenantID: tenant, Allowed: true}, nil
}

func resultsToBool(rs rego.ResultSet) bool {
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false
	}
	v, _ := rs[0].Expressions[0].Value.(bool)
	return v
}

func resultsToString(rs rego.ResultSet) (string, bool) {
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return "", false
	}
	v, ok := rs[0].Expressions[0].Value.(string)
	return v, ok
}
