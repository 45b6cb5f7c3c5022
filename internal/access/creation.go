package access

import (
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"

	"github.com/cloudwalk/lending-registry/internal/identity"
)

// Built-in creation policy modes.
const (
	// CreationPrivileged restricts resource creation to holders of the
	// privileged role.
	CreationPrivileged = "privileged"

	// CreationOpen lets any principal create resources on their own
	// behalf; the creator identity is always the caller.
	CreationOpen = "open"
)

// creationEnv is the evaluation environment for expression-based policies.
type creationEnv struct {
	Creator    string `expr:"creator"`
	Privileged bool   `expr:"privileged"`
}

// CreationPolicy decides who may create resources. Whether creation is
// restricted to role holders or open to arbitrary callers is a deployment
// choice: "privileged", "open", or a boolean expression over
// {creator, privileged}, e.g. `privileged || creator == "ops-1"`.
type CreationPolicy struct {
	spec    string
	program *exprvm.Program
}

// NewCreationPolicy parses a policy spec. An empty spec defaults to
// CreationPrivileged.
func NewCreationPolicy(spec string) (*CreationPolicy, error) {
	switch spec {
	case "", CreationPrivileged:
		return &CreationPolicy{spec: CreationPrivileged}, nil
	case CreationOpen:
		return &CreationPolicy{spec: CreationOpen}, nil
	}

	program, err := exprlang.Compile(spec,
		exprlang.Env(creationEnv{}),
		exprlang.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("compile creation policy %q: %w", spec, err)
	}
	return &CreationPolicy{spec: spec, program: program}, nil
}

// Spec returns the configured policy string.
func (p *CreationPolicy) Spec() string {
	return p.spec
}

// Authorize decides whether creator may create a resource under the given
// privileged-role policy.
func (p *CreationPolicy) Authorize(creator identity.Address, policy Policy) error {
	switch p.spec {
	case CreationOpen:
		return nil
	case CreationPrivileged:
		return policy.Authorize(creator)
	}

	out, err := exprlang.Run(p.program, creationEnv{
		Creator:    creator.String(),
		Privileged: policy.Authorize(creator) == nil,
	})
	if err != nil {
		return fmt.Errorf("evaluate creation policy %q: %w", p.spec, err)
	}
	if allowed, _ := out.(bool); !allowed {
		return &UnauthorizedError{Caller: creator, Role: policy.Name()}
	}
	return nil
}
