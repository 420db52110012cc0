// Package policies holds access policies, their bindings to targets, and the
// evaluation engine whose results populate the policy_ cache namespace.
package policies

import (
	"strings"
	"time"

	id "signet/pkg/domain"
	dErrors "signet/pkg/domain-errors"
)

// Kind selects the evaluation strategy for a policy.
type Kind string

const (
	KindExpression Kind = "expression"
	KindReputation Kind = "reputation"
	KindPassword   Kind = "password"
)

func (k Kind) valid() bool {
	switch k {
	case KindExpression, KindReputation, KindPassword:
		return true
	}
	return false
}

// TargetKind names what a binding attaches a policy to.
type TargetKind string

const (
	TargetApplication TargetKind = "application"
	TargetFlow        TargetKind = "flow"
)

// Policy is a named access rule.
type Policy struct {
	ID        id.PolicyID `json:"id"`
	Name      string      `json:"name"`
	Kind      Kind        `json:"kind"`
	// Expression is the rule body for expression policies; the other kinds
	// ignore it.
	Expression string    `json:"expression,omitempty"`
	Enabled    bool      `json:"enabled"`
	CreatedAt  time.Time `json:"created_at"`
}

// Binding attaches a policy to an application or flow. Order decides
// evaluation sequence within a target.
type Binding struct {
	PolicyID   id.PolicyID `json:"policy_id"`
	TargetKind TargetKind  `json:"target_kind"`
	TargetID   string      `json:"target_id"`
	Order      int         `json:"order"`
}

// New validates and constructs an enabled policy.
func New(name string, kind Kind, expression string) (*Policy, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "policy name cannot be empty")
	}
	if !kind.valid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown policy kind")
	}
	if kind == KindExpression && strings.TrimSpace(expression) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "expression policy needs an expression")
	}
	return &Policy{
		ID:         id.NewPolicyID(),
		Name:       name,
		Kind:       kind,
		Expression: expression,
		Enabled:    true,
		CreatedAt:  time.Now(),
	}, nil
}
