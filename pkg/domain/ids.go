// Package domain holds the typed identifiers shared across contexts.
//
// IDs are distinct types over uuid.UUID so the compiler rejects cross-type
// assignment (a PolicyID can never be passed where a UserID is expected).
// Construct from external input via the ParseXxxID functions, which enforce
// the invariant that IDs are valid, non-empty, non-nil UUIDs.
package domain

import (
	"github.com/google/uuid"

	dErrors "signet/pkg/domain-errors"
)

type (
	// UserID identifies a user account.
	UserID uuid.UUID
	// ProviderID identifies an authentication provider.
	ProviderID uuid.UUID
	// ApplicationID identifies an application fronting a provider.
	ApplicationID uuid.UUID
	// PolicyID identifies a policy.
	PolicyID uuid.UUID
	// FlowID identifies an execution flow.
	FlowID uuid.UUID
	// EventID identifies a recorded event.
	EventID uuid.UUID
)

// parseUUID is the single validation path for all ID types.
func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid id format")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be nil")
	}
	return parsed, nil
}

// NewUserID returns a random UserID.
func NewUserID() UserID { return UserID(uuid.New()) }

// ParseUserID validates external input into a UserID.
func ParseUserID(s string) (UserID, error) {
	parsed, err := parseUUID(s)
	if err != nil {
		return UserID(uuid.Nil), err
	}
	return UserID(parsed), nil
}

func (id UserID) String() string { return uuid.UUID(id).String() }
func (id UserID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// NewProviderID returns a random ProviderID.
func NewProviderID() ProviderID { return ProviderID(uuid.New()) }

// ParseProviderID validates external input into a ProviderID.
func ParseProviderID(s string) (ProviderID, error) {
	parsed, err := parseUUID(s)
	if err != nil {
		return ProviderID(uuid.Nil), err
	}
	return ProviderID(parsed), nil
}

func (id ProviderID) String() string { return uuid.UUID(id).String() }
func (id ProviderID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// NewApplicationID returns a random ApplicationID.
func NewApplicationID() ApplicationID { return ApplicationID(uuid.New()) }

// ParseApplicationID validates external input into an ApplicationID.
func ParseApplicationID(s string) (ApplicationID, error) {
	parsed, err := parseUUID(s)
	if err != nil {
		return ApplicationID(uuid.Nil), err
	}
	return ApplicationID(parsed), nil
}

func (id ApplicationID) String() string { return uuid.UUID(id).String() }
func (id ApplicationID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// NewPolicyID returns a random PolicyID.
func NewPolicyID() PolicyID { return PolicyID(uuid.New()) }

// ParsePolicyID validates external input into a PolicyID.
func ParsePolicyID(s string) (PolicyID, error) {
	parsed, err := parseUUID(s)
	if err != nil {
		return PolicyID(uuid.Nil), err
	}
	return PolicyID(parsed), nil
}

func (id PolicyID) String() string { return uuid.UUID(id).String() }
func (id PolicyID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// NewFlowID returns a random FlowID.
func NewFlowID() FlowID { return FlowID(uuid.New()) }

// ParseFlowID validates external input into a FlowID.
func ParseFlowID(s string) (FlowID, error) {
	parsed, err := parseUUID(s)
	if err != nil {
		return FlowID(uuid.Nil), err
	}
	return FlowID(parsed), nil
}

func (id FlowID) String() string { return uuid.UUID(id).String() }
func (id FlowID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// NewEventID returns a random EventID.
func NewEventID() EventID { return EventID(uuid.New()) }

// ParseEventID validates external input into an EventID.
func ParseEventID(s string) (EventID, error) {
	parsed, err := parseUUID(s)
	if err != nil {
		return EventID(uuid.Nil), err
	}
	return EventID(parsed), nil
}

func (id EventID) String() string { return uuid.UUID(id).String() }
func (id EventID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
