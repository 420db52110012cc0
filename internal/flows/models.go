// Package flows describes the staged journeys a user walks through
// (authentication, authorization, enrollment) and the planner that caches
// computed plans under the flow_ namespace.
package flows

import (
	"strings"
	"time"

	id "signet/pkg/domain"
	dErrors "signet/pkg/domain-errors"
	platstrings "signet/pkg/platform/strings"
)

// Designation names what a flow is for.
type Designation string

const (
	DesignationAuthentication Designation = "authentication"
	DesignationAuthorization  Designation = "authorization"
	DesignationEnrollment     Designation = "enrollment"
)

func (d Designation) valid() bool {
	switch d {
	case DesignationAuthentication, DesignationAuthorization, DesignationEnrollment:
		return true
	}
	return false
}

// Flow is an ordered journey of stages.
type Flow struct {
	ID          id.FlowID   `json:"id"`
	Slug        string      `json:"slug"`
	Title       string      `json:"title"`
	Designation Designation `json:"designation"`
	// Stages are stage identifiers in execution order.
	Stages    []string  `json:"stages"`
	CreatedAt time.Time `json:"created_at"`
}

// New validates and constructs a flow.
func New(slug, title string, designation Designation, stages []string) (*Flow, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "flow slug cannot be empty")
	}
	if !designation.valid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown flow designation")
	}
	stages = platstrings.DedupeAndTrim(stages)
	if len(stages) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "flow needs at least one stage")
	}
	return &Flow{
		ID:          id.NewFlowID(),
		Slug:        slug,
		Title:       title,
		Designation: designation,
		Stages:      stages,
		CreatedAt:   time.Now(),
	}, nil
}
