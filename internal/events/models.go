// Package events records what happened in the system: logins, authorizations,
// policy executions, cache maintenance. The dashboard's usage statistics are
// aggregations over this log.
package events

import (
	"time"

	id "signet/pkg/domain"
)

// Action names what an event records.
type Action string

const (
	ActionLogin                Action = "login"
	ActionLoginFailed          Action = "login_failed"
	ActionLogout               Action = "logout"
	ActionAuthorizeApplication Action = "authorize_application"
	ActionTokenIssued          Action = "token_issued"
	ActionPolicyExecution      Action = "policy_execution"
	ActionCacheCleared         Action = "cache_cleared"
	ActionUpdateAvailable      Action = "update_available"
)

// Context field keys shared between recorders and aggregations.
const (
	ContextAuthorizedApplication = "authorized_application"
	ContextCacheKind             = "cache_kind"
	ContextNewVersion            = "new_version"
)

// Event is one recorded occurrence. UserID is nil for events without an
// acting user (system tasks).
type Event struct {
	ID        id.EventID     `json:"id"`
	Action    Action         `json:"action"`
	UserID    *id.UserID     `json:"user_id,omitempty"`
	Context   map[string]any `json:"context"`
	ClientIP  string         `json:"client_ip,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// ApplicationUsage is one row of the dashboard's most-used-applications
// table, aggregated over authorize_application events.
type ApplicationUsage struct {
	// Application is the authorized application's name as recorded in the
	// event context.
	Application string `json:"application"`
	// TotalLogins counts authorization events for the application.
	TotalLogins int `json:"total_logins"`
	// UniqueUsers counts distinct acting users behind those events.
	UniqueUsers int `json:"unique_users"`
}
