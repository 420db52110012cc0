package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// EnsureSchema applies the idempotent DDL. The statements run on every start;
// real migrations arrive when the schema stops being append-only.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL DEFAULT '',
			is_superuser BOOLEAN NOT NULL DEFAULT FALSE,
			is_anonymous BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS providers (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			kind TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS applications (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			provider_id UUID REFERENCES providers(id) ON DELETE SET NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS policies (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			kind TEXT NOT NULL,
			expression TEXT NOT NULL DEFAULT '',
			enabled BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS policy_bindings (
			policy_id UUID NOT NULL REFERENCES policies(id) ON DELETE CASCADE,
			target_kind TEXT NOT NULL,
			target_id TEXT NOT NULL,
			binding_order INT NOT NULL DEFAULT 0,
			PRIMARY KEY (policy_id, target_kind, target_id)
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			id UUID PRIMARY KEY,
			action TEXT NOT NULL,
			user_id UUID,
			context JSONB NOT NULL DEFAULT '{}',
			client_ip TEXT NOT NULL DEFAULT '',
			user_agent TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS events_action_created_idx ON events (action, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS events_authorized_application_idx
			ON events ((context->>'authorized_application'))
			WHERE action = 'authorize_application'`,
	}

	for _, statement := range statements {
		if _, err := db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
