package policies

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// PostgresStore persists policies and bindings in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, policy *Policy) error {
	query := `
		INSERT INTO policies (id, name, kind, expression, enabled, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(policy.ID),
		policy.Name,
		string(policy.Kind),
		policy.Expression,
		policy.Enabled,
		policy.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert policy: %w", err)
	}
	return nil
}

func (s *PostgresStore) Bind(ctx context.Context, binding Binding) error {
	query := `
		INSERT INTO policy_bindings (policy_id, target_kind, target_id, binding_order)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(binding.PolicyID),
		string(binding.TargetKind),
		binding.TargetID,
		binding.Order,
	)
	if err != nil {
		return fmt.Errorf("insert policy binding: %w", err)
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM policies`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count policies: %w", err)
	}
	return count, nil
}

// CountUnbound counts policies that appear in no binding.
func (s *PostgresStore) CountUnbound(ctx context.Context) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM policies p
		LEFT JOIN policy_bindings b ON b.policy_id = p.id
		WHERE b.policy_id IS NULL
	`
	var count int
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unbound policies: %w", err)
	}
	return count, nil
}
