package providers

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "signet/pkg/domain"
	"signet/pkg/platform/sentinel"
)

// PostgresStore persists providers and applications in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateProvider(ctx context.Context, provider *Provider) error {
	query := `
		INSERT INTO providers (id, name, kind, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(provider.ID),
		provider.Name,
		string(provider.Kind),
		provider.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert provider: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateApplication(ctx context.Context, app *Application) error {
	query := `
		INSERT INTO applications (id, name, slug, provider_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (slug) DO NOTHING
	`
	var providerID any
	if app.ProviderID != nil {
		providerID = uuid.UUID(*app.ProviderID)
	}
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(app.ID),
		app.Name,
		app.Slug,
		providerID,
		app.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert application rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("application slug %q: %w", app.Slug, sentinel.ErrConflict)
	}
	return nil
}

func (s *PostgresStore) CountProviders(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM providers`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count providers: %w", err)
	}
	return count, nil
}

// ListWithoutApplication finds providers that no application references.
func (s *PostgresStore) ListWithoutApplication(ctx context.Context) ([]Provider, error) {
	query := `
		SELECT p.id, p.name, p.kind, p.created_at
		FROM providers p
		LEFT JOIN applications a ON a.provider_id = p.id
		WHERE a.id IS NULL
		ORDER BY p.name
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list orphaned providers: %w", err)
	}
	defer rows.Close()

	var orphaned []Provider
	for rows.Next() {
		var (
			provider Provider
			rawID    uuid.UUID
			kind     string
		)
		if err := rows.Scan(&rawID, &provider.Name, &kind, &provider.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan provider: %w", err)
		}
		provider.ID = id.ProviderID(rawID)
		provider.Kind = Kind(kind)
		orphaned = append(orphaned, provider)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate providers: %w", err)
	}
	return orphaned, nil
}
