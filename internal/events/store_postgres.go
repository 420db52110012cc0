package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "signet/pkg/domain"
)

// PostgresStore persists the event log in PostgreSQL. Context payloads live
// in a JSONB column so the usage aggregation can group on fields inside them.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event *Event) error {
	payload, err := json.Marshal(event.Context)
	if err != nil {
		return fmt.Errorf("marshal event context: %w", err)
	}

	var userID any
	if event.UserID != nil {
		userID = uuid.UUID(*event.UserID)
	}

	query := `
		INSERT INTO events (id, action, user_id, context, client_ip, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = s.db.ExecContext(ctx, query,
		uuid.UUID(event.ID),
		string(event.Action),
		userID,
		payload,
		event.ClientIP,
		event.UserAgent,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	query := `
		SELECT id, action, user_id, context, client_ip, user_agent, created_at
		FROM events
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *PostgresStore) ListByActions(ctx context.Context, actions []Action, limit int) ([]Event, error) {
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = string(a)
	}

	query := `
		SELECT id, action, user_id, context, client_ip, user_agent, created_at
		FROM events
		WHERE action = ANY($1::text[])
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, pq.Array(names), limit)
	if err != nil {
		return nil, fmt.Errorf("list events by action: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// TopApplications groups authorization events by the application recorded in
// their context. Events without the field never make it into a group.
func (s *PostgresStore) TopApplications(ctx context.Context, limit int) ([]ApplicationUsage, error) {
	query := `
		SELECT context->>'authorized_application' AS application,
		       COUNT(*) AS total_logins,
		       COUNT(DISTINCT user_id) AS unique_users
		FROM events
		WHERE action = $1
		  AND context->>'authorized_application' IS NOT NULL
		GROUP BY application
		ORDER BY total_logins DESC, application
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, string(ActionAuthorizeApplication), limit)
	if err != nil {
		return nil, fmt.Errorf("aggregate application usage: %w", err)
	}
	defer rows.Close()

	var usage []ApplicationUsage
	for rows.Next() {
		var row ApplicationUsage
		if err := rows.Scan(&row.Application, &row.TotalLogins, &row.UniqueUsers); err != nil {
			return nil, fmt.Errorf("scan application usage: %w", err)
		}
		usage = append(usage, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate application usage: %w", err)
	}
	return usage, nil
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var out []Event
	for rows.Next() {
		var (
			event   Event
			rawID   uuid.UUID
			rawUser uuid.NullUUID
			payload []byte
			action  string
		)
		err := rows.Scan(&rawID, &action, &rawUser, &payload, &event.ClientIP, &event.UserAgent, &event.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		event.ID = id.EventID(rawID)
		event.Action = Action(action)
		if rawUser.Valid {
			userID := id.UserID(rawUser.UUID)
			event.UserID = &userID
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &event.Context); err != nil {
				return nil, fmt.Errorf("decode event context: %w", err)
			}
		}
		out = append(out, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}
