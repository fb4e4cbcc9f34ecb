package activity

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "civreg/pkg/domain"
)

// PostgresStore persists activity entries in the activity_log table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, entry Entry) error {
	var actorID any
	if entry.ActorID != nil {
		actorID = uuid.UUID(*entry.ActorID)
	}
	query := `
		INSERT INTO activity_log (id, actor_id, action, model_type, model_id, description, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(entry.ID),
		actorID,
		entry.Action,
		entry.ModelType,
		entry.ModelID,
		entry.Description,
		entry.IPAddress,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert activity entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Entry, error) {
	query := `
		SELECT id, actor_id, action, model_type, model_id, description, ip_address, created_at
		FROM activity_log
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list activity entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			entryID uuid.UUID
			actor   uuid.NullUUID
		)
		if err := rows.Scan(&entryID, &actor, &e.Action, &e.ModelType, &e.ModelID, &e.Description, &e.IPAddress, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity entry: %w", err)
		}
		e.ID = id.ActivityID(entryID)
		if actor.Valid {
			actorID := id.UserID(actor.UUID)
			e.ActorID = &actorID
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM activity_log WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune activity entries: %w", err)
	}
	return res.RowsAffected()
}
