package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"civreg/internal/projects/models"
	id "civreg/pkg/domain"
	"civreg/pkg/platform/sentinel"
)

// Postgres persists projects, reactions, and feedback in PostgreSQL.
// State-dependent project mutations take a row lock so each transition is an
// atomic read-modify-write.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const projectColumns = `
	id, title, description, status, published,
	completed_at, remarks, uploaded_files,
	created_at, updated_at`

func (s *Postgres) Create(ctx context.Context, p *models.Project) error {
	query := `
		INSERT INTO projects (` + projectColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`
	_, err := s.db.ExecContext(ctx, query, projectArgs(p)...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (s *Postgres) Save(ctx context.Context, p *models.Project) error {
	res, err := s.db.ExecContext(ctx, projectUpdateQuery, projectArgs(p)...)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

const projectUpdateQuery = `
	UPDATE projects SET
		title = $2, description = $3, status = $4, published = $5,
		completed_at = $6, remarks = $7, uploaded_files = $8,
		created_at = $9, updated_at = $10
	WHERE id = $1
`

func (s *Postgres) FindByID(ctx context.Context, projectID id.ProjectID) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	return scanProject(s.db.QueryRowContext(ctx, query, uuid.UUID(projectID)))
}

func (s *Postgres) List(ctx context.Context) ([]*models.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var out []*models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Mutate locks the project row, applies fn, and writes the result back in
// one transaction. fn returning an error rolls back without persisting.
func (s *Postgres) Mutate(ctx context.Context, projectID id.ProjectID, fn func(*models.Project) error) (*models.Project, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin mutate: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1 FOR UPDATE`
	p, err := scanProject(tx.QueryRowContext(ctx, query, uuid.UUID(projectID)))
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, projectUpdateQuery, projectArgs(p)...); err != nil {
		return nil, fmt.Errorf("write mutated project: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit mutate: %w", err)
	}
	return p, nil
}

// SaveReaction upserts a user's vote and returns the kind it replaced, empty
// when the user had not reacted before. Select and upsert run in one
// transaction with a row lock so concurrent votes by the same user serialize.
func (s *Postgres) SaveReaction(ctx context.Context, r models.Reaction) (models.ReactionKind, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin save reaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var previous models.ReactionKind
	var existing string
	err = tx.QueryRowContext(ctx,
		`SELECT kind FROM project_reactions WHERE project_id = $1 AND user_id = $2 FOR UPDATE`,
		uuid.UUID(r.ProjectID), uuid.UUID(r.UserID),
	).Scan(&existing)
	switch {
	case err == nil:
		previous = models.ReactionKind(existing)
	case errors.Is(err, sql.ErrNoRows):
	default:
		return "", fmt.Errorf("load reaction: %w", err)
	}

	upsert := `
		INSERT INTO project_reactions (project_id, user_id, kind, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (project_id, user_id) DO UPDATE SET kind = EXCLUDED.kind
	`
	if _, err := tx.ExecContext(ctx, upsert,
		uuid.UUID(r.ProjectID), uuid.UUID(r.UserID), string(r.Kind), r.CreatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return "", sentinel.ErrNotFound
		}
		return "", fmt.Errorf("save reaction: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit save reaction: %w", err)
	}
	return previous, nil
}

func (s *Postgres) ListReactions(ctx context.Context, projectID id.ProjectID) ([]models.Reaction, error) {
	query := `
		SELECT project_id, user_id, kind, created_at
		FROM project_reactions WHERE project_id = $1
	`
	return s.listReactions(ctx, query, uuid.UUID(projectID))
}

func (s *Postgres) ListAllReactions(ctx context.Context) ([]models.Reaction, error) {
	return s.listReactions(ctx, `SELECT project_id, user_id, kind, created_at FROM project_reactions`)
}

func (s *Postgres) listReactions(ctx context.Context, query string, args ...any) ([]models.Reaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reactions: %w", err)
	}
	defer rows.Close()

	var out []models.Reaction
	for rows.Next() {
		var (
			r         models.Reaction
			projectID uuid.UUID
			userID    uuid.UUID
			kind      string
		)
		if err := rows.Scan(&projectID, &userID, &kind, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reaction: %w", err)
		}
		r.ProjectID = id.ProjectID(projectID)
		r.UserID = id.UserID(userID)
		r.Kind = models.ReactionKind(kind)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Postgres) AddFeedback(ctx context.Context, f models.Feedback) error {
	query := `
		INSERT INTO project_feedback (id, project_id, user_id, comment, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(f.ID), uuid.UUID(f.ProjectID), uuid.UUID(f.UserID), f.Comment, f.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

func (s *Postgres) ListFeedback(ctx context.Context, projectID id.ProjectID) ([]models.Feedback, error) {
	query := `
		SELECT id, project_id, user_id, comment, created_at
		FROM project_feedback WHERE project_id = $1
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(projectID))
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	var out []models.Feedback
	for rows.Next() {
		var (
			f          models.Feedback
			feedbackID uuid.UUID
			project    uuid.UUID
			user       uuid.UUID
		)
		if err := rows.Scan(&feedbackID, &project, &user, &f.Comment, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		f.ID = id.FeedbackID(feedbackID)
		f.ProjectID = id.ProjectID(project)
		f.UserID = id.UserID(user)
		out = append(out, f)
	}
	return out, rows.Err()
}

func projectArgs(p *models.Project) []any {
	var completed sql.NullTime
	if p.CompletedAt != nil {
		completed = sql.NullTime{Time: *p.CompletedAt, Valid: true}
	}
	var remarks sql.NullString
	if p.Remarks != "" {
		remarks = sql.NullString{String: p.Remarks, Valid: true}
	}
	return []any{
		uuid.UUID(p.ID),
		p.Title, p.Description, string(p.Status), p.Published,
		completed, remarks, pq.Array(p.UploadedFiles),
		p.CreatedAt, p.UpdatedAt,
	}
}

func scanProject(row interface{ Scan(...any) error }) (*models.Project, error) {
	var (
		p         models.Project
		projectID uuid.UUID
		status    string
		completed sql.NullTime
		remarks   sql.NullString
		files     pq.StringArray
	)
	err := row.Scan(
		&projectID,
		&p.Title, &p.Description, &status, &p.Published,
		&completed, &remarks, &files,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan project: %w", err)
	}
	p.ID = id.ProjectID(projectID)
	p.Status = models.Status(status)
	if completed.Valid {
		t := completed.Time
		p.CompletedAt = &t
	}
	p.Remarks = remarks.String
	p.UploadedFiles = files
	return &p, nil
}
