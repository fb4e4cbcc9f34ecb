package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"civreg/internal/residents/models"
	id "civreg/pkg/domain"
	"civreg/pkg/platform/sentinel"
)

// Postgres persists residents in PostgreSQL. Mutations that depend on current
// state run inside a transaction with a row lock so each transition is an
// atomic read-modify-write.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const residentColumns = `
	id, first_name, middle_name, last_name, suffix,
	age, sex, civil_status, nationality, religion,
	contact_number, email, address,
	role, for_review,
	verification_status, verification_comment, verification_decided_at,
	created_at, last_modified, updated_at, deleted_at`

func (s *Postgres) Create(ctx context.Context, r *models.Resident) error {
	query := `
		INSERT INTO residents (` + residentColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)
	`
	_, err := s.db.ExecContext(ctx, query, residentArgs(r)...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert resident: %w", err)
	}
	return nil
}

func (s *Postgres) Save(ctx context.Context, r *models.Resident) error {
	query := `
		UPDATE residents SET
			first_name = $2, middle_name = $3, last_name = $4, suffix = $5,
			age = $6, sex = $7, civil_status = $8, nationality = $9, religion = $10,
			contact_number = $11, email = $12, address = $13,
			role = $14, for_review = $15,
			verification_status = $16, verification_comment = $17, verification_decided_at = $18,
			created_at = $19, last_modified = $20, updated_at = $21, deleted_at = $22
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, residentArgs(r)...)
	if err != nil {
		return fmt.Errorf("update resident: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update resident: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, residentID id.ResidentID) (*models.Resident, error) {
	query := `SELECT ` + residentColumns + ` FROM residents WHERE id = $1`
	row := s.db.QueryRowContext(ctx, query, uuid.UUID(residentID))
	return scanResident(row)
}

func (s *Postgres) List(ctx context.Context) ([]*models.Resident, error) {
	return s.list(ctx, `SELECT `+residentColumns+` FROM residents WHERE deleted_at IS NULL`)
}

func (s *Postgres) ListDeleted(ctx context.Context) ([]*models.Resident, error) {
	return s.list(ctx, `SELECT `+residentColumns+` FROM residents WHERE deleted_at IS NOT NULL`)
}

func (s *Postgres) list(ctx context.Context, query string) ([]*models.Resident, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list residents: %w", err)
	}
	defer rows.Close()

	var out []*models.Resident
	for rows.Next() {
		r, err := scanResident(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Mutate locks the resident row, applies fn, and writes the result back in
// one transaction. fn returning an error rolls back without persisting.
func (s *Postgres) Mutate(ctx context.Context, residentID id.ResidentID, fn func(*models.Resident) error) (*models.Resident, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin mutate: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `SELECT ` + residentColumns + ` FROM residents WHERE id = $1 FOR UPDATE`
	r, err := scanResident(tx.QueryRowContext(ctx, query, uuid.UUID(residentID)))
	if err != nil {
		return nil, err
	}
	if err := fn(r); err != nil {
		return nil, err
	}

	update := `
		UPDATE residents SET
			first_name = $2, middle_name = $3, last_name = $4, suffix = $5,
			age = $6, sex = $7, civil_status = $8, nationality = $9, religion = $10,
			contact_number = $11, email = $12, address = $13,
			role = $14, for_review = $15,
			verification_status = $16, verification_comment = $17, verification_decided_at = $18,
			created_at = $19, last_modified = $20, updated_at = $21, deleted_at = $22
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, update, residentArgs(r)...); err != nil {
		return nil, fmt.Errorf("write mutated resident: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit mutate: %w", err)
	}
	return r, nil
}

func (s *Postgres) SoftDelete(ctx context.Context, residentID id.ResidentID, now time.Time) error {
	_, err := s.Mutate(ctx, residentID, func(r *models.Resident) error {
		if r.IsDeleted() {
			return sentinel.ErrInvalidState
		}
		r.MarkDeleted(now)
		return nil
	})
	return err
}

func (s *Postgres) Restore(ctx context.Context, residentID id.ResidentID) error {
	_, err := s.Mutate(ctx, residentID, func(r *models.Resident) error {
		if !r.IsDeleted() {
			return sentinel.ErrInvalidState
		}
		r.ClearDeleted()
		return nil
	})
	return err
}

func residentArgs(r *models.Resident) []any {
	var decidedAt sql.NullTime
	if !r.Verification.DecidedAt.IsZero() {
		decidedAt = sql.NullTime{Time: r.Verification.DecidedAt, Valid: true}
	}
	return []any{
		uuid.UUID(r.ID),
		r.FirstName, nullString(r.MiddleName), r.LastName, nullString(r.Suffix),
		r.Age, r.Sex, r.CivilStatus, r.Nationality, r.Religion,
		nullString(r.ContactNumber), nullString(r.Email), nullString(r.Address),
		string(r.Role), r.ForReview,
		string(r.Verification.Status), nullString(r.Verification.Comment), decidedAt,
		r.CreatedAt, nullTimePtr(r.LastModified), nullTimePtr(r.UpdatedAt), nullTimePtr(r.DeletedAt),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResident(row rowScanner) (*models.Resident, error) {
	var (
		r          models.Resident
		residentID uuid.UUID
		middle     sql.NullString
		suffix     sql.NullString
		contact    sql.NullString
		email      sql.NullString
		address    sql.NullString
		role       string
		status     string
		comment    sql.NullString
		decidedAt  sql.NullTime
		modified   sql.NullTime
		updated    sql.NullTime
		deleted    sql.NullTime
	)
	err := row.Scan(
		&residentID,
		&r.FirstName, &middle, &r.LastName, &suffix,
		&r.Age, &r.Sex, &r.CivilStatus, &r.Nationality, &r.Religion,
		&contact, &email, &address,
		&role, &r.ForReview,
		&status, &comment, &decidedAt,
		&r.CreatedAt, &modified, &updated, &deleted,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan resident: %w", err)
	}

	r.ID = id.ResidentID(residentID)
	r.MiddleName = middle.String
	r.Suffix = suffix.String
	r.ContactNumber = contact.String
	r.Email = email.String
	r.Address = address.String
	r.Role = models.Role(role)
	r.Verification = models.VerificationDecision{
		Status:  models.VerificationStatus(status),
		Comment: comment.String,
	}
	if decidedAt.Valid {
		r.Verification.DecidedAt = decidedAt.Time
	}
	r.LastModified = timePtr(modified)
	r.UpdatedAt = timePtr(updated)
	r.DeletedAt = timePtr(deleted)
	return &r, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	value := t.Time
	return &value
}
