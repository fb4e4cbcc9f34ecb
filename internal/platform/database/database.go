// Package database opens the PostgreSQL connection and keeps the schema in
// step. The schema is small enough that idempotent CREATE IF NOT EXISTS
// statements replace a migration tool.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Schema is the full relational schema. Every statement is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS residents (
	id UUID PRIMARY KEY,
	first_name TEXT NOT NULL,
	middle_name TEXT,
	last_name TEXT NOT NULL,
	suffix TEXT,
	age INT NOT NULL DEFAULT 0,
	sex TEXT NOT NULL DEFAULT '',
	civil_status TEXT NOT NULL DEFAULT '',
	nationality TEXT NOT NULL DEFAULT '',
	religion TEXT NOT NULL DEFAULT '',
	contact_number TEXT,
	email TEXT,
	address TEXT,
	role TEXT NOT NULL DEFAULT 'resident',
	for_review BOOLEAN NOT NULL DEFAULT FALSE,
	verification_status TEXT NOT NULL DEFAULT 'pending',
	verification_comment TEXT,
	verification_decided_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL,
	last_modified TIMESTAMPTZ,
	updated_at TIMESTAMPTZ,
	deleted_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS projects (
	id UUID PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'Planned',
	published BOOLEAN NOT NULL DEFAULT FALSE,
	completed_at TIMESTAMPTZ,
	remarks TEXT,
	uploaded_files TEXT[] NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS project_reactions (
	project_id UUID NOT NULL REFERENCES projects(id),
	user_id UUID NOT NULL,
	kind TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (project_id, user_id)
);

CREATE TABLE IF NOT EXISTS project_feedback (
	id UUID PRIMARY KEY,
	project_id UUID NOT NULL REFERENCES projects(id),
	user_id UUID NOT NULL,
	comment TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS activity_log (
	id UUID PRIMARY KEY,
	actor_id UUID,
	action TEXT NOT NULL,
	model_type TEXT,
	model_id TEXT,
	description TEXT,
	ip_address TEXT,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS activity_log_created_at_idx ON activity_log (created_at);
`

// Open connects, verifies the connection, and applies the schema.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}
