// internal/infra/database/postgres_journal_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"

	"homework_status_bot/internal/domain/homework"
)

const journalSchema = `CREATE TABLE IF NOT EXISTS homework_notifications (
  id BIGSERIAL PRIMARY KEY,
  homework_name TEXT NOT NULL,
  status TEXT NOT NULL,
  message TEXT NOT NULL,
  delivered BOOLEAN NOT NULL,
  error TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

type PostgresJournalRepository struct {
	db *sql.DB
}

func NewPostgresJournalRepository(db *sql.DB) *PostgresJournalRepository {
	return &PostgresJournalRepository{db: db}
}

// EnsureSchema creates the journal table if it does not exist yet.
func (r *PostgresJournalRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, journalSchema); err != nil {
		return fmt.Errorf("error creating homework_notifications table: %w", err)
	}
	return nil
}

func (r *PostgresJournalRepository) RecordDelivery(ctx context.Context, d *homework.Delivery) error {
	query := `INSERT INTO homework_notifications (homework_name, status, message, delivered, error)
               VALUES ($1, $2, $3, $4, $5)
               RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, d.HomeworkName, string(d.Status), d.Message, d.Delivered, d.Error).
		Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return fmt.Errorf("error recording notification for homework %q: %w", d.HomeworkName, err)
	}
	return nil
}
