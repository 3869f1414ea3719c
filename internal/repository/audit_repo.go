package repository

import (
	"context"
	"database/sql"
	"time"
)

type AuditLogRepository struct {
	db *sql.DB
}

func NewAuditLogRepository(db *sql.DB) *AuditLogRepository {
	return &AuditLogRepository{db}
}

// Append writes one immutable audit entry.
func (r *AuditLogRepository) Append(ctx context.Context, eventType, payload string) error {
	query := `INSERT INTO audit_log (event_type, payload, created_at) VALUES (?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, eventType, payload, time.Now())
	return err
}
