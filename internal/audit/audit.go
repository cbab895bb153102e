// Package audit records admin mutations to Postgres. Writes are
// best-effort: a failed audit insert is logged and counted but never
// blocks the mutation it describes.
package audit

import (
	"context"
	"fmt"
	"time"

	"admin-dashboard/internal/util"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Entry is one recorded admin action.
type Entry struct {
	ID         int64     `db:"id"`
	Actor      string    `db:"actor"`
	Action     string    `db:"action"`
	Resource   string    `db:"resource"`
	ResourceID string    `db:"resource_id"`
	RecordedAt time.Time `db:"recorded_at"`
}

// Actions
const (
	ActionEdit   = "edit"
	ActionDelete = "delete"
	ActionCreate = "create"
)

// Resources
const (
	ResourceOrder   = "order"
	ResourceProduct = "product"
)

type Log struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewLog connects to the audit database
func NewLog(databaseURL string) (*Log, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Log{db: db, logger: util.NamedLogger("audit")}, nil
}

// Close closes the database connection
func (l *Log) Close() error {
	return l.db.Close()
}

// Record inserts an audit entry. Failures are logged and counted, not
// returned; callers never fail a confirmed mutation over audit trouble.
func (l *Log) Record(ctx context.Context, actor, action, resource, resourceID string) {
	query := `
		INSERT INTO admin_audit_log (actor, action, resource, resource_id)
		VALUES ($1, $2, $3, $4)`

	if _, err := l.db.ExecContext(ctx, query, actor, action, resource, resourceID); err != nil {
		util.AuditWriteFailuresTotal.Inc()
		l.logger.Error("Failed to record audit entry",
			zap.String("actor", actor),
			zap.String("action", action),
			zap.String("resource", resource),
			zap.String("resource_id", resourceID),
			zap.Error(err))
	}
}

// Recent returns the most recent entries, newest first.
func (l *Log) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []Entry
	err := l.db.SelectContext(ctx, &entries,
		"SELECT * FROM admin_audit_log ORDER BY recorded_at DESC LIMIT $1", limit)
	return entries, err
}
