package reconcile

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// Executor runs a single DDL statement.
type Executor interface {
	ExecDDL(ctx context.Context, stmt string) (int64, error)
}

// ExecContexter is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type ExecContexter interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SQLExecutor runs statements on a borrowed connection. Commit and rollback
// are left to the driver's autocommit.
type SQLExecutor struct {
	DB ExecContexter
}

// NewSQLExecutor wraps db.
func NewSQLExecutor(db ExecContexter) *SQLExecutor {
	return &SQLExecutor{DB: db}
}

// ExecDDL implements Executor. Drivers that do not report affected rows for
// DDL yield 0.
func (e *SQLExecutor) ExecDDL(ctx context.Context, stmt string) (int64, error) {
	res, err := e.DB.ExecContext(ctx, stmt)
	if err != nil {
		return 0, fmt.Errorf("exec %q: %w", stmt, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// RecordingExecutor collects statements instead of running them.
type RecordingExecutor struct {
	mu         sync.Mutex
	statements []string
}

// ExecDDL implements Executor.
func (r *RecordingExecutor) ExecDDL(_ context.Context, stmt string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statements = append(r.statements, stmt)
	return 0, nil
}

// Statements returns the recorded statements in order.
func (r *RecordingExecutor) Statements() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.statements...)
}
