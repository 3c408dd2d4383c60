package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hajiri-labs/hajiri/internal/domain"
)

// PgxPool is the subset of pgxpool.Pool the repositories need. pgxmock
// implements it too, which keeps the unit tests off a live database.
type PgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// StudentRepositoryInterface defines read access to the external student directory
type StudentRepositoryInterface interface {
	ListIdentityPairs(ctx context.Context) ([]domain.IdentityPair, error)
	GetLabels(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// AttendanceRepositoryInterface defines the attendance ledger operations
type AttendanceRepositoryInterface interface {
	UpsertEvent(ctx context.Context, studentID uuid.UUID, attDate, eventTime string) (*domain.AttendanceRecord, bool, error)
	ListByDate(ctx context.Context, attDate string) ([]domain.AttendanceRecord, error)
}
