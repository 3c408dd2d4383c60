package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hajiri-labs/hajiri/internal/domain"
)

type AttendanceRepository struct {
	pool PgxPool
}

func NewAttendanceRepository(pool PgxPool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// UpsertEvent records one recognition event for (studentID, attDate) as a
// single statement, so concurrent recognitions of the same person cannot race
// a separate select against the write. The first event of a day inserts the
// row with entry_time set; every later event that day overwrites exit_time
// with the new event time (last recognition wins).
// Returns the resulting record and whether this event opened the day (entry).
func (r *AttendanceRepository) UpsertEvent(ctx context.Context, studentID uuid.UUID, attDate, eventTime string) (*domain.AttendanceRecord, bool, error) {
	query := `
		INSERT INTO attendance_daily (id, student_id, att_date, entry_time)
		VALUES ($1, $2, $3::date, $4::time)
		ON CONFLICT (student_id, att_date)
		DO UPDATE SET exit_time = EXCLUDED.entry_time
		RETURNING id, student_id,
			to_char(att_date, 'YYYY-MM-DD'),
			to_char(entry_time, 'HH24:MI:SS'),
			to_char(exit_time, 'HH24:MI:SS'),
			notes, created_at,
			(xmax = 0) AS inserted
	`

	var rec domain.AttendanceRecord
	var inserted bool

	err := r.pool.QueryRow(ctx, query, uuid.New(), studentID, attDate, eventTime).Scan(
		&rec.ID,
		&rec.StudentID,
		&rec.AttDate,
		&rec.EntryTime,
		&rec.ExitTime,
		&rec.Notes,
		&rec.CreatedAt,
		&inserted,
	)
	if err != nil {
		return nil, false, fmt.Errorf("upsert attendance event: %w", err)
	}

	return &rec, inserted, nil
}

// ListByDate returns the ledger rows for one calendar day, ordered by entry time
func (r *AttendanceRepository) ListByDate(ctx context.Context, attDate string) ([]domain.AttendanceRecord, error) {
	query := `
		SELECT id, student_id,
			to_char(att_date, 'YYYY-MM-DD'),
			to_char(entry_time, 'HH24:MI:SS'),
			to_char(exit_time, 'HH24:MI:SS'),
			notes, created_at
		FROM attendance_daily
		WHERE att_date = $1::date
		ORDER BY entry_time ASC
	`

	rows, err := r.pool.Query(ctx, query, attDate)
	if err != nil {
		return nil, fmt.Errorf("list attendance by date: %w", err)
	}
	defer rows.Close()

	var records []domain.AttendanceRecord
	for rows.Next() {
		var rec domain.AttendanceRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.StudentID,
			&rec.AttDate,
			&rec.EntryTime,
			&rec.ExitTime,
			&rec.Notes,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan attendance record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list attendance by date: %w", err)
	}

	return records, nil
}
