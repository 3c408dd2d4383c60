package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hajiri-labs/hajiri/internal/domain"
)

type StudentRepository struct {
	pool PgxPool
}

func NewStudentRepository(pool PgxPool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// ListIdentityPairs returns every (id, roll_no) pair for the identity index
func (r *StudentRepository) ListIdentityPairs(ctx context.Context) ([]domain.IdentityPair, error) {
	query := `
		SELECT id, roll_no
		FROM students
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list identity pairs: %w", err)
	}
	defer rows.Close()

	var pairs []domain.IdentityPair
	for rows.Next() {
		var p domain.IdentityPair
		if err := rows.Scan(&p.StudentID, &p.RollNo); err != nil {
			return nil, fmt.Errorf("scan identity pair: %w", err)
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list identity pairs: %w", err)
	}

	return pairs, nil
}

// GetLabels returns a display label per student id for the given set,
// preferring full_name, then roll_no, then the raw id.
func (r *StudentRepository) GetLabels(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	labels := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return labels, nil
	}

	query := `
		SELECT id, COALESCE(NULLIF(full_name, ''), NULLIF(roll_no, ''), id::text)
		FROM students
		WHERE id = ANY($1)
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get student labels: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var label string
		if err := rows.Scan(&id, &label); err != nil {
			return nil, fmt.Errorf("scan student label: %w", err)
		}
		labels[id] = label
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get student labels: %w", err)
	}

	return labels, nil
}
