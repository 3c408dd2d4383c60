// Package directory caches the (student id, roll number) identity index.
//
// The students table is owned by an external admin system; this service only
// keeps a best-effort snapshot of it. Enrolled face files may be named by
// either namespace, so resolution works in both directions.
package directory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/hajiri-labs/hajiri/internal/domain"
)

// StudentLister provides the identity pairs the index is built from
type StudentLister interface {
	ListIdentityPairs(ctx context.Context) ([]domain.IdentityPair, error)
}

// index is an immutable bidirectional snapshot. Both maps always cover the
// same keyset; a new index replaces the old one wholesale.
type index struct {
	idByRoll map[string]uuid.UUID
	rollByID map[uuid.UUID]string
}

// Directory resolves between student UUIDs and roll numbers using a cached
// snapshot of the students table. Reads take the current snapshot pointer;
// Refresh swaps in a complete replacement, so readers never observe a
// half-built index.
type Directory struct {
	lister StudentLister

	mu   sync.RWMutex
	snap *index
}

func New(lister StudentLister) *Directory {
	return &Directory{
		lister: lister,
		snap: &index{
			idByRoll: map[string]uuid.UUID{},
			rollByID: map[uuid.UUID]string{},
		},
	}
}

// Refresh rebuilds the snapshot from the student directory. On failure the
// previous snapshot stays in place; callers are expected to log and carry on
// rather than fail the request that triggered the refresh.
func (d *Directory) Refresh(ctx context.Context) error {
	pairs, err := d.lister.ListIdentityPairs(ctx)
	if err != nil {
		return fmt.Errorf("refresh student index: %w", err)
	}

	next := &index{
		idByRoll: make(map[string]uuid.UUID, len(pairs)),
		rollByID: make(map[uuid.UUID]string, len(pairs)),
	}
	for _, p := range pairs {
		if p.StudentID == uuid.Nil || p.RollNo == "" {
			continue
		}
		next.idByRoll[p.RollNo] = p.StudentID
		next.rollByID[p.StudentID] = p.RollNo
	}

	d.mu.Lock()
	d.snap = next
	d.mu.Unlock()

	return nil
}

func (d *Directory) current() *index {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snap
}

// ResolveStudentID maps an enrolled-face label to a student UUID. UUID-shaped
// labels pass through untouched; anything else is treated as a roll number and
// looked up in the snapshot.
func (d *Directory) ResolveStudentID(label string) (uuid.UUID, bool) {
	if domain.IsStudentID(label) {
		id, err := uuid.Parse(label)
		return id, err == nil
	}

	id, ok := d.current().idByRoll[label]
	return id, ok
}

// ResolveRollNo is the inverse mapping: UUID-shaped labels are looked up in
// the snapshot, everything else is assumed to already be a roll number.
func (d *Directory) ResolveRollNo(label string) (string, bool) {
	if domain.IsStudentID(label) {
		id, err := uuid.Parse(label)
		if err != nil {
			return "", false
		}
		roll, ok := d.current().rollByID[id]
		return roll, ok
	}

	return label, true
}

// Size returns the number of students in the current snapshot
func (d *Directory) Size() int {
	return len(d.current().rollByID)
}
