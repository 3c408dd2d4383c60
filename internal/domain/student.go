package domain

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Student is a snapshot of a row in the students table. The directory service
// owns these records; this service only reads them.
type Student struct {
	ID       uuid.UUID `json:"id"`
	RollNo   string    `json:"roll_no"`
	FullName string    `json:"full_name"`
}

// IdentityPair is the (id, roll_no) projection used to build the identity index.
type IdentityPair struct {
	StudentID uuid.UUID
	RollNo    string
}

// studentIDPattern matches canonical UUIDs, version 1-5 with RFC 4122 variant.
// Stricter than uuid.Parse on purpose: roll numbers must never sneak through.
var studentIDPattern = regexp.MustCompile(
	`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[1-5][0-9a-fA-F]{3}-[89abAB][0-9a-fA-F]{3}-[0-9a-fA-F]{12}$`,
)

// IsStudentID reports whether label is syntactically a student UUID as opposed
// to a roll number.
func IsStudentID(label string) bool {
	return studentIDPattern.MatchString(label)
}

// AttendanceRecord is one row of attendance_daily: at most one per
// (student, calendar day). EntryTime is set on the first recognition of the
// day, ExitTime on every later one.
type AttendanceRecord struct {
	ID        uuid.UUID `json:"id"`
	StudentID uuid.UUID `json:"student_id"`
	AttDate   string    `json:"att_date"`   // YYYY-MM-DD in the kiosk's zone
	EntryTime string    `json:"entry_time"` // HH:MM:SS
	ExitTime  *string   `json:"exit_time"`  // nil until the second match
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AttendanceCSVRow is one exported line of the daily report. StudentLabel is
// full_name when present, else roll_no, else the raw id.
type AttendanceCSVRow struct {
	StudentID    string
	StudentLabel string
	AttDate      string
	EntryTime    string
	ExitTime     string
}
