package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hajiri-labs/hajiri/internal/clock"
	"github.com/hajiri-labs/hajiri/internal/domain"
	"github.com/hajiri-labs/hajiri/internal/facestore"
	"github.com/hajiri-labs/hajiri/internal/matcher"
	"github.com/hajiri-labs/hajiri/internal/provider"
)

// IdentityResolver maps between student UUIDs and roll numbers
type IdentityResolver interface {
	Refresh(ctx context.Context) error
	ResolveStudentID(label string) (uuid.UUID, bool)
	ResolveRollNo(label string) (string, bool)
}

// FaceStore owns the enrollment directory and the candidate list
type FaceStore interface {
	Reload(ctx context.Context) error
	Snapshot() []facestore.EnrolledFace
	Put(label, format string, data []byte) (string, error)
}

// StudentReader is the directory lookup the CSV export needs
type StudentReader interface {
	GetLabels(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// AttendanceLedger is the per-(student, day) record store
type AttendanceLedger interface {
	UpsertEvent(ctx context.Context, studentID uuid.UUID, attDate, eventTime string) (*domain.AttendanceRecord, bool, error)
	ListByDate(ctx context.Context, attDate string) ([]domain.AttendanceRecord, error)
}

// RecognitionStatus classifies the outcome of one recognition request
type RecognitionStatus string

const (
	StatusNoFace       RecognitionStatus = "no_face"
	StatusNoCandidates RecognitionStatus = "no_candidates"
	StatusUnknown      RecognitionStatus = "unknown"
	StatusUnmappable   RecognitionStatus = "unmappable"
	StatusEntry        RecognitionStatus = "entry"
	StatusExit         RecognitionStatus = "exit"
)

// RecognitionResult is returned for every recognition that is not a hard
// error: near-misses like "unknown face" are outcomes, not failures.
type RecognitionResult struct {
	Status   RecognitionStatus
	Message  string
	RollNo   *string
	Distance *float64
}

// EnrollResult reports where an enrollment image was stored
type EnrollResult struct {
	File      string
	Label     string
	StudentID *uuid.UUID // nil when enrolled under an unmapped roll number
}

// AttendanceService wires the face store, identity index, encoder and ledger
// into the kiosk's three operations: enroll, recognize, export.
type AttendanceService struct {
	faces     FaceStore
	directory IdentityResolver
	students  StudentReader
	ledger    AttendanceLedger
	encoder   provider.FaceProvider
	matcher   *matcher.Matcher
	clock     *clock.Clock
	logger    *slog.Logger
}

func NewAttendanceService(
	faces FaceStore,
	dir IdentityResolver,
	students StudentReader,
	ledger AttendanceLedger,
	encoder provider.FaceProvider,
	m *matcher.Matcher,
	clk *clock.Clock,
	logger *slog.Logger,
) *AttendanceService {
	return &AttendanceService{
		faces:     faces,
		directory: dir,
		students:  students,
		ledger:    ledger,
		encoder:   encoder,
		matcher:   m,
		clock:     clk,
		logger:    logger,
	}
}

// Enroll stores the reference image for a student UUID and rebuilds the
// caches. The image must decode and contain at least one detectable face;
// otherwise nothing is written.
func (s *AttendanceService) Enroll(ctx context.Context, studentID string, image []byte) (*EnrollResult, error) {
	if !domain.IsStudentID(studentID) {
		return nil, domain.ErrInvalidStudentID
	}

	id, err := uuid.Parse(studentID)
	if err != nil {
		return nil, domain.ErrInvalidStudentID.WithError(err)
	}

	res, err := s.enrollAs(ctx, studentID, image)
	if err != nil {
		return nil, err
	}
	res.StudentID = &id

	return res, nil
}

// EnrollByRoll stores the reference image for a roll number. When the roll is
// known the file is stored under the student UUID; otherwise under the raw
// roll, so recognition can retry the mapping once the directory catches up.
func (s *AttendanceService) EnrollByRoll(ctx context.Context, rollNo string, image []byte) (*EnrollResult, error) {
	if rollNo == "" {
		return nil, domain.ErrValidationFailed.WithError(errors.New("roll_no is required"))
	}

	label := rollNo
	var mapped *uuid.UUID
	if id, ok := s.directory.ResolveStudentID(rollNo); ok {
		label = id.String()
		mapped = &id
	}

	res, err := s.enrollAs(ctx, label, image)
	if err != nil {
		return nil, err
	}
	res.StudentID = mapped

	return res, nil
}

func (s *AttendanceService) enrollAs(ctx context.Context, label string, image []byte) (*EnrollResult, error) {
	format, err := decodeImageFormat(image)
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}

	detected, err := s.encoder.DetectFaces(ctx, image)
	if err != nil {
		return nil, domain.ErrEncoderUnavailable.WithError(err)
	}
	if len(detected) == 0 {
		return nil, domain.ErrNoFaceDetected
	}

	file, err := s.faces.Put(label, format, image)
	if err != nil {
		if errors.Is(err, facestore.ErrBadLabel) {
			return nil, domain.ErrValidationFailed.WithError(err)
		}
		return nil, domain.ErrStorage.WithError(err)
	}

	// The new file must be matchable immediately; the index refresh is
	// best-effort and keeps its last-good snapshot on failure.
	if err := s.directory.Refresh(ctx); err != nil {
		s.logger.Warn("student index refresh failed, keeping previous snapshot",
			slog.Any("error", err),
		)
	}
	if err := s.faces.Reload(ctx); err != nil {
		return nil, domain.ErrStorage.WithError(err)
	}

	return &EnrollResult{File: file, Label: label}, nil
}

// Recognize encodes the photo, matches it against the enrolled faces and, on
// a mappable match, records the attendance event for the current kiosk-local
// day. Ledger failures surface as storage errors, never as "unknown face".
func (s *AttendanceService) Recognize(ctx context.Context, image []byte) (*RecognitionResult, error) {
	if _, err := decodeImageFormat(image); err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}

	probe, err := s.encoder.EncodeFace(ctx, image)
	if err != nil {
		if errors.Is(err, provider.ErrNoFace) {
			return &RecognitionResult{
				Status:  StatusNoFace,
				Message: "No face detected",
			}, nil
		}
		return nil, domain.ErrEncoderUnavailable.WithError(err)
	}

	res, err := s.matcher.Match(ctx, probe, s.faces.Snapshot())
	if err != nil {
		return nil, domain.ErrInternal.WithError(err)
	}

	switch res.Outcome {
	case matcher.OutcomeNoCandidates:
		return &RecognitionResult{
			Status:  StatusNoCandidates,
			Message: "No known faces enrolled. Enroll faces first.",
		}, nil
	case matcher.OutcomeUnknown:
		return &RecognitionResult{
			Status:   StatusUnknown,
			Message:  "Unknown face",
			Distance: &res.Distance,
		}, nil
	}

	studentID, idOK := s.directory.ResolveStudentID(res.Label)
	rollNo, rollOK := s.directory.ResolveRollNo(res.Label)

	if !idOK || !rollOK {
		out := &RecognitionResult{
			Status: StatusUnmappable,
			Message: fmt.Sprintf(
				"Matched %q, but couldn't map it to a known student. Enroll by UUID or ensure the roll number exists.",
				res.Label,
			),
			Distance: &res.Distance,
		}
		if rollOK {
			out.RollNo = &rollNo
		}
		return out, nil
	}

	now := s.clock.TimeOfDay()
	_, entry, err := s.ledger.UpsertEvent(ctx, studentID, s.clock.Today(), now)
	if err != nil {
		return nil, domain.ErrStorage.WithError(err)
	}

	out := &RecognitionResult{
		RollNo:   &rollNo,
		Distance: &res.Distance,
	}
	if entry {
		out.Status = StatusEntry
		out.Message = fmt.Sprintf("Entry marked for %s at %s", rollNo, now)
	} else {
		out.Status = StatusExit
		out.Message = fmt.Sprintf("Exit marked for %s at %s", rollNo, now)
	}

	return out, nil
}

// ExportDayCSV renders the ledger for the current kiosk-local day as CSV.
// Returns the suggested attachment file name and the document bytes.
func (s *AttendanceService) ExportDayCSV(ctx context.Context) (string, []byte, error) {
	today := s.clock.Today()

	records, err := s.ledger.ListByDate(ctx, today)
	if err != nil {
		return "", nil, domain.ErrStorage.WithError(err)
	}

	ids := make([]uuid.UUID, 0, len(records))
	seen := make(map[uuid.UUID]bool, len(records))
	for _, rec := range records {
		if !seen[rec.StudentID] {
			seen[rec.StudentID] = true
			ids = append(ids, rec.StudentID)
		}
	}

	labels, err := s.students.GetLabels(ctx, ids)
	if err != nil {
		return "", nil, domain.ErrStorage.WithError(err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"student_id", "student_label", "att_date", "entry_time", "exit_time"})
	for _, rec := range records {
		exit := ""
		if rec.ExitTime != nil {
			exit = *rec.ExitTime
		}
		_ = w.Write([]string{
			rec.StudentID.String(),
			labels[rec.StudentID],
			rec.AttDate,
			rec.EntryTime,
			exit,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", nil, domain.ErrInternal.WithError(err)
	}

	return fmt.Sprintf("attendance_%s.csv", today), buf.Bytes(), nil
}
