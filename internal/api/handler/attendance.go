package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/hajiri-labs/hajiri/internal/domain"
	"github.com/hajiri-labs/hajiri/internal/service"
)

const (
	maxImageSize = 10 * 1024 * 1024 // 10MB
)

var validImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// AttendanceService interface for the service
type AttendanceService interface {
	Enroll(ctx context.Context, studentID string, image []byte) (*service.EnrollResult, error)
	EnrollByRoll(ctx context.Context, rollNo string, image []byte) (*service.EnrollResult, error)
	Recognize(ctx context.Context, image []byte) (*service.RecognitionResult, error)
	ExportDayCSV(ctx context.Context) (string, []byte, error)
}

// AttendanceHandler handles enrollment, recognition and export requests
type AttendanceHandler struct {
	service AttendanceService
	logger  *slog.Logger
}

// NewAttendanceHandler creates a new AttendanceHandler instance
func NewAttendanceHandler(service AttendanceService, logger *slog.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		service: service,
		logger:  logger,
	}
}

// EnrollResponse response for both enrollment endpoints
type EnrollResponse struct {
	Message   string `json:"message"`
	File      string `json:"file"`
	StudentID string `json:"student_id,omitempty"`
}

// RecognizeResponse response for the recognize endpoint
type RecognizeResponse struct {
	Message  string   `json:"message"`
	RollNo   *string  `json:"roll_no"`
	Distance *float64 `json:"distance"`
}

// Enroll POST /enroll?student_id=<uuid> - register a reference face for a student
func (h *AttendanceHandler) Enroll(c *fiber.Ctx) error {
	studentID := strings.TrimSpace(c.Query("student_id"))
	if studentID == "" {
		return domain.ErrValidationFailed.WithError(errors.New("student_id is required"))
	}

	imageBytes, err := extractAndValidateImage(c)
	if err != nil {
		return fmt.Errorf("enroll: %w", err)
	}

	res, err := h.service.Enroll(c.Context(), studentID, imageBytes)
	if err != nil {
		return err
	}

	return c.JSON(EnrollResponse{
		Message:   fmt.Sprintf("Enrolled %s", res.Label),
		File:      res.File,
		StudentID: res.StudentID.String(),
	})
}

// EnrollByRoll POST /enroll_by_roll?roll_no=<code> - register a reference face by roll number
func (h *AttendanceHandler) EnrollByRoll(c *fiber.Ctx) error {
	rollNo := strings.TrimSpace(c.Query("roll_no"))
	if rollNo == "" {
		return domain.ErrValidationFailed.WithError(errors.New("roll_no is required"))
	}

	imageBytes, err := extractAndValidateImage(c)
	if err != nil {
		return fmt.Errorf("enroll by roll: %w", err)
	}

	res, err := h.service.EnrollByRoll(c.Context(), rollNo, imageBytes)
	if err != nil {
		return err
	}

	out := EnrollResponse{
		Message: fmt.Sprintf("Enrolled %s", res.Label),
		File:    res.File,
	}
	if res.StudentID != nil {
		out.StudentID = res.StudentID.String()
	}

	return c.JSON(out)
}

// Recognize POST /recognize - match an incoming face and mark attendance
func (h *AttendanceHandler) Recognize(c *fiber.Ctx) error {
	imageBytes, err := extractAndValidateImage(c)
	if err != nil {
		return fmt.Errorf("recognize: %w", err)
	}

	res, err := h.service.Recognize(c.Context(), imageBytes)
	if err != nil {
		return err
	}

	return c.JSON(RecognizeResponse{
		Message:  res.Message,
		RollNo:   res.RollNo,
		Distance: res.Distance,
	})
}

// DownloadCSV GET /admin/download_csv - export today's attendance as a CSV attachment
func (h *AttendanceHandler) DownloadCSV(c *fiber.Ctx) error {
	name, data, err := h.service.ExportDayCSV(c.Context())
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))

	return c.Send(data)
}

func extractAndValidateImage(c *fiber.Ctx) ([]byte, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return nil, domain.ErrValidationFailed.WithError(err)
	}

	if file.Size > maxImageSize || file.Size == 0 {
		return nil, domain.ErrInvalidImage.WithError(nil)
	}

	contentType := file.Header.Get("Content-Type")
	if !validImageTypes[contentType] {
		return nil, domain.ErrInvalidImage.WithError(nil)
	}

	f, err := file.Open()
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}
	defer func() {
		_ = f.Close()
	}()

	imageBytes, err := io.ReadAll(f)
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}

	return imageBytes, nil
}
