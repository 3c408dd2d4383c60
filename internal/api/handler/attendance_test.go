package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hajiri-labs/hajiri/internal/api/middleware"
	"github.com/hajiri-labs/hajiri/internal/domain"
	"github.com/hajiri-labs/hajiri/internal/service"
)

// MockAttendanceService is a mock implementation of AttendanceService
type MockAttendanceService struct {
	mock.Mock
}

func (m *MockAttendanceService) Enroll(ctx context.Context, studentID string, image []byte) (*service.EnrollResult, error) {
	args := m.Called(ctx, studentID, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EnrollResult), args.Error(1)
}

func (m *MockAttendanceService) EnrollByRoll(ctx context.Context, rollNo string, image []byte) (*service.EnrollResult, error) {
	args := m.Called(ctx, rollNo, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EnrollResult), args.Error(1)
}

func (m *MockAttendanceService) Recognize(ctx context.Context, image []byte) (*service.RecognitionResult, error) {
	args := m.Called(ctx, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RecognitionResult), args.Error(1)
}

func (m *MockAttendanceService) ExportDayCSV(ctx context.Context) (string, []byte, error) {
	args := m.Called(ctx)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).([]byte), args.Error(2)
}

// testLogger returns a logger that discards all output
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Helper to create multipart request body with an image part
func multipartImage(imageContent []byte, contentType string) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if imageContent != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="test.jpg"`)
		h.Set("Content-Type", contentType)

		part, _ := writer.CreatePart(h)
		_, _ = part.Write(imageContent)
	}

	_ = writer.Close()
	return body, writer.FormDataContentType()
}

func createTestApp(h *AttendanceHandler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(testLogger()),
	})

	app.Post("/enroll", h.Enroll)
	app.Post("/enroll_by_roll", h.EnrollByRoll)
	app.Post("/recognize", h.Recognize)
	app.Get("/admin/download_csv", h.DownloadCSV)

	return app
}

func TestAttendanceHandler_Enroll(t *testing.T) {
	studentID := uuid.New()

	tests := []struct {
		name           string
		query          string
		imageContent   []byte
		contentType    string
		setupMock      func(*MockAttendanceService)
		expectedStatus int
		checkResponse  func(t *testing.T, body []byte)
	}{
		{
			name:         "successful enrollment",
			query:        "?student_id=" + studentID.String(),
			imageContent: make([]byte, 5000),
			contentType:  "image/jpeg",
			setupMock: func(m *MockAttendanceService) {
				m.On("Enroll", mock.Anything, studentID.String(), mock.Anything).Return(&service.EnrollResult{
					File:      studentID.String() + ".jpg",
					Label:     studentID.String(),
					StudentID: &studentID,
				}, nil)
			},
			expectedStatus: 200,
			checkResponse: func(t *testing.T, body []byte) {
				var resp EnrollResponse
				require.NoError(t, json.Unmarshal(body, &resp))
				assert.Equal(t, studentID.String()+".jpg", resp.File)
				assert.Equal(t, studentID.String(), resp.StudentID)
				assert.Contains(t, resp.Message, "Enrolled")
			},
		},
		{
			name:           "missing student_id",
			query:          "",
			imageContent:   make([]byte, 5000),
			contentType:    "image/jpeg",
			setupMock:      func(m *MockAttendanceService) {},
			expectedStatus: 400,
		},
		{
			name:         "invalid student_id",
			query:        "?student_id=21CS001",
			imageContent: make([]byte, 5000),
			contentType:  "image/jpeg",
			setupMock: func(m *MockAttendanceService) {
				m.On("Enroll", mock.Anything, "21CS001", mock.Anything).Return(nil, domain.ErrInvalidStudentID)
			},
			expectedStatus: 400,
		},
		{
			name:           "missing image",
			query:          "?student_id=" + studentID.String(),
			imageContent:   nil,
			contentType:    "",
			setupMock:      func(m *MockAttendanceService) {},
			expectedStatus: 400,
		},
		{
			name:           "unsupported image type",
			query:          "?student_id=" + studentID.String(),
			imageContent:   make([]byte, 5000),
			contentType:    "image/gif",
			setupMock:      func(m *MockAttendanceService) {},
			expectedStatus: 400,
		},
		{
			name:         "no face detected",
			query:        "?student_id=" + studentID.String(),
			imageContent: make([]byte, 5000),
			contentType:  "image/jpeg",
			setupMock: func(m *MockAttendanceService) {
				m.On("Enroll", mock.Anything, studentID.String(), mock.Anything).Return(nil, domain.ErrNoFaceDetected)
			},
			expectedStatus: 400,
		},
		{
			name:         "encoder down",
			query:        "?student_id=" + studentID.String(),
			imageContent: make([]byte, 5000),
			contentType:  "image/jpeg",
			setupMock: func(m *MockAttendanceService) {
				m.On("Enroll", mock.Anything, studentID.String(), mock.Anything).Return(nil, domain.ErrEncoderUnavailable)
			},
			expectedStatus: 502,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockAttendanceService{}
			tt.setupMock(mockService)

			app := createTestApp(NewAttendanceHandler(mockService, testLogger()))

			body, formContentType := multipartImage(tt.imageContent, tt.contentType)
			req := httptest.NewRequest("POST", "/enroll"+tt.query, body)
			req.Header.Set("Content-Type", formContentType)

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.checkResponse != nil {
				respBody, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				tt.checkResponse(t, respBody)
			}

			mockService.AssertExpectations(t)
		})
	}
}

func TestAttendanceHandler_EnrollByRoll(t *testing.T) {
	t.Run("known roll returns mapped uuid", func(t *testing.T) {
		id := uuid.New()
		mockService := &MockAttendanceService{}
		mockService.On("EnrollByRoll", mock.Anything, "21CS001", mock.Anything).Return(&service.EnrollResult{
			File:      id.String() + ".png",
			Label:     id.String(),
			StudentID: &id,
		}, nil)

		app := createTestApp(NewAttendanceHandler(mockService, testLogger()))
		body, formContentType := multipartImage(make([]byte, 5000), "image/png")
		req := httptest.NewRequest("POST", "/enroll_by_roll?roll_no=21CS001", body)
		req.Header.Set("Content-Type", formContentType)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var out EnrollResponse
		respBody, _ := io.ReadAll(resp.Body)
		require.NoError(t, json.Unmarshal(respBody, &out))
		assert.Equal(t, id.String(), out.StudentID)
	})

	t.Run("unknown roll omits student_id", func(t *testing.T) {
		mockService := &MockAttendanceService{}
		mockService.On("EnrollByRoll", mock.Anything, "99XX999", mock.Anything).Return(&service.EnrollResult{
			File:  "99XX999.png",
			Label: "99XX999",
		}, nil)

		app := createTestApp(NewAttendanceHandler(mockService, testLogger()))
		body, formContentType := multipartImage(make([]byte, 5000), "image/png")
		req := httptest.NewRequest("POST", "/enroll_by_roll?roll_no=99XX999", body)
		req.Header.Set("Content-Type", formContentType)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		respBody, _ := io.ReadAll(resp.Body)
		assert.NotContains(t, string(respBody), "student_id")
	})

	t.Run("missing roll_no", func(t *testing.T) {
		mockService := &MockAttendanceService{}
		app := createTestApp(NewAttendanceHandler(mockService, testLogger()))

		body, formContentType := multipartImage(make([]byte, 5000), "image/png")
		req := httptest.NewRequest("POST", "/enroll_by_roll", body)
		req.Header.Set("Content-Type", formContentType)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
		mockService.AssertNotCalled(t, "EnrollByRoll", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAttendanceHandler_Recognize(t *testing.T) {
	roll := "21CS001"
	dist := 0.41

	tests := []struct {
		name           string
		setupMock      func(*MockAttendanceService)
		expectedStatus int
		checkResponse  func(t *testing.T, body []byte)
	}{
		{
			name: "entry marked",
			setupMock: func(m *MockAttendanceService) {
				m.On("Recognize", mock.Anything, mock.Anything).Return(&service.RecognitionResult{
					Status:   service.StatusEntry,
					Message:  "Entry marked for 21CS001 at 09:12:45",
					RollNo:   &roll,
					Distance: &dist,
				}, nil)
			},
			expectedStatus: 200,
			checkResponse: func(t *testing.T, body []byte) {
				var resp RecognizeResponse
				require.NoError(t, json.Unmarshal(body, &resp))
				require.NotNil(t, resp.RollNo)
				assert.Equal(t, "21CS001", *resp.RollNo)
				require.NotNil(t, resp.Distance)
				assert.Equal(t, 0.41, *resp.Distance)
			},
		},
		{
			name: "no face is a 200 with nulls",
			setupMock: func(m *MockAttendanceService) {
				m.On("Recognize", mock.Anything, mock.Anything).Return(&service.RecognitionResult{
					Status:  service.StatusNoFace,
					Message: "No face detected",
				}, nil)
			},
			expectedStatus: 200,
			checkResponse: func(t *testing.T, body []byte) {
				assert.Contains(t, string(body), `"roll_no":null`)
				assert.Contains(t, string(body), `"distance":null`)
			},
		},
		{
			name: "ledger failure",
			setupMock: func(m *MockAttendanceService) {
				m.On("Recognize", mock.Anything, mock.Anything).Return(nil, domain.ErrStorage)
			},
			expectedStatus: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockAttendanceService{}
			tt.setupMock(mockService)

			app := createTestApp(NewAttendanceHandler(mockService, testLogger()))
			body, formContentType := multipartImage(make([]byte, 5000), "image/jpeg")
			req := httptest.NewRequest("POST", "/recognize", body)
			req.Header.Set("Content-Type", formContentType)

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.checkResponse != nil {
				respBody, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				tt.checkResponse(t, respBody)
			}
		})
	}
}

func TestAttendanceHandler_DownloadCSV(t *testing.T) {
	t.Run("sends attachment", func(t *testing.T) {
		csvData := []byte("student_id,student_label,att_date,entry_time,exit_time\n")
		mockService := &MockAttendanceService{}
		mockService.On("ExportDayCSV", mock.Anything).Return("attendance_2025-03-10.csv", csvData, nil)

		app := createTestApp(NewAttendanceHandler(mockService, testLogger()))
		req := httptest.NewRequest("GET", "/admin/download_csv", nil)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
		assert.Equal(t, `attachment; filename="attendance_2025-03-10.csv"`, resp.Header.Get("Content-Disposition"))

		respBody, _ := io.ReadAll(resp.Body)
		assert.Equal(t, csvData, respBody)
	})

	t.Run("storage failure", func(t *testing.T) {
		mockService := &MockAttendanceService{}
		mockService.On("ExportDayCSV", mock.Anything).Return("", nil, domain.ErrStorage)

		app := createTestApp(NewAttendanceHandler(mockService, testLogger()))
		req := httptest.NewRequest("GET", "/admin/download_csv", nil)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 500, resp.StatusCode)
	})
}
