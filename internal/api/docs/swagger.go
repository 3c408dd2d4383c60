package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// EnrollResponse represents the response for a successful enrollment
type EnrollResponse struct {
	Message   string `json:"message" example:"Enrolled 550e8400-e29b-41d4-a716-446655440000"`
	File      string `json:"file" example:"550e8400-e29b-41d4-a716-446655440000.png"`
	StudentID string `json:"student_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
}

// RecognizeResponse represents the response for a recognition attempt
type RecognizeResponse struct {
	Message  string   `json:"message" example:"Entry marked for 21CS001 at 09:12:45"`
	RollNo   *string  `json:"roll_no" example:"21CS001"`
	Distance *float64 `json:"distance" example:"0.41"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Version string `json:"version,omitempty" example:"0.1.0"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

// EmptyResponse represents a bodyless (attachment) response
type EmptyResponse struct{}

func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Hajiri Attendance API",
		Version:     "v1.0.0",
		Description: "Face recognition attendance service: enroll reference faces, recognize walk-ins, export daily attendance",
		Host:        "localhost:3000",
		Path:        "/",
	})

	endpoints := []*endpoint.EndPoint{
		// POST /enroll - Enroll by student UUID
		endpoint.New(
			endpoint.POST,
			"/enroll",
			endpoint.WithTags("Enrollment"),
			endpoint.WithSummary("Enroll a reference face for a student"),
			endpoint.WithDescription("Stores the uploaded face image as the reference for the given student UUID. Overwrites any previous reference image."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("student_id", parameter.Query, parameter.WithDescription("Student UUID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EnrollResponse{}, "200", "Face enrolled successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "INVALID_STUDENT_ID", Message: "student_id must be a valid UUID"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "NO_FACE_DETECTED", Message: "No face detected in image"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "ENCODER_UNAVAILABLE", Message: "Face encoder unavailable"}, "502", "Bad Gateway"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// POST /enroll_by_roll - Enroll by roll number
		endpoint.New(
			endpoint.POST,
			"/enroll_by_roll",
			endpoint.WithTags("Enrollment"),
			endpoint.WithSummary("Enroll a reference face by roll number"),
			endpoint.WithDescription("Resolves the roll number to a student UUID when the directory knows it, otherwise stores the image under the raw roll number."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("roll_no", parameter.Query, parameter.WithDescription("Student roll number")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EnrollResponse{}, "200", "Face enrolled successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "roll_no is required"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "NO_FACE_DETECTED", Message: "No face detected in image"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "ENCODER_UNAVAILABLE", Message: "Face encoder unavailable"}, "502", "Bad Gateway"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// POST /recognize - Recognize a face and mark attendance
		endpoint.New(
			endpoint.POST,
			"/recognize",
			endpoint.WithTags("Recognition"),
			endpoint.WithSummary("Recognize a face and mark attendance"),
			endpoint.WithDescription("Matches the uploaded face against enrolled references. The first match of the day marks entry; later matches the same day mark exit. Near-misses (no face, unknown face, nothing enrolled) return 200 with an explanatory message."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(RecognizeResponse{}, "200", "Recognition completed"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "INVALID_IMAGE", Message: "Invalid or corrupted image"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "STORAGE_ERROR", Message: "Attendance storage failed"}, "500", "Internal Server Error"),
				response.New(ErrorResponse{Code: "ENCODER_UNAVAILABLE", Message: "Face encoder unavailable"}, "502", "Bad Gateway"),
			}),
		),

		// GET /admin/download_csv - Export today's attendance
		endpoint.New(
			endpoint.GET,
			"/admin/download_csv",
			endpoint.WithTags("Admin"),
			endpoint.WithSummary("Download today's attendance as CSV"),
			endpoint.WithDescription("Returns a CSV attachment with one row per student seen today, ordered by entry time."),
			endpoint.WithProduce([]mime.MIME{mime.MIME("text/csv")}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmptyResponse{}, "200", "CSV attachment"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "STORAGE_ERROR", Message: "Attendance storage failed"}, "500", "Internal Server Error"),
			}),
		),

		// GET /health - Liveness probe
		endpoint.New(
			endpoint.GET,
			"/health",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Liveness probe"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthResponse{}, "200", "Service is alive"),
			}),
		),

		// GET /ready - Readiness probe
		endpoint.New(
			endpoint.GET,
			"/ready",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Readiness probe"),
			endpoint.WithDescription("Checks database connectivity."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthResponse{}, "200", "Service is ready"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(HealthResponse{Status: "unavailable"}, "503", "Database unreachable"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
