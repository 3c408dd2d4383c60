package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/hajiri-labs/hajiri/internal/api/docs"
	"github.com/hajiri-labs/hajiri/internal/api/handler"
	"github.com/hajiri-labs/hajiri/internal/api/middleware"
)

type Dependencies struct {
	AttendanceService handler.AttendanceService
	DB                *pgxpool.Pool

	// StaticDir, when set, is served at the root so the kiosk scan and
	// admin pages can live next to the API.
	StaticDir string
}

type Router struct {
	app    *fiber.App
	logger *slog.Logger
	deps   *Dependencies
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Hajiri API",
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Swagger documentation
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Health check endpoints
	var db handler.Pinger
	if r.deps != nil && r.deps.DB != nil {
		db = r.deps.DB
	}
	healthHandler := handler.NewHealthHandler(db)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	if r.deps == nil || r.deps.AttendanceService == nil {
		return
	}

	attendanceHandler := handler.NewAttendanceHandler(r.deps.AttendanceService, r.logger)

	r.app.Post("/enroll", attendanceHandler.Enroll)
	r.app.Post("/enroll_by_roll", attendanceHandler.EnrollByRoll)
	r.app.Post("/recognize", attendanceHandler.Recognize)
	r.app.Get("/admin/download_csv", attendanceHandler.DownloadCSV)

	if r.deps.StaticDir != "" {
		r.app.Static("/", r.deps.StaticDir)
	}
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	return r.app.Shutdown()
}
