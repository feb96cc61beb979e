package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/harvestlink/harvest-backend-go/internal/config"
	"github.com/harvestlink/harvest-backend-go/internal/domain/user"
	"github.com/harvestlink/harvest-backend-go/internal/handler/http/middleware"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/jwt"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/ratelimit"
)

type Handlers struct {
	Auth       AuthHandler
	Worker     WorkerHandler
	Base       BaseHandler
	Attendance AttendanceHandler
	Salary     SalaryHandler
}

func NewRouter(cfg *config.Config, JWTService jwt.Service, h Handlers, limiter *ratelimit.Limiter) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "harvest-backend"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RealIP)

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.SlogLevel(),
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	// Signatures and vouchers written by local storage
	if cfg.Storage.Type == "local" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.Storage.BasePath)))
		r.Handle("/uploads/*", fs)
	}

	scanLimit := middleware.RateLimit(limiter, "scan")

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jwtauth.Verify(JWTService.JWTAuth(), jwtauth.TokenFromHeader, jwtauth.TokenFromQuery))
		r.Use(middleware.AuthRequired(JWTService))

		r.Post("/auth/logout", h.Auth.Logout)

		r.Route("/workers", func(r chi.Router) {
			r.Use(middleware.RequirePermission(user.PermissionWorkerManage))
			r.Post("/", h.Worker.Register)
			r.Get("/lookup", h.Worker.Lookup)
			r.Get("/{id}", h.Worker.Get)
		})

		r.Route("/bases", func(r chi.Router) {
			r.With(middleware.RequirePermission(user.PermissionBaseManage)).Post("/", h.Base.CreateBase)
			r.With(middleware.RequirePermission(user.PermissionBaseView)).Get("/", h.Base.ListBases)

			r.Route("/{id}/jobs", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionBaseView)).Get("/", h.Base.ListJobs)
				r.With(middleware.RequirePermission(user.PermissionJobManage)).Post("/", h.Base.CreateJob)
			})
		})

		r.With(middleware.RequirePermission(user.PermissionJobManage)).Put("/jobs/{id}", h.Base.UpdateJob)

		r.Route("/attendance", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionQRIssue))
				r.Get("/qr", h.Attendance.IssueToken)
				r.Get("/qr.png", h.Attendance.TokenImage)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionSignupCreate))
				r.Post("/signups", h.Attendance.SignUp)
				r.Post("/signups/{id}/cancel", h.Attendance.CancelSignup)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionAttendanceScan))
				r.Use(scanLimit)
				r.Post("/checkin", h.Attendance.CheckIn)
				r.Post("/sync", h.Attendance.Sync)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionAttendanceView))
				r.Get("/records", h.Attendance.ListRecords)
				r.Get("/stats", h.Attendance.Stats)
				r.Get("/stats/bases", h.Attendance.BaseStats)
				r.Get("/live", h.Attendance.Live)
				r.With(middleware.RequirePermission(user.PermissionAttendanceExport)).
					Get("/records/export", h.Attendance.ExportRecords)
			})
		})

		r.Route("/salaries", func(r chi.Router) {
			r.Use(middleware.RequirePermission(user.PermissionSalaryManage))
			r.Post("/", h.Salary.Draft)
			r.Get("/{id}", h.Salary.Get)
			r.Post("/{id}/confirm", h.Salary.Confirm)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Use(middleware.RequirePermission(user.PermissionPaymentManage))
			r.Post("/", h.Salary.CreatePayment)
			r.Post("/{id}/confirm", h.Salary.ConfirmPayment)
			r.Post("/{id}/complete", h.Salary.CompletePayment)
		})
	})
	return r
}
