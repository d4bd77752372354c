package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/memento-hq/funeraria-backend-go/internal/handler/http/middleware"
	"github.com/memento-hq/funeraria-backend-go/internal/pkg/jwt"
)

func NewRouter(
	jwtService jwt.Service,
	payrollHandler PayrollHandler,
	collaboratorHandler CollaboratorHandler,
	bookingHandler BookingHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "funeraria-backend"),
		slog.String("version", "v1.0.0"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// Public receipt verification, reachable without a token.
		r.Get("/receipts/verify/{code}", payrollHandler.VerifyReceipt)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/payroll-periods", func(r chi.Router) {
				r.Get("/", payrollHandler.ListPeriods)
				r.Post("/", payrollHandler.CreatePeriod)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", payrollHandler.GetPeriod)
					r.Delete("/", payrollHandler.DeletePeriod)
					r.Post("/compute", payrollHandler.ComputePeriod)
					r.Post("/close", payrollHandler.ClosePeriod)
					r.Post("/mark-processed", payrollHandler.MarkPeriodProcessed)
					r.Post("/mark-paid", payrollHandler.MarkPeriodPaid)

					r.Get("/records", payrollHandler.ListRecords)
					r.Post("/records/approve-all", payrollHandler.ApproveAllRecords)

					r.Get("/receipts", payrollHandler.ListReceipts)
					r.Post("/receipts/generate-all", payrollHandler.GenerateAllReceipts)
				})
			})

			r.Route("/payroll-records/{id}", func(r chi.Router) {
				r.Get("/", payrollHandler.GetRecord)
				r.Patch("/adjustments", payrollHandler.UpdateRecordAdjustments)
				r.Post("/approve", payrollHandler.ApproveRecord)
				r.Post("/receipt", payrollHandler.GenerateReceipt)
				r.Get("/receipt", payrollHandler.GetRecordReceipt)
			})

			r.Route("/receipts/{id}", func(r chi.Router) {
				r.Get("/", payrollHandler.GetReceipt)
				r.Patch("/status", payrollHandler.UpdateReceiptStatus)
			})

			r.Route("/collaborators", func(r chi.Router) {
				r.Get("/", collaboratorHandler.List)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", collaboratorHandler.Get)
					r.Get("/assignments", collaboratorHandler.ListAssignments)
				})
			})

			r.Route("/bookings", func(r chi.Router) {
				r.Get("/", bookingHandler.ListByResource)
				r.Post("/", bookingHandler.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", bookingHandler.Get)
					r.Delete("/", bookingHandler.Cancel)
				})
			})
		})
	})
	return r
}
